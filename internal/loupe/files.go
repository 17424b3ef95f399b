package loupe

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"github.com/rmacdonaldsmith/diamondcut-go/pkg/diamondcut"
	"github.com/rmacdonaldsmith/diamondcut-go/pkg/routingtable"
)

// FacetEntry is one line of a facets file: a deployed facet and the contract it was built from.
type FacetEntry struct {
	Address      common.Address
	ContractName string
}

// ReadFacetsFile reads "address|contractName" lines
func ReadFacetsFile(path string) ([]FacetEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open facets file: %w", err)
	}
	defer f.Close()
	return ParseFacets(f)
}

// ParseFacets parses "address|contractName" lines. Blank lines are skipped.
func ParseFacets(r io.Reader) ([]FacetEntry, error) {
	var entries []FacetEntry
	err := eachLine(r, func(lineNo int, line string) error {
		parts := strings.Split(line, "|")
		if len(parts) != 2 {
			return fmt.Errorf("%w: facets line %d (expected address|contractName): %s",
				diamondcut.ErrMalformedInput, lineNo, line)
		}
		addr, err := parseFacetAddress(parts[0])
		if err != nil {
			return fmt.Errorf("facets line %d: %w", lineNo, err)
		}
		name := strings.TrimSpace(parts[1])
		if name == "" {
			return fmt.Errorf("%w: facets line %d has no contract name", diamondcut.ErrMalformedInput, lineNo)
		}
		entries = append(entries, FacetEntry{Address: addr, ContractName: name})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// ReadLoupeFile reads "facetAddress|sel1,sel2,..." lines
func ReadLoupeFile(path string) ([]diamondcut.LoupeFacet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open loupe file: %w", err)
	}
	defer f.Close()
	return ParseLoupe(f)
}

// ParseLoupe parses "facetAddress|sel1,sel2,..." lines. A facet may list no
// selectors; blank lines are skipped.
func ParseLoupe(r io.Reader) ([]diamondcut.LoupeFacet, error) {
	var facets []diamondcut.LoupeFacet
	err := eachLine(r, func(lineNo int, line string) error {
		addrPart, selectorPart, _ := strings.Cut(line, "|")
		addr, err := parseFacetAddress(addrPart)
		if err != nil {
			return fmt.Errorf("loupe line %d: %w", lineNo, err)
		}

		facet := diamondcut.LoupeFacet{FacetAddress: addr, FunctionSelectors: []routingtable.Selector{}}
		for _, item := range strings.Split(selectorPart, ",") {
			item = strings.TrimSpace(item)
			if item == "" {
				continue
			}
			sel, err := routingtable.Parse(item)
			if err != nil {
				return fmt.Errorf("%w: loupe line %d: %v", diamondcut.ErrMalformedInput, lineNo, err)
			}
			facet.FunctionSelectors = append(facet.FunctionSelectors, sel)
		}
		facets = append(facets, facet)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return facets, nil
}

// FileLoupe serves a loupe snapshot stored in a loupe file
type FileLoupe struct {
	Path string
}

// NewFileLoupe creates a loupe backed by the given file
func NewFileLoupe(path string) *FileLoupe {
	return &FileLoupe{Path: path}
}

// Facets reads the snapshot
func (l *FileLoupe) Facets(ctx context.Context) ([]diamondcut.LoupeFacet, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return ReadLoupeFile(l.Path)
}

// Verify that FileLoupe implements the Loupe interface at compile time
var _ diamondcut.Loupe = (*FileLoupe)(nil)

func parseFacetAddress(text string) (common.Address, error) {
	text = strings.TrimSpace(text)
	if !common.IsHexAddress(text) {
		return common.Address{}, fmt.Errorf("%w: invalid facet address %q", diamondcut.ErrMalformedInput, text)
	}
	return common.HexToAddress(text), nil
}

func eachLine(r io.Reader, fn func(lineNo int, line string) error) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		if err := fn(lineNo, line); err != nil {
			return err
		}
	}
	return scanner.Err()
}
