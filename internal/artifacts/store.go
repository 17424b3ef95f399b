package artifacts

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/sugawarayuuta/sonnet"

	"github.com/rmacdonaldsmith/diamondcut-go/pkg/routingtable"
)

// DefaultDir is where the compiler writes artifacts, relative to the project root
const DefaultDir = "artifacts"

var (
	// ErrArtifactNotFound is returned when no artifact file exists for a contract
	ErrArtifactNotFound = errors.New("artifact not found")

	// ErrInvalidArtifact is returned for artifacts without a usable ABI
	ErrInvalidArtifact = errors.New("invalid artifact")
)

// Param is one ABI input or output parameter
type Param struct {
	Name         string  `json:"name"`
	Type         string  `json:"type"`
	InternalType string  `json:"internalType,omitempty"`
	Components   []Param `json:"components,omitempty"`
	Indexed      bool    `json:"indexed,omitempty"`
}

// Fragment is one entry of a contract ABI
type Fragment struct {
	Type            string  `json:"type"`
	Name            string  `json:"name,omitempty"`
	Inputs          []Param `json:"inputs,omitempty"`
	Outputs         []Param `json:"outputs,omitempty"`
	StateMutability string  `json:"stateMutability,omitempty"`
	Anonymous       bool    `json:"anonymous,omitempty"`
}

// IsFunction reports whether the fragment is a named function
func (f Fragment) IsFunction() bool {
	return f.Type == "function" && f.Name != ""
}

// Signature returns the canonical signature, e.g. "transfer(address,uint256)".
// Tuple parameters are expanded to their component types.
func (f Fragment) Signature() string {
	types := make([]string, len(f.Inputs))
	for i, in := range f.Inputs {
		types[i] = canonicalType(in)
	}
	return f.Name + "(" + strings.Join(types, ",") + ")"
}

// Selector hashes the canonical signature
func (f Fragment) Selector() routingtable.Selector {
	return routingtable.FromSignature(f.Signature())
}

func canonicalType(p Param) string {
	if !strings.HasPrefix(p.Type, "tuple") {
		return p.Type
	}
	components := make([]string, len(p.Components))
	for i, c := range p.Components {
		components[i] = canonicalType(c)
	}
	// keep any array suffix, e.g. tuple[] or tuple[2][]
	return "(" + strings.Join(components, ",") + ")" + strings.TrimPrefix(p.Type, "tuple")
}

// Arguments builds go-ethereum ABI arguments for the fragment inputs
func (f Fragment) Arguments() (abi.Arguments, error) {
	args := make(abi.Arguments, 0, len(f.Inputs))
	for i, in := range f.Inputs {
		typ, err := abi.NewType(in.Type, in.InternalType, marshaling(in.Components))
		if err != nil {
			return nil, fmt.Errorf("%w: %s input %d: %v", ErrInvalidArtifact, f.Name, i, err)
		}
		args = append(args, abi.Argument{Name: in.Name, Type: typ, Indexed: in.Indexed})
	}
	return args, nil
}

func marshaling(params []Param) []abi.ArgumentMarshaling {
	if len(params) == 0 {
		return nil
	}
	out := make([]abi.ArgumentMarshaling, len(params))
	for i, p := range params {
		out[i] = abi.ArgumentMarshaling{
			Name:         p.Name,
			Type:         p.Type,
			InternalType: p.InternalType,
			Components:   marshaling(p.Components),
			Indexed:      p.Indexed,
		}
	}
	return out
}

// Artifact is the subset of a compiler artifact this tool reads
type Artifact struct {
	ContractName string     `json:"contractName,omitempty"`
	ABI          []Fragment `json:"abi"`
}

// Functions returns the function fragments in ABI order
func (a *Artifact) Functions() []Fragment {
	var fns []Fragment
	for _, f := range a.ABI {
		if f.IsFunction() {
			fns = append(fns, f)
		}
	}
	return fns
}

// Function returns the first function fragment with the given name
func (a *Artifact) Function(name string) (Fragment, bool) {
	for _, f := range a.Functions() {
		if f.Name == name {
			return f, true
		}
	}
	return Fragment{}, false
}

// Selectors returns the function selectors in ABI order
func (a *Artifact) Selectors() []routingtable.Selector {
	fns := a.Functions()
	selectors := make([]routingtable.Selector, 0, len(fns))
	for _, f := range fns {
		selectors = append(selectors, f.Selector())
	}
	return selectors
}

// Store reads artifacts laid out as <Dir>/<Name>.sol/<Name>.json
type Store struct {
	Dir string
}

// NewStore creates a store rooted at dir, or DefaultDir when dir is empty
func NewStore(dir string) *Store {
	if dir == "" {
		dir = DefaultDir
	}
	return &Store{Dir: dir}
}

// Path returns the artifact path for a contract. A trailing ".sol" on the
// name is ignored.
func (s *Store) Path(contractName string) string {
	name := strings.TrimSuffix(contractName, ".sol")
	return filepath.Join(s.Dir, name+".sol", name+".json")
}

// Load reads and decodes the artifact of a contract
func (s *Store) Load(contractName string) (*Artifact, error) {
	path := s.Path(contractName)
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s (%s)", ErrArtifactNotFound, contractName, path)
		}
		return nil, fmt.Errorf("failed to read artifact %s: %w", path, err)
	}

	var artifact Artifact
	if err := sonnet.Unmarshal(raw, &artifact); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidArtifact, path, err)
	}
	if artifact.ABI == nil {
		return nil, fmt.Errorf("%w: %s has no abi", ErrInvalidArtifact, path)
	}
	return &artifact, nil
}

// Selectors returns the function selectors of a contract in ABI order
func (s *Store) Selectors(contractName string) ([]routingtable.Selector, error) {
	artifact, err := s.Load(contractName)
	if err != nil {
		return nil, err
	}
	return artifact.Selectors(), nil
}

// InterfaceSelectors returns the selectors of contractName that are also
// declared by interfaceName, in the contract's ABI order.
func (s *Store) InterfaceSelectors(contractName, interfaceName string) ([]routingtable.Selector, error) {
	iface, err := s.Load(interfaceName)
	if err != nil {
		return nil, err
	}
	exposed := routingtable.SetOf(iface.Selectors()...)

	contractSelectors, err := s.Selectors(contractName)
	if err != nil {
		return nil, err
	}

	var selectors []routingtable.Selector
	for _, sel := range contractSelectors {
		if exposed.Has(sel) {
			selectors = append(selectors, sel)
		}
	}
	return selectors, nil
}
