package routingtable

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"golang.org/x/crypto/sha3"
)

// SelectorLength is the size of a function selector in bytes.
const SelectorLength = 4

var (
	// ErrInvalidSelector is returned when a string is neither a selector nor a signature
	ErrInvalidSelector = errors.New("invalid selector")

	selectorPattern  = regexp.MustCompile(`^0[xX][0-9a-fA-F]{8}$`)
	signaturePattern = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*\(.*\)$`)
)

// Selector is the 4-byte identifier a diamond routes calls by.
type Selector [SelectorLength]byte

// String returns the canonical lowercase hex form, e.g. "0xa9059cbb".
func (s Selector) String() string {
	return hexutil.Encode(s[:])
}

// Bytes returns a copy of the selector bytes.
func (s Selector) Bytes() []byte {
	out := make([]byte, SelectorLength)
	copy(out, s[:])
	return out
}

// MarshalText encodes the selector in canonical form.
func (s Selector) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText accepts a hex selector in any case.
func (s *Selector) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Parse decodes a "0x"-prefixed 8-digit hex selector. Case is ignored.
func Parse(text string) (Selector, error) {
	var sel Selector
	if !selectorPattern.MatchString(text) {
		return sel, fmt.Errorf("%w: %q is not a 0x-prefixed 4-byte hex value", ErrInvalidSelector, text)
	}
	raw, err := hexutil.Decode("0x" + strings.ToLower(text[2:]))
	if err != nil {
		return sel, fmt.Errorf("%w: %q: %v", ErrInvalidSelector, text, err)
	}
	copy(sel[:], raw)
	return sel, nil
}

// MustParse is Parse for constants and tests.
func MustParse(text string) Selector {
	sel, err := Parse(text)
	if err != nil {
		panic(err)
	}
	return sel
}

// FromSignature hashes a canonical function signature such as
// "transfer(address,uint256)" into its selector. Whitespace is stripped before
// hashing; the argument types must already be canonical.
func FromSignature(signature string) Selector {
	canonical := strings.Join(strings.Fields(signature), "")
	hasher := sha3.NewLegacyKeccak256()
	hasher.Write([]byte(canonical))
	digest := hasher.Sum(nil)

	var sel Selector
	copy(sel[:], digest[:SelectorLength])
	return sel
}

// Resolve normalizes either a hex selector or a function signature to a Selector.
func Resolve(selectorOrSignature string) (Selector, error) {
	item := strings.TrimSpace(selectorOrSignature)
	if selectorPattern.MatchString(item) {
		return Parse(item)
	}
	compact := strings.Join(strings.Fields(item), "")
	if signaturePattern.MatchString(compact) {
		return FromSignature(compact), nil
	}
	return Selector{}, fmt.Errorf("%w: expected a selector or a function signature, got %q", ErrInvalidSelector, selectorOrSignature)
}
