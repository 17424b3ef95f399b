package routingtable

import (
	"fmt"
)

// SelectorSet answers membership queries over selectors.
// Both the ordered selector table and Set implement it, so restrict/remove
// operations accept either.
type SelectorSet interface {
	// Has reports whether the selector is present.
	Has(selector Selector) bool
}

// Filter decides whether a selector/facet pair is kept by a table filter
type Filter func(selector Selector, facet FacetRef) bool

// FacetGroup is the ordered list of selectors routed to one facet
type FacetGroup struct {
	// Facet is the shared facet reference
	Facet FacetRef

	// Selectors are in the order they were first inserted into the table
	Selectors []Selector
}

// Set is an unordered selector set
type Set map[Selector]struct{}

// NewSet builds a Set from selectors or signatures, normalizing each through Resolve.
func NewSet(items ...string) (Set, error) {
	set := make(Set, len(items))
	for _, item := range items {
		sel, err := Resolve(item)
		if err != nil {
			return nil, fmt.Errorf("selector set: %w", err)
		}
		set[sel] = struct{}{}
	}
	return set, nil
}

// SetOf builds a Set from already-resolved selectors
func SetOf(selectors ...Selector) Set {
	set := make(Set, len(selectors))
	for _, sel := range selectors {
		set[sel] = struct{}{}
	}
	return set
}

// Has reports whether the selector is in the set
func (s Set) Has(selector Selector) bool {
	_, ok := s[selector]
	return ok
}

// Verify that Set implements the SelectorSet interface at compile time
var _ SelectorSet = Set(nil)
