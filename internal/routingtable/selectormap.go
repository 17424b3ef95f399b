package routingtable

import (
	"fmt"

	"github.com/rmacdonaldsmith/diamondcut-go/pkg/diamondcut"
	"github.com/rmacdonaldsmith/diamondcut-go/pkg/routingtable"
)

// Entry is one selector→facet pair
type Entry struct {
	Selector routingtable.Selector
	Facet    routingtable.FacetRef
}

// SelectorMap is an insertion-ordered selector→facet table.
//
// A SelectorMap is never modified after construction: every transformation
// returns a new table, so tables can be shared freely between planning runs.
// Iteration order is insertion order and survives every transformation.
type SelectorMap struct {
	order  []routingtable.Selector
	facets map[routingtable.Selector]routingtable.FacetRef
}

// New builds a table from entries. A repeated selector keeps its first
// position and its last facet, like re-setting a key in an ordered map.
func New(entries ...Entry) *SelectorMap {
	m := empty(len(entries))
	for _, e := range entries {
		m.set(e.Selector, e.Facet)
	}
	return m
}

// FromFacet routes every selector to one facet
func FromFacet(facet routingtable.FacetRef, selectors ...routingtable.Selector) *SelectorMap {
	m := empty(len(selectors))
	for _, sel := range selectors {
		m.set(sel, facet)
	}
	return m
}

// FromGroups flattens facet groups into a table, in group order
func FromGroups(groups ...routingtable.FacetGroup) *SelectorMap {
	m := empty(0)
	for _, g := range groups {
		for _, sel := range g.Selectors {
			m.set(sel, g.Facet)
		}
	}
	return m
}

func empty(capacity int) *SelectorMap {
	return &SelectorMap{
		order:  make([]routingtable.Selector, 0, capacity),
		facets: make(map[routingtable.Selector]routingtable.FacetRef, capacity),
	}
}

// set is only called while a table is being built
func (m *SelectorMap) set(sel routingtable.Selector, facet routingtable.FacetRef) {
	if _, exists := m.facets[sel]; !exists {
		m.order = append(m.order, sel)
	}
	m.facets[sel] = facet
}

// Len returns the number of selectors in the table
func (m *SelectorMap) Len() int {
	return len(m.order)
}

// Selectors returns the selectors in iteration order
func (m *SelectorMap) Selectors() []routingtable.Selector {
	out := make([]routingtable.Selector, len(m.order))
	copy(out, m.order)
	return out
}

// Entries returns the selector/facet pairs in iteration order
func (m *SelectorMap) Entries() []Entry {
	out := make([]Entry, 0, len(m.order))
	for _, sel := range m.order {
		out = append(out, Entry{Selector: sel, Facet: m.facets[sel]})
	}
	return out
}

// Has reports whether the selector is routed by this table
func (m *SelectorMap) Has(sel routingtable.Selector) bool {
	_, ok := m.facets[sel]
	return ok
}

// Get returns the facet a selector routes to
func (m *SelectorMap) Get(sel routingtable.Selector) (routingtable.FacetRef, bool) {
	facet, ok := m.facets[sel]
	return facet, ok
}

// FacetGroups groups selectors by facet. Groups appear in the order their
// first selector was inserted; selectors keep table order within a group.
func (m *SelectorMap) FacetGroups() []routingtable.FacetGroup {
	index := make(map[routingtable.FacetRef]int)
	var groups []routingtable.FacetGroup
	for _, sel := range m.order {
		facet := m.facets[sel]
		i, ok := index[facet]
		if !ok {
			i = len(groups)
			index[facet] = i
			groups = append(groups, routingtable.FacetGroup{Facet: facet})
		}
		groups[i].Selectors = append(groups[i].Selectors, sel)
	}
	return groups
}

// Filter returns a table with only the pairs the predicate accepts
func (m *SelectorMap) Filter(keep routingtable.Filter) *SelectorMap {
	out := empty(len(m.order))
	for _, sel := range m.order {
		facet := m.facets[sel]
		if keep(sel, facet) {
			out.set(sel, facet)
		}
	}
	return out
}

// Merge returns the union of both tables, receiver entries first.
// A selector assigned to the same facet by both is kept once; a selector
// assigned to two different facets is an ErrConflict.
func (m *SelectorMap) Merge(other *SelectorMap) (*SelectorMap, error) {
	out := empty(len(m.order) + other.Len())
	for _, sel := range m.order {
		out.set(sel, m.facets[sel])
	}
	for _, sel := range other.order {
		facet := other.facets[sel]
		if existing, ok := out.facets[sel]; ok && existing != facet {
			return nil, fmt.Errorf("%w: selector %s claimed by facets %s and %s",
				diamondcut.ErrConflict, sel, existing, facet)
		}
		out.set(sel, facet)
	}
	return out, nil
}

// Restrict keeps only selectors present in keep
func (m *SelectorMap) Restrict(keep routingtable.SelectorSet) *SelectorMap {
	return m.Filter(func(sel routingtable.Selector, _ routingtable.FacetRef) bool {
		return keep.Has(sel)
	})
}

// Remove drops selectors present in drop
func (m *SelectorMap) Remove(drop routingtable.SelectorSet) *SelectorMap {
	return m.Filter(func(sel routingtable.Selector, _ routingtable.FacetRef) bool {
		return !drop.Has(sel)
	})
}

// RemoveExisting drops selectors that other already routes to the same facet
func (m *SelectorMap) RemoveExisting(other *SelectorMap) *SelectorMap {
	return m.Filter(func(sel routingtable.Selector, facet routingtable.FacetRef) bool {
		current, ok := other.Get(sel)
		return !ok || current != facet
	})
}

// ToDeleteSelectors remaps every selector to the deletion marker
func (m *SelectorMap) ToDeleteSelectors() *SelectorMap {
	deleted := routingtable.DeletedFacet()
	out := empty(len(m.order))
	for _, sel := range m.order {
		out.set(sel, deleted)
	}
	return out
}

// Verify that SelectorMap implements the SelectorSet interface at compile time
var _ routingtable.SelectorSet = (*SelectorMap)(nil)
