package routingtable

import (
	"encoding/binary"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"github.com/rmacdonaldsmith/diamondcut-go/pkg/routingtable"
)

// buildTable creates a table of n selectors spread over the given number of facets
func buildTable(n, facets int) *SelectorMap {
	entries := make([]Entry, n)
	for i := 0; i < n; i++ {
		var sel routingtable.Selector
		binary.BigEndian.PutUint32(sel[:], uint32(i))
		addr := common.BigToAddress(common.Big1)
		addr[0] = byte(i % facets)
		entries[i] = Entry{Selector: sel, Facet: routingtable.NewFacetRef(addr)}
	}
	return New(entries...)
}

// BenchmarkSelectorMap_Merge measures merging two large tables
func BenchmarkSelectorMap_Merge(b *testing.B) {
	left := buildTable(1000, 10)
	right := buildTable(1000, 10)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := left.Merge(right); err != nil {
			b.Fatalf("Merge failed: %v", err)
		}
	}
}

// BenchmarkSelectorMap_FacetGroups measures grouping performance
func BenchmarkSelectorMap_FacetGroups(b *testing.B) {
	m := buildTable(1000, 25)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = m.FacetGroups()
	}
}

// BenchmarkSelectorMap_RemoveExisting measures the no-op elision pass
func BenchmarkSelectorMap_RemoveExisting(b *testing.B) {
	desired := buildTable(1000, 10)
	deployed := buildTable(500, 10)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = desired.RemoveExisting(deployed)
	}
}
