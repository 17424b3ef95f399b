package routingtable

import (
	"github.com/ethereum/go-ethereum/common"
)

// FacetKind tags what a FacetRef points at
type FacetKind uint8

const (
	// FacetAddress is a real deployed facet
	FacetAddress FacetKind = iota

	// FacetDeleted marks a selector scheduled for removal
	FacetDeleted
)

// FacetRef names the facet a selector routes to.
// The zero value is a FacetAddress ref to the zero address, which is distinct
// from DeletedFacet().
type FacetRef struct {
	kind FacetKind
	addr common.Address
}

// NewFacetRef creates a reference to a deployed facet
func NewFacetRef(addr common.Address) FacetRef {
	return FacetRef{kind: FacetAddress, addr: addr}
}

// DeletedFacet returns the deletion marker
func DeletedFacet() FacetRef {
	return FacetRef{kind: FacetDeleted}
}

// Kind returns the tag of this reference
func (r FacetRef) Kind() FacetKind {
	return r.kind
}

// IsDeleted reports whether this is the deletion marker
func (r FacetRef) IsDeleted() bool {
	return r.kind == FacetDeleted
}

// Address returns the address placed on-chain for this ref.
// Deletions always use the zero address.
func (r FacetRef) Address() common.Address {
	if r.kind == FacetDeleted {
		return common.Address{}
	}
	return r.addr
}

// String returns the checksummed address, or "<deleted>" for the marker
func (r FacetRef) String() string {
	if r.kind == FacetDeleted {
		return "<deleted>"
	}
	return r.addr.Hex()
}
