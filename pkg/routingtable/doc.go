// Package routingtable provides the value types of a diamond's selector routing table.
//
// A diamond contract routes every call by its 4-byte function selector to the
// facet that implements it. This package defines the pieces that table is made of:
//   - Selector: the 4-byte identifier derived from a canonical function signature
//   - FacetRef: the facet a selector routes to, or the explicit deletion marker
//   - SelectorSet: anything that can answer "is this selector present?"
//   - FacetGroup: the selectors sharing one facet, in first-seen order
//
// Selectors have exactly one canonical text form, lowercase "0x" plus eight hex
// digits. Parse accepts any case, Resolve additionally accepts signatures:
//
//	sel, err := routingtable.Resolve("transfer(address,uint256)")
//	if err != nil {
//		return err
//	}
//	fmt.Println(sel) // 0xa9059cbb
//
// The deletion marker is a tagged FacetRef, never a magic address. A facet that
// really lives at the zero address does not compare equal to DeletedFacet():
//
//	routingtable.NewFacetRef(common.Address{}) == routingtable.DeletedFacet() // false
//
// The ordered table itself lives in internal/routingtable.
package routingtable
