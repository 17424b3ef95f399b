// Package diamondcut defines the contract between the cut planner and its collaborators.
//
// This package describes the inputs and output of one planning run:
//   - Request: the desired facets, deletion instructions and pass-through initializer
//   - LoupeFacet / Loupe: the deployed routing table as reported by the loupe
//   - FacetCut: one Add, Replace or Remove edit for a single facet
//   - Plan: the ordered edits plus initializer address and call data
//
// The Plan shape mirrors the on-chain upgrade call
//
//	diamondCut((address,uint8,bytes4[])[] _diamondCut, address _init, bytes _calldata)
//
// so it can be ABI-encoded without reshaping. Edits are ordered all Adds, then
// all Replaces, then all Removes, and a selector never appears in two edits.
//
// Example usage:
//
//	plan, err := planner.Prepare(req, deployed)
//	if errors.Is(err, diamondcut.ErrConflict) {
//		return err // two facets claim one selector
//	}
//	for _, cut := range plan.Cuts {
//		fmt.Println(cut.Action, cut.Facet, cut.Selectors)
//	}
//
// Planning errors are deterministic and fatal: a plan is either complete or absent.
package diamondcut
