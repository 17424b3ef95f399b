package diamondcut

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/rmacdonaldsmith/diamondcut-go/pkg/routingtable"
)

// Action is the FacetCutAction enum of the upgrade call
type Action uint8

const (
	// Add routes selectors that are not yet deployed
	Add Action = 0

	// Replace reroutes deployed selectors to a different facet
	Replace Action = 1

	// Remove deletes deployed selectors
	Remove Action = 2
)

// String returns the action name
func (a Action) String() string {
	switch a {
	case Add:
		return "Add"
	case Replace:
		return "Replace"
	case Remove:
		return "Remove"
	default:
		return fmt.Sprintf("Action(%d)", uint8(a))
	}
}

// Valid reports whether the action is one of the three defined values
func (a Action) Valid() bool {
	return a <= Remove
}

// FacetCut is a single edit of the routing table.
type FacetCut struct {
	// Facet is the target facet; always DeletedFacet() for Remove
	Facet routingtable.FacetRef

	// Action is Add, Replace or Remove
	Action Action

	// Selectors are the selectors the edit applies to, in table order
	Selectors []routingtable.Selector
}

// NewFacetCut creates a cut, copying the selectors so later mutation of the
// argument does not leak into the plan.
func NewFacetCut(action Action, facet routingtable.FacetRef, selectors []routingtable.Selector) FacetCut {
	selectorsCopy := make([]routingtable.Selector, len(selectors))
	copy(selectorsCopy, selectors)
	return FacetCut{
		Facet:     facet,
		Action:    action,
		Selectors: selectorsCopy,
	}
}

// FacetAddress returns the address encoded on-chain for this cut
func (c FacetCut) FacetAddress() common.Address {
	return c.Facet.Address()
}

// FacetInput is one desired facet: its address and the selectors it should serve.
type FacetInput struct {
	Address   common.Address
	Selectors []routingtable.Selector
}

// LoupeFacet is one entry of the loupe's facets() result
type LoupeFacet struct {
	FacetAddress      common.Address
	FunctionSelectors []routingtable.Selector
}

// Init is the initializer delegatecall made after the cut is applied
type Init struct {
	Address  common.Address
	Calldata []byte
}

// Request holds everything the planner needs besides the deployed table.
type Request struct {
	// Diamond is the diamond being upgraded; carried for logging only
	Diamond common.Address

	// Facets are the desired facets, in priority order for grouping
	Facets []FacetInput

	// DeleteAllOldMethods removes every deployed selector that no desired facet serves
	DeleteAllOldMethods bool

	// DeleteMethods lists selectors or signatures to remove; ignored when
	// DeleteAllOldMethods is set
	DeleteMethods []string

	// Init is passed through to the plan unchanged; nil means no initializer
	Init *Init
}
