package diamondcut

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/rmacdonaldsmith/diamondcut-go/pkg/routingtable"
)

// Plan is the planner output: ordered edits plus the pass-through initializer.
type Plan struct {
	Cuts         []FacetCut
	InitAddress  common.Address
	InitCalldata []byte
}

// NewPlan creates a plan. A nil init yields the zero address and empty call data.
func NewPlan(cuts []FacetCut, init *Init) *Plan {
	plan := &Plan{
		Cuts:         cuts,
		InitCalldata: []byte{},
	}
	if plan.Cuts == nil {
		plan.Cuts = []FacetCut{}
	}
	if init != nil {
		plan.InitAddress = init.Address
		plan.InitCalldata = append(plan.InitCalldata, init.Calldata...)
	}
	return plan
}

// IsEmpty reports whether the plan contains no edits
func (p *Plan) IsEmpty() bool {
	return len(p.Cuts) == 0
}

// Summary lists the selectors touched by a plan, per action
type Summary struct {
	Added    []routingtable.Selector
	Replaced []routingtable.Selector
	Removed  []routingtable.Selector
}

// Summary flattens the cuts into added, replaced and removed selectors.
func (p *Plan) Summary() Summary {
	summary := Summary{
		Added:    []routingtable.Selector{},
		Replaced: []routingtable.Selector{},
		Removed:  []routingtable.Selector{},
	}
	for _, cut := range p.Cuts {
		switch cut.Action {
		case Add:
			summary.Added = append(summary.Added, cut.Selectors...)
		case Replace:
			summary.Replaced = append(summary.Replaced, cut.Selectors...)
		case Remove:
			summary.Removed = append(summary.Removed, cut.Selectors...)
		}
	}
	return summary
}

// CutsFor returns the cuts with the given action, in plan order
func (p *Plan) CutsFor(action Action) []FacetCut {
	var cuts []FacetCut
	for _, cut := range p.Cuts {
		if cut.Action == action {
			cuts = append(cuts, cut)
		}
	}
	return cuts
}
