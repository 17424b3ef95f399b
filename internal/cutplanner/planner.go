package cutplanner

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/rmacdonaldsmith/diamondcut-go/internal/routingtable"
	"github.com/rmacdonaldsmith/diamondcut-go/pkg/diamondcut"
	rt "github.com/rmacdonaldsmith/diamondcut-go/pkg/routingtable"
)

// Planner computes diamond cuts. It holds no state between calls, so one
// Planner may serve any number of concurrent planning runs.
type Planner struct {
	logger *slog.Logger
}

// New creates a planner. A nil logger uses slog.Default().
func New(logger *slog.Logger) *Planner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Planner{logger: logger}
}

// Prepare plans the edits that take deployed to the state described by req.
// It either returns a complete plan or fails before producing any edit.
func (p *Planner) Prepare(req diamondcut.Request, deployed *routingtable.SelectorMap) (*diamondcut.Plan, error) {
	if deployed == nil {
		deployed = routingtable.New()
	}

	desiredAll, err := desiredSelectors(req.Facets)
	if err != nil {
		return nil, err
	}
	desired := desiredAll.RemoveExisting(deployed)

	var deleted *routingtable.SelectorMap
	if req.DeleteAllOldMethods {
		deleted = deployed.Remove(desiredAll).ToDeleteSelectors()
	} else {
		deleted, err = deletedSelectors(deployed, req.DeleteMethods)
		if err != nil {
			return nil, err
		}
	}

	plan := diamondcut.NewPlan(createCuts(deployed, desired, deleted), req.Init)

	summary := plan.Summary()
	p.logger.Debug("Prepared diamond cut",
		"diamond", req.Diamond.Hex(),
		"deployed_selectors", deployed.Len(),
		"desired_selectors", desiredAll.Len(),
		"unchanged", desiredAll.Len()-desired.Len(),
		"added", len(summary.Added),
		"replaced", len(summary.Replaced),
		"removed", len(summary.Removed),
		"cuts", len(plan.Cuts))

	return plan, nil
}

// DeployedFromLoupe reads the deployed routing table through a loupe
func DeployedFromLoupe(ctx context.Context, loupe diamondcut.Loupe) (*routingtable.SelectorMap, error) {
	facets, err := loupe.Facets(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read loupe: %w", err)
	}
	return FromLoupeFacets(facets), nil
}

// FromLoupeFacets builds the deployed table from loupe data
func FromLoupeFacets(facets []diamondcut.LoupeFacet) *routingtable.SelectorMap {
	groups := make([]rt.FacetGroup, 0, len(facets))
	for _, f := range facets {
		groups = append(groups, rt.FacetGroup{
			Facet:     rt.NewFacetRef(f.FacetAddress),
			Selectors: f.FunctionSelectors,
		})
	}
	return routingtable.FromGroups(groups...)
}

// desiredSelectors merges every facet's selectors into one table
func desiredSelectors(facets []diamondcut.FacetInput) (*routingtable.SelectorMap, error) {
	selectors := routingtable.New()
	for _, facet := range facets {
		var err error
		selectors, err = selectors.Merge(routingtable.FromFacet(rt.NewFacetRef(facet.Address), facet.Selectors...))
		if err != nil {
			return nil, err
		}
	}
	return selectors, nil
}

// deletedSelectors resolves explicit deletions against the deployed table
func deletedSelectors(deployed *routingtable.SelectorMap, deleteMethods []string) (*routingtable.SelectorMap, error) {
	selectors := make([]rt.Selector, 0, len(deleteMethods))
	for _, method := range deleteMethods {
		sel, err := rt.Resolve(method)
		if err != nil {
			return nil, fmt.Errorf("%w: method to delete %q: %v", diamondcut.ErrMalformedInput, method, err)
		}
		if !deployed.Has(sel) {
			return nil, fmt.Errorf("%w '%s' (%s)", diamondcut.ErrUnknownDeletionTarget, method, sel)
		}
		selectors = append(selectors, sel)
	}
	return routingtable.FromFacet(rt.DeletedFacet(), selectors...), nil
}

// createCuts classifies desired selectors against deployed and emits
// Adds, then Replaces, then Removes, one cut per facet group.
func createCuts(deployed, desired, deleted *routingtable.SelectorMap) []diamondcut.FacetCut {
	adds := desired.Remove(deployed)
	replaces := desired.Restrict(deployed)
	removes := deleted.Remove(desired)

	cuts := make([]diamondcut.FacetCut, 0)
	cuts = appendCuts(cuts, diamondcut.Add, adds)
	cuts = appendCuts(cuts, diamondcut.Replace, replaces)
	cuts = appendCuts(cuts, diamondcut.Remove, removes)
	return cuts
}

func appendCuts(cuts []diamondcut.FacetCut, action diamondcut.Action, selectors *routingtable.SelectorMap) []diamondcut.FacetCut {
	for _, group := range selectors.FacetGroups() {
		cuts = append(cuts, diamondcut.NewFacetCut(action, group.Facet, group.Selectors))
	}
	return cuts
}
