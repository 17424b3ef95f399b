package cutplanner

import (
	"context"
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rmacdonaldsmith/diamondcut-go/internal/routingtable"
	"github.com/rmacdonaldsmith/diamondcut-go/pkg/diamondcut"
	rt "github.com/rmacdonaldsmith/diamondcut-go/pkg/routingtable"
)

var (
	selA = rt.MustParse("0xaaaaaaaa")
	selB = rt.MustParse("0xbbbbbbbb")
	selC = rt.MustParse("0xcccccccc")
	selD = rt.MustParse("0xdddddddd")

	addr1 = common.HexToAddress("0x1111111111111111111111111111111111111111")
	addr2 = common.HexToAddress("0x2222222222222222222222222222222222222222")
	addr3 = common.HexToAddress("0x3333333333333333333333333333333333333333")
)

func facet(addr common.Address, selectors ...rt.Selector) diamondcut.FacetInput {
	return diamondcut.FacetInput{Address: addr, Selectors: selectors}
}

func deployedTable(facets ...diamondcut.FacetInput) *routingtable.SelectorMap {
	loupe := make([]diamondcut.LoupeFacet, 0, len(facets))
	for _, f := range facets {
		loupe = append(loupe, diamondcut.LoupeFacet{FacetAddress: f.Address, FunctionSelectors: f.Selectors})
	}
	return FromLoupeFacets(loupe)
}

func cut(action diamondcut.Action, addr common.Address, selectors ...rt.Selector) diamondcut.FacetCut {
	return diamondcut.NewFacetCut(action, rt.NewFacetRef(addr), selectors)
}

func removal(selectors ...rt.Selector) diamondcut.FacetCut {
	return diamondcut.NewFacetCut(diamondcut.Remove, rt.DeletedFacet(), selectors)
}

func TestPrepare_EmptyDiamond(t *testing.T) {
	plan, err := New(nil).Prepare(diamondcut.Request{
		Facets: []diamondcut.FacetInput{facet(addr1, selA, selB)},
	}, routingtable.New())
	require.NoError(t, err)

	assert.Equal(t, []diamondcut.FacetCut{cut(diamondcut.Add, addr1, selA, selB)}, plan.Cuts)
	assert.Equal(t, common.Address{}, plan.InitAddress)
	assert.Empty(t, plan.InitCalldata)
}

func TestPrepare_NilDeployedIsEmptyDiamond(t *testing.T) {
	plan, err := New(nil).Prepare(diamondcut.Request{
		Facets: []diamondcut.FacetInput{facet(addr1, selA)},
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, []diamondcut.FacetCut{cut(diamondcut.Add, addr1, selA)}, plan.Cuts)
}

func TestPrepare_InitPassedThrough(t *testing.T) {
	initCall := &diamondcut.Init{Address: addr3, Calldata: []byte{0x12, 0x34}}

	plan, err := New(nil).Prepare(diamondcut.Request{
		Facets: []diamondcut.FacetInput{facet(addr1, selA)},
		Init:   initCall,
	}, routingtable.New())
	require.NoError(t, err)

	assert.Equal(t, addr3, plan.InitAddress)
	assert.Equal(t, []byte{0x12, 0x34}, plan.InitCalldata)
}

func TestPrepare_Idempotent(t *testing.T) {
	deployed := deployedTable(facet(addr1, selA, selB), facet(addr2, selC))

	plan, err := New(nil).Prepare(diamondcut.Request{
		Facets: []diamondcut.FacetInput{facet(addr1, selA, selB), facet(addr2, selC)},
	}, deployed)
	require.NoError(t, err)

	assert.True(t, plan.IsEmpty(), "expected no cuts, got %v", plan.Cuts)

	again, err := New(nil).Prepare(diamondcut.Request{
		Facets:              []diamondcut.FacetInput{facet(addr1, selA, selB), facet(addr2, selC)},
		DeleteAllOldMethods: true,
	}, deployed)
	require.NoError(t, err)
	assert.True(t, again.IsEmpty(), "expected no cuts in delete-all mode, got %v", again.Cuts)
}

func TestPrepare_GroupingDeterminism(t *testing.T) {
	plan, err := New(nil).Prepare(diamondcut.Request{
		Facets: []diamondcut.FacetInput{
			facet(addr1, selA),
			facet(addr2, selB),
			facet(addr1, selC),
		},
	}, routingtable.New())
	require.NoError(t, err)

	assert.Equal(t, []diamondcut.FacetCut{
		cut(diamondcut.Add, addr1, selA, selC),
		cut(diamondcut.Add, addr2, selB),
	}, plan.Cuts)
}

func TestPrepare_AddsThenReplacesThenRemoves(t *testing.T) {
	deployed := deployedTable(facet(addr1, selA, selB, selC))

	plan, err := New(nil).Prepare(diamondcut.Request{
		Facets: []diamondcut.FacetInput{
			facet(addr2, selA, selD),
		},
		DeleteMethods: []string{selC.String()},
	}, deployed)
	require.NoError(t, err)

	assert.Equal(t, []diamondcut.FacetCut{
		cut(diamondcut.Add, addr2, selD),
		cut(diamondcut.Replace, addr2, selA),
		removal(selC),
	}, plan.Cuts)
}

func TestPrepare_Partition(t *testing.T) {
	deployed := deployedTable(facet(addr1, selA, selB), facet(addr2, selC))
	facets := []diamondcut.FacetInput{
		facet(addr1, selA),
		facet(addr3, selB, selD),
		facet(addr2, selC),
	}

	plan, err := New(nil).Prepare(diamondcut.Request{
		Facets:        facets,
		DeleteMethods: []string{selB.String()},
	}, deployed)
	require.NoError(t, err)

	seen := map[rt.Selector]diamondcut.Action{}
	for _, c := range plan.Cuts {
		for _, sel := range c.Selectors {
			prev, dup := seen[sel]
			require.False(t, dup, "selector %s appears in %s and %s", sel, prev, c.Action)
			seen[sel] = c.Action
		}
	}

	assert.Equal(t, diamondcut.Add, seen[selD])
	assert.Equal(t, diamondcut.Replace, seen[selB])
	assert.NotContains(t, seen, selA)
	assert.NotContains(t, seen, selC)
	assert.Empty(t, plan.CutsFor(diamondcut.Remove))
}

func TestPrepare_Conflict(t *testing.T) {
	conflicting := rt.MustParse("0xaabbccdd")

	plan, err := New(nil).Prepare(diamondcut.Request{
		Facets: []diamondcut.FacetInput{
			facet(addr1, selA, conflicting),
			facet(addr2, conflicting),
		},
	}, routingtable.New())

	require.Error(t, err)
	assert.True(t, errors.Is(err, diamondcut.ErrConflict))
	assert.Contains(t, err.Error(), "0xaabbccdd")
	assert.Nil(t, plan)
}

func TestPrepare_SameSelectorSameFacetTwice(t *testing.T) {
	plan, err := New(nil).Prepare(diamondcut.Request{
		Facets: []diamondcut.FacetInput{
			facet(addr1, selA),
			facet(addr1, selA, selB),
		},
	}, routingtable.New())
	require.NoError(t, err)

	assert.Equal(t, []diamondcut.FacetCut{cut(diamondcut.Add, addr1, selA, selB)}, plan.Cuts)
}

func TestPrepare_UnknownDeletionTarget(t *testing.T) {
	deployed := deployedTable(facet(addr1, selA))

	plan, err := New(nil).Prepare(diamondcut.Request{
		DeleteMethods: []string{"transfer(address,uint256)"},
	}, deployed)

	require.ErrorIs(t, err, diamondcut.ErrUnknownDeletionTarget)
	assert.Contains(t, err.Error(), "transfer(address,uint256)")
	assert.Nil(t, plan)
}

func TestPrepare_MalformedDeletion(t *testing.T) {
	_, err := New(nil).Prepare(diamondcut.Request{
		DeleteMethods: []string{"not-a-method"},
	}, deployedTable(facet(addr1, selA)))

	require.ErrorIs(t, err, diamondcut.ErrMalformedInput)
}

func TestPrepare_DeletionBySignatureInInputOrder(t *testing.T) {
	transfer := rt.FromSignature("transfer(address,uint256)")
	owner := rt.FromSignature("owner()")
	deployed := deployedTable(facet(addr1, transfer, owner, selA))

	plan, err := New(nil).Prepare(diamondcut.Request{
		DeleteMethods: []string{"owner()", "0xA9059CBB"},
	}, deployed)
	require.NoError(t, err)

	assert.Equal(t, []diamondcut.FacetCut{removal(owner, transfer)}, plan.Cuts)
	assert.Equal(t, common.Address{}, plan.Cuts[0].FacetAddress())
}

func TestPrepare_DeletionOfReaddedSelectorIsDropped(t *testing.T) {
	deployed := deployedTable(facet(addr1, selA, selB))

	plan, err := New(nil).Prepare(diamondcut.Request{
		Facets:        []diamondcut.FacetInput{facet(addr2, selA)},
		DeleteMethods: []string{selA.String(), selB.String()},
	}, deployed)
	require.NoError(t, err)

	assert.Equal(t, []diamondcut.FacetCut{
		cut(diamondcut.Replace, addr2, selA),
		removal(selB),
	}, plan.Cuts)
}

func TestPrepare_DeleteMethodsIgnoredInDeleteAllMode(t *testing.T) {
	deployed := deployedTable(facet(addr1, selA), facet(addr2, selB))

	plan, err := New(nil).Prepare(diamondcut.Request{
		Facets:              []diamondcut.FacetInput{facet(addr1, selA)},
		DeleteAllOldMethods: true,
		DeleteMethods:       []string{"0xdeadbeef"},
	}, deployed)
	require.NoError(t, err)

	assert.Equal(t, []diamondcut.FacetCut{removal(selB)}, plan.Cuts)
}

func TestPrepare_DeleteAllMode(t *testing.T) {
	deployed := deployedTable(facet(addr1, selA, selC), facet(addr2, selB))

	plan, err := New(nil).Prepare(diamondcut.Request{
		Facets:              []diamondcut.FacetInput{facet(addr1, selA), facet(addr3, selD)},
		DeleteAllOldMethods: true,
	}, deployed)
	require.NoError(t, err)

	assert.Equal(t, []diamondcut.FacetCut{
		cut(diamondcut.Add, addr3, selD),
		removal(selC, selB),
	}, plan.Cuts)

	summary := plan.Summary()
	assert.Equal(t, []rt.Selector{selD}, summary.Added)
	assert.Empty(t, summary.Replaced)
	assert.Equal(t, []rt.Selector{selC, selB}, summary.Removed)
}

func TestPrepare_RepeatableWithoutSideEffects(t *testing.T) {
	deployed := deployedTable(facet(addr1, selA, selB))
	req := diamondcut.Request{
		Facets:              []diamondcut.FacetInput{facet(addr2, selA, selC)},
		DeleteAllOldMethods: true,
	}
	planner := New(nil)

	first, err := planner.Prepare(req, deployed)
	require.NoError(t, err)
	second, err := planner.Prepare(req, deployed)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 2, deployed.Len())
}

type stubLoupe struct {
	facets []diamondcut.LoupeFacet
	err    error
}

func (s stubLoupe) Facets(ctx context.Context) ([]diamondcut.LoupeFacet, error) {
	return s.facets, s.err
}

func TestDeployedFromLoupe(t *testing.T) {
	table, err := DeployedFromLoupe(context.Background(), stubLoupe{facets: []diamondcut.LoupeFacet{
		{FacetAddress: addr1, FunctionSelectors: []rt.Selector{selA, selB}},
		{FacetAddress: addr2, FunctionSelectors: []rt.Selector{selC}},
	}})
	require.NoError(t, err)

	assert.Equal(t, []rt.Selector{selA, selB, selC}, table.Selectors())
	got, ok := table.Get(selC)
	require.True(t, ok)
	assert.Equal(t, rt.NewFacetRef(addr2), got)

	_, err = DeployedFromLoupe(context.Background(), stubLoupe{err: errors.New("boom")})
	assert.ErrorContains(t, err, "boom")
}
