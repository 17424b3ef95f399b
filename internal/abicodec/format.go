package abicodec

import (
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/sugawarayuuta/sonnet"

	"github.com/rmacdonaldsmith/diamondcut-go/pkg/diamondcut"
)

// Tuples returns the plan in positional form:
// [[[facetAddress, action, [selectors...]], ...], initAddress, calldata].
// Addresses are checksummed, selectors and calldata are lowercase 0x hex.
func Tuples(plan *diamondcut.Plan) []interface{} {
	cuts := make([]interface{}, len(plan.Cuts))
	for i, cut := range plan.Cuts {
		selectors := make([]string, len(cut.Selectors))
		for j, sel := range cut.Selectors {
			selectors[j] = sel.String()
		}
		cuts[i] = []interface{}{cut.FacetAddress().Hex(), uint8(cut.Action), selectors}
	}
	return []interface{}{cuts, plan.InitAddress.Hex(), hexutil.Encode(plan.InitCalldata)}
}

// FormatJSON renders Tuples as indented JSON
func FormatJSON(plan *diamondcut.Plan) ([]byte, error) {
	return sonnet.MarshalIndent(Tuples(plan), "", "  ")
}

// FormatEncoded decodes an encoded plan, raw or hex, and renders it as JSON
func FormatEncoded(raw []byte) ([]byte, error) {
	data, err := ReadEncoded(raw)
	if err != nil {
		return nil, err
	}
	plan, err := DecodeCut(data)
	if err != nil {
		return nil, err
	}
	return FormatJSON(plan)
}
