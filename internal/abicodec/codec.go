// Package abicodec encodes edit plans as the arguments of
// diamondCut((address,uint8,bytes4[])[],address,bytes) and decodes them back.
package abicodec

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/rmacdonaldsmith/diamondcut-go/pkg/diamondcut"
	"github.com/rmacdonaldsmith/diamondcut-go/pkg/routingtable"
)

// ErrInvalidEncoding is returned when encoded plan data cannot be decoded
var ErrInvalidEncoding = errors.New("invalid plan encoding")

// wireCut mirrors the IDiamondCut.FacetCut struct
type wireCut struct {
	FacetAddress      common.Address
	Action            uint8
	FunctionSelectors [][4]byte
}

// wirePlan receives the unpacked diamondCut arguments
type wirePlan struct {
	DiamondCut []wireCut
	Init       common.Address
	Calldata   []byte
}

var (
	cutArguments      abi.Arguments
	selectorArguments abi.Arguments
)

func init() {
	cutsType, err := abi.NewType("tuple[]", "struct IDiamondCut.FacetCut[]", []abi.ArgumentMarshaling{
		{Name: "facetAddress", Type: "address"},
		{Name: "action", Type: "uint8", InternalType: "enum IDiamondCut.FacetCutAction"},
		{Name: "functionSelectors", Type: "bytes4[]"},
	})
	if err != nil {
		panic(err)
	}
	addressType, err := abi.NewType("address", "", nil)
	if err != nil {
		panic(err)
	}
	bytesType, err := abi.NewType("bytes", "", nil)
	if err != nil {
		panic(err)
	}
	selectorsType, err := abi.NewType("bytes4[]", "", nil)
	if err != nil {
		panic(err)
	}

	cutArguments = abi.Arguments{
		{Name: "diamondCut", Type: cutsType},
		{Name: "init", Type: addressType},
		{Name: "calldata", Type: bytesType},
	}
	selectorArguments = abi.Arguments{
		{Name: "selectors", Type: selectorsType},
	}
}

// EncodeCut ABI-encodes the plan as the three diamondCut arguments, without
// a function selector.
func EncodeCut(plan *diamondcut.Plan) ([]byte, error) {
	cuts := make([]wireCut, len(plan.Cuts))
	for i, cut := range plan.Cuts {
		if !cut.Action.Valid() {
			return nil, fmt.Errorf("cut %d: unknown action %s", i, cut.Action)
		}
		cuts[i] = wireCut{
			FacetAddress:      cut.FacetAddress(),
			Action:            uint8(cut.Action),
			FunctionSelectors: toWireSelectors(cut.Selectors),
		}
	}

	calldata := plan.InitCalldata
	if calldata == nil {
		calldata = []byte{}
	}
	return cutArguments.Pack(cuts, plan.InitAddress, calldata)
}

// DecodeCut reverses EncodeCut. Remove cuts must carry the zero address.
func DecodeCut(data []byte) (*diamondcut.Plan, error) {
	values, err := cutArguments.Unpack(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidEncoding, err)
	}
	var wire wirePlan
	if err := cutArguments.Copy(&wire, values); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidEncoding, err)
	}

	cuts := make([]diamondcut.FacetCut, len(wire.DiamondCut))
	for i, w := range wire.DiamondCut {
		action := diamondcut.Action(w.Action)
		if !action.Valid() {
			return nil, fmt.Errorf("%w: cut %d has unknown action %d", ErrInvalidEncoding, i, w.Action)
		}
		facet := routingtable.NewFacetRef(w.FacetAddress)
		if action == diamondcut.Remove {
			if w.FacetAddress != (common.Address{}) {
				return nil, fmt.Errorf("%w: remove cut %d targets %s", ErrInvalidEncoding, i, w.FacetAddress.Hex())
			}
			facet = routingtable.DeletedFacet()
		}
		cuts[i] = diamondcut.NewFacetCut(action, facet, fromWireSelectors(w.FunctionSelectors))
	}
	return diamondcut.NewPlan(cuts, &diamondcut.Init{Address: wire.Init, Calldata: wire.Calldata}), nil
}

// EncodeSelectors ABI-encodes a bytes4[] value
func EncodeSelectors(selectors []routingtable.Selector) ([]byte, error) {
	return selectorArguments.Pack(toWireSelectors(selectors))
}

// DecodeSelectors reverses EncodeSelectors
func DecodeSelectors(data []byte) ([]routingtable.Selector, error) {
	values, err := selectorArguments.Unpack(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidEncoding, err)
	}
	var raw [][4]byte
	if err := selectorArguments.Copy(&raw, values); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidEncoding, err)
	}
	return fromWireSelectors(raw), nil
}

// ReadEncoded accepts raw bytes or 0x-prefixed hex text, as written by the
// build command.
func ReadEncoded(raw []byte) ([]byte, error) {
	text := bytes.TrimSpace(raw)
	if len(text) >= 2 && text[0] == '0' && (text[1] == 'x' || text[1] == 'X') {
		data, err := hexutil.Decode("0x" + string(text[2:]))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidEncoding, err)
		}
		return data, nil
	}
	return raw, nil
}

func toWireSelectors(selectors []routingtable.Selector) [][4]byte {
	out := make([][4]byte, len(selectors))
	for i, sel := range selectors {
		out[i] = sel
	}
	return out
}

func fromWireSelectors(raw [][4]byte) []routingtable.Selector {
	out := make([]routingtable.Selector, len(raw))
	for i, sel := range raw {
		out[i] = sel
	}
	return out
}
