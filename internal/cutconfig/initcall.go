package cutconfig

import (
	"errors"
	"fmt"
	"math/big"
	"reflect"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"gopkg.in/yaml.v3"

	"github.com/rmacdonaldsmith/diamondcut-go/internal/artifacts"
	"github.com/rmacdonaldsmith/diamondcut-go/pkg/diamondcut"
)

var (
	// ErrInitMethodNotFound is returned when the init contract has no such method
	ErrInitMethodNotFound = errors.New("init method not found")
	// ErrInitArgument is returned when an init argument does not fit its ABI type
	ErrInitArgument = errors.New("invalid init argument")
)

var bigIntType = reflect.TypeOf((*big.Int)(nil))

// BuildCalldata returns the initializer call data. Explicit calldata wins;
// otherwise Method is encoded with Args against the Contract artifact, and
// with neither the call data is empty.
func (c *InitConfig) BuildCalldata(store *artifacts.Store) ([]byte, error) {
	if c.HasCalldata() {
		data, err := hexutil.Decode(c.Calldata)
		if err != nil {
			return nil, fmt.Errorf("%w: calldata: %v", ErrInitArgument, err)
		}
		return data, nil
	}
	if c.Contract == "" || c.Method == "" {
		return []byte{}, nil
	}

	artifact, err := store.Load(c.Contract)
	if err != nil {
		return nil, err
	}
	fn, ok := artifact.Function(c.Method)
	if !ok {
		return nil, fmt.Errorf("%w: %s in %s ABI", ErrInitMethodNotFound, c.Method, c.Contract)
	}
	args, err := fn.Arguments()
	if err != nil {
		return nil, err
	}
	if len(args) != len(c.Args) {
		return nil, fmt.Errorf("%w: %s expects %d arguments, got %d", ErrInitArgument, fn.Signature(), len(args), len(c.Args))
	}

	values := make([]interface{}, len(args))
	for i, arg := range args {
		values[i], err = convertArg(arg.Type, &c.Args[i])
		if err != nil {
			return nil, fmt.Errorf("%s argument %d: %w", fn.Signature(), i, err)
		}
	}
	packed, err := args.Pack(values...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInitArgument, err)
	}

	selector := fn.Selector()
	return append(selector.Bytes(), packed...), nil
}

// ResolveInit returns the initializer to pass through to the plan, or nil
// when none is configured.
func (c *Config) ResolveInit(store *artifacts.Store) (*diamondcut.Init, error) {
	if c.Init == nil {
		return nil, nil
	}
	if c.Init.Address == "" {
		return nil, ErrMissingInitAddress
	}
	if !common.IsHexAddress(c.Init.Address) {
		return nil, fmt.Errorf("%w: init address %q", ErrInvalidAddress, c.Init.Address)
	}
	calldata, err := c.Init.BuildCalldata(store)
	if err != nil {
		return nil, err
	}
	return &diamondcut.Init{Address: common.HexToAddress(c.Init.Address), Calldata: calldata}, nil
}

// convertArg turns a config node into the Go value go-ethereum packs for typ
func convertArg(typ abi.Type, node *yaml.Node) (interface{}, error) {
	switch typ.T {
	case abi.AddressTy:
		if node.Kind != yaml.ScalarNode || !common.IsHexAddress(node.Value) {
			return nil, fmt.Errorf("%w: expected address, got %q", ErrInitArgument, node.Value)
		}
		return common.HexToAddress(node.Value), nil

	case abi.BoolTy:
		var b bool
		if err := node.Decode(&b); err != nil {
			return nil, fmt.Errorf("%w: expected bool, got %q", ErrInitArgument, node.Value)
		}
		return b, nil

	case abi.StringTy:
		if node.Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("%w: expected string", ErrInitArgument)
		}
		return node.Value, nil

	case abi.BytesTy:
		data, err := hexutil.Decode(node.Value)
		if err != nil {
			return nil, fmt.Errorf("%w: expected hex bytes, got %q", ErrInitArgument, node.Value)
		}
		return data, nil

	case abi.FixedBytesTy:
		data, err := hexutil.Decode(node.Value)
		if err != nil || len(data) != typ.Size {
			return nil, fmt.Errorf("%w: expected %d hex bytes, got %q", ErrInitArgument, typ.Size, node.Value)
		}
		value := reflect.New(typ.GetType()).Elem()
		reflect.Copy(value, reflect.ValueOf(data))
		return value.Interface(), nil

	case abi.IntTy, abi.UintTy:
		return convertInteger(typ, node)

	case abi.SliceTy, abi.ArrayTy:
		if node.Kind != yaml.SequenceNode {
			return nil, fmt.Errorf("%w: expected a list for %s", ErrInitArgument, typ.String())
		}
		n := len(node.Content)
		var value reflect.Value
		if typ.T == abi.ArrayTy {
			if n != typ.Size {
				return nil, fmt.Errorf("%w: %s expects %d elements, got %d", ErrInitArgument, typ.String(), typ.Size, n)
			}
			value = reflect.New(typ.GetType()).Elem()
		} else {
			value = reflect.MakeSlice(typ.GetType(), n, n)
		}
		for i, child := range node.Content {
			elem, err := convertArg(*typ.Elem, child)
			if err != nil {
				return nil, fmt.Errorf("element %d: %w", i, err)
			}
			value.Index(i).Set(reflect.ValueOf(elem))
		}
		return value.Interface(), nil

	case abi.TupleTy:
		return convertTuple(typ, node)

	default:
		return nil, fmt.Errorf("%w: unsupported type %s", ErrInitArgument, typ.String())
	}
}

func convertInteger(typ abi.Type, node *yaml.Node) (interface{}, error) {
	n, ok := new(big.Int).SetString(node.Value, 0)
	if node.Kind != yaml.ScalarNode || !ok {
		return nil, fmt.Errorf("%w: expected integer, got %q", ErrInitArgument, node.Value)
	}
	if typ.T == abi.UintTy && n.Sign() < 0 {
		return nil, fmt.Errorf("%w: %s cannot be negative", ErrInitArgument, typ.String())
	}

	goType := typ.GetType()
	if goType == bigIntType {
		return n, nil
	}
	value := reflect.New(goType).Elem()
	if typ.T == abi.UintTy {
		if !n.IsUint64() || value.OverflowUint(n.Uint64()) {
			return nil, fmt.Errorf("%w: %s overflows %s", ErrInitArgument, node.Value, typ.String())
		}
		value.SetUint(n.Uint64())
	} else {
		if !n.IsInt64() || value.OverflowInt(n.Int64()) {
			return nil, fmt.Errorf("%w: %s overflows %s", ErrInitArgument, node.Value, typ.String())
		}
		value.SetInt(n.Int64())
	}
	return value.Interface(), nil
}

// convertTuple accepts either a positional list or a mapping keyed by component name
func convertTuple(typ abi.Type, node *yaml.Node) (interface{}, error) {
	value := reflect.New(typ.TupleType).Elem()
	children := make([]*yaml.Node, len(typ.TupleElems))

	switch node.Kind {
	case yaml.SequenceNode:
		if len(node.Content) != len(typ.TupleElems) {
			return nil, fmt.Errorf("%w: %s expects %d components, got %d", ErrInitArgument, typ.String(), len(typ.TupleElems), len(node.Content))
		}
		copy(children, node.Content)
	case yaml.MappingNode:
		byName := make(map[string]*yaml.Node, len(node.Content)/2)
		for i := 0; i+1 < len(node.Content); i += 2 {
			byName[node.Content[i].Value] = node.Content[i+1]
		}
		for i, name := range typ.TupleRawNames {
			child, ok := byName[name]
			if !ok {
				return nil, fmt.Errorf("%w: %s is missing component %q", ErrInitArgument, typ.String(), name)
			}
			children[i] = child
		}
	default:
		return nil, fmt.Errorf("%w: expected a list or mapping for %s", ErrInitArgument, typ.String())
	}

	for i, elemType := range typ.TupleElems {
		elem, err := convertArg(*elemType, children[i])
		if err != nil {
			return nil, fmt.Errorf("component %d: %w", i, err)
		}
		value.Field(i).Set(reflect.ValueOf(elem))
	}
	return value.Interface(), nil
}
