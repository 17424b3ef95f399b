package routingtable

import (
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromSignature_KnownSelectors(t *testing.T) {
	tests := []struct {
		signature string
		want      string
	}{
		{"transfer(address,uint256)", "0xa9059cbb"},
		{"balanceOf(address)", "0x70a08231"},
		{"approve(address,uint256)", "0x095ea7b3"},
		{"totalSupply()", "0x18160ddd"},
		{"owner()", "0x8da5cb5b"},
		{"transferOwnership(address)", "0xf2fde38b"},
		{"supportsInterface(bytes4)", "0x01ffc9a7"},
		{"facets()", "0x7a0ed627"},
		{"diamondCut((address,uint8,bytes4[])[],address,bytes)", "0x1f931c1c"},
	}

	for _, tt := range tests {
		t.Run(tt.signature, func(t *testing.T) {
			assert.Equal(t, tt.want, FromSignature(tt.signature).String())
		})
	}
}

func TestFromSignature_IgnoresWhitespace(t *testing.T) {
	assert.Equal(t, FromSignature("transfer(address,uint256)"), FromSignature("transfer(address, uint256)"))
}

func TestParse_NormalizesCase(t *testing.T) {
	upper, err := Parse("0xA9059CBB")
	require.NoError(t, err)
	lower, err := Parse("0xa9059cbb")
	require.NoError(t, err)

	assert.Equal(t, lower, upper)
	assert.Equal(t, "0xa9059cbb", upper.String())
}

func TestParse_Invalid(t *testing.T) {
	for _, input := range []string{"", "0x", "a9059cbb", "0xa9059cb", "0xa9059cbbff", "0xzz059cbb"} {
		_, err := Parse(input)
		assert.Truef(t, errors.Is(err, ErrInvalidSelector), "input %q: expected ErrInvalidSelector, got %v", input, err)
	}
}

func TestResolve(t *testing.T) {
	fromHex, err := Resolve("0xA9059CBB")
	require.NoError(t, err)
	fromSig, err := Resolve(" transfer(address, uint256) ")
	require.NoError(t, err)
	assert.Equal(t, fromHex, fromSig)

	_, err = Resolve("not a selector")
	assert.ErrorIs(t, err, ErrInvalidSelector)
}

func TestSelector_TextRoundTrip(t *testing.T) {
	var sel Selector
	require.NoError(t, sel.UnmarshalText([]byte("0x70A08231")))
	text, err := sel.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "0x70a08231", string(text))
}

func TestFacetRef_DeletionIsNotZeroAddress(t *testing.T) {
	zero := NewFacetRef(common.Address{})
	deleted := DeletedFacet()

	assert.NotEqual(t, zero, deleted)
	assert.True(t, deleted.IsDeleted())
	assert.False(t, zero.IsDeleted())
	assert.Equal(t, common.Address{}, deleted.Address())
	assert.Equal(t, "<deleted>", deleted.String())
}

func TestNewSet(t *testing.T) {
	set, err := NewSet("0x70a08231", "transfer(address,uint256)")
	require.NoError(t, err)

	assert.True(t, set.Has(MustParse("0x70A08231")))
	assert.True(t, set.Has(MustParse("0xa9059cbb")))
	assert.False(t, set.Has(MustParse("0x18160ddd")))

	_, err = NewSet("???")
	assert.ErrorIs(t, err, ErrInvalidSelector)
}
