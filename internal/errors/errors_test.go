package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorFormatting(t *testing.T) {
	err := New(TypeInput, "bad amount")
	assert.Equal(t, "[INPUT_ERROR] bad amount", err.Error())

	wrapped := Wrap(TypeSettlement, "transfer failed", fmt.Errorf("connection refused"))
	assert.Equal(t, "[SETTLEMENT_ERROR] transfer failed: connection refused", wrapped.Error())
}

func TestUnwrap(t *testing.T) {
	cause := fmt.Errorf("connection refused")
	err := Wrap(TypeSettlement, "transfer failed", cause)
	assert.Equal(t, cause, err.Unwrap())
	assert.Nil(t, New(TypeInput, "x").Unwrap())
}

func TestIsType(t *testing.T) {
	err := AmountExceeded("15 > 10")
	assert.True(t, IsType(err, TypeAmountExceeded))
	assert.False(t, IsType(err, TypeInput))
	assert.False(t, IsType(fmt.Errorf("plain"), TypeInput))
	assert.False(t, IsType(nil, TypeInput))
}

func TestConstructors(t *testing.T) {
	tests := []struct {
		err  *Error
		want Type
	}{
		{err: Input("x"), want: TypeInput},
		{err: AmountExceeded("x"), want: TypeAmountExceeded},
		{err: Execution("x"), want: TypeExecution},
		{err: Settlement("x", nil), want: TypeSettlement},
		{err: SettlementTimeout("x"), want: TypeSettlementTimeout},
		{err: Config("x", nil), want: TypeConfig},
		{err: Internal("x", nil), want: TypeInternal},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.err.Type)
	}

	nf := NotFound("transfer", "0xabc")
	assert.Equal(t, TypeNotFound, nf.Type)
	assert.Contains(t, nf.Message, "0xabc")
}

func TestWithContext(t *testing.T) {
	err := Input("bad amount").WithContext("field", "base_cost")
	require.NotNil(t, err.Context)
	assert.Equal(t, "base_cost", err.Context["field"])
}
