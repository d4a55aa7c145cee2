package calc

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOperand(t *testing.T) {
	tests := []struct {
		in      any
		want    any
		wantErr bool
	}{
		{nil, int64(0), false},
		{true, int64(1), false},
		{false, int64(0), false},
		{uint8(9), int64(9), false},
		{float32(1.5), 1.5, false},
		{" 12 ", int64(12), false},
		{"-0.5", -0.5, false},
		{"1e2", 100.0, false},
		{"", nil, true},
		{"12abc", nil, true},
		{NewArray(), nil, true},
		{New(), nil, true},
	}
	for _, tt := range tests {
		n, err := operand(tt.in)
		if tt.wantErr {
			if !errors.Is(err, ErrNonNumeric) {
				t.Errorf("operand(%#v) error = %v, want ErrNonNumeric", tt.in, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("operand(%#v) unexpected error: %v", tt.in, err)
			continue
		}
		if n.value() != tt.want {
			t.Errorf("operand(%#v) = %#v, want %#v", tt.in, n.value(), tt.want)
		}
	}
}

func TestArith(t *testing.T) {
	assert.Equal(t, int64(5), arith('+', number{i: 2}, number{i: 3}).value())
	assert.Equal(t, 5.5, arith('+', number{i: 2}, number{f: 3.5, isFloat: true}).value())
	assert.Equal(t, int64(-1), arith('-', number{i: 2}, number{i: 3}).value())
	assert.Equal(t, int64(6), arith('*', number{i: 2}, number{i: 3}).value())
}

func TestArithOverflowBecomesFloat(t *testing.T) {
	maxInt := number{i: math.MaxInt64}
	minInt := number{i: math.MinInt64}

	tests := []struct {
		name string
		op   byte
		a, b number
		want any
	}{
		{"add at the bound stays int", '+', maxInt, number{}, int64(math.MaxInt64)},
		{"add past max", '+', maxInt, number{i: 1}, float64(1 << 63)},
		{"add past min", '+', minInt, number{i: -1}, -float64(1 << 63)},
		{"subtract past min", '-', minInt, number{i: 1}, -float64(1 << 63)},
		{"subtract past max", '-', maxInt, number{i: -1}, float64(1 << 63)},
		{"subtract min from min", '-', minInt, minInt, int64(0)},
		{"multiply past max", '*', number{i: 1 << 62}, number{i: 4}, float64(1 << 64)},
		{"negate min", '*', minInt, number{i: -1}, float64(1 << 63)},
		{"min times minus one", '*', number{i: -1}, minInt, float64(1 << 63)},
		{"multiply by zero", '*', maxInt, number{}, int64(0)},
		{"large negative product stays int", '*', number{i: -(1 << 31)}, number{i: 1 << 31}, int64(-(1 << 62))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, arith(tt.op, tt.a, tt.b).value())
		})
	}
}

func TestOperandLargeUnsigned(t *testing.T) {
	n, err := operand(uint64(math.MaxUint64))
	assert.NoError(t, err)
	assert.Equal(t, float64(math.MaxUint64), n.value())

	n, err = operand(uint64(12))
	assert.NoError(t, err)
	assert.Equal(t, int64(12), n.value())
}

func TestToArrayFromTypedMap(t *testing.T) {
	a := toArray(map[string]int{"b": 2, "a": 1})
	assert.Equal(t, []string{"a", "b"}, a.Keys())
	assert.Equal(t, []any{1, 2}, a.Values())

	assert.Equal(t, 0, toArray(map[int]string{1: "x"}).Len())
	assert.Equal(t, 0, toArray(42).Len())
	assert.Equal(t, 0, toArray(nil).Len())
}

func TestToStringFallback(t *testing.T) {
	assert.Equal(t, "Array", toString(NewArray()))
	assert.Equal(t, "Cell", toString(New()))
	assert.Equal(t, "{1}", toString(struct{ N int }{1}))
}
