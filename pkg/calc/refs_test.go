package calc

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRefCallbackOrder(t *testing.T) {
	src := New(Col("x", TypeInt))
	dst := New(Col("y", TypeInt))

	type call struct {
		name     string
		from, to any
	}
	var calls []call
	record := func(name string) Callback {
		return func(oldValue, newValue any, ref *Cell, refColumn string, source *Cell) error {
			assert.Same(t, dst, ref)
			assert.Equal(t, "y", refColumn)
			assert.Same(t, src, source)
			calls = append(calls, call{name, oldValue, newValue})
			return nil
		}
	}

	require.NoError(t, src.RefCallback("x", dst, "y", record("A")))
	require.NoError(t, src.RefCallback("x", dst, "y", record("B")))
	require.NoError(t, src.Set("x", "7"))

	assert.Equal(t, []call{
		{"A", int64(0), int64(7)},
		{"B", int64(0), int64(7)},
	}, calls)
}

func TestRefCallbackNoDeduplication(t *testing.T) {
	src := New(Col("x", TypeInt))
	fired := 0
	cb := func(_, _ any, _ *Cell, _ string, _ *Cell) error {
		fired++
		return nil
	}
	require.NoError(t, src.RefCallback("x", src, "x", cb))
	require.NoError(t, src.RefCallback("x", src, "x", cb))
	require.NoError(t, src.Set("x", 1))
	assert.Equal(t, 2, fired)
	assert.Len(t, src.Subscriptions("x"), 2)
	assert.Empty(t, src.Subscriptions("missing"))
}

func TestRefCallbackUndeclaredColumn(t *testing.T) {
	src := New(Col("x", TypeInt))
	err := src.RefCallback("nope", src, "x", func(_, _ any, _ *Cell, _ string, _ *Cell) error { return nil })
	assert.ErrorIs(t, err, ErrInvalidArgument)
	assert.ErrorIs(t, err, ErrInvalidColumn)

	assert.ErrorIs(t, src.RefAdd("nope", src, "x"), ErrInvalidColumn)
	assert.ErrorIs(t, src.RefMultiply("nope", src, "x"), ErrInvalidColumn)
}

func TestCallbackErrorAbortsDispatch(t *testing.T) {
	src := New(Col("x", TypeInt))
	boom := errors.New("boom")
	var order []string

	require.NoError(t, src.RefCallback("x", src, "x", func(_, _ any, _ *Cell, _ string, _ *Cell) error {
		order = append(order, "first")
		return boom
	}))
	require.NoError(t, src.RefCallback("x", src, "x", func(_, _ any, _ *Cell, _ string, _ *Cell) error {
		order = append(order, "second")
		return nil
	}))

	err := src.Set("x", 3)
	assert.Same(t, boom, err)
	assert.Equal(t, []string{"first"}, order)
	assert.Equal(t, int64(3), src.Get("x"), "the write itself is kept")
}

func TestRefAdd(t *testing.T) {
	s := New(Col("x", TypeInt))
	tc := New(Col("total", TypeInt))
	require.NoError(t, tc.Set("total", 10))
	require.NoError(t, s.RefAdd("x", tc, "total"))

	require.NoError(t, s.Set("x", 5))
	assert.Equal(t, int64(15), tc.Get("total"))

	require.NoError(t, s.Set("x", 2))
	assert.Equal(t, int64(12), tc.Get("total"))
}

func TestRefAddSaturatesIntTarget(t *testing.T) {
	s := New(Col("x", TypeInt))
	tc := New(Col("total", TypeInt))
	require.NoError(t, tc.Set("total", int64(math.MaxInt64)))
	require.NoError(t, s.RefAdd("x", tc, "total"))

	require.NoError(t, s.Set("x", 1))
	assert.Equal(t, int64(math.MaxInt64), tc.Get("total"))

	fc := New(Col("total", TypeFloat))
	require.NoError(t, fc.Set("total", int64(math.MaxInt64)))
	require.NoError(t, s.RefAdd("x", fc, "total"))
	require.NoError(t, s.Set("x", 3))
	assert.Equal(t, float64(1<<63), fc.Get("total"))
}

func TestRefAddOrderTotal(t *testing.T) {
	order := New(Col("total", TypeFloat))
	lines := []*Cell{
		New(Col("amount", TypeFloat)),
		New(Col("amount", TypeFloat)),
	}
	for _, l := range lines {
		require.NoError(t, l.RefAdd("amount", order, "total"))
	}

	require.NoError(t, lines[0].Set("amount", 2.5))
	require.NoError(t, lines[1].Set("amount", "4"))
	assert.Equal(t, 6.5, order.Get("total"))

	require.NoError(t, lines[0].Set("amount", 0))
	assert.Equal(t, 4.0, order.Get("total"))
}

func TestRefAddChain(t *testing.T) {
	line := New(Col("amount", TypeInt))
	order := New(Col("total", TypeInt))
	customer := New(Col("spent", TypeInt))
	require.NoError(t, line.RefAdd("amount", order, "total"))
	require.NoError(t, order.RefAdd("total", customer, "spent"))
	require.NoError(t, customer.Set("spent", 100))

	require.NoError(t, line.Set("amount", 30))
	assert.Equal(t, int64(30), order.Get("total"))
	assert.Equal(t, int64(130), customer.Get("spent"))
}

func TestRefAddCoercesIntoTarget(t *testing.T) {
	src := New(Col("x", TypeFloat))
	dst := New(Col("n", TypeInt), Col("s", TypeString))
	require.NoError(t, dst.Set("s", "1"))
	require.NoError(t, src.RefAdd("x", dst, "n"))
	require.NoError(t, src.RefAdd("x", dst, "s"))

	require.NoError(t, src.Set("x", 2.75))
	assert.Equal(t, int64(2), dst.Get("n"))
	assert.Equal(t, "3.75", dst.Get("s"))
}

func TestRefAddUndeclaredTarget(t *testing.T) {
	src := New(Col("x", TypeInt))
	dst := New(Col("n", TypeInt))
	require.NoError(t, src.RefAdd("x", dst, "missing"))

	err := src.Set("x", 1)
	assert.ErrorIs(t, err, ErrInvalidColumn)
}

func TestRefAddNonNumericTarget(t *testing.T) {
	src := New(Col("x", TypeInt))
	dst := New(Col("s", TypeString))
	require.NoError(t, dst.Set("s", "n/a"))
	require.NoError(t, src.RefAdd("x", dst, "s"))

	assert.ErrorIs(t, src.Set("x", 1), ErrNonNumeric)
	assert.Equal(t, "n/a", dst.Get("s"))
}

func TestRefAddNonNumeric(t *testing.T) {
	src := New(Col("x", TypeArray))
	dst := New(Col("n", TypeInt))
	require.NoError(t, src.RefAdd("x", dst, "n"))

	err := src.Append("x", 1)
	assert.ErrorIs(t, err, ErrNonNumeric)
	assert.Equal(t, int64(0), dst.Get("n"))
}

func TestRefMultiplyUsesDelta(t *testing.T) {
	s := New(Col("x", TypeInt))
	tc := New(Col("product", TypeInt))
	require.NoError(t, tc.Set("product", 3))
	require.NoError(t, s.RefMultiply("x", tc, "product"))

	require.NoError(t, s.Set("x", 4)) // delta 4
	assert.Equal(t, int64(12), tc.Get("product"))

	require.NoError(t, s.Set("x", 6)) // delta 2, not the new value 6
	assert.Equal(t, int64(24), tc.Get("product"))

	require.NoError(t, s.Set("x", 6)) // delta 0
	assert.Equal(t, int64(0), tc.Get("product"))
}

func TestRefAddSelfLink(t *testing.T) {
	c := New(Col("x", TypeInt), Col("twice", TypeInt))
	require.NoError(t, c.RefAdd("x", c, "twice"))
	require.NoError(t, c.RefAdd("x", c, "twice"))

	require.NoError(t, c.Set("x", 4))
	assert.Equal(t, int64(8), c.Get("twice"))
}
