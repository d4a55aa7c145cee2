package journal

import (
	"fmt"
	"math"
	"strconv"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/calccell/pkg/calc"
)

func openJournal(t *testing.T) *Journal {
	t.Helper()
	j, err := Open(nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = j.Close() })
	return j
}

func TestJournalRecordsPropagation(t *testing.T) {
	j := openJournal(t)

	line := calc.New(calc.Col("amount", calc.TypeInt))
	order := calc.New(calc.Col("total", calc.TypeInt), calc.Col("note", calc.TypeString))
	require.NoError(t, j.Watch("line", line))
	require.NoError(t, j.Watch("order", order))
	require.NoError(t, line.RefAdd("amount", order, "total"))

	require.NoError(t, line.Set("amount", 5))
	require.NoError(t, line.Set("amount", 2))

	entries, err := j.Entries()
	require.NoError(t, err)
	require.Len(t, entries, 4)

	type row struct {
		seq      int64
		cell     string
		column   string
		from, to string
	}
	var got []row
	for _, e := range entries {
		got = append(got, row{e.Seq, e.Cell, e.Column, string(e.Old), string(e.New)})
		_, err := uuid.Parse(e.EntryID)
		assert.NoError(t, err)
		assert.False(t, e.CreatedAt.IsZero())
	}
	assert.Equal(t, []row{
		{1, "line", "amount", "0", "5"},
		{2, "order", "total", "0", "5"},
		{3, "line", "amount", "5", "2"},
		{4, "order", "total", "5", "2"},
	}, got)

	orderEntries, err := j.EntriesFor("order")
	require.NoError(t, err)
	assert.Len(t, orderEntries, 2)

	n, err := j.Len()
	require.NoError(t, err)
	assert.Equal(t, 4, n)
}

func TestJournalRecordsPlainValues(t *testing.T) {
	j := openJournal(t)

	child := calc.New(calc.Col("v", calc.TypeInt))
	parent := calc.New(calc.Col("items", calc.TypeArray))
	require.NoError(t, j.Watch("parent", parent))
	require.NoError(t, parent.Append("items", child))

	entries, err := j.Entries()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.JSONEq(t, `[]`, string(entries[0].Old))
	assert.JSONEq(t, `[{"v":0}]`, string(entries[0].New))
}

func TestJournalWatchErrors(t *testing.T) {
	j := openJournal(t)
	c := calc.New(calc.Col("x", calc.TypeInt))

	assert.ErrorIs(t, j.Watch("", c), ErrInvalidName)
	require.NoError(t, j.Watch("c", c))
	assert.ErrorIs(t, j.Watch("c", c), ErrAlreadyWatch)
}

func TestJournalEmpty(t *testing.T) {
	j := openJournal(t)
	entries, err := j.Entries()
	require.NoError(t, err)
	assert.NotNil(t, entries)
	assert.Empty(t, entries)
}

func TestJournalClosed(t *testing.T) {
	j, err := Open(nil)
	require.NoError(t, err)
	c := calc.New(calc.Col("x", calc.TypeInt))
	require.NoError(t, j.Watch("c", c))

	require.NoError(t, j.Close())
	require.NoError(t, j.Close(), "Close is idempotent")

	_, err = j.Entries()
	assert.ErrorIs(t, err, ErrClosed)
	_, err = j.Len()
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, j.Watch("d", c), ErrClosed)
	require.NoError(t, c.Set("x", 1), "a closed journal stops recording without failing writes")
	assert.Equal(t, int64(1), c.Get("x"))
}

func TestJournalUnencodableValues(t *testing.T) {
	j := openJournal(t)

	c := calc.New(calc.Col("f", calc.TypeFloat), calc.Col("o", calc.TypeOther))
	total := calc.New(calc.Col("sum", calc.TypeFloat))
	require.NoError(t, j.Watch("c", c))
	require.NoError(t, c.RefAdd("f", total, "sum"))

	require.NoError(t, c.Set("f", 2.0))
	require.NoError(t, c.Set("f", math.NaN()))
	assert.True(t, math.IsNaN(total.Get("sum").(float64)), "links after the journal still run")
	require.NoError(t, c.Set("f", 1.0))

	ch := make(chan int)
	require.NoError(t, c.Set("o", ch))
	assert.Equal(t, ch, c.Get("o"))

	entries, err := j.Entries()
	require.NoError(t, err)
	require.Len(t, entries, 4)
	assert.Equal(t, `"NaN"`, string(entries[1].New))
	assert.Equal(t, `"NaN"`, string(entries[2].Old))
	assert.Equal(t, "1", string(entries[2].New))
	assert.Equal(t, "null", string(entries[3].Old))
	assert.Equal(t, strconv.Quote(fmt.Sprint(ch)), string(entries[3].New))
}
