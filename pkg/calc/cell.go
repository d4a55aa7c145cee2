package calc

// Cell is a record with a fixed set of typed columns. Values written to a
// column are coerced to the column's type; a column that was never written
// reads as its type's default. Writes fire the subscriptions registered on
// the column, in registration order, before returning.
//
// The zero Cell has no columns; use New.
type Cell struct {
	columns []Column
	types   map[string]ColumnType
	data    map[string]any
	refs    map[string][]Subscription
}

// New returns a cell with the given columns. Column order is kept for
// Structure and PlainColumns. A repeated name keeps its first position and
// takes the last type.
func New(columns ...Column) *Cell {
	c := &Cell{
		columns: make([]Column, 0, len(columns)),
		types:   make(map[string]ColumnType, len(columns)),
		data:    make(map[string]any),
		refs:    make(map[string][]Subscription),
	}
	for _, col := range columns {
		if _, ok := c.types[col.Name]; !ok {
			c.columns = append(c.columns, col)
		} else {
			for i := range c.columns {
				if c.columns[i].Name == col.Name {
					c.columns[i].Type = col.Type
				}
			}
		}
		c.types[col.Name] = col.Type
	}
	return c
}

// Structure returns the declared columns in order.
func (c *Cell) Structure() []Column {
	out := make([]Column, len(c.columns))
	copy(out, c.columns)
	return out
}

// Has reports whether column is declared, whether or not it holds a value.
func (c *Cell) Has(column string) bool {
	_, ok := c.types[column]
	return ok
}

// Type returns the declared type of column.
func (c *Cell) Type(column string) (ColumnType, bool) {
	t, ok := c.types[column]
	return t, ok
}

// Get returns the value of column. An untouched column is first set to its
// type's default; reading does not fire subscriptions. Get returns nil for
// undeclared columns.
func (c *Cell) Get(column string) any {
	v, _ := c.Lookup(column)
	return v
}

// Lookup is Get with a flag reporting whether column is declared.
func (c *Cell) Lookup(column string) (any, bool) {
	if !c.Has(column) {
		return nil, false
	}
	return c.materialize(column), true
}

// Set coerces value to the type of column, stores it, and fires the
// column's subscriptions with the previous and new values. It returns an
// *Error with code InvalidArgument when column is undeclared, and otherwise
// the first error returned by a subscription callback. A failing callback
// stops dispatch; the new value stays stored.
func (c *Cell) Set(column string, value any) error {
	t, ok := c.types[column]
	if !ok {
		return invalidColumn("set", column)
	}
	old := c.materialize(column)
	value = coerce(t, value)
	c.data[column] = value
	return c.dispatch(column, old, value)
}

// MustSet is Set for fluent construction; it panics if Set fails.
func (c *Cell) MustSet(column string, value any) *Cell {
	if err := c.Set(column, value); err != nil {
		panic(err)
	}
	return c
}

// materialize returns the stored value of a declared column, storing the
// type default first if the column is untouched.
func (c *Cell) materialize(column string) any {
	if v, ok := c.data[column]; ok {
		return v
	}
	v := DefaultValue(c.types[column])
	c.data[column] = v
	return v
}
