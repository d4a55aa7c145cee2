package calc

// PlainColumn is one column of a cell's plain-data form.
type PlainColumn struct {
	Name  string
	Value any
}

// ToPlainData returns the cell as nested plain data keyed by column name.
// Every declared column is included, untouched ones with their default.
// Nested cells become maps, arrays become []any when their keys are
// "0".."n-1" in order and map[string]any otherwise, and both are converted
// recursively, so the result holds no *Cell or *Array at any depth.
func (c *Cell) ToPlainData() map[string]any {
	out := make(map[string]any, len(c.columns))
	for _, col := range c.PlainColumns() {
		out[col.Name] = col.Value
	}
	return out
}

// PlainColumns is ToPlainData in declaration order.
func (c *Cell) PlainColumns() []PlainColumn {
	out := make([]PlainColumn, 0, len(c.columns))
	for _, col := range c.columns {
		out = append(out, PlainColumn{
			Name:  col.Name,
			Value: Plain(c.materialize(col.Name)),
		})
	}
	return out
}

// Plain converts a column value to plain data. Values other than *Cell and
// *Array are returned unchanged. A nil *Cell is nil.
func Plain(v any) any {
	switch x := v.(type) {
	case *Cell:
		if x == nil {
			return nil
		}
		return x.ToPlainData()
	case *Array:
		if x.IsList() {
			out := make([]any, 0, x.Len())
			for _, e := range x.All() {
				out = append(out, Plain(e))
			}
			return out
		}
		out := make(map[string]any, x.Len())
		for k, e := range x.All() {
			out[k] = Plain(e)
		}
		return out
	default:
		return v
	}
}
