package sheet

import (
	"bytes"
	"encoding/json"

	"go.yaml.in/yaml/v3"

	"github.com/mesh-intelligence/calccell/pkg/calc"
)

// Result holds the plain data of a sheet's cells in declaration order. It
// marshals to JSON and YAML as one object keyed by cell name, with columns
// in declaration order.
type Result struct {
	Sheet string
	Cells []CellResult
}

// CellResult is the plain data of one cell.
type CellResult struct {
	Name    string
	Columns []calc.PlainColumn
}

// Data returns the cell's plain data keyed by column.
func (c CellResult) Data() map[string]any {
	out := make(map[string]any, len(c.Columns))
	for _, col := range c.Columns {
		out[col.Name] = col.Value
	}
	return out
}

// Get returns the plain data of the cell called name.
func (r *Result) Get(name string) (map[string]any, bool) {
	for _, c := range r.Cells {
		if c.Name == name {
			return c.Data(), true
		}
	}
	return nil, false
}

// Only returns a result restricted to the cell called name.
func (r *Result) Only(name string) (*Result, bool) {
	for _, c := range r.Cells {
		if c.Name == name {
			return &Result{Sheet: r.Sheet, Cells: []CellResult{c}}, true
		}
	}
	return nil, false
}

// MarshalJSON writes the cells as an ordered JSON object.
func (r *Result) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, c := range r.Cells {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeJSONKey(&buf, c.Name); err != nil {
			return nil, err
		}
		cell, err := c.MarshalJSON()
		if err != nil {
			return nil, err
		}
		buf.Write(cell)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MarshalJSON writes the columns as an ordered JSON object.
func (c CellResult) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, col := range c.Columns {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeJSONKey(&buf, col.Name); err != nil {
			return nil, err
		}
		v, err := json.Marshal(col.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func writeJSONKey(buf *bytes.Buffer, key string) error {
	k, err := json.Marshal(key)
	if err != nil {
		return err
	}
	buf.Write(k)
	buf.WriteByte(':')
	return nil
}

// MarshalYAML builds an ordered mapping node of the cells.
func (r *Result) MarshalYAML() (any, error) {
	root := &yaml.Node{Kind: yaml.MappingNode}
	for _, c := range r.Cells {
		cell := &yaml.Node{Kind: yaml.MappingNode}
		for _, col := range c.Columns {
			v := &yaml.Node{}
			if err := v.Encode(col.Value); err != nil {
				return nil, err
			}
			cell.Content = append(cell.Content, keyNode(col.Name), v)
		}
		root.Content = append(root.Content, keyNode(c.Name), cell)
	}
	return root, nil
}

func keyNode(s string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s}
}
