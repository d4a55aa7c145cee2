// Package sheet builds graphs of calc cells from a declarative definition and
// replays a sequence of writes through them.
//
// A definition file (YAML, JSON or TOML) lists named cells with their
// columns, links between cell columns, and the steps to apply:
//
//	cells:
//	  - name: order
//	    columns:
//	      - {name: total, type: int}
//	      - {name: lines, type: array}
//	  - name: line1
//	    columns:
//	      - {name: amount, type: int}
//	links:
//	  - {from: line1.amount, to: order.total, op: add}
//	steps:
//	  - {cell: order, column: lines, op: append, value: "@line1"}
//	  - {cell: line1, column: amount, value: 5}
//
// A string value "@name" stands for the cell called name; "@@" escapes a
// literal leading "@".
package sheet

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Link operations.
const (
	LinkAdd      = "add"
	LinkMultiply = "multiply"
)

// Step operations.
const (
	OpSet          = "set"
	OpAppend       = "append"
	OpUniqueAppend = "unique_append"
)

// Definition errors.
var (
	ErrNoCells         = errors.New("definition has no cells")
	ErrInvalidName     = errors.New("invalid cell name")
	ErrDuplicateCell   = errors.New("duplicate cell name")
	ErrInvalidRef      = errors.New("invalid column reference")
	ErrUnknownCell     = errors.New("unknown cell")
	ErrUnknownColumn   = errors.New("unknown column")
	ErrUnknownLinkOp   = errors.New("unknown link operation")
	ErrUnknownStepOp   = errors.New("unknown step operation")
	ErrUnsupportedFile = errors.New("unsupported definition format")
)

// Definition is the decoded form of a sheet file.
type Definition struct {
	Name  string    `mapstructure:"name" json:"name,omitempty" yaml:"name,omitempty"`
	Cells []CellDef `mapstructure:"cells" json:"cells" yaml:"cells"`
	Links []LinkDef `mapstructure:"links" json:"links,omitempty" yaml:"links,omitempty"`
	Steps []StepDef `mapstructure:"steps" json:"steps,omitempty" yaml:"steps,omitempty"`
}

// CellDef declares one named cell.
type CellDef struct {
	Name    string      `mapstructure:"name" json:"name" yaml:"name"`
	Columns []ColumnDef `mapstructure:"columns" json:"columns" yaml:"columns"`
}

// ColumnDef declares one column. Type is a calc type tag; "other" and the
// empty string both mean untyped.
type ColumnDef struct {
	Name string `mapstructure:"name" json:"name" yaml:"name"`
	Type string `mapstructure:"type" json:"type,omitempty" yaml:"type,omitempty"`
}

// LinkDef propagates writes on From into To. From and To are "cell.column"
// references; Op is LinkAdd (default) or LinkMultiply.
type LinkDef struct {
	From string `mapstructure:"from" json:"from" yaml:"from"`
	To   string `mapstructure:"to" json:"to" yaml:"to"`
	Op   string `mapstructure:"op" json:"op,omitempty" yaml:"op,omitempty"`
}

// StepDef is one write. Op defaults to OpSet. Key and Override apply to the
// append operations.
type StepDef struct {
	Op       string `mapstructure:"op" json:"op,omitempty" yaml:"op,omitempty"`
	Cell     string `mapstructure:"cell" json:"cell" yaml:"cell"`
	Column   string `mapstructure:"column" json:"column" yaml:"column"`
	Key      string `mapstructure:"key" json:"key,omitempty" yaml:"key,omitempty"`
	Override bool   `mapstructure:"override" json:"override,omitempty" yaml:"override,omitempty"`
	Value    any    `mapstructure:"value" json:"value,omitempty" yaml:"value,omitempty"`
}

// supportedFormats lists the file extensions Load accepts.
var supportedFormats = map[string]bool{
	"yaml": true,
	"yml":  true,
	"json": true,
	"toml": true,
}

// Load reads a definition file. The format follows the file extension.
func Load(path string) (*Definition, error) {
	format := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	if !supportedFormats[format] {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFile, filepath.Ext(path))
	}

	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read definition %s: %w", path, err)
	}
	return decode(v, path)
}

// Parse reads a definition from r in the given format ("yaml", "json" or
// "toml").
func Parse(r io.Reader, format string) (*Definition, error) {
	format = strings.ToLower(format)
	if !supportedFormats[format] {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFile, format)
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read definition: %w", err)
	}

	v := viper.New()
	v.SetConfigType(format)
	if err := v.ReadConfig(bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("parse definition: %w", err)
	}
	return decode(v, "<input>")
}

func decode(v *viper.Viper, source string) (*Definition, error) {
	var def Definition
	if err := v.Unmarshal(&def); err != nil {
		return nil, fmt.Errorf("decode definition %s: %w", source, err)
	}
	if def.Name == "" && source != "<input>" {
		def.Name = strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
	}
	return &def, nil
}

// ref is a parsed "cell.column" reference.
type ref struct {
	cell   string
	column string
}

func (r ref) String() string { return r.cell + "." + r.column }

// parseRef splits a "cell.column" reference at its first dot.
func parseRef(s string) (ref, error) {
	cell, column, ok := strings.Cut(s, ".")
	if !ok || cell == "" || column == "" {
		return ref{}, fmt.Errorf("%w: %q", ErrInvalidRef, s)
	}
	return ref{cell: cell, column: column}, nil
}
