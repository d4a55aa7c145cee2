package sheet

import (
	"fmt"
	"strings"

	"github.com/hashicorp/go-hclog"

	"github.com/mesh-intelligence/calccell/internal/journal"
	"github.com/mesh-intelligence/calccell/pkg/calc"
)

// Sheet is a built definition: named cells wired with their links.
type Sheet struct {
	def     *Definition
	names   []string
	cells   map[string]*calc.Cell
	logger  hclog.Logger
	journal *journal.Journal
}

// Option configures Build.
type Option func(*Sheet)

// WithLogger sets the logger. The default discards output.
func WithLogger(l hclog.Logger) Option {
	return func(s *Sheet) { s.logger = l }
}

// WithJournal records every write on the sheet's cells in j. Cells are
// watched before links are registered, so a write is journaled before the
// writes it propagates.
func WithJournal(j *journal.Journal) Option {
	return func(s *Sheet) { s.journal = j }
}

// Build validates def and constructs its cells and links in declaration
// order. Steps are not applied; see Run.
func Build(def *Definition, opts ...Option) (*Sheet, error) {
	s := &Sheet{
		def:    def,
		cells:  make(map[string]*calc.Cell, len(def.Cells)),
		logger: hclog.NewNullLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}

	if len(def.Cells) == 0 {
		return nil, ErrNoCells
	}
	for i, cd := range def.Cells {
		if err := s.addCell(cd); err != nil {
			return nil, fmt.Errorf("cell %d: %w", i, err)
		}
	}
	for i, ld := range def.Links {
		if err := s.addLink(ld); err != nil {
			return nil, fmt.Errorf("link %d (%s -> %s): %w", i, ld.From, ld.To, err)
		}
	}

	s.logger.Debug("sheet built", "sheet", def.Name, "cells", len(s.names), "links", len(def.Links))
	return s, nil
}

func (s *Sheet) addCell(cd CellDef) error {
	if cd.Name == "" || strings.ContainsAny(cd.Name, ".@") {
		return fmt.Errorf("%w: %q", ErrInvalidName, cd.Name)
	}
	if _, ok := s.cells[cd.Name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateCell, cd.Name)
	}

	columns := make([]calc.Column, 0, len(cd.Columns))
	for _, col := range cd.Columns {
		t, ok := calc.ParseColumnType(col.Type)
		if !ok {
			s.logger.Warn("unrecognized column type, storing untyped", "cell", cd.Name, "column", col.Name, "type", col.Type)
		}
		columns = append(columns, calc.Col(col.Name, t))
	}

	c := calc.New(columns...)
	if s.journal != nil {
		if err := s.journal.Watch(cd.Name, c); err != nil {
			return err
		}
	}
	s.cells[cd.Name] = c
	s.names = append(s.names, cd.Name)
	return nil
}

func (s *Sheet) addLink(ld LinkDef) error {
	from, err := s.resolveRef(ld.From)
	if err != nil {
		return err
	}
	to, err := s.resolveRef(ld.To)
	if err != nil {
		return err
	}

	src, dst := s.cells[from.cell], s.cells[to.cell]
	switch strings.ToLower(ld.Op) {
	case "", LinkAdd:
		return src.RefAdd(from.column, dst, to.column)
	case LinkMultiply:
		return src.RefMultiply(from.column, dst, to.column)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownLinkOp, ld.Op)
	}
}

// resolveRef parses a "cell.column" reference and checks both parts exist.
func (s *Sheet) resolveRef(text string) (ref, error) {
	r, err := parseRef(text)
	if err != nil {
		return ref{}, err
	}
	c, ok := s.cells[r.cell]
	if !ok {
		return ref{}, fmt.Errorf("%w: %s", ErrUnknownCell, r.cell)
	}
	if !c.Has(r.column) {
		return ref{}, fmt.Errorf("%w: %s", ErrUnknownColumn, r)
	}
	return r, nil
}

// Name returns the definition's name.
func (s *Sheet) Name() string { return s.def.Name }

// Names returns the cell names in declaration order.
func (s *Sheet) Names() []string {
	out := make([]string, len(s.names))
	copy(out, s.names)
	return out
}

// Cell returns the cell called name.
func (s *Sheet) Cell(name string) (*calc.Cell, bool) {
	c, ok := s.cells[name]
	return c, ok
}

// Run applies the definition's steps in order and returns the plain data of
// every cell. The first failing step stops the run; its error names the
// step.
func (s *Sheet) Run() (*Result, error) {
	for i, st := range s.def.Steps {
		if err := s.apply(st); err != nil {
			return nil, fmt.Errorf("step %d (%s %s.%s): %w", i, stepOp(st), st.Cell, st.Column, err)
		}
		s.logger.Debug("step applied", "step", i, "op", stepOp(st), "cell", st.Cell, "column", st.Column)
	}
	s.logger.Info("sheet evaluated", "sheet", s.def.Name, "steps", len(s.def.Steps))
	return s.Result(), nil
}

// Result snapshots the plain data of every cell without applying steps.
func (s *Sheet) Result() *Result {
	r := &Result{Sheet: s.def.Name}
	for _, name := range s.names {
		r.Cells = append(r.Cells, CellResult{
			Name:    name,
			Columns: s.cells[name].PlainColumns(),
		})
	}
	return r
}

func stepOp(st StepDef) string {
	if st.Op == "" {
		return OpSet
	}
	return strings.ToLower(st.Op)
}

func (s *Sheet) apply(st StepDef) error {
	c, ok := s.cells[st.Cell]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownCell, st.Cell)
	}
	value, err := s.resolveValue(st.Value)
	if err != nil {
		return err
	}

	switch stepOp(st) {
	case OpSet:
		return c.Set(st.Column, value)
	case OpAppend:
		return c.AppendKey(st.Column, st.Key, value)
	case OpUniqueAppend:
		return c.UniqueAppendKey(st.Column, st.Key, value, st.Override)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownStepOp, st.Op)
	}
}

// resolveValue replaces "@name" strings with the named cells, descending
// into lists and maps.
func (s *Sheet) resolveValue(v any) (any, error) {
	switch x := v.(type) {
	case string:
		if strings.HasPrefix(x, "@@") {
			return x[1:], nil
		}
		if name, ok := strings.CutPrefix(x, "@"); ok {
			c, ok := s.cells[name]
			if !ok {
				return nil, fmt.Errorf("%w: %s", ErrUnknownCell, name)
			}
			return c, nil
		}
		return x, nil
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			r, err := s.resolveValue(e)
			if err != nil {
				return nil, err
			}
			out[i] = r
		}
		return out, nil
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, e := range x {
			r, err := s.resolveValue(e)
			if err != nil {
				return nil, err
			}
			out[k] = r
		}
		return out, nil
	default:
		return v, nil
	}
}
