// Package journal records writes made to calc cells in an in-memory SQLite
// database, one row per write in dispatch order. It hooks into cells through
// their ordinary subscription API and keeps nothing once closed.
package journal

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"
	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/calccell/pkg/calc"
)

// Journal errors.
var (
	ErrClosed       = errors.New("journal is closed")
	ErrInvalidName  = errors.New("invalid cell name")
	ErrAlreadyWatch = errors.New("cell name already watched")
)

// Entry is one recorded write.
type Entry struct {
	EntryID   string          // UUID v7.
	Seq       int64           // Position in the journal, starting at 1.
	Cell      string          // Name the cell was watched under.
	Column    string          // Column written.
	Old       json.RawMessage // Previous value, as JSON of its plain form.
	New       json.RawMessage // Coerced new value, as JSON of its plain form.
	CreatedAt time.Time
}

// Journal is a write log for a set of named cells.
type Journal struct {
	mu     sync.Mutex
	db     *sql.DB
	seq    int64
	logger hclog.Logger
}

// Open creates an empty journal. A nil logger discards log output.
func Open(logger hclog.Logger) (*Journal, error) {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("opening journal database: %w", err)
	}
	// Every connection to :memory: is a separate database.
	db.SetMaxOpenConns(1)

	for _, stmt := range schemaStatements {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("creating journal schema: %w", err)
		}
	}

	return &Journal{db: db, logger: logger}, nil
}

// Close releases the database. Recorded entries are discarded. Close is
// idempotent.
func (j *Journal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.db == nil {
		return nil
	}
	err := j.db.Close()
	j.db = nil
	return err
}

// Watch subscribes the journal to every declared column of cell, recording
// each write under name. The journal's subscriptions join the cell's others
// in registration order, so watching before linking records a write before
// the writes it triggers.
//
// Recording never fails a write: values JSON cannot hold are stored as text,
// and writes made after Close, or that the database rejects, are logged and
// left out.
func (j *Journal) Watch(name string, cell *calc.Cell) error {
	if name == "" {
		return ErrInvalidName
	}

	columns := cell.Structure()
	j.mu.Lock()
	err := j.registerLocked(name, len(columns))
	j.mu.Unlock()
	if err != nil {
		return err
	}

	for _, col := range columns {
		if err := cell.RefCallback(col.Name, cell, col.Name, j.recorder(name)); err != nil {
			return fmt.Errorf("watching %s.%s: %w", name, col.Name, err)
		}
	}
	j.logger.Debug("watching cell", "cell", name, "columns", len(columns))
	return nil
}

// registerLocked adds name to the cells table. The caller must hold j.mu.
func (j *Journal) registerLocked(name string, columns int) error {
	if j.db == nil {
		return ErrClosed
	}
	var exists bool
	if err := j.db.QueryRow("SELECT EXISTS(SELECT 1 FROM cells WHERE name = ?)", name).Scan(&exists); err != nil {
		return fmt.Errorf("looking up cell %s: %w", name, err)
	}
	if exists {
		return fmt.Errorf("%w: %s", ErrAlreadyWatch, name)
	}
	_, err := j.db.Exec(
		"INSERT INTO cells (name, columns, watched_at) VALUES (?, ?, ?)",
		name, columns, time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("registering cell %s: %w", name, err)
	}
	return nil
}

// recorder returns the callback that logs writes to the cell watched as name.
func (j *Journal) recorder(name string) calc.Callback {
	return func(oldValue, newValue any, _ *calc.Cell, column string, _ *calc.Cell) error {
		if err := j.record(name, column, oldValue, newValue); err != nil {
			j.logger.Warn("write not recorded", "cell", name, "column", column, "error", err)
		}
		return nil
	}
}

func (j *Journal) record(cell, column string, oldValue, newValue any) error {
	oldJSON := j.encode(cell, column, "old", oldValue)
	newJSON := j.encode(cell, column, "new", newValue)

	id, err := uuid.NewV7()
	if err != nil {
		return fmt.Errorf("generating entry UUID v7: %w", err)
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	if j.db == nil {
		return ErrClosed
	}
	seq := j.seq + 1
	_, err = j.db.Exec(
		"INSERT INTO writes (entry_id, seq, cell, column_name, old_value, new_value, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
		id.String(), seq, cell, column, string(oldJSON), string(newJSON), time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("recording write to %s.%s: %w", cell, column, err)
	}
	j.seq = seq

	j.logger.Trace("write", "seq", seq, "cell", cell, "column", column, "old", string(oldJSON), "new", string(newJSON))
	return nil
}

// encode returns the JSON of v's plain form. Values JSON cannot represent,
// such as NaN or channels, are recorded as their fmt.Sprint text so the
// write they belong to still goes through.
func (j *Journal) encode(cell, column, which string, v any) []byte {
	data, err := json.Marshal(calc.Plain(v))
	if err == nil {
		return data
	}
	j.logger.Warn("recording value as text", "cell", cell, "column", column, "value", which, "error", err)
	data, _ = json.Marshal(fmt.Sprint(v))
	return data
}

// Entries returns every entry in recording order. It returns an empty slice,
// not nil, when nothing was recorded.
func (j *Journal) Entries() ([]Entry, error) {
	return j.query("SELECT entry_id, seq, cell, column_name, old_value, new_value, created_at FROM writes ORDER BY seq ASC")
}

// EntriesFor returns the entries of the cell watched as name, in recording
// order.
func (j *Journal) EntriesFor(name string) ([]Entry, error) {
	return j.query("SELECT entry_id, seq, cell, column_name, old_value, new_value, created_at FROM writes WHERE cell = ? ORDER BY seq ASC", name)
}

// Len returns the number of recorded entries.
func (j *Journal) Len() (int, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.db == nil {
		return 0, ErrClosed
	}
	var n int
	if err := j.db.QueryRow("SELECT COUNT(*) FROM writes").Scan(&n); err != nil {
		return 0, fmt.Errorf("counting entries: %w", err)
	}
	return n, nil
}

func (j *Journal) query(q string, args ...any) ([]Entry, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.db == nil {
		return nil, ErrClosed
	}

	rows, err := j.db.Query(q, args...)
	if err != nil {
		return nil, fmt.Errorf("querying entries: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		var e Entry
		var oldStr, newStr, createdAt string
		if err := rows.Scan(&e.EntryID, &e.Seq, &e.Cell, &e.Column, &oldStr, &newStr, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning entry: %w", err)
		}
		e.Old = json.RawMessage(oldStr)
		e.New = json.RawMessage(newStr)
		e.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
		if err != nil {
			return nil, fmt.Errorf("parsing entry created_at: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating entries: %w", err)
	}
	return entries, nil
}
