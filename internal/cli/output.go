package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/mesh-intelligence/calccell/internal/journal"
	"github.com/mesh-intelligence/calccell/internal/sheet"
)

// Output formats.
const (
	outputJSON = "json"
	outputYAML = "yaml"
)

func isValidOutput(format string) bool {
	return format == outputJSON || format == outputYAML
}

// runOutput is what "run --journal" prints.
type runOutput struct {
	Cells   *sheet.Result  `json:"cells" yaml:"cells"`
	Journal []journalEntry `json:"journal" yaml:"journal"`
}

// journalEntry is the printable form of a journal.Entry, with the recorded
// values decoded so YAML output shows them as values rather than JSON text.
type journalEntry struct {
	ID        string    `json:"id" yaml:"id"`
	Seq       int64     `json:"seq" yaml:"seq"`
	Cell      string    `json:"cell" yaml:"cell"`
	Column    string    `json:"column" yaml:"column"`
	Old       any       `json:"old" yaml:"old"`
	New       any       `json:"new" yaml:"new"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}

func journalView(entries []journal.Entry) ([]journalEntry, error) {
	out := make([]journalEntry, 0, len(entries))
	for _, e := range entries {
		je := journalEntry{
			ID:        e.EntryID,
			Seq:       e.Seq,
			Cell:      e.Cell,
			Column:    e.Column,
			CreatedAt: e.CreatedAt,
		}
		if err := json.Unmarshal(e.Old, &je.Old); err != nil {
			return nil, fmt.Errorf("decode entry %d old value: %w", e.Seq, err)
		}
		if err := json.Unmarshal(e.New, &je.New); err != nil {
			return nil, fmt.Errorf("decode entry %d new value: %w", e.Seq, err)
		}
		out = append(out, je)
	}
	return out, nil
}

// writeOutput encodes v to w in the given format.
func writeOutput(w io.Writer, format string, v any) error {
	switch format {
	case outputYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	default:
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	}
}
