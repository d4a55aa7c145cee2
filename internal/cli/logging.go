package cli

import (
	"io"

	"github.com/hashicorp/go-hclog"
)

// newLogger returns the CLI logger writing to w.
func newLogger(level hclog.Level, w io.Writer) hclog.Logger {
	return hclog.New(&hclog.LoggerOptions{
		Name:   "calccell",
		Level:  level,
		Output: w,
	})
}
