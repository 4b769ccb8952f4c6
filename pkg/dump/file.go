package dump

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FileSink writes each snapshot to Path, overwriting it. Plans are
// separated by a blank line.
type FileSink struct {
	Path string
}

// NewFileSink returns a sink writing to path.
func NewFileSink(path string) *FileSink { return &FileSink{Path: path} }

// Dump replaces the file with the snapshot's plans. The file is written to
// a temporary name first so readers never see a partial dump.
func (f *FileSink) Dump(_ context.Context, s Snapshot) error {
	dir := filepath.Dir(f.Path)
	tmp, err := os.CreateTemp(dir, ".dump-*")
	if err != nil {
		return fmt.Errorf("create dump: %w", err)
	}
	defer os.Remove(tmp.Name())

	body := strings.Join(trimmed(s.Plans), "\n\n")
	if _, err := tmp.WriteString(body); err != nil {
		tmp.Close()
		return fmt.Errorf("write dump: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write dump: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.Path); err != nil {
		return fmt.Errorf("replace dump: %w", err)
	}
	return nil
}

// trimmed drops trailing newlines so blocks are separated by exactly one
// empty line.
func trimmed(plans []string) []string {
	out := make([]string, len(plans))
	for i, p := range plans {
		out[i] = strings.TrimRight(p, "\n")
	}
	return out
}

var _ Sink = (*FileSink)(nil)
