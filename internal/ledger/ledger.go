// Package ledger persists the set of completed job ids as an append-only
// newline-terminated text file. The file is the single source of truth for
// "already done": an id is recorded only after the job's output has been
// fully published, and a trailing line without a newline (a crash mid-append)
// is never read back as present.
package ledger

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Ledger records completed job ids durably. Every read re-opens the file so
// the set reflects appends made by earlier runs of the process.
type Ledger struct {
	path string
}

// Open ensures the ledger file exists and returns a handle to it. The parent
// directory must already exist.
func Open(path string) (*Ledger, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return nil, fmt.Errorf("ledger path is required")
	}
	file, err := os.OpenFile(trimmed, os.O_CREATE|os.O_RDONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open ledger %q: %w", trimmed, err)
	}
	if err := file.Close(); err != nil {
		return nil, err
	}
	return &Ledger{path: trimmed}, nil
}

// Path returns the ledger file location.
func (l *Ledger) Path() string {
	return l.path
}

// Completed returns the set of recorded job ids. Only newline-terminated
// lines count: a truncated final line from an interrupted append is treated
// as absent, which keeps the no-false-positive invariant after a crash.
func (l *Ledger) Completed() (map[string]struct{}, error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		return nil, fmt.Errorf("read ledger: %w", err)
	}

	done := make(map[string]struct{})
	for {
		idx := bytes.IndexByte(data, '\n')
		if idx < 0 {
			// Unterminated tail: not a valid completion record.
			break
		}
		line := strings.TrimSpace(string(data[:idx]))
		data = data[idx+1:]
		if line == "" {
			continue
		}
		done[line] = struct{}{}
	}
	return done, nil
}

// Contains reports whether id was previously recorded.
func (l *Ledger) Contains(id string) (bool, error) {
	done, err := l.Completed()
	if err != nil {
		return false, err
	}
	_, ok := done[strings.TrimSpace(id)]
	return ok, nil
}

// Record durably appends id to the ledger. The write is a single append of
// "id\n" followed by fsync, so a crash leaves either no trace or a complete
// record; a torn partial line is ignored by Completed.
func (l *Ledger) Record(id string) error {
	id = strings.TrimSpace(id)
	if err := validateID(id); err != nil {
		return err
	}

	file, err := os.OpenFile(l.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open ledger for append: %w", err)
	}

	if _, err := file.WriteString(id + "\n"); err != nil {
		file.Close()
		return fmt.Errorf("append ledger record: %w", err)
	}
	if err := file.Sync(); err != nil {
		file.Close()
		return fmt.Errorf("sync ledger: %w", err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("close ledger: %w", err)
	}
	return nil
}

func validateID(id string) error {
	if id == "" {
		return fmt.Errorf("ledger record: id is empty")
	}
	if strings.ContainsAny(id, "\n\r") {
		return fmt.Errorf("ledger record: id %q contains line breaks", id)
	}
	if strings.ContainsRune(id, filepath.Separator) || strings.ContainsRune(id, '/') {
		return fmt.Errorf("ledger record: id %q contains path separators", id)
	}
	return nil
}
