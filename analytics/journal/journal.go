// Package journal persists analytics records as JSON lines, one file per day.
package journal

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/anisan-cli/playtrack/analytics/record"
	"github.com/anisan-cli/playtrack/filesystem"
	"github.com/spf13/afero"
)

const layout = "2006-01-02"

// Sink appends records to <dir>/<date>.jsonl.
type Sink struct {
	dir string

	mu     sync.Mutex
	day    string
	file   afero.File
	closed bool
}

// New creates a journal sink writing under dir.
func New(dir string) *Sink {
	return &Sink{dir: dir}
}

// Path returns the journal file for the given day.
func Path(dir string, day time.Time) string {
	return filepath.Join(dir, day.Format(layout)+".jsonl")
}

func (s *Sink) open(day string) error {
	if s.file != nil && s.day == day {
		return nil
	}

	if s.file != nil {
		_ = s.file.Close()
		s.file = nil
	}

	if err := filesystem.API().MkdirAll(s.dir, os.ModePerm); err != nil {
		return fmt.Errorf("journal dir: %w", err)
	}

	f, err := filesystem.API().OpenFile(filepath.Join(s.dir, day+".jsonl"), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}

	s.file = f
	s.day = day
	return nil
}

// Write implements record.Sink.
func (s *Sink) Write(r record.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return os.ErrClosed
	}

	if err := s.open(r.Time.Format(layout)); err != nil {
		return err
	}

	return json.NewEncoder(s.file).Encode(r)
}

// Close implements record.Sink.
func (s *Sink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	if s.file == nil {
		return nil
	}

	err := s.file.Close()
	s.file = nil
	return err
}

// Read decodes every record of the journal file at path.
func Read(path string) ([]record.Record, error) {
	f, err := filesystem.API().Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var records []record.Record
	decoder := json.NewDecoder(f)
	for decoder.More() {
		var r record.Record
		if err := decoder.Decode(&r); err != nil {
			return records, fmt.Errorf("decode journal: %w", err)
		}
		records = append(records, r)
	}

	return records, nil
}
