// Package checkpoint provides an append-only CSV log keyed by a business
// key. Each pipeline stage persists its output through a Store and skips
// keys that are already present, which is what makes re-running a stage
// resume instead of repeat.
package checkpoint

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
)

// Log is the narrow contract stages depend on. Contains answers whether a
// business key was already persisted; Append buffers a new record; Flush
// forces buffered records to disk.
type Log interface {
	Contains(key string) bool
	Append(record []string) error
	Flush() error
}

// Store is a CSV-backed Log. The header row is written only when the file
// is first created; subsequent runs append below the existing rows.
// A Store must only be used from the orchestrating goroutine.
type Store struct {
	path       string
	header     []string
	keyIdx     int
	flushEvery int

	keys    map[string]struct{}
	buf     [][]string
	created bool // file exists with header on disk
}

var _ Log = (*Store)(nil)

// Open loads an existing checkpoint file (if any) and returns a Store ready
// for appends. header defines the output columns; keyColumn must be one of
// them. flushEvery bounds how many rows accumulate before an automatic
// flush (values < 1 flush on every append).
func Open(path string, header []string, keyColumn string, flushEvery int) (*Store, error) {
	keyIdx := -1
	for i, col := range header {
		if col == keyColumn {
			keyIdx = i
			break
		}
	}
	if keyIdx < 0 {
		return nil, eris.Errorf("checkpoint: key column %q not in header", keyColumn)
	}

	s := &Store{
		path:       path,
		header:     header,
		keyIdx:     keyIdx,
		flushEvery: flushEvery,
		keys:       make(map[string]struct{}),
	}

	if err := s.load(keyColumn); err != nil {
		return nil, err
	}
	return s, nil
}

// load reads previously persisted keys. The on-disk header locates the key
// column, so older files with extra or reordered columns still resume.
func (s *Store) load(keyColumn string) error {
	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return eris.Wrapf(err, "checkpoint: open %s", s.path)
	}
	defer f.Close() //nolint:errcheck

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err == io.EOF {
		return nil // empty file: treat as not created
	}
	if err != nil {
		return eris.Wrapf(err, "checkpoint: read header of %s", s.path)
	}

	diskIdx := -1
	for i, col := range header {
		if strings.TrimPrefix(col, "\uFEFF") == keyColumn {
			diskIdx = i
			break
		}
	}
	if diskIdx < 0 {
		return eris.Errorf("checkpoint: %s: existing file lacks key column %q", s.path, keyColumn)
	}
	s.created = true

	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return eris.Wrapf(err, "checkpoint: read row of %s", s.path)
		}
		if diskIdx < len(record) {
			s.keys[record[diskIdx]] = struct{}{}
		}
	}
	return nil
}

// Contains reports whether key was persisted by a previous run or appended
// during this one.
func (s *Store) Contains(key string) bool {
	_, ok := s.keys[key]
	return ok
}

// Count returns the number of distinct keys seen so far.
func (s *Store) Count() int { return len(s.keys) }

// Append buffers one record. Records whose key is already present are
// dropped silently: the contract is one row per key, and the first writer
// wins.
func (s *Store) Append(record []string) error {
	if len(record) != len(s.header) {
		return eris.Errorf("checkpoint: record has %d fields, header has %d", len(record), len(s.header))
	}
	key := record[s.keyIdx]
	if s.Contains(key) {
		return nil
	}
	s.keys[key] = struct{}{}
	s.buf = append(s.buf, record)

	if len(s.buf) >= s.flushEvery || s.flushEvery < 1 {
		return s.Flush()
	}
	return nil
}

// Flush appends buffered records to the file, creating it (with header) on
// first write. A run that buffers nothing never touches the file.
func (s *Store) Flush() error {
	if len(s.buf) == 0 {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return eris.Wrapf(err, "checkpoint: create dir for %s", s.path)
	}
	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return eris.Wrapf(err, "checkpoint: open %s for append", s.path)
	}
	defer f.Close() //nolint:errcheck

	w := csv.NewWriter(f)
	if !s.created {
		if err := w.Write(s.header); err != nil {
			return eris.Wrap(err, "checkpoint: write header")
		}
		s.created = true
	}
	for _, record := range s.buf {
		if err := w.Write(record); err != nil {
			return eris.Wrap(err, "checkpoint: write record")
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return eris.Wrap(err, "checkpoint: flush")
	}
	s.buf = s.buf[:0]
	return nil
}

// Close flushes any remaining buffered records.
func (s *Store) Close() error {
	return s.Flush()
}
