// Package notestore keeps notes as a single JSON array in one file.
//
// Every append reads the whole file, assigns the next id, and rewrites the
// file atomically while holding an exclusive lock.
package notestore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/starford/quill/internal/apperr"
	"github.com/starford/quill/internal/checksum"
	"github.com/starford/quill/internal/models"
	"github.com/starford/quill/internal/storage"
)

// IDStrategy selects how the next id is derived from the existing records.
type IDStrategy string

const (
	// IDLast uses the id of the last record plus one.
	IDLast IDStrategy = "last"
	// IDMax uses the largest id in the store plus one.
	IDMax IDStrategy = "max"
)

// Options tune a Store.
type Options struct {
	IDStrategy  IDStrategy
	LockTimeout time.Duration // zero means wait for ctx only
	LockRetry   time.Duration
}

// Store is a JSON-array-in-a-file note store.
type Store struct {
	fs   storage.Provider
	name string
	opts Options
	sem  chan struct{}
}

// New creates a store for the file name under the provider root.
func New(fs storage.Provider, name string, opts Options) *Store {
	if opts.IDStrategy == "" {
		opts.IDStrategy = IDLast
	}
	return &Store{
		fs:   fs,
		name: name,
		opts: opts,
		sem:  make(chan struct{}, 1),
	}
}

// Open creates the parent directory of path if needed and returns a store
// for that file. The file itself is only created by the first Append.
func Open(path string, opts Options) (*Store, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("notestore: resolve path: %w", err)
	}
	dir := filepath.Dir(abs)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("notestore: create dir: %w", err)
	}
	fs, err := storage.NewFS(dir)
	if err != nil {
		return nil, err
	}
	return New(fs, filepath.Base(abs), opts), nil
}

// Path returns the absolute path of the store file.
func (s *Store) Path() string {
	p, err := s.fs.Abs(s.name)
	if err != nil {
		return s.name
	}
	return p
}

// Append composes a note from d, gives it the next id, and persists the
// whole store. The previous file content survives any failure.
func (s *Store) Append(ctx context.Context, d models.Draft) (*models.Note, error) {
	unlock, err := s.lock(ctx)
	if err != nil {
		return nil, err
	}
	defer unlock()

	data, err := s.read()
	if err != nil {
		return nil, err
	}
	records, err := parse(data)
	if err != nil {
		return nil, err
	}
	id, err := nextID(records, s.opts.IDStrategy)
	if err != nil {
		return nil, err
	}

	note := Compose(id, d)
	raw, err := marshal(note)
	if err != nil {
		return nil, fmt.Errorf("%w: encode note: %w", apperr.ErrWrite, err)
	}
	records = append(records, raw)

	out, err := encode(records)
	if err != nil {
		return nil, fmt.Errorf("%w: encode store: %w", apperr.ErrWrite, err)
	}
	if err := s.fs.Write(s.name, out); err != nil {
		return nil, fmt.Errorf("%w: %w", apperr.ErrWrite, err)
	}
	return &note, nil
}

// List returns every note in file order. A missing file is an empty store.
func (s *Store) List(ctx context.Context) ([]models.Note, error) {
	notes, _, err := s.Snapshot(ctx)
	return notes, err
}

// Snapshot returns every note together with the checksum of the bytes they
// were decoded from. The checksum is "" when the file does not exist.
func (s *Store) Snapshot(_ context.Context) ([]models.Note, string, error) {
	data, err := s.read()
	if err != nil {
		return nil, "", err
	}
	records, err := parse(data)
	if err != nil {
		return nil, "", err
	}
	notes := make([]models.Note, 0, len(records))
	for i, r := range records {
		var n models.Note
		if err := json.Unmarshal(r, &n); err != nil {
			return nil, "", fmt.Errorf("%w: record %d: %w", apperr.ErrParse, i, err)
		}
		notes = append(notes, n)
	}
	if data == nil {
		return notes, "", nil
	}
	return notes, checksum.Sum(data), nil
}

// Get returns the first note carrying id.
func (s *Store) Get(ctx context.Context, id int) (*models.Note, error) {
	notes, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range notes {
		if notes[i].ID == id {
			return &notes[i], nil
		}
	}
	return nil, apperr.ErrNotFound
}

// Checksum returns the SHA-256 of the store file, or "" if it does not exist.
func (s *Store) Checksum(_ context.Context) (string, error) {
	data, err := s.read()
	if err != nil || data == nil {
		return "", err
	}
	return checksum.Sum(data), nil
}

// lock serialises writers inside the process through sem and across
// processes through the provider's file lock.
func (s *Store) lock(ctx context.Context) (func(), error) {
	if s.opts.LockTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.LockTimeout)
		defer cancel()
	}

	select {
	case s.sem <- struct{}{}:
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %w", apperr.ErrLocked, ctx.Err())
	}

	release, err := s.fs.Lock(ctx, s.name, s.opts.LockRetry)
	if err != nil {
		<-s.sem
		return nil, fmt.Errorf("%w: %w", apperr.ErrLocked, err)
	}
	return func() {
		if err := release(); err != nil {
			slog.Warn("notestore: unlock failed", slog.String("path", s.name), slog.String("error", err.Error()))
		}
		<-s.sem
	}, nil
}

// read returns the file content, or nil if the file does not exist.
func (s *Store) read() ([]byte, error) {
	data, err := s.fs.Read(s.name)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %w", apperr.ErrRead, err)
	}
	if data == nil {
		data = []byte{}
	}
	return data, nil
}

// parse splits the store into raw records. Records stay raw JSON so that a
// rewrite carries existing objects through untouched. nil data is an
// empty store.
func parse(data []byte) ([]json.RawMessage, error) {
	if data == nil {
		return nil, nil
	}
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil, fmt.Errorf("%w: top-level value is null", apperr.ErrParse)
	}
	var records []json.RawMessage
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("%w: %w", apperr.ErrParse, err)
	}
	for i, r := range records {
		if t := bytes.TrimSpace(r); len(t) == 0 || t[0] != '{' {
			return nil, fmt.Errorf("%w: record %d is not an object", apperr.ErrParse, i)
		}
	}
	return records, nil
}

func nextID(records []json.RawMessage, strategy IDStrategy) (int, error) {
	if len(records) == 0 {
		return 1, nil
	}
	if strategy == IDMax {
		highest := 0
		for i, r := range records {
			id, err := recordID(r)
			if err != nil {
				return 0, fmt.Errorf("%w: record %d: %w", apperr.ErrParse, i, err)
			}
			highest = max(highest, id)
		}
		return highest + 1, nil
	}
	last := len(records) - 1
	id, err := recordID(records[last])
	if err != nil {
		return 0, fmt.Errorf("%w: record %d: %w", apperr.ErrParse, last, err)
	}
	return id + 1, nil
}

func recordID(r json.RawMessage) (int, error) {
	var rec struct {
		ID *json.Number `json:"id"`
	}
	dec := json.NewDecoder(bytes.NewReader(r))
	dec.UseNumber()
	if err := dec.Decode(&rec); err != nil {
		return 0, err
	}
	if rec.ID == nil {
		return 0, errors.New("missing id")
	}
	return parseID(*rec.ID)
}

// parseID accepts integers and integral floats such as 3.0 or 1e2. The
// largest int is refused since it has no successor.
func parseID(n json.Number) (int, error) {
	if id, err := strconv.ParseInt(n.String(), 10, 0); err == nil {
		if id == math.MaxInt {
			return 0, fmt.Errorf("id %s has no successor", n)
		}
		return int(id), nil
	}
	f, err := n.Float64()
	if err != nil || f != math.Trunc(f) {
		return 0, fmt.Errorf("id %s is not an integer", n)
	}
	if f < math.MinInt || f >= math.MaxInt {
		return 0, fmt.Errorf("id %s is out of range", n)
	}
	return int(f), nil
}

// marshal encodes v without escaping HTML characters and without the
// trailing newline json.Encoder adds.
func marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// encode renders the full store with two-space indentation.
func encode(records []json.RawMessage) ([]byte, error) {
	if records == nil {
		records = []json.RawMessage{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
