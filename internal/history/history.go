// Package history persists conversion records in a YAML file, newest
// first, capped at a fixed number of entries.
package history

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/alnah/go-md2doc/internal/fileutil"
	"github.com/alnah/go-md2doc/internal/yamlutil"
)

// DefaultLimit is the number of records kept when none is configured.
const DefaultLimit = 20

// fileVersion is written into every history file.
const fileVersion = 1

// Sentinel errors for history operations.
var (
	ErrNotFound    = errors.New("history record not found")
	ErrAmbiguousID = errors.New("history ID prefix matches several records")
	ErrEmptyID     = errors.New("history ID cannot be empty")
	ErrCorrupt     = errors.New("history file is unreadable")
)

// Record is one stored conversion.
type Record struct {
	ID        string    `yaml:"id"`
	Timestamp time.Time `yaml:"timestamp"`
	Preview   string    `yaml:"preview"`
	Input     string    `yaml:"input"`
	HTML      string    `yaml:"html"`
	CharCount int       `yaml:"charCount"`
}

// file is the on-disk layout.
type file struct {
	Version int      `yaml:"version"`
	Records []Record `yaml:"records"`
}

// Store reads and writes the history file. Methods are safe for concurrent
// use within one process; writes replace the file atomically.
type Store struct {
	mu    sync.Mutex
	path  string
	limit int
}

// NewStore creates a Store backed by path. A limit <= 0 uses DefaultLimit.
// The file is created on the first Add.
func NewStore(path string, limit int) *Store {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Store{path: path, limit: limit}
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.path
}

// Add stores r as the newest record and drops the oldest ones beyond the
// limit.
func (s *Store) Add(r Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load()
	if err != nil {
		return err
	}

	records = append([]Record{r}, records...)
	if len(records) > s.limit {
		records = records[:s.limit]
	}
	return s.save(records)
}

// List returns all records, newest first.
func (s *Store) List() ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.load()
}

// Get returns the record whose ID starts with prefix. Short prefixes are
// accepted as long as they are unambiguous.
func (s *Store) Get(prefix string) (Record, error) {
	if prefix == "" {
		return Record{}, ErrEmptyID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load()
	if err != nil {
		return Record{}, err
	}

	var found []Record
	for _, r := range records {
		if r.ID == prefix {
			return r, nil
		}
		if strings.HasPrefix(r.ID, prefix) {
			found = append(found, r)
		}
	}

	switch len(found) {
	case 0:
		return Record{}, fmt.Errorf("%w: %s", ErrNotFound, prefix)
	case 1:
		return found[0], nil
	default:
		return Record{}, fmt.Errorf("%w: %s (%d matches)", ErrAmbiguousID, prefix, len(found))
	}
}

// Clear removes every record.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing history file: %w", err)
	}
	return nil
}

// load reads the records. A missing or empty file holds no records.
func (s *Store) load() ([]Record, error) {
	data, err := os.ReadFile(s.path) // #nosec G304 -- path comes from config
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading history file: %w", err)
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, nil
	}

	var f file
	if err := yamlutil.Unmarshal(data, &f, yamlutil.MaxHistorySize); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	return f.Records, nil
}

func (s *Store) save(records []Record) error {
	data, err := yamlutil.Marshal(file{Version: fileVersion, Records: records})
	if err != nil {
		return fmt.Errorf("encoding history: %w", err)
	}
	if err := fileutil.WriteFileAtomic(s.path, data, 0o600); err != nil {
		return fmt.Errorf("writing history file: %w", err)
	}
	return nil
}
