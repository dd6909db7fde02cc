// Package bookmark persists named SQL queries so they can be replayed
// across sessions.
//
// The store is a single JSON file mapping bookmark name to query text,
// optional description, and timestamps. Every mutation is a full
// read-modify-write followed by an atomic rename, so a crash mid-save
// never leaves a half-written file behind. A missing or corrupt file
// loads as an empty store.
package bookmark

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// ErrNotFound reports a lookup or delete of a name the store does not hold.
var ErrNotFound = errors.New("bookmark not found")

const maxNameLen = 64

// Bookmark is one saved query.
type Bookmark struct {
	Name         string    `json:"name"`
	Query        string    `json:"query"`
	Description  string    `json:"description,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	LastModified time.Time `json:"last_modified"`
}

// Store reads and writes the bookmark file. It holds no in-memory
// state: every call goes back to disk, so the file is always the truth.
type Store struct {
	path string
	now  func() time.Time
}

// NewStore returns a store backed by the file at path. The file does
// not need to exist yet.
func NewStore(path string) *Store {
	return &Store{path: path, now: time.Now}
}

// Save upserts a bookmark. Saving an existing name overwrites its query
// and description but keeps the original creation time.
func (s *Store) Save(name, query, description string) error {
	if err := validateName(name); err != nil {
		return err
	}
	if strings.TrimSpace(query) == "" {
		return errors.New("bookmark query cannot be empty")
	}

	all := s.load()

	now := s.now().UTC()
	bm := Bookmark{
		Name:         name,
		Query:        query,
		Description:  description,
		CreatedAt:    now,
		LastModified: now,
	}
	if prev, ok := all[name]; ok {
		bm.CreatedAt = prev.CreatedAt
	}
	all[name] = bm

	return s.write(all)
}

// Get returns the bookmark saved under name.
func (s *Store) Get(name string) (Bookmark, error) {
	bm, ok := s.load()[name]
	if !ok {
		return Bookmark{}, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return bm, nil
}

// List returns all bookmarks ordered by name.
func (s *Store) List() ([]Bookmark, error) {
	all := s.load()
	out := make([]Bookmark, 0, len(all))
	for _, bm := range all {
		out = append(out, bm)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Delete removes the bookmark saved under name.
func (s *Store) Delete(name string) error {
	all := s.load()
	if _, ok := all[name]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	delete(all, name)
	return s.write(all)
}

// load reads the whole store. Any read or parse failure degrades to an
// empty store; last writer wins on the next mutation.
func (s *Store) load() map[string]Bookmark {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			slog.Warn("bookmark file unreadable, starting empty", "path", s.path, "error", err)
		}
		return map[string]Bookmark{}
	}

	var all map[string]Bookmark
	if err := json.Unmarshal(data, &all); err != nil {
		slog.Warn("bookmark file corrupt, starting empty", "path", s.path, "error", err)
		return map[string]Bookmark{}
	}
	if all == nil {
		all = map[string]Bookmark{}
	}
	return all
}

// write replaces the store file atomically: marshal to a temp file in
// the same directory, then rename over the target.
func (s *Store) write(all map[string]Bookmark) error {
	data, err := json.MarshalIndent(all, "", "  ")
	if err != nil {
		return fmt.Errorf("encode bookmarks: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create bookmark directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".bookmarks-*.json")
	if err != nil {
		return fmt.Errorf("create temp bookmark file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write bookmarks: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp bookmark file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace bookmark file: %w", err)
	}
	return nil
}

func validateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return errors.New("bookmark name cannot be empty")
	}
	if len(name) > maxNameLen {
		return fmt.Errorf("bookmark name is too long (maximum %d characters)", maxNameLen)
	}
	if strings.ContainsAny(name, `\/:*?"<>|`) || strings.ContainsFunc(name, func(r rune) bool { return r < ' ' }) {
		return errors.New("bookmark name contains invalid characters")
	}
	return nil
}
