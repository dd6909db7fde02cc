package wisp

import (
	"github.com/wispdb/wisp/bookmark"
	"github.com/wispdb/wisp/engine"
	"github.com/wispdb/wisp/session"
)

// Instance bundles an open engine with its bookmark store.
type Instance struct {
	eng   *engine.Engine
	books *bookmark.Store
}

// Options configures Open. Zero values fall back to sensible defaults.
type Options struct {
	// BookmarksFile is the JSON file backing saved queries. Empty means
	// bookmarks.json next to the database file.
	BookmarksFile string
}

// Open opens (or creates) the SQLite database at path.
func Open(path string, opts Options) (*Instance, error) {
	eng, err := engine.Open(path)
	if err != nil {
		return nil, err
	}

	bookmarks := opts.BookmarksFile
	if bookmarks == "" {
		bookmarks = path + ".bookmarks.json"
	}

	return &Instance{
		eng:   eng,
		books: bookmark.NewStore(bookmarks),
	}, nil
}

// Engine returns the underlying engine.
func (in *Instance) Engine() *engine.Engine { return in.eng }

// Bookmarks returns the bookmark store.
func (in *Instance) Bookmarks() *bookmark.Store { return in.books }

// Session starts a new session with default display settings.
func (in *Instance) Session() *session.Session {
	return in.NewSession(session.Options{RowLimit: 1000})
}

// NewSession starts a session with explicit options.
func (in *Instance) NewSession(opts session.Options) *session.Session {
	return session.New(in.eng, in.books, opts)
}

// Close releases the engine connection.
func (in *Instance) Close() error { return in.eng.Close() }
