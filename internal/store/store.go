// Package store holds the client's single in-memory database snapshot.
// The snapshot is replaced wholesale by Refresh and never patched in place:
// after every mutation the whole database is re-fetched, trading request
// volume for zero client/server drift.
package store

import (
	"context"

	"github.com/trailtech/dbcstudio/internal/api"
	"github.com/trailtech/dbcstudio/internal/types"
)

// Store owns the current database snapshot and the client-only dirty flag.
// It is created once per editor session and passed explicitly; nothing in
// this package is a package-level global.
type Store struct {
	db    types.Database
	dirty bool
}

// New returns an empty store.
func New() *Store {
	return &Store{}
}

// Refresh replaces the snapshot with the server's current database and
// clears the dirty flag.
func (s *Store) Refresh(ctx context.Context, client *api.Client) error {
	db, err := client.FetchDatabase(ctx)
	if err != nil {
		return err
	}
	s.Replace(db)
	return nil
}

// Replace installs a fetched snapshot. Split out of Refresh so the TUI can
// fetch asynchronously and install the result on the event loop.
func (s *Store) Replace(db *types.Database) {
	s.db = *db
	s.dirty = false
}

// Database returns the current snapshot.
func (s *Store) Database() *types.Database {
	return &s.db
}

// Dirty reports whether unsaved mutations exist. The flag is set on every
// successful mutation and cleared only by Replace or ClearDirty; it is
// never derived from a diff against the server.
func (s *Store) Dirty() bool {
	return s.dirty
}

// MarkDirty records that a mutation was persisted to the server's in-memory
// state but not yet saved to its file.
func (s *Store) MarkDirty() {
	s.dirty = true
}

// ClearDirty is called after a successful explicit save.
func (s *Store) ClearDirty() {
	s.dirty = false
}
