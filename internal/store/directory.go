package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// DatabaseSuffix is appended to the installation id to form the database
// file name.
const DatabaseSuffix = "-CommandTracker.db"

// Directory is the storage root for one host. It opens one database per
// installation id and tracks every open handle, so a destructive delete can
// ask the other owners (display view, settings surface, ingestion path) to
// release their handles first.
type Directory struct {
	root string

	mu   sync.Mutex
	open map[string]map[*Store]struct{}
}

// NewDirectory returns a Directory rooted at root. The directory is created
// on first Open.
func NewDirectory(root string) *Directory {
	return &Directory{
		root: root,
		open: make(map[string]map[*Store]struct{}),
	}
}

// Root returns the directory path.
func (d *Directory) Root() string {
	return d.root
}

// Path returns the database path for an installation id.
func (d *Directory) Path(installationID string) string {
	return filepath.Join(d.root, installationID+DatabaseSuffix)
}

// Open opens (creating if needed) the database for installationID and
// registers the returned handle. Each caller owns the handle it gets and
// must Close it.
func (d *Directory) Open(installationID string, opts ...Option) (*Store, error) {
	if err := validateInstallationID(installationID); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(d.root, 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	s, err := Open(d.Path(installationID), opts...)
	if err != nil {
		return nil, err
	}
	s.dir = d
	s.installationID = installationID
	d.register(installationID, s)
	return s, nil
}

// OpenCount returns how many handles to installationID are currently open.
func (d *Directory) OpenCount(installationID string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.open[installationID])
}

// Destroy discards the database for installationID.
//
// Every handle still open is asked to close through its blocking-close
// callback. If any handle remains open afterwards, Destroy fails with
// ErrCodeBlockingOpenConflict and leaves the database in place.
func (d *Directory) Destroy(ctx context.Context, installationID string) error {
	if err := validateInstallationID(installationID); err != nil {
		return err
	}

	d.mu.Lock()
	handles := make([]*Store, 0, len(d.open[installationID]))
	for h := range d.open[installationID] {
		handles = append(handles, h)
	}
	d.mu.Unlock()

	// Callbacks run without d.mu held; Close re-enters via release.
	for _, h := range handles {
		h.blocked()
	}

	d.mu.Lock()
	remaining := len(d.open[installationID])
	if remaining == 0 {
		delete(d.open, installationID)
	}
	d.mu.Unlock()

	if remaining > 0 {
		return &Error{
			Code:    ErrCodeBlockingOpenConflict,
			Op:      "destroy",
			Message: fmt.Sprintf("%d handle(s) to %s still open", remaining, installationID),
		}
	}

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("destroy: %w", err)
	}

	for _, h := range handles {
		h.markDestroyed()
	}

	if err := removeDatabaseFiles(d.Path(installationID)); err != nil {
		return fmt.Errorf("destroy: %w", err)
	}
	return nil
}

func (d *Directory) register(installationID string, s *Store) {
	d.mu.Lock()
	defer d.mu.Unlock()
	set, ok := d.open[installationID]
	if !ok {
		set = make(map[*Store]struct{})
		d.open[installationID] = set
	}
	set[s] = struct{}{}
}

func (d *Directory) release(s *Store) {
	d.mu.Lock()
	defer d.mu.Unlock()
	set := d.open[s.installationID]
	delete(set, s)
	if len(set) == 0 {
		delete(d.open, s.installationID)
	}
}

func validateInstallationID(id string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("installation id is required")
	}
	if strings.ContainsAny(id, `/\`) || id == "." || id == ".." {
		return fmt.Errorf("invalid installation id %q", id)
	}
	return nil
}
