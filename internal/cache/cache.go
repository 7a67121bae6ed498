// Package cache holds the most recent reconciled cell snapshot and serves
// all lookups against it. The snapshot is replaced wholesale on refresh and
// only on full success: a failed refresh leaves the previous snapshot
// untouched, because stale but consistent beats fresh but broken.
package cache

import (
	"errors"
	"sync"

	"github.com/google/uuid"

	"cellctl/internal/cell"
	"cellctl/internal/reconcile"
)

// ErrNotFound is returned when a lookup matches nothing in the current
// snapshot. It is a normal empty-result signal, not a failure.
var ErrNotFound = errors.New("cell not found")

// Lister produces a fresh, unreconciled cell listing from the tool.
type Lister interface {
	List() ([]cell.Cell, error)
}

// Cache owns the current snapshot. Refreshes are serialized; readers see
// either the pre- or post-refresh snapshot, never a partial one.
type Cache struct {
	lister Lister

	mu   sync.RWMutex
	snap cell.Snapshot
}

// New returns an empty cache fed by the given lister.
func New(lister Lister) *Cache {
	return &Cache{lister: lister}
}

// Refresh queries the tool, reconciles identities against the current
// snapshot and swaps the result in. It reports the cell-level changes the
// refresh observed. On any listing or parse failure the stored snapshot is
// left exactly as it was and the error is surfaced.
func (c *Cache) Refresh() ([]reconcile.Change, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	cells, err := c.lister.List()
	if err != nil {
		return nil, err
	}
	next := reconcile.Apply(c.snap, cells)
	changes := reconcile.Diff(c.snap, next)
	c.snap = next
	return changes, nil
}

// Snapshot returns the current snapshot.
func (c *Cache) Snapshot() cell.Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snap
}

// Count returns the number of cells in the current snapshot.
func (c *Cache) Count() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snap.Count()
}

// IDs returns the slot ids of the current snapshot in listing order.
func (c *Cache) IDs() []int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snap.IDs()
}

// ByID returns the cell in the given slot.
func (c *Cache) ByID(id int) (cell.Cell, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if found := c.snap.ByID(id); found != nil {
		return *found, nil
	}
	return cell.Cell{}, ErrNotFound
}

// ByName returns the cell with the given name.
func (c *Cache) ByName(name string) (cell.Cell, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if found := c.snap.ByName(name); found != nil {
		return *found, nil
	}
	return cell.Cell{}, ErrNotFound
}

// ByUUID returns the cell with the given identity.
func (c *Cache) ByUUID(id uuid.UUID) (cell.Cell, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if found := c.snap.ByUUID(id); found != nil {
		return *found, nil
	}
	return cell.Cell{}, ErrNotFound
}
