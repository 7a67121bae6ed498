// Package cell defines the records tracked for Jailhouse cells and parses
// the tabular output of the management tool's "cell list" command.
package cell

import (
	"github.com/google/uuid"
)

// MaxNameLength is the longest cell name the management tool emits.
const MaxNameLength = 24

// State is the lifecycle state reported by the tool for one cell.
type State int

const (
	StateRunning State = iota
	StateRunningLocked
	StateShutDown
	StateFailed
)

// stateTokens maps the tool's state column tokens to states. Order matters
// for parsing: "running/locked" must be tried before "running".
var stateTokens = []struct {
	token string
	state State
}{
	{"running/locked", StateRunningLocked},
	{"running", StateRunning},
	{"shut down", StateShutDown},
	{"failed", StateFailed},
}

func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateRunningLocked:
		return "running/locked"
	case StateShutDown:
		return "shut down"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

// Cell is one row of the tool's cell listing.
//
// ID is the tool's slot number; it is unique within one listing but may be
// reused after a destroy, so it is not a durable key. Name is unique within
// one listing and is the handle identity reconciliation keys on. UUID is not
// produced by the tool at all: it is zero after parsing and filled in by the
// reconciler.
type Cell struct {
	ID           int
	Name         string
	State        State
	AssignedCPUs []int
	FailedCPUs   []int
	UUID         uuid.UUID
}

// Snapshot is one complete, internally consistent cell listing. It is
// immutable once built; the cache replaces it wholesale on every refresh.
type Snapshot struct {
	Cells []Cell
}

// Count returns the number of cells in the snapshot.
func (s Snapshot) Count() int {
	return len(s.Cells)
}

// ByName returns the first cell with the given name, or nil.
func (s Snapshot) ByName(name string) *Cell {
	for i := range s.Cells {
		if s.Cells[i].Name == name {
			return &s.Cells[i]
		}
	}
	return nil
}

// ByID returns the cell in the given slot, or nil.
func (s Snapshot) ByID(id int) *Cell {
	for i := range s.Cells {
		if s.Cells[i].ID == id {
			return &s.Cells[i]
		}
	}
	return nil
}

// ByUUID returns the cell with the given identity, or nil.
func (s Snapshot) ByUUID(id uuid.UUID) *Cell {
	for i := range s.Cells {
		if s.Cells[i].UUID == id {
			return &s.Cells[i]
		}
	}
	return nil
}

// IDs returns the slot ids of all cells in listing order.
func (s Snapshot) IDs() []int {
	ids := make([]int, len(s.Cells))
	for i := range s.Cells {
		ids[i] = s.Cells[i].ID
	}
	return ids
}
