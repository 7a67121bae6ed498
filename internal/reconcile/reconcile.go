// Package reconcile assigns stable identities to freshly parsed cell
// listings. The management tool has no persistent identity concept: slot
// ids are reused and nothing survives across invocations. Clients need a
// durable handle, so each cell gets a UUID that is carried forward from
// the previous snapshot whenever a cell of the same name is still listed.
package reconcile

import (
	"github.com/google/uuid"

	"cellctl/internal/cell"
)

// Apply builds a reconciled snapshot from a freshly parsed cell list.
//
// For every new cell the previous snapshot is scanned for a cell with
// exactly the same name; on a match the old UUID is copied verbatim,
// otherwise a new random UUID is generated. Matching is by name only:
// slot ids are reassignable and therefore useless as a durable key. A name
// that disappeared and later reappears gets a fresh identity — continuity
// only holds across adjacent refreshes.
func Apply(prev cell.Snapshot, cells []cell.Cell) cell.Snapshot {
	next := make([]cell.Cell, len(cells))
	for i, c := range cells {
		if old := prev.ByName(c.Name); old != nil {
			c.UUID = old.UUID
		} else {
			c.UUID = uuid.New()
		}
		next[i] = c
	}
	return cell.Snapshot{Cells: next}
}

// ChangeKind classifies one difference between consecutive snapshots.
type ChangeKind string

const (
	ChangeAdded        ChangeKind = "added"
	ChangeRemoved      ChangeKind = "removed"
	ChangeStateChanged ChangeKind = "state-changed"
)

// Change records one cell-level difference between two snapshots.
type Change struct {
	Kind     ChangeKind
	Name     string
	UUID     uuid.UUID
	OldState cell.State
	NewState cell.State
}

// Diff compares two reconciled snapshots and reports which cells appeared,
// vanished or changed state. Cells are matched by name, consistent with
// identity reconciliation. Results are in next-snapshot order for added and
// changed cells, followed by removals in prev-snapshot order.
func Diff(prev, next cell.Snapshot) []Change {
	var changes []Change
	for _, c := range next.Cells {
		old := prev.ByName(c.Name)
		if old == nil {
			changes = append(changes, Change{Kind: ChangeAdded, Name: c.Name, UUID: c.UUID, NewState: c.State})
			continue
		}
		if old.State != c.State {
			changes = append(changes, Change{
				Kind:     ChangeStateChanged,
				Name:     c.Name,
				UUID:     c.UUID,
				OldState: old.State,
				NewState: c.State,
			})
		}
	}
	for _, old := range prev.Cells {
		if next.ByName(old.Name) == nil {
			changes = append(changes, Change{Kind: ChangeRemoved, Name: old.Name, UUID: old.UUID, OldState: old.State})
		}
	}
	return changes
}
