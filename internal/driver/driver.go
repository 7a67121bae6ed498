// Package driver ties the tool facade and the cell cache into one session
// object. Every read refreshes the cache first: the external tool is the
// sole source of truth and offers no change notification, so freshness is
// bought with an extra invocation per lookup.
package driver

import (
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"cellctl/internal/cache"
	"cellctl/internal/cell"
	"cellctl/internal/config"
	"cellctl/internal/jailtool"
	"cellctl/internal/reconcile"
)

// RunState is the coarse lifecycle state exposed to management clients.
// Locked cells are still running from a client's point of view.
type RunState string

const (
	RunStateRunning RunState = "running"
	RunStateShutoff RunState = "shutoff"
	RunStateCrashed RunState = "crashed"
)

func runStateOf(s cell.State) RunState {
	switch s {
	case cell.StateRunning, cell.StateRunningLocked:
		return RunStateRunning
	case cell.StateShutDown:
		return RunStateShutoff
	default:
		return RunStateCrashed
	}
}

// CellInfo is the per-cell view served to clients.
type CellInfo struct {
	ID       int       `json:"id"`
	Name     string    `json:"name"`
	UUID     uuid.UUID `json:"uuid"`
	State    RunState  `json:"state"`
	NumCPUs  int       `json:"numCpus"`
	Assigned []int     `json:"assignedCpus"`
	Failed   []int     `json:"failedCpus,omitempty"`
}

func infoOf(c cell.Cell) CellInfo {
	return CellInfo{
		ID:       c.ID,
		Name:     c.Name,
		UUID:     c.UUID,
		State:    runStateOf(c.State),
		NumCPUs:  len(c.AssignedCPUs),
		Assigned: c.AssignedCPUs,
		Failed:   c.FailedCPUs,
	}
}

// Driver is one management session. It owns the cell cache; there is no
// process-wide state, so independent sessions track identities
// independently.
type Driver struct {
	tool    *jailtool.Tool
	cache   *cache.Cache
	log     zerolog.Logger
	version string
}

// Open verifies the configured binary is a Jailhouse management tool and
// returns a session with an empty cache. A wrong version banner or a
// non-runnable binary is a hard failure.
func Open(cfg config.Config, runner jailtool.Runner, log zerolog.Logger) (*Driver, error) {
	tool := jailtool.New(cfg.ToolBinary, cfg.Timeout.Std(), runner)
	version, err := tool.CheckVersion()
	if err != nil {
		return nil, err
	}
	log.Debug().Str("binary", cfg.ToolBinary).Str("version", version).Msg("opened jailhouse session")
	return &Driver{tool: tool, cache: cache.New(tool), log: log, version: version}, nil
}

// Version returns the version line the tool reported at open time.
func (d *Driver) Version() string { return d.version }

// refresh requeries the tool and logs what changed. A failed refresh leaves
// the cache on its previous snapshot and is returned to the caller.
func (d *Driver) refresh() error {
	changes, err := d.cache.Refresh()
	if err != nil {
		d.log.Warn().Err(err).Msg("cell refresh failed, keeping previous snapshot")
		return err
	}
	for _, ch := range changes {
		ev := d.log.Info().Str("cell", ch.Name).Str("uuid", ch.UUID.String())
		switch ch.Kind {
		case reconcile.ChangeAdded:
			ev.Stringer("state", ch.NewState).Msg("cell appeared")
		case reconcile.ChangeRemoved:
			ev.Msg("cell disappeared")
		case reconcile.ChangeStateChanged:
			ev.Stringer("from", ch.OldState).Stringer("to", ch.NewState).Msg("cell changed state")
		}
	}
	return nil
}

// NumCells returns the number of currently listed cells.
func (d *Driver) NumCells() (int, error) {
	if err := d.refresh(); err != nil {
		return 0, err
	}
	return d.cache.Count(), nil
}

// CellIDs returns the slot ids of all cells in tool listing order.
func (d *Driver) CellIDs() ([]int, error) {
	if err := d.refresh(); err != nil {
		return nil, err
	}
	return d.cache.IDs(), nil
}

// Cells returns the info of every currently listed cell.
func (d *Driver) Cells() ([]CellInfo, error) {
	if err := d.refresh(); err != nil {
		return nil, err
	}
	snap := d.cache.Snapshot()
	infos := make([]CellInfo, len(snap.Cells))
	for i, c := range snap.Cells {
		infos[i] = infoOf(c)
	}
	return infos, nil
}

// CellByID looks a cell up by its current slot id.
func (d *Driver) CellByID(id int) (CellInfo, error) {
	if err := d.refresh(); err != nil {
		return CellInfo{}, err
	}
	c, err := d.cache.ByID(id)
	if err != nil {
		return CellInfo{}, err
	}
	return infoOf(c), nil
}

// CellByName looks a cell up by name.
func (d *Driver) CellByName(name string) (CellInfo, error) {
	if err := d.refresh(); err != nil {
		return CellInfo{}, err
	}
	c, err := d.cache.ByName(name)
	if err != nil {
		return CellInfo{}, err
	}
	return infoOf(c), nil
}

// CellByUUID looks a cell up by its stable identity.
func (d *Driver) CellByUUID(id uuid.UUID) (CellInfo, error) {
	if err := d.refresh(); err != nil {
		return CellInfo{}, err
	}
	c, err := d.cache.ByUUID(id)
	if err != nil {
		return CellInfo{}, err
	}
	return infoOf(c), nil
}

// CreateCell registers a new cell from a cell configuration file. The cache
// is not updated here; the next read observes the effect.
func (d *Driver) CreateCell(configPath string) error {
	d.log.Info().Str("config", configPath).Msg("creating cell")
	return d.tool.Create(configPath)
}

// LoadCell loads an inmate image into the named cell.
func (d *Driver) LoadCell(name, imagePath string, address uint64) error {
	d.log.Info().Str("cell", name).Str("image", imagePath).Msg("loading cell")
	return d.tool.Load(name, imagePath, address)
}

// StartCell starts the cell in the given slot.
func (d *Driver) StartCell(id int) error {
	d.log.Info().Int("id", id).Msg("starting cell")
	return d.tool.Start(id)
}

// ShutdownCell shuts the cell in the given slot down.
func (d *Driver) ShutdownCell(id int) error {
	d.log.Info().Int("id", id).Msg("shutting cell down")
	return d.tool.Shutdown(id)
}

// DestroyCell removes the cell in the given slot entirely.
func (d *Driver) DestroyCell(id int) error {
	d.log.Info().Int("id", id).Msg("destroying cell")
	return d.tool.Destroy(id)
}
