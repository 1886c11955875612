// Package nav is the navigation controller: it moves the chart between the
// top level and a single cluster's sublevel and guards dataset loads with a
// request epoch so that only the most recent load is applied.
package nav

import (
	"context"
	"sync"

	"constellation/internal/catalog"
	"constellation/internal/interact"
	"constellation/internal/logger"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
)

// ErrNested is returned when entering a sublevel from a sublevel.
var ErrNested = errors.New("already inside a cluster")

// View is the chart state reset on every level change.
type View interface {
	Reset(level interact.Level)
	SetDataset(ds *catalog.Dataset)
}

// Stopper silences playback.
type Stopper interface {
	Stop()
}

// Ticket identifies one dataset load. Only the ticket with the latest
// epoch may complete.
type Ticket struct {
	Epoch   uint64
	Level   interact.Level
	Cluster string // dataset key to fetch
}

// Controller owns the navigation level and the current dataset.
type Controller struct {
	mu sync.Mutex

	root  string
	view  View
	audio Stopper
	log   *zap.SugaredLogger

	level     interact.Level
	groupID   string
	groupName string
	dataset   *catalog.Dataset
	epoch     uint64
	visits    uint64 // level entries; reloads do not count
}

// New creates a controller whose top level is the dataset keyed root.
// audio may be nil when playback is disabled.
func New(root string, view View, audio Stopper, log *zap.SugaredLogger) *Controller {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Controller{
		root:    root,
		view:    view,
		audio:   audio,
		log:     log,
		dataset: catalog.Empty,
	}
}

// Start enters the top level. It is called once at startup.
func (c *Controller) Start() Ticket {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.enter(interact.TopLevel, "", "")
}

// Enter moves from the top level into the sublevel of groupID.
func (c *Controller) Enter(groupID, name string) (Ticket, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.level == interact.SubLevel {
		return Ticket{}, errors.Wrapf(ErrNested, "enter %q from %q", groupID, c.groupID)
	}
	if groupID == "" {
		return Ticket{}, errors.New("empty cluster id")
	}
	return c.enter(interact.SubLevel, groupID, name), nil
}

// Back returns from a sublevel to the top level. It reports false at the
// top level.
func (c *Controller) Back() (Ticket, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.level != interact.SubLevel {
		return Ticket{}, false
	}
	return c.enter(interact.TopLevel, "", ""), true
}

// Reload fetches the current level's dataset again without resetting the
// view. Any load in flight is superseded.
func (c *Controller) Reload() Ticket {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.epoch++
	return c.ticket()
}

func (c *Controller) enter(level interact.Level, groupID, name string) Ticket {
	c.epoch++
	c.visits++
	c.level = level
	c.groupID = groupID
	c.groupName = name
	c.dataset = catalog.Empty
	c.view.Reset(level)
	c.view.SetDataset(catalog.Empty)
	if c.audio != nil {
		c.audio.Stop()
	}
	t := c.ticket()
	c.log.Infow("enter level", logger.FieldLevel, level, logger.FieldCluster, t.Cluster, logger.FieldEpoch, t.Epoch)
	return t
}

func (c *Controller) ticket() Ticket {
	cluster := c.root
	if c.level == interact.SubLevel {
		cluster = c.groupID
	}
	return Ticket{Epoch: c.epoch, Level: c.level, Cluster: cluster}
}

// Fetch loads the dataset for t. It does not touch controller state and
// may run on any goroutine.
func Fetch(ctx context.Context, src catalog.Source, t Ticket) (*catalog.Dataset, error) {
	return catalog.LoadDataset(ctx, src, t.Cluster)
}

// Complete applies the result of the load for t. Results for superseded
// tickets are dropped and reported as false. A failed load shows an empty
// scene.
func (c *Controller) Complete(t Ticket, ds *catalog.Dataset, err error) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if t.Epoch != c.epoch {
		c.log.Debugw("discard stale dataset", logger.FieldCluster, t.Cluster, logger.FieldEpoch, t.Epoch, "current", c.epoch)
		return false
	}
	if err != nil {
		c.log.Warnw("dataset unavailable", logger.FieldCluster, t.Cluster, logger.FieldError, err)
		ds = catalog.Empty
	}
	if ds == nil {
		ds = catalog.Empty
	}
	c.dataset = ds
	c.view.SetDataset(ds)
	c.log.Infow("dataset loaded", logger.FieldCluster, t.Cluster, logger.FieldCount, ds.Len(), logger.FieldEpoch, t.Epoch)
	return true
}

// Level returns the current navigation level.
func (c *Controller) Level() interact.Level {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.level
}

// Group returns the id and name of the cluster shown at the sublevel.
func (c *Controller) Group() (id, name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.groupID, c.groupName
}

// Dataset returns the scene currently shown.
func (c *Controller) Dataset() *catalog.Dataset {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dataset
}

// Epoch returns the current request epoch.
func (c *Controller) Epoch() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.epoch
}

// Visits counts level entries. Unlike Epoch it does not move on Reload,
// so it tells whether the user navigated since a value was read.
func (c *Controller) Visits() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.visits
}
