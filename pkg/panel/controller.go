package panel

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/leadpilot/filter-engine/pkg/executor"
	"github.com/leadpilot/filter-engine/pkg/facet"
	"github.com/leadpilot/filter-engine/pkg/persistance"
	"github.com/leadpilot/filter-engine/pkg/query"
	"github.com/leadpilot/filter-engine/pkg/tracking"
)

// ErrBusy is returned when Apply is called while a previous apply is still
// in flight.
var ErrBusy = errors.New("apply already in flight")

type State uint8

const (
	StateIdle State = iota
	StateEditing
	StateApplying
)

// Executor runs a compiled filter against the backend.
type Executor interface {
	Execute(ctx context.Context, entity string, params query.Params, page, perPage int) (*executor.Result, error)
}

// Config fixes one panel's identity: its facet schema, the backend entity it
// queries and the session key its snapshot lives under.
type Config struct {
	Schema     facet.Schema
	Entity     string
	StorageKey string
	Page       string
}

// Controller owns the facet store of one open filter panel. It is the only
// writer for the panel's lifetime and serializes all access. Apply is the
// only operation that persists the snapshot and reaches the backend;
// closing a panel without Apply keeps the in-memory edits, the host calls
// Reset to discard them.
type Controller struct {
	ID  string
	cfg Config

	mu      sync.Mutex
	store   *facet.Store
	open    map[string]bool
	state   State
	loaded  bool
	persist *persistance.Adapter
	exec    Executor
	tracker tracking.Tracking
	log     *zap.Logger
	now     func() time.Time
	session int
}

type Option func(*Controller)

func WithTracking(t tracking.Tracking) Option {
	return func(c *Controller) { c.tracker = t }
}

func WithLogger(log *zap.Logger) Option {
	return func(c *Controller) { c.log = log }
}

func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

func WithSession(id int) Option {
	return func(c *Controller) { c.session = id }
}

func NewController(cfg Config, persist *persistance.Adapter, exec Executor, opts ...Option) *Controller {
	c := &Controller{
		ID:      uuid.NewString(),
		cfg:     cfg,
		store:   facet.NewStore(cfg.Schema),
		open:    map[string]bool{},
		persist: persist,
		exec:    exec,
		log:     zap.NewNop(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Open restores the persisted snapshot. Only the first call loads; the
// panel then stays on its in-memory state until Reset.
func (c *Controller) Open(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.loaded {
		return nil
	}
	c.loaded = true
	restored, err := c.persist.Load(ctx, c.cfg.StorageKey, c.cfg.Schema)
	if err != nil {
		return err
	}
	if restored != nil {
		c.store = restored
	}
	return nil
}

// Reset discards in-memory edits and reloads the persisted snapshot.
func (c *Controller) Reset(ctx context.Context) error {
	c.mu.Lock()
	c.loaded = false
	c.store = facet.NewStore(c.cfg.Schema)
	c.state = StateIdle
	c.mu.Unlock()
	return c.Open(ctx)
}

func (c *Controller) SetFacet(name string, value facet.Value) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store.Set(name, value)
	c.state = StateEditing
}

func (c *Controller) SetBool(name, option string, on bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store.SetBool(name, option, on)
	c.state = StateEditing
}

func (c *Controller) AppendTag(name, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store.AppendTag(name, value)
	c.state = StateEditing
}

func (c *Controller) ClearFacet(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store.Clear(name)
	c.state = StateEditing
}

func (c *Controller) DeleteTag(tag facet.Tag) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store.DeleteTag(tag)
	c.state = StateEditing
}

func (c *Controller) Tags() []facet.Tag {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store.Tags()
}

func (c *Controller) Get(name string) facet.Value {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store.Get(name)
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// ToggleGroup flips a facet group between open and closed and reports the
// new state. Pure UI bookkeeping, no network effect.
func (c *Controller) ToggleGroup(group string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.open[group] = !c.open[group]
	return c.open[group]
}

func (c *Controller) IsOpen(group string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.open[group]
}

// Apply compiles the selection, runs it against the backend and, on
// success, mirrors the snapshot to storage. Concurrent applies are
// rejected with ErrBusy.
func (c *Controller) Apply(ctx context.Context, page, perPage int) (*executor.Result, error) {
	c.mu.Lock()
	if c.state == StateApplying {
		c.mu.Unlock()
		return nil, ErrBusy
	}
	c.state = StateApplying
	params := query.Compile(c.store, c.now())
	c.mu.Unlock()

	result, err := c.exec.Execute(ctx, c.cfg.Entity, params, page, perPage)

	// Snapshot under the lock; edits may land while the save runs.
	c.mu.Lock()
	c.state = StateIdle
	snapshot := c.store.Clone()
	c.mu.Unlock()

	if err != nil {
		return nil, err
	}
	if err := c.persist.Save(ctx, c.cfg.StorageKey, snapshot); err != nil {
		// The query already succeeded; losing the snapshot only costs
		// restore-on-next-visit.
		c.log.Warn("failed to persist filter snapshot", zap.String("key", c.cfg.StorageKey), zap.Error(err))
	}
	if c.tracker != nil {
		c.tracker.TrackApply(c.session, c.cfg.Page, params)
	}
	return result, nil
}

// ClearAll empties every facet, deletes the persisted snapshot and returns
// the panel to Idle.
func (c *Controller) ClearAll(ctx context.Context) error {
	c.mu.Lock()
	c.store.ClearAll()
	c.state = StateIdle
	c.mu.Unlock()

	if err := c.persist.Delete(ctx, c.cfg.StorageKey); err != nil {
		return err
	}
	if c.tracker != nil {
		c.tracker.TrackClear(c.session, c.cfg.Page)
	}
	return nil
}
