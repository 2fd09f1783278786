// Package engine is the orchestrator: it owns the authoritative simulation
// state, the system registry, and the tick scheduler, and it drains the
// update queue at every tick boundary.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/petgo/petgo/internal/core/queue"
	coresys "github.com/petgo/petgo/internal/core/system"
	"github.com/petgo/petgo/internal/offline"
	"github.com/petgo/petgo/internal/world"
)

var (
	ErrDuplicateSystem = errors.New("duplicate system name")
	ErrStarted         = errors.New("engine already started")
	ErrNotStarted      = errors.New("engine not started")
	ErrUnknownSystem   = errors.New("unknown system")
)

// Store is the persistence boundary. Load returns (nil, nil) on first run.
// The engine never interprets the save format.
type Store interface {
	Load(ctx context.Context) (*world.State, error)
	Save(ctx context.Context, st *world.State) error
}

// Config tunes the engine. Updates are drained only at tick boundaries, up
// to MaxUpdatesPerTick per tick (0 = drain all); excess carries over to the
// next tick.
type Config struct {
	TickDuration      time.Duration
	MaxUpdatesPerTick int
	MaxUpdateRetries  int
}

// registration is one entry in the system registry.
type registration struct {
	index       int
	name        string
	sys         coresys.System
	handler     coresys.Handler // nil when the capability is absent
	initialized bool
	active      bool
	errors      uint64
	lastError   string
}

// Engine composes the queue, the registered systems, and the offline
// reconciler. All mutation of simulation state happens on the engine's tick
// path; concurrency elsewhere is only the interleaving of producers writing
// into the queue.
type Engine struct {
	cfg   Config
	log   *zap.Logger
	queue *queue.Queue
	store Store
	rec   *offline.Reconciler
	clock Clock

	mu       sync.Mutex
	state    *world.State
	prev     *world.State // previous state, kept transiently for diffing
	regs     []*registration
	byName   map[string]*registration
	handlers map[queue.UpdateType][]*registration

	started bool
	running bool
	paused  bool
	stopCh  chan struct{}

	ticks            uint64
	offlineTicks     uint64
	updatesProcessed uint64
	updatesFailed    uint64
	updatesRetried   uint64
	updatesDiscarded uint64
	lastTickAt       time.Time
	tickDurations    [10]time.Duration
	tickDurCount     int
	tickDurNext      int
}

// New builds an engine. store and rec may be nil (no persistence, no
// catch-up); clock defaults to the wall clock.
func New(cfg Config, log *zap.Logger, store Store, rec *offline.Reconciler, clock Clock) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	if clock == nil {
		clock = NewWallClock()
	}
	if cfg.TickDuration <= 0 {
		cfg.TickDuration = time.Minute
	}
	return &Engine{
		cfg:      cfg,
		log:      log,
		queue:    queue.New(),
		store:    store,
		rec:      rec,
		clock:    clock,
		byName:   make(map[string]*registration),
		handlers: make(map[queue.UpdateType][]*registration),
		stopCh:   make(chan struct{}),
	}
}

// Writer issues a write-only queue handle for the named producer.
func (e *Engine) Writer(name string) *queue.Writer {
	return e.queue.Writer(name)
}

// State returns the current canonical state. Read-only by contract.
func (e *Engine) State() *world.State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Register adds a system to the registry. Names must be unique; a duplicate
// is a hard error, and the first registration is kept. The handled-update
// mapping is computed here, once; a system's declared capabilities are
// fixed for its lifetime. Registration closes when Start is called.
func (e *Engine) Register(sys coresys.System) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.started {
		return ErrStarted
	}
	name := sys.Name()
	if _, dup := e.byName[name]; dup {
		return fmt.Errorf("%w: %q", ErrDuplicateSystem, name)
	}
	reg := &registration{index: len(e.regs), name: name, sys: sys}
	if h, ok := sys.(coresys.Handler); ok {
		reg.handler = h
		for _, t := range h.HandledUpdates() {
			e.handlers[t] = append(e.handlers[t], reg)
		}
	}
	e.regs = append(e.regs, reg)
	e.byName[name] = reg
	return nil
}

// SetActive toggles a system's participation in ticking and update routing.
func (e *Engine) SetActive(name string, active bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	reg, ok := e.byName[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownSystem, name)
	}
	reg.active = active
	return nil
}

// ResetSystem returns the named system to its startup condition, when it
// supports resetting.
func (e *Engine) ResetSystem(name string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	reg, ok := e.byName[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownSystem, name)
	}
	r, ok := reg.sys.(coresys.Resetter)
	if !ok {
		return fmt.Errorf("system %q does not support reset", name)
	}
	return e.guard(reg, r.Reset)
}

// Start loads state, runs offline catch-up, and initializes every
// registered system in registration order. An initialization failure
// shuts down the systems already initialized and aborts: the engine never
// ticks with a half-initialized registry.
func (e *Engine) Start(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.started {
		return ErrStarted
	}

	if err := e.loadState(ctx); err != nil {
		return err
	}
	e.catchUp()

	for i, reg := range e.regs {
		opts := coresys.Options{
			Writer: e.queue.Writer(reg.name),
			Log:    e.log.Named(reg.name),
		}
		if err := e.guard(reg, func() error { return reg.sys.Init(opts) }); err != nil {
			for j := i - 1; j >= 0; j-- {
				down := e.regs[j]
				_ = e.guard(down, down.sys.Shutdown)
				down.initialized = false
				down.active = false
			}
			return fmt.Errorf("init system %q: %w", reg.name, err)
		}
		reg.initialized = true
		reg.active = true
	}

	e.started = true
	e.running = true
	e.lastTickAt = e.clock.Now()
	e.log.Info("engine started",
		zap.Int("systems", len(e.regs)),
		zap.Duration("tick", e.cfg.TickDuration),
		zap.Uint64("offline_ticks", e.offlineTicks))
	return nil
}

func (e *Engine) loadState(ctx context.Context) error {
	if e.store == nil {
		e.state = world.NewState()
		return nil
	}
	st, err := e.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("load state: %w", err)
	}
	if st == nil {
		st = world.NewState()
		e.log.Info("no saved state, starting fresh")
	}
	e.state = st
	return nil
}

// catchUp folds the gap since the last save into the state's time
// bookkeeping and enqueues the reconciliation batch as ordinary updates, so
// the normal drain path applies them with its usual error isolation.
func (e *Engine) catchUp() {
	if e.rec == nil || e.state.Save.LastSavedUnix == 0 {
		return
	}
	elapsed := e.clock.Now().Sub(time.Unix(e.state.Save.LastSavedUnix, 0))
	if elapsed <= 0 {
		return
	}
	res := e.rec.Reconcile(elapsed, e.state)
	if res.TicksEquivalent == 0 {
		return
	}
	e.offlineTicks = res.TicksEquivalent
	e.state.World.TickCount += res.TicksEquivalent
	e.state.World.ClockUnix = e.clock.Now().Unix()
	w := e.queue.Writer("offline")
	for _, u := range res.Updates() {
		w.Enqueue(u)
	}
	e.log.Info("offline catch-up",
		zap.Duration("elapsed", elapsed),
		zap.Uint64("ticks", res.TicksEquivalent),
		zap.Float64("hunger_lost", res.Decay.HungerLost),
		zap.Int("waste_spawned", res.Decay.WasteSpawned),
		zap.Bool("fell_sick", res.Decay.FellSick),
		zap.Bool("died", res.Decay.Died))
}

// Run drives the tick loop until the context is canceled or Stop is called.
// Pausing suspends tick processing without discarding queued updates.
func (e *Engine) Run(ctx context.Context) error {
	e.mu.Lock()
	if !e.started {
		e.mu.Unlock()
		return ErrNotStarted
	}
	e.mu.Unlock()

	e.clock.Start(e.cfg.TickDuration)
	defer e.clock.Stop()

	for {
		select {
		case <-ctx.Done():
			return e.Stop(context.Background())
		case <-e.stopCh:
			return nil
		case now := <-e.clock.C():
			e.Step(now)
		}
	}
}

// Pause suspends ticking. Queued updates are retained.
func (e *Engine) Pause() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.paused {
		e.paused = true
		e.log.Info("engine paused", zap.Int("queued", e.queue.Len()))
	}
}

// Resume restarts ticking after a Pause.
func (e *Engine) Resume() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.paused {
		e.paused = false
		e.lastTickAt = e.clock.Now()
		e.log.Info("engine resumed")
	}
}

// Stop saves state and shuts systems down in reverse registration order.
func (e *Engine) Stop(ctx context.Context) error {
	e.mu.Lock()
	if !e.running {
		e.mu.Unlock()
		return nil
	}
	e.running = false
	close(e.stopCh)

	var firstErr error
	if e.store != nil && e.state != nil {
		e.state.Save.LastSavedUnix = e.clock.Now().Unix()
		e.state.Save.SaveCount++
		if err := e.store.Save(ctx, e.state); err != nil {
			firstErr = fmt.Errorf("final save: %w", err)
			e.log.Error("final save failed", zap.Error(err))
		}
	}
	for i := len(e.regs) - 1; i >= 0; i-- {
		reg := e.regs[i]
		if !reg.initialized {
			continue
		}
		if err := e.guard(reg, reg.sys.Shutdown); err != nil {
			e.log.Error("system shutdown failed", zap.String("system", reg.name), zap.Error(err))
			if firstErr == nil {
				firstErr = err
			}
		}
		reg.initialized = false
		reg.active = false
	}
	e.mu.Unlock()

	e.log.Info("engine stopped", zap.Uint64("ticks", e.ticks))
	return firstErr
}

// Step advances exactly one tick: drain the queue (up to the per-tick cap),
// tick every initialized+active system in registration order, then refresh
// time bookkeeping. Run calls it off the scheduler; tests call it directly.
func (e *Engine) Step(now time.Time) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.started || !e.running || e.paused {
		return
	}

	began := time.Now()
	dt := now.Sub(e.lastTickAt)
	if dt <= 0 {
		dt = e.cfg.TickDuration
	}

	e.ticks++
	e.drain()

	for _, reg := range e.regs {
		if !reg.initialized || !reg.active {
			continue
		}
		if err := e.guard(reg, func() error { return reg.sys.Tick(dt, e.state) }); err != nil {
			e.attribute(reg, err)
		}
	}

	e.state.World.TickCount++
	e.state.World.ClockUnix = now.Unix()
	e.lastTickAt = now

	e.tickDurations[e.tickDurNext] = time.Since(began)
	e.tickDurNext = (e.tickDurNext + 1) % len(e.tickDurations)
	if e.tickDurCount < len(e.tickDurations) {
		e.tickDurCount++
	}
}

// drain processes queued updates in priority/FIFO order up to the per-tick
// cap. Caller holds e.mu.
func (e *Engine) drain() {
	for n := 0; e.cfg.MaxUpdatesPerTick == 0 || n < e.cfg.MaxUpdatesPerTick; n++ {
		u, ok := e.queue.Dequeue()
		if !ok {
			return
		}
		e.process(u)
	}
}

// process routes one update through its handler list in registration order.
// A replacement state returned by one handler is canonical immediately,
// visible to the next handler in the same pass. A failing handler never
// stops the others; a fully failed retryable update is re-enqueued until its
// retry budget runs out.
func (e *Engine) process(u *queue.Update) {
	regs := e.handlers[u.Type]
	failed := false
	delivered := 0

	for _, reg := range regs {
		if u.Target != "" && u.Target != reg.name {
			continue
		}
		if !reg.initialized || !reg.active {
			continue
		}
		var next *world.State
		err := e.guard(reg, func() error {
			var herr error
			next, herr = reg.handler.HandleUpdate(u, e.state)
			return herr
		})
		if err != nil {
			failed = true
			e.attribute(reg, fmt.Errorf("update %s (%s): %w", u.Type, u.ID, err))
			continue
		}
		delivered++
		if next != nil {
			e.prev = e.state
			e.state = next
		}
	}

	e.updatesProcessed++
	if delivered == 0 && !failed {
		e.log.Debug("update had no handler", zap.String("type", string(u.Type)), zap.String("source", u.Source))
	}
	if !failed {
		return
	}
	e.updatesFailed++
	if !u.Retryable {
		return
	}
	if u.RetryCount >= e.cfg.MaxUpdateRetries {
		e.updatesDiscarded++
		e.log.Error("retryable update exhausted retries, discarding",
			zap.String("type", string(u.Type)),
			zap.String("id", u.ID),
			zap.Int("retries", u.RetryCount))
		return
	}
	u.RetryCount++
	e.updatesRetried++
	e.queue.Enqueue(u)
}

// attribute records an error against the system it came from and routes it
// to the system's own error hook.
func (e *Engine) attribute(reg *registration, err error) {
	reg.errors++
	reg.lastError = err.Error()
	e.log.Error("system error",
		zap.String("system", reg.name),
		zap.Error(err))
	defer func() { recover() }() // a broken OnError must not take the engine down
	reg.sys.OnError(err)
}

// guard runs fn with panic isolation, converting a panic into an error
// attributed to the system.
func (e *Engine) guard(reg *registration, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("system %q panicked: %v", reg.name, r)
		}
	}()
	return fn()
}
