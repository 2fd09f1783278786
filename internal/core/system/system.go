// Package system defines the lifecycle contract every simulation subsystem
// implements and the Base type that provides the shared state machine.
package system

import (
	"time"

	"go.uber.org/zap"

	"github.com/petgo/petgo/internal/core/queue"
	"github.com/petgo/petgo/internal/world"
)

// Options is what the engine hands a system at initialization: a write-only
// queue handle stamped with the system's name, and a named logger.
type Options struct {
	Writer *queue.Writer
	Log    *zap.Logger
}

// System is the lifecycle every registered subsystem implements.
//
// Init is called once by the engine before ticking begins; a defensive
// second call must be a warning no-op, not an error. Tick runs once per
// engine tick while the system is initialized and active; it reads state but
// must not mutate it; periodic mutations go through the Writer so they take
// the same drain path as everything else. Shutdown is terminal. OnError
// receives errors the engine attributed to this system.
type System interface {
	Name() string
	Init(opts Options) error
	Tick(dt time.Duration, st *world.State) error
	Shutdown() error
	OnError(err error)
}

// Handler is the optional update-handling capability. HandledUpdates is read
// once at registration; the declared set is fixed for the system's lifetime.
// HandleUpdate returns a replacement state (nil means no change), built by
// cloning the one it was given, never by mutating it in place.
type Handler interface {
	System
	HandledUpdates() []queue.UpdateType
	HandleUpdate(u *queue.Update, st *world.State) (*world.State, error)
}

// Resetter is the optional reset capability: return an initialized system to
// its startup condition without a shutdown/reinitialize cycle.
type Resetter interface {
	Reset() error
}
