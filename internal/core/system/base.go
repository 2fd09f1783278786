package system

import (
	"time"

	"go.uber.org/zap"

	"github.com/petgo/petgo/internal/core/queue"
	"github.com/petgo/petgo/internal/world"
)

// Base provides the uninitialized → initialized → shut-down state machine and
// default no-op lifecycle methods. Concrete systems embed it and override
// what they need.
type Base struct {
	name        string
	log         *zap.Logger
	writer      *queue.Writer
	initialized bool
	shutdown    bool
}

func NewBase(name string) Base {
	return Base{name: name, log: zap.NewNop()}
}

func (b *Base) Name() string { return b.name }

// Init wires the engine-provided options. A second call warns and does
// nothing.
func (b *Base) Init(opts Options) error {
	if b.initialized {
		b.log.Warn("system already initialized", zap.String("system", b.name))
		return nil
	}
	if opts.Log != nil {
		b.log = opts.Log
	}
	b.writer = opts.Writer
	b.initialized = true
	b.shutdown = false
	return nil
}

func (b *Base) Tick(_ time.Duration, _ *world.State) error { return nil }

func (b *Base) Shutdown() error {
	b.shutdown = true
	b.initialized = false
	return nil
}

// OnError is the default error hook: log and carry on.
func (b *Base) OnError(err error) {
	b.log.Error("system error", zap.String("system", b.name), zap.Error(err))
}

func (b *Base) Initialized() bool     { return b.initialized }
func (b *Base) Writer() *queue.Writer { return b.writer }
func (b *Base) Log() *zap.Logger      { return b.log }
