package engine

import "time"

// SystemStatus is per-system health in a Status snapshot.
type SystemStatus struct {
	Name        string
	Index       int
	Initialized bool
	Active      bool
	Errors      uint64
	LastError   string
}

// Status is a derived, read-only snapshot for diagnostics. It is recomputed
// on demand and is never a control input.
type Status struct {
	Running bool
	Paused  bool

	Ticks            uint64
	OfflineTicks     uint64
	UpdatesProcessed uint64
	UpdatesFailed    uint64
	UpdatesRetried   uint64
	UpdatesDiscarded uint64
	QueueDepth       int

	LastTickAt      time.Time
	AvgTickDuration time.Duration

	Systems []SystemStatus
}

// Status builds a point-in-time snapshot of engine health.
func (e *Engine) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()

	s := Status{
		Running:          e.running,
		Paused:           e.paused,
		Ticks:            e.ticks,
		OfflineTicks:     e.offlineTicks,
		UpdatesProcessed: e.updatesProcessed,
		UpdatesFailed:    e.updatesFailed,
		UpdatesRetried:   e.updatesRetried,
		UpdatesDiscarded: e.updatesDiscarded,
		QueueDepth:       e.queue.Len(),
		LastTickAt:       e.lastTickAt,
		Systems:          make([]SystemStatus, 0, len(e.regs)),
	}
	if e.tickDurCount > 0 {
		var sum time.Duration
		for i := 0; i < e.tickDurCount; i++ {
			sum += e.tickDurations[i]
		}
		s.AvgTickDuration = sum / time.Duration(e.tickDurCount)
	}
	for _, reg := range e.regs {
		s.Systems = append(s.Systems, SystemStatus{
			Name:        reg.name,
			Index:       reg.index,
			Initialized: reg.initialized,
			Active:      reg.active,
			Errors:      reg.errors,
			LastError:   reg.lastError,
		})
	}
	return s
}
