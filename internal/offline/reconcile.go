// Package offline computes the aggregate effect of ticks that would have run
// while the simulation was not. Reconciliation is closed-form: a week of
// absence costs the same as a minute.
package offline

import (
	"time"

	"github.com/petgo/petgo/internal/care"
	"github.com/petgo/petgo/internal/core/queue"
	"github.com/petgo/petgo/internal/system"
	"github.com/petgo/petgo/internal/world"
)

// Result is the value object summarizing an offline span. It is consumed
// once by the engine, which synthesizes ordinary updates from it; it is
// never persisted.
type Result struct {
	Elapsed         time.Duration
	TicksEquivalent uint64
	Decay           care.Outcome // cumulative decay, spawns, recovery, transitions
	EggTicks        uint64
	EggWouldHatch   bool
	// HatchlingTicks is the tail of the span left after an egg hatches
	// mid-gap; the hatched pet owes that many decay ticks.
	HatchlingTicks uint64
}

// Reconciler converts elapsed real time into its tick-equivalent effects.
type Reconciler struct {
	TickDuration time.Duration
	MinElapsed   time.Duration // below this, no reconciliation happens
	// Decay applies a span of decay ticks to a state in place, growth
	// transitions included; it must be the same implementation the live
	// decay handler uses so catch-up cannot diverge from live play.
	Decay func(st *world.State, ticks uint64) care.Outcome
}

// Reconcile computes the aggregate effect of the elapsed duration on the
// given state. The input state is not mutated; all computation runs on a
// clone. Applying the synthesized updates of the Result to the same state
// produces exactly what the live tick path would have.
func (r *Reconciler) Reconcile(elapsed time.Duration, st *world.State) Result {
	res := Result{Elapsed: elapsed}
	if st == nil || elapsed < r.MinElapsed || r.TickDuration <= 0 {
		return res
	}
	res.TicksEquivalent = uint64(elapsed / r.TickDuration)
	if res.TicksEquivalent == 0 {
		return res
	}

	scratch := st.Clone()
	if scratch.Pet != nil && scratch.Pet.Alive {
		if r.Decay != nil {
			res.Decay = r.Decay(scratch, res.TicksEquivalent)
		} else {
			res.Decay = care.Apply(scratch.Pet, &scratch.World, care.DefaultRates(), res.TicksEquivalent)
		}
	}
	if scratch.Egg != nil {
		res.EggTicks = res.TicksEquivalent
		var toHatch uint64
		if scratch.Egg.HatchTicks > scratch.Egg.ProgressTicks {
			toHatch = scratch.Egg.HatchTicks - scratch.Egg.ProgressTicks
		}
		if res.EggTicks >= toHatch {
			res.EggWouldHatch = true
			res.HatchlingTicks = res.EggTicks - toHatch
		}
	}
	return res
}

// Updates synthesizes the ordinary update batch that realizes the result.
// Routing them through the queue reuses the normal handling path and its
// error isolation instead of a second mutation path.
func (res Result) Updates() []*queue.Update {
	if res.TicksEquivalent == 0 {
		return nil
	}
	var batch []*queue.Update
	if res.Decay.Ticks > 0 || res.Decay.WasteSpawned > 0 || res.Decay.Died || res.Decay.FellSick {
		batch = append(batch, queue.NewUpdate(system.UpdateDecay, system.DecayPayload{Ticks: res.TicksEquivalent}))
	}
	if res.EggTicks > 0 {
		batch = append(batch, queue.NewUpdate(system.UpdateEggProgress, system.EggProgressPayload{Ticks: res.EggTicks}))
	}
	// The hatchling's decay drains after the progress update that hatches it.
	if res.EggWouldHatch && res.HatchlingTicks > 0 {
		batch = append(batch, queue.NewUpdate(system.UpdateDecay, system.DecayPayload{Ticks: res.HatchlingTicks}))
	}
	return batch
}
