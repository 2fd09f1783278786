package care

import (
	"math"

	"github.com/petgo/petgo/internal/world"
)

// Outcome summarizes the aggregate effect of applying a span of decay ticks.
// Loss fields are the amounts actually subtracted after clamping.
type Outcome struct {
	Ticks           uint64 // ticks actually applied (truncated at death)
	HungerLost      float64
	HappinessLost   float64
	EnergyLost      float64
	EnergyRecovered float64
	HealthLost      float64
	StarvedTicks    uint64
	WasteSpawned    int
	SleepCompleted  bool
	FellSick        bool
	Died            bool
}

// Merge folds a following segment's outcome into o, so a span applied in
// pieces reports the same aggregate as one whole-span application.
func (o *Outcome) Merge(next Outcome) {
	o.Ticks += next.Ticks
	o.HungerLost += next.HungerLost
	o.HappinessLost += next.HappinessLost
	o.EnergyLost += next.EnergyLost
	o.EnergyRecovered += next.EnergyRecovered
	o.HealthLost += next.HealthLost
	o.StarvedTicks += next.StarvedTicks
	o.WasteSpawned += next.WasteSpawned
	o.SleepCompleted = o.SleepCompleted || next.SleepCompleted
	o.FellSick = o.FellSick || next.FellSick
	o.Died = o.Died || next.Died
}

// Apply advances the pet and world bookkeeping by the given number of decay
// ticks in closed form: O(1) in the tick count. It is the single source of
// decay semantics: the live path calls it with ticks=1 every engine tick,
// the offline reconciler with the whole catch-up span. For any n, Apply(n)
// equals n successive Apply(1) calls on the same starting state.
//
// Per-tick reference semantics: while asleep, energy recovers and hunger
// decays at the sleep multiplier; awake, hunger/happiness/energy decay at
// full rate. Any tick ending at zero hunger costs StarveHealthPerTick
// health. A dropping spawns every WasteEveryTicks. Decay stops entirely at
// the tick health reaches zero.
func Apply(p *world.Pet, w *world.WorldInfo, r Rates, ticks uint64) Outcome {
	var out Outcome
	if p == nil || !p.Alive || ticks == 0 {
		return out
	}

	remaining := ticks

	// Sleeping segment: partial completion if the span ends mid-sleep.
	if p.Asleep && remaining > 0 {
		span := p.SleepTicksLeft
		if span > remaining {
			span = remaining
		}
		applied := applySegment(p, r, span, true, &out)
		p.SleepTicksLeft -= applied
		if p.SleepTicksLeft == 0 && !out.Died {
			p.Asleep = false
			out.SleepCompleted = true
		}
		remaining -= applied
		if out.Died {
			remaining = 0
		}
	}

	// Awake segment covers whatever the sleep segment did not consume.
	if remaining > 0 && !out.Died {
		applySegment(p, r, remaining, false, &out)
	}

	// Waste cadence and age advance over the ticks that actually elapsed.
	if r.WasteEveryTicks > 0 {
		total := w.TicksSinceWaste + out.Ticks
		out.WasteSpawned = int(total / r.WasteEveryTicks)
		w.Waste += out.WasteSpawned
		w.TicksSinceWaste = total % r.WasteEveryTicks
	}
	p.AgeTicks += out.Ticks

	if out.Died {
		p.Alive = false
		return out
	}
	if !p.Sick && (p.Stats.Health < r.SickThreshold || (r.WasteSickCount > 0 && w.Waste >= r.WasteSickCount)) {
		p.Sick = true
		out.FellSick = true
	}
	return out
}

// applySegment applies up to span ticks of one uniform segment (all asleep or
// all awake), truncating at the death tick. Returns the ticks applied.
func applySegment(p *world.Pet, r Rates, span uint64, asleep bool, out *Outcome) uint64 {
	if span == 0 {
		return 0
	}

	hungerRate := r.HungerPerTick
	if asleep {
		hungerRate *= r.SleepHungerMult
	}

	// First tick index (1-based) at which hunger sits at zero, then the
	// tick at which accumulated starvation empties health.
	starveFrom := firstZeroTick(p.Stats.Hunger, hungerRate)
	deathAt := uint64(math.MaxUint64)
	if starveFrom != math.MaxUint64 && r.StarveHealthPerTick > 0 {
		deathAt = starveFrom + ticksToZero(p.Stats.Health, r.StarveHealthPerTick) - 1
	}

	applied := span
	if deathAt <= applied {
		applied = deathAt
		out.Died = true
	}

	out.Ticks += applied

	// Hunger.
	before := p.Stats.Hunger
	p.Stats.Hunger = world.ClampStat(before - hungerRate*float64(applied))
	out.HungerLost += before - p.Stats.Hunger

	// Starvation → health.
	starved := starvingTicks(starveFrom, applied)
	if starved > 0 {
		before = p.Stats.Health
		p.Stats.Health = world.ClampStat(before - r.StarveHealthPerTick*float64(starved))
		out.HealthLost += before - p.Stats.Health
		out.StarvedTicks += starved
	}

	if asleep {
		before = p.Stats.Energy
		p.Stats.Energy = world.ClampStat(before + r.SleepRecoveryPerTick*float64(applied))
		out.EnergyRecovered += p.Stats.Energy - before
	} else {
		before = p.Stats.Happiness
		p.Stats.Happiness = world.ClampStat(before - r.HappinessPerTick*float64(applied))
		out.HappinessLost += before - p.Stats.Happiness

		before = p.Stats.Energy
		p.Stats.Energy = world.ClampStat(before - r.EnergyPerTick*float64(applied))
		out.EnergyLost += before - p.Stats.Energy
	}

	return applied
}

// firstZeroTick returns the 1-based tick index at which a stat decaying by
// rate per tick first sits at zero, or MaxUint64 if it never does.
func firstZeroTick(v, rate float64) uint64 {
	if v <= 0 {
		return 1
	}
	if rate <= 0 {
		return math.MaxUint64
	}
	return uint64(math.Ceil(v/rate - 1e-9))
}

// ticksToZero returns how many ticks of the given per-tick loss empty the
// stat. A stat already at zero empties on the first tick.
func ticksToZero(v, rate float64) uint64 {
	if v <= 0 {
		return 1
	}
	return uint64(math.Ceil(v/rate - 1e-9))
}

// starvingTicks counts ticks in [1, applied] at or past starveFrom.
func starvingTicks(starveFrom, applied uint64) uint64 {
	if starveFrom == math.MaxUint64 || starveFrom > applied {
		return 0
	}
	return applied - starveFrom + 1
}
