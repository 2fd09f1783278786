// Package care holds the per-tick decay model for a creature's care values
// and its closed-form application over an arbitrary tick count. The live tick
// path applies it one tick at a time; the offline reconciler applies the same
// formulas over thousands of ticks in one call. Keeping both on one
// implementation is what makes offline catch-up exactly equal to live play.
package care

// Rates are the per-tick decay and recovery coefficients for one species at
// one life stage. Sourced from the Lua formula scripts; DefaultRates covers
// script failures.
type Rates struct {
	HungerPerTick        float64 // hunger lost per awake tick
	HappinessPerTick     float64 // happiness lost per awake tick
	EnergyPerTick        float64 // energy lost per awake tick
	SleepRecoveryPerTick float64 // energy regained per sleeping tick
	SleepHungerMult      float64 // hunger decay multiplier while asleep
	StarveHealthPerTick  float64 // health lost per tick spent at zero hunger
	SickThreshold        float64 // health below this marks the pet sick
	WasteEveryTicks      uint64  // a dropping spawns every N ticks
	WasteSickCount       int     // droppings on the floor that force sickness
}

// DefaultRates is the fallback when the formula scripts are missing or fail.
// Tuned for a 60s tick: hunger runs out in about 20 hours from full.
func DefaultRates() Rates {
	return Rates{
		HungerPerTick:        0.08,
		HappinessPerTick:     0.05,
		EnergyPerTick:        0.06,
		SleepRecoveryPerTick: 0.25,
		SleepHungerMult:      0.5,
		StarveHealthPerTick:  0.2,
		SickThreshold:        30,
		WasteEveryTicks:      240,
		WasteSickCount:       4,
	}
}
