// Package system contains the concrete simulation subsystems registered with
// the engine, and the update vocabulary they exchange.
package system

import "github.com/petgo/petgo/internal/core/queue"

// Update types routed through the queue. Producers are the UI layer, the
// systems themselves, and the engine's offline catch-up batch.
const (
	// Care actions.
	UpdateFeed     queue.UpdateType = "pet.feed"
	UpdatePlay     queue.UpdateType = "pet.play"
	UpdateSleep    queue.UpdateType = "pet.sleep"
	UpdateWake     queue.UpdateType = "pet.wake"
	UpdateClean    queue.UpdateType = "pet.clean"
	UpdateMedicine queue.UpdateType = "pet.medicine"
	UpdateRename   queue.UpdateType = "pet.rename"

	// Periodic decay, enqueued by the care system each live tick and by the
	// offline catch-up batch with the whole span's tick count.
	UpdateDecay queue.UpdateType = "care.decay"

	// Incubation.
	UpdateEggStart    queue.UpdateType = "egg.start"
	UpdateEggProgress queue.UpdateType = "egg.progress"

	// Battles.
	UpdateBattleStart queue.UpdateType = "battle.start"

	// Inventory.
	UpdateItemAdd queue.UpdateType = "inventory.add"
	UpdateItemUse queue.UpdateType = "inventory.use"

	// Persistence bookkeeping, enqueued by the persistence system after a
	// successful auto-save.
	UpdateSaveMark queue.UpdateType = "save.mark"
)

// FeedPayload carries the nourishment of one meal.
type FeedPayload struct {
	Hunger    float64
	Happiness float64
}

// PlayPayload carries one play session's effect.
type PlayPayload struct {
	Happiness float64
	Energy    float64 // energy cost, subtracted
}

// MedicinePayload cures sickness and restores health.
type MedicinePayload struct {
	Health float64
}

// SleepPayload requests sleep for the given number of ticks; zero means the
// species' full rest duration.
type SleepPayload struct {
	Ticks uint64
}

// RenamePayload renames the pet. The care system normalizes the name.
type RenamePayload struct {
	Name string
}

// DecayPayload applies the closed-form decay model over a span of ticks.
type DecayPayload struct {
	Ticks uint64
}

// EggProgressPayload advances incubation by a span of ticks.
type EggProgressPayload struct {
	Ticks uint64
}

// EggStartPayload begins incubating an egg of the given species.
type EggStartPayload struct {
	SpeciesID string
}

// BattlePayload starts a battle against a wild opponent.
type BattlePayload struct {
	OpponentSpeciesID string
	Seed              int64 // 0 = draw from the system's RNG
}

// ItemPayload adds or uses inventory items.
type ItemPayload struct {
	ItemID string
	Count  int
}

// SaveMarkPayload records a completed save in state bookkeeping.
type SaveMarkPayload struct {
	SavedAtUnix int64
}
