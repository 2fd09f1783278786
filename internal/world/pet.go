package world

// LifeStage is the creature's growth stage. Stages advance by age, and the
// adult form reached depends on care quality at evolution time.
type LifeStage int

const (
	StageEgg LifeStage = iota
	StageBaby
	StageChild
	StageAdult
)

func (s LifeStage) String() string {
	switch s {
	case StageEgg:
		return "egg"
	case StageBaby:
		return "baby"
	case StageChild:
		return "child"
	case StageAdult:
		return "adult"
	default:
		return "unknown"
	}
}

// Stats are the creature's care values, each clamped to [0, 100].
type Stats struct {
	Hunger    float64 `json:"hunger"`
	Happiness float64 `json:"happiness"`
	Energy    float64 `json:"energy"`
	Health    float64 `json:"health"`
}

// Quality is the average of the three care-driven stats, used to pick the
// evolution target. Health is excluded so a sick but well-tended pet is not
// punished twice.
func (s Stats) Quality() float64 {
	return (s.Hunger + s.Happiness + s.Energy) / 3
}

// Pet is the creature being simulated. Mutated only through the replacement
// path: handlers clone the owning State and return the clone.
type Pet struct {
	Name      string    `json:"name"`
	SpeciesID string    `json:"species_id"`
	Stage     LifeStage `json:"stage"`
	Stats     Stats     `json:"stats"`

	Alive bool `json:"alive"`
	Sick  bool `json:"sick"`

	// Sleep bookkeeping. SleepTicksLeft counts down while asleep; the pet
	// wakes when it reaches zero or on an explicit wake update.
	Asleep         bool   `json:"asleep"`
	SleepTicksLeft uint64 `json:"sleep_ticks_left"`

	AgeTicks uint64  `json:"age_ticks"`
	Level    int     `json:"level"`
	Exp      int64   `json:"exp"`
	Bond     float64 `json:"bond"` // 0–100, scales action effectiveness
}

// Egg is an unhatched creature. Progress advances one per tick, offline
// ticks included.
type Egg struct {
	SpeciesID     string `json:"species_id"`
	ProgressTicks uint64 `json:"progress_ticks"`
	HatchTicks    uint64 `json:"hatch_ticks"`
}

// ClampStat bounds a care value to [0, 100].
func ClampStat(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
