package world

// State is the single authoritative simulation aggregate. It is owned
// exclusively by the engine; systems read it by reference and mutate it only
// by returning a replacement built with Clone. Accessed from the engine
// goroutine only; no locks needed.
type State struct {
	Pet       *Pet      `json:"pet,omitempty"`
	Egg       *Egg      `json:"egg,omitempty"`
	Inventory Inventory `json:"inventory"`
	World     WorldInfo `json:"world"`
	Meta      Meta      `json:"meta"`
	Save      SaveInfo  `json:"save"`
}

// WorldInfo is the simulation's time and environment bookkeeping.
type WorldInfo struct {
	// TickCount is the number of ticks applied to this state since it was
	// created, offline-equivalent ticks included.
	TickCount uint64 `json:"tick_count"`
	// ClockUnix is the simulated world clock, advanced by the engine each
	// tick and jumped forward by offline reconciliation.
	ClockUnix int64 `json:"clock_unix"`
	// Waste is how many droppings are on the floor awaiting cleanup.
	Waste int `json:"waste"`
	// TicksSinceWaste counts ticks since the last waste spawn; the residue
	// carries across offline reconciliation so spawn cadence is exact.
	TicksSinceWaste uint64 `json:"ticks_since_waste"`
}

// Meta is lifetime player bookkeeping, never read by the simulation itself.
type Meta struct {
	PlayerName  string `json:"player_name"`
	BattlesWon  int    `json:"battles_won"`
	BattlesLost int    `json:"battles_lost"`
	TotalFeeds  int    `json:"total_feeds"`
	TotalPlays  int    `json:"total_plays"`
	PetsRaised  int    `json:"pets_raised"`
}

// SaveInfo records persistence bookkeeping.
type SaveInfo struct {
	LastSavedUnix int64 `json:"last_saved_unix"`
	SaveCount     int   `json:"save_count"`
}

// NewState returns an empty first-run state with no pet and no egg.
func NewState() *State {
	return &State{}
}

// Clone returns a deep copy. This is the basis of the replacement-state
// discipline: a handler never mutates the live state, it clones, mutates the
// clone, and returns it.
func (s *State) Clone() *State {
	c := *s
	if s.Pet != nil {
		pet := *s.Pet
		c.Pet = &pet
	}
	if s.Egg != nil {
		egg := *s.Egg
		c.Egg = &egg
	}
	if s.Inventory.Items != nil {
		c.Inventory.Items = make([]Item, len(s.Inventory.Items))
		copy(c.Inventory.Items, s.Inventory.Items)
	}
	return &c
}
