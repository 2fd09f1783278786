package system

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/petgo/petgo/internal/core/queue"
	coresys "github.com/petgo/petgo/internal/core/system"
	"github.com/petgo/petgo/internal/data"
	"github.com/petgo/petgo/internal/world"
)

// IncubationSystem advances egg incubation and hatches the creature when
// progress completes. Like decay, progress rides the queue: one tick live,
// the whole span from offline catch-up.
type IncubationSystem struct {
	coresys.Base
	species *data.SpeciesTable
}

func NewIncubationSystem(species *data.SpeciesTable) *IncubationSystem {
	return &IncubationSystem{
		Base:    coresys.NewBase("incubation"),
		species: species,
	}
}

func (s *IncubationSystem) HandledUpdates() []queue.UpdateType {
	return []queue.UpdateType{UpdateEggStart, UpdateEggProgress}
}

func (s *IncubationSystem) Tick(_ time.Duration, st *world.State) error {
	if st.Egg != nil {
		s.Writer().Emit(UpdateEggProgress, EggProgressPayload{Ticks: 1})
	}
	return nil
}

func (s *IncubationSystem) HandleUpdate(u *queue.Update, st *world.State) (*world.State, error) {
	switch u.Type {
	case UpdateEggStart:
		return s.handleStart(u, st)
	case UpdateEggProgress:
		return s.handleProgress(u, st)
	default:
		return nil, fmt.Errorf("unexpected update type %s", u.Type)
	}
}

func (s *IncubationSystem) handleStart(u *queue.Update, st *world.State) (*world.State, error) {
	p, ok := u.Payload.(EggStartPayload)
	if !ok {
		return nil, fmt.Errorf("bad egg payload %T", u.Payload)
	}
	if st.Pet != nil && st.Pet.Alive {
		return nil, fmt.Errorf("cannot incubate while %s is alive", st.Pet.Name)
	}
	if st.Egg != nil {
		return nil, fmt.Errorf("an egg is already incubating")
	}
	sp := s.species.Get(p.SpeciesID)
	if sp == nil {
		return nil, fmt.Errorf("unknown species %q", p.SpeciesID)
	}

	next := st.Clone()
	next.Egg = &world.Egg{SpeciesID: sp.SpeciesID, HatchTicks: sp.HatchTicks}
	s.Log().Info("incubation started", zap.String("species", sp.SpeciesID), zap.Uint64("hatch_ticks", sp.HatchTicks))
	return next, nil
}

func (s *IncubationSystem) handleProgress(u *queue.Update, st *world.State) (*world.State, error) {
	p, ok := u.Payload.(EggProgressPayload)
	if !ok {
		return nil, fmt.Errorf("bad egg progress payload %T", u.Payload)
	}
	if st.Egg == nil || p.Ticks == 0 {
		return nil, nil
	}

	next := st.Clone()
	next.Egg.ProgressTicks += p.Ticks
	if next.Egg.ProgressTicks < next.Egg.HatchTicks {
		return next, nil
	}

	sp := s.species.Get(next.Egg.SpeciesID)
	if sp == nil {
		return nil, fmt.Errorf("egg references unknown species %q", next.Egg.SpeciesID)
	}
	next.Pet = &world.Pet{
		Name:      sp.Name,
		SpeciesID: sp.SpeciesID,
		Stage:     world.StageBaby,
		Stats: world.Stats{
			Hunger:    sp.BaseStats.Hunger,
			Happiness: sp.BaseStats.Happiness,
			Energy:    sp.BaseStats.Energy,
			Health:    sp.BaseStats.Health,
		},
		Alive: true,
		Level: 1,
		Bond:  50,
	}
	next.Egg = nil
	next.Meta.PetsRaised++
	s.Log().Info("egg hatched", zap.String("species", sp.SpeciesID), zap.String("name", sp.Name))
	return next, nil
}
