package system

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/text/unicode/norm"

	"github.com/petgo/petgo/internal/care"
	"github.com/petgo/petgo/internal/config"
	"github.com/petgo/petgo/internal/core/queue"
	coresys "github.com/petgo/petgo/internal/core/system"
	"github.com/petgo/petgo/internal/data"
	"github.com/petgo/petgo/internal/scripting"
	"github.com/petgo/petgo/internal/world"
)

const maxPetNameRunes = 24

// Bond scales action effectiveness between these bounds as it moves 0→100.
const (
	minBondMult = 0.5
	maxBondMult = 1.0
)

// Care-quality bands for picking the adult evolution form.
const (
	goodCareThreshold = 70
	poorCareThreshold = 40
)

// CareSystem owns the creature's day-to-day wellbeing: decay over time,
// feeding, play, sleep, cleaning, medicine, and the growth transitions
// driven by age and care quality. Each live tick it enqueues a one-tick
// decay update; the offline catch-up batch enqueues the same update type
// with the whole span's tick count, so both paths share one handler.
type CareSystem struct {
	coresys.Base
	species *data.SpeciesTable
	scripts *scripting.Engine
	cfg     config.CareConfig
}

func NewCareSystem(species *data.SpeciesTable, scripts *scripting.Engine, cfg config.CareConfig) *CareSystem {
	return &CareSystem{
		Base:    coresys.NewBase("care"),
		species: species,
		scripts: scripts,
		cfg:     cfg,
	}
}

func (s *CareSystem) HandledUpdates() []queue.UpdateType {
	return []queue.UpdateType{
		UpdateDecay, UpdateFeed, UpdatePlay, UpdateSleep, UpdateWake,
		UpdateClean, UpdateMedicine, UpdateRename,
	}
}

// Tick enqueues one tick of decay whenever a living pet exists. State is not
// touched here; the mutation happens when the decay update drains.
func (s *CareSystem) Tick(_ time.Duration, st *world.State) error {
	if st.Pet != nil && st.Pet.Alive {
		s.Writer().Emit(UpdateDecay, DecayPayload{Ticks: 1})
	}
	return nil
}

func (s *CareSystem) HandleUpdate(u *queue.Update, st *world.State) (*world.State, error) {
	switch u.Type {
	case UpdateDecay:
		return s.handleDecay(u, st)
	case UpdateFeed:
		return s.handleFeed(u, st)
	case UpdatePlay:
		return s.handlePlay(u, st)
	case UpdateSleep:
		return s.handleSleep(u, st)
	case UpdateWake:
		return s.handleWake(st)
	case UpdateClean:
		return s.handleClean(st)
	case UpdateMedicine:
		return s.handleMedicine(u, st)
	case UpdateRename:
		return s.handleRename(u, st)
	default:
		return nil, fmt.Errorf("unexpected update type %s", u.Type)
	}
}

// rates fetches the Lua decay model for the pet, falling back to defaults on
// script failure. The offline reconciler uses this same accessor.
func (s *CareSystem) Rates(p *world.Pet) care.Rates {
	if s.scripts == nil {
		return care.DefaultRates()
	}
	r, err := s.scripts.CareRates(p.SpeciesID, int(p.Stage))
	if err != nil {
		s.OnError(fmt.Errorf("care rates for %s: %w", p.SpeciesID, err))
		return care.DefaultRates()
	}
	return r
}

func (s *CareSystem) handleDecay(u *queue.Update, st *world.State) (*world.State, error) {
	p, ok := u.Payload.(DecayPayload)
	if !ok {
		return nil, fmt.Errorf("bad decay payload %T", u.Payload)
	}
	if st.Pet == nil || !st.Pet.Alive || p.Ticks == 0 {
		return nil, nil
	}

	next := st.Clone()
	out := s.DecaySpan(next, p.Ticks)

	if out.Died {
		s.Log().Info("pet died",
			zap.String("name", next.Pet.Name),
			zap.Uint64("age_ticks", next.Pet.AgeTicks))
		return next, nil
	}
	if out.FellSick {
		s.Log().Info("pet fell sick", zap.String("name", next.Pet.Name))
	}
	if out.SleepCompleted {
		s.Log().Debug("pet woke up rested", zap.String("name", next.Pet.Name))
	}
	return next, nil
}

// DecaySpan applies a span of decay ticks to the state in place, segmenting
// at growth boundaries: rates are re-fetched and growth transitions applied
// at each stage-threshold age, so a multi-tick span lands on exactly the
// state the same ticks applied one at a time would. The decay handler and
// the offline reconciler both run spans through here.
func (s *CareSystem) DecaySpan(st *world.State, ticks uint64) care.Outcome {
	var total care.Outcome
	remaining := ticks
	for remaining > 0 && st.Pet != nil && st.Pet.Alive {
		seg := remaining
		if next := s.ticksUntilGrowth(st.Pet); next > 0 && next < seg {
			seg = next
		}
		out := care.Apply(st.Pet, &st.World, s.Rates(st.Pet), seg)
		total.Merge(out)
		if out.Died {
			break
		}
		s.applyGrowth(st)
		remaining -= seg
	}
	return total
}

// ticksUntilGrowth returns how many more decay ticks until the pet reaches
// its next stage threshold, or 0 when no threshold applies.
func (s *CareSystem) ticksUntilGrowth(p *world.Pet) uint64 {
	sp := s.species.Get(p.SpeciesID)
	if sp == nil {
		return 0
	}
	var at uint64
	switch p.Stage {
	case world.StageBaby:
		at = sp.BabyTicks
	case world.StageChild:
		at = sp.ChildTicks
	default:
		return 0
	}
	if at == 0 {
		return 0
	}
	if p.AgeTicks >= at {
		return 1
	}
	return at - p.AgeTicks
}

// applyGrowth advances life stage by age. The adult form depends on care
// quality at the moment of evolution.
func (s *CareSystem) applyGrowth(st *world.State) {
	p := st.Pet
	sp := s.species.Get(p.SpeciesID)
	if sp == nil {
		return
	}
	switch p.Stage {
	case world.StageBaby:
		if sp.BabyTicks > 0 && p.AgeTicks >= sp.BabyTicks {
			p.Stage = world.StageChild
			s.Log().Info("pet grew up", zap.String("name", p.Name), zap.String("stage", p.Stage.String()))
		}
	case world.StageChild:
		if sp.ChildTicks > 0 && p.AgeTicks >= sp.ChildTicks {
			p.Stage = world.StageAdult
			target := s.evolutionTarget(sp, p.Stats.Quality())
			if target != "" && s.species.Get(target) != nil {
				p.SpeciesID = target
			}
			s.Log().Info("pet evolved",
				zap.String("name", p.Name),
				zap.String("species", p.SpeciesID),
				zap.Float64("care_quality", p.Stats.Quality()))
		}
	}
}

func (s *CareSystem) evolutionTarget(sp *data.SpeciesTemplate, quality float64) string {
	switch {
	case quality >= goodCareThreshold:
		return sp.Evolutions.Good
	case quality >= poorCareThreshold:
		return sp.Evolutions.Neutral
	default:
		return sp.Evolutions.Poor
	}
}

// bondMult maps bond 0–100 onto action effectiveness.
func bondMult(bond float64) float64 {
	return minBondMult + (maxBondMult-minBondMult)*bond/100
}

// awakePet is the shared precondition for actions that need a living, awake
// pet. The inventory system runs the same check before consuming an item.
func awakePet(st *world.State) (*world.Pet, error) {
	if st.Pet == nil || !st.Pet.Alive {
		return nil, fmt.Errorf("no living pet")
	}
	if st.Pet.Asleep {
		return nil, fmt.Errorf("%s is asleep", st.Pet.Name)
	}
	return st.Pet, nil
}

func (s *CareSystem) handleFeed(u *queue.Update, st *world.State) (*world.State, error) {
	if _, err := awakePet(st); err != nil {
		return nil, err
	}
	hunger, happiness := s.cfg.MealHunger, s.cfg.MealHappiness
	if p, ok := u.Payload.(FeedPayload); ok {
		hunger, happiness = p.Hunger, p.Happiness
	}

	next := st.Clone()
	pet := next.Pet
	mult := bondMult(pet.Bond)
	pet.Stats.Hunger = world.ClampStat(pet.Stats.Hunger + hunger*mult)
	pet.Stats.Happiness = world.ClampStat(pet.Stats.Happiness + happiness*mult)
	pet.Bond = world.ClampStat(pet.Bond + 1)
	next.Meta.TotalFeeds++
	return next, nil
}

func (s *CareSystem) handlePlay(u *queue.Update, st *world.State) (*world.State, error) {
	pet, err := awakePet(st)
	if err != nil {
		return nil, err
	}
	if pet.Sick {
		return nil, fmt.Errorf("%s is too sick to play", pet.Name)
	}
	happiness, cost := s.cfg.PlayHappiness, s.cfg.PlayEnergyCost
	if p, ok := u.Payload.(PlayPayload); ok {
		happiness, cost = p.Happiness, p.Energy
	}
	if pet.Stats.Energy < cost {
		return nil, fmt.Errorf("%s is too tired to play", pet.Name)
	}

	next := st.Clone()
	pet = next.Pet
	pet.Stats.Happiness = world.ClampStat(pet.Stats.Happiness + happiness*bondMult(pet.Bond))
	pet.Stats.Energy = world.ClampStat(pet.Stats.Energy - cost)
	pet.Bond = world.ClampStat(pet.Bond + 2)
	next.Meta.TotalPlays++
	return next, nil
}

func (s *CareSystem) handleSleep(u *queue.Update, st *world.State) (*world.State, error) {
	pet, err := awakePet(st)
	if err != nil {
		return nil, err
	}
	var ticks uint64
	if p, ok := u.Payload.(SleepPayload); ok {
		ticks = p.Ticks
	}
	if ticks == 0 {
		ticks = s.restTicks(pet)
	}

	next := st.Clone()
	next.Pet.Asleep = true
	next.Pet.SleepTicksLeft = ticks
	return next, nil
}

// restTicks asks Lua for the full-rest duration, falling back to the species
// table and then to a fixed default.
func (s *CareSystem) restTicks(p *world.Pet) uint64 {
	if s.scripts != nil {
		if n, err := s.scripts.RestTicks(p.SpeciesID, int(p.Stage)); err == nil {
			return n
		}
	}
	if sp := s.species.Get(p.SpeciesID); sp != nil && sp.RestTicks > 0 {
		return sp.RestTicks
	}
	return 480
}

func (s *CareSystem) handleWake(st *world.State) (*world.State, error) {
	if st.Pet == nil || !st.Pet.Alive {
		return nil, fmt.Errorf("no living pet")
	}
	if !st.Pet.Asleep {
		return nil, fmt.Errorf("%s is not asleep", st.Pet.Name)
	}
	next := st.Clone()
	next.Pet.Asleep = false
	next.Pet.SleepTicksLeft = 0
	return next, nil
}

func (s *CareSystem) handleClean(st *world.State) (*world.State, error) {
	if st.World.Waste == 0 {
		return nil, nil
	}
	next := st.Clone()
	next.World.Waste = 0
	return next, nil
}

func (s *CareSystem) handleMedicine(u *queue.Update, st *world.State) (*world.State, error) {
	if st.Pet == nil || !st.Pet.Alive {
		return nil, fmt.Errorf("no living pet")
	}
	health := s.cfg.MedicineHealth
	if p, ok := u.Payload.(MedicinePayload); ok {
		health = p.Health
	}

	next := st.Clone()
	next.Pet.Sick = false
	next.Pet.Stats.Health = world.ClampStat(next.Pet.Stats.Health + health)
	return next, nil
}

func (s *CareSystem) handleRename(u *queue.Update, st *world.State) (*world.State, error) {
	if st.Pet == nil {
		return nil, fmt.Errorf("no pet to rename")
	}
	p, ok := u.Payload.(RenamePayload)
	if !ok {
		return nil, fmt.Errorf("bad rename payload %T", u.Payload)
	}
	name := norm.NFC.String(strings.TrimSpace(p.Name))
	if name == "" {
		return nil, fmt.Errorf("empty pet name")
	}
	if runes := []rune(name); len(runes) > maxPetNameRunes {
		name = string(runes[:maxPetNameRunes])
	}

	next := st.Clone()
	next.Pet.Name = name
	return next, nil
}
