package system

import (
	"fmt"
	"math/rand"

	"go.uber.org/zap"

	"github.com/petgo/petgo/internal/config"
	"github.com/petgo/petgo/internal/core/queue"
	coresys "github.com/petgo/petgo/internal/core/system"
	"github.com/petgo/petgo/internal/data"
	"github.com/petgo/petgo/internal/scripting"
	"github.com/petgo/petgo/internal/world"
)

// BattleSystem resolves battles against wild opponents. Damage and reward
// formulas live in Lua; this system only sequences the fight and applies the
// outcome. Battles happen only on explicit updates, never on the tick path,
// so randomness here cannot affect offline reconciliation.
type BattleSystem struct {
	coresys.Base
	species *data.SpeciesTable
	scripts *scripting.Engine
	cfg     config.CareConfig
	rng     *rand.Rand
}

func NewBattleSystem(species *data.SpeciesTable, scripts *scripting.Engine, cfg config.CareConfig, seed int64) *BattleSystem {
	return &BattleSystem{
		Base:    coresys.NewBase("battle"),
		species: species,
		scripts: scripts,
		cfg:     cfg,
		rng:     rand.New(rand.NewSource(seed)),
	}
}

func (s *BattleSystem) HandledUpdates() []queue.UpdateType {
	return []queue.UpdateType{UpdateBattleStart}
}

func (s *BattleSystem) HandleUpdate(u *queue.Update, st *world.State) (*world.State, error) {
	p, ok := u.Payload.(BattlePayload)
	if !ok {
		return nil, fmt.Errorf("bad battle payload %T", u.Payload)
	}
	pet := st.Pet
	if pet == nil || !pet.Alive {
		return nil, fmt.Errorf("no living pet")
	}
	if pet.Asleep {
		return nil, fmt.Errorf("%s is asleep", pet.Name)
	}
	if pet.Sick {
		return nil, fmt.Errorf("%s is too sick to battle", pet.Name)
	}
	if pet.Stats.Energy < s.cfg.BattleEnergyCost {
		return nil, fmt.Errorf("%s is too tired to battle", pet.Name)
	}
	mine := s.species.Get(pet.SpeciesID)
	opp := s.species.Get(p.OpponentSpeciesID)
	if mine == nil || opp == nil {
		return nil, fmt.Errorf("unknown battle species %q vs %q", pet.SpeciesID, p.OpponentSpeciesID)
	}

	rng := s.rng
	if p.Seed != 0 {
		rng = rand.New(rand.NewSource(p.Seed))
	}
	oppLevel := 1 + pet.Level*2/3 + rng.Intn(pet.Level+1)

	myScore := s.damage(pet.Level, mine.Attack, opp.Defense, rng.Float64())
	oppScore := s.damage(oppLevel, opp.Attack, mine.Defense, rng.Float64())
	won := myScore >= oppScore

	next := st.Clone()
	pet = next.Pet
	pet.Stats.Energy = world.ClampStat(pet.Stats.Energy - s.cfg.BattleEnergyCost)
	if won {
		exp := s.winExp(pet.Level, oppLevel)
		pet.Exp += exp
		pet.Stats.Happiness = world.ClampStat(pet.Stats.Happiness + 10)
		pet.Bond = world.ClampStat(pet.Bond + 2)
		next.Meta.BattlesWon++
		s.levelUp(pet)
		s.Log().Info("battle won",
			zap.String("opponent", opp.SpeciesID),
			zap.Int("opponent_level", oppLevel),
			zap.Int64("exp", exp))
	} else {
		pet.Stats.Happiness = world.ClampStat(pet.Stats.Happiness - 10)
		next.Meta.BattlesLost++
		s.Log().Info("battle lost",
			zap.String("opponent", opp.SpeciesID),
			zap.Int("opponent_level", oppLevel))
	}
	return next, nil
}

func (s *BattleSystem) damage(level, attack, defense int, roll float64) float64 {
	if s.scripts != nil {
		if d, err := s.scripts.BattleDamage(level, attack, defense, roll); err == nil {
			return d
		}
	}
	d := float64(level*2+attack-defense) * (0.75 + roll/2)
	if d < 1 {
		d = 1
	}
	return d
}

func (s *BattleSystem) winExp(level, oppLevel int) int64 {
	if s.scripts != nil {
		if exp, err := s.scripts.WinExp(level, oppLevel); err == nil {
			return exp
		}
	}
	return int64(10 + oppLevel*5)
}

// levelUp consumes accumulated experience against the Lua level curve.
func (s *BattleSystem) levelUp(pet *world.Pet) {
	for {
		need := s.expToLevel(pet.Level + 1)
		if need <= 0 || pet.Exp < need {
			return
		}
		pet.Level++
		s.Log().Info("level up", zap.String("name", pet.Name), zap.Int("level", pet.Level))
	}
}

func (s *BattleSystem) expToLevel(level int) int64 {
	if s.scripts != nil {
		if n, err := s.scripts.ExpToLevel(level); err == nil {
			return n
		}
	}
	return int64(level*level) * 25
}
