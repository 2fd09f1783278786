package system

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/petgo/petgo/internal/core/queue"
	coresys "github.com/petgo/petgo/internal/core/system"
	"github.com/petgo/petgo/internal/persist"
	"github.com/petgo/petgo/internal/world"
)

// PersistenceSystem auto-saves the full state every interval ticks. The save
// itself is I/O, not a state mutation; the bookkeeping that a save happened
// rides the queue as a save.mark update handled here.
type PersistenceSystem struct {
	coresys.Base
	repo     *persist.SaveRepo
	interval int
	counter  int
}

func NewPersistenceSystem(repo *persist.SaveRepo, intervalTicks int) *PersistenceSystem {
	if intervalTicks < 1 {
		intervalTicks = 1
	}
	return &PersistenceSystem{
		Base:     coresys.NewBase("persistence"),
		repo:     repo,
		interval: intervalTicks,
	}
}

// Reset restarts the auto-save interval from zero.
func (s *PersistenceSystem) Reset() error {
	s.counter = 0
	return nil
}

func (s *PersistenceSystem) HandledUpdates() []queue.UpdateType {
	return []queue.UpdateType{UpdateSaveMark}
}

func (s *PersistenceSystem) Tick(_ time.Duration, st *world.State) error {
	s.counter++
	if s.counter < s.interval {
		return nil
	}
	s.counter = 0

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.repo.Save(ctx, st); err != nil {
		return fmt.Errorf("auto-save: %w", err)
	}
	s.Writer().Emit(UpdateSaveMark, SaveMarkPayload{SavedAtUnix: time.Now().Unix()})
	s.Log().Debug("auto-saved", zap.Uint64("tick", st.World.TickCount))
	return nil
}

func (s *PersistenceSystem) HandleUpdate(u *queue.Update, st *world.State) (*world.State, error) {
	p, ok := u.Payload.(SaveMarkPayload)
	if !ok {
		return nil, fmt.Errorf("bad save mark payload %T", u.Payload)
	}
	next := st.Clone()
	next.Save.LastSavedUnix = p.SavedAtUnix
	next.Save.SaveCount++
	return next, nil
}
