package system

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/petgo/petgo/internal/config"
	"github.com/petgo/petgo/internal/core/queue"
	"github.com/petgo/petgo/internal/persist"
)

func newPersistence(t *testing.T, interval int) (*PersistenceSystem, *queue.Queue, *persist.SaveRepo) {
	t.Helper()
	ctx := context.Background()
	db, err := persist.NewDB(ctx, config.DatabaseConfig{Path: filepath.Join(t.TempDir(), "saves.db")}, zap.NewNop())
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(db.Close)
	if err := persist.RunMigrations(ctx, db.SQL); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	repo, err := persist.NewSaveRepo(db, 10, zap.NewNop())
	if err != nil {
		t.Fatalf("new repo: %v", err)
	}
	s := NewPersistenceSystem(repo, interval)
	q := initSystem(t, s, "persistence")
	return s, q, repo
}

func TestAutoSaveEveryInterval(t *testing.T) {
	s, q, repo := newPersistence(t, 3)
	st := petState()
	st.World.TickCount = 11

	for i := 0; i < 2; i++ {
		if err := s.Tick(time.Minute, st); err != nil {
			t.Fatalf("tick %d: %v", i, err)
		}
	}
	if !q.IsEmpty() {
		t.Fatal("saved before the interval elapsed")
	}
	if got, err := repo.Load(context.Background()); err != nil || got != nil {
		t.Fatalf("save row exists too early: %v %v", got, err)
	}

	if err := s.Tick(time.Minute, st); err != nil {
		t.Fatalf("third tick: %v", err)
	}
	u, ok := q.Dequeue()
	if !ok || u.Type != UpdateSaveMark {
		t.Fatalf("expected %s after the interval, got %v", UpdateSaveMark, u)
	}
	got, err := repo.Load(context.Background())
	if err != nil || got == nil {
		t.Fatalf("no save row after interval: %v %v", got, err)
	}
	if got.World.TickCount != 11 {
		t.Fatalf("saved tick = %d, want 11", got.World.TickCount)
	}
}

func TestResetRestartsInterval(t *testing.T) {
	s, q, _ := newPersistence(t, 2)
	st := petState()

	if err := s.Tick(time.Minute, st); err != nil {
		t.Fatalf("tick: %v", err)
	}
	if err := s.Reset(); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if err := s.Tick(time.Minute, st); err != nil {
		t.Fatalf("tick after reset: %v", err)
	}
	if !q.IsEmpty() {
		t.Fatal("reset should have restarted the interval count")
	}
}

func TestSaveMarkStampsBookkeeping(t *testing.T) {
	s, _, _ := newPersistence(t, 1)
	st := petState()

	at := time.Now().Unix()
	next, err := s.HandleUpdate(queue.NewUpdate(UpdateSaveMark, SaveMarkPayload{SavedAtUnix: at}), st)
	if err != nil {
		t.Fatalf("save mark: %v", err)
	}
	if next.Save.LastSavedUnix != at || next.Save.SaveCount != 1 {
		t.Fatalf("save bookkeeping = %+v, want stamped", next.Save)
	}
	if st.Save.SaveCount != 0 {
		t.Fatal("handler mutated its input")
	}
}
