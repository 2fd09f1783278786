package persist

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/petgo/petgo/internal/config"
	"github.com/petgo/petgo/internal/world"
)

func newTestRepo(t *testing.T, keep int) *SaveRepo {
	t.Helper()
	ctx := context.Background()
	db, err := NewDB(ctx, config.DatabaseConfig{Path: filepath.Join(t.TempDir(), "saves.db")}, zap.NewNop())
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(db.Close)
	if err := RunMigrations(ctx, db.SQL); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	repo, err := NewSaveRepo(db, keep, zap.NewNop())
	if err != nil {
		t.Fatalf("new repo: %v", err)
	}
	return repo
}

func sampleState(tick uint64) *world.State {
	st := world.NewState()
	st.Pet = &world.Pet{
		Name:      "Sprig",
		SpeciesID: "sproutle",
		Stage:     world.StageChild,
		Alive:     true,
		Level:     3,
		Bond:      62,
		Stats:     world.Stats{Hunger: 71.5, Happiness: 64, Energy: 80, Health: 100},
	}
	st.Inventory.Add("berry", 4)
	st.World.TickCount = tick
	st.Meta.TotalFeeds = 9
	return st
}

func TestLoadEmptyIsFirstRun(t *testing.T) {
	repo := newTestRepo(t, 5)
	st, err := repo.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if st != nil {
		t.Fatalf("empty repo returned a state: %+v", st)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	repo := newTestRepo(t, 5)
	ctx := context.Background()

	if err := repo.Save(ctx, sampleState(42)); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := repo.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got == nil {
		t.Fatal("no state loaded")
	}
	if got.Pet == nil || *got.Pet != *sampleState(42).Pet {
		t.Fatalf("pet did not round-trip: %+v", got.Pet)
	}
	if got.World.TickCount != 42 || got.Meta.TotalFeeds != 9 {
		t.Fatalf("bookkeeping did not round-trip: %+v", got)
	}
	if got.Inventory.Count("berry") != 4 {
		t.Fatalf("inventory did not round-trip: %+v", got.Inventory)
	}
	if got.Save.LastSavedUnix == 0 {
		t.Fatal("LastSavedUnix not stamped from the save row")
	}
}

func TestPruneKeepsNewest(t *testing.T) {
	repo := newTestRepo(t, 2)
	ctx := context.Background()

	for tick := uint64(1); tick <= 5; tick++ {
		if err := repo.Save(ctx, sampleState(tick)); err != nil {
			t.Fatalf("save %d: %v", tick, err)
		}
	}

	var rows int
	if err := repo.db.SQL.QueryRowContext(ctx, `SELECT COUNT(*) FROM saves`).Scan(&rows); err != nil {
		t.Fatalf("count: %v", err)
	}
	if rows != 2 {
		t.Fatalf("kept %d rows, want 2", rows)
	}

	got, err := repo.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.World.TickCount != 5 {
		t.Fatalf("latest save has tick %d, want 5", got.World.TickCount)
	}
}

func TestChecksumRejectsCorruptedBlob(t *testing.T) {
	repo := newTestRepo(t, 5)
	ctx := context.Background()

	if err := repo.Save(ctx, sampleState(7)); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := repo.db.SQL.ExecContext(ctx, `UPDATE saves SET checksum = zeroblob(32)`); err != nil {
		t.Fatalf("corrupt: %v", err)
	}

	_, err := repo.Load(ctx)
	if !errors.Is(err, ErrChecksum) {
		t.Fatalf("err = %v, want ErrChecksum", err)
	}
}
