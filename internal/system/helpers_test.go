package system

import (
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/petgo/petgo/internal/config"
	"github.com/petgo/petgo/internal/core/queue"
	coresys "github.com/petgo/petgo/internal/core/system"
	"github.com/petgo/petgo/internal/data"
	"github.com/petgo/petgo/internal/world"
)

const speciesYAML = `species:
  - species_id: sproutle
    name: Sproutle
    hatch_ticks: 50
    baby_ticks: 100
    child_ticks: 300
    rest_ticks: 12
    base_stats: { hunger: 80, happiness: 70, energy: 60, health: 100 }
    attack: 10
    defense: 8
    evolutions: { good: florazor, neutral: shrubbit, poor: wiltling }
  - species_id: florazor
    name: Florazor
    attack: 18
    defense: 14
  - species_id: shrubbit
    name: Shrubbit
    attack: 14
    defense: 12
  - species_id: wiltling
    name: Wiltling
    attack: 10
    defense: 9
  - species_id: emberling
    name: Emberling
    hatch_ticks: 60
    baby_ticks: 120
    child_ticks: 360
    rest_ticks: 10
    base_stats: { hunger: 75, happiness: 65, energy: 70, health: 100 }
    attack: 12
    defense: 7
`

const itemsYAML = `items:
  - item_id: berry
    name: Berry
    kind: food
    hunger: 20
    happiness: 4
    price: 5
  - item_id: tonic
    name: Tonic
    kind: medicine
    health: 40
    price: 25
  - item_id: ball
    name: Ball
    kind: toy
    happiness: 16
    energy: 8
    price: 15
`

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func testSpecies(t *testing.T) *data.SpeciesTable {
	t.Helper()
	table, err := data.LoadSpeciesTable(writeTemp(t, "species.yaml", speciesYAML))
	if err != nil {
		t.Fatalf("load species: %v", err)
	}
	return table
}

func testItems(t *testing.T) *data.ItemTable {
	t.Helper()
	table, err := data.LoadItemTable(writeTemp(t, "items.yaml", itemsYAML))
	if err != nil {
		t.Fatalf("load items: %v", err)
	}
	return table
}

func testCareConfig() config.CareConfig {
	return config.CareConfig{
		MealHunger:       40,
		MealHappiness:    8,
		PlayHappiness:    16,
		PlayEnergyCost:   10,
		MedicineHealth:   40,
		BattleEnergyCost: 20,
	}
}

type initable interface {
	Init(coresys.Options) error
}

// initSystem wires a system to a fresh queue the way the engine does at Start.
func initSystem(t *testing.T, sys initable, name string) *queue.Queue {
	t.Helper()
	q := queue.New()
	if err := sys.Init(coresys.Options{Writer: q.Writer(name), Log: zap.NewNop()}); err != nil {
		t.Fatalf("init %s: %v", name, err)
	}
	return q
}

func petState() *world.State {
	st := world.NewState()
	st.Pet = &world.Pet{
		Name:      "Sprig",
		SpeciesID: "sproutle",
		Stage:     world.StageChild,
		Alive:     true,
		Level:     1,
		Bond:      50,
		Stats:     world.Stats{Hunger: 50, Happiness: 50, Energy: 50, Health: 100},
	}
	return st
}
