package data

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoadSpeciesTable(t *testing.T) {
	path := writeTemp(t, "species.yaml", `species:
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
  - species_id: emberling
    name: Emberling
    hatch_ticks: 60
`)
	table, err := LoadSpeciesTable(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if table.Count() != 2 {
		t.Fatalf("Count = %d, want 2", table.Count())
	}

	sp := table.Get("sproutle")
	if sp == nil {
		t.Fatal("sproutle missing")
	}
	if sp.HatchTicks != 50 || sp.BabyTicks != 100 || sp.ChildTicks != 300 {
		t.Fatalf("growth ticks = %+v", sp)
	}
	if sp.BaseStats.Hunger != 80 || sp.BaseStats.Health != 100 {
		t.Fatalf("base stats = %+v", sp.BaseStats)
	}
	if sp.Evolutions.Good != "florazor" || sp.Evolutions.Poor != "wiltling" {
		t.Fatalf("evolutions = %+v", sp.Evolutions)
	}

	ids := table.IDs()
	if len(ids) != 2 || ids[0] != "sproutle" || ids[1] != "emberling" {
		t.Fatalf("IDs = %v, want file order", ids)
	}
	if table.Get("dragon") != nil {
		t.Fatal("unknown species should be nil")
	}
}

func TestSpeciesTableRejectsDuplicates(t *testing.T) {
	path := writeTemp(t, "species.yaml", `species:
  - species_id: sproutle
    name: A
  - species_id: sproutle
    name: B
`)
	if _, err := LoadSpeciesTable(path); err == nil {
		t.Fatal("duplicate species_id should fail")
	}
}

func TestSpeciesTableRejectsMissingID(t *testing.T) {
	path := writeTemp(t, "species.yaml", `species:
  - name: Nameless
`)
	if _, err := LoadSpeciesTable(path); err == nil {
		t.Fatal("entry without species_id should fail")
	}
}

func TestLoadItemTable(t *testing.T) {
	path := writeTemp(t, "items.yaml", `items:
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
`)
	table, err := LoadItemTable(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if table.Count() != 2 {
		t.Fatalf("Count = %d, want 2", table.Count())
	}
	berry := table.Get("berry")
	if berry == nil || berry.Kind != ItemFood || berry.Hunger != 20 {
		t.Fatalf("berry = %+v", berry)
	}
}

func TestItemTableRejectsUnknownKind(t *testing.T) {
	path := writeTemp(t, "items.yaml", `items:
  - item_id: rock
    name: Rock
    kind: mineral
`)
	if _, err := LoadItemTable(path); err == nil {
		t.Fatal("unknown item kind should fail")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := LoadSpeciesTable(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("missing file should fail")
	}
}
