package world

import "testing"

func TestCloneIsIndependent(t *testing.T) {
	s := NewState()
	s.Pet = &Pet{Name: "Sprig", Alive: true, Stats: Stats{Hunger: 50}}
	s.Egg = &Egg{SpeciesID: "emberling", HatchTicks: 100}
	s.Inventory.Add("berry", 3)
	s.World.TickCount = 7

	c := s.Clone()
	c.Pet.Name = "Moss"
	c.Pet.Stats.Hunger = 10
	c.Egg.ProgressTicks = 50
	c.Inventory.Add("berry", 2)
	c.World.TickCount = 99

	if s.Pet.Name != "Sprig" || s.Pet.Stats.Hunger != 50 {
		t.Fatalf("clone mutated original pet: %+v", s.Pet)
	}
	if s.Egg.ProgressTicks != 0 {
		t.Fatalf("clone mutated original egg: %+v", s.Egg)
	}
	if s.Inventory.Count("berry") != 3 {
		t.Fatalf("clone mutated original inventory: %+v", s.Inventory)
	}
	if s.World.TickCount != 7 {
		t.Fatalf("clone mutated original world: %+v", s.World)
	}
}

func TestCloneNilParts(t *testing.T) {
	s := NewState()
	c := s.Clone()
	if c.Pet != nil || c.Egg != nil {
		t.Fatalf("empty state clone grew parts: %+v", c)
	}
	c.Pet = &Pet{Name: "x"}
	if s.Pet != nil {
		t.Fatal("original gained a pet")
	}
}

func TestInventoryAddRemove(t *testing.T) {
	var inv Inventory
	inv.Add("berry", 2)
	inv.Add("berry", 1)
	inv.Add("tonic", 1)

	if inv.Count("berry") != 3 {
		t.Fatalf("berry count = %d, want 3", inv.Count("berry"))
	}
	if !inv.Remove("berry", 3) {
		t.Fatal("remove should succeed")
	}
	if inv.Count("berry") != 0 {
		t.Fatalf("berry count = %d, want 0", inv.Count("berry"))
	}
	if inv.Remove("berry", 1) {
		t.Fatal("remove from empty stack should fail")
	}
	if inv.Remove("tonic", 2) {
		t.Fatal("removing more than held should fail")
	}
	if inv.Count("tonic") != 1 {
		t.Fatal("failed remove must not change the stack")
	}
}

func TestClampStat(t *testing.T) {
	if ClampStat(-5) != 0 {
		t.Fatal("negative should clamp to 0")
	}
	if ClampStat(120) != 100 {
		t.Fatal("overflow should clamp to 100")
	}
	if ClampStat(42.5) != 42.5 {
		t.Fatal("in-range value should pass through")
	}
}

func TestQualityExcludesHealth(t *testing.T) {
	s := Stats{Hunger: 90, Happiness: 60, Energy: 30, Health: 0}
	if got := s.Quality(); got != 60 {
		t.Fatalf("Quality = %v, want 60", got)
	}
}
