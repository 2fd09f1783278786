package care

import (
	"reflect"
	"testing"

	"github.com/petgo/petgo/internal/world"
)

// Rates with exactly representable binary fractions so the closed form and
// the tick-by-tick loop produce bit-identical floats.
func testRates() Rates {
	return Rates{
		HungerPerTick:        0.25,
		HappinessPerTick:     0.125,
		EnergyPerTick:        0.0625,
		SleepRecoveryPerTick: 0.5,
		SleepHungerMult:      0.5,
		StarveHealthPerTick:  0.5,
		SickThreshold:        30,
		WasteEveryTicks:      4,
		WasteSickCount:       3,
	}
}

func testPet() *world.Pet {
	return &world.Pet{
		Name:      "Sprig",
		SpeciesID: "sproutle",
		Stage:     world.StageChild,
		Alive:     true,
		Stats: world.Stats{
			Hunger:    80,
			Happiness: 60,
			Energy:    40,
			Health:    100,
		},
	}
}

// applyIterated runs n single-tick applications, the way the live path does.
func applyIterated(p *world.Pet, w *world.WorldInfo, r Rates, n uint64) {
	for i := uint64(0); i < n; i++ {
		Apply(p, w, r, 1)
	}
}

func TestClosedFormMatchesIterated(t *testing.T) {
	cases := []struct {
		name  string
		setup func(*world.Pet)
		ticks uint64
	}{
		{"awake", func(p *world.Pet) {}, 10},
		{"asleep whole span", func(p *world.Pet) {
			p.Asleep = true
			p.SleepTicksLeft = 20
		}, 12},
		{"wakes mid span", func(p *world.Pet) {
			p.Asleep = true
			p.SleepTicksLeft = 5
		}, 12},
		{"starving", func(p *world.Pet) {
			p.Stats.Hunger = 1.0
		}, 50},
		{"dies mid span", func(p *world.Pet) {
			p.Stats.Hunger = 0
			p.Stats.Health = 2
		}, 10},
	}
	r := testRates()
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p1, p2 := testPet(), testPet()
			tc.setup(p1)
			tc.setup(p2)
			w1 := world.WorldInfo{TicksSinceWaste: 2}
			w2 := world.WorldInfo{TicksSinceWaste: 2}

			Apply(p1, &w1, r, tc.ticks)
			applyIterated(p2, &w2, r, tc.ticks)

			if !reflect.DeepEqual(p1, p2) {
				t.Fatalf("pet diverged:\n closed  %+v\n iterated %+v", p1, p2)
			}
			if !reflect.DeepEqual(w1, w2) {
				t.Fatalf("world diverged:\n closed  %+v\n iterated %+v", w1, w2)
			}
		})
	}
}

func TestStarvationHealthLoss(t *testing.T) {
	p := testPet()
	p.Stats.Hunger = 1.0 // empties at tick 4 with rate 0.25
	var w world.WorldInfo
	out := Apply(p, &w, testRates(), 10)

	if out.StarvedTicks != 7 {
		t.Fatalf("StarvedTicks = %d, want 7", out.StarvedTicks)
	}
	if out.HealthLost != 3.5 {
		t.Fatalf("HealthLost = %v, want 3.5", out.HealthLost)
	}
	if p.Stats.Health != 96.5 {
		t.Fatalf("Health = %v, want 96.5", p.Stats.Health)
	}
}

func TestDeathTruncatesSpan(t *testing.T) {
	p := testPet()
	p.Stats.Hunger = 0
	p.Stats.Health = 2 // four starving ticks at 0.5/tick
	var w world.WorldInfo
	out := Apply(p, &w, testRates(), 100)

	if !out.Died {
		t.Fatal("expected Died")
	}
	if out.Ticks != 4 {
		t.Fatalf("applied %d ticks, want 4", out.Ticks)
	}
	if p.Alive {
		t.Fatal("pet should not be alive")
	}
	if p.AgeTicks != 4 {
		t.Fatalf("AgeTicks = %d, want 4 (age stops at death)", p.AgeTicks)
	}
	if p.Stats.Health != 0 {
		t.Fatalf("Health = %v, want 0", p.Stats.Health)
	}

	// A dead pet no longer decays.
	snap := *p
	if out := Apply(p, &w, testRates(), 10); out.Ticks != 0 {
		t.Fatalf("dead pet applied %d ticks", out.Ticks)
	}
	if *p != snap {
		t.Fatal("dead pet state changed")
	}
}

func TestSleepRecoveryAndCompletion(t *testing.T) {
	p := testPet()
	p.Asleep = true
	p.SleepTicksLeft = 5
	var w world.WorldInfo
	out := Apply(p, &w, testRates(), 5)

	if !out.SleepCompleted {
		t.Fatal("expected SleepCompleted")
	}
	if p.Asleep || p.SleepTicksLeft != 0 {
		t.Fatalf("still asleep: %+v", p)
	}
	if out.EnergyRecovered != 2.5 {
		t.Fatalf("EnergyRecovered = %v, want 2.5", out.EnergyRecovered)
	}
	// Hunger decays at half rate while asleep.
	if out.HungerLost != 0.625 {
		t.Fatalf("HungerLost = %v, want 0.625", out.HungerLost)
	}
	// Happiness untouched during sleep.
	if p.Stats.Happiness != 60 {
		t.Fatalf("Happiness = %v, want 60", p.Stats.Happiness)
	}
}

func TestPartialSleepSpan(t *testing.T) {
	p := testPet()
	p.Asleep = true
	p.SleepTicksLeft = 50
	var w world.WorldInfo
	out := Apply(p, &w, testRates(), 30)

	if out.SleepCompleted {
		t.Fatal("sleep should not complete")
	}
	if !p.Asleep || p.SleepTicksLeft != 20 {
		t.Fatalf("SleepTicksLeft = %d, want 20", p.SleepTicksLeft)
	}
}

func TestWasteCadenceAndResidue(t *testing.T) {
	p := testPet()
	w := world.WorldInfo{TicksSinceWaste: 2}
	out := Apply(p, &w, testRates(), 10)

	if out.WasteSpawned != 3 {
		t.Fatalf("WasteSpawned = %d, want 3", out.WasteSpawned)
	}
	if w.Waste != 3 || w.TicksSinceWaste != 0 {
		t.Fatalf("world = %+v, want Waste 3, residue 0", w)
	}
	// Three droppings meet the sickness count.
	if !p.Sick || !out.FellSick {
		t.Fatal("pet should have fallen sick from waste")
	}
}

func TestZeroTicksIsNoOp(t *testing.T) {
	p := testPet()
	snap := *p
	var w world.WorldInfo
	out := Apply(p, &w, testRates(), 0)
	if out.Ticks != 0 || *p != snap {
		t.Fatalf("zero-tick apply changed state: %+v", out)
	}
}
