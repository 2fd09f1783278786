// Package data loads static content tables from YAML.
package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// BaseStats are the care values a freshly hatched creature starts with.
type BaseStats struct {
	Hunger    float64 `yaml:"hunger"`
	Happiness float64 `yaml:"happiness"`
	Energy    float64 `yaml:"energy"`
	Health    float64 `yaml:"health"`
}

// Evolutions names the adult species reached from each care-quality band.
type Evolutions struct {
	Good    string `yaml:"good"`
	Neutral string `yaml:"neutral"`
	Poor    string `yaml:"poor"`
}

// SpeciesTemplate holds static data for one species loaded from YAML.
type SpeciesTemplate struct {
	SpeciesID  string     `yaml:"species_id"`
	Name       string     `yaml:"name"`
	HatchTicks uint64     `yaml:"hatch_ticks"`
	BabyTicks  uint64     `yaml:"baby_ticks"`  // age at which baby becomes child
	ChildTicks uint64     `yaml:"child_ticks"` // age at which child evolves to adult
	RestTicks  uint64     `yaml:"rest_ticks"`  // fallback full-rest duration
	BaseStats  BaseStats  `yaml:"base_stats"`
	Attack     int        `yaml:"attack"`
	Defense    int        `yaml:"defense"`
	Evolutions Evolutions `yaml:"evolutions"`
}

type speciesListFile struct {
	Species []SpeciesTemplate `yaml:"species"`
}

// SpeciesTable holds all species templates indexed by SpeciesID.
type SpeciesTable struct {
	byID  map[string]*SpeciesTemplate
	order []string
}

// LoadSpeciesTable reads the species list from a YAML file.
func LoadSpeciesTable(path string) (*SpeciesTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read species list %s: %w", path, err)
	}
	var file speciesListFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse species list %s: %w", path, err)
	}
	t := &SpeciesTable{byID: make(map[string]*SpeciesTemplate, len(file.Species))}
	for i := range file.Species {
		sp := &file.Species[i]
		if sp.SpeciesID == "" {
			return nil, fmt.Errorf("species list %s: entry %d has no species_id", path, i)
		}
		if _, dup := t.byID[sp.SpeciesID]; dup {
			return nil, fmt.Errorf("species list %s: duplicate species_id %q", path, sp.SpeciesID)
		}
		t.byID[sp.SpeciesID] = sp
		t.order = append(t.order, sp.SpeciesID)
	}
	return t, nil
}

// Get returns the template for an ID, or nil.
func (t *SpeciesTable) Get(speciesID string) *SpeciesTemplate {
	return t.byID[speciesID]
}

func (t *SpeciesTable) Count() int { return len(t.byID) }

// IDs returns species IDs in file order.
func (t *SpeciesTable) IDs() []string { return t.order }
