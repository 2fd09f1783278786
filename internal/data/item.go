package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ItemKind classifies what using an item does.
type ItemKind string

const (
	ItemFood     ItemKind = "food"
	ItemMedicine ItemKind = "medicine"
	ItemToy      ItemKind = "toy"
)

// ItemTemplate holds static data for one usable item loaded from YAML.
type ItemTemplate struct {
	ItemID    string   `yaml:"item_id"`
	Name      string   `yaml:"name"`
	Kind      ItemKind `yaml:"kind"`
	Hunger    float64  `yaml:"hunger"`
	Happiness float64  `yaml:"happiness"`
	Energy    float64  `yaml:"energy"` // energy cost for toys
	Health    float64  `yaml:"health"` // restored by medicine
	Price     int64    `yaml:"price"`
}

type itemListFile struct {
	Items []ItemTemplate `yaml:"items"`
}

// ItemTable holds all item templates indexed by ItemID.
type ItemTable struct {
	byID map[string]*ItemTemplate
}

// LoadItemTable reads the item list from a YAML file.
func LoadItemTable(path string) (*ItemTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read item list %s: %w", path, err)
	}
	var file itemListFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse item list %s: %w", path, err)
	}
	t := &ItemTable{byID: make(map[string]*ItemTemplate, len(file.Items))}
	for i := range file.Items {
		it := &file.Items[i]
		if it.ItemID == "" {
			return nil, fmt.Errorf("item list %s: entry %d has no item_id", path, i)
		}
		switch it.Kind {
		case ItemFood, ItemMedicine, ItemToy:
		default:
			return nil, fmt.Errorf("item list %s: item %q has unknown kind %q", path, it.ItemID, it.Kind)
		}
		if _, dup := t.byID[it.ItemID]; dup {
			return nil, fmt.Errorf("item list %s: duplicate item_id %q", path, it.ItemID)
		}
		t.byID[it.ItemID] = it
	}
	return t, nil
}

// Get returns the template for an ID, or nil.
func (t *ItemTable) Get(itemID string) *ItemTemplate {
	return t.byID[itemID]
}

func (t *ItemTable) Count() int { return len(t.byID) }
