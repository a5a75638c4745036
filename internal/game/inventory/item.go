// Package inventory defines item templates and the character inventory that
// loot drops are stored in.
package inventory

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

// Type constants for ItemDef.Type.
const (
	TypeWeapon     = "weapon"
	TypeArmor      = "armor"
	TypeConsumable = "consumable"
	TypeMaterial   = "material"
	TypeQuest      = "quest"
)

var validTypes = map[string]bool{
	TypeWeapon:     true,
	TypeArmor:      true,
	TypeConsumable: true,
	TypeMaterial:   true,
	TypeQuest:      true,
}

// Requirements are the minimum character values needed to use an item.
type Requirements struct {
	Level        int `yaml:"level"`
	Strength     int `yaml:"strength"`
	Dexterity    int `yaml:"dexterity"`
	Intelligence int `yaml:"intelligence"`
}

// ItemDef defines the static properties of an item template loaded from YAML.
type ItemDef struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Type        string `yaml:"type"`
	Description string `yaml:"description"`
	Icon        string `yaml:"icon"`
	Stackable   bool   `yaml:"stackable"`
	MaxStack    int    `yaml:"max_stack"`
	// UniqueStore items may be held at most once per inventory.
	UniqueStore bool `yaml:"unique_store"`
	// UniqueEquipped items may be equipped at most once.
	UniqueEquipped bool         `yaml:"unique_equipped"`
	Requirements   Requirements `yaml:"requirements"`
}

// Validate checks that the ItemDef satisfies its invariants.
//
// Precondition: d is non-nil.
// Postcondition: returns nil iff all fields are valid.
func (d *ItemDef) Validate() error {
	var errs []error
	if d.ID == "" {
		errs = append(errs, errors.New("ID must not be empty"))
	}
	if d.Name == "" {
		errs = append(errs, errors.New("Name must not be empty"))
	}
	if len([]rune(d.Name)) > 50 {
		errs = append(errs, errors.New("Name must be at most 50 characters"))
	}
	if !validTypes[d.Type] {
		errs = append(errs, fmt.Errorf("Type must be one of weapon, armor, consumable, material, quest; got %q", d.Type))
	}
	if d.MaxStack < 1 {
		errs = append(errs, errors.New("MaxStack must be >= 1"))
	}
	if !d.Stackable && d.MaxStack != 1 {
		errs = append(errs, errors.New("MaxStack must be 1 for non-stackable items"))
	}
	if d.Requirements.Level < 0 {
		errs = append(errs, errors.New("Requirements.Level must be >= 0"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("item validation failed: %v", errs)
	}
	return nil
}

// applyDefaults fills fields the YAML may omit.
func (d *ItemDef) applyDefaults() {
	if d.MaxStack == 0 {
		d.MaxStack = 1
		if d.Stackable {
			d.MaxStack = 100
		}
	}
}

// LoadItemFromBytes parses and validates a single ItemDef.
//
// Postcondition: returns a valid ItemDef or a non-nil error.
func LoadItemFromBytes(data []byte) (*ItemDef, error) {
	var d ItemDef
	if err := yaml.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("parsing item: %w", err)
	}
	d.applyDefaults()
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return &d, nil
}

// LoadItems reads all *.yaml and *.yml files from dir, parses each as an
// ItemDef, validates it, and returns them sorted by ID.
//
// Precondition: dir is a readable directory path.
// Postcondition: returns all valid ItemDefs or the first encountered error.
func LoadItems(dir string) ([]*ItemDef, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("LoadItems: cannot read directory %q: %w", dir, err)
	}

	var items []*ItemDef
	for _, entry := range entries {
		ext := filepath.Ext(entry.Name())
		if entry.IsDir() || (ext != ".yaml" && ext != ".yml") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("LoadItems: cannot read file %q: %w", path, err)
		}
		d, err := LoadItemFromBytes(data)
		if err != nil {
			return nil, fmt.Errorf("LoadItems: invalid item in %q: %w", path, err)
		}
		items = append(items, d)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items, nil
}
