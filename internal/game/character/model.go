// Package character defines the character domain model and pure creation logic.
package character

import (
	"time"

	"github.com/dianahille/pyphoria/internal/game/loot"
)

// Attributes holds the base attribute values a character is created with.
type Attributes struct {
	Strength     int
	Dexterity    int
	Intelligence int
}

// Character represents a player character's persistent state.
//
// ID is assigned at creation; CreatedAt and UpdatedAt are set by the persistence layer.
type Character struct {
	ID      string
	Name    string
	Surname string
	Species string

	Level      int
	Experience int
	Energy     int
	Attributes Attributes

	// LootChance scales the number of items dropped; 0 is neutral.
	LootChance float64
	// LootQuality skews rolled item tiers upward; 0 is neutral.
	LootQuality float64

	CreatedAt time.Time
	UpdatedAt time.Time
}

// FullName returns "Name Surname".
func (c *Character) FullName() string {
	if c.Surname == "" {
		return c.Name
	}
	return c.Name + " " + c.Surname
}

// LootProfile returns the view of c that loot generation reads.
//
// Postcondition: modifiers are returned unclamped; the loot session clamps them.
func (c *Character) LootProfile() loot.CharacterProfile {
	return loot.CharacterProfile{
		ID:    c.ID,
		Level: c.Level,
		Modifiers: loot.Modifiers{
			Chance:  c.LootChance,
			Quality: c.LootQuality,
		},
	}
}
