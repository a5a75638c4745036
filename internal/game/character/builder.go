package character

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
)

// Starting values for a freshly created character.
const (
	StartingLevel     = 1
	StartingEnergy    = 10
	StartingAttribute = 1
)

// maxNameLen bounds Name and Surname.
const maxNameLen = 50

// Build constructs a new level 1 Character with a fresh ID.
//
// Precondition: name must be non-empty; name and surname must be at most 50 characters.
// Postcondition: Returns a Character ready for persistence, or a non-nil error.
func Build(name, surname, species string) (*Character, error) {
	name = strings.TrimSpace(name)
	surname = strings.TrimSpace(surname)
	if name == "" {
		return nil, errors.New("character name must not be empty")
	}
	if err := checkNameLen("name", name); err != nil {
		return nil, err
	}
	if err := checkNameLen("surname", surname); err != nil {
		return nil, err
	}

	return &Character{
		ID:      uuid.NewString(),
		Name:    name,
		Surname: surname,
		Species: species,
		Level:   StartingLevel,
		Energy:  StartingEnergy,
		Attributes: Attributes{
			Strength:     StartingAttribute,
			Dexterity:    StartingAttribute,
			Intelligence: StartingAttribute,
		},
	}, nil
}

func checkNameLen(field, v string) error {
	if len([]rune(v)) > maxNameLen {
		return fmt.Errorf("character %s must be at most %d characters", field, maxNameLen)
	}
	return nil
}

// Patch is a partial update. Nil fields are left untouched; the ID can never be patched.
type Patch struct {
	Name         *string
	Surname      *string
	Species      *string
	Level        *int
	Experience   *int
	Energy       *int
	Strength     *int
	Dexterity    *int
	Intelligence *int
	LootChance   *float64
	LootQuality  *float64
}

// Empty reports whether p changes nothing.
func (p Patch) Empty() bool {
	return p == Patch{}
}

// Validate checks the values p would set.
//
// Postcondition: Returns nil iff applying p to a valid Character yields a valid Character.
func (p Patch) Validate() error {
	var errs []string
	if p.Name != nil {
		if strings.TrimSpace(*p.Name) == "" {
			errs = append(errs, "name must not be empty")
		} else if checkNameLen("name", *p.Name) != nil {
			errs = append(errs, fmt.Sprintf("name must be at most %d characters", maxNameLen))
		}
	}
	if p.Surname != nil && checkNameLen("surname", *p.Surname) != nil {
		errs = append(errs, fmt.Sprintf("surname must be at most %d characters", maxNameLen))
	}
	if p.Level != nil && *p.Level < 1 {
		errs = append(errs, fmt.Sprintf("level must be >= 1, got %d", *p.Level))
	}
	for field, v := range map[string]*int{
		"experience":   p.Experience,
		"energy":       p.Energy,
		"strength":     p.Strength,
		"dexterity":    p.Dexterity,
		"intelligence": p.Intelligence,
	} {
		if v != nil && *v < 0 {
			errs = append(errs, fmt.Sprintf("%s must be >= 0, got %d", field, *v))
		}
	}
	if p.LootChance != nil && *p.LootChance < -1 {
		errs = append(errs, fmt.Sprintf("loot chance must be >= -1, got %v", *p.LootChance))
	}
	if p.LootQuality != nil && *p.LootQuality < -1 {
		errs = append(errs, fmt.Sprintf("loot quality must be >= -1, got %v", *p.LootQuality))
	}
	if len(errs) > 0 {
		sort.Strings(errs)
		return fmt.Errorf("invalid character patch: %s", strings.Join(errs, "; "))
	}
	return nil
}

// Apply validates p and writes its set fields into c.
//
// Precondition: c must be non-nil.
// Postcondition: On error c is unchanged.
func (p Patch) Apply(c *Character) error {
	if err := p.Validate(); err != nil {
		return err
	}
	setString(&c.Name, p.Name)
	setString(&c.Surname, p.Surname)
	setString(&c.Species, p.Species)
	setInt(&c.Level, p.Level)
	setInt(&c.Experience, p.Experience)
	setInt(&c.Energy, p.Energy)
	setInt(&c.Attributes.Strength, p.Strength)
	setInt(&c.Attributes.Dexterity, p.Dexterity)
	setInt(&c.Attributes.Intelligence, p.Intelligence)
	if p.LootChance != nil {
		c.LootChance = *p.LootChance
	}
	if p.LootQuality != nil {
		c.LootQuality = *p.LootQuality
	}
	return nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = strings.TrimSpace(*v)
	}
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}
