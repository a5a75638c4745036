// Package loot generates ephemeral item drops for combat encounters from
// weighted pools keyed by planet/area and monster type.
package loot

import (
	"context"
	"errors"
	"fmt"
	"math"
)

// ErrPoolNotFound is returned when no pool is configured for a requested key.
var ErrPoolNotFound = errors.New("loot pool not found")

// Scope identifies what a pool is keyed by.
type Scope string

// Pool scopes.
const (
	ScopeArea    Scope = "area"
	ScopeMonster Scope = "monster"
	ScopeMerged  Scope = "merged"
)

// Entry is a single droppable item template in a pool.
type Entry struct {
	ItemTemplateID string  `yaml:"item"`
	Weight         float64 `yaml:"weight"`
	MinLevel       int     `yaml:"min_level"`
	// MaxLevel of zero means the entry has no upper monster level bound.
	MaxLevel int  `yaml:"max_level"`
	Unique   bool `yaml:"unique"`
}

// Validate checks the entry invariants.
//
// Postcondition: Returns nil iff ItemTemplateID is non-empty, Weight is a finite
// value > 0, MinLevel >= 0 and MaxLevel is zero or >= MinLevel.
func (e Entry) Validate() error {
	if e.ItemTemplateID == "" {
		return errors.New("item must not be empty")
	}
	if !(e.Weight > 0) || math.IsInf(e.Weight, 0) {
		return fmt.Errorf("item %q: weight must be > 0, got %v", e.ItemTemplateID, e.Weight)
	}
	if e.MinLevel < 0 {
		return fmt.Errorf("item %q: min_level must be >= 0, got %d", e.ItemTemplateID, e.MinLevel)
	}
	if e.MaxLevel != 0 && e.MaxLevel < e.MinLevel {
		return fmt.Errorf("item %q: max_level (%d) must be >= min_level (%d)", e.ItemTemplateID, e.MaxLevel, e.MinLevel)
	}
	return nil
}

// Eligible reports whether the entry may drop for the given levels.
// Regular entries require the character to reach MinLevel. Unique entries
// ignore the character and require the monster to reach MinLevel instead.
// Every entry is excluded when the monster exceeds a non-zero MaxLevel.
func (e Entry) Eligible(characterLevel, monsterLevel int) bool {
	if e.MaxLevel != 0 && monsterLevel > e.MaxLevel {
		return false
	}
	if e.Unique {
		return monsterLevel >= e.MinLevel
	}
	return characterLevel >= e.MinLevel
}

// Pool is an ordered set of entries scoped to an area or a monster type.
// A pool is read-only once loaded and may be shared between sessions.
type Pool struct {
	Scope         Scope
	PlanetID      string
	AreaID        string
	MonsterTypeID string
	Entries       []Entry
}

// AreaKey returns the registry key for a planet/area pool.
func AreaKey(planetID, areaID string) string {
	return string(ScopeArea) + ":" + planetID + "/" + areaID
}

// MonsterKey returns the registry key for a monster type pool.
func MonsterKey(monsterTypeID string) string {
	return string(ScopeMonster) + ":" + monsterTypeID
}

// Key returns the registry key of the pool.
func (p *Pool) Key() string {
	switch p.Scope {
	case ScopeArea:
		return AreaKey(p.PlanetID, p.AreaID)
	case ScopeMonster:
		return MonsterKey(p.MonsterTypeID)
	default:
		return string(p.Scope)
	}
}

// Validate checks the pool scope and every entry.
//
// Postcondition: Returns nil iff the scope's identifying fields are set and
// all entries are valid. An empty pool is valid.
func (p *Pool) Validate() error {
	switch p.Scope {
	case ScopeArea:
		if p.PlanetID == "" || p.AreaID == "" {
			return errors.New("loot pool: area scope requires planet and area")
		}
	case ScopeMonster:
		if p.MonsterTypeID == "" {
			return errors.New("loot pool: monster scope requires monster")
		}
	default:
		return fmt.Errorf("loot pool: scope must be one of [area, monster], got %q", p.Scope)
	}
	for i, e := range p.Entries {
		if err := e.Validate(); err != nil {
			return fmt.Errorf("loot pool %s: entry[%d]: %w", p.Key(), i, err)
		}
	}
	return nil
}

// Merge concatenates the entries of the given pools into a new pool.
// Duplicate item templates are kept as independent weighted entries.
//
// Postcondition: The inputs are not modified; the result has ScopeMerged.
func Merge(pools ...*Pool) *Pool {
	n := 0
	for _, p := range pools {
		n += len(p.Entries)
	}
	out := &Pool{Scope: ScopeMerged, Entries: make([]Entry, 0, n)}
	for _, p := range pools {
		out.Entries = append(out.Entries, p.Entries...)
	}
	return out
}

// TemplateIDs returns the distinct item template ids referenced by the pool, in first-seen order.
func (p *Pool) TemplateIDs() []string {
	seen := make(map[string]bool, len(p.Entries))
	var ids []string
	for _, e := range p.Entries {
		if !seen[e.ItemTemplateID] {
			seen[e.ItemTemplateID] = true
			ids = append(ids, e.ItemTemplateID)
		}
	}
	return ids
}

// PoolSource loads loot pools by key.
//
// Implementations return an error matching ErrPoolNotFound when no
// configuration exists for the key.
type PoolSource interface {
	AreaPool(ctx context.Context, planetID, areaID string) (*Pool, error)
	MonsterPool(ctx context.Context, monsterTypeID string) (*Pool, error)
}

func poolNotFound(key string) error {
	return fmt.Errorf("%w: %s", ErrPoolNotFound, key)
}
