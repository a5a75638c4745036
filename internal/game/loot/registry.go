package loot

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

// yamlPoolFile is the top-level YAML structure for pool files.
type yamlPoolFile struct {
	Pool yamlPool `yaml:"pool"`
}

type yamlPool struct {
	Scope   string  `yaml:"scope"`
	Planet  string  `yaml:"planet"`
	Area    string  `yaml:"area"`
	Monster string  `yaml:"monster"`
	Entries []Entry `yaml:"entries"`
}

// LoadPoolFromBytes parses and validates a single pool from YAML bytes.
//
// Precondition: data must be valid YAML conforming to the pool schema.
// Postcondition: Returns a validated Pool or a non-nil error.
func LoadPoolFromBytes(data []byte) (*Pool, error) {
	var file yamlPoolFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing pool YAML: %w", err)
	}
	p := &Pool{
		Scope:         Scope(file.Pool.Scope),
		PlanetID:      file.Pool.Planet,
		AreaID:        file.Pool.Area,
		MonsterTypeID: file.Pool.Monster,
		Entries:       file.Pool.Entries,
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// LoadPools reads every *.yaml and *.yml file in dir as a pool.
//
// Precondition: dir must be a readable directory.
// Postcondition: Returns all pools in file name order or the first error encountered.
func LoadPools(dir string) ([]*Pool, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading pool dir %q: %w", dir, err)
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		ext := filepath.Ext(entry.Name())
		if entry.IsDir() || (ext != ".yaml" && ext != ".yml") {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	pools := make([]*Pool, 0, len(names))
	for _, name := range names {
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", path, err)
		}
		p, err := LoadPoolFromBytes(data)
		if err != nil {
			return nil, fmt.Errorf("loading %q: %w", path, err)
		}
		pools = append(pools, p)
	}
	return pools, nil
}

// Registry is an in-memory PoolSource.
type Registry struct {
	pools map[string]*Pool
}

// NewRegistry indexes the given pools by key.
//
// Precondition: every pool must have passed Validate.
// Postcondition: Returns an error if two pools share a key.
func NewRegistry(pools []*Pool) (*Registry, error) {
	r := &Registry{pools: make(map[string]*Pool, len(pools))}
	for _, p := range pools {
		key := p.Key()
		if _, exists := r.pools[key]; exists {
			return nil, fmt.Errorf("loot: Registry: pool %q already registered", key)
		}
		r.pools[key] = p
	}
	return r, nil
}

// AreaPool returns the pool configured for the planet/area.
//
// Postcondition: Returns the shared pool or an error matching ErrPoolNotFound.
func (r *Registry) AreaPool(_ context.Context, planetID, areaID string) (*Pool, error) {
	return r.lookup(AreaKey(planetID, areaID))
}

// MonsterPool returns the pool configured for the monster type.
//
// Postcondition: Returns the shared pool or an error matching ErrPoolNotFound.
func (r *Registry) MonsterPool(_ context.Context, monsterTypeID string) (*Pool, error) {
	return r.lookup(MonsterKey(monsterTypeID))
}

func (r *Registry) lookup(key string) (*Pool, error) {
	p, ok := r.pools[key]
	if !ok {
		return nil, poolNotFound(key)
	}
	return p, nil
}

// Len returns the number of registered pools.
func (r *Registry) Len() int {
	return len(r.pools)
}

// All returns every registered pool ordered by key.
func (r *Registry) All() []*Pool {
	out := make([]*Pool, 0, len(r.pools))
	for _, p := range r.pools {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key() < out[j].Key() })
	return out
}

// CheckTemplates verifies that every entry references a known item template.
//
// Postcondition: Returns nil iff known reports true for every referenced template id.
func (r *Registry) CheckTemplates(known func(id string) bool) error {
	for _, p := range r.All() {
		for _, id := range p.TemplateIDs() {
			if !known(id) {
				return fmt.Errorf("loot pool %s references unknown item template %q", p.Key(), id)
			}
		}
	}
	return nil
}
