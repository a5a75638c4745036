package loot

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// ErrSessionCompleted is returned when Generate is called on a session that has already run.
var ErrSessionCompleted = errors.New("loot session already completed")

// State is the lifecycle state of a Session.
type State int

// Session states. A session moves Initialized -> Generating -> Completed exactly once.
const (
	StateInitialized State = iota
	StateGenerating
	StateCompleted
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateInitialized:
		return "initialized"
	case StateGenerating:
		return "generating"
	case StateCompleted:
		return "completed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// CharacterProfile is the slice of character state loot generation reads.
type CharacterProfile struct {
	ID        string
	Level     int
	Modifiers Modifiers
}

// CharacterSource looks up character loot profiles.
type CharacterSource interface {
	LootProfile(ctx context.Context, characterID string) (CharacterProfile, error)
}

// Result is the ephemeral outcome of one Generate call. Persisting the drops
// into an inventory is the caller's follow-up.
type Result struct {
	CharacterID   string
	MonsterTypeID string
	MonsterLevel  int
	// Sampled is the drop count before ineligible slots were skipped.
	Sampled int
	Drops   []Drop
}

// Service wires the loot components together and opens sessions.
// It holds only read-only dependencies and is safe for concurrent use as
// long as its PoolSource and CharacterSource are.
type Service struct {
	pools      PoolSource
	characters CharacterSource
	sampler    *Sampler
	items      *ItemRoller
	bounds     Bounds
	logger     *zap.Logger
}

// NewService creates a Service.
//
// Precondition: all arguments must be non-nil; bounds.Min <= bounds.Max.
func NewService(pools PoolSource, characters CharacterSource, sampler *Sampler, items *ItemRoller, bounds Bounds, logger *zap.Logger) *Service {
	return &Service{
		pools:      pools,
		characters: characters,
		sampler:    sampler,
		items:      items,
		bounds:     bounds,
		logger:     logger,
	}
}

// Session generates loot for a single encounter in one planet/area context.
// A Session is not safe for concurrent use and cannot be reused.
type Session struct {
	svc      *Service
	planetID string
	areaID   string
	area     *Pool
	state    State
}

// NewSession loads the area pool and returns an initialized session.
//
// Postcondition: Returns a session in StateInitialized, or an error matching
// ErrPoolNotFound when the area has no pool.
func (s *Service) NewSession(ctx context.Context, planetID, areaID string) (*Session, error) {
	area, err := s.pools.AreaPool(ctx, planetID, areaID)
	if err != nil {
		return nil, fmt.Errorf("loading area pool: %w", err)
	}
	return &Session{
		svc:      s,
		planetID: planetID,
		areaID:   areaID,
		area:     area,
		state:    StateInitialized,
	}, nil
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	return s.state
}

// Generate rolls loot for characterID defeating a monster of the given type and level.
//
// The character's modifiers are clamped to the service bounds. A sampled count
// of zero returns an empty result without loading or merging the monster pool.
// Otherwise the area and monster pools are merged and each slot is rolled
// independently with replacement; slots without an eligible entry are skipped.
//
// Precondition: monsterLevel >= 1.
// Postcondition: The session is StateCompleted on return; len(Drops) <= Sampled.
// A missing monster pool fails with ErrPoolNotFound and no partial result.
func (s *Session) Generate(ctx context.Context, characterID, monsterTypeID string, monsterLevel int) (Result, error) {
	if s.state != StateInitialized {
		return Result{}, ErrSessionCompleted
	}
	s.state = StateGenerating
	defer func() { s.state = StateCompleted }()

	if monsterLevel < 1 {
		return Result{}, fmt.Errorf("loot: monster level must be >= 1, got %d", monsterLevel)
	}

	profile, err := s.svc.characters.LootProfile(ctx, characterID)
	if err != nil {
		return Result{}, fmt.Errorf("loading character %s: %w", characterID, err)
	}
	mods := profile.Modifiers.Clamp(s.svc.bounds)

	result := Result{
		CharacterID:   characterID,
		MonsterTypeID: monsterTypeID,
		MonsterLevel:  monsterLevel,
		Drops:         []Drop{},
	}
	result.Sampled = s.svc.sampler.SampleCount(mods.Chance)
	if result.Sampled == 0 {
		s.svc.logger.Debug("no loot dropped",
			zap.String("character", characterID),
			zap.String("monster", monsterTypeID),
		)
		return result, nil
	}

	monster, err := s.svc.pools.MonsterPool(ctx, monsterTypeID)
	if err != nil {
		return Result{}, fmt.Errorf("loading monster pool: %w", err)
	}
	merged := Merge(s.area, monster)

	for slot := 0; slot < result.Sampled; slot++ {
		drop, err := s.svc.items.RollOne(merged, profile.Level, monsterLevel, mods.Quality)
		if errors.Is(err, ErrNoEligibleEntry) {
			s.svc.logger.Debug("loot slot skipped",
				zap.Int("slot", slot),
				zap.Int("character_level", profile.Level),
				zap.Int("monster_level", monsterLevel),
			)
			continue
		}
		if err != nil {
			return Result{}, fmt.Errorf("rolling slot %d: %w", slot, err)
		}
		result.Drops = append(result.Drops, drop)
	}

	s.svc.logger.Info("loot generated",
		zap.String("character", characterID),
		zap.String("planet", s.planetID),
		zap.String("area", s.areaID),
		zap.String("monster", monsterTypeID),
		zap.Int("monster_level", monsterLevel),
		zap.Int("sampled", result.Sampled),
		zap.Int("dropped", len(result.Drops)),
	)
	return result, nil
}

// Encounter describes one defeated monster for Service.Generate.
type Encounter struct {
	PlanetID      string
	AreaID        string
	CharacterID   string
	MonsterTypeID string
	MonsterLevel  int
}

// Generate opens a session for the encounter's area and runs it once.
//
// Postcondition: Same as Session.Generate, plus ErrPoolNotFound for a missing area pool.
func (s *Service) Generate(ctx context.Context, enc Encounter) (Result, error) {
	sess, err := s.NewSession(ctx, enc.PlanetID, enc.AreaID)
	if err != nil {
		return Result{}, err
	}
	return sess.Generate(ctx, enc.CharacterID, enc.MonsterTypeID, enc.MonsterLevel)
}
