package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dianahille/pyphoria/internal/game/character"
	"github.com/dianahille/pyphoria/internal/game/loot"
)

// ErrCharacterNotFound is returned when a character lookup yields no results.
var ErrCharacterNotFound = errors.New("character not found")

// ErrCharacterNameTaken is returned when another character already uses the full name.
var ErrCharacterNameTaken = errors.New("character name already taken")

const characterColumns = `id, name, surname, species, level, experience, energy,
	strength, dexterity, intelligence, loot_chance, loot_quality,
	created_at, updated_at`

// CharacterRepository provides character persistence operations.
// It satisfies loot.CharacterSource.
type CharacterRepository struct {
	db *pgxpool.Pool
}

// NewCharacterRepository creates a CharacterRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewCharacterRepository(db *pgxpool.Pool) *CharacterRepository {
	return &CharacterRepository{db: db}
}

func scanCharacter(row pgx.Row) (*character.Character, error) {
	var c character.Character
	err := row.Scan(
		&c.ID, &c.Name, &c.Surname, &c.Species, &c.Level, &c.Experience, &c.Energy,
		&c.Attributes.Strength, &c.Attributes.Dexterity, &c.Attributes.Intelligence,
		&c.LootChance, &c.LootQuality, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Create inserts a new character and returns it with timestamps set.
//
// Precondition: c.ID must be a UUID; c.Name must be non-empty.
// Postcondition: Returns the stored character, or ErrCharacterNameTaken when
// name and surname are already used.
func (r *CharacterRepository) Create(ctx context.Context, c *character.Character) (*character.Character, error) {
	out, err := scanCharacter(r.db.QueryRow(ctx, `
		INSERT INTO characters
			(id, name, surname, species, level, experience, energy,
			 strength, dexterity, intelligence, loot_chance, loot_quality)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
		RETURNING `+characterColumns,
		c.ID, c.Name, c.Surname, c.Species, c.Level, c.Experience, c.Energy,
		c.Attributes.Strength, c.Attributes.Dexterity, c.Attributes.Intelligence,
		c.LootChance, c.LootQuality,
	))
	if err != nil {
		if isDuplicateKeyError(err) {
			return nil, ErrCharacterNameTaken
		}
		return nil, fmt.Errorf("inserting character: %w", err)
	}
	return out, nil
}

// GetByID retrieves a character by its primary key.
//
// Postcondition: Returns the Character or ErrCharacterNotFound.
func (r *CharacterRepository) GetByID(ctx context.Context, id string) (*character.Character, error) {
	c, err := scanCharacter(r.db.QueryRow(ctx,
		`SELECT `+characterColumns+` FROM characters WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCharacterNotFound
		}
		return nil, fmt.Errorf("querying character: %w", err)
	}
	return c, nil
}

// List returns all characters ordered by created_at.
//
// Postcondition: Returns a slice (may be empty) or a non-nil error.
func (r *CharacterRepository) List(ctx context.Context) ([]*character.Character, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+characterColumns+` FROM characters ORDER BY created_at ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("listing characters: %w", err)
	}
	defer rows.Close()

	chars := make([]*character.Character, 0)
	for rows.Next() {
		c, err := scanCharacter(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning character row: %w", err)
		}
		chars = append(chars, c)
	}
	return chars, rows.Err()
}

// Update applies p to the stored character and returns the result.
//
// Only the fields p sets are written. An empty patch returns the current row.
//
// Postcondition: Returns the updated Character, ErrCharacterNotFound, or a
// validation error with the row unchanged.
func (r *CharacterRepository) Update(ctx context.Context, id string, p character.Patch) (*character.Character, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if p.Empty() {
		return r.GetByID(ctx, id)
	}

	var sets []string
	args := []any{id}
	add := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	if p.Name != nil {
		add("name", strings.TrimSpace(*p.Name))
	}
	if p.Surname != nil {
		add("surname", strings.TrimSpace(*p.Surname))
	}
	if p.Species != nil {
		add("species", strings.TrimSpace(*p.Species))
	}
	if p.Level != nil {
		add("level", *p.Level)
	}
	if p.Experience != nil {
		add("experience", *p.Experience)
	}
	if p.Energy != nil {
		add("energy", *p.Energy)
	}
	if p.Strength != nil {
		add("strength", *p.Strength)
	}
	if p.Dexterity != nil {
		add("dexterity", *p.Dexterity)
	}
	if p.Intelligence != nil {
		add("intelligence", *p.Intelligence)
	}
	if p.LootChance != nil {
		add("loot_chance", *p.LootChance)
	}
	if p.LootQuality != nil {
		add("loot_quality", *p.LootQuality)
	}

	c, err := scanCharacter(r.db.QueryRow(ctx,
		`UPDATE characters SET `+strings.Join(sets, ", ")+`, updated_at = NOW()
		WHERE id = $1 RETURNING `+characterColumns,
		args...,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCharacterNotFound
		}
		if isDuplicateKeyError(err) {
			return nil, ErrCharacterNameTaken
		}
		return nil, fmt.Errorf("updating character: %w", err)
	}
	return c, nil
}

// LootProfile returns the level and loot modifiers of a character.
//
// Postcondition: Returns the profile or an error matching ErrCharacterNotFound.
func (r *CharacterRepository) LootProfile(ctx context.Context, characterID string) (loot.CharacterProfile, error) {
	var p loot.CharacterProfile
	err := r.db.QueryRow(ctx, `
		SELECT id, level, loot_chance, loot_quality FROM characters WHERE id = $1`,
		characterID,
	).Scan(&p.ID, &p.Level, &p.Modifiers.Chance, &p.Modifiers.Quality)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return loot.CharacterProfile{}, fmt.Errorf("%w: %s", ErrCharacterNotFound, characterID)
		}
		return loot.CharacterProfile{}, fmt.Errorf("querying loot profile: %w", err)
	}
	return p, nil
}
