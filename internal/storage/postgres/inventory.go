package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dianahille/pyphoria/internal/game/inventory"
	"github.com/dianahille/pyphoria/internal/game/loot"
)

// InventoryRepository persists character inventories.
type InventoryRepository struct {
	db    *pgxpool.Pool
	items *inventory.Registry
}

// NewInventoryRepository creates an InventoryRepository. items is used to
// apply stacking and uniqueness rules when granting drops.
//
// Precondition: db and items must be non-nil.
func NewInventoryRepository(db *pgxpool.Pool, items *inventory.Registry) *InventoryRepository {
	return &InventoryRepository{db: db, items: items}
}

// Load returns the stored inventory of a character.
//
// Postcondition: Returns the inventory or ErrCharacterNotFound.
func (r *InventoryRepository) Load(ctx context.Context, characterID string) (*inventory.Inventory, error) {
	return loadInventory(ctx, r.db, characterID, false)
}

// List returns the stacks held by a character in slot order.
//
// Postcondition: Returns a slice (may be empty) or a non-nil error.
func (r *InventoryRepository) List(ctx context.Context, characterID string) ([]inventory.Stack, error) {
	inv, err := r.Load(ctx, characterID)
	if err != nil {
		return nil, err
	}
	return inv.Items(), nil
}

// Grant stores a loot result in the character's inventory in one transaction.
//
// Drops are applied in order with the inventory rules; drops that do not fit
// are returned as rejections and do not fail the grant.
//
// Postcondition: Returns the number of stored drops and the rejections, or
// ErrCharacterNotFound with nothing written.
func (r *InventoryRepository) Grant(ctx context.Context, characterID string, drops []loot.Drop) (int, []inventory.Rejection, error) {
	var (
		stored   int
		rejected []inventory.Rejection
	)
	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		inv, err := loadInventory(ctx, tx, characterID, true)
		if err != nil {
			return err
		}
		stored, rejected = inv.AddDrops(drops, r.items)
		if stored == 0 {
			return nil
		}
		return saveItems(ctx, tx, inv)
	})
	if err != nil {
		return 0, nil, err
	}
	return stored, rejected, nil
}

// AddGold adds amount to a character's gold counter.
//
// Precondition: amount >= 0.
// Postcondition: Returns the new total or ErrCharacterNotFound.
func (r *InventoryRepository) AddGold(ctx context.Context, characterID string, amount int) (int, error) {
	if amount < 0 {
		return 0, fmt.Errorf("gold amount must be >= 0, got %d", amount)
	}
	var gold int
	err := r.db.QueryRow(ctx, `
		UPDATE characters SET gold = gold + $2, updated_at = NOW()
		WHERE id = $1 RETURNING gold`,
		characterID, amount,
	).Scan(&gold)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrCharacterNotFound
		}
		return 0, fmt.Errorf("adding gold: %w", err)
	}
	return gold, nil
}

type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func loadInventory(ctx context.Context, q querier, characterID string, forUpdate bool) (*inventory.Inventory, error) {
	sql := `SELECT inventory_slots, gold FROM characters WHERE id = $1`
	if forUpdate {
		sql += ` FOR UPDATE`
	}
	var slots, gold int
	if err := q.QueryRow(ctx, sql, characterID).Scan(&slots, &gold); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCharacterNotFound
		}
		return nil, fmt.Errorf("querying inventory: %w", err)
	}

	rows, err := q.Query(ctx, `
		SELECT id, item_id, quantity, item_level, tier, stats
		FROM inventory_items WHERE character_id = $1 ORDER BY slot ASC`,
		characterID,
	)
	if err != nil {
		return nil, fmt.Errorf("querying inventory items: %w", err)
	}
	stacks, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (inventory.Stack, error) {
		var s inventory.Stack
		err := row.Scan(&s.InstanceID, &s.ItemID, &s.Quantity, &s.ItemLevel, &s.Tier, &s.Stats)
		return s, err
	})
	if err != nil {
		return nil, fmt.Errorf("scanning inventory items: %w", err)
	}
	return inventory.Restore(characterID, slots, gold, stacks), nil
}

// saveItems rewrites the character's item rows from inv.
func saveItems(ctx context.Context, tx pgx.Tx, inv *inventory.Inventory) error {
	if _, err := tx.Exec(ctx, `DELETE FROM inventory_items WHERE character_id = $1`, inv.CharacterID); err != nil {
		return fmt.Errorf("clearing inventory items: %w", err)
	}
	batch := &pgx.Batch{}
	for slot, s := range inv.Items() {
		stats := s.Stats
		if stats == nil {
			stats = map[string]int{}
		}
		batch.Queue(`
			INSERT INTO inventory_items
				(id, character_id, slot, item_id, quantity, item_level, tier, stats)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			s.InstanceID, inv.CharacterID, slot, s.ItemID, s.Quantity, s.ItemLevel, s.Tier, stats,
		)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("inserting inventory items: %w", err)
	}
	return nil
}
