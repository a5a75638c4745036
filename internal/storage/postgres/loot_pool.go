package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dianahille/pyphoria/internal/game/loot"
)

// LootPoolRepository stores loot pool configuration. It satisfies loot.PoolSource.
type LootPoolRepository struct {
	db *pgxpool.Pool
}

// NewLootPoolRepository creates a LootPoolRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewLootPoolRepository(db *pgxpool.Pool) *LootPoolRepository {
	return &LootPoolRepository{db: db}
}

// AreaPool loads the pool configured for a planet/area.
//
// Postcondition: Returns the pool with entries in stored order, or an error
// matching loot.ErrPoolNotFound.
func (r *LootPoolRepository) AreaPool(ctx context.Context, planetID, areaID string) (*loot.Pool, error) {
	return r.load(ctx, loot.AreaKey(planetID, areaID))
}

// MonsterPool loads the pool configured for a monster type.
//
// Postcondition: Returns the pool with entries in stored order, or an error
// matching loot.ErrPoolNotFound.
func (r *LootPoolRepository) MonsterPool(ctx context.Context, monsterTypeID string) (*loot.Pool, error) {
	return r.load(ctx, loot.MonsterKey(monsterTypeID))
}

func (r *LootPoolRepository) load(ctx context.Context, key string) (*loot.Pool, error) {
	var p loot.Pool
	err := r.db.QueryRow(ctx, `
		SELECT scope, planet_id, area_id, monster_type_id
		FROM loot_pools WHERE pool_key = $1`,
		key,
	).Scan(&p.Scope, &p.PlanetID, &p.AreaID, &p.MonsterTypeID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", loot.ErrPoolNotFound, key)
		}
		return nil, fmt.Errorf("querying loot pool %s: %w", key, err)
	}

	rows, err := r.db.Query(ctx, `
		SELECT item_template_id, weight, min_level, max_level, is_unique
		FROM loot_pool_entries WHERE pool_key = $1 ORDER BY position ASC`,
		key,
	)
	if err != nil {
		return nil, fmt.Errorf("querying loot pool entries %s: %w", key, err)
	}
	p.Entries, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (loot.Entry, error) {
		var e loot.Entry
		err := row.Scan(&e.ItemTemplateID, &e.Weight, &e.MinLevel, &e.MaxLevel, &e.Unique)
		return e, err
	})
	if err != nil {
		return nil, fmt.Errorf("scanning loot pool entries %s: %w", key, err)
	}
	return &p, nil
}

// ReplacePool stores p, replacing any pool with the same key, in one transaction.
//
// Precondition: p must pass Validate.
// Postcondition: On error the stored configuration is unchanged.
func (r *LootPoolRepository) ReplacePool(ctx context.Context, p *loot.Pool) error {
	if err := p.Validate(); err != nil {
		return err
	}
	key := p.Key()
	return pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM loot_pools WHERE pool_key = $1`, key); err != nil {
			return fmt.Errorf("deleting loot pool %s: %w", key, err)
		}
		if _, err := tx.Exec(ctx, `
			INSERT INTO loot_pools (pool_key, scope, planet_id, area_id, monster_type_id)
			VALUES ($1, $2, $3, $4, $5)`,
			key, p.Scope, p.PlanetID, p.AreaID, p.MonsterTypeID,
		); err != nil {
			return fmt.Errorf("inserting loot pool %s: %w", key, err)
		}

		batch := &pgx.Batch{}
		for i, e := range p.Entries {
			batch.Queue(`
				INSERT INTO loot_pool_entries
					(pool_key, position, item_template_id, weight, min_level, max_level, is_unique)
				VALUES ($1, $2, $3, $4, $5, $6, $7)`,
				key, i, e.ItemTemplateID, e.Weight, e.MinLevel, e.MaxLevel, e.Unique,
			)
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("inserting loot pool entries %s: %w", key, err)
		}
		return nil
	})
}

// Keys returns the keys of all stored pools in ascending order.
func (r *LootPoolRepository) Keys(ctx context.Context) ([]string, error) {
	rows, err := r.db.Query(ctx, `SELECT pool_key FROM loot_pools ORDER BY pool_key`)
	if err != nil {
		return nil, fmt.Errorf("listing loot pools: %w", err)
	}
	keys, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("scanning loot pool keys: %w", err)
	}
	return keys, nil
}
