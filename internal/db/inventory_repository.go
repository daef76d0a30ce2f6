package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/korrin/meago/internal/data"
	"github.com/korrin/meago/internal/model"
)

// InventoryRepository manages owned item stacks.
type InventoryRepository struct {
	pool *pgxpool.Pool
}

func NewInventoryRepository(pool *pgxpool.Pool) *InventoryRepository {
	return &InventoryRepository{pool: pool}
}

const inventoryColumns = `id, user_id, definition_name, stack_size, seen,
	instance_attributes, created_at, last_granted_at, earned_by, restricted`

func scanItem(row pgx.Row) (*model.InventoryItem, error) {
	var item model.InventoryItem
	var attrs []byte
	err := row.Scan(&item.ID, &item.UserID, &item.DefinitionName, &item.StackSize,
		&item.Seen, &attrs, &item.CreatedAt, &item.LastGrantedAt,
		&item.EarnedBy, &item.Restricted)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(attrs, &item.InstanceAttributes); err != nil {
		return nil, fmt.Errorf("decoding instance attributes: %w", err)
	}
	return &item, nil
}

// ListByUser returns every stack the user owns.
func (r *InventoryRepository) ListByUser(ctx context.Context, q Querier, userID uint32) ([]*model.InventoryItem, error) {
	rows, err := q.Query(ctx,
		`SELECT `+inventoryColumns+` FROM inventory_items WHERE user_id = $1 ORDER BY id`, userID)
	if err != nil {
		return nil, fmt.Errorf("listing inventory for user %d: %w", userID, err)
	}
	defer rows.Close()

	var items []*model.InventoryItem
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning inventory row: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// GetByDefinition returns the user's stack of one definition, or nil.
func (r *InventoryRepository) GetByDefinition(ctx context.Context, q Querier, userID uint32, def uuid.UUID) (*model.InventoryItem, error) {
	item, err := scanItem(q.QueryRow(ctx,
		`SELECT `+inventoryColumns+` FROM inventory_items
		 WHERE user_id = $1 AND definition_name = $2`, userID, def))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying item %s for user %d: %w", def, userID, err)
	}
	return item, nil
}

// AddItem grants count of a definition. A conflicting definition grows the
// existing stack instead, clamped to the definition's capacity.
func (r *InventoryRepository) AddItem(ctx context.Context, q Querier, userID uint32, def uuid.UUID, count uint32, earnedBy string) (*model.InventoryItem, error) {
	capacity := uint32(math.MaxUint32)
	if d, ok := data.ItemByName(def); ok && d.Capacity > 0 {
		capacity = d.Capacity
	}
	item, err := scanItem(q.QueryRow(ctx,
		`INSERT INTO inventory_items (user_id, definition_name, stack_size, earned_by)
		 VALUES ($1, $2, LEAST($3::bigint, $4::bigint), $5)
		 ON CONFLICT (user_id, definition_name) DO UPDATE
		 SET stack_size = LEAST(inventory_items.stack_size + $3::bigint, $4::bigint),
		     last_granted_at = now()
		 RETURNING `+inventoryColumns,
		userID, def, int64(count), int64(capacity), earnedBy))
	if err != nil {
		return nil, fmt.Errorf("adding item %s for user %d: %w", def, userID, err)
	}
	return item, nil
}

// SetStackSize writes the stack size through, deleting the row at zero.
func (r *InventoryRepository) SetStackSize(ctx context.Context, q Querier, itemID uint32, size uint32) error {
	if size == 0 {
		if _, err := q.Exec(ctx, `DELETE FROM inventory_items WHERE id = $1`, itemID); err != nil {
			return fmt.Errorf("deleting empty stack %d: %w", itemID, err)
		}
		return nil
	}
	if _, err := q.Exec(ctx,
		`UPDATE inventory_items SET stack_size = $2 WHERE id = $1`, itemID, int64(size)); err != nil {
		return fmt.Errorf("resizing stack %d: %w", itemID, err)
	}
	return nil
}

// UpdateSeen bulk-marks definitions as seen.
func (r *InventoryRepository) UpdateSeen(ctx context.Context, q Querier, userID uint32, defs []uuid.UUID) error {
	if len(defs) == 0 {
		return nil
	}
	if _, err := q.Exec(ctx,
		`UPDATE inventory_items SET seen = TRUE
		 WHERE user_id = $1 AND definition_name = ANY($2)`, userID, defs); err != nil {
		return fmt.Errorf("marking items seen for user %d: %w", userID, err)
	}
	return nil
}
