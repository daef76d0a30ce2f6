package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/korrin/meago/internal/data"
	"github.com/korrin/meago/internal/model"
)

// CharacterRepository manages character rows and their progression.
type CharacterRepository struct {
	pool *pgxpool.Pool
}

func NewCharacterRepository(pool *pgxpool.Pool) *CharacterRepository {
	return &CharacterRepository{pool: pool}
}

const characterColumns = `id, user_id, class_name, level, xp_last, xp_current, xp_next,
	skill_points, skill_trees, attributes, customization, created_at`

func scanCharacter(row pgx.Row) (*model.Character, error) {
	var c model.Character
	var trees, attrs, custom []byte
	err := row.Scan(&c.ID, &c.UserID, &c.ClassName, &c.Level,
		&c.XP.Last, &c.XP.Current, &c.XP.Next,
		&c.SkillPoints, &trees, &attrs, &custom, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	c.SkillTrees = string(trees)
	c.Customization = string(custom)
	if err := json.Unmarshal(attrs, &c.Attributes); err != nil {
		return nil, fmt.Errorf("decoding character attributes: %w", err)
	}
	return &c, nil
}

// ListByUser returns every character the user owns.
func (r *CharacterRepository) ListByUser(ctx context.Context, q Querier, userID uint32) ([]*model.Character, error) {
	rows, err := q.Query(ctx,
		`SELECT `+characterColumns+` FROM characters WHERE user_id = $1 ORDER BY id`, userID)
	if err != nil {
		return nil, fmt.Errorf("listing characters for user %d: %w", userID, err)
	}
	defer rows.Close()

	var chars []*model.Character
	for rows.Next() {
		c, err := scanCharacter(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning character row: %w", err)
		}
		chars = append(chars, c)
	}
	return chars, rows.Err()
}

// GetByID loads one character. Returns nil, nil when absent.
func (r *CharacterRepository) GetByID(ctx context.Context, q Querier, id uint32) (*model.Character, error) {
	c, err := scanCharacter(q.QueryRow(ctx,
		`SELECT `+characterColumns+` FROM characters WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying character %d: %w", id, err)
	}
	return c, nil
}

// Create inserts a level-one character of the given class with its first
// XP requirement taken from the class's level table.
func (r *CharacterRepository) Create(ctx context.Context, q Querier, userID uint32, className string) (*model.Character, error) {
	class, ok := data.ClassByName(className)
	if !ok {
		return nil, fmt.Errorf("unknown class %q", className)
	}
	var next int64
	if table, ok := data.LevelTableByName(class.LevelTable); ok {
		next, _ = table.Requirement(1)
	}
	c, err := scanCharacter(q.QueryRow(ctx,
		`INSERT INTO characters (user_id, class_name, xp_next)
		 VALUES ($1, $2, $3)
		 RETURNING `+characterColumns,
		userID, className, next))
	if err != nil {
		return nil, fmt.Errorf("creating character %q for user %d: %w", className, userID, err)
	}
	return c, nil
}

// UpdateProgression writes level and XP through after reward folding.
func (r *CharacterRepository) UpdateProgression(ctx context.Context, q Querier, c *model.Character) error {
	if _, err := q.Exec(ctx,
		`UPDATE characters SET level = $2, xp_last = $3, xp_current = $4, xp_next = $5
		 WHERE id = $1`,
		c.ID, c.Level, c.XP.Last, c.XP.Current, c.XP.Next); err != nil {
		return fmt.Errorf("updating progression for character %d: %w", c.ID, err)
	}
	return nil
}

// UpdateSkillTree replaces the skill-tree blob and point balance.
func (r *CharacterRepository) UpdateSkillTree(ctx context.Context, q Querier, id uint32, trees string, points uint32) error {
	if _, err := q.Exec(ctx,
		`UPDATE characters SET skill_trees = $2, skill_points = $3 WHERE id = $1`,
		id, []byte(trees), points); err != nil {
		return fmt.Errorf("updating skill tree for character %d: %w", id, err)
	}
	return nil
}

// UpdateCustomization replaces the customization blob.
func (r *CharacterRepository) UpdateCustomization(ctx context.Context, q Querier, id uint32, customization string) error {
	if _, err := q.Exec(ctx,
		`UPDATE characters SET customization = $2 WHERE id = $1`,
		id, []byte(customization)); err != nil {
		return fmt.Errorf("updating customization for character %d: %w", id, err)
	}
	return nil
}
