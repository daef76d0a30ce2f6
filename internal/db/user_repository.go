package db

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/korrin/meago/internal/data"
	"github.com/korrin/meago/internal/model"
)

// UserRepository manages account rows and new-account bootstrap.
type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

// GetByID loads a user by id. Returns nil, nil when absent.
func (r *UserRepository) GetByID(ctx context.Context, q Querier, id uint32) (*model.User, error) {
	var u model.User
	err := q.QueryRow(ctx,
		`SELECT id, username, password, created_at FROM users WHERE id = $1`, id,
	).Scan(&u.ID, &u.Username, &u.Password, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying user %d: %w", id, err)
	}
	return &u, nil
}

// GetByUsername loads a user by username. Returns nil, nil when absent.
func (r *UserRepository) GetByUsername(ctx context.Context, q Querier, username string) (*model.User, error) {
	var u model.User
	err := q.QueryRow(ctx,
		`SELECT id, username, password, created_at FROM users WHERE username = $1`, username,
	).Scan(&u.ID, &u.Username, &u.Password, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying user %q: %w", username, err)
	}
	return &u, nil
}

// Create inserts a new account with defaults for every owned aggregate:
// wallet rows, shared data, a first strike team, and a starter inventory.
func (r *UserRepository) Create(ctx context.Context, username, passwordHash string) (*model.User, error) {
	var u model.User
	err := WithTx(ctx, r.pool, func(q Querier) error {
		err := q.QueryRow(ctx,
			`INSERT INTO users (username, password) VALUES ($1, $2)
			 RETURNING id, username, password, created_at`,
			username, passwordHash,
		).Scan(&u.ID, &u.Username, &u.Password, &u.CreatedAt)
		if err != nil {
			return fmt.Errorf("creating user %q: %w", username, err)
		}
		return r.bootstrap(ctx, q, u.ID)
	})
	if err != nil {
		return nil, err
	}
	slog.Info("created account", "user_id", u.ID, "username", username)
	return &u, nil
}

// bootstrap seeds the rows a fresh account needs before first login.
func (r *UserRepository) bootstrap(ctx context.Context, q Querier, userID uint32) error {
	for _, c := range []model.CurrencyType{model.CurrencyMtx, model.CurrencyGrind, model.CurrencyMission} {
		if _, err := q.Exec(ctx,
			`INSERT INTO currency (user_id, name, balance) VALUES ($1, $2, 0)`,
			userID, string(c),
		); err != nil {
			return fmt.Errorf("seeding currency %s: %w", c, err)
		}
	}
	if _, err := q.Exec(ctx,
		`INSERT INTO shared_data (user_id) VALUES ($1)`, userID,
	); err != nil {
		return fmt.Errorf("seeding shared data: %w", err)
	}
	if _, err := q.Exec(ctx,
		`INSERT INTO strike_teams (user_id, name, xp_next) VALUES ($1, $2, 1000)`,
		userID, data.StrikeTeamNames[int(userID)%len(data.StrikeTeamNames)],
	); err != nil {
		return fmt.Errorf("seeding strike team: %w", err)
	}
	// Starter kit: two basic packs to open on first boot.
	if _, err := q.Exec(ctx,
		`INSERT INTO inventory_items (user_id, definition_name, stack_size, earned_by)
		 VALUES ($1, $2, 2, 'bootstrap')`,
		userID, data.Packs[0].ItemName,
	); err != nil {
		return fmt.Errorf("seeding inventory: %w", err)
	}
	return nil
}
