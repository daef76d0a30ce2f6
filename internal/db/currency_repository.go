package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/korrin/meago/internal/model"
)

// CurrencyRepository manages wallet balances. Every add clamps to
// MaxSafeCurrency in SQL so concurrent writers cannot overshoot.
type CurrencyRepository struct {
	pool *pgxpool.Pool
}

func NewCurrencyRepository(pool *pgxpool.Pool) *CurrencyRepository {
	return &CurrencyRepository{pool: pool}
}

// ListByUser returns all balances for the user.
func (r *CurrencyRepository) ListByUser(ctx context.Context, q Querier, userID uint32) ([]model.CurrencyBalance, error) {
	rows, err := q.Query(ctx,
		`SELECT user_id, name, balance FROM currency WHERE user_id = $1 ORDER BY name`, userID)
	if err != nil {
		return nil, fmt.Errorf("listing currency for user %d: %w", userID, err)
	}
	defer rows.Close()

	var out []model.CurrencyBalance
	for rows.Next() {
		var b model.CurrencyBalance
		var name string
		if err := rows.Scan(&b.UserID, &name, &b.Balance); err != nil {
			return nil, fmt.Errorf("scanning currency row: %w", err)
		}
		b.Type = model.CurrencyType(name)
		out = append(out, b)
	}
	return out, rows.Err()
}

// Get returns one balance, zero if the row is missing.
func (r *CurrencyRepository) Get(ctx context.Context, q Querier, userID uint32, t model.CurrencyType) (uint32, error) {
	var balance uint32
	err := q.QueryRow(ctx,
		`SELECT COALESCE((SELECT balance FROM currency WHERE user_id = $1 AND name = $2), 0)`,
		userID, string(t),
	).Scan(&balance)
	if err != nil {
		return 0, fmt.Errorf("querying %s balance for user %d: %w", t, userID, err)
	}
	return balance, nil
}

// Set overwrites one balance.
func (r *CurrencyRepository) Set(ctx context.Context, q Querier, userID uint32, t model.CurrencyType, balance uint32) error {
	if _, err := q.Exec(ctx,
		`INSERT INTO currency (user_id, name, balance) VALUES ($1, $2, $3)
		 ON CONFLICT (user_id, name) DO UPDATE SET balance = $3`,
		userID, string(t), balance); err != nil {
		return fmt.Errorf("setting %s balance for user %d: %w", t, userID, err)
	}
	return nil
}

// Add credits one balance with the clamp applied, returning the result.
func (r *CurrencyRepository) Add(ctx context.Context, q Querier, userID uint32, t model.CurrencyType, delta uint32) (uint32, error) {
	var balance uint32
	err := q.QueryRow(ctx,
		`INSERT INTO currency (user_id, name, balance)
		 VALUES ($1, $2, LEAST($3::bigint, $4::bigint))
		 ON CONFLICT (user_id, name) DO UPDATE
		 SET balance = LEAST(currency.balance + $3::bigint, $4::bigint)
		 RETURNING balance`,
		userID, string(t), int64(delta), int64(model.MaxSafeCurrency),
	).Scan(&balance)
	if err != nil {
		return 0, fmt.Errorf("adding %d %s for user %d: %w", delta, t, userID, err)
	}
	return balance, nil
}

// AddMany credits several balances, typically inside one transaction.
func (r *CurrencyRepository) AddMany(ctx context.Context, q Querier, userID uint32, deltas map[model.CurrencyType]uint32) error {
	for t, delta := range deltas {
		if delta == 0 {
			continue
		}
		if _, err := r.Add(ctx, q, userID, t, delta); err != nil {
			return err
		}
	}
	return nil
}

// Spend debits one balance, failing without change when funds are short.
func (r *CurrencyRepository) Spend(ctx context.Context, q Querier, userID uint32, t model.CurrencyType, amount uint32) (uint32, bool, error) {
	var balance uint32
	err := q.QueryRow(ctx,
		`UPDATE currency SET balance = balance - $3
		 WHERE user_id = $1 AND name = $2 AND balance >= $3
		 RETURNING balance`,
		userID, string(t), int64(amount),
	).Scan(&balance)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("spending %d %s for user %d: %w", amount, t, userID, err)
	}
	return balance, true, nil
}
