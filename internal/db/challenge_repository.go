package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/korrin/meago/internal/model"
)

// ChallengeRepository manages per-user challenge progress and counters.
type ChallengeRepository struct {
	pool *pgxpool.Pool
}

func NewChallengeRepository(pool *pgxpool.Pool) *ChallengeRepository {
	return &ChallengeRepository{pool: pool}
}

// GetProgress loads the progress aggregate for one challenge, creating the
// progress row on first touch.
func (r *ChallengeRepository) GetProgress(ctx context.Context, q Querier, userID uint32, challengeID uuid.UUID) (*model.ChallengeProgress, error) {
	if _, err := q.Exec(ctx,
		`INSERT INTO challenge_progress (user_id, challenge_id) VALUES ($1, $2)
		 ON CONFLICT DO NOTHING`, userID, challengeID); err != nil {
		return nil, fmt.Errorf("ensuring challenge progress: %w", err)
	}

	rows, err := q.Query(ctx,
		`SELECT name, times_completed, total_count, current_count, target_count, reset_count, last_changed
		 FROM challenge_counter WHERE user_id = $1 AND challenge_id = $2 ORDER BY name`,
		userID, challengeID)
	if err != nil {
		return nil, fmt.Errorf("listing counters for challenge %s: %w", challengeID, err)
	}
	defer rows.Close()

	progress := &model.ChallengeProgress{UserID: userID, ChallengeID: challengeID}
	for rows.Next() {
		var c model.ChallengeCounter
		if err := rows.Scan(&c.Name, &c.TimesCompleted, &c.TotalCount,
			&c.CurrentCount, &c.TargetCount, &c.ResetCount, &c.LastChanged); err != nil {
			return nil, fmt.Errorf("scanning counter row: %w", err)
		}
		progress.Counters = append(progress.Counters, c)
	}
	return progress, rows.Err()
}

// UpdateCounter applies progress to one counter and reports whether the
// row was newly created (Notify) or updated (Changed).
func (r *ChallengeRepository) UpdateCounter(
	ctx context.Context, q Querier,
	userID uint32, challengeID uuid.UUID,
	name string, target, progress uint32, repeatable bool,
) (*model.ChallengeCounter, model.ChallengeUpdateStatus, error) {
	existing, err := r.getCounter(ctx, q, userID, challengeID, name)
	if err != nil {
		return nil, "", err
	}

	status := model.ChallengeStatusChanged
	counter := existing
	if counter == nil {
		status = model.ChallengeStatusNotify
		counter = &model.ChallengeCounter{Name: name, TargetCount: target}
		if _, err := q.Exec(ctx,
			`INSERT INTO challenge_progress (user_id, challenge_id) VALUES ($1, $2)
			 ON CONFLICT DO NOTHING`, userID, challengeID); err != nil {
			return nil, "", fmt.Errorf("ensuring challenge progress: %w", err)
		}
	}
	counter.TargetCount = target
	counter.Apply(progress, repeatable, time.Now().UTC())

	if _, err := q.Exec(ctx,
		`INSERT INTO challenge_counter
		   (user_id, challenge_id, name, times_completed, total_count, current_count, target_count, reset_count, last_changed)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 ON CONFLICT (user_id, challenge_id, name) DO UPDATE
		 SET times_completed = $4, total_count = $5, current_count = $6,
		     target_count = $7, reset_count = $8, last_changed = $9`,
		userID, challengeID, name,
		counter.TimesCompleted, counter.TotalCount, counter.CurrentCount,
		counter.TargetCount, counter.ResetCount, counter.LastChanged); err != nil {
		return nil, "", fmt.Errorf("writing counter %s/%s: %w", challengeID, name, err)
	}
	return counter, status, nil
}

func (r *ChallengeRepository) getCounter(ctx context.Context, q Querier, userID uint32, challengeID uuid.UUID, name string) (*model.ChallengeCounter, error) {
	var c model.ChallengeCounter
	err := q.QueryRow(ctx,
		`SELECT name, times_completed, total_count, current_count, target_count, reset_count, last_changed
		 FROM challenge_counter WHERE user_id = $1 AND challenge_id = $2 AND name = $3`,
		userID, challengeID, name,
	).Scan(&c.Name, &c.TimesCompleted, &c.TotalCount, &c.CurrentCount,
		&c.TargetCount, &c.ResetCount, &c.LastChanged)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying counter %s/%s: %w", challengeID, name, err)
	}
	return &c, nil
}
