package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/korrin/meago/internal/model"
)

// SharedDataRepository manages the per-user cross-character record.
type SharedDataRepository struct {
	pool *pgxpool.Pool
}

func NewSharedDataRepository(pool *pgxpool.Pool) *SharedDataRepository {
	return &SharedDataRepository{pool: pool}
}

// Get loads the shared record, creating an empty row on first touch.
func (r *SharedDataRepository) Get(ctx context.Context, q Querier, userID uint32) (*model.SharedData, error) {
	if _, err := q.Exec(ctx,
		`INSERT INTO shared_data (user_id) VALUES ($1) ON CONFLICT DO NOTHING`, userID); err != nil {
		return nil, fmt.Errorf("ensuring shared data: %w", err)
	}

	var sd model.SharedData
	var equipment, progression []byte
	err := q.QueryRow(ctx,
		`SELECT user_id, active_character_id, shared_equipment, shared_progression
		 FROM shared_data WHERE user_id = $1`, userID,
	).Scan(&sd.UserID, &sd.ActiveCharacterID, &equipment, &progression)
	if err != nil {
		return nil, fmt.Errorf("querying shared data for user %d: %w", userID, err)
	}
	if err := json.Unmarshal(equipment, &sd.SharedEquipment); err != nil {
		return nil, fmt.Errorf("decoding shared equipment: %w", err)
	}
	if err := json.Unmarshal(progression, &sd.SharedProgression); err != nil {
		return nil, fmt.Errorf("decoding shared progression: %w", err)
	}
	return &sd, nil
}

// SetActiveCharacter points the shared record at a character.
func (r *SharedDataRepository) SetActiveCharacter(ctx context.Context, q Querier, userID, characterID uint32) error {
	if _, err := q.Exec(ctx,
		`UPDATE shared_data SET active_character_id = $2 WHERE user_id = $1`,
		userID, characterID); err != nil {
		return fmt.Errorf("setting active character for user %d: %w", userID, err)
	}
	return nil
}

// SetEquipment replaces the shared equipment map.
func (r *SharedDataRepository) SetEquipment(ctx context.Context, q Querier, userID uint32, equipment map[string]string) error {
	blob, err := json.Marshal(equipment)
	if err != nil {
		return fmt.Errorf("encoding shared equipment: %w", err)
	}
	if _, err := q.Exec(ctx,
		`UPDATE shared_data SET shared_equipment = $2 WHERE user_id = $1`, userID, blob); err != nil {
		return fmt.Errorf("setting shared equipment for user %d: %w", userID, err)
	}
	return nil
}

// SetProgression replaces the prestige progression list.
func (r *SharedDataRepository) SetProgression(ctx context.Context, q Querier, userID uint32, progression []model.PrestigeProgression) error {
	blob, err := json.Marshal(progression)
	if err != nil {
		return fmt.Errorf("encoding shared progression: %w", err)
	}
	if _, err := q.Exec(ctx,
		`UPDATE shared_data SET shared_progression = $2 WHERE user_id = $1`, userID, blob); err != nil {
		return fmt.Errorf("setting shared progression for user %d: %w", userID, err)
	}
	return nil
}
