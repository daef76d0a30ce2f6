package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/korrin/meago/internal/model"
)

// StrikeTeamRepository manages teams, scheduled missions, and the
// in-progress locks tying them together.
type StrikeTeamRepository struct {
	pool *pgxpool.Pool
}

func NewStrikeTeamRepository(pool *pgxpool.Pool) *StrikeTeamRepository {
	return &StrikeTeamRepository{pool: pool}
}

const teamColumns = `id, user_id, name, icon, level, xp_last, xp_current, xp_next,
	positive_traits, negative_traits, out_of_date`

func scanTeam(row pgx.Row) (*model.StrikeTeam, error) {
	var t model.StrikeTeam
	err := row.Scan(&t.ID, &t.UserID, &t.Name, &t.Icon, &t.Level,
		&t.XP.Last, &t.XP.Current, &t.XP.Next,
		&t.PositiveTraits, &t.NegativeTraits, &t.OutOfDate)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// ListByUser returns every team the user owns.
func (r *StrikeTeamRepository) ListByUser(ctx context.Context, q Querier, userID uint32) ([]*model.StrikeTeam, error) {
	rows, err := q.Query(ctx,
		`SELECT `+teamColumns+` FROM strike_teams WHERE user_id = $1 ORDER BY id`, userID)
	if err != nil {
		return nil, fmt.Errorf("listing strike teams for user %d: %w", userID, err)
	}
	defer rows.Close()

	var teams []*model.StrikeTeam
	for rows.Next() {
		t, err := scanTeam(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning strike team row: %w", err)
		}
		teams = append(teams, t)
	}
	return teams, rows.Err()
}

// Get loads one team. Returns nil, nil when absent.
func (r *StrikeTeamRepository) Get(ctx context.Context, q Querier, id uint32) (*model.StrikeTeam, error) {
	t, err := scanTeam(q.QueryRow(ctx,
		`SELECT `+teamColumns+` FROM strike_teams WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying strike team %d: %w", id, err)
	}
	return t, nil
}

// Create recruits a new team for the user.
func (r *StrikeTeamRepository) Create(ctx context.Context, q Querier, userID uint32, name string, positive, negative []string) (*model.StrikeTeam, error) {
	t, err := scanTeam(q.QueryRow(ctx,
		`INSERT INTO strike_teams (user_id, name, xp_next, positive_traits, negative_traits)
		 VALUES ($1, $2, 1000, $3, $4)
		 RETURNING `+teamColumns,
		userID, name, positive, negative))
	if err != nil {
		return nil, fmt.Errorf("recruiting strike team %q for user %d: %w", name, userID, err)
	}
	return t, nil
}

// UpdateProgression writes a team's level and XP through.
func (r *StrikeTeamRepository) UpdateProgression(ctx context.Context, q Querier, t *model.StrikeTeam) error {
	if _, err := q.Exec(ctx,
		`UPDATE strike_teams SET level = $2, xp_last = $3, xp_current = $4, xp_next = $5
		 WHERE id = $1`,
		t.ID, t.Level, t.XP.Last, t.XP.Current, t.XP.Next); err != nil {
		return fmt.Errorf("updating strike team %d: %w", t.ID, err)
	}
	return nil
}

// Retire deletes a team.
func (r *StrikeTeamRepository) Retire(ctx context.Context, q Querier, id uint32) error {
	if _, err := q.Exec(ctx, `DELETE FROM strike_teams WHERE id = $1`, id); err != nil {
		return fmt.Errorf("retiring strike team %d: %w", id, err)
	}
	return nil
}

const missionColumns = `id, descriptor, accessibility, difficulty, enemy, level,
	game_tags, reward_xp, reward_currency, start_time, duration_secs, apex`

func scanMission(row pgx.Row) (*model.StrikeTeamMission, error) {
	var m model.StrikeTeamMission
	var durationSecs int64
	err := row.Scan(&m.ID, &m.Descriptor, &m.Accessibility, &m.Difficulty,
		&m.Enemy, &m.Level, &m.GameTags, &m.RewardXP, &m.RewardCurrency,
		&m.StartTime, &durationSecs, &m.Apex)
	if err != nil {
		return nil, err
	}
	m.Duration = time.Duration(durationSecs) * time.Second
	return &m, nil
}

// CreateMission persists one scheduler-issued mission.
func (r *StrikeTeamRepository) CreateMission(ctx context.Context, q Querier, m *model.StrikeTeamMission) (*model.StrikeTeamMission, error) {
	created, err := scanMission(q.QueryRow(ctx,
		`INSERT INTO strike_team_missions
		   (descriptor, accessibility, difficulty, enemy, level, game_tags,
		    reward_xp, reward_currency, start_time, duration_secs, apex)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 RETURNING `+missionColumns,
		m.Descriptor, m.Accessibility, m.Difficulty, m.Enemy, m.Level, m.GameTags,
		m.RewardXP, m.RewardCurrency, m.StartTime, int64(m.Duration/time.Second), m.Apex))
	if err != nil {
		return nil, fmt.Errorf("creating strike team mission: %w", err)
	}
	return created, nil
}

// LatestMission returns the newest persisted mission by start time, or
// nil when none exist yet.
func (r *StrikeTeamRepository) LatestMission(ctx context.Context, q Querier) (*model.StrikeTeamMission, error) {
	m, err := scanMission(q.QueryRow(ctx,
		`SELECT `+missionColumns+` FROM strike_team_missions
		 ORDER BY start_time DESC, id DESC LIMIT 1`))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying latest mission: %w", err)
	}
	return m, nil
}

// ListActiveMissions returns missions whose window covers now.
func (r *StrikeTeamRepository) ListActiveMissions(ctx context.Context, q Querier, now time.Time) ([]*model.StrikeTeamMission, error) {
	rows, err := q.Query(ctx,
		`SELECT `+missionColumns+` FROM strike_team_missions
		 WHERE start_time <= $1 AND start_time + duration_secs * interval '1 second' > $1
		 ORDER BY start_time DESC`, now)
	if err != nil {
		return nil, fmt.Errorf("listing active missions: %w", err)
	}
	defer rows.Close()

	var missions []*model.StrikeTeamMission
	for rows.Next() {
		m, err := scanMission(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning mission row: %w", err)
		}
		missions = append(missions, m)
	}
	return missions, rows.Err()
}

// StartMission locks a mission as in-progress for one of the user's
// teams. The primary key rejects double-dispatch onto the same mission.
func (r *StrikeTeamRepository) StartMission(ctx context.Context, q Querier, userID, missionID, teamID uint32) error {
	if _, err := q.Exec(ctx,
		`INSERT INTO strike_team_mission_progress (user_id, mission_id, team_id)
		 VALUES ($1, $2, $3)`,
		userID, missionID, teamID); err != nil {
		return fmt.Errorf("starting mission %d for user %d: %w", missionID, userID, err)
	}
	return nil
}

// TeamOnMission reports whether the team currently has a mission locked.
func (r *StrikeTeamRepository) TeamOnMission(ctx context.Context, q Querier, teamID uint32) (bool, error) {
	var busy bool
	err := q.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM strike_team_mission_progress
		 WHERE team_id = $1 AND in_progress)`, teamID,
	).Scan(&busy)
	if err != nil {
		return false, fmt.Errorf("checking mission lock for team %d: %w", teamID, err)
	}
	return busy, nil
}

// ResolveMission clears the in-progress lock.
func (r *StrikeTeamRepository) ResolveMission(ctx context.Context, q Querier, userID, missionID uint32) error {
	if _, err := q.Exec(ctx,
		`UPDATE strike_team_mission_progress SET in_progress = FALSE
		 WHERE user_id = $1 AND mission_id = $2`,
		userID, missionID); err != nil {
		return fmt.Errorf("resolving mission %d for user %d: %w", missionID, userID, err)
	}
	return nil
}
