package missions

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"math/rand/v2"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/korrin/meago/internal/data"
	"github.com/korrin/meago/internal/db"
	"github.com/korrin/meago/internal/model"
)

// Six offsets per day, hour (n*4)-1 for n in 1..6.
var offsetHours = [6]int{3, 7, 11, 15, 19, 23}

const maxConsecutiveFailures = 10

// Mission windows: standard missions last one offset interval, apex
// missions stay up for a full day.
const (
	standardDuration = 4 * time.Hour
	apexDuration     = 24 * time.Hour
)

// missionSpec is one line of an offset's recipe.
type missionSpec struct {
	difficulty string
	apex       bool
}

// recipeFor returns the missions issued at the given offset index.
func recipeFor(offset int) []missionSpec {
	switch offset {
	case 0: // 03
		return []missionSpec{
			{difficulty: data.DifficultyBronze},
			{difficulty: data.DifficultyBronze, apex: true},
		}
	case 1: // 07
		return []missionSpec{{difficulty: data.DifficultySilver}}
	case 2: // 11
		return []missionSpec{{difficulty: data.DifficultyGold}}
	case 3: // 15
		return []missionSpec{
			{difficulty: data.DifficultyBronze},
			{difficulty: data.DifficultyGold, apex: true},
		}
	case 4: // 19
		return []missionSpec{
			{difficulty: data.DifficultySilver},
			{difficulty: data.DifficultySilver, apex: true},
			{difficulty: data.DifficultyPlatinum, apex: true},
		}
	case 5: // 23
		return []missionSpec{{difficulty: data.DifficultyGold}}
	}
	return nil
}

// indexForHour returns the latest offset index at or before the hour, or
// -1 when the hour is before the first offset of the day.
func indexForHour(hour int) int {
	idx := -1
	for i, h := range offsetHours {
		if hour >= h {
			idx = i
		}
	}
	return idx
}

// offsetTime pins the offset's wall-clock point on the given day.
func offsetTime(day time.Time, offset int) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), offsetHours[offset], 0, 0, 0, time.UTC)
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// Scheduler issues strike-team missions at the fixed daily offsets and
// catches up across offsets missed while the process was down.
type Scheduler struct {
	pool  *pgxpool.Pool
	teams *db.StrikeTeamRepository
	log   *slog.Logger

	now func() time.Time

	rngMu sync.Mutex
	rng   *rand.Rand
}

func NewScheduler(pool *pgxpool.Pool, log *slog.Logger) *Scheduler {
	return &Scheduler{
		pool:  pool,
		teams: db.NewStrikeTeamRepository(pool),
		log:   log.With("module", "missions"),
		now:   func() time.Time { return time.Now().UTC() },
		rng:   rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
}

// Run drives the scheduler until the context is cancelled or ten
// consecutive failures accumulate.
func (s *Scheduler) Run(ctx context.Context) error {
	failures := 0
	for {
		err := s.tick(ctx)
		if err == nil {
			failures = 0
			continue
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		failures++
		s.log.Error("scheduler tick failed", "error", err, "consecutive", failures)
		if failures >= maxConsecutiveFailures {
			return fmt.Errorf("mission scheduler stopping after %d consecutive failures: %w", failures, err)
		}
		if err := s.waitUntil(ctx, s.now().Add(time.Duration(failures)*5*time.Second)); err != nil {
			return err
		}
	}
}

// tick advances the schedule by one step: it either sleeps toward the
// next offset or the next day, or creates the due missions.
func (s *Scheduler) tick(ctx context.Context) error {
	now := s.now()

	latest, err := s.teams.LatestMission(ctx, s.pool)
	if err != nil {
		return err
	}
	last := -1
	if latest != nil && sameDay(latest.StartTime.UTC(), now) {
		last = indexForHour(latest.StartTime.UTC().Hour())
	}

	next := last + 1
	if next >= len(offsetHours) {
		midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).Add(24 * time.Hour)
		return s.waitUntil(ctx, midnight)
	}

	if target := offsetTime(now, next); now.Before(target) {
		return s.waitUntil(ctx, target)
	}

	// Every offset from next through the current one is due; downtime
	// across offsets catches up here.
	current := indexForHour(now.Hour())
	for i := next; i <= current; i++ {
		if err := s.createForOffset(ctx, now, i); err != nil {
			return err
		}
	}
	return nil
}

func (s *Scheduler) createForOffset(ctx context.Context, now time.Time, offset int) error {
	start := offsetTime(now, offset)
	for _, spec := range recipeFor(offset) {
		mission := s.buildMission(spec, start)
		created, err := s.teams.CreateMission(ctx, s.pool, mission)
		if err != nil {
			return fmt.Errorf("creating %s mission for offset %02d: %w", spec.difficulty, offsetHours[offset], err)
		}
		s.log.Info("mission issued",
			"mission_id", created.ID, "difficulty", created.Difficulty,
			"apex", created.Apex, "start_time", created.StartTime)
	}
	return nil
}

// buildMission rolls one mission from the reference tables.
func (s *Scheduler) buildMission(spec missionSpec, start time.Time) *model.StrikeTeamMission {
	s.rngMu.Lock()
	defer s.rngMu.Unlock()

	descriptors := data.StandardMissionDescriptors
	duration := standardDuration
	if spec.apex {
		descriptors = data.ApexMissionDescriptors
		duration = apexDuration
	}
	descriptor := descriptors[s.rng.IntN(len(descriptors))]

	accessibility := data.PickWeighted(s.rng, data.AccessibilityWeights)
	rewards := data.RewardsFor(accessibility, spec.difficulty)

	first := s.rng.IntN(len(data.GameTags))
	second := s.rng.IntN(len(data.GameTags) - 1)
	if second >= first {
		second++
	}

	return &model.StrikeTeamMission{
		Descriptor:     descriptor.Name,
		Accessibility:  accessibility,
		Difficulty:     spec.difficulty,
		Enemy:          data.EnemyTags[s.rng.IntN(len(data.EnemyTags))],
		Level:          strconv.Itoa(1 + s.rng.IntN(20)),
		GameTags:       []string{data.GameTags[first], data.GameTags[second]},
		RewardXP:       rewards.Currencies[model.CurrencyGrind] / 10,
		RewardCurrency: rewards.Currencies[model.CurrencyGrind],
		StartTime:      start,
		Duration:       duration,
		Apex:           spec.apex,
	}
}

// waitUntil sleeps to the target wall-clock point or the context's end.
func (s *Scheduler) waitUntil(ctx context.Context, target time.Time) error {
	d := target.Sub(s.now())
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
