package missions

import (
	"strconv"
	"testing"
	"time"

	"math/rand/v2"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/korrin/meago/internal/data"
)

func TestIndexForHour(t *testing.T) {
	tests := []struct {
		hour int
		want int
	}{
		{hour: 0, want: -1},
		{hour: 2, want: -1},
		{hour: 3, want: 0},
		{hour: 6, want: 0},
		{hour: 7, want: 1},
		{hour: 11, want: 2},
		{hour: 14, want: 2},
		{hour: 15, want: 3},
		{hour: 19, want: 4},
		{hour: 22, want: 4},
		{hour: 23, want: 5},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, indexForHour(tc.hour), "hour %d", tc.hour)
	}
}

func TestOffsetTime(t *testing.T) {
	day := time.Date(2024, time.March, 12, 16, 42, 7, 0, time.UTC)

	got := offsetTime(day, 3)
	assert.Equal(t, time.Date(2024, time.March, 12, 15, 0, 0, 0, time.UTC), got)

	got = offsetTime(day, 0)
	assert.Equal(t, 3, got.Hour())
	assert.Equal(t, 0, got.Minute())
}

func TestSameDay(t *testing.T) {
	a := time.Date(2024, time.March, 12, 23, 59, 0, 0, time.UTC)
	b := time.Date(2024, time.March, 12, 0, 1, 0, 0, time.UTC)
	c := time.Date(2024, time.March, 13, 0, 1, 0, 0, time.UTC)

	assert.True(t, sameDay(a, b))
	assert.False(t, sameDay(a, c))
}

func TestRecipes(t *testing.T) {
	type line struct {
		difficulty string
		apex       bool
	}
	want := map[int][]line{
		0: {{data.DifficultyBronze, false}, {data.DifficultyBronze, true}},
		1: {{data.DifficultySilver, false}},
		2: {{data.DifficultyGold, false}},
		3: {{data.DifficultyBronze, false}, {data.DifficultyGold, true}},
		4: {{data.DifficultySilver, false}, {data.DifficultySilver, true}, {data.DifficultyPlatinum, true}},
		5: {{data.DifficultyGold, false}},
	}
	for offset, lines := range want {
		got := recipeFor(offset)
		require.Len(t, got, len(lines), "offset %d", offset)
		for i, l := range lines {
			assert.Equal(t, l.difficulty, got[i].difficulty, "offset %d line %d", offset, i)
			assert.Equal(t, l.apex, got[i].apex, "offset %d line %d", offset, i)
		}
	}
	assert.Nil(t, recipeFor(6))
}

func TestBuildMission(t *testing.T) {
	s := &Scheduler{rng: rand.New(rand.NewPCG(7, 11))}
	start := time.Date(2024, time.March, 12, 3, 0, 0, 0, time.UTC)

	for i := 0; i < 100; i++ {
		m := s.buildMission(missionSpec{difficulty: data.DifficultyGold}, start)

		assert.Equal(t, data.DifficultyGold, m.Difficulty)
		assert.False(t, m.Apex)
		assert.Equal(t, standardDuration, m.Duration)
		assert.Equal(t, start, m.StartTime)

		require.Len(t, m.GameTags, 2)
		assert.NotEqual(t, m.GameTags[0], m.GameTags[1])

		level, err := strconv.Atoi(m.Level)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, level, 1)
		assert.LessOrEqual(t, level, 20)

		assert.Equal(t, m.RewardCurrency/10, m.RewardXP)
	}
}

func TestBuildApexMission(t *testing.T) {
	s := &Scheduler{rng: rand.New(rand.NewPCG(1, 2))}
	start := time.Date(2024, time.March, 12, 19, 0, 0, 0, time.UTC)

	m := s.buildMission(missionSpec{difficulty: data.DifficultyPlatinum, apex: true}, start)

	assert.True(t, m.Apex)
	assert.Equal(t, apexDuration, m.Duration)

	found := false
	for _, d := range data.ApexMissionDescriptors {
		if d.Name == m.Descriptor {
			found = true
		}
	}
	assert.True(t, found, "descriptor must come from the apex set")
}

func TestMultiplayerMissionsPayMissionFunds(t *testing.T) {
	rewards := data.RewardsFor(data.AccessMultiPlayer, data.DifficultyGold)
	assert.Equal(t, uint32(6000/500), rewards.Currencies["MissionCurrency"])

	solo := data.RewardsFor(data.AccessSinglePlayer, data.DifficultyGold)
	_, ok := solo.Currencies["MissionCurrency"]
	assert.False(t, ok)
}
