package data

import (
	"math/rand/v2"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/korrin/meago/internal/model"
)

func TestDescriptor_Matches(t *testing.T) {
	d := ActivityDescriptor{
		ActivityName: "_kills",
		Filter: map[string]FilterValue{
			"faction": Eq("kett"),
			"type":    Ne("environmental"),
		},
	}

	tests := []struct {
		name  string
		event string
		attrs map[string]string
		want  bool
	}{
		{"direct match", "_kills", map[string]string{"faction": "kett", "type": "combat"}, true},
		{"ne attribute absent passes", "_kills", map[string]string{"faction": "kett"}, true},
		{"ne attribute equal fails", "_kills", map[string]string{"faction": "kett", "type": "environmental"}, false},
		{"direct attribute absent fails", "_kills", map[string]string{"type": "combat"}, false},
		{"wrong name", "_revives", map[string]string{"faction": "kett"}, false},
		{"wrong value", "_kills", map[string]string{"faction": "remnant"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, d.Matches(tt.event, tt.attrs))
		})
	}
}

func TestDescriptor_Progress(t *testing.T) {
	d := ActivityDescriptor{ActivityName: "_kills", ProgressKey: "count"}

	assert.Equal(t, uint32(7), d.Progress(map[string]string{"count": "7"}))
	assert.Equal(t, uint32(1), d.Progress(map[string]string{}))
	assert.Equal(t, uint32(1), d.Progress(map[string]string{"count": "abc"}))
}

func TestBadge_EarnedLevels(t *testing.T) {
	badge, ok := MatchBadge("_kills", map[string]string{"type": "combat"})
	require.True(t, ok)
	require.Equal(t, "Combat Mastery", badge.Name)

	levels := badge.EarnedLevels(30)
	require.Len(t, levels, 2)
	assert.Equal(t, "Bronze", levels[0].Name)
	assert.Equal(t, "Silver", levels[1].Name)

	assert.Empty(t, badge.EarnedLevels(5))
}

func TestMatchChallengeCounter(t *testing.T) {
	ch, counter, ok := MatchChallengeCounter("_kills", map[string]string{"faction": "kett"})
	require.True(t, ok)
	assert.Equal(t, "ch_kett_slayer", ch.Name)
	assert.Equal(t, "kett_kills", counter.Name)

	_, _, ok = MatchChallengeCounter("_unknown", nil)
	assert.False(t, ok)
}

func TestFormula_Apply(t *testing.T) {
	total, added := Formula{Op: FormulaAdditive, Amount: 100}.Apply(50)
	assert.Equal(t, uint32(150), total)
	assert.Equal(t, uint32(100), added)

	total, added = Formula{Op: FormulaMultiplicative, Amount: 1.5}.Apply(100)
	assert.Equal(t, uint32(150), total)
	assert.Equal(t, uint32(50), added)

	// A shrinking multiplier never reduces earned rewards.
	total, added = Formula{Op: FormulaMultiplicative, Amount: 0.5}.Apply(100)
	assert.Equal(t, uint32(100), total)
	assert.Zero(t, added)
}

func TestLevelTable_Requirement(t *testing.T) {
	table, ok := LevelTableByName("CharacterLevel")
	require.True(t, ok)

	xp, ok := table.Requirement(1)
	require.True(t, ok)
	assert.Equal(t, int64(500), xp)

	_, ok = table.Requirement(table.MaxLevel())
	assert.False(t, ok, "no requirement past the cap")
	assert.Equal(t, int32(20), table.MaxLevel())
}

func TestClassLookups(t *testing.T) {
	c, ok := ClassByName("AdeptHuman")
	require.True(t, ok)
	assert.Equal(t, "CharacterLevel", c.LevelTable)

	byItem, ok := ClassByItem(c.ItemName)
	require.True(t, ok)
	assert.Equal(t, c.Name, byItem.Name)

	_, ok = LevelTableByName(c.PrestigeTable)
	assert.True(t, ok, "every class must reference an existing prestige table")
}

func TestPack_DrawHonorsFilters(t *testing.T) {
	pack, ok := PackByItem(uuid.MustParse("c5b3d9e6-7932-4579-ba8a-fd469ed43fda"))
	require.True(t, ok)

	rng := rand.New(rand.NewPCG(1, 2))
	for i := 0; i < 50; i++ {
		items := pack.Draw(rng)
		require.Len(t, items, 3)
		for _, def := range items[:2] {
			assert.True(t, def.Droppable)
			assert.NotEqual(t, CategoryPack, def.Category)
		}
		last := items[2]
		assert.Contains(t, []string{CategoryConsumable, CategoryBooster}, last.Category)
	}
}

func TestPack_EveryPackItemResolves(t *testing.T) {
	for _, p := range Packs {
		def, ok := ItemByName(p.ItemName)
		require.True(t, ok, "pack %s must reference a real item", p.Name)
		assert.True(t, def.Consumable)
		assert.Equal(t, CategoryPack, def.Category)
	}
}

func TestPickWeighted_Distribution(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 7))
	counts := map[string]int{}
	for i := 0; i < 10_000; i++ {
		counts[PickWeighted(rng, DifficultyWeights)]++
	}
	assert.Greater(t, counts[DifficultyBronze], counts[DifficultySilver])
	assert.Greater(t, counts[DifficultySilver], counts[DifficultyGold])
	assert.Greater(t, counts[DifficultyGold], counts[DifficultyPlatinum])
	assert.Positive(t, counts[DifficultyPlatinum])
}

func TestRewardsFor(t *testing.T) {
	sp := RewardsFor(AccessSinglePlayer, DifficultyGold)
	assert.Equal(t, uint32(6000), sp.Currencies[model.CurrencyGrind])
	_, hasMission := sp.Currencies[model.CurrencyMission]
	assert.False(t, hasMission)

	mp := RewardsFor(AccessAny, DifficultyGold)
	assert.Equal(t, uint32(12), mp.Currencies[model.CurrencyMission])
}

func TestArticleByName(t *testing.T) {
	a, ok := ArticleByName(uuid.MustParse("aa11cd2b-9c3f-4b12-8a01-0f2a6d1be201"))
	require.True(t, ok)
	_, ok = ItemByName(a.ItemName)
	assert.True(t, ok, "article must grant a real item")
	assert.NotEmpty(t, a.Prices)
}
