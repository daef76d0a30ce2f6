package activity

import (
	"encoding/json"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/korrin/meago/internal/data"
	"github.com/korrin/meago/internal/model"
)

func characterTable(t *testing.T) *data.LevelTable {
	t.Helper()
	table, ok := data.LevelTableByName("CharacterLevel")
	require.True(t, ok)
	return table
}

func TestFoldXPNoLevelUp(t *testing.T) {
	xp, level := foldXP(model.XP{Last: 0, Current: 0, Next: 500}, 1, 50, characterTable(t))

	assert.Equal(t, model.XP{Last: 0, Current: 50, Next: 500}, xp)
	assert.Equal(t, uint32(1), level)
}

func TestFoldXPSingleLevelUp(t *testing.T) {
	xp, level := foldXP(model.XP{Last: 0, Current: 450, Next: 500}, 1, 100, characterTable(t))

	assert.Equal(t, uint32(2), level)
	assert.Equal(t, model.XP{Last: 500, Current: 550, Next: 1500}, xp)
}

func TestFoldXPMultiLevelClimb(t *testing.T) {
	xp, level := foldXP(model.XP{Last: 0, Current: 0, Next: 500}, 1, 2125, characterTable(t))

	assert.Equal(t, uint32(3), level)
	assert.Equal(t, model.XP{Last: 1500, Current: 2125, Next: 3125}, xp)
}

func TestFoldXPClampsAtCap(t *testing.T) {
	table := &data.LevelTable{Name: "tiny", Entries: []data.LevelEntry{
		{Level: 1, XP: 100},
		{Level: 2, XP: 200},
	}}

	xp, level := foldXP(model.XP{Last: 0, Current: 0, Next: 100}, 1, 1000, table)

	assert.Equal(t, uint32(3), level)
	assert.Equal(t, model.XP{Last: 300, Current: 300, Next: 300}, xp)

	// Earning more at the cap holds level and stays clamped.
	xp, level = foldXP(xp, level, 50, table)
	assert.Equal(t, uint32(3), level)
	assert.Equal(t, model.XP{Last: 300, Current: 300, Next: 300}, xp)
}

func TestRewardBuilderKeepsSourceOrder(t *testing.T) {
	b := newRewardBuilder()
	b.AddXP("badge-a", 10)
	b.AddXP("base", 100)
	b.AddXP("badge-a", 5)
	b.AddCurrency("xpBoost", model.CurrencyGrind, 25)

	var result PlayerResult
	b.Emit(&result)

	require.Len(t, result.RewardSources, 3)
	assert.Equal(t, "badge-a", result.RewardSources[0].Name)
	assert.Equal(t, uint32(15), result.RewardSources[0].XP)
	assert.Equal(t, "base", result.RewardSources[1].Name)
	assert.Equal(t, "xpBoost", result.RewardSources[2].Name)
	assert.Equal(t, uint32(25), result.RewardSources[2].Currencies[model.CurrencyGrind])
}

func TestRewardBuilderTotals(t *testing.T) {
	b := newRewardBuilder()
	b.AddXP("base", 100)
	b.AddXP("badge", 40)
	b.AddCurrency("badge", model.CurrencyGrind, 30)
	b.AddCurrency("match", model.CurrencyGrind, 20)
	b.AddCurrency("match", model.CurrencyMission, 5)
	b.AddCurrency("match", model.CurrencyMtx, 0)

	assert.Equal(t, uint32(140), b.TotalXP())
	totals := b.TotalCurrencies()
	assert.Equal(t, uint32(50), totals[model.CurrencyGrind])
	assert.Equal(t, uint32(5), totals[model.CurrencyMission])
	_, ok := totals[model.CurrencyMtx]
	assert.False(t, ok, "zero credits must not create a source entry")
}

func TestRewardBuilderEmitNumbersChallenges(t *testing.T) {
	b := newRewardBuilder()
	b.AddChallenge(ChallengeUpdate{ChallengeName: "first"})
	b.AddChallenge(ChallengeUpdate{ChallengeName: "second"})

	var result PlayerResult
	b.Emit(&result)

	require.Len(t, result.Challenges, 2)
	assert.Equal(t, "first", result.Challenges["1"].ChallengeName)
	assert.Equal(t, "second", result.Challenges["2"].ChallengeName)
}

func TestActivityAttrNormalizes(t *testing.T) {
	act := Activity{
		Name: "_kills",
		Attributes: map[string]json.RawMessage{
			"type":  json.RawMessage(`"kett"`),
			"count": json.RawMessage(`3`),
			"ratio": json.RawMessage(`0.5`),
			"whole": json.RawMessage(`12.0`),
		},
	}

	v, ok := act.Attr("type")
	require.True(t, ok)
	assert.Equal(t, "kett", v)

	v, ok = act.Attr("count")
	require.True(t, ok)
	assert.Equal(t, "3", v)

	v, ok = act.Attr("ratio")
	require.True(t, ok)
	assert.Equal(t, "0.5", v)

	v, ok = act.Attr("whole")
	require.True(t, ok)
	assert.Equal(t, "12", v)

	_, ok = act.Attr("missing")
	assert.False(t, ok)
}

func TestActivityScore(t *testing.T) {
	withScore := Activity{Attributes: map[string]json.RawMessage{
		"score": json.RawMessage(`250`),
	}}
	assert.Equal(t, uint32(250), withScore.Score())

	noScore := Activity{Attributes: map[string]json.RawMessage{}}
	assert.Equal(t, uint32(0), noScore.Score())

	badScore := Activity{Attributes: map[string]json.RawMessage{
		"score": json.RawMessage(`"lots"`),
	}}
	assert.Equal(t, uint32(0), badScore.Score())
}

func TestActivityAttrMap(t *testing.T) {
	act := Activity{Attributes: map[string]json.RawMessage{
		"type":  json.RawMessage(`"remnant"`),
		"count": json.RawMessage(`2`),
	}}

	assert.Equal(t, map[string]string{"type": "remnant", "count": "2"}, act.AttrMap())
}

func TestChallengeCounterMergeOrder(t *testing.T) {
	// Two activities hitting the same counter merge into one change;
	// distinct counters keep first-appearance order.
	kills := func(n int64) Activity {
		return Activity{
			Name: "_kills",
			Attributes: map[string]json.RawMessage{
				"type":  json.RawMessage(`"kett"`),
				"count": json.RawMessage(strconv.FormatInt(n, 10)),
			},
		}
	}
	a1, a2 := kills(3), kills(4)

	ch1, c1, ok := data.MatchChallengeCounter(a1.Name, a1.AttrMap())
	require.True(t, ok)
	ch2, c2, ok := data.MatchChallengeCounter(a2.Name, a2.AttrMap())
	require.True(t, ok)

	assert.Equal(t, ch1.ID, ch2.ID)
	assert.Equal(t, c1.Name, c2.Name)
	assert.Equal(t, uint32(3), c1.Descriptor.Progress(a1.AttrMap()))
	assert.Equal(t, uint32(4), c2.Descriptor.Progress(a2.AttrMap()))
}
