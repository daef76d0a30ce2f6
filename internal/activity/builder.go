package activity

import "github.com/korrin/meago/internal/model"

// rewardBuilder accumulates everything a player earned across the pipeline
// steps and emits the response in one pass at the end.
type rewardBuilder struct {
	order   []string
	sources map[string]*RewardSource

	badges     []BadgeInfo
	challenges []ChallengeUpdate
	items      []ItemEarned

	prestigeBefore map[string]model.PrestigeProgression
	prestigeAfter  map[string]model.PrestigeProgression
}

func newRewardBuilder() *rewardBuilder {
	return &rewardBuilder{
		sources:        make(map[string]*RewardSource),
		prestigeBefore: make(map[string]model.PrestigeProgression),
		prestigeAfter:  make(map[string]model.PrestigeProgression),
	}
}

func (b *rewardBuilder) source(name string) *RewardSource {
	if s, ok := b.sources[name]; ok {
		return s
	}
	s := &RewardSource{Name: name, Currencies: make(map[model.CurrencyType]uint32)}
	b.sources[name] = s
	b.order = append(b.order, name)
	return s
}

// AddXP credits XP under the named source.
func (b *rewardBuilder) AddXP(sourceName string, xp uint32) {
	b.source(sourceName).XP += xp
}

// AddCurrency credits a currency under the named source.
func (b *rewardBuilder) AddCurrency(sourceName string, t model.CurrencyType, amount uint32) {
	if amount == 0 {
		return
	}
	b.source(sourceName).Currencies[t] += amount
}

// TotalXP sums XP across all sources.
func (b *rewardBuilder) TotalXP() uint32 {
	var total uint32
	for _, s := range b.sources {
		total += s.XP
	}
	return total
}

// TotalCurrencies sums currencies across all sources.
func (b *rewardBuilder) TotalCurrencies() map[model.CurrencyType]uint32 {
	totals := make(map[model.CurrencyType]uint32)
	for _, s := range b.sources {
		for t, amount := range s.Currencies {
			totals[t] += amount
		}
	}
	return totals
}

func (b *rewardBuilder) AddBadge(info BadgeInfo) {
	b.badges = append(b.badges, info)
}

func (b *rewardBuilder) AddChallenge(update ChallengeUpdate) {
	b.challenges = append(b.challenges, update)
}

func (b *rewardBuilder) AddItem(item ItemEarned) {
	b.items = append(b.items, item)
}

func (b *rewardBuilder) SnapshotPrestigeBefore(p model.PrestigeProgression) {
	b.prestigeBefore[p.Name] = p
}

func (b *rewardBuilder) SnapshotPrestigeAfter(p model.PrestigeProgression) {
	b.prestigeAfter[p.Name] = p
}

// Emit shapes the accumulated rewards into the player result.
func (b *rewardBuilder) Emit(result *PlayerResult) {
	result.RewardSources = make([]RewardSource, 0, len(b.order))
	for _, name := range b.order {
		result.RewardSources = append(result.RewardSources, *b.sources[name])
	}
	result.Badges = b.badges
	result.Challenges = make(map[string]ChallengeUpdate, len(b.challenges))
	for i, upd := range b.challenges {
		result.Challenges[challengeKey(i)] = upd
	}
	result.ItemsEarned = b.items
	result.PrestigeBefore = b.prestigeBefore
	result.PrestigeAfter = b.prestigeAfter
}
