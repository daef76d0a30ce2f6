package data

import (
	"math/rand/v2"

	"github.com/google/uuid"

	"github.com/korrin/meago/internal/model"
)

// Mission difficulty tags, ordered bronze to platinum.
const (
	DifficultyBronze   = "bronze"
	DifficultySilver   = "silver"
	DifficultyGold     = "gold"
	DifficultyPlatinum = "platinum"
)

// Mission accessibility tags.
const (
	AccessSinglePlayer = "SinglePlayer"
	AccessAny          = "Any"
	AccessMultiPlayer  = "MultiPlayer"
)

// Weighted is one entry of a weighted pick table.
type Weighted[T any] struct {
	Value  T
	Weight uint32
}

// PickWeighted draws one entry proportionally to its weight.
func PickWeighted[T any](rng *rand.Rand, entries []Weighted[T]) T {
	var total uint32
	for _, e := range entries {
		total += e.Weight
	}
	roll := rng.Uint32N(total)
	for _, e := range entries {
		if roll < e.Weight {
			return e.Value
		}
		roll -= e.Weight
	}
	return entries[len(entries)-1].Value
}

// AccessibilityWeights skew missions toward single-player availability.
var AccessibilityWeights = []Weighted[string]{
	{Value: AccessSinglePlayer, Weight: 6},
	{Value: AccessAny, Weight: 3},
	{Value: AccessMultiPlayer, Weight: 1},
}

// DifficultyWeights skew missions toward the lower tiers.
var DifficultyWeights = []Weighted[string]{
	{Value: DifficultyBronze, Weight: 8},
	{Value: DifficultySilver, Weight: 6},
	{Value: DifficultyGold, Weight: 2},
	{Value: DifficultyPlatinum, Weight: 1},
}

// MissionDescriptor is the static template a scheduled mission is built
// from.
type MissionDescriptor struct {
	Name         uuid.UUID
	FriendlyName string
	Apex         bool
}

var StandardMissionDescriptors = []MissionDescriptor{
	{Name: uuid.MustParse("b47f0a8e-8f26-4f7a-b1d0-b2e0b4f76c01"), FriendlyName: "Supply Recovery"},
	{Name: uuid.MustParse("0f6d2b9a-91ea-4e29-95a0-6f3ec6c17f02"), FriendlyName: "Outpost Defense"},
	{Name: uuid.MustParse("61a4e9cd-2d67-49ef-bd7b-5a51a46cbb03"), FriendlyName: "Recon Sweep"},
	{Name: uuid.MustParse("c9f2ab40-7c01-4de3-9f70-2fa3bafcbd04"), FriendlyName: "Sabotage Run"},
}

var ApexMissionDescriptors = []MissionDescriptor{
	{Name: uuid.MustParse("e5b1c7a2-6d8f-4a5b-8dd0-bfcbf7a1aa05"), FriendlyName: "APEX Extraction", Apex: true},
	{Name: uuid.MustParse("7a3d90cf-15be-4ed2-a6c7-40a4f7f3cb06"), FriendlyName: "APEX Assault", Apex: true},
	{Name: uuid.MustParse("f0c84b31-9e75-4a02-bd2a-97b2a5d2dc07"), FriendlyName: "APEX Hunt", Apex: true},
}

// Tags drawn into each mission's attribute block.
var (
	EnemyTags = []string{"kett", "outlaw", "remnant"}
	GameTags  = []string{"night", "lowGravity", "hazardCold", "hazardHeat", "sniperFocus", "meleeFocus"}
	MapTags   = []string{"Firebase Zero", "Firebase Sandstorm", "Firebase Icebreaker", "Firebase Derelict", "Firebase Aqua"}
)

// MissionRewards is the currency block a finished strike-team mission pays
// out, derived from difficulty and accessibility.
type MissionRewards struct {
	Currencies map[model.CurrencyType]uint32
}

var difficultyPayout = map[string]uint32{
	DifficultyBronze:   1000,
	DifficultySilver:   2500,
	DifficultyGold:     6000,
	DifficultyPlatinum: 12000,
}

// RewardsFor derives the payout block. Multiplayer-accessible missions pay
// mission funds on top of credits.
func RewardsFor(accessibility, difficulty string) MissionRewards {
	base := difficultyPayout[difficulty]
	rewards := MissionRewards{Currencies: map[model.CurrencyType]uint32{
		model.CurrencyGrind: base,
	}}
	if accessibility != AccessSinglePlayer {
		rewards.Currencies[model.CurrencyMission] = base / 500
	}
	return rewards
}

// StrikeTeamNames seed newly recruited teams.
var StrikeTeamNames = []string{
	"Anvil", "Breaker", "Cyclone", "Dagger", "Ember",
	"Fulcrum", "Granite", "Hollow", "Ironclad", "Javelin",
}

// StrikeTeamTrait adjusts a team's mission success odds.
type StrikeTeamTrait struct {
	Name     string
	Positive bool
}

var StrikeTeamTraits = []StrikeTeamTrait{
	{Name: "tactical_training", Positive: true},
	{Name: "kett_specialists", Positive: true},
	{Name: "remnant_specialists", Positive: true},
	{Name: "veteran_leadership", Positive: true},
	{Name: "undisciplined", Positive: false},
	{Name: "overconfident", Positive: false},
}
