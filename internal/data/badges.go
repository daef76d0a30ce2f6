package data

import (
	"github.com/google/uuid"

	"github.com/korrin/meago/internal/model"
)

// BadgeLevel is one tier of a badge ladder.
type BadgeLevel struct {
	Name        string
	TargetCount uint32
	XP          uint32
	Currencies  map[model.CurrencyType]uint32
}

// Badge ties an activity descriptor to a reward ladder. The badge UUID
// names the reward source in the post-match summary.
type Badge struct {
	ID         uuid.UUID
	Name       string
	Descriptor ActivityDescriptor
	Levels     []BadgeLevel
}

// EarnedLevels returns every level whose target is within progress, in
// ascending target order.
func (b *Badge) EarnedLevels(progress uint32) []BadgeLevel {
	var out []BadgeLevel
	for _, lvl := range b.Levels {
		if lvl.TargetCount <= progress {
			out = append(out, lvl)
		}
	}
	return out
}

var Badges = []Badge{
	{
		ID:   uuid.MustParse("c4bb4a9d-4f13-45b5-a420-d41f6b7f5f27"),
		Name: "Combat Mastery",
		Descriptor: ActivityDescriptor{
			ActivityName: "_kills",
			Filter:       map[string]FilterValue{"type": Ne("environmental")},
			ProgressKey:  "count",
		},
		Levels: []BadgeLevel{
			{Name: "Bronze", TargetCount: 10, XP: 25, Currencies: map[model.CurrencyType]uint32{model.CurrencyGrind: 10}},
			{Name: "Silver", TargetCount: 25, XP: 50, Currencies: map[model.CurrencyType]uint32{model.CurrencyGrind: 25}},
			{Name: "Gold", TargetCount: 50, XP: 100, Currencies: map[model.CurrencyType]uint32{model.CurrencyGrind: 50}},
		},
	},
	{
		ID:   uuid.MustParse("7d9e0a8c-38fd-4c33-9f23-a9a5ba1ce208"),
		Name: "Wave Survivor",
		Descriptor: ActivityDescriptor{
			ActivityName: "_wavesCompleted",
			ProgressKey:  "count",
		},
		Levels: []BadgeLevel{
			{Name: "Bronze", TargetCount: 3, XP: 30},
			{Name: "Silver", TargetCount: 5, XP: 60},
			{Name: "Gold", TargetCount: 7, XP: 120, Currencies: map[model.CurrencyType]uint32{model.CurrencyMission: 5}},
		},
	},
	{
		ID:   uuid.MustParse("f6a8f0de-3d29-4a4d-9dbd-dc0e2f63f9b1"),
		Name: "Extraction Specialist",
		Descriptor: ActivityDescriptor{
			ActivityName: "_extraction",
			Filter:       map[string]FilterValue{"extracted": Eq("1")},
			ProgressKey:  "count",
		},
		Levels: []BadgeLevel{
			{Name: "Bronze", TargetCount: 1, XP: 50, Currencies: map[model.CurrencyType]uint32{model.CurrencyGrind: 20}},
		},
	},
	{
		ID:   uuid.MustParse("2f1d4c6a-8f1b-4b68-bb6a-cc7ce0b2a7d4"),
		Name: "Field Medic",
		Descriptor: ActivityDescriptor{
			ActivityName: "_revives",
			ProgressKey:  "count",
		},
		Levels: []BadgeLevel{
			{Name: "Bronze", TargetCount: 2, XP: 20},
			{Name: "Silver", TargetCount: 5, XP: 45},
		},
	},
}

// MatchBadge returns the first badge whose descriptor matches the
// activity, mirroring the first-match semantics of reward attribution.
func MatchBadge(name string, attrs map[string]string) (*Badge, bool) {
	for i := range Badges {
		if Badges[i].Descriptor.Matches(name, attrs) {
			return &Badges[i], true
		}
	}
	return nil, false
}
