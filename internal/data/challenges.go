package data

import "github.com/google/uuid"

// CounterDef is one named counter inside a challenge: the descriptor it
// listens for and the target that completes it.
type CounterDef struct {
	Name       string
	Target     uint32
	Descriptor ActivityDescriptor
}

// Challenge is a tracked long-term goal. Repeatable challenges roll their
// counters over on completion; one-shot challenges clamp at the target.
type Challenge struct {
	ID         uuid.UUID
	Name       string
	Repeatable bool
	Counters   []CounterDef
}

var Challenges = []Challenge{
	{
		ID:         uuid.MustParse("9f2c7e58-2a0b-4f1d-8d43-1be02c7a9a01"),
		Name:       "ch_kett_slayer",
		Repeatable: true,
		Counters: []CounterDef{
			{
				Name:   "kett_kills",
				Target: 100,
				Descriptor: ActivityDescriptor{
					ActivityName: "_kills",
					Filter:       map[string]FilterValue{"faction": Eq("kett")},
					ProgressKey:  "count",
				},
			},
		},
	},
	{
		ID:         uuid.MustParse("b1d8f3a6-5c27-4e09-9a71-2cf13d8b0b02"),
		Name:       "ch_remnant_decryption",
		Repeatable: true,
		Counters: []CounterDef{
			{
				Name:   "remnant_kills",
				Target: 100,
				Descriptor: ActivityDescriptor{
					ActivityName: "_kills",
					Filter:       map[string]FilterValue{"faction": Eq("remnant")},
					ProgressKey:  "count",
				},
			},
		},
	},
	{
		ID:         uuid.MustParse("c4e9a2b7-6d38-4f10-8b82-3da24e9c1c03"),
		Name:       "ch_apex_rating",
		Repeatable: false,
		Counters: []CounterDef{
			{
				Name:   "missions_finished",
				Target: 10,
				Descriptor: ActivityDescriptor{
					ActivityName: "_missionFinished",
					ProgressKey:  "count",
				},
			},
			{
				Name:   "full_extractions",
				Target: 5,
				Descriptor: ActivityDescriptor{
					ActivityName: "_extraction",
					Filter:       map[string]FilterValue{"extracted": Eq("1")},
					ProgressKey:  "count",
				},
			},
		},
	},
	{
		ID:         uuid.MustParse("d5fab3c8-7e49-4021-9c93-4eb35fad2d04"),
		Name:       "ch_consumable_use",
		Repeatable: true,
		Counters: []CounterDef{
			{
				Name:   "items_consumed",
				Target: 25,
				Descriptor: ActivityDescriptor{
					ActivityName: "_itemConsumed",
					Filter:       map[string]FilterValue{"category": Ne("")},
					ProgressKey:  "count",
				},
			},
		},
	},
}

var challengeByName map[string]int

func init() {
	challengeByName = make(map[string]int, len(Challenges))
	for i, c := range Challenges {
		challengeByName[c.Name] = i
	}
}

// ChallengeByName returns the named challenge.
func ChallengeByName(name string) (*Challenge, bool) {
	i, ok := challengeByName[name]
	if !ok {
		return nil, false
	}
	return &Challenges[i], true
}

// MatchChallengeCounter returns the first (challenge, counter) pair whose
// descriptor matches the activity.
func MatchChallengeCounter(name string, attrs map[string]string) (*Challenge, *CounterDef, bool) {
	for i := range Challenges {
		for j := range Challenges[i].Counters {
			if Challenges[i].Counters[j].Descriptor.Matches(name, attrs) {
				return &Challenges[i], &Challenges[i].Counters[j], true
			}
		}
	}
	return nil, nil, false
}
