package activity

import (
	"strconv"

	"github.com/google/uuid"

	"github.com/korrin/meago/internal/model"
)

// RewardSource is one named contribution to the post-match rewards:
// "base", a badge UUID, or a modifier name.
type RewardSource struct {
	Name       string                            `json:"name"`
	XP         uint32                            `json:"xp"`
	Currencies map[model.CurrencyType]uint32     `json:"currencies"`
}

// BadgeInfo is one earned-badge line in the summary.
type BadgeInfo struct {
	Name         string   `json:"name"`
	Count        uint32   `json:"count"`
	HighestLevel string   `json:"highestLevelName"`
	LevelsEarned []string `json:"levelsEarned"`
}

// ChallengeUpdate is one counter change in the summary.
type ChallengeUpdate struct {
	ChallengeID   uuid.UUID                    `json:"challengeId"`
	ChallengeName string                       `json:"challengeName"`
	CounterName   string                       `json:"counterName"`
	Status        model.ChallengeUpdateStatus  `json:"status"`
	Counter       model.ChallengeCounter       `json:"counter"`
}

// ItemEarned is one granted item in the summary.
type ItemEarned struct {
	DefinitionName uuid.UUID `json:"definitionName"`
	StackSize      uint32    `json:"stackSize"`
}

// PlayerResult is the shaped per-player outcome the client renders. The
// same shape serves match reports, consume, and purchase.
type PlayerResult struct {
	PreviousXP     model.XP                               `json:"previousXp"`
	CurrentXP      model.XP                               `json:"currentXp"`
	PreviousLevel  uint32                                 `json:"previousLevel"`
	CurrentLevel   uint32                                 `json:"currentLevel"`
	LeveledUp      bool                                   `json:"leveledUp"`
	Score          uint32                                 `json:"score"`
	TotalScore     uint32                                 `json:"totalScore"`
	CharacterClass string                                 `json:"characterClass"`
	RewardSources  []RewardSource                         `json:"rewardSources"`
	Badges         []BadgeInfo                            `json:"badges"`
	Challenges     map[string]ChallengeUpdate             `json:"challengesUpdated"`
	ItemsEarned    []ItemEarned                           `json:"itemsEarned"`
	PrestigeBefore map[string]model.PrestigeProgression   `json:"prestigeBefore"`
	PrestigeAfter  map[string]model.PrestigeProgression   `json:"prestigeAfter"`
}

// ReportResult holds the per-player outcomes of one report, successful
// players only.
type ReportResult struct {
	MatchID string                   `json:"matchId"`
	Players map[string]*PlayerResult `json:"players"`
}

// challengeKey numbers challenge updates "1".."n" as the client expects.
func challengeKey(i int) string {
	return strconv.Itoa(i + 1)
}
