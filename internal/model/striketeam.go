package model

import (
	"time"

	"github.com/google/uuid"
)

// StrikeTeam is one deployable team owned by a user. Users may own several;
// the retail schema's unique index on user_id is deliberately not carried.
type StrikeTeam struct {
	ID             uint32
	UserID         uint32
	Name           string
	Icon           string
	Level          uint32
	XP             XP
	PositiveTraits []string
	NegativeTraits []string
	OutOfDate      bool
}

// StrikeTeamMission is a scheduler-issued mission available to strike teams.
type StrikeTeamMission struct {
	ID            uint32
	Descriptor    uuid.UUID
	Accessibility string
	Difficulty    string
	Enemy         string
	Level         string
	GameTags      []string
	RewardXP      uint32
	RewardCurrency uint32
	StartTime     time.Time
	Duration      time.Duration
	Apex          bool
}

// StrikeTeamMissionProgress locks a mission as in-progress for a user's team.
type StrikeTeamMissionProgress struct {
	UserID     uint32
	MissionID  uint32
	TeamID     uint32
	InProgress bool
	StartedAt  time.Time
}
