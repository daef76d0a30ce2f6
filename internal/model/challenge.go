package model

import (
	"time"

	"github.com/google/uuid"
)

// ChallengeCounter tracks one named counter inside a challenge progress row.
type ChallengeCounter struct {
	Name           string
	TimesCompleted uint32
	TotalCount     uint32
	CurrentCount   uint32
	TargetCount    uint32
	ResetCount     uint32
	LastChanged    time.Time
}

// ChallengeUpdateStatus reports whether a counter row already existed.
type ChallengeUpdateStatus string

const (
	// ChallengeStatusNotify marks a counter created by this update.
	ChallengeStatusNotify ChallengeUpdateStatus = "Notify"
	// ChallengeStatusChanged marks a counter that already existed.
	ChallengeStatusChanged ChallengeUpdateStatus = "Changed"
)

// ChallengeProgress is the per-user progress aggregate for one challenge.
type ChallengeProgress struct {
	UserID      uint32
	ChallengeID uuid.UUID
	Counters    []ChallengeCounter
}

// Counter returns the counter named name, or nil.
func (p *ChallengeProgress) Counter(name string) *ChallengeCounter {
	for i := range p.Counters {
		if p.Counters[i].Name == name {
			return &p.Counters[i]
		}
	}
	return nil
}

// Apply adds progress to the counter. Repeatable counters roll current over
// target and bump times-completed each turn; non-repeatable counters clamp
// current to target and pin times-completed at one.
func (c *ChallengeCounter) Apply(progress uint32, repeatable bool, now time.Time) {
	c.CurrentCount += progress
	c.TotalCount += progress
	if c.TargetCount > 0 {
		if repeatable {
			for c.CurrentCount >= c.TargetCount {
				c.CurrentCount -= c.TargetCount
				c.TimesCompleted++
			}
		} else if c.CurrentCount >= c.TargetCount {
			c.CurrentCount = c.TargetCount
			c.TimesCompleted = 1
		}
	}
	c.LastChanged = now
}
