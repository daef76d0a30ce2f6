package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestChallengeCounterApply(t *testing.T) {
	now := time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name        string
		counter     ChallengeCounter
		progress    uint32
		repeatable  bool
		wantCurrent uint32
		wantTimes   uint32
		wantTotal   uint32
	}{
		{
			name:        "repeatable below target",
			counter:     ChallengeCounter{TargetCount: 5, CurrentCount: 1},
			progress:    2,
			repeatable:  true,
			wantCurrent: 3,
			wantTimes:   0,
			wantTotal:   2,
		},
		{
			name:        "repeatable single rollover keeps remainder",
			counter:     ChallengeCounter{TargetCount: 5, CurrentCount: 4, TimesCompleted: 2, TotalCount: 14},
			progress:    3,
			repeatable:  true,
			wantCurrent: 2,
			wantTimes:   3,
			wantTotal:   17,
		},
		{
			name:        "repeatable multi rollover",
			counter:     ChallengeCounter{TargetCount: 3, CurrentCount: 2, TimesCompleted: 1},
			progress:    7,
			repeatable:  true,
			wantCurrent: 0,
			wantTimes:   4,
			wantTotal:   7,
		},
		{
			name:        "non-repeatable clamps at target",
			counter:     ChallengeCounter{TargetCount: 10, CurrentCount: 8},
			progress:    25,
			repeatable:  false,
			wantCurrent: 10,
			wantTimes:   1,
			wantTotal:   25,
		},
		{
			name:        "non-repeatable stays pinned once complete",
			counter:     ChallengeCounter{TargetCount: 10, CurrentCount: 10, TimesCompleted: 1, TotalCount: 33},
			progress:    5,
			repeatable:  false,
			wantCurrent: 10,
			wantTimes:   1,
			wantTotal:   38,
		},
		{
			name:        "zero target only accumulates",
			counter:     ChallengeCounter{TargetCount: 0, CurrentCount: 4, TimesCompleted: 0},
			progress:    9,
			repeatable:  true,
			wantCurrent: 13,
			wantTimes:   0,
			wantTotal:   9,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := tt.counter
			c.Apply(tt.progress, tt.repeatable, now)
			assert.Equal(t, tt.wantCurrent, c.CurrentCount)
			assert.Equal(t, tt.wantTimes, c.TimesCompleted)
			assert.Equal(t, tt.wantTotal, c.TotalCount)
			assert.Equal(t, now, c.LastChanged)
		})
	}
}
