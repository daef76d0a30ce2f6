package activity

import (
	"github.com/korrin/meago/internal/data"
	"github.com/korrin/meago/internal/model"
)

// foldXP folds earned XP into a cumulative (last, current, next)
// progression: each time current reaches next the level climbs and the
// window advances per the table. At the table's cap, current clamps to
// next.
func foldXP(xp model.XP, level uint32, earned uint32, table *data.LevelTable) (model.XP, uint32) {
	maxLevel := uint32(table.MaxLevel())
	xp.Current += earned
	for xp.Current >= xp.Next && level < maxLevel {
		level++
		xp.Last = xp.Next
		if req, ok := table.Requirement(int32(level)); ok {
			xp.Next += uint32(req)
		}
	}
	if level >= maxLevel && xp.Current > xp.Next {
		xp.Current = xp.Next
	}
	return xp, level
}
