package model

import "time"

// XP is a (last, current, next) progression triple against a level table.
type XP struct {
	Last    uint32
	Current uint32
	Next    uint32
}

// Character is one playable character owned by a user.
type Character struct {
	ID            uint32
	UserID        uint32
	ClassName     string
	Level         uint32
	XP            XP
	SkillPoints   uint32
	SkillTrees    string // JSON blob, opaque to the core
	Attributes    map[string]string
	Customization string // JSON blob, opaque to the core
	CreatedAt     time.Time
}

// PrestigeProgression is per-class meta leveling shared across characters
// of the same class.
type PrestigeProgression struct {
	Name  string
	Level uint32
	XP    XP
}

// SharedData is the per-user record of cross-character state.
type SharedData struct {
	UserID            uint32
	ActiveCharacterID uint32
	SharedEquipment   map[string]string
	SharedProgression []PrestigeProgression
}

// Progression returns the entry named name, or nil.
func (s *SharedData) Progression(name string) *PrestigeProgression {
	for i := range s.SharedProgression {
		if s.SharedProgression[i].Name == name {
			return &s.SharedProgression[i]
		}
	}
	return nil
}
