package model

import (
	"time"

	"github.com/google/uuid"
)

// InventoryItem is one owned item stack. Definition names are unique per
// user; granting a duplicate definition grows the stack instead.
type InventoryItem struct {
	ID                 uint32
	UserID             uint32
	DefinitionName     uuid.UUID
	StackSize          uint32
	Seen               bool
	InstanceAttributes map[string]string
	CreatedAt          time.Time
	LastGrantedAt      time.Time
	EarnedBy           string
	Restricted         bool
}
