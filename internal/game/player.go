package game

import (
	"github.com/google/uuid"

	"github.com/korrin/meago/internal/blaze"
	"github.com/korrin/meago/internal/blaze/tdf"
	"github.com/korrin/meago/internal/model"
)

// PlayerState mirrors the client-visible player slot states.
type PlayerState uint8

const (
	PlayerStateReserved         PlayerState = 0
	PlayerStateQueued           PlayerState = 1
	PlayerStateActiveConnecting PlayerState = 2
	PlayerStateActiveConnected  PlayerState = 3
	PlayerStateActiveMigrating  PlayerState = 4
	PlayerStateDisconnected     PlayerState = 5
)

// RemoveReason explains a player removal to the remaining players.
// Values are preserved numerically on the wire.
type RemoveReason uint8

const (
	RemoveReasonGeneric               RemoveReason = 0
	RemoveReasonPlayerLeft            RemoveReason = 1
	RemoveReasonGameDestroyed         RemoveReason = 2
	RemoveReasonBlackListed           RemoveReason = 3
	RemoveReasonMigrationFailed       RemoveReason = 4
	RemoveReasonKickedOutOfGame       RemoveReason = 5
	RemoveReasonPlayerLeftGameSession RemoveReason = 6
	RemoveReasonDisconnected          RemoveReason = 7
)

// Player is one occupied slot in a game. The session link is weak: the
// session may die while the player record still sits in the slot list.
type Player struct {
	SessionID uuid.UUID
	User      *model.User
	Net       blaze.NetworkData
	State     PlayerState
	Attrs     *AttrMap

	session *blaze.Session
}

// NewPlayer builds a player slot from an authenticated session.
func NewPlayer(s *blaze.Session, user *model.User) *Player {
	return &Player{
		SessionID: s.ID,
		User:      user,
		Net:       s.NetworkData(),
		State:     PlayerStateActiveConnecting,
		Attrs:     NewAttrMap(),
		session:   s,
	}
}

// Session upgrades the weak session link, returning nil once it has died.
func (p *Player) Session() *blaze.Session {
	if p.session == nil || p.session.IsClosed() {
		return nil
	}
	return p.session
}

// Push queues a frame on the player's session if it is still alive.
func (p *Player) Push(f *blaze.Frame) {
	if s := p.Session(); s != nil {
		s.Push(f)
	}
}

// Encode writes the tagged player-data group used in game notifications.
func (p *Player) Encode(w *tdf.Writer, gameID uint32, slot int, label string) {
	w.TagGroup(label)
	p.encodeFields(w, gameID, slot)
	w.EndGroup()
}

// encodeFields writes the group body without the tag or terminator, so the
// same fields can serve as a group-list element.
func (p *Player) encodeFields(w *tdf.Writer, gameID uint32, slot int) {
	p.Attrs.Encode(w, "ATTR")
	w.TagVarInt("GID", uint64(gameID))
	w.TagString("NAME", p.User.Username)
	w.TagVarInt("PID", uint64(p.User.ID))
	p.Net.EncodeAddr(w, "PNET")
	w.TagVarInt("SLOT", uint64(slot))
	w.TagVarInt("STAT", uint64(p.State))
	w.TagVarInt("UID", uint64(p.User.ID))
}
