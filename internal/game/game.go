package game

import (
	"fmt"
	"sync"
	"time"

	"github.com/korrin/meago/internal/blaze"
	"github.com/korrin/meago/internal/blaze/tdf"
)

// DefaultCapacity is the retail slot count: one host plus three joiners.
const DefaultCapacity = 4

// Game states the client drives through AdvanceGameState.
const (
	GameStateInit   uint8 = 1
	GameStateInGame uint8 = 130
)

// JoinableState classifies a game for a prospective joiner.
type JoinableState int

const (
	Joinable JoinableState = iota
	Full
	NotJoinable
	Mismatched
)

// MatchmakingResult is the result code in the setup MMSC sub-group.
type MatchmakingResult uint8

const (
	ResultCreatedGame    MatchmakingResult = 0
	ResultJoinedExisting MatchmakingResult = 1
)

// SetupContext describes how a player ended up in a game; matchmaking joins
// carry the summary sub-group in their setup frame.
type SetupContext struct {
	Matchmaking bool
	Result      MatchmakingResult
	FitScore    uint32
	MaxFitScore uint32
	StartedAt   time.Time
}

// Game owns the mutable state of one in-progress match. All methods take
// the game lock; notifications are fanned out while it is held, which is
// safe because a push only appends to the recipient's write queue.
type Game struct {
	ID uint32

	mu       sync.Mutex
	state    uint8
	setting  uint32
	attrs    *AttrMap
	players  []*Player
	capacity int
	report   []byte // completed-match report, raw, if submitted

	reg *Registry
}

// State returns the current game state byte.
func (g *Game) State() uint8 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Setting returns the game setting bits.
func (g *Game) Setting() uint32 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.setting
}

// Attributes returns a copy of the attribute map.
func (g *Game) Attributes() *AttrMap {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.attrs.Clone()
}

// PlayerCount returns the number of occupied slots.
func (g *Game) PlayerCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.players)
}

// HostID returns the host player's user id, if the game has players.
func (g *Game) HostID() (uint32, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.players) == 0 {
		return 0, false
	}
	return g.players[0].User.ID, true
}

// Player returns the slot for userID, or nil.
func (g *Game) Player(userID uint32) *Player {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.playerLocked(userID)
}

func (g *Game) playerLocked(userID uint32) *Player {
	for _, p := range g.players {
		if p.User.ID == userID {
			return p
		}
	}
	return nil
}

// SetReport stashes the raw completed-match report on the game.
func (g *Game) SetReport(report []byte) {
	g.mu.Lock()
	g.report = report
	g.mu.Unlock()
}

// Report returns the raw completed-match report, if one was submitted.
func (g *Game) Report() ([]byte, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.report, g.report != nil
}

// AddPlayer appends a player, sends it the full game-setup frame plus the
// post-join frame, and tells everyone else a player joined.
func (g *Game) AddPlayer(p *Player, ctx SetupContext) error {
	g.mu.Lock()
	if len(g.players) >= g.capacity {
		g.mu.Unlock()
		return fmt.Errorf("game %d is full (%d/%d)", g.ID, len(g.players), g.capacity)
	}
	g.players = append(g.players, p)
	slot := len(g.players) - 1

	if s := p.Session(); s != nil {
		s.SetGame(g.ID, g.sessionLeave())
		s.Push(g.setupFrameLocked(ctx))
		s.Push(g.postJoinFrameLocked(p))
	}
	joined := g.playerJoinedFrameLocked(p, slot)
	for _, other := range g.players[:slot] {
		other.Push(joined)
	}
	g.mu.Unlock()
	return nil
}

// sessionLeave is the callback a session fires when it dies mid-game.
func (g *Game) sessionLeave() func(userID uint32) {
	reg, id := g.reg, g.ID
	return func(userID uint32) {
		reg.RemovePlayerFromGame(id, userID, RemoveReasonDisconnected)
	}
}

// RemovePlayer drops the slot for userID and notifies the remaining
// players. Removing the host destroys the game; the caller learns that via
// hostLeft so the registry can run the tear-down.
func (g *Game) RemovePlayer(userID uint32, reason RemoveReason) (removed, hostLeft bool) {
	g.mu.Lock()
	idx := -1
	for i, p := range g.players {
		if p.User.ID == userID {
			idx = i
			break
		}
	}
	if idx == -1 {
		g.mu.Unlock()
		return false, false
	}
	if idx == 0 {
		g.mu.Unlock()
		return true, true
	}

	p := g.players[idx]
	g.players = append(g.players[:idx], g.players[idx+1:]...)
	frame := g.playerRemovedFrameLocked(p.User.ID, reason)
	for _, other := range g.players {
		other.Push(frame)
	}
	p.Push(frame)
	g.mu.Unlock()

	if s := p.Session(); s != nil {
		s.ClearGame()
	}
	return true, false
}

// destroy empties the game, notifying every player. Called by the registry
// after the game left the map so nobody can join a dying game.
func (g *Game) destroy(reason RemoveReason) {
	g.mu.Lock()
	players := g.players
	g.players = nil
	frames := make([]*blaze.Frame, len(players))
	for i, p := range players {
		frames[i] = g.playerRemovedFrameLocked(p.User.ID, reason)
	}
	g.mu.Unlock()

	for i, p := range players {
		p.Push(frames[i])
		if s := p.Session(); s != nil {
			s.ClearGame()
		}
	}
}

// SetState writes the state through and broadcasts the change.
func (g *Game) SetState(state uint8) {
	g.mu.Lock()
	g.state = state

	w := tdf.NewWriter(32)
	w.TagVarInt("GID", uint64(g.ID))
	w.TagVarInt("GSTA", uint64(state))
	frame := blaze.NotifyFrame(blaze.ComponentGameManager, blaze.GameNotifyGameStateChange, w.Bytes())
	g.broadcastLocked(frame)
	g.mu.Unlock()
}

// SetSetting writes the setting bits through and broadcasts the change.
func (g *Game) SetSetting(setting uint32) {
	g.mu.Lock()
	g.setting = setting

	w := tdf.NewWriter(32)
	w.TagVarInt("ATTR", uint64(setting))
	w.TagVarInt("GID", uint64(g.ID))
	frame := blaze.NotifyFrame(blaze.ComponentGameManager, blaze.GameNotifyGameSettingsChange, w.Bytes())
	g.broadcastLocked(frame)
	g.mu.Unlock()
}

// SetAttributes merges attrs into the stored attribute map and broadcasts
// the update. The queue re-scan on a newly joinable game is the
// matchmaker's job; the registry forwards the event.
func (g *Game) SetAttributes(attrs *AttrMap) {
	g.mu.Lock()
	g.attrs.Merge(attrs)

	w := tdf.NewWriter(128)
	g.attrs.Encode(w, "ATTR")
	w.TagVarInt("GID", uint64(g.ID))
	frame := blaze.NotifyFrame(blaze.ComponentGameManager, blaze.GameNotifyGameAttribChange, w.Bytes())
	g.broadcastLocked(frame)
	g.mu.Unlock()
}

// SetPlayerAttributes merges attrs into one player's map and broadcasts.
func (g *Game) SetPlayerAttributes(userID uint32, attrs *AttrMap) bool {
	g.mu.Lock()
	p := g.playerLocked(userID)
	if p == nil {
		g.mu.Unlock()
		return false
	}
	p.Attrs.Merge(attrs)

	w := tdf.NewWriter(128)
	p.Attrs.Encode(w, "ATTR")
	w.TagVarInt("GID", uint64(g.ID))
	w.TagVarInt("PID", uint64(userID))
	frame := blaze.NotifyFrame(blaze.ComponentGameManager, blaze.GameNotifyPlayerAttribChange, w.Bytes())
	g.broadcastLocked(frame)
	g.mu.Unlock()
	return true
}

// SetPlayerConnected marks the player's mesh link established and
// broadcasts the join-complete notification.
func (g *Game) SetPlayerConnected(userID uint32) bool {
	g.mu.Lock()
	p := g.playerLocked(userID)
	if p == nil {
		g.mu.Unlock()
		return false
	}
	p.State = PlayerStateActiveConnected

	w := tdf.NewWriter(32)
	w.TagVarInt("GID", uint64(g.ID))
	w.TagVarInt("PID", uint64(userID))
	frame := blaze.NotifyFrame(blaze.ComponentGameManager, blaze.GameNotifyPlayerJoinComplete, w.Bytes())
	g.broadcastLocked(frame)
	g.mu.Unlock()
	return true
}

// NotifyGameReplay broadcasts the replay-start notification.
func (g *Game) NotifyGameReplay() {
	g.mu.Lock()
	w := tdf.NewWriter(16)
	w.TagVarInt("GID", uint64(g.ID))
	frame := blaze.NotifyFrame(blaze.ComponentGameManager, blaze.GameNotifyGameReplay, w.Bytes())
	g.broadcastLocked(frame)
	g.mu.Unlock()
}

// Joinable classifies the game for a prospective joiner. rules may be nil
// for a direct join-by-id.
func (g *Game) Joinable(rules *RuleSet) JoinableState {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state != GameStateInit && g.state != GameStateInGame {
		return NotJoinable
	}
	if len(g.players) >= g.capacity {
		return Full
	}
	if rules != nil && !rules.Match(g.attrs, len(g.players)) {
		return Mismatched
	}
	return Joinable
}

func (g *Game) broadcastLocked(f *blaze.Frame) {
	for _, p := range g.players {
		p.Push(f)
	}
}

// setupFrameLocked builds the full game description a joining player needs.
func (g *Game) setupFrameLocked(ctx SetupContext) *blaze.Frame {
	w := tdf.NewWriter(512)
	w.TagGroup("GAME")
	w.TagVarIntList("ADMN", g.playerIDsLocked())
	g.attrs.Encode(w, "ATTR")
	w.TagVarInt("CAP", uint64(g.capacity))
	w.TagVarInt("GID", uint64(g.ID))
	w.TagVarInt("GSET", uint64(g.setting))
	w.TagVarInt("GSTA", uint64(g.state))
	if len(g.players) > 0 {
		host := g.players[0]
		hostNet := host.Net
		hostNet.EncodeAddr(w, "HNET")
		w.TagVarInt("HSID", uint64(host.User.ID))
	}
	if ctx.Matchmaking {
		w.TagGroup("MMSC")
		w.TagVarInt("FIT", uint64(ctx.FitScore))
		w.TagVarInt("MAXF", uint64(ctx.MaxFitScore))
		w.TagVarInt("RSLT", uint64(ctx.Result))
		w.TagVarInt("TIME", uint64(ctx.StartedAt.Unix()))
		w.EndGroup()
	}
	w.TagList("PROS", tdf.TypeGroup, len(g.players))
	for slot, p := range g.players {
		p.encodeFields(w, g.ID, slot)
		w.EndGroup()
	}
	w.EndGroup()
	return blaze.NotifyFrame(blaze.ComponentGameManager, blaze.GameNotifyGameSetup, w.Bytes())
}

func (g *Game) postJoinFrameLocked(p *Player) *blaze.Frame {
	w := tdf.NewWriter(32)
	w.TagVarInt("GID", uint64(g.ID))
	w.TagVarInt("PID", uint64(p.User.ID))
	return blaze.NotifyFrame(blaze.ComponentGameManager, blaze.GameNotifyPostJoinedGame, w.Bytes())
}

func (g *Game) playerJoinedFrameLocked(p *Player, slot int) *blaze.Frame {
	w := tdf.NewWriter(256)
	w.TagVarInt("GID", uint64(g.ID))
	p.Encode(w, g.ID, slot, "PDAT")
	return blaze.NotifyFrame(blaze.ComponentGameManager, blaze.GameNotifyPlayerJoining, w.Bytes())
}

func (g *Game) playerRemovedFrameLocked(userID uint32, reason RemoveReason) *blaze.Frame {
	w := tdf.NewWriter(32)
	w.TagVarInt("GID", uint64(g.ID))
	w.TagVarInt("PID", uint64(userID))
	w.TagVarInt("REAS", uint64(reason))
	return blaze.NotifyFrame(blaze.ComponentGameManager, blaze.GameNotifyPlayerRemoved, w.Bytes())
}

func (g *Game) playerIDsLocked() []uint64 {
	ids := make([]uint64, len(g.players))
	for i, p := range g.players {
		ids[i] = uint64(p.User.ID)
	}
	return ids
}
