package game

import (
	"log/slog"
	"sync"
)

// Registry owns every live game, keyed by a monotonically increasing id.
// Ids are never reused within a process lifetime.
type Registry struct {
	log *slog.Logger

	mu     sync.RWMutex
	games  map[uint32]*Game
	nextID uint32

	// onUpdate fires after a game changed in a way that may make it
	// joinable again; the matchmaker hooks it to re-scan its queue.
	onUpdate func(g *Game)
}

func NewRegistry(log *slog.Logger) *Registry {
	return &Registry{
		log:    log.With("module", "games"),
		games:  make(map[uint32]*Game),
		nextID: 1,
	}
}

// OnUpdate installs the joinability callback. Install before serving.
func (r *Registry) OnUpdate(fn func(g *Game)) {
	r.onUpdate = fn
}

// NewGame allocates an id and registers an empty game in the init state.
func (r *Registry) NewGame(attrs *AttrMap, setting uint32) *Game {
	if attrs == nil {
		attrs = NewAttrMap()
	}
	r.mu.Lock()
	id := r.nextID
	r.nextID++
	g := &Game{
		ID:       id,
		state:    GameStateInit,
		setting:  setting,
		attrs:    attrs,
		capacity: DefaultCapacity,
		reg:      r,
	}
	r.games[id] = g
	r.mu.Unlock()

	r.log.Info("game created", "game_id", id)
	return g
}

// Get returns the game with the given id, or nil.
func (r *Registry) Get(id uint32) *Game {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.games[id]
}

// Count returns the number of live games.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.games)
}

// ForEach visits live games until fn returns false.
func (r *Registry) ForEach(fn func(g *Game) bool) {
	r.mu.RLock()
	games := make([]*Game, 0, len(r.games))
	for _, g := range r.games {
		games = append(games, g)
	}
	r.mu.RUnlock()

	for _, g := range games {
		if !fn(g) {
			return
		}
	}
}

// Remove unregisters the game, then tears it down. The order matters: once
// the game left the map no new player can be routed into it.
func (r *Registry) Remove(id uint32, reason RemoveReason) {
	r.mu.Lock()
	g, ok := r.games[id]
	if ok {
		delete(r.games, id)
	}
	r.mu.Unlock()
	if !ok {
		return
	}
	g.destroy(reason)
	r.log.Info("game removed", "game_id", id, "reason", reason)
}

// RemovePlayerFromGame removes one player, destroying the game when the
// player was its host. A non-host removal may free a slot, so the
// joinability callback fires afterwards.
func (r *Registry) RemovePlayerFromGame(gameID, userID uint32, reason RemoveReason) bool {
	g := r.Get(gameID)
	if g == nil {
		return false
	}
	removed, hostLeft := g.RemovePlayer(userID, reason)
	if !removed {
		return false
	}
	if hostLeft {
		r.Remove(gameID, RemoveReasonGameDestroyed)
		return true
	}
	r.notifyUpdate(g)
	return true
}

// NotifyUpdated reports an attribute or state change on a live game.
func (r *Registry) NotifyUpdated(g *Game) {
	r.notifyUpdate(g)
}

func (r *Registry) notifyUpdate(g *Game) {
	if r.onUpdate == nil {
		return
	}
	if r.Get(g.ID) != g {
		return
	}
	r.onUpdate(g)
}
