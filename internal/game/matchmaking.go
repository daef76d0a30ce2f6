package game

import (
	"log/slog"
	"sync"
	"time"
)

// MaxFitScore is the denominator reported alongside the configured fit
// score in matchmaking setup frames.
const MaxFitScore = 21837

type queueEntry struct {
	player   *Player
	rules    *RuleSet
	queuedAt time.Time
}

// Matchmaker pairs quick-match requests with joinable games and keeps a
// queue of players nothing matched yet.
type Matchmaker struct {
	log      *slog.Logger
	registry *Registry
	fitScore uint32

	mu    sync.Mutex
	queue []*queueEntry
}

func NewMatchmaker(registry *Registry, fitScore uint32, log *slog.Logger) *Matchmaker {
	m := &Matchmaker{
		log:      log.With("module", "matchmaking"),
		registry: registry,
		fitScore: fitScore,
	}
	registry.OnUpdate(m.gameUpdated)
	return m
}

// QuickMatch finds the first joinable game matching the request attributes
// and joins it, or queues the player. Returns the joined game, or nil when
// the player went into the queue.
func (m *Matchmaker) QuickMatch(p *Player, attrs *AttrMap) (*Game, error) {
	rules := ParseRuleSet(attrs)

	var target *Game
	m.registry.ForEach(func(g *Game) bool {
		if g.Joinable(rules) == Joinable {
			target = g
			return false
		}
		return true
	})
	if target != nil {
		if err := target.AddPlayer(p, m.joinContext(ResultJoinedExisting)); err != nil {
			return nil, err
		}
		m.log.Info("quick-match joined", "user_id", p.User.ID, "game_id", target.ID)
		return target, nil
	}

	m.mu.Lock()
	m.queue = append(m.queue, &queueEntry{player: p, rules: rules, queuedAt: time.Now()})
	depth := len(m.queue)
	m.mu.Unlock()
	m.log.Info("quick-match queued", "user_id", p.User.ID, "queue_depth", depth)
	return nil, nil
}

// CreateGame registers a new public game with the host in slot zero, then
// drains matching queue entries into it.
func (m *Matchmaker) CreateGame(host *Player, attrs *AttrMap, setting uint32) (*Game, error) {
	g := m.registry.NewGame(attrs, setting)
	if err := g.AddPlayer(host, m.joinContext(ResultCreatedGame)); err != nil {
		m.registry.Remove(g.ID, RemoveReasonGameDestroyed)
		return nil, err
	}
	m.drainInto(g)
	return g, nil
}

// Cancel drops the player from the queue and clears their session's game
// pointer. It is a no-op for players who are not queued.
func (m *Matchmaker) Cancel(userID uint32) bool {
	m.mu.Lock()
	idx := -1
	for i, e := range m.queue {
		if e.player.User.ID == userID {
			idx = i
			break
		}
	}
	if idx == -1 {
		m.mu.Unlock()
		return false
	}
	e := m.queue[idx]
	m.queue = append(m.queue[:idx], m.queue[idx+1:]...)
	m.mu.Unlock()

	if s := e.player.Session(); s != nil {
		s.ClearGame()
	}
	m.log.Info("quick-match cancelled", "user_id", userID)
	return true
}

// gameUpdated re-scans the queue when a game may have become joinable.
func (m *Matchmaker) gameUpdated(g *Game) {
	m.drainInto(g)
}

// drainInto moves every queued player whose rules match g into the game,
// stopping once the game stops being joinable. Dead sessions are dropped
// from the queue on the way.
func (m *Matchmaker) drainInto(g *Game) {
	for {
		m.mu.Lock()
		idx := -1
		for i, e := range m.queue {
			if e.player.Session() == nil {
				m.queue = append(m.queue[:i], m.queue[i+1:]...)
				idx = -2
				break
			}
			if g.Joinable(e.rules) == Joinable {
				idx = i
				break
			}
		}
		if idx == -2 {
			m.mu.Unlock()
			continue
		}
		if idx == -1 {
			m.mu.Unlock()
			return
		}
		e := m.queue[idx]
		m.queue = append(m.queue[:idx], m.queue[idx+1:]...)
		m.mu.Unlock()

		if err := g.AddPlayer(e.player, m.joinContext(ResultJoinedExisting)); err != nil {
			// Game filled up between the check and the add; re-queue.
			m.mu.Lock()
			m.queue = append([]*queueEntry{e}, m.queue...)
			m.mu.Unlock()
			return
		}
		m.log.Info("queue drained into game",
			"user_id", e.player.User.ID, "game_id", g.ID,
			"waited", time.Since(e.queuedAt))
	}
}

// QueueDepth returns the number of waiting players.
func (m *Matchmaker) QueueDepth() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.queue)
}

func (m *Matchmaker) joinContext(result MatchmakingResult) SetupContext {
	return SetupContext{
		Matchmaking: true,
		Result:      result,
		FitScore:    m.fitScore,
		MaxFitScore: MaxFitScore,
		StartedAt:   time.Now(),
	}
}
