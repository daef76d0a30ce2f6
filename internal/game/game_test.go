package game

import (
	"context"
	"log/slog"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/korrin/meago/internal/blaze"
	"github.com/korrin/meago/internal/blaze/tdf"
	"github.com/korrin/meago/internal/model"
)

func newTestPlayer(t *testing.T, id uint32, name string) (*Player, net.Conn) {
	t.Helper()
	clientConn, serverConn := net.Pipe()
	session := blaze.NewSession(serverConn, blaze.NewRouter(), slog.Default(), blaze.SessionOptions{
		KeepAliveTimeout: 5 * time.Second,
	})
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go session.Run(ctx)
	t.Cleanup(func() { _ = clientConn.Close() })

	return NewPlayer(session, &model.User{ID: id, Username: name}), clientConn
}

func readNotify(t *testing.T, conn net.Conn) *blaze.Frame {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	f, err := blaze.ReadFrame(conn)
	require.NoError(t, err)
	require.NotZero(t, f.Flags&blaze.FlagNotify)
	return f
}

func existingGameAttrs() *AttrMap {
	return AttrMapFrom(
		[]string{"coopGameVisibility", "difficulty", "enemytype", "level", "missionSlot", "modifierCount", "modifiers"},
		[]string{"1", "1", "0", "7", "0", "0", ""},
	)
}

func quickMatchAttrs() *AttrMap {
	return AttrMapFrom(
		[]string{
			"GameSize", "coopGameVisibility", "difficulty", "difficultyRND",
			"enemytype", "enemytypeMFT", "enemytypeRND",
			"level", "levelMFT", "levelRND",
			"missionSlot", "modifierCount", "modifiers",
		},
		[]string{
			"matchAny", "1", "1", "",
			"0", "matchAny", "2",
			"0", "matchAny", "13",
			"0", "0", "",
		},
	)
}

func TestAttrMap_MergeKeepsOrderAndOverwrites(t *testing.T) {
	a := AttrMapFrom([]string{"difficulty", "level"}, []string{"1", "7"})
	b := AttrMapFrom([]string{"level", "enemytype"}, []string{"9", "0"})

	a.Merge(b)

	assert.Equal(t, []string{"difficulty", "level", "enemytype"}, a.Keys())
	v, _ := a.Get("level")
	assert.Equal(t, "9", v)
	v, _ = a.Get("enemytype")
	assert.Equal(t, "0", v)
}

func TestRuleSet_MatchAnyIgnoresField(t *testing.T) {
	rules := ParseRuleSet(quickMatchAttrs())

	// Game level "7" differs from the requested "0", but levelMFT is
	// matchAny so the rule is skipped.
	assert.True(t, rules.Match(existingGameAttrs(), 1))
}

func TestRuleSet_DifficultyMismatchFails(t *testing.T) {
	req := quickMatchAttrs()
	req.Set("difficulty", "9")
	rules := ParseRuleSet(req)

	assert.False(t, rules.Match(existingGameAttrs(), 1))
}

func TestRuleSet_PrivateLobbiesNeverMatch(t *testing.T) {
	rules := ParseRuleSet(quickMatchAttrs())
	private := existingGameAttrs()
	private.Set("coopGameVisibility", "0")

	assert.False(t, rules.Match(private, 1))
}

func TestRuleSet_GameSizeExact(t *testing.T) {
	req := quickMatchAttrs()
	req.Set("GameSize", "2")
	rules := ParseRuleSet(req)

	assert.False(t, rules.Match(existingGameAttrs(), 1))
	assert.True(t, rules.Match(existingGameAttrs(), 2))
}

func TestGame_JoinableStates(t *testing.T) {
	reg := NewRegistry(slog.Default())
	g := reg.NewGame(existingGameAttrs(), 0)
	require.Equal(t, Joinable, g.Joinable(nil))

	for i := uint32(1); i <= DefaultCapacity; i++ {
		p, _ := newTestPlayer(t, i, "player")
		require.NoError(t, g.AddPlayer(p, SetupContext{}))
	}
	assert.Equal(t, Full, g.Joinable(nil))

	req := quickMatchAttrs()
	req.Set("difficulty", "9")
	g2 := reg.NewGame(existingGameAttrs(), 0)
	assert.Equal(t, Mismatched, g2.Joinable(ParseRuleSet(req)))
}

func TestQuickMatch_JoinsExistingGame(t *testing.T) {
	reg := NewRegistry(slog.Default())
	mm := NewMatchmaker(reg, 100, slog.Default())

	host, hostConn := newTestPlayer(t, 1, "host")
	g, err := mm.CreateGame(host, existingGameAttrs(), 0)
	require.NoError(t, err)
	_ = readNotify(t, hostConn) // host's own game-setup
	_ = readNotify(t, hostConn) // post-join

	joiner, joinerConn := newTestPlayer(t, 2, "joiner")
	joined, err := mm.QuickMatch(joiner, quickMatchAttrs())
	require.NoError(t, err)
	require.NotNil(t, joined, "player must not be queued")
	assert.Equal(t, g.ID, joined.ID)
	assert.Equal(t, 1, reg.Count(), "no new game created")
	assert.Equal(t, 2, g.PlayerCount())

	// Host sees the joiner arrive.
	notify := readNotify(t, hostConn)
	assert.Equal(t, blaze.GameNotifyPlayerJoining, notify.Command)

	// Joiner's setup frame lists both ids as admins.
	setup := readNotify(t, joinerConn)
	require.Equal(t, blaze.GameNotifyGameSetup, setup.Command)
	r := tdf.NewReader(setup.Body)
	require.NoError(t, r.UntilTag("GAME", tdf.TypeGroup))
	require.NoError(t, r.EnterGroup())
	require.NoError(t, r.UntilTag("ADMN", tdf.TypeVarIntList))
	count, err := r.ReadVarInt()
	require.NoError(t, err)
	require.Equal(t, uint64(2), count)
	var admins []uint64
	for i := uint64(0); i < count; i++ {
		v, err := r.ReadVarInt()
		require.NoError(t, err)
		admins = append(admins, v)
	}
	assert.ElementsMatch(t, []uint64{1, 2}, admins)
}

func TestQuickMatch_MissQueuesThenLaterGameDrains(t *testing.T) {
	reg := NewRegistry(slog.Default())
	mm := NewMatchmaker(reg, 100, slog.Default())

	req := quickMatchAttrs()
	req.Set("difficulty", "9")
	waiter, waiterConn := newTestPlayer(t, 5, "waiter")

	joined, err := mm.QuickMatch(waiter, req)
	require.NoError(t, err)
	require.Nil(t, joined)
	assert.Equal(t, 1, mm.QueueDepth())

	hostAttrs := existingGameAttrs()
	hostAttrs.Set("difficulty", "9")
	host, _ := newTestPlayer(t, 6, "host")
	g, err := mm.CreateGame(host, hostAttrs, 0)
	require.NoError(t, err)

	assert.Equal(t, 0, mm.QueueDepth(), "queue drained into the new game")
	assert.Equal(t, 2, g.PlayerCount())

	setup := readNotify(t, waiterConn)
	assert.Equal(t, blaze.GameNotifyGameSetup, setup.Command)

	gameID, ok := waiter.Session().GameID()
	require.True(t, ok)
	assert.Equal(t, g.ID, gameID)
}

func TestMatchmaker_Cancel(t *testing.T) {
	reg := NewRegistry(slog.Default())
	mm := NewMatchmaker(reg, 100, slog.Default())

	req := quickMatchAttrs()
	req.Set("difficulty", "9")
	p, _ := newTestPlayer(t, 9, "p")
	_, err := mm.QuickMatch(p, req)
	require.NoError(t, err)
	require.Equal(t, 1, mm.QueueDepth())

	assert.True(t, mm.Cancel(9))
	assert.Equal(t, 0, mm.QueueDepth())
	assert.False(t, mm.Cancel(9), "second cancel is a no-op")
}

func TestGame_HostRemovalDestroysGame(t *testing.T) {
	reg := NewRegistry(slog.Default())
	g := reg.NewGame(existingGameAttrs(), 0)

	host, _ := newTestPlayer(t, 1, "host")
	other, otherConn := newTestPlayer(t, 2, "other")
	require.NoError(t, g.AddPlayer(host, SetupContext{}))
	require.NoError(t, g.AddPlayer(other, SetupContext{}))
	_ = readNotify(t, otherConn) // setup
	_ = readNotify(t, otherConn) // post-join

	reg.RemovePlayerFromGame(g.ID, 1, RemoveReasonPlayerLeft)

	assert.Nil(t, reg.Get(g.ID))
	removed := readNotify(t, otherConn)
	require.Equal(t, blaze.GameNotifyPlayerRemoved, removed.Command)
	r := tdf.NewReader(removed.Body)
	require.NoError(t, r.UntilTag("REAS", tdf.TypeVarInt))
	reason, err := r.ReadVarInt()
	require.NoError(t, err)
	assert.Equal(t, uint64(RemoveReasonGameDestroyed), reason)

	_, inGame := other.Session().GameID()
	assert.False(t, inGame)
}

func TestGame_NonHostRemovalKeepsGame(t *testing.T) {
	reg := NewRegistry(slog.Default())
	g := reg.NewGame(existingGameAttrs(), 0)

	host, hostConn := newTestPlayer(t, 1, "host")
	other, _ := newTestPlayer(t, 2, "other")
	require.NoError(t, g.AddPlayer(host, SetupContext{}))
	_ = readNotify(t, hostConn) // setup
	_ = readNotify(t, hostConn) // post-join
	require.NoError(t, g.AddPlayer(other, SetupContext{}))
	_ = readNotify(t, hostConn) // player-joined

	reg.RemovePlayerFromGame(g.ID, 2, RemoveReasonPlayerLeft)

	assert.NotNil(t, reg.Get(g.ID))
	assert.Equal(t, 1, g.PlayerCount())
	removed := readNotify(t, hostConn)
	assert.Equal(t, blaze.GameNotifyPlayerRemoved, removed.Command)
}

func TestGame_SetAttributesMergesAndBroadcasts(t *testing.T) {
	reg := NewRegistry(slog.Default())
	g := reg.NewGame(existingGameAttrs(), 0)

	host, hostConn := newTestPlayer(t, 1, "host")
	require.NoError(t, g.AddPlayer(host, SetupContext{}))
	_ = readNotify(t, hostConn) // setup
	_ = readNotify(t, hostConn) // post-join

	g.SetAttributes(AttrMapFrom([]string{"level", "extra"}, []string{"9", "x"}))

	attrs := g.Attributes()
	v, _ := attrs.Get("level")
	assert.Equal(t, "9", v)
	v, _ = attrs.Get("extra")
	assert.Equal(t, "x", v)

	notify := readNotify(t, hostConn)
	assert.Equal(t, blaze.GameNotifyGameAttribChange, notify.Command)
}

func TestGame_SetupFrameCarriesMatchmakingSummary(t *testing.T) {
	reg := NewRegistry(slog.Default())
	g := reg.NewGame(existingGameAttrs(), 0)

	p, conn := newTestPlayer(t, 3, "p")
	require.NoError(t, g.AddPlayer(p, SetupContext{
		Matchmaking: true,
		Result:      ResultJoinedExisting,
		FitScore:    100,
		MaxFitScore: MaxFitScore,
		StartedAt:   time.Now(),
	}))

	setup := readNotify(t, conn)
	require.Equal(t, blaze.GameNotifyGameSetup, setup.Command)
	r := tdf.NewReader(setup.Body)
	require.NoError(t, r.UntilTag("GAME", tdf.TypeGroup))
	require.NoError(t, r.EnterGroup())
	require.NoError(t, r.UntilTag("MMSC", tdf.TypeGroup))
	require.NoError(t, r.EnterGroup())
	fit, err := r.TagVarInt("FIT")
	require.NoError(t, err)
	assert.Equal(t, uint64(100), fit)
	require.NoError(t, r.UntilTag("RSLT", tdf.TypeVarInt))
	rslt, err := r.ReadVarInt()
	require.NoError(t, err)
	assert.Equal(t, uint64(ResultJoinedExisting), rslt)
}
