package handlers

import (
	"bytes"
	"context"
	"log/slog"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/korrin/meago/internal/blaze"
	"github.com/korrin/meago/internal/blaze/tdf"
	"github.com/korrin/meago/internal/game"
	"github.com/korrin/meago/internal/model"
	"github.com/korrin/meago/internal/token"
)

// testStack wires the router with everything except the database; only
// handlers that never touch a repository run against it.
func testStack(t *testing.T) (Deps, *blaze.Router) {
	t.Helper()
	log := slog.Default()
	tokens, err := token.NewService(bytes.Repeat([]byte{0x42}, 32))
	require.NoError(t, err)

	games := game.NewRegistry(log)
	deps := Deps{
		Sessions:   blaze.NewSessionRegistry(),
		Tokens:     tokens,
		Games:      games,
		Matchmaker: game.NewMatchmaker(games, 100, log),
		Redirect:   RedirectTarget{Host: "gosredirector.local", IP: 0x7F000001, Port: 42127},
		Log:        log,
	}
	router := blaze.NewRouter()
	Register(router, deps)
	return deps, router
}

func dialSession(t *testing.T, router *blaze.Router) (*blaze.Session, net.Conn) {
	t.Helper()
	clientConn, serverConn := net.Pipe()
	session := blaze.NewSession(serverConn, router, slog.Default(), blaze.SessionOptions{
		KeepAliveTimeout: 5 * time.Second,
	})
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go session.Run(ctx)
	t.Cleanup(func() { _ = clientConn.Close() })
	return session, clientConn
}

func roundTrip(t *testing.T, conn net.Conn, req *blaze.Frame) *blaze.Frame {
	t.Helper()
	require.NoError(t, blaze.WriteFrame(conn, req))
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	resp, err := blaze.ReadFrame(conn)
	require.NoError(t, err)
	require.NotZero(t, resp.Flags&blaze.FlagResponse)
	require.Equal(t, req.Seq, resp.Seq)
	return resp
}

func TestPreAuthPayload(t *testing.T) {
	_, router := testStack(t)
	_, conn := dialSession(t, router)

	resp := roundTrip(t, conn, &blaze.Frame{
		Component: blaze.ComponentUtil,
		Command:   blaze.UtilCmdPreAuth,
		Seq:       1,
	})

	r := tdf.NewReader(resp.Body)
	asrc, err := r.TagString("ASRC")
	require.NoError(t, err)
	assert.Equal(t, "310335", asrc)
	clid, err := r.TagString("CLID")
	require.NoError(t, err)
	assert.Equal(t, "ME4-PC-SERVER-BLAZE", clid)
	plat, err := r.TagString("PLAT")
	require.NoError(t, err)
	assert.Equal(t, "pc", plat)

	require.NoError(t, r.UntilTag("QOSS", tdf.TypeGroup))
	require.NoError(t, r.EnterGroup())
	timeout, err := r.TagVarInt("TIME")
	require.NoError(t, err)
	assert.Equal(t, uint64(5_000_000), timeout)
}

func TestPingReturnsServerTime(t *testing.T) {
	_, router := testStack(t)
	_, conn := dialSession(t, router)

	before := uint64(time.Now().Unix())
	resp := roundTrip(t, conn, &blaze.Frame{
		Component: blaze.ComponentUtil,
		Command:   blaze.UtilCmdPing,
		Seq:       2,
	})

	r := tdf.NewReader(resp.Body)
	stim, err := r.TagVarInt("STIM")
	require.NoError(t, err)
	assert.GreaterOrEqual(t, stim, before)
}

func TestPostAuthRequiresUser(t *testing.T) {
	_, router := testStack(t)
	_, conn := dialSession(t, router)

	resp := roundTrip(t, conn, &blaze.Frame{
		Component: blaze.ComponentUtil,
		Command:   blaze.UtilCmdPostAuth,
		Seq:       3,
	})

	assert.Equal(t, blaze.ErrAuthenticationRequired, resp.ErrorCode())
	assert.Empty(t, resp.Body)
}

func TestUserSettingsSaveLoad(t *testing.T) {
	_, router := testStack(t)
	session, conn := dialSession(t, router)
	session.SetUser(&model.User{ID: 9, Username: "saver"}, nil)

	w := tdf.NewWriter(64)
	w.TagString("DATA", "opt.subtitles=1")
	w.TagString("KEY", "cust")
	save := roundTrip(t, conn, &blaze.Frame{
		Component: blaze.ComponentUtil,
		Command:   blaze.UtilCmdUserSettingsSave,
		Seq:       4,
		Body:      w.Bytes(),
	})
	assert.Zero(t, save.ErrorCode())

	load := roundTrip(t, conn, &blaze.Frame{
		Component: blaze.ComponentUtil,
		Command:   blaze.UtilCmdUserSettingsLoad,
		Seq:       5,
	})
	keys, values, err := tdf.NewReader(load.Body).TagStringMap("SMAP")
	require.NoError(t, err)
	assert.Equal(t, []string{"cust"}, keys)
	assert.Equal(t, []string{"opt.subtitles=1"}, values)
}

func TestSilentLoginRejectsGarbageToken(t *testing.T) {
	_, router := testStack(t)
	_, conn := dialSession(t, router)

	w := tdf.NewWriter(64)
	w.TagString("AUTH", "not-a-token")
	resp := roundTrip(t, conn, &blaze.Frame{
		Component: blaze.ComponentAuthentication,
		Command:   blaze.AuthCmdSilentLogin,
		Seq:       6,
		Body:      w.Bytes(),
	})
	assert.Equal(t, blaze.ErrAuthenticationRequired, resp.ErrorCode())
}

func TestLogoutClearsUser(t *testing.T) {
	deps, router := testStack(t)
	session, conn := dialSession(t, router)
	user := &model.User{ID: 11, Username: "leaver"}
	session.SetUser(user, deps.Sessions.Add(user.ID, session))
	require.NotNil(t, deps.Sessions.Lookup(user.ID))

	resp := roundTrip(t, conn, &blaze.Frame{
		Component: blaze.ComponentAuthentication,
		Command:   blaze.AuthCmdLogout,
		Seq:       7,
	})
	assert.Zero(t, resp.ErrorCode())
	assert.Nil(t, session.User())
	assert.Nil(t, deps.Sessions.Lookup(user.ID))
}

func TestRedirectorPointsAtConfiguredTarget(t *testing.T) {
	_, router := testStack(t)
	_, conn := dialSession(t, router)

	resp := roundTrip(t, conn, &blaze.Frame{
		Component: blaze.ComponentRedirector,
		Command:   blaze.RedirectorCmdGetServerInstance,
		Seq:       8,
	})

	r := tdf.NewReader(resp.Body)
	require.NoError(t, r.UntilTag("ADDR", tdf.TypeUnion))
	u, err := r.ReadUnionHeader()
	require.NoError(t, err)
	require.True(t, u.Set)
	require.NoError(t, r.EnterGroup())
	host, err := r.TagString("HOST")
	require.NoError(t, err)
	assert.Equal(t, "gosredirector.local", host)
	port, err := r.TagVarInt("PORT")
	require.NoError(t, err)
	assert.Equal(t, uint64(42127), port)
}

func TestUpdateNetworkInfoStoresAddrAndQos(t *testing.T) {
	_, router := testStack(t)
	session, conn := dialSession(t, router)

	var netData blaze.NetworkData
	netData.AddrSet = true
	netData.Addr = blaze.AddrPair{
		External: blaze.NetAddr{IP: 0x0A000001, Port: 3659},
		Internal: blaze.NetAddr{IP: 0xC0A80001, Port: 3659},
	}
	netData.Qos = blaze.QosData{DownBPS: 1000, UpBPS: 500, NATType: 4}

	w := tdf.NewWriter(128)
	netData.EncodeAddr(w, "ADDR")
	netData.EncodeQos(w, "NQOS")
	resp := roundTrip(t, conn, &blaze.Frame{
		Component: blaze.ComponentUserSessions,
		Command:   blaze.UserSessionsCmdUpdateNetworkInfo,
		Seq:       9,
		Body:      w.Bytes(),
	})
	assert.Zero(t, resp.ErrorCode())

	stored := session.NetworkData()
	assert.True(t, stored.AddrSet)
	assert.Equal(t, netData.Addr, stored.Addr)
	assert.Equal(t, netData.Qos, stored.Qos)
}

func TestUpdateHardwareFlags(t *testing.T) {
	_, router := testStack(t)
	session, conn := dialSession(t, router)

	w := tdf.NewWriter(16)
	w.TagVarInt("HWFG", 3)
	resp := roundTrip(t, conn, &blaze.Frame{
		Component: blaze.ComponentUserSessions,
		Command:   blaze.UserSessionsCmdUpdateHardwareFlags,
		Seq:       10,
		Body:      w.Bytes(),
	})
	assert.Zero(t, resp.ErrorCode())
	assert.Equal(t, uint16(3), session.NetworkData().HardwareFlags)
}

func TestCreateGameThenMatchmakingJoin(t *testing.T) {
	deps, router := testStack(t)

	hostSession, hostConn := dialSession(t, router)
	hostSession.SetUser(&model.User{ID: 1, Username: "host"}, nil)

	w := tdf.NewWriter(256)
	attrs := game.AttrMapFrom(
		[]string{"coopGameVisibility", "difficulty", "enemytype", "level", "missionSlot", "modifierCount", "modifiers"},
		[]string{"1", "1", "0", "7", "0", "0", ""},
	)
	attrs.Encode(w, "ATTR")
	w.TagVarInt("GSET", 0)
	resp := roundTrip(t, hostConn, &blaze.Frame{
		Component: blaze.ComponentGameManager,
		Command:   blaze.GameCmdCreateGame,
		Seq:       11,
		Body:      w.Bytes(),
	})
	gameID, err := tdf.NewReader(resp.Body).TagVarInt("GID")
	require.NoError(t, err)
	require.NotZero(t, gameID)
	require.Equal(t, 1, deps.Games.Count())

	// The host receives its own setup + post-join notifications.
	for i := 0; i < 2; i++ {
		_ = hostConn.SetReadDeadline(time.Now().Add(2 * time.Second))
		f, err := blaze.ReadFrame(hostConn)
		require.NoError(t, err)
		require.NotZero(t, f.Flags&blaze.FlagNotify)
	}

	joinerSession, joinerConn := dialSession(t, router)
	joinerSession.SetUser(&model.User{ID: 2, Username: "joiner"}, nil)

	w = tdf.NewWriter(256)
	game.AttrMapFrom(
		[]string{"GameSize", "coopGameVisibility", "difficulty", "enemytype", "enemytypeMFT", "level", "levelMFT", "missionSlot", "modifierCount", "modifiers"},
		[]string{"matchAny", "1", "1", "0", "matchAny", "0", "matchAny", "0", "0", ""},
	).Encode(w, "ATTR")
	mmResp := roundTrip(t, joinerConn, &blaze.Frame{
		Component: blaze.ComponentGameManager,
		Command:   blaze.GameCmdStartMatchmaking,
		Seq:       12,
		Body:      w.Bytes(),
	})
	msid, err := tdf.NewReader(mmResp.Body).TagVarInt("MSID")
	require.NoError(t, err)
	assert.Equal(t, uint64(2), msid)

	// No second game; the joiner landed in the host's.
	assert.Equal(t, 1, deps.Games.Count())
	id, ok := joinerSession.GameID()
	require.True(t, ok)
	assert.Equal(t, uint32(gameID), id)
}

func TestJoinGameUnknownID(t *testing.T) {
	_, router := testStack(t)
	session, conn := dialSession(t, router)
	session.SetUser(&model.User{ID: 5, Username: "lost"}, nil)

	w := tdf.NewWriter(16)
	w.TagVarInt("GID", 404)
	resp := roundTrip(t, conn, &blaze.Frame{
		Component: blaze.ComponentGameManager,
		Command:   blaze.GameCmdJoinGame,
		Seq:       13,
		Body:      w.Bytes(),
	})
	assert.Equal(t, blaze.ErrSystem, resp.ErrorCode())
}

func TestUnknownCommandAnswersCommandNotFound(t *testing.T) {
	_, router := testStack(t)
	_, conn := dialSession(t, router)

	resp := roundTrip(t, conn, &blaze.Frame{
		Component: blaze.ComponentUtil,
		Command:   0x7F,
		Seq:       14,
	})
	assert.Equal(t, blaze.ErrCommandNotFound, resp.ErrorCode())
}
