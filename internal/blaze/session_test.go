package blaze

import (
	"context"
	"log/slog"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/korrin/meago/internal/blaze/tdf"
)

func startTestSession(t *testing.T, router *Router) (net.Conn, *Session) {
	t.Helper()
	clientConn, serverConn := net.Pipe()
	session := NewSession(serverConn, router, slog.Default(), SessionOptions{
		KeepAliveTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go session.Run(ctx)
	t.Cleanup(func() { _ = clientConn.Close() })
	return clientConn, session
}

func mustRead(t *testing.T, conn net.Conn) *Frame {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	f, err := ReadFrame(conn)
	require.NoError(t, err)
	return f
}

func TestSession_ResponseOrderMatchesRequestOrder(t *testing.T) {
	router := NewRouter()
	router.Register(9, 2, HandleNoReq(func(_ context.Context, _ *Session) (Empty, error) {
		return Empty{}, nil
	}))

	conn, _ := startTestSession(t, router)

	for seq := uint32(1); seq <= 5; seq++ {
		require.NoError(t, WriteFrame(conn, &Frame{Component: 9, Command: 2, Seq: seq}))
	}
	for seq := uint32(1); seq <= 5; seq++ {
		resp := mustRead(t, conn)
		assert.Equal(t, seq, resp.Seq)
		assert.NotZero(t, resp.Flags&FlagResponse)
	}
}

func TestSession_HandlerNotificationsFollowResponse(t *testing.T) {
	router := NewRouter()
	router.Register(4, 1, func(_ context.Context, s *Session, req *Frame) (*Frame, error) {
		// The notification is pushed before the handler returns; it must
		// still arrive after the response.
		s.Push(NotifyFrame(ComponentGameManager, GameNotifyPlayerJoining, nil))
		return req.Response(nil), nil
	})

	conn, _ := startTestSession(t, router)
	require.NoError(t, WriteFrame(conn, &Frame{Component: 4, Command: 1, Seq: 7}))

	first := mustRead(t, conn)
	assert.NotZero(t, first.Flags&FlagResponse, "response must precede the notification")
	assert.Equal(t, uint32(7), first.Seq)

	second := mustRead(t, conn)
	assert.NotZero(t, second.Flags&FlagNotify)
	assert.Equal(t, GameNotifyPlayerJoining, second.Command)
}

func TestSession_UnknownCommandAnswersCommandNotFound(t *testing.T) {
	conn, _ := startTestSession(t, NewRouter())
	require.NoError(t, WriteFrame(conn, &Frame{Component: 1, Command: 0x99, Seq: 3}))

	resp := mustRead(t, conn)
	assert.NotZero(t, resp.Flags&FlagResponse)
	assert.Equal(t, ErrCommandNotFound, resp.ErrorCode())
	assert.Empty(t, resp.Body)
}

func TestSession_DecodeFailureAnswersEmptyResponse(t *testing.T) {
	router := NewRouter()
	router.Register(9, 2, Handle(func(_ context.Context, _ *Session, req *pingReq) (pingResp, error) {
		return pingResp{}, nil
	}))

	conn, _ := startTestSession(t, router)
	// Empty body: the VAL tag the request needs is missing.
	require.NoError(t, WriteFrame(conn, &Frame{Component: 9, Command: 2, Seq: 1}))

	resp := mustRead(t, conn)
	assert.NotZero(t, resp.Flags&FlagResponse)
	assert.Empty(t, resp.Body)
	assert.Zero(t, resp.ErrorCode())
}

func TestSession_KeepAliveBypassesHandling(t *testing.T) {
	conn, _ := startTestSession(t, NewRouter())
	require.NoError(t, WriteFrame(conn, KeepAliveFrame()))

	resp := mustRead(t, conn)
	assert.NotZero(t, resp.Flags&FlagKeepAlive)
}

func TestSession_PublishSkipsDeadSubscribers(t *testing.T) {
	router := NewRouter()
	router.Register(9, 2, HandleNoReq(func(_ context.Context, _ *Session) (Empty, error) {
		return Empty{}, nil
	}))

	publisherConn, publisher := startTestSession(t, router)
	subscriberConn, subscriber := startTestSession(t, router)
	deadConn, dead := startTestSession(t, router)

	publisher.Subscribe(1, subscriber)
	publisher.Subscribe(2, dead)
	dead.Close()
	_ = deadConn.Close()

	w := tdf.NewWriter(16)
	w.TagVarInt("USID", 9)
	publisher.PublishUserUpdate(NotifyFrame(ComponentUserSessions,
		UserSessionsNotifyUserUpdated, w.Bytes()))

	got := mustRead(t, subscriberConn)
	assert.Equal(t, UserSessionsNotifyUserUpdated, got.Command)

	publisher.mu.Lock()
	_, stillThere := publisher.subscribers[2]
	publisher.mu.Unlock()
	assert.False(t, stillThere, "dead subscriber should be dropped")
	_ = publisherConn.Close()
}
