package blaze

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/korrin/meago/internal/model"
)

// Session timing defaults. Overridden by config values when available.
const (
	DefaultKeepAliveTimeout = 40 * time.Second
	DefaultWriteTimeout     = 10 * time.Second
	DefaultSendQueueSize    = 64
)

// SessionOptions tunes one session's queue and deadlines.
type SessionOptions struct {
	KeepAliveTimeout time.Duration
	WriteTimeout     time.Duration
	SendQueueSize    int
}

func (o SessionOptions) withDefaults() SessionOptions {
	if o.KeepAliveTimeout <= 0 {
		o.KeepAliveTimeout = DefaultKeepAliveTimeout
	}
	if o.WriteTimeout <= 0 {
		o.WriteTimeout = DefaultWriteTimeout
	}
	if o.SendQueueSize <= 0 {
		o.SendQueueSize = DefaultSendQueueSize
	}
	return o
}

// Session drives one connected client for the lifetime of its connection.
// The reader goroutine handles one request at a time; a sibling writer
// goroutine drains the in-order send queue. Notifications pushed while a
// handler is in flight are held back until its response is queued, because
// the retail client refuses responses that arrive out of order.
type Session struct {
	ID     uuid.UUID
	conn   net.Conn
	router *Router
	opts   SessionOptions
	log    *slog.Logger

	sendCh    chan *Frame
	closeCh   chan struct{}
	closeOnce sync.Once
	closed    atomic.Bool

	mu          sync.Mutex
	user        *model.User
	authHandle  *AuthHandle
	netData     NetworkData
	gameID      uint32
	inGame      bool
	leaveGame   func(userID uint32)
	subscribers map[uint32]*Session
	handling    bool
	pending     []*Frame
}

// NewSession wraps an accepted connection. Call Run to start serving it.
func NewSession(conn net.Conn, router *Router, log *slog.Logger, opts SessionOptions) *Session {
	id := uuid.New()
	return &Session{
		ID:          id,
		conn:        conn,
		router:      router,
		opts:        opts.withDefaults(),
		log:         log.With("session", id.String()),
		sendCh:      make(chan *Frame, opts.withDefaults().SendQueueSize),
		closeCh:     make(chan struct{}),
		subscribers: make(map[uint32]*Session),
	}
}

// Run serves the connection until either half closes, the keep-alive
// deadline fires, or ctx is cancelled. It blocks; the caller usually runs
// it in its own goroutine.
func (s *Session) Run(ctx context.Context) {
	defer s.teardown()

	go s.writeLoop()
	go func() {
		select {
		case <-ctx.Done():
			s.Close()
		case <-s.closeCh:
		}
	}()

	s.readLoop(ctx)
}

func (s *Session) readLoop(ctx context.Context) {
	defer s.Close()

	for {
		if s.closed.Load() {
			return
		}
		// Each received frame pushes the keep-alive deadline forward.
		_ = s.conn.SetReadDeadline(time.Now().Add(s.opts.KeepAliveTimeout))
		frame, err := ReadFrame(s.conn)
		if err != nil {
			if !s.closed.Load() {
				var netErr net.Error
				if errors.As(err, &netErr) && netErr.Timeout() {
					s.log.Info("keep-alive deadline exceeded")
				} else {
					s.log.Debug("read error", "err", err)
				}
			}
			return
		}

		if frame.Flags&FlagKeepAlive != 0 {
			// Liveness frames bypass response ordering entirely.
			s.Push(KeepAliveFrame())
			continue
		}

		s.handleFrame(ctx, frame)
	}
}

// handleFrame drives one request through the router. The handling flag is
// the write-order ticket: it is held from "request received" until the
// response is queued, and any frame pushed meanwhile waits behind it.
func (s *Session) handleFrame(ctx context.Context, frame *Frame) {
	s.mu.Lock()
	s.handling = true
	s.mu.Unlock()

	resp, err := s.router.Handle(ctx, s, frame)
	if err != nil {
		resp = s.errorResponse(frame, err)
	}
	if resp != nil {
		s.enqueue(resp)
	}

	s.mu.Lock()
	held := s.pending
	s.pending = nil
	s.handling = false
	s.mu.Unlock()
	for _, f := range held {
		s.enqueue(f)
	}
}

func (s *Session) errorResponse(frame *Frame, err error) *Frame {
	var missing *MissingHandlerError
	if errors.As(err, &missing) {
		if frame.Flags&FlagNotify != 0 {
			s.log.Debug("ignoring unroutable notification",
				"component", frame.Component, "command", frame.Command)
			return nil
		}
		s.log.Warn("unknown command",
			"component", frame.Component, "command", frame.Command)
		return frame.ErrorResponse(ErrCommandNotFound)
	}

	var decoding *DecodingError
	if errors.As(err, &decoding) {
		s.log.Error("request decode failed",
			"component", frame.Component, "command", frame.Command, "err", decoding.Err)
		return frame.Response(nil)
	}

	code, ok := ErrorCodeFor(err)
	if !ok {
		s.log.Error("handler failed", "component", frame.Component,
			"command", frame.Command, "err", err)
		return frame.Response(nil)
	}
	s.log.Error("handler failed", "component", frame.Component,
		"command", frame.Command, "code", code, "err", err)
	return frame.ErrorResponse(code)
}

// Push queues an outbound frame. Frames pushed while a handler is running
// on this session are delivered after that handler's response.
func (s *Session) Push(f *Frame) {
	if s.closed.Load() {
		return
	}
	s.mu.Lock()
	if s.handling {
		s.pending = append(s.pending, f)
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()
	s.enqueue(f)
}

func (s *Session) enqueue(f *Frame) {
	select {
	case s.sendCh <- f:
	case <-s.closeCh:
	}
}

func (s *Session) writeLoop() {
	defer s.Close()

	for {
		select {
		case f := <-s.sendCh:
			_ = s.conn.SetWriteDeadline(time.Now().Add(s.opts.WriteTimeout))
			if err := WriteFrame(s.conn, f); err != nil {
				if !s.closed.Load() {
					s.log.Debug("write error", "err", err)
				}
				return
			}
		case <-s.closeCh:
			return
		}
	}
}

// Close shuts the session down. Safe to call from any goroutine, repeatedly.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.closed.Store(true)
		close(s.closeCh)
		_ = s.conn.Close()
	})
}

// IsClosed reports whether the session is shut down or shutting down.
func (s *Session) IsClosed() bool {
	return s.closed.Load()
}

// teardown runs once the read loop exits: the authenticated-user entry
// leaves the registry and the current game learns the player is gone.
func (s *Session) teardown() {
	s.Close()

	s.mu.Lock()
	handle := s.authHandle
	user := s.user
	leave := s.leaveGame
	inGame := s.inGame
	s.authHandle = nil
	s.user = nil
	s.leaveGame = nil
	s.inGame = false
	s.mu.Unlock()

	if handle != nil {
		handle.Remove()
	}
	if inGame && leave != nil && user != nil {
		leave(user.ID)
	}
	s.log.Debug("session closed")
}

// SetUser records the authenticated user and its registry handle, replacing
// (and releasing) any previous association.
func (s *Session) SetUser(user *model.User, handle *AuthHandle) {
	s.mu.Lock()
	old := s.authHandle
	s.user = user
	s.authHandle = handle
	s.mu.Unlock()
	if old != nil {
		old.Remove()
	}
}

// ClearUser drops the authenticated user, removing the registry entry.
func (s *Session) ClearUser() {
	s.SetUser(nil, nil)
}

// User returns the authenticated user, or nil.
func (s *Session) User() *model.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user
}

// UserID returns the authenticated user id.
func (s *Session) UserID() (uint32, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return 0, false
	}
	return s.user.ID, true
}

// NetworkData returns a copy of the session's network data.
func (s *Session) NetworkData() NetworkData {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.netData
}

// SetAddr stores the reported address pair.
func (s *Session) SetAddr(addr AddrPair) {
	s.mu.Lock()
	s.netData.AddrSet = true
	s.netData.Addr = addr
	s.mu.Unlock()
}

// SetQos stores the measured connection quality.
func (s *Session) SetQos(qos QosData) {
	s.mu.Lock()
	s.netData.Qos = qos
	s.mu.Unlock()
}

// SetHardwareFlags stores the client's hardware flag bits.
func (s *Session) SetHardwareFlags(flags uint16) {
	s.mu.Lock()
	s.netData.HardwareFlags = flags
	s.mu.Unlock()
}

// SetGame binds the session to a game. leave is invoked with the user id
// when the session dies while still in the game.
func (s *Session) SetGame(id uint32, leave func(userID uint32)) {
	s.mu.Lock()
	s.gameID = id
	s.inGame = true
	s.leaveGame = leave
	s.mu.Unlock()
}

// ClearGame detaches the session from its game, if any.
func (s *Session) ClearGame() {
	s.mu.Lock()
	s.gameID = 0
	s.inGame = false
	s.leaveGame = nil
	s.mu.Unlock()
}

// GameID returns the active game id, if the session is in one.
func (s *Session) GameID() (uint32, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gameID, s.inGame
}

// Subscribe registers target to receive this session's user updates.
func (s *Session) Subscribe(userID uint32, target *Session) {
	s.mu.Lock()
	s.subscribers[userID] = target
	s.mu.Unlock()
}

// Unsubscribe removes a subscriber by user id.
func (s *Session) Unsubscribe(userID uint32) {
	s.mu.Lock()
	delete(s.subscribers, userID)
	s.mu.Unlock()
}

// PublishUserUpdate fans a frame out to every live subscriber, dropping
// entries whose session has gone away.
func (s *Session) PublishUserUpdate(f *Frame) {
	s.mu.Lock()
	targets := make([]*Session, 0, len(s.subscribers))
	for id, sub := range s.subscribers {
		if sub.IsClosed() {
			delete(s.subscribers, id)
			continue
		}
		targets = append(targets, sub)
	}
	s.mu.Unlock()

	for _, sub := range targets {
		sub.Push(f)
	}
}
