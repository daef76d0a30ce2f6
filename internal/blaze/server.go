package blaze

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"
)

// Server accepts client connections and runs a Session per connection.
type Server struct {
	addr   string
	router *Router
	opts   SessionOptions
	log    *slog.Logger

	mu       sync.Mutex
	listener net.Listener
}

// NewServer builds a server listening on addr once Run is called.
func NewServer(addr string, router *Router, opts SessionOptions, log *slog.Logger) *Server {
	return &Server{addr: addr, router: router, opts: opts, log: log}
}

// Run listens and serves until ctx is cancelled. Each accepted connection
// gets its own Session goroutine; Run returns once the listener closes.
func (s *Server) Run(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.addr, err)
	}
	s.mu.Lock()
	s.listener = listener
	s.mu.Unlock()
	s.log.Info("blaze server listening", "addr", s.addr)

	go func() {
		<-ctx.Done()
		_ = listener.Close()
	}()

	var wg sync.WaitGroup
	for {
		conn, err := listener.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				break
			}
			s.log.Warn("accept failed", "err", err)
			continue
		}

		session := NewSession(conn, s.router, s.log, s.opts)
		s.log.Debug("client connected", "remote", conn.RemoteAddr().String())
		wg.Add(1)
		go func() {
			defer wg.Done()
			session.Run(ctx)
		}()
	}

	wg.Wait()
	return nil
}

// Addr returns the bound listener address, once Run has started.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}
