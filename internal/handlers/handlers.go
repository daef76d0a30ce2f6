// Package handlers implements the Blaze components the retail client
// talks to: Util, Authentication, GameManager, UserSessions, Redirector,
// and Messaging.
package handlers

import (
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/korrin/meago/internal/blaze"
	"github.com/korrin/meago/internal/db"
	"github.com/korrin/meago/internal/game"
	"github.com/korrin/meago/internal/model"
	"github.com/korrin/meago/internal/token"
)

// Deps carries the collaborators the handlers are wired with.
type Deps struct {
	Pool       *pgxpool.Pool
	Users      *db.UserRepository
	Sessions   *blaze.SessionRegistry
	Tokens     *token.Service
	Games      *game.Registry
	Matchmaker *game.Matchmaker
	Redirect   RedirectTarget
	Log        *slog.Logger
}

// RedirectTarget is the game server endpoint the redirector hands out.
type RedirectTarget struct {
	Host string
	IP   uint32
	Port uint16
}

// Register installs every component handler on the router.
func Register(r *blaze.Router, deps Deps) {
	newUtilHandler(deps).register(r)
	newAuthHandler(deps).register(r)
	newGameHandler(deps).register(r)
	newUserSessionsHandler(deps).register(r)
	newRedirectorHandler(deps).register(r)
	newMessagingHandler(deps).register(r)
}

// requireUser returns the session's authenticated user or the
// authentication-required route error.
func requireUser(s *blaze.Session) (*model.User, error) {
	u := s.User()
	if u == nil {
		return nil, blaze.Errorf(blaze.ErrAuthenticationRequired, "not authenticated")
	}
	return u, nil
}
