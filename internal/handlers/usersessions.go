package handlers

import (
	"context"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/korrin/meago/internal/blaze"
	"github.com/korrin/meago/internal/blaze/tdf"
	"github.com/korrin/meago/internal/db"
	"github.com/korrin/meago/internal/token"
)

type userSessionsHandler struct {
	pool     *pgxpool.Pool
	users    *db.UserRepository
	sessions *blaze.SessionRegistry
	tokens   *token.Service
	log      *slog.Logger
}

func newUserSessionsHandler(deps Deps) *userSessionsHandler {
	return &userSessionsHandler{
		pool:     deps.Pool,
		users:    deps.Users,
		sessions: deps.Sessions,
		tokens:   deps.Tokens,
		log:      deps.Log.With("component", "usersessions"),
	}
}

func (h *userSessionsHandler) register(r *blaze.Router) {
	r.Register(blaze.ComponentUserSessions, blaze.UserSessionsCmdResumeSession, blaze.Handle(h.resumeSession))
	r.Register(blaze.ComponentUserSessions, blaze.UserSessionsCmdUpdateNetworkInfo, blaze.Handle(h.updateNetworkInfo))
	r.Register(blaze.ComponentUserSessions, blaze.UserSessionsCmdUpdateHardwareFlags, blaze.Handle(h.updateHardwareFlags))
}

type resumeSessionRequest struct {
	key string
}

func (r *resumeSessionRequest) Decode(rd *tdf.Reader) error {
	key, err := rd.TagString("SKEY")
	if err != nil {
		return err
	}
	r.key = key
	return nil
}

// resumeSession re-binds an authenticated user to a fresh connection from a
// session token, without the full login exchange.
func (h *userSessionsHandler) resumeSession(ctx context.Context, s *blaze.Session, req *resumeSessionRequest) (blaze.Empty, error) {
	userID, err := h.tokens.Verify(req.key)
	if err != nil {
		return blaze.Empty{}, blaze.Errorf(blaze.ErrAuthenticationRequired, "session key rejected")
	}
	user, err := h.users.GetByID(ctx, h.pool, userID)
	if err != nil {
		return blaze.Empty{}, blaze.Errorf(db.ErrorCode(err), "loading account %d: %v", userID, err)
	}
	if user == nil {
		return blaze.Empty{}, blaze.Errorf(blaze.ErrAuthenticationRequired, "account %d gone", userID)
	}
	handle := h.sessions.Add(user.ID, s)
	s.SetUser(user, handle)
	h.log.Info("session resumed", "user_id", user.ID)
	return blaze.Empty{}, nil
}

type updateNetworkInfoRequest struct {
	net blaze.NetworkData
}

func (r *updateNetworkInfoRequest) Decode(rd *tdf.Reader) error {
	if err := r.net.DecodeAddr(rd, "ADDR"); err != nil {
		return err
	}
	return r.net.DecodeQos(rd, "NQOS")
}

func (h *userSessionsHandler) updateNetworkInfo(ctx context.Context, s *blaze.Session, req *updateNetworkInfoRequest) (blaze.Empty, error) {
	if req.net.AddrSet {
		s.SetAddr(req.net.Addr)
	}
	s.SetQos(req.net.Qos)
	return blaze.Empty{}, nil
}

type updateHardwareFlagsRequest struct {
	flags uint16
}

func (r *updateHardwareFlagsRequest) Decode(rd *tdf.Reader) error {
	flags, err := rd.TagVarInt("HWFG")
	if err != nil {
		return err
	}
	r.flags = uint16(flags)
	return nil
}

func (h *userSessionsHandler) updateHardwareFlags(ctx context.Context, s *blaze.Session, req *updateHardwareFlagsRequest) (blaze.Empty, error) {
	s.SetHardwareFlags(req.flags)
	return blaze.Empty{}, nil
}
