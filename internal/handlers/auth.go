package handlers

import (
	"context"
	"errors"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/korrin/meago/internal/blaze"
	"github.com/korrin/meago/internal/blaze/tdf"
	"github.com/korrin/meago/internal/db"
	"github.com/korrin/meago/internal/model"
	"github.com/korrin/meago/internal/token"
)

type authHandler struct {
	pool     *pgxpool.Pool
	users    *db.UserRepository
	sessions *blaze.SessionRegistry
	tokens   *token.Service
	log      *slog.Logger
}

func newAuthHandler(deps Deps) *authHandler {
	return &authHandler{
		pool:     deps.Pool,
		users:    deps.Users,
		sessions: deps.Sessions,
		tokens:   deps.Tokens,
		log:      deps.Log.With("component", "authentication"),
	}
}

func (h *authHandler) register(r *blaze.Router) {
	r.Register(blaze.ComponentAuthentication, blaze.AuthCmdLogin, blaze.Handle(h.login))
	r.Register(blaze.ComponentAuthentication, blaze.AuthCmdSilentLogin, blaze.Handle(h.silentLogin))
	r.Register(blaze.ComponentAuthentication, blaze.AuthCmdLogout, blaze.HandleNoReq(h.logout))
	r.Register(blaze.ComponentAuthentication, blaze.AuthCmdListEntitlements, blaze.HandleNoReq(h.listEntitlements))
}

type loginRequest struct {
	mail     string
	password string
}

func (r *loginRequest) Decode(rd *tdf.Reader) error {
	mail, err := rd.TagString("MAIL")
	if err != nil {
		return err
	}
	pass, err := rd.TagString("PASS")
	if err != nil {
		return err
	}
	r.mail = mail
	r.password = pass
	return nil
}

// loginResponse is the session descriptor both login paths answer with.
type loginResponse struct {
	token string
	user  *model.User
}

func (r loginResponse) Encode(w *tdf.Writer) {
	w.TagVarInt("NTOS", 0)
	w.TagString("PCTK", r.token)
	w.TagGroup("SESS")
	w.TagVarInt("BUID", uint64(r.user.ID))
	w.TagVarInt("FRST", 0)
	w.TagString("KEY", r.token)
	w.TagVarInt("LLOG", 0)
	w.TagString("MAIL", r.user.Username)
	w.TagGroup("PDTL")
	w.TagString("DSNM", r.user.Username)
	w.TagVarInt("LAST", 0)
	w.TagVarInt("PID", uint64(r.user.ID))
	w.TagVarInt("STAS", 0)
	w.TagVarInt("XREF", 0)
	w.TagVarInt("XTYP", 0)
	w.EndGroup()
	w.TagVarInt("UID", uint64(r.user.ID))
	w.EndGroup()
	w.TagVarInt("SPAM", 0)
	w.TagVarInt("UNDR", 0)
}

// login authenticates by credentials. Unknown accounts are created on the
// fly, matching the private-server expectation that any client can connect.
func (h *authHandler) login(ctx context.Context, s *blaze.Session, req *loginRequest) (loginResponse, error) {
	user, err := h.users.GetByUsername(ctx, h.pool, req.mail)
	if err != nil {
		return loginResponse{}, blaze.Errorf(db.ErrorCode(err), "loading account: %v", err)
	}
	if user == nil {
		hash, err := db.HashPassword(req.password)
		if err != nil {
			return loginResponse{}, blaze.Errorf(blaze.ErrSystem, "hashing password: %v", err)
		}
		user, err = h.users.Create(ctx, req.mail, hash)
		if err != nil {
			return loginResponse{}, blaze.Errorf(db.ErrorCode(err), "creating account: %v", err)
		}
	} else if !db.CheckPassword(user.Password, req.password) {
		h.log.Warn("login rejected", "username", req.mail)
		return loginResponse{}, blaze.Errorf(blaze.ErrAuthenticationRequired, "bad credentials for %q", req.mail)
	}

	return h.establish(s, user)
}

type silentLoginRequest struct {
	token string
}

func (r *silentLoginRequest) Decode(rd *tdf.Reader) error {
	t, err := rd.TagString("AUTH")
	if err != nil {
		return err
	}
	r.token = t
	return nil
}

// silentLogin resumes an account from a previously minted session token.
func (h *authHandler) silentLogin(ctx context.Context, s *blaze.Session, req *silentLoginRequest) (loginResponse, error) {
	userID, err := h.tokens.Verify(req.token)
	if err != nil {
		if errors.Is(err, token.ErrExpired) {
			return loginResponse{}, blaze.Errorf(blaze.ErrAuthenticationRequired, "session token expired")
		}
		return loginResponse{}, blaze.Errorf(blaze.ErrAuthenticationRequired, "session token rejected")
	}
	user, err := h.users.GetByID(ctx, h.pool, userID)
	if err != nil {
		return loginResponse{}, blaze.Errorf(db.ErrorCode(err), "loading account %d: %v", userID, err)
	}
	if user == nil {
		return loginResponse{}, blaze.Errorf(blaze.ErrAuthenticationRequired, "account %d gone", userID)
	}
	return h.establish(s, user)
}

func (h *authHandler) establish(s *blaze.Session, user *model.User) (loginResponse, error) {
	handle := h.sessions.Add(user.ID, s)
	s.SetUser(user, handle)
	h.log.Info("authenticated", "user_id", user.ID, "username", user.Username)
	return loginResponse{token: h.tokens.Mint(user.ID), user: user}, nil
}

func (h *authHandler) logout(ctx context.Context, s *blaze.Session) (blaze.Empty, error) {
	if id, ok := s.UserID(); ok {
		h.log.Info("logged out", "user_id", id)
	}
	s.ClearUser()
	return blaze.Empty{}, nil
}

type entitlementsResponse struct{}

func (entitlementsResponse) Encode(w *tdf.Writer) {
	w.TagList("NLST", tdf.TypeGroup, 0)
}

func (h *authHandler) listEntitlements(ctx context.Context, s *blaze.Session) (entitlementsResponse, error) {
	if _, err := requireUser(s); err != nil {
		return entitlementsResponse{}, err
	}
	return entitlementsResponse{}, nil
}
