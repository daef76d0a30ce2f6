package handlers

import (
	"context"
	"log/slog"

	"github.com/korrin/meago/internal/blaze"
	"github.com/korrin/meago/internal/blaze/tdf"
	"github.com/korrin/meago/internal/game"
)

type gameHandler struct {
	games      *game.Registry
	matchmaker *game.Matchmaker
	log        *slog.Logger
}

func newGameHandler(deps Deps) *gameHandler {
	return &gameHandler{
		games:      deps.Games,
		matchmaker: deps.Matchmaker,
		log:        deps.Log.With("component", "gamemanager"),
	}
}

func (h *gameHandler) register(r *blaze.Router) {
	r.Register(blaze.ComponentGameManager, blaze.GameCmdCreateGame, blaze.Handle(h.createGame))
	r.Register(blaze.ComponentGameManager, blaze.GameCmdJoinGame, blaze.Handle(h.joinGame))
	r.Register(blaze.ComponentGameManager, blaze.GameCmdAdvanceGameState, blaze.Handle(h.advanceGameState))
	r.Register(blaze.ComponentGameManager, blaze.GameCmdSetGameSettings, blaze.Handle(h.setGameSettings))
	r.Register(blaze.ComponentGameManager, blaze.GameCmdSetGameAttributes, blaze.Handle(h.setGameAttributes))
	r.Register(blaze.ComponentGameManager, blaze.GameCmdSetPlayerAttributes, blaze.Handle(h.setPlayerAttributes))
	r.Register(blaze.ComponentGameManager, blaze.GameCmdRemovePlayer, blaze.Handle(h.removePlayer))
	r.Register(blaze.ComponentGameManager, blaze.GameCmdStartMatchmaking, blaze.Handle(h.startMatchmaking))
	r.Register(blaze.ComponentGameManager, blaze.GameCmdCancelMatchmaking, blaze.Handle(h.cancelMatchmaking))
	r.Register(blaze.ComponentGameManager, blaze.GameCmdReplayGame, blaze.Handle(h.replayGame))
	r.Register(blaze.ComponentGameManager, blaze.GameCmdUpdateMeshConnection, blaze.Handle(h.updateMeshConnection))
}

// lookupGame resolves a game id or fails with a system route error.
func (h *gameHandler) lookupGame(id uint32) (*game.Game, error) {
	g := h.games.Get(id)
	if g == nil {
		return nil, blaze.Errorf(blaze.ErrSystem, "game %d not found", id)
	}
	return g, nil
}

type createGameRequest struct {
	attrs   *game.AttrMap
	setting uint32
}

func (r *createGameRequest) Decode(rd *tdf.Reader) error {
	attrs, err := game.DecodeAttrMap(rd, "ATTR")
	if err != nil {
		return err
	}
	setting, err := rd.TagVarInt("GSET")
	if err != nil {
		return err
	}
	r.attrs = attrs
	r.setting = uint32(setting)
	return nil
}

type gameIDResponse struct {
	gameID uint32
}

func (r gameIDResponse) Encode(w *tdf.Writer) {
	w.TagVarInt("GID", uint64(r.gameID))
}

func (h *gameHandler) createGame(ctx context.Context, s *blaze.Session, req *createGameRequest) (gameIDResponse, error) {
	user, err := requireUser(s)
	if err != nil {
		return gameIDResponse{}, err
	}
	host := game.NewPlayer(s, user)
	g, err := h.matchmaker.CreateGame(host, req.attrs, req.setting)
	if err != nil {
		return gameIDResponse{}, blaze.Errorf(blaze.ErrSystem, "creating game: %v", err)
	}
	return gameIDResponse{gameID: g.ID}, nil
}

type joinGameRequest struct {
	gameID uint32
}

func (r *joinGameRequest) Decode(rd *tdf.Reader) error {
	id, err := rd.TagVarInt("GID")
	if err != nil {
		return err
	}
	r.gameID = uint32(id)
	return nil
}

// joinGame is the direct join-by-id path; no rule matching applies.
func (h *gameHandler) joinGame(ctx context.Context, s *blaze.Session, req *joinGameRequest) (gameIDResponse, error) {
	user, err := requireUser(s)
	if err != nil {
		return gameIDResponse{}, err
	}
	g, err := h.lookupGame(req.gameID)
	if err != nil {
		return gameIDResponse{}, err
	}
	switch g.Joinable(nil) {
	case game.Joinable:
	case game.Full:
		return gameIDResponse{}, blaze.Errorf(blaze.ErrSystem, "game %d is full", req.gameID)
	default:
		return gameIDResponse{}, blaze.Errorf(blaze.ErrSystem, "game %d not joinable", req.gameID)
	}
	if err := g.AddPlayer(game.NewPlayer(s, user), game.SetupContext{}); err != nil {
		return gameIDResponse{}, blaze.Errorf(blaze.ErrSystem, "joining game %d: %v", req.gameID, err)
	}
	return gameIDResponse{gameID: g.ID}, nil
}

type advanceGameStateRequest struct {
	gameID uint32
	state  uint8
}

func (r *advanceGameStateRequest) Decode(rd *tdf.Reader) error {
	id, err := rd.TagVarInt("GID")
	if err != nil {
		return err
	}
	state, err := rd.TagVarInt("GSTA")
	if err != nil {
		return err
	}
	r.gameID = uint32(id)
	r.state = uint8(state)
	return nil
}

func (h *gameHandler) advanceGameState(ctx context.Context, s *blaze.Session, req *advanceGameStateRequest) (blaze.Empty, error) {
	if _, err := requireUser(s); err != nil {
		return blaze.Empty{}, err
	}
	g, err := h.lookupGame(req.gameID)
	if err != nil {
		return blaze.Empty{}, err
	}
	g.SetState(req.state)
	h.games.NotifyUpdated(g)
	return blaze.Empty{}, nil
}

type setGameSettingsRequest struct {
	gameID  uint32
	setting uint32
}

func (r *setGameSettingsRequest) Decode(rd *tdf.Reader) error {
	setting, err := rd.TagVarInt("ATTR")
	if err != nil {
		return err
	}
	id, err := rd.TagVarInt("GID")
	if err != nil {
		return err
	}
	r.setting = uint32(setting)
	r.gameID = uint32(id)
	return nil
}

func (h *gameHandler) setGameSettings(ctx context.Context, s *blaze.Session, req *setGameSettingsRequest) (blaze.Empty, error) {
	if _, err := requireUser(s); err != nil {
		return blaze.Empty{}, err
	}
	g, err := h.lookupGame(req.gameID)
	if err != nil {
		return blaze.Empty{}, err
	}
	g.SetSetting(req.setting)
	return blaze.Empty{}, nil
}

type setGameAttributesRequest struct {
	attrs  *game.AttrMap
	gameID uint32
}

func (r *setGameAttributesRequest) Decode(rd *tdf.Reader) error {
	attrs, err := game.DecodeAttrMap(rd, "ATTR")
	if err != nil {
		return err
	}
	id, err := rd.TagVarInt("GID")
	if err != nil {
		return err
	}
	r.attrs = attrs
	r.gameID = uint32(id)
	return nil
}

func (h *gameHandler) setGameAttributes(ctx context.Context, s *blaze.Session, req *setGameAttributesRequest) (blaze.Empty, error) {
	if _, err := requireUser(s); err != nil {
		return blaze.Empty{}, err
	}
	g, err := h.lookupGame(req.gameID)
	if err != nil {
		return blaze.Empty{}, err
	}
	g.SetAttributes(req.attrs)
	// New attributes may make the game match queued players.
	h.games.NotifyUpdated(g)
	return blaze.Empty{}, nil
}

type setPlayerAttributesRequest struct {
	attrs    *game.AttrMap
	gameID   uint32
	playerID uint32
}

func (r *setPlayerAttributesRequest) Decode(rd *tdf.Reader) error {
	attrs, err := game.DecodeAttrMap(rd, "ATTR")
	if err != nil {
		return err
	}
	id, err := rd.TagVarInt("GID")
	if err != nil {
		return err
	}
	pid, err := rd.TagVarInt("PID")
	if err != nil {
		return err
	}
	r.attrs = attrs
	r.gameID = uint32(id)
	r.playerID = uint32(pid)
	return nil
}

func (h *gameHandler) setPlayerAttributes(ctx context.Context, s *blaze.Session, req *setPlayerAttributesRequest) (blaze.Empty, error) {
	if _, err := requireUser(s); err != nil {
		return blaze.Empty{}, err
	}
	g, err := h.lookupGame(req.gameID)
	if err != nil {
		return blaze.Empty{}, err
	}
	if !g.SetPlayerAttributes(req.playerID, req.attrs) {
		return blaze.Empty{}, blaze.Errorf(blaze.ErrSystem, "player %d not in game %d", req.playerID, req.gameID)
	}
	return blaze.Empty{}, nil
}

type removePlayerRequest struct {
	gameID   uint32
	playerID uint32
	reason   game.RemoveReason
}

func (r *removePlayerRequest) Decode(rd *tdf.Reader) error {
	id, err := rd.TagVarInt("GID")
	if err != nil {
		return err
	}
	pid, err := rd.TagVarInt("PID")
	if err != nil {
		return err
	}
	reason, err := rd.TagVarInt("REAS")
	if err != nil {
		return err
	}
	r.gameID = uint32(id)
	r.playerID = uint32(pid)
	r.reason = game.RemoveReason(reason)
	return nil
}

func (h *gameHandler) removePlayer(ctx context.Context, s *blaze.Session, req *removePlayerRequest) (blaze.Empty, error) {
	if _, err := requireUser(s); err != nil {
		return blaze.Empty{}, err
	}
	if !h.games.RemovePlayerFromGame(req.gameID, req.playerID, req.reason) {
		return blaze.Empty{}, blaze.Errorf(blaze.ErrSystem, "player %d not in game %d", req.playerID, req.gameID)
	}
	return blaze.Empty{}, nil
}

type startMatchmakingRequest struct {
	attrs *game.AttrMap
}

func (r *startMatchmakingRequest) Decode(rd *tdf.Reader) error {
	attrs, err := game.DecodeAttrMap(rd, "ATTR")
	if err != nil {
		return err
	}
	r.attrs = attrs
	return nil
}

type startMatchmakingResponse struct {
	sessionID uint32
}

func (r startMatchmakingResponse) Encode(w *tdf.Writer) {
	w.TagVarInt("MSID", uint64(r.sessionID))
}

// startMatchmaking runs a quick-match. A hit answers after the setup
// notification was queued; a miss leaves the player in the queue and the
// later drain delivers the setup frame.
func (h *gameHandler) startMatchmaking(ctx context.Context, s *blaze.Session, req *startMatchmakingRequest) (startMatchmakingResponse, error) {
	user, err := requireUser(s)
	if err != nil {
		return startMatchmakingResponse{}, err
	}
	p := game.NewPlayer(s, user)
	if _, err := h.matchmaker.QuickMatch(p, req.attrs); err != nil {
		return startMatchmakingResponse{}, blaze.Errorf(blaze.ErrSystem, "matchmaking: %v", err)
	}
	// The matchmaking session id namespace is per-user on retail traffic.
	return startMatchmakingResponse{sessionID: user.ID}, nil
}

type cancelMatchmakingRequest struct {
	sessionID uint32
}

func (r *cancelMatchmakingRequest) Decode(rd *tdf.Reader) error {
	id, err := rd.TagVarInt("MSID")
	if err != nil {
		return err
	}
	r.sessionID = uint32(id)
	return nil
}

func (h *gameHandler) cancelMatchmaking(ctx context.Context, s *blaze.Session, req *cancelMatchmakingRequest) (blaze.Empty, error) {
	user, err := requireUser(s)
	if err != nil {
		return blaze.Empty{}, err
	}
	h.matchmaker.Cancel(user.ID)
	return blaze.Empty{}, nil
}

type replayGameRequest struct {
	gameID uint32
}

func (r *replayGameRequest) Decode(rd *tdf.Reader) error {
	id, err := rd.TagVarInt("GID")
	if err != nil {
		return err
	}
	r.gameID = uint32(id)
	return nil
}

func (h *gameHandler) replayGame(ctx context.Context, s *blaze.Session, req *replayGameRequest) (blaze.Empty, error) {
	if _, err := requireUser(s); err != nil {
		return blaze.Empty{}, err
	}
	g, err := h.lookupGame(req.gameID)
	if err != nil {
		return blaze.Empty{}, err
	}
	g.SetState(game.GameStateInit)
	g.NotifyGameReplay()
	return blaze.Empty{}, nil
}

type updateMeshConnectionRequest struct {
	gameID uint32
}

func (r *updateMeshConnectionRequest) Decode(rd *tdf.Reader) error {
	id, err := rd.TagVarInt("GID")
	if err != nil {
		return err
	}
	r.gameID = uint32(id)
	return nil
}

// updateMeshConnection reports the peer mesh link came up; the player slot
// flips to connected and everyone learns the join completed.
func (h *gameHandler) updateMeshConnection(ctx context.Context, s *blaze.Session, req *updateMeshConnectionRequest) (blaze.Empty, error) {
	user, err := requireUser(s)
	if err != nil {
		return blaze.Empty{}, err
	}
	g, err := h.lookupGame(req.gameID)
	if err != nil {
		return blaze.Empty{}, err
	}
	if !g.SetPlayerConnected(user.ID) {
		return blaze.Empty{}, blaze.Errorf(blaze.ErrSystem, "player %d not in game %d", user.ID, req.gameID)
	}
	return blaze.Empty{}, nil
}
