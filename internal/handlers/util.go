package handlers

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/korrin/meago/internal/blaze"
	"github.com/korrin/meago/internal/blaze/tdf"
)

// Pre-auth constants the retail client expects verbatim.
const (
	authSource   = "310335"
	clientID     = "ME4-PC-SERVER-BLAZE"
	platform     = "pc"
	qosTimeoutUs = 5_000_000
)

type utilHandler struct {
	log *slog.Logger

	mu       sync.Mutex
	settings map[uint32]map[string]string
}

func newUtilHandler(deps Deps) *utilHandler {
	return &utilHandler{
		log:      deps.Log.With("component", "util"),
		settings: make(map[uint32]map[string]string),
	}
}

func (h *utilHandler) register(r *blaze.Router) {
	r.Register(blaze.ComponentUtil, blaze.UtilCmdPreAuth, blaze.HandleNoReq(h.preAuth))
	r.Register(blaze.ComponentUtil, blaze.UtilCmdPing, blaze.HandleNoReq(h.ping))
	r.Register(blaze.ComponentUtil, blaze.UtilCmdPostAuth, blaze.HandleNoReq(h.postAuth))
	r.Register(blaze.ComponentUtil, blaze.UtilCmdFetchClientConfig, blaze.Handle(h.fetchClientConfig))
	r.Register(blaze.ComponentUtil, blaze.UtilCmdUserSettingsSave, blaze.Handle(h.userSettingsSave))
	r.Register(blaze.ComponentUtil, blaze.UtilCmdUserSettingsLoad, blaze.HandleNoReq(h.userSettingsLoad))
}

type preAuthResponse struct{}

func (preAuthResponse) Encode(w *tdf.Writer) {
	w.TagString("ASRC", authSource)
	w.TagString("CLID", clientID)
	w.TagString("PLAT", platform)
	w.TagGroup("QOSS")
	w.TagVarInt("TIME", qosTimeoutUs)
	w.EndGroup()
}

func (h *utilHandler) preAuth(ctx context.Context, s *blaze.Session) (preAuthResponse, error) {
	return preAuthResponse{}, nil
}

type pingResponse struct {
	serverTime uint64
}

func (p pingResponse) Encode(w *tdf.Writer) {
	w.TagVarInt("STIM", p.serverTime)
}

func (h *utilHandler) ping(ctx context.Context, s *blaze.Session) (pingResponse, error) {
	return pingResponse{serverTime: uint64(time.Now().Unix())}, nil
}

type postAuthResponse struct {
	userID uint32
}

func (p postAuthResponse) Encode(w *tdf.Writer) {
	w.TagGroup("UROP")
	w.TagVarInt("TMOP", 1)
	w.TagVarInt("UID", uint64(p.userID))
	w.EndGroup()
}

func (h *utilHandler) postAuth(ctx context.Context, s *blaze.Session) (postAuthResponse, error) {
	user, err := requireUser(s)
	if err != nil {
		return postAuthResponse{}, err
	}
	return postAuthResponse{userID: user.ID}, nil
}

type fetchClientConfigRequest struct {
	configID string
}

func (r *fetchClientConfigRequest) Decode(rd *tdf.Reader) error {
	id, err := rd.TagString("CFID")
	if err != nil {
		return err
	}
	r.configID = id
	return nil
}

type fetchClientConfigResponse struct{}

func (fetchClientConfigResponse) Encode(w *tdf.Writer) {
	w.TagMap("CONF", tdf.TypeString, tdf.TypeString, 0)
}

// fetchClientConfig answers every config id with an empty map; the client
// falls back to its built-in defaults.
func (h *utilHandler) fetchClientConfig(ctx context.Context, s *blaze.Session, req *fetchClientConfigRequest) (fetchClientConfigResponse, error) {
	h.log.Debug("client config fetched", "config_id", req.configID)
	return fetchClientConfigResponse{}, nil
}

type userSettingsSaveRequest struct {
	data string
	key  string
}

func (r *userSettingsSaveRequest) Decode(rd *tdf.Reader) error {
	data, err := rd.TagString("DATA")
	if err != nil {
		return err
	}
	key, err := rd.TagString("KEY")
	if err != nil {
		return err
	}
	r.data = data
	r.key = key
	return nil
}

func (h *utilHandler) userSettingsSave(ctx context.Context, s *blaze.Session, req *userSettingsSaveRequest) (blaze.Empty, error) {
	user, err := requireUser(s)
	if err != nil {
		return blaze.Empty{}, err
	}
	h.mu.Lock()
	m, ok := h.settings[user.ID]
	if !ok {
		m = make(map[string]string)
		h.settings[user.ID] = m
	}
	m[req.key] = req.data
	h.mu.Unlock()
	return blaze.Empty{}, nil
}

type userSettingsLoadResponse struct {
	keys   []string
	values []string
}

func (r userSettingsLoadResponse) Encode(w *tdf.Writer) {
	w.TagStringMap("SMAP", r.keys, r.values)
}

func (h *utilHandler) userSettingsLoad(ctx context.Context, s *blaze.Session) (userSettingsLoadResponse, error) {
	user, err := requireUser(s)
	if err != nil {
		return userSettingsLoadResponse{}, err
	}
	h.mu.Lock()
	m := h.settings[user.ID]
	resp := userSettingsLoadResponse{
		keys:   make([]string, 0, len(m)),
		values: make([]string, 0, len(m)),
	}
	for k := range m {
		resp.keys = append(resp.keys, k)
	}
	sort.Strings(resp.keys)
	for _, k := range resp.keys {
		resp.values = append(resp.values, m[k])
	}
	h.mu.Unlock()
	return resp, nil
}
