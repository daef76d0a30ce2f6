package handlers

import (
	"context"
	"log/slog"

	"github.com/korrin/meago/internal/blaze"
	"github.com/korrin/meago/internal/blaze/tdf"
)

type redirectorHandler struct {
	target RedirectTarget
	log    *slog.Logger
}

func newRedirectorHandler(deps Deps) *redirectorHandler {
	return &redirectorHandler{
		target: deps.Redirect,
		log:    deps.Log.With("component", "redirector"),
	}
}

func (h *redirectorHandler) register(r *blaze.Router) {
	r.Register(blaze.ComponentRedirector, blaze.RedirectorCmdGetServerInstance, blaze.Handle(h.getServerInstance))
}

type serverInstanceRequest struct {
	name string
}

func (r *serverInstanceRequest) Decode(rd *tdf.Reader) error {
	if rd.TryUntilTag("NAME", tdf.TypeString) {
		name, err := rd.ReadString()
		if err != nil {
			return err
		}
		r.name = name
	}
	return nil
}

type serverInstanceResponse struct {
	target RedirectTarget
}

func (r serverInstanceResponse) Encode(w *tdf.Writer) {
	w.TagUnion("ADDR", 0)
	w.TagGroup("VALU")
	w.TagString("HOST", r.target.Host)
	w.TagVarInt("IP", uint64(r.target.IP))
	w.TagVarInt("PORT", uint64(r.target.Port))
	w.EndGroup()
	w.TagBool("SECU", false)
	w.TagVarInt("XDNS", 0)
}

// getServerInstance points the client at the game endpoint. With a single
// binary the redirector answers with its own listener.
func (h *redirectorHandler) getServerInstance(ctx context.Context, s *blaze.Session, req *serverInstanceRequest) (serverInstanceResponse, error) {
	h.log.Debug("redirect requested", "service", req.name)
	return serverInstanceResponse{target: h.target}, nil
}
