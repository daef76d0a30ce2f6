package handlers

import (
	"context"
	"log/slog"

	"github.com/korrin/meago/internal/blaze"
	"github.com/korrin/meago/internal/blaze/tdf"
)

type messagingHandler struct {
	log *slog.Logger
}

func newMessagingHandler(deps Deps) *messagingHandler {
	return &messagingHandler{log: deps.Log.With("component", "messaging")}
}

func (h *messagingHandler) register(r *blaze.Router) {
	r.Register(blaze.ComponentMessaging, blaze.MessagingCmdFetchMessages, blaze.HandleNoReq(h.fetchMessages))
	r.Register(blaze.ComponentMessaging, blaze.MessagingCmdSendMessage, blaze.Handle(h.sendMessage))
}

type fetchMessagesResponse struct{}

func (fetchMessagesResponse) Encode(w *tdf.Writer) {
	w.TagVarInt("MCNT", 0)
}

// fetchMessages reports an empty mailbox; the server sends no offline mail.
func (h *messagingHandler) fetchMessages(ctx context.Context, s *blaze.Session) (fetchMessagesResponse, error) {
	return fetchMessagesResponse{}, nil
}

type sendMessageRequest struct{}

func (r *sendMessageRequest) Decode(rd *tdf.Reader) error {
	return nil
}

type sendMessageResponse struct{}

func (sendMessageResponse) Encode(w *tdf.Writer) {
	w.TagVarInt("MGID", 0)
}

func (h *messagingHandler) sendMessage(ctx context.Context, s *blaze.Session, req *sendMessageRequest) (sendMessageResponse, error) {
	return sendMessageResponse{}, nil
}
