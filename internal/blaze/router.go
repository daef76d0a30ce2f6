package blaze

import (
	"context"
	"fmt"

	"github.com/korrin/meago/internal/blaze/tdf"
)

// HandlerFunc handles one request frame and returns the response frame.
type HandlerFunc func(ctx context.Context, s *Session, req *Frame) (*Frame, error)

// Decoder is implemented by typed requests decodable from a frame body.
type Decoder interface {
	Decode(r *tdf.Reader) error
}

// Encoder is implemented by typed responses encodable into a frame body.
type Encoder interface {
	Encode(w *tdf.Writer)
}

// Empty is the unit request/response: decodes from anything, encodes nothing.
type Empty struct{}

func (Empty) Decode(*tdf.Reader) error { return nil }
func (Empty) Encode(*tdf.Writer)       {}

// DecodingError wraps a request body decode failure. The session answers
// these with an empty RESPONSE frame rather than an error code.
type DecodingError struct {
	Err error
}

func (e *DecodingError) Error() string {
	return fmt.Sprintf("decoding request: %v", e.Err)
}

func (e *DecodingError) Unwrap() error {
	return e.Err
}

// Router dispatches (component, command) pairs to handlers.
type Router struct {
	handlers map[uint32]HandlerFunc
}

func NewRouter() *Router {
	return &Router{handlers: make(map[uint32]HandlerFunc)}
}

func routeKey(component, command uint16) uint32 {
	return uint32(component)<<16 | uint32(command)
}

// Register installs a handler for the pair. Last registration wins.
func (r *Router) Register(component, command uint16, h HandlerFunc) {
	r.handlers[routeKey(component, command)] = h
}

// Handle dispatches one request frame. A missing pair is reported as
// MissingHandlerError so the session can decide between CommandNotFound
// (requests) and log-and-ignore (notifications).
func (r *Router) Handle(ctx context.Context, s *Session, req *Frame) (*Frame, error) {
	h, ok := r.handlers[routeKey(req.Component, req.Command)]
	if !ok {
		return nil, &MissingHandlerError{Component: req.Component, Command: req.Command}
	}
	return h(ctx, s, req)
}

// Handle adapts a typed (request, response) handler. The request is decoded
// from the frame body; the response is encoded into a RESPONSE frame built
// from the request header. Returning an error produces an error response.
func Handle[Req any, PReq interface {
	*Req
	Decoder
}, Resp Encoder](fn func(ctx context.Context, s *Session, req PReq) (Resp, error)) HandlerFunc {
	return func(ctx context.Context, s *Session, frame *Frame) (*Frame, error) {
		req := PReq(new(Req))
		if err := req.Decode(tdf.NewReader(frame.Body)); err != nil {
			return nil, &DecodingError{Err: err}
		}
		resp, err := fn(ctx, s, req)
		if err != nil {
			return nil, err
		}
		return encodeResponse(frame, resp), nil
	}
}

// HandleNoReq adapts a handler that ignores the request body.
func HandleNoReq[Resp Encoder](fn func(ctx context.Context, s *Session) (Resp, error)) HandlerFunc {
	return func(ctx context.Context, s *Session, frame *Frame) (*Frame, error) {
		resp, err := fn(ctx, s)
		if err != nil {
			return nil, err
		}
		return encodeResponse(frame, resp), nil
	}
}

func encodeResponse(req *Frame, resp Encoder) *Frame {
	w := tdf.NewWriter(256)
	resp.Encode(w)
	body := make([]byte, w.Len())
	copy(body, w.Bytes())
	return req.Response(body)
}

// EncodeNotify builds a notification frame from a typed payload.
func EncodeNotify(component, command uint16, payload Encoder) *Frame {
	w := tdf.NewWriter(256)
	payload.Encode(w)
	body := make([]byte, w.Len())
	copy(body, w.Bytes())
	return NotifyFrame(component, command, body)
}
