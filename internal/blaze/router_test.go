package blaze

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/korrin/meago/internal/blaze/tdf"
)

type pingReq struct {
	Value uint64
}

func (p *pingReq) Decode(r *tdf.Reader) error {
	v, err := r.TagVarInt("VAL")
	if err != nil {
		return err
	}
	p.Value = v
	return nil
}

type pingResp struct {
	Value uint64
}

func (p pingResp) Encode(w *tdf.Writer) {
	w.TagVarInt("VAL", p.Value)
}

func TestRouter_TypedDispatch(t *testing.T) {
	router := NewRouter()
	router.Register(9, 2, Handle(func(_ context.Context, _ *Session, req *pingReq) (pingResp, error) {
		return pingResp{Value: req.Value + 1}, nil
	}))

	w := tdf.NewWriter(16)
	w.TagVarInt("VAL", 41)
	req := &Frame{Component: 9, Command: 2, Seq: 5, Body: w.Bytes()}

	resp, err := router.Handle(context.Background(), nil, req)
	require.NoError(t, err)
	assert.Equal(t, req.Seq, resp.Seq)
	assert.NotZero(t, resp.Flags&FlagResponse)

	v, err := tdf.NewReader(resp.Body).TagVarInt("VAL")
	require.NoError(t, err)
	assert.Equal(t, uint64(42), v)
}

func TestRouter_MissingHandler(t *testing.T) {
	router := NewRouter()
	_, err := router.Handle(context.Background(), nil, &Frame{Component: 1, Command: 2})

	var missing *MissingHandlerError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, uint16(1), missing.Component)
	assert.Equal(t, uint16(2), missing.Command)
}

func TestRouter_DecodeFailure(t *testing.T) {
	router := NewRouter()
	router.Register(9, 2, Handle(func(_ context.Context, _ *Session, req *pingReq) (pingResp, error) {
		return pingResp{}, nil
	}))

	// Body lacks the VAL tag entirely.
	req := &Frame{Component: 9, Command: 2, Body: nil}
	_, err := router.Handle(context.Background(), nil, req)

	var decoding *DecodingError
	require.ErrorAs(t, err, &decoding)
}

func TestRouter_NoReqEmptyResponse(t *testing.T) {
	router := NewRouter()
	router.Register(9, 7, HandleNoReq(func(_ context.Context, _ *Session) (Empty, error) {
		return Empty{}, nil
	}))

	resp, err := router.Handle(context.Background(), nil, &Frame{Component: 9, Command: 7, Seq: 1})
	require.NoError(t, err)
	assert.Empty(t, resp.Body)
	assert.NotZero(t, resp.Flags&FlagResponse)
}

func TestErrorCodeFor(t *testing.T) {
	code, ok := ErrorCodeFor(Errorf(ErrAuthenticationRequired, "no user"))
	assert.True(t, ok)
	assert.Equal(t, ErrAuthenticationRequired, code)

	code, ok = ErrorCodeFor(&MissingHandlerError{Component: 1, Command: 2})
	assert.True(t, ok)
	assert.Equal(t, ErrCommandNotFound, code)

	// TDF decode errors must not surface a code.
	_, ok = ErrorCodeFor(&tdf.MissingTagError{Tag: tdf.MakeTag("VAL"), Expected: tdf.TypeVarInt})
	assert.False(t, ok)
}
