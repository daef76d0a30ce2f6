package blaze

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Frame flag bits.
const (
	FlagDefault   uint8 = 0x00
	FlagResponse  uint8 = 0x20
	FlagNotify    uint8 = 0x40
	FlagKeepAlive uint8 = 0x80
)

// HeaderSize is the fixed wire header length. The header carries: body
// length (u32), pre-message length (u16), component (u16), command (u16),
// sequence (u24), flags, notify, unused. All integers big-endian.
const HeaderSize = 16

// maxFrameBody bounds a single frame body; anything larger is a broken or
// hostile peer.
const maxFrameBody = 1 << 20

// Frame is one packet on the binary wire.
type Frame struct {
	Component uint16
	Command   uint16
	Seq       uint32 // low three bytes only
	Flags     uint8
	Notify    uint8
	Unused    uint8
	Pre       []byte
	Body      []byte
}

// NotifyFrame builds a server-initiated notification frame.
func NotifyFrame(component, command uint16, body []byte) *Frame {
	return &Frame{
		Component: component,
		Command:   command,
		Flags:     FlagNotify,
		Notify:    1,
		Body:      body,
	}
}

// KeepAliveFrame builds the liveness frame that bypasses response ordering.
func KeepAliveFrame() *Frame {
	return &Frame{Flags: FlagKeepAlive}
}

// Response builds the reply frame for a request: same component, command and
// sequence, RESPONSE added to the request's flags, notify and unused cleared.
func (f *Frame) Response(body []byte) *Frame {
	return &Frame{
		Component: f.Component,
		Command:   f.Command,
		Seq:       f.Seq,
		Flags:     f.Flags | FlagResponse,
		Body:      body,
	}
}

// ErrorResponse builds an empty-bodied reply carrying a 16-bit error code in
// the trailing header bytes.
func (f *Frame) ErrorResponse(code uint16) *Frame {
	r := f.Response(nil)
	r.Notify = uint8(code >> 8)
	r.Unused = uint8(code)
	return r
}

// ErrorCode returns the 16-bit code carried by an error response.
func (f *Frame) ErrorCode() uint16 {
	return uint16(f.Notify)<<8 | uint16(f.Unused)
}

// Encode serializes the frame to its wire form.
func (f *Frame) Encode() []byte {
	out := make([]byte, HeaderSize+len(f.Pre)+len(f.Body))
	binary.BigEndian.PutUint32(out[0:4], uint32(len(f.Body)))
	binary.BigEndian.PutUint16(out[4:6], uint16(len(f.Pre)))
	binary.BigEndian.PutUint16(out[6:8], f.Component)
	binary.BigEndian.PutUint16(out[8:10], f.Command)
	out[10] = byte(f.Seq >> 16)
	out[11] = byte(f.Seq >> 8)
	out[12] = byte(f.Seq)
	out[13] = f.Flags
	out[14] = f.Notify
	out[15] = f.Unused
	copy(out[HeaderSize:], f.Pre)
	copy(out[HeaderSize+len(f.Pre):], f.Body)
	return out
}

// Decode parses one frame from the front of data. It returns the frame and
// the number of bytes consumed, or (nil, 0) when data does not yet hold a
// complete frame; the input is left for the next poll.
func Decode(data []byte) (*Frame, int, error) {
	if len(data) < HeaderSize {
		return nil, 0, nil
	}
	bodyLen := int(binary.BigEndian.Uint32(data[0:4]))
	preLen := int(binary.BigEndian.Uint16(data[4:6]))
	if bodyLen > maxFrameBody {
		return nil, 0, fmt.Errorf("frame body %d exceeds limit", bodyLen)
	}
	total := HeaderSize + preLen + bodyLen
	if len(data) < total {
		return nil, 0, nil
	}

	f := &Frame{
		Component: binary.BigEndian.Uint16(data[6:8]),
		Command:   binary.BigEndian.Uint16(data[8:10]),
		Seq:       uint32(data[10])<<16 | uint32(data[11])<<8 | uint32(data[12]),
		Flags:     data[13],
		Notify:    data[14],
		Unused:    data[15],
	}
	if preLen > 0 {
		f.Pre = make([]byte, preLen)
		copy(f.Pre, data[HeaderSize:HeaderSize+preLen])
	}
	if bodyLen > 0 {
		f.Body = make([]byte, bodyLen)
		copy(f.Body, data[HeaderSize+preLen:total])
	}
	return f, total, nil
}

// ReadFrame reads exactly one frame from r, blocking until it arrives.
func ReadFrame(r io.Reader) (*Frame, error) {
	var header [HeaderSize]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, fmt.Errorf("read frame header: %w", err)
	}
	bodyLen := int(binary.BigEndian.Uint32(header[0:4]))
	preLen := int(binary.BigEndian.Uint16(header[4:6]))
	if bodyLen > maxFrameBody {
		return nil, fmt.Errorf("frame body %d exceeds limit", bodyLen)
	}

	rest := make([]byte, preLen+bodyLen)
	if _, err := io.ReadFull(r, rest); err != nil {
		return nil, fmt.Errorf("read frame payload (%d bytes): %w", len(rest), err)
	}

	full := make([]byte, HeaderSize+len(rest))
	copy(full, header[:])
	copy(full[HeaderSize:], rest)
	f, _, err := Decode(full)
	return f, err
}

// WriteFrame writes one frame to w.
func WriteFrame(w io.Writer, f *Frame) error {
	if _, err := w.Write(f.Encode()); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	return nil
}
