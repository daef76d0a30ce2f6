package tdf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVarInt_RoundTrip(t *testing.T) {
	values := []uint64{
		0, 1, 0x3F, 0x40, 0x7F, 0x80, 0xFF, 0x100,
		0x1FFF, 0x2000, 0xFFFF, 0x10000,
		0xFFFFFFFF, 0x100000000,
		0x7FFFFFFFFFFFFFFF, 0xFFFFFFFFFFFFFFFF,
	}
	for _, v := range values {
		w := NewWriter(16)
		w.WriteVarInt(v)
		r := NewReader(w.Bytes())
		got, err := r.ReadVarInt()
		require.NoError(t, err, "value %d", v)
		assert.Equal(t, v, got)
		assert.Equal(t, 0, r.Remaining(), "value %d should consume all bytes", v)
	}
}

func TestVarInt_MinimalEncoding(t *testing.T) {
	tests := []struct {
		v    uint64
		size int
	}{
		{0, 1},
		{0x3F, 1},
		{0x40, 2},
		{0x1FFF, 2},
		{0x2000, 3},
		{0xFFFFFFFFFFFFFFFF, 10},
	}
	for _, tt := range tests {
		w := NewWriter(16)
		w.WriteVarInt(tt.v)
		assert.Equal(t, tt.size, w.Len(), "value 0x%X", tt.v)
	}
}

func TestVarInt_NarrowWidthConsumesContinuation(t *testing.T) {
	// A value wider than 8 bits must still fully consume its bytes when the
	// caller asks for a u8, keeping the cursor aligned with the next field.
	w := NewWriter(16)
	w.WriteVarInt(0x12345678)
	w.WriteVarInt(7)

	r := NewReader(w.Bytes())
	v8, err := r.ReadU8()
	require.NoError(t, err)
	assert.Equal(t, uint8(0x78), v8)

	next, err := r.ReadVarInt()
	require.NoError(t, err)
	assert.Equal(t, uint64(7), next)
}

func TestVarInt_OverflowDiscarded(t *testing.T) {
	// 11 continuation bytes encode more than 64 bits; the decoder must
	// consume them all and discard the overflow.
	data := []byte{0xBF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0x01}
	r := NewReader(data)
	_, err := r.ReadVarInt()
	require.NoError(t, err)
	assert.Equal(t, 0, r.Remaining())
}

func TestVarInt_EOF(t *testing.T) {
	r := NewReader([]byte{0x80})
	_, err := r.ReadVarInt()
	var eofErr *UnexpectedEOFError
	require.ErrorAs(t, err, &eofErr)
}
