package tdf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestString_RoundTrip(t *testing.T) {
	for _, s := range []string{"", "pc", "ME4-PC-SERVER-BLAZE", "matchAny", "привет"} {
		w := NewWriter(64)
		w.WriteString(s)
		r := NewReader(w.Bytes())
		got, err := r.ReadString()
		require.NoError(t, err)
		assert.Equal(t, s, got)
		assert.Equal(t, 0, r.Remaining())
	}
}

func TestString_EmptyForm(t *testing.T) {
	w := NewWriter(4)
	w.WriteEmptyString()
	assert.Equal(t, []byte{0x01, 0x00}, w.Bytes())

	r := NewReader(w.Bytes())
	s, err := r.ReadString()
	require.NoError(t, err)
	assert.Equal(t, "", s)
}

func TestString_InvalidUTF8(t *testing.T) {
	// length 3: two raw bytes + null terminator
	r := NewReader([]byte{0x03, 0xFF, 0xFE, 0x00})
	_, err := r.ReadString()
	assert.ErrorIs(t, err, ErrInvalidUTF8)
}

func TestBlob_RoundTrip(t *testing.T) {
	w := NewWriter(16)
	w.WriteBlob([]byte{1, 2, 3, 4})
	w.WriteEmptyBlob()

	r := NewReader(w.Bytes())
	b, err := r.ReadBlob()
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3, 4}, b)

	empty, err := r.ReadBlob()
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestFloat_RoundTrip(t *testing.T) {
	w := NewWriter(8)
	w.TagFloat("FLT", 3.5)

	r := NewReader(w.Bytes())
	require.NoError(t, r.UntilTag("FLT", TypeFloat))
	v, err := r.ReadFloat()
	require.NoError(t, err)
	assert.Equal(t, float32(3.5), v)
}

func TestUnion_SetAndUnset(t *testing.T) {
	w := NewWriter(32)
	w.TagUnion("ADDR", 2)
	w.TagVarInt("IP", 0x7F000001)
	w.TagUnionUnset("HOST")

	r := NewReader(w.Bytes())
	require.NoError(t, r.UntilTag("ADDR", TypeUnion))
	u, err := r.ReadUnionHeader()
	require.NoError(t, err)
	require.True(t, u.Set)
	assert.Equal(t, uint8(2), u.Key)
	assert.Equal(t, MakeTag("IP"), u.Tag)
	assert.Equal(t, TypeVarInt, u.Type)
	ip, err := r.ReadVarInt()
	require.NoError(t, err)
	assert.Equal(t, uint64(0x7F000001), ip)

	require.NoError(t, r.UntilTag("HOST", TypeUnion))
	u, err = r.ReadUnionHeader()
	require.NoError(t, err)
	assert.False(t, u.Set)
}

func TestStringMap_PreservesOrder(t *testing.T) {
	keys := []string{"difficulty", "enemytype", "level"}
	values := []string{"1", "0", "7"}

	w := NewWriter(64)
	w.TagStringMap("ATTR", keys, values)

	r := NewReader(w.Bytes())
	gotKeys, gotValues, err := r.TagStringMap("ATTR")
	require.NoError(t, err)
	assert.Equal(t, keys, gotKeys)
	assert.Equal(t, values, gotValues)
}

func TestPairTriple_RoundTrip(t *testing.T) {
	w := NewWriter(32)
	w.TagPair("PAIR", Pair{A: 30722, B: 2})
	w.TagTriple("TRIP", Triple{A: 30722, B: 2, C: 12345})

	r := NewReader(w.Bytes())
	require.NoError(t, r.UntilTag("PAIR", TypePair))
	p, err := r.ReadPair()
	require.NoError(t, err)
	assert.Equal(t, Pair{A: 30722, B: 2}, p)

	trip, err := r.TagTriple("TRIP")
	require.NoError(t, err)
	assert.Equal(t, Triple{A: 30722, B: 2, C: 12345}, trip)
}

func TestUntilTag_SkipsForeignFields(t *testing.T) {
	w := NewWriter(128)
	w.TagVarInt("AAAA", 1)
	w.TagString("BBBB", "skip me")
	w.TagList("CCCC", TypeVarInt, 3)
	w.WriteVarInt(1)
	w.WriteVarInt(2)
	w.WriteVarInt(3)
	w.TagGroup("DDDD")
	w.TagVarInt("INNR", 9)
	w.EndGroup()
	w.TagVarInt("WANT", 42)

	r := NewReader(w.Bytes())
	v, err := r.TagVarInt("WANT")
	require.NoError(t, err)
	assert.Equal(t, uint64(42), v)
}

func TestUntilTag_WrongType(t *testing.T) {
	w := NewWriter(16)
	w.TagVarInt("GID", 7)

	r := NewReader(w.Bytes())
	err := r.UntilTag("GID", TypeString)
	var tagErr *InvalidTagTypeError
	require.ErrorAs(t, err, &tagErr)
	assert.Equal(t, MakeTag("GID"), tagErr.Tag)
}

func TestTryUntilTag_RewindsOnMiss(t *testing.T) {
	w := NewWriter(32)
	w.TagVarInt("AAAA", 1)
	w.TagVarInt("BBBB", 2)

	r := NewReader(w.Bytes())
	assert.False(t, r.TryUntilTag("ZZZZ", TypeVarInt))
	assert.Equal(t, 0, r.Cursor())

	// The reader is still usable for fields that do exist.
	v, err := r.TagVarInt("BBBB")
	require.NoError(t, err)
	assert.Equal(t, uint64(2), v)
}

func TestGroup_NestedDecode(t *testing.T) {
	w := NewWriter(64)
	w.TagGroup("QOSS")
	w.TagVarInt("TIME", 5000000)
	w.EndGroup()
	w.TagString("PLAT", "pc")

	r := NewReader(w.Bytes())
	require.NoError(t, r.UntilTag("QOSS", TypeGroup))
	require.NoError(t, r.EnterGroup())
	v, err := r.TagVarInt("TIME")
	require.NoError(t, err)
	assert.Equal(t, uint64(5000000), v)
	require.NoError(t, r.ExitGroup())

	plat, err := r.TagString("PLAT")
	require.NoError(t, err)
	assert.Equal(t, "pc", plat)
}

func TestGroup_MarkerPrefixAccepted(t *testing.T) {
	w := NewWriter(32)
	w.TagGroup("GRUP")
	w.WriteU8(GroupMarker)
	w.TagVarInt("VAL", 5)
	w.EndGroup()
	w.TagVarInt("NEXT", 6)

	r := NewReader(w.Bytes())
	require.NoError(t, r.UntilTag("GRUP", TypeGroup))
	require.NoError(t, r.EnterGroup())
	v, err := r.TagVarInt("VAL")
	require.NoError(t, err)
	assert.Equal(t, uint64(5), v)
	require.NoError(t, r.ExitGroup())

	next, err := r.TagVarInt("NEXT")
	require.NoError(t, err)
	assert.Equal(t, uint64(6), next)
}

func TestSkipValue_AllTypes(t *testing.T) {
	w := NewWriter(256)
	w.TagVarInt("VINT", 123456)
	w.TagString("STRG", "hello")
	w.TagBlob("BLOB", []byte{9, 9, 9})
	w.TagGroup("GRUP")
	w.TagVarInt("INNR", 1)
	w.EndGroup()
	w.TagList("LIST", TypeString, 2)
	w.WriteString("a")
	w.WriteString("b")
	w.TagMap("MAPP", TypeString, TypeVarInt, 1)
	w.WriteString("k")
	w.WriteVarInt(1)
	w.TagUnion("UNIO", 1)
	w.TagVarInt("IP", 1)
	w.TagVarIntList("VLST", []uint64{1, 2, 3})
	w.TagPair("PAIR", Pair{A: 1, B: 2})
	w.TagTriple("TRIP", Triple{A: 1, B: 2, C: 3})
	w.TagFloat("FLOT", 1.25)
	w.TagVarInt("LAST", 99)

	// Seeking the final tag forces a skip over every other type.
	r := NewReader(w.Bytes())
	v, err := r.TagVarInt("LAST")
	require.NoError(t, err)
	assert.Equal(t, uint64(99), v)
	assert.Equal(t, 0, r.Remaining())
}
