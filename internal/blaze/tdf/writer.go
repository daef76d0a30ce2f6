package tdf

import (
	"encoding/binary"
	"math"
)

// Writer is an append-only encoder over a growable buffer.
// All tagged write helpers emit the 3-byte tag, the type code, then the value.
type Writer struct {
	buf []byte
}

// NewWriter returns a Writer with the given initial capacity.
func NewWriter(capacity int) *Writer {
	return &Writer{buf: make([]byte, 0, capacity)}
}

// Bytes returns the encoded buffer. The slice is owned by the Writer and is
// only valid until the next write.
func (w *Writer) Bytes() []byte {
	return w.buf
}

// Len returns the number of bytes written so far.
func (w *Writer) Len() int {
	return len(w.buf)
}

// Reset truncates the buffer for reuse.
func (w *Writer) Reset() {
	w.buf = w.buf[:0]
}

// WriteU8 appends a single raw byte.
func (w *Writer) WriteU8(b byte) {
	w.buf = append(w.buf, b)
}

// WriteBytes appends raw bytes.
func (w *Writer) WriteBytes(b []byte) {
	w.buf = append(w.buf, b...)
}

// WriteType appends a type code byte.
func (w *Writer) WriteType(t Type) {
	w.buf = append(w.buf, byte(t))
}

// WriteTag appends the canonicalized tag and type code for a field.
func (w *Writer) WriteTag(label string, t Type) {
	tag := MakeTag(label)
	w.buf = append(w.buf, tag[0], tag[1], tag[2], byte(t))
}

// WriteVarInt appends a value in the base-128 encoding: six data bits in the
// first byte, seven in each continuation byte, high bit set while more follow.
func (w *Writer) WriteVarInt(v uint64) {
	if v < 0x40 {
		w.buf = append(w.buf, byte(v))
		return
	}
	w.buf = append(w.buf, byte(v&0x3F)|0x80)
	v >>= 6
	for v >= 0x80 {
		w.buf = append(w.buf, byte(v&0x7F)|0x80)
		v >>= 7
	}
	w.buf = append(w.buf, byte(v))
}

// WriteBool appends a boolean as a VarInt 0 or 1.
func (w *Writer) WriteBool(v bool) {
	if v {
		w.WriteVarInt(1)
	} else {
		w.WriteVarInt(0)
	}
}

// WriteFloat appends an IEEE-754 big-endian float32.
func (w *Writer) WriteFloat(v float32) {
	var tmp [4]byte
	binary.BigEndian.PutUint32(tmp[:], math.Float32bits(v))
	w.buf = append(w.buf, tmp[:]...)
}

// WriteString appends a length-prefixed, null-terminated string. The
// terminator is counted in the length prefix.
func (w *Writer) WriteString(s string) {
	w.WriteVarInt(uint64(len(s) + 1))
	w.buf = append(w.buf, s...)
	w.buf = append(w.buf, 0)
}

// WriteEmptyString appends the two-byte empty string form.
func (w *Writer) WriteEmptyString() {
	w.buf = append(w.buf, 1, 0)
}

// WriteBlob appends a length-prefixed byte blob.
func (w *Writer) WriteBlob(b []byte) {
	w.WriteVarInt(uint64(len(b)))
	w.buf = append(w.buf, b...)
}

// WriteEmptyBlob appends the single-byte empty blob form.
func (w *Writer) WriteEmptyBlob() {
	w.buf = append(w.buf, 0)
}

// EndGroup terminates a group opened by a tagged TypeGroup write.
func (w *Writer) EndGroup() {
	w.buf = append(w.buf, GroupTerminator)
}

// BeginList appends the list header for count elements of type t.
func (w *Writer) BeginList(t Type, count int) {
	w.WriteType(t)
	w.WriteVarInt(uint64(count))
}

// BeginMap appends the map header for count pairs.
func (w *Writer) BeginMap(key, value Type, count int) {
	w.WriteType(key)
	w.WriteType(value)
	w.WriteVarInt(uint64(count))
}

// BeginUnion appends the union key byte; the caller writes one tagged value.
func (w *Writer) BeginUnion(key uint8) {
	w.buf = append(w.buf, key)
}

// WriteUnionUnset appends the unset union sentinel; no value follows.
func (w *Writer) WriteUnionUnset() {
	w.buf = append(w.buf, UnionUnset)
}

// WritePair appends two VarInts.
func (w *Writer) WritePair(p Pair) {
	w.WriteVarInt(p.A)
	w.WriteVarInt(p.B)
}

// WriteTriple appends three VarInts.
func (w *Writer) WriteTriple(t Triple) {
	w.WriteVarInt(t.A)
	w.WriteVarInt(t.B)
	w.WriteVarInt(t.C)
}

// Tagged convenience writers. These cover the shapes handlers emit most.

// TagVarInt writes a tagged VarInt field.
func (w *Writer) TagVarInt(label string, v uint64) {
	w.WriteTag(label, TypeVarInt)
	w.WriteVarInt(v)
}

// TagBool writes a tagged boolean field.
func (w *Writer) TagBool(label string, v bool) {
	w.WriteTag(label, TypeVarInt)
	w.WriteBool(v)
}

// TagString writes a tagged string field.
func (w *Writer) TagString(label, s string) {
	w.WriteTag(label, TypeString)
	w.WriteString(s)
}

// TagBlob writes a tagged blob field.
func (w *Writer) TagBlob(label string, b []byte) {
	w.WriteTag(label, TypeBlob)
	w.WriteBlob(b)
}

// TagFloat writes a tagged float field.
func (w *Writer) TagFloat(label string, v float32) {
	w.WriteTag(label, TypeFloat)
	w.WriteFloat(v)
}

// TagGroup opens a tagged group; close it with EndGroup.
func (w *Writer) TagGroup(label string) {
	w.WriteTag(label, TypeGroup)
}

// TagList writes a tagged list header.
func (w *Writer) TagList(label string, elem Type, count int) {
	w.WriteTag(label, TypeList)
	w.BeginList(elem, count)
}

// TagMap writes a tagged map header.
func (w *Writer) TagMap(label string, key, value Type, count int) {
	w.WriteTag(label, TypeMap)
	w.BeginMap(key, value, count)
}

// TagUnion writes a tagged union header with the given key.
func (w *Writer) TagUnion(label string, key uint8) {
	w.WriteTag(label, TypeUnion)
	w.BeginUnion(key)
}

// TagUnionUnset writes a tagged unset union.
func (w *Writer) TagUnionUnset(label string) {
	w.WriteTag(label, TypeUnion)
	w.WriteUnionUnset()
}

// TagPair writes a tagged pair.
func (w *Writer) TagPair(label string, p Pair) {
	w.WriteTag(label, TypePair)
	w.WritePair(p)
}

// TagTriple writes a tagged triple.
func (w *Writer) TagTriple(label string, t Triple) {
	w.WriteTag(label, TypeTriple)
	w.WriteTriple(t)
}

// TagVarIntList writes a tagged VarInt list in one call.
func (w *Writer) TagVarIntList(label string, vs []uint64) {
	w.WriteTag(label, TypeVarIntList)
	w.WriteVarInt(uint64(len(vs)))
	for _, v := range vs {
		w.WriteVarInt(v)
	}
}

// TagStringMap writes a tagged string→string map preserving slice order.
func (w *Writer) TagStringMap(label string, keys, values []string) {
	w.TagMap(label, TypeString, TypeString, len(keys))
	for i, k := range keys {
		w.WriteString(k)
		w.WriteString(values[i])
	}
}
