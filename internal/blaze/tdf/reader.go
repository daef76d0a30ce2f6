package tdf

import (
	"encoding/binary"
	"math"
	"unicode/utf8"
)

// Reader is a cursor-based decoder over a borrowed byte slice.
type Reader struct {
	data []byte
	off  int
}

// NewReader wraps data without copying it.
func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int {
	return len(r.data) - r.off
}

// Cursor returns the current read offset.
func (r *Reader) Cursor() int {
	return r.off
}

// Seek moves the cursor to an absolute offset. Used by TryUntilTag rewinds.
func (r *Reader) Seek(off int) {
	r.off = off
}

func (r *Reader) eof(wanted int) error {
	return &UnexpectedEOFError{Cursor: r.off, Wanted: wanted, Remaining: r.Remaining()}
}

// ReadByte reads one raw byte.
func (r *Reader) ReadByte() (byte, error) {
	if r.off >= len(r.data) {
		return 0, r.eof(1)
	}
	b := r.data[r.off]
	r.off++
	return b, nil
}

// PeekByte returns the next byte without advancing.
func (r *Reader) PeekByte() (byte, error) {
	if r.off >= len(r.data) {
		return 0, r.eof(1)
	}
	return r.data[r.off], nil
}

// ReadBytes reads n raw bytes as a subslice of the input.
func (r *Reader) ReadBytes(n int) ([]byte, error) {
	if r.off+n > len(r.data) {
		return nil, r.eof(n)
	}
	b := r.data[r.off : r.off+n]
	r.off += n
	return b, nil
}

// ReadFour reads four raw bytes.
func (r *Reader) ReadFour() ([4]byte, error) {
	var out [4]byte
	b, err := r.ReadBytes(4)
	if err != nil {
		return out, err
	}
	copy(out[:], b)
	return out, nil
}

// ReadVarInt decodes a base-128 value. All continuation bytes are consumed
// even when the value overflows 64 bits, so the cursor stays aligned with
// the next field; overflow bits are discarded.
func (r *Reader) ReadVarInt() (uint64, error) {
	first, err := r.ReadByte()
	if err != nil {
		return 0, err
	}
	v := uint64(first & 0x3F)
	if first&0x80 == 0 {
		return v, nil
	}
	shift := uint(6)
	for {
		b, err := r.ReadByte()
		if err != nil {
			return 0, err
		}
		if shift < 64 {
			v |= uint64(b&0x7F) << shift
		}
		if b&0x80 == 0 {
			return v, nil
		}
		shift += 7
	}
}

// ReadU8 decodes a VarInt truncated to 8 bits.
func (r *Reader) ReadU8() (uint8, error) {
	v, err := r.ReadVarInt()
	return uint8(v), err
}

// ReadU16 decodes a VarInt truncated to 16 bits.
func (r *Reader) ReadU16() (uint16, error) {
	v, err := r.ReadVarInt()
	return uint16(v), err
}

// ReadU32 decodes a VarInt truncated to 32 bits.
func (r *Reader) ReadU32() (uint32, error) {
	v, err := r.ReadVarInt()
	return uint32(v), err
}

// ReadBool decodes a VarInt as a boolean.
func (r *Reader) ReadBool() (bool, error) {
	v, err := r.ReadVarInt()
	return v != 0, err
}

// ReadFloat decodes an IEEE-754 big-endian float32.
func (r *Reader) ReadFloat() (float32, error) {
	b, err := r.ReadBytes(4)
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(binary.BigEndian.Uint32(b)), nil
}

// ReadString decodes a length-prefixed string, stripping the trailing null.
func (r *Reader) ReadString() (string, error) {
	n, err := r.ReadVarInt()
	if err != nil {
		return "", err
	}
	b, err := r.ReadBytes(int(n))
	if err != nil {
		return "", err
	}
	if len(b) > 0 && b[len(b)-1] == 0 {
		b = b[:len(b)-1]
	}
	if !utf8.Valid(b) {
		return "", ErrInvalidUTF8
	}
	return string(b), nil
}

// ReadBlob decodes a length-prefixed byte blob.
func (r *Reader) ReadBlob() ([]byte, error) {
	n, err := r.ReadVarInt()
	if err != nil {
		return nil, err
	}
	return r.ReadBytes(int(n))
}

// ReadTag reads a field header: three label bytes plus the type code.
func (r *Reader) ReadTag() (Tag, Type, error) {
	b, err := r.ReadBytes(4)
	if err != nil {
		return Tag{}, 0, err
	}
	return Tag{b[0], b[1], b[2]}, Type(b[3]), nil
}

// ReadListHeader checks the element type and returns the element count.
func (r *Reader) ReadListHeader(elem Type) (int, error) {
	actual, err := r.ReadByte()
	if err != nil {
		return 0, err
	}
	if Type(actual) != elem {
		return 0, &InvalidTypeError{Expected: elem, Actual: Type(actual)}
	}
	n, err := r.ReadVarInt()
	return int(n), err
}

// ReadMapHeader checks the key and value types and returns the pair count.
func (r *Reader) ReadMapHeader(key, value Type) (int, error) {
	k, err := r.ReadByte()
	if err != nil {
		return 0, err
	}
	if Type(k) != key {
		return 0, &InvalidTypeError{Expected: key, Actual: Type(k)}
	}
	v, err := r.ReadByte()
	if err != nil {
		return 0, err
	}
	if Type(v) != value {
		return 0, &InvalidTypeError{Expected: value, Actual: Type(v)}
	}
	n, err := r.ReadVarInt()
	return int(n), err
}

// Union is the decoded form of a tagged-union field.
type Union struct {
	Set  bool
	Key  uint8
	Tag  Tag
	Type Type
}

// ReadUnionHeader reads the union key and, when set, the tag of the value
// that follows. The caller decodes the value itself.
func (r *Reader) ReadUnionHeader() (Union, error) {
	key, err := r.ReadByte()
	if err != nil {
		return Union{}, err
	}
	if key == UnionUnset {
		return Union{}, nil
	}
	tag, typ, err := r.ReadTag()
	if err != nil {
		return Union{}, err
	}
	return Union{Set: true, Key: key, Tag: tag, Type: typ}, nil
}

// ReadPair decodes two VarInts.
func (r *Reader) ReadPair() (Pair, error) {
	a, err := r.ReadVarInt()
	if err != nil {
		return Pair{}, err
	}
	b, err := r.ReadVarInt()
	if err != nil {
		return Pair{}, err
	}
	return Pair{A: a, B: b}, nil
}

// ReadTriple decodes three VarInts.
func (r *Reader) ReadTriple() (Triple, error) {
	p, err := r.ReadPair()
	if err != nil {
		return Triple{}, err
	}
	c, err := r.ReadVarInt()
	if err != nil {
		return Triple{}, err
	}
	return Triple{A: p.A, B: p.B, C: c}, nil
}

// UntilTag scans forward for label with the expected type, skipping foreign
// tags. The cursor stops just after the matched tag header so the caller
// reads the value next. Tags on the wire are sorted, so a miss is reported
// as MissingTagError once the stream or group ends.
func (r *Reader) UntilTag(label string, expected Type) error {
	want := MakeTag(label)
	for {
		if r.Remaining() == 0 {
			return &MissingTagError{Tag: want, Expected: expected}
		}
		// A group terminator before the tag means the enclosing group ended.
		if b, _ := r.PeekByte(); b == GroupTerminator {
			return &MissingTagError{Tag: want, Expected: expected}
		}
		tag, typ, err := r.ReadTag()
		if err != nil {
			return err
		}
		if tag == want {
			if typ != expected {
				return &InvalidTagTypeError{Tag: tag, Expected: expected, Actual: typ}
			}
			return nil
		}
		if err := r.SkipValue(typ); err != nil {
			return err
		}
	}
}

// TryUntilTag is UntilTag with the cursor rewound on a miss.
func (r *Reader) TryUntilTag(label string, expected Type) bool {
	start := r.off
	if err := r.UntilTag(label, expected); err != nil {
		r.off = start
		return false
	}
	return true
}

// Typed until-tag helpers used by request decoding.

func (r *Reader) TagVarInt(label string) (uint64, error) {
	if err := r.UntilTag(label, TypeVarInt); err != nil {
		return 0, err
	}
	return r.ReadVarInt()
}

func (r *Reader) TagString(label string) (string, error) {
	if err := r.UntilTag(label, TypeString); err != nil {
		return "", err
	}
	return r.ReadString()
}

func (r *Reader) TagBlob(label string) ([]byte, error) {
	if err := r.UntilTag(label, TypeBlob); err != nil {
		return nil, err
	}
	return r.ReadBlob()
}

func (r *Reader) TagTriple(label string) (Triple, error) {
	if err := r.UntilTag(label, TypeTriple); err != nil {
		return Triple{}, err
	}
	return r.ReadTriple()
}

// TagStringMap decodes a tagged string→string map preserving wire order.
func (r *Reader) TagStringMap(label string) (keys, values []string, err error) {
	if err := r.UntilTag(label, TypeMap); err != nil {
		return nil, nil, err
	}
	n, err := r.ReadMapHeader(TypeString, TypeString)
	if err != nil {
		return nil, nil, err
	}
	keys = make([]string, 0, n)
	values = make([]string, 0, n)
	for i := 0; i < n; i++ {
		k, err := r.ReadString()
		if err != nil {
			return nil, nil, err
		}
		v, err := r.ReadString()
		if err != nil {
			return nil, nil, err
		}
		keys = append(keys, k)
		values = append(values, v)
	}
	return keys, values, nil
}

// EnterGroup positions the cursor at the first tag inside a group value,
// consuming the optional marker byte.
func (r *Reader) EnterGroup() error {
	b, err := r.PeekByte()
	if err != nil {
		return err
	}
	if b == GroupMarker {
		r.off++
	}
	return nil
}

// ExitGroup skips the remaining tags of the current group including its
// terminator.
func (r *Reader) ExitGroup() error {
	for {
		b, err := r.ReadByte()
		if err != nil {
			return err
		}
		if b == GroupTerminator {
			return nil
		}
		r.off--
		_, typ, err := r.ReadTag()
		if err != nil {
			return err
		}
		if err := r.SkipValue(typ); err != nil {
			return err
		}
	}
}

// SkipValue advances the cursor past one value of the given type without
// interpreting it. Every wire type is skippable so foreign fields can be
// traversed schema-free.
func (r *Reader) SkipValue(t Type) error {
	switch t {
	case TypeVarInt:
		_, err := r.ReadVarInt()
		return err
	case TypeString:
		n, err := r.ReadVarInt()
		if err != nil {
			return err
		}
		_, err = r.ReadBytes(int(n))
		return err
	case TypeBlob:
		n, err := r.ReadVarInt()
		if err != nil {
			return err
		}
		_, err = r.ReadBytes(int(n))
		return err
	case TypeGroup:
		if err := r.EnterGroup(); err != nil {
			return err
		}
		return r.ExitGroup()
	case TypeList:
		elem, err := r.ReadByte()
		if err != nil {
			return err
		}
		n, err := r.ReadVarInt()
		if err != nil {
			return err
		}
		for i := uint64(0); i < n; i++ {
			if err := r.SkipValue(Type(elem)); err != nil {
				return err
			}
		}
		return nil
	case TypeMap:
		key, err := r.ReadByte()
		if err != nil {
			return err
		}
		value, err := r.ReadByte()
		if err != nil {
			return err
		}
		n, err := r.ReadVarInt()
		if err != nil {
			return err
		}
		for i := uint64(0); i < n; i++ {
			if err := r.SkipValue(Type(key)); err != nil {
				return err
			}
			if err := r.SkipValue(Type(value)); err != nil {
				return err
			}
		}
		return nil
	case TypeUnion:
		u, err := r.ReadUnionHeader()
		if err != nil {
			return err
		}
		if !u.Set {
			return nil
		}
		return r.SkipValue(u.Type)
	case TypeVarIntList:
		n, err := r.ReadVarInt()
		if err != nil {
			return err
		}
		for i := uint64(0); i < n; i++ {
			if _, err := r.ReadVarInt(); err != nil {
				return err
			}
		}
		return nil
	case TypePair:
		_, err := r.ReadPair()
		return err
	case TypeTriple:
		_, err := r.ReadTriple()
		return err
	case TypeFloat:
		_, err := r.ReadBytes(4)
		return err
	default:
		return &InvalidTypeError{Expected: TypeVarInt, Actual: t}
	}
}
