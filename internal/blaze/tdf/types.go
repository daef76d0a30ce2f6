package tdf

import "fmt"

// Type is the wire type code carried in the low byte of every tagged field.
type Type uint8

const (
	TypeVarInt     Type = 0x0
	TypeString     Type = 0x1
	TypeBlob       Type = 0x2
	TypeGroup      Type = 0x3
	TypeList       Type = 0x4
	TypeMap        Type = 0x5
	TypeUnion      Type = 0x6
	TypeVarIntList Type = 0x7
	TypePair       Type = 0x8
	TypeTriple     Type = 0x9
	TypeFloat      Type = 0xA
)

// UnionUnset is the union key byte meaning "no value follows".
const UnionUnset uint8 = 0x7F

// GroupMarker optionally prefixes a group body on the wire.
const GroupMarker byte = 0x02

// GroupTerminator ends a group's tag sequence.
const GroupTerminator byte = 0x00

func (t Type) String() string {
	switch t {
	case TypeVarInt:
		return "VarInt"
	case TypeString:
		return "String"
	case TypeBlob:
		return "Blob"
	case TypeGroup:
		return "Group"
	case TypeList:
		return "List"
	case TypeMap:
		return "Map"
	case TypeUnion:
		return "Union"
	case TypeVarIntList:
		return "VarIntList"
	case TypePair:
		return "Pair"
	case TypeTriple:
		return "Triple"
	case TypeFloat:
		return "Float"
	default:
		return fmt.Sprintf("Type(0x%X)", uint8(t))
	}
}

// Pair is a fixed two-element VarInt tuple (Blaze object type).
type Pair struct {
	A uint64
	B uint64
}

// Triple is a fixed three-element VarInt tuple (Blaze object id).
type Triple struct {
	A uint64
	B uint64
	C uint64
}
