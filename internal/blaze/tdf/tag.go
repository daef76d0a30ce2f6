package tdf

// Tag is a canonicalized field label: up to four ASCII characters packed
// six bits each into three bytes. The wire form is these three bytes
// followed by the type code.
type Tag [3]byte

// MakeTag packs a 1-4 character label. Characters are taken from the
// 6-bit alphabet starting at 0x20; anything shorter than four characters
// pads with zero bits, which decode back to nothing.
func MakeTag(label string) Tag {
	var packed uint32
	for i := 0; i < 4; i++ {
		packed <<= 6
		if i < len(label) {
			packed |= uint32(label[i]-0x20) & 0x3F
		}
	}
	return Tag{byte(packed >> 16), byte(packed >> 8), byte(packed)}
}

// String runs the inverse permutation, dropping zero (padding) groups.
func (t Tag) String() string {
	packed := uint32(t[0])<<16 | uint32(t[1])<<8 | uint32(t[2])
	out := make([]byte, 0, 4)
	for shift := 18; shift >= 0; shift -= 6 {
		v := byte(packed>>shift) & 0x3F
		if v != 0 {
			out = append(out, v+0x20)
		}
	}
	return string(out)
}
