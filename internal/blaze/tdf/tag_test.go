package tdf

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMakeTag_KnownVectors(t *testing.T) {
	tests := []struct {
		label string
		want  Tag
	}{
		{"TEST", Tag{0xD2, 0x5C, 0xF4}},
		{"VALU", Tag{0xDA, 0x1B, 0x35}},
		{"IP", Tag{0xA7, 0x00, 0x00}},
		{"A", Tag{0x84, 0x00, 0x00}},
	}
	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			assert.Equal(t, tt.want, MakeTag(tt.label))
		})
	}
}

func TestTag_StringRoundTrip(t *testing.T) {
	for _, label := range []string{"TEST", "VALU", "IP", "A", "MMSC", "GID", "ASRC", "QOSS"} {
		assert.Equal(t, label, MakeTag(label).String(), "label %q", label)
	}
}
