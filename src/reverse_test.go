package svftap

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_reverseNibble_table(t *testing.T) {
	cases := map[byte]byte{
		0x0: 0x0,
		0x1: 0x8,
		0x8: 0x1,
		0xF: 0xF,
		0x3: 0xC,
	}
	for in, want := range cases {
		assert.Equal(t, want, reverseNibble(in))
	}
}

func Test_reverseNibble_involution(t *testing.T) {
	for i := byte(0); i < 16; i++ {
		assert.Equal(t, i, reverseNibble(reverseNibble(i)))
	}
}
