package svftap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func Test_planBitSequence_region_sum_matches_length(t *testing.T) {
	// P1: header_bits + 8*data_bytes + trailer_bits + pad_bits + 8*pad_bytes
	// always equals the command's declared length, for any fully-specified
	// TDI field of any bit length.
	rapid.Check(t, func(rt *rapid.T) {
		length := rapid.IntRange(1, 256).Draw(rt, "length")
		digits := (length + 3) / 4
		hex := rapid.SliceOfN(rapid.SampledFrom([]byte("0123456789ABCDEF")), digits, digits).Draw(rt, "hex")

		cfg := DefaultConfig()
		seq := &BitSequence{}
		bsp := newBitSeqParser()
		bsp.resetCommand(seq)

		// The terminating ';' is never fed here: the command dispatcher
		// in parser.go always intercepts it before it would reach the
		// bit-sequence sub-parser.
		feed := func(s string) {
			for i := 0; i < len(s); i++ {
				if err := bsp.feed(s[i], seq, cfg, nil); err != nil {
					rt.Fatalf("unexpected error feeding %q: %v", s, err)
				}
			}
		}
		feed(itoa(length))
		feed(" TDI(")
		feed(string(hex))
		feed(")")

		require.Equal(rt, int32(-1), seq.DigitCursor[FieldTDI])

		plan := planField(FieldTDI, seq, seq.DigitCursor[FieldTDI])
		assert.Equal(rt, uint32(length), plan.TotalBits())
	})
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	digits := []byte{}
	for n > 0 {
		digits = append([]byte{byte('0' + n%10)}, digits...)
		n /= 10
	}
	return string(digits)
}

func Test_planField_byte_aligned_no_header_no_trailer(t *testing.T) {
	cfg := DefaultConfig()
	seq := &BitSequence{}
	bsp := newBitSeqParser()
	bsp.resetCommand(seq)

	s := "16 TDI(ABCD)"
	for i := 0; i < len(s); i++ {
		if err := bsp.feed(s[i], seq, cfg, nil); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	plan := planField(FieldTDI, seq, seq.DigitCursor[FieldTDI])
	assert.Equal(t, uint8(0), plan.HeaderBits)
	assert.Equal(t, uint8(0), plan.TrailerBits)
	assert.Equal(t, 2, len(plan.Data))
	assert.Equal(t, uint32(16), plan.TotalBits())
}
