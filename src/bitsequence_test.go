package svftap

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// feedBitSeq feeds s (minus its terminating ';', which the command
// dispatcher in parser.go always intercepts before it reaches the
// bit-sequence sub-parser -- see resetCommand/resetFull in DESIGN.md)
// directly into bsp.
func feedBitSeq(t *testing.T, bsp *bitSeqParser, seq *BitSequence, cfg Config, s string) {
	t.Helper()
	s = strings.TrimSuffix(s, ";")
	for i := 0; i < len(s); i++ {
		err := bsp.feed(s[i], seq, cfg, nil)
		require.Nil(t, err, "unexpected error at %q in %q", string(s[i]), s)
	}
}

func Test_bitSeqParser_basic_tdi(t *testing.T) {
	cfg := DefaultConfig()
	seq := &BitSequence{}
	bsp := newBitSeqParser()
	bsp.resetCommand(seq)

	feedBitSeq(t, bsp, seq, cfg, "8 TDI(A5);")
	assert.Equal(t, uint32(8), seq.LengthBits)
	assert.Equal(t, byte(0xA5), seq.Buffer[FieldTDI][0])
}

func Test_bitSeqParser_sticky_tdi_across_commands(t *testing.T) {
	cfg := DefaultConfig()
	seq := &BitSequence{}
	bsp := newBitSeqParser()

	bsp.resetCommand(seq)
	feedBitSeq(t, bsp, seq, cfg, "8 TDI(FF);")

	// A second command with the same length and no TDI field should keep
	// the previous TDI content (sticky).
	bsp.resetCommand(seq)
	feedBitSeq(t, bsp, seq, cfg, "8 TDO(00);")

	assert.Equal(t, byte(0xFF), seq.Buffer[FieldTDI][0])
}

func Test_bitSeqParser_tdo_cursor_resets_each_command(t *testing.T) {
	cfg := DefaultConfig()
	seq := &BitSequence{}
	bsp := newBitSeqParser()

	bsp.resetCommand(seq)
	feedBitSeq(t, bsp, seq, cfg, "8 TDO(AB);")
	require.Equal(t, int32(-1), seq.DigitCursor[FieldTDO])

	// Entering a new command without specifying TDO should snap the
	// cursor back to the top (all bits "unspecified" again), not leave
	// it at -1 as if still fully filled.
	bsp.resetCommand(seq)
	assert.Equal(t, int32(int(seq.Allocated[FieldTDO])*2-1), seq.DigitCursor[FieldTDO])
}

func Test_bitSeqParser_mask_smask_default_to_0xFF_on_length_change(t *testing.T) {
	cfg := DefaultConfig()
	seq := &BitSequence{}
	bsp := newBitSeqParser()

	bsp.resetCommand(seq)
	feedBitSeq(t, bsp, seq, cfg, "8 MASK(00);")
	assert.Equal(t, byte(0x00), seq.Buffer[FieldMask][0])

	bsp.resetCommand(seq)
	feedBitSeq(t, bsp, seq, cfg, "16 TDI(0000);")
	// Length changed 8 -> 16: once MASK is (re)opened at the new length
	// it should be pre-filled all 0xFF, matching the reference tool's
	// "default MASK/SMASK is all cares" rule -- bytes not yet written by
	// the two hex digits fed below should still read back as 0xFF.
	bsp.resetCommand(seq)
	feedBitSeq(t, bsp, seq, cfg, "16 MASK(12)")
	assert.Equal(t, byte(0xFF), seq.Buffer[FieldMask][0])
	assert.Equal(t, byte(0x12), seq.Buffer[FieldMask][1])
}

func Test_bitSeqParser_overrun_is_logged_not_fatal(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxAlloc = 1 // force a tiny allocation
	seq := &BitSequence{}
	bsp := newBitSeqParser()
	bsp.resetCommand(seq)

	var lastErr *ParseError
	body := "64 TDI(FFFFFFFFFFFFFFFF)"
	for i := 0; i < len(body); i++ {
		if err := bsp.feed(body[i], seq, cfg, nil); err != nil {
			lastErr = err
		}
	}
	require.NotNil(t, lastErr)
	assert.Equal(t, SeverityOverrun, lastErr.Severity)
	assert.False(t, lastErr.Fatal())
}

func Test_bitSeqParser_unknown_field_name_is_nonfatal(t *testing.T) {
	cfg := DefaultConfig()
	seq := &BitSequence{}
	bsp := newBitSeqParser()
	bsp.resetCommand(seq)

	var sawErr *ParseError
	s := "8 BOGUS(FF)"
	for i := 0; i < len(s); i++ {
		if err := bsp.feed(s[i], seq, cfg, nil); err != nil {
			sawErr = err
		}
	}
	require.NotNil(t, sawErr)
	assert.False(t, sawErr.Fatal())
}
