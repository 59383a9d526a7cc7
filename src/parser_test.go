package svftap

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

// spyHAL records every TdiTdo call it's given, for assertions, and never
// fails -- it stands in for real transport in these tests.
type spyHAL struct {
	opened bool
	closed bool
	calls  []TransmissionPlan
}

func (s *spyHAL) Open() error { s.opened = true; return nil }

func (s *spyHAL) TdiTdo(in TransmissionPlan, _ *TransmissionPlan, _ *TransmissionPlan) (int, error) {
	s.calls = append(s.calls, in)
	return 0, nil
}

func (s *spyHAL) Close() error { s.closed = true; return nil }

func feedAll(t *testing.T, p *Parser, data string) {
	t.Helper()
	n, err := p.Feed([]byte(data), 0, true)
	require.NotEqual(t, int8(-1), n, "unexpected fatal error: %v", err)
}

func Test_Parser_simple_sir_drives_hal(t *testing.T) {
	hal := &spyHAL{}
	cfg := DefaultConfig()
	p := NewParser(hal, cfg, nil, nil)

	feedAll(t, p, "SIR 8 TDI(A5);")

	require.True(t, hal.opened)
	require.True(t, hal.closed)
	require.Len(t, hal.calls, 1)
	assert.Equal(t, byte(0xA5), hal.calls[0].Data[0])
}

func Test_Parser_comments_are_elided(t *testing.T) {
	hal := &spyHAL{}
	p := NewParser(hal, DefaultConfig(), nil, nil)

	feedAll(t, p, "SIR 8 TDI(A5); ! a trailing comment\n")

	require.Len(t, hal.calls, 1)
	assert.Equal(t, byte(0xA5), hal.calls[0].Data[0])
}

func Test_Parser_unknown_command_is_nonfatal_and_resyncs(t *testing.T) {
	hal := &spyHAL{}
	p := NewParser(hal, DefaultConfig(), nil, nil)

	n, err := p.Feed([]byte("BOGUS 1 2 3; SIR 8 TDI(FF);"), 0, true)
	require.NotEqual(t, int8(-1), n, "unexpected fatal: %v", err)
	require.Len(t, hal.calls, 1)
	assert.Equal(t, byte(0xFF), hal.calls[0].Data[0])
}

func Test_Parser_endstate_runtest_state_recorded(t *testing.T) {
	hal := &spyHAL{}
	p := NewParser(hal, DefaultConfig(), nil, nil)

	feedAll(t, p, "ENDIR IDLE; ENDDR IDLE; STATE RESET IDLE; RUNTEST IDLE 100 TCK ENDSTATE IDLE;")

	assert.Equal(t, TapIdle, p.state.EndState[EndIR])
	assert.Equal(t, TapIdle, p.state.EndState[EndDR])
	require.NotEmpty(t, p.state.StatePath)
	assert.Equal(t, TapIdle, p.state.StatePath[len(p.state.StatePath)-1])
}

func Test_Parser_frequency_value_recorded(t *testing.T) {
	hal := &spyHAL{}
	p := NewParser(hal, DefaultConfig(), nil, nil)

	feedAll(t, p, "FREQUENCY 1.0E6 HZ;")

	assert.InDelta(t, 1.0e6, p.state.FrequencyHz, 1.0)
}

func Test_Parser_trst_and_piomap_are_parsed_but_inert(t *testing.T) {
	hal := &spyHAL{}
	p := NewParser(hal, DefaultConfig(), nil, nil)

	n, err := p.Feed([]byte("TRST ON; PIOMAP (PIN1 TCK);"), 0, true)
	require.NotEqual(t, int8(-1), n, "unexpected fatal: %v", err)
	assert.Empty(t, hal.calls)
}

// svfProgram is a small but non-trivial fixed program used by the
// packet-boundary and case-invariance property checks below.
const svfProgram = "TRST ON;\n" +
	"ENDIR IDLE; ENDDR IDLE;\n" +
	"STATE RESET IDLE;\n" +
	"SIR 8 TDI(1C);\n" +
	"SDR 32 TDI(DEADBEEF) TDO(00000000) MASK(FFFFFFFF);\n" +
	"RUNTEST IDLE 100 TCK ENDSTATE IDLE;\n"

func runProgram(program string, splits []int) []TransmissionPlan {
	hal := &spyHAL{}
	p := NewParser(hal, DefaultConfig(), nil, nil)

	data := []byte(program)
	var offset uint32
	start := 0
	for _, cut := range splits {
		if cut <= start || cut > len(data) {
			continue
		}
		p.Feed(data[start:cut], offset, false)
		offset += uint32(cut - start)
		start = cut
	}
	p.Feed(data[start:], offset, true)
	return hal.calls
}

// Packet-boundary invariance: splitting the same byte stream at
// arbitrary packet boundaries must not change the sequence of HAL calls
// produced.
func Test_Parser_packet_boundary_invariance(t *testing.T) {
	baseline := runProgram(svfProgram, nil)
	require.NotEmpty(t, baseline)

	rapid.Check(t, func(rt *rapid.T) {
		n := len(svfProgram)
		numCuts := rapid.IntRange(0, n).Draw(rt, "numCuts")
		cuts := make([]int, numCuts)
		for i := range cuts {
			cuts[i] = rapid.IntRange(1, n-1).Draw(rt, "cut")
		}

		got := runProgram(svfProgram, cuts)
		require.Equal(rt, len(baseline), len(got))
		for i := range baseline {
			assert.Equal(rt, baseline[i].Data, got[i].Data)
			assert.Equal(rt, baseline[i].HeaderBits, got[i].HeaderBits)
			assert.Equal(rt, baseline[i].TrailerBits, got[i].TrailerBits)
		}
	})
}

// Comment-elision idempotence: inserting comments anywhere outside a
// token must not change the resulting HAL call sequence.
func Test_Parser_comment_elision_idempotence(t *testing.T) {
	baseline := runProgram(svfProgram, nil)

	withComments := strings.ReplaceAll(svfProgram, "\n", " ! trailing note\n")
	got := runProgram(withComments, nil)

	require.Equal(t, len(baseline), len(got))
	for i := range baseline {
		assert.Equal(t, baseline[i].Data, got[i].Data)
	}
}

// Case invariance: the lexer upper-cases everything outside of comments, so a
// lower-cased program must behave identically to its canonical form.
func Test_Parser_case_invariance(t *testing.T) {
	baseline := runProgram(svfProgram, nil)
	got := runProgram(strings.ToLower(svfProgram), nil)

	require.Equal(t, len(baseline), len(got))
	for i := range baseline {
		assert.Equal(t, baseline[i].Data, got[i].Data)
	}
}
