// Package svftap implements a streaming parser for Serial Vector Format
// (SVF) and a bit-exact JTAG sequencer built on top of it.
package svftap

// TapState names the 1149.1 TAP state machine's states. Only IDLE, RESET,
// DRPAUSE and IRPAUSE are legal ENDDR/ENDIR/RUNTEST ENDSTATE targets, but
// all of them are legal STATE path waypoints.
type TapState int

const (
	TapUnknown TapState = iota
	TapReset
	TapIdle
	TapDRSelect
	TapDRCapture
	TapDRShift
	TapDRExit1
	TapDRPause
	TapDRExit2
	TapDRUpdate
	TapIRSelect
	TapIRCapture
	TapIRShift
	TapIRExit1
	TapIRPause
	TapIRExit2
	TapIRUpdate
)

var tapStateNames = map[string]TapState{
	"RESET":     TapReset,
	"IDLE":      TapIdle,
	"DRSELECT":  TapDRSelect,
	"DRCAPTURE": TapDRCapture,
	"DRSHIFT":   TapDRShift,
	"DREXIT1":   TapDRExit1,
	"DRPAUSE":   TapDRPause,
	"DREXIT2":   TapDRExit2,
	"DRUPDATE":  TapDRUpdate,
	"IRSELECT":  TapIRSelect,
	"IRCAPTURE": TapIRCapture,
	"IRSHIFT":   TapIRShift,
	"IREXIT1":   TapIRExit1,
	"IRPAUSE":   TapIRPause,
	"IREXIT2":   TapIRExit2,
	"IRUPDATE":  TapIRUpdate,
}

// lookupTapState returns the state for name (already upper-cased by the
// lexer) and whether it was recognized at all.
func lookupTapState(name string) (TapState, bool) {
	s, ok := tapStateNames[name]
	return s, ok
}

// endStateLegal reports whether s is a legal ENDDR/ENDIR/RUNTEST ENDSTATE
// target. Only these four are accepted, per the original tool's
// restriction -- a much larger set of TAP states exists but only these are
// meaningful stopping points for a shift sequence.
func endStateLegal(s TapState) bool {
	switch s {
	case TapIdle, TapReset, TapDRPause, TapIRPause:
		return true
	default:
		return false
	}
}

func (s TapState) String() string {
	for name, v := range tapStateNames {
		if v == s {
			return name
		}
	}
	return "UNKNOWN"
}
