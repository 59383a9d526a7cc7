package svftap

/*-------------------------------------------------------------
 *
 * Purpose:	Hardware abstraction contract. The parser never talks to
 *		a wire protocol directly -- it hands a TransmissionPlan to
 *		whatever HAL the caller wired up.
 *
 *--------------------------------------------------------------*/

// HAL is implemented by anything capable of driving TCK/TMS/TDI and
// sampling TDO for one TransmissionPlan at a time.
type HAL interface {
	Open() error

	// TdiTdo shifts in.Data (and header/trailer/pad) on TDI. When expect
	// is non-nil (the sticky TDO field had digits specified this
	// command), the bits shifted back on TDO are compared against
	// expect's buffer, filtered by mask (a nil mask means every shifted
	// bit is a care bit, matching the default all-0xFF MASK/SMASK
	// content). TdiTdo reports how many care bits mismatched.
	// mismatches is advisory only -- per the error model, the planner
	// and HAL never fail a parse.
	TdiTdo(in TransmissionPlan, expect *TransmissionPlan, mask *TransmissionPlan) (mismatches int, err error)

	Close() error
}

// NopHAL discards every plan; useful as a default when no transport is
// configured (e.g. pure syntax checking of an SVF file).
type NopHAL struct{}

func (NopHAL) Open() error { return nil }

func (NopHAL) TdiTdo(TransmissionPlan, *TransmissionPlan, *TransmissionPlan) (int, error) {
	return 0, nil
}

func (NopHAL) Close() error { return nil }
