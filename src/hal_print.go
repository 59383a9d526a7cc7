package svftap

import "fmt"

/*-------------------------------------------------------------
 *
 * Purpose:	Human-readable dry-run HAL: logs each plan's four regions
 *		as hex/binary instead of driving any hardware. Direct port
 *		of the reference tool's jtaghw_print.cpp, used here as the
 *		default backend (so an SVF file can be sanity-checked with
 *		no hardware attached).
 *
 *--------------------------------------------------------------*/

// PrintHAL logs every plan it is handed via logger and never reports a
// mismatch, since it never actually samples anything.
type PrintHAL struct {
	logger *Logger
}

func NewPrintHAL(logger *Logger) *PrintHAL {
	return &PrintHAL{logger: logger}
}

func (h *PrintHAL) Open() error {
	h.logger.Info("print hal: open")
	return nil
}

func (h *PrintHAL) TdiTdo(in TransmissionPlan, expect *TransmissionPlan, mask *TransmissionPlan) (int, error) {
	h.logger.Info("print hal: shift", "line", formatPlan(in))
	if expect != nil {
		h.logger.Info("print hal: compare", "expect", formatPlan(*expect))
		if mask != nil {
			h.logger.Info("print hal: compare", "mask", formatPlan(*mask))
		}
	}
	return 0, nil
}

func (h *PrintHAL) Close() error {
	h.logger.Info("print hal: close")
	return nil
}

func formatPlan(p TransmissionPlan) string {
	s := ""
	if p.HeaderBits > 0 {
		s += fmt.Sprintf("0x%01X ", p.HeaderByte&0x0F)
	}
	if len(p.Data) > 0 {
		s += "0x"
		for _, b := range p.Data {
			s += fmt.Sprintf("%02X", b)
		}
		s += " "
	}
	if p.TrailerBits > 0 {
		s += formatBits(p.TrailerByte, p.TrailerBits)
	}
	if p.PadBits&7 != 0 {
		s += formatBits(p.PadValue, uint8(p.PadBits&7))
	}
	if p.PadBits/8 != 0 || p.PadBytes != 0 {
		s += fmt.Sprintf("0x%02X*%d ", p.PadValue, p.PadBits/8+p.PadBytes)
	}
	return s
}

func formatBits(value byte, bits uint8) string {
	if bits >= 4 {
		s := fmt.Sprintf("0x%01X ", value&0x0F)
		if bits > 4 {
			s += "0b"
			v := value
			for i := uint8(4); i < bits; i++ {
				s += fmt.Sprintf("%d", (v>>7)&1)
				v <<= 1
			}
			s += " "
		}
		return s
	}
	s := "0b"
	v := value
	for i := uint8(0); i < bits; i++ {
		s += fmt.Sprintf("%d", (v>>7)&1)
		v <<= 1
	}
	return s + " "
}
