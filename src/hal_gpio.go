package svftap

import (
	"fmt"
	"time"

	"github.com/warthog618/go-gpiocdev"
)

/*-------------------------------------------------------------
 *
 * Purpose:	Direct GPIO-chardev bit-banging of TCK/TMS/TDI, sampling
 *		TDO, for wiring an SBC straight to a JTAG header with no
 *		intermediate microcontroller. go-gpiocdev is declared, but
 *		never called, in the reference tool's dependency list
 *		(meant for a GPIO PTT line that was never wired up); this
 *		is its first real use.
 *
 *--------------------------------------------------------------*/

// GPIOHAL drives TCK/TMS/TDI/TDO as four individually requested GPIO
// lines on chip.
type GPIOHAL struct {
	chip string
	pins GPIOPinMap
	tck  *gpiocdev.Line
	tms  *gpiocdev.Line
	tdi  *gpiocdev.Line
	tdo  *gpiocdev.Line
}

func NewGPIOHAL(chip string, pins GPIOPinMap) *GPIOHAL {
	return &GPIOHAL{chip: chip, pins: pins}
}

func (h *GPIOHAL) Open() error {
	var err error
	h.tck, err = gpiocdev.RequestLine(h.chip, h.pins.TCK, gpiocdev.AsOutput(0))
	if err != nil {
		return fmt.Errorf("gpio hal: request tck: %w", err)
	}
	h.tms, err = gpiocdev.RequestLine(h.chip, h.pins.TMS, gpiocdev.AsOutput(0))
	if err != nil {
		return fmt.Errorf("gpio hal: request tms: %w", err)
	}
	h.tdi, err = gpiocdev.RequestLine(h.chip, h.pins.TDI, gpiocdev.AsOutput(0))
	if err != nil {
		return fmt.Errorf("gpio hal: request tdi: %w", err)
	}
	h.tdo, err = gpiocdev.RequestLine(h.chip, h.pins.TDO, gpiocdev.AsInput)
	if err != nil {
		return fmt.Errorf("gpio hal: request tdo: %w", err)
	}
	return nil
}

// TdiTdo bit-bangs the full plan (header, data, trailer, pad) MSB-first
// on TDI with a rising TCK edge per bit, sampling TDO just before each
// rising edge, and compares the sample against expect filtered by mask
// when expect is present.
func (h *GPIOHAL) TdiTdo(in TransmissionPlan, expect *TransmissionPlan, mask *TransmissionPlan) (int, error) {
	if h.tck == nil {
		return 0, fmt.Errorf("gpio hal: not open")
	}

	sampled := make([]bool, 0, int(in.TotalBits()))

	shiftByte := func(b byte, bits int) error {
		for i := 0; i < bits; i++ {
			bit := (b >> (7 - i)) & 1
			if err := h.tdi.SetValue(int(bit)); err != nil {
				return err
			}
			v, err := h.tdo.Value()
			if err != nil {
				return err
			}
			sampled = append(sampled, v != 0)
			if err := h.tck.SetValue(1); err != nil {
				return err
			}
			time.Sleep(time.Microsecond)
			if err := h.tck.SetValue(0); err != nil {
				return err
			}
		}
		return nil
	}

	if in.HeaderBits > 0 {
		if err := shiftByte(in.HeaderByte<<4, int(in.HeaderBits)); err != nil {
			return 0, err
		}
	}
	for _, b := range in.Data {
		if err := shiftByte(b, 8); err != nil {
			return 0, err
		}
	}
	if in.TrailerBits > 0 {
		if err := shiftByte(in.TrailerByte<<4, int(in.TrailerBits)); err != nil {
			return 0, err
		}
	}
	for i := uint32(0); i < in.PadBits+8*in.PadBytes; i++ {
		if err := shiftByte(in.PadValue, 1); err != nil {
			return 0, err
		}
	}

	if expect == nil {
		return 0, nil
	}
	return compareSampledBits(sampled, *expect, mask), nil
}

// compareSampledBits counts the sampled bits (covering the data region
// only, matching the original's TDI-overwrite/TDO-compare semantics)
// that differ from expect's data, skipping any bit whose companion MASK
// bit is clear. A nil mask treats every bit as a care bit.
func compareSampledBits(sampled []bool, expect TransmissionPlan, mask *TransmissionPlan) int {
	mismatches := 0
	idx := 0
	if expect.HeaderBits > 0 {
		idx += int(expect.HeaderBits)
	}
	for byteIdx, b := range expect.Data {
		for bit := 0; bit < 8; bit++ {
			if idx >= len(sampled) {
				return mismatches
			}
			if careBit(mask, byteIdx, bit) {
				want := (b>>(7-bit))&1 != 0
				if sampled[idx] != want {
					mismatches++
				}
			}
			idx++
		}
	}
	return mismatches
}

// careBit reports whether byteIdx/bit (MSB-first within the byte) of the
// data region is a care bit: set in mask.Data, or always true when mask
// is nil or doesn't cover that byte (the default all-cares MASK).
func careBit(mask *TransmissionPlan, byteIdx, bit int) bool {
	if mask == nil || byteIdx >= len(mask.Data) {
		return true
	}
	return (mask.Data[byteIdx]>>(7-bit))&1 != 0
}

func (h *GPIOHAL) Close() error {
	for _, l := range []*gpiocdev.Line{h.tck, h.tms, h.tdi, h.tdo} {
		if l != nil {
			l.Close()
		}
	}
	return nil
}
