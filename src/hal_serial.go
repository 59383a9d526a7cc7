package svftap

import (
	"encoding/binary"
	"fmt"

	"github.com/pkg/term"
)

/*-------------------------------------------------------------
 *
 * Purpose:	HAL backend talking to a remote bit-banger (e.g. an
 *		ESP32 running the jtaghw firmware this tool's reference
 *		implementation targeted) over a plain serial line. Framing
 *		is a small fixed header plus the four plan regions; the
 *		remote end is expected to shift TDI out and TDO back and
 *		reply with the sampled bytes.
 *
 *--------------------------------------------------------------*/

// SerialHAL drives JTAG through a serial-attached bit-banger.
type SerialHAL struct {
	device string
	baud   int
	fd     *term.Term
}

func NewSerialHAL(device string, baud int) *SerialHAL {
	return &SerialHAL{device: device, baud: baud}
}

func (h *SerialHAL) Open() error {
	fd, err := term.Open(h.device, term.RawMode)
	if err != nil {
		return fmt.Errorf("serial hal: open %s: %w", h.device, err)
	}
	switch h.baud {
	case 0:
	case 1200, 2400, 4800, 9600, 19200, 38400, 57600, 115200:
		if err := fd.SetSpeed(h.baud); err != nil {
			fd.Close()
			return fmt.Errorf("serial hal: set speed %d: %w", h.baud, err)
		}
	default:
		return fmt.Errorf("serial hal: unsupported speed %d", h.baud)
	}
	h.fd = fd
	return nil
}

// TdiTdo serializes in as a small framed message, writes it, and reads
// back len(in.Data)+2 bytes of sampled TDO, comparing against expect
// filtered by mask when expect is non-nil.
func (h *SerialHAL) TdiTdo(in TransmissionPlan, expect *TransmissionPlan, mask *TransmissionPlan) (int, error) {
	if h.fd == nil {
		return 0, fmt.Errorf("serial hal: not open")
	}

	frame := encodePlanFrame(in)
	if _, err := h.fd.Write(frame); err != nil {
		return 0, fmt.Errorf("serial hal: write: %w", err)
	}

	replyLen := len(in.Data) + 2 // data bytes + header byte + trailer byte
	reply := make([]byte, replyLen)
	n, err := h.fd.Read(reply)
	if err != nil {
		return 0, fmt.Errorf("serial hal: read: %w", err)
	}
	reply = reply[:n]

	if expect == nil {
		return 0, nil
	}
	return compareSampled(reply, *expect, mask), nil
}

func (h *SerialHAL) Close() error {
	if h.fd == nil {
		return nil
	}
	err := h.fd.Close()
	h.fd = nil
	return err
}

// encodePlanFrame packs a TransmissionPlan into header-bits, trailer-bits,
// pad-bits and data length (the last two as big-endian uint32s) followed
// by header byte, trailer byte, pad value and the data bytes -- a minimal
// wire framing, not an attempt to standardize a
// protocol beyond this reference backend's own read/write pair.
func encodePlanFrame(p TransmissionPlan) []byte {
	buf := make([]byte, 0, 10+3+len(p.Data))
	var lens [10]byte
	lens[0] = p.HeaderBits
	lens[1] = p.TrailerBits
	binary.BigEndian.PutUint32(lens[2:6], p.PadBits)
	binary.BigEndian.PutUint32(lens[6:10], uint32(len(p.Data)))
	buf = append(buf, lens[:]...)
	buf = append(buf, p.HeaderByte, p.TrailerByte, p.PadValue)
	buf = append(buf, p.Data...)
	return buf
}

// compareSampled counts the reply bytes that differ from expect's data
// (plus header nibble), skipping any byte/nibble whose companion MASK
// bits are clear. A nil mask treats every bit as a care bit.
func compareSampled(sampled []byte, expect TransmissionPlan, mask *TransmissionPlan) int {
	mismatches := 0
	if len(sampled) > 0 && expect.HeaderBits > 0 {
		careMask := byte(0xF0)
		if mask != nil {
			careMask &= mask.HeaderByte << 4
		}
		if sampled[0]&careMask != (expect.HeaderByte<<4)&careMask {
			mismatches++
		}
	}
	for i, b := range expect.Data {
		idx := i + 1
		if idx >= len(sampled) {
			break
		}
		careMask := byte(0xFF)
		if mask != nil && i < len(mask.Data) {
			careMask = mask.Data[i]
		}
		if sampled[idx]&careMask != b&careMask {
			mismatches++
		}
	}
	return mismatches
}
