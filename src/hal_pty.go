package svftap

import (
	"fmt"
	"os"

	"github.com/creack/pty"
)

/*-------------------------------------------------------------
 *
 * Purpose:	Loopback HAL (transport "pty") for local testing:
 *		opens a pty pair, writes the TDI plan to the master side,
 *		and reads back whatever a fixture (or a human) wrote to
 *		the slave side as the TDO capture. Grounded on kiss.go's
 *		pty.Open() pseudo-terminal usage.
 *
 *--------------------------------------------------------------*/

// PtyHAL is a HAL backed by a pseudo-terminal pair; Slave() exposes the
// other end so a test fixture can feed back TDO data.
type PtyHAL struct {
	master *os.File
	slave  *os.File
}

func NewPtyHAL() *PtyHAL {
	return &PtyHAL{}
}

func (h *PtyHAL) Open() error {
	master, slave, err := pty.Open()
	if err != nil {
		return fmt.Errorf("pty hal: open: %w", err)
	}
	h.master = master
	h.slave = slave
	return nil
}

// Slave returns the pty's slave end, for a test fixture to read the
// forwarded TDI bytes from and write simulated TDO bytes to.
func (h *PtyHAL) Slave() *os.File {
	return h.slave
}

func (h *PtyHAL) TdiTdo(in TransmissionPlan, expect *TransmissionPlan, mask *TransmissionPlan) (int, error) {
	if h.master == nil {
		return 0, fmt.Errorf("pty hal: not open")
	}
	frame := encodePlanFrame(in)
	if _, err := h.master.Write(frame); err != nil {
		return 0, fmt.Errorf("pty hal: write: %w", err)
	}
	if expect == nil {
		return 0, nil
	}
	reply := make([]byte, len(in.Data)+2)
	n, err := h.master.Read(reply)
	if err != nil {
		return 0, fmt.Errorf("pty hal: read: %w", err)
	}
	return compareSampled(reply[:n], *expect, mask), nil
}

func (h *PtyHAL) Close() error {
	var err error
	if h.slave != nil {
		err = h.slave.Close()
	}
	if h.master != nil {
		if mErr := h.master.Close(); err == nil {
			err = mErr
		}
	}
	return err
}
