package svftap

/*-------------------------------------------------------------
 *
 * Purpose:	Enumerate attached serial devices so a caller (cmd/svftap
 *		--list-devices) can offer candidate JTAG-adapter serial
 *		ports instead of requiring the device path to be typed in.
 *		go-udev is declared, but unused, in the reference tool's
 *		dependency list; this is its first real call site.
 *
 *--------------------------------------------------------------*/

import (
	"github.com/jochenvg/go-udev"
)

// SerialDevice describes one tty-subsystem device node discovered via
// udev, with the vendor/product identifiers (when available) used to
// recognize common USB-serial JTAG adapters (FTDI, CP210x, CH340, ...).
type SerialDevice struct {
	DevNode string
	Vendor  string
	Product string
}

// ListSerialDevices enumerates udev's "tty" subsystem. It returns the
// udev error when the subsystem match or the enumeration fails; device
// listing is advisory for the CLI, never required for parsing.
func ListSerialDevices() ([]SerialDevice, error) {
	u := udev.Udev{}
	enum := u.NewEnumerate()

	if err := enum.AddMatchSubsystem("tty"); err != nil {
		return nil, err
	}

	devices, err := enum.Devices()
	if err != nil {
		return nil, err
	}

	var out []SerialDevice
	for _, d := range devices {
		node := d.Devnode()
		if node == "" {
			continue
		}
		out = append(out, SerialDevice{
			DevNode: node,
			Vendor:  d.PropertyValue("ID_VENDOR_ID"),
			Product: d.PropertyValue("ID_MODEL_ID"),
		})
	}
	return out, nil
}
