package svftap

/*-------------------------------------------------------------
 *
 * Purpose:	Announce a running svftapd over mDNS/DNS-SD, the same role
 *		DNS-SD played for the reference tool's KISS-over-TCP
 *		service, so a LAN-side JTAG programming station can be
 *		auto-discovered instead of typed in by IP and port.
 *
 *--------------------------------------------------------------*/

import (
	"context"

	"github.com/brutella/dnssd"
)

const dnsSDServiceType = "_svftap._tcp"

// Advertise registers name/port with mDNS/DNS-SD and runs the responder
// in the background until ctx is canceled. Failures are logged and
// non-fatal -- discoverability is a convenience, not a requirement.
func Advertise(ctx context.Context, logger *Logger, name string, port int) {
	if name == "" {
		name = "svftap"
	}

	cfg := dnssd.Config{ //nolint:exhaustruct
		Name: name,
		Type: dnsSDServiceType,
		Port: port,
	}

	sv, err := dnssd.NewService(cfg)
	if err != nil {
		logger.Errorf("dns-sd: failed to create service: %v", err)
		return
	}

	rp, err := dnssd.NewResponder()
	if err != nil {
		logger.Errorf("dns-sd: failed to create responder: %v", err)
		return
	}

	if _, err := rp.Add(sv); err != nil {
		logger.Errorf("dns-sd: failed to add service: %v", err)
		return
	}

	logger.Infof("dns-sd: announcing svftap on port %d as %q", port, name)

	go func() {
		if err := rp.Respond(ctx); err != nil {
			logger.Errorf("dns-sd: responder error: %v", err)
		}
	}()
}
