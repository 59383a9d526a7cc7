// Command svftapd serves SVF parsing over a TCP listener and advertises
// itself via mDNS/DNS-SD so it can be auto-discovered on the LAN.
package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"

	"github.com/doismellburning/svftap/src"
	"github.com/spf13/pflag"
)

func main() {
	var (
		configPath = pflag.StringP("config", "c", "", "path to svftap.yaml")
		listen     = pflag.StringP("listen", "L", "", "override listen address, e.g. :2542")
		name       = pflag.StringP("name", "N", "svftap", "DNS-SD service name")
		noAdvert   = pflag.BoolP("no-advertise", "q", false, "disable DNS-SD advertisement")
	)
	pflag.Parse()

	cfg, err := svftap.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error loading config: %v\n", err)
		os.Exit(1)
	}
	if *listen != "" {
		cfg.ListenAddr = *listen
	}
	if *noAdvert {
		cfg.AdvertiseDNSSD = false
	}

	logger := svftap.NewLogger(cfg.LogLevel)

	ln, err := net.Listen("tcp", cfg.ListenAddr)
	if err != nil {
		logger.Fatalf("listen %s: %v", cfg.ListenAddr, err)
	}
	defer ln.Close()

	if cfg.AdvertiseDNSSD {
		port := portOf(ln.Addr().String())
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		svftap.Advertise(ctx, logger, *name, port)
	}

	logger.Infof("svftapd listening on %s", ln.Addr())

	for {
		conn, err := ln.Accept()
		if err != nil {
			logger.Errorf("accept: %v", err)
			continue
		}
		go serveConn(conn, cfg, logger)
	}
}

func serveConn(conn net.Conn, cfg svftap.Config, logger *svftap.Logger) {
	defer conn.Close()

	hal := svftap.NewPrintHAL(logger)
	trace := svftap.NewTraceLog(cfg.TraceDir)
	parser := svftap.NewParser(hal, cfg, logger, trace)

	buf := make([]byte, 4096)
	var offset uint32
	for {
		n, err := conn.Read(buf)
		final := err != nil
		if _, parseErr := parser.Feed(buf[:n], offset, final); parseErr != nil {
			logger.Errorf("connection %s: %v", conn.RemoteAddr(), parseErr)
			return
		}
		offset += uint32(n)
		if final {
			return
		}
	}
}

func portOf(addr string) int {
	idx := strings.LastIndex(addr, ":")
	if idx < 0 {
		return 0
	}
	p, _ := strconv.Atoi(addr[idx+1:])
	return p
}
