// Command svftap streams an SVF file (or stdin) through the parser and
// drives a configurable HAL backend.
package main

import (
	"fmt"
	"os"

	"github.com/doismellburning/svftap/src"
	"github.com/spf13/pflag"
)

func main() {
	var (
		configPath  = pflag.StringP("config", "c", "", "path to svftap.yaml (default: search cwd, config/, /etc/svftap/)")
		transport   = pflag.StringP("transport", "t", "", "override transport: serial, gpio, pty, print")
		device      = pflag.StringP("device", "d", "", "serial device path (transport=serial)")
		baud        = pflag.IntP("baud", "b", 0, "serial baud rate (transport=serial)")
		logLevel    = pflag.StringP("log-level", "l", "", "trace, debug, info, warn, error")
		listDevices = pflag.BoolP("list-devices", "L", false, "list candidate serial JTAG adapters and exit")
		dryRun      = pflag.BoolP("dry-run", "n", false, "force the print/dry-run HAL regardless of config")
	)

	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "svftap -- streaming SVF parser and JTAG sequencer\n\n")
		fmt.Fprintf(os.Stderr, "Usage:\n\tsvftap [flags] file.svf\n\tcat file.svf | svftap [flags]\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		pflag.PrintDefaults()
	}
	pflag.Parse()

	if *listDevices {
		devices, err := svftap.ListSerialDevices()
		if err != nil {
			fmt.Fprintf(os.Stderr, "error listing devices: %v\n", err)
			os.Exit(1)
		}
		for _, d := range devices {
			fmt.Printf("%s\tvendor=%s\tproduct=%s\n", d.DevNode, d.Vendor, d.Product)
		}
		return
	}

	cfg, err := svftap.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error loading config: %v\n", err)
		os.Exit(1)
	}
	if *transport != "" {
		cfg.Transport = *transport
	}
	if *device != "" {
		cfg.SerialDevice = *device
	}
	if *baud != 0 {
		cfg.SerialBaud = *baud
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	if *dryRun {
		cfg.Transport = "print"
	}

	logger := svftap.NewLogger(cfg.LogLevel)

	hal, err := buildHAL(cfg, logger)
	if err != nil {
		logger.Fatalf("building hal: %v", err)
	}

	var input *os.File
	if pflag.NArg() > 0 {
		input, err = os.Open(pflag.Arg(0))
		if err != nil {
			logger.Fatalf("opening %s: %v", pflag.Arg(0), err)
		}
		defer input.Close()
	} else {
		input = os.Stdin
	}

	trace := svftap.NewTraceLog(cfg.TraceDir)
	parser := svftap.NewParser(hal, cfg, logger, trace)

	if err := runStream(parser, input); err != nil {
		logger.Fatalf("parse failed: %v", err)
	}
}

func buildHAL(cfg svftap.Config, logger *svftap.Logger) (svftap.HAL, error) {
	switch cfg.Transport {
	case "serial":
		return svftap.NewSerialHAL(cfg.SerialDevice, cfg.SerialBaud), nil
	case "gpio":
		return svftap.NewGPIOHAL(cfg.GPIOChip, cfg.GPIOPins), nil
	case "pty":
		return svftap.NewPtyHAL(), nil
	case "print", "":
		return svftap.NewPrintHAL(logger), nil
	default:
		return nil, fmt.Errorf("unknown transport %q", cfg.Transport)
	}
}

func runStream(parser *svftap.Parser, input *os.File) error {
	buf := make([]byte, 4096)
	var offset uint32
	for {
		n, readErr := input.Read(buf)
		final := readErr != nil
		status, parseErr := parser.Feed(buf[:n], offset, final)
		if parseErr != nil {
			return parseErr
		}
		_ = status
		offset += uint32(n)
		if final {
			return nil
		}
	}
}
