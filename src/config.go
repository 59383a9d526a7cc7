package svftap

/*-------------------------------------------------------------
 *
 * Purpose:	Loadable configuration. CMDS_MAX_CHARS, BF_NAME_MAXLEN,
 *		RUNTEST_NAME_MAXLEN and TAP_NAME_MAXLEN stay compile-time
 *		constants (see commands.go, bitsequence.go, runtime.go);
 *		only MAX_ALLOC, REVERSE_NIBBLE and the ambient/transport
 *		knobs below are loaded from YAML, following the search-path
 *		convention the reference tool uses for tocalls.yaml.
 *
 *--------------------------------------------------------------*/

import (
	"os"

	"gopkg.in/yaml.v3"
)

// defaultMaxAlloc matches the reference implementation's MAX_alloc.
const defaultMaxAlloc = 30000

// GPIOPinMap names the four GPIO-chardev lines a GPIOHAL bit-bangs,
// defaulting to the pin numbers the ESP32 reference HAL used.
type GPIOPinMap struct {
	TCK int `yaml:"tck"`
	TMS int `yaml:"tms"`
	TDI int `yaml:"tdi"`
	TDO int `yaml:"tdo"`
}

var defaultGPIOPins = GPIOPinMap{TCK: 14, TMS: 15, TDI: 13, TDO: 12}

// Config is the user-editable portion of a parser's runtime behavior.
type Config struct {
	MaxAlloc       uint32     `yaml:"max_alloc"`
	ReverseNibble  bool       `yaml:"reverse_nibble"`
	Transport      string     `yaml:"transport"` // "serial", "gpio", "pty", "print"
	SerialDevice   string     `yaml:"serial_device"`
	SerialBaud     int        `yaml:"serial_baud"`
	GPIOChip       string     `yaml:"gpio_chip"`
	GPIOPins       GPIOPinMap `yaml:"gpio_pins"`
	TraceDir       string     `yaml:"trace_dir"`
	LogLevel       string     `yaml:"log_level"`
	AdvertiseDNSSD bool       `yaml:"advertise_dnssd"`
	ListenAddr     string     `yaml:"listen_addr"`
}

// DefaultConfig returns the configuration used when no file is found.
func DefaultConfig() Config {
	return Config{
		MaxAlloc:     defaultMaxAlloc,
		Transport:    "print",
		SerialBaud:   115200,
		GPIOChip:     "gpiochip0",
		GPIOPins:     defaultGPIOPins,
		TraceDir:     "",
		LogLevel:     "info",
		ListenAddr:   ":2542", // arbitrary unassigned port, not an IANA svftap registration
	}
}

// searchLocations mirrors the reference tool's tocalls.yaml search order:
// current directory first, then a couple of conventional install paths.
var searchLocations = []string{
	"svftap.yaml",
	"config/svftap.yaml",
	"/etc/svftap/svftap.yaml",
}

// LoadConfig reads the first readable file among path (if non-empty) or
// searchLocations, overlaying it onto DefaultConfig. A missing file at an
// explicit path is an error; a missing file during search is not.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, err
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, err
		}
		return cfg, nil
	}

	for _, candidate := range searchLocations {
		data, err := os.ReadFile(candidate)
		if err != nil {
			continue
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, err
		}
		return cfg, nil
	}

	return cfg, nil
}
