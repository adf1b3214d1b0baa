package link

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"

	"go.bug.st/serial"
)

// Config specifies the serial link.
type Config struct {
	// Device is the serial device path; empty selects the simulated link.
	Device string
	Baud   int
}

var defaultConfig = Config{
	Baud: 115200,
}

func init() {
	if val := os.Getenv("LINEBOT_SERIAL"); val != "" {
		defaultConfig.Device = val
	}
	if val := os.Getenv("LINEBOT_BAUD"); val != "" {
		if baud, err := strconv.Atoi(val); err == nil {
			defaultConfig.Baud = baud
		}
	}
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.StringVar(&defaultConfig.Device, "serial", defaultConfig.Device, "Serial device")
	flag.IntVar(&defaultConfig.Baud, "baud", defaultConfig.Baud, "Serial baud rate")
}

// Default gets the default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a Config with default configurations.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// Open opens the serial port as 8N1 at baud.
var Open = func(device string, baud int) (io.ReadWriteCloser, error) {
	port, err := serial.Open(device, &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	})
	if err != nil {
		return nil, fmt.Errorf("open serial %s: %w", device, err)
	}
	return port, nil
}

// Open opens the configured device.
func (c *Config) Open() (io.ReadWriteCloser, error) {
	if c.Device == "" {
		return nil, fmt.Errorf("serial device must be specified")
	}
	return Open(c.Device, c.Baud)
}

// Ports lists the serial devices present on the system.
func Ports() ([]string, error) {
	return serial.GetPortsList()
}

type pipeEnd struct {
	io.Reader
	io.Writer
	closers []io.Closer
}

func (p *pipeEnd) Close() error {
	for _, c := range p.closers {
		c.Close()
	}
	return nil
}

// Pipe creates an in-memory full-duplex link. Bytes written to one end
// are read from the other.
func Pipe() (io.ReadWriteCloser, io.ReadWriteCloser) {
	ar, bw := io.Pipe()
	br, aw := io.Pipe()
	return &pipeEnd{Reader: ar, Writer: aw, closers: []io.Closer{ar, aw}},
		&pipeEnd{Reader: br, Writer: bw, closers: []io.Closer{br, bw}}
}
