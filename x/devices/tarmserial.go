//go:build !tinygo

package devices

import (
	"time"

	"github.com/tarm/serial"
)

// TarmSerial adapts github.com/tarm/serial's cross-platform port to the
// Serial interface. Unlike LinuxSerial/WindowsSerial (raw termios/DCB
// control, useful for devices that need exact baud/line control such as
// the LD06 LIDAR), this is the general-purpose backing for links that just
// need a line-delimited byte stream with a short read timeout, such as the
// downstream motor controller.
type TarmSerial struct {
	port   *serial.Port
	config SerialConfig
}

// NewTarmSerial opens device at the given baud rate with a short read
// timeout (the tick loop must never block waiting on the motor link; §5
// requires serial reads to use timeouts of 5ms or less).
func NewTarmSerial(device string, baudRate int, readTimeout time.Duration) (*TarmSerial, error) {
	cfg := &serial.Config{
		Name:        device,
		Baud:        baudRate,
		ReadTimeout: readTimeout,
	}
	port, err := serial.OpenPort(cfg)
	if err != nil {
		return nil, err
	}
	return &TarmSerial{
		port:   port,
		config: SerialConfig{BaudRate: baudRate},
	}, nil
}

// Read implements Serial.
func (t *TarmSerial) Read(p []byte) (int, error) {
	return t.port.Read(p)
}

// Write implements Serial.
func (t *TarmSerial) Write(p []byte) (int, error) {
	return t.port.Write(p)
}

// Buffered always reports 0: tarm/serial exposes no receive-buffer query,
// and the motor protocol reads a full line at a time regardless.
func (t *TarmSerial) Buffered() int { return 0 }

// Close closes the underlying port.
func (t *TarmSerial) Close() error {
	return t.port.Close()
}
