package devices

import "io"

// Serial represents a serial/UART connection. It is implemented by machine.UART
// in TinyGo, and can be implemented by Linux serial drivers for Raspberry Pi.
type Serial interface {
	io.Reader
	io.Writer

	// Buffered returns the number of bytes currently in the receive buffer.
	Buffered() int
}

// SerialConfig configures a platform serial port opened via NewSerialWithConfig.
type SerialConfig struct {
	BaudRate int

	// EnableBuffering turns on Buffered() support via an ioctl/DCB query.
	// Left off by default: some downstream devices (e.g. Arduino-style
	// microcontrollers) expect immediate, unbuffered communication and
	// get confused by a driver that holds bytes back.
	EnableBuffering bool
}

// DefaultSerialConfig returns the baseline 115200-8N1 configuration with
// buffering disabled.
func DefaultSerialConfig() SerialConfig {
	return SerialConfig{BaudRate: 115200}
}
