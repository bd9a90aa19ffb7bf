package hw

import (
	"fmt"

	"github.com/golang/glog"
	"go.bug.st/serial"
)

// DefaultBaudRate is the radio UART speed.
const DefaultBaudRate = 460800

// SerialMode is the radio UART framing, 8E1.
func SerialMode(baud int) *serial.Mode {
	if baud <= 0 {
		baud = DefaultBaudRate
	}
	return &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.EvenParity,
		StopBits: serial.OneStopBit,
	}
}

// OpenSerial opens the radio UART.
func OpenSerial(port string, baud int) (serial.Port, error) {
	mode := SerialMode(baud)
	p, err := serial.Open(port, mode)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", port, err)
	}
	glog.Infof("serial %s opened at %d baud", port, mode.BaudRate)
	return p, nil
}

// SerialPorts lists the serial ports present.
func SerialPorts() ([]string, error) {
	return serial.GetPortsList()
}
