package transport

import (
	"fmt"
	"time"

	"go.bug.st/serial"
)

// SerialOptions configures OpenSerial.
type SerialOptions struct {
	// BaudRate defaults to DefaultBaudRate.
	BaudRate int
	// RTS and DTR set the initial modem output lines. Some interfaces draw power from them.
	RTS bool
	DTR bool
}

type serialPort struct {
	serial.Port
	name string
}

// OpenSerial opens the serial device name with 8 data bits, no parity and 2 stop bits.
func OpenSerial(name string, opts SerialOptions) (Port, error) {
	baud := opts.BaudRate
	if baud <= 0 {
		baud = DefaultBaudRate
	}

	mode := &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.TwoStopBits,
		InitialStatusBits: &serial.ModemOutputBits{
			RTS: opts.RTS,
			DTR: opts.DTR,
		},
	}

	port, err := serial.Open(name, mode)
	if err != nil {
		return nil, fmt.Errorf("transport: open serial port %s: %w", name, err)
	}

	return &serialPort{Port: port, name: name}, nil
}

func (p *serialPort) SetReadTimeout(d time.Duration) error {
	if d <= 0 {
		return p.Port.SetReadTimeout(serial.NoTimeout)
	}

	return p.Port.SetReadTimeout(d)
}

func (p *serialPort) Write(b []byte) (int, error) {
	written := 0
	for written < len(b) {
		n, err := p.Port.Write(b[written:])
		written += n
		if err != nil {
			return written, err
		}
	}

	return written, nil
}

func (p *serialPort) String() string {
	return p.name
}

// ListSerialPorts returns the names of the serial devices present on the system.
func ListSerialPorts() ([]string, error) {
	return serial.GetPortsList()
}
