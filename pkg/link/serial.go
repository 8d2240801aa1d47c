package link

import (
	"context"
	"io"

	"go.bug.st/serial"
)

func init() {
	Register("serial", OpenSerial)
}

// OpenSerial opens a serial port, e.g. the RFCOMM device bound to the
// sensor platform.
func OpenSerial(_ context.Context, ep Endpoint) (io.ReadWriteCloser, error) {
	port, err := serial.Open(ep.Address, &serial.Mode{
		BaudRate: ep.BaudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	})
	if err != nil {
		return nil, err
	}
	if ep.ReadTimeout > 0 {
		if err := port.SetReadTimeout(ep.ReadTimeout); err != nil {
			port.Close()
			return nil, err
		}
	}
	return port, nil
}

// SerialPorts lists the serial ports of the system.
func SerialPorts() ([]string, error) {
	return serial.GetPortsList()
}
