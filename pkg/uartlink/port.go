// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package uartlink

import (
	"errors"
	"io"
	"time"

	"go.bug.st/serial"
	"go.bug.st/serial/enumerator"
)

// Port is the subset of a serial device the link drives.
// serial.Port satisfies it; the WebSocket bridge adapts to it.
type Port interface {
	io.ReadWriteCloser

	// Drain blocks until all written bytes have left the output buffer
	Drain() error

	// ResetInputBuffer discards received bytes not yet read
	ResetInputBuffer() error

	// ResetOutputBuffer discards written bytes not yet transmitted
	ResetOutputBuffer() error

	// SetReadTimeout bounds the next Read. A timed-out Read returns 0, nil.
	SetReadTimeout(t time.Duration) error
}

// Dialer opens the underlying device for a link
type Dialer func(cfg Config) (Port, error)

// Mode returns the fixed 8E1 framing with the configured baud rate
func Mode(baudRate int) *serial.Mode {
	return &serial.Mode{
		BaudRate: baudRate,
		DataBits: 8,
		Parity:   serial.EvenParity,
		StopBits: serial.OneStopBit,
	}
}

// OpenSerial is the default Dialer. It opens cfg.PortName with 8E1 framing.
func OpenSerial(cfg Config) (Port, error) {
	port, err := serial.Open(cfg.PortName, Mode(cfg.BaudRate))
	if err != nil {
		return nil, err
	}
	return port, nil
}

// PortInfo describes a serial port found on the system
type PortInfo struct {
	Name         string
	IsUSB        bool
	VID          string
	PID          string
	SerialNumber string
	Product      string
}

// ListPorts returns the serial ports present on the system, with USB
// details where the platform reports them. If the detailed scan fails
// it falls back to bare port names.
func ListPorts() ([]PortInfo, error) {
	details, err := enumerator.GetDetailedPortsList()
	if err == nil {
		ports := make([]PortInfo, 0, len(details))
		for _, d := range details {
			ports = append(ports, PortInfo{
				Name:         d.Name,
				IsUSB:        d.IsUSB,
				VID:          d.VID,
				PID:          d.PID,
				SerialNumber: d.SerialNumber,
				Product:      d.Product,
			})
		}
		return ports, nil
	}

	names, nerr := serial.GetPortsList()
	if nerr != nil {
		return nil, nerr
	}
	ports := make([]PortInfo, 0, len(names))
	for _, name := range names {
		ports = append(ports, PortInfo{Name: name})
	}
	return ports, nil
}

// portErrorReason maps go.bug.st/serial error codes to a short reason
func portErrorReason(err error) string {
	var code serial.PortErrorCode
	var pv serial.PortError
	var pp *serial.PortError
	switch {
	case errors.As(err, &pp) && pp != nil:
		code = pp.Code()
	case errors.As(err, &pv):
		code = pv.Code()
	default:
		return "unavailable"
	}

	switch code {
	case serial.PortBusy:
		return "busy"
	case serial.PortNotFound:
		return "not found"
	case serial.PermissionDenied:
		return "permission denied"
	case serial.InvalidSpeed:
		return "invalid baud rate"
	case serial.InvalidDataBits, serial.InvalidParity, serial.InvalidStopBits:
		return "unsupported framing"
	case serial.InvalidSerialPort:
		return "not a serial port"
	default:
		return "unavailable"
	}
}
