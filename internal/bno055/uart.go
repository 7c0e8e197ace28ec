// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package bno055

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	serial "github.com/jacobsa/go-serial/serial"
)

// UART framing (datasheet section 4.7).
const (
	uartStart    byte = 0xAA
	uartWrite    byte = 0x00
	uartRead     byte = 0x01
	uartReadResp byte = 0xBB
	uartAck      byte = 0xEE
	uartWriteOK  byte = 0x01
)

const uartMaxLength = 128

// UARTStatus is the status byte of a 0xEE acknowledge frame.
type UARTStatus byte

func (s UARTStatus) Error() string {
	switch s {
	case 0x01:
		return "write success"
	case 0x02:
		return "read fail"
	case 0x03:
		return "write fail"
	case 0x04:
		return "regmap invalid address"
	case 0x05:
		return "regmap write disabled"
	case 0x06:
		return "wrong start byte"
	case 0x07:
		return "bus over run"
	case 0x08:
		return "max length error"
	case 0x09:
		return "min length error"
	case 0x0A:
		return "receive character timeout"
	}
	return fmt.Sprintf("uart status 0x%02X", byte(s))
}

// UARTTransport speaks the BNO055 UART register protocol (PS1 high, PS0 low).
// The device address is meaningless on a point-to-point link and ignored.
type UARTTransport struct {
	mu   sync.Mutex
	port io.ReadWriter
}

// NewUARTTransport wraps an already opened serial port.
func NewUARTTransport(port io.ReadWriter) *UARTTransport {
	return &UARTTransport{port: port}
}

// OpenUART opens portName at baud, 8N1. Reads give up after 100 ms of
// silence, the finest granularity the termios VTIME setting offers.
func OpenUART(portName string, baud uint) (io.ReadWriteCloser, error) {
	if baud == 0 {
		baud = 115200
	}
	port, err := serial.Open(serial.OpenOptions{
		PortName:              portName,
		BaudRate:              baud,
		DataBits:              8,
		StopBits:              1,
		ParityMode:            serial.PARITY_NONE,
		MinimumReadSize:       0,
		InterCharacterTimeout: 100,
	})
	if err != nil {
		return nil, fmt.Errorf("bno055: open %s: %w", portName, err)
	}
	return port, nil
}

func (u *UARTTransport) Acquire() { u.mu.Lock() }
func (u *UARTTransport) Release() { u.mu.Unlock() }

// TransmitThenReceive maps the register transaction onto one UART command.
// The timeout is enforced by the port's read timeout.
func (u *UARTTransport) TransmitThenReceive(_ uint16, tx, rx []byte, _ time.Duration) error {
	if len(tx) == 0 {
		return errors.New("bno055: uart transaction without register")
	}
	if len(rx) > uartMaxLength || len(tx)-1 > uartMaxLength {
		return UARTStatus(0x08)
	}
	reg := tx[0]

	if len(rx) == 0 {
		frame := append([]byte{uartStart, uartWrite, reg, byte(len(tx) - 1)}, tx[1:]...)
		if _, err := u.port.Write(frame); err != nil {
			return err
		}
		var ack [2]byte
		if _, err := io.ReadFull(u.port, ack[:]); err != nil {
			return err
		}
		if ack[0] != uartAck {
			return fmt.Errorf("bno055: unexpected uart response 0x%02X", ack[0])
		}
		if ack[1] != uartWriteOK {
			return UARTStatus(ack[1])
		}
		return nil
	}

	if _, err := u.port.Write([]byte{uartStart, uartRead, reg, byte(len(rx))}); err != nil {
		return err
	}
	var hdr [2]byte
	if _, err := io.ReadFull(u.port, hdr[:]); err != nil {
		return err
	}
	switch hdr[0] {
	case uartReadResp:
		if int(hdr[1]) != len(rx) {
			return fmt.Errorf("bno055: uart read returned %d bytes, want %d", hdr[1], len(rx))
		}
		_, err := io.ReadFull(u.port, rx)
		return err
	case uartAck:
		return UARTStatus(hdr[1])
	}
	return fmt.Errorf("bno055: unexpected uart response 0x%02X", hdr[0])
}

var _ Transport = (*UARTTransport)(nil)
