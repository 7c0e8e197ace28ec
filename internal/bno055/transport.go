// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package bno055

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrDeviceNotFound is returned by Init when CHIP_ID does not read back
	// ChipID, neither immediately nor after the power-on boot wait.
	ErrDeviceNotFound = errors.New("bno055: device not found")
	// ErrResetTimeout is returned by Init when Opts.ResetTimeout is set and the
	// device did not come back from the reset trigger in time.
	ErrResetTimeout = errors.New("bno055: timed out waiting for reset")
	// ErrTimeout is returned by a transport when a transaction exceeds its timeout.
	ErrTimeout = errors.New("bno055: bus transaction timed out")
	// ErrUnknownQuantity is returned for a Quantity outside the known set.
	ErrUnknownQuantity = errors.New("bno055: unknown quantity")
)

// Transport is the bus primitive the driver talks through.
//
// The driver brackets every TransmitThenReceive with exactly one
// Acquire/Release pair. tx carries the register address, followed by the
// value for writes. rx is filled by the read phase and is empty for writes.
type Transport interface {
	Acquire()
	Release()
	TransmitThenReceive(addr uint16, tx, rx []byte, timeout time.Duration) error
}

// TransportError wraps a failed bus transaction.
type TransportError struct {
	Op  string // "read" or "write"
	Reg byte
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("bno055: %s register 0x%02X: %v", e.Op, e.Reg, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }
