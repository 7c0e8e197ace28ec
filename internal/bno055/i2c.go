// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package bno055

import (
	"fmt"
	"sync"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/pin"
)

// StandardSpeed is the bus clock the BNO055 is driven at.
const StandardSpeed = 100 * physic.KiloHertz

// I2CBus is a Transport over a periph I²C bus.
//
// It also implements i2c.Bus, so other periph device drivers on the same
// wires go through the same lock.
type I2CBus struct {
	mu       sync.Mutex
	inflight sync.WaitGroup
	bus      i2c.Bus
}

// NewI2CBus wraps bus.
func NewI2CBus(bus i2c.Bus) *I2CBus {
	return &I2CBus{bus: bus}
}

// ConfigurePins puts scl and sda into their I²C alternate functions. A nil
// pin is skipped; some hosts mux the pins in the kernel and expose nothing.
func (b *I2CBus) ConfigurePins(scl, sda gpio.PinIO) error {
	if err := setFunc(scl, i2c.SCL); err != nil {
		return err
	}
	return setFunc(sda, i2c.SDA)
}

func setFunc(p gpio.PinIO, f pin.Func) error {
	if p == nil {
		return nil
	}
	pf, ok := p.(pin.PinFunc)
	if !ok {
		return fmt.Errorf("bno055: pin %s cannot change function", p)
	}
	if pf.Func() == f {
		return nil
	}
	if err := pf.SetFunc(f); err != nil {
		return fmt.Errorf("bno055: pin %s set %s: %w", p, f, err)
	}
	return nil
}

// Acquire locks the bus. A transfer abandoned by an earlier timeout is
// drained before the caller gets the wires.
func (b *I2CBus) Acquire() {
	b.mu.Lock()
	b.inflight.Wait()
}

// Release unlocks the bus.
func (b *I2CBus) Release() {
	b.mu.Unlock()
}

// TransmitThenReceive runs one combined write/read transfer. The caller must
// hold the bus. A zero timeout waits for the transfer however long it takes.
func (b *I2CBus) TransmitThenReceive(addr uint16, tx, rx []byte, timeout time.Duration) error {
	if timeout <= 0 {
		return b.bus.Tx(addr, tx, rx)
	}

	// The transfer writes into its own buffer so an abandoned one cannot
	// scribble over rx after we returned.
	buf := make([]byte, len(rx))
	done := make(chan error, 1)
	b.inflight.Add(1)
	go func() {
		defer b.inflight.Done()
		done <- b.bus.Tx(addr, tx, buf)
	}()

	t := time.NewTimer(timeout)
	defer t.Stop()
	select {
	case err := <-done:
		if err != nil {
			return err
		}
		copy(rx, buf)
		return nil
	case <-t.C:
		return ErrTimeout
	}
}

// String implements i2c.Bus.
func (b *I2CBus) String() string {
	return b.bus.String()
}

// Tx implements i2c.Bus for drivers that share the bus with the BNO055.
func (b *I2CBus) Tx(addr uint16, w, r []byte) error {
	b.Acquire()
	defer b.Release()
	return b.bus.Tx(addr, w, r)
}

// SetSpeed implements i2c.Bus.
func (b *I2CBus) SetSpeed(f physic.Frequency) error {
	b.Acquire()
	defer b.Release()
	return b.bus.SetSpeed(f)
}

var _ i2c.Bus = (*I2CBus)(nil)
var _ Transport = (*I2CBus)(nil)
