// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package bno055 drives a Bosch BNO055 absolute orientation sensor.
//
// The part is an accelerometer, gyroscope and magnetometer with an onboard
// fusion processor. The driver brings it into NDOF fusion mode and decodes
// the vectors it outputs. All calls block; every register access is one
// bus transaction bracketed by Transport.Acquire/Release.
//
// Datasheet:
// https://www.bosch-sensortec.com/media/boschsensortec/downloads/datasheets/bst-bno055-ds000.pdf
package bno055

import (
	"errors"
	"time"

	"github.com/benbjohnson/clock"
	"go.uber.org/zap"
	"periph.io/x/conn/v3/physic"
)

// Init sequence delays.
const (
	bootDelay       = 1000 * time.Millisecond
	modeSwitchDelay = 30 * time.Millisecond
	resetPollDelay  = 10 * time.Millisecond
	postResetDelay  = 50 * time.Millisecond
	powerModeDelay  = 10 * time.Millisecond
	clockSelDelay   = 10 * time.Millisecond
	fusionDelay     = 50 * time.Millisecond
)

// DefaultTxTimeout bounds a single bus transaction.
const DefaultTxTimeout = 4 * time.Millisecond

// Clock is the timing source the init sequence sleeps on.
type Clock interface {
	Now() time.Time
	Sleep(d time.Duration)
}

// Opts holds the device configuration.
//
// ResetTimeout bounds the wait for the device to come back after the reset
// trigger. Zero waits forever, which is what the part's reference bring-up
// does.
type Opts struct {
	Addr         uint16
	TxTimeout    time.Duration
	ResetTimeout time.Duration
	Clock        Clock
	Logger       *zap.SugaredLogger
}

// DefaultOpts is the recommended configuration.
var DefaultOpts = Opts{
	Addr:      DefaultAddr,
	TxTimeout: DefaultTxTimeout,
}

// Dev is a handle to a BNO055.
type Dev struct {
	t            Transport
	addr         uint16
	txTimeout    time.Duration
	resetTimeout time.Duration
	clock        Clock
	logger       *zap.SugaredLogger
}

// New returns a driver for the device behind t. It does not talk to the
// device; call Init for that.
func New(t Transport, opts *Opts) (*Dev, error) {
	if t == nil {
		return nil, errors.New("bno055: nil transport")
	}
	if opts == nil {
		opts = &DefaultOpts
	}
	d := &Dev{
		t:            t,
		addr:         opts.Addr,
		txTimeout:    opts.TxTimeout,
		resetTimeout: opts.ResetTimeout,
		clock:        opts.Clock,
		logger:       opts.Logger,
	}
	if d.addr == 0 {
		d.addr = DefaultAddr
	}
	if d.clock == nil {
		d.clock = clock.New()
	}
	if d.logger == nil {
		d.logger = zap.NewNop().Sugar()
	}
	return d, nil
}

// Addr returns the device address.
func (d *Dev) Addr() uint16 { return d.addr }

// Init verifies the chip ID, resets the part and leaves it in NDOF fusion
// mode at normal power. It blocks for at least 150 ms, plus one second when
// the part is still booting.
func (d *Dev) Init() error {
	if !d.chipIDMatches() {
		d.logger.Debugw("chip id mismatch, waiting for boot", "addr", d.addr)
		d.clock.Sleep(bootDelay)
		if !d.chipIDMatches() {
			return ErrDeviceNotFound
		}
	}

	if err := d.SetOperationMode(OperationModeConfig); err != nil {
		return err
	}
	d.clock.Sleep(modeSwitchDelay)

	if err := d.WriteRegister(RegSysTrigger, triggerReset); err != nil {
		return err
	}
	if err := d.waitReset(); err != nil {
		return err
	}
	d.clock.Sleep(postResetDelay)

	if err := d.SetPowerMode(PowerModeNormal); err != nil {
		return err
	}
	d.clock.Sleep(powerModeDelay)

	if err := d.WriteRegister(RegPageID, 0); err != nil {
		return err
	}
	if err := d.WriteRegister(RegSysTrigger, triggerClock); err != nil {
		return err
	}
	d.clock.Sleep(clockSelDelay)

	if err := d.SetOperationMode(OperationModeNDOF); err != nil {
		return err
	}
	d.clock.Sleep(fusionDelay)

	d.logger.Debugw("initialized", "addr", d.addr, "mode", OperationModeNDOF)
	return nil
}

// waitReset polls CHIP_ID until the part answers again. The part does not
// ACK while it resets, so failed reads just mean "not yet".
func (d *Dev) waitReset() error {
	var deadline time.Time
	if d.resetTimeout > 0 {
		deadline = d.clock.Now().Add(d.resetTimeout)
	}
	polls := 0
	for !d.chipIDMatches() {
		if !deadline.IsZero() && !d.clock.Now().Before(deadline) {
			d.logger.Warnw("device did not come back from reset", "polls", polls)
			return ErrResetTimeout
		}
		polls++
		d.clock.Sleep(resetPollDelay)
	}
	d.logger.Debugw("reset complete", "polls", polls)
	return nil
}

func (d *Dev) chipIDMatches() bool {
	id, err := d.ReadRegister(RegChipID)
	return err == nil && id == ChipID
}

// SetOperationMode writes OPR_MODE. Callers must respect the datasheet mode
// switching times themselves.
func (d *Dev) SetOperationMode(m OperationMode) error {
	return d.WriteRegister(RegOprMode, byte(m))
}

// SetPowerMode writes PWR_MODE.
func (d *Dev) SetPowerMode(m PowerMode) error {
	return d.WriteRegister(RegPwrMode, byte(m))
}

// Vector reads one of the device's three-axis outputs.
func (d *Dev) Vector(q Quantity) (Vector, error) {
	if !q.valid() {
		return Vector{}, ErrUnknownQuantity
	}
	var raw [6]byte
	if err := d.ReadRegisters(q.register(), raw[:]); err != nil {
		return Vector{}, err
	}
	return Decode(q, raw), nil
}

// Quaternion reads the fused orientation as a unit quaternion.
func (d *Dev) Quaternion() (Quaternion, error) {
	var raw [8]byte
	if err := d.ReadRegisters(RegQuaData, raw[:]); err != nil {
		return Quaternion{}, err
	}
	return DecodeQuaternion(raw), nil
}

// Status returns SYS_STATUS verbatim.
func (d *Dev) Status() (byte, error) {
	return d.ReadRegister(RegSysStatus)
}

// Error returns SYS_ERR verbatim.
func (d *Dev) Error() (byte, error) {
	return d.ReadRegister(RegSysErr)
}

// Temperature reads the die temperature, 1°C per LSB.
func (d *Dev) Temperature() (physic.Temperature, error) {
	b, err := d.ReadRegister(RegTemp)
	if err != nil {
		return 0, err
	}
	return physic.ZeroCelsius + physic.Temperature(int8(b))*physic.Celsius, nil
}

// CalibrationStatus reads CALIB_STAT.
func (d *Dev) CalibrationStatus() (Calibration, error) {
	b, err := d.ReadRegister(RegCalibStat)
	if err != nil {
		return Calibration{}, err
	}
	return DecodeCalibration(b), nil
}

// ReadRegister reads a single register.
func (d *Dev) ReadRegister(reg byte) (byte, error) {
	var b [1]byte
	if err := d.ReadRegisters(reg, b[:]); err != nil {
		return 0, err
	}
	return b[0], nil
}

// ReadRegisters reads len(out) consecutive registers starting at reg.
func (d *Dev) ReadRegisters(reg byte, out []byte) error {
	if err := d.tx([]byte{reg}, out); err != nil {
		return &TransportError{Op: "read", Reg: reg, Err: err}
	}
	return nil
}

// WriteRegister writes a single register.
func (d *Dev) WriteRegister(reg, value byte) error {
	if err := d.tx([]byte{reg, value}, nil); err != nil {
		return &TransportError{Op: "write", Reg: reg, Err: err}
	}
	return nil
}

func (d *Dev) tx(w, r []byte) error {
	d.t.Acquire()
	defer d.t.Release()
	return d.t.TransmitThenReceive(d.addr, w, r, d.txTimeout)
}
