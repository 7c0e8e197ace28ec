// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/benbjohnson/clock"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/host/v3"

	"github.com/relabs-tech/orientation_computer/internal/bno055"
	"github.com/relabs-tech/orientation_computer/internal/config"
	"github.com/relabs-tech/orientation_computer/internal/env"
	"github.com/relabs-tech/orientation_computer/internal/imu"
)

// Source owns a BNO055 and whatever bus or port it sits on.
type Source struct {
	name   string
	dev    *bno055.Dev
	clock  bno055.Clock
	logger *zap.SugaredLogger

	env     *EnvSource
	closers []io.Closer
}

// RegisterValue is one register as read from the device.
type RegisterValue struct {
	Address byte `json:"address"`
	Value   byte `json:"value"`
}

// Open builds the transport described by cfg, brings the BNO055 up and, when
// BMP_I2C_ADDR is set, attaches the BMP280 on the same bus.
func Open(cfg *config.Config, logger *zap.SugaredLogger) (*Source, error) {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	opts := bno055.Opts{
		Addr:         cfg.BNOI2CAddr,
		TxTimeout:    time.Duration(cfg.BNOTxTimeoutMS) * time.Millisecond,
		ResetTimeout: time.Duration(cfg.BNOResetTimeout) * time.Millisecond,
		Logger:       logger.Named("bno055"),
	}

	if cfg.BNOTransport == "uart" {
		port, err := bno055.OpenUART(cfg.BNOUARTPort, cfg.BNOUARTBaud)
		if err != nil {
			return nil, fmt.Errorf("bno055: open %s: %w", cfg.BNOUARTPort, err)
		}
		s, err := NewSource("bno055", bno055.NewUARTTransport(port), &opts)
		if err != nil {
			return nil, multierr.Append(err, port.Close())
		}
		s.closers = append(s.closers, port)
		s.logger.Infow("opened", "transport", "uart", "port", cfg.BNOUARTPort, "baud", cfg.BNOUARTBaud)
		return s, nil
	}

	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("periph host init: %w", err)
	}
	bc, err := i2creg.Open(cfg.BNOI2CBus)
	if err != nil {
		return nil, fmt.Errorf("bno055: open I2C bus %q: %w", cfg.BNOI2CBus, err)
	}
	bus := bno055.NewI2CBus(bc)

	scl, err := pinByName(cfg.BNOSCLPin)
	if err != nil {
		return nil, multierr.Append(err, bc.Close())
	}
	sda, err := pinByName(cfg.BNOSDAPin)
	if err != nil {
		return nil, multierr.Append(err, bc.Close())
	}
	if err := bus.ConfigurePins(scl, sda); err != nil {
		return nil, multierr.Append(err, bc.Close())
	}
	if err := bus.SetSpeed(physic.Frequency(cfg.BNOBusSpeedHz) * physic.Hertz); err != nil {
		// Many kernels fix the bus clock in the device tree.
		logger.Warnw("could not set bus speed", "bus", bc.String(), "hz", cfg.BNOBusSpeedHz, "error", err)
	}

	s, err := NewSource("bno055", bus, &opts)
	if err != nil {
		return nil, multierr.Append(err, bc.Close())
	}
	s.closers = append(s.closers, bc)
	s.logger.Infow("opened", "transport", "i2c", "bus", bc.String(), "addr", fmt.Sprintf("0x%02X", s.dev.Addr()))

	if cfg.BMPI2CAddr != 0 {
		e, err := NewEnvSource("bmp280", bus, cfg.BMPI2CAddr)
		if err != nil {
			// Non-fatal: orientation is still useful without it.
			s.logger.Warnw("BMP280 not available", "addr", fmt.Sprintf("0x%02X", cfg.BMPI2CAddr), "error", err)
		} else {
			s.env = e
		}
	}
	return s, nil
}

func pinByName(name string) (gpio.PinIO, error) {
	if name == "" {
		return nil, nil
	}
	p := gpioreg.ByName(name)
	if p == nil {
		return nil, fmt.Errorf("pin %q not found", name)
	}
	return p, nil
}

// NewSource runs the init sequence on the BNO055 behind t.
func NewSource(name string, t bno055.Transport, opts *bno055.Opts) (*Source, error) {
	if opts == nil {
		opts = &bno055.Opts{}
	}
	dev, err := bno055.New(t, opts)
	if err != nil {
		return nil, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	clk := opts.Clock
	if clk == nil {
		clk = clock.New()
	}
	s := &Source{name: name, dev: dev, clock: clk, logger: logger}

	if err := dev.Init(); err != nil {
		return nil, fmt.Errorf("%s: initialization: %w", name, err)
	}
	if st, err := dev.Status(); err == nil {
		s.logger.Infow("initialized", "status", bno055.SystemStatus(st))
	}
	return s, nil
}

// Name returns the source name used in samples and logs.
func (s *Source) Name() string { return s.name }

// Dev returns the underlying driver.
func (s *Source) Dev() *bno055.Dev { return s.dev }

// Env returns the BMP280 on the same bus, or nil.
func (s *Source) Env() *EnvSource { return s.env }

// ReadSample reads every output of the device.
func (s *Source) ReadSample() (imu.Sample, error) {
	out := imu.Sample{
		Source: s.name,
		Time:   s.clock.Now().UTC().Format(time.RFC3339Nano),
	}

	for _, q := range bno055.Quantities {
		v, err := s.dev.Vector(q)
		if err != nil {
			return imu.Sample{}, fmt.Errorf("%s %s: %w", s.name, q, err)
		}
		out.SetVector(q, v)
	}

	quat, err := s.dev.Quaternion()
	if err != nil {
		return imu.Sample{}, fmt.Errorf("%s quaternion: %w", s.name, err)
	}
	out.Quaternion = quat

	temp, err := s.dev.Temperature()
	if err != nil {
		return imu.Sample{}, fmt.Errorf("%s temperature: %w", s.name, err)
	}
	out.TempC = temp.Celsius()

	if out.Calibration, err = s.dev.CalibrationStatus(); err != nil {
		return imu.Sample{}, fmt.Errorf("%s calibration: %w", s.name, err)
	}
	if out.Status, err = s.dev.Status(); err != nil {
		return imu.Sample{}, fmt.Errorf("%s status: %w", s.name, err)
	}
	if out.Error, err = s.dev.Error(); err != nil {
		return imu.Sample{}, fmt.Errorf("%s error: %w", s.name, err)
	}
	if out.Error != 0 {
		s.logger.Warnw("device reports error",
			"status", bno055.SystemStatus(out.Status), "error", bno055.SystemError(out.Error))
	}
	return out, nil
}

// ReadRegister reads one page 0 register.
func (s *Source) ReadRegister(addr byte) (byte, error) {
	return s.dev.ReadRegister(addr)
}

// WriteRegister writes one register.
func (s *Source) WriteRegister(addr, value byte) error {
	s.logger.Infow("register write", "addr", fmt.Sprintf("0x%02X", addr), "value", fmt.Sprintf("0x%02X", value))
	return s.dev.WriteRegister(addr, value)
}

// DumpRegisters reads every address in RegisterAddresses. A failed register
// is skipped and its error collected.
func (s *Source) DumpRegisters() ([]RegisterValue, error) {
	var (
		out  []RegisterValue
		errs error
	)
	for _, a := range RegisterAddresses() {
		v, err := s.dev.ReadRegister(a)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		out = append(out, RegisterValue{Address: a, Value: v})
	}
	return out, errs
}

// RegisterMap returns the metadata for the registers DumpRegisters reads.
func (s *Source) RegisterMap() []RegisterInfo { return RegisterMap() }

// Reinit runs the init sequence again, e.g. after a register was poked into
// a bad state.
func (s *Source) Reinit() error {
	if err := s.dev.Init(); err != nil {
		return fmt.Errorf("%s: reinitialization: %w", s.name, err)
	}
	return nil
}

// Close releases the BMP280, the bus and the serial port.
func (s *Source) Close() error {
	var err error
	if s.env != nil {
		err = multierr.Append(err, s.env.Close())
	}
	for _, c := range s.closers {
		err = multierr.Append(err, c.Close())
	}
	s.closers = nil
	return err
}

// ErrNoEnv is returned when no BMP280 is attached.
var ErrNoEnv = errors.New("no environmental sensor attached")

// ReadEnv reads the BMP280 sharing the bus.
func (s *Source) ReadEnv() (env.Sample, error) {
	if s.env == nil {
		return env.Sample{}, ErrNoEnv
	}
	return s.env.ReadEnv()
}

var _ imu.SampleSource = (*Source)(nil)
