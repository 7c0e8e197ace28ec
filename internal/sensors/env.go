package sensors

import (
	"fmt"
	"time"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/devices/v3/bmxx80"

	"github.com/relabs-tech/orientation_computer/internal/env"
)

// EnvSource reads a BMP280 (or BME280) over I²C.
type EnvSource struct {
	name string
	dev  *bmxx80.Dev
}

// NewEnvSource opens the sensor at addr. Pass the BNO055's I2CBus so both
// parts share its lock.
func NewEnvSource(name string, bus i2c.Bus, addr uint16) (*EnvSource, error) {
	dev, err := bmxx80.NewI2C(bus, addr, &bmxx80.DefaultOpts)
	if err != nil {
		return nil, fmt.Errorf("%s init: %w", name, err)
	}
	return &EnvSource{name: name, dev: dev}, nil
}

// ReadEnv reads temperature and pressure.
func (s *EnvSource) ReadEnv() (env.Sample, error) {
	var e physic.Env
	if err := s.dev.Sense(&e); err != nil {
		return env.Sample{}, fmt.Errorf("%s sense: %w", s.name, err)
	}
	return envSample(s.name, time.Now(), e), nil
}

// Close halts the sensor.
func (s *EnvSource) Close() error {
	return s.dev.Halt()
}

func envSample(name string, t time.Time, e physic.Env) env.Sample {
	pressurePa := float64(e.Pressure) / float64(physic.Pascal)
	return env.Sample{
		Source:       name,
		Time:         t.UTC().Format(time.RFC3339Nano),
		Temperature:  e.Temperature.Celsius(),
		Pressure:     pressurePa,
		PressureMbar: pressurePa / 100.0, // 1 mbar = 100 Pa
		PressureHPa:  pressurePa / 100.0,
	}
}
