// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package bno055

import (
	"encoding/binary"
	"fmt"
)

// Quantity selects one of the device's three-axis outputs.
type Quantity struct {
	id uint8
}

// The six outputs. No other Quantity values exist.
var (
	Magnetometer  = Quantity{1}
	Gyroscope     = Quantity{2}
	Euler         = Quantity{3}
	Accelerometer = Quantity{4}
	LinearAccel   = Quantity{5}
	Gravity       = Quantity{6}
)

// Quantities lists every Quantity in register order.
var Quantities = []Quantity{Accelerometer, Magnetometer, Gyroscope, Euler, LinearAccel, Gravity}

// ParseQuantity maps a name as printed by String back to its Quantity.
func ParseQuantity(s string) (Quantity, error) {
	for _, q := range Quantities {
		if q.String() == s {
			return q, nil
		}
	}
	return Quantity{}, fmt.Errorf("%w: %q", ErrUnknownQuantity, s)
}

func (q Quantity) String() string {
	switch q {
	case Magnetometer:
		return "mag"
	case Gyroscope:
		return "gyro"
	case Euler:
		return "euler"
	case Accelerometer:
		return "accel"
	case LinearAccel:
		return "linear"
	case Gravity:
		return "gravity"
	}
	return "unknown"
}

func (q Quantity) valid() bool {
	return q.id >= Magnetometer.id && q.id <= Gravity.id
}

func (q Quantity) register() byte {
	switch q {
	case Magnetometer:
		return RegMagData
	case Gyroscope:
		return RegGyrData
	case Euler:
		return RegEulData
	case Accelerometer:
		return RegAccData
	case LinearAccel:
		return RegLiaData
	case Gravity:
		return RegGrvData
	}
	return 0
}

// LSB per unit.
const (
	magLSB   = 16.0    // µT
	gyroLSB  = 900.0   // rad/s
	eulerLSB = 16.0    // degrees
	accelLSB = 100.0   // m/s²
	quatLSB  = 16384.0 // 2^14
)

// Vector is a decoded three-axis reading.
type Vector struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Decode converts the six data bytes of q into physical units.
//
// Euler output comes back in the register order heading, roll, pitch and
// is reversed: X is pitch, Y is roll, Z is heading.
func Decode(q Quantity, raw [6]byte) Vector {
	x := float64(int16(binary.LittleEndian.Uint16(raw[0:2])))
	y := float64(int16(binary.LittleEndian.Uint16(raw[2:4])))
	z := float64(int16(binary.LittleEndian.Uint16(raw[4:6])))

	switch q {
	case Magnetometer:
		return Vector{X: x / magLSB, Y: y / magLSB, Z: z / magLSB}
	case Gyroscope:
		return Vector{X: x / gyroLSB, Y: y / gyroLSB, Z: z / gyroLSB}
	case Euler:
		return Vector{X: z / eulerLSB, Y: y / eulerLSB, Z: x / eulerLSB}
	case Accelerometer, LinearAccel, Gravity:
		return Vector{X: x / accelLSB, Y: y / accelLSB, Z: z / accelLSB}
	}
	return Vector{}
}

// Quaternion is a unit quaternion.
type Quaternion struct {
	W float64 `json:"w"`
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// DecodeQuaternion converts the eight QUA_DATA bytes.
func DecodeQuaternion(raw [8]byte) Quaternion {
	return Quaternion{
		W: float64(int16(binary.LittleEndian.Uint16(raw[0:2]))) / quatLSB,
		X: float64(int16(binary.LittleEndian.Uint16(raw[2:4]))) / quatLSB,
		Y: float64(int16(binary.LittleEndian.Uint16(raw[4:6]))) / quatLSB,
		Z: float64(int16(binary.LittleEndian.Uint16(raw[6:8]))) / quatLSB,
	}
}

// Calibration holds the 0 (uncalibrated) to 3 (fully calibrated) levels
// reported in CALIB_STAT.
type Calibration struct {
	System uint8 `json:"sys"`
	Gyro   uint8 `json:"gyro"`
	Accel  uint8 `json:"accel"`
	Mag    uint8 `json:"mag"`
}

// DecodeCalibration splits a CALIB_STAT byte.
func DecodeCalibration(b byte) Calibration {
	return Calibration{
		System: b>>6&0x03,
		Gyro:   b>>4&0x03,
		Accel:  b>>2&0x03,
		Mag:    b & 0x03,
	}
}

// FullyCalibrated reports whether every subsystem reached level 3.
func (c Calibration) FullyCalibrated() bool {
	return c.System == 3 && c.Gyro == 3 && c.Accel == 3 && c.Mag == 3
}
