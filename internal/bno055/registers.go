// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package bno055

import "fmt"

// I2C addresses. COM3 low selects DefaultAddr, high selects AltAddr.
const (
	DefaultAddr uint16 = 0x28
	AltAddr     uint16 = 0x29
)

// ChipID is the fixed value of the CHIP_ID register.
const ChipID byte = 0xA0

// Register map, page 0.
const (
	RegChipID     byte = 0x00
	RegPageID     byte = 0x07
	RegAccData    byte = 0x08 // ACC_DATA_X_LSB
	RegMagData    byte = 0x0E // MAG_DATA_X_LSB
	RegGyrData    byte = 0x14 // GYR_DATA_X_LSB
	RegEulData    byte = 0x1A // EUL_Heading_LSB
	RegQuaData    byte = 0x20 // QUA_Data_w_LSB
	RegLiaData    byte = 0x28 // LIA_Data_X_LSB
	RegGrvData    byte = 0x2E // GRV_Data_X_LSB
	RegTemp       byte = 0x34
	RegCalibStat  byte = 0x35
	RegSTResult   byte = 0x36
	RegSysStatus  byte = 0x39
	RegSysErr     byte = 0x3A
	RegOprMode    byte = 0x3D
	RegPwrMode    byte = 0x3E
	RegSysTrigger byte = 0x3F
)

// SYS_TRIGGER patterns.
const (
	triggerReset byte = 0x20
	triggerClock byte = 0x80
)

// OperationMode is the value written to OPR_MODE.
type OperationMode byte

const (
	OperationModeConfig     OperationMode = 0x00
	OperationModeAccOnly    OperationMode = 0x01
	OperationModeMagOnly    OperationMode = 0x02
	OperationModeGyrOnly    OperationMode = 0x03
	OperationModeAccMag     OperationMode = 0x04
	OperationModeAccGyro    OperationMode = 0x05
	OperationModeMagGyro    OperationMode = 0x06
	OperationModeAMG        OperationMode = 0x07
	OperationModeIMUPlus    OperationMode = 0x08
	OperationModeCompass    OperationMode = 0x09
	OperationModeM4G        OperationMode = 0x0A
	OperationModeNDOFFMCOff OperationMode = 0x0B
	OperationModeNDOF       OperationMode = 0x0C
)

func (m OperationMode) String() string {
	switch m {
	case OperationModeConfig:
		return "CONFIG"
	case OperationModeAccOnly:
		return "ACCONLY"
	case OperationModeMagOnly:
		return "MAGONLY"
	case OperationModeGyrOnly:
		return "GYROONLY"
	case OperationModeAccMag:
		return "ACCMAG"
	case OperationModeAccGyro:
		return "ACCGYRO"
	case OperationModeMagGyro:
		return "MAGGYRO"
	case OperationModeAMG:
		return "AMG"
	case OperationModeIMUPlus:
		return "IMUPLUS"
	case OperationModeCompass:
		return "COMPASS"
	case OperationModeM4G:
		return "M4G"
	case OperationModeNDOFFMCOff:
		return "NDOF_FMC_OFF"
	case OperationModeNDOF:
		return "NDOF"
	}
	return fmt.Sprintf("OperationMode(0x%02X)", byte(m))
}

// PowerMode is the value written to PWR_MODE.
type PowerMode byte

const (
	PowerModeNormal   PowerMode = 0x00
	PowerModeLowPower PowerMode = 0x01
	PowerModeSuspend  PowerMode = 0x02
)

func (m PowerMode) String() string {
	switch m {
	case PowerModeNormal:
		return "NORMAL"
	case PowerModeLowPower:
		return "LOW_POWER"
	case PowerModeSuspend:
		return "SUSPEND"
	}
	return fmt.Sprintf("PowerMode(0x%02X)", byte(m))
}

// SystemStatus is the raw SYS_STATUS byte. The driver never interprets it;
// String only exists for logs.
type SystemStatus byte

func (s SystemStatus) String() string {
	switch s {
	case 0:
		return "idle"
	case 1:
		return "system error"
	case 2:
		return "initializing peripherals"
	case 3:
		return "system initialization"
	case 4:
		return "executing self-test"
	case 5:
		return "sensor fusion running"
	case 6:
		return "running without fusion"
	}
	return fmt.Sprintf("status 0x%02X", byte(s))
}

// SystemError is the raw SYS_ERR byte.
type SystemError byte

func (e SystemError) String() string {
	switch e {
	case 0x0:
		return "no error"
	case 0x1:
		return "peripheral initialization error"
	case 0x2:
		return "system initialization error"
	case 0x3:
		return "self-test result failed"
	case 0x4:
		return "register map value out of range"
	case 0x5:
		return "register map address out of range"
	case 0x6:
		return "register map write error"
	case 0x7:
		return "low power mode not available for selected operation mode"
	case 0x8:
		return "accelerometer power mode not available"
	case 0x9:
		return "fusion algorithm configuration error"
	case 0xA:
		return "sensor configuration error"
	}
	return fmt.Sprintf("error 0x%02X", byte(e))
}
