// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

// BitField describes a bit span inside a register.
type BitField struct {
	Bits        string `json:"bits"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Values      string `json:"values,omitempty"`
}

// RegisterInfo is display metadata for a single register.
type RegisterInfo struct {
	Address     string     `json:"address"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Access      string     `json:"access"` // "R", "W", "RW"
	Default     string     `json:"default,omitempty"`
	BitFields   []BitField `json:"bit_fields,omitempty"`
}

// dataRegister returns the LSB/MSB pair of one axis of a data output.
func dataRegister(addr, name, desc string) RegisterInfo {
	return RegisterInfo{Address: addr, Name: name, Description: desc, Access: "R"}
}

// RegisterMap returns metadata for the BNO055 page 0 registers.
func RegisterMap() []RegisterInfo {
	return []RegisterInfo{
		// Identification
		{Address: "0x00", Name: "CHIP_ID", Description: "Chip identification", Access: "R", Default: "0xA0"},
		{Address: "0x01", Name: "ACC_ID", Description: "Accelerometer identification", Access: "R", Default: "0xFB"},
		{Address: "0x02", Name: "MAG_ID", Description: "Magnetometer identification", Access: "R", Default: "0x32"},
		{Address: "0x03", Name: "GYR_ID", Description: "Gyroscope identification", Access: "R", Default: "0x0F"},
		{Address: "0x04", Name: "SW_REV_ID_LSB", Description: "Firmware revision LSB", Access: "R"},
		{Address: "0x05", Name: "SW_REV_ID_MSB", Description: "Firmware revision MSB", Access: "R"},
		{Address: "0x06", Name: "BL_REV_ID", Description: "Bootloader version", Access: "R"},
		{Address: "0x07", Name: "PAGE_ID", Description: "Register page select", Access: "RW", Default: "0x00",
			BitFields: []BitField{
				{Bits: "7:0", Name: "PAGE_ID", Description: "Active register page", Values: "0=Page 0, 1=Page 1"},
			}},

		// Data output
		dataRegister("0x08", "ACC_DATA_X_LSB", "Accelerometer X, 1 m/s² = 100 LSB"),
		dataRegister("0x0A", "ACC_DATA_Y_LSB", "Accelerometer Y"),
		dataRegister("0x0C", "ACC_DATA_Z_LSB", "Accelerometer Z"),
		dataRegister("0x0E", "MAG_DATA_X_LSB", "Magnetometer X, 1 µT = 16 LSB"),
		dataRegister("0x10", "MAG_DATA_Y_LSB", "Magnetometer Y"),
		dataRegister("0x12", "MAG_DATA_Z_LSB", "Magnetometer Z"),
		dataRegister("0x14", "GYR_DATA_X_LSB", "Gyroscope X, 1 rad/s = 900 LSB"),
		dataRegister("0x16", "GYR_DATA_Y_LSB", "Gyroscope Y"),
		dataRegister("0x18", "GYR_DATA_Z_LSB", "Gyroscope Z"),
		dataRegister("0x1A", "EUL_HEADING_LSB", "Euler heading, 1° = 16 LSB"),
		dataRegister("0x1C", "EUL_ROLL_LSB", "Euler roll"),
		dataRegister("0x1E", "EUL_PITCH_LSB", "Euler pitch"),
		dataRegister("0x20", "QUA_DATA_W_LSB", "Quaternion w, 1 = 2^14 LSB"),
		dataRegister("0x22", "QUA_DATA_X_LSB", "Quaternion x"),
		dataRegister("0x24", "QUA_DATA_Y_LSB", "Quaternion y"),
		dataRegister("0x26", "QUA_DATA_Z_LSB", "Quaternion z"),
		dataRegister("0x28", "LIA_DATA_X_LSB", "Linear acceleration X, 1 m/s² = 100 LSB"),
		dataRegister("0x2A", "LIA_DATA_Y_LSB", "Linear acceleration Y"),
		dataRegister("0x2C", "LIA_DATA_Z_LSB", "Linear acceleration Z"),
		dataRegister("0x2E", "GRV_DATA_X_LSB", "Gravity X, 1 m/s² = 100 LSB"),
		dataRegister("0x30", "GRV_DATA_Y_LSB", "Gravity Y"),
		dataRegister("0x32", "GRV_DATA_Z_LSB", "Gravity Z"),
		{Address: "0x34", Name: "TEMP", Description: "Temperature, 1 °C = 1 LSB, signed", Access: "R"},

		// Status
		{Address: "0x35", Name: "CALIB_STAT", Description: "Calibration status", Access: "R", Default: "0x00",
			BitFields: []BitField{
				{Bits: "7:6", Name: "SYS", Description: "System calibration", Values: "0=Uncalibrated ... 3=Fully calibrated"},
				{Bits: "5:4", Name: "GYR", Description: "Gyroscope calibration", Values: "0-3"},
				{Bits: "3:2", Name: "ACC", Description: "Accelerometer calibration", Values: "0-3"},
				{Bits: "1:0", Name: "MAG", Description: "Magnetometer calibration", Values: "0-3"},
			}},
		{Address: "0x36", Name: "ST_RESULT", Description: "Power-on self-test result", Access: "R", Default: "0x0F",
			BitFields: []BitField{
				{Bits: "3", Name: "ST_MCU", Description: "Microcontroller self-test", Values: "0=Failed, 1=Passed"},
				{Bits: "2", Name: "ST_GYR", Description: "Gyroscope self-test", Values: "0=Failed, 1=Passed"},
				{Bits: "1", Name: "ST_MAG", Description: "Magnetometer self-test", Values: "0=Failed, 1=Passed"},
				{Bits: "0", Name: "ST_ACC", Description: "Accelerometer self-test", Values: "0=Failed, 1=Passed"},
			}},
		{Address: "0x37", Name: "INT_STA", Description: "Interrupt status", Access: "R", Default: "0x00"},
		{Address: "0x38", Name: "SYS_CLK_STATUS", Description: "System clock status", Access: "R", Default: "0x00",
			BitFields: []BitField{
				{Bits: "0", Name: "ST_MAIN_CLK", Description: "Clock configuration allowed", Values: "0=Free to configure, 1=In configuration"},
			}},
		{Address: "0x39", Name: "SYS_STATUS", Description: "System status", Access: "R", Default: "0x00",
			BitFields: []BitField{
				{Bits: "7:0", Name: "SYS_STATUS", Description: "System status code", Values: "0=Idle, 1=System error, 2=Init peripherals, 3=System init, 4=Self-test, 5=Fusion running, 6=Running without fusion"},
			}},
		{Address: "0x3A", Name: "SYS_ERR", Description: "System error", Access: "R", Default: "0x00",
			BitFields: []BitField{
				{Bits: "7:0", Name: "SYS_ERR", Description: "System error code", Values: "0=No error, 1=Peripheral init, 2=System init, 3=Self-test failed, 4=Value out of range, 5=Address out of range, 6=Write error, 7=Low power N/A, 8=Accel power mode N/A, 9=Fusion config, A=Sensor config"},
			}},

		// Configuration
		{Address: "0x3B", Name: "UNIT_SEL", Description: "Output unit selection", Access: "RW", Default: "0x80",
			BitFields: []BitField{
				{Bits: "7", Name: "ORI_ANDROID_WINDOWS", Description: "Orientation convention", Values: "0=Windows, 1=Android"},
				{Bits: "4", Name: "TEMP_UNIT", Description: "Temperature unit", Values: "0=Celsius, 1=Fahrenheit"},
				{Bits: "2", Name: "EUL_UNIT", Description: "Euler unit", Values: "0=Degrees, 1=Radians"},
				{Bits: "1", Name: "GYR_UNIT", Description: "Angular rate unit", Values: "0=dps, 1=rps"},
				{Bits: "0", Name: "ACC_UNIT", Description: "Acceleration unit", Values: "0=m/s², 1=mg"},
			}},
		{Address: "0x3D", Name: "OPR_MODE", Description: "Operation mode", Access: "RW", Default: "0x1C",
			BitFields: []BitField{
				{Bits: "3:0", Name: "OPR_MODE", Description: "Operation mode", Values: "0=CONFIG, 1=ACCONLY, 2=MAGONLY, 3=GYROONLY, 4=ACCMAG, 5=ACCGYRO, 6=MAGGYRO, 7=AMG, 8=IMU, 9=COMPASS, A=M4G, B=NDOF_FMC_OFF, C=NDOF"},
			}},
		{Address: "0x3E", Name: "PWR_MODE", Description: "Power mode", Access: "RW", Default: "0x00",
			BitFields: []BitField{
				{Bits: "1:0", Name: "PWR_MODE", Description: "Power mode", Values: "0=Normal, 1=Low power, 2=Suspend"},
			}},
		{Address: "0x3F", Name: "SYS_TRIGGER", Description: "System trigger", Access: "W", Default: "0x00",
			BitFields: []BitField{
				{Bits: "7", Name: "CLK_SEL", Description: "Clock source", Values: "0=Internal oscillator, 1=External crystal"},
				{Bits: "6", Name: "RST_INT", Description: "Reset interrupt status", Values: "1=Reset"},
				{Bits: "5", Name: "RST_SYS", Description: "System reset", Values: "1=Reset"},
				{Bits: "0", Name: "SELF_TEST", Description: "Trigger self-test", Values: "1=Run"},
			}},
		{Address: "0x40", Name: "TEMP_SOURCE", Description: "Temperature source", Access: "RW", Default: "0x00",
			BitFields: []BitField{
				{Bits: "1:0", Name: "TEMP_SOURCE", Description: "Sensor used for TEMP", Values: "0=Accelerometer, 1=Gyroscope"},
			}},
		{Address: "0x41", Name: "AXIS_MAP_CONFIG", Description: "Axis remap", Access: "RW", Default: "0x24"},
		{Address: "0x42", Name: "AXIS_MAP_SIGN", Description: "Axis remap sign", Access: "RW", Default: "0x00"},
	}
}

// RegisterAddresses lists every readable page 0 address from CHIP_ID to
// AXIS_MAP_SIGN, including the MSB halves of the data outputs.
func RegisterAddresses() []byte {
	var out []byte
	for a := byte(0x00); a <= 0x42; a++ {
		if a == 0x3C || a == 0x3F {
			// reserved, write-only
			continue
		}
		out = append(out, a)
	}
	return out
}
