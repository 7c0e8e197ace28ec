package imu

import "github.com/relabs-tech/orientation_computer/internal/bno055"

// Sample is one decoded snapshot of the BNO055 outputs.
type Sample struct {
	Source string `json:"source"`
	Time   string `json:"time"` // RFC3339Nano

	Accel   bno055.Vector `json:"accel"`   // m/s²
	Mag     bno055.Vector `json:"mag"`     // µT
	Gyro    bno055.Vector `json:"gyro"`    // rad/s
	Euler   bno055.Vector `json:"euler"`   // degrees, x=pitch y=roll z=heading
	Linear  bno055.Vector `json:"linear"`  // m/s², gravity removed
	Gravity bno055.Vector `json:"gravity"` // m/s²

	Quaternion  bno055.Quaternion  `json:"quat"`
	TempC       float64            `json:"temp_c"`
	Calibration bno055.Calibration `json:"calib"`

	Status byte `json:"status"` // SYS_STATUS, verbatim
	Error  byte `json:"error"`  // SYS_ERR, verbatim
}

// Vector returns the reading for q.
func (s *Sample) Vector(q bno055.Quantity) bno055.Vector {
	switch q {
	case bno055.Accelerometer:
		return s.Accel
	case bno055.Magnetometer:
		return s.Mag
	case bno055.Gyroscope:
		return s.Gyro
	case bno055.Euler:
		return s.Euler
	case bno055.LinearAccel:
		return s.Linear
	case bno055.Gravity:
		return s.Gravity
	}
	return bno055.Vector{}
}

// SetVector stores v as the reading for q.
func (s *Sample) SetVector(q bno055.Quantity, v bno055.Vector) {
	switch q {
	case bno055.Accelerometer:
		s.Accel = v
	case bno055.Magnetometer:
		s.Mag = v
	case bno055.Gyroscope:
		s.Gyro = v
	case bno055.Euler:
		s.Euler = v
	case bno055.LinearAccel:
		s.Linear = v
	case bno055.Gravity:
		s.Gravity = v
	}
}

type SampleSource interface {
	ReadSample() (Sample, error)
}
