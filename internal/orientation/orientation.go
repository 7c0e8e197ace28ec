package orientation

import (
	"math"

	"github.com/relabs-tech/orientation_computer/internal/bno055"
)

// Pose is the canonical representation of orientation for the app, in degrees.
type Pose struct {
	Roll  float64 `json:"roll"`
	Pitch float64 `json:"pitch"`
	Yaw   float64 `json:"yaw"`
}

// Source is anything that can provide poses over time.
type Source interface {
	Next() (Pose, error)
}

// FromEuler converts the BNO055 Euler vector (x=pitch, y=roll, z=heading)
// into a Pose. Heading is reported in [0, 360).
func FromEuler(v bno055.Vector) Pose {
	return Pose{
		Roll:  v.Y,
		Pitch: v.X,
		Yaw:   math.Mod(v.Z, 360),
	}
}

// FromQuaternion computes the same angles from the fused quaternion. It is
// used when the Euler output gimbal-locks near ±90° pitch.
func FromQuaternion(q bno055.Quaternion) Pose {
	sinr := 2 * (q.W*q.X + q.Y*q.Z)
	cosr := 1 - 2*(q.X*q.X+q.Y*q.Y)
	roll := math.Atan2(sinr, cosr)

	sinp := 2 * (q.W*q.Y - q.Z*q.X)
	var pitch float64
	if math.Abs(sinp) >= 1 {
		pitch = math.Copysign(math.Pi/2, sinp)
	} else {
		pitch = math.Asin(sinp)
	}

	siny := 2 * (q.W*q.Z + q.X*q.Y)
	cosy := 1 - 2*(q.Y*q.Y+q.Z*q.Z)
	yaw := math.Atan2(siny, cosy) * 180.0 / math.Pi
	if yaw < 0 {
		yaw += 360
	}

	return Pose{
		Roll:  roll * 180.0 / math.Pi,
		Pitch: pitch * 180.0 / math.Pi,
		Yaw:   yaw,
	}
}

// ComputePoseFromAccel computes roll and pitch from the gravity vector only.
// Yaw is left at 0.
//
//	roll  = atan2(ay, az)
//	pitch = atan2(-ax, sqrt(ay² + az²))
func ComputePoseFromAccel(ax, ay, az float64) Pose {
	rollRad := math.Atan2(ay, az)
	pitchRad := math.Atan2(-ax, math.Sqrt(ay*ay+az*az))

	return Pose{
		Roll:  rollRad * 180.0 / math.Pi,
		Pitch: pitchRad * 180.0 / math.Pi,
	}
}
