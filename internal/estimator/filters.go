package estimator

import (
	"math"

	"github.com/inertialab/tiltd/internal/quat"
)

const (
	// minAccelNorm is the accelerometer magnitude below which a reading is
	// treated as sensor fault or free fall and yields a zero estimate.
	minAccelNorm = 0.1
	// minRate is the angular rate (rad/s) below which gyro propagation is
	// skipped; it guards the axis normalization in FromAxisAngle.
	minRate = 0.001
	// accelGate bounds |‖a‖ − 1| for the accelerometer correction: only
	// readings plausibly dominated by gravity may steer the filter.
	accelGate = 0.1
	// minAxisNorm is the tilt-axis magnitude below which the measured and
	// true up vectors are considered aligned and no correction is applied.
	minAxisNorm = 0.001
)

// up is the global-frame gravity direction the correction steers toward.
var up = quat.Vec3{Z: -1}

// forward is the body-frame reference vector rotated by the orientation to
// extract pitch and roll without touching Euler state directly.
var forward = quat.Vec3{Z: 1}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// wrapAngle folds a into [-π, π]. A single step suffices: per-tick
// increments are small against 2π.
func wrapAngle(a float64) float64 {
	if a > math.Pi {
		return a - 2*math.Pi
	}
	if a < -math.Pi {
		return a + 2*math.Pi
	}
	return a
}

// accelTilt derives pitch and roll from a single accelerometer reading,
// assuming it is dominated by gravity. Near-zero magnitude yields (0, 0)
// rather than dividing by a vanishing norm.
func accelTilt(accel quat.Vec3) (pitch, roll float64) {
	m := accel.Norm()
	if m < minAccelNorm {
		return 0, 0
	}
	a := accel.Scale(1 / m)
	pitch = math.Asin(clamp(-a.Y, -1, 1))
	roll = math.Atan2(a.X, -a.Z)
	return pitch, roll
}

// updateGyro Euler-integrates angular rate into the persistent pitch/roll
// angles. Holding the gyro at zero leaves the angles untouched for any dt.
func (s *State) updateGyro(gyro quat.Vec3, dt float64) (pitch, roll float64) {
	s.gyroPitch = wrapAngle(s.gyroPitch + gyro.X*dt)
	s.gyroRoll = wrapAngle(s.gyroRoll + gyro.Y*dt)
	return s.gyroPitch, s.gyroRoll
}

// updateComplementary runs the three-step fused update: dead-reckon the gyro
// increment, gently steer toward the measured gravity direction, then read
// pitch and roll back out of the quaternion.
func (s *State) updateComplementary(accel, gyro quat.Vec3, dt float64) (pitch, roll float64) {
	// Gyro propagation: compose the incremental body-frame rotation on the
	// right, re-normalizing to hold the unit-norm invariant. Rates under
	// minRate are treated as no rotation.
	if rate := gyro.Norm(); rate >= minRate {
		rot := quat.FromAxisAngle(gyro.Scale(1/rate), rate*dt)
		s.orientation = s.orientation.Mul(rot).Normalize()
	}

	// Accelerometer correction: only when the magnitude is close to 1 g,
	// so the reading plausibly measures gravity and not linear motion.
	if m := accel.Norm(); math.Abs(m-1) <= accelGate {
		g := s.orientation.Rotate(accel.Scale(1 / m))
		axis := quat.Vec3{X: g.Y, Y: -g.X}
		if axis.Norm() >= minAxisNorm {
			phi := math.Acos(clamp(g.Dot(up), -1, 1))
			corr := quat.FromAxisAngle(axis, -s.gain*phi)
			// Global-frame correction composes on the left.
			s.orientation = corr.Mul(s.orientation).Normalize()
		}
	}

	// Extraction: rotate the body forward vector into the global frame and
	// read the angles from its components.
	f := s.orientation.Rotate(forward)
	pitch = math.Asin(clamp(-f.Y, -1, 1))
	roll = math.Atan2(f.X, f.Z)
	return pitch, roll
}
