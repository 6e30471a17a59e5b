// Package estimator implements the three tilt estimation algorithms and the
// per-session orientation state they operate on. One Update per sensor tick;
// the caller owns scheduling and mutual exclusion (the state is written by
// exactly one tick at a time).
package estimator

import (
	"fmt"

	"github.com/inertialab/tiltd/internal/quat"
)

// Algorithm selects which tilt estimator processes incoming samples.
type Algorithm int

const (
	// AccelerometerOnly derives tilt from the gravity direction alone.
	// Stateless and drift-free, but corrupted by linear acceleration.
	AccelerometerOnly Algorithm = iota
	// GyroscopeOnly integrates angular rate. Smooth short-term response,
	// unbounded drift from integrated sensor bias.
	GyroscopeOnly
	// ComplementaryFilter fuses gyro integration with a slow accelerometer
	// correction on a quaternion state.
	ComplementaryFilter
)

var algorithmNames = map[Algorithm]string{
	AccelerometerOnly:   "accelerometer_only",
	GyroscopeOnly:       "gyroscope_only",
	ComplementaryFilter: "complementary_filter",
}

// String returns the stable wire tag for a, as used in exported recordings
// and control messages.
func (a Algorithm) String() string {
	if name, ok := algorithmNames[a]; ok {
		return name
	}
	return fmt.Sprintf("algorithm(%d)", int(a))
}

// ParseAlgorithm maps a wire tag back to its Algorithm.
func ParseAlgorithm(s string) (Algorithm, error) {
	for a, name := range algorithmNames {
		if name == s {
			return a, nil
		}
	}
	return 0, fmt.Errorf("unknown algorithm %q", s)
}

// Estimate is the output of one processed tick: pitch and roll in radians,
// tagged with the algorithm that produced them.
type Estimate struct {
	Pitch     float64   `json:"pitch"`
	Roll      float64   `json:"roll"`
	Algorithm Algorithm `json:"-"`
}

// DefaultGain is the complementary filter's accelerometer correction gain.
// Small on purpose: the correction is applied gently so transient linear
// acceleration cannot yank the orientation around.
const DefaultGain = 0.02

// State holds everything that persists between ticks: the orientation
// quaternion driven by the complementary filter and the integrated angles of
// the gyroscope-only estimator. A State belongs to exactly one pipeline; it
// is not safe for concurrent Updates.
type State struct {
	algorithm   Algorithm
	orientation quat.Quaternion
	gyroPitch   float64
	gyroRoll    float64
	gain        float64
}

// NewState returns a State at identity orientation running alg.
func NewState(alg Algorithm) *State {
	return &State{
		algorithm:   alg,
		orientation: quat.Identity,
		gain:        DefaultGain,
	}
}

// SetGain overrides the complementary correction gain. Non-positive values
// restore the default.
func (s *State) SetGain(g float64) {
	if g <= 0 {
		g = DefaultGain
	}
	s.gain = g
}

// Algorithm returns the active algorithm.
func (s *State) Algorithm() Algorithm {
	return s.algorithm
}

// SetAlgorithm switches the active algorithm. Switching resets the
// orientation to identity and the integrated gyro angles to zero, so no
// drift or filter state leaks across algorithms. This reset is part of the
// contract, not an implementation detail.
func (s *State) SetAlgorithm(alg Algorithm) {
	if alg == s.algorithm {
		return
	}
	s.algorithm = alg
	s.orientation = quat.Identity
	s.gyroPitch = 0
	s.gyroRoll = 0
}

// Orientation returns the current orientation quaternion.
func (s *State) Orientation() quat.Quaternion {
	return s.orientation
}

// GyroAngles returns the integrated pitch and roll of the gyroscope-only
// estimator.
func (s *State) GyroAngles() (pitch, roll float64) {
	return s.gyroPitch, s.gyroRoll
}

// Update processes one sample with the active algorithm. accel is in g,
// gyro in rad/s, dt in seconds. Degenerate input never returns an error:
// each estimator degrades to a zero result or a skipped sub-step instead of
// propagating NaN or Inf.
func (s *State) Update(accel, gyro quat.Vec3, dt float64) Estimate {
	var pitch, roll float64
	switch s.algorithm {
	case GyroscopeOnly:
		pitch, roll = s.updateGyro(gyro, dt)
	case ComplementaryFilter:
		pitch, roll = s.updateComplementary(accel, gyro, dt)
	default:
		pitch, roll = accelTilt(accel)
	}
	return Estimate{Pitch: pitch, Roll: roll, Algorithm: s.algorithm}
}
