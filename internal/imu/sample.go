// Package imu defines the raw sensor sample model and the sources that
// deliver samples to the pipeline.
package imu

import (
	"errors"
	"time"

	"github.com/inertialab/tiltd/internal/quat"
)

// Sample is one raw inertial reading: accelerometer in g, gyroscope in
// rad/s, timestamp in seconds. Samples are immutable inputs supplied by a
// Source once per tick.
type Sample struct {
	Timestamp float64   `json:"timestamp"`
	Accel     quat.Vec3 `json:"accelerometer"`
	Gyro      quat.Vec3 `json:"gyroscope"`
}

// ErrUnavailable is returned by a Source when no fresh reading exists.
// The pipeline skips the tick; it is not a failure.
var ErrUnavailable = errors.New("imu: sample unavailable")

// Source is anything that can provide raw samples over time: a real sensor,
// a serial bridge, or a mock generator.
type Source interface {
	Next() (Sample, error)
}

func nowSeconds() float64 {
	return float64(time.Now().UnixNano()) / 1e9
}
