// Copyright (c) 2026 Inertia Lab
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text


package imu

import (
	"math"
	"time"

	"github.com/inertialab/tiltd/internal/quat"
)

type mockSource struct {
	start time.Time
}

// NewMockSource returns a source that simulates a device rocking gently
// about both tilt axes, with the accelerometer reading the matching
// body-frame gravity and the gyroscope the matching angular rate. Useful
// for development without hardware.
func NewMockSource() Source {
	return &mockSource{start: time.Now()}
}

func (m *mockSource) Next() (Sample, error) {
	elapsed := time.Since(m.start).Seconds()

	pitch := 0.3 * math.Sin(0.5*elapsed)
	roll := 0.2 * math.Cos(0.3*elapsed)

	return Sample{
		Timestamp: nowSeconds(),
		Accel: quat.Vec3{
			X: math.Sin(roll),
			Y: -math.Sin(pitch),
			Z: -math.Cos(pitch) * math.Cos(roll),
		},
		Gyro: quat.Vec3{
			X: 0.15 * math.Cos(0.5*elapsed),
			Y: -0.06 * math.Sin(0.3*elapsed),
		},
	}, nil
}
