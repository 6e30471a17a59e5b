// Package analysis computes sensor quality statistics over an exported
// recording session: noise as the spread of vector magnitudes, bias as the
// mean vector (gravity-adjusted for the accelerometer).
package analysis

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"gonum.org/v1/gonum/stat"

	"github.com/inertialab/tiltd/internal/quat"
	"github.com/inertialab/tiltd/internal/recorder"
)

// Stats summarizes one session.
type Stats struct {
	Samples int

	// AccelNoise is the standard deviation of accelerometer magnitudes, in
	// g. AccelBias is the mean reading after adding 1 g back to the z axis
	// (a level, static device reads (0,0,-1)).
	AccelNoise    float64
	AccelBias     quat.Vec3
	AccelBiasNorm float64

	// GyroNoise and GyroBias are the same measures for the gyroscope, in
	// rad/s, with no gravity adjustment.
	GyroNoise    float64
	GyroBias     quat.Vec3
	GyroBiasNorm float64
}

// ErrEmptySession is returned when a loaded session holds no records.
var ErrEmptySession = errors.New("analysis: session contains no records")

// Load reads an exported session file back into records.
func Load(path string) ([]recorder.Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read session: %w", err)
	}
	var records []recorder.Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parse session %s: %w", path, err)
	}
	return records, nil
}

// Analyze computes noise and bias statistics over a session.
func Analyze(records []recorder.Record) (Stats, error) {
	if len(records) == 0 {
		return Stats{}, ErrEmptySession
	}

	n := len(records)
	accelMags := make([]float64, n)
	gyroMags := make([]float64, n)
	var accelSum, gyroSum quat.Vec3

	for i, rec := range records {
		accelMags[i] = rec.Accelerometer.Norm()
		gyroMags[i] = rec.Gyroscope.Norm()

		accelSum.X += rec.Accelerometer.X
		accelSum.Y += rec.Accelerometer.Y
		accelSum.Z += rec.Accelerometer.Z + 1.0 // remove gravity from z
		gyroSum.X += rec.Gyroscope.X
		gyroSum.Y += rec.Gyroscope.Y
		gyroSum.Z += rec.Gyroscope.Z
	}

	s := Stats{
		Samples:   n,
		AccelBias: accelSum.Scale(1 / float64(n)),
		GyroBias:  gyroSum.Scale(1 / float64(n)),
	}
	s.AccelBiasNorm = s.AccelBias.Norm()
	s.GyroBiasNorm = s.GyroBias.Norm()

	if n > 1 {
		s.AccelNoise = stat.StdDev(accelMags, nil)
		s.GyroNoise = stat.StdDev(gyroMags, nil)
	}

	return s, nil
}
