// Package pipeline orchestrates one estimation tick: pull the latest
// sample, compute the time delta, run the active estimator, and hand the
// tagged record to the recorder.
package pipeline

import (
	"errors"
	"fmt"

	"github.com/inertialab/tiltd/internal/estimator"
	"github.com/inertialab/tiltd/internal/imu"
	"github.com/inertialab/tiltd/internal/recorder"
)

// defaultDt seeds the first tick, when no previous timestamp exists, and
// replaces non-increasing timestamps. Matches the nominal 50 Hz cadence.
const defaultDt = 0.02

// Pipeline drives one estimation session. It performs no scheduling and no
// locking of its own: the caller invokes Tick at its chosen cadence and
// must not run ticks concurrently.
type Pipeline struct {
	src     imu.Source
	state   *estimator.State
	rec     *recorder.Recorder
	lastTS  float64
	hasLast bool
}

// New assembles a pipeline over the given source, state, and recorder.
func New(src imu.Source, state *estimator.State, rec *recorder.Recorder) *Pipeline {
	return &Pipeline{src: src, state: state, rec: rec}
}

// Tick processes one sample and returns the estimate together with the
// tagged record built from it. ok is false when the source had nothing
// fresh (imu.ErrUnavailable): the tick is skipped, no state is mutated, and
// no record is produced. Any other source error is returned wrapped.
func (p *Pipeline) Tick() (est estimator.Estimate, rec recorder.Record, ok bool, err error) {
	sample, err := p.src.Next()
	if errors.Is(err, imu.ErrUnavailable) {
		return estimator.Estimate{}, recorder.Record{}, false, nil
	}
	if err != nil {
		return estimator.Estimate{}, recorder.Record{}, false, fmt.Errorf("read sample: %w", err)
	}

	dt := defaultDt
	if p.hasLast && sample.Timestamp > p.lastTS {
		dt = sample.Timestamp - p.lastTS
	}
	p.lastTS = sample.Timestamp
	p.hasLast = true

	est = p.state.Update(sample.Accel, sample.Gyro, dt)

	rec = recorder.Record{
		Timestamp:     sample.Timestamp,
		Accelerometer: sample.Accel,
		Gyroscope:     sample.Gyro,
		Orientation:   recorder.Orientation{Pitch: est.Pitch, Roll: est.Roll},
		Algorithm:     est.Algorithm.String(),
	}
	p.rec.Append(rec)

	return est, rec, true, nil
}

// SwitchAlgorithm changes the active estimator, resetting the orientation
// state per the algorithm-switch contract.
func (p *Pipeline) SwitchAlgorithm(alg estimator.Algorithm) {
	p.state.SetAlgorithm(alg)
}

// Algorithm returns the active estimator.
func (p *Pipeline) Algorithm() estimator.Algorithm {
	return p.state.Algorithm()
}
