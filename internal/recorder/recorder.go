// Copyright (c) 2026 Inertia Lab
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text


// Package recorder keeps the ordered log of processed samples during a
// recording session and exports it as JSON.
package recorder

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/inertialab/tiltd/internal/quat"
)

// Orientation is the derived tilt of one record, in radians.
type Orientation struct {
	Pitch float64 `json:"pitch"`
	Roll  float64 `json:"roll"`
}

// Record is one processed sample in the export schema. Field names are
// stable: external tooling parses them.
type Record struct {
	Timestamp     float64     `json:"timestamp"`
	Accelerometer quat.Vec3   `json:"accelerometer"`
	Gyroscope     quat.Vec3   `json:"gyroscope"`
	Orientation   Orientation `json:"orientation"`
	Algorithm     string      `json:"algorithm"`
}

// ErrNoData is returned by Export when there is nothing to write: either no
// recording happened or it produced zero samples. An expected condition, to
// be surfaced as a notice rather than a failure.
var ErrNoData = errors.New("recorder: no samples recorded")

// Recorder accumulates records in insertion order while recording is
// active. Safe for concurrent use: the tick loop appends while control
// messages start, stop, and export.
type Recorder struct {
	mu        sync.Mutex
	recording bool
	records   []Record
}

// New returns an idle Recorder.
func New() *Recorder {
	return &Recorder{}
}

// Start begins a fresh session, discarding any previously recorded log.
func (r *Recorder) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.recording = true
	r.records = nil
}

// Stop ends the session. The log is retained for export.
func (r *Recorder) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.recording = false
}

// Recording reports whether a session is active.
func (r *Recorder) Recording() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.recording
}

// Append adds one record to the session log. Ignored when not recording.
func (r *Recorder) Append(rec Record) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.recording {
		return
	}
	r.records = append(r.records, rec)
}

// Len returns the number of recorded samples.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.records)
}

// Snapshot returns a copy of the session log in insertion order.
func (r *Recorder) Snapshot() []Record {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Record, len(r.records))
	copy(out, r.records)
	return out
}

// Export writes the session log as an indented JSON array into dir and
// returns the written path. The file name embeds the export time and the
// algorithm tag of the last record, so repeated exports never collide. The
// write is atomic: a temp file in dir is renamed into place. An empty log
// returns ErrNoData and writes nothing; an I/O failure leaves the in-memory
// log untouched.
func (r *Recorder) Export(dir string) (string, error) {
	records := r.Snapshot()
	if len(records) == 0 {
		return "", ErrNoData
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal session: %w", err)
	}

	name := fmt.Sprintf("imu_%d_%s.json", time.Now().Unix(), records[len(records)-1].Algorithm)
	path := filepath.Join(dir, name)

	tmp, err := os.CreateTemp(dir, ".imu_export_*")
	if err != nil {
		return "", fmt.Errorf("create temp export file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("write export: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("close export: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("rename export into place: %w", err)
	}

	return path, nil
}
