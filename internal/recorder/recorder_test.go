package recorder

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inertialab/tiltd/internal/quat"
)

func testRecord(ts float64, alg string) Record {
	return Record{
		Timestamp:     ts,
		Accelerometer: quat.Vec3{X: 0.01, Y: -0.02, Z: -0.99},
		Gyroscope:     quat.Vec3{X: 0.1, Z: -0.05},
		Orientation:   Orientation{Pitch: 0.02, Roll: -0.01},
		Algorithm:     alg,
	}
}

func TestAppendOnlyWhileRecording(t *testing.T) {
	t.Parallel()

	r := New()
	r.Append(testRecord(1.0, "complementary_filter"))
	assert.Equal(t, 0, r.Len())

	r.Start()
	assert.True(t, r.Recording())
	r.Append(testRecord(1.0, "complementary_filter"))
	r.Append(testRecord(1.02, "complementary_filter"))
	assert.Equal(t, 2, r.Len())

	r.Stop()
	assert.False(t, r.Recording())
	r.Append(testRecord(1.04, "complementary_filter"))
	assert.Equal(t, 2, r.Len())
}

func TestStartDiscardsPreviousSession(t *testing.T) {
	t.Parallel()

	r := New()
	r.Start()
	r.Append(testRecord(1.0, "gyroscope_only"))
	r.Stop()
	require.Equal(t, 1, r.Len())

	r.Start()
	assert.Equal(t, 0, r.Len())
}

func TestSnapshotPreservesOrder(t *testing.T) {
	t.Parallel()

	r := New()
	r.Start()
	for i := 0; i < 10; i++ {
		r.Append(testRecord(float64(i)*0.02, "complementary_filter"))
	}

	snap := r.Snapshot()
	require.Len(t, snap, 10)
	for i, rec := range snap {
		assert.Equal(t, float64(i)*0.02, rec.Timestamp)
	}

	// The snapshot is a copy, not a view into the live log.
	snap[0].Timestamp = 99
	assert.Equal(t, 0.0, r.Snapshot()[0].Timestamp)
}

func TestExportEmptyLog(t *testing.T) {
	t.Parallel()

	r := New()
	_, err := r.Export(t.TempDir())
	assert.ErrorIs(t, err, ErrNoData)

	// Started but empty sessions are refused too.
	r.Start()
	r.Stop()
	_, err = r.Export(t.TempDir())
	assert.ErrorIs(t, err, ErrNoData)
}

func TestExportWritesSessionFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	r := New()
	r.Start()
	r.Append(testRecord(1.0, "gyroscope_only"))
	r.Append(testRecord(1.02, "complementary_filter"))
	r.Stop()

	path, err := r.Export(dir)
	require.NoError(t, err)
	assert.Equal(t, dir, filepath.Dir(path))

	name := filepath.Base(path)
	assert.True(t, strings.HasPrefix(name, "imu_"), "name %q", name)
	assert.True(t, strings.HasSuffix(name, "_complementary_filter.json"), "name %q", name)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var got []Record
	require.NoError(t, json.Unmarshal(data, &got))
	require.Len(t, got, 2)
	assert.Equal(t, 1.0, got[0].Timestamp)
	assert.Equal(t, "gyroscope_only", got[0].Algorithm)
	assert.Equal(t, 1.02, got[1].Timestamp)
	assert.Equal(t, -0.99, got[1].Accelerometer.Z)
	assert.Equal(t, 0.02, got[1].Orientation.Pitch)

	// No temp files left behind.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestExportSchemaFieldNames(t *testing.T) {
	t.Parallel()

	r := New()
	r.Start()
	r.Append(testRecord(2.5, "accelerometer_only"))

	path, err := r.Export(t.TempDir())
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var got []map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &got))
	require.Len(t, got, 1)
	for _, key := range []string{"timestamp", "accelerometer", "gyroscope", "orientation", "algorithm"} {
		assert.Contains(t, got[0], key)
	}

	var axes map[string]float64
	require.NoError(t, json.Unmarshal(got[0]["accelerometer"], &axes))
	for _, key := range []string{"x", "y", "z"} {
		assert.Contains(t, axes, key)
	}

	var tilt map[string]float64
	require.NoError(t, json.Unmarshal(got[0]["orientation"], &tilt))
	assert.Contains(t, tilt, "pitch")
	assert.Contains(t, tilt, "roll")
}

func TestExportKeepsLog(t *testing.T) {
	t.Parallel()

	r := New()
	r.Start()
	r.Append(testRecord(1.0, "complementary_filter"))
	r.Stop()

	_, err := r.Export(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, 1, r.Len())
}
