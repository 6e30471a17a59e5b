package app

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseControl(t *testing.T) {
	t.Parallel()

	t.Run("set_algorithm with a known algorithm", func(t *testing.T) {
		t.Parallel()
		msg, err := parseControl([]byte(`{"action":"set_algorithm","algorithm":"gyroscope_only"}`))
		require.NoError(t, err)
		assert.Equal(t, "set_algorithm", msg.Action)
		assert.Equal(t, "gyroscope_only", msg.Algorithm)
	})

	t.Run("recording actions need no algorithm", func(t *testing.T) {
		t.Parallel()
		for _, action := range []string{"start_recording", "stop_recording", "export"} {
			msg, err := parseControl([]byte(`{"action":"` + action + `"}`))
			require.NoError(t, err)
			assert.Equal(t, action, msg.Action)
		}
	})

	t.Run("set_algorithm with an unknown algorithm", func(t *testing.T) {
		t.Parallel()
		_, err := parseControl([]byte(`{"action":"set_algorithm","algorithm":"kalman"}`))
		assert.Error(t, err)
	})

	t.Run("unknown action", func(t *testing.T) {
		t.Parallel()
		_, err := parseControl([]byte(`{"action":"reboot"}`))
		assert.Error(t, err)
	})

	t.Run("malformed payload", func(t *testing.T) {
		t.Parallel()
		_, err := parseControl([]byte(`{action:`))
		assert.Error(t, err)
	})
}

func TestTiltMessageSchema(t *testing.T) {
	t.Parallel()

	data, err := json.Marshal(TiltMessage{
		Timestamp: 12.5,
		Pitch:     0.1,
		Roll:      -0.05,
		Algorithm: "complementary_filter",
	})
	require.NoError(t, err)

	var fields map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &fields))
	for _, key := range []string{"timestamp", "pitch", "roll", "algorithm"} {
		assert.Contains(t, fields, key)
	}
}
