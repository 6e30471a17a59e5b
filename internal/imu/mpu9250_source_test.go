package imu

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMPU9250SourceRejectsBadRanges(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name        string
		accel, gyro byte
	}{
		{"accel selector too large", 4, 0},
		{"gyro selector too large", 0, 4},
		{"both out of range", 255, 255},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := NewMPU9250Source("SPI0.0", "GPIO25", tc.accel, tc.gyro)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "range selector")
		})
	}
}
