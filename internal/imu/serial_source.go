package imu

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	serial "github.com/jacobsa/go-serial/serial"

	"github.com/inertialab/tiltd/internal/quat"
)

type serialSource struct {
	port   io.ReadCloser
	reader *bufio.Reader
}

// NewSerialSource opens a serial port carrying comma-separated
// "ax,ay,az,gx,gy,gz" lines (accelerometer in g, gyroscope in rad/s), the
// framing used by the microcontroller bridge. Samples are timestamped on
// the host as they arrive.
func NewSerialSource(portName string, baudRate uint) (Source, error) {
	opts := serial.OpenOptions{
		PortName:              portName,
		BaudRate:              baudRate,
		DataBits:              8,
		StopBits:              1,
		MinimumReadSize:       1,
		ParityMode:            serial.PARITY_NONE,
		InterCharacterTimeout: 0,
	}

	port, err := serial.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open serial port %s: %w", portName, err)
	}

	return &serialSource{
		port:   port,
		reader: bufio.NewReader(port),
	}, nil
}

// Next reads lines until one parses as a full sample. Partial or garbled
// lines (common right after opening the port mid-stream) are skipped.
func (s *serialSource) Next() (Sample, error) {
	for {
		line, err := s.reader.ReadString('\n')
		if err != nil {
			return Sample{}, fmt.Errorf("serial read: %w", err)
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		fields := strings.Split(line, ",")
		if len(fields) != 6 {
			continue
		}

		vals := make([]float64, 6)
		ok := true
		for i, f := range fields {
			v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
			if err != nil {
				ok = false
				break
			}
			vals[i] = v
		}
		if !ok {
			continue
		}

		return Sample{
			Timestamp: nowSeconds(),
			Accel:     quat.Vec3{X: vals[0], Y: vals[1], Z: vals[2]},
			Gyro:      quat.Vec3{X: vals[3], Y: vals[4], Z: vals[5]},
		}, nil
	}
}

// Close releases the serial port.
func (s *serialSource) Close() error {
	return s.port.Close()
}
