// Copyright (c) 2026 Inertia Lab
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text


package imu

import (
	"fmt"
	"log"
	"math"

	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/devices/v3/mpu9250"
	"periph.io/x/host/v3"

	"github.com/inertialab/tiltd/internal/quat"
)

type mpuSource struct {
	imu        *mpu9250.MPU9250
	accelScale float64 // LSB per g
	gyroScale  float64 // LSB per deg/s
}

// NewMPU9250Source initializes an SPI-attached MPU-9250 and returns a
// Source that reads scaled accelerometer and gyroscope samples from it.
// accelRange and gyroRange follow the sensor's register encoding
// (0=±2g..3=±16g, 0=±250°/s..3=±2000°/s).
func NewMPU9250Source(spiDev, csPin string, accelRange, gyroRange byte) (Source, error) {
	if accelRange > 3 {
		return nil, fmt.Errorf("IMU accel range selector must be 0-3, got %d", accelRange)
	}
	if gyroRange > 3 {
		return nil, fmt.Errorf("IMU gyro range selector must be 0-3, got %d", gyroRange)
	}

	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("periph host init: %w", err)
	}

	cs := gpioreg.ByName(csPin)
	if cs == nil {
		return nil, fmt.Errorf("IMU CS pin %q not found", csPin)
	}

	tr, err := mpu9250.NewSpiTransport(spiDev, cs)
	if err != nil {
		return nil, fmt.Errorf("IMU SPI transport (%s): %w", spiDev, err)
	}

	dev, err := mpu9250.New(tr)
	if err != nil {
		return nil, fmt.Errorf("IMU device creation: %w", err)
	}

	if err := dev.Init(); err != nil {
		return nil, fmt.Errorf("IMU init: %w", err)
	}

	if err := dev.SetAccelRange(accelRange); err != nil {
		return nil, fmt.Errorf("IMU set accel range: %w", err)
	}
	if err := dev.SetGyroRange(gyroRange); err != nil {
		return nil, fmt.Errorf("IMU set gyro range: %w", err)
	}
	log.Printf("mpu9250: accel range ±%dg, gyro range ±%d°/s",
		[]int{2, 4, 8, 16}[accelRange], []int{250, 500, 1000, 2000}[gyroRange])

	// Self-test and calibration are best-effort at startup; a failure is
	// logged but does not keep the source from producing samples.
	if _, err := dev.SelfTest(); err != nil {
		log.Printf("mpu9250: self-test failed: %v", err)
	}
	if err := dev.Calibrate(); err != nil {
		log.Printf("mpu9250: calibration failed: %v", err)
	}

	return &mpuSource{
		imu:        dev,
		accelScale: float64(int(16384) >> accelRange),
		gyroScale:  131.0 / float64(int(1)<<gyroRange),
	}, nil
}

// Next reads all six axes and converts raw counts to g and rad/s.
func (s *mpuSource) Next() (Sample, error) {
	ax, err := s.imu.GetAccelerationX()
	if err != nil {
		return Sample{}, fmt.Errorf("IMU accel X: %w", err)
	}
	ay, err := s.imu.GetAccelerationY()
	if err != nil {
		return Sample{}, fmt.Errorf("IMU accel Y: %w", err)
	}
	az, err := s.imu.GetAccelerationZ()
	if err != nil {
		return Sample{}, fmt.Errorf("IMU accel Z: %w", err)
	}

	gx, err := s.imu.GetRotationX()
	if err != nil {
		return Sample{}, fmt.Errorf("IMU gyro X: %w", err)
	}
	gy, err := s.imu.GetRotationY()
	if err != nil {
		return Sample{}, fmt.Errorf("IMU gyro Y: %w", err)
	}
	gz, err := s.imu.GetRotationZ()
	if err != nil {
		return Sample{}, fmt.Errorf("IMU gyro Z: %w", err)
	}

	const degToRad = math.Pi / 180

	return Sample{
		Timestamp: nowSeconds(),
		Accel: quat.Vec3{
			X: float64(ax) / s.accelScale,
			Y: float64(ay) / s.accelScale,
			Z: float64(az) / s.accelScale,
		},
		Gyro: quat.Vec3{
			X: float64(gx) / s.gyroScale * degToRad,
			Y: float64(gy) / s.gyroScale * degToRad,
			Z: float64(gz) / s.gyroScale * degToRad,
		},
	}, nil
}
