// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"fmt"
	"log"

	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/devices/v3/mpu9250"
	"periph.io/x/host/v3"

	"github.com/relabs-tech/attitude/internal/imu"
)

// MPU9250Options selects the SPI device and full-scale ranges.
type MPU9250Options struct {
	SPIDevice string // e.g. /dev/spidev0.0
	CSPin     string // GPIO name of chip select
	// Accelerometer: 0=±2g, 1=±4g, 2=±8g, 3=±16g
	AccelRange byte
	// Gyroscope: 0=±250°/s, 1=±500°/s, 2=±1000°/s, 3=±2000°/s
	GyroRange byte
	SelfTest  bool
}

// MPU9250 reads raw accel/gyro samples from an MPU9250 driven by the periph
// driver.
type MPU9250 struct {
	name string
	imu  *mpu9250.MPU9250
}

// NewMPU9250 initializes an MPU9250 over SPI.
func NewMPU9250(name string, opts MPU9250Options) (*MPU9250, error) {
	if opts.AccelRange > 3 || opts.GyroRange > 3 {
		return nil, fmt.Errorf("%s IMU: ranges must be 0-3, got accel=%d gyro=%d", name, opts.AccelRange, opts.GyroRange)
	}

	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("%s IMU: periph host init: %w", name, err)
	}

	cs := gpioreg.ByName(opts.CSPin)
	if cs == nil {
		return nil, fmt.Errorf("%s IMU: CS pin %q not found", name, opts.CSPin)
	}

	tr, err := mpu9250.NewSpiTransport(opts.SPIDevice, cs)
	if err != nil {
		return nil, fmt.Errorf("%s IMU: SPI transport (%s): %w", name, opts.SPIDevice, err)
	}

	dev, err := mpu9250.New(*tr)
	if err != nil {
		return nil, fmt.Errorf("%s IMU: device creation: %w", name, err)
	}

	s := &MPU9250{name: name, imu: dev}

	if err := dev.Init(); err != nil {
		s.Close()
		return nil, fmt.Errorf("%s IMU: initialization: %w", name, err)
	}

	if err := dev.SetAccelRange(opts.AccelRange); err != nil {
		s.Close()
		return nil, fmt.Errorf("%s IMU: set accel range: %w", name, err)
	}
	log.Printf("%s IMU: accelerometer range set to %d (±%dg)", name, opts.AccelRange, []int{2, 4, 8, 16}[opts.AccelRange])

	if err := dev.SetGyroRange(opts.GyroRange); err != nil {
		s.Close()
		return nil, fmt.Errorf("%s IMU: set gyro range: %w", name, err)
	}
	log.Printf("%s IMU: gyroscope range set to %d (±%d°/s)", name, opts.GyroRange, []int{250, 500, 1000, 2000}[opts.GyroRange])

	if opts.SelfTest {
		if _, err := dev.SelfTest(); err != nil {
			log.Printf("Warning: %s IMU self-test failed: %v", name, err)
		} else {
			log.Printf("%s IMU self-test passed", name)
		}
	}

	return s, nil
}

// NextRaw reads accelerometer and gyroscope axes.
func (s *MPU9250) NextRaw() (imu.RawSample, error) {
	ax, err := s.imu.GetAccelerationX()
	if err != nil {
		return imu.RawSample{}, fmt.Errorf("%s IMU accel X: %w", s.name, err)
	}
	ay, err := s.imu.GetAccelerationY()
	if err != nil {
		return imu.RawSample{}, fmt.Errorf("%s IMU accel Y: %w", s.name, err)
	}
	az, err := s.imu.GetAccelerationZ()
	if err != nil {
		return imu.RawSample{}, fmt.Errorf("%s IMU accel Z: %w", s.name, err)
	}

	gx, err := s.imu.GetRotationX()
	if err != nil {
		return imu.RawSample{}, fmt.Errorf("%s IMU gyro X: %w", s.name, err)
	}
	gy, err := s.imu.GetRotationY()
	if err != nil {
		return imu.RawSample{}, fmt.Errorf("%s IMU gyro Y: %w", s.name, err)
	}
	gz, err := s.imu.GetRotationZ()
	if err != nil {
		return imu.RawSample{}, fmt.Errorf("%s IMU gyro Z: %w", s.name, err)
	}

	return imu.RawSample{Ax: ax, Ay: ay, Az: az, Gx: gx, Gy: gy, Gz: gz}, nil
}

// Close puts the device to sleep. The SPI port stays with the periph
// transport, which has no way to release it.
func (s *MPU9250) Close() error {
	if err := s.imu.SetSleepEnabled(true); err != nil {
		return fmt.Errorf("%s IMU sleep: %w", s.name, err)
	}
	return nil
}
