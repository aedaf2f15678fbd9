// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"fmt"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"

	"github.com/relabs-tech/attitude/internal/imu"
)

// MPU6050 burst-read start registers.
const (
	mpu6050AccelXoutH = 0x3B
	mpu6050GyroXoutH  = 0x43
)

// DefaultMPU6050Addr is the 7-bit address with AD0 low (0x69 with AD0 high).
const DefaultMPU6050Addr uint16 = 0x68

// MPU6050 reads raw accel/gyro samples over I²C. The device is expected to be
// awake and configured already.
type MPU6050 struct {
	name string
	dev  i2c.Dev
	bus  i2c.BusCloser // nil when the caller owns the bus
}

// NewMPU6050 wraps an already-open bus. addr is the device's 7-bit address.
func NewMPU6050(name string, bus i2c.Bus, addr uint16) (*MPU6050, error) {
	if bus == nil {
		return nil, fmt.Errorf("%s IMU: nil I2C bus", name)
	}
	if addr == 0 || addr > 0x7F {
		return nil, fmt.Errorf("%s IMU: invalid 7-bit I2C address 0x%02X", name, addr)
	}
	return &MPU6050{name: name, dev: i2c.Dev{Bus: bus, Addr: addr}}, nil
}

// OpenMPU6050 initializes periph, opens the named I²C bus ("" for the first
// one) and returns a source for the device at addr. Close releases the bus.
func OpenMPU6050(name, busName string, addr uint16) (*MPU6050, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("%s IMU: periph host init: %w", name, err)
	}
	bus, err := i2creg.Open(busName)
	if err != nil {
		return nil, fmt.Errorf("%s IMU: open I2C bus %q: %w", name, busName, err)
	}
	s, err := NewMPU6050(name, bus, addr)
	if err != nil {
		bus.Close()
		return nil, err
	}
	s.bus = bus
	return s, nil
}

// NextRaw reads the accel block then the gyro block. If either transaction
// fails no sample is returned.
func (s *MPU6050) NextRaw() (imu.RawSample, error) {
	var buf [6]byte

	if err := s.dev.Tx([]byte{mpu6050AccelXoutH}, buf[:]); err != nil {
		return imu.RawSample{}, fmt.Errorf("%s IMU accel read (addr 0x%02X): %w", s.name, s.dev.Addr, err)
	}
	ax, ay, az := imu.DecodeAxes(buf)

	if err := s.dev.Tx([]byte{mpu6050GyroXoutH}, buf[:]); err != nil {
		return imu.RawSample{}, fmt.Errorf("%s IMU gyro read (addr 0x%02X): %w", s.name, s.dev.Addr, err)
	}
	gx, gy, gz := imu.DecodeAxes(buf)

	return imu.RawSample{Ax: ax, Ay: ay, Az: az, Gx: gx, Gy: gy, Gz: gz}, nil
}

// Close releases the bus if this source opened it.
func (s *MPU6050) Close() error {
	if s.bus == nil {
		return nil
	}
	return s.bus.Close()
}
