// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"fmt"

	"github.com/relabs-tech/attitude/internal/config"
	"github.com/relabs-tech/attitude/internal/imu"
	"github.com/relabs-tech/attitude/internal/sensors"
)

func noClose() error { return nil }

// openSource builds the configured sample source. The returned close func
// releases whatever bus or port the source holds.
func openSource(cfg *config.Config) (imu.SampleSource, func() error, error) {
	switch cfg.SampleSource {
	case config.SourceMPU6050:
		s, err := sensors.OpenMPU6050("mpu6050", cfg.IMUI2CBus, cfg.IMUI2CAddr)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil

	case config.SourceMPU9250:
		s, err := sensors.NewMPU9250("mpu9250", sensors.MPU9250Options{
			SPIDevice:  cfg.IMUSPIDevice,
			CSPin:      cfg.IMUCSPin,
			AccelRange: cfg.IMUAccelRange,
			GyroRange:  cfg.IMUGyroRange,
			SelfTest:   true,
		})
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil

	case config.SourceNMEA:
		s, err := sensors.OpenNMEASerial("serial", cfg.IMUSerialPort, cfg.IMUBaudRate)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil

	case config.SourceMock:
		return sensors.NewMockSource(), noClose, nil

	default:
		return nil, nil, fmt.Errorf("unknown sample source %q", cfg.SampleSource)
	}
}
