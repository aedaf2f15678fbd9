// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package imu

// RawSample is one 6-axis reading in raw sensor counts (sensor frame, unscaled).
type RawSample struct {
	Ax int16 `json:"ax"` // accel
	Ay int16 `json:"ay"`
	Az int16 `json:"az"`

	Gx int16 `json:"gx"` // gyro
	Gy int16 `json:"gy"`
	Gz int16 `json:"gz"`
}

// SampleSource yields the current raw sample, or a bus error.
// A failed read must not be fed to an estimator.
type SampleSource interface {
	NextRaw() (RawSample, error)
}

// DecodeAxes decodes three big-endian int16 values from a 6-byte register burst
// (X_H, X_L, Y_H, Y_L, Z_H, Z_L).
func DecodeAxes(b [6]byte) (x, y, z int16) {
	x = int16(uint16(b[0])<<8 | uint16(b[1]))
	y = int16(uint16(b[2])<<8 | uint16(b[3]))
	z = int16(uint16(b[4])<<8 | uint16(b[5]))
	return x, y, z
}
