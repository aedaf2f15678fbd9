// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"math"
	"time"

	"github.com/relabs-tech/attitude/internal/imu"
)

// Mock scale factors match an MPU6050 at ±2g / ±250°/s.
const (
	mockAccelLSBPerG   = 16384.0
	mockGyroLSBPerDegS = 131.0
)

type mockSource struct {
	start time.Time
	now   func() time.Time
}

// NewMockSource creates a source that synthesizes a device slowly rocking in
// roll and pitch while turning at a constant yaw rate.
func NewMockSource() imu.SampleSource {
	return newMockSource(time.Now)
}

func newMockSource(now func() time.Time) *mockSource {
	return &mockSource{start: now(), now: now}
}

// mockAttitude returns roll and pitch in radians and their rates in °/s.
func mockAttitude(elapsed float64) (roll, pitch, rollRate, pitchRate float64) {
	const deg = math.Pi / 180
	roll = 20 * deg * math.Sin(elapsed)
	pitch = 15 * deg * math.Cos(elapsed*0.7)
	rollRate = 20 * math.Cos(elapsed)
	pitchRate = -15 * 0.7 * math.Sin(elapsed*0.7)
	return roll, pitch, rollRate, pitchRate
}

func (m *mockSource) NextRaw() (imu.RawSample, error) {
	elapsed := m.now().Sub(m.start).Seconds()
	roll, pitch, rollRate, pitchRate := mockAttitude(elapsed)

	// gravity as seen by a sensor at this roll/pitch
	ax := -math.Sin(pitch) * mockAccelLSBPerG
	ay := math.Cos(pitch) * math.Sin(roll) * mockAccelLSBPerG
	az := math.Cos(pitch) * math.Cos(roll) * mockAccelLSBPerG

	return imu.RawSample{
		Ax: int16(math.Round(ax)),
		Ay: int16(math.Round(ay)),
		Az: int16(math.Round(az)),
		Gx: int16(math.Round(pitchRate * mockGyroLSBPerDegS)),
		Gy: int16(math.Round(rollRate * mockGyroLSBPerDegS)),
		Gz: int16(math.Round(30 * mockGyroLSBPerDegS)),
	}, nil
}
