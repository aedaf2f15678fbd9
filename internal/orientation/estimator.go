// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package orientation

import (
	"fmt"
	"math"
	"time"

	"github.com/relabs-tech/attitude/internal/attitude"
	"github.com/relabs-tech/attitude/internal/imu"
)

// DefaultInterval is the nominal 100 Hz tick.
const DefaultInterval = 10 * time.Millisecond

// Estimator turns one raw sample per tick into an orientation.
//
// Each tick the gravity tilt replaces roll and pitch (no blending), then the
// gyro rates are added: gx to pitch, gy to roll, gz to yaw. Yaw has no
// absolute reference and drifts without bound.
//
// An Estimator is not safe for concurrent use.
type Estimator struct {
	state attitude.EulerAngle
	dt    float64 // seconds
}

// NewEstimator returns an estimator seeded at zero that integrates over a
// fixed tick interval.
func NewEstimator(interval time.Duration) (*Estimator, error) {
	dt, err := seconds(interval)
	if err != nil {
		return nil, err
	}
	return &Estimator{dt: dt}, nil
}

// NewEstimatorFromSample returns an estimator whose roll and pitch are seeded
// from the gravity tilt of s instead of zero.
func NewEstimatorFromSample(interval time.Duration, s *imu.RawSample) (*Estimator, error) {
	if s == nil {
		return nil, fmt.Errorf("estimator bootstrap: nil sample: %w", attitude.ErrInvalidArgument)
	}
	e, err := NewEstimator(interval)
	if err != nil {
		return nil, err
	}
	e.state = TiltFromAccel(float64(s.Ax), float64(s.Ay), float64(s.Az))
	return e, nil
}

// Interval returns the fixed tick interval.
func (e *Estimator) Interval() time.Duration {
	return time.Duration(e.dt * float64(time.Second))
}

// State returns the running roll/pitch/yaw in radians. Yaw is not wrapped.
func (e *Estimator) State() attitude.EulerAngle {
	return e.state
}

// Reset puts the running state back to zero.
func (e *Estimator) Reset() {
	e.state = attitude.EulerAngle{}
}

// Update advances the estimate by one fixed tick and returns the new orientation.
// A nil sample fails with attitude.ErrInvalidArgument and leaves the state untouched.
func (e *Estimator) Update(s *imu.RawSample) (attitude.Quaternion, error) {
	return e.update(s, e.dt)
}

// UpdateWithInterval is Update with a measured tick interval instead of the
// fixed one. Results differ from Update whenever the caller's loop jitters.
func (e *Estimator) UpdateWithInterval(s *imu.RawSample, interval time.Duration) (attitude.Quaternion, error) {
	dt, err := seconds(interval)
	if err != nil {
		return attitude.Quaternion{}, err
	}
	return e.update(s, dt)
}

func (e *Estimator) update(s *imu.RawSample, dt float64) (attitude.Quaternion, error) {
	if s == nil {
		return attitude.Quaternion{}, fmt.Errorf("estimator update: nil sample: %w", attitude.ErrInvalidArgument)
	}

	next := TiltFromAccel(float64(s.Ax), float64(s.Ay), float64(s.Az))
	next.Yaw = e.state.Yaw

	next.Pitch += float64(s.Gx) * dt
	next.Roll += float64(s.Gy) * dt
	next.Yaw += float64(s.Gz) * dt

	q, err := attitude.ToQuaternion(&next)
	if err != nil {
		return attitude.Quaternion{}, err
	}
	e.state = next
	return q, nil
}

func seconds(interval time.Duration) (float64, error) {
	dt := interval.Seconds()
	if interval <= 0 || math.IsInf(dt, 0) {
		return 0, fmt.Errorf("estimator: tick interval must be positive, got %v: %w", interval, attitude.ErrInvalidArgument)
	}
	return dt, nil
}
