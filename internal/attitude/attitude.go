// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package attitude converts between ZYX Euler angles and unit quaternions.
package attitude

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidArgument is returned when a required input is absent or unusable.
var ErrInvalidArgument = errors.New("attitude: invalid argument")

// EulerAngle holds roll, pitch and yaw in radians.
// Values are not wrapped; yaw in particular may grow without bound.
type EulerAngle struct {
	Roll  float64 `json:"roll"`
	Pitch float64 `json:"pitch"`
	Yaw   float64 `json:"yaw"`
}

// Degrees returns e converted from radians to degrees.
func (e EulerAngle) Degrees() EulerAngle {
	return EulerAngle{
		Roll:  e.Roll * 180.0 / math.Pi,
		Pitch: e.Pitch * 180.0 / math.Pi,
		Yaw:   e.Yaw * 180.0 / math.Pi,
	}
}

func (e EulerAngle) finite() bool {
	return isFinite(e.Roll) && isFinite(e.Pitch) && isFinite(e.Yaw)
}

// ToQuaternion composes roll, pitch and yaw (ZYX convention) into a unit quaternion.
func ToQuaternion(e *EulerAngle) (Quaternion, error) {
	if e == nil {
		return Quaternion{}, fmt.Errorf("euler to quaternion: nil euler angle: %w", ErrInvalidArgument)
	}
	if !e.finite() {
		return Quaternion{}, fmt.Errorf("euler to quaternion: non-finite angle %+v: %w", *e, ErrInvalidArgument)
	}

	cy := math.Cos(e.Yaw * 0.5)
	sy := math.Sin(e.Yaw * 0.5)
	cp := math.Cos(e.Pitch * 0.5)
	sp := math.Sin(e.Pitch * 0.5)
	cr := math.Cos(e.Roll * 0.5)
	sr := math.Sin(e.Roll * 0.5)

	q := Quaternion{
		W: cr*cp*cy + sr*sp*sy,
		X: sr*cp*cy - cr*sp*sy,
		Y: cr*sp*cy + sr*cp*sy,
		Z: cr*cp*sy - sr*sp*cy,
	}

	// unit only up to rounding
	q, _ = q.Normalize()
	return q, nil
}

// ToEuler extracts roll, pitch and yaw (ZYX convention) from q.
// q is normalized first; a zero-norm or non-finite q is rejected.
func ToEuler(q *Quaternion) (EulerAngle, error) {
	if q == nil {
		return EulerAngle{}, fmt.Errorf("quaternion to euler: nil quaternion: %w", ErrInvalidArgument)
	}
	u, ok := q.Normalize()
	if !ok {
		return EulerAngle{}, fmt.Errorf("quaternion to euler: cannot normalize %+v: %w", *q, ErrInvalidArgument)
	}

	sinrCosp := 2 * (u.W*u.X + u.Y*u.Z)
	cosrCosp := 1 - 2*(u.X*u.X+u.Y*u.Y)

	sinp := 2 * (u.W*u.Y - u.Z*u.X)

	sinyCosp := 2 * (u.W*u.Z + u.X*u.Y)
	cosyCosp := 1 - 2*(u.Y*u.Y+u.Z*u.Z)

	return EulerAngle{
		Roll:  math.Atan2(sinrCosp, cosrCosp),
		Pitch: pitchFromSine(sinp),
		Yaw:   math.Atan2(sinyCosp, cosyCosp),
	}, nil
}

// gimbalLockTolerance absorbs the rounding that normalizing a quaternion at
// the singularity leaves in the pitch sine.
const gimbalLockTolerance = 1e-12

// pitchFromSine returns asin(sinp), saturating to exactly ±π/2 when |sinp|
// reaches 1 within gimbalLockTolerance.
func pitchFromSine(sinp float64) float64 {
	if math.Abs(sinp) >= 1-gimbalLockTolerance {
		return math.Copysign(math.Pi/2, sinp)
	}
	return math.Asin(sinp)
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
