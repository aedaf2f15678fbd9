// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package orientation

import (
	"math"

	"github.com/relabs-tech/attitude/internal/attitude"
)

// Pose is orientation in degrees, the form shown to people (console, web, display).
type Pose struct {
	Roll  float64 `json:"roll"`
	Pitch float64 `json:"pitch"`
	Yaw   float64 `json:"yaw"`
}

// PoseFromEuler converts radians to a degree Pose.
func PoseFromEuler(e attitude.EulerAngle) Pose {
	d := e.Degrees()
	return Pose{Roll: d.Roll, Pitch: d.Pitch, Yaw: d.Yaw}
}

// TiltFromAccel computes roll and pitch from the direction of gravity in the
// accelerometer frame. Any consistent unit works, raw counts included, since
// only ratios matter. Yaw is always 0: gravity carries no heading.
//
//	roll  = atan2(ay, az)
//	pitch = atan2(-ax, sqrt(ay² + az²))
//
// With ay == az == 0 roll is atan2(0, 0) = 0.
func TiltFromAccel(ax, ay, az float64) attitude.EulerAngle {
	return attitude.EulerAngle{
		Roll:  math.Atan2(ay, az),
		Pitch: math.Atan2(-ax, math.Sqrt(ay*ay+az*az)),
		Yaw:   0,
	}
}
