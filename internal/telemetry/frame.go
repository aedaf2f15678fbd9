// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package telemetry defines the orientation frame published each tick and the
// MQTT plumbing that carries it.
package telemetry

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/relabs-tech/attitude/internal/attitude"
	"github.com/relabs-tech/attitude/internal/imu"
	"github.com/relabs-tech/attitude/internal/orientation"
)

// Frame is one published orientation estimate.
//
// Session changes every time the estimator starts. Estimator state is not
// persisted, so a new session means yaw was re-anchored at zero.
type Frame struct {
	Session    uuid.UUID           `json:"session"`
	Seq        uint64              `json:"seq"`
	Time       time.Time           `json:"time"`
	Quaternion attitude.Quaternion `json:"quaternion"`
	Euler      attitude.EulerAngle `json:"euler"` // radians, unwrapped
	Pose       orientation.Pose    `json:"pose"`  // degrees
	Raw        *imu.RawSample      `json:"raw,omitempty"`
}

// NewFrame builds a frame from one estimator tick.
func NewFrame(session uuid.UUID, seq uint64, t time.Time, q attitude.Quaternion, e attitude.EulerAngle) Frame {
	return Frame{
		Session:    session,
		Seq:        seq,
		Time:       t,
		Quaternion: q,
		Euler:      e,
		Pose:       orientation.PoseFromEuler(e),
	}
}

// Encode marshals f to JSON.
func (f Frame) Encode() ([]byte, error) {
	b, err := json.Marshal(f)
	if err != nil {
		return nil, fmt.Errorf("encode frame %d: %w", f.Seq, err)
	}
	return b, nil
}

// Decode unmarshals a JSON frame.
func Decode(payload []byte) (Frame, error) {
	var f Frame
	if err := json.Unmarshal(payload, &f); err != nil {
		return Frame{}, fmt.Errorf("decode frame: %w", err)
	}
	return f, nil
}

// RecoveredEuler extracts roll/pitch/yaw from the frame's quaternion. Unlike
// Euler, the result is wrapped to (-π, π] and does not depend on the sender's
// running state.
func (f Frame) RecoveredEuler() (attitude.EulerAngle, error) {
	return attitude.ToEuler(&f.Quaternion)
}
