// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package orientation

import (
	"fmt"

	"github.com/relabs-tech/attitude/internal/attitude"
	"github.com/relabs-tech/attitude/internal/imu"
)

// Step runs one control-loop tick: read a sample from src and feed it to est.
// When the read fails the error is returned and est is not advanced.
func Step(src imu.SampleSource, est *Estimator) (imu.RawSample, attitude.Quaternion, error) {
	raw, err := src.NextRaw()
	if err != nil {
		return imu.RawSample{}, attitude.Quaternion{}, fmt.Errorf("read sample: %w", err)
	}
	q, err := est.Update(&raw)
	if err != nil {
		return raw, attitude.Quaternion{}, err
	}
	return raw, q, nil
}
