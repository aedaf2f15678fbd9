// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/relabs-tech/attitude/internal/imu"
	"github.com/relabs-tech/attitude/internal/orientation"
	"github.com/relabs-tech/attitude/internal/sensors"
)

// printStep advances est by one sample from src and prints the new pose.
func printStep(w io.Writer, src imu.SampleSource, est *orientation.Estimator) error {
	_, q, err := orientation.Step(src, est)
	if err != nil {
		return err
	}
	p := orientation.PoseFromEuler(est.State())
	_, err = fmt.Fprintf(w,
		"ROLL=%6.2f  PITCH=%6.2f  YAW=%8.2f  q=(%.4f, %.4f, %.4f, %.4f)\n",
		p.Roll, p.Pitch, p.Yaw, q.W, q.X, q.Y, q.Z,
	)
	return err
}

// RunMockConsole runs the estimator against the synthetic source and prints
// every estimate. No broker or hardware is needed.
func RunMockConsole() error {
	src := sensors.NewMockSource()
	est, err := orientation.NewEstimator(orientation.DefaultInterval)
	if err != nil {
		return err
	}

	ticker := time.NewTicker(est.Interval())
	defer ticker.Stop()

	for range ticker.C {
		if err := printStep(os.Stdout, src, est); err != nil {
			return err
		}
	}
	return nil
}
