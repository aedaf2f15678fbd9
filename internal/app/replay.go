// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/google/uuid"

	"github.com/relabs-tech/attitude/internal/attitude"
	"github.com/relabs-tech/attitude/internal/orientation"
	"github.com/relabs-tech/attitude/internal/recorder"
)

// ReplayReport summarizes how a re-run of a recorded session compares with
// the estimates recorded live.
type ReplayReport struct {
	Session recorder.Session
	Samples int
	// MaxAngle is the largest rotation, in radians, between a replayed
	// quaternion and the recorded one.
	MaxAngle float64
	Final    attitude.EulerAngle
}

// rotationAngle is the angle of the rotation taking a to b.
func rotationAngle(a, b attitude.Quaternion) float64 {
	d := attitude.Between(a, b)
	w := math.Min(math.Abs(d.W), 1)
	return 2 * math.Acos(w)
}

// replaySession re-runs the session's raw samples through a fresh estimator,
// integrating each tick over the interval the live run used.
func replaySession(ctx context.Context, store *recorder.Store, id uuid.UUID) (ReplayReport, error) {
	src, err := recorder.NewReplaySource(ctx, store, id)
	if err != nil {
		return ReplayReport{}, err
	}
	report := ReplayReport{Session: src.Session()}

	est, err := orientation.NewEstimator(report.Session.Interval)
	if err != nil {
		return report, err
	}

	for {
		raw, err := src.NextRaw()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return report, err
		}
		rec, _ := src.Recorded()
		interval := rec.Interval
		if interval == 0 {
			interval = report.Session.Interval
		}
		q, err := est.UpdateWithInterval(&raw, interval)
		if err != nil {
			return report, fmt.Errorf("replay tick %d: %w", rec.Seq, err)
		}
		report.MaxAngle = math.Max(report.MaxAngle, rotationAngle(rec.Quaternion, q))
		report.Samples++
	}
	report.Final = est.State()
	return report, nil
}

// latestSession returns the most recently started session.
func latestSession(ctx context.Context, store *recorder.Store) (uuid.UUID, error) {
	sessions, err := store.Sessions(ctx)
	if err != nil {
		return uuid.Nil, err
	}
	if len(sessions) == 0 {
		return uuid.Nil, errors.New("no recorded sessions")
	}
	return sessions[0].ID, nil
}

// RunReplay re-runs a recorded session and prints how far the replayed
// estimates drift from the recorded ones. An empty session selects the
// latest one.
func RunReplay(w io.Writer, dbPath, session string) error {
	ctx := context.Background()

	store, err := recorder.Open(dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	var id uuid.UUID
	if session == "" {
		id, err = latestSession(ctx, store)
	} else {
		id, err = uuid.Parse(session)
	}
	if err != nil {
		return fmt.Errorf("select session: %w", err)
	}

	report, err := replaySession(ctx, store, id)
	if err != nil {
		return err
	}

	final := orientation.PoseFromEuler(report.Final)
	fmt.Fprintf(w, "session   %s (%s, tick %v)\n", report.Session.ID, report.Session.Source, report.Session.Interval)
	fmt.Fprintf(w, "samples   %d\n", report.Samples)
	fmt.Fprintf(w, "max diff  %.6f deg\n", report.MaxAngle*180/math.Pi)
	fmt.Fprintf(w, "final     ROLL=%.2f PITCH=%.2f YAW=%.2f\n", final.Roll, final.Pitch, final.Yaw)
	return nil
}
