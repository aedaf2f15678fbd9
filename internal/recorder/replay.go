// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package recorder

import (
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"

	"github.com/relabs-tech/attitude/internal/imu"
)

// ReplaySource feeds a recorded session's raw samples back in tick order.
// It returns io.EOF once the session is exhausted.
type ReplaySource struct {
	session Session
	samples []Sample
	next    int
}

// NewReplaySource loads the raw samples of session id.
func NewReplaySource(ctx context.Context, store *Store, id uuid.UUID) (*ReplaySource, error) {
	sess, err := store.Session(ctx, id)
	if err != nil {
		return nil, err
	}
	samples, err := store.Samples(ctx, id)
	if err != nil {
		return nil, err
	}
	return &ReplaySource{session: sess, samples: samples}, nil
}

// Session returns the metadata of the session being replayed.
func (r *ReplaySource) Session() Session { return r.session }

// Len returns the number of samples not yet replayed.
func (r *ReplaySource) Len() int { return len(r.samples) - r.next }

// Recorded returns the sample, as originally recorded, that the last NextRaw
// call replayed.
func (r *ReplaySource) Recorded() (Sample, bool) {
	if r.next == 0 {
		return Sample{}, false
	}
	return r.samples[r.next-1], true
}

func (r *ReplaySource) NextRaw() (imu.RawSample, error) {
	if r.next >= len(r.samples) {
		return imu.RawSample{}, fmt.Errorf("replay %s: %w", r.session.ID, io.EOF)
	}
	s := r.samples[r.next]
	r.next++
	return s.Raw, nil
}
