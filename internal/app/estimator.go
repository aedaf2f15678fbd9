// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/relabs-tech/attitude/internal/config"
	"github.com/relabs-tech/attitude/internal/imu"
	"github.com/relabs-tech/attitude/internal/orientation"
	"github.com/relabs-tech/attitude/internal/recorder"
	"github.com/relabs-tech/attitude/internal/telemetry"
)

// logEvery is how many ticks pass between progress log lines.
const logEvery = 100

// estimatorLoop is the state carried across ticks of RunEstimator.
type estimatorLoop struct {
	src      imu.SampleSource
	est      *orientation.Estimator
	pub      telemetry.Publisher
	store    *recorder.Store // nil when recording is off
	session  uuid.UUID
	topic    string
	rawTopic string
	measured bool

	seq      uint64
	lastTick time.Time
}

// tick reads one sample and, if the read succeeded, advances the estimator and
// publishes the result. On a failed read nothing advances.
func (l *estimatorLoop) tick(ctx context.Context, t time.Time) (telemetry.Frame, error) {
	raw, err := l.src.NextRaw()
	if err != nil {
		return telemetry.Frame{}, fmt.Errorf("sample read: %w", err)
	}

	interval := l.est.Interval()
	if l.measured && !l.lastTick.IsZero() {
		interval = t.Sub(l.lastTick)
	}

	q, err := l.est.UpdateWithInterval(&raw, interval)
	if err != nil {
		return telemetry.Frame{}, fmt.Errorf("estimator update: %w", err)
	}
	l.lastTick = t

	frame := telemetry.NewFrame(l.session, l.seq, t, q, l.est.State())
	frame.Raw = &raw
	l.seq++

	if err := telemetry.PublishFrame(l.pub, l.topic, frame); err != nil {
		log.Printf("estimator: %v", err)
	}
	if l.rawTopic != "" {
		if payload, err := json.Marshal(raw); err != nil {
			log.Printf("estimator: raw sample marshal error: %v", err)
		} else if err := l.pub.Publish(l.rawTopic, payload); err != nil {
			log.Printf("estimator: %v", err)
		}
	}

	if l.store != nil {
		err := l.store.Record(ctx, recorder.Sample{
			Session:    l.session,
			Seq:        frame.Seq,
			Time:       t,
			Interval:   interval,
			Raw:        raw,
			Quaternion: q,
			Euler:      frame.Euler,
		})
		if err != nil {
			log.Printf("estimator: %v", err)
		}
	}

	return frame, nil
}

// seededSource yields the sample consumed for bootstrapping before handing
// over to the underlying source, so that sample is still published and
// recorded as the first tick.
type seededSource struct {
	first  *imu.RawSample
	source imu.SampleSource
}

func (s *seededSource) NextRaw() (imu.RawSample, error) {
	if s.first != nil {
		raw := *s.first
		s.first = nil
		return raw, nil
	}
	return s.source.NextRaw()
}

// newEstimator seeds at zero unless bootstrapping is on, in which case the
// first sample the source yields sets the initial roll and pitch. The
// returned source is the one the control loop must read from.
func newEstimator(cfg *config.Config, src imu.SampleSource) (*orientation.Estimator, imu.SampleSource, error) {
	if !cfg.EstimatorBootstrap {
		est, err := orientation.NewEstimator(cfg.Interval())
		return est, src, err
	}
	raw, err := src.NextRaw()
	if err != nil {
		return nil, nil, fmt.Errorf("bootstrap sample: %w", err)
	}
	est, err := orientation.NewEstimatorFromSample(cfg.Interval(), &raw)
	if err != nil {
		return nil, nil, err
	}
	log.Printf("estimator: bootstrapped from accel (%d, %d, %d)", raw.Ax, raw.Ay, raw.Az)
	return est, &seededSource{first: &raw, source: src}, nil
}

// RunEstimator drives the estimator at the configured tick and publishes
// every estimate until SIGINT/SIGTERM.
func RunEstimator(cfg *config.Config) error {
	log.Println("starting attitude estimator")

	src, closeSrc, err := openSource(cfg)
	if err != nil {
		return fmt.Errorf("open %s source: %w", cfg.SampleSource, err)
	}
	defer closeSrc()
	log.Printf("estimator: using %s sample source", cfg.SampleSource)

	est, src, err := newEstimator(cfg, src)
	if err != nil {
		return err
	}

	client, err := telemetry.Connect(cfg.MQTTBroker, cfg.MQTTClientIDEstimator)
	if err != nil {
		return err
	}
	pub := telemetry.NewMQTTPublisher(client)
	defer pub.Close()
	log.Printf("estimator: connected to MQTT broker at %s", cfg.MQTTBroker)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	loop := &estimatorLoop{
		src:      src,
		est:      est,
		pub:      pub,
		session:  uuid.New(),
		topic:    cfg.TopicOrientation,
		rawTopic: cfg.TopicIMURaw,
		measured: cfg.EstimatorMeasuredDT,
	}

	if cfg.RecorderDBPath != "" {
		store, err := recorder.Open(cfg.RecorderDBPath)
		if err != nil {
			return err
		}
		defer store.Close()
		err = store.StartSession(ctx, recorder.Session{
			ID:       loop.session,
			Source:   cfg.SampleSource,
			Interval: est.Interval(),
			Started:  time.Now(),
		})
		if err != nil {
			return err
		}
		loop.store = store
		log.Printf("estimator: recording to %s", cfg.RecorderDBPath)
	}

	log.Printf("estimator: session %s, tick %v (measured dt: %v)", loop.session, est.Interval(), loop.measured)

	ticker := time.NewTicker(est.Interval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Printf("estimator: shutting down after %d ticks", loop.seq)
			return nil
		case t := <-ticker.C:
			frame, err := loop.tick(ctx, t)
			if err != nil {
				log.Printf("estimator: %v", err)
				continue
			}
			if frame.Seq%logEvery == 0 {
				log.Printf("%s tick %d: pose R=%.2f P=%.2f Y=%.2f | q w=%.4f x=%.4f y=%.4f z=%.4f",
					t.Format(time.RFC3339), frame.Seq,
					frame.Pose.Roll, frame.Pose.Pitch, frame.Pose.Yaw,
					frame.Quaternion.W, frame.Quaternion.X, frame.Quaternion.Y, frame.Quaternion.Z,
				)
			}
		}
	}
}
