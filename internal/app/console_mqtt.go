// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"

	"github.com/relabs-tech/attitude/internal/config"
	"github.com/relabs-tech/attitude/internal/orientation"
	"github.com/relabs-tech/attitude/internal/telemetry"
)

// frameConsole prints orientation frames and notes when the estimator
// session changes, since yaw restarts from zero on every new session.
type frameConsole struct {
	out     io.Writer
	session uuid.UUID
}

func (c *frameConsole) handle(f telemetry.Frame) {
	if f.Session != c.session {
		fmt.Fprintf(c.out, "[SESS] %s (yaw re-anchored at 0)\n", f.Session)
		c.session = f.Session
	}

	fmt.Fprintf(c.out,
		"[QUAT] #%-6d w=%7.4f x=%7.4f y=%7.4f z=%7.4f\n",
		f.Seq, f.Quaternion.W, f.Quaternion.X, f.Quaternion.Y, f.Quaternion.Z,
	)

	e, err := f.RecoveredEuler()
	if err != nil {
		fmt.Fprintf(c.out, "[POSE] unavailable: %v\n", err)
		return
	}
	p := orientation.PoseFromEuler(e)
	fmt.Fprintf(c.out,
		"[POSE] ROLL=%7.2f  PITCH=%7.2f  YAW=%7.2f  (unwrapped yaw %.2f)\n",
		p.Roll, p.Pitch, p.Yaw, f.Pose.Yaw,
	)
}

// RunConsoleMQTT prints every orientation frame published by the estimator.
func RunConsoleMQTT(cfg *config.Config) error {
	client, err := telemetry.Connect(cfg.MQTTBroker, cfg.MQTTClientIDConsole)
	if err != nil {
		return err
	}
	log.Printf("console: connected to MQTT broker at %s", cfg.MQTTBroker)

	console := &frameConsole{out: os.Stdout}
	if err := telemetry.SubscribeFrames(client, cfg.TopicOrientation, console.handle); err != nil {
		client.Disconnect(250)
		return err
	}
	log.Printf("console: subscribed to %s", cfg.TopicOrientation)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Println("console: shutting down")
	client.Disconnect(250)
	return nil
}
