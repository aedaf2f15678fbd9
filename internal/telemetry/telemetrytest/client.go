// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package telemetrytest provides an in-memory MQTT client for tests.
package telemetrytest

import (
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// Message is one captured publish.
type Message struct {
	Topic    string
	Retained bool
	Payload  []byte
}

// Client is an mqtt.Client that keeps publishes in memory and lets tests
// deliver messages to subscribers. Methods not overridden here panic.
type Client struct {
	mqtt.Client

	mu        sync.Mutex
	Published []Message
	handlers  map[string]mqtt.MessageHandler
	// PublishErr, when set, fails every publish.
	PublishErr error
	// SubscribeErr, when set, fails every subscribe.
	SubscribeErr error
}

func (c *Client) Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.PublishErr != nil {
		return &Token{Err: c.PublishErr}
	}
	var b []byte
	switch p := payload.(type) {
	case []byte:
		b = append([]byte(nil), p...)
	case string:
		b = []byte(p)
	}
	c.Published = append(c.Published, Message{Topic: topic, Retained: retained, Payload: b})
	return &Token{}
}

func (c *Client) Subscribe(topic string, qos byte, callback mqtt.MessageHandler) mqtt.Token {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.SubscribeErr != nil {
		return &Token{Err: c.SubscribeErr}
	}
	if c.handlers == nil {
		c.handlers = make(map[string]mqtt.MessageHandler)
	}
	c.handlers[topic] = callback
	return &Token{}
}

func (c *Client) Disconnect(quiesce uint) {}

// Deliver invokes the handler subscribed to topic, reporting whether one exists.
func (c *Client) Deliver(topic string, payload []byte) bool {
	c.mu.Lock()
	h, ok := c.handlers[topic]
	c.mu.Unlock()
	if !ok {
		return false
	}
	h(c, &message{topic: topic, payload: payload})
	return true
}

// Messages returns a copy of the captured publishes.
func (c *Client) Messages() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Message(nil), c.Published...)
}

// Token is an already-completed mqtt.Token.
type Token struct {
	Err error
}

func (t *Token) Wait() bool                     { return true }
func (t *Token) WaitTimeout(time.Duration) bool { return true }
func (t *Token) Error() error                   { return t.Err }

func (t *Token) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}

type message struct {
	mqtt.Message
	topic   string
	payload []byte
}

func (m *message) Topic() string   { return m.topic }
func (m *message) Payload() []byte { return m.payload }
