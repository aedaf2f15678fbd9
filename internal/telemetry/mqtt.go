// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package telemetry

import (
	"fmt"
	"log"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// Publisher sends a payload to a topic.
type Publisher interface {
	Publish(topic string, payload []byte) error
}

// MQTTPublisher publishes retained QoS 0 messages.
type MQTTPublisher struct {
	client mqtt.Client
}

// Connect dials the broker and returns the connected client.
func Connect(broker, clientID string) (mqtt.Client, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("MQTT connect %s: %w", broker, token.Error())
	}
	return client, nil
}

// NewMQTTPublisher wraps a connected client.
func NewMQTTPublisher(client mqtt.Client) *MQTTPublisher {
	return &MQTTPublisher{client: client}
}

func (p *MQTTPublisher) Publish(topic string, payload []byte) error {
	token := p.client.Publish(topic, 0, true, payload)
	token.Wait()
	if err := token.Error(); err != nil {
		return fmt.Errorf("MQTT publish %s: %w", topic, err)
	}
	return nil
}

// Close disconnects, allowing 250ms for in-flight work.
func (p *MQTTPublisher) Close() {
	p.client.Disconnect(250)
}

// PublishFrame encodes f and publishes it to topic.
func PublishFrame(p Publisher, topic string, f Frame) error {
	payload, err := f.Encode()
	if err != nil {
		return err
	}
	return p.Publish(topic, payload)
}

// SubscribeFrames calls fn with every frame received on topic. Payloads that
// do not decode are logged and dropped.
func SubscribeFrames(client mqtt.Client, topic string, fn func(Frame)) error {
	token := client.Subscribe(topic, 0, func(_ mqtt.Client, msg mqtt.Message) {
		f, err := Decode(msg.Payload())
		if err != nil {
			log.Printf("telemetry: %s: %v", msg.Topic(), err)
			return
		}
		fn(f)
	})
	token.Wait()
	if err := token.Error(); err != nil {
		return fmt.Errorf("MQTT subscribe %s: %w", topic, err)
	}
	return nil
}
