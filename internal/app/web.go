// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/relabs-tech/attitude/internal/attitude"
	"github.com/relabs-tech/attitude/internal/config"
	"github.com/relabs-tech/attitude/internal/orientation"
	"github.com/relabs-tech/attitude/internal/telemetry"
)

// clientBuffer is how many frames a slow websocket client may fall behind
// before frames are dropped for it.
const clientBuffer = 16

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // local network only
	},
}

// orientationView is what the web API serves: the published frame plus the
// attitude recovered from its quaternion.
type orientationView struct {
	telemetry.Frame
	Recovered     attitude.EulerAngle `json:"recovered"`
	RecoveredPose orientation.Pose    `json:"recovered_pose"`
}

func newOrientationView(f telemetry.Frame) orientationView {
	v := orientationView{Frame: f}
	if e, err := f.RecoveredEuler(); err == nil {
		v.Recovered = e
		v.RecoveredPose = orientation.PoseFromEuler(e)
	}
	return v
}

// orientationHub keeps the latest frame and fans new frames out to
// websocket clients.
type orientationHub struct {
	mu      sync.RWMutex
	last    orientationView
	have    bool
	clients map[chan []byte]struct{}
}

func newOrientationHub() *orientationHub {
	return &orientationHub{clients: make(map[chan []byte]struct{})}
}

func (h *orientationHub) publish(f telemetry.Frame) {
	v := newOrientationView(f)
	payload, err := json.Marshal(v)
	if err != nil {
		log.Printf("web: frame marshal error: %v", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.last = v
	h.have = true
	for ch := range h.clients {
		select {
		case ch <- payload:
		default:
			// client is behind; it picks up the next frame
		}
	}
}

func (h *orientationHub) latest() (orientationView, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.last, h.have
}

func (h *orientationHub) subscribe() chan []byte {
	ch := make(chan []byte, clientBuffer)
	h.mu.Lock()
	h.clients[ch] = struct{}{}
	h.mu.Unlock()
	return ch
}

func (h *orientationHub) unsubscribe(ch chan []byte) {
	h.mu.Lock()
	delete(h.clients, ch)
	h.mu.Unlock()
}

func (h *orientationHub) handleOrientation(w http.ResponseWriter, r *http.Request) {
	v, ok := h.latest()
	if !ok {
		http.Error(w, "no data yet", http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("web: json encode error: %v", err)
	}
}

// handleStream upgrades to a websocket and writes every new frame until the
// client goes away.
func (h *orientationHub) handleStream(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("web: websocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	ch := h.subscribe()
	defer h.unsubscribe(ch)

	// Reads only serve to notice the close.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	if v, ok := h.latest(); ok {
		if err := conn.WriteJSON(v); err != nil {
			return
		}
	}

	for {
		select {
		case <-done:
			return
		case payload := <-ch:
			if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				log.Printf("web: websocket write error: %v", err)
				return
			}
		}
	}
}

func (h *orientationHub) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/orientation", h.handleOrientation)
	mux.HandleFunc("/ws/orientation", h.handleStream)
	return mux
}

// RunWeb serves the latest orientation over HTTP and streams frames over a
// websocket.
func RunWeb(cfg *config.Config) error {
	client, err := telemetry.Connect(cfg.MQTTBroker, cfg.MQTTClientIDWeb)
	if err != nil {
		return err
	}
	defer client.Disconnect(250)
	log.Printf("web: connected to MQTT broker at %s", cfg.MQTTBroker)

	hub := newOrientationHub()
	if err := telemetry.SubscribeFrames(client, cfg.TopicOrientation, hub.publish); err != nil {
		return err
	}
	log.Printf("web: subscribed to MQTT topic %s", cfg.TopicOrientation)

	addr := fmt.Sprintf(":%d", cfg.WebServerPort)
	log.Printf("web server listening on %s", addr)
	return http.ListenAndServe(addr, hub.routes())
}
