// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"fmt"
	"image"
	"log"
	"sync"
	"time"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/devices/v3/ssd1306"
	"periph.io/x/devices/v3/ssd1306/image1bit"
	"periph.io/x/host/v3"

	"github.com/relabs-tech/attitude/internal/config"
	"github.com/relabs-tech/attitude/internal/orientation"
	"github.com/relabs-tech/attitude/internal/telemetry"
)

const (
	displayWidth  = 128
	displayHeight = 64
	lineHeight    = 13
)

// screen is the part of *ssd1306.Dev the display loop draws through.
type screen interface {
	Bounds() image.Rectangle
	Draw(r image.Rectangle, src image.Image, sp image.Point) error
}

// displayData holds the latest frame received over MQTT.
type displayData struct {
	mu    sync.RWMutex
	frame telemetry.Frame
	have  bool
}

func (d *displayData) set(f telemetry.Frame) {
	d.mu.Lock()
	d.frame = f
	d.have = true
	d.mu.Unlock()
}

func (d *displayData) get() (telemetry.Frame, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.frame, d.have
}

func newCanvas() (*image1bit.VerticalLSB, *font.Drawer) {
	img := image1bit.NewVerticalLSB(image.Rect(0, 0, displayWidth, displayHeight))
	drawer := &font.Drawer{
		Dst:  img,
		Src:  &image.Uniform{image1bit.On},
		Face: basicfont.Face7x13,
	}
	return img, drawer
}

func drawLines(drawer *font.Drawer, x int, lines ...string) {
	for i, line := range lines {
		drawer.Dot = fixed.P(x, lineHeight*(i+1))
		drawer.DrawString(line)
	}
}

// renderOrientation draws the attitude recovered from the frame's
// quaternion, which keeps yaw inside (-180, 180].
func renderOrientation(f telemetry.Frame, have bool) *image1bit.VerticalLSB {
	img, drawer := newCanvas()

	if !have {
		drawLines(drawer, 0, "", "Orientation", "Waiting...")
		return img
	}

	e, err := f.RecoveredEuler()
	if err != nil {
		drawLines(drawer, 0, "", "Orientation", "Bad quaternion")
		return img
	}
	p := orientation.PoseFromEuler(e)

	drawLines(drawer, 0,
		fmt.Sprintf("R: %6.1f", p.Roll),
		fmt.Sprintf("P: %6.1f", p.Pitch),
		fmt.Sprintf("Y: %6.1f", p.Yaw),
		fmt.Sprintf("w%.2f x%.2f", f.Quaternion.W, f.Quaternion.X),
	)
	return img
}

func renderSplash() *image1bit.VerticalLSB {
	img, drawer := newCanvas()
	drawer.Dot = fixed.P(20, 26)
	drawer.DrawString("Attitude")
	drawer.Dot = fixed.P(10, 43)
	drawer.DrawString("Waiting for")
	drawer.Dot = fixed.P(25, 56)
	drawer.DrawString("estimator")
	return img
}

func show(dev screen, img image.Image) error {
	return dev.Draw(dev.Bounds(), img, image.Point{})
}

// RunDisplay shows the latest orientation on an SSD1306 OLED.
func RunDisplay(cfg *config.Config) error {
	if _, err := host.Init(); err != nil {
		return fmt.Errorf("failed to initialize periph: %w", err)
	}

	bus, err := i2creg.Open(cfg.DisplayI2CBus)
	if err != nil {
		return fmt.Errorf("failed to open I2C bus: %w", err)
	}
	defer bus.Close()

	dev, err := ssd1306.NewI2C(bus, &ssd1306.DefaultOpts)
	if err != nil {
		return fmt.Errorf("failed to initialize display: %w", err)
	}
	defer dev.Halt()
	log.Println("display: initialized")

	if err := show(dev, renderSplash()); err != nil {
		log.Printf("display: error showing splash: %v", err)
	}

	client, err := telemetry.Connect(cfg.MQTTBroker, cfg.MQTTClientIDDisplay)
	if err != nil {
		return err
	}
	defer client.Disconnect(250)
	log.Printf("display: connected to MQTT broker at %s", cfg.MQTTBroker)

	data := &displayData{}
	if err := telemetry.SubscribeFrames(client, cfg.TopicOrientation, data.set); err != nil {
		return err
	}

	ticker := time.NewTicker(time.Duration(cfg.DisplayUpdateInterval) * time.Millisecond)
	defer ticker.Stop()

	log.Println("display: starting update loop")

	for range ticker.C {
		f, have := data.get()
		if err := show(dev, renderOrientation(f, have)); err != nil {
			log.Printf("display: error updating display: %v", err)
		}
	}
	return nil
}
