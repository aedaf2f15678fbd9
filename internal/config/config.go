// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package config

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Sample source kinds.
const (
	SourceMPU6050 = "mpu6050"
	SourceMPU9250 = "mpu9250"
	SourceNMEA    = "nmea"
	SourceMock    = "mock"
)

// Config holds all application configuration values.
type Config struct {
	// MQTT
	MQTTBroker            string
	MQTTClientIDEstimator string
	MQTTClientIDConsole   string
	MQTTClientIDWeb       string
	MQTTClientIDDisplay   string

	// Topics
	TopicOrientation string
	TopicIMURaw      string

	// Sample source
	SampleSource string

	// MPU6050 over I2C
	IMUI2CBus  string
	IMUI2CAddr uint16

	// MPU9250 over SPI
	IMUSPIDevice string
	IMUCSPin     string
	// Accelerometer: 0=±2g, 1=±4g, 2=±8g, 3=±16g
	IMUAccelRange byte
	// Gyroscope: 0=±250°/s, 1=±500°/s, 2=±1000°/s, 3=±2000°/s
	IMUGyroRange byte

	// Serial $PIMU stream
	IMUSerialPort string
	IMUBaudRate   uint

	// Estimator
	EstimatorDTMS       int  // fixed tick interval in milliseconds
	EstimatorMeasuredDT bool // integrate over the measured tick interval instead
	EstimatorBootstrap  bool // seed roll/pitch from the first sample

	// Recorder ("" disables recording)
	RecorderDBPath string

	// Web Server
	WebServerPort int

	// Display
	DisplayI2CBus         string
	DisplayUpdateInterval int // milliseconds
}

// Interval returns the estimator tick as a duration.
func (c *Config) Interval() time.Duration {
	return time.Duration(c.EstimatorDTMS) * time.Millisecond
}

// Default returns a config with every optional value filled in.
func Default() *Config {
	return &Config{
		MQTTClientIDEstimator: "attitude-estimator",
		MQTTClientIDConsole:   "attitude-console",
		MQTTClientIDWeb:       "attitude-web",
		MQTTClientIDDisplay:   "attitude-display",
		TopicOrientation:      "attitude/orientation",
		TopicIMURaw:           "attitude/imu/raw",
		SampleSource:          SourceMPU6050,
		IMUI2CAddr:            0x68,
		IMUBaudRate:           115200,
		EstimatorDTMS:         10,
		WebServerPort:         8080,
		DisplayUpdateInterval: 200,
	}
}

// Package-level unexported variables for the singleton: InitGlobal sets it
// once, Get reads it under a read lock.
var (
	globalConfig *Config
	configOnce   sync.Once
	configMu     sync.RWMutex
)

// Load reads the configuration file and returns a Config struct.
func Load(configPath string) (*Config, error) {
	file, err := os.Open(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()
	return Parse(file)
}

// Parse reads KEY=VALUE lines on top of Default. Blank lines and lines
// starting with # are ignored; unknown keys are an error.
func Parse(r io.Reader) (*Config, error) {
	cfg := Default()
	scanner := bufio.NewScanner(r)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Parse KEY=VALUE
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid config line %d: %q", lineNum, line)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		if err := cfg.setValue(key, value); err != nil {
			return nil, fmt.Errorf("config line %d: %w", lineNum, err)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// setValue sets a config value based on the key.
func (c *Config) setValue(key, value string) error {
	switch key {
	// MQTT
	case "MQTT_BROKER":
		c.MQTTBroker = value
	case "MQTT_CLIENT_ID_ESTIMATOR":
		c.MQTTClientIDEstimator = value
	case "MQTT_CLIENT_ID_CONSOLE":
		c.MQTTClientIDConsole = value
	case "MQTT_CLIENT_ID_WEB":
		c.MQTTClientIDWeb = value
	case "MQTT_CLIENT_ID_DISPLAY":
		c.MQTTClientIDDisplay = value

	// Topics
	case "TOPIC_ORIENTATION":
		c.TopicOrientation = value
	case "TOPIC_IMU_RAW":
		c.TopicIMURaw = value

	case "SAMPLE_SOURCE":
		switch value {
		case SourceMPU6050, SourceMPU9250, SourceNMEA, SourceMock:
			c.SampleSource = value
		default:
			return fmt.Errorf("SAMPLE_SOURCE must be one of %s, %s, %s, %s, got %q",
				SourceMPU6050, SourceMPU9250, SourceNMEA, SourceMock, value)
		}

	// MPU6050
	case "IMU_I2C_BUS":
		c.IMUI2CBus = value
	case "IMU_I2C_ADDR":
		addr, err := strconv.ParseUint(value, 0, 16)
		if err != nil {
			return fmt.Errorf("invalid IMU_I2C_ADDR %q: %w", value, err)
		}
		if addr == 0 || addr > 0x7F {
			return fmt.Errorf("IMU_I2C_ADDR must be a 7-bit address (0x01-0x7F), got 0x%X", addr)
		}
		c.IMUI2CAddr = uint16(addr)

	// MPU9250
	case "IMU_SPI_DEVICE":
		c.IMUSPIDevice = value
	case "IMU_CS_PIN":
		c.IMUCSPin = value
	case "IMU_ACCEL_RANGE":
		rangeVal, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid IMU_ACCEL_RANGE %q: %w", value, err)
		}
		if rangeVal < 0 || rangeVal > 3 {
			return fmt.Errorf("IMU_ACCEL_RANGE must be 0-3 (0=±2g, 1=±4g, 2=±8g, 3=±16g), got %d", rangeVal)
		}
		c.IMUAccelRange = byte(rangeVal)
	case "IMU_GYRO_RANGE":
		rangeVal, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid IMU_GYRO_RANGE %q: %w", value, err)
		}
		if rangeVal < 0 || rangeVal > 3 {
			return fmt.Errorf("IMU_GYRO_RANGE must be 0-3 (0=±250°/s, 1=±500°/s, 2=±1000°/s, 3=±2000°/s), got %d", rangeVal)
		}
		c.IMUGyroRange = byte(rangeVal)

	// Serial
	case "IMU_SERIAL_PORT":
		c.IMUSerialPort = value
	case "IMU_BAUD_RATE":
		rate, err := strconv.ParseUint(value, 10, 32)
		if err != nil {
			return fmt.Errorf("invalid IMU_BAUD_RATE %q: %w", value, err)
		}
		c.IMUBaudRate = uint(rate)

	// Estimator
	case "ESTIMATOR_DT_MS":
		dt, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid ESTIMATOR_DT_MS %q: %w", value, err)
		}
		if dt <= 0 {
			return fmt.Errorf("ESTIMATOR_DT_MS must be positive, got %d", dt)
		}
		c.EstimatorDTMS = dt
	case "ESTIMATOR_MEASURED_DT":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid ESTIMATOR_MEASURED_DT %q: %w", value, err)
		}
		c.EstimatorMeasuredDT = b
	case "ESTIMATOR_BOOTSTRAP":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid ESTIMATOR_BOOTSTRAP %q: %w", value, err)
		}
		c.EstimatorBootstrap = b

	case "RECORDER_DB_PATH":
		c.RecorderDBPath = value

	// Web Server
	case "WEB_SERVER_PORT":
		port, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid WEB_SERVER_PORT %q: %w", value, err)
		}
		c.WebServerPort = port

	// Display
	case "DISPLAY_I2C_BUS":
		c.DisplayI2CBus = value
	case "DISPLAY_UPDATE_INTERVAL":
		interval, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid DISPLAY_UPDATE_INTERVAL %q: %w", value, err)
		}
		c.DisplayUpdateInterval = interval

	default:
		return fmt.Errorf("unknown config key: %q", key)
	}

	return nil
}

// validate checks that all required fields are set.
func (c *Config) validate() error {
	if c.MQTTBroker == "" {
		return fmt.Errorf("MQTT_BROKER is required")
	}
	switch c.SampleSource {
	case SourceMPU9250:
		if c.IMUSPIDevice == "" {
			return fmt.Errorf("IMU_SPI_DEVICE is required for SAMPLE_SOURCE=%s", SourceMPU9250)
		}
		if c.IMUCSPin == "" {
			return fmt.Errorf("IMU_CS_PIN is required for SAMPLE_SOURCE=%s", SourceMPU9250)
		}
	case SourceNMEA:
		if c.IMUSerialPort == "" {
			return fmt.Errorf("IMU_SERIAL_PORT is required for SAMPLE_SOURCE=%s", SourceNMEA)
		}
		if c.IMUBaudRate == 0 {
			return fmt.Errorf("IMU_BAUD_RATE is required for SAMPLE_SOURCE=%s", SourceNMEA)
		}
	}
	if c.WebServerPort <= 0 || c.WebServerPort > 65535 {
		return fmt.Errorf("WEB_SERVER_PORT must be 1-65535, got %d", c.WebServerPort)
	}
	if c.DisplayUpdateInterval <= 0 {
		return fmt.Errorf("DISPLAY_UPDATE_INTERVAL must be positive, got %d", c.DisplayUpdateInterval)
	}
	return nil
}

// InitGlobal loads the global configuration from file, once.
func InitGlobal(configPath string) error {
	var err error
	configOnce.Do(func() {
		configMu.Lock()
		defer configMu.Unlock()
		globalConfig, err = Load(configPath)
	})
	return err
}

// Get returns the global configuration instance.
// InitGlobal must be called first, or this will return nil.
func Get() *Config {
	configMu.RLock()
	defer configMu.RUnlock()
	return globalConfig
}
