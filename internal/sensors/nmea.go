// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strings"

	nmea "github.com/adrianmo/go-nmea"
	serial "github.com/jacobsa/go-serial/serial"

	"github.com/relabs-tech/attitude/internal/imu"
)

// TypeIMU is the proprietary sentence streamed by serial IMU boards:
//
//	$PIMU,<ax>,<ay>,<az>,<gx>,<gy>,<gz>*<checksum>
const TypeIMU = "IMU"

// maxSkippedLines bounds how much non-IMU traffic NextRaw reads through
// before giving up on a tick.
const maxSkippedLines = 64

// IMUSentence is a parsed $PIMU sentence.
type IMUSentence struct {
	nmea.BaseSentence
	Ax, Ay, Az int64
	Gx, Gy, Gz int64
}

func parseIMUSentence(s nmea.BaseSentence) (nmea.Sentence, error) {
	p := nmea.NewParser(s)
	p.AssertType(TypeIMU)
	m := IMUSentence{
		BaseSentence: s,
		Ax:           p.Int64(0, "ax"),
		Ay:           p.Int64(1, "ay"),
		Az:           p.Int64(2, "az"),
		Gx:           p.Int64(3, "gx"),
		Gy:           p.Int64(4, "gy"),
		Gz:           p.Int64(5, "gz"),
	}
	return m, p.Err()
}

var sentenceParser = nmea.SentenceParser{
	CustomParsers: map[string]nmea.ParserFunc{
		TypeIMU: parseIMUSentence,
	},
}

// RawSample converts the sentence, rejecting values outside int16.
func (m IMUSentence) RawSample() (imu.RawSample, error) {
	vals := [6]int64{m.Ax, m.Ay, m.Az, m.Gx, m.Gy, m.Gz}
	for i, v := range vals {
		if v < math.MinInt16 || v > math.MaxInt16 {
			return imu.RawSample{}, fmt.Errorf("PIMU field %d out of int16 range: %d", i, v)
		}
	}
	return imu.RawSample{
		Ax: int16(m.Ax), Ay: int16(m.Ay), Az: int16(m.Az),
		Gx: int16(m.Gx), Gy: int16(m.Gy), Gz: int16(m.Gz),
	}, nil
}

// FormatIMUSentence renders s as a checksummed $PIMU line (without CRLF).
func FormatIMUSentence(s imu.RawSample) string {
	body := fmt.Sprintf("P%s,%d,%d,%d,%d,%d,%d", TypeIMU, s.Ax, s.Ay, s.Az, s.Gx, s.Gy, s.Gz)
	return "$" + body + "*" + nmea.Checksum(body)
}

// NMEASource reads $PIMU sentences from a line-oriented stream.
type NMEASource struct {
	name   string
	reader *bufio.Reader
	closer io.Closer
}

// NewNMEASource reads sentences from r.
func NewNMEASource(name string, r io.Reader) *NMEASource {
	s := &NMEASource{name: name, reader: bufio.NewReader(r)}
	if c, ok := r.(io.Closer); ok {
		s.closer = c
	}
	return s
}

// OpenNMEASerial opens a serial port streaming $PIMU sentences.
func OpenNMEASerial(name, port string, baud uint) (*NMEASource, error) {
	opts := serial.OpenOptions{
		PortName:              port,
		BaudRate:              baud,
		DataBits:              8,
		StopBits:              1,
		MinimumReadSize:       1,
		ParityMode:            serial.PARITY_NONE,
		InterCharacterTimeout: 0,
	}
	rwc, err := serial.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("%s IMU: open serial %s: %w", name, port, err)
	}
	return NewNMEASource(name, rwc), nil
}

// NextRaw returns the next valid $PIMU sample. Other sentences and corrupt
// lines are skipped; a read error (io.EOF included) is returned wrapped.
func (s *NMEASource) NextRaw() (imu.RawSample, error) {
	var lastErr error
	for i := 0; i < maxSkippedLines; i++ {
		line, err := s.reader.ReadString('\n')
		if err != nil && (err != io.EOF || strings.TrimSpace(line) == "") {
			return imu.RawSample{}, fmt.Errorf("%s IMU serial read: %w", s.name, err)
		}

		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "$") {
			continue
		}

		sentence, perr := sentenceParser.Parse(line)
		if perr != nil {
			// noisy line or partial sentence
			lastErr = perr
			continue
		}
		m, ok := sentence.(IMUSentence)
		if !ok {
			continue
		}
		raw, cerr := m.RawSample()
		if cerr != nil {
			lastErr = cerr
			continue
		}
		return raw, nil
	}
	if lastErr != nil {
		return imu.RawSample{}, fmt.Errorf("%s IMU: no valid PIMU sentence in %d lines: %w", s.name, maxSkippedLines, lastErr)
	}
	return imu.RawSample{}, fmt.Errorf("%s IMU: no PIMU sentence in %d lines", s.name, maxSkippedLines)
}

// Close closes the underlying stream when it is closable.
func (s *NMEASource) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}
