package app

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relabs-tech/attitude/internal/attitude"
	"github.com/relabs-tech/attitude/internal/orientation"
	"github.com/relabs-tech/attitude/internal/sensors"
	"github.com/relabs-tech/attitude/internal/telemetry"
	"github.com/relabs-tech/attitude/internal/telemetry/telemetrytest"
)

func TestFrameConsole(t *testing.T) {
	var out bytes.Buffer
	client := &telemetrytest.Client{}
	console := &frameConsole{out: &out}
	require.NoError(t, telemetry.SubscribeFrames(client, "attitude/orientation", console.handle))

	session := uuid.New()
	for seq := uint64(0); seq < 2; seq++ {
		f := yawFrame(t, seq, 0.1)
		f.Session = session
		b, err := f.Encode()
		require.NoError(t, err)
		require.True(t, client.Deliver("attitude/orientation", b))
	}

	text := out.String()
	assert.Equal(t, 1, strings.Count(text, "[SESS]"))
	assert.Equal(t, 2, strings.Count(text, "[QUAT]"))
	assert.Equal(t, 2, strings.Count(text, "[POSE] ROLL="))
	assert.Contains(t, text, session.String())
}

func TestFrameConsole_ZeroQuaternion(t *testing.T) {
	var out bytes.Buffer
	console := &frameConsole{out: &out}
	console.handle(telemetry.Frame{Session: uuid.New(), Quaternion: attitude.Quaternion{}})
	assert.Contains(t, out.String(), "[POSE] unavailable")
}

func TestPrintStep(t *testing.T) {
	var out bytes.Buffer
	est, err := orientation.NewEstimator(orientation.DefaultInterval)
	require.NoError(t, err)

	require.NoError(t, printStep(&out, sensors.NewMockSource(), est))
	assert.True(t, strings.HasPrefix(out.String(), "ROLL="))
}
