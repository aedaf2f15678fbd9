package telemetry

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relabs-tech/attitude/internal/attitude"
	"github.com/relabs-tech/attitude/internal/telemetry/telemetrytest"
)

func TestPublishFrame(t *testing.T) {
	client := &telemetrytest.Client{}
	pub := NewMQTTPublisher(client)

	f := NewFrame(uuid.New(), 1, time.Now(), attitude.Identity, attitude.EulerAngle{})
	require.NoError(t, PublishFrame(pub, "attitude/orientation", f))

	msgs := client.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "attitude/orientation", msgs[0].Topic)
	assert.True(t, msgs[0].Retained)

	got, err := Decode(msgs[0].Payload)
	require.NoError(t, err)
	assert.Equal(t, f.Session, got.Session)
}

func TestPublish_Error(t *testing.T) {
	errBroker := errors.New("broker gone")
	pub := NewMQTTPublisher(&telemetrytest.Client{PublishErr: errBroker})
	err := pub.Publish("t", []byte("x"))
	assert.ErrorIs(t, err, errBroker)
}

func TestSubscribeFrames(t *testing.T) {
	client := &telemetrytest.Client{}
	var got []Frame
	require.NoError(t, SubscribeFrames(client, "attitude/orientation", func(f Frame) {
		got = append(got, f)
	}))

	f := NewFrame(uuid.New(), 9, time.Now(), attitude.Identity, attitude.EulerAngle{})
	b, err := f.Encode()
	require.NoError(t, err)

	assert.True(t, client.Deliver("attitude/orientation", []byte("garbage")))
	assert.True(t, client.Deliver("attitude/orientation", b))

	require.Len(t, got, 1)
	assert.Equal(t, uint64(9), got[0].Seq)
}

func TestSubscribeFrames_Error(t *testing.T) {
	errDenied := errors.New("not authorized")
	err := SubscribeFrames(&telemetrytest.Client{SubscribeErr: errDenied}, "x", func(Frame) {})
	assert.ErrorIs(t, err, errDenied)
}
