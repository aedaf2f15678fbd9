package sensors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/i2c/i2ctest"
	"periph.io/x/conn/v3/physic"

	"github.com/relabs-tech/attitude/internal/imu"
)

func TestMPU6050_NextRaw(t *testing.T) {
	bus := &i2ctest.Playback{
		Ops: []i2ctest.IO{
			{Addr: 0x69, W: []byte{0x3B}, R: []byte{0x01, 0x00, 0xFF, 0x38, 0x40, 0x00}},
			{Addr: 0x69, W: []byte{0x43}, R: []byte{0x00, 0x0A, 0xFF, 0xF6, 0x80, 0x00}},
		},
		DontPanic: true,
	}

	src, err := NewMPU6050("test", bus, 0x69)
	require.NoError(t, err)

	got, err := src.NextRaw()
	require.NoError(t, err)
	assert.Equal(t, imu.RawSample{Ax: 256, Ay: -200, Az: 16384, Gx: 10, Gy: -10, Gz: -32768}, got)
	require.NoError(t, bus.Close())
	require.NoError(t, src.Close())
}

type failingBus struct {
	err   error
	calls int
}

func (b *failingBus) String() string                   { return "failing" }
func (b *failingBus) SetSpeed(f physic.Frequency) error { return nil }
func (b *failingBus) Tx(addr uint16, w, r []byte) error {
	b.calls++
	return b.err
}

func TestMPU6050_BusError(t *testing.T) {
	errNack := errors.New("nack")
	bus := &failingBus{err: errNack}

	src, err := NewMPU6050("test", bus, DefaultMPU6050Addr)
	require.NoError(t, err)

	_, err = src.NextRaw()
	assert.ErrorIs(t, err, errNack)
	assert.Contains(t, err.Error(), "accel read (addr 0x68)")
	assert.Equal(t, 1, bus.calls, "gyro block must not be read after a failed accel read")
}

func TestNewMPU6050_Validation(t *testing.T) {
	_, err := NewMPU6050("test", nil, DefaultMPU6050Addr)
	assert.Error(t, err)

	for _, addr := range []uint16{0, 0x80, 0xD0} {
		_, err := NewMPU6050("test", &failingBus{}, addr)
		assert.Error(t, err, "addr 0x%02X", addr)
	}
}
