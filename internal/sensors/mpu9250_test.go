package sensors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/i2c/i2ctest"
	"periph.io/x/devices/v3/mpu9250"
)

func newTestMPU9250(t *testing.T, bus *i2ctest.Playback) *MPU9250 {
	t.Helper()
	tr, err := mpu9250.NewI2cTransport(bus, 0x68)
	require.NoError(t, err)
	dev, err := mpu9250.New(*tr)
	require.NoError(t, err)
	return &MPU9250{name: "test", imu: dev}
}

func TestMPU9250_CloseSleeps(t *testing.T) {
	// PWR_MGMT_1 read-modify-write setting the SLEEP bit.
	bus := &i2ctest.Playback{
		Ops: []i2ctest.IO{
			{Addr: 0x68, W: []byte{0x6B}, R: []byte{0x01}},
			{Addr: 0x68, W: []byte{0x6B, 0x41}},
		},
		DontPanic: true,
	}
	s := newTestMPU9250(t, bus)

	require.NoError(t, s.Close())
	assert.NoError(t, bus.Close())
}

func TestMPU9250_CloseError(t *testing.T) {
	s := newTestMPU9250(t, &i2ctest.Playback{DontPanic: true})
	err := s.Close()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "test IMU sleep")
}
