package sensors

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relabs-tech/attitude/internal/imu"
)

func TestFormatIMUSentence(t *testing.T) {
	line := FormatIMUSentence(imu.RawSample{Ax: 1, Ay: -2, Az: 16384, Gx: 0, Gy: 5, Gz: -6})
	assert.True(t, strings.HasPrefix(line, "$PIMU,1,-2,16384,0,5,-6*"), line)
	assert.Len(t, line, len("$PIMU,1,-2,16384,0,5,-6*")+2)
}

func TestNMEASource_NextRaw(t *testing.T) {
	want := []imu.RawSample{
		{Ax: 120, Ay: -340, Az: 16200, Gx: 3, Gy: -4, Gz: 5},
		{Ax: -32768, Ay: 32767, Az: 0, Gx: 0, Gy: 0, Gz: 1},
	}

	stream := strings.Join([]string{
		"$GPRMC,220516,A,5133.82,N,00042.24,W,173.8,231.8,130694,004.2,W*70",
		"garbage without a dollar",
		FormatIMUSentence(want[0]),
		"$PIMU,1,2,3,4,5,6*00", // bad checksum
		"$PIMU,1,2",            // truncated
		FormatIMUSentence(want[1]),
	}, "\r\n") + "\r\n"

	src := NewNMEASource("test", strings.NewReader(stream))

	got, err := src.NextRaw()
	require.NoError(t, err)
	assert.Equal(t, want[0], got)

	got, err = src.NextRaw()
	require.NoError(t, err)
	assert.Equal(t, want[1], got)

	_, err = src.NextRaw()
	assert.ErrorIs(t, err, io.EOF)
}

func TestNMEASource_LastLineWithoutNewline(t *testing.T) {
	s := imu.RawSample{Az: 16384, Gz: 7}
	src := NewNMEASource("test", strings.NewReader(FormatIMUSentence(s)))

	got, err := src.NextRaw()
	require.NoError(t, err)
	assert.Equal(t, s, got)
}

func TestNMEASource_OutOfRange(t *testing.T) {
	m := IMUSentence{Ax: 40000}
	_, err := m.RawSample()
	assert.Error(t, err)

	m = IMUSentence{Gz: -32769}
	_, err = m.RawSample()
	assert.Error(t, err)
}

func TestNMEASource_TooMuchNoise(t *testing.T) {
	noise := strings.Repeat("$PIMU,1,2,3,4,5,6*00\n", maxSkippedLines+1)
	src := NewNMEASource("test", strings.NewReader(noise))

	_, err := src.NextRaw()
	require.Error(t, err)
	assert.NotErrorIs(t, err, io.EOF)
	assert.Contains(t, err.Error(), "no valid PIMU sentence")
}

type closeRecorder struct {
	io.Reader
	closed bool
}

func (c *closeRecorder) Close() error {
	c.closed = true
	return nil
}

func TestNMEASource_Close(t *testing.T) {
	rc := &closeRecorder{Reader: strings.NewReader("")}
	src := NewNMEASource("test", rc)
	require.NoError(t, src.Close())
	assert.True(t, rc.closed)

	require.NoError(t, NewNMEASource("test", strings.NewReader("")).Close())
}
