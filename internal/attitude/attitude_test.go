package attitude

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tolerance = 1e-5

func TestToQuaternion_Specific(t *testing.T) {
	s := math.Sqrt2 / 2
	tests := []struct {
		name  string
		euler EulerAngle
		want  Quaternion
	}{
		{"identity", EulerAngle{}, Quaternion{W: 1}},
		{"roll 90", EulerAngle{Roll: math.Pi / 2}, Quaternion{W: s, X: s}},
		{"pitch 90", EulerAngle{Pitch: math.Pi / 2}, Quaternion{W: s, Y: s}},
		{"yaw 90", EulerAngle{Yaw: math.Pi / 2}, Quaternion{W: s, Z: s}},
		{"yaw 180", EulerAngle{Yaw: math.Pi}, Quaternion{W: 0, Z: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := ToQuaternion(&tt.euler)
			require.NoError(t, err)
			assert.InDelta(t, tt.want.W, q.W, 1e-12)
			assert.InDelta(t, tt.want.X, q.X, 1e-12)
			assert.InDelta(t, tt.want.Y, q.Y, 1e-12)
			assert.InDelta(t, tt.want.Z, q.Z, 1e-12)
		})
	}
}

func TestToQuaternion_UnitNorm(t *testing.T) {
	angles := []float64{-1e4, -100, -2 * math.Pi, -3, -1.5, -0.2, 0, 0.1, 1, 1.5707963, 2.5, 3.2, 42, 1e5}
	for _, r := range angles {
		for _, p := range angles {
			for _, y := range angles {
				e := EulerAngle{Roll: r, Pitch: p, Yaw: y}
				q, err := ToQuaternion(&e)
				require.NoError(t, err)
				n2 := q.W*q.W + q.X*q.X + q.Y*q.Y + q.Z*q.Z
				if math.Abs(n2-1) > 1e-6 {
					t.Fatalf("|q|² = %v for %+v", n2, e)
				}
			}
		}
	}
}

func TestRoundTrip(t *testing.T) {
	rolls := []float64{0, 0.1, 0.5, 1, 2, 3, -3, -2, -0.5, -0.1}
	pitches := []float64{0, 0.2, -0.2, 1, -1, 1.5, -1.5, math.Pi/2 - 1e-3, -math.Pi/2 + 1e-3, 0.7}
	yaws := []float64{0, 1, -1, 2.5, -2.5, 3.1, -3.1, 0.3, -0.3, 1.7}

	for i := range rolls {
		for j := range pitches {
			e := EulerAngle{Roll: rolls[i], Pitch: pitches[j], Yaw: yaws[(i+j)%len(yaws)]}
			q, err := ToQuaternion(&e)
			require.NoError(t, err)
			got, err := ToEuler(&q)
			require.NoError(t, err)
			assert.InDelta(t, e.Roll, got.Roll, tolerance, "roll for %+v", e)
			assert.InDelta(t, e.Pitch, got.Pitch, tolerance, "pitch for %+v", e)
			assert.InDelta(t, e.Yaw, got.Yaw, tolerance, "yaw for %+v", e)
		}
	}
}

func TestToEuler_GimbalLockClamp(t *testing.T) {
	t.Run("sine at or past one", func(t *testing.T) {
		for _, s := range []float64{1, 1 + 1e-7, math.Nextafter(1, 2), 1.5, 1 - 1e-13} {
			assert.Equal(t, math.Pi/2, pitchFromSine(s), "sinp=%v", s)
			assert.Equal(t, -math.Pi/2, pitchFromSine(-s), "sinp=%v", -s)
		}
	})

	t.Run("sine just inside the range", func(t *testing.T) {
		s := 1 - 1e-9
		assert.Equal(t, math.Asin(s), pitchFromSine(s))
		assert.Less(t, pitchFromSine(s), math.Pi/2)
	})

	t.Run("quaternion driven to the singularity", func(t *testing.T) {
		s := math.Sqrt2 / 2
		q := Quaternion{W: s, Y: s}
		e, err := ToEuler(&q)
		require.NoError(t, err)
		assert.Equal(t, math.Pi/2, e.Pitch)
		assert.False(t, math.IsNaN(e.Roll))
		assert.False(t, math.IsNaN(e.Yaw))
	})

	t.Run("non-unit quaternion past the singularity", func(t *testing.T) {
		for _, q := range []Quaternion{
			{W: 0.70710679, Y: 0.70710679},
			{W: 1, Y: 1},
			{W: 3, Y: 3},
		} {
			e, err := ToEuler(&q)
			require.NoError(t, err)
			assert.Equal(t, math.Pi/2, e.Pitch, "q=%+v", q)

			n := Quaternion{W: q.W, Y: -q.Y}
			e, err = ToEuler(&n)
			require.NoError(t, err)
			assert.Equal(t, -math.Pi/2, e.Pitch, "q=%+v", n)
		}
	})

	t.Run("negative singularity", func(t *testing.T) {
		s := math.Sqrt2 / 2
		q := Quaternion{W: s, Y: -s}
		e, err := ToEuler(&q)
		require.NoError(t, err)
		assert.Equal(t, -math.Pi/2, e.Pitch)
	})
}

func TestToEuler_NormalizesInput(t *testing.T) {
	e := EulerAngle{Roll: 0.3, Pitch: -0.4, Yaw: 1.2}
	q, err := ToQuaternion(&e)
	require.NoError(t, err)

	scaled := Quaternion{W: q.W * 3, X: q.X * 3, Y: q.Y * 3, Z: q.Z * 3}
	got, err := ToEuler(&scaled)
	require.NoError(t, err)
	assert.InDelta(t, e.Roll, got.Roll, tolerance)
	assert.InDelta(t, e.Pitch, got.Pitch, tolerance)
	assert.InDelta(t, e.Yaw, got.Yaw, tolerance)
}

func TestInvalidArguments(t *testing.T) {
	t.Run("nil euler", func(t *testing.T) {
		_, err := ToQuaternion(nil)
		assert.ErrorIs(t, err, ErrInvalidArgument)
	})
	t.Run("non-finite euler", func(t *testing.T) {
		_, err := ToQuaternion(&EulerAngle{Roll: math.NaN()})
		assert.ErrorIs(t, err, ErrInvalidArgument)
		_, err = ToQuaternion(&EulerAngle{Yaw: math.Inf(1)})
		assert.ErrorIs(t, err, ErrInvalidArgument)
	})
	t.Run("nil quaternion", func(t *testing.T) {
		_, err := ToEuler(nil)
		assert.ErrorIs(t, err, ErrInvalidArgument)
	})
	t.Run("zero quaternion", func(t *testing.T) {
		_, err := ToEuler(&Quaternion{})
		assert.ErrorIs(t, err, ErrInvalidArgument)
	})
	t.Run("nan quaternion", func(t *testing.T) {
		_, err := ToEuler(&Quaternion{W: math.NaN()})
		assert.ErrorIs(t, err, ErrInvalidArgument)
	})
}

func TestDegrees(t *testing.T) {
	e := EulerAngle{Roll: math.Pi, Pitch: -math.Pi / 2, Yaw: 4 * math.Pi}.Degrees()
	assert.InDelta(t, 180, e.Roll, 1e-9)
	assert.InDelta(t, -90, e.Pitch, 1e-9)
	assert.InDelta(t, 720, e.Yaw, 1e-9)
}
