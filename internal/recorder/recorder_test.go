package recorder

import (
	"context"
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relabs-tech/attitude/internal/attitude"
	"github.com/relabs-tech/attitude/internal/imu"
	"github.com/relabs-tech/attitude/internal/orientation"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func recordRun(t *testing.T, s *Store, id uuid.UUID, raws []imu.RawSample) []Sample {
	t.Helper()
	ctx := context.Background()
	start := time.Unix(1_700_000_000, 0)

	require.NoError(t, s.StartSession(ctx, Session{
		ID: id, Source: "mock", Interval: orientation.DefaultInterval, Started: start,
	}))

	est, err := orientation.NewEstimator(orientation.DefaultInterval)
	require.NoError(t, err)

	var out []Sample
	for i, raw := range raws {
		q, err := est.Update(&raw)
		require.NoError(t, err)
		smp := Sample{
			Session:    id,
			Seq:        uint64(i),
			Time:       start.Add(time.Duration(i) * orientation.DefaultInterval),
			Interval:   orientation.DefaultInterval,
			Raw:        raw,
			Quaternion: q,
			Euler:      est.State(),
		}
		require.NoError(t, s.Record(ctx, smp))
		out = append(out, smp)
	}
	return out
}

var testRaws = []imu.RawSample{
	{Ax: 100, Ay: -200, Az: 16300, Gx: 5, Gy: -6, Gz: 7},
	{Ax: -32768, Ay: 32767, Az: 0, Gx: -32768, Gy: 32767, Gz: 1},
	{Ax: 0, Ay: 0, Az: 16384, Gx: 0, Gy: 0, Gz: 120},
}

func TestStore_RoundTrip(t *testing.T) {
	s := openTestStore(t)
	id := uuid.New()
	want := recordRun(t, s, id, testRaws)

	got, err := s.Samples(context.Background(), id)
	require.NoError(t, err)
	if diff := cmp.Diff(want, got, cmp.Comparer(func(a, b time.Time) bool { return a.Equal(b) })); diff != "" {
		t.Errorf("Samples() mismatch (-want +got):\n%s", diff)
	}

	sessions, err := s.Sessions(context.Background())
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, id, sessions[0].ID)
	assert.Equal(t, "mock", sessions[0].Source)
	assert.Equal(t, orientation.DefaultInterval, sessions[0].Interval)
}

func TestStore_LegacyRowsHaveNoInterval(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	id := uuid.New()
	require.NoError(t, s.StartSession(ctx, Session{ID: id, Source: "mock", Interval: orientation.DefaultInterval, Started: time.Now()}))

	// Row written without interval_nanos, as before the column existed.
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO samples (session_id, seq, unix_nanos, ax, ay, az, gx, gy, gz, qw, qx, qy, qz, roll, pitch, yaw)
		VALUES (?, 0, 0, 0, 0, 16384, 0, 0, 0, 1, 0, 0, 0, 0, 0, 0)`, id.String())
	require.NoError(t, err)

	got, err := s.Samples(ctx, id)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Zero(t, got[0].Interval)
}

func TestStore_RecordRequiresSession(t *testing.T) {
	s := openTestStore(t)
	err := s.Record(context.Background(), Sample{Session: uuid.New(), Quaternion: attitude.Identity})
	assert.Error(t, err)
}

func TestStore_UnknownSession(t *testing.T) {
	s := openTestStore(t)
	_, err := s.Session(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrUnknownSession)

	_, err = NewReplaySource(context.Background(), s, uuid.New())
	assert.ErrorIs(t, err, ErrUnknownSession)
}

func TestStore_ReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "samples.db")
	s, err := Open(path)
	require.NoError(t, err)
	id := uuid.New()
	recordRun(t, s, id, testRaws)
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()
	got, err := s.Samples(context.Background(), id)
	require.NoError(t, err)
	assert.Len(t, got, len(testRaws))
}

func TestReplaySource_ReproducesEstimates(t *testing.T) {
	s := openTestStore(t)
	id := uuid.New()
	recorded := recordRun(t, s, id, testRaws)

	src, err := NewReplaySource(context.Background(), s, id)
	require.NoError(t, err)
	assert.Equal(t, len(testRaws), src.Len())
	assert.Equal(t, orientation.DefaultInterval, src.Session().Interval)

	est, err := orientation.NewEstimator(src.Session().Interval)
	require.NoError(t, err)

	for i := range recorded {
		_, q, err := orientation.Step(src, est)
		require.NoError(t, err)
		assert.Equal(t, recorded[i].Quaternion, q)
		assert.Equal(t, recorded[i].Euler, est.State())

		rec, ok := src.Recorded()
		require.True(t, ok)
		assert.Equal(t, recorded[i].Seq, rec.Seq)
	}

	_, err = src.NextRaw()
	assert.ErrorIs(t, err, io.EOF)
	assert.Zero(t, src.Len())
}
