// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package recorder stores raw samples and the estimates computed from them in
// sqlite, so a session can be replayed through the estimator later.
package recorder

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/relabs-tech/attitude/internal/attitude"
	"github.com/relabs-tech/attitude/internal/imu"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// ErrUnknownSession is returned when a session id has no recorded rows.
var ErrUnknownSession = errors.New("recorder: unknown session")

// Session describes one estimator run.
type Session struct {
	ID       uuid.UUID
	Source   string
	Interval time.Duration
	Started  time.Time
}

// Sample is one recorded tick.
type Sample struct {
	Session    uuid.UUID
	Seq        uint64
	Time       time.Time
	Interval   time.Duration // integration interval of this tick; 0 means the session's
	Raw        imu.RawSample
	Quaternion attitude.Quaternion
	Euler      attitude.EulerAngle
}

// Store is a sqlite-backed sample recorder.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path and applies migrations.
// ":memory:" gives a private in-memory store.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open recorder db %s: %w", path, err)
	}
	// one connection: sqlite has a single writer, and :memory: is per-connection
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrateUp(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) migrateUp() error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("load migrations: %w", err)
	}
	driver, err := sqlite.WithInstance(s.db, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("failed to create sqlite driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	m.Log = migrateLogger{}
	// m is not closed: that would close the shared *sql.DB.

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration up failed: %w", err)
	}
	return nil
}

type migrateLogger struct{}

func (migrateLogger) Printf(format string, v ...interface{}) {
	log.Printf("recorder: [migrate] "+format, v...)
}

func (migrateLogger) Verbose() bool { return false }

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// StartSession registers a new run.
func (s *Store) StartSession(ctx context.Context, sess Session) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (session_id, source, interval_nanos, started_unix_nanos) VALUES (?, ?, ?, ?)`,
		sess.ID.String(), sess.Source, int64(sess.Interval), sess.Started.UnixNano())
	if err != nil {
		return fmt.Errorf("start session %s: %w", sess.ID, err)
	}
	return nil
}

// Record stores one tick. The session must have been started.
func (s *Store) Record(ctx context.Context, smp Sample) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO samples (
			session_id, seq, unix_nanos, interval_nanos,
			ax, ay, az, gx, gy, gz,
			qw, qx, qy, qz,
			roll, pitch, yaw
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		smp.Session.String(), int64(smp.Seq), smp.Time.UnixNano(), int64(smp.Interval),
		smp.Raw.Ax, smp.Raw.Ay, smp.Raw.Az, smp.Raw.Gx, smp.Raw.Gy, smp.Raw.Gz,
		smp.Quaternion.W, smp.Quaternion.X, smp.Quaternion.Y, smp.Quaternion.Z,
		smp.Euler.Roll, smp.Euler.Pitch, smp.Euler.Yaw,
	)
	if err != nil {
		return fmt.Errorf("record sample %s/%d: %w", smp.Session, smp.Seq, err)
	}
	return nil
}

// Sessions lists recorded sessions, newest first.
func (s *Store) Sessions(ctx context.Context) ([]Session, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT session_id, source, interval_nanos, started_unix_nanos FROM sessions ORDER BY started_unix_nanos DESC`)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var out []Session
	for rows.Next() {
		var (
			id       string
			sess     Session
			interval int64
			started  int64
		)
		if err := rows.Scan(&id, &sess.Source, &interval, &started); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		if sess.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("session id %q: %w", id, err)
		}
		sess.Interval = time.Duration(interval)
		sess.Started = time.Unix(0, started)
		out = append(out, sess)
	}
	return out, rows.Err()
}

// Session returns one session's metadata.
func (s *Store) Session(ctx context.Context, id uuid.UUID) (Session, error) {
	var (
		sess     = Session{ID: id}
		interval int64
		started  int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT source, interval_nanos, started_unix_nanos FROM sessions WHERE session_id = ?`, id.String()).
		Scan(&sess.Source, &interval, &started)
	if errors.Is(err, sql.ErrNoRows) {
		return Session{}, fmt.Errorf("session %s: %w", id, ErrUnknownSession)
	}
	if err != nil {
		return Session{}, fmt.Errorf("session %s: %w", id, err)
	}
	sess.Interval = time.Duration(interval)
	sess.Started = time.Unix(0, started)
	return sess, nil
}

// Samples returns a session's samples in tick order.
func (s *Store) Samples(ctx context.Context, id uuid.UUID) ([]Sample, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT seq, unix_nanos, interval_nanos, ax, ay, az, gx, gy, gz, qw, qx, qy, qz, roll, pitch, yaw
		FROM samples WHERE session_id = ? ORDER BY seq`, id.String())
	if err != nil {
		return nil, fmt.Errorf("query samples %s: %w", id, err)
	}
	defer rows.Close()

	var out []Sample
	for rows.Next() {
		var (
			smp      = Sample{Session: id}
			seq      int64
			nano     int64
			interval int64
		)
		if err := rows.Scan(&seq, &nano, &interval,
			&smp.Raw.Ax, &smp.Raw.Ay, &smp.Raw.Az, &smp.Raw.Gx, &smp.Raw.Gy, &smp.Raw.Gz,
			&smp.Quaternion.W, &smp.Quaternion.X, &smp.Quaternion.Y, &smp.Quaternion.Z,
			&smp.Euler.Roll, &smp.Euler.Pitch, &smp.Euler.Yaw,
		); err != nil {
			return nil, fmt.Errorf("scan sample: %w", err)
		}
		smp.Seq = uint64(seq)
		smp.Time = time.Unix(0, nano)
		smp.Interval = time.Duration(interval)
		out = append(out, smp)
	}
	return out, rows.Err()
}
