// Package postgres is the alternate Store backend for deployments that
// already run a shared database, using the pgx stdlib driver.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/example/shower-tracker/internal/model"
	"github.com/example/shower-tracker/internal/store"
)

// Open connects via the pgx stdlib driver and verifies connectivity.
func Open(dsn string) (*sql.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres DSN is empty")
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// New wraps an opened database as a store.Store and bootstraps the schema.
func New(ctx context.Context, db *sql.DB) (store.Store, error) {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return nil, fmt.Errorf("postgres: bootstrap schema: %w", err)
	}
	return &pgStore{db: db}, nil
}

const schema = `
CREATE TABLE IF NOT EXISTS shower_status (
    id         INTEGER PRIMARY KEY CHECK (id = 1),
    occupant   TEXT,
    started_at TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS slots (
    slot_id          TEXT PRIMARY KEY,
    member           TEXT    NOT NULL,
    slot_date        TEXT    NOT NULL,
    start_time       TEXT    NOT NULL,
    duration_minutes INTEGER NOT NULL CHECK (duration_minutes > 0),
    recurring        BOOLEAN NOT NULL DEFAULT FALSE,
    completed        BOOLEAN NOT NULL DEFAULT FALSE
);

CREATE INDEX IF NOT EXISTS idx_slots_date ON slots (slot_date);

CREATE TABLE IF NOT EXISTS shower_log (
    entry_id         TEXT        NOT NULL,
    stream           TEXT        NOT NULL CHECK (stream IN ('operational', 'history')),
    member           TEXT        NOT NULL,
    started_at       TIMESTAMPTZ NOT NULL,
    ended_at         TIMESTAMPTZ NOT NULL,
    duration_seconds INTEGER     NOT NULL CHECK (duration_seconds >= 1),
    PRIMARY KEY (entry_id, stream)
);

CREATE INDEX IF NOT EXISTS idx_shower_log_retention ON shower_log (stream, ended_at);

CREATE TABLE IF NOT EXISTS push_subscriptions (
    sub_key    TEXT PRIMARY KEY,
    member     TEXT        NOT NULL,
    endpoint   TEXT        NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL
);
`

type pgStore struct{ db *sql.DB }

func (s *pgStore) Status() store.Status               { return &statusStore{db: s.db} }
func (s *pgStore) Slots() store.Slots                 { return &slotStore{db: s.db} }
func (s *pgStore) Logs() store.Logs                   { return &logStore{db: s.db} }
func (s *pgStore) Subscriptions() store.Subscriptions { return &subStore{db: s.db} }

// HealthPing verifies connectivity for the health endpoint.
func (s *pgStore) HealthPing(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

type statusStore struct{ db *sql.DB }

func (s *statusStore) Get(ctx context.Context) (model.ShowerStatus, error) {
	var occupant sql.NullString
	var startedAt sql.NullTime
	row := s.db.QueryRowContext(ctx, `SELECT occupant, started_at FROM shower_status WHERE id = 1`)
	if err := row.Scan(&occupant, &startedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.ShowerStatus{}, nil
		}
		return model.ShowerStatus{}, err
	}
	if !occupant.Valid || !startedAt.Valid {
		return model.ShowerStatus{}, nil
	}
	return model.Occupy(occupant.String, startedAt.Time), nil
}

func (s *statusStore) Set(ctx context.Context, status model.ShowerStatus) error {
	var occupant sql.NullString
	var startedAt sql.NullTime
	if status.Occupied() {
		occupant = sql.NullString{String: *status.CurrentUser, Valid: true}
		startedAt = sql.NullTime{Time: *status.StartedAt, Valid: true}
	}
	_, err := s.db.ExecContext(ctx, `
        INSERT INTO shower_status (id, occupant, started_at) VALUES (1, $1, $2)
        ON CONFLICT (id) DO UPDATE SET occupant = EXCLUDED.occupant, started_at = EXCLUDED.started_at
    `, occupant, startedAt)
	return err
}

type slotStore struct{ db *sql.DB }

func (s *slotStore) Create(ctx context.Context, slot model.Slot) (model.Slot, error) {
	if slot.ID == "" {
		slot.ID = uuid.New().String()
	}
	_, err := s.db.ExecContext(ctx, `
        INSERT INTO slots (slot_id, member, slot_date, start_time, duration_minutes, recurring, completed)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
    `, slot.ID, slot.User, slot.Date, slot.StartTime, slot.DurationMinutes, slot.Recurring, slot.Completed)
	if err != nil {
		return model.Slot{}, err
	}
	return slot, nil
}

func (s *slotStore) Get(ctx context.Context, id string) (model.Slot, error) {
	row := s.db.QueryRowContext(ctx, `
        SELECT slot_id, member, slot_date, start_time, duration_minutes, recurring, completed
        FROM slots WHERE slot_id = $1
    `, id)
	var slot model.Slot
	err := row.Scan(&slot.ID, &slot.User, &slot.Date, &slot.StartTime, &slot.DurationMinutes, &slot.Recurring, &slot.Completed)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Slot{}, store.ErrNotFound
	}
	if err != nil {
		return model.Slot{}, err
	}
	return slot, nil
}

func (s *slotStore) List(ctx context.Context) ([]model.Slot, error) {
	rows, err := s.db.QueryContext(ctx, `
        SELECT slot_id, member, slot_date, start_time, duration_minutes, recurring, completed
        FROM slots ORDER BY slot_date, start_time, slot_id
    `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Slot
	for rows.Next() {
		var slot model.Slot
		if err := rows.Scan(&slot.ID, &slot.User, &slot.Date, &slot.StartTime, &slot.DurationMinutes, &slot.Recurring, &slot.Completed); err != nil {
			return nil, err
		}
		out = append(out, slot)
	}
	return out, rows.Err()
}

func (s *slotStore) Update(ctx context.Context, slot model.Slot) error {
	res, err := s.db.ExecContext(ctx, `
        UPDATE slots SET member = $1, slot_date = $2, start_time = $3, duration_minutes = $4, recurring = $5, completed = $6
        WHERE slot_id = $7
    `, slot.User, slot.Date, slot.StartTime, slot.DurationMinutes, slot.Recurring, slot.Completed, slot.ID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (s *slotStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM slots WHERE slot_id = $1`, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (s *slotStore) DeleteDatedThrough(ctx context.Context, date string) (int, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM slots WHERE NOT recurring AND slot_date <= $1`, date)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}

type logStore struct{ db *sql.DB }

func (s *logStore) Append(ctx context.Context, stream model.LogStream, entry model.LogEntry) (model.LogEntry, error) {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	_, err := s.db.ExecContext(ctx, `
        INSERT INTO shower_log (entry_id, stream, member, started_at, ended_at, duration_seconds)
        VALUES ($1, $2, $3, $4, $5, $6)
    `, entry.ID, string(stream), entry.User, entry.StartedAt, entry.EndedAt, entry.DurationSeconds)
	if err != nil {
		return model.LogEntry{}, err
	}
	return entry, nil
}

func (s *logStore) List(ctx context.Context, stream model.LogStream) ([]model.LogEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
        SELECT entry_id, member, started_at, ended_at, duration_seconds
        FROM shower_log WHERE stream = $1 ORDER BY ended_at DESC, entry_id
    `, string(stream))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.LogEntry
	for rows.Next() {
		var entry model.LogEntry
		if err := rows.Scan(&entry.ID, &entry.User, &entry.StartedAt, &entry.EndedAt, &entry.DurationSeconds); err != nil {
			return nil, err
		}
		out = append(out, entry)
	}
	return out, rows.Err()
}

func (s *logStore) DeleteEndedBefore(ctx context.Context, stream model.LogStream, cutoff time.Time) (int, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM shower_log WHERE stream = $1 AND ended_at < $2`, string(stream), cutoff)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}

type subStore struct{ db *sql.DB }

func (s *subStore) Put(ctx context.Context, sub model.PushSubscription) error {
	_, err := s.db.ExecContext(ctx, `
        INSERT INTO push_subscriptions (sub_key, member, endpoint, updated_at)
        VALUES ($1, $2, $3, $4)
        ON CONFLICT (sub_key) DO UPDATE SET member = EXCLUDED.member, endpoint = EXCLUDED.endpoint, updated_at = EXCLUDED.updated_at
    `, sub.Key, sub.User, sub.Endpoint, sub.UpdatedAt)
	return err
}

func (s *subStore) List(ctx context.Context) ([]model.PushSubscription, error) {
	rows, err := s.db.QueryContext(ctx, `
        SELECT sub_key, member, endpoint, updated_at FROM push_subscriptions ORDER BY sub_key
    `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.PushSubscription
	for rows.Next() {
		var sub model.PushSubscription
		if err := rows.Scan(&sub.Key, &sub.User, &sub.Endpoint, &sub.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, sub)
	}
	return out, rows.Err()
}

func (s *subStore) Delete(ctx context.Context, key string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM push_subscriptions WHERE sub_key = $1`, key)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}
