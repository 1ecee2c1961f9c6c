// Package sqlite is the default Store backend, embedded via the pure-Go
// modernc.org/sqlite driver.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/example/shower-tracker/internal/model"
	"github.com/example/shower-tracker/internal/store"
)

// Open opens (or creates) the database at path and enables WAL journal mode
// for concurrent readers alongside the monitor goroutines.
func Open(path string) (*sql.DB, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)", path)
	db, err := sql.Open("sqlite", dsn)
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
		return nil, fmt.Errorf("sqlite: bootstrap schema: %w", err)
	}
	return &sqlStore{db: db}, nil
}

type sqlStore struct{ db *sql.DB }

func (s *sqlStore) Status() store.Status               { return &statusStore{db: s.db} }
func (s *sqlStore) Slots() store.Slots                 { return &slotStore{db: s.db} }
func (s *sqlStore) Logs() store.Logs                   { return &logStore{db: s.db} }
func (s *sqlStore) Subscriptions() store.Subscriptions { return &subStore{db: s.db} }

// HealthPing verifies connectivity for the health endpoint.
func (s *sqlStore) HealthPing(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

type statusStore struct{ db *sql.DB }

func (s *statusStore) Get(ctx context.Context) (model.ShowerStatus, error) {
	var occupant sql.NullString
	var startedAt sql.NullInt64
	row := s.db.QueryRowContext(ctx, `SELECT occupant, started_at FROM shower_status WHERE id = 1`)
	if err := row.Scan(&occupant, &startedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Absence of the row means free; the singleton is created lazily.
			return model.ShowerStatus{}, nil
		}
		return model.ShowerStatus{}, err
	}
	if !occupant.Valid || !startedAt.Valid {
		return model.ShowerStatus{}, nil
	}
	return model.Occupy(occupant.String, fromMillis(startedAt.Int64)), nil
}

func (s *statusStore) Set(ctx context.Context, status model.ShowerStatus) error {
	var occupant sql.NullString
	var startedAt sql.NullInt64
	if status.Occupied() {
		occupant = sql.NullString{String: *status.CurrentUser, Valid: true}
		startedAt = sql.NullInt64{Int64: toMillis(*status.StartedAt), Valid: true}
	}
	_, err := s.db.ExecContext(ctx, `
        INSERT INTO shower_status (id, occupant, started_at) VALUES (1, ?, ?)
        ON CONFLICT(id) DO UPDATE SET occupant = excluded.occupant, started_at = excluded.started_at
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
        VALUES (?, ?, ?, ?, ?, ?, ?)
    `, slot.ID, slot.User, slot.Date, slot.StartTime, slot.DurationMinutes, slot.Recurring, slot.Completed)
	if err != nil {
		return model.Slot{}, err
	}
	return slot, nil
}

func (s *slotStore) Get(ctx context.Context, id string) (model.Slot, error) {
	row := s.db.QueryRowContext(ctx, `
        SELECT slot_id, member, slot_date, start_time, duration_minutes, recurring, completed
        FROM slots WHERE slot_id = ?
    `, id)
	return scanSlot(row)
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
		slot, err := scanSlot(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, slot)
	}
	return out, rows.Err()
}

func (s *slotStore) Update(ctx context.Context, slot model.Slot) error {
	res, err := s.db.ExecContext(ctx, `
        UPDATE slots SET member = ?, slot_date = ?, start_time = ?, duration_minutes = ?, recurring = ?, completed = ?
        WHERE slot_id = ?
    `, slot.User, slot.Date, slot.StartTime, slot.DurationMinutes, slot.Recurring, slot.Completed, slot.ID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (s *slotStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM slots WHERE slot_id = ?`, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (s *slotStore) DeleteDatedThrough(ctx context.Context, date string) (int, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM slots WHERE recurring = 0 AND slot_date <= ?`, date)
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
        VALUES (?, ?, ?, ?, ?, ?)
    `, entry.ID, string(stream), entry.User, toMillis(entry.StartedAt), toMillis(entry.EndedAt), entry.DurationSeconds)
	if err != nil {
		return model.LogEntry{}, err
	}
	return entry, nil
}

func (s *logStore) List(ctx context.Context, stream model.LogStream) ([]model.LogEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
        SELECT entry_id, member, started_at, ended_at, duration_seconds
        FROM shower_log WHERE stream = ? ORDER BY ended_at DESC, entry_id
    `, string(stream))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.LogEntry
	for rows.Next() {
		var entry model.LogEntry
		var started, ended int64
		if err := rows.Scan(&entry.ID, &entry.User, &started, &ended, &entry.DurationSeconds); err != nil {
			return nil, err
		}
		entry.StartedAt = fromMillis(started)
		entry.EndedAt = fromMillis(ended)
		out = append(out, entry)
	}
	return out, rows.Err()
}

func (s *logStore) DeleteEndedBefore(ctx context.Context, stream model.LogStream, cutoff time.Time) (int, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM shower_log WHERE stream = ? AND ended_at < ?`, string(stream), toMillis(cutoff))
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
        VALUES (?, ?, ?, ?)
        ON CONFLICT(sub_key) DO UPDATE SET member = excluded.member, endpoint = excluded.endpoint, updated_at = excluded.updated_at
    `, sub.Key, sub.User, sub.Endpoint, toMillis(sub.UpdatedAt))
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
		var updated int64
		if err := rows.Scan(&sub.Key, &sub.User, &sub.Endpoint, &updated); err != nil {
			return nil, err
		}
		sub.UpdatedAt = fromMillis(updated)
		out = append(out, sub)
	}
	return out, rows.Err()
}

func (s *subStore) Delete(ctx context.Context, key string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM push_subscriptions WHERE sub_key = ?`, key)
	if err != nil {
		return err
	}
	return requireRow(res)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSlot(row rowScanner) (model.Slot, error) {
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

// Timestamps are stored as unix milliseconds, matching the wire format of
// the original realtime-database layout.
func toMillis(t time.Time) int64    { return t.UnixMilli() }
func fromMillis(ms int64) time.Time { return time.UnixMilli(ms) }
