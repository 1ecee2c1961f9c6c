package sqlite

// The schema is small and fixed, so it is applied idempotently at startup
// instead of through a versioned migration chain.
const schema = `
CREATE TABLE IF NOT EXISTS shower_status (
    id         INTEGER PRIMARY KEY CHECK (id = 1),
    occupant   TEXT,
    started_at INTEGER
);

CREATE TABLE IF NOT EXISTS slots (
    slot_id          TEXT PRIMARY KEY,
    member           TEXT    NOT NULL,
    slot_date        TEXT    NOT NULL,
    start_time       TEXT    NOT NULL,
    duration_minutes INTEGER NOT NULL CHECK (duration_minutes > 0),
    recurring        INTEGER NOT NULL DEFAULT 0,
    completed        INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_slots_date ON slots (slot_date);

CREATE TABLE IF NOT EXISTS shower_log (
    entry_id         TEXT    NOT NULL,
    stream           TEXT    NOT NULL CHECK (stream IN ('operational', 'history')),
    member           TEXT    NOT NULL,
    started_at       INTEGER NOT NULL,
    ended_at         INTEGER NOT NULL,
    duration_seconds INTEGER NOT NULL CHECK (duration_seconds >= 1),
    PRIMARY KEY (entry_id, stream)
);

CREATE INDEX IF NOT EXISTS idx_shower_log_retention ON shower_log (stream, ended_at);

CREATE TABLE IF NOT EXISTS push_subscriptions (
    sub_key    TEXT PRIMARY KEY,
    member     TEXT    NOT NULL,
    endpoint   TEXT    NOT NULL,
    updated_at INTEGER NOT NULL
);
`
