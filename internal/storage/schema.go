package storage

// schema is applied on every boot; each statement is idempotent.
const schema = `
CREATE TABLE IF NOT EXISTS settings (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL,
    updated_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS state (
    id INTEGER PRIMARY KEY CHECK (id = 1),
    json TEXT NOT NULL,
    updated_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS popups (
    id TEXT PRIMARY KEY,
    message TEXT NOT NULL,
    position TEXT NOT NULL,
    mode TEXT NOT NULL,
    priority TEXT NOT NULL,
    duration_seconds INTEGER,
    visible INTEGER NOT NULL DEFAULT 1,
    created_at INTEGER NOT NULL,
    updated_at INTEGER NOT NULL,
    expires_at INTEGER
);
CREATE INDEX IF NOT EXISTS idx_popups_active ON popups(visible, created_at);
`
