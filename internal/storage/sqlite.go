package storage

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"time"

	json "github.com/goccy/go-json"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"

	"homeboard/internal/errs"
	"homeboard/internal/models"
	"homeboard/internal/structures"
)

// SQLiteStore keeps everything in one SQLite file opened in WAL mode.
type SQLiteStore struct {
	db *sql.DB
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore opens the database configured under storage.path.
func NewSQLiteStore(conf *structures.Config) (Store, error) {
	return OpenSQLite(conf.Storage.Path)
}

// OpenSQLite opens (creating if needed) the database at path and applies the schema.
func OpenSQLite(path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, errors.Wrap(err, "create storage dir")
		}
	}

	dsn := "file:" + path + "?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL"
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "open sqlite")
	}
	// one writer keeps SQLITE_BUSY out of the request path
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, errors.Wrapf(err, "ping sqlite %s", path)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "apply schema")
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) GetSetting(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return "", false, nil
	case err != nil:
		return "", false, errors.Wrapf(err, "get setting %s", key)
	}
	return value, true, nil
}

func (s *SQLiteStore) SetSetting(ctx context.Context, key, value string) error {
	const q = `
INSERT INTO settings (key, value, updated_at) VALUES (?, ?, ?)
ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`
	if _, err := s.db.ExecContext(ctx, q, key, value, time.Now().UnixNano()); err != nil {
		return errors.Wrapf(err, "set setting %s", key)
	}
	return nil
}

func (s *SQLiteStore) LoadState(ctx context.Context) (*models.SharedState, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, `SELECT json FROM state WHERE id = 1`).Scan(&raw)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, nil
	case err != nil:
		return nil, errors.Wrap(err, "load state")
	}
	doc, err := models.DecodeState([]byte(raw))
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

func (s *SQLiteStore) SaveState(ctx context.Context, doc models.SharedState) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return errors.Wrap(err, "encode state")
	}
	const q = `
INSERT INTO state (id, json, updated_at) VALUES (1, ?, ?)
ON CONFLICT(id) DO UPDATE SET json = excluded.json, updated_at = excluded.updated_at`
	if _, err := s.db.ExecContext(ctx, q, string(raw), doc.UpdatedAt.UnixNano()); err != nil {
		return errors.Wrap(err, "save state")
	}
	return nil
}

const popupColumns = `id, message, position, mode, priority, duration_seconds, visible, created_at, updated_at, expires_at`

func (s *SQLiteStore) GetPopup(ctx context.Context, id string) (models.Popup, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+popupColumns+` FROM popups WHERE id = ?`, id)
	p, err := scanPopup(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Popup{}, errs.ErrNotFound
	}
	if err != nil {
		return models.Popup{}, errors.Wrapf(err, "get popup %s", id)
	}
	return p, nil
}

func (s *SQLiteStore) UpsertPopup(ctx context.Context, p models.Popup) error {
	const q = `
INSERT INTO popups (` + popupColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
    message = excluded.message,
    position = excluded.position,
    mode = excluded.mode,
    priority = excluded.priority,
    duration_seconds = excluded.duration_seconds,
    visible = excluded.visible,
    updated_at = excluded.updated_at,
    expires_at = excluded.expires_at`

	var duration, expires sql.NullInt64
	if p.DurationSeconds != nil {
		duration = sql.NullInt64{Int64: int64(*p.DurationSeconds), Valid: true}
	}
	if p.ExpiresAt != nil {
		expires = sql.NullInt64{Int64: p.ExpiresAt.UnixNano(), Valid: true}
	}

	_, err := s.db.ExecContext(ctx, q,
		p.ID, p.Message, p.Position, p.Mode, p.Priority, duration, boolToInt(p.Visible),
		p.CreatedAt.UnixNano(), p.UpdatedAt.UnixNano(), expires,
	)
	if err != nil {
		return errors.Wrapf(err, "upsert popup %s", p.ID)
	}
	return nil
}

func (s *SQLiteStore) ListPopups(ctx context.Context) ([]models.Popup, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+popupColumns+` FROM popups ORDER BY created_at ASC, id ASC`)
	if err != nil {
		return nil, errors.Wrap(err, "list popups")
	}
	return collectPopups(rows)
}

func (s *SQLiteStore) ListActivePopups(ctx context.Context, now time.Time) ([]models.Popup, error) {
	const q = `SELECT ` + popupColumns + ` FROM popups
WHERE visible = 1 AND (expires_at IS NULL OR expires_at > ?)
ORDER BY created_at ASC, id ASC`
	rows, err := s.db.QueryContext(ctx, q, now.UnixNano())
	if err != nil {
		return nil, errors.Wrap(err, "list active popups")
	}
	return collectPopups(rows)
}

func (s *SQLiteStore) ClearPopups(ctx context.Context, now time.Time) error {
	if _, err := s.db.ExecContext(ctx, `UPDATE popups SET visible = 0, updated_at = ?`, now.UnixNano()); err != nil {
		return errors.Wrap(err, "clear popups")
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPopup(r rowScanner) (models.Popup, error) {
	var (
		p                    models.Popup
		duration, expires    sql.NullInt64
		visible              int
		createdAt, updatedAt int64
	)
	if err := r.Scan(&p.ID, &p.Message, &p.Position, &p.Mode, &p.Priority, &duration, &visible, &createdAt, &updatedAt, &expires); err != nil {
		return models.Popup{}, err
	}
	p.Visible = visible != 0
	p.CreatedAt = time.Unix(0, createdAt).UTC()
	p.UpdatedAt = time.Unix(0, updatedAt).UTC()
	if duration.Valid {
		d := int(duration.Int64)
		p.DurationSeconds = &d
	}
	if expires.Valid {
		e := time.Unix(0, expires.Int64).UTC()
		p.ExpiresAt = &e
	}
	return p, nil
}

func collectPopups(rows *sql.Rows) ([]models.Popup, error) {
	defer rows.Close()

	popups := make([]models.Popup, 0)
	for rows.Next() {
		p, err := scanPopup(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scan popup")
		}
		popups = append(popups, p)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate popups")
	}
	return popups, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
