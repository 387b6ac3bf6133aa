// Package storage persists settings, the state document and popups.
package storage

import (
	"context"
	"time"

	"homeboard/internal/models"
)

// Store is the durable backend. Every method is atomic on its own; callers
// that need read-modify-write must serialize above this layer.
type Store interface {
	// GetSetting returns the value for key and whether it exists.
	GetSetting(ctx context.Context, key string) (string, bool, error)
	// SetSetting inserts or overwrites key.
	SetSetting(ctx context.Context, key, value string) error

	// LoadState returns the reconciled state document, or nil when none was saved yet.
	LoadState(ctx context.Context) (*models.SharedState, error)
	// SaveState upserts the singleton document.
	SaveState(ctx context.Context, doc models.SharedState) error

	// GetPopup returns errs.ErrNotFound for an unknown id.
	GetPopup(ctx context.Context, id string) (models.Popup, error)
	// UpsertPopup inserts the popup or updates its mutable fields; created_at is kept.
	UpsertPopup(ctx context.Context, p models.Popup) error
	// ListPopups returns every row, oldest first.
	ListPopups(ctx context.Context) ([]models.Popup, error)
	// ListActivePopups returns visible, unexpired popups, oldest first.
	ListActivePopups(ctx context.Context, now time.Time) ([]models.Popup, error)
	// ClearPopups hides every popup in one statement.
	ClearPopups(ctx context.Context, now time.Time) error

	Close() error
}
