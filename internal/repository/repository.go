package repository

import (
	"context"
	"errors"
	"time"

	"github.com/example/zeus-tips-bot/internal/model"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("repository: not found")

// SubscriberRepository abstracts persistence of VIP subscribers.
type SubscriberRepository interface {
	Get(ctx context.Context, userID int64) (*model.Subscriber, error)
	// Upsert inserts the subscriber or replaces the existing row for the
	// same user_id.
	Upsert(ctx context.Context, s *model.Subscriber) error
	UpdateStatus(ctx context.Context, userID int64, status string) error
	List(ctx context.Context) ([]*model.Subscriber, error)
	ListActive(ctx context.Context) ([]*model.Subscriber, error)
	CountActive(ctx context.Context) (int, error)
}

// PredictionRepository abstracts the append-only tip history.
type PredictionRepository interface {
	// Add appends a record and fills in its ID.
	Add(ctx context.Context, p *model.PredictionRecord) error
	ListPending(ctx context.Context) ([]*model.PredictionRecord, error)
	// SetResult transitions a pending record to green or red. Records that
	// are already resolved are left untouched.
	SetResult(ctx context.Context, id int64, result string) error
	// ListSentOn returns records sent on the given calendar day.
	ListSentOn(ctx context.Context, day time.Time) ([]*model.PredictionRecord, error)
	Stats(ctx context.Context) (model.PredictionStats, error)
}

// SettingsRepository is a plain string key-value store. Values are always
// read fresh; last write wins.
type SettingsRepository interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
}
