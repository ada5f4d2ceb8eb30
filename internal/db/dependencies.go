package db

import (
	"context"
	"time"
)

// Client is the durable moderation store. Warning counts and ban records
// are keyed by user id only: a warning or ban earned in one monitored chat
// follows the user into every other monitored chat.
type Client interface {
	Close() error

	GetWarningCount(ctx context.Context, userID int64) (int, error)
	IncrementWarning(ctx context.Context, userID int64) error
	ResetWarning(ctx context.Context, userID int64) error

	GetBan(ctx context.Context, userID int64) (*BanRecord, error)
	SetBan(ctx context.Context, userID int64, until time.Time) error
	ClearBan(ctx context.Context, userID int64) error
	RemoveExpiredBans(ctx context.Context) (int64, error)
}
