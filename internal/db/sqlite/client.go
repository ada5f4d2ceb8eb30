package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/iamwavecut/tool"
	"github.com/jmoiron/sqlx"
	migrate "github.com/rubenv/sql-migrate"
	log "github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"

	"github.com/modwarden/modwarden/internal/db"
	"github.com/modwarden/modwarden/resources"
)

type sqliteClient struct {
	db    *sqlx.DB
	mutex sync.RWMutex
}

func NewSQLiteClient(ctx context.Context, workDir, dbName string) (*sqliteClient, error) {
	dbx, err := sqlx.Open("sqlite", filepath.Join(workDir, dbName))
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	dbx.SetMaxOpenConns(42)

	if err := dbx.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("ping db: %w", err)
	}

	migrationsSource := &migrate.EmbedFileSystemMigrationSource{
		FileSystem: resources.FS,
		Root:       "migrations",
	}
	n, err := migrate.Exec(dbx.DB, "sqlite3", migrationsSource, migrate.Up)
	if err != nil {
		return nil, fmt.Errorf("migrate up: %w", err)
	}
	if n > 0 {
		log.Infof("applied %d migrations!", n)
	}

	return &sqliteClient{db: dbx}, nil
}

func (s *sqliteClient) Close() error {
	return s.db.Close()
}

func (s *sqliteClient) GetWarningCount(ctx context.Context, userID int64) (int, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	var count int
	err := s.db.GetContext(ctx, &count, `SELECT warns FROM warnings WHERE user_id = ?`, userID)
	if err != nil {
		if err == sql.ErrNoRows {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to get warning count for user %d: %w", userID, err)
	}
	return count, nil
}

// IncrementWarning is a single-statement upsert, so concurrent increments
// for the same user cannot lose updates.
func (s *sqliteClient) IncrementWarning(ctx context.Context, userID int64) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	query := `
		INSERT INTO warnings (user_id, warns) VALUES (?, 1)
		ON CONFLICT(user_id) DO UPDATE SET warns = warns + 1
	`
	if _, err := s.db.ExecContext(ctx, query, userID); err != nil {
		return fmt.Errorf("failed to increment warning for user %d: %w", userID, err)
	}
	return nil
}

func (s *sqliteClient) ResetWarning(ctx context.Context, userID int64) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	return tool.Err(s.db.ExecContext(ctx, `DELETE FROM warnings WHERE user_id = ?`, userID))
}

func (s *sqliteClient) GetBan(ctx context.Context, userID int64) (*db.BanRecord, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	var ban db.BanRecord
	err := s.db.GetContext(ctx, &ban, `SELECT user_id, until FROM bans WHERE user_id = ?`, userID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get ban for user %d: %w", userID, err)
	}
	return &ban, nil
}

func (s *sqliteClient) SetBan(ctx context.Context, userID int64, until time.Time) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	query := `
		INSERT INTO bans (user_id, until) VALUES (?, ?)
		ON CONFLICT(user_id) DO UPDATE SET until = excluded.until
	`
	if _, err := s.db.ExecContext(ctx, query, userID, until); err != nil {
		return fmt.Errorf("failed to set ban for user %d: %w", userID, err)
	}
	return nil
}

func (s *sqliteClient) ClearBan(ctx context.Context, userID int64) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	return tool.Err(s.db.ExecContext(ctx, `DELETE FROM bans WHERE user_id = ?`, userID))
}

func (s *sqliteClient) RemoveExpiredBans(ctx context.Context) (int64, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	result, err := s.db.ExecContext(ctx, `DELETE FROM bans WHERE until <= ?`, time.Now())
	if err != nil {
		return 0, fmt.Errorf("failed to remove expired bans: %w", err)
	}
	return result.RowsAffected()
}
