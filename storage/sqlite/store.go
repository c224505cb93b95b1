// Package sqlite provides a SQLite-backed save-slot store.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/nathoo/campaigncore/storage"
	"github.com/nathoo/campaigncore/storage/sqlite/migrations"
	_ "modernc.org/sqlite"
)

// Store persists save slots in SQLite.
type Store struct {
	sqlDB *sql.DB
	now   func() time.Time
}

var _ storage.Store = (*Store)(nil)

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens a SQLite save store and applies embedded migrations.
func Open(ctx context.Context, path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := applyMigrations(ctx, sqlDB, migrations.FS); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB, now: time.Now}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// Put inserts or replaces one save slot.
func (s *Store) Put(ctx context.Context, slot storage.Slot, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := storage.ValidateName(slot.Name); err != nil {
		return err
	}
	if slot.SavedAt.IsZero() {
		slot.SavedAt = s.now()
	}
	if data == nil {
		data = []byte{}
	}
	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO save_slots (name, campaign_id, round, saved_at, data)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET
		   campaign_id = excluded.campaign_id,
		   round = excluded.round,
		   saved_at = excluded.saved_at,
		   data = excluded.data`,
		slot.Name, slot.CampaignID, slot.Round, toMillis(slot.SavedAt), data,
	)
	if err != nil {
		return fmt.Errorf("put save slot %s: %w", slot.Name, err)
	}
	return nil
}

// Get returns one save slot by name.
func (s *Store) Get(ctx context.Context, name string) (storage.Slot, []byte, error) {
	if err := ctx.Err(); err != nil {
		return storage.Slot{}, nil, err
	}
	if err := storage.ValidateName(name); err != nil {
		return storage.Slot{}, nil, err
	}
	var (
		slot    storage.Slot
		savedAt int64
		data    []byte
	)
	err := s.sqlDB.QueryRowContext(ctx,
		`SELECT name, campaign_id, round, saved_at, data FROM save_slots WHERE name = ?`, name,
	).Scan(&slot.Name, &slot.CampaignID, &slot.Round, &savedAt, &data)
	if errors.Is(err, sql.ErrNoRows) {
		return storage.Slot{}, nil, storage.ErrNotFound
	}
	if err != nil {
		return storage.Slot{}, nil, fmt.Errorf("get save slot %s: %w", name, err)
	}
	slot.SavedAt = fromMillis(savedAt)
	return slot, data, nil
}

// List returns slot metadata newest first.
func (s *Store) List(ctx context.Context, campaignID string) ([]storage.Slot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT name, campaign_id, round, saved_at FROM save_slots
		 WHERE ? = '' OR campaign_id = ?
		 ORDER BY saved_at DESC, name ASC`, campaignID, campaignID,
	)
	if err != nil {
		return nil, fmt.Errorf("list save slots: %w", err)
	}
	defer rows.Close()

	var out []storage.Slot
	for rows.Next() {
		var (
			slot    storage.Slot
			savedAt int64
		)
		if err := rows.Scan(&slot.Name, &slot.CampaignID, &slot.Round, &savedAt); err != nil {
			return nil, fmt.Errorf("scan save slot: %w", err)
		}
		slot.SavedAt = fromMillis(savedAt)
		out = append(out, slot)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate save slots: %w", err)
	}
	return out, nil
}

// Delete removes one save slot.
func (s *Store) Delete(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := storage.ValidateName(name); err != nil {
		return err
	}
	res, err := s.sqlDB.ExecContext(ctx, `DELETE FROM save_slots WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("delete save slot %s: %w", name, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete save slot %s: %w", name, err)
	}
	if n == 0 {
		return storage.ErrNotFound
	}
	return nil
}
