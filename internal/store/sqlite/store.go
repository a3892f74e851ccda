// Package sqlite persists the submission ledger. One row per idempotency key;
// the executor consults it before every broker call so a crash between submit
// and ack cannot turn into a second effective order.
package sqlite

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"marlin/internal/store/model"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Store struct {
	db *gorm.DB
}

// NewStore opens (or creates) the ledger database at path.
func NewStore(path string) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("database path cannot be empty")
	}
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", path)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}
	return newStore(db)
}

// NewStoreFromDB wraps an existing gorm handle, mainly for tests.
func NewStoreFromDB(db *gorm.DB) (*Store, error) {
	if db == nil {
		return nil, fmt.Errorf("gorm db cannot be nil")
	}
	return newStore(db)
}

func newStore(db *gorm.DB) (*Store, error) {
	if err := db.AutoMigrate(&model.SubmissionModel{}); err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

// Lookup returns the submission recorded under key, or nil when unseen.
func (s *Store) Lookup(ctx context.Context, key string) (*model.SubmissionModel, error) {
	var sub model.SubmissionModel
	err := s.db.WithContext(ctx).Where("idempotency_key = ?", key).First(&sub).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

// RecordPending creates (or revives) the ledger row before the broker call
// goes out, bumping the attempt counter on every pass.
func (s *Store) RecordPending(ctx context.Context, key, symbol, side string, qty int) error {
	now := time.Now().Unix()
	existing, err := s.Lookup(ctx, key)
	if err != nil {
		return err
	}
	if existing == nil {
		return s.db.WithContext(ctx).Create(&model.SubmissionModel{
			IdempotencyKey: key,
			Symbol:         symbol,
			Qty:            qty,
			Side:           side,
			Status:         model.SubmissionStatusPending,
			Attempts:       1,
			CreatedAtUnix:  now,
			UpdatedAtUnix:  now,
		}).Error
	}
	return s.db.WithContext(ctx).Model(&model.SubmissionModel{}).
		Where("idempotency_key = ?", key).
		Updates(map[string]any{
			"status":     model.SubmissionStatusPending,
			"attempts":   gorm.Expr("attempts + 1"),
			"updated_at": now,
		}).Error
}

// MarkSubmitted records the broker acknowledgment for key.
func (s *Store) MarkSubmitted(ctx context.Context, key, brokerOrderID string) error {
	return s.setOutcome(ctx, key, model.SubmissionStatusSubmitted, brokerOrderID, "")
}

// MarkFailed records a terminal failure for key. A failed row does not block
// resubmission; it only documents the attempt.
func (s *Store) MarkFailed(ctx context.Context, key, message string) error {
	return s.setOutcome(ctx, key, model.SubmissionStatusFailed, "", message)
}

func (s *Store) setOutcome(ctx context.Context, key string, status model.SubmissionStatus, brokerOrderID, message string) error {
	updates := map[string]any{
		"status":     status,
		"updated_at": time.Now().Unix(),
	}
	if brokerOrderID != "" {
		updates["broker_order_id"] = brokerOrderID
	}
	if message != "" {
		updates["message"] = message
	}
	res := s.db.WithContext(ctx).Model(&model.SubmissionModel{}).
		Where("idempotency_key = ?", key).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("no submission recorded under key %s", key)
	}
	return nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
