package budget

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"farmgate/internal/verification/models"
)

const (
	bucketDay   = "day"
	bucketMonth = "month"
)

// PostgresStore persists the counters as two rows locked per increment.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Usage(ctx context.Context, window models.BudgetWindow) (models.BudgetUsage, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT bucket_type, bucket_start, count FROM vendor_budget_buckets WHERE bucket_type IN ($1, $2)`,
		bucketDay, bucketMonth)
	if err != nil {
		return models.BudgetUsage{}, fmt.Errorf("read budget buckets: %w", err)
	}
	defer rows.Close()

	var usage models.BudgetUsage
	for rows.Next() {
		var bucketType string
		var start time.Time
		var count int
		if err := rows.Scan(&bucketType, &start, &count); err != nil {
			return models.BudgetUsage{}, fmt.Errorf("scan budget bucket: %w", err)
		}
		switch {
		case bucketType == bucketDay && start.Equal(window.DayStart):
			usage.Daily = count
		case bucketType == bucketMonth && start.Equal(window.MonthStart):
			usage.Monthly = count
		}
	}
	if err := rows.Err(); err != nil {
		return models.BudgetUsage{}, fmt.Errorf("read budget buckets: %w", err)
	}
	return usage, nil
}

func (s *PostgresStore) Increment(ctx context.Context, window models.BudgetWindow, limits models.BudgetLimits) (usage models.BudgetUsage, allowed bool, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return models.BudgetUsage{}, false, fmt.Errorf("begin budget tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	dayCount, err := s.loadBucket(ctx, tx, bucketDay, window.DayStart)
	if err != nil {
		return models.BudgetUsage{}, false, err
	}
	monthCount, err := s.loadBucket(ctx, tx, bucketMonth, window.MonthStart)
	if err != nil {
		return models.BudgetUsage{}, false, err
	}

	if dayCount >= limits.Daily || monthCount >= limits.Monthly {
		if err := tx.Commit(); err != nil {
			return models.BudgetUsage{}, false, fmt.Errorf("commit budget tx: %w", err)
		}
		return models.BudgetUsage{Daily: dayCount, Monthly: monthCount}, false, nil
	}

	dayCount++
	monthCount++
	if err := s.updateBucket(ctx, tx, bucketDay, window.DayStart, dayCount); err != nil {
		return models.BudgetUsage{}, false, err
	}
	if err := s.updateBucket(ctx, tx, bucketMonth, window.MonthStart, monthCount); err != nil {
		return models.BudgetUsage{}, false, err
	}

	if err := tx.Commit(); err != nil {
		return models.BudgetUsage{}, false, fmt.Errorf("commit budget tx: %w", err)
	}
	return models.BudgetUsage{Daily: dayCount, Monthly: monthCount}, true, nil
}

// loadBucket locks a bucket row, creating it on first use and resetting it
// when it belongs to an earlier window.
func (s *PostgresStore) loadBucket(ctx context.Context, tx *sql.Tx, bucketType string, current time.Time) (int, error) {
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO vendor_budget_buckets (bucket_type, bucket_start, count) VALUES ($1, $2, 0)
		 ON CONFLICT (bucket_type) DO NOTHING`,
		bucketType, current); err != nil {
		return 0, fmt.Errorf("insert budget bucket: %w", err)
	}

	var start time.Time
	var count int
	err := tx.QueryRowContext(ctx,
		`SELECT bucket_start, count FROM vendor_budget_buckets WHERE bucket_type = $1 FOR UPDATE`,
		bucketType).Scan(&start, &count)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("budget bucket %s vanished", bucketType)
	}
	if err != nil {
		return 0, fmt.Errorf("load budget bucket: %w", err)
	}

	if !start.Equal(current) {
		if err := s.updateBucket(ctx, tx, bucketType, current, 0); err != nil {
			return 0, fmt.Errorf("reset budget bucket: %w", err)
		}
		return 0, nil
	}
	return count, nil
}

func (s *PostgresStore) updateBucket(ctx context.Context, tx *sql.Tx, bucketType string, start time.Time, count int) error {
	if _, err := tx.ExecContext(ctx,
		`UPDATE vendor_budget_buckets SET bucket_start = $2, count = $3 WHERE bucket_type = $1`,
		bucketType, start, count); err != nil {
		return fmt.Errorf("update budget bucket: %w", err)
	}
	return nil
}
