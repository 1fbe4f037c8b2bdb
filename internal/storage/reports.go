package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ledgermill/misflow/internal/common"
	"github.com/ledgermill/misflow/internal/model"
)

// SaveRecord upserts a period's report. Reports are derived data, so the
// latest generation simply replaces the previous one.
func (s *SQLiteStorage) SaveRecord(ctx context.Context, record *model.MISRecord) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if record == nil {
		return fmt.Errorf("%w: record", ErrNilParameter)
	}
	if err := validateString(record.PeriodKey, "periodKey"); err != nil {
		return err
	}

	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO reports (period_key, report_id, generated_at, payload)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(period_key) DO UPDATE SET
			report_id = excluded.report_id,
			generated_at = excluded.generated_at,
			payload = excluded.payload
	`, record.PeriodKey, record.ID, record.GeneratedAt, string(payload))
	if err != nil {
		return fmt.Errorf("failed to save report: %w", err)
	}
	return nil
}

// GetRecord returns a period's stored report or common.ErrNotFound.
func (s *SQLiteStorage) GetRecord(ctx context.Context, periodKey string) (*model.MISRecord, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(periodKey, "periodKey"); err != nil {
		return nil, err
	}

	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM reports WHERE period_key = ?`, periodKey).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: report for %s", common.ErrNotFound, periodKey)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query report: %w", err)
	}

	var record model.MISRecord
	if err := json.Unmarshal([]byte(payload), &record); err != nil {
		return nil, fmt.Errorf("failed to unmarshal report for %s: %w", periodKey, err)
	}
	return &record, nil
}
