package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ledgermill/misflow/internal/common"
	"github.com/ledgermill/misflow/internal/model"
)

// periodKeyFor derives the YYYY-MM period key from an entry date.
func periodKeyFor(date time.Time) string {
	return date.Format("2006-01")
}

// SaveEntries inserts entries, skipping rows whose content hash already
// exists. Re-importing the same export is therefore safe.
func (s *SQLiteStorage) SaveEntries(ctx context.Context, entries []model.LedgerEntry) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateEntries(entries); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR IGNORE INTO ledger_entries
			(id, hash, period_key, date, voucher_id, account_name, notes, region_tag, debit, credit)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i := range entries {
		entry := &entries[i]
		_, err = stmt.ExecContext(ctx,
			entry.ID,
			entry.GenerateHash(),
			periodKeyFor(entry.Date),
			entry.Date,
			entry.VoucherID,
			entry.AccountName,
			entry.Notes,
			entry.RegionTag,
			entry.Debit.String(),
			entry.Credit.String(),
		)
		if err != nil {
			return fmt.Errorf("failed to insert entry %s: %w", entry.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit entries: %w", err)
	}
	return nil
}

// GetEntriesByPeriod returns all entries for one YYYY-MM period with their
// stored classifications.
func (s *SQLiteStorage) GetEntriesByPeriod(ctx context.Context, periodKey string) ([]model.LedgerEntry, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(periodKey, "periodKey"); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, date, voucher_id, account_name, notes, region_tag, debit, credit,
		       category, subcategory, tier, origin, reason, rule_id, confidence, needs_review
		FROM ledger_entries
		WHERE period_key = ?
		ORDER BY date, id
	`, periodKey)
	if err != nil {
		return nil, fmt.Errorf("failed to query entries: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return scanEntries(rows)
}

// GetNeedsReview returns entries flagged for manual review in a period.
func (s *SQLiteStorage) GetNeedsReview(ctx context.Context, periodKey string) ([]model.LedgerEntry, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(periodKey, "periodKey"); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, date, voucher_id, account_name, notes, region_tag, debit, credit,
		       category, subcategory, tier, origin, reason, rule_id, confidence, needs_review
		FROM ledger_entries
		WHERE period_key = ? AND needs_review = 1
		ORDER BY date, id
	`, periodKey)
	if err != nil {
		return nil, fmt.Errorf("failed to query review entries: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return scanEntries(rows)
}

// UpdateEntryClassification writes one entry's classification back.
func (s *SQLiteStorage) UpdateEntryClassification(ctx context.Context, entryID string, result model.ClassificationResult) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(entryID, "entryID"); err != nil {
		return err
	}
	if err := result.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidEntry, err)
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE ledger_entries
		SET category = ?, subcategory = ?, tier = ?, origin = ?, reason = ?,
		    rule_id = ?, confidence = ?, needs_review = ?
		WHERE id = ?
	`,
		string(result.Category),
		result.Subcategory,
		string(result.Tier),
		string(result.Origin),
		result.Reason,
		result.RuleID,
		result.Confidence,
		result.NeedsReview,
		entryID,
	)
	if err != nil {
		return fmt.Errorf("failed to update classification: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: entry %s", common.ErrNotFound, entryID)
	}
	return nil
}

func scanEntries(rows *sql.Rows) ([]model.LedgerEntry, error) {
	var entries []model.LedgerEntry

	for rows.Next() {
		var (
			entry       model.LedgerEntry
			voucherID   sql.NullString
			notes       sql.NullString
			regionTag   sql.NullString
			debit       string
			credit      string
			category    sql.NullString
			subcategory sql.NullString
			tier        sql.NullString
			origin      sql.NullString
			reason      sql.NullString
			ruleID      sql.NullInt64
			confidence  sql.NullFloat64
			needsReview sql.NullBool
		)

		err := rows.Scan(&entry.ID, &entry.Date, &voucherID, &entry.AccountName,
			&notes, &regionTag, &debit, &credit,
			&category, &subcategory, &tier, &origin, &reason,
			&ruleID, &confidence, &needsReview)
		if err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}

		entry.VoucherID = voucherID.String
		entry.Notes = notes.String
		entry.RegionTag = regionTag.String

		entry.Debit, err = decimal.NewFromString(debit)
		if err != nil {
			return nil, fmt.Errorf("entry %s has invalid debit %q: %w", entry.ID, debit, err)
		}
		entry.Credit, err = decimal.NewFromString(credit)
		if err != nil {
			return nil, fmt.Errorf("entry %s has invalid credit %q: %w", entry.ID, credit, err)
		}

		if origin.Valid && origin.String != "" {
			entry.Classification = model.ClassificationResult{
				Category:    model.CategoryID(category.String),
				Subcategory: subcategory.String,
				Tier:        model.ConfidenceTier(tier.String),
				Origin:      model.ClassificationOrigin(origin.String),
				Reason:      reason.String,
				RuleID:      int(ruleID.Int64),
				Confidence:  confidence.Float64,
				NeedsReview: needsReview.Bool,
			}
		}

		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate entries: %w", err)
	}
	return entries, nil
}
