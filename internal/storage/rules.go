package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/ledgermill/misflow/internal/common"
	"github.com/ledgermill/misflow/internal/model"
)

// ListRules returns all rules, active and inactive. Ordering for evaluation
// is the matcher's concern, not the store's.
func (s *SQLiteStorage) ListRules(ctx context.Context) ([]model.Rule, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, pattern, kind, category, subcategory, origin, confidence,
		       priority, times_used, is_active, created_at, updated_at
		FROM rules
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query rules: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var rules []model.Rule
	for rows.Next() {
		var rule model.Rule
		err := rows.Scan(&rule.ID, &rule.Pattern, &rule.Kind, &rule.Category,
			&rule.Subcategory, &rule.Origin, &rule.Confidence,
			&rule.Priority, &rule.TimesUsed, &rule.IsActive,
			&rule.CreatedAt, &rule.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan rule: %w", err)
		}
		rules = append(rules, rule)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate rules: %w", err)
	}
	return rules, nil
}

// CreateRule inserts a rule and fills in its assigned ID.
func (s *SQLiteStorage) CreateRule(ctx context.Context, rule *model.Rule) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateRule(rule); err != nil {
		return err
	}

	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO rules (pattern, kind, category, subcategory, origin,
		                   confidence, priority, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		rule.Pattern, string(rule.Kind), string(rule.Category), rule.Subcategory,
		string(rule.Origin), rule.Confidence, rule.Priority, rule.IsActive, now, now,
	)
	if err != nil {
		return fmt.Errorf("failed to insert rule: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get rule ID: %w", err)
	}
	rule.ID = int(id)
	rule.CreatedAt = now
	rule.UpdatedAt = now
	return nil
}

// UpdateRule rewrites a rule in place. TimesUsed is not touched here; it only
// moves through IncrementRuleUseCount.
func (s *SQLiteStorage) UpdateRule(ctx context.Context, rule *model.Rule) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateRule(rule); err != nil {
		return err
	}

	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx, `
		UPDATE rules
		SET pattern = ?, kind = ?, category = ?, subcategory = ?, origin = ?,
		    confidence = ?, priority = ?, is_active = ?, updated_at = ?
		WHERE id = ?
	`,
		rule.Pattern, string(rule.Kind), string(rule.Category), rule.Subcategory,
		string(rule.Origin), rule.Confidence, rule.Priority, rule.IsActive, now, rule.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update rule: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: rule %d", common.ErrNotFound, rule.ID)
	}
	rule.UpdatedAt = now
	return nil
}

// DeleteRule removes a rule permanently. Deactivation via UpdateRule is
// usually the better call; deletion loses the usage history.
func (s *SQLiteStorage) DeleteRule(ctx context.Context, id int) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, `DELETE FROM rules WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete rule: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: rule %d", common.ErrNotFound, id)
	}
	return nil
}

// IncrementRuleUseCount bumps a rule's usage counter.
func (s *SQLiteStorage) IncrementRuleUseCount(ctx context.Context, id int) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE rules SET times_used = times_used + 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to increment rule usage: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: rule %d", common.ErrNotFound, id)
	}
	return nil
}

// ListAutoIgnoreRules returns the keyword-only ignore rules.
func (s *SQLiteStorage) ListAutoIgnoreRules(ctx context.Context) ([]model.AutoIgnoreRule, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, keyword, reason FROM auto_ignore_rules ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query auto-ignore rules: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var rules []model.AutoIgnoreRule
	for rows.Next() {
		var rule model.AutoIgnoreRule
		if err := rows.Scan(&rule.ID, &rule.Keyword, &rule.Reason); err != nil {
			return nil, fmt.Errorf("failed to scan auto-ignore rule: %w", err)
		}
		rules = append(rules, rule)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate auto-ignore rules: %w", err)
	}
	return rules, nil
}

// CreateAutoIgnoreRule inserts a keyword rule and fills in its assigned ID.
func (s *SQLiteStorage) CreateAutoIgnoreRule(ctx context.Context, rule *model.AutoIgnoreRule) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if rule == nil {
		return fmt.Errorf("%w: rule", ErrNilParameter)
	}
	if err := validateString(rule.Keyword, "keyword"); err != nil {
		return err
	}
	if err := validateString(rule.Reason, "reason"); err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO auto_ignore_rules (keyword, reason) VALUES (?, ?)`,
		rule.Keyword, rule.Reason)
	if err != nil {
		return fmt.Errorf("failed to insert auto-ignore rule: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get auto-ignore rule ID: %w", err)
	}
	rule.ID = int(id)
	return nil
}
