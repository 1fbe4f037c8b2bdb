package storage

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/ledgermill/misflow/internal/aggregate"
	"github.com/ledgermill/misflow/internal/model"
)

// SaveSalesItems replaces one state's register for a period. A re-import of
// the same state and period starts clean instead of accumulating duplicates.
func (s *SQLiteStorage) SaveSalesItems(ctx context.Context, state, periodKey string, items []model.SalesLineItem) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(state, "state"); err != nil {
		return err
	}
	if err := validateString(periodKey, "periodKey"); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx,
		`DELETE FROM sales_items WHERE period_key = ? AND state = ?`, periodKey, state)
	if err != nil {
		return fmt.Errorf("failed to clear existing sales: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO sales_items
			(period_key, state, party, channel, destination_region, amount, tax_amount, is_return, is_transfer)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i := range items {
		item := &items[i]
		if err := item.Validate(); err != nil {
			return fmt.Errorf("sales line at index %d: %w", i, err)
		}

		_, err = stmt.ExecContext(ctx,
			periodKey, state, item.Party, string(item.Channel), string(item.DestinationRegion),
			item.Amount.String(), item.TaxAmount.String(), item.IsReturn, item.IsTransfer)
		if err != nil {
			return fmt.Errorf("failed to insert sales line %q: %w", item.Party, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit sales: %w", err)
	}
	return nil
}

// GetSalesByPeriod returns the period's registers grouped by state.
func (s *SQLiteStorage) GetSalesByPeriod(ctx context.Context, periodKey string) ([]aggregate.StateSales, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(periodKey, "periodKey"); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT state, party, channel, destination_region, amount, tax_amount, is_return, is_transfer
		FROM sales_items
		WHERE period_key = ?
		ORDER BY state, id
	`, periodKey)
	if err != nil {
		return nil, fmt.Errorf("failed to query sales: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var (
		states []aggregate.StateSales
		byName = make(map[string]int)
	)

	for rows.Next() {
		var (
			state     string
			item      model.SalesLineItem
			channel   string
			region    string
			amount    string
			taxAmount string
		)

		err := rows.Scan(&state, &item.Party, &channel, &region,
			&amount, &taxAmount, &item.IsReturn, &item.IsTransfer)
		if err != nil {
			return nil, fmt.Errorf("failed to scan sales line: %w", err)
		}

		item.Channel = model.Channel(channel)
		item.DestinationRegion = model.Region(region)

		item.Amount, err = decimal.NewFromString(amount)
		if err != nil {
			return nil, fmt.Errorf("sales line %q has invalid amount %q: %w", item.Party, amount, err)
		}
		item.TaxAmount, err = decimal.NewFromString(taxAmount)
		if err != nil {
			return nil, fmt.Errorf("sales line %q has invalid tax %q: %w", item.Party, taxAmount, err)
		}

		idx, ok := byName[state]
		if !ok {
			idx = len(states)
			byName[state] = idx
			states = append(states, aggregate.StateSales{State: state})
		}
		states[idx].Items = append(states[idx].Items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate sales: %w", err)
	}
	return states, nil
}
