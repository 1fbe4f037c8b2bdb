package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ledgermill/misflow/internal/common"
	"github.com/ledgermill/misflow/internal/model"
)

// SaveSnapshot upserts the authoritative figures for a period.
func (s *SQLiteStorage) SaveSnapshot(ctx context.Context, snapshot *model.AuthoritativeSnapshot) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateSnapshot(snapshot); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO snapshots
			(period_key, opening_stock, closing_stock, purchases, net_sales, net_profit_loss, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(period_key) DO UPDATE SET
			opening_stock = excluded.opening_stock,
			closing_stock = excluded.closing_stock,
			purchases = excluded.purchases,
			net_sales = excluded.net_sales,
			net_profit_loss = excluded.net_profit_loss,
			updated_at = excluded.updated_at
	`,
		snapshot.PeriodKey,
		snapshot.OpeningStock.String(),
		snapshot.ClosingStock.String(),
		snapshot.Purchases.String(),
		snapshot.NetSales.String(),
		snapshot.NetProfitLoss.String(),
		time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}

// GetSnapshot returns the period's snapshot or common.ErrNotFound.
func (s *SQLiteStorage) GetSnapshot(ctx context.Context, periodKey string) (*model.AuthoritativeSnapshot, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(periodKey, "periodKey"); err != nil {
		return nil, err
	}

	var (
		snapshot      model.AuthoritativeSnapshot
		openingStock  string
		closingStock  string
		purchases     string
		netSales      string
		netProfitLoss string
	)

	err := s.db.QueryRowContext(ctx, `
		SELECT period_key, opening_stock, closing_stock, purchases, net_sales, net_profit_loss
		FROM snapshots
		WHERE period_key = ?
	`, periodKey).Scan(&snapshot.PeriodKey, &openingStock, &closingStock,
		&purchases, &netSales, &netProfitLoss)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: snapshot for %s", common.ErrNotFound, periodKey)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshot: %w", err)
	}

	fields := []struct {
		dst *decimal.Decimal
		src string
	}{
		{&snapshot.OpeningStock, openingStock},
		{&snapshot.ClosingStock, closingStock},
		{&snapshot.Purchases, purchases},
		{&snapshot.NetSales, netSales},
		{&snapshot.NetProfitLoss, netProfitLoss},
	}
	for _, f := range fields {
		*f.dst, err = decimal.NewFromString(f.src)
		if err != nil {
			return nil, fmt.Errorf("snapshot %s has invalid value %q: %w", periodKey, f.src, err)
		}
	}

	return &snapshot, nil
}
