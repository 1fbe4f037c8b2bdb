package model

import "github.com/shopspring/decimal"

// AuthoritativeSnapshot holds balance-sheet-derived figures treated as ground
// truth for reconciliation. The classification pipeline never adjusts it.
type AuthoritativeSnapshot struct {
	PeriodKey     string          `json:"period_key"`
	OpeningStock  decimal.Decimal `json:"opening_stock"`
	ClosingStock  decimal.Decimal `json:"closing_stock"`
	Purchases     decimal.Decimal `json:"purchases"`
	NetSales      decimal.Decimal `json:"net_sales"`
	NetProfitLoss decimal.Decimal `json:"net_profit_loss"`
}

// ImpliedCOGS derives cost of goods sold from the stock movement:
// opening stock + purchases - closing stock.
func (s *AuthoritativeSnapshot) ImpliedCOGS() decimal.Decimal {
	return s.OpeningStock.Add(s.Purchases).Sub(s.ClosingStock)
}
