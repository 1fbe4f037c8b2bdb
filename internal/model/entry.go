package model

import (
	"crypto/sha256"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// LedgerEntry is one row from a journal export. Entries are created by the
// external row extractor and mutated only by classification; rows excluded
// from the P&L are marked ignore, never deleted, preserving the audit trail.
type LedgerEntry struct {
	Date           time.Time            `json:"date"`
	ID             string               `json:"id"`
	VoucherID      string               `json:"voucher_id"`
	AccountName    string               `json:"account_name"`
	Notes          string               `json:"notes,omitempty"`
	RegionTag      string               `json:"region_tag,omitempty"`
	Debit          decimal.Decimal      `json:"debit"`
	Credit         decimal.Decimal      `json:"credit"`
	Classification ClassificationResult `json:"classification"`
}

// SignedAmount returns debit minus credit. Exactly one side is typically
// nonzero, but both-zero and both-nonzero rows are tolerated.
func (e *LedgerEntry) SignedAmount() decimal.Decimal {
	return e.Debit.Sub(e.Credit)
}

// IsDebit reports whether the entry's net effect is on the debit side.
func (e *LedgerEntry) IsDebit() bool {
	return e.Debit.GreaterThan(e.Credit)
}

// GenerateHash creates a stable hash for duplicate detection on re-import.
func (e *LedgerEntry) GenerateHash() string {
	data := fmt.Sprintf("%s:%s:%s:%s:%s",
		e.Date.Format("2006-01-02"),
		e.VoucherID,
		e.AccountName,
		e.Debit.String(),
		e.Credit.String())
	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("%x", hash)
}
