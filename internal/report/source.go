package report

import (
	"github.com/ledgermill/misflow/internal/model"
	"github.com/shopspring/decimal"
)

// ResolveCOGS picks the cost-of-goods figure with documented precedence:
// the authoritative snapshot's implied COGS wins over the figure derived
// from classified transactions.
func ResolveCOGS(derived decimal.Decimal, snapshot *model.AuthoritativeSnapshot) (decimal.Decimal, model.ValueSource) {
	if snapshot != nil {
		return snapshot.ImpliedCOGS(), model.SourceSnapshot
	}
	return derived, model.SourceDerived
}
