// Package model defines the core domain models for the misflow engine.
package model

// CategoryID is the stable internal identifier for a classification head.
// Display labels are looked up separately so renaming a label can never
// change classification behavior.
type CategoryID string

// Classification heads.
const (
	CategoryRevenue            CategoryID = "revenue"
	CategoryCOGS               CategoryID = "cogs"
	CategoryChannelFulfillment CategoryID = "channel_fulfillment"
	CategoryMarketing          CategoryID = "marketing"
	CategoryPlatform           CategoryID = "platform"
	CategoryOperating          CategoryID = "operating_expense"
	CategoryInterest           CategoryID = "interest"
	CategoryDepreciation       CategoryID = "depreciation"
	CategoryAmortization       CategoryID = "amortization"
	CategoryIncomeTax          CategoryID = "income_tax"
	CategoryIgnore             CategoryID = "ignore"
	CategoryNone               CategoryID = ""
)

// displayLabels maps stable identifiers to the labels shown on reports.
var displayLabels = map[CategoryID]string{
	CategoryRevenue:            "A. Revenue",
	CategoryCOGS:               "B. Cost of Goods",
	CategoryChannelFulfillment: "C. Channel & Fulfillment",
	CategoryMarketing:          "D. Marketing",
	CategoryPlatform:           "E. Platform & Technology",
	CategoryOperating:          "F. Operating Expenses",
	CategoryInterest:           "G. Interest",
	CategoryDepreciation:       "H. Depreciation",
	CategoryAmortization:       "I. Amortization",
	CategoryIncomeTax:          "J. Income Tax",
	CategoryIgnore:             "Z. Ignore (Non-P&L)",
}

// DisplayLabel returns the report label for a category, or the raw identifier
// when no label is registered.
func (c CategoryID) DisplayLabel() string {
	if label, ok := displayLabels[c]; ok {
		return label
	}
	return string(c)
}

// IsValid reports whether the identifier names a known category head.
func (c CategoryID) IsValid() bool {
	_, ok := displayLabels[c]
	return ok
}

// AllCategories returns every known category head in waterfall order.
func AllCategories() []CategoryID {
	return []CategoryID{
		CategoryRevenue,
		CategoryCOGS,
		CategoryChannelFulfillment,
		CategoryMarketing,
		CategoryPlatform,
		CategoryOperating,
		CategoryInterest,
		CategoryDepreciation,
		CategoryAmortization,
		CategoryIncomeTax,
		CategoryIgnore,
	}
}

// Category pairs a stable identifier with its descriptive metadata. The
// oracle receives these so its suggestions can be validated against the
// active taxonomy.
type Category struct {
	ID          CategoryID
	Description string
}

// categoryDescriptions are the hints handed to the oracle alongside each
// identifier.
var categoryDescriptions = map[CategoryID]string{
	CategoryRevenue:            "Sales income and other operating revenue",
	CategoryCOGS:               "Cost of goods sold: purchases, freight inward, stock movement",
	CategoryChannelFulfillment: "Marketplace commissions, shipping, fulfillment, and courier charges",
	CategoryMarketing:          "Advertising, performance marketing, promotions, and agency fees",
	CategoryPlatform:           "Software subscriptions, hosting, and technology platforms",
	CategoryOperating:          "Rent, salaries, professional fees, and general overheads",
	CategoryInterest:           "Interest on loans, overdrafts, and working capital",
	CategoryDepreciation:       "Depreciation of tangible assets",
	CategoryAmortization:       "Amortization of intangible assets",
	CategoryIncomeTax:          "Income tax expense and provisions",
	CategoryIgnore:             "Balance-sheet and non-P&L movements: GST, TDS, capital, inter-entity",
}

// DefaultCategorySet returns every category head with its oracle-facing
// description, in waterfall order.
func DefaultCategorySet() []Category {
	ids := AllCategories()
	categories := make([]Category, 0, len(ids))
	for _, id := range ids {
		categories = append(categories, Category{ID: id, Description: categoryDescriptions[id]})
	}
	return categories
}
