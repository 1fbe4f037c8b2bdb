package model

import "fmt"

// ConfidenceTier buckets how much trust a classification carries.
type ConfidenceTier string

// Confidence tier constants.
const (
	TierHigh   ConfidenceTier = "high"
	TierMedium ConfidenceTier = "medium"
	TierNone   ConfidenceTier = "none"
)

// ClassificationOrigin records which pass produced a classification.
type ClassificationOrigin string

// Classification origin constants.
const (
	OriginUserRule     ClassificationOrigin = "user-rule"
	OriginSystemRule   ClassificationOrigin = "system-rule"
	OriginAI           ClassificationOrigin = "ai"
	OriginAutoIgnore   ClassificationOrigin = "auto-ignore"
	OriginUnclassified ClassificationOrigin = "unclassified"
)

// ClassificationResult is the category assignment attached to a ledger entry.
type ClassificationResult struct {
	Category    CategoryID           `json:"category"`
	Subcategory string               `json:"subcategory"`
	Tier        ConfidenceTier       `json:"tier"`
	Origin      ClassificationOrigin `json:"origin"`
	Reason      string               `json:"reason,omitempty"`
	RuleID      int                  `json:"rule_id,omitempty"`
	Confidence  float64              `json:"confidence,omitempty"`
	NeedsReview bool                 `json:"needs_review"`
}

// Unclassified returns the result used when no pass produced an assignment.
// Unclassified entries always need manual review.
func Unclassified() ClassificationResult {
	return ClassificationResult{
		Tier:        TierNone,
		Origin:      OriginUnclassified,
		NeedsReview: true,
	}
}

// AutoIgnored returns a final auto-ignore result with the given reason.
func AutoIgnored(reason string) ClassificationResult {
	return ClassificationResult{
		Category: CategoryIgnore,
		Tier:     TierHigh,
		Origin:   OriginAutoIgnore,
		Reason:   reason,
	}
}

// IsClassified reports whether the entry carries a usable assignment.
func (r ClassificationResult) IsClassified() bool {
	return r.Origin != OriginUnclassified && r.Origin != ""
}

// Excluded reports whether the entry is excluded from all margin sums.
func (r ClassificationResult) Excluded() bool {
	return r.Origin == OriginAutoIgnore || r.Category == CategoryIgnore
}

// Validate enforces the structural invariants on a result.
func (r ClassificationResult) Validate() error {
	switch r.Origin {
	case OriginUnclassified:
		if r.Category != CategoryNone || r.Subcategory != "" {
			return fmt.Errorf("unclassified result must have empty category, got %q/%q", r.Category, r.Subcategory)
		}
		if !r.NeedsReview {
			return fmt.Errorf("unclassified result must be flagged for review")
		}
	case OriginUserRule, OriginSystemRule, OriginAI:
		if r.Category == CategoryNone {
			return fmt.Errorf("%s result requires a category", r.Origin)
		}
	case OriginAutoIgnore:
		if r.Reason == "" {
			return fmt.Errorf("auto-ignore result requires a reason")
		}
	default:
		return fmt.Errorf("unknown classification origin: %q", r.Origin)
	}
	return nil
}
