package model

import (
	"sort"
	"time"
)

// RuleOrigin identifies who authored a classification rule.
type RuleOrigin string

// Rule origin constants.
const (
	RuleOriginUser      RuleOrigin = "user"
	RuleOriginSystem    RuleOrigin = "system"
	RuleOriginAILearned RuleOrigin = "ai-learned"
)

// rank defines the total order between origins. User rules always outrank
// system rules regardless of any numeric priority; ai-learned rules come last.
func (o RuleOrigin) rank() int {
	switch o {
	case RuleOriginUser:
		return 0
	case RuleOriginSystem:
		return 1
	case RuleOriginAILearned:
		return 2
	default:
		return 3
	}
}

// Outranks reports whether o is evaluated before other.
func (o RuleOrigin) Outranks(other RuleOrigin) bool {
	return o.rank() < other.rank()
}

// PatternKind selects how a rule's pattern is matched against account names.
type PatternKind string

// Pattern kind constants.
const (
	PatternExact     PatternKind = "exact"
	PatternSubstring PatternKind = "substring"
	PatternRegex     PatternKind = "regex"
)

// Rule matches account names to a category assignment. Rules are append-only
// and versionless; edits mutate in place.
type Rule struct {
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
	Pattern     string      `json:"pattern"`
	Kind        PatternKind `json:"kind"`
	Category    CategoryID  `json:"category"`
	Subcategory string      `json:"subcategory"`
	Origin      RuleOrigin  `json:"origin"`
	Confidence  float64     `json:"confidence"`
	Priority    int         `json:"priority"`
	ID          int         `json:"id"`
	TimesUsed   int         `json:"times_used"`
	IsActive    bool        `json:"is_active"`
}

// SortRules orders rules for evaluation: origin rank first, then numeric
// priority ascending, then ID for a stable order. TimesUsed never affects
// ordering.
func SortRules(rules []Rule) {
	sort.SliceStable(rules, func(i, j int) bool {
		if rules[i].Origin.rank() != rules[j].Origin.rank() {
			return rules[i].Origin.rank() < rules[j].Origin.rank()
		}
		if rules[i].Priority != rules[j].Priority {
			return rules[i].Priority < rules[j].Priority
		}
		return rules[i].ID < rules[j].ID
	})
}

// AutoIgnoreRule is a keyword-only rule with no category assignment. A match
// marks the entry auto-ignore with a human-readable reason, bypassing the
// needs-review state entirely.
type AutoIgnoreRule struct {
	ID      int    `json:"id"`
	Keyword string `json:"keyword"`
	Reason  string `json:"reason"`
}
