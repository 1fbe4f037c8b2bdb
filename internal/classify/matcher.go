// Package classify implements the rule-based classification passes: the
// pattern matcher, the auto-ignore pass, and the offset-entry resolver.
package classify

import (
	"log/slog"
	"regexp"
	"strings"

	"github.com/ledgermill/misflow/internal/model"
)

// Matcher evaluates account names against an ordered rule set. Rules are
// sorted once at construction: user origin before system origin regardless of
// numeric priority, then priority ascending.
//
// Compiled regexes are keyed by position in the sorted rule slice, not by
// rule ID. Unsaved rules all carry ID 0, so IDs are not unique.
type Matcher struct {
	compiledRegex map[int]*regexp.Regexp
	rules         []model.Rule
	autoIgnore    []model.AutoIgnoreRule
	diagnostics   []model.Diagnostic
}

// NewMatcher builds a matcher over the combined rule set. Rules whose regex
// pattern fails to compile are skipped with a logged warning, never fatal.
func NewMatcher(rules []model.Rule, autoIgnore []model.AutoIgnoreRule) *Matcher {
	sorted := make([]model.Rule, len(rules))
	copy(sorted, rules)
	model.SortRules(sorted)

	m := &Matcher{
		rules:         sorted,
		autoIgnore:    autoIgnore,
		compiledRegex: make(map[int]*regexp.Regexp),
	}

	kept := sorted[:0]
	for _, rule := range sorted {
		if rule.Kind == model.PatternRegex {
			pattern := rule.Pattern
			if !strings.HasPrefix(pattern, "(?i)") {
				pattern = "(?i)" + pattern
			}
			re, err := regexp.Compile(pattern)
			if err != nil {
				slog.Warn("skipping rule with invalid pattern",
					"rule_id", rule.ID,
					"pattern", rule.Pattern,
					"error", err)
				m.diagnostics = append(m.diagnostics,
					model.Warnf(rule.Pattern, "rule %d skipped: invalid pattern: %v", rule.ID, err))
				continue
			}
			m.compiledRegex[len(kept)] = re
		}
		kept = append(kept, rule)
	}
	m.rules = kept

	return m
}

// Diagnostics returns problems recovered during matcher construction.
func (m *Matcher) Diagnostics() []model.Diagnostic {
	return m.diagnostics
}

// Classify assigns a category to an account name. The rule pass runs first;
// if no rule matches, the auto-ignore pass runs; if both miss, the result is
// unclassified and surfaced for manual review. The matched rule is returned
// so the caller can increment its usage counter.
func (m *Matcher) Classify(accountName string) (model.ClassificationResult, *model.Rule) {
	if strings.TrimSpace(accountName) == "" {
		return model.Unclassified(), nil
	}

	for i := range m.rules {
		rule := &m.rules[i]
		if !rule.IsActive {
			continue
		}
		if m.matches(accountName, i, rule) {
			rule.TimesUsed++
			return model.ClassificationResult{
				Category:    rule.Category,
				Subcategory: rule.Subcategory,
				Tier:        tierForOrigin(rule.Origin),
				Origin:      originForRule(rule.Origin),
				RuleID:      rule.ID,
				Confidence:  rule.Confidence,
			}, rule
		}
	}

	if reason, ok := m.matchAutoIgnore(accountName); ok {
		return model.AutoIgnored(reason), nil
	}

	return model.Unclassified(), nil
}

// matchAutoIgnore runs the keyword-only auto-ignore rule set. A match is
// final and bypasses the needs-review state entirely.
func (m *Matcher) matchAutoIgnore(accountName string) (string, bool) {
	lower := strings.ToLower(accountName)
	for _, rule := range m.autoIgnore {
		if strings.Contains(lower, strings.ToLower(rule.Keyword)) {
			return rule.Reason, true
		}
	}
	return "", false
}

func (m *Matcher) matches(accountName string, idx int, rule *model.Rule) bool {
	switch rule.Kind {
	case model.PatternExact:
		return strings.EqualFold(accountName, rule.Pattern)
	case model.PatternSubstring:
		return strings.Contains(strings.ToLower(accountName), strings.ToLower(rule.Pattern))
	case model.PatternRegex:
		re, ok := m.compiledRegex[idx]
		if !ok {
			return false
		}
		return re.MatchString(accountName)
	}
	return false
}

func tierForOrigin(origin model.RuleOrigin) model.ConfidenceTier {
	switch origin {
	case model.RuleOriginUser:
		return model.TierHigh
	case model.RuleOriginSystem:
		return model.TierMedium
	default:
		return model.TierMedium
	}
}

func originForRule(origin model.RuleOrigin) model.ClassificationOrigin {
	if origin == model.RuleOriginUser {
		return model.OriginUserRule
	}
	return model.OriginSystemRule
}
