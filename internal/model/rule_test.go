package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSortRules(t *testing.T) {
	t.Run("user origin beats system regardless of priority", func(t *testing.T) {
		rules := []Rule{
			{ID: 1, Origin: RuleOriginSystem, Priority: 0},
			{ID: 2, Origin: RuleOriginUser, Priority: 99},
			{ID: 3, Origin: RuleOriginAILearned, Priority: 0},
		}

		SortRules(rules)

		assert.Equal(t, 2, rules[0].ID)
		assert.Equal(t, 1, rules[1].ID)
		assert.Equal(t, 3, rules[2].ID)
	})

	t.Run("priority orders within one origin", func(t *testing.T) {
		rules := []Rule{
			{ID: 1, Origin: RuleOriginUser, Priority: 10},
			{ID: 2, Origin: RuleOriginUser, Priority: 2},
			{ID: 3, Origin: RuleOriginUser, Priority: 5},
		}

		SortRules(rules)

		assert.Equal(t, []int{2, 3, 1}, []int{rules[0].ID, rules[1].ID, rules[2].ID})
	})

	t.Run("times used never affects order", func(t *testing.T) {
		rules := []Rule{
			{ID: 1, Origin: RuleOriginSystem, Priority: 1, TimesUsed: 0},
			{ID: 2, Origin: RuleOriginSystem, Priority: 1, TimesUsed: 5000},
		}

		SortRules(rules)

		assert.Equal(t, 1, rules[0].ID)
	})
}

func TestRuleOriginOutranks(t *testing.T) {
	assert.True(t, RuleOriginUser.Outranks(RuleOriginSystem))
	assert.True(t, RuleOriginSystem.Outranks(RuleOriginAILearned))
	assert.False(t, RuleOriginSystem.Outranks(RuleOriginUser))
	assert.False(t, RuleOriginUser.Outranks(RuleOriginUser))
}
