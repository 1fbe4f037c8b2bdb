package main

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestRunConfig(t *testing.T) {
	t.Cleanup(viper.Reset)

	viper.Set("oracle.auto_accept", 0.9)
	viper.Set("engine.hub_state", "maharashtra")
	viper.Set("engine.adjustment_keywords", []string{"cash sale", "wash"})

	cfg := runConfig()
	assert.Equal(t, 0.9, cfg.AutoAcceptThreshold)
	assert.Equal(t, "maharashtra", cfg.HubState)
	assert.Equal(t, []string{"cash sale", "wash"}, cfg.AdjustmentKeywords)
}

func TestRunConfigDefaults(t *testing.T) {
	t.Cleanup(viper.Reset)

	cfg := runConfig()
	assert.Equal(t, "karnataka", cfg.HubState)
	assert.Zero(t, cfg.AutoAcceptThreshold)
}
