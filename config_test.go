package dyntrack

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero gating distance", func(c *Config) { c.GatingDistance = 0 }},
		{"negative class penalty", func(c *Config) { c.ClassMismatchPenalty = -0.1 }},
		{"negative extent weight", func(c *Config) { c.ExtentPenaltyWeight = -1 }},
		{"zero confirm hits", func(c *Config) { c.ConfirmHits = 0 }},
		{"zero tentative misses", func(c *Config) { c.TentativeMaxMisses = 0 }},
		{"tentative age below confirm hits", func(c *Config) { c.TentativeMaxAge = 2; c.ConfirmHits = 3 }},
		{"coasting below tentative misses", func(c *Config) { c.CoastingMaxMisses = 1; c.TentativeMaxMisses = 2 }},
		{"negative suppression radius", func(c *Config) { c.SpawnSuppressionRadius = -0.5 }},
		{"suppression overlap above one", func(c *Config) { c.SpawnSuppressionOverlap = 1.5 }},
		{"zero process noise", func(c *Config) { c.ProcessNoiseAccel = 0 }},
		{"zero measurement noise", func(c *Config) { c.MeasurementNoise = 0 }},
		{"extent smoothing of one", func(c *Config) { c.ExtentSmoothing = 1.0 }},
		{"confidence above one", func(c *Config) { c.ConfidenceThreshold = 1.1 }},
		{"negative duplicate radius", func(c *Config) { c.DuplicateRadius = -1 }},
		{"negative horizon", func(c *Config) { c.ProjectionHorizon = -1 }},
		{"horizon without step", func(c *Config) { c.ProjectionHorizon = 2; c.ProjectionStep = 0 }},
		{"negative padding", func(c *Config) { c.FootprintPadding = -0.1 }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tracker.yaml")

	content := []byte(`
gating_distance: 4.5
confirm_hits: 2
projection_horizon: 3.0
`)
	require.NoError(t, os.WriteFile(path, content, 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 4.5, cfg.GatingDistance)
	assert.Equal(t, 2, cfg.ConfirmHits)
	assert.Equal(t, 3.0, cfg.ProjectionHorizon)

	// omitted keys keep their defaults
	def := DefaultConfig()
	assert.Equal(t, def.MeasurementNoise, cfg.MeasurementNoise)
	assert.Equal(t, def.CoastingMaxMisses, cfg.CoastingMaxMisses)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadConfigMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("gating_distance: [oops"), 0o644))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestLoadConfigInvalidValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "invalid.yaml")
	require.NoError(t, os.WriteFile(path, []byte("gating_distance: -2"), 0o644))

	_, err := LoadConfig(path)
	assert.ErrorContains(t, err, "gating_distance")
}
