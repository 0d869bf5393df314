package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("SOURCES_DIR", t.TempDir()) // no source files

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "TN", cfg.Region.State)
	require.Len(t, cfg.Region.Hubs, 2)
	assert.Equal(t, "nashville", cfg.Region.Hubs[0].ID)
	assert.Equal(t, "mt_juliet", cfg.Region.Hubs[1].ID)
	assert.Equal(t, 30.0, cfg.Region.DriveTimeCutoff)
	assert.Equal(t, "8080", cfg.API.Port)
	assert.False(t, cfg.Flags.UseLegacySchema)
	assert.True(t, cfg.Flags.ScoringEnabled)
	assert.Empty(t, cfg.Sources)
}

func TestLoadFlags(t *testing.T) {
	t.Setenv("SOURCES_DIR", t.TempDir())
	t.Setenv("USE_LEGACY_SCHEMA", "true")
	t.Setenv("SCORING_ENABLED", "false")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.Flags.UseLegacySchema)
	assert.False(t, cfg.Flags.ScoringEnabled)
}

func TestLoadSourceConfigs(t *testing.T) {
	dir := t.TempDir()
	src := `
id: tn_ledger
name: TN Ledger
handler: html
county: Davidson
rate_limit_ms: 2000
endpoints:
  listings: https://example.com/foreclosures
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tn_ledger.yaml"), []byte(src), 0644))
	t.Setenv("SOURCES_DIR", dir)

	cfg, err := Load()
	require.NoError(t, err)
	require.Contains(t, cfg.Sources, "tn_ledger")

	s := cfg.Sources["tn_ledger"]
	assert.Equal(t, "html", s.Handler)
	assert.Equal(t, "Davidson", s.County)
	assert.Equal(t, 2000, s.RateLimitMS)
	assert.Equal(t, "https://example.com/foreclosures", s.Endpoints["listings"])
}

func TestLoadSourceConfigMissingID(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.yaml"), []byte("name: nameless"), 0644))
	t.Setenv("SOURCES_DIR", dir)

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no id")
}

func TestLoadInvalidInterval(t *testing.T) {
	t.Setenv("SOURCES_DIR", t.TempDir())
	t.Setenv("SCRAPE_INTERVAL", "not-a-duration")

	_, err := Load()
	require.Error(t, err)
}
