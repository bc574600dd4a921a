package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLoadDefaults(t *testing.T) {
	// Change to temp dir so no config.yaml is found
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "outreach.db", cfg.Store.Path)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "https://llmmsi.a.pinggy.link/pc-house-automation", cfg.Compare.BaseURL)
	assert.Equal(t, "http://llmmsi.a.pinggy.link/house-screenscraper/api", cfg.Scraper.BaseURL)
	assert.Equal(t, 2, cfg.Scraper.PollIntervalSecs)
	assert.Equal(t, 300, cfg.Scraper.PollTimeoutSecs)
	assert.Equal(t, "http://llmmsi.a.pinggy.link/marketing", cfg.Marketing.BaseURL)
	assert.Equal(t, "per_record", cfg.Campaign.Mode)
	assert.Equal(t, "id_name", cfg.Campaign.GroupBy)
	assert.Zero(t, cfg.Campaign.SendsPerSecond)
}

func TestLoadFromYAML(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	yaml := `
store:
  driver: postgres
  database_url: postgres://localhost/outreach
log:
  level: debug
  format: console
server:
  port: 9090
campaign:
  mode: per_owner
  sends_per_second: 2.5
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "postgres://localhost/outreach", cfg.Store.DatabaseURL)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "per_owner", cfg.Campaign.Mode)
	assert.InDelta(t, 2.5, cfg.Campaign.SendsPerSecond, 0.001)
	// Defaults still apply for unset values
	assert.Equal(t, "id_name", cfg.Campaign.GroupBy)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	yaml := `
store:
  driver: sqlite
log:
  level: debug
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	t.Setenv("OUTREACH_STORE_DRIVER", "postgres")
	t.Setenv("OUTREACH_LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)

	// Env overrides file
	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadEnvOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	t.Setenv("OUTREACH_SERVER_PORT", "3000")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 3000, cfg.Server.Port)
}

func TestInitLoggerConsole(t *testing.T) {
	err := InitLogger(LogConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerJSON(t *testing.T) {
	err := InitLogger(LogConfig{Level: "info", Format: "json"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerInvalidLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "invalid", Format: "json"})
	assert.Error(t, err)
}

// validDefaults returns a Config with all defaults populated for validation tests.
func validDefaults() *Config {
	cfg := &Config{}
	cfg.Store.Driver = "sqlite"
	cfg.Store.Path = "outreach.db"
	cfg.Compare.BaseURL = "https://compare.example"
	cfg.Scraper.BaseURL = "https://scraper.example"
	cfg.Marketing.BaseURL = "https://marketing.example"
	cfg.Campaign.Mode = "per_record"
	cfg.Campaign.GroupBy = "id_name"
	cfg.Server.Port = 8080
	return cfg
}

func TestValidateServe_ValidPort(t *testing.T) {
	cfg := validDefaults()
	cfg.Server.Port = 9090

	assert.NoError(t, cfg.Validate("serve"))
}

func TestValidateServe_InvalidPort(t *testing.T) {
	cfg := validDefaults()
	cfg.Server.Port = 0

	err := cfg.Validate("serve")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "server.port must be > 0")
}

func TestValidateNotify_MissingBaseURL(t *testing.T) {
	cfg := validDefaults()
	cfg.Marketing.BaseURL = ""

	err := cfg.Validate("notify")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "marketing.base_url is required")
}

func TestValidateStore_PostgresNeedsURL(t *testing.T) {
	cfg := validDefaults()
	cfg.Store.Driver = "postgres"
	cfg.Store.DatabaseURL = ""

	err := cfg.Validate("run")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "store.database_url is required")

	cfg.Store.DatabaseURL = "postgres://localhost/outreach"
	assert.NoError(t, cfg.Validate("run"))
}

func TestValidateStore_UnknownDriver(t *testing.T) {
	cfg := validDefaults()
	cfg.Store.Driver = "mysql"

	err := cfg.Validate("run")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "store.driver must be sqlite or postgres")
}

func TestValidateCampaignBounds(t *testing.T) {
	cfg := validDefaults()

	cfg.Campaign.Mode = "broadcast"
	err := cfg.Validate("run")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "campaign.mode")

	cfg.Campaign.Mode = "per_owner"
	cfg.Campaign.GroupBy = "address"
	err = cfg.Validate("run")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "campaign.group_by")

	cfg.Campaign.GroupBy = "id"
	cfg.Campaign.SendsPerSecond = -1
	err = cfg.Validate("run")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "sends_per_second")

	cfg.Campaign.SendsPerSecond = 0.5
	assert.NoError(t, cfg.Validate("run"))
}

func TestValidateUnknownMode(t *testing.T) {
	cfg := validDefaults()
	err := cfg.Validate("unknown")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unknown mode")
}
