package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsAndEnvOverrides(t *testing.T) {
	t.Setenv(ConfigPathEnvVar, "")
	t.Chdir(t.TempDir())

	t.Setenv("DATABASE_URL", "postgres://localhost/dojohub")
	t.Setenv("BILLING_GRACE_DAYS", "10")
	t.Setenv("ATTENDANCE_OPEN_BEFORE", "45m")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres://localhost/dojohub", cfg.Database.URL)
	assert.Equal(t, 10, cfg.Billing.GraceDays)
	assert.Equal(t, "CLP", cfg.Billing.DefaultCurrency)
	assert.Equal(t, 45*time.Minute, cfg.Attendance.OpenBefore)
	assert.Equal(t, 15*time.Minute, cfg.Attendance.CloseAfterEnd)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.CORSOrigins)
}

func TestLoad_YAMLFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
database:
  url: postgres://yaml/dojohub
billing:
  trial_days: 30
`), 0o600))
	t.Setenv(ConfigPathEnvVar, path)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "postgres://yaml/dojohub", cfg.Database.URL)
	assert.Equal(t, 30, cfg.Billing.TrialDays)
}

func TestValidate(t *testing.T) {
	cfg := defaultConfig()
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database.url is required")

	cfg.Database.URL = "postgres://x"
	assert.NoError(t, cfg.Validate())

	cfg.Server.Environment = "production"
	cfg.JWT.Secret = "short"
	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "jwt.secret")
	assert.Contains(t, err.Error(), "cron.secret")

	cfg.JWT.Secret = "0123456789abcdef0123456789abcdef"
	cfg.Cron.Secret = "cron"
	assert.NoError(t, cfg.Validate())

	cfg.Cron.HorizonDays = 120
	assert.Error(t, cfg.Validate())
}

func TestEnvTransformFunc(t *testing.T) {
	assert.Equal(t, "flow.secret_key", envTransformFunc("FLOW_SECRET_KEY"))
	assert.Equal(t, "", envTransformFunc("HOME"))
}

func TestGracePeriod(t *testing.T) {
	assert.Equal(t, 7*24*time.Hour, BillingConfig{GraceDays: 7}.GracePeriod())
}
