package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Config is the full application configuration.
type Config struct {
	Server      ServerConfig      `koanf:"server"`
	Database    DatabaseConfig    `koanf:"database"`
	Redis       RedisConfig       `koanf:"redis"`
	Minio       MinioConfig       `koanf:"minio"`
	JWT         JWTConfig         `koanf:"jwt"`
	Cron        CronConfig        `koanf:"cron"`
	Billing     BillingConfig     `koanf:"billing"`
	Attendance  AttendanceConfig  `koanf:"attendance"`
	MercadoPago MercadoPagoConfig `koanf:"mercadopago"`
	Flow        FlowConfig        `koanf:"flow"`
	Logging     LoggingConfig     `koanf:"logging"`
}

type ServerConfig struct {
	Port        int      `koanf:"port"`
	Environment string   `koanf:"environment"`
	CORSOrigins []string `koanf:"cors_origins"`
	BaseURL     string   `koanf:"base_url"`
	EnableDocs  bool     `koanf:"enable_docs"`
}

type DatabaseConfig struct {
	URL         string `koanf:"url"`
	MaxConns    int32  `koanf:"max_conns"`
	AutoMigrate bool   `koanf:"auto_migrate"`
}

type RedisConfig struct {
	Addr     string `koanf:"addr"`
	Password string `koanf:"password"`
	DB       int    `koanf:"db"`
}

type MinioConfig struct {
	Endpoint  string `koanf:"endpoint"`
	AccessKey string `koanf:"access_key"`
	SecretKey string `koanf:"secret_key"`
	UseSSL    bool   `koanf:"use_ssl"`
	Bucket    string `koanf:"bucket"`
}

type JWTConfig struct {
	Secret     string        `koanf:"secret"`
	AccessTTL  time.Duration `koanf:"access_ttl"`
	RefreshTTL time.Duration `koanf:"refresh_ttl"`
}

// CronConfig controls the in-process scheduler and the cron HTTP trigger.
type CronConfig struct {
	Secret              string        `koanf:"secret"`
	Enabled             bool          `koanf:"enabled"`
	SuspensionInterval  time.Duration `koanf:"suspension_interval"`
	MaterializeInterval time.Duration `koanf:"materialize_interval"`
	TrialInterval       time.Duration `koanf:"trial_interval"`
	DashboardInterval   time.Duration `koanf:"dashboard_interval"`
	HorizonDays         int           `koanf:"horizon_days"`
}

type BillingConfig struct {
	GraceDays       int    `koanf:"grace_days"`
	DefaultCurrency string `koanf:"default_currency"`
	TrialDays       int    `koanf:"trial_days"`
}

// AttendanceConfig bounds the check-in window around a class instance.
type AttendanceConfig struct {
	OpenBefore     time.Duration `koanf:"open_before"`
	CloseAfterEnd  time.Duration `koanf:"close_after_end"`
	QRSize         int           `koanf:"qr_size"`
	LookbackWindow time.Duration `koanf:"lookback_window"`
}

type MercadoPagoConfig struct {
	AccessToken     string `koanf:"access_token"`
	WebhookSecret   string `koanf:"webhook_secret"`
	BaseURL         string `koanf:"base_url"`
	NotificationURL string `koanf:"notification_url"`
	SuccessURL      string `koanf:"success_url"`
}

type FlowConfig struct {
	APIKey          string `koanf:"api_key"`
	SecretKey       string `koanf:"secret_key"`
	BaseURL         string `koanf:"base_url"`
	ConfirmationURL string `koanf:"confirmation_url"`
	ReturnURL       string `koanf:"return_url"`
}

type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// IsDevelopment reports whether the server runs in a local environment.
func (c *Config) IsDevelopment() bool {
	switch strings.ToLower(c.Server.Environment) {
	case "dev", "development", "local", "test":
		return true
	}
	return false
}

// GracePeriod is the billing grace period as a duration.
func (b BillingConfig) GracePeriod() time.Duration {
	return time.Duration(b.GraceDays) * 24 * time.Hour
}

// Validate checks the configuration for missing or unsafe values.
func (c *Config) Validate() error {
	var errs []error

	if c.Database.URL == "" {
		errs = append(errs, errors.New("database.url is required"))
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d out of range", c.Server.Port))
	}
	if !c.IsDevelopment() {
		if len(c.JWT.Secret) < 32 {
			errs = append(errs, errors.New("jwt.secret must be at least 32 characters outside development"))
		}
		if c.Cron.Secret == "" {
			errs = append(errs, errors.New("cron.secret is required outside development"))
		}
	}
	if c.JWT.AccessTTL <= 0 {
		errs = append(errs, errors.New("jwt.access_ttl must be positive"))
	}
	if c.Billing.GraceDays < 0 {
		errs = append(errs, errors.New("billing.grace_days cannot be negative"))
	}
	if c.Billing.TrialDays < 0 {
		errs = append(errs, errors.New("billing.trial_days cannot be negative"))
	}
	if c.Cron.HorizonDays < 1 || c.Cron.HorizonDays > 92 {
		errs = append(errs, fmt.Errorf("cron.horizon_days must be between 1 and 92, got %d", c.Cron.HorizonDays))
	}
	if c.Attendance.OpenBefore < 0 || c.Attendance.CloseAfterEnd < 0 {
		errs = append(errs, errors.New("attendance window offsets cannot be negative"))
	}

	return errors.Join(errs...)
}
