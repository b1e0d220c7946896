package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"dojohub/internal/logging"
)

// DefaultConfigPaths are searched in order when CONFIG_PATH is unset.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/dojohub/config.yaml",
}

const ConfigPathEnvVar = "CONFIG_PATH"

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:        8080,
			Environment: "development",
			CORSOrigins: []string{"*"},
			BaseURL:     "http://localhost:8080",
			EnableDocs:  true,
		},
		Database: DatabaseConfig{
			MaxConns:    20,
			AutoMigrate: true,
		},
		Redis: RedisConfig{
			Addr: "localhost:6379",
		},
		Minio: MinioConfig{
			Endpoint:  "localhost:9000",
			AccessKey: "minioadmin",
			SecretKey: "minioadmin",
			Bucket:    "dojohub",
		},
		JWT: JWTConfig{
			AccessTTL:  15 * time.Minute,
			RefreshTTL: 7 * 24 * time.Hour,
		},
		Cron: CronConfig{
			Enabled:             true,
			SuspensionInterval:  1 * time.Hour,
			MaterializeInterval: 6 * time.Hour,
			TrialInterval:       1 * time.Hour,
			DashboardInterval:   5 * time.Minute,
			HorizonDays:         28,
		},
		Billing: BillingConfig{
			GraceDays:       7,
			DefaultCurrency: "CLP",
			TrialDays:       14,
		},
		Attendance: AttendanceConfig{
			OpenBefore:     30 * time.Minute,
			CloseAfterEnd:  15 * time.Minute,
			QRSize:         256,
			LookbackWindow: 30 * 24 * time.Hour,
		},
		MercadoPago: MercadoPagoConfig{
			BaseURL: "https://api.mercadopago.com",
		},
		Flow: FlowConfig{
			BaseURL: "https://www.flow.cl/api",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load builds the configuration from defaults, an optional YAML file and the
// environment, in that order of precedence. A .env file is read first when
// present.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logging.Debug().Msg("no .env file found")
	}

	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if origins, ok := k.Get("server.cors_origins").(string); ok {
		if err := k.Set("server.cors_origins", splitCSV(origins)); err != nil {
			return nil, fmt.Errorf("failed to parse cors origins: %w", err)
		}
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func findConfigFile() string {
	if path := os.Getenv(ConfigPathEnvVar); path != "" {
		return path
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

var envMappings = map[string]string{
	"port":         "server.port",
	"app_env":      "server.environment",
	"environment":  "server.environment",
	"cors_origins": "server.cors_origins",
	"base_url":     "server.base_url",
	"enable_docs":  "server.enable_docs",

	"database_url":          "database.url",
	"database_max_conns":    "database.max_conns",
	"database_auto_migrate": "database.auto_migrate",

	"redis_addr":     "redis.addr",
	"redis_password": "redis.password",
	"redis_db":       "redis.db",

	"minio_endpoint":   "minio.endpoint",
	"minio_access_key": "minio.access_key",
	"minio_secret_key": "minio.secret_key",
	"minio_use_ssl":    "minio.use_ssl",
	"minio_bucket":     "minio.bucket",

	"jwt_secret":      "jwt.secret",
	"jwt_access_ttl":  "jwt.access_ttl",
	"jwt_refresh_ttl": "jwt.refresh_ttl",

	"cron_secret":               "cron.secret",
	"cron_enabled":              "cron.enabled",
	"cron_suspension_interval":  "cron.suspension_interval",
	"cron_materialize_interval": "cron.materialize_interval",
	"cron_trial_interval":       "cron.trial_interval",
	"cron_dashboard_interval":   "cron.dashboard_interval",
	"cron_horizon_days":         "cron.horizon_days",

	"billing_grace_days":       "billing.grace_days",
	"billing_default_currency": "billing.default_currency",
	"billing_trial_days":       "billing.trial_days",

	"attendance_open_before":     "attendance.open_before",
	"attendance_close_after_end": "attendance.close_after_end",
	"attendance_qr_size":         "attendance.qr_size",
	"attendance_lookback_window": "attendance.lookback_window",

	"mercadopago_access_token":     "mercadopago.access_token",
	"mercadopago_webhook_secret":   "mercadopago.webhook_secret",
	"mercadopago_base_url":         "mercadopago.base_url",
	"mercadopago_notification_url": "mercadopago.notification_url",
	"mercadopago_success_url":      "mercadopago.success_url",

	"flow_api_key":          "flow.api_key",
	"flow_secret_key":       "flow.secret_key",
	"flow_base_url":         "flow.base_url",
	"flow_confirmation_url": "flow.confirmation_url",
	"flow_return_url":       "flow.return_url",

	"log_level":  "logging.level",
	"log_format": "logging.format",
}

// envTransformFunc maps known environment variables to koanf paths and drops
// everything else.
func envTransformFunc(key string) string {
	if mapped, ok := envMappings[strings.ToLower(key)]; ok {
		return mapped
	}
	return ""
}
