// Package config loads the portal settings from the environment. A .env file,
// when present, is loaded by main before Load is called.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port string

	// DBDriver is "mongo" or "memory". The memory store keeps everything in
	// process and is meant for local runs and demos.
	DBDriver          string
	MongoURI          string
	MongoDB           string
	DBTimeout         time.Duration
	MongoTransactions bool

	JWTSecret    string
	JWTExpiresIn time.Duration
	// CookieSecure marks the session cookie Secure; set it behind HTTPS.
	CookieSecure bool

	UploadDir      string
	StorageBackend string
	GCSBucket      string
	GCSPrefix      string

	// GCSCredentialsFile points at a service account key. Empty uses
	// application default credentials.
	GCSCredentialsFile string

	StrictStatusTransitions bool
	PerpetratorNormalize    bool
	AdminCanViewAll         bool

	ReconcileSchedule string
	CORSOrigins       []string

	SMTP SMTPConfig

	LogLevel  string
	LogFormat string
}

type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

func (s SMTPConfig) Enabled() bool {
	return s.Host != ""
}

func (s SMTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// Load reads the configuration and validates it.
func Load() (*Config, error) {
	cfg := &Config{
		Port:               getEnvDefault("PORT", "5000"),
		DBDriver:           getEnvDefault("DB_DRIVER", "mongo"),
		MongoURI:           getEnvDefault("MONGODB_URI", "mongodb://127.0.0.1:27017"),
		MongoDB:            getEnvDefault("MONGODB_DB", "harassment_portal"),
		JWTSecret:          os.Getenv("JWT_SECRET"),
		UploadDir:          getEnvDefault("UPLOAD_DIR", "uploads"),
		StorageBackend:     getEnvDefault("STORAGE_BACKEND", "local"),
		GCSBucket:          os.Getenv("GCS_BUCKET"),
		GCSPrefix:          os.Getenv("GCS_PREFIX"),
		GCSCredentialsFile: os.Getenv("GCS_CREDENTIALS_FILE"),
		ReconcileSchedule:  getEnvDefault("RECONCILE_SCHEDULE", "@every 10m"),
		CORSOrigins:        splitList(getEnvDefault("CORS_ORIGINS", "http://localhost:3000")),
		LogLevel:           getEnvDefault("LOG_LEVEL", "info"),
		LogFormat:          getEnvDefault("LOG_FORMAT", "json"),
	}

	var err error
	if cfg.DBTimeout, err = getEnvDuration("DB_TIMEOUT", 5*time.Second); err != nil {
		return nil, fmt.Errorf("DB_TIMEOUT: %w", err)
	}
	if cfg.JWTExpiresIn, err = getEnvDuration("JWT_EXPIRES_IN", 30*24*time.Hour); err != nil {
		return nil, fmt.Errorf("JWT_EXPIRES_IN: %w", err)
	}
	if cfg.CookieSecure, err = getEnvBool("COOKIE_SECURE", false); err != nil {
		return nil, fmt.Errorf("COOKIE_SECURE: %w", err)
	}
	if cfg.MongoTransactions, err = getEnvBool("MONGO_TRANSACTIONS", false); err != nil {
		return nil, fmt.Errorf("MONGO_TRANSACTIONS: %w", err)
	}
	if cfg.StrictStatusTransitions, err = getEnvBool("STRICT_STATUS_TRANSITIONS", true); err != nil {
		return nil, fmt.Errorf("STRICT_STATUS_TRANSITIONS: %w", err)
	}
	if cfg.PerpetratorNormalize, err = getEnvBool("PERPETRATOR_NORMALIZE", false); err != nil {
		return nil, fmt.Errorf("PERPETRATOR_NORMALIZE: %w", err)
	}
	if cfg.AdminCanViewAll, err = getEnvBool("ADMIN_CAN_VIEW_ALL", true); err != nil {
		return nil, fmt.Errorf("ADMIN_CAN_VIEW_ALL: %w", err)
	}

	cfg.SMTP = SMTPConfig{
		Host:     os.Getenv("SMTP_HOST"),
		User:     os.Getenv("SMTP_USER"),
		Password: os.Getenv("SMTP_PASS"),
		From:     os.Getenv("SMTP_FROM"),
	}
	if cfg.SMTP.Port, err = getEnvInt("SMTP_PORT", 587); err != nil {
		return nil, fmt.Errorf("SMTP_PORT: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.DBDriver {
	case "mongo", "memory":
	default:
		return fmt.Errorf("DB_DRIVER: unsupported driver %q (mongo, memory)", c.DBDriver)
	}
	if c.DBDriver == "mongo" && c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	switch c.StorageBackend {
	case "local":
	case "gcs":
		if c.GCSBucket == "" {
			return fmt.Errorf("GCS_BUCKET is required when STORAGE_BACKEND=gcs")
		}
	default:
		return fmt.Errorf("STORAGE_BACKEND: unsupported backend %q (local, gcs)", c.StorageBackend)
	}
	if c.LogFormat != "json" && c.LogFormat != "console" {
		return fmt.Errorf("LOG_FORMAT: unsupported format %q (json, console)", c.LogFormat)
	}
	return nil
}

func getEnvDefault(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	return strconv.Atoi(v)
}

func getEnvBool(key string, def bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	return strconv.ParseBool(v)
}

func getEnvDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	return time.ParseDuration(v)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
