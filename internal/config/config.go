package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server  ServerConfig
	DB      DBConfig
	JWT     JWTConfig
	S3      S3Config
	Log     LogConfig
	CORS    CORSConfig
	Email   EmailConfig
	Session SessionConfig
	Export  ExportConfig
}

// EmailConfig holds email delivery settings.
type EmailConfig struct {
	Provider    string `mapstructure:"provider"`
	Region      string `mapstructure:"region"`
	FromAddress string `mapstructure:"from_address"`
	FromName    string `mapstructure:"from_name"`
}

// SessionConfig holds live session transport settings.
type SessionConfig struct {
	ReadLimitBytes   int64         `mapstructure:"read_limit_bytes"`
	WriteTimeout     time.Duration `mapstructure:"write_timeout"`
	PingInterval     time.Duration `mapstructure:"ping_interval"`
	AnalyserBands    int           `mapstructure:"analyser_bands"`
	AnalyserInterval time.Duration `mapstructure:"analyser_interval"`
}

// ExportConfig holds quote export settings.
type ExportConfig struct {
	KeyPrefix string `mapstructure:"key_prefix"`
	SheetName string `mapstructure:"sheet_name"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
}

// DBConfig holds PostgreSQL connection settings.
type DBConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxOpen  int    `mapstructure:"max_open"`
	MaxIdle  int    `mapstructure:"max_idle"`
}

// DSN returns the PostgreSQL connection string.
func (d *DBConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// JWTConfig holds JWT signing and expiry settings.
type JWTConfig struct {
	Secret            string        `mapstructure:"secret"`
	AccessTokenExpiry time.Duration `mapstructure:"access_expiry"`
	Issuer            string        `mapstructure:"issuer"`
}

// S3Config holds AWS S3 settings.
type S3Config struct {
	Region        string `mapstructure:"region"`
	Bucket        string `mapstructure:"bucket"`
	Endpoint      string `mapstructure:"endpoint"`
	AccessKey     string `mapstructure:"access_key"`
	SecretKey     string `mapstructure:"secret_key"`
	PresignExpiry int64  `mapstructure:"presign_expiry"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from environment variables with the ORCAVOX_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("ORCAVOX")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15s")
	v.SetDefault("server.environment", "development")

	// DB defaults
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "orcavox")
	v.SetDefault("db.password", "orcavox_secret")
	v.SetDefault("db.name", "orcavox_db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open", 25)
	v.SetDefault("db.max_idle", 10)

	// JWT defaults
	v.SetDefault("jwt.secret", "change-me-in-production")
	v.SetDefault("jwt.access_expiry", "15m")
	v.SetDefault("jwt.issuer", "orcavox")

	// S3 defaults
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.bucket", "orcavox-exports")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.presign_expiry", 3600)

	// Log defaults
	v.SetDefault("log.level", "debug")
	v.SetDefault("log.format", "console")

	// CORS defaults (localhost origins for development)
	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000")

	// Email defaults
	v.SetDefault("email.provider", "noop")
	v.SetDefault("email.region", "us-east-1")
	v.SetDefault("email.from_address", "orcamentos@orcavox.com")
	v.SetDefault("email.from_name", "OrcaVox")

	// Session defaults
	v.SetDefault("session.read_limit_bytes", 1<<20)
	v.SetDefault("session.write_timeout", "10s")
	v.SetDefault("session.ping_interval", "30s")
	v.SetDefault("session.analyser_bands", 64)
	v.SetDefault("session.analyser_interval", "50ms")

	// Export defaults
	v.SetDefault("export.key_prefix", "quotes")
	v.SetDefault("export.sheet_name", "Orçamento")

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":               "ORCAVOX_SERVER_PORT",
		"server.read_timeout":       "ORCAVOX_SERVER_READ_TIMEOUT",
		"server.write_timeout":      "ORCAVOX_SERVER_WRITE_TIMEOUT",
		"server.environment":        "ORCAVOX_SERVER_ENVIRONMENT",
		"db.host":                   "ORCAVOX_DB_HOST",
		"db.port":                   "ORCAVOX_DB_PORT",
		"db.user":                   "ORCAVOX_DB_USER",
		"db.password":               "ORCAVOX_DB_PASSWORD",
		"db.name":                   "ORCAVOX_DB_NAME",
		"db.sslmode":                "ORCAVOX_DB_SSLMODE",
		"db.max_open":               "ORCAVOX_DB_MAX_OPEN",
		"db.max_idle":               "ORCAVOX_DB_MAX_IDLE",
		"jwt.secret":                "ORCAVOX_JWT_SECRET",
		"jwt.access_expiry":         "ORCAVOX_JWT_ACCESS_EXPIRY",
		"jwt.issuer":                "ORCAVOX_JWT_ISSUER",
		"s3.region":                 "ORCAVOX_S3_REGION",
		"s3.bucket":                 "ORCAVOX_S3_BUCKET",
		"s3.endpoint":               "ORCAVOX_S3_ENDPOINT",
		"s3.access_key":             "ORCAVOX_S3_ACCESS_KEY",
		"s3.secret_key":             "ORCAVOX_S3_SECRET_KEY",
		"s3.presign_expiry":         "ORCAVOX_S3_PRESIGN_EXPIRY",
		"log.level":                 "ORCAVOX_LOG_LEVEL",
		"log.format":                "ORCAVOX_LOG_FORMAT",
		"cors.allowed_origins":      "ORCAVOX_CORS_ALLOWED_ORIGINS",
		"email.provider":            "ORCAVOX_EMAIL_PROVIDER",
		"email.region":              "ORCAVOX_EMAIL_REGION",
		"email.from_address":        "ORCAVOX_EMAIL_FROM_ADDRESS",
		"email.from_name":           "ORCAVOX_EMAIL_FROM_NAME",
		"session.read_limit_bytes":  "ORCAVOX_SESSION_READ_LIMIT_BYTES",
		"session.write_timeout":     "ORCAVOX_SESSION_WRITE_TIMEOUT",
		"session.ping_interval":     "ORCAVOX_SESSION_PING_INTERVAL",
		"session.analyser_bands":    "ORCAVOX_SESSION_ANALYSER_BANDS",
		"session.analyser_interval": "ORCAVOX_SESSION_ANALYSER_INTERVAL",
		"export.key_prefix":         "ORCAVOX_EXPORT_KEY_PREFIX",
		"export.sheet_name":         "ORCAVOX_EXPORT_SHEET_NAME",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Railway/Heroku/Render set a PORT env var. Use it if ORCAVOX_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("ORCAVOX_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
	}
	cfg.DB = DBConfig{
		Host:     v.GetString("db.host"),
		Port:     v.GetInt("db.port"),
		User:     v.GetString("db.user"),
		Password: v.GetString("db.password"),
		Name:     v.GetString("db.name"),
		SSLMode:  v.GetString("db.sslmode"),
		MaxOpen:  v.GetInt("db.max_open"),
		MaxIdle:  v.GetInt("db.max_idle"),
	}
	cfg.JWT = JWTConfig{
		Secret:            v.GetString("jwt.secret"),
		AccessTokenExpiry: v.GetDuration("jwt.access_expiry"),
		Issuer:            v.GetString("jwt.issuer"),
	}
	cfg.S3 = S3Config{
		Region:        v.GetString("s3.region"),
		Bucket:        v.GetString("s3.bucket"),
		Endpoint:      v.GetString("s3.endpoint"),
		AccessKey:     v.GetString("s3.access_key"),
		SecretKey:     v.GetString("s3.secret_key"),
		PresignExpiry: v.GetInt64("s3.presign_expiry"),
	}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}
	// Parse CORS allowed origins from comma-separated string
	var corsOrigins []string
	for _, o := range strings.Split(v.GetString("cors.allowed_origins"), ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			corsOrigins = append(corsOrigins, o)
		}
	}
	cfg.CORS = CORSConfig{
		AllowedOrigins: corsOrigins,
	}

	cfg.Email = EmailConfig{
		Provider:    v.GetString("email.provider"),
		Region:      v.GetString("email.region"),
		FromAddress: v.GetString("email.from_address"),
		FromName:    v.GetString("email.from_name"),
	}

	cfg.Session = SessionConfig{
		ReadLimitBytes:   v.GetInt64("session.read_limit_bytes"),
		WriteTimeout:     v.GetDuration("session.write_timeout"),
		PingInterval:     v.GetDuration("session.ping_interval"),
		AnalyserBands:    v.GetInt("session.analyser_bands"),
		AnalyserInterval: v.GetDuration("session.analyser_interval"),
	}

	cfg.Export = ExportConfig{
		KeyPrefix: v.GetString("export.key_prefix"),
		SheetName: v.GetString("export.sheet_name"),
	}

	return cfg, nil
}
