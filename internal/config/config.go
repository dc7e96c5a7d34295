package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	"gstreco/internal/reco"
)

const (
	envPrefix        = "GSTRECO"
	defaultJWTSecret = "change-me-in-production"
)

// Config holds all application configuration.
type Config struct {
	Server ServerConfig
	DB     DBConfig
	JWT    JWTConfig
	S3     S3Config
	Log    LogConfig
	CORS   CORSConfig
	Email  EmailConfig
	Reco   RecoConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port           string        `mapstructure:"port"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	Environment    string        `mapstructure:"environment"`
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

// JWTConfig holds bearer-token verification settings.
type JWTConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Secret  string `mapstructure:"secret"`
	Issuer  string `mapstructure:"issuer"`
}

// S3Config holds report storage settings.
type S3Config struct {
	Region        string `mapstructure:"region"`
	Bucket        string `mapstructure:"bucket"`
	Endpoint      string `mapstructure:"endpoint"`
	AccessKey     string `mapstructure:"access_key"`
	SecretKey     string `mapstructure:"secret_key"`
	MaxFileSizeMB int64  `mapstructure:"max_file_size_mb"`
	PresignExpiry int64  `mapstructure:"presign_expiry"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// EmailConfig holds email delivery settings.
type EmailConfig struct {
	Provider    string `mapstructure:"provider"`
	Region      string `mapstructure:"region"`
	FromAddress string `mapstructure:"from_address"`
	FromName    string `mapstructure:"from_name"`
	FrontendURL string `mapstructure:"frontend_url"`
}

// RecoConfig holds the matcher's tunable thresholds.
type RecoConfig struct {
	AmountTolerance       string  `mapstructure:"amount_tolerance"`
	ConsolidatedTolerance string  `mapstructure:"consolidated_tolerance"`
	TypoSimilarity        float64 `mapstructure:"typo_similarity"`
	FuzzyMinLength        int     `mapstructure:"fuzzy_min_length"`
}

// Thresholds converts the configured values for the engine. Unparseable
// tolerances fall back to the engine defaults.
func (r *RecoConfig) Thresholds() reco.Thresholds {
	th := reco.Thresholds{
		TypoSimilarity: r.TypoSimilarity,
		FuzzyMinLength: r.FuzzyMinLength,
	}
	if d, err := decimal.NewFromString(r.AmountTolerance); err == nil {
		th.AmountTolerance = d
	}
	if d, err := decimal.NewFromString(r.ConsolidatedTolerance); err == nil {
		th.ConsolidatedTolerance = d
	}
	return th
}

// Load reads configuration from environment variables with the GSTRECO_
// prefix. A .env file in the working directory is loaded first when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := map[string]interface{}{
		"server.port":            ":8080",
		"server.read_timeout":    "30s",
		"server.write_timeout":   "60s",
		"server.request_timeout": "120s",
		"server.environment":     "development",

		"db.host":     "localhost",
		"db.port":     5432,
		"db.user":     "gstreco",
		"db.password": "gstreco_secret",
		"db.name":     "gstreco_db",
		"db.sslmode":  "disable",
		"db.max_open": 10,
		"db.max_idle": 5,

		"jwt.enabled": false,
		"jwt.secret":  defaultJWTSecret,
		"jwt.issuer":  "gstreco",

		"s3.region":           "ap-south-1",
		"s3.bucket":           "gstreco-reports",
		"s3.endpoint":         "",
		"s3.access_key":       "",
		"s3.secret_key":       "",
		"s3.max_file_size_mb": 25,
		"s3.presign_expiry":   3600,

		"log.level":  "info",
		"log.format": "console",

		"cors.allowed_origins": "http://localhost:3000,http://127.0.0.1:3000",

		"email.provider":     "noop",
		"email.region":       "ap-south-1",
		"email.from_address": "noreply@gstreco.local",
		"email.from_name":    "GST Reco",
		"email.frontend_url": "http://localhost:3000",

		"reco.amount_tolerance":       "2",
		"reco.consolidated_tolerance": "5",
		"reco.typo_similarity":        0.85,
		"reco.fuzzy_min_length":       3,
	}
	for key, val := range defaults {
		v.SetDefault(key, val)
		// Nested keys are not picked up by AutomaticEnv alone.
		_ = v.BindEnv(key, envName(key))
	}

	cfg := &Config{}

	// Hosting platforms set PORT. Use it unless the prefixed variable is set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv(envName("server.port")) == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:           serverPort,
		ReadTimeout:    v.GetDuration("server.read_timeout"),
		WriteTimeout:   v.GetDuration("server.write_timeout"),
		RequestTimeout: v.GetDuration("server.request_timeout"),
		Environment:    v.GetString("server.environment"),
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
		Enabled: v.GetBool("jwt.enabled"),
		Secret:  v.GetString("jwt.secret"),
		Issuer:  v.GetString("jwt.issuer"),
	}
	cfg.S3 = S3Config{
		Region:        v.GetString("s3.region"),
		Bucket:        v.GetString("s3.bucket"),
		Endpoint:      v.GetString("s3.endpoint"),
		AccessKey:     v.GetString("s3.access_key"),
		SecretKey:     v.GetString("s3.secret_key"),
		MaxFileSizeMB: v.GetInt64("s3.max_file_size_mb"),
		PresignExpiry: v.GetInt64("s3.presign_expiry"),
	}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}
	cfg.CORS = CORSConfig{
		AllowedOrigins: splitList(v.GetString("cors.allowed_origins")),
	}
	cfg.Email = EmailConfig{
		Provider:    v.GetString("email.provider"),
		Region:      v.GetString("email.region"),
		FromAddress: v.GetString("email.from_address"),
		FromName:    v.GetString("email.from_name"),
		FrontendURL: v.GetString("email.frontend_url"),
	}
	cfg.Reco = RecoConfig{
		AmountTolerance:       v.GetString("reco.amount_tolerance"),
		ConsolidatedTolerance: v.GetString("reco.consolidated_tolerance"),
		TypoSimilarity:        v.GetFloat64("reco.typo_similarity"),
		FuzzyMinLength:        v.GetInt("reco.fuzzy_min_length"),
	}

	if cfg.JWT.Enabled && cfg.Server.Environment == "production" && cfg.JWT.Secret == defaultJWTSecret {
		return nil, fmt.Errorf("config: jwt.secret must be set in production")
	}
	return cfg, nil
}

func envName(key string) string {
	return envPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
