package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/flexprice/docforge/internal/types"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Configuration struct {
	Deployment DeploymentConfig `validate:"required"`
	Server     ServerConfig     `validate:"required"`
	Logging    LoggingConfig    `validate:"required"`
	Postgres   PostgresConfig
	History    HistoryConfig `validate:"required"`
	S3         S3Config
	Cache      CacheConfig
	RateLimit  RateLimitConfig `mapstructure:"rate_limit"`
	Tier       TierConfig
	Render     RenderConfig `validate:"required"`
	Sentry     SentryConfig
	Pyroscope  PyroscopeConfig
}

type DeploymentConfig struct {
	Mode types.RunMode `validate:"required"`
}

type ServerConfig struct {
	Address         string        `validate:"required"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type LoggingConfig struct {
	Level types.LogLevel `validate:"required"`
}

type PostgresConfig struct {
	Host                   string
	Port                   int
	User                   string
	Password               string
	DBName                 string `mapstructure:"dbname"`
	SSLMode                string `mapstructure:"sslmode"`
	MaxOpenConns           int    `mapstructure:"max_open_conns"`
	MaxIdleConns           int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetimeMinutes int    `mapstructure:"conn_max_lifetime_minutes"`
}

// HistoryConfig selects where export history records are kept
type HistoryConfig struct {
	Store        string        `validate:"required,oneof=memory postgres"`
	TrackTimeout time.Duration `mapstructure:"track_timeout"`
	MaxAttempts  uint64        `mapstructure:"max_attempts"`
}

type CacheConfig struct {
	Enabled bool
	TierTTL time.Duration `mapstructure:"tier_ttl"`
}

// RateLimitConfig is applied per caller identifier on document ingestion routes
type RateLimitConfig struct {
	Enabled           bool
	RequestsPerMinute int           `mapstructure:"requests_per_minute" validate:"omitempty,min=1"`
	Burst             int           `validate:"omitempty,min=1"`
	IdleTTL           time.Duration `mapstructure:"idle_ttl"`
}

// TierConfig configures the subscription tier collaborator
type TierConfig struct {
	// Provider is static (premium_users list) or remote (http lookup)
	Provider     string   `validate:"omitempty,oneof=static remote"`
	PremiumUsers []string `mapstructure:"premium_users"`
	RemoteURL    string   `mapstructure:"remote_url" validate:"required_if=Provider remote"`
	Timeout      time.Duration
	RetryMax     int `mapstructure:"retry_max"`
}

type RenderConfig struct {
	WatermarkText   string        `mapstructure:"watermark_text" validate:"required"`
	AttributionText string        `mapstructure:"attribution_text" validate:"required"`
	MaxLogoBytes    int           `mapstructure:"max_logo_bytes" validate:"required,min=1"`
	CaptureScale    float64       `mapstructure:"capture_scale" validate:"required,gt=0"`
	SettleDelay     time.Duration `mapstructure:"settle_delay"`
	Compress        bool
}

type SentryConfig struct {
	Enabled     bool
	DSN         string `validate:"required_if=Enabled true"`
	Environment string
	SampleRate  float64 `mapstructure:"sample_rate"`
}

type PyroscopeConfig struct {
	Enabled         bool
	ServerAddress   string   `mapstructure:"server_address"`
	ApplicationName string   `mapstructure:"application_name"`
	BasicAuthUser   string   `mapstructure:"basic_auth_user"`
	BasicAuthPass   string   `mapstructure:"basic_auth_pass"`
	SampleRate      uint32   `mapstructure:"sample_rate"`
	DisableGCRuns   bool     `mapstructure:"disable_gc_runs"`
	ProfileTypes    []string `mapstructure:"profile_types"`
}

func NewConfig() (*Configuration, error) {
	// a missing .env is not an error, env vars may come from the environment
	_ = godotenv.Load()

	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./internal/config")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/docforge")

	v.SetEnvPrefix("DOCFORGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(
		".", "_",
		"-", "_",
	))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		fmt.Printf("Error reading config file: %v\n", err)
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, err
		}
	} else {
		fmt.Printf("Using config file: %s\n", v.ConfigFileUsed())
	}

	var config Configuration
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	d := GetDefaultConfig()
	v.SetDefault("deployment.mode", d.Deployment.Mode)
	v.SetDefault("server.address", d.Server.Address)
	v.SetDefault("server.shutdown_timeout", d.Server.ShutdownTimeout)
	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("history.store", d.History.Store)
	v.SetDefault("history.track_timeout", d.History.TrackTimeout)
	v.SetDefault("history.max_attempts", d.History.MaxAttempts)
	v.SetDefault("cache.enabled", d.Cache.Enabled)
	v.SetDefault("cache.tier_ttl", d.Cache.TierTTL)
	v.SetDefault("rate_limit.enabled", d.RateLimit.Enabled)
	v.SetDefault("rate_limit.requests_per_minute", d.RateLimit.RequestsPerMinute)
	v.SetDefault("rate_limit.burst", d.RateLimit.Burst)
	v.SetDefault("rate_limit.idle_ttl", d.RateLimit.IdleTTL)
	v.SetDefault("tier.provider", d.Tier.Provider)
	v.SetDefault("tier.timeout", d.Tier.Timeout)
	v.SetDefault("tier.retry_max", d.Tier.RetryMax)
	v.SetDefault("render.watermark_text", d.Render.WatermarkText)
	v.SetDefault("render.attribution_text", d.Render.AttributionText)
	v.SetDefault("render.max_logo_bytes", d.Render.MaxLogoBytes)
	v.SetDefault("render.capture_scale", d.Render.CaptureScale)
	v.SetDefault("render.settle_delay", d.Render.SettleDelay)
	v.SetDefault("render.compress", d.Render.Compress)
}

func (c Configuration) Validate() error {
	validate := validator.New()
	return validate.Struct(c)
}

// GetDefaultConfig returns a default configuration for local development
// This is useful for running scripts or other non-web applications
func GetDefaultConfig() *Configuration {
	return &Configuration{
		Deployment: DeploymentConfig{Mode: types.ModeLocal},
		Server:     ServerConfig{Address: ":8080", ShutdownTimeout: 10 * time.Second},
		Logging:    LoggingConfig{Level: types.LogLevelDebug},
		History:    HistoryConfig{Store: "memory", TrackTimeout: 5 * time.Second, MaxAttempts: 3},
		Cache:      CacheConfig{Enabled: true, TierTTL: 5 * time.Minute},
		RateLimit: RateLimitConfig{
			Enabled:           true,
			RequestsPerMinute: 30,
			Burst:             10,
			IdleTTL:           10 * time.Minute,
		},
		Tier: TierConfig{Provider: "static", Timeout: 3 * time.Second, RetryMax: 2},
		Render: RenderConfig{
			WatermarkText:   "DOCFORGE",
			AttributionText: "Generated with DocForge - docforge.app",
			MaxLogoBytes:    1 << 20,
			CaptureScale:    2,
			SettleDelay:     100 * time.Millisecond,
			Compress:        true,
		},
	}
}

func (c PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"user=%s password=%s dbname=%s host=%s port=%d sslmode=%s",
		c.User,
		c.Password,
		c.DBName,
		c.Host,
		c.Port,
		c.SSLMode,
	)
}

// GetURL is the DSN in URL form, as golang-migrate expects it
func (c PostgresConfig) GetURL() string {
	sslmode := c.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:     "/" + c.DBName,
		RawQuery: "sslmode=" + url.QueryEscape(sslmode),
	}
	return u.String()
}
