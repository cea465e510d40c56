// Package config loads application configuration from .env files and the environment.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const defaultJWTSecret = "your-secret-key-change-this-in-production"

// Config holds application configuration values loaded from .env or environment variables.
type Config struct {
	Port           string        `mapstructure:"PORT"`
	Env            string        `mapstructure:"APP_ENV"`
	GinMode        string        `mapstructure:"GIN_MODE"`
	LogLevel       string        `mapstructure:"LOG_LEVEL"`
	MongoURI       string        `mapstructure:"MONGODB_URI"`
	MongoDatabase  string        `mapstructure:"MONGODB_DATABASE"`
	JWTSecret      string        `mapstructure:"JWT_SECRET"`
	JWTTTL         time.Duration `mapstructure:"JWT_TTL"`
	AllowedOrigins string        `mapstructure:"ALLOWED_ORIGINS"`
	CloudinaryURL  string        `mapstructure:"CLOUDINARY_URL"`
	UploadDir      string        `mapstructure:"UPLOAD_DIR"`
	MaxUploadMB    int64         `mapstructure:"MAX_UPLOAD_MB"`
	VAPIDPublic    string        `mapstructure:"VAPID_PUBLIC_KEY"`
	VAPIDPrivate   string        `mapstructure:"VAPID_PRIVATE_KEY"`
	VAPIDSubject   string        `mapstructure:"VAPID_SUBSCRIBER"`
	RequestTimeout time.Duration `mapstructure:"REQUEST_TIMEOUT"`
}

var keys = []string{
	"PORT", "APP_ENV", "GIN_MODE", "LOG_LEVEL", "MONGODB_URI", "MONGODB_DATABASE",
	"JWT_SECRET", "JWT_TTL", "ALLOWED_ORIGINS", "CLOUDINARY_URL", "UPLOAD_DIR",
	"MAX_UPLOAD_MB", "VAPID_PUBLIC_KEY", "VAPID_PRIVATE_KEY", "VAPID_SUBSCRIBER",
	"REQUEST_TIMEOUT",
}

// Load reads .env (if present) into the process environment and decodes the
// environment into a Config.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file loaded", slog.String("error", err.Error()))
	}

	v := viper.New()
	v.AutomaticEnv()
	// AutomaticEnv only answers Get calls; Unmarshal needs every key bound.
	for _, k := range keys {
		_ = v.BindEnv(k)
	}

	v.SetDefault("PORT", "5000")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("GIN_MODE", "debug")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("MONGODB_URI", "mongodb://127.0.0.1:27017")
	v.SetDefault("MONGODB_DATABASE", "postboard")
	v.SetDefault("JWT_SECRET", defaultJWTSecret)
	v.SetDefault("JWT_TTL", "24h")
	v.SetDefault("ALLOWED_ORIGINS", "*")
	v.SetDefault("UPLOAD_DIR", "uploads")
	v.SetDefault("MAX_UPLOAD_MB", 10)
	v.SetDefault("VAPID_SUBSCRIBER", "mailto:admin@postboard.dev")
	v.SetDefault("REQUEST_TIMEOUT", "10s")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate ensures that required values are present and production-safe.
func (c *Config) Validate() error {
	if c.Port == "" {
		return errors.New("PORT is required")
	}
	if c.MongoURI == "" {
		return errors.New("MONGODB_URI is required")
	}
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.JWTTTL <= 0 {
		return errors.New("JWT_TTL must be positive")
	}
	if c.IsProduction() {
		if c.JWTSecret == defaultJWTSecret {
			return errors.New("JWT_SECRET must be changed from the default value in production")
		}
		if len(c.JWTSecret) < 32 {
			return errors.New("JWT_SECRET must be at least 32 characters in production")
		}
		if c.AllowedOrigins == "*" {
			slog.Warn("ALLOWED_ORIGINS is '*' in production")
		}
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "production" || c.Env == "prod"
}

// Origins splits ALLOWED_ORIGINS on commas.
func (c *Config) Origins() []string {
	var out []string
	for _, o := range strings.Split(c.AllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

// MaxUploadBytes is the multipart size limit for post images.
func (c *Config) MaxUploadBytes() int64 {
	return c.MaxUploadMB << 20
}

// PushEnabled reports whether VAPID keys are configured.
func (c *Config) PushEnabled() bool {
	return c.VAPIDPublic != "" && c.VAPIDPrivate != ""
}
