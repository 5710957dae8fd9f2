package config

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`
	GopsAddr string `env:"GOPS_ADDR"`

	// CORSOrigins lists the browser origins allowed to send credentials.
	CORSOrigins []string `env:"CORS_ORIGINS, default=http://localhost:5173"`
	// UploadMaxSize is an echo body limit, e.g. "20M".
	UploadMaxSize string `env:"UPLOAD_MAX_SIZE, default=20M"`

	Auth   AuthConfig
	Cookie CookieConfig
	Admin  AdminConfig
	Mongo  MongoConfig
	Redis  RedisConfig
	Jobs   JobsConfig
}

type AuthConfig struct {
	JWTSecret    string        `env:"JWT_SECRET, required"`
	Issuer       string        `env:"JWT_ISSUER,          default=requirements-api"`
	TokenTTL     time.Duration `env:"TOKEN_TTL,           default=24h"`
	RefreshAfter time.Duration `env:"TOKEN_REFRESH_AFTER, default=12h"`
	RenewGrace   time.Duration `env:"TOKEN_RENEW_GRACE,   default=30s"`
	Leeway       time.Duration `env:"TOKEN_LEEWAY,        default=30s"`
	BcryptCost   int           `env:"BCRYPT_COST,         default=10"`
	RoleCacheTTL time.Duration `env:"ROLE_CACHE_TTL,      default=1m"`
	AuditWorkers int           `env:"AUDIT_WORKERS,       default=4"`
}

type CookieConfig struct {
	Name string `env:"COOKIE_NAME, default=token"`
	// Secure is "true", "false" or empty; empty means secure outside development.
	Secure   string `env:"COOKIE_SECURE"`
	SameSite string `env:"COOKIE_SAMESITE, default=lax"`
	Domain   string `env:"COOKIE_DOMAIN"`
}

// AdminConfig seeds an admin account at startup when Email and Password are set.
type AdminConfig struct {
	Email    string `env:"ADMIN_EMAIL"`
	Username string `env:"ADMIN_USERNAME, default=admin"`
	Password string `env:"ADMIN_PASSWORD"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=requirements"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR,     default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,       default=0"`
}

type JobsConfig struct {
	TokenSweepSchedule string `env:"TOKEN_SWEEP_SCHEDULE, default=@every 15m"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	return LoadWith(ctx, envconfig.OsLookuper())
}

// LoadWith reads configuration through l.
func LoadWith(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if strings.TrimSpace(c.Auth.JWTSecret) == "" {
		return errors.New("JWT_SECRET must not be blank")
	}
	if c.Auth.TokenTTL <= 0 {
		return errors.New("TOKEN_TTL must be positive")
	}
	if c.Auth.RefreshAfter < 0 || c.Auth.RefreshAfter >= c.Auth.TokenTTL {
		return errors.New("TOKEN_REFRESH_AFTER must be in [0, TOKEN_TTL)")
	}
	if c.Auth.RenewGrace < 0 {
		return errors.New("TOKEN_RENEW_GRACE must not be negative")
	}
	if c.Cookie.Secure != "" {
		if _, err := strconv.ParseBool(c.Cookie.Secure); err != nil {
			return fmt.Errorf("COOKIE_SECURE: %w", err)
		}
	}
	switch strings.ToLower(c.Cookie.SameSite) {
	case "lax", "strict", "none":
	default:
		return fmt.Errorf("COOKIE_SAMESITE must be lax, strict or none, got %q", c.Cookie.SameSite)
	}
	if strings.EqualFold(c.Cookie.SameSite, "none") && !c.SecureCookies() {
		return errors.New("COOKIE_SAMESITE=none requires secure cookies")
	}
	return nil
}

// IsDevelopment reports whether the service runs with ENV=development.
func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(c.Env, "development")
}

// SecureCookies resolves COOKIE_SECURE, defaulting to true outside development.
func (c *Config) SecureCookies() bool {
	if v, err := strconv.ParseBool(c.Cookie.Secure); err == nil {
		return v
	}
	return !c.IsDevelopment()
}
