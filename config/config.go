// Package config loads application settings from a .env file and environment variables.
// Environment variables always take precedence over .env file values.
package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	// PostgreSQL – either set DatabaseURL directly, or the individual fields.
	DatabaseURL string
	DBUser      string
	DBPass      string
	DBHost      string
	DBPort      string
	DBName      string
	DBSSLMode   string
	// AutoMigrate applies pending migrations at startup.
	AutoMigrate bool

	// JWT signing secret (required in production).
	JWTSecret string
	// AdminUsers may manage users regardless of their stored role.
	AdminUsers []string

	// Server
	Debug      bool
	Port       string
	TLSDomains []string
	// PublicRateLimit is requests per second per client on public routes.
	PublicRateLimit float64

	// Standings
	RankingCacheTTL time.Duration

	// Outbox side effects
	DocsDir    string
	WebhookURL string

	// MySQL – used only by cmd/importlegacy.
	MySQLDSN string
}

// Load reads configuration from a .env file (if present) and then from
// environment variables. Environment variables always win.
func Load() *Config {
	cfg := load(newViper())
	cfg.validate()
	return cfg
}

func load(v *viper.Viper) *Config {
	// Defaults
	v.SetDefault("DB_USER", "sailscore")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_NAME", "sailscore")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("AUTO_MIGRATE", false)
	v.SetDefault("PORT", ":9000")
	v.SetDefault("TLS_DOMAINS", "")
	v.SetDefault("DEBUG", false)
	v.SetDefault("ADMIN_USERS", "admin")
	v.SetDefault("PUBLIC_RATE_LIMIT", 10)
	v.SetDefault("RANKING_CACHE_TTL", "5m")
	v.SetDefault("DOCS_DIR", "./docs")

	return &Config{
		DatabaseURL:     v.GetString("DATABASE_URL"),
		DBUser:          v.GetString("DB_USER"),
		DBPass:          v.GetString("DB_PASS"),
		DBHost:          v.GetString("DB_HOST"),
		DBPort:          v.GetString("DB_PORT"),
		DBName:          v.GetString("DB_NAME"),
		DBSSLMode:       v.GetString("DB_SSLMODE"),
		AutoMigrate:     v.GetBool("AUTO_MIGRATE"),
		JWTSecret:       v.GetString("JWT_SECRET"),
		AdminUsers:      splitTrimmed(v.GetString("ADMIN_USERS")),
		Debug:           v.GetBool("DEBUG"),
		Port:            v.GetString("PORT"),
		TLSDomains:      splitTrimmed(v.GetString("TLS_DOMAINS")),
		PublicRateLimit: v.GetFloat64("PUBLIC_RATE_LIMIT"),
		RankingCacheTTL: v.GetDuration("RANKING_CACHE_TTL"),
		DocsDir:         v.GetString("DOCS_DIR"),
		WebhookURL:      v.GetString("WEBHOOK_URL"),
		MySQLDSN:        v.GetString("MYSQL_DSN"),
	}
}

// PostgresDSN returns the full PostgreSQL connection string.
// DATABASE_URL takes precedence over individual fields.
func (c *Config) PostgresDSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.DBUser,
		c.DBPass,
		c.DBHost,
		c.DBPort,
		c.DBName,
		c.DBSSLMode,
	)
}

// JWTKey returns the JWT signing key as a byte slice.
func (c *Config) JWTKey() []byte {
	return []byte(c.JWTSecret)
}

// IsAdmin reports whether username is listed in ADMIN_USERS.
func (c *Config) IsAdmin(username string) bool {
	normalized := strings.ToLower(strings.TrimSpace(username))
	for _, admin := range c.AdminUsers {
		if normalized == strings.ToLower(admin) {
			return true
		}
	}
	return false
}

func (c *Config) validate() {
	if err := c.check(); err != nil {
		log.Fatal("config: ", err)
	}
}

func (c *Config) check() error {
	if c.DatabaseURL == "" && c.DBPass == "" {
		return fmt.Errorf("DATABASE_URL or DB_PASS must be set")
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET must be set")
	}
	if c.RankingCacheTTL < 0 {
		return fmt.Errorf("RANKING_CACHE_TTL must not be negative")
	}
	return nil
}

func newViper() *viper.Viper {
	// Silently load .env – OK if the file doesn't exist (production uses real env vars).
	if err := godotenv.Load(); err != nil {
		log.Println("config: no .env file found, using environment variables only")
	}

	v := viper.New()
	v.AutomaticEnv()
	return v
}

func splitTrimmed(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
