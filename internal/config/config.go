// Package config loads server settings from defaults, a TOML file, the
// environment and finally command-line flags, each overriding the last.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"

	"github.com/erazemk/tcgpocket/internal/pack"
)

// Config represents the server configuration.
type Config struct {
	Server   ServerConfig   `toml:"server"`
	Database DatabaseConfig `toml:"database"`
	Redis    RedisConfig    `toml:"redis"`
	Pack     PackConfig     `toml:"pack"`
	Log      LogConfig      `toml:"log"`
}

// ServerConfig contains HTTP settings.
type ServerConfig struct {
	Addr        string   `toml:"addr"`         // Listen address
	CORSOrigins []string `toml:"cors_origins"` // Allowed origins ("*" for any)
	AdminUser   string   `toml:"admin_user"`   // Admin username on first run
}

// DatabaseConfig contains storage settings.
type DatabaseConfig struct {
	Path string `toml:"path"` // SQLite database path
}

// RedisConfig contains overview cache settings. An empty address disables the cache.
type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
	TTL      string `toml:"ttl"` // e.g. "5m"
}

// PackConfig contains pack opening settings.
type PackConfig struct {
	CardsPerPack   int         `toml:"cards_per_pack"`
	OpensPerMinute int         `toml:"opens_per_minute"` // Per user, 0 = unlimited
	Odds           []pack.Odds `toml:"odds"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	Path string `toml:"path"` // Extra log file, empty for stdout/stderr only
}

// Default returns the default configuration.
func Default() *Config {
	p := pack.DefaultConfig()
	return &Config{
		Server: ServerConfig{
			Addr:        ":8080",
			CORSOrigins: []string{"*"},
			AdminUser:   "Admin",
		},
		Database: DatabaseConfig{
			Path: "tcgpocket.sqlite3",
		},
		Redis: RedisConfig{
			TTL: "5m",
		},
		Pack: PackConfig{
			CardsPerPack:   p.CardsPerPack,
			OpensPerMinute: 30,
			Odds:           p.Odds,
		},
	}
}

// LoadFile reads a TOML file over the defaults. A missing file is not an error.
func LoadFile(path string) (*Config, error) {
	c := Default()
	if path == "" {
		return c, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return c, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	// Array tables append to existing slices, so odds from the file replace
	// the defaults rather than extending them.
	defaultOdds := c.Pack.Odds
	c.Pack.Odds = nil
	if err := toml.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}
	if c.Pack.Odds == nil {
		c.Pack.Odds = defaultOdds
	}
	return c, nil
}

// LoadDotEnv loads variables from a .env file into the process environment
// without overriding variables that are already set. A missing file is ignored.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overrides settings from TCG_* variables found by lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok {
			*dst = v
		}
	}
	num := func(key string, dst *int) error {
		v, ok := lookup(key)
		if !ok {
			return nil
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		*dst = n
		return nil
	}

	str("TCG_ADDR", &c.Server.Addr)
	str("TCG_ADMIN_USER", &c.Server.AdminUser)
	if v, ok := lookup("TCG_CORS_ORIGINS"); ok {
		c.Server.CORSOrigins = splitList(v)
	}
	str("TCG_DB", &c.Database.Path)
	str("TCG_REDIS_ADDR", &c.Redis.Addr)
	str("TCG_REDIS_PASSWORD", &c.Redis.Password)
	str("TCG_REDIS_TTL", &c.Redis.TTL)
	str("TCG_LOG", &c.Log.Path)

	if err := num("TCG_REDIS_DB", &c.Redis.DB); err != nil {
		return err
	}
	if err := num("TCG_CARDS_PER_PACK", &c.Pack.CardsPerPack); err != nil {
		return err
	}
	if err := num("TCG_OPENS_PER_MINUTE", &c.Pack.OpensPerMinute); err != nil {
		return err
	}
	return nil
}

// Validate checks the configuration values.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("server address required")
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database path required")
	}
	if _, err := c.RedisTTL(); err != nil {
		return fmt.Errorf("invalid redis ttl %q: %w", c.Redis.TTL, err)
	}
	if c.Pack.OpensPerMinute < 0 {
		return fmt.Errorf("opens per minute cannot be negative: %d", c.Pack.OpensPerMinute)
	}
	if err := c.PackConfig().Validate(); err != nil {
		return fmt.Errorf("pack: %w", err)
	}
	return nil
}

// RedisTTL returns the overview cache TTL as a duration.
func (c *Config) RedisTTL() (time.Duration, error) {
	return time.ParseDuration(c.Redis.TTL)
}

// PackConfig returns the pack opener settings.
func (c *Config) PackConfig() pack.Config {
	return pack.Config{CardsPerPack: c.Pack.CardsPerPack, Odds: c.Pack.Odds}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
