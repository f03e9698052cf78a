// Package config loads neoncore settings from a TOML file with NEONCORE_*
// environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"

	"github.com/nathoo/neoncore/engine/story"
)

// EnvPrefix prefixes every environment override, e.g. NEONCORE_SERVER_ADDR.
const EnvPrefix = "NEONCORE_"

type Config struct {
	Game    GameConfig    `toml:"game" envPrefix:"GAME_"`
	Server  ServerConfig  `toml:"server" envPrefix:"SERVER_"`
	Store   StoreConfig   `toml:"store" envPrefix:"STORE_"`
	Logging LoggingConfig `toml:"logging" envPrefix:"LOG_"`
}

type GameConfig struct {
	ContentDir   string `toml:"content_dir" env:"CONTENT_DIR"` // empty = embedded content
	Seed         int64  `toml:"seed" env:"SEED"`               // 0 = seeded from the clock
	OpeningStory string `toml:"opening_story" env:"OPENING_STORY"`
}

type ServerConfig struct {
	Addr        string        `toml:"addr" env:"ADDR"`
	HostKey     string        `toml:"host_key" env:"HOST_KEY"`
	MaxSessions int           `toml:"max_sessions" env:"MAX_SESSIONS"` // 0 = unlimited
	IdleTimeout time.Duration `toml:"idle_timeout" env:"IDLE_TIMEOUT"`
}

type StoreConfig struct {
	Path string `toml:"path" env:"PATH"`
}

type LoggingConfig struct {
	Level  string `toml:"level" env:"LEVEL"`
	Format string `toml:"format" env:"FORMAT"` // "json" or "console"
	File   string `toml:"file" env:"FILE"`     // empty = stderr
}

// Load reads path over the defaults and applies environment overrides.
// An empty path means defaults plus environment only.
func Load(path string) (*Config, error) {
	cfg := defaults()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := ParseEnv(cfg, nil); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ParseEnv applies NEONCORE_* overrides. A nil environ reads the process
// environment.
func ParseEnv(cfg *Config, environ map[string]string) error {
	opts := env.Options{Prefix: EnvPrefix, Environment: environ}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Validate rejects settings the binary cannot run with.
func (c *Config) Validate() error {
	var errs []error
	switch c.Logging.Format {
	case "console", "json":
	default:
		errs = append(errs, fmt.Errorf("logging.format %q: want console or json", c.Logging.Format))
	}
	if c.Server.MaxSessions < 0 {
		errs = append(errs, fmt.Errorf("server.max_sessions %d is negative", c.Server.MaxSessions))
	}
	if c.Server.IdleTimeout < 0 {
		errs = append(errs, fmt.Errorf("server.idle_timeout %s is negative", c.Server.IdleTimeout))
	}
	if c.Store.Path == "" {
		errs = append(errs, errors.New("store.path is required"))
	}
	if known := story.Builtin(); c.Game.OpeningStory != "" && !slices.Contains(known, c.Game.OpeningStory) {
		errs = append(errs, fmt.Errorf("game.opening_story %q: want one of %v", c.Game.OpeningStory, known))
	}
	return errors.Join(errs...)
}

func defaults() *Config {
	return &Config{
		Game: GameConfig{
			OpeningStory: story.PhoneCallName,
		},
		Server: ServerConfig{
			Addr:        ":2222",
			HostKey:     "neoncore_host_ed25519",
			MaxSessions: 32,
			IdleTimeout: 30 * time.Minute,
		},
		Store: StoreConfig{
			Path: "neoncore.db",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}
