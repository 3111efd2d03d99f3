package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

var (
	ErrEmptyDSN      = errors.New("error getting CF_STORAGE_DSN: required when CF_STORAGE_DRIVER is postgres")
	ErrUnknownDriver = errors.New("error getting CF_STORAGE_DRIVER: must be sqlite or postgres")
	ErrUnknownEngine = errors.New("error getting CF_FETCH_ENGINE: must be http or colly")
)

type Config struct {
	Env            string // Env is the current environment: local, development, production.
	HTTPAddr       string
	SitesFile      string        // SitesFile optionally replaces the built-in site registry.
	ScrapeInterval time.Duration // ScrapeInterval of zero disables scheduled runs.
	AlertWindow    time.Duration
	Storage        Storage
	Fetch          Fetch
	Tg             Telegram
}

type Storage struct {
	Driver string // Driver is sqlite or postgres.
	Path   string // Path is the SQLite database file.
	DSN    string // DSN is the PostgreSQL connection string.
}

// Source returns the path or DSN matching the driver.
func (s Storage) Source() string {
	if s.Driver == "postgres" {
		return s.DSN
	}

	return s.Path
}

type Fetch struct {
	Engine    string // Engine is http or colly.
	Timeout   time.Duration
	UserAgent string
}

type Telegram struct {
	Token   string        // Token is an unique telegram bot token. Empty disables the bot.
	Timeout time.Duration // Timeout is a poller timeout duration.
}

// Enabled reports whether a bot token was configured.
func (t Telegram) Enabled() bool {
	return t.Token != ""
}

// Load reads an optional .env file and then CF_-prefixed environment variables.
func Load(envFiles ...string) (*Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load env file: %w", err)
	}

	v := viper.New()
	// Automatically binds environment variables to config keys
	v.SetEnvPrefix("CF")
	v.AutomaticEnv()

	// optional args
	v.SetDefault("ENV", "production")
	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("STORAGE_DRIVER", "sqlite")
	v.SetDefault("STORAGE_PATH", "pricewatch.db")
	v.SetDefault("FETCH_ENGINE", "http")
	v.SetDefault("FETCH_TIMEOUT", "15s")
	v.SetDefault("USER_AGENT", "")
	v.SetDefault("SITES_FILE", "")
	v.SetDefault("SCRAPE_INTERVAL", "0s")
	v.SetDefault("ALERT_WINDOW", "24h")
	v.SetDefault("TELEGRAM_TIMEOUT", "15s")

	cfg := &Config{
		Env:            v.GetString("ENV"),
		HTTPAddr:       v.GetString("HTTP_ADDR"),
		SitesFile:      v.GetString("SITES_FILE"),
		ScrapeInterval: v.GetDuration("SCRAPE_INTERVAL"),
		AlertWindow:    v.GetDuration("ALERT_WINDOW"),
		Storage: Storage{
			Driver: v.GetString("STORAGE_DRIVER"),
			Path:   v.GetString("STORAGE_PATH"),
			DSN:    v.GetString("STORAGE_DSN"),
		},
		Fetch: Fetch{
			Engine:    v.GetString("FETCH_ENGINE"),
			Timeout:   v.GetDuration("FETCH_TIMEOUT"),
			UserAgent: v.GetString("USER_AGENT"),
		},
		Tg: Telegram{
			Token:   v.GetString("TELEGRAM_TOKEN"),
			Timeout: v.GetDuration("TELEGRAM_TIMEOUT"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// MustLoad is Load that panics on invalid configuration.
func MustLoad(envFiles ...string) *Config {
	cfg, err := Load(envFiles...)
	if err != nil {
		panic(err)
	}

	return cfg
}

func (c *Config) validate() error {
	switch c.Storage.Driver {
	case "sqlite":
	case "postgres":
		if c.Storage.DSN == "" {
			return ErrEmptyDSN
		}
	default:
		return ErrUnknownDriver
	}

	switch c.Fetch.Engine {
	case "http", "colly":
	default:
		return ErrUnknownEngine
	}

	return nil
}
