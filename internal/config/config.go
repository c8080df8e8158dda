package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"StockGuess/internal/model"
)

// Config holds all application configuration.
type Config struct {
	Game struct {
		PausePrice  float64       `yaml:"pause_price"`
		TargetPrice float64       `yaml:"target_price"`
		Interval    time.Duration `yaml:"interval"`
		Currency    string        `yaml:"currency"`
	} `yaml:"game"`
	DataSource struct {
		Symbol       string        `yaml:"symbol"`
		StartDate    string        `yaml:"start_date"`
		Sources      []string      `yaml:"sources"`
		Timeout      time.Duration `yaml:"timeout"`
		FallbackFile string        `yaml:"fallback_file"`
	} `yaml:"data_source"`
	Server struct {
		Port            int           `yaml:"port"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
		AllowOrigins    []string      `yaml:"allow_origins"`
	} `yaml:"server"`
	Prefs struct {
		Backend       string `yaml:"backend"`
		File          string `yaml:"file"`
		RedisAddr     string `yaml:"redis_addr"`
		RedisPassword string `yaml:"redis_password"`
		RedisDB       int    `yaml:"redis_db"`
		KeyPrefix     string `yaml:"key_prefix"`
	} `yaml:"prefs"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Schedule struct {
		RefreshCron string `yaml:"refresh_cron"`
	} `yaml:"schedule"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies environment variable overrides.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

// envOverrides lists the environment variables that override the file.
// Unset variables leave their field nil.
type envOverrides struct {
	PausePrice  *float64       `env:"PAUSE_PRICE"`
	TargetPrice *float64       `env:"TARGET_PRICE"`
	Interval    *time.Duration `env:"GAME_INTERVAL"`
	Symbol      *string        `env:"SYMBOL"`
	HTTPPort    *int           `env:"HTTP_PORT"`
	BotToken    *string        `env:"TELEGRAM_BOT_TOKEN"`
	ChatID      *string        `env:"TELEGRAM_CHAT_ID"`
	Proxy       *string        `env:"HTTPS_PROXY"`
	SQLitePath  *string        `env:"SQLITE_PATH"`
	RedisAddr   *string        `env:"REDIS_ADDR"`
	LogLevel    *string        `env:"LOG_LEVEL"`
	LogFormat   *string        `env:"LOG_FORMAT"`
}

func (c *Config) applyEnv() error {
	var o envOverrides
	if err := env.Parse(&o); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	setFloat(&c.Game.PausePrice, o.PausePrice)
	setFloat(&c.Game.TargetPrice, o.TargetPrice)
	if o.Interval != nil {
		c.Game.Interval = *o.Interval
	}
	setString(&c.DataSource.Symbol, o.Symbol)
	if o.HTTPPort != nil {
		c.Server.Port = *o.HTTPPort
	}
	setString(&c.Telegram.BotToken, o.BotToken)
	setString(&c.Telegram.ChatID, o.ChatID)
	setString(&c.Proxy, o.Proxy)
	setString(&c.Database.SQLitePath, o.SQLitePath)
	if o.RedisAddr != nil && *o.RedisAddr != "" {
		c.Prefs.RedisAddr = *o.RedisAddr
		c.Prefs.Backend = "redis"
	}
	setString(&c.Log.Level, o.LogLevel)
	setString(&c.Log.Format, o.LogFormat)
	return nil
}

func setFloat(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}

func setString(dst *string, v *string) {
	if v != nil && *v != "" {
		*dst = *v
	}
}

func (c *Config) applyDefaults() {
	if c.Game.PausePrice == 0 {
		c.Game.PausePrice = 390
	}
	if c.Game.TargetPrice == 0 {
		c.Game.TargetPrice = 400
	}
	if c.Game.Interval == 0 {
		c.Game.Interval = 300 * time.Millisecond
	}
	if c.Game.Currency == "" {
		c.Game.Currency = "₹"
	}
	if c.DataSource.Symbol == "" {
		c.DataSource.Symbol = "BIOCON.NS"
	}
	if c.DataSource.StartDate == "" {
		c.DataSource.StartDate = "2024-08-07"
	}
	if c.DataSource.Timeout == 0 {
		c.DataSource.Timeout = 10 * time.Second
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 10 * time.Second
	}
	if len(c.Server.AllowOrigins) == 0 {
		c.Server.AllowOrigins = []string{"*"}
	}
	if c.Prefs.Backend == "" {
		c.Prefs.Backend = "file"
	}
	if c.Prefs.File == "" {
		c.Prefs.File = "data/prefs.json"
	}
	if c.Prefs.KeyPrefix == "" {
		c.Prefs.KeyPrefix = "biocon-"
	}
	if c.Schedule.RefreshCron == "" {
		c.Schedule.RefreshCron = "0 30 16 * * 1-5"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "console"
	}
}

// StartDate parses the first day of the fetched range.
func (c *Config) StartDate() (time.Time, error) {
	return time.ParseInLocation(model.DateLayout, c.DataSource.StartDate, time.UTC)
}

// NotifierEnabled reports whether the Telegram presentation should run.
func (c *Config) NotifierEnabled() bool {
	return c.Telegram.BotToken != ""
}

// Validate checks that all fields hold usable values.
func (c *Config) Validate() error {
	if c.Game.PausePrice <= 0 {
		return fmt.Errorf("game.pause_price must be positive")
	}
	if c.Game.TargetPrice < c.Game.PausePrice {
		return fmt.Errorf("game.target_price (%.2f) must not be below game.pause_price (%.2f)",
			c.Game.TargetPrice, c.Game.PausePrice)
	}
	if c.Game.Interval <= 0 {
		return fmt.Errorf("game.interval must be positive")
	}
	if _, err := c.StartDate(); err != nil {
		return fmt.Errorf("data_source.start_date: %w", err)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	switch c.Prefs.Backend {
	case "file":
	case "redis":
		if c.Prefs.RedisAddr == "" {
			return fmt.Errorf("prefs.redis_addr is required for the redis backend")
		}
	default:
		return fmt.Errorf("prefs.backend must be file or redis, got %q", c.Prefs.Backend)
	}
	if c.Telegram.BotToken != "" && c.Telegram.ChatID == "" {
		return fmt.Errorf("telegram.chat_id is required when a bot token is set")
	}
	return nil
}
