package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

// DefaultPath is used when neither --config nor CONFIG_PATH is given.
const DefaultPath = "configs/config.yaml"

// Config holds all application configuration.
type Config struct {
	Server struct {
		Addr string `yaml:"addr" validate:"required"`
	} `yaml:"server"`
	DataSource struct {
		Provider string        `yaml:"provider" validate:"oneof=yahoo alphavantage polygon mock"`
		APIKey   string        `yaml:"api_key"`
		Proxy    string        `yaml:"proxy" validate:"omitempty,url"`
		Timeout  time.Duration `yaml:"timeout" validate:"gt=0"`
	} `yaml:"data_source"`
	Indicators struct {
		SMAWindow  int     `yaml:"sma_window" validate:"gte=1"`
		RSIPeriod  int     `yaml:"rsi_period" validate:"gte=1"`
		RSIMethod  string  `yaml:"rsi_method" validate:"oneof=wilder cutler"`
		BBWindow   int     `yaml:"bb_window" validate:"gte=2"`
		BBK        float64 `yaml:"bb_k" validate:"gt=0"`
		Oversold   float64 `yaml:"oversold" validate:"gte=0,lte=100"`
		Overbought float64 `yaml:"overbought" validate:"gte=0,lte=100,gtfield=Oversold"`
	} `yaml:"indicators"`
	Scan struct {
		Enabled    bool     `yaml:"enabled"`
		RunOnStart bool     `yaml:"run_on_start"`
		Cron       string   `yaml:"cron" validate:"required"`
		Watchlist  []string `yaml:"watchlist" validate:"dive,required"`
		Period     string   `yaml:"period" validate:"oneof=1mo 3mo 6mo 1y"`
		MaxTickers int      `yaml:"max_tickers" validate:"gte=1"`
		Workers    int      `yaml:"workers" validate:"gte=1,lte=32"`
	} `yaml:"scan"`
	Cache struct {
		TTL           time.Duration `yaml:"ttl" validate:"gt=0"`
		RedisAddr     string        `yaml:"redis_addr" validate:"omitempty,hostname_port"`
		RedisPassword string        `yaml:"redis_password"`
		RedisDB       int           `yaml:"redis_db" validate:"gte=0"`
	} `yaml:"cache"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id" validate:"required_with=BotToken"`
	} `yaml:"telegram"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Log struct {
		Level       string `yaml:"level" validate:"oneof=debug info warn error"`
		Development bool   `yaml:"development"`
	} `yaml:"log"`
}

// Load reads config from a YAML file, then applies environment variable
// overrides and defaults. A missing file is not an error.
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

	cfg.applyEnv()
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("SERVER_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("PORT"); v != "" {
		c.Server.Addr = ":" + v
	}
	if v := os.Getenv("DATA_PROVIDER"); v != "" {
		c.DataSource.Provider = strings.ToLower(v)
	}
	for _, key := range []string{"API_KEY", "ALPHAVANTAGE_API_KEY", "POLYGON_API_KEY"} {
		if v := os.Getenv(key); v != "" {
			c.DataSource.APIKey = v
		}
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		c.DataSource.Proxy = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		c.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		c.Telegram.ChatID = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		c.Database.SQLitePath = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Cache.RedisAddr = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = strings.ToLower(v)
	}
	if v := os.Getenv("SCAN_CRON"); v != "" {
		c.Scan.Cron = v
	}
	if v := os.Getenv("RUN_ON_START"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Scan.RunOnStart = b
		}
	}
}

func (c *Config) applyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.DataSource.Provider == "" {
		c.DataSource.Provider = "yahoo"
	}
	if c.DataSource.Timeout == 0 {
		c.DataSource.Timeout = 30 * time.Second
	}
	if c.Indicators.SMAWindow == 0 {
		c.Indicators.SMAWindow = 20
	}
	if c.Indicators.RSIPeriod == 0 {
		c.Indicators.RSIPeriod = 14
	}
	if c.Indicators.RSIMethod == "" {
		c.Indicators.RSIMethod = "wilder"
	}
	if c.Indicators.BBWindow == 0 {
		c.Indicators.BBWindow = 20
	}
	if c.Indicators.BBK == 0 {
		c.Indicators.BBK = 2
	}
	if c.Indicators.Oversold == 0 && c.Indicators.Overbought == 0 {
		c.Indicators.Oversold, c.Indicators.Overbought = 30, 70
	}
	if c.Scan.Cron == "" {
		c.Scan.Cron = "0 30 22 * * 1-5"
	}
	if len(c.Scan.Watchlist) == 0 {
		c.Scan.Watchlist = []string{"AAPL", "GOOGL"}
	}
	for i, t := range c.Scan.Watchlist {
		c.Scan.Watchlist[i] = strings.ToUpper(strings.TrimSpace(t))
	}
	if c.Scan.Period == "" {
		c.Scan.Period = "6mo"
	}
	if c.Scan.MaxTickers == 0 {
		c.Scan.MaxTickers = 10
	}
	if c.Scan.Workers == 0 {
		c.Scan.Workers = 4
	}
	if c.Cache.TTL == 0 {
		c.Cache.TTL = 15 * time.Minute
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// Validate checks field constraints and cross-field rules.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}

	switch c.DataSource.Provider {
	case "alphavantage", "polygon":
		if c.DataSource.APIKey == "" {
			return fmt.Errorf("data_source.api_key is required for provider %s", c.DataSource.Provider)
		}
	}
	if len(c.Scan.Watchlist) > c.Scan.MaxTickers {
		return fmt.Errorf("scan.watchlist has %d tickers, maximum is %d", len(c.Scan.Watchlist), c.Scan.MaxTickers)
	}
	if _, err := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor).Parse(c.Scan.Cron); err != nil {
		return fmt.Errorf("scan.cron: %w", err)
	}
	return nil
}
