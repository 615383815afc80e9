// Package config loads the scanner configuration from YAML and the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"StockScanner/internal/model"
	"StockScanner/internal/strategy"
)

// Data providers.
const (
	ProviderYahoo = "yahoo"
	ProviderAPI   = "api"
	ProviderMock  = "mock"
)

// Config holds all application configuration.
type Config struct {
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	DataSource struct {
		Provider          string        `yaml:"provider"`
		BaseURL           string        `yaml:"base_url"`
		APIKey            string        `yaml:"api_key"`
		Bars              int           `yaml:"bars"`
		Timeout           time.Duration `yaml:"timeout"`
		RequestsPerSecond float64       `yaml:"requests_per_second"`
		Burst             int           `yaml:"burst"`
		MaxRetries        int           `yaml:"max_retries"`
	} `yaml:"data_source"`
	Watchlist  []string              `yaml:"watchlist"`
	Indicators model.IndicatorParams `yaml:"indicators"`
	Strategy   strategy.Thresholds   `yaml:"strategy"`
	Schedule   struct {
		ScanCron    string `yaml:"scan_cron"`
		SummaryCron string `yaml:"summary_cron"`
		Concurrency int    `yaml:"concurrency"`
	} `yaml:"schedule"`
	Cache struct {
		RedisAddr     string        `yaml:"redis_addr"`
		RedisPassword string        `yaml:"redis_password"`
		RedisDB       int           `yaml:"redis_db"`
		KeyPrefix     string        `yaml:"key_prefix"`
		BarsTTL       time.Duration `yaml:"bars_ttl"`
		QuoteTTL      time.Duration `yaml:"quote_ttl"`
	} `yaml:"cache"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	API struct {
		Listen string `yaml:"listen"`
	} `yaml:"api"`
	Log struct {
		File       string `yaml:"file"`
		MaxSizeMB  int    `yaml:"max_size_mb"`
		MaxBackups int    `yaml:"max_backups"`
		MaxAgeDays int    `yaml:"max_age_days"`
	} `yaml:"log"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies environment variable overrides.
// A missing file is not an error.
func Load(path string) (*Config, error) {
	// Pre-filled so an explicit 0 in the file survives.
	cfg := &Config{Strategy: strategy.DefaultThresholds()}

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

func (c *Config) applyEnv() error {
	str := map[string]*string{
		"TELEGRAM_BOT_TOKEN":   &c.Telegram.BotToken,
		"TELEGRAM_CHAT_ID":     &c.Telegram.ChatID,
		"SCANNER_PROVIDER":     &c.DataSource.Provider,
		"SCANNER_API_BASE_URL": &c.DataSource.BaseURL,
		"SCANNER_API_KEY":      &c.DataSource.APIKey,
		"SCANNER_SCAN_CRON":    &c.Schedule.ScanCron,
		"SCANNER_SUMMARY_CRON": &c.Schedule.SummaryCron,
		"SCANNER_LISTEN":       &c.API.Listen,
		"SCANNER_SQLITE_PATH":  &c.Database.SQLitePath,
		"SCANNER_LOG_FILE":     &c.Log.File,
		"REDIS_ADDR":           &c.Cache.RedisAddr,
		"REDIS_PASSWORD":       &c.Cache.RedisPassword,
		"HTTPS_PROXY":          &c.Proxy,
	}
	for key, dst := range str {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}

	if v := os.Getenv("SCANNER_WATCHLIST"); v != "" {
		c.Watchlist = splitList(v)
	}

	var errs error
	if v := os.Getenv("SCANNER_RATE_LIMIT"); v != "" {
		rps, err := strconv.ParseFloat(v, 64)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("SCANNER_RATE_LIMIT: %w", err))
		} else {
			c.DataSource.RequestsPerSecond = rps
		}
	}
	if v := os.Getenv("SCANNER_CACHE_TTL"); v != "" {
		ttl, err := time.ParseDuration(v)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("SCANNER_CACHE_TTL: %w", err))
		} else {
			c.Cache.BarsTTL = ttl
		}
	}
	if v := os.Getenv("REDIS_DB"); v != "" {
		db, err := strconv.Atoi(v)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("REDIS_DB: %w", err))
		} else {
			c.Cache.RedisDB = db
		}
	}
	return errs
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func (c *Config) applyDefaults() {
	if c.DataSource.Provider == "" {
		if c.DataSource.BaseURL != "" {
			c.DataSource.Provider = ProviderAPI
		} else {
			c.DataSource.Provider = ProviderYahoo
		}
	}
	c.DataSource.Provider = strings.ToLower(c.DataSource.Provider)
	if c.DataSource.Bars == 0 {
		c.DataSource.Bars = 300
	}
	if c.DataSource.Timeout == 0 {
		c.DataSource.Timeout = 30 * time.Second
	}
	if c.DataSource.RequestsPerSecond == 0 {
		c.DataSource.RequestsPerSecond = 2
	}
	if c.DataSource.Burst == 0 {
		c.DataSource.Burst = 4
	}
	if c.DataSource.MaxRetries == 0 {
		c.DataSource.MaxRetries = 3
	}
	if len(c.Watchlist) == 0 {
		c.Watchlist = []string{"SPX500"}
	}

	def := model.DefaultIndicatorParams()
	p := &c.Indicators
	for _, f := range []struct {
		dst *int
		val int
	}{
		{&p.SMAFast, def.SMAFast},
		{&p.SMASlow, def.SMASlow},
		{&p.EMA, def.EMA},
		{&p.RSI, def.RSI},
		{&p.MACDFast, def.MACDFast},
		{&p.MACDSlow, def.MACDSlow},
		{&p.MACDSignal, def.MACDSignal},
	} {
		if *f.dst == 0 {
			*f.dst = f.val
		}
	}

	if c.Schedule.ScanCron == "" {
		c.Schedule.ScanCron = "0 30 16 * * 1-5"
	}
	if c.Schedule.Concurrency == 0 {
		c.Schedule.Concurrency = 4
	}
	if c.Cache.BarsTTL == 0 {
		c.Cache.BarsTTL = 15 * time.Minute
	}
	if c.Cache.QuoteTTL == 0 {
		c.Cache.QuoteTTL = time.Minute
	}
	if c.Cache.KeyPrefix == "" {
		c.Cache.KeyPrefix = "stockscanner:"
	}
	if c.Database.SQLitePath == "" {
		c.Database.SQLitePath = "data/stock_scanner.db"
	}
	if c.API.Listen == "" {
		c.API.Listen = ":8080"
	}
	if c.Log.MaxSizeMB == 0 {
		c.Log.MaxSizeMB = 50
	}
	if c.Log.MaxBackups == 0 {
		c.Log.MaxBackups = 5
	}
	if c.Log.MaxAgeDays == 0 {
		c.Log.MaxAgeDays = 30
	}
}

var cronParser = cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// Validate checks every field and reports all problems at once.
func (c *Config) Validate() error {
	var errs error
	add := func(format string, args ...interface{}) {
		errs = multierr.Append(errs, fmt.Errorf(format, args...))
	}

	switch c.DataSource.Provider {
	case ProviderYahoo, ProviderMock:
	case ProviderAPI:
		if c.DataSource.BaseURL == "" {
			add("data_source.base_url is required for provider %q", ProviderAPI)
		}
	default:
		add("data_source.provider %q is not one of yahoo, api, mock", c.DataSource.Provider)
	}
	if c.DataSource.Bars < 1 {
		add("data_source.bars must be positive")
	}
	if c.DataSource.RequestsPerSecond < 0 {
		add("data_source.requests_per_second must not be negative")
	}
	if c.DataSource.MaxRetries < 0 {
		add("data_source.max_retries must not be negative")
	}

	if (c.Telegram.BotToken == "") != (c.Telegram.ChatID == "") {
		add("telegram.bot_token and telegram.chat_id must be set together")
	}

	p := c.Indicators
	for name, v := range map[string]int{
		"sma_fast": p.SMAFast, "sma_slow": p.SMASlow, "ema": p.EMA, "rsi": p.RSI,
		"macd_fast": p.MACDFast, "macd_slow": p.MACDSlow, "macd_signal": p.MACDSignal,
	} {
		if v < 1 {
			add("indicators.%s must be positive", name)
		}
	}
	if p.MACDFast >= p.MACDSlow {
		add("indicators.macd_fast must be below indicators.macd_slow")
	}

	th := c.Strategy
	if th.RSIOversold >= th.RSIOverbought || th.RSIOversold < 0 || th.RSIOverbought > 100 {
		add("strategy RSI bands must satisfy 0 <= rsi_oversold < rsi_overbought <= 100")
	}
	if th.RangeLow >= th.RangeHigh || th.RangeLow < 0 || th.RangeHigh > 1 {
		add("strategy range bands must satisfy 0 <= range_low < range_high <= 1")
	}

	if _, err := cronParser.Parse(c.Schedule.ScanCron); err != nil {
		add("schedule.scan_cron: %v", err)
	}
	if c.Schedule.SummaryCron != "" {
		if _, err := cronParser.Parse(c.Schedule.SummaryCron); err != nil {
			add("schedule.summary_cron: %v", err)
		}
	}
	if c.Schedule.Concurrency < 1 {
		add("schedule.concurrency must be positive")
	}
	if c.Cache.BarsTTL < 0 || c.Cache.QuoteTTL < 0 {
		add("cache ttl must not be negative")
	}
	if len(c.Watchlist) == 0 {
		add("watchlist must not be empty")
	}
	return errs
}
