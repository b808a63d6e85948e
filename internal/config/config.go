package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"TickerLens/internal/calculator"
	"TickerLens/internal/collector"
)

// Config holds all application configuration.
type Config struct {
	Server struct {
		Addr string `yaml:"addr"`
		Mode string `yaml:"mode"` // gin mode: debug, release or test
	} `yaml:"server"`
	DataSource struct {
		Provider       string  `yaml:"provider"` // yahoo, rest or mock
		BaseURL        string  `yaml:"base_url"`
		APIKey         string  `yaml:"api_key"`
		Range          string  `yaml:"range"`
		RequestsPerSec float64 `yaml:"requests_per_sec"`
		MaxRetries     int     `yaml:"max_retries"`
		TimeoutSeconds int     `yaml:"timeout_seconds"`
	} `yaml:"data_source"`
	News struct {
		BaseURL  string `yaml:"base_url"`
		APIKey   string `yaml:"api_key"`
		PageSize int    `yaml:"page_size"`
	} `yaml:"news"`
	Indicators calculator.Params `yaml:"indicators"`
	Watchlist  []string          `yaml:"watchlist"`
	Schedule   struct {
		DigestCron string `yaml:"digest_cron"`
	} `yaml:"schedule"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"` // console or json
	} `yaml:"log"`
	Proxy string `yaml:"proxy"`
}

// Load reads an optional .env file and the YAML config at path, then applies
// environment variable overrides on top of the defaults. A missing file is not
// an error.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Warn().Err(err).Msg("Could not read .env file")
	}

	cfg := defaultConfig()
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
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("TICKERLENS_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("DATA_PROVIDER"); v != "" {
		c.DataSource.Provider = v
	}
	if v := os.Getenv("DATA_BASE_URL"); v != "" {
		c.DataSource.BaseURL = v
	}
	if v := os.Getenv("DATA_API_KEY"); v != "" {
		c.DataSource.APIKey = v
	}
	if v := os.Getenv("DATA_RANGE"); v != "" {
		c.DataSource.Range = v
	}
	if v := os.Getenv("NEWS_API_KEY"); v != "" {
		c.News.APIKey = v
	}
	if v := os.Getenv("NEWS_BASE_URL"); v != "" {
		c.News.BaseURL = v
	}
	if v := os.Getenv("RSI_METHOD"); v != "" {
		c.Indicators.RSIMethod = strings.ToLower(v)
	}
	if v := os.Getenv("WATCHLIST"); v != "" {
		c.Watchlist = splitList(v)
	}
	if v := os.Getenv("CRON_DIGEST"); v != "" {
		c.Schedule.DigestCron = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		c.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		c.Telegram.ChatID = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		c.Log.Format = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		c.Proxy = v
	}
	if v := os.Getenv("RSI_WINDOW"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Indicators.RSIWindow = n
		}
	}
	if v := os.Getenv("BB_STD_DEV"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.Indicators.BBStdDev = f
		}
	}
}

// defaultConfig returns the settings used for every key the YAML file and
// environment leave unset. YAML decodes onto it, so explicit zeros survive.
func defaultConfig() *Config {
	c := &Config{}
	c.Server.Addr = ":8080"
	c.Server.Mode = "release"
	c.DataSource.Provider = "yahoo"
	c.DataSource.Range = string(collector.Range1Y)
	c.DataSource.RequestsPerSec = 2
	c.DataSource.MaxRetries = 3
	c.DataSource.TimeoutSeconds = 30
	c.News.PageSize = 5
	c.Indicators = calculator.DefaultParams()
	c.Watchlist = []string{"AAPL", "MSFT", "SPX500"}
	c.Schedule.DigestCron = "0 30 22 * * 1-5"
	c.Log.Level = "info"
	c.Log.Format = "console"
	return c
}

// Validate checks that all required fields are set and consistent.
func (c *Config) Validate() error {
	switch c.DataSource.Provider {
	case "yahoo", "mock":
	case "rest":
		if c.DataSource.BaseURL == "" {
			return fmt.Errorf("data_source.base_url is required for the rest provider")
		}
	default:
		return fmt.Errorf("data_source.provider %q is not one of yahoo, rest, mock", c.DataSource.Provider)
	}
	if !collector.Range(c.DataSource.Range).Valid() {
		return fmt.Errorf("data_source.range %q is not supported", c.DataSource.Range)
	}
	if c.DataSource.RequestsPerSec < 0 || c.DataSource.MaxRetries < 0 || c.DataSource.TimeoutSeconds < 0 {
		return fmt.Errorf("data_source limits must not be negative")
	}
	if c.News.PageSize < 1 || c.News.PageSize > 100 {
		return fmt.Errorf("news.page_size must be between 1 and 100, got %d", c.News.PageSize)
	}
	if err := c.Indicators.Validate(); err != nil {
		return fmt.Errorf("indicators: %w", err)
	}
	for _, s := range c.Watchlist {
		if _, err := collector.NormalizeSymbol(s); err != nil {
			return fmt.Errorf("watchlist: %w", err)
		}
	}
	if _, err := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow).Parse(c.Schedule.DigestCron); err != nil {
		return fmt.Errorf("schedule.digest_cron: %w", err)
	}
	if c.Telegram.BotToken != "" && c.Telegram.ChatID == "" {
		return fmt.Errorf("telegram.chat_id is required when telegram.bot_token is set")
	}
	return nil
}

// TelegramEnabled reports whether a bot token is configured.
func (c *Config) TelegramEnabled() bool { return c.Telegram.BotToken != "" }

// NewsEnabled reports whether a news API key is configured.
func (c *Config) NewsEnabled() bool { return c.News.APIKey != "" }

// HTTPOptions builds the outbound HTTP settings for the data fetchers.
func (c *Config) HTTPOptions() collector.HTTPOptions {
	return collector.HTTPOptions{
		Timeout:        time.Duration(c.DataSource.TimeoutSeconds) * time.Second,
		ProxyURL:       c.Proxy,
		RequestsPerSec: c.DataSource.RequestsPerSec,
		MaxRetries:     c.DataSource.MaxRetries,
	}
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
