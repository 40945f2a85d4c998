// Package config
package config

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

/*
YAML config example:
mode: "multi"
initial_balance: 1000
symbols: ["BTC/USDT", "ETH/USDT", "SOL/USDT"]
feed: "live"
feed_url: "ws://localhost:9001/ws"
history_url: "http://localhost:9001/history"
analysis_interval: 5m
trading_interval: 1s
window_size: 50
switch_margin: 10
metrics_addr: ":9090"
telegram_token: "..."
telegram_chat_id: "..."
*/

type Config struct {
	Mode           string   `yaml:"mode"` // single or multi
	InitialBalance float64  `yaml:"initial_balance"`
	Symbols        []string `yaml:"symbols"`

	Feed       string `yaml:"feed"` // live or replay
	FeedURL    string `yaml:"feed_url"`
	HistoryURL string `yaml:"history_url"`

	AnalysisInterval time.Duration `yaml:"analysis_interval"`
	TradingInterval  time.Duration `yaml:"trading_interval"`
	WindowSize       int           `yaml:"window_size"`
	SwitchMargin     int           `yaml:"switch_margin"`
	StaleAfter       time.Duration `yaml:"stale_after"`

	MetricsAddr string `yaml:"metrics_addr"`

	TelegramToken       string        `yaml:"telegram_token"`
	TelegramChatID      string        `yaml:"telegram_chat_id"`
	NotificationRetries int           `yaml:"notification_retries"`
	NotificationDelay   time.Duration `yaml:"notification_delay"`
}

func loadConfig() (Config, error) {
	mode := flag.String("mode", "single", "Trading mode: single or multi")
	initialBalance := flag.Float64("initial-balance", 1000, "Initial balance in quote currency")
	symbolsFlag := flag.String("symbols", "BTC/USDT", "Comma-separated list of trading pairs")
	feedMode := flag.String("feed", "live", "Feed: live (websocket) or replay")
	feedURL := flag.String("feed-url", "ws://localhost:9001/ws", "Tick WebSocket URL")
	historyURL := flag.String("history-url", "http://localhost:9001/history", "OHLCV history endpoint")
	analysisInterval := flag.Duration("analysis-interval", 5*time.Minute, "Interval between analysis cycles")
	tradingInterval := flag.Duration("trading-interval", time.Second, "Interval between trading cycles")
	windowSize := flag.Int("window-size", 50, "Per-pair rolling window capacity")
	switchMargin := flag.Int("switch-margin", 10, "Score margin required to switch the active pair")
	staleAfter := flag.Duration("stale-after", 2*time.Minute, "Tick age after which a pair is flagged stale")
	metricsAddr := flag.String("metrics-addr", "", "Address for /metrics and /healthz (empty disables)")
	telegramToken := flag.String("telegram-token", "", "Telegram bot token for notifications")
	telegramChatID := flag.String("telegram-chat", "", "Telegram chat ID for notifications")
	notificationRetries := flag.Int("notification-retries", 3, "Number of notification send attempts")
	notificationDelay := flag.Duration("notification-delay", 5*time.Second, "Delay between notification retries")
	configFile := flag.String("config", "", "Path to YAML config file")
	flag.Parse()

	if *configFile != "" {
		data, err := os.ReadFile(*configFile)
		if err != nil {
			return Config{}, fmt.Errorf("failed to read config file: %w", err)
		}
		var fileCfg Config
		if err := yaml.Unmarshal(data, &fileCfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse config file: %w", err)
		}
		return fileCfg, nil
	}

	return Config{
		Mode:                *mode,
		InitialBalance:      *initialBalance,
		Symbols:             strings.Split(*symbolsFlag, ","),
		Feed:                *feedMode,
		FeedURL:             *feedURL,
		HistoryURL:          *historyURL,
		AnalysisInterval:    *analysisInterval,
		TradingInterval:     *tradingInterval,
		WindowSize:          *windowSize,
		SwitchMargin:        *switchMargin,
		StaleAfter:          *staleAfter,
		MetricsAddr:         *metricsAddr,
		TelegramToken:       *telegramToken,
		TelegramChatID:      *telegramChatID,
		NotificationRetries: *notificationRetries,
		NotificationDelay:   *notificationDelay,
	}, nil
}

// Validate checks the loaded configuration for unusable values.
func (c Config) Validate() error {
	if c.Mode != "single" && c.Mode != "multi" {
		return fmt.Errorf("unsupported mode: %s", c.Mode)
	}
	if c.InitialBalance <= 0 {
		return errors.New("initial balance must be positive")
	}
	if len(c.Symbols) == 0 {
		return errors.New("at least one symbol is required")
	}
	if c.Feed != "live" && c.Feed != "replay" {
		return fmt.Errorf("unsupported feed: %s", c.Feed)
	}
	if c.AnalysisInterval < 0 || c.TradingInterval < 0 {
		return errors.New("intervals cannot be negative")
	}
	if c.WindowSize < 0 {
		return errors.New("window size cannot be negative")
	}
	return nil
}

// MustLoad loads the configuration from flags or a YAML file and exits
// on invalid input.
func MustLoad() Config {
	cfg, err := loadConfig()
	if err != nil {
		log.Fatalf("config | %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config | %v", err)
	}
	return cfg
}
