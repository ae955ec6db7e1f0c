package config

import (
	"log"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	TelegramBotToken string
	RedisURL         string
	APIKey           string

	MorphoAPIURL   string
	MarketPageSize int
	MarketMaxItems int

	MinLiquidityUSD float64
	StableSymbols   []string

	StatusPollSecs     int
	MarketCacheTTLSecs int

	SSHPort        int
	SSHHostKeyPath string
}

func Load() *Config {
	cfg := &Config{
		TelegramBotToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
		RedisURL:         os.Getenv("REDIS_URL"),
		APIKey:           strings.TrimSpace(os.Getenv("API_KEY")),
		MorphoAPIURL:     strings.TrimSpace(os.Getenv("MORPHO_API_URL")),
	}

	if cfg.TelegramBotToken == "" {
		log.Println("Warning: TELEGRAM_BOT_TOKEN not set")
	}
	if cfg.RedisURL == "" {
		log.Println("Warning: REDIS_URL not set, defaulting to localhost:6379")
		cfg.RedisURL = "localhost:6379"
	}

	cfg.MarketPageSize = 1000
	if v := strings.TrimSpace(os.Getenv("MARKET_PAGE_SIZE")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.MarketPageSize = n
		}
	}

	cfg.MarketMaxItems = 5000
	if v := strings.TrimSpace(os.Getenv("MARKET_MAX_ITEMS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.MarketMaxItems = n
		}
	}

	cfg.MinLiquidityUSD = 200000
	if v := strings.TrimSpace(os.Getenv("MIN_LIQUIDITY_USD")); v != "" {
		if n, err := strconv.ParseFloat(v, 64); err == nil && n >= 0 {
			cfg.MinLiquidityUSD = n
		}
	}

	cfg.StableSymbols = []string{"USDC", "USDT"}
	if v := strings.TrimSpace(os.Getenv("STABLE_SYMBOLS")); v != "" {
		var symbols []string
		for _, s := range strings.Split(v, ",") {
			if s = strings.ToUpper(strings.TrimSpace(s)); s != "" {
				symbols = append(symbols, s)
			}
		}
		if len(symbols) > 0 {
			cfg.StableSymbols = symbols
		}
	}

	cfg.StatusPollSecs = 30
	if v := strings.TrimSpace(os.Getenv("STATUS_POLL_SECS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.StatusPollSecs = n
		}
	}

	cfg.MarketCacheTTLSecs = 60
	if v := strings.TrimSpace(os.Getenv("MARKET_CACHE_TTL_SECS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.MarketCacheTTLSecs = n
		}
	}

	cfg.SSHPort = 2222
	if v := strings.TrimSpace(os.Getenv("SSH_PORT")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.SSHPort = n
		}
	}

	cfg.SSHHostKeyPath = strings.TrimSpace(os.Getenv("SSH_HOST_KEY_PATH"))
	if cfg.SSHHostKeyPath == "" {
		cfg.SSHHostKeyPath = ".ssh/morpho_monitor_ed25519"
	}

	return cfg
}
