package config

// Config is the resolved process configuration. It is built once at startup
// (Load) and passed by reference into the components that need it; nothing
// mutates it afterwards.
type Config struct {
	Telegram    TelegramConfig    `json:"telegram"`
	Subscribers SubscribersConfig `json:"subscribers"`
	Broadcast   BroadcastConfig   `json:"broadcast"`
	Market      MarketConfig      `json:"market,omitempty"`
	Schedule    ScheduleConfig    `json:"schedule,omitempty"`
	Quotes      QuotesConfig      `json:"quotes,omitempty"`
	Logging     LoggingConfig     `json:"logging,omitempty"`

	// Symbols is the fixed list summarized in scheduled broadcasts.
	Symbols []string `json:"symbols,omitempty"`
}

type TelegramConfig struct {
	Token string `json:"token"`

	// BroadcastChat is the optional override recipient. When set, a broadcast
	// run sends only to it and never reads the subscriber store.
	BroadcastChat string `json:"broadcast_chat,omitempty"`

	// PollTimeout is a Go duration string (e.g. "10s").
	PollTimeout string `json:"poll_timeout,omitempty"`

	// RatePerSec bounds outbound sends across the whole process.
	RatePerSec int    `json:"rate_per_sec,omitempty"`
	ParseMode  string `json:"parse_mode,omitempty"`
}

// SubscribersConfig selects the persistence backend.
//
// Driver values:
//   - "redis":  shared set in Redis (SADD/SREM/SMEMBERS), multi-process safe
//   - "file":   JSON list in a local file, single-process use
//   - "sqlite": SQLite database file
type SubscribersConfig struct {
	Driver   string `json:"driver"`
	RedisURL string `json:"redis_url,omitempty"`
	RedisKey string `json:"redis_key,omitempty"`
	Path     string `json:"path,omitempty"`
}

type BroadcastConfig struct {
	ChunkSize int `json:"chunk_size,omitempty"`
	// ChunkDelay is a Go duration string; pause between chunks.
	ChunkDelay string `json:"chunk_delay,omitempty"`
	// IncludeSession appends the market session status to the summary.
	IncludeSession bool `json:"include_session,omitempty"`
}

// MarketConfig describes the regular trading session of the primary market
// and the secondary zone the session is also displayed in.
type MarketConfig struct {
	Timezone        string `json:"timezone,omitempty"`
	DisplayTimezone string `json:"display_timezone,omitempty"`
	Open            string `json:"open,omitempty"`  // "HH:MM" in Timezone
	Close           string `json:"close,omitempty"` // "HH:MM" in Timezone
}

type ScheduleConfig struct {
	Enabled  bool   `json:"enabled"`
	Spec     string `json:"spec,omitempty"` // cron expression
	Timezone string `json:"timezone,omitempty"`
}

type QuotesConfig struct {
	Endpoint string `json:"endpoint,omitempty"`
	// OptionsEndpoint overrides the option-chain endpoint.
	OptionsEndpoint string `json:"options_endpoint,omitempty"`
	// Timeout is a Go duration string; per-request HTTP timeout.
	Timeout string `json:"timeout,omitempty"`
}

type LoggingConfig struct {
	Level   string      `json:"level,omitempty"`
	Console bool        `json:"console"`
	File    LoggingFile `json:"file,omitempty"`
}

type LoggingFile struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path,omitempty"`
}

const (
	DefaultChunkSize  = 20
	DefaultChunkDelay = "1s"
	DefaultRedisKey   = "subscribers:set"
	DefaultFilePath   = "data/subscribers.json"
)

var defaultSymbols = []string{"AAPL", "MSFT", "GOOGL", "AMZN", "META", "TSLA", "NVDA", "BRK-B", "JPM", "NFLX"}

func applyDefaults(cfg *Config) {
	if cfg.Telegram.ParseMode == "" {
		cfg.Telegram.ParseMode = "Markdown"
	}
	if cfg.Telegram.RatePerSec <= 0 {
		cfg.Telegram.RatePerSec = 25
	}
	if cfg.Subscribers.Driver == "" {
		cfg.Subscribers.Driver = "file"
	}
	if cfg.Subscribers.RedisKey == "" {
		cfg.Subscribers.RedisKey = DefaultRedisKey
	}
	if cfg.Subscribers.Path == "" {
		cfg.Subscribers.Path = DefaultFilePath
	}
	if cfg.Broadcast.ChunkSize <= 0 {
		cfg.Broadcast.ChunkSize = DefaultChunkSize
	}
	if cfg.Broadcast.ChunkDelay == "" {
		cfg.Broadcast.ChunkDelay = DefaultChunkDelay
	}
	if cfg.Market.Timezone == "" {
		cfg.Market.Timezone = "America/New_York"
	}
	if cfg.Market.DisplayTimezone == "" {
		cfg.Market.DisplayTimezone = "Asia/Riyadh"
	}
	if cfg.Market.Open == "" {
		cfg.Market.Open = "09:30"
	}
	if cfg.Market.Close == "" {
		cfg.Market.Close = "16:00"
	}
	if len(cfg.Symbols) == 0 {
		cfg.Symbols = append([]string(nil), defaultSymbols...)
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
}
