package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	yaml "go.yaml.in/yaml/v3"
)

// Load reads, decodes, defaults and validates the config file. Both YAML and
// JSON are accepted; YAML is coerced to JSON so one strict decoder
// (DisallowUnknownFields) covers both formats.
//
// Secrets may be supplied via the environment instead of the file:
// TELEGRAM_TOKEN, REDIS_URL and BROADCAST_CHAT_ID override their file
// counterparts when set.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	jb, format, err := coerceToJSONBytes(path, b)
	if err != nil {
		return nil, err
	}

	var cfg Config
	dec := json.NewDecoder(bytes.NewReader(jb))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("config (%s): %w", format, err)
	}
	// reject trailing tokens (e.g. concatenated JSON)
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		if err == nil {
			return nil, errors.New("invalid config: trailing data")
		}
		return nil, err
	}

	applyEnv(&cfg)
	applyDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyEnv(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv("TELEGRAM_TOKEN")); v != "" {
		cfg.Telegram.Token = v
	}
	if v := strings.TrimSpace(os.Getenv("REDIS_URL")); v != "" {
		cfg.Subscribers.RedisURL = v
	}
	if v := strings.TrimSpace(os.Getenv("BROADCAST_CHAT_ID")); v != "" {
		cfg.Telegram.BroadcastChat = v
	}
}

// Validate rejects configurations the process must not start with. A missing
// token or an unusable subscriber backend would only fail later, mid-network;
// catch them before any connection is attempted.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Telegram.Token) == "" {
		return errors.New("telegram.token is required (or set TELEGRAM_TOKEN)")
	}
	switch strings.ToLower(strings.TrimSpace(c.Subscribers.Driver)) {
	case "redis":
		if strings.TrimSpace(c.Subscribers.RedisURL) == "" {
			return errors.New("subscribers.redis_url is required for the redis driver (or set REDIS_URL)")
		}
	case "file", "sqlite", "sqlite3":
		if strings.TrimSpace(c.Subscribers.Path) == "" {
			return errors.New("subscribers.path is required for the " + c.Subscribers.Driver + " driver")
		}
	default:
		return fmt.Errorf("unknown subscribers.driver %q", c.Subscribers.Driver)
	}
	if _, _, err := ParseClock("market.open", c.Market.Open); err != nil {
		return err
	}
	if _, _, err := ParseClock("market.close", c.Market.Close); err != nil {
		return err
	}
	if _, err := ParseDurationField("broadcast.chunk_delay", c.Broadcast.ChunkDelay); err != nil {
		return err
	}
	if _, err := ParseDurationField("telegram.poll_timeout", c.Telegram.PollTimeout); err != nil {
		return err
	}
	if _, err := ParseDurationField("quotes.timeout", c.Quotes.Timeout); err != nil {
		return err
	}
	if c.Schedule.Enabled && strings.TrimSpace(c.Schedule.Spec) == "" {
		return errors.New("schedule.spec is required when schedule.enabled")
	}
	return nil
}

// coerceToJSONBytes converts YAML config to JSON bytes so the strict JSON
// decoder can be reused for both formats.
func coerceToJSONBytes(path string, data []byte) ([]byte, string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".yaml" && ext != ".yml" {
		return data, "json", nil
	}
	var v any
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, "yaml", fmt.Errorf("yaml unmarshal: %w", err)
	}
	jb, err := json.Marshal(v)
	if err != nil {
		return nil, "yaml", fmt.Errorf("yaml->json: %w", err)
	}
	return jb, "yaml", nil
}
