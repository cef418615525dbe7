package config

import (
	"fmt"
	"os"
	"strconv"
	"sync"

	"github.com/bytedance/sonic"
)

type GameConfig struct {
	// BotMinDelayMs and BotMaxDelayMs bound the pause before an automated seat acts.
	BotMinDelayMs     int    `json:"bot_min_delay_ms"`
	BotMaxDelayMs     int    `json:"bot_max_delay_ms"`
	TickRate          int    `json:"tick_rate"`
	StorageCollection string `json:"storage_collection"`
	StorageKey        string `json:"storage_key"`
	TicketTTLSeconds  int    `json:"ticket_ttl_seconds"`
	BotIdentitiesPath string `json:"bot_identities_path"`
}

var (
	cfg      *GameConfig
	loadOnce sync.Once
	loadErr  error
)

// DefaultGameConfig returns the settings used when no config file is loaded.
func DefaultGameConfig() GameConfig {
	return GameConfig{
		BotMinDelayMs:     600,
		BotMaxDelayMs:     1100,
		TickRate:          10,
		StorageCollection: "bloktris",
		StorageKey:        "bloktris.match.v1",
		TicketTTLSeconds:  86400,
	}
}

// LoadGameConfig loads the game configuration from the given path. Missing
// fields keep their defaults.
func LoadGameConfig(path string) error {
	loadOnce.Do(func() {
		data, err := os.ReadFile(path)
		if err != nil {
			loadErr = fmt.Errorf("failed to read game config: %w", err)
			return
		}

		c, err := Parse(data)
		if err != nil {
			loadErr = err
			return
		}
		cfg = &c
	})
	return loadErr
}

// Parse decodes a config document over the defaults.
func Parse(data []byte) (GameConfig, error) {
	c := DefaultGameConfig()
	if err := sonic.Unmarshal(data, &c); err != nil {
		return GameConfig{}, fmt.Errorf("failed to unmarshal game config: %w", err)
	}
	c.normalize()
	return c, nil
}

// GetGameConfig returns the global game configuration, or the defaults.
func GetGameConfig() *GameConfig {
	if cfg == nil {
		c := DefaultGameConfig()
		return &c
	}
	return cfg
}

// ApplyEnv overrides delay settings from the runtime environment map.
func (c *GameConfig) ApplyEnv(env map[string]string) {
	if v, err := strconv.Atoi(env["bloktris_bot_min_delay_ms"]); err == nil {
		c.BotMinDelayMs = v
	}
	if v, err := strconv.Atoi(env["bloktris_bot_max_delay_ms"]); err == nil {
		c.BotMaxDelayMs = v
	}
	c.normalize()
}

func (c *GameConfig) normalize() {
	if c.BotMinDelayMs < 0 {
		c.BotMinDelayMs = 0
	}
	if c.BotMaxDelayMs < c.BotMinDelayMs {
		c.BotMaxDelayMs = c.BotMinDelayMs
	}
	if c.TickRate <= 0 {
		c.TickRate = DefaultGameConfig().TickRate
	}
	if c.TicketTTLSeconds <= 0 {
		c.TicketTTLSeconds = DefaultGameConfig().TicketTTLSeconds
	}
	if c.StorageCollection == "" {
		c.StorageCollection = DefaultGameConfig().StorageCollection
	}
	if c.StorageKey == "" {
		c.StorageKey = DefaultGameConfig().StorageKey
	}
}
