package config

import (
	"fmt"
	"strconv"
)

// Modes for the chat.mode key.
const (
	ModeStreaming = "streaming"
	ModeFallback  = "fallback"
)

// Config represents the persistent dalia configuration stored as config.toml
// in the .dalia/ directory. The TOML layout uses sections for logical grouping.
type Config struct {
	Version int          `toml:"version"`
	Client  ClientConfig `toml:"client"`
	Chat    ChatConfig   `toml:"chat"`
	Log     LogConfig    `toml:"log"`
}

// ClientConfig holds settings for connecting to the dalia backend.
// APITarget is a full URL (scheme + host + port).
type ClientConfig struct {
	APITarget string `toml:"api_target,omitempty"`
}

// ChatConfig holds chat behavior settings.
type ChatConfig struct {
	// Mode selects the default delivery mode: "streaming" or "fallback".
	Mode string `toml:"mode,omitempty"`

	// TimeoutSeconds bounds one chat exchange, streaming included.
	TimeoutSeconds uint `toml:"timeout_seconds,omitempty"`
}

// LogConfig holds logging settings. Both default to false, so the
// zero value is the default and merging stays sound.
type LogConfig struct {
	// Debug enables debug-level logging.
	Debug bool `toml:"debug,omitempty"`

	// JSON switches log output to the JSON handler.
	JSON bool `toml:"json,omitempty"`
}

// configKeyInfo maps a user-facing dotted key name to a getter and setter on *Config.
type configKeyInfo struct {
	get func(c *Config) string
	set func(c *Config, v string) error
}

// configKeys is the authoritative map of all supported config keys.
// Keys use dotted notation matching the TOML section structure.
var configKeys = map[string]configKeyInfo{
	"client.api_target": {
		get: func(c *Config) string { return c.Client.APITarget },
		set: func(c *Config, v string) error { c.Client.APITarget = v; return nil },
	},
	"chat.mode": {
		get: func(c *Config) string { return c.Chat.Mode },
		set: func(c *Config, v string) error {
			if v != ModeStreaming && v != ModeFallback {
				return fmt.Errorf("invalid value for chat.mode: %q (available: %s, %s)", v, ModeStreaming, ModeFallback)
			}
			c.Chat.Mode = v
			return nil
		},
	},
	"log.debug": {
		get: func(c *Config) string { return strconv.FormatBool(c.Log.Debug) },
		set: func(c *Config, v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("invalid value for log.debug: %w", err)
			}
			c.Log.Debug = b
			return nil
		},
	},
	"log.json": {
		get: func(c *Config) string { return strconv.FormatBool(c.Log.JSON) },
		set: func(c *Config, v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("invalid value for log.json: %w", err)
			}
			c.Log.JSON = b
			return nil
		},
	},
	"chat.timeout_seconds": {
		get: func(c *Config) string {
			if c.Chat.TimeoutSeconds == 0 {
				return ""
			}
			return strconv.FormatUint(uint64(c.Chat.TimeoutSeconds), 10)
		},
		set: func(c *Config, v string) error {
			n, err := strconv.ParseUint(v, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid value for chat.timeout_seconds: %w", err)
			}
			c.Chat.TimeoutSeconds = uint(n)
			return nil
		},
	},
}
