package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// Config is the root configuration for orderbot.
type Config struct {
	General  GeneralConfig  `json:"general"`
	Discord  DiscordConfig  `json:"discord"`
	Orders   OrdersConfig   `json:"orders"`
	Monitor  MonitorConfig  `json:"monitor"`
	Telegram TelegramConfig `json:"telegram,omitempty"`
	Store    StoreConfig    `json:"store"`
	Metrics  MetricsConfig  `json:"metrics,omitempty"`
}

type GeneralConfig struct {
	LogLevel string `json:"logLevel"`
}

// DiscordConfig configures the Discord gateway connection.
type DiscordConfig struct {
	Token   string `json:"token"`
	GuildID string `json:"guildId,omitempty"` // optional: restrict to specific guild
}

// OrdersConfig configures the order-receipt pipeline. The channel ids and
// payload URL are required: the gateway refuses to start without them.
type OrdersConfig struct {
	SourceChannelID string `json:"sourceChannelId"`
	OutputChannelID string `json:"outputChannelId"`
	QRPayloadURL    string `json:"qrPayloadUrl"`
	MarkersFile     string `json:"markersFile,omitempty"` // optional YAML classifier override
}

// MonitorConfig configures the periodic website health check.
type MonitorConfig struct {
	Enabled         bool   `json:"enabled"`
	WebsiteURL      string `json:"websiteUrl,omitempty"`
	StatusChannelID string `json:"statusChannelId,omitempty"`
	IntervalMinutes int    `json:"intervalMinutes,omitempty"`
}

// TelegramConfig configures the optional receipt mirror.
type TelegramConfig struct {
	Enabled bool   `json:"enabled"`
	Token   string `json:"token,omitempty"`
	ChatID  string `json:"chatId,omitempty"`
}

type StoreConfig struct {
	DBPath string `json:"dbPath"`
}

// MetricsConfig configures the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `json:"enabled"`
	Addr    string `json:"addr,omitempty"` // host:port for /metrics
}

// DefaultConfigDir returns the default config directory (~/.orderbot).
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".orderbot"
	}
	return filepath.Join(home, ".orderbot")
}

func DefaultConfigPath() string {
	return filepath.Join(DefaultConfigDir(), "config.json")
}

func Load(path string) (*Config, error) {
	path = expandPath(path)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read config file %s: %w", path, err)
	}

	// Substitute environment variables: ${VAR} and ${VAR:-default}
	data = []byte(ExpandEnvVars(string(data)))

	cfg := Defaults()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("cannot parse config file %s: %w", path, err)
	}

	cfg.Store.DBPath = expandPath(cfg.Store.DBPath)
	cfg.Orders.MarkersFile = expandPath(cfg.Orders.MarkersFile)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

// envVarPattern matches ${VAR} and ${VAR:-default} patterns in config strings.
var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(?::-(.*?))?\}`)

// ExpandEnvVars replaces ${VAR} with the environment variable value.
// Supports default values: ${VAR:-default} uses "default" when VAR is unset or empty.
func ExpandEnvVars(input string) string {
	return envVarPattern.ReplaceAllStringFunc(input, func(match string) string {
		groups := envVarPattern.FindStringSubmatch(match)
		if len(groups) < 2 {
			return match
		}
		varName := groups[1]
		defaultVal := ""
		hasDefault := len(groups) >= 3 && groups[2] != ""
		if hasDefault {
			defaultVal = groups[2]
		}

		val, exists := os.LookupEnv(varName)
		if !exists || val == "" {
			if hasDefault {
				return defaultVal
			}
			return match // Keep original if no env var and no default
		}
		return val
	})
}

func Save(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("cannot create config directory: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("cannot marshal config: %w", err)
	}

	return os.WriteFile(path, data, 0o644)
}

// Validate checks that the config has valid values. The order pipeline
// identifiers are mandatory: a gateway started without them would watch
// nothing and dispatch nowhere.
func Validate(cfg *Config) error {
	var errs []string

	if cfg.Discord.Token == "" {
		errs = append(errs, "discord.token is required")
	}
	if cfg.Orders.SourceChannelID == "" {
		errs = append(errs, "orders.sourceChannelId is required")
	}
	if cfg.Orders.OutputChannelID == "" {
		errs = append(errs, "orders.outputChannelId is required")
	}
	if cfg.Orders.QRPayloadURL == "" {
		errs = append(errs, "orders.qrPayloadUrl is required")
	}

	switch cfg.General.LogLevel {
	case "", "debug", "info", "warn", "error":
		// valid
	default:
		errs = append(errs, "general.logLevel must be one of: debug, info, warn, error")
	}

	if cfg.Monitor.Enabled {
		if cfg.Monitor.WebsiteURL == "" {
			errs = append(errs, "monitor.websiteUrl is required when monitor is enabled")
		}
		if cfg.Monitor.StatusChannelID == "" {
			errs = append(errs, "monitor.statusChannelId is required when monitor is enabled")
		}
	}
	if cfg.Monitor.IntervalMinutes < 0 {
		errs = append(errs, "monitor.intervalMinutes must be >= 0")
	}

	if cfg.Telegram.Enabled {
		if cfg.Telegram.Token == "" {
			errs = append(errs, "telegram.token is required when telegram mirror is enabled")
		}
		if cfg.Telegram.ChatID == "" {
			errs = append(errs, "telegram.chatId is required when telegram mirror is enabled")
		}
	}

	if cfg.Metrics.Enabled && cfg.Metrics.Addr == "" {
		errs = append(errs, "metrics.addr is required when metrics are enabled")
	}

	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

// expandPath expands a leading ~/ to the user home directory.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}
