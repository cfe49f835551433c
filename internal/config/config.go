package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix prefixes every environment override. A double underscore
// separates nesting levels: REMINDER_DAEMON__POLL_INTERVAL sets
// daemon.poll_interval.
const EnvPrefix = "REMINDER_"

// Notification backend names.
const (
	BackendDesktop  = "desktop"
	BackendTelegram = "telegram"
	BackendLog      = "log"
)

type Config struct {
	DataDir string       `koanf:"data_dir" validate:"required"`
	DBPath  string       `koanf:"db_path"` // Defaults to <data_dir>/reminders.db
	Daemon  DaemonConfig `koanf:"daemon"`
	Notify  NotifyConfig `koanf:"notify"`
	Log     LogConfig    `koanf:"log"`
	UI      UIConfig     `koanf:"ui"`
}

type DaemonConfig struct {
	PollInterval int    `koanf:"poll_interval" validate:"min=1,max=3600"` // Seconds between cycles
	PIDFile      string `koanf:"pid_file"`                                // Defaults to <data_dir>/daemon.pid
}

type NotifyConfig struct {
	Backends      []string       `koanf:"backends" validate:"min=1,dive,oneof=desktop telegram log"`
	FallbackToLog bool           `koanf:"fallback_to_log"` // Count a logged reminder as delivered when every backend fails
	Telegram      TelegramConfig `koanf:"telegram"`
}

type TelegramConfig struct {
	BotToken    string `koanf:"bot_token"`
	ChatID      int64  `koanf:"chat_id"`
	APIEndpoint string `koanf:"api_endpoint"` // Bot API URL format; empty uses the public endpoint
}

type LogConfig struct {
	File      string `koanf:"file"` // Defaults to <data_dir>/reminder.log
	Level     string `koanf:"level" validate:"oneof=debug info warn error"`
	MaxSizeMB int    `koanf:"max_size_mb" validate:"min=1"`
}

type UIConfig struct {
	ColoredOutput bool   `koanf:"colored_output"`
	TimeFormat    string `koanf:"time_format" validate:"required"`
}

func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(NewDefaultProvider(), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath != "" {
		configPath = expandPath(configPath)

		if _, err := os.Stat(configPath); err == nil {
			if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("failed to load config file: %w", err)
			}
		}
	}

	if err := k.Load(env.ProviderWithValue(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.DataDir = expandPath(cfg.DataDir)
	cfg.DBPath = expandPath(cfg.DBPath)
	cfg.Daemon.PIDFile = expandPath(cfg.Daemon.PIDFile)
	cfg.Log.File = expandPath(cfg.Log.File)

	return &cfg, nil
}

// envKey maps REMINDER_NOTIFY__FALLBACK_TO_LOG to notify.fallback_to_log.
// List-valued keys accept comma-separated values.
func envKey(key, value string) (string, interface{}) {
	key = strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
	key = strings.ReplaceAll(key, "__", ".")

	if key == "notify.backends" {
		var backends []string
		for _, b := range strings.Split(value, ",") {
			if b = strings.TrimSpace(b); b != "" {
				backends = append(backends, b)
			}
		}
		return key, backends
	}
	return key, value
}

var validate = validator.New()

func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var fieldErrors validator.ValidationErrors
		if errors.As(err, &fieldErrors) && len(fieldErrors) > 0 {
			fe := fieldErrors[0]
			return fmt.Errorf("invalid config value for %s: failed %q rule", fe.Namespace(), fe.Tag())
		}
		return err
	}

	if slices.Contains(c.Notify.Backends, BackendTelegram) {
		if c.Notify.Telegram.BotToken == "" {
			return fmt.Errorf("telegram bot token is required (set REMINDER_NOTIFY__TELEGRAM__BOT_TOKEN or add to config file)")
		}
		if c.Notify.Telegram.ChatID == 0 {
			return fmt.Errorf("telegram chat_id is required when the telegram backend is enabled")
		}
	}

	return nil
}

// DatabasePath returns the SQLite database location.
func (c *Config) DatabasePath() string {
	if c.DBPath != "" {
		return c.DBPath
	}
	return filepath.Join(c.DataDir, "reminders.db")
}

// PIDPath returns the daemon pid file location.
func (c *Config) PIDPath() string {
	if c.Daemon.PIDFile != "" {
		return c.Daemon.PIDFile
	}
	return filepath.Join(c.DataDir, "daemon.pid")
}

// LogPath returns the log file location.
func (c *Config) LogPath() string {
	if c.Log.File != "" {
		return c.Log.File
	}
	return filepath.Join(c.DataDir, "reminder.log")
}

// EnsureDataDir creates the data directory if needed.
func (c *Config) EnsureDataDir() error {
	if err := os.MkdirAll(c.DataDir, 0o755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	return nil
}

func expandPath(path string) string {
	if path == "" {
		return path
	}

	if len(path) >= 2 && path[:2] == "~/" {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}

	return path
}
