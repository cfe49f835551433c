package config

import (
	"github.com/knadh/koanf/providers/confmap"
)

func DefaultConfig() map[string]interface{} {
	return map[string]interface{}{
		"data_dir": "~/.local/share/reminder-cli",
		"db_path":  "",
		"daemon": map[string]interface{}{
			"poll_interval": 10,
			"pid_file":      "",
		},
		"notify": map[string]interface{}{
			"backends":        []string{BackendDesktop},
			"fallback_to_log": false, // Failed deliveries stay due and are retried next cycle
			"telegram": map[string]interface{}{
				"bot_token":    "",
				"chat_id":      0,
				"api_endpoint": "",
			},
		},
		"log": map[string]interface{}{
			"file":        "",
			"level":       "info",
			"max_size_mb": 1,
		},
		"ui": map[string]interface{}{
			"colored_output": true,
			"time_format":    "2006-01-02 15:04",
		},
	}
}

func NewDefaultProvider() *confmap.Confmap {
	return confmap.Provider(DefaultConfig(), ".")
}

func GetDefaultConfigPath() string {
	return "~/.config/reminder-cli/config.yaml"
}
