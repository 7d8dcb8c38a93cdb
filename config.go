package main

import (
	"encoding/json"
	"os"

	"github.com/rneambassadors/portal/content"
)

// parseConfig loads the JSON config file named by PORTAL_CONFIG (default
// config.json). Secrets may be overridden from the environment so they stay
// out of the file on managed hosts.
func parseConfig(data *content.Config) error {
	path := os.Getenv("PORTAL_CONFIG")
	if path == "" {
		path = "config.json"
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, data); err != nil {
		return err
	}
	applyEnvOverrides(data)
	return nil
}

func applyEnvOverrides(data *content.Config) {
	if v := os.Getenv("PORTAL_ADMIN_PASSWORD"); v != "" {
		data.AdminPassword = v
	}
	if v := os.Getenv("PORTAL_TELEGRAM_BOT_TOKEN"); v != "" {
		data.TelegramBotToken = v
	}
	if v := os.Getenv("PORTAL_TELEGRAM_CHAT_ID"); v != "" {
		data.TelegramChatID = v
	}
	if v := os.Getenv("PORTAL_REDIS_ADDRESS"); v != "" {
		data.RedisAddress = v
	}
}
