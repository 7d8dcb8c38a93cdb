package content

// Config is the process-level configuration, parsed from a JSON file at
// startup. Zero values are filled in by Defaults.
type Config struct {
	Address          string `json:"address"`
	DatabasePath     string `json:"database_path"`
	PublicOrigin     string `json:"public_origin"`
	AdminUsername    string `json:"admin_username"`
	AdminPassword    string `json:"admin_password"`
	TelegramBotToken string `json:"telegram_bot_token"`
	TelegramChatID   string `json:"telegram_chat_id"`
	RedisAddress     string `json:"redis_address"`
	ReleaseMode      bool   `json:"release_mode"`
}

func (c *Config) Defaults() {
	if c.Address == "" {
		c.Address = ":8080"
	}
	if c.DatabasePath == "" {
		c.DatabasePath = "portal.db"
	}
	if c.PublicOrigin == "" {
		c.PublicOrigin = "http://localhost:8080"
	}
	if c.AdminUsername == "" {
		c.AdminUsername = "admin"
	}
}
