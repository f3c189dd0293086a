package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Load reads configuration in order of precedence:
// 1. Default values
// 2. The YAML file at configPath (optional)
// 3. BOT_* environment variables (e.g. BOT_TELEGRAM_TOKEN)
//
// The resulting configuration is validated before being returned; a missing
// Telegram token is a fatal startup error, not a per-update concern.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetEnvPrefix("BOT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// The config file is optional; env vars and defaults may be enough.
	if _, err := os.Stat(configPath); err == nil {
		v.SetConfigFile(configPath)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %q: %w", configPath, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// setDefaults registers default values for all optional configuration keys.
func setDefaults(v *viper.Viper) {
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.json", false)

	// Registering the key makes viper consider the BOT_TELEGRAM_TOKEN
	// env var during Unmarshal; validation still rejects an empty value.
	v.SetDefault("telegram.token", "")

	v.SetDefault("database.path", "collector.db")

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("messages.welcome",
		"Hi, %s! 👋\n\n"+
			"I'm a collector bot. I record every message and event in this chat.\n\n"+
			"Available commands:\n"+
			"/start — show these instructions\n"+
			"/me — see what I know about you\n\n"+
			"Just write anything — I'll keep it all!")
	v.SetDefault("messages.no_data", "I don't have any data about you yet. Try again later!")
	v.SetDefault("messages.no_identity", "Could not determine the user or chat.")
	v.SetDefault("messages.general_error", "An error occurred. Please try again later.")
}
