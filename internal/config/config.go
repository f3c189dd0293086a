// Package config provides configuration loading, validation, and management
// for the collector bot. It handles reading from YAML files, BOT_* environment
// variables, setting default values, and validating configuration parameters.
package config

import (
	"github.com/go-telegram/bot/models"
)

// Config defines the application configuration parameters for all components
// of the collector bot: logging, Telegram transport, persistence, the dedup
// cache, and the task scheduler.
type Config struct {
	Logger    LoggerConfig    `mapstructure:"logger"`
	Telegram  TelegramConfig  `mapstructure:"telegram"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Messages  MessagesConfig  `mapstructure:"messages"`
}

// LoggerConfig controls log output level and format.
type LoggerConfig struct {
	Level string `mapstructure:"level" validate:"oneof=debug info warn error"`
	JSON  bool   `mapstructure:"json"`
}

// TelegramConfig holds the Bot API credential and runtime bot identity.
type TelegramConfig struct {
	Token string `mapstructure:"token" validate:"required"`

	// BotInfo is populated at startup from GetMe and is not read from config.
	BotInfo *models.User `mapstructure:"-"`
}

// DatabaseConfig holds SQLite connection settings.
type DatabaseConfig struct {
	Path string `mapstructure:"path" validate:"required"`
}

// RedisConfig holds connection settings for the dedup cache.
// An empty Addr disables the cache; ingestion then treats every update as new.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db" validate:"min=0"`
}

// SchedulerConfig configures the background task scheduler.
type SchedulerConfig struct {
	Tasks map[string]TaskConfig `mapstructure:"tasks"`
}

// TaskConfig enables a single named scheduled task with a cron schedule.
type TaskConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Schedule string `mapstructure:"schedule"`
}

// MessagesConfig holds the user-visible reply texts.
type MessagesConfig struct {
	Welcome      string `mapstructure:"welcome"`
	NoData       string `mapstructure:"no_data"`
	NoIdentity   string `mapstructure:"no_identity"`
	GeneralError string `mapstructure:"general_error"`
}
