package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ykravets/collectorbot/internal/config"
)

func TestLoadFailsWithoutToken(t *testing.T) {
	if _, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("Load() succeeded without a telegram token, want validation error")
	}
}

func TestLoadDefaultsWithTokenFromEnv(t *testing.T) {
	t.Setenv("BOT_TELEGRAM_TOKEN", "123:abc")

	cfg, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load() = %v", err)
	}

	if cfg.Telegram.Token != "123:abc" {
		t.Errorf("telegram token = %q, want %q", cfg.Telegram.Token, "123:abc")
	}
	if cfg.Logger.Level != "info" {
		t.Errorf("default log level = %q, want %q", cfg.Logger.Level, "info")
	}
	if cfg.Database.Path != "collector.db" {
		t.Errorf("default db path = %q, want %q", cfg.Database.Path, "collector.db")
	}
	if cfg.Redis.Addr != "" {
		t.Errorf("default redis addr = %q, want empty (cache disabled)", cfg.Redis.Addr)
	}
	if cfg.Messages.NoData == "" {
		t.Error("default no_data message is empty")
	}
}

func TestLoadReadsConfigFile(t *testing.T) {
	t.Setenv("BOT_TELEGRAM_TOKEN", "123:abc")

	path := filepath.Join(t.TempDir(), "config.yaml")
	content := []byte("logger:\n  level: debug\n  json: true\nredis:\n  addr: localhost:6379\n")
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("write config file: %v", err)
	}

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load() = %v", err)
	}

	if cfg.Logger.Level != "debug" {
		t.Errorf("log level = %q, want %q", cfg.Logger.Level, "debug")
	}
	if !cfg.Logger.JSON {
		t.Error("logger.json = false, want true")
	}
	if cfg.Redis.Addr != "localhost:6379" {
		t.Errorf("redis addr = %q, want %q", cfg.Redis.Addr, "localhost:6379")
	}
}

func TestLoadRejectsInvalidLogLevel(t *testing.T) {
	t.Setenv("BOT_TELEGRAM_TOKEN", "123:abc")

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("logger:\n  level: verbose\n"), 0o600); err != nil {
		t.Fatalf("write config file: %v", err)
	}

	if _, err := config.Load(path); err == nil {
		t.Fatal("Load() accepted invalid log level, want validation error")
	}
}
