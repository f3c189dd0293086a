// Package handlers contains Telegram bot command and message handlers,
// along with their registration logic.
package handlers

import (
	"log/slog"

	"github.com/ykravets/collectorbot/internal/collector"
	"github.com/ykravets/collectorbot/internal/config"
	"github.com/ykravets/collectorbot/internal/database"
)

// HandlerDeps provides dependencies for Telegram command handlers.
type HandlerDeps struct {
	Logger    *slog.Logger
	Config    *config.Config
	Store     database.Store
	Collector *collector.Collector
}
