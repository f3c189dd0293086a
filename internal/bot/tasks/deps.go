// Package tasks implements scheduled background tasks for the collector bot.
package tasks

import (
	"log/slog"

	"github.com/ykravets/collectorbot/internal/config"
	"github.com/ykravets/collectorbot/internal/database"
)

// TaskDeps contains all dependencies required by scheduled tasks.
type TaskDeps struct {
	Logger *slog.Logger
	Store  database.Store
	Config *config.Config
}
