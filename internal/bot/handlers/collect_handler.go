package handlers

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// NewCollectHandler returns the catch-all handler that runs one ingestion
// cycle for every update not matched by a command. It never replies; its
// only job is to feed the pipeline.
func NewCollectHandler(deps HandlerDeps) bot.HandlerFunc {
	return collectHandler{deps}.Handle
}

// collectHandler processes unmatched updates using injected dependencies.
type collectHandler struct {
	deps HandlerDeps
}

func (h collectHandler) Handle(ctx context.Context, _ *bot.Bot, update *models.Update) {
	// Failures are contained inside Process; a broken update must not
	// affect the delivery of the next one.
	h.deps.Collector.Process(ctx, update)
}
