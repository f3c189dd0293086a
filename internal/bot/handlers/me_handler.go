package handlers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/ykravets/collectorbot/internal/database"
)

// NewMeHandler returns a handler for the /me command, which replies with
// the activity summary recorded for the sender.
func NewMeHandler(deps HandlerDeps) bot.HandlerFunc {
	return meHandler{deps}.Handle
}

// meHandler processes the /me command using injected dependencies.
type meHandler struct {
	deps HandlerDeps
}

func (h meHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "me")

	// Commands go through the same ingestion path as any other update.
	h.deps.Collector.Process(ctx, update)

	if update.Message == nil {
		log.WarnContext(ctx, "Me handler received update with nil message", "update_id", update.ID)
		return
	}
	chatID := update.Message.Chat.ID

	if update.Message.From == nil {
		h.reply(ctx, b, chatID, h.deps.Config.Messages.NoIdentity, "")
		return
	}

	log.InfoContext(ctx, "Handling /me command", "chat_id", chatID, "user_id", update.Message.From.ID)

	summary, err := h.deps.Store.GetUserSummary(ctx, update.Message.From.ID, chatID)
	if err != nil {
		log.ErrorContext(ctx, "Failed to get user summary", "error", err, "user_id", update.Message.From.ID)
		h.reply(ctx, b, chatID, h.deps.Config.Messages.GeneralError, "")
		return
	}
	if summary == nil {
		h.reply(ctx, b, chatID, h.deps.Config.Messages.NoData, "")
		return
	}

	h.reply(ctx, b, chatID, formatSummary(summary), models.ParseModeMarkdownV1)
}

func (h meHandler) reply(ctx context.Context, b *bot.Bot, chatID int64, text string, parseMode models.ParseMode) {
	params := &bot.SendMessageParams{ChatID: chatID, Text: text}
	if parseMode != "" {
		params.ParseMode = parseMode
	}
	if _, err := b.SendMessage(ctx, params); err != nil {
		h.deps.Logger.ErrorContext(ctx, "Failed to send summary reply", "error", err, "chat_id", chatID)
	}
}

// formatSummary renders the summary as legacy-Markdown text: profile block,
// optional chat block, metrics, per-type distribution, and the activity
// time range.
func formatSummary(s *database.UserSummary) string {
	lines := []string{
		"📊 *About you*\n",
		"*Profile:*",
		fmt.Sprintf("• Telegram ID: `%d`", s.User.TelegramID),
	}

	name := s.User.FirstName
	if s.User.LastName.Valid {
		name += " " + s.User.LastName.String
	}
	lines = append(lines, fmt.Sprintf("• Name: %s", name))

	if s.User.Username.Valid {
		lines = append(lines, fmt.Sprintf("• Username: @%s", s.User.Username.String))
	}
	if s.User.LanguageCode.Valid {
		lines = append(lines, fmt.Sprintf("• Language: %s", s.User.LanguageCode.String))
	}
	if s.User.IsPremium {
		lines = append(lines, "• Premium: ✅")
	}

	if s.Chat != nil {
		lines = append(lines, "\n*Chat:*", fmt.Sprintf("• Type: %s", s.Chat.Type))
		if s.Chat.Title.Valid {
			lines = append(lines, fmt.Sprintf("• Title: %s", s.Chat.Title.String))
		}
	}

	lines = append(lines,
		"\n*Metrics:*",
		fmt.Sprintf("• Total events: %d", s.TotalEvents),
		fmt.Sprintf("• Text messages: %d", s.TextMessages),
	)

	if len(s.EventsByType) > 0 {
		lines = append(lines, "\n*By type:*")
		for _, entry := range s.EventsByType {
			lines = append(lines, fmt.Sprintf("• %s: %d", entry.Type, entry.Count))
		}
	}

	if s.FirstActivity != nil {
		lines = append(lines, fmt.Sprintf("\n• First activity: %s", s.FirstActivity.Format(time.RFC3339)))
	}
	if s.LastActivity != nil {
		lines = append(lines, fmt.Sprintf("• Last activity: %s", s.LastActivity.Format(time.RFC3339)))
	}

	return strings.Join(lines, "\n")
}
