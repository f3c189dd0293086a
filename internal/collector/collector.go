package collector

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/go-telegram/bot/models"

	"github.com/ykravets/collectorbot/internal/database"
)

// DuplicateChecker reports whether an update id was already claimed by a
// concurrent or very recent ingestion cycle.
type DuplicateChecker interface {
	IsDuplicate(ctx context.Context, updateID int64) bool
}

// Outcome is the terminal state of one ingestion cycle.
type Outcome string

const (
	// OutcomeIngested means the update was recorded as an event.
	OutcomeIngested Outcome = "ingested"
	// OutcomeDuplicate means the update was suppressed by the dedup cache.
	OutcomeDuplicate Outcome = "duplicate"
	// OutcomeFailed means the cycle was abandoned; Err carries the cause.
	OutcomeFailed Outcome = "failed"
)

// Result reports how an ingestion cycle ended, so callers and tests can
// assert on the outcome without parsing logs.
type Result struct {
	Outcome Outcome
	Event   *database.Event
	Err     error
}

// Collector sequences one ingestion cycle per inbound update: dedup check,
// user and chat resolution, classification, and event persistence.
type Collector struct {
	logger *slog.Logger
	store  database.Store
	dedup  DuplicateChecker
}

// New creates a Collector over the given store and dedup checker.
func New(logger *slog.Logger, store database.Store, dedup DuplicateChecker) *Collector {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Collector{
		logger: logger.With("component", "collector"),
		store:  store,
		dedup:  dedup,
	}
}

// Process runs one ingestion cycle. All errors are contained here: the
// cycle is abandoned and the cause is logged and returned in the Result,
// never propagated, so one malformed update cannot halt the ingestion of
// the next. There is no retry and no compensating write; a cycle that
// fails after resolving entities simply leaves them resolved.
func (c *Collector) Process(ctx context.Context, upd *models.Update) Result {
	if upd == nil {
		err := fmt.Errorf("nil update")
		c.logger.ErrorContext(ctx, "Failed to process update", "error", err)
		return Result{Outcome: OutcomeFailed, Err: err}
	}

	log := c.logger.With("update_id", upd.ID)

	if c.dedup.IsDuplicate(ctx, upd.ID) {
		log.DebugContext(ctx, "Duplicate update, skipping")
		return Result{Outcome: OutcomeDuplicate}
	}

	var userRef, chatRef sql.NullInt64

	if from := ActorOf(upd); from != nil {
		user, err := c.store.UpsertUser(ctx, userRow(from))
		if err != nil {
			log.ErrorContext(ctx, "Failed to process update", "stage", "upsert_user", "error", err)
			return Result{Outcome: OutcomeFailed, Err: err}
		}
		userRef = sql.NullInt64{Int64: user.ID, Valid: true}
	}

	if chat := ChatOf(upd); chat != nil {
		stored, err := c.store.UpsertChat(ctx, chatRow(chat))
		if err != nil {
			log.ErrorContext(ctx, "Failed to process update", "stage", "upsert_chat", "error", err)
			return Result{Outcome: OutcomeFailed, Err: err}
		}
		chatRef = sql.NullInt64{Int64: stored.ID, Valid: true}
	}

	updateType, text := Classify(upd)

	payload, err := json.Marshal(upd)
	if err != nil {
		log.ErrorContext(ctx, "Failed to process update", "stage", "marshal_payload", "error", err)
		return Result{Outcome: OutcomeFailed, Err: fmt.Errorf("failed to marshal update payload: %w", err)}
	}

	event := &database.Event{
		UpdateID:   upd.ID,
		Type:       string(updateType),
		Text:       nullString(text),
		RawPayload: string(payload),
		UserID:     userRef,
		ChatID:     chatRef,
	}

	saved, err := c.store.SaveEvent(ctx, event)
	if err != nil {
		log.ErrorContext(ctx, "Failed to process update", "stage", "save_event", "error", err)
		return Result{Outcome: OutcomeFailed, Err: err}
	}

	return Result{Outcome: OutcomeIngested, Event: saved}
}

// userRow maps a Telegram user to its persisted form. Optional profile
// fields become NULL when empty so stale values are cleared on re-upsert.
func userRow(from *models.User) *database.User {
	return &database.User{
		TelegramID:   from.ID,
		IsBot:        from.IsBot,
		FirstName:    from.FirstName,
		LastName:     nullIfEmpty(from.LastName),
		Username:     nullIfEmpty(from.Username),
		LanguageCode: nullIfEmpty(from.LanguageCode),
		IsPremium:    from.IsPremium,
	}
}

// chatRow maps a Telegram chat to its persisted form. The optional fields
// are populated by the Bot API only for chat types that support them
// (title for groups and channels, names for private chats); the rest
// arrive empty and are stored as NULL.
func chatRow(chat *models.Chat) *database.Chat {
	return &database.Chat{
		TelegramID: chat.ID,
		Type:       string(chat.Type),
		Title:      nullIfEmpty(chat.Title),
		Username:   nullIfEmpty(chat.Username),
		FirstName:  nullIfEmpty(chat.FirstName),
		LastName:   nullIfEmpty(chat.LastName),
	}
}

func nullIfEmpty(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
