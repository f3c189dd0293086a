package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
)

// Store defines the interface for database operations.
// Methods should accept context.Context for cancellation and timeouts.
type Store interface {
	// Ping checks the database connection.
	Ping(ctx context.Context) error

	// UpsertUser creates the user on first sighting or updates its mutable
	// profile fields in place, and returns the stored row.
	UpsertUser(ctx context.Context, user *User) (*User, error)

	// UpsertChat creates or updates the chat and returns the stored row.
	UpsertChat(ctx context.Context, chat *Chat) (*Chat, error)

	// SaveEvent appends one immutable event row and returns it with its
	// assigned id and timestamp.
	SaveEvent(ctx context.Context, event *Event) (*Event, error)

	// GetUserSummary returns the activity rollup for a user, or nil when
	// no user row exists for telegramUserID.
	GetUserSummary(ctx context.Context, telegramUserID, telegramChatID int64) (*UserSummary, error)

	// RunSQLMaintenance performs database maintenance tasks like VACUUM.
	RunSQLMaintenance(ctx context.Context) error
}

// sqlxStore provides an implementation of the Store interface using sqlx.
type sqlxStore struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewStore creates a new Store implementation backed by sqlx.
// It requires a connected sqlx.DB instance and a logger.
func NewStore(db *sqlx.DB, logger *slog.Logger) Store {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &sqlxStore{
		db:     db,
		logger: logger.With("component", "store"),
	}
}

// Ping checks the database connection.
func (s *sqlxStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// UpsertUser inserts the user or, when a row with the same telegram_id
// already exists, updates its mutable profile fields. The telegram_id and
// is_bot columns are create-time only. The whole operation is a single
// atomic statement, so concurrent upserts for the same user cannot lose
// the create and converge last-writer-wins on the profile fields.
func (s *sqlxStore) UpsertUser(ctx context.Context, user *User) (*User, error) {
	if user == nil {
		return nil, fmt.Errorf("cannot upsert nil user")
	}
	if user.TelegramID == 0 {
		return nil, fmt.Errorf("user must have a non-zero telegram_id")
	}

	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	query := `
        INSERT INTO users (telegram_id, is_bot, first_name, last_name, username, language_code, is_premium, created_at, updated_at)
        VALUES (:telegram_id, :is_bot, :first_name, :last_name, :username, :language_code, :is_premium, :created_at, :updated_at)
        ON CONFLICT(telegram_id) DO UPDATE SET
            first_name    = excluded.first_name,
            last_name     = excluded.last_name,
            username      = excluded.username,
            language_code = excluded.language_code,
            is_premium    = excluded.is_premium,
            updated_at    = excluded.updated_at;
    `

	if _, err := s.db.NamedExecContext(ctx, query, user); err != nil {
		s.logger.ErrorContext(ctx, "Error upserting user", "telegram_id", user.TelegramID, "error", err)
		return nil, fmt.Errorf("failed to upsert user %d: %w", user.TelegramID, err)
	}

	stored := &User{}
	selectQuery := `
        SELECT id, created_at, updated_at, telegram_id, is_bot, first_name, last_name, username, language_code, is_premium
        FROM users WHERE telegram_id = ?;
    `
	if err := s.db.GetContext(ctx, stored, selectQuery, user.TelegramID); err != nil {
		s.logger.ErrorContext(ctx, "Error reading back upserted user", "telegram_id", user.TelegramID, "error", err)
		return nil, fmt.Errorf("failed to read back user %d: %w", user.TelegramID, err)
	}

	s.logger.DebugContext(ctx, "User upserted", "telegram_id", stored.TelegramID, "user_id", stored.ID)
	return stored, nil
}

// UpsertChat inserts the chat or updates its mutable fields when a row with
// the same telegram_id exists. Optional fields arrive as NULL when absent,
// so a re-upsert clears values that disappeared from the source.
func (s *sqlxStore) UpsertChat(ctx context.Context, chat *Chat) (*Chat, error) {
	if chat == nil {
		return nil, fmt.Errorf("cannot upsert nil chat")
	}
	if chat.TelegramID == 0 {
		return nil, fmt.Errorf("chat must have a non-zero telegram_id")
	}

	now := time.Now().UTC()
	chat.CreatedAt = now
	chat.UpdatedAt = now

	query := `
        INSERT INTO chats (telegram_id, type, title, username, first_name, last_name, created_at, updated_at)
        VALUES (:telegram_id, :type, :title, :username, :first_name, :last_name, :created_at, :updated_at)
        ON CONFLICT(telegram_id) DO UPDATE SET
            type       = excluded.type,
            title      = excluded.title,
            username   = excluded.username,
            first_name = excluded.first_name,
            last_name  = excluded.last_name,
            updated_at = excluded.updated_at;
    `

	if _, err := s.db.NamedExecContext(ctx, query, chat); err != nil {
		s.logger.ErrorContext(ctx, "Error upserting chat", "telegram_id", chat.TelegramID, "error", err)
		return nil, fmt.Errorf("failed to upsert chat %d: %w", chat.TelegramID, err)
	}

	stored := &Chat{}
	selectQuery := `
        SELECT id, created_at, updated_at, telegram_id, type, title, username, first_name, last_name
        FROM chats WHERE telegram_id = ?;
    `
	if err := s.db.GetContext(ctx, stored, selectQuery, chat.TelegramID); err != nil {
		s.logger.ErrorContext(ctx, "Error reading back upserted chat", "telegram_id", chat.TelegramID, "error", err)
		return nil, fmt.Errorf("failed to read back chat %d: %w", chat.TelegramID, err)
	}

	s.logger.DebugContext(ctx, "Chat upserted", "telegram_id", stored.TelegramID, "chat_id", stored.ID)
	return stored, nil
}

// SaveEvent appends one event row. Uniqueness of update_id is not enforced
// here; duplicate suppression happens earlier, in the dedup cache.
func (s *sqlxStore) SaveEvent(ctx context.Context, event *Event) (*Event, error) {
	if event == nil {
		return nil, fmt.Errorf("cannot save nil event")
	}
	if event.Type == "" {
		return nil, fmt.Errorf("event must have a non-empty type")
	}

	event.CreatedAt = time.Now().UTC()

	query := `
        INSERT INTO events (update_id, type, text, raw_payload, user_id, chat_id, created_at)
        VALUES (:update_id, :type, :text, :raw_payload, :user_id, :chat_id, :created_at);
    `

	result, err := s.db.NamedExecContext(ctx, query, event)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error saving event", "update_id", event.UpdateID, "type", event.Type, "error", err)
		return nil, fmt.Errorf("failed to save event for update %d: %w", event.UpdateID, err)
	}

	if id, idErr := result.LastInsertId(); idErr == nil {
		event.ID = id
	} else {
		s.logger.WarnContext(ctx, "Could not retrieve last insert ID after saving event",
			"update_id", event.UpdateID, "error", idErr)
	}

	s.logger.InfoContext(ctx, "Saved event",
		"event_id", event.ID, "type", event.Type, "update_id", event.UpdateID)
	return event, nil
}

// GetUserSummary computes the per-user activity rollup. It is read-only:
// a missing chat never creates a row, and a missing user returns nil
// without error.
func (s *sqlxStore) GetUserSummary(ctx context.Context, telegramUserID, telegramChatID int64) (*UserSummary, error) {
	user := &User{}
	userQuery := `
        SELECT id, created_at, updated_at, telegram_id, is_bot, first_name, last_name, username, language_code, is_premium
        FROM users WHERE telegram_id = ?;
    `
	err := s.db.GetContext(ctx, user, userQuery, telegramUserID)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		s.logger.DebugContext(ctx, "No user found for summary", "telegram_id", telegramUserID)
		return nil, nil
	case err != nil:
		return nil, fmt.Errorf("failed to get user %d: %w", telegramUserID, err)
	}

	summary := &UserSummary{User: user}

	chat := &Chat{}
	chatQuery := `
        SELECT id, created_at, updated_at, telegram_id, type, title, username, first_name, last_name
        FROM chats WHERE telegram_id = ?;
    `
	err = s.db.GetContext(ctx, chat, chatQuery, telegramChatID)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		// Chat absence is tolerated; the summary just has no chat block.
	case err != nil:
		return nil, fmt.Errorf("failed to get chat %d: %w", telegramChatID, err)
	default:
		summary.Chat = chat
	}

	if err := s.db.GetContext(ctx, &summary.TotalEvents,
		`SELECT COUNT(*) FROM events WHERE user_id = ?;`, user.ID); err != nil {
		return nil, fmt.Errorf("failed to count events for user %d: %w", user.ID, err)
	}

	if err := s.db.GetContext(ctx, &summary.TextMessages,
		`SELECT COUNT(*) FROM events WHERE user_id = ? AND type = 'message' AND text IS NOT NULL;`, user.ID); err != nil {
		return nil, fmt.Errorf("failed to count text messages for user %d: %w", user.ID, err)
	}

	typeQuery := `
        SELECT type, COUNT(*) AS count
        FROM events
        WHERE user_id = ?
        GROUP BY type
        ORDER BY count DESC, type ASC;
    `
	if err := s.db.SelectContext(ctx, &summary.EventsByType, typeQuery, user.ID); err != nil {
		return nil, fmt.Errorf("failed to group events by type for user %d: %w", user.ID, err)
	}

	first, err := s.eventTimestamp(ctx, user.ID, "ASC")
	if err != nil {
		return nil, err
	}
	last, err := s.eventTimestamp(ctx, user.ID, "DESC")
	if err != nil {
		return nil, err
	}
	summary.FirstActivity = first
	summary.LastActivity = last

	s.logger.DebugContext(ctx, "Computed user summary",
		"telegram_id", telegramUserID, "total_events", summary.TotalEvents)
	return summary, nil
}

// eventTimestamp returns the earliest or latest event timestamp for a user,
// or nil when the user has no events. order must be "ASC" or "DESC".
func (s *sqlxStore) eventTimestamp(ctx context.Context, userID int64, order string) (*time.Time, error) {
	var ts time.Time
	query := fmt.Sprintf(
		`SELECT created_at FROM events WHERE user_id = ? ORDER BY created_at %s, id %s LIMIT 1;`, order, order)

	err := s.db.GetContext(ctx, &ts, query, userID)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, nil
	case err != nil:
		return nil, fmt.Errorf("failed to get %s event timestamp for user %d: %w", order, userID, err)
	}
	return &ts, nil
}

// RunSQLMaintenance executes a VACUUM command on the SQLite database.
// VACUUM must run outside a transaction in SQLite.
func (s *sqlxStore) RunSQLMaintenance(ctx context.Context) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	s.logger.InfoContext(ctx, "Starting database maintenance (VACUUM)...")

	if _, err := s.db.ExecContext(ctx, "VACUUM;"); err != nil {
		s.logger.ErrorContext(ctx, "Database maintenance (VACUUM) failed", "error", err)
		return fmt.Errorf("failed to execute VACUUM: %w", err)
	}

	s.logger.InfoContext(ctx, "Database maintenance (VACUUM) completed successfully")
	return nil
}
