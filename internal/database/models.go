package database

import (
	"database/sql"
	"time"
)

// User is a persisted Telegram user, keyed by the external Telegram ID.
// Created on first sighting and updated in place on every subsequent one;
// never deleted by this subsystem.
type User struct {
	ID        int64     `db:"id"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`

	TelegramID   int64          `db:"telegram_id"`
	IsBot        bool           `db:"is_bot"`
	FirstName    string         `db:"first_name"`
	LastName     sql.NullString `db:"last_name"`
	Username     sql.NullString `db:"username"`
	LanguageCode sql.NullString `db:"language_code"`
	IsPremium    bool           `db:"is_premium"`
}

// Chat is a persisted Telegram chat, keyed by the external Telegram ID.
// Same create-or-update lifecycle as User.
type Chat struct {
	ID        int64     `db:"id"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`

	TelegramID int64          `db:"telegram_id"`
	Type       string         `db:"type"`
	Title      sql.NullString `db:"title"`
	Username   sql.NullString `db:"username"`
	FirstName  sql.NullString `db:"first_name"`
	LastName   sql.NullString `db:"last_name"`
}

// Event is one append-only record of an ingested update. Immutable once
// created. UpdateID is deliberately not unique: the dedup cache is a
// best-effort, time-windowed guard, and redeliveries outside its window are
// recorded again rather than rejected.
type Event struct {
	ID        int64     `db:"id"`
	CreatedAt time.Time `db:"created_at"`

	UpdateID   int64          `db:"update_id"`
	Type       string         `db:"type"`
	Text       sql.NullString `db:"text"`
	RawPayload string         `db:"raw_payload"`
	UserID     sql.NullInt64  `db:"user_id"`
	ChatID     sql.NullInt64  `db:"chat_id"`
}

// TypeCount is one bucket of the per-type event distribution.
type TypeCount struct {
	Type  string `db:"type"`
	Count int64  `db:"count"`
}

// UserSummary is the read-only activity rollup returned for one user.
// Chat is nil when the chat has never been seen; the timestamps are nil
// when the user has no recorded events.
type UserSummary struct {
	User          *User
	Chat          *Chat
	TotalEvents   int64
	TextMessages  int64
	EventsByType  []TypeCount
	FirstActivity *time.Time
	LastActivity  *time.Time
}
