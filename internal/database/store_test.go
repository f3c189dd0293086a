package database_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/ykravets/collectorbot/internal/database"
)

func newTestStore(t *testing.T) database.Store {
	t.Helper()

	db, err := database.NewDB(":memory:")
	if err != nil {
		t.Fatalf("init database: %v", err)
	}
	t.Cleanup(func() { database.CloseDB(db) })

	return database.NewStore(db, nil)
}

func nullStr(s string) sql.NullString {
	return sql.NullString{String: s, Valid: true}
}

func TestUpsertUserCreatesAndConverges(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	created, err := store.UpsertUser(ctx, &database.User{
		TelegramID: 1001,
		IsBot:      false,
		FirstName:  "Olena",
		Username:   nullStr("olena_k"),
		IsPremium:  false,
	})
	if err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	if created.ID == 0 {
		t.Fatal("created user has no surrogate id")
	}

	// Repeated upserts with different profile fields converge to the
	// latest values; telegram_id and is_bot stay invariant.
	updated, err := store.UpsertUser(ctx, &database.User{
		TelegramID:   1001,
		IsBot:        true, // must be ignored on update
		FirstName:    "Olena",
		LastName:     nullStr("Kovalenko"),
		Username:     nullStr("olena_kv"),
		LanguageCode: nullStr("uk"),
		IsPremium:    true,
	})
	if err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	if updated.ID != created.ID {
		t.Errorf("surrogate id changed: %d -> %d", created.ID, updated.ID)
	}
	if updated.IsBot {
		t.Error("is_bot changed on update, want create-time value")
	}
	if updated.Username.String != "olena_kv" {
		t.Errorf("username = %q, want %q", updated.Username.String, "olena_kv")
	}
	if !updated.LastName.Valid || updated.LastName.String != "Kovalenko" {
		t.Errorf("last_name = %+v, want %q", updated.LastName, "Kovalenko")
	}
	if !updated.IsPremium {
		t.Error("is_premium not updated")
	}
}

func TestUpsertChatClearsAbsentOptionalFields(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	first, err := store.UpsertChat(ctx, &database.Chat{
		TelegramID: -2001,
		Type:       "supergroup",
		Title:      nullStr("Go talks"),
		Username:   nullStr("gotalks"),
	})
	if err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	if !first.Title.Valid {
		t.Fatal("title not stored on create")
	}

	// A field omitted in a later upsert is cleared, not left stale.
	second, err := store.UpsertChat(ctx, &database.Chat{
		TelegramID: -2001,
		Type:       "supergroup",
		Title:      nullStr("Go talks v2"),
	})
	if err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	if second.ID != first.ID {
		t.Errorf("surrogate id changed: %d -> %d", first.ID, second.ID)
	}
	if second.Title.String != "Go talks v2" {
		t.Errorf("title = %q, want %q", second.Title.String, "Go talks v2")
	}
	if second.Username.Valid {
		t.Errorf("username = %+v, want cleared to null", second.Username)
	}
}

func TestSaveEventWithNullReferences(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	saved, err := store.SaveEvent(ctx, &database.Event{
		UpdateID:   555,
		Type:       "unknown",
		RawPayload: `{"update_id":555}`,
	})
	if err != nil {
		t.Fatalf("save event: %v", err)
	}

	if saved.ID == 0 {
		t.Error("saved event has no id")
	}
	if saved.UserID.Valid || saved.ChatID.Valid {
		t.Errorf("event refs = (%+v, %+v), want both null", saved.UserID, saved.ChatID)
	}
	if saved.CreatedAt.IsZero() {
		t.Error("saved event has no creation timestamp")
	}
}

func TestSaveEventAllowsRepeatedUpdateID(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	// update_id is deliberately not unique at the persistence layer;
	// dedup is the cache's job.
	for i := 0; i < 2; i++ {
		if _, err := store.SaveEvent(ctx, &database.Event{
			UpdateID:   777,
			Type:       "message",
			RawPayload: `{}`,
		}); err != nil {
			t.Fatalf("save event %d: %v", i, err)
		}
	}
}

func TestGetUserSummaryScenario(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	user, err := store.UpsertUser(ctx, &database.User{TelegramID: 3001, FirstName: "Taras"})
	if err != nil {
		t.Fatalf("upsert user: %v", err)
	}
	chat, err := store.UpsertChat(ctx, &database.Chat{TelegramID: 3002, Type: "private", FirstName: nullStr("Taras")})
	if err != nil {
		t.Fatalf("upsert chat: %v", err)
	}

	userRef := sql.NullInt64{Int64: user.ID, Valid: true}
	chatRef := sql.NullInt64{Int64: chat.ID, Valid: true}

	var events []*database.Event
	for _, e := range []*database.Event{
		{UpdateID: 1, Type: "message", Text: nullStr("hello"), RawPayload: `{}`, UserID: userRef, ChatID: chatRef},
		{UpdateID: 2, Type: "message", Text: nullStr("world"), RawPayload: `{}`, UserID: userRef, ChatID: chatRef},
		{UpdateID: 3, Type: "callback_query", Text: nullStr("btn"), RawPayload: `{}`, UserID: userRef, ChatID: chatRef},
	} {
		saved, saveErr := store.SaveEvent(ctx, e)
		if saveErr != nil {
			t.Fatalf("save event %d: %v", e.UpdateID, saveErr)
		}
		events = append(events, saved)
	}

	summary, err := store.GetUserSummary(ctx, 3001, 3002)
	if err != nil {
		t.Fatalf("get summary: %v", err)
	}
	if summary == nil {
		t.Fatal("summary is nil for existing user")
	}

	if summary.User.TelegramID != 3001 {
		t.Errorf("summary user telegram_id = %d, want 3001", summary.User.TelegramID)
	}
	if summary.Chat == nil || summary.Chat.TelegramID != 3002 {
		t.Errorf("summary chat = %+v, want telegram_id 3002", summary.Chat)
	}
	if summary.TotalEvents != 3 {
		t.Errorf("total events = %d, want 3", summary.TotalEvents)
	}
	if summary.TextMessages != 2 {
		t.Errorf("text messages = %d, want 2", summary.TextMessages)
	}

	wantTypes := map[string]int64{"message": 2, "callback_query": 1}
	if len(summary.EventsByType) != len(wantTypes) {
		t.Fatalf("events by type = %+v, want %+v", summary.EventsByType, wantTypes)
	}
	for _, tc := range summary.EventsByType {
		if wantTypes[tc.Type] != tc.Count {
			t.Errorf("count for %q = %d, want %d", tc.Type, tc.Count, wantTypes[tc.Type])
		}
	}

	if summary.FirstActivity == nil || summary.LastActivity == nil {
		t.Fatal("activity timestamps are nil for user with events")
	}
	if !timesClose(*summary.FirstActivity, events[0].CreatedAt) {
		t.Errorf("first activity = %v, want %v", summary.FirstActivity, events[0].CreatedAt)
	}
	if !timesClose(*summary.LastActivity, events[2].CreatedAt) {
		t.Errorf("last activity = %v, want %v", summary.LastActivity, events[2].CreatedAt)
	}
	if summary.FirstActivity.After(*summary.LastActivity) {
		t.Error("first activity is after last activity")
	}
}

func TestGetUserSummaryUnknownUser(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)

	summary, err := store.GetUserSummary(context.Background(), 424242, 434343)
	if err != nil {
		t.Fatalf("get summary: %v", err)
	}
	if summary != nil {
		t.Errorf("summary = %+v, want nil for unknown user", summary)
	}
}

func TestGetUserSummaryToleratesMissingChat(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	if _, err := store.UpsertUser(ctx, &database.User{TelegramID: 5001, FirstName: "Ivan"}); err != nil {
		t.Fatalf("upsert user: %v", err)
	}

	summary, err := store.GetUserSummary(ctx, 5001, -99999)
	if err != nil {
		t.Fatalf("get summary: %v", err)
	}
	if summary == nil {
		t.Fatal("summary is nil for existing user")
	}
	if summary.Chat != nil {
		t.Errorf("summary chat = %+v, want nil", summary.Chat)
	}
	if summary.TotalEvents != 0 {
		t.Errorf("total events = %d, want 0", summary.TotalEvents)
	}
	if summary.FirstActivity != nil || summary.LastActivity != nil {
		t.Error("activity timestamps set for user without events")
	}
}

// timesClose tolerates the sub-second precision loss of the storage roundtrip.
func timesClose(a, b time.Time) bool {
	d := a.Sub(b)
	if d < 0 {
		d = -d
	}
	return d < time.Second
}
