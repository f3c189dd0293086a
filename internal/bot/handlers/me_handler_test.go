package handlers

import (
	"database/sql"
	"strings"
	"testing"
	"time"

	"github.com/ykravets/collectorbot/internal/database"
)

func TestFormatSummary(t *testing.T) {
	t.Parallel()

	first := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	last := time.Date(2025, 3, 2, 18, 30, 0, 0, time.UTC)

	summary := &database.UserSummary{
		User: &database.User{
			TelegramID:   123456,
			FirstName:    "Olena",
			LastName:     sql.NullString{String: "Kovalenko", Valid: true},
			Username:     sql.NullString{String: "olena_k", Valid: true},
			LanguageCode: sql.NullString{String: "uk", Valid: true},
			IsPremium:    true,
		},
		Chat: &database.Chat{
			Type:  "supergroup",
			Title: sql.NullString{String: "Go talks", Valid: true},
		},
		TotalEvents:  3,
		TextMessages: 2,
		EventsByType: []database.TypeCount{
			{Type: "message", Count: 2},
			{Type: "callback_query", Count: 1},
		},
		FirstActivity: &first,
		LastActivity:  &last,
	}

	got := formatSummary(summary)

	for _, want := range []string{
		"Telegram ID: `123456`",
		"Name: Olena Kovalenko",
		"Username: @olena_k",
		"Language: uk",
		"Premium: ✅",
		"Type: supergroup",
		"Title: Go talks",
		"Total events: 3",
		"Text messages: 2",
		"message: 2",
		"callback_query: 1",
		"First activity: 2025-03-01T10:00:00Z",
		"Last activity: 2025-03-02T18:30:00Z",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("formatSummary() missing %q in:\n%s", want, got)
		}
	}
}

func TestFormatSummaryMinimalUser(t *testing.T) {
	t.Parallel()

	summary := &database.UserSummary{
		User: &database.User{TelegramID: 42, FirstName: "Ghost"},
	}

	got := formatSummary(summary)

	if strings.Contains(got, "Username:") {
		t.Error("formatSummary() rendered username for user without one")
	}
	if strings.Contains(got, "*Chat:*") {
		t.Error("formatSummary() rendered chat block without a chat")
	}
	if strings.Contains(got, "First activity:") {
		t.Error("formatSummary() rendered activity range without events")
	}
	if !strings.Contains(got, "Total events: 0") {
		t.Errorf("formatSummary() missing zero metrics in:\n%s", got)
	}
}
