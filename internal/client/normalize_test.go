package client

import (
	"encoding/json"
	"testing"
	"time"
)

func TestParseWireReward(t *testing.T) {
	tests := []struct {
		raw  string
		want *float64
	}{
		{``, nil},
		{`null`, nil},
		{`500`, ptr(500)},
		{`"500"`, ptr(500)},
		{`"12.5"`, ptr(12.5)},
		{`""`, nil},
		{`"abc"`, nil},
		{`-5`, nil},
		{`"-5"`, nil},
		{`true`, nil},
	}
	for _, tt := range tests {
		got := parseWireReward(json.RawMessage(tt.raw))
		switch {
		case tt.want == nil && got != nil:
			t.Errorf("parseWireReward(%s) = %v, want nil", tt.raw, *got)
		case tt.want != nil && (got == nil || *got != *tt.want):
			t.Errorf("parseWireReward(%s) = %v, want %v", tt.raw, got, *tt.want)
		}
	}
}

func TestParseTime(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{"2024-03-01T10:00:00Z", time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)},
		{"2024-03-01T10:00:00.123Z", time.Date(2024, 3, 1, 10, 0, 0, 123000000, time.UTC)},
		{"2024-03-01T10:00:00", time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)},
		{"2024-03-01 10:00:00", time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)},
		{"2024-03-01", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)},
		{"yesterday", time.Time{}},
		{"", time.Time{}},
	}
	for _, tt := range tests {
		if got := parseTime(tt.in); !got.Equal(tt.want) {
			t.Errorf("parseTime(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeItemPrefersCurrentKeys(t *testing.T) {
	var raw rawItem
	data := `{"id": 1, "name": "Phone", "title": "Old phone", "postedById": 4, "userId": 9,
		"postedByName": "Ana", "userName": "Eva", "createdAt": "2024-01-02T00:00:00Z", "dateReported": "2023-01-01"}`
	if err := json.Unmarshal([]byte(data), &raw); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	item := normalizeItem(raw)
	if item.Name != "Phone" || item.PostedByID != 4 || item.PostedByName != "Ana" {
		t.Errorf("unexpected item %+v", item)
	}
	if item.CreatedAt.Year() != 2024 {
		t.Errorf("CreatedAt = %v", item.CreatedAt)
	}
	if item.Status != "" {
		t.Errorf("missing status should be unknown, got %q", item.Status)
	}
}

func TestNormalizeConfirmationTimes(t *testing.T) {
	c := normalizeConfirmation(rawConfirmation{
		ID:                1,
		FinderConfirmed:   true,
		FinderConfirmedAt: "2024-05-01T08:00:00Z",
		FinderMessage:     "gym",
		Message:           "ignored",
	})
	if c.FinderConfirmedAt == nil || c.OwnerConfirmedAt != nil {
		t.Errorf("unexpected timestamps %+v", c)
	}
	if c.Message != "gym" {
		t.Errorf("Message = %q", c.Message)
	}
}

func ptr(v float64) *float64 { return &v }
