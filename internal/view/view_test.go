package view

import (
	"bytes"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/erazemk/lostfound/internal/client"
	"github.com/erazemk/lostfound/internal/feed"
	"github.com/erazemk/lostfound/internal/model"
	"github.com/erazemk/lostfound/internal/pending"
)

var now = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func newPrinter() (*Printer, *bytes.Buffer) {
	var buf bytes.Buffer
	return New(&buf, WithClock(func() time.Time { return now })), &buf
}

func TestBadge(t *testing.T) {
	p, _ := newPrinter()
	tests := []struct {
		status model.Status
		want   string
	}{
		{model.StatusLost, "LOST"},
		{model.StatusFoundPending, "FOUND PENDING"},
		{model.StatusFoundConfirmed, "FOUND CONFIRMED"},
		{model.StatusFound, "FOUND CONFIRMED"},
		{model.StatusUnknown, "UNKNOWN"},
	}
	for _, tt := range tests {
		if got := p.Badge(tt.status); !strings.Contains(got, tt.want) {
			t.Errorf("Badge(%q) = %q, want it to contain %q", tt.status, got, tt.want)
		}
	}
}

func TestCardReward(t *testing.T) {
	p, _ := newPrinter()
	reward := 500.0
	zero := 0.0

	with := p.Card(model.Item{ID: 1, Name: "Wallet", Status: model.StatusLost, Reward: &reward})
	if !strings.Contains(with, "Reward: ₹500") {
		t.Errorf("expected reward block, got:\n%s", with)
	}

	for _, item := range []model.Item{
		{ID: 2, Name: "Pen", Status: model.StatusLost},
		{ID: 3, Name: "Cap", Status: model.StatusLost, Reward: &zero},
	} {
		if got := p.Card(item); strings.Contains(got, "Reward") {
			t.Errorf("item %d: unexpected reward block:\n%s", item.ID, got)
		}
	}
}

func TestCardMeta(t *testing.T) {
	p, _ := newPrinter()
	card := p.Card(model.Item{
		ID:          4,
		Name:        "Blue backpack found",
		Status:      model.StatusLost,
		Location:    "Central Library",
		Category:    "Other",
		Description: strings.Repeat("x", 200),
		CreatedAt:   now.Add(-2 * time.Hour),
	})

	for _, want := range []string{"#4", "Anonymous User", "Central Library", "Other", "2 hours ago", "…"} {
		if !strings.Contains(card, want) {
			t.Errorf("card missing %q:\n%s", want, card)
		}
	}
	// A LOST item renamed as found shows as confirmed.
	if !strings.Contains(card, "FOUND CONFIRMED") {
		t.Errorf("expected effective status badge:\n%s", card)
	}
}

func TestFeedOutput(t *testing.T) {
	items := make([]model.Item, 15)
	for i := range items {
		items[i] = model.Item{ID: int64(i + 1), Name: fmt.Sprintf("Item %d", i+1), Status: model.StatusLost}
	}
	items[0].Status = model.StatusFoundPending

	p, buf := newPrinter()
	p.Feed(feed.New(items))
	out := buf.String()

	for _, want := range []string{"all (15)", "lost (14)", "found (1)", "pending (1)", "Showing 12 of 15", "Load more (3 remaining)"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "#13 ") {
		t.Error("item 13 should not be displayed on the first page")
	}
}

func TestFeedEmpty(t *testing.T) {
	f := feed.New(nil)
	p, buf := newPrinter()
	p.Feed(f)
	if !strings.Contains(buf.String(), "No items found") {
		t.Errorf("unexpected output:\n%s", buf.String())
	}
}

func TestPendingOutput(t *testing.T) {
	reward := 250.0
	entries := []pending.Entry{
		{
			Confirmation:       model.Confirmation{ID: 7, ItemID: 70, FinderName: "Bor", Message: "by the fountain"},
			Item:               pending.ItemData{Name: "Laptop", Location: "Cafeteria", Reward: &reward, Live: true},
			CreatedAtFormatted: "1 hour ago",
		},
		{
			Confirmation: model.Confirmation{ID: 9, ItemID: 90, ItemTitle: "Keys"},
			Item:         pending.ItemData{Name: "Keys"},
		},
	}

	p, buf := newPrinter()
	p.Pending(entries)
	out := buf.String()
	for _, want := range []string{"[7] Laptop", "Bor reported finding this item 1 hour ago", `"by the fountain"`, "Reward: ₹250", "[9] Keys", "Item details unavailable"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestReportsOutput(t *testing.T) {
	p, buf := newPrinter()
	p.Reports([]model.FoundReport{
		{ID: 1, FinderName: "Bor", FinderConfirmed: true, Message: "gym"},
		{ID: 2, FinderID: 5, FinderConfirmed: true, OwnerConfirmed: true},
	})
	out := buf.String()
	for _, want := range []string{"[1] Bor (awaiting owner)", `"gym"`, "[2] user 5 (confirmed)"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestNotify(t *testing.T) {
	var buf bytes.Buffer
	Notify(&buf, fmt.Errorf("mark found: %w", client.ErrDuplicateReport))
	if !strings.Contains(buf.String(), "duplicate found report") {
		t.Errorf("unexpected output %q", buf.String())
	}

	buf.Reset()
	Notify(&buf, client.ErrAuthRequired)
	if !strings.Contains(buf.String(), "lostfound login") {
		t.Errorf("expected login hint, got %q", buf.String())
	}

	buf.Reset()
	Notify(&buf, nil)
	if buf.Len() != 0 {
		t.Errorf("expected no output for nil error, got %q", buf.String())
	}
}

func TestErrorForNamesSubject(t *testing.T) {
	p, buf := newPrinter()
	p.ErrorFor("#7", fmt.Errorf("confirm: %w", pending.ErrUnknownEntry))
	p.ErrorFor("#9", pending.ErrInFlight)

	out := buf.String()
	for _, want := range []string{"#7: no such pending confirmation", "#9: confirmation already in progress"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in %q", want, out)
		}
	}
}

func TestUsersOutput(t *testing.T) {
	p, buf := newPrinter()
	p.Users([]model.User{
		{ID: 1, Name: "Ana", Email: "ana@example.edu", Role: model.RoleAdmin},
		{ID: 2, Name: "Bor", Role: model.RoleUser},
	})
	out := buf.String()
	for _, want := range []string{"#1  Ana  admin  ana@example.edu", "#2  Bor  user"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	buf.Reset()
	p.Users(nil)
	if !strings.Contains(buf.String(), "No users.") {
		t.Errorf("unexpected output %q", buf.String())
	}
}

func TestUserOutput(t *testing.T) {
	p, buf := newPrinter()
	expires := now.Add(3 * time.Hour)
	p.User(&model.User{ID: 1, Name: "Ana", Email: "ana@example.edu", Role: model.RoleAdmin}, &expires)
	out := buf.String()
	for _, want := range []string{"Ana (id 1, admin)", "ana@example.edu", "Session expires 3 hours from now"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	buf.Reset()
	p.User(nil, nil)
	if !strings.Contains(buf.String(), "Not logged in") {
		t.Errorf("unexpected output %q", buf.String())
	}
}
