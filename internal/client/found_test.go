package client

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/erazemk/lostfound/internal/auth"
	"github.com/erazemk/lostfound/internal/model"
)

func TestMarkItemFoundValidation(t *testing.T) {
	srv, c, _ := setupClient(t, finder)

	tests := []struct {
		name    string
		itemID  int64
		message string
		want    string
	}{
		{"empty message", 42, "", "Please provide details about where you found the item."},
		{"blank message", 42, "   \t", "Please provide details about where you found the item."},
		{"zero id", 0, "near the library", "Unable to identify the item. Please try again."},
		{"negative id", -1, "near the library", "Unable to identify the item. Please try again."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := c.MarkItemFound(context.Background(), tt.itemID, tt.message)
			if !errors.Is(err, ErrValidation) {
				t.Fatalf("expected ErrValidation, got %v", err)
			}
			if Message(err) != tt.want {
				t.Errorf("message = %q, want %q", Message(err), tt.want)
			}
		})
	}

	if n := len(srv.Requests()); n != 0 {
		t.Errorf("expected no requests, got %d", n)
	}
}

func TestMarkItemFound(t *testing.T) {
	srv, c, _ := setupClient(t, finder)
	item := srv.AddItem(model.Item{Name: "Blue backpack", Status: model.StatusLost, PostedByID: owner.ID, PostedByName: owner.Name})

	if err := c.MarkItemFound(context.Background(), item.ID, "  Found it near the library  "); err != nil {
		t.Fatalf("MarkItemFound: %v", err)
	}

	reports := srv.Reports()
	if len(reports) != 1 {
		t.Fatalf("expected 1 report, got %d", len(reports))
	}
	r := reports[0]
	if r.ItemID != item.ID || r.FinderID != finder.ID || r.OwnerID != owner.ID {
		t.Errorf("unexpected report %+v", r)
	}
	if r.Message != "Found it near the library" {
		t.Errorf("message not trimmed: %q", r.Message)
	}
	if !r.FinderConfirmed || r.OwnerConfirmed {
		t.Errorf("unexpected confirmation flags %+v", r)
	}

	stored, _ := srv.Item(item.ID)
	if stored.Status != model.StatusFoundPending {
		t.Errorf("item status = %s, want FOUND_PENDING", stored.Status)
	}
}

func TestMarkItemFoundServerRejections(t *testing.T) {
	srv, c, _ := setupClient(t, finder)
	mine := srv.AddItem(model.Item{Name: "Keys", Status: model.StatusLost, PostedByID: finder.ID})
	theirs := srv.AddItem(model.Item{Name: "Wallet", Status: model.StatusLost, PostedByID: owner.ID})
	srv.AddReport(model.FoundReport{ItemID: theirs.ID, FinderID: finder.ID, FinderConfirmed: true})

	tests := []struct {
		name   string
		itemID int64
		kind   error
		msg    string
	}{
		{"missing item", 999, ErrInvalidItem, "This item no longer exists or has been removed."},
		{"own item", mine.ID, ErrSelfReport, "You cannot report your own item as found."},
		{"duplicate", theirs.ID, ErrDuplicateReport, "You have already reported this item as found."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := c.MarkItemFound(context.Background(), tt.itemID, "on a bench")
			if !errors.Is(err, tt.kind) {
				t.Fatalf("expected %v, got %v", tt.kind, err)
			}
			if Message(err) != tt.msg {
				t.Errorf("message = %q, want %q", Message(err), tt.msg)
			}
		})
	}

	if n := len(srv.Reports()); n != 1 {
		t.Errorf("expected reports to stay at 1, got %d", n)
	}
}

func TestMarkItemFoundOtherBadRequest(t *testing.T) {
	srv, c, _ := setupClient(t, finder)
	srv.Intercept(func(w http.ResponseWriter, r *http.Request) bool {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"Message too long"}`))
		return true
	})

	err := c.MarkItemFound(context.Background(), 5, "near the gym")
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if Message(err) != "Message too long" {
		t.Errorf("message = %q", Message(err))
	}
}

func TestMarkItemFoundNotFoundStatus(t *testing.T) {
	srv, c, _ := setupClient(t, finder)
	srv.Intercept(func(w http.ResponseWriter, r *http.Request) bool {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"message":"Item 5 does not exist"}`))
		return true
	})

	err := c.MarkItemFound(context.Background(), 5, "near the gym")
	if !errors.Is(err, ErrInvalidItem) {
		t.Fatalf("expected ErrInvalidItem, got %v", err)
	}
	if errors.Is(err, ErrNotFound) {
		t.Error("404 from mark-found should not surface as ErrNotFound")
	}
	if Message(err) != "This item no longer exists or has been removed." {
		t.Errorf("message = %q", Message(err))
	}
}

func TestPendingConfirmations(t *testing.T) {
	srv, c, _ := setupClient(t, owner)
	a := srv.AddItem(model.Item{Name: "Umbrella", PostedByID: owner.ID, Status: model.StatusFoundPending})
	b := srv.AddItem(model.Item{Name: "Laptop", PostedByID: owner.ID, Status: model.StatusFoundPending})
	other := srv.AddItem(model.Item{Name: "Scarf", PostedByID: finder.ID})

	srv.AddReport(model.FoundReport{ID: 7, ItemID: b.ID, FinderID: finder.ID, FinderName: finder.Name, FinderConfirmed: true, Message: "cafeteria"})
	srv.AddReport(model.FoundReport{ID: 8, ItemID: a.ID, FinderID: admin.ID, FinderConfirmed: true, OwnerConfirmed: true})
	srv.AddReport(model.FoundReport{ID: 9, ItemID: a.ID, FinderID: finder.ID, FinderConfirmed: true, Message: "bus stop"})
	srv.AddReport(model.FoundReport{ID: 10, ItemID: other.ID, FinderID: owner.ID, FinderConfirmed: true})

	pending, err := c.PendingConfirmations(context.Background())
	if err != nil {
		t.Fatalf("PendingConfirmations: %v", err)
	}
	if len(pending) != 2 {
		t.Fatalf("expected 2 pending, got %d", len(pending))
	}
	if pending[0].ID != 7 || pending[1].ID != 9 {
		t.Errorf("unexpected order: %d, %d", pending[0].ID, pending[1].ID)
	}
	if pending[0].ItemTitle != "Laptop" || pending[0].Message != "cafeteria" || pending[0].FinderName != "Bor" {
		t.Errorf("unexpected entry %+v", pending[0])
	}
}

func TestPendingConfirmationsDropsOwnerConfirmed(t *testing.T) {
	srv, c, _ := setupClient(t, owner)
	srv.Intercept(func(w http.ResponseWriter, r *http.Request) bool {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"id": 3, "itemId": 1, "itemTitle": "Mug", "finderConfirmed": true, "ownerConfirmed": true},
			{"id": 4, "itemId": 2, "itemTitle": "Pen", "finderConfirmed": true, "ownerConfirmed": false, "message": "desk"}
		]`))
		return true
	})

	pending, err := c.PendingConfirmations(context.Background())
	if err != nil {
		t.Fatalf("PendingConfirmations: %v", err)
	}
	if len(pending) != 1 || pending[0].ID != 4 {
		t.Fatalf("unexpected pending %+v", pending)
	}
	if pending[0].Message != "desk" {
		t.Errorf("legacy message key not mapped: %q", pending[0].Message)
	}
}

func TestConfirmFound(t *testing.T) {
	srv, c, _ := setupClient(t, owner)
	item := srv.AddItem(model.Item{Name: "Umbrella", PostedByID: owner.ID, Status: model.StatusFoundPending})
	report := srv.AddReport(model.FoundReport{ItemID: item.ID, FinderID: finder.ID, FinderConfirmed: true})

	if err := c.ConfirmFound(context.Background(), report.ID); err != nil {
		t.Fatalf("ConfirmFound: %v", err)
	}

	stored, _ := srv.Item(item.ID)
	if stored.Status != model.StatusFoundConfirmed {
		t.Errorf("item status = %s, want FOUND_CONFIRMED", stored.Status)
	}
	if r := srv.Reports()[0]; !r.BothConfirmed() {
		t.Errorf("expected both confirmed, got %+v", r)
	}

	pending, err := c.PendingConfirmations(context.Background())
	if err != nil {
		t.Fatalf("PendingConfirmations: %v", err)
	}
	if len(pending) != 0 {
		t.Errorf("expected no pending confirmations, got %d", len(pending))
	}
}

func TestConfirmFoundErrors(t *testing.T) {
	srv, c, _ := setupClient(t, finder)
	item := srv.AddItem(model.Item{Name: "Umbrella", PostedByID: owner.ID})
	report := srv.AddReport(model.FoundReport{ItemID: item.ID, FinderID: admin.ID, FinderConfirmed: true})

	if err := c.ConfirmFound(context.Background(), 0); !errors.Is(err, ErrValidation) {
		t.Errorf("expected ErrValidation for id 0, got %v", err)
	}

	// Only the owner may confirm; the service answers 404 for anyone else.
	if err := c.ConfirmFound(context.Background(), report.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	stored, _ := srv.Item(item.ID)
	if stored.Status != model.StatusLost {
		t.Errorf("item status changed to %s", stored.Status)
	}
}

func TestFoundReports(t *testing.T) {
	srv, c, _ := setupClient(t, owner)
	item := srv.AddItem(model.Item{Name: "Umbrella", PostedByID: owner.ID})
	srv.AddReport(model.FoundReport{ItemID: item.ID, FinderID: finder.ID, FinderConfirmed: true})
	srv.AddReport(model.FoundReport{ItemID: item.ID, FinderID: admin.ID, FinderConfirmed: true, OwnerConfirmed: true})

	reports, err := c.FoundReports(context.Background(), item.ID)
	if err != nil {
		t.Fatalf("FoundReports: %v", err)
	}
	if len(reports) != 2 {
		t.Fatalf("expected 2 reports, got %d", len(reports))
	}
	if !reports[1].BothConfirmed() {
		t.Error("expected second report to be confirmed by both")
	}

	other := New(srv.URL, auth.NewSession(srv.Token(t, finder), nil))
	if _, err := other.FoundReports(context.Background(), item.ID); !errors.Is(err, ErrForbidden) {
		t.Errorf("expected ErrForbidden, got %v", err)
	}
}
