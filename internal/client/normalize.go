package client

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/erazemk/lostfound/internal/model"
)

// rawItem accepts every shape the service has used for items. Older records
// carry title/userId/userName, newer ones name/postedById/postedByName.
type rawItem struct {
	ID            int64           `json:"id"`
	Name          string          `json:"name"`
	Title         string          `json:"title"`
	Description   string          `json:"description"`
	Category      string          `json:"category"`
	Location      string          `json:"location"`
	Status        string          `json:"status"`
	PostedByID    *int64          `json:"postedById"`
	UserID        *int64          `json:"userId"`
	PostedByName  string          `json:"postedByName"`
	UserName      string          `json:"userName"`
	ImageURL      string          `json:"imageUrl"`
	ImageURLSnake string          `json:"image_url"`
	Image         string          `json:"image"`
	Reward        json.RawMessage `json:"reward"`
	ContactInfo   string          `json:"contactInfo"`
	CreateAt      string          `json:"createAt"`
	CreatedAt     string          `json:"createdAt"`
	DateReported  string          `json:"dateReported"`
	UpdatedAt     string          `json:"updatedAt"`
}

// rawConfirmation is the wire form of a found report.
type rawConfirmation struct {
	ID                int64  `json:"id"`
	ItemID            int64  `json:"itemId"`
	ItemTitle         string `json:"itemTitle"`
	FinderID          int64  `json:"finderId"`
	FinderName        string `json:"finderName"`
	OwnerID           int64  `json:"ownerId"`
	OwnerName         string `json:"ownerName"`
	FinderConfirmed   bool   `json:"finderConfirmed"`
	OwnerConfirmed    bool   `json:"ownerConfirmed"`
	FinderConfirmedAt string `json:"finderConfirmedAt"`
	OwnerConfirmedAt  string `json:"ownerConfirmedAt"`
	CreatedAt         string `json:"createdAt"`
	FinderMessage     string `json:"finderMessage"`
	Message           string `json:"message"`
}

// normalizeItem maps a wire item into the canonical model.
func normalizeItem(r rawItem) model.Item {
	item := model.Item{
		ID:           r.ID,
		Name:         firstNonEmpty(r.Name, r.Title),
		Description:  r.Description,
		Category:     r.Category,
		Location:     r.Location,
		Status:       model.ParseStatus(r.Status),
		PostedByName: firstNonEmpty(r.PostedByName, r.UserName),
		ImageURL:     firstNonEmpty(r.ImageURL, r.ImageURLSnake, r.Image),
		Reward:       parseWireReward(r.Reward),
		ContactInfo:  r.ContactInfo,
		CreatedAt:    parseTime(firstNonEmpty(r.CreatedAt, r.CreateAt, r.DateReported)),
		UpdatedAt:    parseTime(r.UpdatedAt),
	}
	switch {
	case r.PostedByID != nil:
		item.PostedByID = *r.PostedByID
	case r.UserID != nil:
		item.PostedByID = *r.UserID
	}
	return item
}

func normalizeItems(raw []rawItem) []model.Item {
	items := make([]model.Item, 0, len(raw))
	for _, r := range raw {
		items = append(items, normalizeItem(r))
	}
	return items
}

// normalizeConfirmation maps a wire found report into the canonical model.
func normalizeConfirmation(r rawConfirmation) model.Confirmation {
	return model.Confirmation{
		ID:                r.ID,
		ItemID:            r.ItemID,
		ItemTitle:         r.ItemTitle,
		FinderID:          r.FinderID,
		FinderName:        r.FinderName,
		OwnerID:           r.OwnerID,
		OwnerName:         r.OwnerName,
		FinderConfirmed:   r.FinderConfirmed,
		OwnerConfirmed:    r.OwnerConfirmed,
		FinderConfirmedAt: parseTimePtr(r.FinderConfirmedAt),
		OwnerConfirmedAt:  parseTimePtr(r.OwnerConfirmedAt),
		CreatedAt:         parseTime(r.CreatedAt),
		Message:           firstNonEmpty(r.FinderMessage, r.Message),
	}
}

func normalizeConfirmations(raw []rawConfirmation) []model.Confirmation {
	out := make([]model.Confirmation, 0, len(raw))
	for _, r := range raw {
		out = append(out, normalizeConfirmation(r))
	}
	return out
}

// parseWireReward accepts a number, a numeric string or null. Anything else,
// including negative amounts, is treated as no reward.
func parseWireReward(raw json.RawMessage) *float64 {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil
		}
		v, err := model.ParseReward(s)
		if err != nil {
			return nil
		}
		return v
	}
	v, err := strconv.ParseFloat(string(raw), 64)
	if err != nil || v < 0 {
		return nil
	}
	return &v
}

// Timestamp layouts seen from the service: ISO-8601 with and without zone.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseTime(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

func parseTimePtr(s string) *time.Time {
	t := parseTime(s)
	if t.IsZero() {
		return nil
	}
	return &t
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
