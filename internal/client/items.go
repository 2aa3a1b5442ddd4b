package client

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/erazemk/lostfound/internal/model"
)

type createItemRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Location    string `json:"location"`
	Status      string `json:"status"`
	ImageURL    string `json:"imageUrl,omitempty"`
	Reward      string `json:"reward,omitempty"`
	ContactInfo string `json:"contactInfo,omitempty"`
}

// ListItems fetches the full item feed.
func (c *Client) ListItems(ctx context.Context) ([]model.Item, error) {
	var raw []rawItem
	if err := c.doJSON(ctx, http.MethodGet, "/items", nil, &raw); err != nil {
		return nil, err
	}
	return normalizeItems(raw), nil
}

// MyItems fetches the items posted by the signed-in user.
func (c *Client) MyItems(ctx context.Context) ([]model.Item, error) {
	if err := c.requireAuth(); err != nil {
		return nil, err
	}
	var raw []rawItem
	if err := c.doJSON(ctx, http.MethodGet, "/items/my", nil, &raw); err != nil {
		return nil, err
	}
	return normalizeItems(raw), nil
}

// GetItem fetches a single item.
func (c *Client) GetItem(ctx context.Context, id int64) (*model.Item, error) {
	if id <= 0 {
		return nil, newError(ErrValidation, 0, "Invalid item id.", nil)
	}
	var raw rawItem
	if err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/items/%d", id), nil, &raw); err != nil {
		return nil, err
	}
	item := normalizeItem(raw)
	return &item, nil
}

// CreateItem submits a lost or found report. The returned item is nil when
// the service acknowledges without echoing the record.
func (c *Client) CreateItem(ctx context.Context, n model.NewItem) (*model.Item, error) {
	if err := c.requireAuth(); err != nil {
		return nil, err
	}
	if err := n.Validate(); err != nil {
		return nil, newError(ErrValidation, 0, capitalize(err.Error())+".", err)
	}

	// Reports are created in the binary vocabulary; the found lifecycle is
	// driven by confirmations only.
	status := string(model.StatusLost)
	if n.Status.IsFound() {
		status = string(model.StatusFound)
	}

	req := createItemRequest{
		Name:        strings.TrimSpace(n.Name),
		Description: n.Description,
		Category:    n.Category,
		Location:    n.Location,
		Status:      status,
		ImageURL:    n.ImageURL,
		Reward:      strings.TrimSpace(n.Reward),
		ContactInfo: n.ContactInfo,
	}

	var raw *rawItem
	if err := c.doJSON(ctx, http.MethodPost, "/items", req, &raw); err != nil {
		return nil, err
	}

	slog.Info("item reported", "name", req.Name, "status", status)
	if raw == nil {
		return nil, nil
	}
	item := normalizeItem(*raw)
	return &item, nil
}

// DeleteItem removes an item. Only its poster or an administrator may.
func (c *Client) DeleteItem(ctx context.Context, id int64) error {
	if err := c.requireAuth(); err != nil {
		return err
	}
	if id <= 0 {
		return newError(ErrValidation, 0, "Invalid item id.", nil)
	}
	if err := c.doJSON(ctx, http.MethodDelete, fmt.Sprintf("/items/%d", id), nil, nil); err != nil {
		return err
	}
	slog.Info("item deleted", "item", id)
	return nil
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
