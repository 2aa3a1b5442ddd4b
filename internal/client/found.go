package client

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/erazemk/lostfound/internal/model"
)

type markFoundRequest struct {
	ItemID  int64  `json:"itemId"`
	Message string `json:"message"`
}

// MarkItemFound files a found report for a lost item on behalf of the
// signed-in user. Nothing local is updated; callers refetch afterwards.
func (c *Client) MarkItemFound(ctx context.Context, itemID int64, message string) error {
	if err := c.requireAuth(); err != nil {
		return err
	}
	if itemID <= 0 {
		return newError(ErrValidation, 0, "Unable to identify the item. Please try again.", nil)
	}
	message = strings.TrimSpace(message)
	if message == "" {
		return newError(ErrValidation, 0, "Please provide details about where you found the item.", nil)
	}

	err := c.doJSON(ctx, http.MethodPost, "/found/mark", markFoundRequest{ItemID: itemID, Message: message}, nil)
	if err != nil {
		var e *Error
		if errors.As(err, &e) {
			err = classifyMarkFound(e)
		}
		slog.Warn("mark found failed", "item", itemID, "error", err)
		return err
	}

	slog.Info("item marked found", "item", itemID)
	return nil
}

// PendingConfirmations lists found reports on the user's items that still
// await the owner's confirmation, in server order.
func (c *Client) PendingConfirmations(ctx context.Context) ([]model.Confirmation, error) {
	if err := c.requireAuth(); err != nil {
		return nil, err
	}

	var raw []rawConfirmation
	if err := c.doJSON(ctx, http.MethodGet, "/found/pending-confirmation", nil, &raw); err != nil {
		return nil, err
	}

	all := normalizeConfirmations(raw)
	pending := all[:0]
	for _, conf := range all {
		if conf.Actionable() {
			pending = append(pending, conf)
		}
	}
	return pending, nil
}

// ConfirmFound records the owner's confirmation of a found report.
func (c *Client) ConfirmFound(ctx context.Context, confirmationID int64) error {
	if err := c.requireAuth(); err != nil {
		return err
	}
	if confirmationID <= 0 {
		return newError(ErrValidation, 0, "Invalid confirmation id.", nil)
	}

	path := fmt.Sprintf("/found/confirm/%d", confirmationID)
	if err := c.doJSON(ctx, http.MethodPost, path, struct{}{}, nil); err != nil {
		return err
	}

	slog.Info("found report confirmed", "confirmation", confirmationID)
	return nil
}

// FoundReports lists every found report filed for an item. Only the item
// owner and administrators may call it.
func (c *Client) FoundReports(ctx context.Context, itemID int64) ([]model.FoundReport, error) {
	if err := c.requireAuth(); err != nil {
		return nil, err
	}
	if itemID <= 0 {
		return nil, newError(ErrValidation, 0, "Unable to identify the item. Please try again.", nil)
	}

	var raw []rawConfirmation
	if err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/found/reports/%d", itemID), nil, &raw); err != nil {
		return nil, err
	}
	return normalizeConfirmations(raw), nil
}
