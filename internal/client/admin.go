package client

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/erazemk/lostfound/internal/model"
)

// Administrator operations. The service answers 403 for anyone else, which
// surfaces as ErrForbidden.

// AdminItems fetches every item for moderation.
func (c *Client) AdminItems(ctx context.Context) ([]model.Item, error) {
	if err := c.requireAuth(); err != nil {
		return nil, err
	}
	var raw []rawItem
	if err := c.doJSON(ctx, http.MethodGet, "/admin/items", nil, &raw); err != nil {
		return nil, err
	}
	return normalizeItems(raw), nil
}

// Users lists all registered users.
func (c *Client) Users(ctx context.Context) ([]model.User, error) {
	if err := c.requireAuth(); err != nil {
		return nil, err
	}
	var users []model.User
	if err := c.doJSON(ctx, http.MethodGet, "/users", nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// UserItems fetches the items posted by one user.
func (c *Client) UserItems(ctx context.Context, userID int64) ([]model.Item, error) {
	if err := c.requireAuth(); err != nil {
		return nil, err
	}
	if userID <= 0 {
		return nil, newError(ErrValidation, 0, "Invalid user id.", nil)
	}
	var raw []rawItem
	if err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/users/%d/items", userID), nil, &raw); err != nil {
		return nil, err
	}
	return normalizeItems(raw), nil
}

// DeleteUser removes a user account together with the items it posted.
func (c *Client) DeleteUser(ctx context.Context, userID int64) error {
	if err := c.requireAuth(); err != nil {
		return err
	}
	if userID <= 0 {
		return newError(ErrValidation, 0, "Invalid user id.", nil)
	}
	if err := c.doJSON(ctx, http.MethodDelete, fmt.Sprintf("/users/%d", userID), nil, nil); err != nil {
		return err
	}
	slog.Info("user deleted", "user", userID)
	return nil
}
