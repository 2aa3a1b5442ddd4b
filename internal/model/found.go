package model

import "time"

// FoundReport is a finder's claim that they located a specific item.
type FoundReport struct {
	ID                int64      `json:"id"`
	ItemID            int64      `json:"itemId"`
	ItemTitle         string     `json:"itemTitle"`
	FinderID          int64      `json:"finderId"`
	FinderName        string     `json:"finderName"`
	OwnerID           int64      `json:"ownerId"`
	OwnerName         string     `json:"ownerName"`
	FinderConfirmed   bool       `json:"finderConfirmed"`
	OwnerConfirmed    bool       `json:"ownerConfirmed"`
	FinderConfirmedAt *time.Time `json:"finderConfirmedAt,omitempty"`
	OwnerConfirmedAt  *time.Time `json:"ownerConfirmedAt,omitempty"`
	CreatedAt         time.Time  `json:"createdAt,omitzero"`
	Message           string     `json:"finderMessage"`
}

// Confirmation is a found report seen from the owner's side.
type Confirmation = FoundReport

// BothConfirmed is true once finder and owner have both confirmed.
func (f FoundReport) BothConfirmed() bool {
	return f.FinderConfirmed && f.OwnerConfirmed
}

// Actionable reports whether the owner still has to decide on the report.
func (f FoundReport) Actionable() bool {
	return !f.OwnerConfirmed
}
