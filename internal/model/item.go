package model

import (
	"strconv"
	"strings"
	"time"
)

// Item represents a reported lost or found object.
type Item struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description,omitempty"`
	Category     string    `json:"category,omitempty"`
	Location     string    `json:"location,omitempty"`
	Status       Status    `json:"status"`
	PostedByID   int64     `json:"postedById,omitempty"`
	PostedByName string    `json:"postedByName,omitempty"`
	ImageURL     string    `json:"imageUrl,omitempty"`
	Reward       *float64  `json:"reward,omitempty"`
	ContactInfo  string    `json:"contactInfo,omitempty"`
	CreatedAt    time.Time `json:"createdAt,omitzero"`
	UpdatedAt    time.Time `json:"updatedAt,omitzero"`
}

// NewItem is the payload of a lost or found report.
type NewItem struct {
	Name        string
	Description string
	Category    string
	Location    string
	Status      Status
	ImageURL    string
	Reward      string
	ContactInfo string
}

// Item categories.
var Categories = []string{
	"Electronics",
	"Books",
	"Clothing",
	"Keys",
	"Documents",
	"Sports Equipment",
	"Jewelry",
	"Other",
}

// Campus locations. "Other" covers anything off the list.
var Locations = []string{
	"Central Library",
	"Academic Block 1",
	"Academic Block 2",
	"Academic Block 3",
	"Hostel A",
	"Hostel B",
	"Hostel C",
	"Cafeteria",
	"Sports Complex",
	"Auditorium",
	"Campus Ground",
	"Other",
}

// ValidCategory reports whether c is one of Categories.
func ValidCategory(c string) bool {
	for _, v := range Categories {
		if v == c {
			return true
		}
	}
	return false
}

// ValidLocation reports whether l is one of Locations.
func ValidLocation(l string) bool {
	for _, v := range Locations {
		if v == l {
			return true
		}
	}
	return false
}

// DisplayReward formats the reward for display. The second return value is
// false when the item carries no positive reward.
func (i Item) DisplayReward() (string, bool) {
	if i.Reward == nil || *i.Reward <= 0 {
		return "", false
	}
	return strconv.FormatFloat(*i.Reward, 'f', -1, 64), true
}

// ParseReward converts the string form of a reward into a number.
// An empty string means no reward.
func ParseReward(s string) (*float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, ErrInvalidReward
	}
	if v < 0 {
		return nil, ErrInvalidReward
	}
	return &v, nil
}

// Validate checks a report before it is submitted.
func (n NewItem) Validate() error {
	if strings.TrimSpace(n.Name) == "" {
		return ErrNameRequired
	}
	if n.Category != "" && !ValidCategory(n.Category) {
		return ErrInvalidCategory
	}
	if n.Location != "" && !ValidLocation(n.Location) {
		return ErrInvalidLocation
	}
	if _, err := ParseReward(n.Reward); err != nil {
		return err
	}
	return nil
}
