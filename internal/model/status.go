package model

import "strings"

// Status is the lifecycle state of an item.
type Status string

// Item statuses. StatusFound is the legacy binary vocabulary that older
// records still carry; ParseStatus folds it into StatusFoundConfirmed.
const (
	StatusUnknown        Status = ""
	StatusLost           Status = "LOST"
	StatusFoundPending   Status = "FOUND_PENDING"
	StatusFoundConfirmed Status = "FOUND_CONFIRMED"
	StatusFound          Status = "FOUND"
)

// ParseStatus normalizes a status as sent by the server.
func ParseStatus(raw string) Status {
	switch Status(strings.ToUpper(strings.TrimSpace(raw))) {
	case StatusLost:
		return StatusLost
	case StatusFoundPending:
		return StatusFoundPending
	case StatusFoundConfirmed, StatusFound:
		return StatusFoundConfirmed
	default:
		return StatusUnknown
	}
}

// Rank orders statuses along the lifecycle. Unknown statuses rank 0.
func (s Status) Rank() int {
	switch s {
	case StatusLost:
		return 1
	case StatusFoundPending:
		return 2
	case StatusFoundConfirmed, StatusFound:
		return 3
	default:
		return 0
	}
}

// CanAdvance reports whether moving from one status to another goes forward
// along LOST -> FOUND_PENDING -> FOUND_CONFIRMED.
func CanAdvance(from, to Status) bool {
	if to.Rank() == 0 {
		return false
	}
	return to.Rank() > from.Rank()
}

// IsFound is true for both stages of the found lifecycle.
func (s Status) IsFound() bool {
	return s == StatusFoundPending || s == StatusFoundConfirmed || s == StatusFound
}

// Label returns the badge text for a status.
func (s Status) Label() string {
	switch s {
	case StatusLost:
		return "LOST"
	case StatusFoundPending:
		return "FOUND PENDING"
	case StatusFoundConfirmed, StatusFound:
		return "FOUND CONFIRMED"
	default:
		return "UNKNOWN"
	}
}

// EffectiveStatus returns the status used for display and permission checks.
// Some records were closed by renaming the item instead of confirming it, so
// a LOST item whose name mentions "found" is treated as confirmed.
func EffectiveStatus(item Item) Status {
	if item.Status == StatusLost && strings.Contains(strings.ToLower(item.Name), "found") {
		return StatusFoundConfirmed
	}
	return item.Status
}
