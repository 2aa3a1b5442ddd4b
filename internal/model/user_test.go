package model

import "testing"

func TestRoleAtLeast(t *testing.T) {
	tests := []struct {
		role     string
		minimum  string
		expected bool
	}{
		{RoleAdmin, RoleAdmin, true},
		{RoleAdmin, RoleUser, true},
		{RoleUser, RoleAdmin, false},
		{RoleUser, RoleUser, true},
		{"admin", RoleAdmin, true},
		// Unknown roles fail-closed.
		{"unknown", RoleUser, false},
		{RoleAdmin, "unknown", false},
		{"", "", false},
		{"", RoleUser, false},
	}

	for _, tt := range tests {
		got := RoleAtLeast(tt.role, tt.minimum)
		if got != tt.expected {
			t.Errorf("RoleAtLeast(%q, %q) = %v, want %v", tt.role, tt.minimum, got, tt.expected)
		}
	}
}

func TestCanDeleteItem(t *testing.T) {
	item := Item{ID: 1, Name: "Umbrella", Status: StatusLost, PostedByID: 7}

	tests := []struct {
		name string
		user *User
		want bool
	}{
		{"nil user", nil, false},
		{"poster", &User{ID: 7, Role: RoleUser}, true},
		{"stranger", &User{ID: 8, Role: RoleUser}, false},
		{"admin", &User{ID: 9, Role: RoleAdmin}, true},
	}

	for _, tt := range tests {
		if got := CanDeleteItem(tt.user, item); got != tt.want {
			t.Errorf("%s: CanDeleteItem = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestCanMarkFound(t *testing.T) {
	finder := &User{ID: 2, Role: RoleUser}

	tests := []struct {
		name string
		item Item
		want bool
	}{
		{"lost item", Item{Name: "Keys", Status: StatusLost, PostedByID: 1}, true},
		{"own item", Item{Name: "Keys", Status: StatusLost, PostedByID: 2}, false},
		{"pending", Item{Name: "Keys", Status: StatusFoundPending, PostedByID: 1}, false},
		{"confirmed", Item{Name: "Keys", Status: StatusFoundConfirmed, PostedByID: 1}, false},
		{"renamed as found", Item{Name: "Keys (FOUND)", Status: StatusLost, PostedByID: 1}, false},
	}

	for _, tt := range tests {
		if got := CanMarkFound(finder, tt.item); got != tt.want {
			t.Errorf("%s: CanMarkFound = %v, want %v", tt.name, got, tt.want)
		}
	}
}
