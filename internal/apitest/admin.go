package apitest

import (
	"cmp"
	"net/http"
	"slices"

	"github.com/erazemk/lostfound/internal/model"
)

// adminItems handles GET /api/admin/items.
func (s *Server) adminItems(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	items := s.sortedItems(nil)
	s.mu.Unlock()
	jsonResponse(w, http.StatusOK, items)
}

// listUsers handles GET /api/users.
func (s *Server) listUsers(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	users := make([]model.User, 0, len(s.users))
	for _, u := range s.users {
		users = append(users, *u)
	}
	s.mu.Unlock()

	slices.SortFunc(users, func(a, b model.User) int { return cmp.Compare(a.ID, b.ID) })
	jsonResponse(w, http.StatusOK, users)
}

// userItems handles GET /api/users/{id}/items.
func (s *Server) userItems(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "Invalid user id")
		return
	}
	if _, found := s.User(id); !found {
		jsonError(w, http.StatusNotFound, "User not found")
		return
	}

	s.mu.Lock()
	items := s.sortedItems(func(item model.Item) bool { return item.PostedByID == id })
	s.mu.Unlock()
	jsonResponse(w, http.StatusOK, items)
}

// deleteUser handles DELETE /api/users/{id}. The user's items and the found
// reports on them go too.
func (s *Server) deleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "Invalid user id")
		return
	}
	if getClaims(r.Context()).UserID == id {
		jsonError(w, http.StatusBadRequest, "You cannot delete your own account")
		return
	}

	s.mu.Lock()
	if _, found := s.users[id]; !found {
		s.mu.Unlock()
		jsonError(w, http.StatusNotFound, "User not found")
		return
	}
	delete(s.users, id)
	removed := make(map[int64]bool)
	for itemID, item := range s.items {
		if item.PostedByID == id {
			delete(s.items, itemID)
			removed[itemID] = true
		}
	}
	s.reports = slices.DeleteFunc(s.reports, func(f *model.FoundReport) bool { return removed[f.ItemID] })
	s.mu.Unlock()

	jsonResponse(w, http.StatusOK, map[string]string{"message": "User deleted"})
}
