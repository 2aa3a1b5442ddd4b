// Package apitest runs an in-memory lost-and-found service for tests. It
// speaks the same JSON contract as the real backend, including its error
// messages, so the client can be exercised end to end over HTTP.
package apitest

import (
	"cmp"
	"net/http"
	"net/http/httptest"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/erazemk/lostfound/internal/auth"
	"github.com/erazemk/lostfound/internal/model"
)

// Secret signs the tokens minted by Server.Token.
const Secret = "apitest-secret"

// Request is what the server recorded about an incoming request.
type Request struct {
	Method        string
	Path          string
	Authorization string
	RequestID     string
}

// Interceptor may answer a request before the router sees it. It returns
// true when it wrote a response.
type Interceptor func(w http.ResponseWriter, r *http.Request) bool

// Server is a fake lost-and-found backend.
type Server struct {
	*httptest.Server
	Secret string

	mu         sync.Mutex
	items      map[int64]*model.Item
	users      map[int64]*model.User
	reports    []*model.FoundReport
	uploads    map[string][]byte
	nextItem   int64
	nextReport int64
	requests   []Request
	intercept  Interceptor
}

// NewServer starts a fake backend that is closed when the test ends.
func NewServer(t testing.TB) *Server {
	t.Helper()

	s := &Server{
		Secret:     Secret,
		items:      make(map[int64]*model.Item),
		users:      make(map[int64]*model.User),
		uploads:    make(map[string][]byte),
		nextItem:   1,
		nextReport: 1,
	}
	s.Server = httptest.NewServer(s.recordMiddleware(s.newRouter()))
	t.Cleanup(s.Close)
	return s
}

func (s *Server) newRouter() http.Handler {
	mux := http.NewServeMux()

	// Public: the feed.
	mux.HandleFunc("GET /api/items", s.listItems)
	mux.HandleFunc("GET /api/items/{id}", s.getItem)

	// Authenticated routes.
	mux.Handle("GET /api/items/my", s.authMiddleware(s.myItems))
	mux.Handle("POST /api/items", s.authMiddleware(s.createItem))
	mux.Handle("DELETE /api/items/{id}", s.authMiddleware(s.deleteItem))

	mux.Handle("POST /api/found/mark", s.authMiddleware(s.markFound))
	mux.Handle("GET /api/found/pending-confirmation", s.authMiddleware(s.pendingConfirmations))
	mux.Handle("POST /api/found/confirm/{id}", s.authMiddleware(s.confirmFound))
	mux.Handle("GET /api/found/reports/{id}", s.authMiddleware(s.foundReports))

	mux.Handle("POST /api/upload/image", s.authMiddleware(s.uploadImage))
	mux.Handle("DELETE /api/upload/image/{name}", s.authMiddleware(s.deleteImage))

	// Administration.
	mux.Handle("GET /api/admin/items", s.authMiddleware(requireRole(model.RoleAdmin, s.adminItems)))
	mux.Handle("GET /api/users", s.authMiddleware(requireRole(model.RoleAdmin, s.listUsers)))
	mux.Handle("GET /api/users/{id}/items", s.authMiddleware(requireRole(model.RoleAdmin, s.userItems)))
	mux.Handle("DELETE /api/users/{id}", s.authMiddleware(requireRole(model.RoleAdmin, s.deleteUser)))

	return mux
}

// Token mints a valid bearer token for u and registers u as a user.
func (s *Server) Token(t testing.TB, u model.User) string {
	t.Helper()
	u = s.AddUser(u)
	token, err := auth.GenerateToken(s.Secret, u, auth.TokenExpiry)
	if err != nil {
		t.Fatalf("generating token: %v", err)
	}
	return token
}

// AddUser registers a user. Users without a role get RoleUser.
func (s *Server) AddUser(u model.User) model.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u.Role == "" {
		u.Role = model.RoleUser
	}
	stored := u
	s.users[u.ID] = &stored
	return u
}

// User returns the stored copy of a user.
func (s *Server) User(id int64) (model.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return model.User{}, false
	}
	return *u, true
}

// AddItem seeds an item and returns it with its assigned id.
func (s *Server) AddItem(item model.Item) model.Item {
	s.mu.Lock()
	defer s.mu.Unlock()

	if item.ID == 0 {
		item.ID = s.nextItem
	}
	if item.ID >= s.nextItem {
		s.nextItem = item.ID + 1
	}
	if item.Status == model.StatusUnknown {
		item.Status = model.StatusLost
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now().UTC().Truncate(time.Second)
	}
	stored := item
	s.items[item.ID] = &stored
	return item
}

// AddReport seeds a found report. The owner is taken from the item when
// the report does not name one.
func (s *Server) AddReport(report model.FoundReport) model.FoundReport {
	s.mu.Lock()
	defer s.mu.Unlock()

	if report.ID == 0 {
		report.ID = s.nextReport
	}
	if report.ID >= s.nextReport {
		s.nextReport = report.ID + 1
	}
	if item, ok := s.items[report.ItemID]; ok {
		if report.OwnerID == 0 {
			report.OwnerID = item.PostedByID
			report.OwnerName = item.PostedByName
		}
		if report.ItemTitle == "" {
			report.ItemTitle = item.Name
		}
	}
	if report.CreatedAt.IsZero() {
		report.CreatedAt = time.Now().UTC().Truncate(time.Second)
	}
	stored := report
	s.reports = append(s.reports, &stored)
	return report
}

// RemoveItem deletes an item behind the client's back.
func (s *Server) RemoveItem(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, id)
}

// Item returns the stored copy of an item.
func (s *Server) Item(id int64) (model.Item, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.items[id]
	if !ok {
		return model.Item{}, false
	}
	return *item, true
}

// Reports returns copies of all stored found reports.
func (s *Server) Reports() []model.FoundReport {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.FoundReport, 0, len(s.reports))
	for _, r := range s.reports {
		out = append(out, *r)
	}
	return out
}

// Upload returns the bytes stored under an uploaded file name.
func (s *Server) Upload(name string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.uploads[name]
	return data, ok
}

// Requests returns the requests seen so far.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.requests)
}

// Intercept installs fn in front of the router. Pass nil to remove it.
func (s *Server) Intercept(fn Interceptor) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.intercept = fn
}

// sortedItems returns item copies ordered newest first, then by id.
func (s *Server) sortedItems(keep func(model.Item) bool) []model.Item {
	items := make([]model.Item, 0, len(s.items))
	for _, item := range s.items {
		if keep == nil || keep(*item) {
			items = append(items, *item)
		}
	}
	slices.SortFunc(items, func(a, b model.Item) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})
	return items
}
