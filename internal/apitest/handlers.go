package apitest

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/erazemk/lostfound/internal/imaging"
	"github.com/erazemk/lostfound/internal/model"
)

type createItemRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Location    string `json:"location"`
	Status      string `json:"status"`
	ImageURL    string `json:"imageUrl"`
	Reward      string `json:"reward"`
	ContactInfo string `json:"contactInfo"`
}

type markFoundRequest struct {
	ItemID  int64  `json:"itemId"`
	Message string `json:"message"`
}

func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	return id, err == nil && id > 0
}

// listItems handles GET /api/items.
func (s *Server) listItems(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	items := s.sortedItems(nil)
	s.mu.Unlock()
	jsonResponse(w, http.StatusOK, items)
}

// myItems handles GET /api/items/my.
func (s *Server) myItems(w http.ResponseWriter, r *http.Request) {
	claims := getClaims(r.Context())
	s.mu.Lock()
	items := s.sortedItems(func(item model.Item) bool { return item.PostedByID == claims.UserID })
	s.mu.Unlock()
	jsonResponse(w, http.StatusOK, items)
}

// getItem handles GET /api/items/{id}.
func (s *Server) getItem(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "Invalid item id")
		return
	}
	item, found := s.Item(id)
	if !found {
		jsonError(w, http.StatusNotFound, "Item not found")
		return
	}
	jsonResponse(w, http.StatusOK, item)
}

// createItem handles POST /api/items.
func (s *Server) createItem(w http.ResponseWriter, r *http.Request) {
	var req createItemRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		jsonError(w, http.StatusBadRequest, "Name is required")
		return
	}
	reward, err := model.ParseReward(req.Reward)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "Reward must be a number")
		return
	}
	status := model.ParseStatus(req.Status)
	if status != model.StatusLost && status != model.StatusFoundConfirmed {
		jsonError(w, http.StatusBadRequest, "Status must be LOST or FOUND")
		return
	}

	claims := getClaims(r.Context())
	item := s.AddItem(model.Item{
		Name:         req.Name,
		Description:  req.Description,
		Category:     req.Category,
		Location:     req.Location,
		Status:       status,
		PostedByID:   claims.UserID,
		PostedByName: claims.Name,
		ImageURL:     req.ImageURL,
		Reward:       reward,
		ContactInfo:  req.ContactInfo,
	})
	jsonResponse(w, http.StatusCreated, item)
}

// deleteItem handles DELETE /api/items/{id}.
func (s *Server) deleteItem(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "Invalid item id")
		return
	}
	item, found := s.Item(id)
	if !found {
		jsonError(w, http.StatusNotFound, "Item not found")
		return
	}
	if !model.CanDeleteItem(getClaims(r.Context()).User(), item) {
		jsonError(w, http.StatusForbidden, "You can only delete your own items")
		return
	}
	s.RemoveItem(id)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "Item deleted"})
}

// markFound handles POST /api/found/mark.
func (s *Server) markFound(w http.ResponseWriter, r *http.Request) {
	var req markFoundRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.ItemID <= 0 || strings.TrimSpace(req.Message) == "" {
		jsonError(w, http.StatusBadRequest, "Item ID and message are required")
		return
	}

	claims := getClaims(r.Context())

	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.items[req.ItemID]
	if !ok {
		jsonError(w, http.StatusBadRequest, "Item not found")
		return
	}
	if item.PostedByID == claims.UserID {
		jsonError(w, http.StatusBadRequest, "You cannot mark your item as found")
		return
	}
	for _, existing := range s.reports {
		if existing.ItemID == req.ItemID && existing.FinderID == claims.UserID {
			jsonError(w, http.StatusBadRequest, "You have already marked this item as found")
			return
		}
	}

	now := time.Now().UTC().Truncate(time.Second)
	report := &model.FoundReport{
		ID:                s.nextReport,
		ItemID:            item.ID,
		ItemTitle:         item.Name,
		FinderID:          claims.UserID,
		FinderName:        claims.Name,
		OwnerID:           item.PostedByID,
		OwnerName:         item.PostedByName,
		FinderConfirmed:   true,
		FinderConfirmedAt: &now,
		CreatedAt:         now,
		Message:           strings.TrimSpace(req.Message),
	}
	s.nextReport++
	s.reports = append(s.reports, report)

	if model.CanAdvance(item.Status, model.StatusFoundPending) {
		item.Status = model.StatusFoundPending
		item.UpdatedAt = now
	}
	jsonResponse(w, http.StatusCreated, report)
}

// pendingConfirmations handles GET /api/found/pending-confirmation.
func (s *Server) pendingConfirmations(w http.ResponseWriter, r *http.Request) {
	claims := getClaims(r.Context())

	s.mu.Lock()
	pending := []model.FoundReport{}
	for _, report := range s.reports {
		if report.OwnerID == claims.UserID && !report.OwnerConfirmed {
			pending = append(pending, *report)
		}
	}
	s.mu.Unlock()

	jsonResponse(w, http.StatusOK, pending)
}

// confirmFound handles POST /api/found/confirm/{id}.
func (s *Server) confirmFound(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "Invalid confirmation id")
		return
	}
	claims := getClaims(r.Context())

	s.mu.Lock()
	defer s.mu.Unlock()

	var report *model.FoundReport
	for _, candidate := range s.reports {
		if candidate.ID == id && candidate.OwnerID == claims.UserID {
			report = candidate
			break
		}
	}
	if report == nil {
		jsonError(w, http.StatusNotFound, "Confirmation not found")
		return
	}
	if report.OwnerConfirmed {
		jsonError(w, http.StatusBadRequest, "Already confirmed")
		return
	}

	now := time.Now().UTC().Truncate(time.Second)
	report.OwnerConfirmed = true
	report.OwnerConfirmedAt = &now

	if item, ok := s.items[report.ItemID]; ok && model.CanAdvance(item.Status, model.StatusFoundConfirmed) {
		item.Status = model.StatusFoundConfirmed
		item.UpdatedAt = now
	}
	jsonResponse(w, http.StatusOK, report)
}

// foundReports handles GET /api/found/reports/{id}.
func (s *Server) foundReports(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "Invalid item id")
		return
	}
	claims := getClaims(r.Context())

	s.mu.Lock()
	defer s.mu.Unlock()

	item, found := s.items[id]
	if !found {
		jsonError(w, http.StatusNotFound, "Item not found")
		return
	}
	if item.PostedByID != claims.UserID && !model.RoleAtLeast(claims.Role, model.RoleAdmin) {
		jsonError(w, http.StatusForbidden, "Only the owner can view found reports")
		return
	}

	reports := []model.FoundReport{}
	for _, report := range s.reports {
		if report.ItemID == id {
			reports = append(reports, *report)
		}
	}
	jsonResponse(w, http.StatusOK, reports)
}

// uploadImage handles POST /api/upload/image.
func (s *Server) uploadImage(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, imaging.MaxUploadSize+1<<20)

	file, header, err := r.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			jsonError(w, http.StatusRequestEntityTooLarge, "File too large")
			return
		}
		jsonError(w, http.StatusBadRequest, "No file uploaded")
		return
	}
	defer file.Close()

	if !strings.HasPrefix(header.Header.Get("Content-Type"), "image/") {
		jsonError(w, http.StatusUnsupportedMediaType, "Only image files are allowed")
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, imaging.MaxUploadSize+1))
	if err != nil {
		jsonError(w, http.StatusBadRequest, "Failed to read upload")
		return
	}
	if len(data) > imaging.MaxUploadSize {
		jsonError(w, http.StatusRequestEntityTooLarge, "File too large")
		return
	}

	name := uuid.NewString() + ".jpg"
	s.mu.Lock()
	s.uploads[name] = data
	s.mu.Unlock()

	jsonResponse(w, http.StatusCreated, map[string]string{
		"imageUrl": fmt.Sprintf("%s/uploads/%s", s.URL, name),
		"message":  "Image uploaded",
	})
}

// deleteImage handles DELETE /api/upload/image/{name}.
func (s *Server) deleteImage(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.uploads[name]; !ok {
		jsonError(w, http.StatusNotFound, "Image not found")
		return
	}
	delete(s.uploads, name)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "Image deleted"})
}
