package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"circulate-backend/application/services"
	"circulate-backend/domain/model"
	"circulate-backend/pkg/auth"
	appErrors "circulate-backend/pkg/errors"
)

// ContentHandler handles content-related HTTP requests
type ContentHandler struct {
	service *services.ContentService
	logger  *zap.Logger
}

// NewContentHandler creates a new content handler
func NewContentHandler(service *services.ContentService, logger *zap.Logger) *ContentHandler {
	return &ContentHandler{service: service, logger: logger}
}

// ContentResponse is the JSON shape of a post or event.
type ContentResponse struct {
	ID          string   `json:"id"`
	CreatedBy   string   `json:"createdBy"`
	Title       string   `json:"title"`
	CircleIDs   []string `json:"circleIds"`
	DateTime    *string  `json:"dateTime,omitempty"`
	Description string   `json:"description,omitempty"`
	Link        string   `json:"link,omitempty"`
	Privacy     string   `json:"privacy"`
	Categories  []string `json:"categories,omitempty"`
	IsEvent     bool     `json:"isEvent"`
	CreatedAt   string   `json:"createdAt"`
	UpdatedAt   string   `json:"updatedAt"`
}

func toContentResponse(content *model.Content) ContentResponse {
	resp := ContentResponse{
		ID:          content.ID,
		CreatedBy:   content.CreatedBy,
		Title:       content.Title,
		CircleIDs:   content.CircleIDs,
		Description: content.Description,
		Link:        content.Link,
		Privacy:     string(content.Privacy),
		Categories:  content.Categories,
		IsEvent:     content.IsEvent(),
		CreatedAt:   content.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   content.UpdatedAt.Format(time.RFC3339),
	}
	if content.DateTime != nil {
		when := content.DateTime.Format(time.RFC3339)
		resp.DateTime = &when
	}
	return resp
}

// CreateContent handles POST /api/content
func (h *ContentHandler) CreateContent(w http.ResponseWriter, r *http.Request) {
	user, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	var req services.CreateContentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, h.logger, appErrors.NewValidationError("invalid request body"))
		return
	}

	content, err := h.service.Create(r.Context(), user.UserID, req)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusCreated, toContentResponse(content))
}

// GetContent handles GET /api/content/{contentID}
func (h *ContentHandler) GetContent(w http.ResponseWriter, r *http.Request) {
	user, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	content, err := h.service.Get(r.Context(), user.UserID, chi.URLParam(r, "contentID"))
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, toContentResponse(content))
}

// ListEvents handles GET /api/events
func (h *ContentHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	user, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	events, err := h.service.ListMyEvents(r.Context(), user.UserID)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	out := make([]ContentResponse, 0, len(events))
	for _, event := range events {
		out = append(out, toContentResponse(event))
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"events": out})
}
