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

// CircleHandler handles circle-related HTTP requests
type CircleHandler struct {
	service *services.CircleService
	logger  *zap.Logger
}

// NewCircleHandler creates a new circle handler
func NewCircleHandler(service *services.CircleService, logger *zap.Logger) *CircleHandler {
	return &CircleHandler{service: service, logger: logger}
}

// CircleResponse is the JSON shape of a circle.
type CircleResponse struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	CreatedBy   string   `json:"createdBy"`
	Members     []string `json:"members"`
	ContentIDs  []string `json:"contentIds"`
	Frequency   string   `json:"frequency"`
	Privacy     string   `json:"privacy"`
	MemberCount int      `json:"memberCount"`
	CreatedAt   string   `json:"createdAt"`
	UpdatedAt   string   `json:"updatedAt"`
}

func toCircleResponse(circle *model.Circle) CircleResponse {
	return CircleResponse{
		ID:          circle.ID,
		Name:        circle.Name,
		Description: circle.Description,
		CreatedBy:   circle.CreatedBy,
		Members:     circle.Members,
		ContentIDs:  circle.ContentIDs,
		Frequency:   string(circle.Frequency),
		Privacy:     string(circle.Privacy),
		MemberCount: len(circle.Members),
		CreatedAt:   circle.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   circle.UpdatedAt.Format(time.RFC3339),
	}
}

func toCircleResponses(circles []*model.Circle) []CircleResponse {
	out := make([]CircleResponse, 0, len(circles))
	for _, circle := range circles {
		out = append(out, toCircleResponse(circle))
	}
	return out
}

// CreateCircle handles POST /api/circles
func (h *CircleHandler) CreateCircle(w http.ResponseWriter, r *http.Request) {
	user, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	var req services.CreateCircleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, h.logger, appErrors.NewValidationError("invalid request body"))
		return
	}

	circle, err := h.service.Create(r.Context(), user.UserID, req)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusCreated, toCircleResponse(circle))
}

// GetCircle handles GET /api/circles/{circleID}
func (h *CircleHandler) GetCircle(w http.ResponseWriter, r *http.Request) {
	user, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	circle, err := h.service.Get(r.Context(), user.UserID, chi.URLParam(r, "circleID"))
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, toCircleResponse(circle))
}

// ListCircles handles GET /api/circles
func (h *CircleHandler) ListCircles(w http.ResponseWriter, r *http.Request) {
	user, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	circles, err := h.service.ListMine(r.Context(), user.UserID)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"circles": toCircleResponses(circles)})
}

// ListPublicCircles handles GET /api/circles/public
func (h *CircleHandler) ListPublicCircles(w http.ResponseWriter, r *http.Request) {
	circles, err := h.service.ListPublic(r.Context())
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"circles": toCircleResponses(circles)})
}

// JoinCircle handles POST /api/circles/{circleID}/join
func (h *CircleHandler) JoinCircle(w http.ResponseWriter, r *http.Request) {
	user, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	circle, err := h.service.Join(r.Context(), user.UserID, chi.URLParam(r, "circleID"))
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, toCircleResponse(circle))
}

// LeaveCircle handles POST /api/circles/{circleID}/leave
func (h *CircleHandler) LeaveCircle(w http.ResponseWriter, r *http.Request) {
	user, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	if err := h.service.Leave(r.Context(), user.UserID, chi.URLParam(r, "circleID")); err != nil {
		respondError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "left circle"})
}
