// Package handlers contains the HTTP request handlers for the REST API.
package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	appErrors "circulate-backend/pkg/errors"
)

type errorResponse struct {
	Error   bool   `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		json.NewEncoder(w).Encode(payload)
	}
}

// respondError maps application errors onto HTTP statuses. Anything that is
// not an AppError becomes an opaque 500 so internals never leak to clients.
func respondError(w http.ResponseWriter, logger *zap.Logger, err error) {
	status := http.StatusInternalServerError
	message := "Internal server error"

	if appErr := appErrors.GetAppError(err); appErr != nil {
		status = appErr.HTTPStatus
		if status < http.StatusInternalServerError {
			message = appErr.Message
		}
	}

	if status >= http.StatusInternalServerError {
		logger.Error("request failed", zap.Error(err))
	}

	respondJSON(w, status, errorResponse{Error: true, Message: message, Code: status})
}
