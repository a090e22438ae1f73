package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/cairn-ai/cairn-engine/pkg/apperrors"
)

// ErrorResponse writes a JSON error response and returns any encoding error.
func ErrorResponse(w http.ResponseWriter, statusCode int, errorCode, message string) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	return json.NewEncoder(w).Encode(map[string]string{
		"error":   errorCode,
		"message": message,
	})
}

// WriteJSON writes a JSON response and returns any encoding error.
func WriteJSON(w http.ResponseWriter, statusCode int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	if statusCode != http.StatusOK {
		w.WriteHeader(statusCode)
	}
	return json.NewEncoder(w).Encode(data)
}

// WriteDomainError maps a service error to the right HTTP status.
func WriteDomainError(w http.ResponseWriter, err error) error {
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		return ErrorResponse(w, http.StatusNotFound, "not_found", "resource not found")
	case errors.Is(err, apperrors.ErrConflict):
		return ErrorResponse(w, http.StatusConflict, "conflict", "resource already processed")
	case errors.Is(err, apperrors.ErrInvalidEntityType):
		return ErrorResponse(w, http.StatusBadRequest, "invalid_entity", "invalid entity type or payload")
	case errors.Is(err, apperrors.ErrNoScope):
		return ErrorResponse(w, http.StatusUnauthorized, "unauthorized", "missing user scope")
	default:
		return ErrorResponse(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}
