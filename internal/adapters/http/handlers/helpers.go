package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/longregen/promptune/internal/adapters/http/encoding"
)

// respondJSON writes data in whatever content type r's Accept header
// negotiates: JSON by default, MessagePack when a client asks for it.
func respondJSON(r *http.Request, w http.ResponseWriter, data interface{}, status int) {
	if encoding.NegotiateContentType(r) == encoding.ContentTypeMsgpack {
		_ = encoding.WriteMsgpack(w, status, data)
		return
	}
	w.Header().Set("Content-Type", encoding.ContentTypeJSON)
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError writes an error response in the negotiated content type.
func respondError(r *http.Request, w http.ResponseWriter, errorType string, message string, status int) {
	respondJSON(r, w, map[string]any{
		"error": map[string]string{
			"type":    errorType,
			"message": message,
		},
	}, status)
}

// parseIntQuery parses an integer query parameter with a default value.
func parseIntQuery(r *http.Request, name string, defaultValue int) int {
	value := r.URL.Query().Get(name)
	if value == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return intValue
}

// validateURLParam validates and returns a URL parameter.
func validateURLParam(r *http.Request, w http.ResponseWriter, paramName, errorField string) (string, bool) {
	value := chi.URLParam(r, paramName)
	if value == "" {
		respondError(r, w, "invalid_request", errorField+" is required", http.StatusBadRequest)
		return "", false
	}
	return value, true
}
