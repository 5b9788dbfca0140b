// Package handlers implements the HTTP layer: request decoding, input
// validation, the post/category/auth operations over the stores, and
// response shaping.
package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// FieldError describes a single invalid input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// respondJSON serializes v and writes it with the given status.
func respondJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		slog.Error("marshal response", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	w.Write(body)
}

// respondRaw writes an already-serialized JSON body (cached responses).
func respondRaw(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	w.Write(body)
}

// respondMessage writes a {"message": ...} error body.
func respondMessage(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"message": message})
}

// respondValidation writes a 400 with per-field error details.
func respondValidation(w http.ResponseWriter, errs []FieldError) {
	respondJSON(w, http.StatusBadRequest, map[string]any{"errors": errs})
}

// respondInternal writes a 500. The underlying error message is exposed
// only outside production.
func respondInternal(w http.ResponseWriter, devMode bool, err error) {
	msg := "Internal Server Error"
	if devMode && err != nil {
		msg = err.Error()
	}
	respondMessage(w, http.StatusInternalServerError, msg)
}

// marshalOrInternal serializes v for caching, writing a 500 and returning
// nil when serialization fails.
func marshalOrInternal(w http.ResponseWriter, devMode bool, v any) []byte {
	body, err := json.Marshal(v)
	if err != nil {
		slog.Error("marshal response", "error", err)
		respondInternal(w, devMode, err)
		return nil
	}
	return body
}

// decodeJSON reads the request body into dst, rejecting unparseable input.
func decodeJSON(r *http.Request, dst any) error {
	return json.NewDecoder(r.Body).Decode(dst)
}
