package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"
)

// messageResponse is the {success, message} envelope most mutation routes use.
type messageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondMessage(w http.ResponseWriter, status int, success bool, message string) {
	respondJSON(w, status, messageResponse{Success: success, Message: message})
}

// respondError logs the unexpected error and hides it behind a generic 500.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	zctx.From(r.Context()).Error("Handler error",
		zap.String("path", r.URL.Path),
		zap.Error(err),
	)
	respondMessage(w, http.StatusInternalServerError, false, "internal server error")
}

// decodeJSON parses the request body into v and runs struct validation.
// A false return means the 400 response has already been written.
func (h *Handler) decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		respondMessage(w, http.StatusBadRequest, false, "invalid request body")
		return false
	}
	if err := h.validate.Struct(v); err != nil {
		respondMessage(w, http.StatusBadRequest, false, "validation failed: "+err.Error())
		return false
	}
	return true
}
