package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/erazemk/tcgpocket/internal/store"
)

// jsonResponse writes a JSON response with the given status code.
func jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("encoding response", "error", err)
		}
	}
}

// jsonError writes a JSON error response.
func jsonError(w http.ResponseWriter, status int, message string) {
	jsonResponse(w, status, map[string]string{"error": message})
}

// decodeJSON decodes a JSON request body into the given target.
func decodeJSON(r *http.Request, target any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(target)
}

// storeError writes the response for an error returned by the store. Rule
// violations carry their own message; anything else is logged and reported
// as an internal error with fallback as the message.
func storeError(w http.ResponseWriter, err error, fallback string) {
	var rule *store.RuleError
	if errors.As(err, &rule) {
		switch {
		case errors.Is(err, store.ErrNotFound):
			jsonError(w, http.StatusNotFound, rule.Msg)
		case errors.Is(err, store.ErrConflict):
			jsonError(w, http.StatusConflict, rule.Msg)
		default:
			jsonError(w, http.StatusBadRequest, rule.Msg)
		}
		return
	}

	slog.Error(fallback, "error", err)
	jsonError(w, http.StatusInternalServerError, fallback)
}
