package api

import (
	"encoding/json"
	"net/http"

	"github.com/erazemk/gildedrose/internal/logging"
)

// jsonResponse writes a JSON response with the given status code.
func jsonResponse(w http.ResponseWriter, r *http.Request, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			logging.FromContext(r.Context()).Error("error encoding response", "error", err)
		}
	}
}

// jsonError writes a JSON error response.
func jsonError(w http.ResponseWriter, r *http.Request, status int, message string) {
	jsonResponse(w, r, status, map[string]string{"error": message})
}

// decodeJSON decodes a JSON request body into the given target.
func decodeJSON(r *http.Request, target any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(target)
}
