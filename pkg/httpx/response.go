package httpx

import (
	"encoding/json"
	"net/http"
)

// ErrorBody is the {"error": "..."} shape of every non-2xx JSON response.
type ErrorBody struct {
	Error string `json:"error"`
}

// JSON writes v with status. Encoding errors are dropped because the header
// is already on the wire.
func JSON(w http.ResponseWriter, status int, v any) {
	h := w.Header()
	h.Set("Content-Type", "application/json; charset=utf-8")
	h.Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func JSONError(w http.ResponseWriter, status int, message string) {
	JSON(w, status, ErrorBody{Error: message})
}

// Unauthorized writes the 401 used by the auth middleware and handlers.
func Unauthorized(w http.ResponseWriter) {
	JSONError(w, http.StatusUnauthorized, "authentication required")
}

func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// SafeError hides the text of 5xx errors in production.
func SafeError(err error, status int, isProduction bool) string {
	if isProduction && status >= http.StatusInternalServerError {
		return http.StatusText(status)
	}
	return err.Error()
}
