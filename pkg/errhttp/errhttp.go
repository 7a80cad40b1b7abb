// Package errhttp maps domain sentinel errors to HTTP status codes.
// Add a case to mapErrorToStatus for each new domain sentinel error.
package errhttp

import (
	"errors"
	"net/http"

	"github.com/ghuser/titleguard/pkg/httpx"
	"github.com/ghuser/titleguard/pkg/telemetry"
	itemdomain "github.com/ghuser/titleguard/services/item/domain"
	"github.com/ghuser/titleguard/services/item/domain/models"
)

// WriteSafeError maps err to a status code with errors.Is and writes a JSON
// error body. Unmapped errors become 500, are reported to Sentry and, in
// production, have their message masked.
func WriteSafeError(w http.ResponseWriter, r *http.Request, err error, isProduction bool) {
	status := mapErrorToStatus(err)
	if status >= http.StatusInternalServerError {
		telemetry.CaptureError(r.Context(), err)
	}
	httpx.JSONError(w, status, httpx.SafeError(err, status, isProduction))
}

// rejectionResponse is the 422 body returned when the title guard blocks a save.
type rejectionResponse struct {
	Error   string                   `json:"error"`
	Message models.ValidationMessage `json:"message"`
}

// WriteRejection writes a 422 carrying the diagnostic that blocked the save.
func WriteRejection(w http.ResponseWriter, msg models.ValidationMessage) {
	httpx.JSON(w, http.StatusUnprocessableEntity, rejectionResponse{
		Error:   itemdomain.ErrTitleRejected.Error(),
		Message: msg,
	})
}

func mapErrorToStatus(err error) int {
	switch {
	case errors.Is(err, itemdomain.ErrItemNotFound):
		return http.StatusNotFound // 404
	case errors.Is(err, itemdomain.ErrItemAlreadyExists),
		errors.Is(err, itemdomain.ErrCommandUnavailable),
		errors.Is(err, itemdomain.ErrCommandDisabled):
		return http.StatusConflict // 409
	case errors.Is(err, itemdomain.ErrInvalidItemTitle),
		errors.Is(err, itemdomain.ErrInvalidItemType),
		errors.Is(err, itemdomain.ErrInvalidTitleCharacters),
		errors.Is(err, itemdomain.ErrTitleRejected):
		return http.StatusUnprocessableEntity // 422
	default:
		return http.StatusInternalServerError // 500
	}
}
