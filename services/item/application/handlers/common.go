package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/ghuser/titleguard/pkg/auth"
	"github.com/ghuser/titleguard/pkg/httpx"
	"github.com/ghuser/titleguard/services/item/domain/models"
)

// ErrorResponse is returned on all error responses.
type ErrorResponse struct {
	Error string `json:"error" example:"item not found"`
} // @name ErrorResponse

// ItemResponse is the JSON representation of an Item.
type ItemResponse struct {
	ID        uuid.UUID `json:"id"         example:"123e4567-e89b-12d3-a456-426614174000"`
	OrgID     uuid.UUID `json:"org_id"     example:"550e8400-e29b-41d4-a716-446655440000"`
	Type      string    `json:"type"       example:"Component"`
	Title     string    `json:"title"      example:"Homepage Banner"`
	CreatedAt time.Time `json:"created_at" example:"2024-01-15T10:30:00Z"`
	UpdatedAt time.Time `json:"updated_at" example:"2024-01-15T10:30:00Z"`
} // @name ItemResponse

// RejectionResponse is returned with 422 when the title guard blocks a save.
type RejectionResponse struct {
	Error   string                   `json:"error" example:"save blocked by title validation"`
	Message models.ValidationMessage `json:"message"`
} // @name RejectionResponse

func toItemResponse(item *models.Item) ItemResponse {
	return ItemResponse{
		ID:        item.ID,
		OrgID:     item.OrgID,
		Type:      item.Type.String(),
		Title:     item.Title.String(),
		CreatedAt: item.CreatedAt,
		UpdatedAt: item.UpdatedAt,
	}
}

// requireOrgID reads the authenticated org or writes 401.
func requireOrgID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	orgID, err := auth.OrgIDFromCtx(r.Context())
	if err != nil {
		httpx.Unauthorized(w)
		return uuid.Nil, false
	}
	return orgID, true
}

// itemIDParam parses the {id} URL parameter or writes 400.
func itemIDParam(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.JSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid item id"})
		return uuid.Nil, false
	}
	return id, true
}

// intQuery returns the integer query parameter name clamped to [min, max],
// or def when absent or malformed.
func intQuery(r *http.Request, name string, def, lo, hi int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return max(lo, min(n, hi))
}
