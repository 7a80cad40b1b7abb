package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/ghuser/titleguard/pkg/errhttp"
	"github.com/ghuser/titleguard/pkg/httpx"
	pkgvalidator "github.com/ghuser/titleguard/pkg/validator"
	appsvcs "github.com/ghuser/titleguard/services/item/application/services"
	itemdomain "github.com/ghuser/titleguard/services/item/domain"
	"github.com/ghuser/titleguard/services/item/infrastructure/notify"
)

// SaveItemRequest is the request body for PUT /items/{id}.
type SaveItemRequest struct {
	Title string `json:"title" validate:"required,min=1,max=255" example:"Homepage Banner"`
} // @name SaveItemRequest

// SaveItemResponse is returned when the guarded save succeeds.
type SaveItemResponse struct {
	Item    ItemResponse `json:"item"`
	Created bool         `json:"created"  example:"false"`
	SavedAt time.Time    `json:"saved_at" example:"2024-01-15T10:30:00Z"`
} // @name SaveItemResponse

// PutItemHandler handles PUT /items/{id}: a save guarded by the title rules.
type PutItemHandler struct {
	svc *appsvcs.Services
}

// NewPutItemHandler returns a PutItemHandler backed by the given services.
func NewPutItemHandler(svc *appsvcs.Services) *PutItemHandler {
	return &PutItemHandler{svc: svc}
}

// Execute saves a new title on an existing item.
//
//	@Summary		Save item
//	@Description	Saves a new title. Component titles with characters outside the whitelist are rejected; the diagnostic is returned and posted to the message center.
//	@Tags			items
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string			true	"Item ID"	format(uuid)
//	@Param			request	body		SaveItemRequest	true	"Draft title"
//	@Success		200		{object}	SaveItemResponse
//	@Failure		400		{object}	ErrorResponse
//	@Failure		401		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Failure		409		{object}	ErrorResponse
//	@Failure		422		{object}	RejectionResponse
//	@Router			/items/{id} [put]
func (h *PutItemHandler) Execute(w http.ResponseWriter, r *http.Request) {
	orgID, ok := requireOrgID(w, r)
	if !ok {
		return
	}
	id, ok := itemIDParam(w, r)
	if !ok {
		return
	}
	req, ok := pkgvalidator.ValidateRequest[SaveItemRequest](w, r)
	if !ok {
		return
	}

	rec := notify.NewRecorder()
	res, err := h.svc.Item.Save(r.Context(), orgID, id, req.Title, notify.Tee(h.svc.Messages.For(orgID, id), rec))
	if err != nil {
		if msg, found := rec.Last(); found && errors.Is(err, itemdomain.ErrTitleRejected) {
			errhttp.WriteRejection(w, msg)
			return
		}
		errhttp.WriteSafeError(w, r, err, h.svc.Production)
		return
	}

	httpx.JSON(w, http.StatusOK, SaveItemResponse{
		Item:    toItemResponse(res.Item),
		Created: res.Created,
		SavedAt: res.SavedAt,
	})
}
