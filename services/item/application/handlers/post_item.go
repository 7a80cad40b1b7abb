package handlers

import (
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/ghuser/titleguard/pkg/errhttp"
	"github.com/ghuser/titleguard/pkg/httpx"
	pkgvalidator "github.com/ghuser/titleguard/pkg/validator"
	appsvcs "github.com/ghuser/titleguard/services/item/application/services"
	"github.com/ghuser/titleguard/services/item/domain/models"
	domainsvcs "github.com/ghuser/titleguard/services/item/domain/services"
)

func init() {
	pkgvalidator.RegisterStructValidation(validateCreateItem, CreateItemRequest{})
}

// CreateItemRequest is the request body for POST /items.
type CreateItemRequest struct {
	Type  string `json:"type"  validate:"required,itemtype"      example:"Component"`
	Title string `json:"title" validate:"required,min=1,max=255" example:"Homepage Banner"`
} // @name CreateItemRequest

// validateCreateItem applies the title whitelist to Component titles only.
func validateCreateItem(sl validator.StructLevel) {
	req := sl.Current().Interface().(CreateItemRequest)
	if req.Type == models.ItemTypeComponent.String() && domainsvcs.HasInvalidCharacters(req.Title) {
		sl.ReportError(req.Title, "title", "Title", pkgvalidator.TagTitle, "")
	}
}

// PostItemHandler handles POST /items requests.
type PostItemHandler struct {
	svc *appsvcs.Services
}

// NewPostItemHandler returns a PostItemHandler backed by the given services.
func NewPostItemHandler(svc *appsvcs.Services) *PostItemHandler {
	return &PostItemHandler{svc: svc}
}

// Execute creates a new item.
//
//	@Summary		Create item
//	@Description	Creates a new item scoped to the caller's organization. Component titles must match the title whitelist.
//	@Tags			items
//	@Accept			json
//	@Produce		json
//	@Param			request	body		CreateItemRequest	true	"Item creation request"
//	@Success		201		{object}	ItemResponse
//	@Failure		400		{object}	ErrorResponse
//	@Failure		401		{object}	ErrorResponse
//	@Failure		422		{object}	ErrorResponse
//	@Router			/items [post]
func (h *PostItemHandler) Execute(w http.ResponseWriter, r *http.Request) {
	orgID, ok := requireOrgID(w, r)
	if !ok {
		return
	}

	req, ok := pkgvalidator.ValidateRequest[CreateItemRequest](w, r)
	if !ok {
		return
	}

	item, err := h.svc.Item.Create(r.Context(), orgID, req.Type, req.Title)
	if err != nil {
		errhttp.WriteSafeError(w, r, err, h.svc.Production)
		return
	}

	httpx.JSON(w, http.StatusCreated, toItemResponse(item))
}
