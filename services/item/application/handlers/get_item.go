package handlers

import (
	"net/http"

	"github.com/ghuser/titleguard/pkg/errhttp"
	"github.com/ghuser/titleguard/pkg/httpx"
	appsvcs "github.com/ghuser/titleguard/services/item/application/services"
	"github.com/ghuser/titleguard/services/item/domain/repositories"
)

// ListItemsResponse is a page of items.
type ListItemsResponse struct {
	Items  []ItemResponse `json:"items"`
	Total  int            `json:"total"  example:"42"`
	Limit  int            `json:"limit"  example:"20"`
	Offset int            `json:"offset" example:"0"`
} // @name ListItemsResponse

// GetItemHandler handles item reads and deletes.
type GetItemHandler struct {
	svc *appsvcs.Services
}

// NewGetItemHandler returns a GetItemHandler backed by the given services.
func NewGetItemHandler(svc *appsvcs.Services) *GetItemHandler {
	return &GetItemHandler{svc: svc}
}

// Get returns one item.
//
//	@Summary	Get item
//	@Tags		items
//	@Produce	json
//	@Param		id	path		string	true	"Item ID"	format(uuid)
//	@Success	200	{object}	ItemResponse
//	@Failure	400	{object}	ErrorResponse
//	@Failure	401	{object}	ErrorResponse
//	@Failure	404	{object}	ErrorResponse
//	@Router		/items/{id} [get]
func (h *GetItemHandler) Get(w http.ResponseWriter, r *http.Request) {
	orgID, ok := requireOrgID(w, r)
	if !ok {
		return
	}
	id, ok := itemIDParam(w, r)
	if !ok {
		return
	}

	item, err := h.svc.Item.GetByID(r.Context(), orgID, id)
	if err != nil {
		errhttp.WriteSafeError(w, r, err, h.svc.Production)
		return
	}
	httpx.JSON(w, http.StatusOK, toItemResponse(item))
}

// List returns a page of the org's items.
//
//	@Summary	List items
//	@Tags		items
//	@Produce	json
//	@Param		limit	query		int	false	"Page size (1-100)"	default(20)
//	@Param		offset	query		int	false	"Items to skip"		default(0)
//	@Success	200		{object}	ListItemsResponse
//	@Failure	401		{object}	ErrorResponse
//	@Router		/items [get]
func (h *GetItemHandler) List(w http.ResponseWriter, r *http.Request) {
	orgID, ok := requireOrgID(w, r)
	if !ok {
		return
	}
	opts := repositories.QueryOpts{
		Limit:  intQuery(r, "limit", repositories.DefaultPageSize, 1, 100),
		Offset: intQuery(r, "offset", 0, 0, 1<<30),
	}

	items, total, err := h.svc.Item.List(r.Context(), orgID, opts)
	if err != nil {
		errhttp.WriteSafeError(w, r, err, h.svc.Production)
		return
	}

	resp := ListItemsResponse{Items: make([]ItemResponse, len(items)), Total: total, Limit: opts.Limit, Offset: opts.Offset}
	for i, item := range items {
		resp.Items[i] = toItemResponse(item)
	}
	httpx.JSON(w, http.StatusOK, resp)
}

// Delete removes one item.
//
//	@Summary	Delete item
//	@Tags		items
//	@Param		id	path	string	true	"Item ID"	format(uuid)
//	@Success	204
//	@Failure	400	{object}	ErrorResponse
//	@Failure	401	{object}	ErrorResponse
//	@Failure	404	{object}	ErrorResponse
//	@Router		/items/{id} [delete]
func (h *GetItemHandler) Delete(w http.ResponseWriter, r *http.Request) {
	orgID, ok := requireOrgID(w, r)
	if !ok {
		return
	}
	id, ok := itemIDParam(w, r)
	if !ok {
		return
	}

	if err := h.svc.Item.Delete(r.Context(), orgID, id); err != nil {
		errhttp.WriteSafeError(w, r, err, h.svc.Production)
		return
	}
	httpx.NoContent(w)
}
