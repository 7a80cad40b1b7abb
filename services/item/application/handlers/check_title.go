package handlers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/ghuser/titleguard/pkg/errhttp"
	"github.com/ghuser/titleguard/pkg/httpx"
	pkgvalidator "github.com/ghuser/titleguard/pkg/validator"
	appsvcs "github.com/ghuser/titleguard/services/item/application/services"
	"github.com/ghuser/titleguard/services/item/domain/models"
)

// CheckTitleRequest is the request body for POST /titles/check.
type CheckTitleRequest struct {
	Title string `json:"title" validate:"required" example:"Café Menu"`
} // @name CheckTitleRequest

// CheckTitleResponse reports whether a Component title would be accepted.
type CheckTitleResponse struct {
	Valid   bool                      `json:"valid"             example:"false"`
	Message *models.ValidationMessage `json:"message,omitempty"`
} // @name CheckTitleResponse

// MessageResponse is one message-center notification.
type MessageResponse struct {
	ID            string `json:"id"`
	ItemID        string `json:"item_id,omitempty"`
	Severity      string `json:"severity"       example:"error"`
	MessageTitle  string `json:"message_title"  example:"Invalid Component Title"`
	MessageBody   string `json:"message_body"`
	MessageDetail string `json:"message_detail"`
	CreatedAt     string `json:"created_at"     example:"2024-01-15T10:30:00Z"`
} // @name MessageResponse

// TitleHandler serves the dry-run check and the message center.
type TitleHandler struct {
	svc *appsvcs.Services
}

// NewTitleHandler returns a TitleHandler backed by the given services.
func NewTitleHandler(svc *appsvcs.Services) *TitleHandler {
	return &TitleHandler{svc: svc}
}

// Check validates a Component title without saving or notifying.
//
//	@Summary	Check title
//	@Tags		titles
//	@Accept		json
//	@Produce	json
//	@Param		request	body		CheckTitleRequest	true	"Title to check"
//	@Success	200		{object}	CheckTitleResponse
//	@Failure	400		{object}	ErrorResponse
//	@Failure	401		{object}	ErrorResponse
//	@Router		/titles/check [post]
func (h *TitleHandler) Check(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireOrgID(w, r); !ok {
		return
	}
	req, ok := pkgvalidator.ValidateRequest[CheckTitleRequest](w, r)
	if !ok {
		return
	}

	msg, rejected := h.svc.Item.Check(req.Title)
	if !rejected {
		httpx.JSON(w, http.StatusOK, CheckTitleResponse{Valid: true})
		return
	}
	httpx.JSON(w, http.StatusOK, CheckTitleResponse{Valid: false, Message: &msg})
}

// Messages lists the org's recent notifications, newest first.
//
//	@Summary	List messages
//	@Tags		titles
//	@Produce	json
//	@Param		limit	query		int	false	"Maximum messages (1-100)"	default(20)
//	@Success	200		{array}		MessageResponse
//	@Failure	401		{object}	ErrorResponse
//	@Router		/messages [get]
func (h *TitleHandler) Messages(w http.ResponseWriter, r *http.Request) {
	orgID, ok := requireOrgID(w, r)
	if !ok {
		return
	}

	msgs, err := h.svc.Messages.Recent(r.Context(), orgID, intQuery(r, "limit", 20, 1, 100))
	if err != nil {
		errhttp.WriteSafeError(w, r, err, h.svc.Production)
		return
	}

	resp := make([]MessageResponse, len(msgs))
	for i, m := range msgs {
		resp[i] = MessageResponse{
			ID:            m.ID.String(),
			Severity:      m.Severity,
			MessageTitle:  m.MessageTitle,
			MessageBody:   m.MessageBody,
			MessageDetail: m.MessageDetail,
			CreatedAt:     m.CreatedAt.Format(time.RFC3339),
		}
		if m.ItemID != uuid.Nil {
			resp[i].ItemID = m.ItemID.String()
		}
	}
	httpx.JSON(w, http.StatusOK, resp)
}
