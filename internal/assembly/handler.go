package assembly

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"catalog_portal_backend/platform/httpkit"
	"catalog_portal_backend/platform/validator"
)

// AdditionalPageRequest is one advert or promotion with its wizard position.
type AdditionalPageRequest struct {
	ID       string `json:"id" validate:"required,uuid"`
	Position int    `json:"position" validate:"required,min=2"`
}

// GenerateRequest is the wizard submission for a merged catalog document.
type GenerateRequest struct {
	FrontCorporateID string                  `json:"frontCorporateId" validate:"required,uuid"`
	BackCorporateID  string                  `json:"backCorporateId" validate:"required,uuid"`
	ProductIDs       []string                `json:"productIds" validate:"required,min=1,dive,uuid"`
	AdditionalPages  []AdditionalPageRequest `json:"additionalPages" validate:"omitempty,dive"`
	ClientID         *string                 `json:"clientId" validate:"omitempty,uuid"`
}

// GenerateResponse carries the download URL of the merged document plus what
// had to be left out.
type GenerateResponse struct {
	URL       string         `json:"url"`
	PageCount int            `json:"pageCount"`
	Skipped   []SkippedEntry `json:"skipped"`
}

// Handler handles HTTP requests for PDF assembly.
type Handler struct {
	svc *Service
	val *validator.Validator
}

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

// NewHandler creates a new assembly handler.
func NewHandler(svc *Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// Generate assembles a merged catalog PDF from the wizard selection.
// POST /api/v1/pdf/generate
func (h *Handler) Generate(c *gin.Context) {
	var req GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	front, _ := uuid.Parse(req.FrontCorporateID)
	back, _ := uuid.Parse(req.BackCorporateID)

	productIDs := make([]uuid.UUID, 0, len(req.ProductIDs))
	for _, raw := range req.ProductIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, "invalid product id")
			return
		}
		productIDs = append(productIDs, id)
	}

	pages := make([]PageRef, 0, len(req.AdditionalPages))
	for _, page := range req.AdditionalPages {
		id, err := uuid.Parse(page.ID)
		if err != nil {
			httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, "invalid additional page id")
			return
		}
		pages = append(pages, PageRef{ID: id, Position: page.Position})
	}

	var clientID *uuid.UUID
	if req.ClientID != nil {
		id, err := uuid.Parse(*req.ClientID)
		if err != nil {
			httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, "invalid client id")
			return
		}
		clientID = &id
	}

	result, err := h.svc.GenerateForRequest(c.Request.Context(), front, back, productIDs, pages, identity.UserID(), clientID)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, GenerateResponse{
		URL:       result.URL,
		PageCount: result.PageCount,
		Skipped:   result.Skipped,
	})
}
