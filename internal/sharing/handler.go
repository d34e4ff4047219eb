package sharing

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"catalog_portal_backend/platform/apperr"
	"catalog_portal_backend/platform/httpkit"
	"catalog_portal_backend/platform/validator"
)

// CreateShareLinkRequest holds the fields for creating a shareable link.
type CreateShareLinkRequest struct {
	ProductIDs []string `json:"productIds" validate:"required,min=1,dive,uuid"`
	ExpiresAt  *string  `json:"expiresAt" validate:"omitempty"`
	ClientID   *string  `json:"clientId" validate:"omitempty,uuid"`
}

// ShareLinkResponse carries the created slug and its public URL.
type ShareLinkResponse struct {
	Slug      string `json:"slug"`
	URL       string `json:"url"`
	ExpiresAt string `json:"expiresAt"`
}

// ResolveResponse is the live product data behind a valid slug.
type ResolveResponse struct {
	Products  []SharedProduct `json:"products"`
	ExpiresAt string          `json:"expiresAt"`
}

// Handler handles HTTP requests for shareable links.
type Handler struct {
	svc *Service
	val *validator.Validator
}

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

// NewHandler creates a new sharing handler.
func NewHandler(svc *Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// Create creates a shareable link for a product set.
// POST /api/v1/shared-pdf
func (h *Handler) Create(c *gin.Context) {
	var req CreateShareLinkRequest
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

	productIDs := make([]uuid.UUID, 0, len(req.ProductIDs))
	for _, raw := range req.ProductIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, "invalid product id")
			return
		}
		productIDs = append(productIDs, id)
	}

	var expiresAt time.Time
	if req.ExpiresAt != nil {
		parsed, err := time.Parse(time.RFC3339, *req.ExpiresAt)
		if err != nil {
			httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, "expiresAt must be RFC 3339")
			return
		}
		expiresAt = parsed
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

	result, err := h.svc.Create(c.Request.Context(), productIDs, expiresAt, clientID, identity.UserID())
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.JSON(c, http.StatusCreated, ShareLinkResponse{
		Slug:      result.Slug,
		URL:       result.URL,
		ExpiresAt: result.ExpiresAt.Format(time.RFC3339),
	})
}

// Resolve returns live product data for a slug. Unknown and expired slugs
// both answer 404 with an empty product list, since an expired link is a
// steady-state outcome rather than a server fault.
// GET /api/v1/shared-pdf/:slug
func (h *Handler) Resolve(c *gin.Context) {
	result, err := h.svc.Resolve(c.Request.Context(), c.Param("slug"))
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			c.JSON(http.StatusNotFound, ResolveResponse{Products: []SharedProduct{}})
			return
		}
		httpkit.HandleError(c, err)
		return
	}

	httpkit.OK(c, ResolveResponse{
		Products:  result.Products,
		ExpiresAt: result.ExpiresAt.Format(time.RFC3339),
	})
}

// QRCode renders a PNG QR code for the slug's public URL.
// GET /api/v1/shared-pdf/:slug/qr
func (h *Handler) QRCode(c *gin.Context) {
	size := 256
	if raw := c.Query("size"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 64 || parsed > 1024 {
			httpkit.Error(c, http.StatusBadRequest, "size must be between 64 and 1024", nil)
			return
		}
		size = parsed
	}

	png, err := h.svc.QRCode(c.Request.Context(), c.Param("slug"), size)
	if httpkit.HandleError(c, err) {
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}
