package clients

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"catalog_portal_backend/platform/httpkit"
	"catalog_portal_backend/platform/validator"
)

// ClientResponse is a single client record.
type ClientResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Company   string    `json:"company"`
	Email     string    `json:"email"`
	Notes     string    `json:"notes"`
	CreatedAt string    `json:"createdAt"`
	UpdatedAt string    `json:"updatedAt"`
}

// CreateClientRequest holds the fields for creating a client.
type CreateClientRequest struct {
	Name    string `json:"name" validate:"required,min=1,max=200"`
	Company string `json:"company" validate:"max=200"`
	Email   string `json:"email" validate:"omitempty,email"`
	Notes   string `json:"notes" validate:"max=2000"`
}

// UpdateClientRequest holds the fields for updating a client.
type UpdateClientRequest struct {
	Name    *string `json:"name" validate:"omitempty,min=1,max=200"`
	Company *string `json:"company" validate:"omitempty,max=200"`
	Email   *string `json:"email" validate:"omitempty,email"`
	Notes   *string `json:"notes" validate:"omitempty,max=2000"`
}

// Handler handles HTTP requests for clients.
type Handler struct {
	repo Repository
	val  *validator.Validator
}

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
	msgInvalidID        = "invalid id"
)

// NewHandler creates a new clients handler.
func NewHandler(repo Repository, val *validator.Validator) *Handler {
	return &Handler{repo: repo, val: val}
}

// List retrieves clients, optionally filtered by a name/company search.
// GET /api/v1/clients
func (h *Handler) List(c *gin.Context) {
	clients, err := h.repo.List(c.Request.Context(), strings.TrimSpace(c.Query("search")))
	if httpkit.HandleError(c, err) {
		return
	}

	out := make([]ClientResponse, 0, len(clients))
	for _, client := range clients {
		out = append(out, toResponse(client))
	}
	httpkit.OK(c, out)
}

// GetByID retrieves a client.
// GET /api/v1/clients/:id
func (h *Handler) GetByID(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	client, err := h.repo.GetByID(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, toResponse(client))
}

// Create creates a client.
// POST /api/v1/clients
func (h *Handler) Create(c *gin.Context) {
	var req CreateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	client, err := h.repo.Create(c.Request.Context(), CreateParams{
		Name:    strings.TrimSpace(req.Name),
		Company: strings.TrimSpace(req.Company),
		Email:   strings.TrimSpace(req.Email),
		Notes:   req.Notes,
	})
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, toResponse(client))
}

// Update updates a client.
// PUT /api/v1/clients/:id
func (h *Handler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req UpdateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	client, err := h.repo.Update(c.Request.Context(), UpdateParams{
		ID:      id,
		Name:    req.Name,
		Company: req.Company,
		Email:   req.Email,
		Notes:   req.Notes,
	})
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, toResponse(client))
}

// Delete removes a client.
// DELETE /api/v1/clients/:id
func (h *Handler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.repo.Delete(c.Request.Context(), id); httpkit.HandleError(c, err) {
		return
	}
	c.Status(http.StatusNoContent)
}

func toResponse(client Client) ClientResponse {
	return ClientResponse{
		ID:        client.ID,
		Name:      client.Name,
		Company:   client.Company,
		Email:     client.Email,
		Notes:     client.Notes,
		CreatedAt: client.CreatedAt,
		UpdatedAt: client.UpdatedAt,
	}
}

func parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return uuid.UUID{}, false
	}
	return id, true
}
