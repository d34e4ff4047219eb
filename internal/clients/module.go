// Package clients provides the client address book bounded context module.
// Clients are the optional recipients attached to shared catalog links.
package clients

import (
	apphttp "catalog_portal_backend/internal/http"

	"github.com/jackc/pgx/v5/pgxpool"

	"catalog_portal_backend/platform/validator"
)

// Module is the clients bounded context module implementing http.Module.
type Module struct {
	handler *Handler
	repo    Repository
}

// NewModule creates and initializes the clients module.
func NewModule(pool *pgxpool.Pool, val *validator.Validator) *Module {
	repo := NewRepo(pool)
	return &Module{
		handler: NewHandler(repo, val),
		repo:    repo,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "clients"
}

// Repository returns the client repository for cross-module readers (sharing).
func (m *Module) Repository() Repository {
	return m.repo
}

// RegisterRoutes mounts client routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.Protected.Group("/clients")
	group.GET("", m.handler.List)
	group.GET("/:id", m.handler.GetByID)
	group.POST("", m.handler.Create)
	group.PUT("/:id", m.handler.Update)
	group.DELETE("/:id", m.handler.Delete)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
