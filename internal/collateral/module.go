// Package collateral provides the marketing document bounded context module.
// Collateral covers corporate front and back pages, advertisements and
// promotions that get merged into generated catalog PDFs.
package collateral

import (
	apphttp "catalog_portal_backend/internal/http"

	"github.com/jackc/pgx/v5/pgxpool"

	"catalog_portal_backend/internal/adapters/storage"
	"catalog_portal_backend/internal/collateral/handler"
	"catalog_portal_backend/internal/collateral/repository"
	"catalog_portal_backend/internal/collateral/service"
	"catalog_portal_backend/internal/media"
	"catalog_portal_backend/platform/logger"
	"catalog_portal_backend/platform/validator"
)

// Module is the collateral bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
	repo    repository.Repository
}

// NewModule creates and initializes the collateral module.
func NewModule(pool *pgxpool.Pool, storageSvc storage.StorageService, uploader *media.Uploader, bucket string, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, storageSvc, uploader, bucket, log)
	h := handler.New(svc, val)

	return &Module{
		handler: h,
		service: svc,
		repo:    repo,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "collateral"
}

// Service returns the collateral service for external use.
func (m *Module) Service() *service.Service {
	return m.service
}

// Repository returns the collateral repository for cross-module readers
// (assembly source lookup, media worker key updates).
func (m *Module) Repository() repository.Repository {
	return m.repo
}

// RegisterRoutes mounts collateral routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	// Authenticated read access for the dashboard
	group := ctx.Protected.Group("/collateral")
	group.GET("", m.handler.List)
	group.GET("/:id", m.handler.GetByID)
	group.GET("/:id/download", m.handler.GetDownloadURL)

	// Admin-only mutations
	adminGroup := ctx.Admin.Group("/collateral")
	adminGroup.POST("", m.handler.Create)
	adminGroup.PUT("/:id", m.handler.Update)
	adminGroup.DELETE("/:id", m.handler.Delete)
	adminGroup.POST("/:id/file", m.handler.ReplaceFile)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
