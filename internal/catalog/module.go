// Package catalog provides the brand and product bounded context module.
package catalog

import (
	apphttp "catalog_portal_backend/internal/http"

	"github.com/jackc/pgx/v5/pgxpool"

	"catalog_portal_backend/internal/adapters/storage"
	"catalog_portal_backend/internal/catalog/handler"
	"catalog_portal_backend/internal/catalog/repository"
	"catalog_portal_backend/internal/catalog/service"
	"catalog_portal_backend/internal/media"
	"catalog_portal_backend/platform/logger"
	"catalog_portal_backend/platform/validator"
)

// Module is the catalog bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
	repo    repository.Repository
}

// NewModule creates and initializes the catalog module with all its dependencies.
// bucket is the product media bucket used for presigned download URLs.
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
	return "catalog"
}

// Service returns the catalog service for external use.
func (m *Module) Service() *service.Service {
	return m.service
}

// Repository returns the catalog repository for cross-module readers
// (sharing resolution, assembly source lookup, media worker key updates).
func (m *Module) Repository() repository.Repository {
	return m.repo
}

// RegisterRoutes mounts catalog routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	// Authenticated read access for the dashboard
	catalogGroup := ctx.Protected.Group("/catalog")
	catalogGroup.GET("/brands", m.handler.ListBrands)
	catalogGroup.GET("/brands/:id", m.handler.GetBrandByID)
	catalogGroup.GET("/products", m.handler.ListProducts)
	catalogGroup.GET("/products/:id", m.handler.GetProductByID)
	catalogGroup.GET("/products/:id/pdf", m.handler.GetProductPDFStatus)

	// Admin-only mutations
	adminGroup := ctx.Admin.Group("/catalog")
	adminGroup.POST("/brands", m.handler.CreateBrand)
	adminGroup.PUT("/brands/:id", m.handler.UpdateBrand)
	adminGroup.DELETE("/brands/:id", m.handler.DeleteBrand)
	adminGroup.POST("/products", m.handler.CreateProduct)
	adminGroup.PUT("/products/:id", m.handler.UpdateProduct)
	adminGroup.DELETE("/products/:id", m.handler.DeleteProduct)
	adminGroup.POST("/products/:id/pdf", m.handler.UploadProductPDF)
	adminGroup.POST("/products/:id/image", m.handler.UploadProductImage)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
