package sharing

import (
	apphttp "catalog_portal_backend/internal/http"

	"github.com/jackc/pgx/v5/pgxpool"

	"catalog_portal_backend/internal/adapters/storage"
	catalogrepo "catalog_portal_backend/internal/catalog/repository"
	"catalog_portal_backend/internal/events"
	"catalog_portal_backend/platform/config"
	"catalog_portal_backend/platform/logger"
	"catalog_portal_backend/platform/validator"
)

// Module is the sharing bounded context module implementing http.Module.
type Module struct {
	handler *Handler
	service *Service
}

// NewModule creates and initializes the sharing module. bucket is the
// product media bucket used for presigned URLs in resolved links.
func NewModule(pool *pgxpool.Pool, products catalogrepo.Repository, storageSvc storage.StorageService, cfg *config.Config, bucket string, bus events.Bus, val *validator.Validator, log *logger.Logger) *Module {
	repo := NewRepo(pool)
	svc := NewService(repo, products, storageSvc, cfg, bucket, bus, log)

	return &Module{
		handler: NewHandler(svc, val),
		service: svc,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "sharing"
}

// Service returns the sharing service for external use.
func (m *Module) Service() *Service {
	return m.service
}

// RegisterRoutes mounts sharing routes on the provided router context.
// Creation requires authentication; resolution is public since the slug is
// the capability, behind the stricter public rate limit.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Protected.POST("/shared-pdf", m.handler.Create)

	publicGroup := ctx.Public.Group("/shared-pdf")
	publicGroup.GET("/:slug", m.handler.Resolve)
	publicGroup.GET("/:slug/qr", m.handler.QRCode)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
