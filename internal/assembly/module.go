package assembly

import (
	apphttp "catalog_portal_backend/internal/http"

	"catalog_portal_backend/internal/adapters/storage"
	catalogrepo "catalog_portal_backend/internal/catalog/repository"
	collateralrepo "catalog_portal_backend/internal/collateral/repository"
	"catalog_portal_backend/internal/events"
	"catalog_portal_backend/internal/pdf"
	"catalog_portal_backend/platform/config"
	"catalog_portal_backend/platform/logger"
	"catalog_portal_backend/platform/validator"
)

// Module is the assembly bounded context module implementing http.Module.
type Module struct {
	handler *Handler
	service *Service
}

// NewModule creates and initializes the assembly module. It reads product
// spec sheets and collateral files through the given repositories and writes
// merged documents to the merged PDFs bucket.
func NewModule(
	products catalogrepo.Repository,
	collateral collateralrepo.Repository,
	storageSvc storage.StorageService,
	cfg *config.Config,
	bus events.Bus,
	val *validator.Validator,
	log *logger.Logger,
) *Module {
	resolver := NewStorageResolver(
		products,
		collateral,
		storageSvc,
		cfg.GetMinioBucketProductMedia(),
		cfg.GetMinioBucketCollateral(),
		cfg.GetSourceFetchTimeout(),
		cfg.GetResolveConcurrency(),
	)
	merger := pdf.NewMerger(log)
	svc := NewService(resolver, merger, storageSvc, collateral, cfg.GetMinioBucketMergedPDFs(), bus, log)

	return &Module{
		handler: NewHandler(svc, val),
		service: svc,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "assembly"
}

// Service returns the assembly service for external use.
func (m *Module) Service() *Service {
	return m.service
}

// RegisterRoutes mounts assembly routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.Protected.Group("/pdf")
	group.POST("/generate", m.handler.Generate)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
