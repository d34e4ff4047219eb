// Package service provides business logic for the catalog module.
package service

import (
	"context"
	"mime/multipart"
	"strings"

	"github.com/google/uuid"

	"catalog_portal_backend/internal/adapters/storage"
	"catalog_portal_backend/internal/catalog/repository"
	"catalog_portal_backend/internal/catalog/transport"
	"catalog_portal_backend/internal/media"
	"catalog_portal_backend/platform/apperr"
	"catalog_portal_backend/platform/logger"
)

// Service provides business logic for brands and products.
type Service struct {
	repo     repository.Repository
	storage  storage.StorageService
	uploader *media.Uploader
	bucket   string
	log      *logger.Logger
}

// New creates a new catalog service. bucket is the product media bucket used
// for presigned download URLs.
func New(repo repository.Repository, storageSvc storage.StorageService, uploader *media.Uploader, bucket string, log *logger.Logger) *Service {
	return &Service{repo: repo, storage: storageSvc, uploader: uploader, bucket: bucket, log: log}
}

// Repository exposes the repository for cross-module readers (sharing,
// assembly resolution).
func (s *Service) Repository() repository.Repository {
	return s.repo
}

// =============================================================================
// Brands
// =============================================================================

// CreateBrand creates a new brand.
func (s *Service) CreateBrand(ctx context.Context, req transport.CreateBrandRequest) (transport.BrandResponse, error) {
	brand, err := s.repo.CreateBrand(ctx, repository.CreateBrandParams{
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
	})
	if err != nil {
		return transport.BrandResponse{}, err
	}

	s.log.Info("brand created", "id", brand.ID, "name", brand.Name)
	return toBrandResponse(brand), nil
}

// UpdateBrand updates an existing brand.
func (s *Service) UpdateBrand(ctx context.Context, id uuid.UUID, req transport.UpdateBrandRequest) (transport.BrandResponse, error) {
	brand, err := s.repo.UpdateBrand(ctx, repository.UpdateBrandParams{
		ID:          id,
		Name:        trimPtr(req.Name),
		Description: req.Description,
	})
	if err != nil {
		return transport.BrandResponse{}, err
	}

	s.log.Info("brand updated", "id", brand.ID, "name", brand.Name)
	return toBrandResponse(brand), nil
}

// DeleteBrand deletes a brand and its products.
func (s *Service) DeleteBrand(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.DeleteBrand(ctx, id); err != nil {
		return err
	}
	s.log.Info("brand deleted", "id", id)
	return nil
}

// GetBrandByID retrieves a brand by ID.
func (s *Service) GetBrandByID(ctx context.Context, id uuid.UUID) (transport.BrandResponse, error) {
	brand, err := s.repo.GetBrandByID(ctx, id)
	if err != nil {
		return transport.BrandResponse{}, err
	}
	return toBrandResponse(brand), nil
}

// ListBrands lists all brands.
func (s *Service) ListBrands(ctx context.Context) ([]transport.BrandResponse, error) {
	brands, err := s.repo.ListBrands(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]transport.BrandResponse, 0, len(brands))
	for _, b := range brands {
		out = append(out, toBrandResponse(b))
	}
	return out, nil
}

// =============================================================================
// Products
// =============================================================================

// CreateProduct creates a new product.
func (s *Service) CreateProduct(ctx context.Context, req transport.CreateProductRequest) (transport.ProductResponse, error) {
	if _, err := s.repo.GetBrandByID(ctx, req.BrandID); err != nil {
		return transport.ProductResponse{}, err
	}

	product, err := s.repo.CreateProduct(ctx, repository.CreateProductParams{
		BrandID:     req.BrandID,
		Name:        strings.TrimSpace(req.Name),
		SKU:         strings.TrimSpace(req.SKU),
		Description: req.Description,
		PriceCents:  req.PriceCents,
		Dimensions:  req.Dimensions,
		Material:    req.Material,
	})
	if err != nil {
		return transport.ProductResponse{}, err
	}

	s.log.Info("product created", "id", product.ID, "sku", product.SKU)
	return toProductResponse(product), nil
}

// UpdateProduct updates an existing product.
func (s *Service) UpdateProduct(ctx context.Context, id uuid.UUID, req transport.UpdateProductRequest) (transport.ProductResponse, error) {
	if req.BrandID != nil {
		if _, err := s.repo.GetBrandByID(ctx, *req.BrandID); err != nil {
			return transport.ProductResponse{}, err
		}
	}

	product, err := s.repo.UpdateProduct(ctx, repository.UpdateProductParams{
		ID:          id,
		BrandID:     req.BrandID,
		Name:        trimPtr(req.Name),
		SKU:         trimPtr(req.SKU),
		Description: req.Description,
		PriceCents:  req.PriceCents,
		Dimensions:  req.Dimensions,
		Material:    req.Material,
	})
	if err != nil {
		return transport.ProductResponse{}, err
	}

	s.log.Info("product updated", "id", product.ID, "sku", product.SKU)
	return toProductResponse(product), nil
}

// DeleteProduct deletes a product.
func (s *Service) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.DeleteProduct(ctx, id); err != nil {
		return err
	}
	s.log.Info("product deleted", "id", id)
	return nil
}

// GetProductByID retrieves a product by ID.
func (s *Service) GetProductByID(ctx context.Context, id uuid.UUID) (transport.ProductResponse, error) {
	product, err := s.repo.GetProductByID(ctx, id)
	if err != nil {
		return transport.ProductResponse{}, err
	}
	return toProductResponse(product), nil
}

// ListProductsWithFilters retrieves products with search and pagination.
func (s *Service) ListProductsWithFilters(ctx context.Context, req transport.ListProductsRequest) (transport.ProductListResponse, error) {
	page := req.Page
	pageSize := req.PageSize
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}

	var brandID *uuid.UUID
	if req.BrandID != "" {
		parsed, err := uuid.Parse(req.BrandID)
		if err != nil {
			return transport.ProductListResponse{}, apperr.Validation("invalid brand id")
		}
		brandID = &parsed
	}

	items, total, err := s.repo.ListProducts(ctx, repository.ListProductsParams{
		Search:    strings.TrimSpace(req.Search),
		BrandID:   brandID,
		Offset:    (page - 1) * pageSize,
		Limit:     pageSize,
		SortBy:    req.SortBy,
		SortOrder: req.SortOrder,
	})
	if err != nil {
		return transport.ProductListResponse{}, err
	}

	out := make([]transport.ProductResponse, 0, len(items))
	for _, p := range items {
		out = append(out, toProductResponse(p))
	}

	return transport.ProductListResponse{
		Items:    out,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}, nil
}

// =============================================================================
// Product media (two-phase upload)
// =============================================================================

// UploadProductPDF starts a background upload of the product's spec sheet.
// The record is returned immediately; pdf_key stays null until the worker
// completes the upload.
func (s *Service) UploadProductPDF(ctx context.Context, id uuid.UUID, header *multipart.FileHeader) error {
	if !storage.IsPDFContentType(header.Header.Get("Content-Type")) {
		return apperr.Validation("product spec sheet must be a PDF")
	}
	return s.enqueueMedia(ctx, media.TargetProductPDF, id, header)
}

// UploadProductImage starts a background upload of the product's image.
func (s *Service) UploadProductImage(ctx context.Context, id uuid.UUID, header *multipart.FileHeader) error {
	if !storage.IsImageContentType(header.Header.Get("Content-Type")) {
		return apperr.Validation("product image must be an image")
	}
	return s.enqueueMedia(ctx, media.TargetProductImage, id, header)
}

func (s *Service) enqueueMedia(ctx context.Context, targetKind string, id uuid.UUID, header *multipart.FileHeader) error {
	if _, err := s.repo.GetProductByID(ctx, id); err != nil {
		return err
	}

	contentType := header.Header.Get("Content-Type")
	if err := s.storage.ValidateContentType(contentType); err != nil {
		return apperr.Validation(err.Error())
	}
	if err := s.storage.ValidateFileSize(header.Size); err != nil {
		return apperr.Validation(err.Error())
	}

	f, err := header.Open()
	if err != nil {
		return apperr.Wrap(apperr.KindBadRequest, "could not read uploaded file", err)
	}
	defer f.Close()

	return s.uploader.Enqueue(ctx, targetKind, id, header.Filename, contentType, f)
}

// GetProductPDFStatus reports whether the product's spec sheet is available,
// with a presigned download URL when it is. A null key means the background
// upload has not completed yet.
func (s *Service) GetProductPDFStatus(ctx context.Context, id uuid.UUID) (transport.MediaStatusResponse, error) {
	product, err := s.repo.GetProductByID(ctx, id)
	if err != nil {
		return transport.MediaStatusResponse{}, err
	}
	if product.PDFKey == nil {
		return transport.MediaStatusResponse{Available: false}, nil
	}

	presigned, err := s.storage.GenerateDownloadURL(ctx, s.bucket, *product.PDFKey)
	if err != nil {
		return transport.MediaStatusResponse{}, apperr.Wrap(apperr.KindInternal, "could not generate download url", err)
	}
	return transport.MediaStatusResponse{Available: true, URL: presigned.URL}, nil
}

// =============================================================================
// Mapping helpers
// =============================================================================

func toBrandResponse(b repository.Brand) transport.BrandResponse {
	return transport.BrandResponse{
		ID:          b.ID,
		Name:        b.Name,
		Description: b.Description,
		CreatedAt:   b.CreatedAt,
		UpdatedAt:   b.UpdatedAt,
	}
}

func toProductResponse(p repository.Product) transport.ProductResponse {
	return transport.ProductResponse{
		ID:          p.ID,
		BrandID:     p.BrandID,
		Name:        p.Name,
		SKU:         p.SKU,
		Description: p.Description,
		PriceCents:  p.PriceCents,
		Dimensions:  p.Dimensions,
		Material:    p.Material,
		ImageRef:    p.ImageKey,
		PDFRef:      p.PDFKey,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func trimPtr(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	return &trimmed
}
