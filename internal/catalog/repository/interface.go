// Package repository provides persistence for the catalog module.
package repository

import (
	"context"

	"github.com/google/uuid"
)

// Brand is a persisted brand record.
type Brand struct {
	ID          uuid.UUID
	Name        string
	Description string
	CreatedAt   string
	UpdatedAt   string
}

// Product is a persisted product record. ImageKey and PDFKey are nil until
// the corresponding background upload has completed.
type Product struct {
	ID          uuid.UUID
	BrandID     uuid.UUID
	Name        string
	SKU         string
	Description string
	PriceCents  int64
	Dimensions  string
	Material    string
	ImageKey    *string
	PDFKey      *string
	CreatedAt   string
	UpdatedAt   string
}

// CreateBrandParams holds the fields for creating a brand.
type CreateBrandParams struct {
	Name        string
	Description string
}

// UpdateBrandParams holds the fields for updating a brand.
type UpdateBrandParams struct {
	ID          uuid.UUID
	Name        *string
	Description *string
}

// CreateProductParams holds the fields for creating a product.
type CreateProductParams struct {
	BrandID     uuid.UUID
	Name        string
	SKU         string
	Description string
	PriceCents  int64
	Dimensions  string
	Material    string
}

// UpdateProductParams holds the fields for updating a product.
type UpdateProductParams struct {
	ID          uuid.UUID
	BrandID     *uuid.UUID
	Name        *string
	SKU         *string
	Description *string
	PriceCents  *int64
	Dimensions  *string
	Material    *string
}

// ListProductsParams filters the product listing.
type ListProductsParams struct {
	Search    string
	BrandID   *uuid.UUID
	Offset    int
	Limit     int
	SortBy    string
	SortOrder string
}

// Repository defines catalog persistence operations.
type Repository interface {
	CreateBrand(ctx context.Context, params CreateBrandParams) (Brand, error)
	UpdateBrand(ctx context.Context, params UpdateBrandParams) (Brand, error)
	DeleteBrand(ctx context.Context, id uuid.UUID) error
	GetBrandByID(ctx context.Context, id uuid.UUID) (Brand, error)
	ListBrands(ctx context.Context) ([]Brand, error)

	CreateProduct(ctx context.Context, params CreateProductParams) (Product, error)
	UpdateProduct(ctx context.Context, params UpdateProductParams) (Product, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error
	GetProductByID(ctx context.Context, id uuid.UUID) (Product, error)
	ListProducts(ctx context.Context, params ListProductsParams) ([]Product, int, error)
	// GetProductsByIDs returns the products for the given ids, preserving the
	// order of ids. Missing ids are silently omitted.
	GetProductsByIDs(ctx context.Context, ids []uuid.UUID) ([]Product, error)

	SetProductPDFKey(ctx context.Context, id uuid.UUID, fileKey string) error
	SetProductImageKey(ctx context.Context, id uuid.UUID, fileKey string) error
}
