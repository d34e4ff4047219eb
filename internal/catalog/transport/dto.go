// Package transport defines request and response DTOs for the catalog module.
package transport

import "github.com/google/uuid"

// =============================================================================
// Brands
// =============================================================================

// BrandResponse is the API representation of a brand.
type BrandResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   string    `json:"createdAt"`
	UpdatedAt   string    `json:"updatedAt"`
}

// CreateBrandRequest creates a brand.
type CreateBrandRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=200"`
	Description string `json:"description" validate:"max=2000"`
}

// UpdateBrandRequest updates a brand. Nil fields are left unchanged.
type UpdateBrandRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=200"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
}

// =============================================================================
// Products
// =============================================================================

// ProductResponse is the API representation of a product. ImageRef and PDFRef
// are null until the corresponding background upload has completed.
type ProductResponse struct {
	ID          uuid.UUID `json:"id"`
	BrandID     uuid.UUID `json:"brandId"`
	Name        string    `json:"name"`
	SKU         string    `json:"sku"`
	Description string    `json:"description"`
	PriceCents  int64     `json:"priceCents"`
	Dimensions  string    `json:"dimensions"`
	Material    string    `json:"material"`
	ImageRef    *string   `json:"imageRef"`
	PDFRef      *string   `json:"pdfRef"`
	CreatedAt   string    `json:"createdAt"`
	UpdatedAt   string    `json:"updatedAt"`
}

// ProductListResponse is a paginated product list.
type ProductListResponse struct {
	Items    []ProductResponse `json:"items"`
	Total    int               `json:"total"`
	Page     int               `json:"page"`
	PageSize int               `json:"pageSize"`
}

// ListProductsRequest filters the product listing.
type ListProductsRequest struct {
	Page      int    `form:"page" validate:"omitempty,min=1"`
	PageSize  int    `form:"pageSize" validate:"omitempty,min=1,max=100"`
	Search    string `form:"search" validate:"omitempty,max=200"`
	BrandID   string `form:"brandId" validate:"omitempty,uuid"`
	SortBy    string `form:"sortBy" validate:"omitempty,oneof=name sku priceCents createdAt updatedAt"`
	SortOrder string `form:"sortOrder" validate:"omitempty,oneof=asc desc"`
}

// CreateProductRequest creates a product.
type CreateProductRequest struct {
	BrandID     uuid.UUID `json:"brandId" validate:"required"`
	Name        string    `json:"name" validate:"required,min=1,max=200"`
	SKU         string    `json:"sku" validate:"required,min=1,max=100"`
	Description string    `json:"description" validate:"max=5000"`
	PriceCents  int64     `json:"priceCents" validate:"min=0"`
	Dimensions  string    `json:"dimensions" validate:"max=200"`
	Material    string    `json:"material" validate:"max=200"`
}

// UpdateProductRequest updates a product. Nil fields are left unchanged.
type UpdateProductRequest struct {
	BrandID     *uuid.UUID `json:"brandId"`
	Name        *string    `json:"name" validate:"omitempty,min=1,max=200"`
	SKU         *string    `json:"sku" validate:"omitempty,min=1,max=100"`
	Description *string    `json:"description" validate:"omitempty,max=5000"`
	PriceCents  *int64     `json:"priceCents" validate:"omitempty,min=0"`
	Dimensions  *string    `json:"dimensions" validate:"omitempty,max=200"`
	Material    *string    `json:"material" validate:"omitempty,max=200"`
}

// MediaStatusResponse reports availability of a product's media.
type MediaStatusResponse struct {
	Available bool   `json:"available"`
	URL       string `json:"url,omitempty"`
}
