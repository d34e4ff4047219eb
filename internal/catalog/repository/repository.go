package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"catalog_portal_backend/platform/apperr"
)

const (
	brandNotFoundMessage   = "brand not found"
	productNotFoundMessage = "product not found"
)

// Repo implements the catalog repository.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new catalog repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Compile-time check that Repo implements Repository.
var _ Repository = (*Repo)(nil)

// CreateBrand creates a brand.
func (r *Repo) CreateBrand(ctx context.Context, params CreateBrandParams) (Brand, error) {
	query := `
		INSERT INTO brands (name, description)
		VALUES ($1, $2)
		RETURNING id, name, description, created_at, updated_at`

	return r.scanBrand(r.pool.QueryRow(ctx, query, params.Name, params.Description), "create brand")
}

// UpdateBrand updates a brand.
func (r *Repo) UpdateBrand(ctx context.Context, params UpdateBrandParams) (Brand, error) {
	query := `
		UPDATE brands
		SET name = COALESCE($2, name),
			description = COALESCE($3, description),
			updated_at = now()
		WHERE id = $1
		RETURNING id, name, description, created_at, updated_at`

	brand, err := r.scanBrand(r.pool.QueryRow(ctx, query, params.ID, params.Name, params.Description), "update brand")
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return Brand{}, apperr.NotFound(brandNotFoundMessage)
		}
		return Brand{}, err
	}
	return brand, nil
}

// DeleteBrand deletes a brand and, via FK cascade, its products.
func (r *Repo) DeleteBrand(ctx context.Context, id uuid.UUID) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM brands WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete brand: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound(brandNotFoundMessage)
	}
	return nil
}

// GetBrandByID retrieves a brand by ID.
func (r *Repo) GetBrandByID(ctx context.Context, id uuid.UUID) (Brand, error) {
	query := `
		SELECT id, name, description, created_at, updated_at
		FROM brands
		WHERE id = $1`

	brand, err := r.scanBrand(r.pool.QueryRow(ctx, query, id), "get brand by id")
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return Brand{}, apperr.NotFound(brandNotFoundMessage)
		}
		return Brand{}, err
	}
	return brand, nil
}

// ListBrands lists all brands ordered by name.
func (r *Repo) ListBrands(ctx context.Context) ([]Brand, error) {
	query := `
		SELECT id, name, description, created_at, updated_at
		FROM brands
		ORDER BY name ASC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list brands: %w", err)
	}
	defer rows.Close()

	brands := make([]Brand, 0)
	for rows.Next() {
		var brand Brand
		var createdAt, updatedAt time.Time
		if err := rows.Scan(&brand.ID, &brand.Name, &brand.Description, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("scan brand: %w", err)
		}
		brand.CreatedAt = createdAt.Format(time.RFC3339)
		brand.UpdatedAt = updatedAt.Format(time.RFC3339)
		brands = append(brands, brand)
	}
	return brands, rows.Err()
}

func (r *Repo) scanBrand(row pgx.Row, op string) (Brand, error) {
	var brand Brand
	var createdAt, updatedAt time.Time
	if err := row.Scan(&brand.ID, &brand.Name, &brand.Description, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Brand{}, apperr.NotFound(brandNotFoundMessage)
		}
		return Brand{}, fmt.Errorf("%s: %w", op, err)
	}
	brand.CreatedAt = createdAt.Format(time.RFC3339)
	brand.UpdatedAt = updatedAt.Format(time.RFC3339)
	return brand, nil
}

const productColumns = `id, brand_id, name, sku, description, price_cents, dimensions, material, image_key, pdf_key, created_at, updated_at`

// CreateProduct creates a product.
func (r *Repo) CreateProduct(ctx context.Context, params CreateProductParams) (Product, error) {
	query := `
		INSERT INTO products (brand_id, name, sku, description, price_cents, dimensions, material)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + productColumns

	return r.scanProduct(r.pool.QueryRow(ctx, query,
		params.BrandID, params.Name, params.SKU, params.Description,
		params.PriceCents, params.Dimensions, params.Material,
	), "create product")
}

// UpdateProduct updates a product.
func (r *Repo) UpdateProduct(ctx context.Context, params UpdateProductParams) (Product, error) {
	query := `
		UPDATE products
		SET brand_id = COALESCE($2, brand_id),
			name = COALESCE($3, name),
			sku = COALESCE($4, sku),
			description = COALESCE($5, description),
			price_cents = COALESCE($6, price_cents),
			dimensions = COALESCE($7, dimensions),
			material = COALESCE($8, material),
			updated_at = now()
		WHERE id = $1
		RETURNING ` + productColumns

	product, err := r.scanProduct(r.pool.QueryRow(ctx, query,
		params.ID, params.BrandID, params.Name, params.SKU, params.Description,
		params.PriceCents, params.Dimensions, params.Material,
	), "update product")
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return Product{}, apperr.NotFound(productNotFoundMessage)
		}
		return Product{}, err
	}
	return product, nil
}

// DeleteProduct deletes a product. Manifest entries referencing the id are
// request-scoped and resolve as failures downstream.
func (r *Repo) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound(productNotFoundMessage)
	}
	return nil
}

// GetProductByID retrieves a product by ID.
func (r *Repo) GetProductByID(ctx context.Context, id uuid.UUID) (Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	product, err := r.scanProduct(r.pool.QueryRow(ctx, query, id), "get product by id")
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return Product{}, apperr.NotFound(productNotFoundMessage)
		}
		return Product{}, err
	}
	return product, nil
}

// ListProducts lists products with filters and pagination.
func (r *Repo) ListProducts(ctx context.Context, params ListProductsParams) ([]Product, int, error) {
	whereClauses := []string{"TRUE"}
	args := []interface{}{}
	argIdx := 1

	if params.Search != "" {
		whereClauses = append(whereClauses, fmt.Sprintf("(name ILIKE $%d OR sku ILIKE $%d)", argIdx, argIdx))
		args = append(args, "%"+params.Search+"%")
		argIdx++
	}
	if params.BrandID != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("brand_id = $%d", argIdx))
		args = append(args, *params.BrandID)
		argIdx++
	}

	whereClause := strings.Join(whereClauses, " AND ")

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM products WHERE %s", whereClause)
	var total int
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count products: %w", err)
	}

	sortColumn := "name"
	switch params.SortBy {
	case "sku":
		sortColumn = "sku"
	case "priceCents":
		sortColumn = "price_cents"
	case "createdAt":
		sortColumn = "created_at"
	case "updatedAt":
		sortColumn = "updated_at"
	}

	sortOrder := "ASC"
	if params.SortOrder == "desc" {
		sortOrder = "DESC"
	}

	args = append(args, params.Limit, params.Offset)
	query := fmt.Sprintf(`
		SELECT %s
		FROM products
		WHERE %s
		ORDER BY %s %s, name ASC
		LIMIT $%d OFFSET $%d
	`, productColumns, whereClause, sortColumn, sortOrder, argIdx, argIdx+1)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	products, err := scanProducts(rows)
	if err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

// GetProductsByIDs returns products for the given ids, preserving input order.
func (r *Repo) GetProductsByIDs(ctx context.Context, ids []uuid.UUID) ([]Product, error) {
	if len(ids) == 0 {
		return []Product{}, nil
	}

	query := `SELECT ` + productColumns + ` FROM products WHERE id = ANY($1)`
	rows, err := r.pool.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("get products by ids: %w", err)
	}
	defer rows.Close()

	fetched, err := scanProducts(rows)
	if err != nil {
		return nil, err
	}

	byID := make(map[uuid.UUID]Product, len(fetched))
	for _, p := range fetched {
		byID[p.ID] = p
	}

	ordered := make([]Product, 0, len(ids))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			ordered = append(ordered, p)
		}
	}
	return ordered, nil
}

// SetProductPDFKey sets the product's spec sheet key after upload completes.
func (r *Repo) SetProductPDFKey(ctx context.Context, id uuid.UUID, fileKey string) error {
	return r.setProductKey(ctx, id, "pdf_key", fileKey)
}

// SetProductImageKey sets the product's image key after upload completes.
func (r *Repo) SetProductImageKey(ctx context.Context, id uuid.UUID, fileKey string) error {
	return r.setProductKey(ctx, id, "image_key", fileKey)
}

func (r *Repo) setProductKey(ctx context.Context, id uuid.UUID, column, fileKey string) error {
	query := fmt.Sprintf(`UPDATE products SET %s = $2, updated_at = now() WHERE id = $1`, column)
	result, err := r.pool.Exec(ctx, query, id, fileKey)
	if err != nil {
		return fmt.Errorf("set product %s: %w", column, err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound(productNotFoundMessage)
	}
	return nil
}

func (r *Repo) scanProduct(row pgx.Row, op string) (Product, error) {
	var product Product
	var createdAt, updatedAt time.Time
	if err := row.Scan(
		&product.ID, &product.BrandID, &product.Name, &product.SKU, &product.Description,
		&product.PriceCents, &product.Dimensions, &product.Material,
		&product.ImageKey, &product.PDFKey, &createdAt, &updatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Product{}, apperr.NotFound(productNotFoundMessage)
		}
		return Product{}, fmt.Errorf("%s: %w", op, err)
	}
	product.CreatedAt = createdAt.Format(time.RFC3339)
	product.UpdatedAt = updatedAt.Format(time.RFC3339)
	return product, nil
}

func scanProducts(rows pgx.Rows) ([]Product, error) {
	products := make([]Product, 0)
	for rows.Next() {
		var product Product
		var createdAt, updatedAt time.Time
		if err := rows.Scan(
			&product.ID, &product.BrandID, &product.Name, &product.SKU, &product.Description,
			&product.PriceCents, &product.Dimensions, &product.Material,
			&product.ImageKey, &product.PDFKey, &createdAt, &updatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		product.CreatedAt = createdAt.Format(time.RFC3339)
		product.UpdatedAt = updatedAt.Format(time.RFC3339)
		products = append(products, product)
	}
	return products, rows.Err()
}
