package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"catalog_portal_backend/platform/apperr"
)

const notFoundMessage = "collateral not found"

const collateralColumns = `id, kind, title, file_key, content_type, size_bytes, created_at, updated_at`

// Repo implements the collateral repository.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new collateral repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Compile-time check that Repo implements Repository.
var _ Repository = (*Repo)(nil)

// Create creates a collateral record with a null file key.
func (r *Repo) Create(ctx context.Context, params CreateParams) (Collateral, error) {
	query := `
		INSERT INTO collateral (kind, title, content_type, size_bytes)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + collateralColumns

	return r.scan(r.pool.QueryRow(ctx, query, params.Kind, params.Title, params.ContentType, params.SizeBytes), "create collateral")
}

// Update updates collateral metadata.
func (r *Repo) Update(ctx context.Context, params UpdateParams) (Collateral, error) {
	query := `
		UPDATE collateral
		SET title = COALESCE($2, title),
			updated_at = now()
		WHERE id = $1
		RETURNING ` + collateralColumns

	doc, err := r.scan(r.pool.QueryRow(ctx, query, params.ID, params.Title), "update collateral")
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return Collateral{}, apperr.NotFound(notFoundMessage)
		}
		return Collateral{}, err
	}
	return doc, nil
}

// Delete removes a collateral record.
func (r *Repo) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM collateral WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete collateral: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound(notFoundMessage)
	}
	return nil
}

// GetByID retrieves a collateral record by ID.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (Collateral, error) {
	query := `SELECT ` + collateralColumns + ` FROM collateral WHERE id = $1`

	doc, err := r.scan(r.pool.QueryRow(ctx, query, id), "get collateral by id")
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return Collateral{}, apperr.NotFound(notFoundMessage)
		}
		return Collateral{}, err
	}
	return doc, nil
}

// List lists collateral, optionally filtered by kind, newest first.
func (r *Repo) List(ctx context.Context, kind string) ([]Collateral, error) {
	query := `SELECT ` + collateralColumns + ` FROM collateral`
	args := []interface{}{}
	if kind != "" {
		query += ` WHERE kind = $1`
		args = append(args, kind)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list collateral: %w", err)
	}
	defer rows.Close()

	docs := make([]Collateral, 0)
	for rows.Next() {
		var doc Collateral
		var createdAt, updatedAt time.Time
		if err := rows.Scan(&doc.ID, &doc.Kind, &doc.Title, &doc.FileKey, &doc.ContentType, &doc.SizeBytes, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("scan collateral: %w", err)
		}
		doc.CreatedAt = createdAt.Format(time.RFC3339)
		doc.UpdatedAt = updatedAt.Format(time.RFC3339)
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// SetFileKey records the storage key once the background upload completes.
func (r *Repo) SetFileKey(ctx context.Context, id uuid.UUID, fileKey string) error {
	result, err := r.pool.Exec(ctx, `UPDATE collateral SET file_key = $2, updated_at = now() WHERE id = $1`, id, fileKey)
	if err != nil {
		return fmt.Errorf("set collateral file key: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound(notFoundMessage)
	}
	return nil
}

// SetUploadMeta refreshes content type and size ahead of a replacement upload.
func (r *Repo) SetUploadMeta(ctx context.Context, id uuid.UUID, contentType string, sizeBytes int64) error {
	result, err := r.pool.Exec(ctx,
		`UPDATE collateral SET content_type = $2, size_bytes = $3, updated_at = now() WHERE id = $1`,
		id, contentType, sizeBytes)
	if err != nil {
		return fmt.Errorf("set collateral upload meta: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound(notFoundMessage)
	}
	return nil
}

func (r *Repo) scan(row pgx.Row, op string) (Collateral, error) {
	var doc Collateral
	var createdAt, updatedAt time.Time
	if err := row.Scan(&doc.ID, &doc.Kind, &doc.Title, &doc.FileKey, &doc.ContentType, &doc.SizeBytes, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Collateral{}, apperr.NotFound(notFoundMessage)
		}
		return Collateral{}, fmt.Errorf("%s: %w", op, err)
	}
	doc.CreatedAt = createdAt.Format(time.RFC3339)
	doc.UpdatedAt = updatedAt.Format(time.RFC3339)
	return doc, nil
}
