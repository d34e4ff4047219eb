// Package repository provides persistence for the collateral module.
package repository

import (
	"context"

	"github.com/google/uuid"
)

// Collateral document kinds.
const (
	KindCorporateFront = "corporate_front"
	KindCorporateBack  = "corporate_back"
	KindAdvertisement  = "advertisement"
	KindPromotion      = "promotion"
)

// Collateral is a persisted collateral record. FileKey is nil until the
// background upload has completed.
type Collateral struct {
	ID          uuid.UUID
	Kind        string
	Title       string
	FileKey     *string
	ContentType string
	SizeBytes   int64
	CreatedAt   string
	UpdatedAt   string
}

// CreateParams holds the fields for creating a collateral record.
type CreateParams struct {
	Kind        string
	Title       string
	ContentType string
	SizeBytes   int64
}

// UpdateParams holds the fields for updating collateral metadata.
type UpdateParams struct {
	ID    uuid.UUID
	Title *string
}

// Repository defines collateral persistence operations.
type Repository interface {
	Create(ctx context.Context, params CreateParams) (Collateral, error)
	Update(ctx context.Context, params UpdateParams) (Collateral, error)
	Delete(ctx context.Context, id uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (Collateral, error)
	List(ctx context.Context, kind string) ([]Collateral, error)

	// SetFileKey records the storage key once the background upload completes,
	// along with the uploaded size.
	SetFileKey(ctx context.Context, id uuid.UUID, fileKey string) error
	// SetUploadMeta refreshes the content type and size before a replacement
	// upload is enqueued.
	SetUploadMeta(ctx context.Context, id uuid.UUID, contentType string, sizeBytes int64) error
}
