// Package transport defines request and response DTOs for the collateral module.
package transport

import "github.com/google/uuid"

// CollateralResponse is a single collateral document.
type CollateralResponse struct {
	ID          uuid.UUID `json:"id"`
	Kind        string    `json:"kind"`
	Title       string    `json:"title"`
	FileRef     *string   `json:"fileRef,omitempty"`
	ContentType string    `json:"contentType"`
	SizeBytes   int64     `json:"sizeBytes"`
	Available   bool      `json:"available"`
	CreatedAt   string    `json:"createdAt"`
	UpdatedAt   string    `json:"updatedAt"`
}

// ListCollateralRequest filters the collateral listing.
type ListCollateralRequest struct {
	Kind string `form:"kind" validate:"omitempty,oneof=corporate_front corporate_back advertisement promotion"`
}

// CreateCollateralRequest holds the metadata fields of a new collateral
// document. The PDF itself arrives as the multipart "file" part.
type CreateCollateralRequest struct {
	Kind  string `form:"kind" validate:"required,oneof=corporate_front corporate_back advertisement promotion"`
	Title string `form:"title" validate:"required,min=1,max=200"`
}

// UpdateCollateralRequest holds updatable metadata fields.
type UpdateCollateralRequest struct {
	Title *string `json:"title" validate:"omitempty,min=1,max=200"`
}

// DownloadURLResponse carries a presigned download URL for a collateral file.
type DownloadURLResponse struct {
	URL       string `json:"url"`
	ExpiresAt string `json:"expiresAt"`
}
