// Package service provides business logic for the collateral module.
package service

import (
	"context"
	"mime/multipart"
	"strings"
	"time"

	"github.com/google/uuid"

	"catalog_portal_backend/internal/adapters/storage"
	"catalog_portal_backend/internal/collateral/repository"
	"catalog_portal_backend/internal/collateral/transport"
	"catalog_portal_backend/internal/media"
	"catalog_portal_backend/platform/apperr"
	"catalog_portal_backend/platform/logger"
)

// Service provides business logic for collateral documents.
type Service struct {
	repo     repository.Repository
	storage  storage.StorageService
	uploader *media.Uploader
	bucket   string
	log      *logger.Logger
}

// New creates a new collateral service. bucket is the collateral bucket.
func New(repo repository.Repository, storageSvc storage.StorageService, uploader *media.Uploader, bucket string, log *logger.Logger) *Service {
	return &Service{repo: repo, storage: storageSvc, uploader: uploader, bucket: bucket, log: log}
}

// Repository exposes the repository for cross-module readers (assembly
// resolution, media worker key updates).
func (s *Service) Repository() repository.Repository {
	return s.repo
}

// Create stores collateral metadata and starts the background file upload.
// The record is returned immediately with a null file key; availability flips
// once the worker finishes.
func (s *Service) Create(ctx context.Context, req transport.CreateCollateralRequest, header *multipart.FileHeader) (transport.CollateralResponse, error) {
	if err := s.validateFile(header); err != nil {
		return transport.CollateralResponse{}, err
	}

	doc, err := s.repo.Create(ctx, repository.CreateParams{
		Kind:        req.Kind,
		Title:       strings.TrimSpace(req.Title),
		ContentType: header.Header.Get("Content-Type"),
		SizeBytes:   header.Size,
	})
	if err != nil {
		return transport.CollateralResponse{}, err
	}

	if err := s.enqueue(ctx, doc.ID, header); err != nil {
		return transport.CollateralResponse{}, err
	}

	s.log.Info("collateral created", "id", doc.ID, "kind", doc.Kind, "title", doc.Title)
	return toResponse(doc), nil
}

// ReplaceFile starts a background upload that replaces the stored file. Used
// both to retry a failed upload and to swap in a revised document.
func (s *Service) ReplaceFile(ctx context.Context, id uuid.UUID, header *multipart.FileHeader) error {
	doc, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.validateFile(header); err != nil {
		return err
	}

	if err := s.repo.SetUploadMeta(ctx, id, header.Header.Get("Content-Type"), header.Size); err != nil {
		return err
	}

	// Best effort: remove the previous object so it does not linger.
	if doc.FileKey != nil {
		if err := s.storage.DeleteObject(ctx, s.bucket, *doc.FileKey); err != nil {
			s.log.Warn("could not delete previous collateral object", "id", id, "key", *doc.FileKey, "error", err)
		}
	}

	return s.enqueue(ctx, id, header)
}

// Update updates collateral metadata.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req transport.UpdateCollateralRequest) (transport.CollateralResponse, error) {
	doc, err := s.repo.Update(ctx, repository.UpdateParams{ID: id, Title: trimPtr(req.Title)})
	if err != nil {
		return transport.CollateralResponse{}, err
	}
	return toResponse(doc), nil
}

// Delete removes a collateral record and, best effort, its stored file.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	doc, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	if doc.FileKey != nil {
		if err := s.storage.DeleteObject(ctx, s.bucket, *doc.FileKey); err != nil {
			s.log.Warn("could not delete collateral object", "id", id, "key", *doc.FileKey, "error", err)
		}
	}
	s.log.Info("collateral deleted", "id", id, "kind", doc.Kind)
	return nil
}

// GetByID retrieves a collateral document.
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (transport.CollateralResponse, error) {
	doc, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return transport.CollateralResponse{}, err
	}
	return toResponse(doc), nil
}

// List lists collateral, optionally filtered by kind.
func (s *Service) List(ctx context.Context, kind string) ([]transport.CollateralResponse, error) {
	docs, err := s.repo.List(ctx, kind)
	if err != nil {
		return nil, err
	}

	out := make([]transport.CollateralResponse, 0, len(docs))
	for _, doc := range docs {
		out = append(out, toResponse(doc))
	}
	return out, nil
}

// GetDownloadURL returns a presigned download URL for the stored file.
func (s *Service) GetDownloadURL(ctx context.Context, id uuid.UUID) (transport.DownloadURLResponse, error) {
	doc, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return transport.DownloadURLResponse{}, err
	}
	if doc.FileKey == nil {
		return transport.DownloadURLResponse{}, apperr.NotFound("collateral file not available yet")
	}

	presigned, err := s.storage.GenerateDownloadURL(ctx, s.bucket, *doc.FileKey)
	if err != nil {
		return transport.DownloadURLResponse{}, apperr.Wrap(apperr.KindInternal, "could not generate download url", err)
	}
	return transport.DownloadURLResponse{URL: presigned.URL, ExpiresAt: presigned.ExpiresAt.Format(time.RFC3339)}, nil
}

func (s *Service) validateFile(header *multipart.FileHeader) error {
	contentType := header.Header.Get("Content-Type")
	if !storage.IsPDFContentType(contentType) {
		return apperr.Validation("collateral must be a PDF")
	}
	if err := s.storage.ValidateFileSize(header.Size); err != nil {
		return apperr.Validation(err.Error())
	}
	return nil
}

func (s *Service) enqueue(ctx context.Context, id uuid.UUID, header *multipart.FileHeader) error {
	f, err := header.Open()
	if err != nil {
		return apperr.Wrap(apperr.KindBadRequest, "could not read uploaded file", err)
	}
	defer f.Close()

	return s.uploader.Enqueue(ctx, media.TargetCollateral, id, header.Filename, header.Header.Get("Content-Type"), f)
}

func toResponse(doc repository.Collateral) transport.CollateralResponse {
	return transport.CollateralResponse{
		ID:          doc.ID,
		Kind:        doc.Kind,
		Title:       doc.Title,
		FileRef:     doc.FileKey,
		ContentType: doc.ContentType,
		SizeBytes:   doc.SizeBytes,
		Available:   doc.FileKey != nil,
		CreatedAt:   doc.CreatedAt,
		UpdatedAt:   doc.UpdatedAt,
	}
}

func trimPtr(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	return &trimmed
}
