package media

import (
	"context"
	"fmt"
	"io"

	"catalog_portal_backend/platform/logger"

	"github.com/google/uuid"
)

// Uploader is the synchronous half of the upload pipeline used by handlers:
// spool the bytes, enqueue the task, return immediately. The caller has
// already written the metadata record with a null file key.
type Uploader struct {
	spooler  *Spooler
	enqueuer Enqueuer
	log      *logger.Logger
}

// NewUploader creates an uploader.
func NewUploader(spooler *Spooler, enqueuer Enqueuer, log *logger.Logger) *Uploader {
	return &Uploader{spooler: spooler, enqueuer: enqueuer, log: log}
}

// Enqueue spools the reader and schedules the background upload.
func (u *Uploader) Enqueue(ctx context.Context, targetKind string, targetID uuid.UUID, fileName, contentType string, r io.Reader) error {
	spoolPath, size, err := u.spooler.Spool(r)
	if err != nil {
		return fmt.Errorf("spool upload: %w", err)
	}

	payload := UploadPayload{
		TargetKind:  targetKind,
		TargetID:    targetID.String(),
		SpoolPath:   spoolPath,
		FileName:    fileName,
		ContentType: contentType,
		SizeBytes:   size,
	}

	if err := u.enqueuer.EnqueueUpload(ctx, payload); err != nil {
		if rmErr := u.spooler.Remove(spoolPath); rmErr != nil {
			u.log.Warn("spool file cleanup failed", "path", spoolPath, "error", rmErr)
		}
		return fmt.Errorf("enqueue upload: %w", err)
	}

	u.log.UploadEvent("enqueued", targetKind, targetID.String(), size)
	return nil
}
