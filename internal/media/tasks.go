// Package media implements the two-phase upload pipeline: handlers create the
// metadata record synchronously and spool the raw bytes to disk, then a queue
// worker performs the object storage upload and sets the record's file key
// exactly once. A null file key means "not yet available", never an error.
package media

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

// TaskMediaUpload is the asynq task type for background media uploads.
const TaskMediaUpload = "media.upload"

// Upload target kinds. Each kind maps to a bucket and a record field.
const (
	TargetCollateral   = "collateral"
	TargetProductPDF   = "product_pdf"
	TargetProductImage = "product_image"
)

// UploadPayload describes one pending background upload. The raw bytes live
// in the spool file, not in the payload, so the task stays small on redis.
type UploadPayload struct {
	TargetKind  string `json:"targetKind"`
	TargetID    string `json:"targetId"`
	SpoolPath   string `json:"spoolPath"`
	FileName    string `json:"fileName"`
	ContentType string `json:"contentType"`
	SizeBytes   int64  `json:"sizeBytes"`
}

// NewUploadTask builds an asynq task for the payload.
func NewUploadTask(payload UploadPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskMediaUpload, data), nil
}

// ParseUploadPayload decodes an upload task payload.
func ParseUploadPayload(task *asynq.Task) (UploadPayload, error) {
	var payload UploadPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return UploadPayload{}, err
	}
	return payload, nil
}
