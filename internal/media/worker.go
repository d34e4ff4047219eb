package media

import (
	"context"
	"fmt"
	"os"

	"catalog_portal_backend/internal/adapters/storage"
	"catalog_portal_backend/internal/events"
	"catalog_portal_backend/platform/config"
	"catalog_portal_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// TargetStore sets the file key on a metadata record after upload completes.
// Each upload target kind registers one store (collateral file, product pdf,
// product image).
type TargetStore interface {
	SetFileKey(ctx context.Context, id uuid.UUID, fileKey string) error
}

// TargetStoreFunc adapts a function to the TargetStore interface.
type TargetStoreFunc func(ctx context.Context, id uuid.UUID, fileKey string) error

// SetFileKey calls the underlying function.
func (f TargetStoreFunc) SetFileKey(ctx context.Context, id uuid.UUID, fileKey string) error {
	return f(ctx, id, fileKey)
}

// Buckets maps upload target kinds to their storage buckets.
type Buckets struct {
	Collateral   string
	ProductMedia string
}

func (b Buckets) forKind(kind string) (string, error) {
	switch kind {
	case TargetCollateral:
		return b.Collateral, nil
	case TargetProductPDF, TargetProductImage:
		return b.ProductMedia, nil
	default:
		return "", fmt.Errorf("unknown upload target kind %q", kind)
	}
}

// Worker runs the asynq server processing media upload tasks.
type Worker struct {
	server  *asynq.Server
	mux     *asynq.ServeMux
	storage storage.StorageService
	buckets Buckets
	stores  map[string]TargetStore
	spooler *Spooler
	bus     events.Bus
	log     *logger.Logger
}

// NewWorker creates the upload worker. stores must contain an entry per
// target kind the worker should accept.
func NewWorker(cfg config.QueueConfig, storageSvc storage.StorageService, buckets Buckets, stores map[string]TargetStore, spooler *Spooler, bus events.Bus, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = "default"
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queue: 1,
		},
	})

	mux := asynq.NewServeMux()
	w := &Worker{
		server:  server,
		mux:     mux,
		storage: storageSvc,
		buckets: buckets,
		stores:  stores,
		spooler: spooler,
		bus:     bus,
		log:     log,
	}

	mux.HandleFunc(TaskMediaUpload, w.HandleUpload)

	return w, nil
}

// HandleUpload performs the second phase of the two-phase write: upload the
// spooled bytes to object storage and set the record's file key. Returning an
// error leaves the record's key null and lets asynq retry; the spool file is
// only removed after a fully successful run.
func (w *Worker) HandleUpload(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseUploadPayload(task)
	if err != nil {
		return err
	}

	targetID, err := uuid.Parse(payload.TargetID)
	if err != nil {
		return fmt.Errorf("invalid target id %q: %w", payload.TargetID, err)
	}

	store, ok := w.stores[payload.TargetKind]
	if !ok {
		return fmt.Errorf("no store registered for target kind %q", payload.TargetKind)
	}

	bucket, err := w.buckets.forKind(payload.TargetKind)
	if err != nil {
		return err
	}

	f, err := os.Open(payload.SpoolPath)
	if err != nil {
		w.log.UploadFailed(payload.TargetKind, payload.TargetID, err)
		return fmt.Errorf("open spool file: %w", err)
	}
	defer f.Close()

	fileKey, err := w.storage.UploadFile(ctx, bucket, payload.TargetKind, payload.FileName, payload.ContentType, f, payload.SizeBytes)
	if err != nil {
		w.log.UploadFailed(payload.TargetKind, payload.TargetID, err)
		return fmt.Errorf("upload to storage: %w", err)
	}

	if err := store.SetFileKey(ctx, targetID, fileKey); err != nil {
		w.log.UploadFailed(payload.TargetKind, payload.TargetID, err)
		return fmt.Errorf("set file key: %w", err)
	}

	if err := w.spooler.Remove(payload.SpoolPath); err != nil {
		w.log.Warn("spool file cleanup failed", "path", payload.SpoolPath, "error", err)
	}

	w.log.UploadEvent("completed", payload.TargetKind, payload.TargetID, payload.SizeBytes)

	if w.bus != nil {
		w.bus.Publish(ctx, events.MediaUploaded{
			BaseEvent:  events.NewBaseEvent(),
			TargetKind: payload.TargetKind,
			TargetID:   targetID,
			Bucket:     bucket,
			FileKey:    fileKey,
			SizeBytes:  payload.SizeBytes,
		})
	}

	return nil
}

// Run starts the worker and blocks until the context is cancelled.
func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("media worker stopped", "error", err)
	}
}
