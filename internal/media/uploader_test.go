package media

import (
	"bytes"
	"context"
	"errors"
	"os"
	"testing"

	"catalog_portal_backend/platform/logger"

	"github.com/google/uuid"
)

type fakeEnqueuer struct {
	err      error
	payloads []UploadPayload
}

func (f *fakeEnqueuer) EnqueueUpload(_ context.Context, payload UploadPayload) error {
	if f.err != nil {
		return f.err
	}
	f.payloads = append(f.payloads, payload)
	return nil
}

func TestEnqueue_SpoolsAndSchedules(t *testing.T) {
	enq := &fakeEnqueuer{}
	u := NewUploader(NewSpooler(t.TempDir()), enq, logger.New("development"))

	targetID := uuid.New()
	err := u.Enqueue(context.Background(), TargetCollateral, targetID, "front.pdf", "application/pdf", bytes.NewReader([]byte("pdf bytes")))
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	if len(enq.payloads) != 1 {
		t.Fatalf("expected 1 enqueued payload, got %d", len(enq.payloads))
	}
	payload := enq.payloads[0]
	if payload.TargetID != targetID.String() {
		t.Fatalf("expected target id %s, got %s", targetID, payload.TargetID)
	}
	if payload.SizeBytes != int64(len("pdf bytes")) {
		t.Fatalf("expected size %d, got %d", len("pdf bytes"), payload.SizeBytes)
	}
	data, err := os.ReadFile(payload.SpoolPath)
	if err != nil {
		t.Fatalf("read spool file: %v", err)
	}
	if string(data) != "pdf bytes" {
		t.Fatalf("spooled bytes do not round-trip: %q", data)
	}
}

func TestEnqueue_FailureRemovesSpoolFile(t *testing.T) {
	dir := t.TempDir()
	enq := &fakeEnqueuer{err: errors.New("queue down")}
	u := NewUploader(NewSpooler(dir), enq, logger.New("development"))

	err := u.Enqueue(context.Background(), TargetCollateral, uuid.New(), "front.pdf", "application/pdf", bytes.NewReader([]byte("pdf bytes")))
	if err == nil {
		t.Fatal("expected enqueue failure to propagate")
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read spool dir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected spool dir cleaned after enqueue failure, found %d files", len(entries))
	}
}
