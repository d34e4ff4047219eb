package media

import (
	"bytes"
	"context"
	"io"
	"os"
	"testing"

	"catalog_portal_backend/internal/adapters/storage"
	"catalog_portal_backend/platform/logger"

	"github.com/google/uuid"
)

type fakeStorage struct {
	uploads map[string][]byte
	bucket  string
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{uploads: make(map[string][]byte)}
}

func (f *fakeStorage) UploadFile(_ context.Context, bucket, folder, fileName, _ string, r io.Reader, _ int64) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	key := folder + "/" + fileName
	f.uploads[key] = data
	f.bucket = bucket
	return key, nil
}

func (f *fakeStorage) DownloadFile(_ context.Context, _, fileKey string) (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(f.uploads[fileKey])), nil
}

func (f *fakeStorage) ReadFile(_ context.Context, _, fileKey string) ([]byte, error) {
	return f.uploads[fileKey], nil
}

func (f *fakeStorage) GenerateDownloadURL(_ context.Context, _, fileKey string) (*storage.PresignedURL, error) {
	return &storage.PresignedURL{URL: "http://example.test/" + fileKey, FileKey: fileKey}, nil
}

func (f *fakeStorage) DeleteObject(_ context.Context, _, fileKey string) error {
	delete(f.uploads, fileKey)
	return nil
}

func (f *fakeStorage) EnsureBucketExists(context.Context, string) error { return nil }
func (f *fakeStorage) ValidateContentType(string) error                 { return nil }
func (f *fakeStorage) ValidateFileSize(int64) error                     { return nil }
func (f *fakeStorage) GetMaxFileSize() int64                            { return 50 * 1024 * 1024 }

func TestHandleUpload_SetsFileKeyAndCleansSpool(t *testing.T) {
	spooler := NewSpooler(t.TempDir())
	spoolPath, size, err := spooler.Spool(bytes.NewReader([]byte("pdf bytes")))
	if err != nil {
		t.Fatalf("spool: %v", err)
	}

	targetID := uuid.New()
	var gotID uuid.UUID
	var gotKey string

	fake := newFakeStorage()
	w := &Worker{
		storage: fake,
		buckets: Buckets{Collateral: "collateral", ProductMedia: "product-media"},
		stores: map[string]TargetStore{
			TargetCollateral: TargetStoreFunc(func(_ context.Context, id uuid.UUID, fileKey string) error {
				gotID = id
				gotKey = fileKey
				return nil
			}),
		},
		spooler: spooler,
		log:     logger.New("development"),
	}

	task, err := NewUploadTask(UploadPayload{
		TargetKind:  TargetCollateral,
		TargetID:    targetID.String(),
		SpoolPath:   spoolPath,
		FileName:    "front.pdf",
		ContentType: "application/pdf",
		SizeBytes:   size,
	})
	if err != nil {
		t.Fatalf("build task: %v", err)
	}

	if err := w.HandleUpload(context.Background(), task); err != nil {
		t.Fatalf("handle upload: %v", err)
	}

	if gotID != targetID {
		t.Fatalf("expected store called with %s, got %s", targetID, gotID)
	}
	if gotKey == "" {
		t.Fatal("expected file key to be set")
	}
	if string(fake.uploads[gotKey]) != "pdf bytes" {
		t.Fatalf("uploaded bytes do not round-trip: %q", fake.uploads[gotKey])
	}
	if fake.bucket != "collateral" {
		t.Fatalf("expected collateral bucket, got %q", fake.bucket)
	}
	if _, err := os.Stat(spoolPath); !os.IsNotExist(err) {
		t.Fatalf("expected spool file removed, stat err: %v", err)
	}
}

func TestHandleUpload_UnknownTargetKind(t *testing.T) {
	w := &Worker{
		storage: newFakeStorage(),
		buckets: Buckets{Collateral: "collateral", ProductMedia: "product-media"},
		stores:  map[string]TargetStore{},
		spooler: NewSpooler(t.TempDir()),
		log:     logger.New("development"),
	}

	task, err := NewUploadTask(UploadPayload{
		TargetKind: "banner",
		TargetID:   uuid.New().String(),
	})
	if err != nil {
		t.Fatalf("build task: %v", err)
	}

	if err := w.HandleUpload(context.Background(), task); err == nil {
		t.Fatal("expected error for unknown target kind")
	}
}
