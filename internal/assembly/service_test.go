package assembly

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"catalog_portal_backend/internal/adapters/storage"
	"catalog_portal_backend/internal/events"
	"catalog_portal_backend/internal/pdf"
	"catalog_portal_backend/platform/apperr"
	"catalog_portal_backend/platform/logger"
)

// testPDF builds a valid single-xref PDF with the given number of empty pages.
func testPDF(t *testing.T, pages int) []byte {
	t.Helper()

	var buf bytes.Buffer
	offsets := make([]int, 0, pages+2)
	writeObj := func(body string) {
		offsets = append(offsets, buf.Len())
		buf.WriteString(body)
	}

	buf.WriteString("%PDF-1.4\n")
	kids := make([]string, pages)
	for i := 0; i < pages; i++ {
		kids[i] = fmt.Sprintf("%d 0 R", i+3)
	}
	writeObj("1 0 obj\n<< /Type /Catalog /Pages 2 0 R >>\nendobj\n")
	writeObj(fmt.Sprintf("2 0 obj\n<< /Type /Pages /Kids [%s] /Count %d >>\nendobj\n", strings.Join(kids, " "), pages))
	for i := 0; i < pages; i++ {
		writeObj(fmt.Sprintf("%d 0 obj\n<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << >> >>\nendobj\n", i+3))
	}

	xrefOffset := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(offsets)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(offsets)+1, xrefOffset)

	return buf.Bytes()
}

// cannedResolver returns pre-baked resolutions regardless of lookup state.
type cannedResolver struct {
	byID map[uuid.UUID]Resolution
}

func (r *cannedResolver) ResolveAll(_ context.Context, manifest Manifest) []Resolution {
	out := make([]Resolution, len(manifest))
	for i, entry := range manifest {
		res, ok := r.byID[entry.SourceID]
		if !ok {
			res = Resolution{Err: errors.New("no canned resolution")}
		}
		res.Entry = entry
		out[i] = res
	}
	return out
}

// uploadStore records the merged upload and serves a canned presigned URL.
type uploadStore struct {
	storage.StorageService
	uploadedBucket string
	uploadedData   []byte
}

func (s *uploadStore) UploadFile(_ context.Context, bucket, folder, fileName, _ string, reader io.Reader, _ int64) (string, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return "", err
	}
	s.uploadedBucket = bucket
	s.uploadedData = data
	return folder + "/" + fileName, nil
}

func (s *uploadStore) GenerateDownloadURL(_ context.Context, bucket, fileKey string) (*storage.PresignedURL, error) {
	return &storage.PresignedURL{
		URL:       "https://store.example/" + bucket + "/" + fileKey,
		FileKey:   fileKey,
		ExpiresAt: time.Now().Add(15 * time.Minute),
	}, nil
}

func newTestService(resolver Resolver, store *uploadStore) *Service {
	log := logger.New("test")
	return NewService(resolver, pdf.NewMerger(log), store, &fakeCollateral{}, "merged-pdfs", events.NewInMemoryBus(log), log)
}

func validSelection() Selection {
	return Selection{
		FrontID:    frontID,
		BackID:     backID,
		ProductIDs: []uuid.UUID{p1, p2},
	}
}

func TestGenerate_SkipsFailedResolutions(t *testing.T) {
	resolver := &cannedResolver{byID: map[uuid.UUID]Resolution{
		frontID: {Data: testPDF(t, 1)},
		p1:      {Err: errors.New("product spec sheet not available yet")},
		p2:      {Data: testPDF(t, 2)},
		backID:  {Data: testPDF(t, 1)},
	}}
	store := &uploadStore{}

	result, err := newTestService(resolver, store).Generate(context.Background(), validSelection(), uuid.New(), nil)
	if err != nil {
		t.Fatalf("expected generation to succeed, got %v", err)
	}

	if result.PageCount != 4 {
		t.Fatalf("expected 4 pages, got %d", result.PageCount)
	}
	if len(result.Skipped) != 1 {
		t.Fatalf("expected 1 skipped entry, got %d", len(result.Skipped))
	}
	if result.Skipped[0].SourceID != p1 {
		t.Fatalf("expected skipped entry for %s, got %s", p1, result.Skipped[0].SourceID)
	}
	if result.Skipped[0].Reason == "" {
		t.Fatal("expected a skip reason")
	}
	if result.URL == "" {
		t.Fatal("expected a download url")
	}
	if store.uploadedBucket != "merged-pdfs" {
		t.Fatalf("expected upload to merged-pdfs bucket, got %q", store.uploadedBucket)
	}

	pages, err := pdf.PageCount(store.uploadedData)
	if err != nil {
		t.Fatalf("expected stored document to parse, got %v", err)
	}
	if pages != 4 {
		t.Fatalf("expected stored document to have 4 pages, got %d", pages)
	}
}

func TestGenerate_UnreadableBytesReportedSkipped(t *testing.T) {
	resolver := &cannedResolver{byID: map[uuid.UUID]Resolution{
		frontID: {Data: testPDF(t, 1)},
		p1:      {Data: []byte("resolved but not a pdf")},
		p2:      {Data: testPDF(t, 1)},
		backID:  {Data: testPDF(t, 1)},
	}}

	result, err := newTestService(resolver, &uploadStore{}).Generate(context.Background(), validSelection(), uuid.New(), nil)
	if err != nil {
		t.Fatalf("expected generation to succeed, got %v", err)
	}
	if result.PageCount != 3 {
		t.Fatalf("expected 3 pages, got %d", result.PageCount)
	}
	if len(result.Skipped) != 1 {
		t.Fatalf("expected 1 skipped entry, got %d", len(result.Skipped))
	}
	if result.Skipped[0].SourceID != p1 {
		t.Fatalf("expected skipped entry for %s, got %s", p1, result.Skipped[0].SourceID)
	}
	if result.Skipped[0].Kind != EntryProduct {
		t.Fatalf("expected skipped kind %s, got %s", EntryProduct, result.Skipped[0].Kind)
	}
}

func TestGenerate_NothingUsableIsFatal(t *testing.T) {
	resolver := &cannedResolver{byID: map[uuid.UUID]Resolution{}}

	_, err := newTestService(resolver, &uploadStore{}).Generate(context.Background(), validSelection(), uuid.New(), nil)
	if err == nil {
		t.Fatal("expected a fatal error when nothing resolves")
	}
	if !apperr.Is(err, apperr.KindUnprocessable) {
		t.Fatalf("expected unprocessable error, got %v", err)
	}
}

func TestGenerate_InvalidSelectionIsValidationError(t *testing.T) {
	_, err := newTestService(&cannedResolver{}, &uploadStore{}).
		Generate(context.Background(), Selection{FrontID: frontID, BackID: backID}, uuid.New(), nil)
	if err == nil {
		t.Fatal("expected a validation error")
	}
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
