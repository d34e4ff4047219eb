package pdf

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"catalog_portal_backend/platform/apperr"
	"catalog_portal_backend/platform/logger"
)

// minimalPDF builds a valid single-xref PDF with the given number of empty
// pages. Offsets are computed while writing, so the document always parses.
func minimalPDF(t *testing.T, pages int) []byte {
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

func newTestMerger() *Merger {
	return NewMerger(logger.New("test"))
}

func TestMinimalPDFParses(t *testing.T) {
	for _, pages := range []int{0, 1, 2, 5} {
		got, err := PageCount(minimalPDF(t, pages))
		if err != nil {
			t.Fatalf("expected %d-page pdf to parse, got %v", pages, err)
		}
		if got != pages {
			t.Fatalf("expected %d pages, got %d", pages, got)
		}
	}
}

func TestMerge_PageCountIsSumOfSources(t *testing.T) {
	m := newTestMerger()

	result, err := m.Merge([]Source{
		{Label: "front", Data: minimalPDF(t, 1)},
		{Label: "product A", Data: minimalPDF(t, 2)},
		{Label: "product B", Data: minimalPDF(t, 3)},
	})
	if err != nil {
		t.Fatalf("expected merge to succeed, got %v", err)
	}
	if result.PageCount != 6 {
		t.Fatalf("expected 6 pages, got %d", result.PageCount)
	}
	if len(result.Skipped) != 0 {
		t.Fatalf("expected no skipped sources, got %d", len(result.Skipped))
	}

	merged, err := PageCount(result.Data)
	if err != nil {
		t.Fatalf("expected merged output to parse, got %v", err)
	}
	if merged != 6 {
		t.Fatalf("expected merged output to have 6 pages, got %d", merged)
	}
}

func TestMerge_SkipsUnreadableSource(t *testing.T) {
	m := newTestMerger()

	result, err := m.Merge([]Source{
		{Label: "front", Data: minimalPDF(t, 2)},
		{Label: "broken advert", Data: []byte("not a pdf at all")},
		{Label: "back", Data: minimalPDF(t, 1)},
	})
	if err != nil {
		t.Fatalf("expected merge to succeed despite broken source, got %v", err)
	}
	if result.PageCount != 3 {
		t.Fatalf("expected 3 pages, got %d", result.PageCount)
	}
	if len(result.Skipped) != 1 {
		t.Fatalf("expected 1 skipped source, got %d", len(result.Skipped))
	}
	if result.Skipped[0].Label != "broken advert" {
		t.Fatalf("expected skipped label %q, got %q", "broken advert", result.Skipped[0].Label)
	}
	if result.Skipped[0].Reason == "" {
		t.Fatal("expected a skip reason")
	}
}

func TestMerge_AllSourcesUnreadableIsFatal(t *testing.T) {
	m := newTestMerger()

	_, err := m.Merge([]Source{
		{Label: "one", Data: []byte("garbage")},
		{Label: "two", Data: nil},
	})
	if err == nil {
		t.Fatal("expected an error when no source survives")
	}
	if !apperr.Is(err, apperr.KindUnprocessable) {
		t.Fatalf("expected unprocessable error, got %v", err)
	}
}

func TestMerge_NoSourcesIsFatal(t *testing.T) {
	m := newTestMerger()

	_, err := m.Merge(nil)
	if err == nil {
		t.Fatal("expected an error for an empty source list")
	}
	if !apperr.Is(err, apperr.KindUnprocessable) {
		t.Fatalf("expected unprocessable error, got %v", err)
	}
}

func TestMerge_SingleSurvivingSourcePassesThrough(t *testing.T) {
	m := newTestMerger()
	doc := minimalPDF(t, 4)

	result, err := m.Merge([]Source{
		{Label: "bad", Data: []byte("nope")},
		{Label: "good", Data: doc},
	})
	if err != nil {
		t.Fatalf("expected merge to succeed, got %v", err)
	}
	if result.PageCount != 4 {
		t.Fatalf("expected 4 pages, got %d", result.PageCount)
	}
	if !bytes.Equal(result.Data, doc) {
		t.Fatal("expected single surviving source to pass through unchanged")
	}
}

func TestMerge_EmptySourceContributesNothing(t *testing.T) {
	m := newTestMerger()

	result, err := m.Merge([]Source{
		{Label: "front", Data: minimalPDF(t, 2)},
		{Label: "empty promo", Data: minimalPDF(t, 0)},
		{Label: "back", Data: minimalPDF(t, 1)},
	})
	if err != nil {
		t.Fatalf("expected merge to succeed, got %v", err)
	}
	if result.PageCount != 3 {
		t.Fatalf("expected 3 pages, got %d", result.PageCount)
	}
	if len(result.Skipped) != 0 {
		t.Fatalf("expected empty source not to be reported as skipped, got %v", result.Skipped)
	}

	merged, err := PageCount(result.Data)
	if err != nil {
		t.Fatalf("expected merged output to parse, got %v", err)
	}
	if merged != 3 {
		t.Fatalf("expected merged output to have 3 pages, got %d", merged)
	}
}

func TestMerge_OnlyEmptySourcesIsFatal(t *testing.T) {
	m := newTestMerger()

	_, err := m.Merge([]Source{
		{Label: "one", Data: minimalPDF(t, 0)},
		{Label: "two", Data: minimalPDF(t, 0)},
	})
	if err == nil {
		t.Fatal("expected an error when every source is empty")
	}
	if !apperr.Is(err, apperr.KindUnprocessable) {
		t.Fatalf("expected unprocessable error, got %v", err)
	}
}

func TestMerge_DuplicateSourcesKeepEveryOccurrence(t *testing.T) {
	m := newTestMerger()
	doc := minimalPDF(t, 2)

	result, err := m.Merge([]Source{
		{Label: "promo", Data: doc},
		{Label: "promo", Data: doc},
	})
	if err != nil {
		t.Fatalf("expected merge to succeed, got %v", err)
	}
	if result.PageCount != 4 {
		t.Fatalf("expected 4 pages from duplicated source, got %d", result.PageCount)
	}
}
