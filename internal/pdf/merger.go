// Package pdf implements the PDF merge engine. It concatenates validated
// source documents into a single output and reports which sources had to be
// skipped because their bytes were not a readable PDF.
package pdf

import (
	"bytes"
	"fmt"
	"io"

	pdfapi "github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"catalog_portal_backend/platform/apperr"
	"catalog_portal_backend/platform/logger"
)

// Source is one document to merge, in manifest order.
type Source struct {
	// Label identifies the source in skip reports, e.g. "product ACME-1 spec sheet".
	Label string
	Data  []byte
}

// SkippedSource describes a source that was left out of the merge.
type SkippedSource struct {
	Label  string `json:"label"`
	Reason string `json:"reason"`
}

// MergeResult is the outcome of a merge.
type MergeResult struct {
	Data      []byte
	PageCount int
	Skipped   []SkippedSource
}

// Merger merges PDF documents.
type Merger struct {
	log *logger.Logger
}

// NewMerger creates a new merger.
func NewMerger(log *logger.Logger) *Merger {
	return &Merger{log: log}
}

// Merge concatenates the sources in order. Sources that fail validation are
// skipped and reported, never aborting the merge. An error is returned only
// when no source survives, since an empty document cannot be produced.
func (m *Merger) Merge(sources []Source) (MergeResult, error) {
	conf := model.NewDefaultConfiguration()

	valid := make([]Source, 0, len(sources))
	skipped := make([]SkippedSource, 0)
	pageCount := 0

	for _, src := range sources {
		pages, err := countPages(src.Data, conf)
		if err != nil {
			m.log.Warn("skipping unreadable merge source", "label", src.Label, "error", err)
			skipped = append(skipped, SkippedSource{Label: src.Label, Reason: err.Error()})
			continue
		}
		if pages == 0 {
			// A valid but empty document contributes nothing. It is not a
			// failure, so it stays out of the skip report.
			m.log.Debug("dropping empty merge source", "label", src.Label)
			continue
		}
		valid = append(valid, src)
		pageCount += pages
	}

	if len(valid) == 0 {
		return MergeResult{}, apperr.Unprocessable("no usable documents to merge")
	}

	if len(valid) == 1 {
		return MergeResult{Data: valid[0].Data, PageCount: pageCount, Skipped: skipped}, nil
	}

	readers := make([]io.ReadSeeker, len(valid))
	for i, src := range valid {
		readers[i] = bytes.NewReader(src.Data)
	}

	var out bytes.Buffer
	if err := pdfapi.MergeRaw(readers, &out, false, model.NewDefaultConfiguration()); err != nil {
		return MergeResult{}, apperr.Wrap(apperr.KindInternal, "merge failed", err)
	}

	return MergeResult{Data: out.Bytes(), PageCount: pageCount, Skipped: skipped}, nil
}

// PageCount returns the number of pages in a PDF document.
func PageCount(data []byte) (int, error) {
	return countPages(data, model.NewDefaultConfiguration())
}

func countPages(data []byte, conf *model.Configuration) (int, error) {
	ctx, err := pdfapi.ReadValidateAndOptimize(bytes.NewReader(data), conf)
	if err != nil {
		return 0, fmt.Errorf("read pdf: %w", err)
	}
	if err := ctx.EnsurePageCount(); err != nil {
		return 0, fmt.Errorf("page count: %w", err)
	}
	return ctx.PageCount, nil
}
