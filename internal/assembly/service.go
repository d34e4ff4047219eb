package assembly

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"catalog_portal_backend/internal/adapters/storage"
	collateralrepo "catalog_portal_backend/internal/collateral/repository"
	"catalog_portal_backend/internal/events"
	"catalog_portal_backend/internal/pdf"
	"catalog_portal_backend/platform/apperr"
	"catalog_portal_backend/platform/logger"
)

// SkippedEntry reports a manifest entry that did not make it into the output.
type SkippedEntry struct {
	Kind     EntryKind `json:"kind"`
	SourceID uuid.UUID `json:"sourceId"`
	Reason   string    `json:"reason"`
}

// GenerateResult is the outcome of a successful assembly run.
type GenerateResult struct {
	URL       string
	ObjectKey string
	PageCount int
	Skipped   []SkippedEntry
}

// Service orchestrates manifest building, source resolution, merging and
// storage of the merged document.
type Service struct {
	resolver     Resolver
	merger       *pdf.Merger
	storage      storage.StorageService
	collateral   collateralrepo.Repository
	mergedBucket string
	bus          events.Bus
	log          *logger.Logger
}

// NewService creates a new assembly service. mergedBucket receives the
// generated documents.
func NewService(resolver Resolver, merger *pdf.Merger, storageSvc storage.StorageService, collateral collateralrepo.Repository, mergedBucket string, bus events.Bus, log *logger.Logger) *Service {
	return &Service{
		resolver:     resolver,
		merger:       merger,
		storage:      storageSvc,
		collateral:   collateral,
		mergedBucket: mergedBucket,
		bus:          bus,
		log:          log,
	}
}

// PageRef is an additional page reference as submitted by the wizard: a
// collateral id plus its raw position integer.
type PageRef struct {
	ID       uuid.UUID
	Position int
}

// GenerateForRequest classifies the additional pages by their stored
// collateral kind and runs the pipeline. An id that cannot be classified is
// carried along anyway; resolution reports it as skipped with the lookup
// failure.
func (s *Service) GenerateForRequest(ctx context.Context, front, back uuid.UUID, productIDs []uuid.UUID, pages []PageRef, createdBy uuid.UUID, clientID *uuid.UUID) (GenerateResult, error) {
	sel := Selection{FrontID: front, BackID: back, ProductIDs: productIDs}
	for _, page := range pages {
		sel.Additional = append(sel.Additional, AdditionalPage{
			ID:       page.ID,
			Kind:     s.lookupKind(ctx, page.ID),
			Position: page.Position,
		})
	}
	return s.Generate(ctx, sel, createdBy, clientID)
}

func (s *Service) lookupKind(ctx context.Context, id uuid.UUID) EntryKind {
	doc, err := s.collateral.GetByID(ctx, id)
	if err != nil {
		return EntryAdvertisement
	}
	switch doc.Kind {
	case collateralrepo.KindPromotion:
		return EntryPromotion
	case collateralrepo.KindCorporateFront:
		return EntryCorporateFront
	case collateralrepo.KindCorporateBack:
		return EntryCorporateBack
	default:
		return EntryAdvertisement
	}
}

// Generate runs the full pipeline for a selection. Unresolvable or unreadable
// sources are skipped and reported; the run fails only when nothing at all
// can be merged. createdBy is the acting user, clientID the optional client
// the document is prepared for.
func (s *Service) Generate(ctx context.Context, sel Selection, createdBy uuid.UUID, clientID *uuid.UUID) (GenerateResult, error) {
	started := time.Now()

	manifest, err := BuildManifest(sel)
	if err != nil {
		return GenerateResult{}, err
	}

	resolutions := s.resolver.ResolveAll(ctx, manifest)

	sources := make([]pdf.Source, 0, len(resolutions))
	skipped := make([]SkippedEntry, 0)
	labeled := make(map[string]ManifestEntry, len(resolutions))
	for _, res := range resolutions {
		if res.Err != nil {
			s.log.Warn("manifest entry skipped", "kind", res.Entry.Kind, "sourceId", res.Entry.SourceID, "error", res.Err)
			skipped = append(skipped, SkippedEntry{Kind: res.Entry.Kind, SourceID: res.Entry.SourceID, Reason: res.Err.Error()})
			continue
		}
		label := entryLabel(res.Entry)
		labeled[label] = res.Entry
		sources = append(sources, pdf.Source{Label: label, Data: res.Data})
	}

	merged, err := s.merger.Merge(sources)
	if err != nil {
		if apperr.Is(err, apperr.KindUnprocessable) {
			return GenerateResult{}, apperr.Unprocessable("could not generate document: no usable sources")
		}
		return GenerateResult{}, err
	}
	for _, skip := range merged.Skipped {
		entry := labeled[skip.Label]
		skipped = append(skipped, SkippedEntry{Kind: entry.Kind, SourceID: entry.SourceID, Reason: skip.Reason})
	}

	fileName := fmt.Sprintf("catalog-%s.pdf", uuid.New().String())
	objectKey, err := s.storage.UploadFile(ctx, s.mergedBucket, "merged", fileName, "application/pdf",
		bytes.NewReader(merged.Data), int64(len(merged.Data)))
	if err != nil {
		return GenerateResult{}, apperr.Wrap(apperr.KindInternal, "could not store merged document", err)
	}

	presigned, err := s.storage.GenerateDownloadURL(ctx, s.mergedBucket, objectKey)
	if err != nil {
		return GenerateResult{}, apperr.Wrap(apperr.KindInternal, "could not generate download url", err)
	}

	s.log.AssemblyResult(len(manifest), len(skipped), merged.PageCount, float64(time.Since(started).Milliseconds()))
	s.bus.Publish(ctx, events.MergedPDFGenerated{
		BaseEvent: events.NewBaseEvent(),
		CreatedBy: createdBy,
		ClientID:  clientID,
		Entries:   len(manifest),
		Skipped:   len(skipped),
		PageCount: merged.PageCount,
		ObjectKey: objectKey,
	})

	return GenerateResult{
		URL:       presigned.URL,
		ObjectKey: objectKey,
		PageCount: merged.PageCount,
		Skipped:   skipped,
	}, nil
}

func entryLabel(entry ManifestEntry) string {
	return fmt.Sprintf("%s %s", entry.Kind, entry.SourceID)
}
