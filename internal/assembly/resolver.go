package assembly

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"catalog_portal_backend/internal/adapters/storage"
	catalogrepo "catalog_portal_backend/internal/catalog/repository"
	collateralrepo "catalog_portal_backend/internal/collateral/repository"
)

// Resolution is the outcome of resolving one manifest entry. Err carries the
// failure reason; failures are data here, never propagated as errors, so the
// engine can decide to skip.
type Resolution struct {
	Entry ManifestEntry
	Data  []byte
	Err   error
}

// Resolver fetches the raw bytes behind manifest entries.
type Resolver interface {
	ResolveAll(ctx context.Context, manifest Manifest) []Resolution
}

// StorageResolver resolves entries against the catalog and collateral
// repositories and fetches bytes from object storage.
type StorageResolver struct {
	products         catalogrepo.Repository
	collateral       collateralrepo.Repository
	storage          storage.StorageService
	productBucket    string
	collateralBucket string
	fetchTimeout     time.Duration
	concurrency      int
}

// NewStorageResolver creates a resolver over the given repositories and
// buckets. fetchTimeout bounds each individual storage fetch; concurrency
// bounds the parallel fan-out.
func NewStorageResolver(
	products catalogrepo.Repository,
	collateral collateralrepo.Repository,
	storageSvc storage.StorageService,
	productBucket, collateralBucket string,
	fetchTimeout time.Duration,
	concurrency int,
) *StorageResolver {
	if concurrency < 1 {
		concurrency = 1
	}
	return &StorageResolver{
		products:         products,
		collateral:       collateral,
		storage:          storageSvc,
		productBucket:    productBucket,
		collateralBucket: collateralBucket,
		fetchTimeout:     fetchTimeout,
		concurrency:      concurrency,
	}
}

var _ Resolver = (*StorageResolver)(nil)

// ResolveAll fetches every entry concurrently, bounded by the configured
// limit, and returns results slotted by manifest index. Completion timing
// never affects ordering: result i always belongs to manifest entry i.
func (r *StorageResolver) ResolveAll(ctx context.Context, manifest Manifest) []Resolution {
	results := make([]Resolution, len(manifest))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)
	for i, entry := range manifest {
		g.Go(func() error {
			data, err := r.resolve(gctx, entry)
			results[i] = Resolution{Entry: entry, Data: data, Err: err}
			return nil
		})
	}
	// Workers never return errors; failures live in the results.
	_ = g.Wait()

	return results
}

func (r *StorageResolver) resolve(ctx context.Context, entry ManifestEntry) ([]byte, error) {
	switch entry.Kind {
	case EntryProduct:
		return r.resolveProduct(ctx, entry)
	case EntryCorporateFront, EntryCorporateBack, EntryAdvertisement, EntryPromotion:
		return r.resolveCollateral(ctx, entry)
	default:
		return nil, fmt.Errorf("unknown entry kind %q", entry.Kind)
	}
}

func (r *StorageResolver) resolveProduct(ctx context.Context, entry ManifestEntry) ([]byte, error) {
	product, err := r.products.GetProductByID(ctx, entry.SourceID)
	if err != nil {
		return nil, fmt.Errorf("product lookup: %w", err)
	}
	if product.PDFKey == nil {
		return nil, errors.New("product spec sheet not available yet")
	}
	return r.fetch(ctx, r.productBucket, *product.PDFKey)
}

func (r *StorageResolver) resolveCollateral(ctx context.Context, entry ManifestEntry) ([]byte, error) {
	doc, err := r.collateral.GetByID(ctx, entry.SourceID)
	if err != nil {
		return nil, fmt.Errorf("collateral lookup: %w", err)
	}
	if doc.FileKey == nil {
		return nil, errors.New("collateral file not available yet")
	}
	return r.fetch(ctx, r.collateralBucket, *doc.FileKey)
}

// fetch reads an object with a per-fetch timeout so one hanging source
// cannot stall the whole assembly.
func (r *StorageResolver) fetch(ctx context.Context, bucket, key string) ([]byte, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, r.fetchTimeout)
	defer cancel()

	data, err := r.storage.ReadFile(fetchCtx, bucket, key)
	if err != nil {
		return nil, fmt.Errorf("fetch %s/%s: %w", bucket, key, err)
	}
	return data, nil
}
