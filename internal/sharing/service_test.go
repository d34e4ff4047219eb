package sharing

import (
	"context"
	"reflect"
	"testing"
	"time"

	"github.com/google/uuid"

	"catalog_portal_backend/internal/adapters/storage"
	catalogrepo "catalog_portal_backend/internal/catalog/repository"
	"catalog_portal_backend/internal/events"
	"catalog_portal_backend/platform/apperr"
	"catalog_portal_backend/platform/logger"
)

// memoryLinkRepo stores links in a map and simulates slug collisions.
type memoryLinkRepo struct {
	links      map[string]Link
	failSlugs  int // number of initial Create calls to reject as taken
	createCall int
}

func newMemoryLinkRepo() *memoryLinkRepo {
	return &memoryLinkRepo{links: make(map[string]Link)}
}

func (r *memoryLinkRepo) Create(_ context.Context, params CreateParams) (Link, error) {
	r.createCall++
	if r.createCall <= r.failSlugs {
		return Link{}, ErrSlugTaken
	}
	if _, exists := r.links[params.Slug]; exists {
		return Link{}, ErrSlugTaken
	}
	link := Link{
		ID:         uuid.New(),
		Slug:       params.Slug,
		ProductIDs: params.ProductIDs,
		ClientID:   params.ClientID,
		CreatedBy:  params.CreatedBy,
		ExpiresAt:  params.ExpiresAt,
		CreatedAt:  time.Now(),
	}
	r.links[params.Slug] = link
	return link, nil
}

func (r *memoryLinkRepo) GetBySlug(_ context.Context, slug string) (Link, error) {
	link, ok := r.links[slug]
	if !ok {
		return Link{}, apperr.NotFound(notFoundMessage)
	}
	return link, nil
}

type fakeProducts struct {
	catalogrepo.Repository
	products map[uuid.UUID]catalogrepo.Product
}

func (f *fakeProducts) GetProductsByIDs(_ context.Context, ids []uuid.UUID) ([]catalogrepo.Product, error) {
	out := make([]catalogrepo.Product, 0, len(ids))
	for _, id := range ids {
		if p, ok := f.products[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

type fakeStore struct {
	storage.StorageService
}

func (f *fakeStore) GenerateDownloadURL(_ context.Context, bucket, fileKey string) (*storage.PresignedURL, error) {
	return &storage.PresignedURL{URL: "https://store.example/" + bucket + "/" + fileKey, FileKey: fileKey}, nil
}

type sharingConfigStub struct {
	ttl time.Duration
}

func (c sharingConfigStub) GetShareLinkTTL() time.Duration { return c.ttl }
func (c sharingConfigStub) GetPublicBaseURL() string       { return "https://portal.example" }

func newTestService(repo Repository, products *fakeProducts) *Service {
	log := logger.New("test")
	return NewService(repo, products, &fakeStore{}, sharingConfigStub{ttl: 30 * 24 * time.Hour}, "product-media", events.NewInMemoryBus(log), log)
}

func TestCreateAndResolve_RoundTrip(t *testing.T) {
	p1 := uuid.New()
	p2 := uuid.New()
	products := &fakeProducts{products: map[uuid.UUID]catalogrepo.Product{
		p1: {ID: p1, Name: "Chair", SKU: "CH-1"},
		p2: {ID: p2, Name: "Table", SKU: "TB-1"},
	}}
	svc := newTestService(newMemoryLinkRepo(), products)

	created, err := svc.Create(context.Background(), []uuid.UUID{p1, p2}, time.Time{}, nil, uuid.New())
	if err != nil {
		t.Fatalf("expected create to succeed, got %v", err)
	}
	if len(created.Slug) != SlugLength {
		t.Fatalf("expected slug length %d, got %d", SlugLength, len(created.Slug))
	}
	if created.URL != "https://portal.example/shared-pdf/"+created.Slug {
		t.Fatalf("unexpected share url %q", created.URL)
	}

	resolved, err := svc.Resolve(context.Background(), created.Slug)
	if err != nil {
		t.Fatalf("expected resolve to succeed, got %v", err)
	}

	got := make([]uuid.UUID, len(resolved.Products))
	for i, p := range resolved.Products {
		got[i] = p.ID
	}
	if !reflect.DeepEqual(got, []uuid.UUID{p1, p2}) {
		t.Fatalf("expected products %v, got %v", []uuid.UUID{p1, p2}, got)
	}
}

func TestCreate_DefaultsExpiryToConfiguredTTL(t *testing.T) {
	p := uuid.New()
	svc := newTestService(newMemoryLinkRepo(), &fakeProducts{products: map[uuid.UUID]catalogrepo.Product{p: {ID: p}}})

	before := time.Now().Add(30 * 24 * time.Hour)
	created, err := svc.Create(context.Background(), []uuid.UUID{p}, time.Time{}, nil, uuid.New())
	if err != nil {
		t.Fatalf("expected create to succeed, got %v", err)
	}
	after := time.Now().Add(30 * 24 * time.Hour)

	if created.ExpiresAt.Before(before) || created.ExpiresAt.After(after) {
		t.Fatalf("expected expiry near configured ttl, got %v", created.ExpiresAt)
	}
}

func TestCreate_RetriesOnceOnSlugCollision(t *testing.T) {
	p := uuid.New()
	repo := newMemoryLinkRepo()
	repo.failSlugs = 1
	svc := newTestService(repo, &fakeProducts{products: map[uuid.UUID]catalogrepo.Product{p: {ID: p}}})

	created, err := svc.Create(context.Background(), []uuid.UUID{p}, time.Time{}, nil, uuid.New())
	if err != nil {
		t.Fatalf("expected create to survive a single collision, got %v", err)
	}
	if created.Slug == "" {
		t.Fatal("expected a slug")
	}
	if repo.createCall != 2 {
		t.Fatalf("expected 2 create attempts, got %d", repo.createCall)
	}
}

func TestCreate_RejectsPastExpiry(t *testing.T) {
	p := uuid.New()
	svc := newTestService(newMemoryLinkRepo(), &fakeProducts{})

	_, err := svc.Create(context.Background(), []uuid.UUID{p}, time.Now().Add(-time.Hour), nil, uuid.New())
	if err == nil {
		t.Fatal("expected an error for a past expiry")
	}
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestResolve_ExpiredSlugIsNotFound(t *testing.T) {
	p := uuid.New()
	repo := newMemoryLinkRepo()
	repo.links["expired-slug-0000"] = Link{
		Slug:       "expired-slug-0000",
		ProductIDs: []uuid.UUID{p},
		ExpiresAt:  time.Now().Add(-time.Minute),
	}
	svc := newTestService(repo, &fakeProducts{})

	_, err := svc.Resolve(context.Background(), "expired-slug-0000")
	if err == nil {
		t.Fatal("expected an error for an expired slug")
	}
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestResolve_UnknownSlugIsNotFound(t *testing.T) {
	svc := newTestService(newMemoryLinkRepo(), &fakeProducts{})

	_, err := svc.Resolve(context.Background(), "no-such-slug-0000")
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestProductIDs_JoinSplitRoundTrip(t *testing.T) {
	ids := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}

	got, err := splitProductIDs(joinProductIDs(ids))
	if err != nil {
		t.Fatalf("expected round trip to succeed, got %v", err)
	}
	if !reflect.DeepEqual(got, ids) {
		t.Fatalf("expected %v, got %v", ids, got)
	}

	empty, err := splitProductIDs("")
	if err != nil {
		t.Fatalf("expected empty string to split, got %v", err)
	}
	if len(empty) != 0 {
		t.Fatalf("expected no ids, got %d", len(empty))
	}
}
