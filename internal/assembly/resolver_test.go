package assembly

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"catalog_portal_backend/internal/adapters/storage"
	catalogrepo "catalog_portal_backend/internal/catalog/repository"
	collateralrepo "catalog_portal_backend/internal/collateral/repository"
	"catalog_portal_backend/platform/apperr"
)

// fakeProducts serves canned product records; unimplemented methods panic.
type fakeProducts struct {
	catalogrepo.Repository
	products map[uuid.UUID]catalogrepo.Product
}

func (f *fakeProducts) GetProductByID(_ context.Context, id uuid.UUID) (catalogrepo.Product, error) {
	p, ok := f.products[id]
	if !ok {
		return catalogrepo.Product{}, apperr.NotFound("product not found")
	}
	return p, nil
}

type fakeCollateral struct {
	collateralrepo.Repository
	docs map[uuid.UUID]collateralrepo.Collateral
}

func (f *fakeCollateral) GetByID(_ context.Context, id uuid.UUID) (collateralrepo.Collateral, error) {
	doc, ok := f.docs[id]
	if !ok {
		return collateralrepo.Collateral{}, apperr.NotFound("collateral not found")
	}
	return doc, nil
}

// fakeObjectStore serves objects keyed by "bucket/key".
type fakeObjectStore struct {
	storage.StorageService
	objects map[string][]byte
}

func (f *fakeObjectStore) ReadFile(_ context.Context, bucket, fileKey string) ([]byte, error) {
	data, ok := f.objects[bucket+"/"+fileKey]
	if !ok {
		return nil, fmt.Errorf("object %s/%s not found", bucket, fileKey)
	}
	return data, nil
}

// hangingObjectStore serves objects like fakeObjectStore but blocks reads of
// the listed keys until the caller's context gives up.
type hangingObjectStore struct {
	storage.StorageService
	objects map[string][]byte
	hung    map[string]bool
}

func (f *hangingObjectStore) ReadFile(ctx context.Context, bucket, fileKey string) ([]byte, error) {
	if f.hung[bucket+"/"+fileKey] {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	data, ok := f.objects[bucket+"/"+fileKey]
	if !ok {
		return nil, fmt.Errorf("object %s/%s not found", bucket, fileKey)
	}
	return data, nil
}

func strptr(s string) *string { return &s }

func newTestResolver(products *fakeProducts, docs *fakeCollateral, store *fakeObjectStore) *StorageResolver {
	return NewStorageResolver(products, docs, store, "product-media", "collateral", time.Second, 4)
}

func TestResolveAll_PreservesManifestOrder(t *testing.T) {
	products := &fakeProducts{products: map[uuid.UUID]catalogrepo.Product{
		p1: {ID: p1, PDFKey: strptr("p1.pdf")},
		p2: {ID: p2, PDFKey: strptr("p2.pdf")},
	}}
	docs := &fakeCollateral{docs: map[uuid.UUID]collateralrepo.Collateral{
		frontID: {ID: frontID, Kind: collateralrepo.KindCorporateFront, FileKey: strptr("front.pdf")},
	}}
	store := &fakeObjectStore{objects: map[string][]byte{
		"product-media/p1.pdf": []byte("one"),
		"product-media/p2.pdf": []byte("two"),
		"collateral/front.pdf": []byte("front"),
	}}

	manifest := Manifest{
		{Kind: EntryCorporateFront, SourceID: frontID},
		{Kind: EntryProduct, SourceID: p1},
		{Kind: EntryProduct, SourceID: p2},
	}

	results := newTestResolver(products, docs, store).ResolveAll(context.Background(), manifest)
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	for i, res := range results {
		if res.Entry != manifest[i] {
			t.Fatalf("result %d belongs to entry %v, expected %v", i, res.Entry, manifest[i])
		}
		if res.Err != nil {
			t.Fatalf("expected entry %d to resolve, got %v", i, res.Err)
		}
	}
	if string(results[1].Data) != "one" || string(results[2].Data) != "two" {
		t.Fatal("expected product bytes in manifest order")
	}
}

func TestResolveAll_NullKeyIsFailureNotError(t *testing.T) {
	products := &fakeProducts{products: map[uuid.UUID]catalogrepo.Product{
		p1: {ID: p1, PDFKey: nil},
	}}

	results := newTestResolver(products, &fakeCollateral{}, &fakeObjectStore{}).
		ResolveAll(context.Background(), Manifest{{Kind: EntryProduct, SourceID: p1}})

	if results[0].Err == nil {
		t.Fatal("expected a resolution failure for a null spec sheet key")
	}
	if !strings.Contains(results[0].Err.Error(), "not available") {
		t.Fatalf("expected a not-available reason, got %q", results[0].Err.Error())
	}
}

func TestResolveAll_MissingRecordIsFailure(t *testing.T) {
	// A product deleted after selection resolves as a failure, not a crash.
	results := newTestResolver(&fakeProducts{products: map[uuid.UUID]catalogrepo.Product{}}, &fakeCollateral{}, &fakeObjectStore{}).
		ResolveAll(context.Background(), Manifest{
			{Kind: EntryProduct, SourceID: p1},
			{Kind: EntryAdvertisement, SourceID: advert},
		})

	for i, res := range results {
		if res.Err == nil {
			t.Fatalf("expected entry %d to fail resolution", i)
		}
	}
}

func TestResolveAll_HangingFetchTimesOutWithoutStallingSiblings(t *testing.T) {
	products := &fakeProducts{products: map[uuid.UUID]catalogrepo.Product{
		p1: {ID: p1, PDFKey: strptr("p1.pdf")},
		p2: {ID: p2, PDFKey: strptr("p2.pdf")},
	}}
	store := &hangingObjectStore{
		objects: map[string][]byte{"product-media/p2.pdf": []byte("two")},
		hung:    map[string]bool{"product-media/p1.pdf": true},
	}
	resolver := NewStorageResolver(products, &fakeCollateral{}, store, "product-media", "collateral", 20*time.Millisecond, 4)

	start := time.Now()
	results := resolver.ResolveAll(context.Background(), Manifest{
		{Kind: EntryProduct, SourceID: p1},
		{Kind: EntryProduct, SourceID: p2},
	})
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Fatalf("expected the fetch timeout to bound resolution, took %v", elapsed)
	}

	if results[0].Err == nil {
		t.Fatal("expected the hanging fetch to resolve as a failure")
	}
	if !errors.Is(results[0].Err, context.DeadlineExceeded) {
		t.Fatalf("expected a deadline error, got %v", results[0].Err)
	}
	if results[1].Err != nil {
		t.Fatalf("expected the sibling fetch to succeed, got %v", results[1].Err)
	}
	if string(results[1].Data) != "two" {
		t.Fatal("expected sibling bytes despite the hanging entry")
	}
}

func TestResolveAll_FetchErrorIsFailure(t *testing.T) {
	docs := &fakeCollateral{docs: map[uuid.UUID]collateralrepo.Collateral{
		advert: {ID: advert, Kind: collateralrepo.KindAdvertisement, FileKey: strptr("missing.pdf")},
	}}

	results := newTestResolver(&fakeProducts{}, docs, &fakeObjectStore{objects: map[string][]byte{}}).
		ResolveAll(context.Background(), Manifest{{Kind: EntryAdvertisement, SourceID: advert}})

	if results[0].Err == nil {
		t.Fatal("expected a resolution failure for a missing object")
	}
}
