package assembly

import (
	"reflect"
	"strings"
	"testing"

	"github.com/google/uuid"

	"catalog_portal_backend/platform/apperr"
)

var (
	frontID = uuid.MustParse("11111111-1111-1111-1111-111111111111")
	backID  = uuid.MustParse("22222222-2222-2222-2222-222222222222")
	p1      = uuid.MustParse("33333333-3333-3333-3333-333333333333")
	p2      = uuid.MustParse("44444444-4444-4444-4444-444444444444")
	advert  = uuid.MustParse("55555555-5555-5555-5555-555555555555")
	promo   = uuid.MustParse("66666666-6666-6666-6666-666666666666")
)

func kinds(m Manifest) []EntryKind {
	out := make([]EntryKind, len(m))
	for i, e := range m {
		out[i] = e.Kind
	}
	return out
}

func ids(m Manifest) []uuid.UUID {
	out := make([]uuid.UUID, len(m))
	for i, e := range m {
		out[i] = e.SourceID
	}
	return out
}

func TestBuildManifest_AdvertBeforeProducts(t *testing.T) {
	manifest, err := BuildManifest(Selection{
		FrontID:    frontID,
		BackID:     backID,
		ProductIDs: []uuid.UUID{p1, p2},
		Additional: []AdditionalPage{{ID: advert, Kind: EntryAdvertisement, Position: 2}},
	})
	if err != nil {
		t.Fatalf("expected build to succeed, got %v", err)
	}

	want := []uuid.UUID{frontID, advert, p1, p2, backID}
	if !reflect.DeepEqual(ids(manifest), want) {
		t.Fatalf("expected order %v, got %v", want, ids(manifest))
	}
}

func TestBuildManifest_PromotionAfterFirstProduct(t *testing.T) {
	manifest, err := BuildManifest(Selection{
		FrontID:    frontID,
		BackID:     backID,
		ProductIDs: []uuid.UUID{p1, p2},
		Additional: []AdditionalPage{{ID: promo, Kind: EntryPromotion, Position: 3}},
	})
	if err != nil {
		t.Fatalf("expected build to succeed, got %v", err)
	}

	want := []uuid.UUID{frontID, p1, promo, p2, backID}
	if !reflect.DeepEqual(ids(manifest), want) {
		t.Fatalf("expected order %v, got %v", want, ids(manifest))
	}
}

func TestBuildManifest_PromotionAtEnd(t *testing.T) {
	// With two products, position 5 (N+3) means after the last product.
	manifest, err := BuildManifest(Selection{
		FrontID:    frontID,
		BackID:     backID,
		ProductIDs: []uuid.UUID{p1, p2},
		Additional: []AdditionalPage{{ID: promo, Kind: EntryPromotion, Position: 5}},
	})
	if err != nil {
		t.Fatalf("expected build to succeed, got %v", err)
	}

	want := []uuid.UUID{frontID, p1, p2, promo, backID}
	if !reflect.DeepEqual(ids(manifest), want) {
		t.Fatalf("expected order %v, got %v", want, ids(manifest))
	}
}

func TestBuildManifest_SamePositionKeepsInsertionOrder(t *testing.T) {
	manifest, err := BuildManifest(Selection{
		FrontID:    frontID,
		BackID:     backID,
		ProductIDs: []uuid.UUID{p1, p2},
		Additional: []AdditionalPage{
			{ID: advert, Kind: EntryAdvertisement, Position: 3},
			{ID: promo, Kind: EntryPromotion, Position: 3},
		},
	})
	if err != nil {
		t.Fatalf("expected build to succeed, got %v", err)
	}

	want := []uuid.UUID{frontID, p1, advert, promo, p2, backID}
	if !reflect.DeepEqual(ids(manifest), want) {
		t.Fatalf("expected order %v, got %v", want, ids(manifest))
	}
	wantKinds := []EntryKind{EntryCorporateFront, EntryProduct, EntryAdvertisement, EntryPromotion, EntryProduct, EntryCorporateBack}
	if !reflect.DeepEqual(kinds(manifest), wantKinds) {
		t.Fatalf("expected kinds %v, got %v", wantKinds, kinds(manifest))
	}
}

func TestBuildManifest_Deterministic(t *testing.T) {
	sel := Selection{
		FrontID:    frontID,
		BackID:     backID,
		ProductIDs: []uuid.UUID{p2, p1},
		Additional: []AdditionalPage{
			{ID: promo, Kind: EntryPromotion, Position: 2},
			{ID: advert, Kind: EntryAdvertisement, Position: 4},
		},
	}

	first, err := BuildManifest(sel)
	if err != nil {
		t.Fatalf("expected build to succeed, got %v", err)
	}
	second, err := BuildManifest(sel)
	if err != nil {
		t.Fatalf("expected build to succeed, got %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("expected identical manifests, got %v and %v", first, second)
	}
}

func TestBuildManifest_ValidationNamesMissingField(t *testing.T) {
	cases := []struct {
		name string
		sel  Selection
		want string
	}{
		{"missing front", Selection{BackID: backID, ProductIDs: []uuid.UUID{p1}}, "frontCorporateId"},
		{"missing back", Selection{FrontID: frontID, ProductIDs: []uuid.UUID{p1}}, "backCorporateId"},
		{"no products", Selection{FrontID: frontID, BackID: backID}, "productIds"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := BuildManifest(tc.sel)
			if err == nil {
				t.Fatal("expected a validation error")
			}
			if !apperr.Is(err, apperr.KindValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error to name %q, got %q", tc.want, err.Error())
			}
		})
	}
}

func TestBuildManifest_PositionOutOfRange(t *testing.T) {
	_, err := BuildManifest(Selection{
		FrontID:    frontID,
		BackID:     backID,
		ProductIDs: []uuid.UUID{p1, p2},
		Additional: []AdditionalPage{{ID: advert, Kind: EntryAdvertisement, Position: 7}},
	})
	if err == nil {
		t.Fatal("expected an error for an out-of-range position")
	}
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestDecodeSlot(t *testing.T) {
	cases := []struct {
		position string
		pos, n   int
		want     insertionSlot
	}{
		{"before products", 2, 3, 0},
		{"after first product", 3, 3, 1},
		{"after last product", 5, 3, 3},
		{"at the end", 6, 3, 4},
	}

	for _, tc := range cases {
		t.Run(tc.position, func(t *testing.T) {
			got, err := decodeSlot(tc.pos, tc.n)
			if err != nil {
				t.Fatalf("expected position %d to decode, got %v", tc.pos, err)
			}
			if got != tc.want {
				t.Fatalf("expected slot %d, got %d", tc.want, got)
			}
		})
	}

	if _, err := decodeSlot(1, 3); err == nil {
		t.Fatal("expected position 1 to be rejected")
	}
	if _, err := decodeSlot(7, 3); err == nil {
		t.Fatal("expected position past the end to be rejected")
	}
}
