// Package assembly implements the catalog PDF pipeline: it turns a wizard
// selection into an ordered manifest, resolves each manifest entry to raw PDF
// bytes, merges the survivors and stores the result.
package assembly

import (
	"fmt"

	"github.com/google/uuid"

	"catalog_portal_backend/platform/apperr"
)

// EntryKind classifies a manifest entry.
type EntryKind string

// Manifest entry kinds.
const (
	EntryCorporateFront EntryKind = "corporate_front"
	EntryCorporateBack  EntryKind = "corporate_back"
	EntryProduct        EntryKind = "product"
	EntryAdvertisement  EntryKind = "advertisement"
	EntryPromotion      EntryKind = "promotion"
)

// ManifestEntry is one document in the merge order.
type ManifestEntry struct {
	Kind     EntryKind
	SourceID uuid.UUID
}

// Manifest is the flat ordered list of documents to merge. Order is the
// contract: downstream concatenates pages exactly in this sequence.
type Manifest []ManifestEntry

// AdditionalPage is an advert or promotion with its user-chosen position.
// Position uses the wizard's scale: 2 places the page before any product,
// 3..N+2 places it after product (position-2), and N+3 places it after the
// last product. The slice order of additional pages is the user's insertion
// order and breaks ties within the same position.
type AdditionalPage struct {
	ID       uuid.UUID
	Kind     EntryKind
	Position int
}

// Selection is the immutable wizard outcome a manifest is built from.
type Selection struct {
	FrontID    uuid.UUID
	BackID     uuid.UUID
	ProductIDs []uuid.UUID
	Additional []AdditionalPage
}

// insertionSlot is the decoded placement of an additional page. The raw
// position integer lives only at the UI boundary; internally each page is
// bucketed by slot: 0 = before any product, i in 1..N = after product i,
// N+1 = after all products.
type insertionSlot int

const slotBeforeProducts insertionSlot = 0

// decodeSlot translates a wizard position into an insertion slot.
func decodeSlot(position, productCount int) (insertionSlot, error) {
	switch {
	case position == 2:
		return slotBeforeProducts, nil
	case position >= 3 && position <= productCount+2:
		return insertionSlot(position - 2), nil
	case position == productCount+3:
		return insertionSlot(productCount + 1), nil
	default:
		return 0, fmt.Errorf("position %d out of range for %d products", position, productCount)
	}
}

// BuildManifest turns a selection into the flat merge order. It is a pure
// function: identical selections always produce identical manifests.
//
// The order is: front page, pages slotted before products, then each product
// followed by the pages slotted after it, pages slotted at the end, and the
// back page last. Pages sharing a slot keep their insertion order.
func BuildManifest(sel Selection) (Manifest, error) {
	if sel.FrontID == uuid.Nil {
		return nil, apperr.Validation("frontCorporateId is required")
	}
	if sel.BackID == uuid.Nil {
		return nil, apperr.Validation("backCorporateId is required")
	}
	if len(sel.ProductIDs) == 0 {
		return nil, apperr.Validation("productIds must not be empty")
	}

	n := len(sel.ProductIDs)
	slotted := make(map[insertionSlot][]ManifestEntry, len(sel.Additional))
	for i, page := range sel.Additional {
		if page.ID == uuid.Nil {
			return nil, apperr.Validation(fmt.Sprintf("additionalPages[%d].id is required", i))
		}
		slot, err := decodeSlot(page.Position, n)
		if err != nil {
			return nil, apperr.Validation(fmt.Sprintf("additionalPages[%d]: %s", i, err.Error()))
		}
		slotted[slot] = append(slotted[slot], ManifestEntry{Kind: page.Kind, SourceID: page.ID})
	}

	manifest := make(Manifest, 0, 2+n+len(sel.Additional))
	manifest = append(manifest, ManifestEntry{Kind: EntryCorporateFront, SourceID: sel.FrontID})
	manifest = append(manifest, slotted[slotBeforeProducts]...)
	for i, productID := range sel.ProductIDs {
		manifest = append(manifest, ManifestEntry{Kind: EntryProduct, SourceID: productID})
		manifest = append(manifest, slotted[insertionSlot(i+1)]...)
	}
	manifest = append(manifest, slotted[insertionSlot(n+1)]...)
	manifest = append(manifest, ManifestEntry{Kind: EntryCorporateBack, SourceID: sel.BackID})

	return manifest, nil
}
