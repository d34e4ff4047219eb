package sharing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/skip2/go-qrcode"

	"catalog_portal_backend/internal/adapters/storage"
	catalogrepo "catalog_portal_backend/internal/catalog/repository"
	"catalog_portal_backend/internal/events"
	"catalog_portal_backend/platform/apperr"
	"catalog_portal_backend/platform/config"
	"catalog_portal_backend/platform/logger"
)

// SharedProduct is the live product view a link resolves to.
type SharedProduct struct {
	ID          uuid.UUID `json:"id"`
	BrandID     uuid.UUID `json:"brandId"`
	Name        string    `json:"name"`
	SKU         string    `json:"sku"`
	Description string    `json:"description"`
	PriceCents  int64     `json:"priceCents"`
	Dimensions  string    `json:"dimensions"`
	Material    string    `json:"material"`
	ImageURL    *string   `json:"imageUrl,omitempty"`
	PDFURL      *string   `json:"pdfUrl,omitempty"`
}

// CreateResult is the outcome of creating a link.
type CreateResult struct {
	Slug      string
	URL       string
	ExpiresAt time.Time
}

// ResolveResult is the live data behind a valid link.
type ResolveResult struct {
	Products  []SharedProduct
	ExpiresAt time.Time
}

// Service provides business logic for shareable links.
type Service struct {
	repo     Repository
	products catalogrepo.Repository
	storage  storage.StorageService
	cfg      config.SharingConfig
	bucket   string
	bus      events.Bus
	log      *logger.Logger
}

// NewService creates a new sharing service. bucket is the product media
// bucket used for presigned image and spec sheet URLs.
func NewService(repo Repository, products catalogrepo.Repository, storageSvc storage.StorageService, cfg config.SharingConfig, bucket string, bus events.Bus, log *logger.Logger) *Service {
	return &Service{
		repo:     repo,
		products: products,
		storage:  storageSvc,
		cfg:      cfg,
		bucket:   bucket,
		bus:      bus,
		log:      log,
	}
}

// Create persists a shareable link for the given product set. A zero
// expiresAt falls back to the configured TTL. A slug collision, while
// practically impossible, is retried once with a fresh slug.
func (s *Service) Create(ctx context.Context, productIDs []uuid.UUID, expiresAt time.Time, clientID *uuid.UUID, createdBy uuid.UUID) (CreateResult, error) {
	if len(productIDs) == 0 {
		return CreateResult{}, apperr.Validation("productIds must not be empty")
	}
	if expiresAt.IsZero() {
		expiresAt = time.Now().Add(s.cfg.GetShareLinkTTL())
	}
	if !expiresAt.After(time.Now()) {
		return CreateResult{}, apperr.Validation("expiresAt must be in the future")
	}

	link, err := s.createWithRetry(ctx, productIDs, expiresAt, clientID, createdBy)
	if err != nil {
		return CreateResult{}, err
	}

	s.log.Info("share link created", "slug", link.Slug, "products", len(productIDs), "expiresAt", link.ExpiresAt)
	s.bus.Publish(ctx, events.ShareLinkCreated{
		BaseEvent: events.NewBaseEvent(),
		Slug:      link.Slug,
		CreatedBy: createdBy,
		Products:  len(productIDs),
	})

	return CreateResult{Slug: link.Slug, URL: s.ShareURL(link.Slug), ExpiresAt: link.ExpiresAt}, nil
}

func (s *Service) createWithRetry(ctx context.Context, productIDs []uuid.UUID, expiresAt time.Time, clientID *uuid.UUID, createdBy uuid.UUID) (Link, error) {
	for attempt := 0; attempt < 2; attempt++ {
		slug, err := NewSlug()
		if err != nil {
			return Link{}, apperr.Wrap(apperr.KindInternal, "could not generate slug", err)
		}

		link, err := s.repo.Create(ctx, CreateParams{
			Slug:       slug,
			ProductIDs: productIDs,
			ClientID:   clientID,
			CreatedBy:  createdBy,
			ExpiresAt:  expiresAt,
		})
		if err != nil {
			if errors.Is(err, ErrSlugTaken) {
				continue
			}
			return Link{}, err
		}
		return link, nil
	}
	return Link{}, apperr.Wrap(apperr.KindInternal, "could not create shared link", ErrSlugTaken)
}

// Resolve returns the live product data behind a slug. Unknown and expired
// slugs are indistinguishable to the caller: both are not found. Expiry is
// checked at read time; no cleanup job is needed for correctness.
func (s *Service) Resolve(ctx context.Context, slug string) (ResolveResult, error) {
	link, err := s.repo.GetBySlug(ctx, slug)
	if err != nil {
		return ResolveResult{}, err
	}
	if time.Now().After(link.ExpiresAt) {
		return ResolveResult{}, apperr.NotFound(notFoundMessage)
	}

	products, err := s.products.GetProductsByIDs(ctx, link.ProductIDs)
	if err != nil {
		return ResolveResult{}, err
	}

	out := make([]SharedProduct, 0, len(products))
	for _, p := range products {
		out = append(out, s.toSharedProduct(ctx, p))
	}
	return ResolveResult{Products: out, ExpiresAt: link.ExpiresAt}, nil
}

// QRCode renders a PNG QR code pointing at the public share URL.
func (s *Service) QRCode(ctx context.Context, slug string, size int) ([]byte, error) {
	// Validates existence and expiry before handing out a code.
	if _, err := s.Resolve(ctx, slug); err != nil {
		return nil, err
	}

	png, err := qrcode.Encode(s.ShareURL(slug), qrcode.Medium, size)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "could not render qr code", err)
	}
	return png, nil
}

// ShareURL is the public URL a viewer opens for a slug.
func (s *Service) ShareURL(slug string) string {
	return fmt.Sprintf("%s/shared-pdf/%s", s.cfg.GetPublicBaseURL(), slug)
}

func (s *Service) toSharedProduct(ctx context.Context, p catalogrepo.Product) SharedProduct {
	out := SharedProduct{
		ID:          p.ID,
		BrandID:     p.BrandID,
		Name:        p.Name,
		SKU:         p.SKU,
		Description: p.Description,
		PriceCents:  p.PriceCents,
		Dimensions:  p.Dimensions,
		Material:    p.Material,
	}
	out.ImageURL = s.presign(ctx, p.ImageKey)
	out.PDFURL = s.presign(ctx, p.PDFKey)
	return out
}

func (s *Service) presign(ctx context.Context, key *string) *string {
	if key == nil {
		return nil
	}
	presigned, err := s.storage.GenerateDownloadURL(ctx, s.bucket, *key)
	if err != nil {
		s.log.Warn("could not presign shared product media", "key", *key, "error", err)
		return nil
	}
	return &presigned.URL
}
