package sharing

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"catalog_portal_backend/platform/apperr"
)

const notFoundMessage = "shared link not found"

// productIDDelimiter joins product ids into the stored text column. Split
// and join must stay consistent or stored links silently break.
const productIDDelimiter = ","

// ErrSlugTaken reports a slug unique violation so the service can retry
// generation once.
var ErrSlugTaken = errors.New("slug already taken")

// Link is a persisted shareable link.
type Link struct {
	ID         uuid.UUID
	Slug       string
	ProductIDs []uuid.UUID
	ClientID   *uuid.UUID
	CreatedBy  uuid.UUID
	ExpiresAt  time.Time
	CreatedAt  time.Time
}

// CreateParams holds the fields for creating a link.
type CreateParams struct {
	Slug       string
	ProductIDs []uuid.UUID
	ClientID   *uuid.UUID
	CreatedBy  uuid.UUID
	ExpiresAt  time.Time
}

// Repository defines shared link persistence operations.
type Repository interface {
	Create(ctx context.Context, params CreateParams) (Link, error)
	GetBySlug(ctx context.Context, slug string) (Link, error)
}

// Repo implements the shared link repository.
type Repo struct {
	pool *pgxpool.Pool
}

// NewRepo creates a new shared link repository.
func NewRepo(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

var _ Repository = (*Repo)(nil)

// Create persists a link. Returns ErrSlugTaken on a slug collision.
func (r *Repo) Create(ctx context.Context, params CreateParams) (Link, error) {
	query := `
		INSERT INTO shared_links (slug, product_ids, client_id, created_by, expires_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, slug, product_ids, client_id, created_by, expires_at, created_at`

	link, err := scanLink(r.pool.QueryRow(ctx, query,
		params.Slug, joinProductIDs(params.ProductIDs), params.ClientID, params.CreatedBy, params.ExpiresAt))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Link{}, ErrSlugTaken
		}
		return Link{}, fmt.Errorf("create shared link: %w", err)
	}
	return link, nil
}

// GetBySlug retrieves a link by slug. Expiry is the caller's concern.
func (r *Repo) GetBySlug(ctx context.Context, slug string) (Link, error) {
	query := `
		SELECT id, slug, product_ids, client_id, created_by, expires_at, created_at
		FROM shared_links
		WHERE slug = $1`

	link, err := scanLink(r.pool.QueryRow(ctx, query, slug))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Link{}, apperr.NotFound(notFoundMessage)
		}
		return Link{}, fmt.Errorf("get shared link: %w", err)
	}
	return link, nil
}

func scanLink(row pgx.Row) (Link, error) {
	var link Link
	var joined string
	if err := row.Scan(&link.ID, &link.Slug, &joined, &link.ClientID, &link.CreatedBy, &link.ExpiresAt, &link.CreatedAt); err != nil {
		return Link{}, err
	}

	ids, err := splitProductIDs(joined)
	if err != nil {
		return Link{}, fmt.Errorf("parse stored product ids: %w", err)
	}
	link.ProductIDs = ids
	return link, nil
}

func joinProductIDs(ids []uuid.UUID) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = id.String()
	}
	return strings.Join(parts, productIDDelimiter)
}

func splitProductIDs(joined string) ([]uuid.UUID, error) {
	if joined == "" {
		return []uuid.UUID{}, nil
	}
	parts := strings.Split(joined, productIDDelimiter)
	ids := make([]uuid.UUID, 0, len(parts))
	for _, part := range parts {
		id, err := uuid.Parse(part)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
