package clients

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"catalog_portal_backend/platform/apperr"
)

const notFoundMessage = "client not found"

const clientColumns = `id, name, company, email, notes, created_at, updated_at`

// Client is a persisted client record.
type Client struct {
	ID        uuid.UUID
	Name      string
	Company   string
	Email     string
	Notes     string
	CreatedAt string
	UpdatedAt string
}

// CreateParams holds the fields for creating a client.
type CreateParams struct {
	Name    string
	Company string
	Email   string
	Notes   string
}

// UpdateParams holds the fields for updating a client.
type UpdateParams struct {
	ID      uuid.UUID
	Name    *string
	Company *string
	Email   *string
	Notes   *string
}

// Repository defines client persistence operations.
type Repository interface {
	Create(ctx context.Context, params CreateParams) (Client, error)
	Update(ctx context.Context, params UpdateParams) (Client, error)
	Delete(ctx context.Context, id uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (Client, error)
	List(ctx context.Context, search string) ([]Client, error)
}

// Repo implements the client repository.
type Repo struct {
	pool *pgxpool.Pool
}

// NewRepo creates a new client repository.
func NewRepo(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

var _ Repository = (*Repo)(nil)

// Create creates a client.
func (r *Repo) Create(ctx context.Context, params CreateParams) (Client, error) {
	query := `
		INSERT INTO clients (name, company, email, notes)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + clientColumns

	return r.scan(r.pool.QueryRow(ctx, query, params.Name, params.Company, params.Email, params.Notes), "create client")
}

// Update updates a client.
func (r *Repo) Update(ctx context.Context, params UpdateParams) (Client, error) {
	query := `
		UPDATE clients
		SET name = COALESCE($2, name),
			company = COALESCE($3, company),
			email = COALESCE($4, email),
			notes = COALESCE($5, notes),
			updated_at = now()
		WHERE id = $1
		RETURNING ` + clientColumns

	client, err := r.scan(r.pool.QueryRow(ctx, query, params.ID, params.Name, params.Company, params.Email, params.Notes), "update client")
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return Client{}, apperr.NotFound(notFoundMessage)
		}
		return Client{}, err
	}
	return client, nil
}

// Delete removes a client. Shared links pointing at it keep working with a
// null client reference.
func (r *Repo) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM clients WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete client: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound(notFoundMessage)
	}
	return nil
}

// GetByID retrieves a client by ID.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clients WHERE id = $1`

	client, err := r.scan(r.pool.QueryRow(ctx, query, id), "get client by id")
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return Client{}, apperr.NotFound(notFoundMessage)
		}
		return Client{}, err
	}
	return client, nil
}

// List lists clients, optionally filtered by a name/company search.
func (r *Repo) List(ctx context.Context, search string) ([]Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clients`
	args := []interface{}{}
	if search != "" {
		query += ` WHERE name ILIKE $1 OR company ILIKE $1`
		args = append(args, "%"+search+"%")
	}
	query += ` ORDER BY name ASC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	defer rows.Close()

	out := make([]Client, 0)
	for rows.Next() {
		var client Client
		var createdAt, updatedAt time.Time
		if err := rows.Scan(&client.ID, &client.Name, &client.Company, &client.Email, &client.Notes, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("scan client: %w", err)
		}
		client.CreatedAt = createdAt.Format(time.RFC3339)
		client.UpdatedAt = updatedAt.Format(time.RFC3339)
		out = append(out, client)
	}
	return out, rows.Err()
}

func (r *Repo) scan(row pgx.Row, op string) (Client, error) {
	var client Client
	var createdAt, updatedAt time.Time
	if err := row.Scan(&client.ID, &client.Name, &client.Company, &client.Email, &client.Notes, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Client{}, apperr.NotFound(notFoundMessage)
		}
		return Client{}, fmt.Errorf("%s: %w", op, err)
	}
	client.CreatedAt = createdAt.Format(time.RFC3339)
	client.UpdatedAt = updatedAt.Format(time.RFC3339)
	return client, nil
}
