package leads

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type pgQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresRepository stores leads in the relational database.
type PostgresRepository struct {
	pool pgQuerier
}

var _ Repository = (*PostgresRepository)(nil)

// NewPostgresRepository initializes a repo backed by pgxpool.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	if pool == nil {
		panic("leads: pgx pool required")
	}
	return &PostgresRepository{pool: pool}
}

func newPostgresRepositoryWithQuerier(q pgQuerier) *PostgresRepository {
	if q == nil {
		panic("leads: querier required")
	}
	return &PostgresRepository{pool: q}
}

const leadColumns = `id, agency_id, first_name, last_name, phone, email, registration_type, purpose,
	status, source, notes, desired_neighborhood, bedrooms_text, check_in_date_text,
	interested_unit_ids, interested_condominium_ids, has_pets, preferred_language, created_at`

// Create inserts a new row.
func (r *PostgresRepository) Create(ctx context.Context, req *CreateLeadRequest) (*Lead, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	id := uuid.New()
	lead := req.toLead(id.String(), time.Time{})
	query := `
		INSERT INTO leads (
			id, agency_id, first_name, last_name, phone, email, registration_type, purpose,
			status, source, notes, desired_neighborhood, bedrooms_text, check_in_date_text,
			interested_unit_ids, interested_condominium_ids, has_pets, preferred_language
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		RETURNING created_at
	`
	if err := r.pool.QueryRow(ctx, query,
		id,
		lead.AgencyID,
		lead.FirstName,
		lead.LastName,
		lead.Phone,
		lead.Email,
		lead.RegistrationType,
		lead.Purpose,
		lead.Status,
		lead.Source,
		lead.Notes,
		lead.DesiredNeighborhood,
		lead.BedroomsText,
		lead.CheckInDateText,
		nonNilStrings(lead.InterestedUnitIDs),
		nonNilStrings(lead.InterestedCondominiumIDs),
		lead.HasPets,
		lead.PreferredLanguage,
	).Scan(&lead.CreatedAt); err != nil {
		return nil, fmt.Errorf("leads: insert failed: %w", err)
	}

	return lead, nil
}

// GetByID fetches a lead scoped to the agency.
func (r *PostgresRepository) GetByID(ctx context.Context, agencyID, id string) (*Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM leads WHERE id = $1 AND agency_id = $2`
	lead, err := scanLead(r.pool.QueryRow(ctx, query, id, agencyID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrLeadNotFound
		}
		return nil, fmt.Errorf("leads: select failed: %w", err)
	}
	return lead, nil
}

// CheckDuplicate matches on digits-only phone within the agency.
func (r *PostgresRepository) CheckDuplicate(ctx context.Context, agencyID, firstName, lastName, phone string) (string, error) {
	digits := phoneDigits(phone)
	if digits == "" {
		return "", nil
	}
	query := `
		SELECT id FROM leads
		WHERE agency_id = $1
		  AND regexp_replace(phone, '[^0-9]', '', 'g') = $2
		  AND ($3 = '' OR lower(first_name) = lower($3))
		  AND ($4 = '' OR lower(last_name) = lower($4))
		ORDER BY created_at ASC
		LIMIT 1
	`
	var id string
	if err := r.pool.QueryRow(ctx, query, agencyID, digits, firstName, lastName).Scan(&id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("leads: duplicate check failed: %w", err)
	}
	return id, nil
}

// ListByAgency returns the agency's leads, newest first.
func (r *PostgresRepository) ListByAgency(ctx context.Context, agencyID string, filter ListLeadsFilter) ([]*Lead, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	query := `SELECT ` + leadColumns + ` FROM leads
		WHERE agency_id = $1
		  AND ($2 = '' OR status = $2)
		  AND ($3 = '' OR source = $3)
		ORDER BY created_at DESC
		LIMIT $4 OFFSET $5`
	rows, err := r.pool.Query(ctx, query, agencyID, filter.Status, filter.Source, limit, filter.Offset)
	if err != nil {
		return nil, fmt.Errorf("leads: list failed: %w", err)
	}
	defer rows.Close()

	out := make([]*Lead, 0)
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, fmt.Errorf("leads: scan failed: %w", err)
		}
		out = append(out, lead)
	}
	return out, rows.Err()
}

func scanLead(row pgx.Row) (*Lead, error) {
	var lead Lead
	if err := row.Scan(
		&lead.ID,
		&lead.AgencyID,
		&lead.FirstName,
		&lead.LastName,
		&lead.Phone,
		&lead.Email,
		&lead.RegistrationType,
		&lead.Purpose,
		&lead.Status,
		&lead.Source,
		&lead.Notes,
		&lead.DesiredNeighborhood,
		&lead.BedroomsText,
		&lead.CheckInDateText,
		&lead.InterestedUnitIDs,
		&lead.InterestedCondominiumIDs,
		&lead.HasPets,
		&lead.PreferredLanguage,
		&lead.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &lead, nil
}

func nonNilStrings(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}
