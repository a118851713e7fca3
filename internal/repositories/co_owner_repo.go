package repositories

import (
	"context"

	"rentpolicy/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type CoOwnerRepository interface {
	Create(ctx context.Context, coOwner *models.CoOwner) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.CoOwner, error)
	// ListActive returns a landlord's active co-owners oldest first;
	// forUpdate locks the rows for the rest of the transaction.
	ListActive(ctx context.Context, landlordID uuid.UUID, forUpdate bool) ([]*models.CoOwner, error)
	UpdateShare(ctx context.Context, id uuid.UUID, share models.Share) error
	Deactivate(ctx context.Context, id uuid.UUID) error
}

const coOwnerColumns = `id, landlord_id, name, ownership_bps, rfc, curp, is_active, created_at, updated_at`

const (
	insertCoOwnerQuery = `
		INSERT INTO co_owners (id, landlord_id, name, ownership_bps, rfc, curp, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, TRUE, NOW(), NOW())
		RETURNING created_at, updated_at
	`
	selectCoOwnerByIDQuery          = `SELECT ` + coOwnerColumns + ` FROM co_owners WHERE id = $1`
	selectActiveCoOwnersQuery       = `SELECT ` + coOwnerColumns + ` FROM co_owners WHERE landlord_id = $1 AND is_active ORDER BY created_at, id`
	selectActiveCoOwnersLockedQuery = selectActiveCoOwnersQuery + ` FOR UPDATE`
	updateCoOwnerShareQuery         = `UPDATE co_owners SET ownership_bps = $1, updated_at = NOW() WHERE id = $2 AND is_active`
	deactivateCoOwnerQuery          = `UPDATE co_owners SET is_active = FALSE, updated_at = NOW() WHERE id = $1 AND is_active`
)

type coOwnerRepo struct {
	db DB
}

func NewCoOwnerRepository(db DB) CoOwnerRepository {
	return &coOwnerRepo{db: db}
}

func (r *coOwnerRepo) Create(ctx context.Context, c *models.CoOwner) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	c.IsActive = true
	return r.db.QueryRow(ctx, insertCoOwnerQuery,
		c.ID, c.LandlordID, c.Name, int64(c.OwnershipShare), c.RFC, c.CURP,
	).Scan(&c.CreatedAt, &c.UpdatedAt)
}

func (r *coOwnerRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.CoOwner, error) {
	return scanCoOwner(r.db.QueryRow(ctx, selectCoOwnerByIDQuery, id))
}

func (r *coOwnerRepo) ListActive(ctx context.Context, landlordID uuid.UUID, forUpdate bool) ([]*models.CoOwner, error) {
	query := selectActiveCoOwnersQuery
	if forUpdate {
		query = selectActiveCoOwnersLockedQuery
	}
	rows, err := r.db.Query(ctx, query, landlordID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.CoOwner
	for rows.Next() {
		c, err := scanCoOwner(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *coOwnerRepo) UpdateShare(ctx context.Context, id uuid.UUID, share models.Share) error {
	tag, err := r.db.Exec(ctx, updateCoOwnerShareQuery, int64(share), id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *coOwnerRepo) Deactivate(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, deactivateCoOwnerQuery, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanCoOwner(row pgx.Row) (*models.CoOwner, error) {
	c := &models.CoOwner{}
	var share int64
	err := row.Scan(&c.ID, &c.LandlordID, &c.Name, &share, &c.RFC, &c.CURP, &c.IsActive, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	c.OwnershipShare = models.Share(share)
	return c, nil
}
