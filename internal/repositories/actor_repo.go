package repositories

import (
	"context"
	"fmt"
	"time"

	"rentpolicy/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type ActorRepository interface {
	Create(ctx context.Context, actor *models.Actor) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Actor, error)
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Actor, error)
	GetByToken(ctx context.Context, token string) (*models.Actor, error)
	UpdateProfile(ctx context.Context, actor *models.Actor) error
	UpdateReview(ctx context.Context, actor *models.Actor) error
	Delete(ctx context.Context, id uuid.UUID) error

	// Landlord rows of a policy, oldest first. forUpdate takes the policy
	// lock before locking every row, so inserts into the policy serialize too.
	ListLandlords(ctx context.Context, policyID uuid.UUID, forUpdate bool) ([]*models.Actor, error)
	CountLandlords(ctx context.Context, policyID uuid.UUID) (int, error)
	// SetPrimary flips is_primary for every landlord of the policy in one
	// statement and returns the number of rows left primary.
	SetPrimary(ctx context.Context, policyID, landlordID uuid.UUID) (int64, error)
	UpdateOwnershipShare(ctx context.Context, id uuid.UUID, share models.Share) error

	SetToken(ctx context.Context, id uuid.UUID, token string, expiry time.Time) error
	ExtendToken(ctx context.Context, id uuid.UUID, token string, readExpiry *time.Time, expiry time.Time) (bool, error)
	ClearToken(ctx context.Context, id uuid.UUID) error
	TouchAccess(ctx context.Context, id uuid.UUID, at time.Time) error
	ClearExpiredTokens(ctx context.Context, now time.Time) (int64, error)

	HasAddress(ctx context.Context, id uuid.UUID) (bool, error)
}

const actorColumns = `id, policy_id, kind, full_name, email, phone, address_id, is_primary, ownership_bps,
		verification_status, information_complete, access_token, token_expiry, last_access_at,
		reviewed_by, reviewed_at, review_notes, details, created_at, updated_at`

const (
	insertActorQuery = `
		INSERT INTO actors (id, policy_id, kind, full_name, email, phone, address_id, is_primary, ownership_bps,
			verification_status, information_complete, details, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NOW(), NOW())
		RETURNING created_at, updated_at
	`
	selectActorByIDQuery          = `SELECT ` + actorColumns + ` FROM actors WHERE id = $1`
	selectActorByIDForUpdateQuery = `SELECT ` + actorColumns + ` FROM actors WHERE id = $1 FOR UPDATE`
	selectActorByTokenQuery       = `SELECT ` + actorColumns + ` FROM actors WHERE access_token = $1`
	selectLandlordsQuery          = `SELECT ` + actorColumns + ` FROM actors WHERE policy_id = $1 AND kind = 'landlord' ORDER BY created_at, id`
	selectLandlordsForUpdateQuery = selectLandlordsQuery + ` FOR UPDATE`
	lockPolicyQuery               = `SELECT pg_advisory_xact_lock(hashtextextended($1::text, 0))`
	countLandlordsQuery           = `SELECT COUNT(*) FROM actors WHERE policy_id = $1 AND kind = 'landlord'`
	updateProfileQuery            = `
		UPDATE actors
		SET full_name = $1, email = $2, phone = $3, address_id = $4, details = $5, updated_at = NOW()
		WHERE id = $6
	`
	updateReviewQuery = `
		UPDATE actors
		SET verification_status = $1, information_complete = $2, reviewed_by = $3, reviewed_at = $4,
			review_notes = $5, updated_at = NOW()
		WHERE id = $6
	`
	deleteActorQuery = `DELETE FROM actors WHERE id = $1`
	setPrimaryQuery  = `
		UPDATE actors
		SET is_primary = (id = $2), updated_at = NOW()
		WHERE policy_id = $1 AND kind = 'landlord'
		RETURNING is_primary
	`
	updateOwnershipQuery = `UPDATE actors SET ownership_bps = $1, updated_at = NOW() WHERE id = $2`
	setTokenQuery        = `UPDATE actors SET access_token = $1, token_expiry = $2, updated_at = NOW() WHERE id = $3`
	extendTokenQuery     = `
		UPDATE actors SET token_expiry = $1, updated_at = NOW()
		WHERE id = $2 AND access_token = $3 AND token_expiry IS NOT DISTINCT FROM $4
	`
	clearTokenQuery      = `UPDATE actors SET access_token = NULL, token_expiry = NULL, updated_at = NOW() WHERE id = $1`
	touchAccessQuery     = `UPDATE actors SET last_access_at = $1 WHERE id = $2`
	clearExpiredQuery    = `
		UPDATE actors SET access_token = NULL, token_expiry = NULL, updated_at = NOW()
		WHERE access_token IS NOT NULL AND token_expiry <= $1
	`
	hasAddressQuery = `SELECT address_id IS NOT NULL FROM actors WHERE id = $1`
)

type actorRepo struct {
	db DB
}

func NewActorRepository(db DB) ActorRepository {
	return &actorRepo{db: db}
}

func (r *actorRepo) Create(ctx context.Context, actor *models.Actor) error {
	if actor.ID == uuid.Nil {
		actor.ID = uuid.New()
	}
	details, err := actor.DetailsJSON()
	if err != nil {
		return fmt.Errorf("failed to marshal details: %w", err)
	}

	return r.db.QueryRow(ctx, insertActorQuery,
		actor.ID,
		actor.PolicyID,
		string(actor.Kind),
		actor.FullName,
		actor.Email,
		actor.Phone,
		actor.AddressID,
		actor.IsPrimary,
		int64(actor.OwnershipShare),
		string(actor.VerificationStatus),
		actor.InformationComplete,
		details,
	).Scan(&actor.CreatedAt, &actor.UpdatedAt)
}

func (r *actorRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Actor, error) {
	return scanActor(r.db.QueryRow(ctx, selectActorByIDQuery, id))
}

func (r *actorRepo) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Actor, error) {
	return scanActor(r.db.QueryRow(ctx, selectActorByIDForUpdateQuery, id))
}

func (r *actorRepo) GetByToken(ctx context.Context, token string) (*models.Actor, error) {
	return scanActor(r.db.QueryRow(ctx, selectActorByTokenQuery, token))
}

func (r *actorRepo) UpdateProfile(ctx context.Context, actor *models.Actor) error {
	details, err := actor.DetailsJSON()
	if err != nil {
		return fmt.Errorf("failed to marshal details: %w", err)
	}
	tag, err := r.db.Exec(ctx, updateProfileQuery,
		actor.FullName, actor.Email, actor.Phone, actor.AddressID, details, actor.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *actorRepo) UpdateReview(ctx context.Context, actor *models.Actor) error {
	tag, err := r.db.Exec(ctx, updateReviewQuery,
		string(actor.VerificationStatus),
		actor.InformationComplete,
		actor.ReviewedBy,
		actor.ReviewedAt,
		actor.ReviewNotes,
		actor.ID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *actorRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, deleteActorQuery, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *actorRepo) ListLandlords(ctx context.Context, policyID uuid.UUID, forUpdate bool) ([]*models.Actor, error) {
	query := selectLandlordsQuery
	if forUpdate {
		if err := r.lockPolicy(ctx, policyID); err != nil {
			return nil, err
		}
		query = selectLandlordsForUpdateQuery
	}
	rows, err := r.db.Query(ctx, query, policyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var landlords []*models.Actor
	for rows.Next() {
		a, err := scanActor(rows)
		if err != nil {
			return nil, err
		}
		landlords = append(landlords, a)
	}
	return landlords, rows.Err()
}

// lockPolicy holds a transaction-scoped advisory lock keyed by the policy.
// Row locks alone miss landlords inserted concurrently.
func (r *actorRepo) lockPolicy(ctx context.Context, policyID uuid.UUID) error {
	if _, err := r.db.Exec(ctx, lockPolicyQuery, policyID); err != nil {
		return fmt.Errorf("lock policy %s: %w", policyID, err)
	}
	return nil
}

func (r *actorRepo) CountLandlords(ctx context.Context, policyID uuid.UUID) (int, error) {
	var n int64
	if err := r.db.QueryRow(ctx, countLandlordsQuery, policyID).Scan(&n); err != nil {
		return 0, err
	}
	return int(n), nil
}

func (r *actorRepo) SetPrimary(ctx context.Context, policyID, landlordID uuid.UUID) (int64, error) {
	rows, err := r.db.Query(ctx, setPrimaryQuery, policyID, landlordID)
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	var primaries int64
	for rows.Next() {
		var isPrimary bool
		if err := rows.Scan(&isPrimary); err != nil {
			return 0, err
		}
		if isPrimary {
			primaries++
		}
	}
	return primaries, rows.Err()
}

func (r *actorRepo) UpdateOwnershipShare(ctx context.Context, id uuid.UUID, share models.Share) error {
	tag, err := r.db.Exec(ctx, updateOwnershipQuery, int64(share), id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *actorRepo) SetToken(ctx context.Context, id uuid.UUID, token string, expiry time.Time) error {
	tag, err := r.db.Exec(ctx, setTokenQuery, token, expiry, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ExtendToken moves the expiry only while token and readExpiry are still
// the stored values.
func (r *actorRepo) ExtendToken(ctx context.Context, id uuid.UUID, token string, readExpiry *time.Time, expiry time.Time) (bool, error) {
	tag, err := r.db.Exec(ctx, extendTokenQuery, expiry, id, token, readExpiry)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *actorRepo) ClearToken(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, clearTokenQuery, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *actorRepo) TouchAccess(ctx context.Context, id uuid.UUID, at time.Time) error {
	_, err := r.db.Exec(ctx, touchAccessQuery, at, id)
	return err
}

func (r *actorRepo) ClearExpiredTokens(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, clearExpiredQuery, now)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *actorRepo) HasAddress(ctx context.Context, id uuid.UUID) (bool, error) {
	var ok bool
	if err := r.db.QueryRow(ctx, hasAddressQuery, id).Scan(&ok); err != nil {
		return false, notFound(err)
	}
	return ok, nil
}

func scanActor(row pgx.Row) (*models.Actor, error) {
	a := &models.Actor{}
	var (
		kind, status string
		share        int64
		details      []byte
	)
	err := row.Scan(
		&a.ID,
		&a.PolicyID,
		&kind,
		&a.FullName,
		&a.Email,
		&a.Phone,
		&a.AddressID,
		&a.IsPrimary,
		&share,
		&status,
		&a.InformationComplete,
		&a.AccessToken,
		&a.TokenExpiry,
		&a.LastAccessAt,
		&a.ReviewedBy,
		&a.ReviewedAt,
		&a.ReviewNotes,
		&details,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		return nil, notFound(err)
	}
	a.Kind = models.ActorKind(kind)
	a.VerificationStatus = models.VerificationStatus(status)
	a.OwnershipShare = models.Share(share)
	if err := a.SetDetailsJSON(details); err != nil {
		return nil, fmt.Errorf("failed to unmarshal details: %w", err)
	}
	return a, nil
}
