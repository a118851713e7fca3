package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrNotFound is returned when a row addressed by id does not exist.
var ErrNotFound = errors.New("record not found")

// DB is satisfied by *pgxpool.Pool, pgx.Tx and pgxmock pools, so the same
// repositories run inside or outside a transaction.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Store groups the repositories that own actor state. RunInTx hands fn a
// Store bound to a single transaction; fn's error rolls everything back.
type Store interface {
	Actors() ActorRepository
	CoOwners() CoOwnerRepository
	ActivityLogs() ActivityLogRepository
	RunInTx(ctx context.Context, fn func(Store) error) error
}

type pgStore struct {
	db       DB
	actors   ActorRepository
	coOwners CoOwnerRepository
	logs     ActivityLogRepository
}

func NewStore(db DB) Store {
	return &pgStore{
		db:       db,
		actors:   NewActorRepository(db),
		coOwners: NewCoOwnerRepository(db),
		logs:     NewActivityLogRepository(db),
	}
}

func (s *pgStore) Actors() ActorRepository             { return s.actors }
func (s *pgStore) CoOwners() CoOwnerRepository         { return s.coOwners }
func (s *pgStore) ActivityLogs() ActivityLogRepository { return s.logs }

func (s *pgStore) RunInTx(ctx context.Context, fn func(Store) error) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	if err := fn(NewStore(tx)); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			return errors.Join(err, fmt.Errorf("rollback: %w", rbErr))
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func notFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}
