package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nyumbani/visits-api/internal/domain"
)

type VisitRepo interface {
	Create(ctx context.Context, draft *domain.VisitDraft) (*domain.Visit, error)
	GetByID(ctx context.Context, id string) (*domain.Visit, error)
	UpdateStatus(ctx context.Context, id string, status domain.VisitStatus) (*domain.Visit, error)
	Delete(ctx context.Context, id string) (bool, error)
	ListByOwner(ctx context.Context, ownerID string) ([]domain.Visit, error)
	ListByRequester(ctx context.Context, requesterID string) ([]domain.Visit, error)
}

type VisitRepoImpl struct{ pool *pgxpool.Pool }

func NewVisitRepo(pool *pgxpool.Pool) *VisitRepoImpl { return &VisitRepoImpl{pool: pool} }

const visitCols = `id, property_id, owner_id, requester_id, status,
scheduled_date, scheduled_time, check_out_date,
message, visitor_name, visitor_email,
created_at, updated_at`

func (r *VisitRepoImpl) Create(ctx context.Context, draft *domain.VisitDraft) (*domain.Visit, error) {
	const q = `INSERT INTO visits (
    id, property_id, owner_id, requester_id, status,
    scheduled_date, scheduled_time, check_out_date,
    message, visitor_name, visitor_email
  ) VALUES ($1,$2,$3,$4,'scheduled',$5,$6,$7,$8,$9,$10)
  RETURNING ` + visitCols

	id := uuid.NewString()
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var v domain.Visit
	err := r.pool.QueryRow(ctx, q, id,
		draft.PropertyID, draft.OwnerID, draft.RequesterID,
		draft.ScheduledDate, draft.ScheduledTime, draft.CheckOutDate,
		draft.Message, draft.VisitorName, draft.VisitorEmail,
	).Scan(scanDest(&v)...)
	if err != nil {
		return nil, storageErr("create visit", err)
	}
	return &v, nil
}

func (r *VisitRepoImpl) GetByID(ctx context.Context, id string) (*domain.Visit, error) {
	const q = `SELECT ` + visitCols + ` FROM visits WHERE id=$1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var v domain.Visit
	err := r.pool.QueryRow(ctx, q, id).Scan(scanDest(&v)...)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, storageErr("get visit", err)
	}
	return &v, nil
}

// UpdateStatus persists the new status and bumps updated_at. The legality of
// the edge is checked by the service before this call; concurrent updates on
// the same record are last-write-wins at the storage layer.
func (r *VisitRepoImpl) UpdateStatus(ctx context.Context, id string, status domain.VisitStatus) (*domain.Visit, error) {
	const q = `UPDATE visits SET status=$2, updated_at=now() WHERE id=$1 RETURNING ` + visitCols
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var v domain.Visit
	err := r.pool.QueryRow(ctx, q, id, status).Scan(scanDest(&v)...)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, storageErr("update visit status", err)
	}
	return &v, nil
}

func (r *VisitRepoImpl) Delete(ctx context.Context, id string) (bool, error) {
	const q = `DELETE FROM visits WHERE id=$1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	ct, err := r.pool.Exec(ctx, q, id)
	if err != nil {
		return false, storageErr("delete visit", err)
	}
	return ct.RowsAffected() > 0, nil
}

func (r *VisitRepoImpl) ListByOwner(ctx context.Context, ownerID string) ([]domain.Visit, error) {
	const q = `SELECT ` + visitCols + ` FROM visits
  WHERE owner_id=$1
  ORDER BY scheduled_date ASC, scheduled_time ASC`
	return r.list(ctx, q, ownerID)
}

func (r *VisitRepoImpl) ListByRequester(ctx context.Context, requesterID string) ([]domain.Visit, error) {
	const q = `SELECT ` + visitCols + ` FROM visits
  WHERE requester_id=$1
  ORDER BY scheduled_date ASC, scheduled_time ASC`
	return r.list(ctx, q, requesterID)
}

func (r *VisitRepoImpl) list(ctx context.Context, q string, arg any) ([]domain.Visit, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, q, arg)
	if err != nil {
		return nil, storageErr("list visits", err)
	}
	defer rows.Close()

	vs := make([]domain.Visit, 0, 16)
	for rows.Next() {
		var v domain.Visit
		if err := rows.Scan(scanDest(&v)...); err != nil {
			return nil, storageErr("scan visit", err)
		}
		vs = append(vs, v)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("list visits", err)
	}
	return vs, nil
}

func scanDest(v *domain.Visit) []any {
	return []any{
		&v.ID, &v.PropertyID, &v.OwnerID, &v.RequesterID, &v.Status,
		&v.ScheduledDate, &v.ScheduledTime, &v.CheckOutDate,
		&v.Message, &v.VisitorName, &v.VisitorEmail,
		&v.CreatedAt, &v.UpdatedAt,
	}
}

// storageErr folds postgres failures into the engine's taxonomy. A row-level
// security denial (SQLSTATE 42501) on an insert is the store's anonymous-write
// policy speaking; everything else is a transport failure.
func storageErr(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "42501" {
		return fmt.Errorf("%s: %w", op, domain.ErrPolicyBlocked)
	}
	return fmt.Errorf("%s: %w: %w", op, domain.ErrTransport, err)
}

var _ VisitRepo = (*VisitRepoImpl)(nil)
