package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nyumbani/visits-api/internal/domain"
)

// UserRepo resolves requester accounts to their contact details for
// notification building.
type UserRepo interface {
	FindByID(ctx context.Context, id string) (*domain.User, error)
}

type UserRepoImpl struct{ pool *pgxpool.Pool }

func NewUserRepo(pool *pgxpool.Pool) *UserRepoImpl { return &UserRepoImpl{pool: pool} }

func (r *UserRepoImpl) FindByID(ctx context.Context, id string) (*domain.User, error) {
	const q = `SELECT id, name, email, phone FROM users WHERE id=$1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var u domain.User
	err := r.pool.QueryRow(ctx, q, id).Scan(&u.ID, &u.Name, &u.Email, &u.Phone)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, storageErr("find user", err)
	}
	return &u, nil
}

var _ UserRepo = (*UserRepoImpl)(nil)
