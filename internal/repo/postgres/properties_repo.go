package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nyumbani/visits-api/internal/domain"
)

// PropertyRepo resolves properties from the catalog owned by the listings
// service. The engine only reads.
type PropertyRepo interface {
	GetByID(ctx context.Context, id string) (*domain.Property, error)
}

type PropertyRepoImpl struct{ pool *pgxpool.Pool }

func NewPropertyRepo(pool *pgxpool.Pool) *PropertyRepoImpl { return &PropertyRepoImpl{pool: pool} }

func (r *PropertyRepoImpl) GetByID(ctx context.Context, id string) (*domain.Property, error) {
	const q = `SELECT id, owner_id, title, location, price, images FROM properties WHERE id=$1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var p domain.Property
	err := r.pool.QueryRow(ctx, q, id).Scan(&p.ID, &p.OwnerID, &p.Title, &p.Location, &p.Price, &p.Images)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, storageErr("get property", err)
	}
	return &p, nil
}

var _ PropertyRepo = (*PropertyRepoImpl)(nil)
