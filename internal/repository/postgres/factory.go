package postgres

import (
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/baharkarakas/storefront-backend/internal/repository"
)

// NewStore wires the Postgres repositories over pool. Close releases the pool.
func NewStore(pool *pgxpool.Pool) repository.Store {
	return repository.Store{
		Users:    NewUsers(pool),
		Products: NewProducts(pool),
		Close:    pool.Close,
	}
}
