package repository

import (
	"context"

	"github.com/baharkarakas/storefront-backend/internal/models"
)

// Users persists accounts and their carts. Missing rows are reported as
// apperr.ErrNotFound; unique email violations as apperr.ErrDuplicateEmail.
type Users interface {
	Create(ctx context.Context, u models.User) (models.User, error)
	GetByID(ctx context.Context, id string) (models.User, error)
	GetByEmail(ctx context.Context, email string) (models.User, error)
	UpdateProfile(ctx context.Context, id, name, email string) (models.User, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	SetRole(ctx context.Context, id string, role models.Role) error
	CountByRole(ctx context.Context, role models.Role) (int, error)

	// CompareAndSwapCart stores cart only if the user's cart version still
	// equals version. It returns the new version, or apperr.ErrConflict.
	CompareAndSwapCart(ctx context.Context, id string, version int64, cart models.Cart) (int64, error)
}

// Products persists the catalog.
type Products interface {
	Create(ctx context.Context, p models.Product) (models.Product, error)
	GetByID(ctx context.Context, id string) (models.Product, error)
	// Update writes catalog fields only; ratings are untouched.
	Update(ctx context.Context, p models.Product) (models.Product, error)
	// Delete returns the removed product.
	Delete(ctx context.Context, id string) (models.Product, error)
	List(ctx context.Context, q models.ProductQuery) ([]models.Product, int, error)
	// Existing reports which of ids refer to stored products.
	Existing(ctx context.Context, ids []string) (map[string]bool, error)
	Stats(ctx context.Context) (CatalogStats, error)

	// CompareAndSwapRatings stores ratings and their average only if the
	// product version still equals version.
	CompareAndSwapRatings(ctx context.Context, id string, version int64, ratings []models.Rating, avg float64) (int64, error)
}

type CatalogStats struct {
	TotalProducts    int
	LowStockProducts int
	// RatedAverage is the mean of AverageRating over products with ratings.
	RatedAverage float64
}

// Store bundles the repositories and owns their lifecycle.
type Store struct {
	Users    Users
	Products Products
	Close    func()
}
