package services

import (
	"context"
	"fmt"
	"math"

	"github.com/baharkarakas/storefront-backend/internal/models"
	repo "github.com/baharkarakas/storefront-backend/internal/repository"
)

type StatsService struct {
	users    repo.Users
	products repo.Products
}

func NewStatsService(users repo.Users, products repo.Products) *StatsService {
	return &StatsService{users: users, products: products}
}

// Stats summarizes the shop for the admin dashboard. The rating average is
// rounded to two decimals for display.
func (s *StatsService) Stats(ctx context.Context) (models.Stats, error) {
	users, err := s.users.CountByRole(ctx, models.RoleUser)
	if err != nil {
		return models.Stats{}, fmt.Errorf("count users: %w", err)
	}
	cs, err := s.products.Stats(ctx)
	if err != nil {
		return models.Stats{}, fmt.Errorf("catalog stats: %w", err)
	}
	return models.Stats{
		TotalUsers:       users,
		TotalProducts:    cs.TotalProducts,
		LowStockProducts: cs.LowStockProducts,
		AverageRating:    math.Round(cs.RatedAverage*100) / 100,
	}, nil
}
