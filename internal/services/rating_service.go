package services

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/baharkarakas/storefront-backend/internal/apperr"
	"github.com/baharkarakas/storefront-backend/internal/metrics"
	"github.com/baharkarakas/storefront-backend/internal/models"
	repo "github.com/baharkarakas/storefront-backend/internal/repository"
)

const (
	MinRating = 1
	MaxRating = 5
)

type RatingService struct {
	products repo.Products
	now      func() time.Time
	log      *slog.Logger
}

func NewRatingService(products repo.Products, log *slog.Logger) *RatingService {
	return &RatingService{products: products, now: time.Now, log: log}
}

// Rate records userID's rating, replacing any earlier one, and returns the
// product with its recomputed average.
func (s *RatingService) Rate(ctx context.Context, productID, userID string, rating int, review string) (models.Product, error) {
	if rating < MinRating || rating > MaxRating {
		return models.Product{}, apperr.InvalidField("rating", "rating must be between 1 and 5")
	}
	review = strings.TrimSpace(review)

	var out models.Product
	err := commit(ctx, "product", func() error {
		p, err := s.products.GetByID(ctx, productID)
		if err != nil {
			return err
		}
		next := p.WithRating(userID, rating, review, s.now().UTC())
		v, err := s.products.CompareAndSwapRatings(ctx, p.ID, p.Version, next.Ratings, next.AverageRating)
		if err != nil {
			return err
		}
		next.Version = v
		out = next
		return nil
	})
	if err != nil {
		return models.Product{}, wrapCommit("rate product", err)
	}
	metrics.RatingsTotal.Inc()
	s.log.Info("product rated", "product_id", productID, "user_id", userID, "rating", rating)
	return out, nil
}
