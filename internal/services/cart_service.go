package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/baharkarakas/storefront-backend/internal/apperr"
	"github.com/baharkarakas/storefront-backend/internal/metrics"
	"github.com/baharkarakas/storefront-backend/internal/models"
	repo "github.com/baharkarakas/storefront-backend/internal/repository"
)

// CartService applies cart mutations to a snapshot of the stored cart and
// commits them with a version check, retrying when another request won.
type CartService struct {
	users    repo.Users
	products repo.Products
	log      *slog.Logger
}

func NewCartService(users repo.Users, products repo.Products, log *slog.Logger) *CartService {
	return &CartService{users: users, products: products, log: log}
}

// Get returns the cart without zero quantities or deleted products.
func (s *CartService) Get(ctx context.Context, userID string) (models.Cart, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, u.Cart)
}

func (s *CartService) Add(ctx context.Context, userID, productID string) (models.Cart, error) {
	if err := s.requireProduct(ctx, productID); err != nil {
		return nil, err
	}
	return s.apply(ctx, userID, "add", func(c models.Cart) models.Cart { return c.Add(productID) })
}

// Remove decrements by one, stopping at zero. The zero entry stays in
// storage until a set, clear or prune removes it.
func (s *CartService) Remove(ctx context.Context, userID, productID string) (models.Cart, error) {
	if err := s.requireProduct(ctx, productID); err != nil {
		return nil, err
	}
	return s.apply(ctx, userID, "remove", func(c models.Cart) models.Cart { return c.Remove(productID) })
}

func (s *CartService) Set(ctx context.Context, userID, productID string, quantity int) (models.Cart, error) {
	if quantity < 0 {
		return nil, apperr.InvalidField("quantity", "quantity cannot be negative")
	}
	if err := s.requireProduct(ctx, productID); err != nil {
		return nil, err
	}
	return s.apply(ctx, userID, "set", func(c models.Cart) models.Cart { return c.Set(productID, quantity) })
}

func (s *CartService) Clear(ctx context.Context, userID string) error {
	_, err := s.apply(ctx, userID, "clear", models.Cart.Clear)
	return err
}

// Prune drops zero entries and references to deleted products from storage.
func (s *CartService) Prune(ctx context.Context, userID string) (models.Cart, error) {
	var cart models.Cart
	err := commit(ctx, "cart", func() error {
		u, err := s.users.GetByID(ctx, userID)
		if err != nil {
			return err
		}
		next, err := s.view(ctx, u.Cart)
		if err != nil {
			return err
		}
		if _, err := s.users.CompareAndSwapCart(ctx, userID, u.CartVersion, next); err != nil {
			return err
		}
		cart = next
		return nil
	})
	if err != nil {
		return nil, wrapCommit("prune cart", err)
	}
	metrics.CartOpsTotal.WithLabelValues("prune").Inc()
	return cart, nil
}

func (s *CartService) apply(ctx context.Context, userID, op string, fn models.CartOp) (models.Cart, error) {
	var committed models.Cart
	err := commit(ctx, "cart", func() error {
		u, err := s.users.GetByID(ctx, userID)
		if err != nil {
			return err
		}
		next := fn(u.Cart)
		if _, err := s.users.CompareAndSwapCart(ctx, userID, u.CartVersion, next); err != nil {
			return err
		}
		committed = next
		return nil
	})
	if err != nil {
		return nil, wrapCommit(op+" cart", err)
	}
	metrics.CartOpsTotal.WithLabelValues(op).Inc()
	s.log.Debug("cart updated", "user_id", userID, "op", op)
	return s.view(ctx, committed)
}

func (s *CartService) view(ctx context.Context, c models.Cart) (models.Cart, error) {
	existing, err := s.products.Existing(ctx, c.IDs())
	if err != nil {
		return nil, fmt.Errorf("check cart products: %w", err)
	}
	return c.View(func(id string) bool { return existing[id] }), nil
}

func (s *CartService) requireProduct(ctx context.Context, productID string) error {
	_, err := s.products.GetByID(ctx, productID)
	return err
}
