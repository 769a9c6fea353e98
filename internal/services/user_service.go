package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/baharkarakas/storefront-backend/internal/apperr"
	"github.com/baharkarakas/storefront-backend/internal/auth"
	"github.com/baharkarakas/storefront-backend/internal/models"
	repo "github.com/baharkarakas/storefront-backend/internal/repository"
	"github.com/baharkarakas/storefront-backend/internal/validate"
)

type UserService struct {
	users  repo.Users
	tokens *auth.TokenManager
	cost   int
	// dummy is hashed at cost so unknown-email logins match real ones.
	dummy string
	log   *slog.Logger
}

func NewUserService(users repo.Users, tokens *auth.TokenManager, bcryptCost int, log *slog.Logger) *UserService {
	dummy, err := auth.DummyHash(bcryptCost)
	if err != nil {
		log.Error("dummy password hash", "err", err)
	}
	return &UserService{users: users, tokens: tokens, cost: bcryptCost, dummy: dummy, log: log}
}

// Session is what signup and login hand back to the client.
type Session struct {
	Token string
	User  models.User
}

func (s *UserService) Register(ctx context.Context, name, email, password string) (Session, error) {
	u, err := s.register(ctx, name, email, password, models.RoleUser)
	if err != nil {
		return Session{}, err
	}
	s.log.Info("user registered", "user_id", u.ID)
	return s.session(u)
}

func (s *UserService) register(ctx context.Context, name, email, password string, role models.Role) (models.User, error) {
	name = strings.TrimSpace(name)
	email = models.NormalizeEmail(email)

	errs := models.ValidateProfile(name, email)
	if ef := models.ValidatePassword("password", password); ef != nil {
		errs = append(errs, *ef)
	}
	if err := apperr.Invalid(errs); err != nil {
		return models.User{}, err
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return models.User{}, apperr.ErrDuplicateEmail
	} else if !errors.Is(err, apperr.ErrNotFound) {
		return models.User{}, fmt.Errorf("lookup email: %w", err)
	}

	hash, err := auth.HashPassword(password, s.cost)
	if err != nil {
		return models.User{}, err
	}
	u, err := s.users.Create(ctx, models.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		Cart:         models.Cart{},
	})
	if err != nil {
		if errors.Is(err, apperr.ErrDuplicateEmail) {
			return models.User{}, err
		}
		return models.User{}, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

// Login answers unknown email and wrong password with the same error after
// the same amount of bcrypt work.
func (s *UserService) Login(ctx context.Context, email, password string) (Session, error) {
	email = models.NormalizeEmail(email)
	if email == "" || password == "" {
		return Session{}, apperr.ErrInvalidCredentials
	}
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, apperr.ErrNotFound) {
			return Session{}, fmt.Errorf("lookup email: %w", err)
		}
		_ = auth.BurnCompare(password, s.dummy)
		return Session{}, apperr.ErrInvalidCredentials
	}
	if err := auth.VerifyPassword(password, u.PasswordHash); err != nil {
		return Session{}, apperr.ErrInvalidCredentials
	}
	return s.session(u)
}

func (s *UserService) session(u models.User) (Session, error) {
	tok, _, err := s.tokens.Issue(u.ID)
	if err != nil {
		return Session{}, fmt.Errorf("issue token: %w", err)
	}
	return Session{Token: tok, User: u}, nil
}

// Authenticate resolves a bearer token to a stored user. Every failure is
// an auth error.
func (s *UserService) Authenticate(ctx context.Context, token string) (models.User, error) {
	if token == "" {
		return models.User{}, apperr.ErrUnauthenticated
	}
	uid, err := s.tokens.Resolve(token)
	if err != nil {
		return models.User{}, err
	}
	u, err := s.users.GetByID(ctx, uid)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return models.User{}, apperr.ErrUnauthenticated
		}
		return models.User{}, fmt.Errorf("load user: %w", err)
	}
	return u, nil
}

func (s *UserService) Profile(ctx context.Context, id string) (models.User, error) {
	return s.users.GetByID(ctx, id)
}

// UpdateProfile changes name and/or email; empty values keep the current one.
func (s *UserService) UpdateProfile(ctx context.Context, id, name, email string) (models.User, error) {
	cur, err := s.users.GetByID(ctx, id)
	if err != nil {
		return models.User{}, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = cur.Name
	}
	email = models.NormalizeEmail(email)
	if email == "" {
		email = cur.Email
	}
	if err := apperr.Invalid(models.ValidateProfile(name, email)); err != nil {
		return models.User{}, err
	}
	if email != cur.Email {
		if _, err := s.users.GetByEmail(ctx, email); err == nil {
			return models.User{}, apperr.ErrDuplicateEmail
		} else if !errors.Is(err, apperr.ErrNotFound) {
			return models.User{}, fmt.Errorf("lookup email: %w", err)
		}
	}
	return s.users.UpdateProfile(ctx, id, name, email)
}

func (s *UserService) ChangePassword(ctx context.Context, id, current, next string) error {
	if err := apperr.Invalid(validate.Collect(
		validate.Required("currentPassword", current),
		models.ValidatePassword("newPassword", next),
	)); err != nil {
		return err
	}
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := auth.VerifyPassword(current, u.PasswordHash); err != nil {
		return apperr.InvalidField("currentPassword", "current password is incorrect")
	}
	hash, err := auth.HashPassword(next, s.cost)
	if err != nil {
		return err
	}
	if err := s.users.UpdatePassword(ctx, id, hash); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	s.log.Info("password changed", "user_id", id)
	return nil
}

// CreateAdmin registers an administrator, or promotes the account that
// already owns email.
func (s *UserService) CreateAdmin(ctx context.Context, name, email, password string) (models.User, error) {
	u, err := s.register(ctx, name, email, password, models.RoleAdmin)
	if err == nil {
		s.log.Info("admin created", "user_id", u.ID)
		return u, nil
	}
	if !errors.Is(err, apperr.ErrDuplicateEmail) {
		return models.User{}, err
	}
	existing, err := s.users.GetByEmail(ctx, models.NormalizeEmail(email))
	if err != nil {
		return models.User{}, err
	}
	if err := s.users.SetRole(ctx, existing.ID, models.RoleAdmin); err != nil {
		return models.User{}, fmt.Errorf("promote user: %w", err)
	}
	existing.Role = models.RoleAdmin
	s.log.Info("user promoted to admin", "user_id", existing.ID)
	return existing, nil
}
