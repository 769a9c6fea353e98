package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/baharkarakas/storefront-backend/internal/apperr"
	"github.com/baharkarakas/storefront-backend/internal/models"
	"github.com/baharkarakas/storefront-backend/internal/repository"
)

const userColumns = `id::text, name, email, password_hash, role, cart, cart_version, created_at`

type usersRepo struct{ pool *pgxpool.Pool }

func NewUsers(pool *pgxpool.Pool) repository.Users {
	return &usersRepo{pool: pool}
}

func scanUser(row pgx.Row) (models.User, error) {
	var (
		u    models.User
		role string
		cart []byte
	)
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &role, &cart, &u.CartVersion, &u.CreatedAt); err != nil {
		return models.User{}, err
	}
	u.Role = models.Role(role)
	u.Cart = models.Cart{}
	if len(cart) > 0 {
		if err := json.Unmarshal(cart, &u.Cart); err != nil {
			return models.User{}, fmt.Errorf("decode cart: %w", err)
		}
	}
	return u, nil
}

func (r *usersRepo) Create(ctx context.Context, u models.User) (models.User, error) {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.Cart == nil {
		u.Cart = models.Cart{}
	}
	cart, err := json.Marshal(u.Cart)
	if err != nil {
		return models.User{}, err
	}
	row := r.pool.QueryRow(ctx,
		`INSERT INTO users(id, name, email, password_hash, role, cart)
		 VALUES($1,$2,$3,$4,$5,$6)
		 RETURNING `+userColumns,
		u.ID, u.Name, u.Email, u.PasswordHash, string(u.Role), cart,
	)
	out, err := scanUser(row)
	return out, mapErr(err, "user")
}

func (r *usersRepo) GetByID(ctx context.Context, id string) (models.User, error) {
	if !validID(id) {
		return models.User{}, apperr.NotFound("user")
	}
	u, err := scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id=$1`, id))
	return u, mapErr(err, "user")
}

func (r *usersRepo) GetByEmail(ctx context.Context, email string) (models.User, error) {
	u, err := scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email=$1`, email))
	return u, mapErr(err, "user")
}

func (r *usersRepo) UpdateProfile(ctx context.Context, id, name, email string) (models.User, error) {
	if !validID(id) {
		return models.User{}, apperr.NotFound("user")
	}
	u, err := scanUser(r.pool.QueryRow(ctx,
		`UPDATE users SET name=$2, email=$3 WHERE id=$1 RETURNING `+userColumns,
		id, name, email,
	))
	return u, mapErr(err, "user")
}

func (r *usersRepo) UpdatePassword(ctx context.Context, id, hash string) error {
	return r.execOne(ctx, `UPDATE users SET password_hash=$2 WHERE id=$1`, id, hash)
}

func (r *usersRepo) SetRole(ctx context.Context, id string, role models.Role) error {
	return r.execOne(ctx, `UPDATE users SET role=$2 WHERE id=$1`, id, string(role))
}

func (r *usersRepo) execOne(ctx context.Context, sql, id string, arg any) error {
	if !validID(id) {
		return apperr.NotFound("user")
	}
	tag, err := r.pool.Exec(ctx, sql, id, arg)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("user")
	}
	return nil
}

func (r *usersRepo) CountByRole(ctx context.Context, role models.Role) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT count(*) FROM users WHERE role=$1`, string(role)).Scan(&n)
	return n, err
}

func (r *usersRepo) CompareAndSwapCart(ctx context.Context, id string, version int64, cart models.Cart) (int64, error) {
	if !validID(id) {
		return 0, apperr.NotFound("user")
	}
	if cart == nil {
		cart = models.Cart{}
	}
	body, err := json.Marshal(cart)
	if err != nil {
		return 0, err
	}
	var next int64
	err = r.pool.QueryRow(ctx,
		`UPDATE users SET cart=$3, cart_version=cart_version+1
		 WHERE id=$1 AND cart_version=$2
		 RETURNING cart_version`,
		id, version, body,
	).Scan(&next)
	if err == nil {
		return next, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, err
	}
	return 0, conflictOrMissing(ctx, r.pool, `SELECT EXISTS(SELECT 1 FROM users WHERE id=$1)`, id, "user")
}

// conflictOrMissing distinguishes a lost version race from a deleted row
// after a guarded UPDATE matched nothing.
func conflictOrMissing(ctx context.Context, pool *pgxpool.Pool, sql, id, entity string) error {
	var exists bool
	if err := pool.QueryRow(ctx, sql, id).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return apperr.NotFound(entity)
	}
	return apperr.ErrConflict
}
