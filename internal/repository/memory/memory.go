// Package memory is an in-process implementation of the repositories with
// the same conflict and not-found semantics as the Postgres store. It backs
// STORE_DRIVER=memory and the service tests.
package memory

import (
	"cmp"
	"context"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/baharkarakas/storefront-backend/internal/apperr"
	"github.com/baharkarakas/storefront-backend/internal/models"
	"github.com/baharkarakas/storefront-backend/internal/repository"
)

func NewStore() repository.Store {
	return repository.Store{
		Users:    NewUsers(),
		Products: NewProducts(),
		Close:    func() {},
	}
}

// ---------- users ----------

type Users struct {
	mu      sync.RWMutex
	byID    map[string]models.User
	byEmail map[string]string
}

var _ repository.Users = (*Users)(nil)

func NewUsers() *Users {
	return &Users{byID: map[string]models.User{}, byEmail: map[string]string{}}
}

func copyUser(u models.User) models.User {
	u.Cart = maps.Clone(u.Cart)
	if u.Cart == nil {
		u.Cart = models.Cart{}
	}
	return u
}

func (r *Users) Create(_ context.Context, u models.User) (models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byEmail[u.Email]; ok {
		return models.User{}, apperr.ErrDuplicateEmail
	}
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	u = copyUser(u)
	r.byID[u.ID] = u
	r.byEmail[u.Email] = u.ID
	return copyUser(u), nil
}

func (r *Users) GetByID(_ context.Context, id string) (models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.byID[id]
	if !ok {
		return models.User{}, apperr.NotFound("user")
	}
	return copyUser(u), nil
}

func (r *Users) GetByEmail(_ context.Context, email string) (models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byEmail[email]
	if !ok {
		return models.User{}, apperr.NotFound("user")
	}
	return copyUser(r.byID[id]), nil
}

func (r *Users) UpdateProfile(_ context.Context, id, name, email string) (models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return models.User{}, apperr.NotFound("user")
	}
	if owner, taken := r.byEmail[email]; taken && owner != id {
		return models.User{}, apperr.ErrDuplicateEmail
	}
	delete(r.byEmail, u.Email)
	u.Name, u.Email = name, email
	r.byID[id] = u
	r.byEmail[email] = id
	return copyUser(u), nil
}

func (r *Users) UpdatePassword(_ context.Context, id, hash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return apperr.NotFound("user")
	}
	u.PasswordHash = hash
	r.byID[id] = u
	return nil
}

func (r *Users) SetRole(_ context.Context, id string, role models.Role) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return apperr.NotFound("user")
	}
	u.Role = role
	r.byID[id] = u
	return nil
}

func (r *Users) CountByRole(_ context.Context, role models.Role) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, u := range r.byID {
		if u.Role == role {
			n++
		}
	}
	return n, nil
}

func (r *Users) CompareAndSwapCart(_ context.Context, id string, version int64, cart models.Cart) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return 0, apperr.NotFound("user")
	}
	if u.CartVersion != version {
		return 0, apperr.ErrConflict
	}
	u.Cart = maps.Clone(cart)
	u.CartVersion++
	r.byID[id] = u
	return u.CartVersion, nil
}

// ---------- products ----------

type productRow struct {
	seq int64
	p   models.Product
}

type Products struct {
	mu   sync.RWMutex
	rows map[string]productRow
	seq  int64
}

var _ repository.Products = (*Products)(nil)

func NewProducts() *Products {
	return &Products{rows: map[string]productRow{}}
}

func copyProduct(p models.Product) models.Product {
	p.Ratings = slices.Clone(p.Ratings)
	if p.Ratings == nil {
		p.Ratings = []models.Rating{}
	}
	return p
}

func (r *Products) Create(_ context.Context, p models.Product) (models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	p = copyProduct(p)
	r.seq++
	r.rows[p.ID] = productRow{seq: r.seq, p: p}
	return copyProduct(p), nil
}

func (r *Products) GetByID(_ context.Context, id string) (models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	row, ok := r.rows[id]
	if !ok {
		return models.Product{}, apperr.NotFound("product")
	}
	return copyProduct(row.p), nil
}

func (r *Products) Update(_ context.Context, p models.Product) (models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[p.ID]
	if !ok {
		return models.Product{}, apperr.NotFound("product")
	}
	cur := row.p
	cur.Name, cur.Slug, cur.Category = p.Name, p.Slug, p.Category
	cur.Price, cur.Description, cur.Image, cur.Stock = p.Price, p.Description, p.Image, p.Stock
	row.p = cur
	r.rows[p.ID] = row
	return copyProduct(cur), nil
}

func (r *Products) Delete(_ context.Context, id string) (models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[id]
	if !ok {
		return models.Product{}, apperr.NotFound("product")
	}
	delete(r.rows, id)
	return row.p, nil
}

func (r *Products) List(_ context.Context, q models.ProductQuery) ([]models.Product, int, error) {
	r.mu.RLock()
	matched := make([]productRow, 0, len(r.rows))
	needle := strings.ToLower(q.Search)
	for _, row := range r.rows {
		if q.Category != "" && row.p.Category != q.Category {
			continue
		}
		if needle != "" && !strings.Contains(strings.ToLower(row.p.Name), needle) {
			continue
		}
		matched = append(matched, productRow{seq: row.seq, p: copyProduct(row.p)})
	}
	r.mu.RUnlock()

	slices.SortFunc(matched, func(a, b productRow) int {
		if q.Sort == models.SortNone {
			return cmp.Compare(a.seq, b.seq)
		}
		c := compareBy(q.Sort, a.p, b.p)
		if q.Desc {
			c = -c
		}
		if c != 0 {
			return c
		}
		return cmp.Compare(a.p.ID, b.p.ID)
	})

	total := len(matched)
	start := min(q.Offset(), total)
	end := min(start+q.Limit, total)
	out := make([]models.Product, 0, end-start)
	for _, row := range matched[start:end] {
		out = append(out, row.p)
	}
	return out, total, nil
}

func compareBy(f models.SortField, a, b models.Product) int {
	switch f {
	case models.SortName:
		return cmp.Compare(a.Name, b.Name)
	case models.SortPrice:
		return cmp.Compare(a.Price, b.Price)
	case models.SortStock:
		return cmp.Compare(a.Stock, b.Stock)
	case models.SortCategory:
		return cmp.Compare(a.Category, b.Category)
	case models.SortAverageRating:
		return cmp.Compare(a.AverageRating, b.AverageRating)
	case models.SortDate:
		return a.CreatedAt.Compare(b.CreatedAt)
	}
	return 0
}

func (r *Products) Existing(_ context.Context, ids []string) (map[string]bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]bool, len(ids))
	for _, id := range ids {
		if _, ok := r.rows[id]; ok {
			out[id] = true
		}
	}
	return out, nil
}

func (r *Products) Stats(_ context.Context) (repository.CatalogStats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var st repository.CatalogStats
	var sum float64
	rated := 0
	for _, row := range r.rows {
		st.TotalProducts++
		if row.p.Stock < models.LowStockThreshold {
			st.LowStockProducts++
		}
		if len(row.p.Ratings) > 0 {
			rated++
			sum += row.p.AverageRating
		}
	}
	if rated > 0 {
		st.RatedAverage = sum / float64(rated)
	}
	return st, nil
}

func (r *Products) CompareAndSwapRatings(_ context.Context, id string, version int64, ratings []models.Rating, avg float64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[id]
	if !ok {
		return 0, apperr.NotFound("product")
	}
	if row.p.Version != version {
		return 0, apperr.ErrConflict
	}
	row.p.Ratings = slices.Clone(ratings)
	row.p.AverageRating = avg
	row.p.Version++
	r.rows[id] = row
	return row.p.Version, nil
}
