package memory

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baharkarakas/storefront-backend/internal/apperr"
	"github.com/baharkarakas/storefront-backend/internal/models"
)

func TestUsers_DuplicateEmail(t *testing.T) {
	ctx := context.Background()
	r := NewUsers()
	_, err := r.Create(ctx, models.User{Email: "a@b.co", Role: models.RoleUser})
	require.NoError(t, err)
	_, err = r.Create(ctx, models.User{Email: "a@b.co", Role: models.RoleUser})
	assert.ErrorIs(t, err, apperr.ErrDuplicateEmail)
}

func TestUsers_CompareAndSwapCart(t *testing.T) {
	ctx := context.Background()
	r := NewUsers()
	u, err := r.Create(ctx, models.User{Email: "a@b.co"})
	require.NoError(t, err)

	v, err := r.CompareAndSwapCart(ctx, u.ID, 0, models.Cart{"p": 1})
	require.NoError(t, err)
	assert.Equal(t, int64(1), v)

	_, err = r.CompareAndSwapCart(ctx, u.ID, 0, models.Cart{"p": 9})
	assert.ErrorIs(t, err, apperr.ErrConflict)

	got, err := r.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, models.Cart{"p": 1}, got.Cart)

	_, err = r.CompareAndSwapCart(ctx, "missing", 0, nil)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestUsers_ReturnedCartIsACopy(t *testing.T) {
	ctx := context.Background()
	r := NewUsers()
	u, err := r.Create(ctx, models.User{Email: "a@b.co", Cart: models.Cart{"p": 1}})
	require.NoError(t, err)
	u.Cart["p"] = 100

	got, err := r.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Cart["p"])
}

func TestProducts_ListNaturalOrderAndPaging(t *testing.T) {
	ctx := context.Background()
	r := NewProducts()
	for i := 0; i < 15; i++ {
		_, err := r.Create(ctx, models.Product{Name: fmt.Sprintf("item-%02d", i), Category: models.CategoryBooks})
		require.NoError(t, err)
	}

	page, total, err := r.List(ctx, models.ProductQuery{Page: 2, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 15, total)
	require.Len(t, page, 5)
	assert.Equal(t, "item-10", page[0].Name)

	page, total, err = r.List(ctx, models.ProductQuery{Page: 3, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 15, total)
	assert.Empty(t, page)
}

func TestProducts_ListSortTieBreakByID(t *testing.T) {
	ctx := context.Background()
	r := NewProducts()
	for _, id := range []string{"c", "a", "b"} {
		_, err := r.Create(ctx, models.Product{ID: id, Name: "same", Price: 1})
		require.NoError(t, err)
	}
	for _, desc := range []bool{false, true} {
		page, _, err := r.List(ctx, models.ProductQuery{Sort: models.SortPrice, Desc: desc, Page: 1, Limit: 10})
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b", "c"}, []string{page[0].ID, page[1].ID, page[2].ID})
	}
}

func TestProducts_ListNameSortIsByteOrder(t *testing.T) {
	ctx := context.Background()
	r := NewProducts()
	for _, name := range []string{"apple", "Zebra", "Éclair", "banana"} {
		_, err := r.Create(ctx, models.Product{Name: name})
		require.NoError(t, err)
	}
	page, _, err := r.List(ctx, models.ProductQuery{Sort: models.SortName, Page: 1, Limit: 10})
	require.NoError(t, err)
	names := make([]string, len(page))
	for i, p := range page {
		names[i] = p.Name
	}
	assert.Equal(t, []string{"Zebra", "apple", "banana", "Éclair"}, names)
}

func TestProducts_ListFilterAndSearch(t *testing.T) {
	ctx := context.Background()
	r := NewProducts()
	_, _ = r.Create(ctx, models.Product{Name: "Blue Shirt", Category: models.CategoryClothing})
	_, _ = r.Create(ctx, models.Product{Name: "Red shirt", Category: models.CategoryClothing})
	_, _ = r.Create(ctx, models.Product{Name: "Shirt Book", Category: models.CategoryBooks})

	page, total, err := r.List(ctx, models.ProductQuery{Category: models.CategoryClothing, Search: "SHIRT", Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Len(t, page, 2)
}

func TestProducts_CompareAndSwapRatings(t *testing.T) {
	ctx := context.Background()
	r := NewProducts()
	p, err := r.Create(ctx, models.Product{Name: "x"})
	require.NoError(t, err)

	ratings := []models.Rating{{UserID: "u", Rating: 4}}
	v, err := r.CompareAndSwapRatings(ctx, p.ID, 0, ratings, 4)
	require.NoError(t, err)
	assert.Equal(t, int64(1), v)

	_, err = r.CompareAndSwapRatings(ctx, p.ID, 0, nil, 0)
	assert.ErrorIs(t, err, apperr.ErrConflict)

	got, err := r.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 4.0, got.AverageRating)
	assert.Len(t, got.Ratings, 1)
}

func TestProducts_Stats(t *testing.T) {
	ctx := context.Background()
	r := NewProducts()
	_, _ = r.Create(ctx, models.Product{Stock: 5, Ratings: []models.Rating{{Rating: 4}}, AverageRating: 4})
	_, _ = r.Create(ctx, models.Product{Stock: 50, Ratings: []models.Rating{{Rating: 2}}, AverageRating: 2})
	_, _ = r.Create(ctx, models.Product{Stock: 10})

	st, err := r.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, st.TotalProducts)
	assert.Equal(t, 1, st.LowStockProducts)
	assert.Equal(t, 3.0, st.RatedAverage)
}
