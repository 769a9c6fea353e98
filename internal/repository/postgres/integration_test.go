//go:build integration

package postgres_test

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/baharkarakas/storefront-backend/internal/apperr"
	"github.com/baharkarakas/storefront-backend/internal/db"
	"github.com/baharkarakas/storefront-backend/internal/models"
	"github.com/baharkarakas/storefront-backend/internal/repository"
	repo "github.com/baharkarakas/storefront-backend/internal/repository/postgres"
)

var dsn string

func TestMain(m *testing.M) {
	ctx := context.Background()
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: tc.ContainerRequest{
			Image:        "postgres:15-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "postgres",
				"POSTGRES_PASSWORD": "password",
				"POSTGRES_DB":       "storefront_test",
			},
			WaitingFor: wait.ForListeningPort("5432/tcp").WithStartupTimeout(2 * time.Minute),
		},
		Started: true,
	})
	if err != nil {
		panic(err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		panic(err)
	}
	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		panic(err)
	}
	dsn = fmt.Sprintf("postgres://postgres:password@%s:%s/storefront_test?sslmode=disable", host, port.Port())

	code := m.Run()
	_ = container.Terminate(ctx)
	os.Exit(code)
}

func newStore(t *testing.T) repository.Store {
	t.Helper()
	ctx := context.Background()
	p, err := db.NewPool(ctx, dsn)
	require.NoError(t, err)
	require.NoError(t, db.RunMigrations(ctx, p))
	_, err = p.Exec(ctx, `TRUNCATE users, products`)
	require.NoError(t, err)
	t.Cleanup(p.Close)
	return repo.NewStore(p)
}

func TestUsers(t *testing.T) {
	ctx := context.Background()
	st := newStore(t)

	u, err := st.Users.Create(ctx, models.User{Name: "Ada", Email: "ada@example.com", PasswordHash: "h", Role: models.RoleUser})
	require.NoError(t, err)
	assert.NotEmpty(t, u.ID)
	assert.Empty(t, u.Cart)

	_, err = st.Users.Create(ctx, models.User{Name: "Ada", Email: "ada@example.com", PasswordHash: "h", Role: models.RoleUser})
	assert.ErrorIs(t, err, apperr.ErrDuplicateEmail)

	byEmail, err := st.Users.GetByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byEmail.ID)

	_, err = st.Users.GetByID(ctx, "nope")
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	v, err := st.Users.CompareAndSwapCart(ctx, u.ID, 0, models.Cart{"p": 2})
	require.NoError(t, err)
	assert.Equal(t, int64(1), v)
	_, err = st.Users.CompareAndSwapCart(ctx, u.ID, 0, models.Cart{})
	assert.ErrorIs(t, err, apperr.ErrConflict)

	got, err := st.Users.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, models.Cart{"p": 2}, got.Cart)

	require.NoError(t, st.Users.SetRole(ctx, u.ID, models.RoleAdmin))
	n, err := st.Users.CountByRole(ctx, models.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestProducts_ListAndRatings(t *testing.T) {
	ctx := context.Background()
	st := newStore(t)

	var ids []string
	for i := 0; i < 15; i++ {
		p, err := st.Products.Create(ctx, models.Product{
			Name: fmt.Sprintf("Item %02d", i), Slug: "item", Category: models.CategoryBooks,
			Price: float64(i), Description: "long enough text", Image: "/images/x.png", Stock: i,
		})
		require.NoError(t, err)
		ids = append(ids, p.ID)
	}

	page, total, err := st.Products.List(ctx, models.ProductQuery{Sort: models.SortPrice, Desc: true, Page: 2, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 15, total)
	require.Len(t, page, 5)
	assert.Equal(t, 4.0, page[0].Price)

	page, total, err = st.Products.List(ctx, models.ProductQuery{Search: "item 1", Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	assert.Len(t, page, 5)

	existing, err := st.Products.Existing(ctx, []string{ids[0], "bogus"})
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{ids[0]: true}, existing)

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func(user string) {
			defer wg.Done()
			for {
				p, err := st.Products.GetByID(ctx, ids[0])
				if err != nil {
					return
				}
				next := p.WithRating(user, 4, "", time.Now())
				_, err = st.Products.CompareAndSwapRatings(ctx, p.ID, p.Version, next.Ratings, next.AverageRating)
				if err == nil || !assert.ErrorIs(t, err, apperr.ErrConflict) {
					return
				}
			}
		}(fmt.Sprintf("u%d", i))
	}
	wg.Wait()

	p, err := st.Products.GetByID(ctx, ids[0])
	require.NoError(t, err)
	assert.Len(t, p.Ratings, 5)
	assert.Equal(t, 4.0, p.AverageRating)

	stats, err := st.Products.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 15, stats.TotalProducts)
	assert.Equal(t, 10, stats.LowStockProducts)
	assert.Equal(t, 4.0, stats.RatedAverage)

	deleted, err := st.Products.Delete(ctx, ids[0])
	require.NoError(t, err)
	assert.Equal(t, ids[0], deleted.ID)
	_, err = st.Products.GetByID(ctx, ids[0])
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestProducts_NameSortMatchesMemoryStore(t *testing.T) {
	ctx := context.Background()
	st := newStore(t)
	for _, name := range []string{"apple", "Zebra", "banana"} {
		_, err := st.Products.Create(ctx, models.Product{
			Name: name, Slug: name, Category: models.CategoryOther,
			Price: 1, Description: "long enough text", Image: "/images/x.png",
		})
		require.NoError(t, err)
	}
	page, _, err := st.Products.List(ctx, models.ProductQuery{Sort: models.SortName, Page: 1, Limit: 10})
	require.NoError(t, err)
	require.Len(t, page, 3)
	assert.Equal(t, []string{"Zebra", "apple", "banana"}, []string{page[0].Name, page[1].Name, page[2].Name})
}
