package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/baharkarakas/storefront-backend/internal/models"
)

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `50\%\_off\\`, escapeLike(`50%_off\`))
	assert.Equal(t, "plain", escapeLike("plain"))
}

func TestBuildListQuery(t *testing.T) {
	tests := []struct {
		name      string
		q         models.ProductQuery
		wantPage  string
		wantCount string
		wantArgs  []any
	}{
		{
			name:      "natural order",
			q:         models.ProductQuery{Page: 1, Limit: 10},
			wantPage:  "SELECT " + productColumns + " FROM products ORDER BY created_at ASC, id ASC LIMIT $1 OFFSET $2",
			wantCount: "SELECT count(*) FROM products",
			wantArgs:  []any{10, 0},
		},
		{
			name:      "filters and sort",
			q:         models.ProductQuery{Category: "Books", Search: "go_", Sort: models.SortAverageRating, Desc: true, Page: 3, Limit: 5},
			wantPage:  "SELECT " + productColumns + " FROM products WHERE category = $1 AND name ILIKE $2 ORDER BY average_rating DESC, id ASC LIMIT $3 OFFSET $4",
			wantCount: "SELECT count(*) FROM products WHERE category = $1 AND name ILIKE $2",
			wantArgs:  []any{"Books", `%go\_%`, 5, 10},
		},
		{
			name:      "text sort is byte ordered",
			q:         models.ProductQuery{Sort: models.SortName, Page: 1, Limit: 10},
			wantPage:  "SELECT " + productColumns + ` FROM products ORDER BY name COLLATE "C" ASC, id ASC LIMIT $1 OFFSET $2`,
			wantCount: "SELECT count(*) FROM products",
			wantArgs:  []any{10, 0},
		},
		{
			name:      "search only",
			q:         models.ProductQuery{Search: "shirt", Sort: models.SortDate, Page: 1, Limit: 10},
			wantPage:  "SELECT " + productColumns + " FROM products WHERE name ILIKE $1 ORDER BY created_at ASC, id ASC LIMIT $2 OFFSET $3",
			wantCount: "SELECT count(*) FROM products WHERE name ILIKE $1",
			wantArgs:  []any{"%shirt%", 10, 0},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := buildListQuery(tt.q)
			assert.Equal(t, tt.wantPage, got.page)
			assert.Equal(t, tt.wantCount, got.count)
			assert.Equal(t, tt.wantArgs, got.args)
		})
	}
}

func TestValidID(t *testing.T) {
	assert.True(t, validID("2f1b6c1e-8d7a-4b8e-9a55-3f1c2d4e5f60"))
	assert.False(t, validID("not-a-uuid"))
	assert.False(t, validID(""))
}
