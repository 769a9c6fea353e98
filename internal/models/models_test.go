package models

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCart_AddRemoveRestoresView(t *testing.T) {
	before := Cart{"a": 2}

	after := before.Add("b").Remove("b")

	assert.Equal(t, before.View(nil), after.View(nil))
	assert.Equal(t, Cart{"a": 2}, before, "receiver must not be mutated")
}

func TestCart_AddTwiceRemoveOnce(t *testing.T) {
	c := Cart{}.Add("p").Add("p").Remove("p")
	assert.Equal(t, 1, c["p"])
}

func TestCart_RemoveFloorsAtZeroAndKeepsKey(t *testing.T) {
	c := Cart{"p": 1}.Remove("p").Remove("p")
	q, ok := c["p"]
	assert.True(t, ok)
	assert.Equal(t, 0, q)
	assert.NotContains(t, c.View(nil), "p")
}

func TestCart_SetZeroDeletes(t *testing.T) {
	c := Cart{"p": 3}.Set("p", 0)
	assert.NotContains(t, c, "p")

	c = c.Set("q", 7)
	assert.Equal(t, 7, c["q"])
}

func TestCart_ViewDropsStaleProducts(t *testing.T) {
	c := Cart{"live": 1, "gone": 4, "zero": 0}
	v := c.View(func(id string) bool { return id != "gone" })
	assert.Equal(t, Cart{"live": 1}, v)
}

func TestCart_Clear(t *testing.T) {
	c := Cart{"a": 1}
	assert.Empty(t, c.Clear())
	assert.Len(t, c, 1)
}

func TestProduct_Validate(t *testing.T) {
	p := Product{
		Name:        "  Shirt ",
		Category:    CategoryClothing,
		Price:       20,
		Description: "A basic cotton shirt for everyday wear.",
		Image:       "/images/products/shirt.png",
		Stock:       5,
	}
	assert.Empty(t, p.Validate())
	assert.Equal(t, "Shirt", p.Name)

	bad := Product{Name: "S", Category: "Food", Price: -1, Description: "short", Stock: -2}
	errs := bad.Validate()
	fields := map[string]bool{}
	for _, e := range errs {
		fields[e.Field] = true
	}
	for _, f := range []string{"name", "category", "price", "description", "image", "stock"} {
		assert.True(t, fields[f], f)
	}
}

func TestProduct_ValidateRejectsNonFinitePrice(t *testing.T) {
	for _, price := range []float64{math.NaN(), math.Inf(1)} {
		p := Product{
			Name:        "Shirt",
			Category:    CategoryClothing,
			Price:       price,
			Description: "A basic cotton shirt for everyday wear.",
			Image:       "/images/products/shirt.png",
		}
		errs := p.Validate()
		require.Len(t, errs, 1)
		assert.Equal(t, "price", errs[0].Field)
	}
}

func TestProduct_WithRatingReplacesAndAverages(t *testing.T) {
	now := time.Now()
	p := Product{ID: "p1"}

	p = p.WithRating("u1", 5, "great", now)
	p = p.WithRating("u1", 3, "", now)

	require.Len(t, p.Ratings, 1)
	assert.Equal(t, 3, p.Ratings[0].Rating)
	assert.Equal(t, "great", p.Ratings[0].Review)
	assert.Equal(t, 3.0, p.AverageRating)

	p = p.WithRating("u2", 4, "ok", now)
	require.Len(t, p.Ratings, 2)
	assert.InDelta(t, 3.5, p.AverageRating, 1e-9)
	assert.Equal(t, "u1", p.Ratings[0].UserID, "replacement keeps position")
}

func TestProduct_WithRatingDoesNotAliasInput(t *testing.T) {
	orig := Product{Ratings: []Rating{{UserID: "u1", Rating: 1}}}
	_ = orig.WithRating("u1", 5, "", time.Now())
	assert.Equal(t, 1, orig.Ratings[0].Rating)
}

func TestAverageOf(t *testing.T) {
	assert.Equal(t, 0.0, AverageOf(nil))
	assert.InDelta(t, 7.0/3.0, AverageOf([]Rating{{Rating: 1}, {Rating: 2}, {Rating: 4}}), 1e-12)
}

func TestParseProductQuery(t *testing.T) {
	q, errs := ParseProductQuery("", "", "", "", "")
	require.Empty(t, errs)
	assert.Equal(t, 1, q.Page)
	assert.Equal(t, DefaultPageSize, q.Limit)
	assert.Equal(t, SortNone, q.Sort)

	q, errs = ParseProductQuery("Books", " go ", "price:desc", "2", "5")
	require.Empty(t, errs)
	assert.Equal(t, "go", q.Search)
	assert.Equal(t, SortPrice, q.Sort)
	assert.True(t, q.Desc)
	assert.Equal(t, 5, q.Offset())

	q, errs = ParseProductQuery("", "", "createdAt", "", "")
	require.Empty(t, errs)
	assert.Equal(t, SortDate, q.Sort)
	assert.False(t, q.Desc)
}

func TestParseProductQuery_Errors(t *testing.T) {
	tests := []struct {
		name                               string
		category, sort, page, limit, field string
	}{
		{name: "unknown category", category: "Food", field: "category"},
		{name: "unknown sort field", sort: "color:asc", field: "sort"},
		{name: "bad direction", sort: "price:up", field: "sort"},
		{name: "page zero", page: "0", field: "page"},
		{name: "page not int", page: "x", field: "page"},
		{name: "limit too big", limit: "1000", field: "limit"},
		{name: "limit zero", limit: "0", field: "limit"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, errs := ParseProductQuery(tt.category, "", tt.sort, tt.page, tt.limit)
			require.Len(t, errs, 1)
			assert.Equal(t, tt.field, errs[0].Field)
		})
	}
}

func TestPageCount(t *testing.T) {
	assert.Equal(t, 2, PageCount(15, 10))
	assert.Equal(t, 1, PageCount(10, 10))
	assert.Equal(t, 0, PageCount(0, 10))
}
