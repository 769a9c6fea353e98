package models

import (
	"strconv"
	"strings"

	"github.com/baharkarakas/storefront-backend/internal/validate"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

type SortField string

const (
	SortNone          SortField = ""
	SortName          SortField = "name"
	SortPrice         SortField = "price"
	SortStock         SortField = "stock"
	SortCategory      SortField = "category"
	SortAverageRating SortField = "averageRating"
	SortDate          SortField = "date"
)

var sortAliases = map[string]SortField{
	"name":          SortName,
	"price":         SortPrice,
	"stock":         SortStock,
	"category":      SortCategory,
	"averageRating": SortAverageRating,
	"date":          SortDate,
	"createdAt":     SortDate,
}

// ProductQuery is a validated catalog listing request. Results are ordered
// by Sort (ties broken by id ascending) or by creation order when Sort is
// SortNone.
type ProductQuery struct {
	Category string
	Search   string
	Sort     SortField
	Desc     bool
	Page     int
	Limit    int
}

func (q ProductQuery) Offset() int { return (q.Page - 1) * q.Limit }

// ProductPage is one page of a listing.
type ProductPage struct {
	Products []Product `json:"products"`
	Total    int       `json:"total"`
	Pages    int       `json:"pages"`
}

// PageCount is ceil(total/limit).
func PageCount(total, limit int) int {
	if limit <= 0 || total <= 0 {
		return 0
	}
	return (total + limit - 1) / limit
}

// ParseProductQuery validates raw query-string values. Empty strings mean
// "not supplied".
func ParseProductQuery(category, search, sort, page, limit string) (ProductQuery, validate.Errs) {
	q := ProductQuery{
		Category: category,
		Search:   strings.TrimSpace(search),
		Page:     1,
		Limit:    DefaultPageSize,
	}
	var errs validate.Errs
	add := func(ef *validate.ErrField) {
		if ef != nil {
			errs = append(errs, *ef)
		}
	}

	if category != "" {
		add(validate.OneOf("category", category, Categories))
	}

	if sort != "" {
		field, dir, _ := strings.Cut(sort, ":")
		sf, ok := sortAliases[field]
		if !ok {
			add(&validate.ErrField{Field: "sort", Msg: "unknown sort field " + strconv.Quote(field)})
		}
		switch strings.ToLower(dir) {
		case "", "asc":
		case "desc":
			q.Desc = true
		default:
			add(&validate.ErrField{Field: "sort", Msg: "direction must be asc or desc"})
		}
		q.Sort = sf
	}

	if page != "" {
		n, err := strconv.Atoi(page)
		if err != nil {
			add(&validate.ErrField{Field: "page", Msg: "must be an integer"})
		} else {
			add(validate.MinInt("page", int64(n), 1))
			q.Page = n
		}
	}
	if limit != "" {
		n, err := strconv.Atoi(limit)
		if err != nil {
			add(&validate.ErrField{Field: "limit", Msg: "must be an integer"})
		} else {
			add(validate.IntRange("limit", int64(n), 1, MaxPageSize))
			q.Limit = n
		}
	}
	return q, errs
}
