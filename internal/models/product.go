package models

import (
	"strings"
	"time"

	"github.com/baharkarakas/storefront-backend/internal/validate"
)

const (
	CategoryElectronics = "Electronics"
	CategoryClothing    = "Clothing"
	CategoryBooks       = "Books"
	CategoryHome        = "Home & Kitchen"
	CategoryToys        = "Toys"
	CategorySports      = "Sports"
	CategoryOther       = "Other"
)

var Categories = []string{
	CategoryElectronics, CategoryClothing, CategoryBooks, CategoryHome,
	CategoryToys, CategorySports, CategoryOther,
}

// LowStockThreshold is the stock level below which a product counts as low.
const LowStockThreshold = 10

type Rating struct {
	UserID string    `json:"user"`
	Rating int       `json:"rating"`
	Review string    `json:"review,omitempty"`
	Date   time.Time `json:"date"`
}

type Product struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Slug          string    `json:"slug"`
	Category      string    `json:"category"`
	Price         float64   `json:"price"`
	Description   string    `json:"description"`
	Image         string    `json:"image"`
	Stock         int       `json:"stock"`
	Ratings       []Rating  `json:"ratings"`
	AverageRating float64   `json:"averageRating"`
	Version       int64     `json:"-"`
	CreatedAt     time.Time `json:"date"`
}

// Validate applies the catalog field rules.
func (p *Product) Validate() validate.Errs {
	p.Name = strings.TrimSpace(p.Name)
	return validate.Collect(
		validate.Length("name", p.Name, 2, 100),
		validate.OneOf("category", p.Category, Categories),
		validate.MinFloat("price", p.Price, 0),
		validate.Length("description", p.Description, 10, 1000),
		validate.Required("image", p.Image),
		validate.MinInt("stock", int64(p.Stock), 0),
	)
}

// ProductPatch carries optional fields of an update; nil means unchanged.
type ProductPatch struct {
	Name        *string
	Category    *string
	Price       *float64
	Description *string
	Stock       *int
	Image       *string
}

func (pp ProductPatch) Apply(p Product) Product {
	if pp.Name != nil {
		p.Name = *pp.Name
	}
	if pp.Category != nil {
		p.Category = *pp.Category
	}
	if pp.Price != nil {
		p.Price = *pp.Price
	}
	if pp.Description != nil {
		p.Description = *pp.Description
	}
	if pp.Stock != nil {
		p.Stock = *pp.Stock
	}
	if pp.Image != nil {
		p.Image = *pp.Image
	}
	return p
}

// WithRating returns a copy of p where userID's rating is replaced in place
// (or appended) and AverageRating is the exact mean of all ratings.
// An empty review keeps the previous review text.
func (p Product) WithRating(userID string, rating int, review string, at time.Time) Product {
	ratings := make([]Rating, len(p.Ratings), len(p.Ratings)+1)
	copy(ratings, p.Ratings)

	entry := Rating{UserID: userID, Rating: rating, Review: review, Date: at}
	replaced := false
	for i := range ratings {
		if ratings[i].UserID == userID {
			if entry.Review == "" {
				entry.Review = ratings[i].Review
			}
			ratings[i] = entry
			replaced = true
			break
		}
	}
	if !replaced {
		ratings = append(ratings, entry)
	}

	p.Ratings = ratings
	p.AverageRating = AverageOf(ratings)
	return p
}

// AverageOf is the arithmetic mean of the rating values, 0 for none.
func AverageOf(ratings []Rating) float64 {
	if len(ratings) == 0 {
		return 0
	}
	sum := 0
	for _, r := range ratings {
		sum += r.Rating
	}
	return float64(sum) / float64(len(ratings))
}
