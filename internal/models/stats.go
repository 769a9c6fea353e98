package models

type Stats struct {
	TotalUsers       int     `json:"totalUsers"`
	TotalProducts    int     `json:"totalProducts"`
	LowStockProducts int     `json:"lowStockProducts"`
	AverageRating    float64 `json:"averageRating"`
}
