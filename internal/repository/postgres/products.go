package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/baharkarakas/storefront-backend/internal/apperr"
	"github.com/baharkarakas/storefront-backend/internal/models"
	"github.com/baharkarakas/storefront-backend/internal/repository"
)

const productColumns = `id::text, name, slug, category, price, description, image, stock, ratings, average_rating, version, created_at`

// sortColumns whitelists the ORDER BY expressions a query may produce. Text
// columns sort in byte order ("C" collation) whatever the database locale.
var sortColumns = map[models.SortField]string{
	models.SortName:          `name COLLATE "C"`,
	models.SortPrice:         "price",
	models.SortStock:         "stock",
	models.SortCategory:      `category COLLATE "C"`,
	models.SortAverageRating: "average_rating",
	models.SortDate:          "created_at",
}

type productsRepo struct{ pool *pgxpool.Pool }

func NewProducts(pool *pgxpool.Pool) repository.Products {
	return &productsRepo{pool: pool}
}

func scanProduct(row pgx.Row) (models.Product, error) {
	var (
		p       models.Product
		ratings []byte
	)
	err := row.Scan(&p.ID, &p.Name, &p.Slug, &p.Category, &p.Price, &p.Description,
		&p.Image, &p.Stock, &ratings, &p.AverageRating, &p.Version, &p.CreatedAt)
	if err != nil {
		return models.Product{}, err
	}
	p.Ratings = []models.Rating{}
	if len(ratings) > 0 {
		if err := json.Unmarshal(ratings, &p.Ratings); err != nil {
			return models.Product{}, fmt.Errorf("decode ratings: %w", err)
		}
	}
	return p, nil
}

func (r *productsRepo) Create(ctx context.Context, p models.Product) (models.Product, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.Ratings == nil {
		p.Ratings = []models.Rating{}
	}
	ratings, err := json.Marshal(p.Ratings)
	if err != nil {
		return models.Product{}, err
	}
	out, err := scanProduct(r.pool.QueryRow(ctx,
		`INSERT INTO products(id, name, slug, category, price, description, image, stock, ratings, average_rating)
		 VALUES($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		 RETURNING `+productColumns,
		p.ID, p.Name, p.Slug, p.Category, p.Price, p.Description, p.Image, p.Stock, ratings, p.AverageRating,
	))
	return out, mapErr(err, "product")
}

func (r *productsRepo) GetByID(ctx context.Context, id string) (models.Product, error) {
	if !validID(id) {
		return models.Product{}, apperr.NotFound("product")
	}
	p, err := scanProduct(r.pool.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id=$1`, id))
	return p, mapErr(err, "product")
}

func (r *productsRepo) Update(ctx context.Context, p models.Product) (models.Product, error) {
	if !validID(p.ID) {
		return models.Product{}, apperr.NotFound("product")
	}
	out, err := scanProduct(r.pool.QueryRow(ctx,
		`UPDATE products
		 SET name=$2, slug=$3, category=$4, price=$5, description=$6, image=$7, stock=$8
		 WHERE id=$1
		 RETURNING `+productColumns,
		p.ID, p.Name, p.Slug, p.Category, p.Price, p.Description, p.Image, p.Stock,
	))
	return out, mapErr(err, "product")
}

func (r *productsRepo) Delete(ctx context.Context, id string) (models.Product, error) {
	if !validID(id) {
		return models.Product{}, apperr.NotFound("product")
	}
	p, err := scanProduct(r.pool.QueryRow(ctx, `DELETE FROM products WHERE id=$1 RETURNING `+productColumns, id))
	return p, mapErr(err, "product")
}

// listQuery is the SQL for one page of a listing plus its total count.
type listQuery struct {
	page  string
	count string
	args  []any
}

// escapeLike makes s match literally inside a LIKE pattern.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func buildListQuery(q models.ProductQuery) listQuery {
	var (
		conds []string
		args  []any
	)
	if q.Category != "" {
		args = append(args, q.Category)
		conds = append(conds, "category = $"+strconv.Itoa(len(args)))
	}
	if q.Search != "" {
		args = append(args, "%"+escapeLike(q.Search)+"%")
		conds = append(conds, "name ILIKE $"+strconv.Itoa(len(args)))
	}
	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	order := " ORDER BY created_at ASC, id ASC"
	if col, ok := sortColumns[q.Sort]; ok {
		dir := "ASC"
		if q.Desc {
			dir = "DESC"
		}
		order = " ORDER BY " + col + " " + dir + ", id ASC"
	}

	countArgs := len(args)
	args = append(args, q.Limit, q.Offset())
	return listQuery{
		page: "SELECT " + productColumns + " FROM products" + where + order +
			" LIMIT $" + strconv.Itoa(countArgs+1) + " OFFSET $" + strconv.Itoa(countArgs+2),
		count: "SELECT count(*) FROM products" + where,
		args:  args,
	}
}

func (r *productsRepo) List(ctx context.Context, q models.ProductQuery) ([]models.Product, int, error) {
	lq := buildListQuery(q)
	filterArgs := lq.args[:len(lq.args)-2]

	var total int
	if err := r.pool.QueryRow(ctx, lq.count, filterArgs...).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx, lq.page, lq.args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]models.Product, 0, q.Limit)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, p)
	}
	return out, total, rows.Err()
}

func (r *productsRepo) Existing(ctx context.Context, ids []string) (map[string]bool, error) {
	out := make(map[string]bool, len(ids))
	valid := make([]string, 0, len(ids))
	for _, id := range ids {
		if validID(id) {
			valid = append(valid, id)
		}
	}
	if len(valid) == 0 {
		return out, nil
	}
	rows, err := r.pool.Query(ctx, `SELECT id::text FROM products WHERE id = ANY($1::uuid[])`, valid)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out[id] = true
	}
	return out, rows.Err()
}

func (r *productsRepo) Stats(ctx context.Context) (repository.CatalogStats, error) {
	var st repository.CatalogStats
	err := r.pool.QueryRow(ctx,
		`SELECT count(*),
		        count(*) FILTER (WHERE stock < $1),
		        COALESCE(avg(average_rating) FILTER (WHERE jsonb_array_length(ratings) > 0), 0)
		 FROM products`,
		models.LowStockThreshold,
	).Scan(&st.TotalProducts, &st.LowStockProducts, &st.RatedAverage)
	return st, err
}

func (r *productsRepo) CompareAndSwapRatings(ctx context.Context, id string, version int64, ratings []models.Rating, avg float64) (int64, error) {
	if !validID(id) {
		return 0, apperr.NotFound("product")
	}
	if ratings == nil {
		ratings = []models.Rating{}
	}
	body, err := json.Marshal(ratings)
	if err != nil {
		return 0, err
	}
	var next int64
	err = r.pool.QueryRow(ctx,
		`UPDATE products SET ratings=$3, average_rating=$4, version=version+1
		 WHERE id=$1 AND version=$2
		 RETURNING version`,
		id, version, body, avg,
	).Scan(&next)
	if err == nil {
		return next, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, err
	}
	return 0, conflictOrMissing(ctx, r.pool, `SELECT EXISTS(SELECT 1 FROM products WHERE id=$1)`, id, "product")
}
