// Package importer loads products in bulk from an .xlsx workbook.
package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/baharkarakas/storefront-backend/internal/apperr"
	"github.com/baharkarakas/storefront-backend/internal/metrics"
	"github.com/baharkarakas/storefront-backend/internal/models"
	"github.com/baharkarakas/storefront-backend/internal/validate"
)

// Columns lists the header names the first sheet must carry. Order in the
// sheet is free; stock may be omitted.
var Columns = []string{"name", "category", "price", "description", "stock", "image"}

var requiredColumns = []string{"name", "category", "price", "description", "image"}

// MaxRows bounds a single import.
const MaxRows = 5000

// Inserter stores one validated product.
type Inserter interface {
	Insert(ctx context.Context, p models.Product) (models.Product, error)
}

type RowError struct {
	Row    int           `json:"row"`
	Errors validate.Errs `json:"errors"`
}

type Result struct {
	Imported int        `json:"imported"`
	Failed   []RowError `json:"failed"`
}

// Import reads the first sheet of the workbook in r and inserts each valid
// row. Rows that fail validation are reported and skipped; any other error
// stops the import.
func Import(ctx context.Context, r io.Reader, dst Inserter) (Result, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return Result{}, apperr.InvalidField("file", "not a valid .xlsx workbook")
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return Result{}, apperr.InvalidField("file", "workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return Result{}, fmt.Errorf("read sheet: %w", err)
	}
	if len(rows) == 0 {
		return Result{}, apperr.InvalidField("file", "sheet is empty")
	}
	if len(rows)-1 > MaxRows {
		return Result{}, apperr.InvalidField("file", "too many rows, limit is "+strconv.Itoa(MaxRows))
	}

	cols, err := headerIndex(rows[0])
	if err != nil {
		return Result{}, err
	}

	res := Result{Failed: []RowError{}}
	for i, row := range rows[1:] {
		if blank(row) {
			continue
		}
		sheetRow := i + 2 // 1-based, after the header
		p, errs := parseRow(row, cols)
		if len(errs) == 0 {
			_, err := dst.Insert(ctx, p)
			var ve *apperr.ValidationError
			switch {
			case err == nil:
				res.Imported++
				metrics.ImportRows.WithLabelValues("imported").Inc()
				continue
			case errors.As(err, &ve):
				errs = ve.Fields
			default:
				return res, fmt.Errorf("row %d: %w", sheetRow, err)
			}
		}
		res.Failed = append(res.Failed, RowError{Row: sheetRow, Errors: errs})
		metrics.ImportRows.WithLabelValues("failed").Inc()
	}
	return res, nil
}

func headerIndex(header []string) (map[string]int, error) {
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	var missing []string
	for _, c := range requiredColumns {
		if _, ok := cols[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return nil, apperr.InvalidField("file", "missing columns: "+strings.Join(missing, ", "))
	}
	return cols, nil
}

func parseRow(row []string, cols map[string]int) (models.Product, validate.Errs) {
	cell := func(name string) string {
		i, ok := cols[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var errs validate.Errs
	p := models.Product{
		Name:        cell("name"),
		Category:    cell("category"),
		Description: cell("description"),
		Image:       cell("image"),
	}
	price, ef := validate.Float("price", cell("price"))
	if ef != nil {
		errs = append(errs, *ef)
	}
	p.Price = price
	if s := cell("stock"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			errs = append(errs, validate.ErrField{Field: "stock", Msg: "must be an integer"})
		}
		p.Stock = n
	}
	return p, errs
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
