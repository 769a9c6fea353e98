package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/baharkarakas/storefront-backend/internal/apperr"
	"github.com/baharkarakas/storefront-backend/internal/models"
	"github.com/baharkarakas/storefront-backend/internal/services"
	"github.com/baharkarakas/storefront-backend/internal/validate"
)

const maxJSONBody = 1 << 20

// formOverhead is the allowance for non-file multipart fields.
const formOverhead = 1 << 20

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return apperr.InvalidField("body", "request body is required")
		}
		return apperr.InvalidField("body", "invalid JSON body")
	}
	return nil
}

func parseMultipart(w http.ResponseWriter, r *http.Request, maxFile int64) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxFile+formOverhead)
	if err := r.ParseMultipartForm(maxFile + formOverhead); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			return apperr.InvalidField("image", "file too large")
		}
		return apperr.InvalidField("body", "invalid multipart form")
	}
	return nil
}

// formFile returns the named upload, nil when the form has none. The caller
// closes the returned file.
func formFile(r *http.Request, field string) (multipart.File, *services.ImageUpload, error) {
	f, hdr, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, apperr.InvalidField(field, "unreadable upload")
	}
	return f, &services.ImageUpload{Filename: hdr.Filename, Size: hdr.Size, Body: f}, nil
}

// productForm reads the catalog fields present in a multipart form.
func productForm(r *http.Request) (models.ProductPatch, validate.Errs) {
	var (
		patch models.ProductPatch
		errs  validate.Errs
	)
	text := func(name string) *string {
		if _, ok := r.MultipartForm.Value[name]; !ok {
			return nil
		}
		v := r.FormValue(name)
		return &v
	}
	patch.Name = text("name")
	patch.Category = text("category")
	patch.Description = text("description")

	if s := text("price"); s != nil {
		v, ef := validate.Float("price", *s)
		if ef != nil {
			errs = append(errs, *ef)
		} else {
			patch.Price = &v
		}
	}
	if s := text("stock"); s != nil {
		v, err := strconv.Atoi(strings.TrimSpace(*s))
		if err != nil {
			errs = append(errs, validate.ErrField{Field: "stock", Msg: "must be an integer"})
		} else {
			patch.Stock = &v
		}
	}
	return patch, errs
}
