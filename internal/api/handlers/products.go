package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/baharkarakas/storefront-backend/internal/api/httpx"
	"github.com/baharkarakas/storefront-backend/internal/apperr"
	"github.com/baharkarakas/storefront-backend/internal/middleware"
	"github.com/baharkarakas/storefront-backend/internal/models"
	"github.com/baharkarakas/storefront-backend/internal/services"
	"github.com/baharkarakas/storefront-backend/internal/validate"
)

type ProductHandler struct {
	catalog   *services.CatalogService
	ratings   *services.RatingService
	maxUpload int64
	errs      httpx.Errors
}

func NewProductHandler(catalog *services.CatalogService, ratings *services.RatingService, maxUpload int64, errs httpx.Errors) *ProductHandler {
	return &ProductHandler{catalog: catalog, ratings: ratings, maxUpload: maxUpload, errs: errs}
}

func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	v := r.URL.Query()
	q, verrs := models.ParseProductQuery(v.Get("category"), v.Get("search"), v.Get("sort"), v.Get("page"), v.Get("limit"))
	if err := apperr.Invalid(verrs); err != nil {
		h.errs.Write(w, r, err)
		return
	}
	page, err := h.catalog.List(r.Context(), q)
	if err != nil {
		h.errs.Write(w, r, err)
		return
	}
	httpx.OK(w, httpx.M{"products": page.Products, "total": page.Total, "pages": page.Pages})
}

func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, err := h.catalog.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.errs.Write(w, r, err)
		return
	}
	httpx.OK(w, httpx.M{"product": p})
}

func (h *ProductHandler) NewCollections(w http.ResponseWriter, r *http.Request) {
	items, err := h.catalog.NewCollections(r.Context())
	if err != nil {
		h.errs.Write(w, r, err)
		return
	}
	if len(items) == 0 {
		httpx.WriteError(w, http.StatusNotFound, "No new collections found.", nil)
		return
	}
	httpx.OK(w, httpx.M{"data": items})
}

func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	if err := parseMultipart(w, r, h.maxUpload); err != nil {
		h.errs.Write(w, r, err)
		return
	}
	defer r.MultipartForm.RemoveAll()

	patch, verrs := productForm(r)
	if patch.Price == nil && !hasField(verrs, "price") {
		verrs = append(verrs, validate.ErrField{Field: "price", Msg: "is required"})
	}
	if err := apperr.Invalid(verrs); err != nil {
		h.errs.Write(w, r, err)
		return
	}
	f, img, err := formFile(r, "image")
	if err != nil {
		h.errs.Write(w, r, err)
		return
	}
	if f != nil {
		defer f.Close()
	}

	p, err := h.catalog.Create(r.Context(), patch.Apply(models.Product{}), img)
	if err != nil {
		h.errs.Write(w, r, err)
		return
	}
	httpx.OK(w, httpx.M{"product": p})
}

func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	if err := parseMultipart(w, r, h.maxUpload); err != nil {
		h.errs.Write(w, r, err)
		return
	}
	defer r.MultipartForm.RemoveAll()

	patch, verrs := productForm(r)
	if err := apperr.Invalid(verrs); err != nil {
		h.errs.Write(w, r, err)
		return
	}
	f, img, err := formFile(r, "image")
	if err != nil {
		h.errs.Write(w, r, err)
		return
	}
	if f != nil {
		defer f.Close()
	}

	p, err := h.catalog.Update(r.Context(), chi.URLParam(r, "id"), patch, img)
	if err != nil {
		h.errs.Write(w, r, err)
		return
	}
	httpx.OK(w, httpx.M{"product": p})
}

func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.catalog.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.errs.Write(w, r, err)
		return
	}
	httpx.OK(w, httpx.M{"message": "Product deleted successfully"})
}

type rateReq struct {
	Rating int    `json:"rating"`
	Review string `json:"review"`
}

func (h *ProductHandler) Rate(w http.ResponseWriter, r *http.Request) {
	var req rateReq
	if err := decodeJSON(w, r, &req); err != nil {
		h.errs.Write(w, r, err)
		return
	}
	u := middleware.FromCtx(r.Context())
	p, err := h.ratings.Rate(r.Context(), chi.URLParam(r, "id"), u.UserID, req.Rating, req.Review)
	if err != nil {
		h.errs.Write(w, r, err)
		return
	}
	httpx.OK(w, httpx.M{"product": p})
}

func hasField(errs validate.Errs, field string) bool {
	for _, e := range errs {
		if e.Field == field {
			return true
		}
	}
	return false
}
