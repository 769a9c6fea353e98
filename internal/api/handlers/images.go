package handlers

import (
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/baharkarakas/storefront-backend/internal/api/httpx"
	"github.com/baharkarakas/storefront-backend/internal/apperr"
	"github.com/baharkarakas/storefront-backend/internal/services"
	"github.com/baharkarakas/storefront-backend/internal/storage"
)

type ImageHandler struct {
	catalog *services.CatalogService
	errs    httpx.Errors
}

func NewImageHandler(catalog *services.CatalogService, errs httpx.Errors) *ImageHandler {
	return &ImageHandler{catalog: catalog, errs: errs}
}

// Serve streams the image stored under the wildcard path.
func (h *ImageHandler) Serve(w http.ResponseWriter, r *http.Request) {
	key, ok := storage.KeyFromRef(storage.Ref(chi.URLParam(r, "*")))
	if !ok {
		h.errs.Write(w, r, apperr.NotFound("image"))
		return
	}
	obj, err := h.catalog.OpenImage(r.Context(), key)
	if err != nil {
		h.errs.Write(w, r, err)
		return
	}
	defer obj.Body.Close()

	w.Header().Set("Content-Type", obj.ContentType)
	if obj.Size > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(obj.Size, 10))
	}
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.WriteHeader(http.StatusOK)
	_, _ = io.Copy(w, obj.Body)
}
