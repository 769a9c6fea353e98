package handlers

import (
	"log/slog"
	"net/http"

	"github.com/baharkarakas/storefront-backend/internal/api/httpx"
	"github.com/baharkarakas/storefront-backend/internal/apperr"
	"github.com/baharkarakas/storefront-backend/internal/importer"
	"github.com/baharkarakas/storefront-backend/internal/services"
)

// maxWorkbook bounds an import upload.
const maxWorkbook = 10 << 20

type AdminHandler struct {
	stats   *services.StatsService
	catalog *services.CatalogService
	log     *slog.Logger
	errs    httpx.Errors
}

func NewAdminHandler(stats *services.StatsService, catalog *services.CatalogService, log *slog.Logger, errs httpx.Errors) *AdminHandler {
	return &AdminHandler{stats: stats, catalog: catalog, log: log, errs: errs}
}

func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	st, err := h.stats.Stats(r.Context())
	if err != nil {
		h.errs.Write(w, r, err)
		return
	}
	httpx.OK(w, httpx.M{"stats": st})
}

// ImportProducts bulk-loads products from an uploaded .xlsx workbook.
func (h *AdminHandler) ImportProducts(w http.ResponseWriter, r *http.Request) {
	if err := parseMultipart(w, r, maxWorkbook); err != nil {
		h.errs.Write(w, r, err)
		return
	}
	defer r.MultipartForm.RemoveAll()

	f, _, err := r.FormFile("file")
	if err != nil {
		h.errs.Write(w, r, apperr.InvalidField("file", "an .xlsx file is required"))
		return
	}
	defer f.Close()

	res, err := importer.Import(r.Context(), f, h.catalog)
	if err != nil {
		h.errs.Write(w, r, err)
		return
	}
	if res.Failed == nil {
		res.Failed = []importer.RowError{}
	}
	h.log.Info("products imported", "imported", res.Imported, "failed", len(res.Failed))
	httpx.OK(w, httpx.M{"imported": res.Imported, "failed": res.Failed})
}
