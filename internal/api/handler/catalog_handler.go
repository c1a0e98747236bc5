package handler

import (
	"net/http"

	"github.com/RoyceAzure/lab/laptop_store/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

type CatalogHandler struct {
	base
	catalog *service.CatalogService
}

func NewCatalogHandler(catalog *service.CatalogService, logger *zerolog.Logger) *CatalogHandler {
	if catalog == nil {
		panic("catalog service cannot be nil")
	}
	return &CatalogHandler{base: newBase(logger), catalog: catalog}
}

// Brands GET /api/products
func (h *CatalogHandler) Brands(w http.ResponseWriter, r *http.Request) {
	SuccessJSON(w, http.StatusOK, h.catalog.Brands())
}

// ByBrand GET /api/products/{brand}
func (h *CatalogHandler) ByBrand(w http.ResponseWriter, r *http.Request) {
	laptops, err := h.catalog.ByBrand(chi.URLParam(r, "brand"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	SuccessJSON(w, http.StatusOK, laptops)
}

// Search GET /api/search?q=
func (h *CatalogHandler) Search(w http.ResponseWriter, r *http.Request) {
	SuccessJSON(w, http.StatusOK, h.catalog.Search(r.URL.Query().Get("q")))
}
