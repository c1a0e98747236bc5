package handler

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/RoyceAzure/lab/laptop_store/internal/api/dto"
	"github.com/RoyceAzure/lab/laptop_store/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

type CartHandler struct {
	base
	storefront *service.Storefront
	catalog    *service.CatalogService
	checkout   *service.CheckoutService
}

func NewCartHandler(storefront *service.Storefront, catalog *service.CatalogService, checkout *service.CheckoutService, logger *zerolog.Logger) *CartHandler {
	if storefront == nil || catalog == nil || checkout == nil {
		panic("cart handler dependencies cannot be nil")
	}
	return &CartHandler{
		base:       newBase(logger),
		storefront: storefront,
		catalog:    catalog,
		checkout:   checkout,
	}
}

func (h *CartHandler) cart() dto.CartDTO {
	return dto.CartDTO{
		Items:   h.storefront.Cart(),
		Summary: h.storefront.CartSummary(),
	}
}

// GetCart GET /api/cart?selected=a,b
// 帶 selected 時額外回傳勾選品項的小計
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	cart := h.cart()
	if raw := r.URL.Query().Get("selected"); raw != "" {
		var ids []string
		for _, id := range strings.Split(raw, ",") {
			if id = strings.TrimSpace(id); id != "" {
				ids = append(ids, id)
			}
		}
		total := service.SelectionTotal(cart.Items, ids)
		cart.SelectedTotal = &total
	}
	SuccessJSON(w, http.StatusOK, cart)
}

// AddItem POST /api/cart/items
// 同一個商品加同一個顏色會累加數量
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req dto.AddCartItemDTO
	if err := decodeJSON(r, &req); err != nil {
		ErrorJSON(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.ProductID == "" {
		ErrorJSON(w, http.StatusBadRequest, "productId is required")
		return
	}
	item, err := h.catalog.AddToCart(r.Context(), req.ProductID, req.Color)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	SuccessJSON(w, http.StatusCreated, item)
}

// UpdateQuantity PATCH /api/cart/items/{id}, quantity < 1 會移除品項
func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdateQuantityDTO
	if err := decodeJSON(r, &req); err != nil {
		ErrorJSON(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Quantity == nil {
		ErrorJSON(w, http.StatusBadRequest, "quantity is required")
		return
	}
	if err := h.storefront.UpdateQuantity(r.Context(), chi.URLParam(r, "id"), *req.Quantity); err != nil {
		h.fail(w, r, err)
		return
	}
	SuccessJSON(w, http.StatusOK, h.cart())
}

// RemoveItem DELETE /api/cart/items/{id}
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	if err := h.storefront.RemoveFromCart(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.fail(w, r, err)
		return
	}
	SuccessJSON(w, http.StatusOK, h.cart())
}

// Clear DELETE /api/cart
func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	if err := h.storefront.ClearCart(r.Context()); err != nil {
		h.fail(w, r, err)
		return
	}
	SuccessJSON(w, http.StatusOK, h.cart())
}

// StageCheckout POST /api/cart/checkout
func (h *CartHandler) StageCheckout(w http.ResponseWriter, r *http.Request) {
	var req dto.StageCheckoutDTO
	if err := decodeJSON(r, &req); err != nil {
		ErrorJSON(w, http.StatusBadRequest, err.Error())
		return
	}
	checkout, err := h.checkout.Stage(r.Context(), req.IDs)
	if err != nil {
		h.fail(w, r, fmt.Errorf("stage checkout: %w", err))
		return
	}
	SuccessJSON(w, http.StatusOK, checkout)
}
