package handler

import (
	"errors"
	"net/http"

	"github.com/RoyceAzure/lab/laptop_store/internal/api/dto"
	"github.com/RoyceAzure/lab/laptop_store/internal/service"
	"github.com/rs/zerolog"
)

const cartPath = "/api/cart"

type CheckoutHandler struct {
	base
	checkout *service.CheckoutService
}

func NewCheckoutHandler(checkout *service.CheckoutService, logger *zerolog.Logger) *CheckoutHandler {
	if checkout == nil {
		panic("checkout service cannot be nil")
	}
	return &CheckoutHandler{base: newBase(logger), checkout: checkout}
}

// GetCheckout GET /api/checkout
// 沒有結帳資料時導回購物車
func (h *CheckoutHandler) GetCheckout(w http.ResponseWriter, r *http.Request) {
	checkout, err := h.checkout.Load(r.Context())
	if errors.Is(err, service.ErrHandoffMissing) {
		http.Redirect(w, r, cartPath, http.StatusSeeOther)
		return
	}
	if err != nil {
		h.fail(w, r, err)
		return
	}
	SuccessJSON(w, http.StatusOK, checkout)
}

// PlaceOrder POST /api/checkout
func (h *CheckoutHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	var req dto.PlaceOrderDTO
	if err := decodeJSON(r, &req); err != nil {
		ErrorJSON(w, http.StatusBadRequest, err.Error())
		return
	}
	order, err := h.checkout.Place(r.Context(), req.Shipping)
	if errors.Is(err, service.ErrHandoffMissing) {
		http.Redirect(w, r, cartPath, http.StatusSeeOther)
		return
	}
	if err != nil {
		h.fail(w, r, err)
		return
	}
	SuccessJSON(w, http.StatusCreated, order)
}
