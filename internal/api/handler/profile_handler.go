package handler

import (
	"fmt"
	"net/http"

	"github.com/RoyceAzure/lab/laptop_store/internal/api/dto"
	"github.com/RoyceAzure/lab/laptop_store/internal/domain/model"
	"github.com/RoyceAzure/lab/laptop_store/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// ProfileHandler 會員頁: 訂單, 已取消訂單
type ProfileHandler struct {
	base
	storefront  *service.Storefront
	fulfillment *service.FulfillmentService
}

func NewProfileHandler(storefront *service.Storefront, fulfillment *service.FulfillmentService, logger *zerolog.Logger) *ProfileHandler {
	if storefront == nil || fulfillment == nil {
		panic("profile handler dependencies cannot be nil")
	}
	return &ProfileHandler{
		base:        newBase(logger),
		storefront:  storefront,
		fulfillment: fulfillment,
	}
}

func (h *ProfileHandler) Orders(w http.ResponseWriter, r *http.Request) {
	SuccessJSON(w, http.StatusOK, h.storefront.Orders())
}

// Order 先找有效訂單, 再找已取消紀錄
func (h *ProfileHandler) Order(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	order, ok := h.storefront.Order(id)
	if !ok {
		order, ok = h.storefront.CancelledOrder(id)
	}
	if !ok {
		h.fail(w, r, fmt.Errorf("%w: %s", service.ErrOrderNotFound, id))
		return
	}
	SuccessJSON(w, http.StatusOK, dto.OrderDetailDTO{
		Order:   order,
		Summary: service.Summarize(order.Items, h.storefront.TaxRate()),
	})
}

// CancelOrder 回傳新建立的已取消紀錄
func (h *ProfileHandler) CancelOrder(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	record, ok, err := h.storefront.CancelOrder(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if !ok {
		h.fail(w, r, fmt.Errorf("%w: %s", service.ErrOrderNotFound, id))
		return
	}
	SuccessJSON(w, http.StatusOK, record)
}

func (h *ProfileHandler) AdvanceOrder(w http.ResponseWriter, r *http.Request) {
	order, err := h.fulfillment.Advance(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	SuccessJSON(w, http.StatusOK, order)
}

// UpdateStatus PUT /api/profile/orders/{id}/status
// cancelled 必須走 cancel 流程, 這裡回 409
func (h *ProfileHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdateStatusDTO
	if err := decodeJSON(r, &req); err != nil {
		ErrorJSON(w, http.StatusBadRequest, err.Error())
		return
	}
	status, err := model.ParseOrderStatus(req.Status)
	if err != nil {
		h.fail(w, r, fmt.Errorf("%w: %w", service.ErrInvalidArgument, err))
		return
	}
	id := chi.URLParam(r, "id")
	if _, err := h.storefront.UpdateOrderStatus(r.Context(), id, status); err != nil {
		h.fail(w, r, err)
		return
	}
	order, ok := h.storefront.Order(id)
	if !ok {
		h.fail(w, r, fmt.Errorf("%w: %s", service.ErrOrderNotFound, id))
		return
	}
	SuccessJSON(w, http.StatusOK, order)
}

func (h *ProfileHandler) CancelledOrders(w http.ResponseWriter, r *http.Request) {
	SuccessJSON(w, http.StatusOK, h.storefront.CancelledOrders())
}

// DeleteCancelled 不存在時也回 204
func (h *ProfileHandler) DeleteCancelled(w http.ResponseWriter, r *http.Request) {
	if err := h.storefront.DeleteCancelledOrder(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Reorder 把訂單品項加回購物車, 回傳購物車
func (h *ProfileHandler) Reorder(w http.ResponseWriter, r *http.Request) {
	if err := h.storefront.ReorderOrder(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.fail(w, r, err)
		return
	}
	SuccessJSON(w, http.StatusOK, dto.CartDTO{
		Items:   h.storefront.Cart(),
		Summary: h.storefront.CartSummary(),
	})
}
