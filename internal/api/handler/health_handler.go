package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/RoyceAzure/lab/laptop_store/internal/api/dto"
	"github.com/rs/zerolog"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type initChecker interface {
	IsInitialized() bool
}

type HealthHandler struct {
	base
	store      Pinger
	storefront initChecker
}

func NewHealthHandler(store Pinger, storefront initChecker, logger *zerolog.Logger) *HealthHandler {
	return &HealthHandler{base: newBase(logger), store: store, storefront: storefront}
}

// Health GET /api/health, store 連不上回 503
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	res := dto.HealthDTO{Status: "ok", Initialized: h.storefront.IsInitialized()}
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := h.store.Ping(ctx); err != nil {
		h.logger.Warn().Err(err).Msg("health check: store unreachable")
		res.Status = "store unreachable"
		writeJSON(w, http.StatusServiceUnavailable, Response{Data: res})
		return
	}
	if !res.Initialized {
		res.Status = "initializing"
		writeJSON(w, http.StatusServiceUnavailable, Response{Data: res})
		return
	}
	SuccessJSON(w, http.StatusOK, res)
}
