package router

import (
	"net/http"

	"github.com/RoyceAzure/lab/laptop_store/internal/api"
	m "github.com/RoyceAzure/lab/laptop_store/internal/api/middleware"
	"github.com/RoyceAzure/lab/laptop_store/pkg/ratelimit"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// SetupRouter limiter 為 nil 時不限流
func SetupRouter(server *api.Server, limiter ratelimit.Limiter, logger *zerolog.Logger) *chi.Mux {
	r := chi.NewRouter()

	// 全局中間件
	r.Use(m.RequestIdMiddleware)
	r.Use(middleware.RealIP)
	r.Use(m.LoggerMiddleware(logger))
	r.Use(m.RateLimitMiddleware(limiter))

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", server.HealthHandler.Health)

		r.Route("/products", func(r chi.Router) {
			r.Get("/", server.CatalogHandler.Brands)
			r.Get("/{brand}", server.CatalogHandler.ByBrand)
		})
		r.Get("/search", server.CatalogHandler.Search)

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", server.CartHandler.GetCart)
			r.Delete("/", server.CartHandler.Clear)
			r.Post("/items", server.CartHandler.AddItem)
			r.Patch("/items/{id}", server.CartHandler.UpdateQuantity)
			r.Delete("/items/{id}", server.CartHandler.RemoveItem)
			r.Post("/checkout", server.CartHandler.StageCheckout)
		})

		r.Route("/checkout", func(r chi.Router) {
			r.Get("/", server.CheckoutHandler.GetCheckout)
			r.Post("/", server.CheckoutHandler.PlaceOrder)
		})

		r.Route("/profile", func(r chi.Router) {
			r.Route("/orders", func(r chi.Router) {
				r.Get("/", server.ProfileHandler.Orders)
				r.Get("/{id}", server.ProfileHandler.Order)
				r.Post("/{id}/cancel", server.ProfileHandler.CancelOrder)
				r.Post("/{id}/advance", server.ProfileHandler.AdvanceOrder)
				r.Put("/{id}/status", server.ProfileHandler.UpdateStatus)
			})
			r.Route("/cancelled", func(r chi.Router) {
				r.Get("/", server.ProfileHandler.CancelledOrders)
				r.Delete("/{id}", server.ProfileHandler.DeleteCancelled)
				r.Post("/{id}/reorder", server.ProfileHandler.Reorder)
			})
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":"Not Found"}`))
	})
	return r
}

// PrintRoutes 啟動時印出路由樹
func PrintRoutes(r chi.Routes, logger *zerolog.Logger) error {
	return chi.Walk(r, func(method string, route string, handler http.Handler, middlewares ...func(http.Handler) http.Handler) error {
		logger.Debug().Str("method", method).Str("route", route).Msg("route")
		return nil
	})
}
