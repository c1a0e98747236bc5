package api

import "github.com/RoyceAzure/lab/laptop_store/internal/api/handler"

type Server struct {
	HealthHandler   *handler.HealthHandler
	CatalogHandler  *handler.CatalogHandler
	CartHandler     *handler.CartHandler
	CheckoutHandler *handler.CheckoutHandler
	ProfileHandler  *handler.ProfileHandler
}

func NewServer(
	health *handler.HealthHandler,
	catalog *handler.CatalogHandler,
	cart *handler.CartHandler,
	checkout *handler.CheckoutHandler,
	profile *handler.ProfileHandler,
) *Server {
	return &Server{
		HealthHandler:   health,
		CatalogHandler:  catalog,
		CartHandler:     cart,
		CheckoutHandler: checkout,
		ProfileHandler:  profile,
	}
}
