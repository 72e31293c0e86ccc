package sectorisation

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func SetupRoutes(h *Handler) http.Handler {
	r := chi.NewRouter()

	r.Get("/localities", h.Localities)
	r.Get("/search", h.Search)

	return r
}
