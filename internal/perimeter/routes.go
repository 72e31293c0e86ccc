package perimeter

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func SetupRoutes(h *Handler) http.Handler {
	r := chi.NewRouter()

	r.Get("/establishments", h.Establishments)
	r.Get("/{id}", h.Perimeter)

	return r
}
