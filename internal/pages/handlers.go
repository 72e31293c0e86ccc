package pages

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ThomasAyr/carte-scolaire/internal/httputil"
)

type Handler struct {
	state *AppState
}

func NewHandler(state *AppState) *Handler {
	return &Handler{state: state}
}

// List serves GET /pages
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"pages": Menu(h.state)})
}

// Get serves GET /pages/{page}; 503 when the page needs a table that failed to load.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	page, err := ParsePage(chi.URLParam(r, "page"))
	if err != nil {
		httputil.WriteError(w, http.StatusNotFound, err.Error())
		return
	}
	d, err := Render(h.state, page)
	if errors.Is(err, ErrUnknownPage) {
		httputil.WriteError(w, http.StatusNotFound, err.Error())
		return
	}
	status := http.StatusOK
	if d.Error != "" {
		status = http.StatusServiceUnavailable
	}
	httputil.WriteJSON(w, status, d)
}
