package perimeter

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/ThomasAyr/carte-scolaire/internal/httputil"
)

const missingDataMessage = "Données manquantes pour cet établissement. Essayez avec un autre établissement !"

type Handler struct {
	svc *Service
	log *zap.Logger
}

func NewHandler(svc *Service, log *zap.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

// Establishments serves GET /establishments?q=&limit=
func (h *Handler) Establishments(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			httputil.WriteError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}
	out, err := h.svc.Establishments(r.URL.Query().Get("q"), limit)
	if err != nil {
		h.writeErr(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"establishments": out})
}

// Perimeter serves GET /{id}
func (h *Handler) Perimeter(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.Perimeter(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeErr(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) writeErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrCatalogUnavailable):
		httputil.WriteError(w, http.StatusServiceUnavailable, "Impossible de charger les données")
	case errors.Is(err, ErrUnknownEstablishment):
		httputil.WriteError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrNoCatchmentRows):
		httputil.WriteError(w, http.StatusNotFound, missingDataMessage)
	case errors.Is(err, ErrGeocoding):
		httputil.WriteError(w, http.StatusBadGateway, missingDataMessage)
	default:
		h.log.Error("perimeter failed", zap.Error(err))
		httputil.WriteError(w, http.StatusInternalServerError, "perimeter failed")
	}
}
