package sectorisation

import (
	"errors"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/ThomasAyr/carte-scolaire/internal/httputil"
)

const defaultSuggestLimit = 50

type Handler struct {
	svc *Service
	log *zap.Logger
}

func NewHandler(svc *Service, log *zap.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

// Localities serves the locality selector: GET /localities?q=&limit=
func (h *Handler) Localities(w http.ResponseWriter, r *http.Request) {
	limit := defaultSuggestLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			httputil.WriteError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}
	out := h.svc.Resolver().Localities().Suggest(r.URL.Query().Get("q"), limit)
	if out == nil {
		out = []string{}
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"localities": out})
}

// Search resolves one address: GET /search?locality=&street=&number=
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	number, ok := httputil.OptionalInt(q.Get("number"))
	if !ok {
		httputil.WriteError(w, http.StatusBadRequest, "number must be an integer")
		return
	}

	res, err := h.svc.Search(r.Context(), Query{
		Locality: q.Get("locality"),
		Street:   httputil.OptionalString(q.Get("street")),
		Number:   number,
	})
	if errors.Is(err, ErrInvalidNumber) {
		httputil.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		h.log.Error("search failed", zap.Error(err))
		httputil.WriteError(w, http.StatusInternalServerError, "search failed")
		return
	}

	httputil.ServerTiming(w,
		httputil.Timing{Name: "resolve", Dur: res.Timings.Resolve},
		httputil.Timing{Name: "enrich", Dur: res.Timings.Enrich},
		httputil.Timing{Name: "geocode", Dur: res.Timings.Geocode},
	)
	httputil.WriteJSON(w, http.StatusOK, res)
}
