package dashboard

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/ThomasAyr/carte-scolaire/internal/catchment"
	"github.com/ThomasAyr/carte-scolaire/internal/httputil"
)

type Handler struct {
	table *catchment.Table
	pops  Populations
	log   *zap.Logger
}

func NewHandler(table *catchment.Table, pops Populations, log *zap.Logger) *Handler {
	return &Handler{table: table, pops: pops, log: log}
}

// Stats serves GET /stats?department=GARD,LOT&type=COLLEGE. "Tous" or an
// empty type selects both types.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := Filter{Departments: httputil.ParseQueryList(q, "department")}

	if t := strings.TrimSpace(q.Get("type")); t != "" && !strings.EqualFold(t, "tous") {
		typ, err := catchment.ParseEstablishmentType(t)
		if err != nil {
			httputil.WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		f.Type = typ
	}

	httputil.WriteJSON(w, http.StatusOK, Compute(h.table, f, h.pops))
}
