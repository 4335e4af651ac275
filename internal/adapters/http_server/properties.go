package httpserver

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (h *Handlers) listProperties(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, r, h.Q.ListProperties(r.Context()))
}

func (h *Handlers) getProperty(w http.ResponseWriter, r *http.Request) {
	p, err := h.Q.GetProperty(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	respondJSON(w, r, p)
}

func (h *Handlers) propertyReviews(w http.ResponseWriter, r *http.Request) {
	q, errs := buildListQuery(r.URL.Query())
	if errs != nil {
		writeValidation(w, http.StatusBadRequest, errs)
		return
	}
	out, err := h.Q.PropertyReviews(r.Context(), chi.URLParam(r, "id"), q)
	if err != nil {
		writeError(w, r, err)
		return
	}
	respondJSON(w, r, out)
}

func (h *Handlers) propertyStatsFor(w http.ResponseWriter, r *http.Request) {
	ps, err := h.Q.PropertyStatsFor(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	respondJSON(w, r, ps)
}
