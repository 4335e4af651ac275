package httpserver

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"guest_reviews/internal/domain"
)

func (h *Handlers) listReviews(w http.ResponseWriter, r *http.Request) {
	q, errs := buildListQuery(r.URL.Query())
	if errs != nil {
		writeValidation(w, http.StatusBadRequest, errs)
		return
	}
	out, err := h.Q.ListReviews(r.Context(), q)
	if err != nil {
		writeError(w, r, err)
		return
	}
	respondJSON(w, r, out)
}

func (h *Handlers) getReview(w http.ResponseWriter, r *http.Request) {
	rv, err := h.Q.GetReview(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	respondJSON(w, r, rv)
}

func (h *Handlers) updateReview(w http.ResponseWriter, r *http.Request) {
	var upd domain.StatusUpdate
	if err := decodeJSONBody(w, r, &upd); err != nil {
		respondDecodeError(w, err)
		return
	}
	if err := validate.Struct(upd); err != nil {
		writeValidation(w, http.StatusUnprocessableEntity, toFieldErrors(err))
		return
	}
	rv, err := h.Q.UpdateReview(r.Context(), chi.URLParam(r, "id"), upd)
	if err != nil {
		writeError(w, r, err)
		return
	}
	respondStatus(w, http.StatusOK, rv)
}

func (h *Handlers) analytics(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, r, h.Q.Analytics(r.Context()))
}

func (h *Handlers) overallStats(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, r, h.Q.OverallStats(r.Context()))
}

func (h *Handlers) propertyStats(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, r, h.Q.PropertyStats(r.Context(), optString(r.URL.Query(), "property_id")))
}
