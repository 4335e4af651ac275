package httpserver

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"guest_reviews/internal/domain"
)

// hostawayReviews fetches live from the upstream; failures degrade to an empty list.
func (h *Handlers) hostawayReviews(w http.ResponseWriter, r *http.Request) {
	q, errs := buildHostawayQuery(r.URL.Query(), time.Now())
	if errs != nil {
		writeValidation(w, http.StatusBadRequest, errs)
		return
	}
	out, err := h.Sync.FetchLive(r.Context(), q)
	if err != nil {
		log.Warn().Err(err).Msg("live hostaway fetch failed")
		out = []domain.Review{}
	}
	respondJSON(w, r, out)
}

func (h *Handlers) hostawayProperties(w http.ResponseWriter, r *http.Request) {
	out, err := h.Sync.Listings(r.Context())
	if err != nil {
		log.Warn().Err(err).Msg("hostaway listings fetch failed")
		out = []map[string]any{}
	}
	respondJSON(w, r, out)
}

func (h *Handlers) hostawaySync(w http.ResponseWriter, r *http.Request) {
	res, err := h.Sync.Sync(r.Context(), optString(r.URL.Query(), "property_id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	respondStatus(w, http.StatusOK, res)
}

func (h *Handlers) googleSearch(w http.ResponseWriter, r *http.Request) {
	query := optString(r.URL.Query(), "query")
	if query == nil {
		writeValidation(w, http.StatusBadRequest, []fieldError{{Field: "query", Message: "is required", Code: "required"}})
		return
	}
	if h.Places == nil {
		writeProblem(w, http.StatusServiceUnavailable, "Service Unavailable", "Google Places is not configured")
		return
	}
	id, err := h.Places.SearchPlace(r.Context(), *query)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeProblem(w, http.StatusNotFound, "Not Found", "place not found")
	case err != nil:
		log.Warn().Err(err).Msg("google place search failed")
		writeProblem(w, http.StatusServiceUnavailable, "Service Unavailable", "place search unavailable")
	default:
		respondJSON(w, r, map[string]string{"place_id": id})
	}
}

// googleReviews returns normalized place reviews; failures degrade to an empty list.
func (h *Handlers) googleReviews(w http.ResponseWriter, r *http.Request) {
	placeID := chi.URLParam(r, "placeId")
	out := []domain.Review{}
	if h.Places != nil {
		lang := r.URL.Query().Get("language")
		raws, err := h.Places.GetPlaceReviews(r.Context(), placeID, lang)
		if err != nil {
			log.Warn().Err(err).Str("place_id", placeID).Msg("google reviews fetch failed")
		} else {
			out = h.Google.NormalizeBatchFor(placeID, "", raws)
		}
	}
	respondJSON(w, r, out)
}
