package httpserver

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"guest_reviews/internal/app"
	"guest_reviews/internal/domain"
)

const maxRequestBody = 1 << 20

type Handlers struct {
	Q      *app.QueryService
	Sync   *app.SyncService
	Places domain.PlacesClient // nil when no Google key is configured
	Google *app.Normalizer
}

func NewHandlers(q *app.QueryService, sync *app.SyncService, places domain.PlacesClient) *Handlers {
	return &Handlers{Q: q, Sync: sync, Places: places, Google: app.NewGoogleNormalizer()}
}

type problem struct {
	Type   string       `json:"type"`
	Title  string       `json:"title"`
	Status int          `json:"status"`
	Detail string       `json:"detail,omitempty"`
	Errors []fieldError `json:"errors,omitempty"`
}

// MountHandlers registers the API under prefix ("" mounts at the root).
func (s *Server) MountHandlers(h *Handlers, prefix string) {
	s.mux.Get("/", h.root(prefix))
	s.mux.Get("/health", h.health)
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })

	routes := func(r chi.Router) {
		r.Get("/reviews", h.listReviews)
		r.Get("/reviews/analytics", h.analytics)
		r.Get("/reviews/{id}", h.getReview)
		r.Patch("/reviews/{id}", h.updateReview)

		r.Get("/stats/overall", h.overallStats)
		r.Get("/stats/properties", h.propertyStats)

		r.Get("/properties", h.listProperties)
		r.Get("/properties/{id}", h.getProperty)
		r.Get("/properties/{id}/reviews", h.propertyReviews)
		r.Get("/properties/{id}/stats", h.propertyStatsFor)

		r.Get("/hostaway/reviews", h.hostawayReviews)
		r.Get("/hostaway/properties", h.hostawayProperties)
		r.Post("/hostaway/sync", h.hostawaySync)

		r.Get("/google/search", h.googleSearch)
		r.Get("/google/reviews/{placeId}", h.googleReviews)
	}
	if prefix == "" {
		s.mux.Group(routes)
	} else {
		s.mux.Route(prefix, routes)
	}
}

func writeProblem(w http.ResponseWriter, status int, title, detail string, errs ...fieldError) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail, Errors: errs}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

func writeValidation(w http.ResponseWriter, status int, errs []fieldError) {
	writeProblem(w, status, "Validation Failed", "one or more fields are invalid", errs...)
}

// writeError maps domain errors onto problem responses; internals are only logged.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeProblem(w, http.StatusNotFound, "Not Found", "resource not found")
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrInvalidSortField):
		writeProblem(w, http.StatusBadRequest, "Bad Request", err.Error())
	default:
		log.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "an unexpected error occurred")
	}
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	etag := `W/"` + hex.EncodeToString(sum[:]) + `"`
	return etag, body
}

// respondJSON writes v with a weak ETag, answering 304 when the client already has it.
func respondJSON(w http.ResponseWriter, r *http.Request, v any) {
	etag, body := calcETagAndBody(v)
	if body == nil {
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "failed to encode response")
		return
	}
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag) // include ETag on 304
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write response body")
	}
}

func respondStatus(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}

func decodeJSONBody(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

func respondDecodeError(w http.ResponseWriter, err error) {
	var syntaxError *json.SyntaxError
	var typeError *json.UnmarshalTypeError
	var maxErr *http.MaxBytesError
	switch {
	case errors.As(err, &syntaxError), errors.Is(err, io.ErrUnexpectedEOF):
		writeProblem(w, http.StatusBadRequest, "Bad Request", "malformed JSON payload")
	case errors.As(err, &typeError):
		writeValidation(w, http.StatusUnprocessableEntity, []fieldError{{
			Field: typeError.Field, Message: fmt.Sprintf("must be a %s", typeError.Type), Code: "type",
		}})
	case errors.Is(err, io.EOF):
		writeProblem(w, http.StatusBadRequest, "Bad Request", "request body cannot be empty")
	case errors.As(err, &maxErr):
		writeProblem(w, http.StatusRequestEntityTooLarge, "Payload Too Large", "request body too large")
	default:
		writeProblem(w, http.StatusBadRequest, "Bad Request", "unable to parse request body")
	}
}

// ---- service ----

func (h *Handlers) root(prefix string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, r, map[string]string{
			"name":    "Guest Reviews API",
			"version": "1.0.0",
			"api":     prefix,
			"health":  "/health",
		})
	}
}

func (h *Handlers) health(w http.ResponseWriter, r *http.Request) {
	st := h.Q.StoreStatus(r.Context())
	status := "healthy"
	if !st.Loaded {
		status = "starting"
	}
	respondStatus(w, http.StatusOK, map[string]any{"status": status, "store": st})
}
