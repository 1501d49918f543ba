package web

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/goccy/go-json"

	"manhwarec/internal/domain"
	"manhwarec/internal/logging"
	"manhwarec/internal/metrics"
)

const maxBodyBytes = 64 << 10

var errBadParameter = errors.New("bad parameter")

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// classify maps an error to an HTTP status, an error code and a client-safe message.
func classify(r *http.Request, err error) (int, string, string) {
	switch {
	case errors.Is(err, domain.ErrUnknownTitle):
		return http.StatusNotFound, "UNKNOWN_TITLE", err.Error()
	case errors.Is(err, domain.ErrEmptyKeyword):
		return http.StatusBadRequest, "EMPTY_KEYWORD", err.Error()
	case errors.Is(err, domain.ErrInvalidReview):
		return http.StatusBadRequest, "VALIDATION_ERROR", err.Error()
	case errors.Is(err, errBadParameter):
		return http.StatusBadRequest, "INVALID_PARAMETER", err.Error()
	default:
		logging.Ctx(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		return http.StatusInternalServerError, "INTERNAL_ERROR", "internal error"
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, code, msg := classify(r, err)
	writeJSON(w, status, map[string]apiError{"error": {Code: code, Message: msg}})
}

func (s *Server) parseK(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	k, err := strconv.Atoi(raw)
	if err != nil || k < 1 || k > s.opts.MaxK {
		return 0, fmt.Errorf("%w: %s must be an integer between 1 and %d", errBadParameter, name, s.opts.MaxK)
	}
	return k, nil
}

func (s *Server) apiTitles(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"titles": s.recs.Titles()})
}

func (s *Server) apiByTitle(w http.ResponseWriter, r *http.Request) {
	k, err := s.parseK(r, "k")
	if err != nil {
		writeError(w, r, err)
		return
	}
	recs, err := s.recs.ByTitle(r.Context(), r.URL.Query().Get("title"), k)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": emptyIfNil(recs)})
}

func (s *Server) apiByKeyword(w http.ResponseWriter, r *http.Request) {
	k, err := s.parseK(r, "k")
	if err != nil {
		writeError(w, r, err)
		return
	}
	recs, err := s.recs.ByKeyword(r.Context(), r.URL.Query().Get("q"), k)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": emptyIfNil(recs)})
}

func (s *Server) apiRecentReviews(w http.ResponseWriter, r *http.Request) {
	n, err := s.parseK(r, "limit")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if n == 0 {
		n = s.opts.RecentLimit
	}
	recent, err := s.reviews.Recent(r.Context(), n)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if recent == nil {
		recent = []domain.Review{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"reviews": recent})
}

func (s *Server) apiCreateReview(w http.ResponseWriter, r *http.Request) {
	var rv domain.Review
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&rv); err != nil {
		writeError(w, r, fmt.Errorf("%w: request body must be a JSON review", errBadParameter))
		return
	}
	rv.Username = strings.TrimSpace(rv.Username)
	if err := s.reviews.Append(r.Context(), rv); err != nil {
		reviewOutcome(err)
		writeError(w, r, err)
		return
	}
	metrics.ReviewsSubmittedTotal.WithLabelValues("ok").Inc()
	writeJSON(w, http.StatusCreated, rv)
}

func (s *Server) apiReviewStats(w http.ResponseWriter, r *http.Request) {
	st, err := s.reviews.Stats(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func emptyIfNil(recs []domain.Recommendation) []domain.Recommendation {
	if recs == nil {
		return []domain.Recommendation{}
	}
	return recs
}
