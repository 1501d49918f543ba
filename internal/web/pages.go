package web

import (
	"bytes"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"manhwarec/internal/domain"
	"manhwarec/internal/logging"
	"manhwarec/internal/metrics"
)

const (
	modeTitle   = "title"
	modeKeyword = "keyword"
)

type recommendView struct {
	Page      string
	Mode      string
	Titles    []string
	Selected  string
	Keyword   string
	Submitted bool
	Results   []domain.Recommendation
	Error     string
}

type reviewsView struct {
	Page   string
	Form   domain.Review
	Stats  domain.Stats
	Recent []domain.Review
	Notice string
	Error  string
}

func normalizeMode(m string) string {
	if m == modeKeyword {
		return modeKeyword
	}
	return modeTitle
}

func (s *Server) recommendPage(w http.ResponseWriter, r *http.Request) {
	view := recommendView{
		Page:   "recommend",
		Mode:   normalizeMode(r.URL.Query().Get("mode")),
		Titles: s.recs.Titles(),
	}
	s.render(w, r, http.StatusOK, "recommend", view)
}

func (s *Server) recommendSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	view := recommendView{
		Page:      "recommend",
		Mode:      normalizeMode(r.PostFormValue("mode")),
		Titles:    s.recs.Titles(),
		Selected:  r.PostFormValue("title"),
		Keyword:   r.PostFormValue("keyword"),
		Submitted: true,
	}
	var err error
	if view.Mode == modeTitle {
		view.Results, err = s.recs.ByTitle(r.Context(), view.Selected, 0)
	} else {
		view.Results, err = s.recs.ByKeyword(r.Context(), view.Keyword, 0)
	}
	status := http.StatusOK
	if err != nil {
		var msg string
		status, _, msg = classify(r, err)
		view.Error = pageMessage(err, msg)
	}
	s.render(w, r, status, "recommend", view)
}

func (s *Server) reviewsPage(w http.ResponseWriter, r *http.Request) {
	if _, err := s.reviews.RecordVisit(r.Context()); err != nil {
		logging.Ctx(r.Context()).Warn().Err(err).Msg("record visit failed")
	}
	view := reviewsView{Page: "reviews", Form: domain.Review{Rating: 3}}
	if r.URL.Query().Get("submitted") == "1" {
		view.Notice = "Ulasan berhasil dikirim!"
	}
	s.renderReviews(w, r, http.StatusOK, view)
}

func (s *Server) reviewsSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	rating, _ := strconv.Atoi(r.PostFormValue("rating"))
	rv := domain.Review{
		Username: strings.TrimSpace(r.PostFormValue("username")),
		Rating:   rating,
		Text:     r.PostFormValue("review"),
	}
	if err := s.reviews.Append(r.Context(), rv); err != nil {
		status, _, msg := classify(r, err)
		reviewOutcome(err)
		s.renderReviews(w, r, status, reviewsView{Page: "reviews", Form: rv, Error: pageMessage(err, msg)})
		return
	}
	metrics.ReviewsSubmittedTotal.WithLabelValues("ok").Inc()
	http.Redirect(w, r, "/reviews?submitted=1", http.StatusSeeOther)
}

func (s *Server) renderReviews(w http.ResponseWriter, r *http.Request, status int, view reviewsView) {
	ctx := r.Context()
	var err error
	if view.Stats, err = s.reviews.Stats(ctx); err == nil {
		view.Recent, err = s.reviews.Recent(ctx, s.opts.RecentLimit)
	}
	if err != nil {
		logging.Ctx(ctx).Error().Err(err).Msg("load reviews failed")
		view.Error = "Ulasan tidak dapat dimuat."
		if status < http.StatusInternalServerError {
			status = http.StatusInternalServerError
		}
	}
	s.render(w, r, status, "reviews", view)
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, page string, data any) {
	var buf bytes.Buffer
	if err := s.pages[page].ExecuteTemplate(&buf, "layout", data); err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Str("page", page).Msg("render failed")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// pageMessage turns a service error into text for the HTML pages.
func pageMessage(err error, fallback string) string {
	switch {
	case errors.Is(err, domain.ErrUnknownTitle):
		return "Judul tidak ditemukan."
	case errors.Is(err, domain.ErrEmptyKeyword):
		return "Masukkan keyword terlebih dahulu."
	case errors.Is(err, domain.ErrInvalidReview):
		return fallback
	default:
		return "Terjadi kesalahan. Silakan coba lagi."
	}
}

func reviewOutcome(err error) {
	if errors.Is(err, domain.ErrInvalidReview) {
		metrics.ReviewsSubmittedTotal.WithLabelValues("invalid").Inc()
		return
	}
	metrics.ReviewsSubmittedTotal.WithLabelValues("error").Inc()
}
