// Package web serves the recommender's HTML pages and JSON API.
package web

import (
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"

	"manhwarec/internal/domain"
	"manhwarec/internal/metrics"
)

//go:embed templates/*.html
var templatesFS embed.FS

// Options tunes the HTTP surface.
type Options struct {
	// RecentLimit is how many reviews the review page lists.
	RecentLimit int
	// ReviewRateLimit caps review submissions per client IP per minute.
	// Zero or negative disables the limit.
	ReviewRateLimit int
	// TrustProxy rewrites the client address from X-Forwarded-For and
	// X-Real-IP. Without it the limit is keyed on the connection address.
	TrustProxy bool
	// MaxK caps the k query parameter of the API.
	MaxK int
}

// Server holds the handlers of the web UI and API.
type Server struct {
	recs    domain.RecommendService
	reviews domain.ReviewService
	opts    Options
	pages   map[string]*template.Template
}

// New parses the page templates and returns a Server.
func New(recs domain.RecommendService, reviews domain.ReviewService, opts Options) (*Server, error) {
	if opts.RecentLimit <= 0 {
		opts.RecentLimit = 5
	}
	if opts.MaxK <= 0 {
		opts.MaxK = 50
	}
	funcs := template.FuncMap{
		"stars": func(n int) string {
			n = max(0, min(n, domain.MaxRating))
			return strings.Repeat("★", n)
		},
		"seq": func(n int) []int {
			out := make([]int, n)
			for i := range out {
				out[i] = i + 1
			}
			return out
		},
	}
	pages := make(map[string]*template.Template, 2)
	for _, name := range []string{"recommend", "reviews"} {
		t, err := template.New(name).Funcs(funcs).ParseFS(templatesFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parse %s template: %w", name, err)
		}
		pages[name] = t
	}
	return &Server{recs: recs, reviews: reviews, opts: opts, pages: pages}, nil
}

// Routes builds the chi router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(requestIDWithLogging)
	if s.opts.TrustProxy {
		r.Use(chimiddleware.RealIP)
	}
	r.Use(chimiddleware.Recoverer)
	r.Use(requestLogger)

	limitReviews := func(next http.Handler) http.Handler { return next }
	if s.opts.ReviewRateLimit > 0 {
		limitReviews = httprate.LimitByIP(s.opts.ReviewRateLimit, time.Minute)
	}

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/recommend", http.StatusFound)
	})
	r.Get("/recommend", s.recommendPage)
	r.Post("/recommend", s.recommendSubmit)
	r.Get("/reviews", s.reviewsPage)
	r.With(limitReviews).Post("/reviews", s.reviewsSubmit)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/titles", s.apiTitles)
		r.Get("/recommendations/title", s.apiByTitle)
		r.Get("/recommendations/keyword", s.apiByKeyword)
		r.Get("/reviews", s.apiRecentReviews)
		r.With(limitReviews).Post("/reviews", s.apiCreateReview)
		r.Get("/reviews/stats", s.apiReviewStats)
	})

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Method(http.MethodGet, "/metrics", metrics.Handler())
	return r
}
