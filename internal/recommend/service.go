// Package recommend answers "what should I read next" either from a known
// title, using the precomputed similarity matrix, or from a free-text
// keyword, using the tag vector space.
package recommend

import (
	"context"
	"fmt"
	"math"
	"strings"

	"manhwarec/internal/catalog"
	"manhwarec/internal/domain"
	"manhwarec/internal/logging"
	"manhwarec/internal/metrics"
	"manhwarec/internal/rank"
	"manhwarec/internal/vectorizer/tfidf"
	"manhwarec/internal/vectorstore"
)

// DefaultTopK is used when a caller passes k <= 0.
const DefaultTopK = 5

// Options tunes the service.
type Options struct {
	TopK int
	// BlurbSentences caps synopsis blurbs. Negative disables blurbs.
	BlurbSentences int
}

// Service implements domain.RecommendService.
type Service struct {
	catalog        *catalog.Catalog
	store          vectorstore.Storage
	vectorizer     *tfidf.Vectorizer
	translator     domain.Translator
	summarizer     domain.Summarizer
	topK           int
	blurbSentences int
	lexical        []map[string]struct{}
}

// NewService wires a recommendation service. A nil translator disables
// translation; a nil summarizer disables blurbs.
func NewService(cat *catalog.Catalog, store vectorstore.Storage, translator domain.Translator, summarizer domain.Summarizer, opts Options) *Service {
	if opts.TopK <= 0 {
		opts.TopK = DefaultTopK
	}
	s := &Service{
		catalog:        cat,
		store:          store,
		vectorizer:     cat.Vectorizer(),
		translator:     translator,
		summarizer:     summarizer,
		topK:           opts.TopK,
		blurbSentences: opts.BlurbSentences,
		lexical:        make([]map[string]struct{}, cat.Len()),
	}
	for i := 0; i < cat.Len(); i++ {
		e := cat.Entry(i)
		s.lexical[i] = s.tokenSet(e.Title + " " + catalog.TagDocument(e))
	}
	return s
}

// Index loads every tag vector of the catalog into the vector store.
func (s *Service) Index(ctx context.Context) error {
	if err := s.store.Clear(ctx); err != nil {
		return fmt.Errorf("clear vector store: %w", err)
	}
	if err := s.store.Init(ctx, s.vectorizer.Dimension()); err != nil {
		return fmt.Errorf("init vector store: %w", err)
	}
	vectors := s.catalog.Vectors()
	ids := make([]int, len(vectors))
	for i := range ids {
		ids[i] = i
	}
	if err := s.store.Upsert(ctx, ids, vectors); err != nil {
		return fmt.Errorf("index tag vectors: %w", err)
	}
	logging.Info().Int("titles", len(ids)).Int("dimension", s.vectorizer.Dimension()).Msg("tag vectors indexed")
	return nil
}

// Titles returns every catalog title in catalog order.
func (s *Service) Titles() []string { return s.catalog.Titles() }

// ByTitle returns the k titles most similar to title by the precomputed
// similarity matrix, excluding title itself.
func (s *Service) ByTitle(ctx context.Context, title string, k int) ([]domain.Recommendation, error) {
	idx, ok := s.catalog.IndexOf(title)
	if !ok {
		metrics.RecommendationsTotal.WithLabelValues("title", "unknown").Inc()
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownTitle, title)
	}
	if k <= 0 {
		k = s.topK
	}
	row := s.catalog.SimilarityRow(idx)
	top := rank.TopK(row, k, func(i int) bool { return i == idx })
	out := make([]domain.Recommendation, len(top))
	for i, j := range top {
		out[i] = s.recommendation(j, row[j])
	}
	metrics.RecommendationsTotal.WithLabelValues("title", "ok").Inc()
	logging.Ctx(ctx).Debug().Str("title", title).Int("results", len(out)).Msg("recommended by title")
	return out, nil
}

// ByKeyword returns the k titles whose tag vectors are closest to keyword.
// When a translator is configured the keyword is translated first; a
// translation failure is logged and the original keyword is used.
func (s *Service) ByKeyword(ctx context.Context, keyword string, k int) ([]domain.Recommendation, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		metrics.RecommendationsTotal.WithLabelValues("keyword", "empty").Inc()
		return nil, domain.ErrEmptyKeyword
	}
	if k <= 0 {
		k = s.topK
	}
	query := s.translate(ctx, keyword)

	vec, err := s.vectorizer.Transform(query)
	if err != nil {
		metrics.RecommendationsTotal.WithLabelValues("keyword", "error").Inc()
		return nil, fmt.Errorf("vectorize keyword: %w", err)
	}
	var results []domain.SearchResult
	if !rank.IsZero(vec) {
		results, err = s.store.Search(ctx, vec, k)
		if err != nil {
			metrics.RecommendationsTotal.WithLabelValues("keyword", "error").Inc()
			return nil, fmt.Errorf("search tag vectors: %w", err)
		}
	}
	if allNegligible(results) {
		metrics.KeywordFallbackTotal.Inc()
		// match against both spellings so untranslated words still count
		results = s.lexicalSearch(keyword+" "+query, k)
	}

	out := make([]domain.Recommendation, 0, len(results))
	for _, r := range results {
		if r.Index < 0 || r.Index >= s.catalog.Len() {
			continue
		}
		out = append(out, s.recommendation(r.Index, r.Score))
	}
	metrics.RecommendationsTotal.WithLabelValues("keyword", "ok").Inc()
	logging.Ctx(ctx).Debug().Str("keyword", keyword).Str("query", query).Int("results", len(out)).Msg("recommended by keyword")
	return out, nil
}

func (s *Service) translate(ctx context.Context, keyword string) string {
	if s.translator == nil {
		return keyword
	}
	translated, err := s.translator.Translate(ctx, keyword)
	if err != nil {
		metrics.TranslationFailuresTotal.Inc()
		logging.Ctx(ctx).Warn().Err(err).Str("translator", s.translator.Name()).Str("keyword", keyword).Msg("translation failed, using keyword as typed")
		return keyword
	}
	return translated
}

func (s *Service) recommendation(i int, score float64) domain.Recommendation {
	e := s.catalog.Entry(i)
	r := domain.Recommendation{Index: i, Title: e.Title, CoverURL: e.CoverURL, Score: score}
	if s.summarizer != nil && s.blurbSentences >= 0 && e.Synopsis != "" {
		if blurb, err := s.summarizer.Summarize(e.Synopsis, s.blurbSentences); err == nil {
			r.Blurb = blurb
		}
	}
	return r
}

func allNegligible(results []domain.SearchResult) bool {
	for _, r := range results {
		if r.Score > 1e-9 {
			return false
		}
	}
	return true
}

// lexicalSearch ranks titles by the Ochiai coefficient between the query
// tokens and each title's title+tag tokens. Titles with no overlap are dropped.
func (s *Service) lexicalSearch(query string, topK int) []domain.SearchResult {
	qset := s.tokenSet(query)
	scores := make([]float64, len(s.lexical))
	for i, set := range s.lexical {
		scores[i] = ochiai(qset, set)
	}
	top := rank.TopK(scores, topK, func(i int) bool { return scores[i] == 0 })
	out := make([]domain.SearchResult, len(top))
	for i, j := range top {
		out[i] = domain.SearchResult{Index: j, Score: scores[j]}
	}
	return out
}

// tokenSet tokenizes text like the tag vectorizer, stopwords dropped.
func (s *Service) tokenSet(text string) map[string]struct{} {
	tokens := s.vectorizer.Tokens(text)
	m := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		m[t] = struct{}{}
	}
	return m
}

// ochiai is |A∩B| / sqrt(|A||B|).
func ochiai(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	inter := 0
	for t := range a {
		if _, ok := b[t]; ok {
			inter++
		}
	}
	return float64(inter) / math.Sqrt(float64(len(a))*float64(len(b)))
}
