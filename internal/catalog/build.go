package catalog

import (
	"errors"
	"fmt"
	"strings"

	"manhwarec/internal/domain"
	"manhwarec/internal/rank"
	"manhwarec/internal/vectorizer/tfidf"
)

// TagDocument is the text a title contributes to the tag vector space.
func TagDocument(m domain.Manhwa) string {
	return strings.Join(m.Tags, " ")
}

// Build fits a tag vectorizer over entries and derives the tag vectors and
// the cosine similarity matrix from it.
func Build(entries []domain.Manhwa) (*Catalog, error) {
	if len(entries) == 0 {
		return nil, errors.New("no catalog entries")
	}
	docs := make([]string, len(entries))
	for i, e := range entries {
		if strings.TrimSpace(e.Title) == "" {
			return nil, fmt.Errorf("entry %d has no title", i)
		}
		docs[i] = TagDocument(e)
	}

	vectorizer := tfidf.New()
	if err := vectorizer.Fit(docs); err != nil {
		return nil, fmt.Errorf("fit vectorizer: %w", err)
	}
	vectors := make([][]float64, len(docs))
	for i, d := range docs {
		v, err := vectorizer.Transform(d)
		if err != nil {
			return nil, err
		}
		vectors[i] = v
	}

	n := len(vectors)
	similarity := make([][]float64, n)
	for i := range similarity {
		similarity[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		similarity[i][i] = 1
		for j := i + 1; j < n; j++ {
			s := rank.Cosine(vectors[i], vectors[j])
			similarity[i][j] = s
			similarity[j][i] = s
		}
	}
	return New(entries, similarity, vectorizer, vectors)
}
