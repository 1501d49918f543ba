// Package catalog loads the precomputed recommendation artifacts: the title
// catalog, the title-to-title similarity matrix, the tag vectorizer and the
// per-title tag vectors.
package catalog

import (
	"errors"
	"fmt"
	"path/filepath"

	"manhwarec/internal/domain"
	"manhwarec/internal/vectorizer/tfidf"
)

// ErrShape is returned when the artifacts disagree on their dimensions.
var ErrShape = errors.New("artifact shape mismatch")

// Files names the four artifacts inside a data directory.
type Files struct {
	Catalog    string
	Similarity string
	Vectorizer string
	Vectors    string
}

// DefaultFiles are the artifact names written by manhwa-index.
var DefaultFiles = Files{
	Catalog:    "manhwa_catalog.json.gz",
	Similarity: "similarity.json.gz",
	Vectorizer: "tag_vectorizer.json.gz",
	Vectors:    "tag_vectors.json.gz",
}

// Catalog is the immutable, loaded artifact set.
type Catalog struct {
	entries    []domain.Manhwa
	similarity [][]float64
	vectorizer *tfidf.Vectorizer
	vectors    [][]float64
	index      map[string]int
}

// New assembles a Catalog and checks that every artifact agrees on the
// number of titles and the tag-space dimension.
func New(entries []domain.Manhwa, similarity [][]float64, vectorizer *tfidf.Vectorizer, vectors [][]float64) (*Catalog, error) {
	n := len(entries)
	if n == 0 {
		return nil, errors.New("catalog is empty")
	}
	if vectorizer == nil {
		return nil, errors.New("catalog has no vectorizer")
	}
	if len(similarity) != n {
		return nil, fmt.Errorf("%w: %d titles but %d similarity rows", ErrShape, n, len(similarity))
	}
	for i, row := range similarity {
		if len(row) != n {
			return nil, fmt.Errorf("%w: similarity row %d has %d columns, want %d", ErrShape, i, len(row), n)
		}
	}
	if len(vectors) != n {
		return nil, fmt.Errorf("%w: %d titles but %d tag vectors", ErrShape, n, len(vectors))
	}
	dim := vectorizer.Dimension()
	for i, v := range vectors {
		if len(v) != dim {
			return nil, fmt.Errorf("%w: tag vector %d has dimension %d, want %d", ErrShape, i, len(v), dim)
		}
	}

	c := &Catalog{
		entries:    entries,
		similarity: similarity,
		vectorizer: vectorizer,
		vectors:    vectors,
		index:      make(map[string]int, n),
	}
	for i, e := range entries {
		// first occurrence wins for duplicate titles
		if _, ok := c.index[e.Title]; !ok {
			c.index[e.Title] = i
		}
	}
	return c, nil
}

// Load reads the four artifacts from dir.
func Load(dir string, files Files) (*Catalog, error) {
	var entries []domain.Manhwa
	if err := ReadJSON(filepath.Join(dir, files.Catalog), &entries); err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	var similarity [][]float64
	if err := ReadJSON(filepath.Join(dir, files.Similarity), &similarity); err != nil {
		return nil, fmt.Errorf("load similarity: %w", err)
	}
	var state tfidf.State
	if err := ReadJSON(filepath.Join(dir, files.Vectorizer), &state); err != nil {
		return nil, fmt.Errorf("load vectorizer: %w", err)
	}
	vectorizer, err := tfidf.FromState(state)
	if err != nil {
		return nil, fmt.Errorf("load vectorizer: %w", err)
	}
	var vectors [][]float64
	if err := ReadJSON(filepath.Join(dir, files.Vectors), &vectors); err != nil {
		return nil, fmt.Errorf("load tag vectors: %w", err)
	}
	return New(entries, similarity, vectorizer, vectors)
}

// Save writes the four artifacts into dir.
func (c *Catalog) Save(dir string, files Files) error {
	if err := WriteJSON(filepath.Join(dir, files.Catalog), c.entries); err != nil {
		return fmt.Errorf("save catalog: %w", err)
	}
	if err := WriteJSON(filepath.Join(dir, files.Similarity), c.similarity); err != nil {
		return fmt.Errorf("save similarity: %w", err)
	}
	if err := WriteJSON(filepath.Join(dir, files.Vectorizer), c.vectorizer.State()); err != nil {
		return fmt.Errorf("save vectorizer: %w", err)
	}
	if err := WriteJSON(filepath.Join(dir, files.Vectors), c.vectors); err != nil {
		return fmt.Errorf("save tag vectors: %w", err)
	}
	return nil
}

// Len returns the number of titles.
func (c *Catalog) Len() int { return len(c.entries) }

// Entry returns the catalog entry at index i.
func (c *Catalog) Entry(i int) domain.Manhwa { return c.entries[i] }

// IndexOf returns the catalog index of title.
func (c *Catalog) IndexOf(title string) (int, bool) {
	i, ok := c.index[title]
	return i, ok
}

// Titles returns every title in catalog order.
func (c *Catalog) Titles() []string {
	out := make([]string, len(c.entries))
	for i, e := range c.entries {
		out[i] = e.Title
	}
	return out
}

// SimilarityRow returns the precomputed similarity of title i to every title.
// The returned slice must not be modified.
func (c *Catalog) SimilarityRow(i int) []float64 { return c.similarity[i] }

// Vectorizer returns the fitted tag vectorizer.
func (c *Catalog) Vectorizer() *tfidf.Vectorizer { return c.vectorizer }

// Vectors returns the per-title tag vectors. The result must not be modified.
func (c *Catalog) Vectors() [][]float64 { return c.vectors }
