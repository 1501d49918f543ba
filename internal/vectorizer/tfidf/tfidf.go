package tfidf

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"

	"manhwarec/internal/domain"
)

var _ domain.Vectorizer = (*Vectorizer)(nil)

// ErrNotPrepared is returned by Transform before Fit or FromState.
var ErrNotPrepared = errors.New("tfidf vectorizer not prepared")

// State is the serialisable form of a fitted vectorizer.
type State struct {
	Vocabulary []string  `json:"vocabulary"`
	IDF        []float64 `json:"idf"`
	Stopwords  []string  `json:"stopwords,omitempty"`
}

// Vectorizer turns tag documents into L2-normalised TF-IDF vectors.
// It is immutable once fitted and safe for concurrent Transform calls.
type Vectorizer struct {
	vocabulary   map[string]int
	terms        []string
	idf          []float64
	prepared     bool
	tokenPattern *regexp.Regexp
	stopwords    map[string]struct{}
}

var tokenPattern = regexp.MustCompile(`[\p{L}\p{N}]+(?:['’][\p{L}\p{N}]+)*`)

// New creates an unfitted vectorizer with the default stopword list.
func New() *Vectorizer {
	return &Vectorizer{
		vocabulary:   make(map[string]int),
		tokenPattern: tokenPattern,
		stopwords:    toSet(defaultStopwords),
	}
}

// FromState restores a fitted vectorizer.
func FromState(s State) (*Vectorizer, error) {
	if len(s.Vocabulary) == 0 {
		return nil, errors.New("tfidf state has empty vocabulary")
	}
	if len(s.Vocabulary) != len(s.IDF) {
		return nil, fmt.Errorf("tfidf state mismatch: %d terms, %d idf weights", len(s.Vocabulary), len(s.IDF))
	}
	v := &Vectorizer{
		vocabulary:   make(map[string]int, len(s.Vocabulary)),
		terms:        append([]string(nil), s.Vocabulary...),
		idf:          append([]float64(nil), s.IDF...),
		tokenPattern: tokenPattern,
		stopwords:    toSet(s.Stopwords),
		prepared:     true,
	}
	if s.Stopwords == nil {
		v.stopwords = toSet(defaultStopwords)
	}
	for i, term := range v.terms {
		if _, dup := v.vocabulary[term]; dup {
			return nil, fmt.Errorf("tfidf state has duplicate term %q", term)
		}
		v.vocabulary[term] = i
	}
	return v, nil
}

// State exports the fitted vocabulary and weights.
func (v *Vectorizer) State() State {
	stop := make([]string, 0, len(v.stopwords))
	for w := range v.stopwords {
		stop = append(stop, w)
	}
	sort.Strings(stop)
	return State{
		Vocabulary: append([]string(nil), v.terms...),
		IDF:        append([]float64(nil), v.idf...),
		Stopwords:  stop,
	}
}

// Fit builds the vocabulary and IDF weights from the corpus.
func (v *Vectorizer) Fit(corpus []string) error {
	if len(corpus) == 0 {
		return errors.New("empty corpus for TF-IDF fit")
	}
	df := make(map[string]int)
	for _, text := range corpus {
		seen := make(map[string]struct{})
		for _, tok := range v.tokenize(text) {
			if _, ok := seen[tok]; ok {
				continue
			}
			seen[tok] = struct{}{}
			df[tok]++
		}
	}
	terms := make([]string, 0, len(df))
	for term := range df {
		terms = append(terms, term)
	}
	if len(terms) == 0 {
		return errors.New("no tokens found in corpus")
	}
	sort.Strings(terms)

	n := float64(len(corpus))
	v.terms = terms
	v.vocabulary = make(map[string]int, len(terms))
	v.idf = make([]float64, len(terms))
	for i, term := range terms {
		v.vocabulary[term] = i
		// smoothed idf
		v.idf[i] = math.Log((1+n)/(1+float64(df[term]))) + 1.0
	}
	v.prepared = true
	return nil
}

// Dimension returns the vocabulary size.
func (v *Vectorizer) Dimension() int { return len(v.terms) }

// Transform computes the TF-IDF vector of text. Text with no vocabulary
// terms yields a zero vector.
func (v *Vectorizer) Transform(text string) ([]float64, error) {
	if !v.prepared {
		return nil, ErrNotPrepared
	}
	vec := make([]float64, len(v.terms))
	for _, tok := range v.tokenize(text) {
		if idx, ok := v.vocabulary[tok]; ok {
			vec[idx]++
		}
	}
	norm := 0.0
	for i, count := range vec {
		if count == 0 {
			continue
		}
		vec[i] = count * v.idf[i]
		norm += vec[i] * vec[i]
	}
	if norm == 0 {
		return vec, nil
	}
	norm = math.Sqrt(norm)
	for i := range vec {
		vec[i] /= norm
	}
	return vec, nil
}

// Tokens returns the lower-cased, stopword-filtered tokens of text.
func (v *Vectorizer) Tokens(text string) []string {
	return v.tokenize(text)
}

func (v *Vectorizer) tokenize(text string) []string {
	raw := v.tokenPattern.FindAllString(strings.ToLower(text), -1)
	out := raw[:0]
	for _, t := range raw {
		if _, isStop := v.stopwords[t]; isStop {
			continue
		}
		out = append(out, t)
	}
	return out
}

func toSet(words []string) map[string]struct{} {
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}

// English stopwords plus the common Indonesian function words that show up
// when a keyword is searched untranslated.
var defaultStopwords = []string{
	"a", "an", "the", "and", "or", "but", "if", "then", "else", "for", "to", "of", "in", "on", "at", "by", "with", "as", "is", "are", "was", "were", "be", "been", "being", "it", "this", "that", "these", "those", "from", "up", "down", "over", "under", "again", "further", "than", "so", "such", "into", "about", "between", "through", "during", "before", "after", "above", "below", "out", "off", "own", "same", "too", "very", "can", "will", "just", "don", "should", "now",
	"yang", "dan", "di", "ke", "dari", "dengan", "untuk", "atau", "ini", "itu", "ada", "juga", "tidak", "saya", "aku",
}
