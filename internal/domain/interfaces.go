package domain

import "context"

// Manhwa is a single catalog entry. Its position in the catalog is its
// identity in the similarity matrix and the tag vector matrix.
type Manhwa struct {
	Title    string   `json:"title"`
	CoverURL string   `json:"cover_url"`
	Tags     []string `json:"tags,omitempty"`
	Synopsis string   `json:"synopsis,omitempty"`
}

// Recommendation is a ranked catalog entry shown to the user.
type Recommendation struct {
	Index    int     `json:"-"`
	Title    string  `json:"title"`
	CoverURL string  `json:"cover_url"`
	Score    float64 `json:"score"`
	Blurb    string  `json:"blurb,omitempty"`
}

// SearchResult is a catalog index matched by a vector search.
type SearchResult struct {
	Index int
	Score float64
}

// Ratings are whole stars in MinRating..MaxRating.
const (
	MinRating = 1
	MaxRating = 5
)

// Review is one user review. Reviews are append-only; file order is recency.
type Review struct {
	Username string `json:"username" validate:"required,max=64"`
	Rating   int    `json:"rating" validate:"min=1,max=5"`
	Text     string `json:"review" validate:"max=2000"`
}

// Stats summarises the review page.
type Stats struct {
	TotalVisits   int64   `json:"total_visits"`
	AverageRating float64 `json:"average_rating"`
	TotalReviews  int     `json:"total_reviews"`
}

// Vectorizer converts free text into a vector in the tag space.
type Vectorizer interface {
	Dimension() int
	Transform(text string) ([]float64, error)
}

// Translator translates a user keyword into the language of the tag vocabulary.
type Translator interface {
	Name() string
	Translate(ctx context.Context, text string) (string, error)
}

// Summarizer produces a brief summary of the provided text.
type Summarizer interface {
	Summarize(text string, maxSentences int) (string, error)
}

// RecommendService defines the recommendation operations exposed to front ends.
type RecommendService interface {
	Titles() []string
	ByTitle(ctx context.Context, title string, k int) ([]Recommendation, error)
	ByKeyword(ctx context.Context, keyword string, k int) ([]Recommendation, error)
}

// ReviewService defines the review operations exposed to front ends.
type ReviewService interface {
	Append(ctx context.Context, r Review) error
	Recent(ctx context.Context, n int) ([]Review, error)
	Stats(ctx context.Context) (Stats, error)
	RecordVisit(ctx context.Context) (int64, error)
}
