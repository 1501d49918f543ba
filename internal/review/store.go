// Package review stores user reviews in an append-only CSV file and derives
// the review page statistics from it.
package review

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"manhwarec/internal/domain"
)

// ErrMalformed is returned when the review file cannot be parsed.
var ErrMalformed = errors.New("malformed review file")

// DefaultRecent is the number of reviews Recent returns for n <= 0.
const DefaultRecent = 5

var header = []string{"username", "rating", "review"}

// Store is a CSV-backed review store. Row order is insertion order.
// Visits are counted in a sidecar file next to the CSV.
type Store struct {
	path       string
	visitsPath string
	mu         sync.Mutex
}

// NewStore returns a store for the CSV file at path. The file is created on
// the first Append.
func NewStore(path string) *Store {
	return &Store{path: path, visitsPath: path + ".visits"}
}

// Path returns the CSV file path.
func (s *Store) Path() string { return s.path }

// Append validates r and appends it as one CSV row. The header is written
// when the file is new or empty.
func (s *Store) Append(_ context.Context, r domain.Review) error {
	r.Username = strings.TrimSpace(r.Username)
	if err := Validate(r); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return err
	}

	w := csv.NewWriter(f)
	if info.Size() == 0 {
		if err := w.Write(header); err != nil {
			return err
		}
	}
	if err := w.Write([]string{r.Username, strconv.Itoa(r.Rating), r.Text}); err != nil {
		return err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("append review: %w", err)
	}
	return f.Sync()
}

// List returns every review in file order. A missing file is an empty list.
func (s *Store) List(_ context.Context) ([]domain.Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readAll()
}

// Recent returns the last n reviews in file order.
func (s *Store) Recent(ctx context.Context, n int) ([]domain.Review, error) {
	if n <= 0 {
		n = DefaultRecent
	}
	all, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	if len(all) > n {
		all = all[len(all)-n:]
	}
	return all, nil
}

// Stats returns visit count, average rating (0 with no reviews) and review count.
func (s *Store) Stats(ctx context.Context) (domain.Stats, error) {
	all, err := s.List(ctx)
	if err != nil {
		return domain.Stats{}, err
	}
	visits, err := s.Visits(ctx)
	if err != nil {
		return domain.Stats{}, err
	}
	st := domain.Stats{TotalVisits: visits, TotalReviews: len(all)}
	if len(all) > 0 {
		sum := 0
		for _, r := range all {
			sum += r.Rating
		}
		st.AverageRating = float64(sum) / float64(len(all))
	}
	return st, nil
}

// RecordVisit increments and returns the persisted visit counter.
func (s *Store) RecordVisit(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, err := s.readVisits()
	if err != nil {
		return 0, err
	}
	n++
	if dir := filepath.Dir(s.visitsPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return 0, err
		}
	}
	tmp := s.visitsPath + ".tmp"
	if err := os.WriteFile(tmp, []byte(strconv.FormatInt(n, 10)+"\n"), 0o644); err != nil {
		return 0, err
	}
	if err := os.Rename(tmp, s.visitsPath); err != nil {
		return 0, err
	}
	return n, nil
}

// Visits returns the persisted visit counter.
func (s *Store) Visits(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readVisits()
}

func (s *Store) readVisits() (int64, error) {
	data, err := os.ReadFile(s.visitsPath)
	if errors.Is(err, os.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	text := strings.TrimSpace(string(data))
	if text == "" {
		return 0, nil
	}
	n, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: visit counter %q", ErrMalformed, text)
	}
	return n, nil
}

func (s *Store) readAll() ([]domain.Review, error) {
	f, err := os.Open(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = len(header)
	var out []domain.Review
	first := true
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		if first {
			first = false
			if isHeader(rec) {
				continue
			}
		}
		rating, err := strconv.Atoi(strings.TrimSpace(rec[1]))
		if err != nil {
			line, _ := r.FieldPos(1)
			return nil, fmt.Errorf("%w: line %d: rating %q is not an integer", ErrMalformed, line, rec[1])
		}
		if rating < domain.MinRating || rating > domain.MaxRating {
			line, _ := r.FieldPos(1)
			return nil, fmt.Errorf("%w: line %d: rating %d is outside %d..%d", ErrMalformed, line, rating, domain.MinRating, domain.MaxRating)
		}
		out = append(out, domain.Review{Username: rec[0], Rating: rating, Text: rec[2]})
	}
	return out, nil
}

func isHeader(rec []string) bool {
	for i, h := range header {
		if strings.TrimSpace(rec[i]) != h {
			return false
		}
	}
	return true
}
