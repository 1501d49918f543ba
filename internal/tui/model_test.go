package tui

import (
	"context"
	"fmt"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"manhwarec/internal/domain"
)

type fakeRecs struct {
	titles   []string
	gotTitle string
	gotKw    string
	gotCtx   context.Context
}

func (f *fakeRecs) Titles() []string { return f.titles }

func (f *fakeRecs) ByTitle(_ context.Context, title string, _ int) ([]domain.Recommendation, error) {
	f.gotTitle = title
	for _, t := range f.titles {
		if t == title {
			return []domain.Recommendation{{Title: "Lookism", Score: 0.5}}, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", domain.ErrUnknownTitle, title)
}

func (f *fakeRecs) ByKeyword(ctx context.Context, keyword string, _ int) ([]domain.Recommendation, error) {
	f.gotKw = keyword
	f.gotCtx = ctx
	return []domain.Recommendation{{Title: "True Beauty", Score: 0.9}}, nil
}

type fakeReviews struct {
	reviews []domain.Review
	visits  int64
}

func (f *fakeReviews) Append(_ context.Context, r domain.Review) error {
	if r.Username == "" {
		return fmt.Errorf("%w: username is required", domain.ErrInvalidReview)
	}
	f.reviews = append(f.reviews, r)
	return nil
}

func (f *fakeReviews) Recent(_ context.Context, n int) ([]domain.Review, error) {
	if len(f.reviews) > n {
		return f.reviews[len(f.reviews)-n:], nil
	}
	return f.reviews, nil
}

func (f *fakeReviews) Stats(context.Context) (domain.Stats, error) {
	st := domain.Stats{TotalVisits: f.visits, TotalReviews: len(f.reviews)}
	sum := 0
	for _, r := range f.reviews {
		sum += r.Rating
	}
	if len(f.reviews) > 0 {
		st.AverageRating = float64(sum) / float64(len(f.reviews))
	}
	return st, nil
}

func (f *fakeReviews) RecordVisit(context.Context) (int64, error) {
	f.visits++
	return f.visits, nil
}

func newModel() (Model, *fakeRecs, *fakeReviews) {
	return newModelCtx(context.Background())
}

func newModelCtx(ctx context.Context) (Model, *fakeRecs, *fakeReviews) {
	recs := &fakeRecs{titles: []string{"Solo Leveling", "Tower of God", "True Beauty", "Lookism"}}
	revs := &fakeReviews{}
	m := New(ctx, recs, revs, 5)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return next.(Model), recs, revs
}

// send feeds msg to the model and runs the returned command once, feeding its
// result back in.
func send(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, cmd := m.Update(msg)
	m = next.(Model)
	if cmd == nil {
		return m
	}
	switch out := cmd().(type) {
	case resultsMsg, reviewsMsg, submittedMsg:
		return send(t, m, out)
	}
	return m
}

// typeText types into the focused input. Cursor blink commands are dropped.
func typeText(t *testing.T, m Model, s string) Model {
	t.Helper()
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
	return next.(Model)
}

func TestTitleFilterAndRecommend(t *testing.T) {
	m, recs, _ := newModel()
	assert.Len(t, m.filtered, 4)

	m = typeText(t, m, "to")
	assert.Equal(t, []string{"Tower of God"}, m.filtered)

	m = send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, "Tower of God", recs.gotTitle)
	require.Len(t, m.results, 1)
	assert.Equal(t, "Lookism", m.results[0].Title)
	assert.False(t, m.busy)
	assert.Contains(t, m.View(), "Rekomendasi untuk Tower of God")
}

func TestTitleSelectionWraps(t *testing.T) {
	m, recs, _ := newModel()
	m = send(t, m, tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, 3, m.sel)
	m = send(t, m, tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, 0, m.sel)
	m = send(t, m, tea.KeyMsg{Type: tea.KeyDown})
	m = send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, "Tower of God", recs.gotTitle)
}

func TestNoMatchingTitle(t *testing.T) {
	m, recs, _ := newModel()
	m = typeText(t, m, "zzz")
	assert.Empty(t, m.filtered)
	m = send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Empty(t, recs.gotTitle)
	assert.Equal(t, "Judul tidak ditemukan.", m.status)
}

func TestKeywordMode(t *testing.T) {
	m, recs, _ := newModel()
	m = send(t, m, tea.KeyMsg{Type: tea.KeyCtrlT})
	assert.Equal(t, modeKeyword, m.mode)

	m = send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, "Masukkan keyword terlebih dahulu.", m.status)
	assert.Empty(t, recs.gotKw)

	m = typeText(t, m, " romance ")
	m = send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, "romance", recs.gotKw)
	require.Len(t, m.results, 1)
	assert.Equal(t, "True Beauty", m.results[0].Title)

	m = send(t, m, tea.KeyMsg{Type: tea.KeyCtrlT})
	assert.Equal(t, modeTitle, m.mode)
	assert.Empty(t, m.results)
	assert.Len(t, m.filtered, 4)
}

func TestReviewsPageCountsVisitAndSubmits(t *testing.T) {
	m, _, revs := newModel()
	m = send(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, pageReviews, m.page)
	assert.EqualValues(t, 1, m.stats.TotalVisits)
	assert.Contains(t, m.View(), "Belum ada ulasan.")

	m = typeText(t, m, "dina")
	m = send(t, m, tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, fieldRating, m.focus)
	m = send(t, m, tea.KeyMsg{Type: tea.KeyRight})
	m = send(t, m, tea.KeyMsg{Type: tea.KeyRight})
	m = send(t, m, tea.KeyMsg{Type: tea.KeyRight})
	assert.Equal(t, 5, m.rating, "rating stops at 5")
	m = send(t, m, tea.KeyMsg{Type: tea.KeyDown})
	m = typeText(t, m, "Seru")

	m = send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.Len(t, revs.reviews, 1)
	assert.Equal(t, domain.Review{Username: "dina", Rating: 5, Text: "Seru"}, revs.reviews[0])
	assert.Equal(t, "Ulasan berhasil dikirim!", m.status)
	assert.Equal(t, defaultRating, m.rating)
	assert.Empty(t, m.username.Value())
	assert.Equal(t, 1, m.stats.TotalReviews)
	require.Len(t, m.recent, 1)
	assert.Contains(t, m.View(), "Rating Saat Ini: 5.00 dari 1 ulasan")

	m = send(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, pageRecommend, m.page)
	m = send(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.EqualValues(t, 2, m.stats.TotalVisits)
}

func TestReviewValidationError(t *testing.T) {
	m, _, revs := newModel()
	m = send(t, m, tea.KeyMsg{Type: tea.KeyTab})
	m = send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Empty(t, revs.reviews)
	assert.Contains(t, m.status, "username is required")
	assert.False(t, m.busy)
}

func TestRatingLowerBound(t *testing.T) {
	m, _, _ := newModel()
	m = send(t, m, tea.KeyMsg{Type: tea.KeyTab})
	m = send(t, m, tea.KeyMsg{Type: tea.KeyUp})
	m = send(t, m, tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, fieldRating, m.focus)
	for i := 0; i < 4; i++ {
		m = send(t, m, tea.KeyMsg{Type: tea.KeyLeft})
	}
	assert.Equal(t, 1, m.rating)
}

func TestQuit(t *testing.T) {
	m, _, _ := newModel()
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
}

func TestOutOfRangeRatingsRender(t *testing.T) {
	m, _, revs := newModel()
	revs.reviews = []domain.Review{
		{Username: "bob", Rating: -1, Text: "hmm"},
		{Username: "carl", Rating: 1000, Text: "wow"},
	}
	require.NotPanics(t, func() { m = send(t, m, tea.KeyMsg{Type: tea.KeyTab}) })
	view := m.View()
	assert.Contains(t, view, "bob - Rating:")
	assert.NotContains(t, view, "bob - Rating: ★")
	assert.Contains(t, view, "carl - Rating: ★★★★★")
	assert.NotContains(t, view, "★★★★★★")
}

func TestServiceCallsUseProgramContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	m, recs, _ := newModelCtx(ctx)
	m = send(t, m, tea.KeyMsg{Type: tea.KeyCtrlT})
	m = typeText(t, m, "romance")
	send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, recs.gotCtx)
	assert.ErrorIs(t, recs.gotCtx.Err(), context.Canceled)
}
