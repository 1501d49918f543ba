package recommend

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"manhwarec/internal/catalog"
	"manhwarec/internal/domain"
	"manhwarec/internal/summarizer"
	"manhwarec/internal/vectorstore/memory"
)

var entries = []domain.Manhwa{
	{Title: "Solo Leveling", CoverURL: "solo.jpg", Tags: []string{"action", "fantasy", "dungeon", "hunter"},
		Synopsis: "A weak hunter gains a system. The hunter levels up alone. Dungeons open across the world."},
	{Title: "Tower of God", CoverURL: "tog.jpg", Tags: []string{"action", "fantasy", "tower"}},
	{Title: "The Beginning After the End", CoverURL: "tbate.jpg", Tags: []string{"fantasy", "reincarnation", "magic"}},
	{Title: "True Beauty", CoverURL: "tb.jpg", Tags: []string{"romance", "school", "comedy"}},
	{Title: "Lookism", CoverURL: "lookism.jpg", Tags: []string{"action", "school", "drama"}},
	{Title: "Omniscient Reader", CoverURL: "orv.jpg", Tags: []string{"action", "fantasy", "apocalypse"}},
	{Title: "Noblesse", CoverURL: "noblesse.jpg", Tags: []string{"action", "vampire", "school"}},
}

type fakeTranslator struct {
	out string
	err error
	got string
}

func (f *fakeTranslator) Name() string { return "fake" }
func (f *fakeTranslator) Translate(_ context.Context, text string) (string, error) {
	f.got = text
	return f.out, f.err
}

func newService(t *testing.T, tr domain.Translator, opts Options) *Service {
	t.Helper()
	cat, err := catalog.Build(entries)
	require.NoError(t, err)
	svc := NewService(cat, memory.NewStorage(), tr, summarizer.NewFrequencySummarizer(), opts)
	require.NoError(t, svc.Index(context.Background()))
	return svc
}

func TestByTitleReturnsNeighboursInDescendingOrder(t *testing.T) {
	svc := newService(t, nil, Options{})

	recs, err := svc.ByTitle(context.Background(), "Solo Leveling", 0)
	require.NoError(t, err)
	require.Len(t, recs, DefaultTopK)

	for _, r := range recs {
		assert.NotEqual(t, "Solo Leveling", r.Title, "query title is excluded")
	}
	for i := 1; i < len(recs); i++ {
		assert.GreaterOrEqual(t, recs[i-1].Score, recs[i].Score)
	}
	top := []string{recs[0].Title, recs[1].Title}
	assert.ElementsMatch(t, []string{"Tower of God", "Omniscient Reader"}, top)
	assert.Equal(t, "tog.jpg", recs[0].CoverURL)
}

func TestByTitleHonoursK(t *testing.T) {
	svc := newService(t, nil, Options{TopK: 3})

	recs, err := svc.ByTitle(context.Background(), "True Beauty", 0)
	require.NoError(t, err)
	assert.Len(t, recs, 3)

	recs, err = svc.ByTitle(context.Background(), "True Beauty", 100)
	require.NoError(t, err)
	assert.Len(t, recs, len(entries)-1)
}

func TestByTitleUnknown(t *testing.T) {
	svc := newService(t, nil, Options{})
	_, err := svc.ByTitle(context.Background(), "Not A Manhwa", 5)
	assert.ErrorIs(t, err, domain.ErrUnknownTitle)

	_, err = svc.ByTitle(context.Background(), "", 5)
	assert.ErrorIs(t, err, domain.ErrUnknownTitle)
}

func TestByKeywordRanksTagMatches(t *testing.T) {
	svc := newService(t, nil, Options{})

	recs, err := svc.ByKeyword(context.Background(), "  school romance ", 2)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "True Beauty", recs[0].Title)
	assert.Greater(t, recs[0].Score, recs[1].Score)
}

func TestByKeywordEmpty(t *testing.T) {
	svc := newService(t, nil, Options{})
	_, err := svc.ByKeyword(context.Background(), "   ", 5)
	assert.ErrorIs(t, err, domain.ErrEmptyKeyword)
}

func TestByKeywordTranslatesFirst(t *testing.T) {
	tr := &fakeTranslator{out: "vampire"}
	svc := newService(t, tr, Options{})

	recs, err := svc.ByKeyword(context.Background(), "vampir", 1)
	require.NoError(t, err)
	assert.Equal(t, "vampir", tr.got)
	require.Len(t, recs, 1)
	assert.Equal(t, "Noblesse", recs[0].Title)
}

func TestByKeywordTranslationFailureUsesKeyword(t *testing.T) {
	tr := &fakeTranslator{err: errors.New("service down")}
	svc := newService(t, tr, Options{})

	recs, err := svc.ByKeyword(context.Background(), "reincarnation", 1)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "The Beginning After the End", recs[0].Title)
}

func TestByKeywordFallsBackToTitleOverlap(t *testing.T) {
	svc := newService(t, nil, Options{})

	// "lookism" is a title word, not a tag, so the tag space has no match
	recs, err := svc.ByKeyword(context.Background(), "lookism", 3)
	require.NoError(t, err)
	require.NotEmpty(t, recs)
	assert.Equal(t, "Lookism", recs[0].Title)
	assert.Greater(t, recs[0].Score, 0.0)
}

func TestByKeywordNoMatch(t *testing.T) {
	svc := newService(t, nil, Options{})
	recs, err := svc.ByKeyword(context.Background(), "qwertyuiop", 3)
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestByKeywordIgnoresStopwords(t *testing.T) {
	svc := newService(t, nil, Options{})
	// "of" only appears in "Tower of God" and is a stopword
	recs, err := svc.ByKeyword(context.Background(), "of", 3)
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestRecommendationsCarryBlurb(t *testing.T) {
	svc := newService(t, nil, Options{BlurbSentences: 1})

	recs, err := svc.ByKeyword(context.Background(), "dungeon hunter", 1)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "Solo Leveling", recs[0].Title)
	assert.NotEmpty(t, recs[0].Blurb)
}

func TestNegativeBlurbSentencesDisablesBlurbs(t *testing.T) {
	svc := newService(t, nil, Options{BlurbSentences: -1})

	recs, err := svc.ByKeyword(context.Background(), "dungeon hunter", 1)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "Solo Leveling", recs[0].Title)
	assert.Empty(t, recs[0].Blurb)
}

func TestTitles(t *testing.T) {
	svc := newService(t, nil, Options{})
	titles := svc.Titles()
	require.Len(t, titles, len(entries))
	assert.Equal(t, "Solo Leveling", titles[0])
}
