package tfidf

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var corpus = []string{
	"action fantasy martial arts",
	"romance school comedy",
	"action school",
}

func TestFitBuildsSortedVocabulary(t *testing.T) {
	v := New()
	require.NoError(t, v.Fit(corpus))

	st := v.State()
	assert.Equal(t, []string{"action", "arts", "comedy", "fantasy", "martial", "romance", "school"}, st.Vocabulary)
	assert.Equal(t, 7, v.Dimension())

	// "action" appears in 2 of 3 documents
	assert.InDelta(t, math.Log(4.0/3.0)+1, st.IDF[0], 1e-12)
	// "arts" appears in 1 of 3
	assert.InDelta(t, math.Log(4.0/2.0)+1, st.IDF[1], 1e-12)
}

func TestTransformIsNormalised(t *testing.T) {
	v := New()
	require.NoError(t, v.Fit(corpus))

	vec, err := v.Transform("Action and FANTASY")
	require.NoError(t, err)

	norm := 0.0
	for _, x := range vec {
		norm += x * x
	}
	assert.InDelta(t, 1.0, norm, 1e-9)
	assert.Greater(t, vec[3], vec[0], "rarer term gets the larger weight")
}

func TestTransformUnknownTermsGivesZeroVector(t *testing.T) {
	v := New()
	require.NoError(t, v.Fit(corpus))

	vec, err := v.Transform("dragons spaceships")
	require.NoError(t, err)
	for _, x := range vec {
		assert.Zero(t, x)
	}
}

func TestTransformBeforeFit(t *testing.T) {
	_, err := New().Transform("action")
	assert.ErrorIs(t, err, ErrNotPrepared)
}

func TestFitRejectsEmptyCorpus(t *testing.T) {
	assert.Error(t, New().Fit(nil))
	assert.Error(t, New().Fit([]string{"the and of"}))
}

func TestStateRoundTripPreservesVectors(t *testing.T) {
	v := New()
	require.NoError(t, v.Fit(corpus))

	restored, err := FromState(v.State())
	require.NoError(t, err)

	a, err := v.Transform("school romance")
	require.NoError(t, err)
	b, err := restored.Transform("school romance")
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestFromStateValidates(t *testing.T) {
	_, err := FromState(State{})
	assert.Error(t, err)

	_, err = FromState(State{Vocabulary: []string{"a", "b"}, IDF: []float64{1}})
	assert.Error(t, err)

	_, err = FromState(State{Vocabulary: []string{"x", "x"}, IDF: []float64{1, 1}})
	assert.Error(t, err)
}

func TestTokensDropsIndonesianStopwords(t *testing.T) {
	v := New()
	assert.Equal(t, []string{"cerita", "sekolah"}, v.Tokens("cerita di sekolah yang"))
}
