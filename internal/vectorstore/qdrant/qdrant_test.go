package qdrant

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorded struct {
	method string
	path   string
	body   map[string]any
	apiKey string
}

func newServer(t *testing.T, handler func(r recorded) (int, string)) (*httptest.Server, *[]recorded) {
	t.Helper()
	var mu sync.Mutex
	var calls []recorded
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		rec := recorded{method: r.Method, path: r.URL.Path, apiKey: r.Header.Get("api-key")}
		if len(data) > 0 {
			assert.NoError(t, json.Unmarshal(data, &rec.body))
		}
		mu.Lock()
		calls = append(calls, rec)
		mu.Unlock()
		status, resp := handler(rec)
		w.WriteHeader(status)
		_, _ = io.WriteString(w, resp)
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func TestInitUpsertSearch(t *testing.T) {
	srv, calls := newServer(t, func(r recorded) (int, string) {
		if r.path == "/collections/tags/points/search" {
			return http.StatusOK, `{"result":[{"id":2,"score":0.9,"payload":{"index":2}},{"id":0,"score":0.4}]}`
		}
		return http.StatusOK, `{"result":true}`
	})
	s := NewStorage(Config{URL: srv.URL + "/", APIKey: "secret", Collection: "tags"})
	ctx := context.Background()

	require.NoError(t, s.Init(ctx, 2))
	require.NoError(t, s.Upsert(ctx, []int{0, 2}, [][]float64{{1, 0}, {0, 1}}))
	res, err := s.Search(ctx, []float64{0, 1}, 2)
	require.NoError(t, err)

	require.Len(t, res, 2)
	assert.Equal(t, 2, res[0].Index)
	assert.InDelta(t, 0.9, res[0].Score, 1e-9)
	assert.Equal(t, 0, res[1].Index, "falls back to the point id")

	require.Len(t, *calls, 3)
	assert.Equal(t, http.MethodPut, (*calls)[0].method)
	assert.Equal(t, "/collections/tags", (*calls)[0].path)
	assert.Equal(t, "secret", (*calls)[0].apiKey)
	points := (*calls)[1].body["points"].([]any)
	assert.Len(t, points, 2)
	assert.EqualValues(t, 2, (*calls)[2].body["limit"])
}

func TestInitAcceptsExistingCollection(t *testing.T) {
	srv, _ := newServer(t, func(recorded) (int, string) { return http.StatusConflict, `{}` })
	s := NewStorage(Config{URL: srv.URL})
	assert.NoError(t, s.Init(context.Background(), 3))
}

func TestClearIgnoresMissingCollection(t *testing.T) {
	srv, _ := newServer(t, func(recorded) (int, string) { return http.StatusNotFound, `{}` })
	s := NewStorage(Config{URL: srv.URL})
	assert.NoError(t, s.Clear(context.Background()))
}

func TestSearchPropagatesServerErrors(t *testing.T) {
	srv, _ := newServer(t, func(recorded) (int, string) { return http.StatusInternalServerError, `{}` })
	s := NewStorage(Config{URL: srv.URL})
	_, err := s.Search(context.Background(), []float64{1}, 1)
	assert.Error(t, err)
}

func TestUpsertValidatesLengths(t *testing.T) {
	s := NewStorage(Config{URL: "http://unused"})
	assert.Error(t, s.Upsert(context.Background(), []int{1}, nil))
	assert.Error(t, s.Init(context.Background(), 0))
}
