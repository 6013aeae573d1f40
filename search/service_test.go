package search

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hupe1980/roomsearch"
	"github.com/hupe1980/roomsearch/embedding"
	"github.com/hupe1980/roomsearch/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEmbedder struct {
	vec  []float32
	err  error
	role embedding.Role
}

func (f *fakeEmbedder) Embed(_ context.Context, _ embedding.Query, role embedding.Role) ([]float32, error) {
	f.role = role
	return f.vec, f.err
}

type fakeQuerier struct {
	items []model.SearchResult
	err   error
	gotK  int
	delay time.Duration
}

func (f *fakeQuerier) Query(_ context.Context, _ []float32, k int) ([]model.SearchResult, error) {
	f.gotK = k
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	return f.items, f.err
}

func TestSearch(t *testing.T) {
	embedder := &fakeEmbedder{vec: []float32{1, 0}}
	store := &fakeQuerier{
		items: []model.SearchResult{
			{Key: "kitchen_1", Distance: 0.02},
			{Key: "kitchen_9", Distance: 0.3},
		},
		delay: time.Millisecond,
	}
	svc := NewService(embedder, store)

	res, err := svc.Search(context.Background(), embedding.TextQuery("modern kitchen"), 5)
	require.NoError(t, err)

	// Queries are embedded under the query role, and the store order is
	// passed through untouched.
	assert.Equal(t, embedding.RoleQuery, embedder.role)
	assert.Equal(t, 5, store.gotK)
	require.Len(t, res.Items, 2)
	assert.Equal(t, "kitchen_1", res.Items[0].Key)
	assert.Greater(t, res.QueryDuration, time.Duration(0))
}

func TestSearch_InvalidK(t *testing.T) {
	svc := NewService(&fakeEmbedder{}, &fakeQuerier{})

	for _, k := range []int{0, -1} {
		_, err := svc.Search(context.Background(), embedding.TextQuery("x"), k)
		assert.ErrorIs(t, err, roomsearch.ErrInvalidK)
	}
}

func TestSearch_EmbedFailure(t *testing.T) {
	embedder := &fakeEmbedder{err: errors.New("model unreachable")}
	svc := NewService(embedder, &fakeQuerier{})

	res, err := svc.Search(context.Background(), embedding.TextQuery("x"), 3)
	assert.Nil(t, res)

	var searchErr *roomsearch.SearchError
	require.ErrorAs(t, err, &searchErr)
	assert.Equal(t, "embed", searchErr.Stage)
	assert.ErrorIs(t, err, embedder.err)
}

func TestSearch_QueryFailure(t *testing.T) {
	store := &fakeQuerier{err: errors.New("store unreachable")}
	svc := NewService(&fakeEmbedder{vec: []float32{1}}, store)

	res, err := svc.Search(context.Background(), embedding.TextQuery("x"), 3)
	assert.Nil(t, res)

	var searchErr *roomsearch.SearchError
	require.ErrorAs(t, err, &searchErr)
	assert.Equal(t, "query", searchErr.Stage)
}
