package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/hupe1980/roomsearch/embedding"
	"github.com/hupe1980/roomsearch/model"
	"github.com/hupe1980/roomsearch/search"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSearcher struct {
	gotQuery embedding.Query
	gotK     int
	result   *search.Result
	err      error
}

func (f *fakeSearcher) Search(_ context.Context, q embedding.Query, k int) (*search.Result, error) {
	f.gotQuery = q
	f.gotK = k
	return f.result, f.err
}

func postJSON(t *testing.T, srv *Server, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/search", strings.NewReader(body))
	req.Header.Set(echoHeaderContentType, "application/json")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

const echoHeaderContentType = "Content-Type"

func TestHandleSearch_Text(t *testing.T) {
	searcher := &fakeSearcher{
		result: &search.Result{
			Items: []model.SearchResult{
				{Key: "kitchen_1", Distance: 0.1, Metadata: map[string]string{"room_type": "Kitchen", "filename": "kitchen_1.jpg"}},
			},
			QueryDuration: 42 * time.Millisecond,
		},
	}
	srv := NewServer(searcher)

	rec := postJSON(t, srv, `{"text":"modern kitchen","k":3}`)
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, embedding.TextQuery("modern kitchen"), searcher.gotQuery)
	assert.Equal(t, 3, searcher.gotK)

	var resp searchResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "kitchen_1", resp.Results[0].Key)
	assert.Equal(t, "Kitchen", resp.Results[0].RoomType)
	assert.InDelta(t, 42.0, resp.QueryMS, 0.001)
}

func TestHandleSearch_DefaultK(t *testing.T) {
	searcher := &fakeSearcher{result: &search.Result{}}
	srv := NewServer(searcher)

	rec := postJSON(t, srv, `{"text":"sofa"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, DefaultK, searcher.gotK)
}

func TestHandleSearch_ImageURL(t *testing.T) {
	searcher := &fakeSearcher{result: &search.Result{}}
	srv := NewServer(searcher)

	rec := postJSON(t, srv, `{"image_url":"https://example.com/room.jpg"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, embedding.ImageRef("https://example.com/room.jpg"), searcher.gotQuery)
}

func TestHandleSearch_BadRequests(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "no input", body: `{}`},
		{name: "both inputs", body: `{"text":"a","image_url":"b"}`},
		{name: "negative k", body: `{"text":"a","k":-1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := NewServer(&fakeSearcher{result: &search.Result{}})
			rec := postJSON(t, srv, tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestHandleSearch_SearcherFailure(t *testing.T) {
	srv := NewServer(&fakeSearcher{err: errors.New("store unreachable")})

	rec := postJSON(t, srv, `{"text":"sofa"}`)
	require.Equal(t, http.StatusBadGateway, rec.Code)

	var resp errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Error)
}

func TestHandleSearch_EmptyResults(t *testing.T) {
	srv := NewServer(&fakeSearcher{result: &search.Result{}})

	rec := postJSON(t, srv, `{"text":"submarine"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	// Explicit empty list, not null.
	assert.Contains(t, rec.Body.String(), `"results":[]`)
	assert.Contains(t, rec.Body.String(), `"count":0`)
}

func TestHandleSearch_Upload(t *testing.T) {
	searcher := &fakeSearcher{result: &search.Result{}}
	srv := NewServer(searcher)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("image", "room.jpg")
	require.NoError(t, err)
	_, err = part.Write([]byte{0xFF, 0xD8, 0xFF})
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/search", &buf)
	req.Header.Set(echoHeaderContentType, mw.FormDataContentType())
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	ref, ok := searcher.gotQuery.(embedding.ImageRef)
	require.True(t, ok)
	assert.NotEmpty(t, string(ref))
}

func TestHealthz(t *testing.T) {
	srv := NewServer(&fakeSearcher{})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ok")
}
