// Package httpapi exposes the search service over HTTP for interactive
// front-ends. It is a thin JSON/multipart adapter, not a UI.
package httpapi

import (
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"time"

	"github.com/hupe1980/roomsearch"
	"github.com/hupe1980/roomsearch/embedding"
	"github.com/hupe1980/roomsearch/search"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// DefaultK is the result count when the request does not specify one.
const DefaultK = 5

// Searcher runs one query. *search.Service implements it.
type Searcher interface {
	Search(ctx context.Context, q embedding.Query, k int) (*search.Result, error)
}

// Server serves the search API.
type Server struct {
	echo        *echo.Echo
	searcher    Searcher
	datasetRoot string
	logger      *roomsearch.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithDatasetRoot enables best-effort local image path resolution in
// responses.
func WithDatasetRoot(root string) Option {
	return func(s *Server) {
		s.datasetRoot = root
	}
}

// WithLogger sets the logger. Defaults to a noop logger.
func WithLogger(l *roomsearch.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewServer creates a Server around the given searcher.
func NewServer(searcher Searcher, opts ...Option) *Server {
	s := &Server{
		searcher: searcher,
		logger:   roomsearch.NoopLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())

	e.GET("/healthz", s.handleHealth)
	e.POST("/search", s.handleSearch)

	s.echo = e
	return s
}

// Start blocks serving on addr until Shutdown.
func (s *Server) Start(addr string) error {
	return s.echo.Start(addr)
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// Handler exposes the underlying handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

type searchRequest struct {
	Text     string `json:"text" form:"text"`
	ImageURL string `json:"image_url" form:"image_url"`
	K        int    `json:"k" form:"k"`
}

type searchResultItem struct {
	Key       string  `json:"key"`
	Score     float32 `json:"score"`
	RoomType  string  `json:"room_type,omitempty"`
	Filename  string  `json:"filename,omitempty"`
	ImagePath string  `json:"image_path,omitempty"`
}

type searchResponse struct {
	Results []searchResultItem `json:"results"`
	Count   int                `json:"count"`
	QueryMS float64            `json:"query_ms"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// handleSearch accepts either a JSON/form body with exactly one of "text"
// and "image_url", or a multipart upload with an "image" file part.
func (s *Server) handleSearch(c echo.Context) error {
	var req searchRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "malformed request"})
	}
	if req.K == 0 {
		req.K = DefaultK
	}
	if req.K < 1 {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "k must be positive"})
	}

	query, cleanup, err := s.buildQuery(c, req)
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	}
	defer cleanup()

	res, err := s.searcher.Search(c.Request().Context(), query, req.K)
	if err != nil {
		s.logger.ErrorContext(c.Request().Context(), "search request failed", "error", err)
		return c.JSON(http.StatusBadGateway, errorResponse{Error: err.Error()})
	}

	items := make([]searchResultItem, 0, len(res.Items))
	for _, r := range res.Items {
		item := searchResultItem{
			Key:      r.Key,
			Score:    r.Distance,
			RoomType: r.Metadata["room_type"],
			Filename: r.Metadata["filename"],
		}
		if path, ok := r.ImagePath(s.datasetRoot); ok {
			if _, err := os.Stat(path); err == nil {
				item.ImagePath = path
			}
		}
		items = append(items, item)
	}

	return c.JSON(http.StatusOK, searchResponse{
		Results: items,
		Count:   len(items),
		QueryMS: float64(res.QueryDuration) / float64(time.Millisecond),
	})
}

// buildQuery turns the request into the query union. An uploaded image wins
// over body fields; otherwise exactly one of text and image_url must be set.
func (s *Server) buildQuery(c echo.Context, req searchRequest) (embedding.Query, func(), error) {
	noop := func() {}

	if file, err := c.FormFile("image"); err == nil && file != nil {
		path, cleanup, err := spoolUpload(file)
		if err != nil {
			return nil, noop, err
		}
		return embedding.ImageRef(path), cleanup, nil
	}

	switch {
	case req.Text != "" && req.ImageURL != "":
		return nil, noop, errors.New("provide either text or image_url, not both")
	case req.Text != "":
		return embedding.TextQuery(req.Text), noop, nil
	case req.ImageURL != "":
		return embedding.ImageRef(req.ImageURL), noop, nil
	default:
		return nil, noop, errors.New("provide text, image_url, or an image upload")
	}
}

// spoolUpload writes the multipart file to a temp file so the resolver can
// read it like any local image.
func spoolUpload(file *multipart.FileHeader) (string, func(), error) {
	src, err := file.Open()
	if err != nil {
		return "", func() {}, err
	}
	defer func() { _ = src.Close() }()

	tmp, err := os.CreateTemp("", "roomsearch-upload-*")
	if err != nil {
		return "", func() {}, err
	}

	if _, err := io.Copy(tmp, src); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return "", func() {}, err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return "", func() {}, err
	}

	return tmp.Name(), func() { _ = os.Remove(tmp.Name()) }, nil
}
