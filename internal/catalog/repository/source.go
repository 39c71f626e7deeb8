package repository

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

var ErrUnexpectedStatus = errors.New("catalog source returned unexpected status")

// ProductSource opens the raw catalog CSV.
type ProductSource interface {
	Open(ctx context.Context) (io.ReadCloser, error)
	Describe() string
}

type FileSource struct {
	Path string
}

func NewFileSource(path string) *FileSource {
	return &FileSource{Path: path}
}

func (s *FileSource) Open(ctx context.Context) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog file %s: %w", s.Path, err)
	}
	return f, nil
}

func (s *FileSource) Describe() string {
	return "file:" + s.Path
}

// HTTPSource fetches the CSV from a static URL, such as a published
// spreadsheet export.
type HTTPSource struct {
	URL        string
	HTTPClient *http.Client
}

func NewHTTPSource(url string, timeout time.Duration) *HTTPSource {
	return &HTTPSource{
		URL: url,
		HTTPClient: &http.Client{
			Timeout: timeout,
		},
	}
}

func (s *HTTPSource) Open(ctx context.Context) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create catalog request: %w", err)
	}
	req.Header.Set("Accept", "text/csv")

	resp, err := s.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch catalog: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, fmt.Errorf("%w: %d from %s", ErrUnexpectedStatus, resp.StatusCode, s.URL)
	}
	return resp.Body, nil
}

func (s *HTTPSource) Describe() string {
	return "http:" + s.URL
}
