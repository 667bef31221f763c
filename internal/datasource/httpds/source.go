package httpds

import (
	"context"
	"io"

	"github.com/jpedro002/middleware/internal/datasource"
)

// Source is a dump served at a fixed URL.
type Source struct {
	url    string
	client *Client
}

var _ datasource.Source = (*Source)(nil)

// NewSource returns a Source that downloads url with client. A nil client
// gets NewClient(Config{}).
func NewSource(url string, client *Client) *Source {
	if client == nil {
		client = NewClient(Config{})
	}
	return &Source{url: url, client: client}
}

// Name returns the URL.
func (s *Source) Name() string { return s.url }

// Open performs the GET and returns the response body.
func (s *Source) Open(ctx context.Context) (io.ReadCloser, error) {
	resp, err := s.client.Get(ctx, s.url)
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}
