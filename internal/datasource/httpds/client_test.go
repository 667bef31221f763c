package httpds

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noWait(ctx context.Context, _ time.Duration) error { return ctx.Err() }

func TestNewClient_Defaults(t *testing.T) {
	t.Parallel()

	c := NewClient(Config{InsecureSkipVerify: true})

	assert.Greater(t, c.httpClient.Timeout, time.Duration(0))
	assert.Equal(t, 0, c.maxRetries)
	assert.Greater(t, c.initialBackoff, time.Duration(0))
	assert.Greater(t, c.maxBackoff, time.Duration(0))

	transport, ok := c.httpClient.Transport.(*http.Transport)
	require.True(t, ok, "expected *http.Transport, got %T", c.httpClient.Transport)
	require.NotNil(t, transport.TLSClientConfig)
	assert.True(t, transport.TLSClientConfig.InsecureSkipVerify)
}

// TestGet_RetryOn5xxThenSuccess: two 500s then a 200 with the dump body.
func TestGet_RetryOn5xxThenSuccess(t *testing.T) {
	t.Parallel()

	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&hits, 1) <= 2 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = io.WriteString(w, "INSERT INTO t VALUES (1);")
	}))
	defer srv.Close()

	c := NewClient(Config{MaxRetries: 3})
	c.wait = noWait

	rc, err := NewSource(srv.URL, c).Open(context.Background())
	require.NoError(t, err)
	defer rc.Close()

	body, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "INSERT INTO t VALUES (1);", string(body))
	assert.EqualValues(t, 3, atomic.LoadInt32(&hits))
}

func TestGet_RetriesExhausted(t *testing.T) {
	t.Parallel()

	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient(Config{MaxRetries: 2})
	c.wait = noWait

	_, err := c.Get(context.Background(), srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
	assert.EqualValues(t, 3, atomic.LoadInt32(&hits))
}

func TestGet_NotFoundIsFinal(t *testing.T) {
	t.Parallel()

	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		http.NotFound(w, r)
	}))
	defer srv.Close()

	c := NewClient(Config{MaxRetries: 5})
	c.wait = noWait

	_, err := c.Get(context.Background(), srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
	assert.EqualValues(t, 1, atomic.LoadInt32(&hits))
}

func TestGet_CanceledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewClient(Config{}).Get(ctx, "http://127.0.0.1:1/dump.sql")
	require.ErrorIs(t, err, context.Canceled)
}

func TestBackoffDuration(t *testing.T) {
	t.Parallel()

	initial := 100 * time.Millisecond
	max := time.Second

	assert.Equal(t, initial, backoffDuration(initial, 0, max))
	assert.Equal(t, 200*time.Millisecond, backoffDuration(initial, 1, max))
	assert.Equal(t, 400*time.Millisecond, backoffDuration(initial, 2, max))
	assert.Equal(t, max, backoffDuration(initial, 10, max))
}

func TestSourceName(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "https://x/dump.sql", NewSource("https://x/dump.sql", nil).Name())
}
