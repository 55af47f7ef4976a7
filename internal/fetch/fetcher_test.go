package fetch

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFetcher(timeout time.Duration) *Fetcher {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	return New(Config{
		Timeout:   timeout,
		UserAgent: "test-bot/1.0",
	}, logger)
}

func TestFetch_ReturnsBody(t *testing.T) {
	f := newTestFetcher(5 * time.Second)
	httpmock.ActivateNonDefault(f.client)
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder(http.MethodGet, "https://amnesia.example/calendar",
		func(req *http.Request) (*http.Response, error) {
			assert.Equal(t, "test-bot/1.0", req.Header.Get("User-Agent"))
			assert.Contains(t, req.Header.Get("Accept"), "text/html")
			return httpmock.NewStringResponse(http.StatusOK, "<html>calendar</html>"), nil
		})

	body, err := f.Fetch(context.Background(), "https://amnesia.example/calendar")

	require.NoError(t, err)
	assert.Equal(t, "<html>calendar</html>", body)
}

func TestFetch_Non2xxStatus(t *testing.T) {
	f := newTestFetcher(5 * time.Second)
	httpmock.ActivateNonDefault(f.client)
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder(http.MethodGet, "https://amnesia.example/calendar",
		httpmock.NewStringResponder(http.StatusServiceUnavailable, "maintenance"))

	_, err := f.Fetch(context.Background(), "https://amnesia.example/calendar")

	require.Error(t, err)
	var fe *FetchError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, http.StatusServiceUnavailable, fe.StatusCode)
	assert.False(t, fe.Timeout)
	assert.Contains(t, fe.Error(), "HTTP 503")
}

func TestFetch_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(500 * time.Millisecond):
		}
	}))
	defer srv.Close()

	f := newTestFetcher(50 * time.Millisecond)

	_, err := f.Fetch(context.Background(), srv.URL)

	require.Error(t, err)
	var fe *FetchError
	require.True(t, errors.As(err, &fe))
	assert.True(t, fe.Timeout)
	assert.Contains(t, fe.Error(), "timed out")
}

func TestFetch_ConnectionError(t *testing.T) {
	f := newTestFetcher(5 * time.Second)
	httpmock.ActivateNonDefault(f.client)
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder(http.MethodGet, "https://amnesia.example/calendar",
		httpmock.NewErrorResponder(errors.New("connection refused")))

	_, err := f.Fetch(context.Background(), "https://amnesia.example/calendar")

	require.Error(t, err)
	var fe *FetchError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, 0, fe.StatusCode)
}
