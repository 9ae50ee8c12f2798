package ingestion

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serveFile(t *testing.T, name string) *httptest.Server {
	t.Helper()
	content, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write(content)
	}))
	t.Cleanup(server.Close)
	return server
}

func TestIngestFromURL_Success(t *testing.T) {
	server := serveFile(t, "greenhouse_posting.html")

	text, metadata, err := IngestFromURL(context.Background(), server.URL+"/jobs/1", URLOptions{})
	require.NoError(t, err)

	assert.Contains(t, text, "About the role")
	assert.Contains(t, text, "- 5+ years writing Go in production")
	assert.Contains(t, text, "- PostgreSQL and Kafka")
	assert.NotContains(t, text, "Careers home")
	assert.NotContains(t, text, "First name")
	assert.NotContains(t, text, "Acme Inc.")

	require.NotNil(t, metadata)
	assert.Equal(t, server.URL+"/jobs/1", metadata.URL)
	assert.Equal(t, "Senior Go Engineer, Payments", metadata.Title)
	assert.Equal(t, "unknown", metadata.Platform)
	assert.Equal(t, computeHash(text), metadata.Hash)
}

func TestIngestFromURL_InvalidURL(t *testing.T) {
	for _, raw := range []string{"not-a-url", "ftp://example.com/job"} {
		_, _, err := IngestFromURL(context.Background(), raw, URLOptions{})
		require.Error(t, err, raw)
		assert.ErrorIs(t, err, ErrInvalidURL)
	}
}

func TestIngestFromURL_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	_, _, err := IngestFromURL(context.Background(), server.URL, URLOptions{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrHTTPRequestFailed)
	assert.Contains(t, err.Error(), "500")
}

func TestIngestFromURL_EmptyPage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("<html><body><script>render()</script></body></html>"))
	}))
	defer server.Close()

	_, _, err := IngestFromURL(context.Background(), server.URL, URLOptions{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrContentExtractionFailed)
}
