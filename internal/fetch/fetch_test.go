package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestURL_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("<html><body><h1>Acme</h1></body></html>"))
	}))
	defer server.Close()

	result, err := URL(context.Background(), server.URL, nil)
	require.NoError(t, err)
	assert.Equal(t, server.URL, result.URL)
	assert.Contains(t, result.Body, "<h1>Acme</h1>")
	assert.Equal(t, http.StatusOK, result.StatusCode)
}

func TestURL_InvalidURL(t *testing.T) {
	_, err := URL(context.Background(), "not-a-valid-url", nil)
	require.Error(t, err)

	var fetchErr *Error
	assert.ErrorAs(t, err, &fetchErr)
	assert.Contains(t, err.Error(), "invalid URL")
}

func TestURL_RateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	result, err := URL(context.Background(), server.URL, nil)
	require.Error(t, err)
	assert.NotNil(t, result)
	assert.Equal(t, http.StatusTooManyRequests, result.StatusCode)
	assert.Equal(t, KindRateLimited, KindOf(err))
}

func TestURL_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	result, err := URL(context.Background(), server.URL, nil)
	require.Error(t, err)
	assert.NotNil(t, result) // Result is returned even on error
	assert.Equal(t, http.StatusNotFound, result.StatusCode)
	assert.Equal(t, KindHTTP, KindOf(err))
}

func TestURL_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	_, err := URL(context.Background(), server.URL, &Options{Timeout: 20 * time.Millisecond})
	require.Error(t, err)
	assert.Equal(t, KindTimeout, KindOf(err))
}

func TestURL_TLSFailure(t *testing.T) {
	// httptest TLS server uses a self-signed certificate the default client
	// does not trust.
	server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	_, err := URL(context.Background(), server.URL, nil)
	require.Error(t, err)
	assert.Equal(t, KindTLS, KindOf(err))
}

func TestKindOf_UnknownError(t *testing.T) {
	assert.Equal(t, KindOther, KindOf(assert.AnError))
}

func TestExtractMainText_WithMainElement(t *testing.T) {
	html := `
	<html>
		<body>
			<nav>Navigation</nav>
			<main>
				<h1>About Acme</h1>
				<p>We build rockets.</p>
			</main>
			<footer>Footer</footer>
		</body>
	</html>`

	text, err := ExtractMainText(html, BrandPageSelectors())
	require.NoError(t, err)
	assert.Contains(t, text, "About Acme")
	assert.Contains(t, text, "We build rockets")
	assert.NotContains(t, text, "Navigation")
	assert.NotContains(t, text, "Footer")
}

func TestExtractMainText_NewsSelectors(t *testing.T) {
	html := `
	<html>
		<body>
			<div class="sidebar">Trending junk</div>
			<div class="article-body">
				<h2>Acme expands westward</h2>
				<p>The company announced a new region.</p>
			</div>
		</body>
	</html>`

	text, err := ExtractMainText(html, NewsArticleSelectors())
	require.NoError(t, err)
	assert.Contains(t, text, "Acme expands westward")
	assert.NotContains(t, text, "Trending junk")
}

func TestExtractMainText_ReviewNoiseRemoved(t *testing.T) {
	html := `
	<html>
		<body>
			<div class="reviews">
				<p>Great place to work.</p>
				<form>Apply here</form>
			</div>
		</body>
	</html>`

	text, err := ExtractMainText(html, ReviewPageSelectors(), ReviewNoiseSelectors()...)
	require.NoError(t, err)
	assert.Contains(t, text, "Great place to work")
	assert.NotContains(t, text, "Apply here")
}

func TestExtractMainText_FallbackToBody(t *testing.T) {
	html := `<html><body><div>Some content here.</div></body></html>`

	text, err := ExtractMainText(html, BrandPageSelectors())
	require.NoError(t, err)
	assert.Contains(t, text, "Some content here")
}

func TestShouldUseBrowser(t *testing.T) {
	assert.True(t, ShouldUseBrowser("tiny"))
	long := make([]byte, MinContentLength+1)
	for i := range long {
		long[i] = 'a'
	}
	assert.False(t, ShouldUseBrowser(string(long)))
}
