package session

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-chi-calculator/internal/testutil"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
}

// issueToken performs a safe request and returns the csrf cookies and token.
func issueToken(t *testing.T, h http.Handler) ([]*http.Cookie, string) {
	t.Helper()

	w := testutil.ExecuteRequest(httptest.NewRequest(http.MethodGet, "/calculator/", nil), h)
	testutil.CheckResponseCode(t, http.StatusNoContent, w.Code)

	token := w.Header().Get(CSRFHeader)
	require.NotEmpty(t, token)
	require.NotEmpty(t, w.Result().Cookies())
	return w.Result().Cookies(), token
}

func TestAntiForgeryAcceptsMatchingToken(t *testing.T) {
	h := AntiForgery(testSecret, false)(okHandler())
	cookies, token := issueToken(t, h)

	r := httptest.NewRequest(http.MethodPost, "/calculator/press", nil)
	r.Header.Set(CSRFHeader, token)
	testutil.AddCookies(r, cookies)

	w := testutil.ExecuteRequest(r, h)
	testutil.CheckResponseCode(t, http.StatusNoContent, w.Code)
}

func TestAntiForgeryRejectsUnsafeRequestsWithoutToken(t *testing.T) {
	h := AntiForgery(testSecret, false)(okHandler())
	cookies, token := issueToken(t, h)

	t.Run("missing token", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/calculator/press", nil)
		testutil.AddCookies(r, cookies)

		w := testutil.ExecuteRequest(r, h)
		testutil.CheckResponseCode(t, http.StatusForbidden, w.Code)
		assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	})

	t.Run("token from another key", func(t *testing.T) {
		other := AntiForgery([]byte("another-secret-another-secret-xx"), false)(okHandler())
		_, foreign := issueToken(t, other)

		r := httptest.NewRequest(http.MethodPost, "/calculator/press", nil)
		r.Header.Set(CSRFHeader, foreign)
		testutil.AddCookies(r, cookies)

		w := testutil.ExecuteRequest(r, h)
		testutil.CheckResponseCode(t, http.StatusForbidden, w.Code)
	})

	t.Run("token without cookie", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/calculator/press", nil)
		r.Header.Set(CSRFHeader, token)

		w := testutil.ExecuteRequest(r, h)
		testutil.CheckResponseCode(t, http.StatusForbidden, w.Code)
	})
}

func TestAntiForgeryOverHTTPSChecksReferer(t *testing.T) {
	h := AntiForgery(testSecret, true)(okHandler())
	cookies, token := issueToken(t, h)

	post := func(referer string) int {
		r := httptest.NewRequest(http.MethodPost, "/calculator/press", nil)
		r.Header.Set(CSRFHeader, token)
		if referer != "" {
			r.Header.Set("Referer", referer)
		}
		testutil.AddCookies(r, cookies)
		return testutil.ExecuteRequest(r, h).Code
	}

	assert.Equal(t, http.StatusForbidden, post(""))
	assert.Equal(t, http.StatusForbidden, post("https://evil.example.org/"))
	assert.Equal(t, http.StatusNoContent, post("https://example.com/calculator/"))
}
