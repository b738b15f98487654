package session

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-chi-calculator/internal/testutil"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

func captureUserID(id *string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*id = UserIDFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})
}

func TestIdentityIssuesCookieOnFirstVisit(t *testing.T) {
	var got string
	h := NewIdentity(testSecret, 7*24*time.Hour, false).Middleware(captureUserID(&got))

	w := testutil.ExecuteRequest(httptest.NewRequest(http.MethodGet, "/calculator", nil), h)

	testutil.CheckResponseCode(t, http.StatusNoContent, w.Code)
	_, err := uuid.Parse(got)
	require.NoError(t, err, "expected a UUID user id, got %q", got)

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, cookieName, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, cookies[0].SameSite)
	assert.Equal(t, 7*24*60*60, cookies[0].MaxAge)
}

func TestIdentityReusesIdentifierFromCookie(t *testing.T) {
	var first, second string
	identity := NewIdentity(testSecret, time.Hour, false)

	w := testutil.ExecuteRequest(httptest.NewRequest(http.MethodGet, "/", nil), identity.Middleware(captureUserID(&first)))

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	testutil.AddCookies(r, w.Result().Cookies())
	w = testutil.ExecuteRequest(r, identity.Middleware(captureUserID(&second)))

	assert.Equal(t, first, second)
	assert.Empty(t, w.Result().Cookies(), "a valid cookie must not be re-issued")
}

func TestIdentityReplacesForgedCookie(t *testing.T) {
	var first, second string

	w := testutil.ExecuteRequest(httptest.NewRequest(http.MethodGet, "/", nil),
		NewIdentity([]byte("another-secret-another-secret-xx"), time.Hour, false).Middleware(captureUserID(&first)))

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	testutil.AddCookies(r, w.Result().Cookies())
	_ = testutil.ExecuteRequest(r, NewIdentity(testSecret, time.Hour, false).Middleware(captureUserID(&second)))

	require.NotEmpty(t, second)
	assert.NotEqual(t, first, second)
}

func TestUserIDFromContextWhenMissing(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Empty(t, UserIDFromContext(r.Context()))
}
