package session

import (
	"crypto/sha256"
	"net/http"

	"github.com/gorilla/csrf"
	"go.uber.org/zap"

	"go-chi-calculator/internal/handlers"
	"go-chi-calculator/internal/observability"
)

// CSRFHeader carries the anti-forgery token for non-form clients. Every
// response behind the middleware also exposes the current token under it.
const CSRFHeader = "X-CSRF-Token"

// CSRFField is the form field the rendered page submits the token in.
const CSRFField = "gorilla.csrf.Token"

// AntiForgery rejects unsafe requests that do not echo the token bound to the
// caller's CSRF cookie. The key is derived from secret so one SESSION_SECRET
// serves both cookies. Without secure, requests are treated as plain HTTP and
// the HTTPS Referer check is skipped.
func AntiForgery(secret []byte, secure bool) func(http.Handler) http.Handler {
	key := sha256.Sum256(append([]byte("csrf:"), secret...))

	protect := csrf.Protect(key[:],
		csrf.Secure(secure),
		csrf.HttpOnly(true),
		csrf.Path("/"),
		csrf.SameSite(csrf.SameSiteLaxMode),
		csrf.RequestHeader(CSRFHeader),
		csrf.FieldName(CSRFField),
		csrf.ErrorHandler(http.HandlerFunc(rejectForgery)),
	)

	return func(next http.Handler) http.Handler {
		protected := protect(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set(CSRFHeader, csrf.Token(r))
			next.ServeHTTP(w, r)
		}))

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !secure {
				r = csrf.PlaintextHTTPRequest(r)
			}
			protected.ServeHTTP(w, r)
		})
	}
}

func rejectForgery(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	observability.LoggerWithTrace(ctx).Warn("rejected request without valid csrf token",
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.NamedError("reason", csrf.FailureReason(r)),
		zap.String("request_id", observability.RequestIDFromContext(ctx)),
	)
	handlers.WriteError(w, http.StatusForbidden, "invalid csrf token")
}
