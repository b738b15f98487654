package session

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"

	"go-chi-calculator/internal/handlers"
	"go-chi-calculator/internal/observability"
)

const (
	cookieName = "calculator"
	userIDKey  = "user_id"
)

type contextKey string

const UserIDKey contextKey = "user_id"

// Identity assigns every browser a stable user identifier kept in a signed
// cookie.
type Identity struct {
	store *sessions.CookieStore
}

func NewIdentity(secret []byte, maxAge time.Duration, secure bool) *Identity {
	store := sessions.NewCookieStore(secret)
	store.Options = &sessions.Options{
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	store.MaxAge(int(maxAge.Seconds()))

	return &Identity{store: store}
}

// Middleware resolves the caller's identifier, issuing a new one when the
// cookie is missing or fails verification, and stores it on the request
// context.
func (i *Identity) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		// A cookie that fails to decode still yields a fresh session.
		sess, err := i.store.Get(r, cookieName)
		if err != nil {
			observability.LoggerWithTrace(ctx).Warn("discarding unreadable session cookie",
				zap.Error(err),
				zap.String("request_id", observability.RequestIDFromContext(ctx)),
			)
		}

		id, _ := sess.Values[userIDKey].(string)
		if id == "" {
			id = uuid.NewString()
			sess.Values[userIDKey] = id
			if err := sess.Save(r, w); err != nil {
				observability.LoggerWithTrace(ctx).Error("saving session cookie",
					zap.Error(err),
					zap.String("request_id", observability.RequestIDFromContext(ctx)),
				)
				handlers.WriteError(w, http.StatusInternalServerError, "could not establish session")
				return
			}
		}

		next.ServeHTTP(w, r.WithContext(ContextWithUserID(ctx, id)))
	})
}

func ContextWithUserID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, UserIDKey, id)
}

func UserIDFromContext(ctx context.Context) string {
	id, ok := ctx.Value(UserIDKey).(string)
	if !ok {
		return ""
	}
	return id
}
