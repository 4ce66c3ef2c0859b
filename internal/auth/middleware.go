package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"taskManager/internal/logger"
	"taskManager/internal/models/session"
	"taskManager/internal/repository"
)

type contextKey string

const (
	sessionKey       contextKey = "session"
	lookupFailureKey contextKey = "session_lookup_failed"
)

// SessionLoader resolves a cookie token to a live session. Missing and
// expired sessions come back as repository.ErrNotFound.
type SessionLoader interface {
	Get(ctx context.Context, token string) (*session.Session, error)
}

func WithSession(ctx context.Context, sess *session.Session) context.Context {
	return context.WithValue(ctx, sessionKey, sess)
}

func FromContext(ctx context.Context) (*session.Session, bool) {
	sess, ok := ctx.Value(sessionKey).(*session.Session)
	return sess, ok && sess != nil
}

// LoadSession attaches the caller's session to the request context when
// the cookie names a live one. Requests without one pass through
// anonymous. A failing store also leaves the request anonymous but marks
// it, so RequireSession answers 500 rather than 401.
func LoadSession(cookies Cookies, sessions SessionLoader) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := cookies.Read(r)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			sess, err := sessions.Get(r.Context(), token)
			switch {
			case err == nil:
				r = r.WithContext(WithSession(r.Context(), sess))
			case errors.Is(err, repository.ErrNotFound):
			default:
				logger.Error("HTTP: session lookup failed", err)
				r = r.WithContext(context.WithValue(r.Context(), lookupFailureKey, true))
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireSession rejects anonymous requests before the handler, and so
// before the body, is touched.
func RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := FromContext(r.Context()); !ok {
			if failed, _ := r.Context().Value(lookupFailureKey).(bool); failed {
				writeError(w, http.StatusInternalServerError, "Internal server error")
				return
			}
			logger.HttpRequestInfo(r, "HTTP: anonymous request rejected")
			writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeError(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
