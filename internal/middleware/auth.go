package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/2beens/workoutplan/internal/auth"
	"github.com/2beens/workoutplan/internal/telemetry/tracing"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// SessionTokenHeader carries the session token of logged-in requests.
const SessionTokenHeader = "X-WORKOUTPLAN-TOKEN"

//go:generate mockgen -source=$GOFILE -destination=auth_mocks_test.go -package=middleware_test

type sessionResolver interface {
	Session(ctx context.Context, token string) (*auth.Session, error)
}

type AuthMiddlewareHandler struct {
	sessions sessionResolver
}

func NewAuthMiddlewareHandler(sessions sessionResolver) *AuthMiddlewareHandler {
	return &AuthMiddlewareHandler{sessions: sessions}
}

var (
	publicPaths = map[string]bool{
		"/":        true,
		"/version": true,

		"/a/register":               true,
		"/a/login":                  true,
		"/a/password/reset":         true,
		"/a/password/reset/confirm": true,
	}
	// token carrying links sent by mail
	publicPathPrefixes = []string{"/a/activate/", "/a/email/confirm/"}
)

func isPublicPath(path string) bool {
	return publicPaths[path] || hasAnyPrefix(path, publicPathPrefixes)
}

// AuthCheck resolves the session token and stores the user in the request context.
func (h *AuthMiddlewareHandler) AuthCheck() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, span := tracing.GlobalTracer.Start(r.Context(), "middleware.auth")
			defer span.End()

			if r.Method == http.MethodOptions {
				w.Header().Add("Allow", "GET, POST, PUT, DELETE, OPTIONS")
				w.WriteHeader(http.StatusOK)
				span.SetStatus(codes.Ok, "options-ok")
				return
			}

			if isPublicPath(r.URL.Path) {
				span.SetStatus(codes.Ok, "ok")
				next.ServeHTTP(w, r)
				return
			}

			authToken := strings.TrimSpace(r.Header.Get(SessionTokenHeader))
			if authToken == "" {
				log.Tracef("auth: no token for %s %s", r.Method, r.URL.Path)
				span.SetStatus(codes.Error, "missing-auth-token")
				http.Error(w, "no can do", http.StatusUnauthorized)
				return
			}

			session, err := h.sessions.Session(ctx, authToken)
			switch {
			case errors.Is(err, auth.ErrSessionNotFound):
				log.Tracef("auth: unknown session for %s %s", r.Method, r.URL.Path)
				span.SetStatus(codes.Error, "not-logged")
				http.Error(w, "no can do", http.StatusUnauthorized)
				return
			case err != nil:
				log.Errorf("auth: session lookup for %s: %s", r.URL.Path, err)
				span.RecordError(err)
				span.SetStatus(codes.Error, "check-logged-err")
				http.Error(w, "no can do", http.StatusUnauthorized)
				return
			}

			span.SetAttributes(attribute.Int("user.id", session.UserID))
			span.SetStatus(codes.Ok, "ok")
			next.ServeHTTP(w, r.WithContext(auth.WithSession(r.Context(), session.UserID, authToken)))
		})
	}
}
