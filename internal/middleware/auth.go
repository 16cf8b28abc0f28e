package middleware

import (
	"context"
	"net/http"

	"github.com/traintrack/traintrack/internal/apierr"
	"github.com/traintrack/traintrack/internal/auth"
	"github.com/traintrack/traintrack/internal/telemetry/tracing"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/codes"
)

type sessionValidator interface {
	ValidateSession(ctx context.Context, token string) (*auth.User, *auth.Session, error)
}

var _ sessionValidator = (*auth.Service)(nil)

type AuthMiddleware struct {
	validator sessionValidator
}

func NewAuthMiddleware(validator sessionValidator) *AuthMiddleware {
	return &AuthMiddleware{
		validator: validator,
	}
}

// RequireAuth resolves the session-token cookie and injects the
// request-scoped auth context. Missing, unknown and expired tokens all get
// the standardized 401 body. Store failures during resolution surface as a
// generic 500, which conflates "not authenticated" with "backend broken".
func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracing.GlobalTracer.Start(r.Context(), "middleware.auth")
		defer span.End()

		if r.Method == http.MethodOptions {
			w.Header().Add("Allow", "GET, POST, PUT, DELETE, OPTIONS")
			w.WriteHeader(http.StatusOK)
			span.SetStatus(codes.Ok, "options-ok")
			return
		}

		authCtx, err := m.resolve(ctx, r)
		if err != nil {
			log.Errorf("[failed session check] => %s: %s", r.URL.Path, err)
			span.SetStatus(codes.Error, "session-check-err")
			span.RecordError(err)
			apierr.Write(w, apierr.Internal(err))
			return
		}
		if authCtx == nil {
			log.Tracef("[invalid session] [auth middleware] unauthorized => %s", r.URL.Path)
			span.SetStatus(codes.Error, "not-authenticated")
			apierr.Write(w, apierr.Authentication())
			return
		}

		span.SetStatus(codes.Ok, "ok")
		next.ServeHTTP(w, r.WithContext(auth.NewContext(ctx, *authCtx)))
	})
}

// OptionalAuth attaches the auth context when the cookie resolves, and
// passes the request through untouched otherwise.
func (m *AuthMiddleware) OptionalAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracing.GlobalTracer.Start(r.Context(), "middleware.authOptional")
		defer span.End()

		authCtx, err := m.resolve(ctx, r)
		if err != nil {
			log.Errorf("[failed optional session check] => %s: %s", r.URL.Path, err)
			span.RecordError(err)
		}
		if authCtx != nil {
			ctx = auth.NewContext(ctx, *authCtx)
		}

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (m *AuthMiddleware) resolve(ctx context.Context, r *http.Request) (*auth.Context, error) {
	cookie, err := r.Cookie(auth.SessionCookieName)
	if err != nil || cookie.Value == "" {
		return nil, nil
	}

	user, session, err := m.validator.ValidateSession(ctx, cookie.Value)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, nil
	}

	return &auth.Context{
		User:    user,
		Session: session,
	}, nil
}
