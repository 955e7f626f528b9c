package auth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sakif/conduit/internal/model"
)

// contextKey is an unexported type for context keys, so no other package
// can read or shadow the viewer stored by this one.
type contextKey string

const viewerKey contextKey = "viewer"

// MaxBodyBytes caps how much of a request body Extract will read.
const MaxBodyBytes = 1 << 20

// RequireAuth rejects requests without a valid bearer token with 401 and
// stores the authenticated viewer in the context otherwise.
//
// Use it on mutations and on the feed: anything that needs an identity.
func RequireAuth(tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			viewer, err := ViewerFromRequest(r, tokens, time.Now())
			if err != nil || viewer.IsAnonymous() {
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("WWW-Authenticate", `Bearer realm="conduit"`)
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = io.WriteString(w, `{"error":"unauthorized","message":"valid authentication required"}`)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithViewer(r.Context(), viewer)))
		})
	}
}

// OptionalAuth resolves the viewer if a valid token is present and falls back
// to the anonymous viewer on any failure. It never rejects a request.
//
// Public reads use this: an expired token degrades to an anonymous view
// instead of an error.
func OptionalAuth(tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			viewer, err := ViewerFromRequest(r, tokens, time.Now())
			if err != nil {
				viewer = model.Anonymous()
			}
			next.ServeHTTP(w, r.WithContext(WithViewer(r.Context(), viewer)))
		})
	}
}

// WithViewer returns a copy of ctx carrying viewer.
func WithViewer(ctx context.Context, viewer model.Viewer) context.Context {
	return context.WithValue(ctx, viewerKey, viewer)
}

// ViewerFromContext returns the viewer stored by the middleware, or the
// anonymous viewer if none was stored.
func ViewerFromContext(ctx context.Context) model.Viewer {
	v, _ := ctx.Value(viewerKey).(model.Viewer)
	return v
}

// ViewerFromRequest resolves the viewer from the Authorization header.
//
// A missing header yields the anonymous viewer and no error. A present but
// unusable header yields the anonymous viewer and the reason, which callers
// can log or turn into a 401.
//
// Both "Bearer <token>" and the RealWorld client's "Token <token>" schemes
// are accepted.
func ViewerFromRequest(r *http.Request, tokens *TokenService, now time.Time) (model.Viewer, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return model.Anonymous(), nil
	}

	scheme, token, ok := strings.Cut(header, " ")
	if !ok || (!strings.EqualFold(scheme, "Bearer") && !strings.EqualFold(scheme, "Token")) {
		return model.Anonymous(), &TokenError{Kind: ErrMalformed, Cause: errors.New("unsupported authorization scheme")}
	}

	subject, err := tokens.Verify(strings.TrimSpace(token), now)
	if err != nil {
		return model.Anonymous(), err
	}
	return model.Authenticated(subject), nil
}

// Extract reads the full request body and resolves the viewer in one step.
// Token failures are not errors here: they degrade to the anonymous viewer,
// exactly as OptionalAuth does. Only a body read failure is returned.
//
// The routes do not call Extract. They use its two-step form instead:
// OptionalAuth or RequireAuth puts the viewer in the context, and the
// handler's bind decodes the body under the same MaxBodyBytes cap. Extract
// is for callers outside that middleware chain that need both at once.
func Extract(r *http.Request, tokens *TokenService, now time.Time) ([]byte, model.Viewer, error) {
	var body []byte
	if r.Body != nil {
		b, err := io.ReadAll(io.LimitReader(r.Body, MaxBodyBytes))
		if err != nil {
			return nil, model.Anonymous(), fmt.Errorf("auth: reading request body: %w", err)
		}
		body = b
	}

	viewer, err := ViewerFromRequest(r, tokens, now)
	if err != nil {
		viewer = model.Anonymous()
	}
	return body, viewer, nil
}
