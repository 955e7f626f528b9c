package auth

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/xid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/conduit/internal/model"
)

func TestViewerFromRequest(t *testing.T) {
	ts := newTestTokenService(t)
	uid := xid.New().String()
	token, err := ts.Issue(uid, t0, time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name       string
		header     string
		wantUserID string
		wantErr    error
	}{
		{name: "no header is anonymous", header: ""},
		{name: "bearer scheme", header: "Bearer " + token, wantUserID: uid},
		{name: "token scheme", header: "Token " + token, wantUserID: uid},
		{name: "lowercase scheme", header: "bearer " + token, wantUserID: uid},
		{name: "unknown scheme", header: "Basic " + token, wantErr: ErrMalformed},
		{name: "no token", header: "Bearer", wantErr: ErrMalformed},
		{name: "garbage token", header: "Bearer nope", wantErr: ErrMalformed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/api/user", nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}

			viewer, err := ViewerFromRequest(r, ts, t0)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.True(t, viewer.IsAnonymous())
				return
			}
			require.NoError(t, err)
			got, _ := viewer.UserID()
			assert.Equal(t, tt.wantUserID, got)
		})
	}
}

func TestViewerFromRequest_ExpiredToken(t *testing.T) {
	ts := newTestTokenService(t)
	token, _ := ts.Issue(xid.New().String(), t0, time.Minute)

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Bearer "+token)

	viewer, err := ViewerFromRequest(r, ts, t0.Add(2*time.Minute))
	assert.True(t, errors.Is(err, ErrExpired))
	assert.True(t, viewer.IsAnonymous())
}

func TestExtract(t *testing.T) {
	ts := newTestTokenService(t)
	uid := xid.New().String()
	token, _ := ts.Issue(uid, t0, time.Hour)

	t.Run("body and viewer", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/api/articles", strings.NewReader(`{"article":{}}`))
		r.Header.Set("Authorization", "Bearer "+token)

		body, viewer, err := Extract(r, ts, t0)
		require.NoError(t, err)
		assert.Equal(t, `{"article":{}}`, string(body))
		got, ok := viewer.UserID()
		assert.True(t, ok)
		assert.Equal(t, uid, got)
	})

	t.Run("bad token degrades to anonymous", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("x"))
		r.Header.Set("Authorization", "Bearer "+token)

		body, viewer, err := Extract(r, ts, t0.Add(2*time.Hour))
		require.NoError(t, err)
		assert.Equal(t, "x", string(body))
		assert.True(t, viewer.IsAnonymous())
		assert.Nil(t, viewer.Arg())
	})
}

func TestRequireAuth(t *testing.T) {
	ts := newTestTokenService(t)
	var seen model.Viewer
	h := RequireAuth(ts)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = ViewerFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	t.Run("missing token is 401", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/user", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), `"unauthorized"`)
	})

	t.Run("valid token passes through", func(t *testing.T) {
		uid := xid.New().String()
		token, _ := ts.Issue(uid, time.Now(), time.Hour)
		r := httptest.NewRequest(http.MethodGet, "/api/user", nil)
		r.Header.Set("Authorization", "Bearer "+token)

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, r)
		assert.Equal(t, http.StatusNoContent, rec.Code)
		got, _ := seen.UserID()
		assert.Equal(t, uid, got)
	})
}

func TestOptionalAuth_InvalidTokenIsAnonymous(t *testing.T) {
	ts := newTestTokenService(t)
	called := false
	h := OptionalAuth(ts)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		assert.True(t, ViewerFromContext(r.Context()).IsAnonymous())
	}))

	r := httptest.NewRequest(http.MethodGet, "/api/articles", nil)
	r.Header.Set("Authorization", "Bearer not-a-token")
	h.ServeHTTP(httptest.NewRecorder(), r)
	assert.True(t, called)
}
