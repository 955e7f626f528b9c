package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/render"

	"github.com/sakif/conduit/internal/apperror"
	"github.com/sakif/conduit/internal/auth"
	"github.com/sakif/conduit/internal/repository"
	"github.com/sakif/conduit/internal/service"
)

// REQUEST PAYLOADS:
// Every body is wrapped in a single named envelope ({"user": {...}},
// {"article": {...}}, {"comment": {...}}). Each envelope is a render.Binder:
// render.Bind decodes the JSON and then calls Bind, which rejects a missing
// envelope before the service ever sees a nil pointer. Field-level rules live
// on the service input types as `validate` tags.

type registerRequest struct {
	User *service.RegisterInput `json:"user"`
}

func (p *registerRequest) Bind(*http.Request) error { return requireEnvelope("user", p.User != nil) }

type loginRequest struct {
	User *service.LoginInput `json:"user"`
}

func (p *loginRequest) Bind(*http.Request) error { return requireEnvelope("user", p.User != nil) }

type updateUserRequest struct {
	User *service.UpdateUserInput `json:"user"`
}

func (p *updateUserRequest) Bind(*http.Request) error { return requireEnvelope("user", p.User != nil) }

type articleRequest struct {
	Article *service.ArticleInput `json:"article"`
}

func (p *articleRequest) Bind(*http.Request) error { return requireEnvelope("article", p.Article != nil) }

type updateArticleRequest struct {
	Article *service.ArticleUpdateInput `json:"article"`
}

func (p *updateArticleRequest) Bind(*http.Request) error {
	return requireEnvelope("article", p.Article != nil)
}

type commentRequest struct {
	Comment *service.CommentInput `json:"comment"`
}

func (p *commentRequest) Bind(*http.Request) error { return requireEnvelope("comment", p.Comment != nil) }

func requireEnvelope(name string, present bool) error {
	if present {
		return nil
	}
	return apperror.ValidationFailed(name, name+" is required")
}

// bind decodes the request body into v. The body is capped at
// auth.MaxBodyBytes. Malformed JSON is a validation error on "body".
func bind(w http.ResponseWriter, r *http.Request, v render.Binder) error {
	r.Body = http.MaxBytesReader(w, r.Body, auth.MaxBodyBytes)
	if err := render.Bind(r, v); err != nil {
		var appErr *apperror.AppError
		if errors.As(err, &appErr) {
			return appErr
		}
		return apperror.ValidationFailed("body", "request body is not valid JSON: "+err.Error())
	}
	return nil
}

// listOptions parses ?limit= and ?offset=. Absent values take the defaults;
// values that are not non-negative integers are rejected.
func listOptions(r *http.Request) (repository.ListOptions, error) {
	limit, err := nonNegative(r, "limit")
	if err != nil {
		return repository.ListOptions{}, err
	}
	offset, err := nonNegative(r, "offset")
	if err != nil {
		return repository.ListOptions{}, err
	}
	return repository.ListOptions{Limit: limit, Offset: offset}.Normalize(), nil
}

func nonNegative(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, apperror.ValidationFailed(name, name+" must be a non-negative integer")
	}
	return n, nil
}

// viewerID returns the authenticated user's id. Routes that call it are
// mounted behind auth.RequireAuth, so the id is always present there.
func viewerID(r *http.Request) string {
	id, _ := auth.ViewerFromContext(r.Context()).UserID()
	return id
}
