package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/conduit/internal/auth"
	"github.com/sakif/conduit/internal/model"
	"github.com/sakif/conduit/internal/service"
)

type commentResponse struct {
	Comment *model.Comment `json:"comment"`
}

type multipleCommentsResponse struct {
	Comments []model.Comment `json:"comments"`
}

type tagsResponse struct {
	Tags []string `json:"tags"`
}

// CommentHandler serves comments nested under an article.
type CommentHandler struct {
	comments *service.CommentService
}

func NewCommentHandler(comments *service.CommentService) *CommentHandler {
	return &CommentHandler{comments: comments}
}

// HandleAdd posts a comment.
//
// HTTP: POST /api/articles/{slug}/comments
// BODY: {"comment": {"body": "..."}}
func (h *CommentHandler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	var req commentRequest
	if err := bind(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	c, err := h.comments.Add(r.Context(), chi.URLParam(r, "slug"), viewerID(r), *req.Comment)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, commentResponse{Comment: c})
}

// HandleList returns the article's comments, newest first.
//
// HTTP: GET /api/articles/{slug}/comments
func (h *CommentHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	comments, err := h.comments.List(r.Context(), chi.URLParam(r, "slug"), auth.ViewerFromContext(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if comments == nil {
		comments = []model.Comment{}
	}
	writeJSON(w, r, http.StatusOK, multipleCommentsResponse{Comments: comments})
}

// HandleDelete deletes a comment written by the caller.
//
// HTTP: DELETE /api/articles/{slug}/comments/{id}
func (h *CommentHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	err := h.comments.Delete(r.Context(), chi.URLParam(r, "slug"), chi.URLParam(r, "id"), viewerID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeEmpty(w)
}

// TagHandler serves the tag list.
type TagHandler struct {
	tags *service.TagService
}

func NewTagHandler(tags *service.TagService) *TagHandler {
	return &TagHandler{tags: tags}
}

// HandleList returns every tag in use.
//
// HTTP: GET /api/tags
func (h *TagHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	tags, err := h.tags.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	if tags == nil {
		tags = []string{}
	}
	writeJSON(w, r, http.StatusOK, tagsResponse{Tags: tags})
}
