package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/conduit/internal/auth"
	"github.com/sakif/conduit/internal/model"
	"github.com/sakif/conduit/internal/repository"
	"github.com/sakif/conduit/internal/service"
)

type articleResponse struct {
	Article *model.Article `json:"article"`
}

// multipleArticlesResponse is one page of a listing. ArticlesCount is the
// number of articles matching the filters across all pages.
type multipleArticlesResponse struct {
	Articles      []model.Article `json:"articles"`
	ArticlesCount int             `json:"articlesCount"`
}

func newMultipleArticlesResponse(page *repository.ArticlePage) multipleArticlesResponse {
	articles := page.Articles
	if articles == nil {
		articles = []model.Article{}
	}
	return multipleArticlesResponse{Articles: articles, ArticlesCount: page.Count}
}

// ArticleHandler serves articles, the feed, and favorites.
type ArticleHandler struct {
	articles *service.ArticleService
}

func NewArticleHandler(articles *service.ArticleService) *ArticleHandler {
	return &ArticleHandler{articles: articles}
}

// HandleList returns articles filtered by tag, author and favoriting user.
// Filters combine with AND.
//
// HTTP: GET /api/articles?tag=&author=&favorited=&limit=&offset=
func (h *ArticleHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	opts, err := listOptions(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	q := r.URL.Query()
	filter := repository.ArticleFilter{
		Tag:         q.Get("tag"),
		Author:      q.Get("author"),
		Favorited:   q.Get("favorited"),
		ListOptions: opts,
	}

	page, err := h.articles.List(r.Context(), filter, auth.ViewerFromContext(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, newMultipleArticlesResponse(page))
}

// HandleFeed returns articles by authors the caller follows.
//
// HTTP: GET /api/articles/feed?limit=&offset=
func (h *ArticleHandler) HandleFeed(w http.ResponseWriter, r *http.Request) {
	opts, err := listOptions(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	page, err := h.articles.Feed(r.Context(), viewerID(r), opts)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, newMultipleArticlesResponse(page))
}

// HandleCreate publishes an article.
//
// HTTP: POST /api/articles
// BODY: {"article": {"title", "description", "body", "tagList"?}}
func (h *ArticleHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req articleRequest
	if err := bind(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	a, err := h.articles.Create(r.Context(), viewerID(r), *req.Article)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, articleResponse{Article: a})
}

// HandleGet returns one article.
//
// HTTP: GET /api/articles/{slug}
func (h *ArticleHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	a, err := h.articles.Get(r.Context(), chi.URLParam(r, "slug"), auth.ViewerFromContext(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, articleResponse{Article: a})
}

// HandleUpdate partially updates an article owned by the caller.
//
// HTTP: PUT /api/articles/{slug}
// BODY: {"article": {"title"?, "description"?, "body"?}}
func (h *ArticleHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var req updateArticleRequest
	if err := bind(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	a, err := h.articles.Update(r.Context(), chi.URLParam(r, "slug"), viewerID(r), *req.Article)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, articleResponse{Article: a})
}

// HandleDelete deletes an article owned by the caller.
//
// HTTP: DELETE /api/articles/{slug}
func (h *ArticleHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.articles.Delete(r.Context(), chi.URLParam(r, "slug"), viewerID(r)); err != nil {
		writeError(w, r, err)
		return
	}
	writeEmpty(w)
}

// HandleFavorite marks the article as a favorite of the caller.
//
// HTTP: POST /api/articles/{slug}/favorite
func (h *ArticleHandler) HandleFavorite(w http.ResponseWriter, r *http.Request) {
	a, err := h.articles.Favorite(r.Context(), chi.URLParam(r, "slug"), viewerID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, articleResponse{Article: a})
}

// HandleUnfavorite removes the favorite mark.
//
// HTTP: DELETE /api/articles/{slug}/favorite
func (h *ArticleHandler) HandleUnfavorite(w http.ResponseWriter, r *http.Request) {
	a, err := h.articles.Unfavorite(r.Context(), chi.URLParam(r, "slug"), viewerID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, articleResponse{Article: a})
}
