// Package handler is the HTTP layer: it decodes requests, calls one service
// method, and renders the resulting DTO or error. Handlers never touch SQL
// and never decide business rules.
package handler

import (
	"net/http"

	"github.com/sakif/conduit/internal/service"
)

// userDTO is the User representation returned by every /users and /user
// endpoint. It carries a token so clients can stay signed in.
type userDTO struct {
	Email    string  `json:"email"`
	Token    string  `json:"token"`
	Username string  `json:"username"`
	Bio      *string `json:"bio"`
	Image    *string `json:"image"`
}

type userResponse struct {
	User userDTO `json:"user"`
}

func newUserResponse(res *service.AuthResult) userResponse {
	return userResponse{User: userDTO{
		Email:    res.User.Email,
		Token:    res.Token,
		Username: res.User.Username,
		Bio:      res.User.Bio,
		Image:    res.User.Image,
	}}
}

// UserHandler serves registration, login and the current user.
type UserHandler struct {
	users *service.UserService
}

func NewUserHandler(users *service.UserService) *UserHandler {
	return &UserHandler{users: users}
}

// HandleRegister creates an account.
//
// HTTP: POST /api/users
// BODY: {"user": {"email": "...", "username": "...", "password": "..."}}
func (h *UserHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := bind(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	res, err := h.users.Register(r.Context(), *req.User)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, newUserResponse(res))
}

// HandleLogin exchanges credentials for a token. The token is returned in
// the body and also in the Authorization response header.
//
// HTTP: POST /api/users/login
// BODY: {"user": {"email": "...", "password": "..."}}
func (h *UserHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := bind(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	res, err := h.users.Login(r.Context(), *req.User)
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Authorization", "Bearer "+res.Token)
	writeJSON(w, r, http.StatusOK, newUserResponse(res))
}

// HandleCurrent returns the authenticated user.
//
// HTTP: GET /api/user
func (h *UserHandler) HandleCurrent(w http.ResponseWriter, r *http.Request) {
	res, err := h.users.Current(r.Context(), viewerID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, newUserResponse(res))
}

// HandleUpdate applies a partial update to the authenticated user.
//
// HTTP: PUT /api/user
// BODY: {"user": {"email"?, "username"?, "password"?, "bio"?, "image"?}}
func (h *UserHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var req updateUserRequest
	if err := bind(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	res, err := h.users.Update(r.Context(), viewerID(r), *req.User)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, newUserResponse(res))
}
