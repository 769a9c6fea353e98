package handlers

import (
	"net/http"

	"github.com/baharkarakas/storefront-backend/internal/api/httpx"
	"github.com/baharkarakas/storefront-backend/internal/services"
)

type AuthHandler struct {
	users *services.UserService
	errs  httpx.Errors
}

func NewAuthHandler(users *services.UserService, errs httpx.Errors) *AuthHandler {
	return &AuthHandler{users: users, errs: errs}
}

type signupReq struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupReq
	if err := decodeJSON(w, r, &req); err != nil {
		h.errs.Write(w, r, err)
		return
	}
	s, err := h.users.Register(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		h.errs.Write(w, r, err)
		return
	}
	h.session(w, s)
}

// Login answers unknown emails and wrong passwords identically.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginReq
	if err := decodeJSON(w, r, &req); err != nil {
		h.errs.Write(w, r, err)
		return
	}
	s, err := h.users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.errs.Write(w, r, err)
		return
	}
	h.session(w, s)
}

func (h *AuthHandler) session(w http.ResponseWriter, s services.Session) {
	httpx.OK(w, httpx.M{"token": s.Token, "user": s.User.Public()})
}
