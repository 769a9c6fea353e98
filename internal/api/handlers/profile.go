package handlers

import (
	"net/http"

	"github.com/baharkarakas/storefront-backend/internal/api/httpx"
	"github.com/baharkarakas/storefront-backend/internal/middleware"
	"github.com/baharkarakas/storefront-backend/internal/services"
)

type ProfileHandler struct {
	users *services.UserService
	errs  httpx.Errors
}

func NewProfileHandler(users *services.UserService, errs httpx.Errors) *ProfileHandler {
	return &ProfileHandler{users: users, errs: errs}
}

func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	u, err := h.users.Profile(r.Context(), middleware.FromCtx(r.Context()).UserID)
	if err != nil {
		h.errs.Write(w, r, err)
		return
	}
	httpx.OK(w, httpx.M{"user": u})
}

type profileReq struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Update changes name and email; an omitted field keeps its value.
func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req profileReq
	if err := decodeJSON(w, r, &req); err != nil {
		h.errs.Write(w, r, err)
		return
	}
	u, err := h.users.UpdateProfile(r.Context(), middleware.FromCtx(r.Context()).UserID, req.Name, req.Email)
	if err != nil {
		h.errs.Write(w, r, err)
		return
	}
	httpx.OK(w, httpx.M{"user": u})
}

type passwordReq struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

func (h *ProfileHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req passwordReq
	if err := decodeJSON(w, r, &req); err != nil {
		h.errs.Write(w, r, err)
		return
	}
	err := h.users.ChangePassword(r.Context(), middleware.FromCtx(r.Context()).UserID, req.CurrentPassword, req.NewPassword)
	if err != nil {
		h.errs.Write(w, r, err)
		return
	}
	httpx.OK(w, httpx.M{"message": "Password changed successfully"})
}
