package handlers

import (
	"net/http"

	"github.com/baharkarakas/storefront-backend/internal/api/httpx"
	"github.com/baharkarakas/storefront-backend/internal/middleware"
	"github.com/baharkarakas/storefront-backend/internal/models"
	"github.com/baharkarakas/storefront-backend/internal/services"
)

type CartHandler struct {
	carts *services.CartService
	errs  httpx.Errors
}

func NewCartHandler(carts *services.CartService, errs httpx.Errors) *CartHandler {
	return &CartHandler{carts: carts, errs: errs}
}

type itemReq struct {
	ItemID string `json:"itemId"`
}

type setReq struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	c, err := h.carts.Get(r.Context(), middleware.FromCtx(r.Context()).UserID)
	h.reply(w, r, c, err)
}

func (h *CartHandler) Add(w http.ResponseWriter, r *http.Request) {
	var req itemReq
	if err := decodeJSON(w, r, &req); err != nil {
		h.errs.Write(w, r, err)
		return
	}
	c, err := h.carts.Add(r.Context(), middleware.FromCtx(r.Context()).UserID, req.ItemID)
	h.reply(w, r, c, err)
}

func (h *CartHandler) Remove(w http.ResponseWriter, r *http.Request) {
	var req itemReq
	if err := decodeJSON(w, r, &req); err != nil {
		h.errs.Write(w, r, err)
		return
	}
	c, err := h.carts.Remove(r.Context(), middleware.FromCtx(r.Context()).UserID, req.ItemID)
	h.reply(w, r, c, err)
}

func (h *CartHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req setReq
	if err := decodeJSON(w, r, &req); err != nil {
		h.errs.Write(w, r, err)
		return
	}
	c, err := h.carts.Set(r.Context(), middleware.FromCtx(r.Context()).UserID, req.ProductID, req.Quantity)
	h.reply(w, r, c, err)
}

func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	if err := h.carts.Clear(r.Context(), middleware.FromCtx(r.Context()).UserID); err != nil {
		h.errs.Write(w, r, err)
		return
	}
	httpx.OK(w, httpx.M{"message": "Cart cleared successfully"})
}

func (h *CartHandler) Prune(w http.ResponseWriter, r *http.Request) {
	c, err := h.carts.Prune(r.Context(), middleware.FromCtx(r.Context()).UserID)
	h.reply(w, r, c, err)
}

func (h *CartHandler) reply(w http.ResponseWriter, r *http.Request, c models.Cart, err error) {
	if err != nil {
		h.errs.Write(w, r, err)
		return
	}
	if c == nil {
		c = models.Cart{}
	}
	httpx.OK(w, httpx.M{"cart": c})
}
