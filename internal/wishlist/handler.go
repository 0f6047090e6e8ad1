package wishlist

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/joao-fontenele/cartflow/internal/domain"
	"github.com/joao-fontenele/cartflow/internal/identity"
	"github.com/joao-fontenele/cartflow/internal/respond"
)

type Manager interface {
	Add(ctx context.Context, userID string, productID int64) error
	Remove(ctx context.Context, userID string, entryID int64) error
	ClearAll(ctx context.Context, userID string) error
	Snapshot(ctx context.Context, userID string) ([]domain.WishlistLine, error)
	MoveToCart(ctx context.Context, userID string, productID int64) (domain.CartEntry, error)
}

type Handler struct {
	wishlist Manager
	logger   *slog.Logger
}

func NewHandler(wishlist Manager, logger *slog.Logger) *Handler {
	return &Handler{
		wishlist: wishlist,
		logger:   logger,
	}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/wishlist", h.HandleSnapshot)
	r.Delete("/wishlist", h.HandleClear)
	r.Post("/wishlist/items", h.HandleAdd)
	r.Delete("/wishlist/items/{id}", h.HandleRemove)
	r.Post("/wishlist/move", h.HandleMoveToCart)
}

// user rejects anonymous callers before the request is parsed.
func (h *Handler) user(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID := identity.UserID(r.Context())
	if userID == "" {
		respond.Failure(w, h.logger, domain.ErrUnauthorized)
		return "", false
	}
	return userID, true
}

func (h *Handler) HandleSnapshot(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.user(w, r)
	if !ok {
		return
	}

	lines, err := h.wishlist.Snapshot(r.Context(), userID)
	if err != nil {
		respond.Failure(w, h.logger, err)
		return
	}

	if lines == nil {
		lines = []domain.WishlistLine{}
	}
	respond.Success(w, h.logger, http.StatusOK, respond.Fields{"items": lines})
}

type productRequest struct {
	ProductID int64 `json:"product_id"`
}

func (h *Handler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.user(w, r)
	if !ok {
		return
	}

	var req productRequest
	if !respond.Decode(r, &req) {
		respond.Invalid(w, h.logger)
		return
	}

	if err := h.wishlist.Add(r.Context(), userID, req.ProductID); err != nil {
		respond.Failure(w, h.logger, err)
		return
	}

	respond.Success(w, h.logger, http.StatusOK, nil)
}

func (h *Handler) HandleRemove(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.user(w, r)
	if !ok {
		return
	}

	entryID, ok := respond.PathID(r, "id")
	if !ok {
		respond.Invalid(w, h.logger)
		return
	}

	if err := h.wishlist.Remove(r.Context(), userID, entryID); err != nil {
		respond.Failure(w, h.logger, err)
		return
	}

	respond.Success(w, h.logger, http.StatusOK, nil)
}

func (h *Handler) HandleClear(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.user(w, r)
	if !ok {
		return
	}

	if err := h.wishlist.ClearAll(r.Context(), userID); err != nil {
		respond.Failure(w, h.logger, err)
		return
	}

	respond.Success(w, h.logger, http.StatusOK, nil)
}

func (h *Handler) HandleMoveToCart(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.user(w, r)
	if !ok {
		return
	}

	var req productRequest
	if !respond.Decode(r, &req) {
		respond.Invalid(w, h.logger)
		return
	}

	entry, err := h.wishlist.MoveToCart(r.Context(), userID, req.ProductID)
	if err != nil {
		respond.Failure(w, h.logger, err)
		return
	}

	respond.Success(w, h.logger, http.StatusOK, respond.Fields{"entry": entry})
}
