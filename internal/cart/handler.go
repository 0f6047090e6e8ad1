package cart

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
	AddOrIncrement(ctx context.Context, userID string, productID int64) (domain.CartEntry, error)
	SetQuantity(ctx context.Context, userID string, entryID int64, quantity int) (domain.CartEntry, error)
	Remove(ctx context.Context, userID string, entryID int64) error
	ClearAll(ctx context.Context, userID string) error
	Summary(ctx context.Context, userID string) (domain.CartSummary, error)
}

type Handler struct {
	cart   Manager
	logger *slog.Logger
}

func NewHandler(cart Manager, logger *slog.Logger) *Handler {
	return &Handler{
		cart:   cart,
		logger: logger,
	}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/cart", h.HandleSummary)
	r.Delete("/cart", h.HandleClear)
	r.Post("/cart/items", h.HandleAdd)
	r.Patch("/cart/items/{id}", h.HandleSetQuantity)
	r.Delete("/cart/items/{id}", h.HandleRemove)
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

func (h *Handler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.user(w, r)
	if !ok {
		return
	}

	summary, err := h.cart.Summary(r.Context(), userID)
	if err != nil {
		respond.Failure(w, h.logger, err)
		return
	}

	respond.Success(w, h.logger, http.StatusOK, respond.Fields{"cart": summary})
}

type addRequest struct {
	ProductID int64 `json:"product_id"`
}

func (h *Handler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.user(w, r)
	if !ok {
		return
	}

	var req addRequest
	if !respond.Decode(r, &req) {
		respond.Invalid(w, h.logger)
		return
	}

	entry, err := h.cart.AddOrIncrement(r.Context(), userID, req.ProductID)
	if err != nil {
		respond.Failure(w, h.logger, err)
		return
	}

	respond.Success(w, h.logger, http.StatusOK, respond.Fields{"entry": entry})
}

type setQuantityRequest struct {
	Quantity int `json:"quantity"`
}

func (h *Handler) HandleSetQuantity(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.user(w, r)
	if !ok {
		return
	}

	entryID, ok := respond.PathID(r, "id")
	if !ok {
		respond.Invalid(w, h.logger)
		return
	}

	var req setQuantityRequest
	if !respond.Decode(r, &req) || req.Quantity > domain.MaxQuantity {
		respond.Invalid(w, h.logger)
		return
	}

	entry, err := h.cart.SetQuantity(r.Context(), userID, entryID, req.Quantity)
	if err != nil {
		respond.Failure(w, h.logger, err)
		return
	}

	respond.Success(w, h.logger, http.StatusOK, respond.Fields{"entry": entry})
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

	if err := h.cart.Remove(r.Context(), userID, entryID); err != nil {
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

	if err := h.cart.ClearAll(r.Context(), userID); err != nil {
		respond.Failure(w, h.logger, err)
		return
	}

	respond.Success(w, h.logger, http.StatusOK, nil)
}
