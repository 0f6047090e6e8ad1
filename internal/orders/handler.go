package orders

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/joao-fontenele/cartflow/internal/domain"
	"github.com/joao-fontenele/cartflow/internal/identity"
	"github.com/joao-fontenele/cartflow/internal/respond"
)

type Engine interface {
	PlaceOrder(ctx context.Context, userID string, shipping domain.ShippingDetails, paymentMethod string) (domain.Order, error)
	Get(ctx context.Context, userID string, orderID int64) (domain.Order, error)
	List(ctx context.Context, userID string) ([]domain.Order, error)
	UpdateStatus(ctx context.Context, userID string, orderID int64, status domain.OrderStatus) (domain.Order, error)
}

type Handler struct {
	orders Engine
	logger *slog.Logger
}

func NewHandler(orders Engine, logger *slog.Logger) *Handler {
	return &Handler{
		orders: orders,
		logger: logger,
	}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/orders", h.HandlePlace)
	r.Get("/orders", h.HandleList)
	r.Get("/orders/{id}", h.HandleGet)
	r.Patch("/orders/{id}/status", h.HandleUpdateStatus)
}

type placeOrderRequest struct {
	domain.ShippingDetails
	PaymentMethod string `json:"payment_method"`
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

func (h *Handler) HandlePlace(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.user(w, r)
	if !ok {
		return
	}

	var req placeOrderRequest
	if !respond.Decode(r, &req) {
		respond.Invalid(w, h.logger)
		return
	}

	order, err := h.orders.PlaceOrder(r.Context(), userID, req.ShippingDetails, req.PaymentMethod)
	if err != nil {
		respond.Failure(w, h.logger, err)
		return
	}

	respond.Success(w, h.logger, http.StatusOK, respond.Fields{"orderId": order.ID})
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.user(w, r)
	if !ok {
		return
	}

	orderID, ok := respond.PathID(r, "id")
	if !ok {
		respond.Invalid(w, h.logger)
		return
	}

	order, err := h.orders.Get(r.Context(), userID, orderID)
	if err != nil {
		respond.Failure(w, h.logger, err)
		return
	}

	respond.Success(w, h.logger, http.StatusOK, respond.Fields{"order": order})
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.user(w, r)
	if !ok {
		return
	}

	orders, err := h.orders.List(r.Context(), userID)
	if err != nil {
		respond.Failure(w, h.logger, err)
		return
	}

	respond.Success(w, h.logger, http.StatusOK, respond.Fields{"orders": orders})
}

type updateStatusRequest struct {
	Status domain.OrderStatus `json:"status"`
}

func (h *Handler) HandleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.user(w, r)
	if !ok {
		return
	}

	orderID, ok := respond.PathID(r, "id")
	if !ok {
		respond.Invalid(w, h.logger)
		return
	}

	var req updateStatusRequest
	if !respond.Decode(r, &req) {
		respond.Invalid(w, h.logger)
		return
	}

	order, err := h.orders.UpdateStatus(r.Context(), userID, orderID, req.Status)
	if err != nil {
		respond.Failure(w, h.logger, err)
		return
	}

	respond.Success(w, h.logger, http.StatusOK, respond.Fields{"order": order})
}
