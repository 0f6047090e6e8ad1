package catalog

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/joao-fontenele/cartflow/internal/domain"
	"github.com/joao-fontenele/cartflow/internal/respond"
	"github.com/joao-fontenele/cartflow/internal/store"
)

const relatedLimit = 4

type Browser interface {
	Get(ctx context.Context, id int64) (domain.Product, error)
	List(ctx context.Context, filter ListFilter) ([]domain.Product, error)
	Related(ctx context.Context, p domain.Product, limit int) ([]domain.Product, error)
}

type Handler struct {
	products Browser
	logger   *slog.Logger
}

func NewHandler(products Browser, logger *slog.Logger) *Handler {
	return &Handler{
		products: products,
		logger:   logger,
	}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/products", h.HandleList)
	r.Get("/products/{id}", h.HandleGet)
}

// HandleList serves ?category= and ?sort=low|high. Unknown sort values fall
// back to catalog order.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	filter := ListFilter{Category: r.URL.Query().Get("category")}
	switch s := SortOrder(r.URL.Query().Get("sort")); s {
	case SortPriceLow, SortPriceHigh:
		filter.Sort = s
	}

	products, err := h.products.List(r.Context(), filter)
	if err != nil {
		respond.Failure(w, h.logger, store.Classify(err))
		return
	}

	respond.Success(w, h.logger, http.StatusOK, respond.Fields{"products": products})
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := respond.PathID(r, "id")
	if !ok {
		respond.Invalid(w, h.logger)
		return
	}

	product, err := h.products.Get(r.Context(), id)
	if err != nil {
		respond.Failure(w, h.logger, store.Classify(err))
		return
	}

	related, err := h.products.Related(r.Context(), product, relatedLimit)
	if err != nil {
		h.logger.Warn("failed to load related products", "error", err, "product_id", id)
		related = []domain.Product{}
	}

	respond.Success(w, h.logger, http.StatusOK, respond.Fields{
		"product": product,
		"related": related,
	})
}
