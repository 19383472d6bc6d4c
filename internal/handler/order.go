package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/seatsupply/ticketing-backend/internal/repository"
)

// OrderHandler exposes buyer-facing order queries.
type OrderHandler struct {
	Orders *repository.OrderRepo
}

func NewOrderHandler(orders *repository.OrderRepo) *OrderHandler {
	return &OrderHandler{Orders: orders}
}

type orderSummary struct {
	ID         uint64    `json:"id"`
	EventID    uint64    `json:"event_id"`
	IsRefunded bool      `json:"is_refunded"`
	CreatedAt  time.Time `json:"created_at"`
}

// ListMine handles GET /v1/my-orders and returns the caller's orders,
// newest first.
func (h *OrderHandler) ListMine(c echo.Context) error {
	uid := userIDFrom(c)
	if uid == 0 {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	orders, err := h.Orders.ListByUser(c.Request().Context(), uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]orderSummary, 0, len(orders))
	for _, o := range orders {
		out = append(out, orderSummary{
			ID:         o.ID,
			EventID:    o.EventID,
			IsRefunded: o.IsRefunded,
			CreatedAt:  o.CreatedAt,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"orders": out})
}

// Get handles GET /v1/orders/:id.  Orders are owner-scoped: a buyer can
// only see their own; anyone else gets the same 404 as a missing order
// so order IDs cannot be probed.
func (h *OrderHandler) Get(c echo.Context) error {
	uid := userIDFrom(c)
	if uid == 0 {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid order id"})
	}

	order, err := h.Orders.GetWithTickets(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "order not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if order.UserID != uid {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "order not found"})
	}
	return c.JSON(http.StatusOK, orderToResp(order))
}
