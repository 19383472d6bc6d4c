package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/seatsupply/ticketing-backend/internal/checkout"
	"github.com/seatsupply/ticketing-backend/internal/model"
	"github.com/seatsupply/ticketing-backend/internal/payment"
	"github.com/seatsupply/ticketing-backend/internal/repository"
)

// CheckoutHandler exposes the checkout transaction over HTTP.
type CheckoutHandler struct {
	Svc *checkout.Service
}

func NewCheckoutHandler(svc *checkout.Service) *CheckoutHandler {
	return &CheckoutHandler{Svc: svc}
}

type checkoutReq struct {
	OfferID      uint64 `json:"offer_id"`
	Quantity     int    `json:"quantity"`
	Token        string `json:"token"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Email        string `json:"email"`
	MobileNumber string `json:"mobile_number"`
}

type ticketPart struct {
	ID      uint64 `json:"id"`
	Barcode string `json:"barcode"`
	Price   string `json:"price"`
	Status  string `json:"status"`
}

type orderResp struct {
	ID        uint64       `json:"id"`
	EventID   uint64       `json:"event_id"`
	ChargeID  string       `json:"charge_id"`
	CreatedAt time.Time    `json:"created_at"`
	Tickets   []ticketPart `json:"tickets"`
}

func orderToResp(o *model.Order) orderResp {
	resp := orderResp{
		ID:        o.ID,
		EventID:   o.EventID,
		ChargeID:  o.ChargeID,
		CreatedAt: o.CreatedAt,
		Tickets:   make([]ticketPart, 0, len(o.Tickets)),
	}
	for _, t := range o.Tickets {
		resp.Tickets = append(resp.Tickets, ticketPart{
			ID:      t.ID,
			Barcode: t.Barcode,
			Price:   t.Price.StringFixed(2),
			Status:  t.Status,
		})
	}
	return resp
}

// Checkout handles POST /v1/checkout.  The interesting work happens in
// the checkout service; this handler only translates the typed errors
// into HTTP statuses.
func (h *CheckoutHandler) Checkout(c echo.Context) error {
	var req checkoutReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	uid := userIDFrom(c)
	order, err := h.Svc.Checkout(c.Request().Context(), uid, checkout.Input{
		OfferID:      req.OfferID,
		Quantity:     req.Quantity,
		Token:        req.Token,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        req.Email,
		MobileNumber: req.MobileNumber,
	})
	if err != nil {
		return checkoutError(c, err)
	}
	return c.JSON(http.StatusCreated, orderToResp(order))
}

func checkoutError(c echo.Context, err error) error {
	var (
		vErr     *checkout.ValidationError
		declined *payment.CardDeclinedError
		gwErr    *payment.GatewayError
	)
	switch {
	case errors.As(err, &vErr):
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error":  "validation_failed",
			"fields": vErr.Fields,
		})
	case errors.Is(err, checkout.ErrUnauthenticated):
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	case errors.Is(err, repository.ErrOfferNotFound),
		errors.Is(err, repository.ErrEventNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "offer not available"})
	case errors.Is(err, checkout.ErrOfferNotOnSale):
		return c.JSON(http.StatusConflict, echo.Map{"error": "offer is not on sale"})
	case errors.Is(err, repository.ErrInsufficientInventory):
		return c.JSON(http.StatusConflict, echo.Map{"error": "not enough tickets remaining"})
	case errors.As(err, &declined):
		return c.JSON(http.StatusPaymentRequired, echo.Map{
			"error":   "card_declined",
			"message": declined.Message,
		})
	case errors.As(err, &gwErr):
		return c.JSON(http.StatusBadGateway, echo.Map{"error": "payment gateway unavailable"})
	default:
		c.Logger().Errorf("checkout failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "checkout failed"})
	}
}
