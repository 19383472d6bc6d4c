package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/seatsupply/ticketing-backend/internal/repository"
)

// PublicEventHandler serves the unauthenticated browse endpoints.  These
// sit behind the redis response cache; during an on-sale the same
// listing is requested thousands of times per second.
type PublicEventHandler struct {
	Events    *repository.EventRepo
	OfferRepo *repository.OfferRepo
}

func NewPublicEventHandler(e *repository.EventRepo, o *repository.OfferRepo) *PublicEventHandler {
	return &PublicEventHandler{Events: e, OfferRepo: o}
}

// List handles GET /v1/events and returns active events only.
func (h *PublicEventHandler) List(c echo.Context) error {
	events, err := h.Events.ListActive(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]eventResp, 0, len(events))
	for i := range events {
		out = append(out, eventToResp(&events[i]))
	}
	return c.JSON(http.StatusOK, echo.Map{"events": out})
}

// Get handles GET /v1/events/:id.  Anything not active is invisible to
// buyers, so drafts and canceled events 404 here.
func (h *PublicEventHandler) Get(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}
	event, err := h.Events.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrEventNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if !event.Sellable() {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
	}
	return c.JSON(http.StatusOK, eventToResp(event))
}

type publicOffer struct {
	ID               uint64 `json:"id"`
	Name             string `json:"name"`
	Description      string `json:"description,omitempty"`
	Price            string `json:"price"`
	Available        bool   `json:"available"`
	OnSale           bool   `json:"on_sale"`
	MinOrderQuantity int    `json:"min_order_quantity"`
	MaxOrderQuantity int    `json:"max_order_quantity"`
}

// Offers handles GET /v1/events/:id/offers.  Remaining quantities are
// not exposed, only whether anything is left; scalpers do not need a
// live inventory feed.
func (h *PublicEventHandler) Offers(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}
	event, err := h.Events.GetByID(c.Request().Context(), id)
	if err != nil || !event.Sellable() {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
	}
	offers, err := h.OfferRepo.ListByEvent(c.Request().Context(), event.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	now := time.Now()
	out := make([]publicOffer, 0, len(offers))
	for i := range offers {
		o := &offers[i]
		out = append(out, publicOffer{
			ID:               o.ID,
			Name:             o.Name,
			Description:      o.Description,
			Price:            o.Price.StringFixed(2),
			Available:        o.Quantity > 0,
			OnSale:           o.OnSale(now),
			MinOrderQuantity: o.MinOrderQuantity,
			MaxOrderQuantity: o.MaxOrderQuantity,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"offers": out})
}
