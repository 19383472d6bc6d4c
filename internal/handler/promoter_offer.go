package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/seatsupply/ticketing-backend/internal/model"
	"github.com/seatsupply/ticketing-backend/internal/repository"
)

// Per-order quantity defaults applied when a promoter leaves the bounds
// unset.
const (
	defaultMinOrderQuantity = 1
	defaultMaxOrderQuantity = 50
)

// PromoterOfferHandler manages offers under a promoter's events.
type PromoterOfferHandler struct {
	Events    *repository.EventRepo
	Offers    *repository.OfferRepo
	Promoters *repository.PromoterRepo
}

func NewPromoterOfferHandler(e *repository.EventRepo, o *repository.OfferRepo, p *repository.PromoterRepo) *PromoterOfferHandler {
	return &PromoterOfferHandler{Events: e, Offers: o, Promoters: p}
}

type createOfferReq struct {
	Name             string `json:"name"`
	Description      string `json:"description"`
	Price            string `json:"price"` // decimal string, e.g. "25.00"
	Quantity         int    `json:"quantity"`
	MinOrderQuantity int    `json:"min_order_quantity"`
	MaxOrderQuantity int    `json:"max_order_quantity"`
	StartSaleDate    string `json:"start_sale_date"` // RFC3339
	EndSaleDate      string `json:"end_sale_date"`   // RFC3339
}

type offerResp struct {
	ID               uint64     `json:"id"`
	EventID          uint64     `json:"event_id"`
	Name             string     `json:"name"`
	Description      string     `json:"description,omitempty"`
	Price            string     `json:"price"`
	Quantity         int        `json:"quantity"`
	MinOrderQuantity int        `json:"min_order_quantity"`
	MaxOrderQuantity int        `json:"max_order_quantity"`
	StartSaleDate    *time.Time `json:"start_sale_date,omitempty"`
	EndSaleDate      *time.Time `json:"end_sale_date,omitempty"`
}

func offerToResp(o *model.Offer) offerResp {
	return offerResp{
		ID:               o.ID,
		EventID:          o.EventID,
		Name:             o.Name,
		Description:      o.Description,
		Price:            o.Price.StringFixed(2),
		Quantity:         o.Quantity,
		MinOrderQuantity: o.MinOrderQuantity,
		MaxOrderQuantity: o.MaxOrderQuantity,
		StartSaleDate:    o.StartSaleDate,
		EndSaleDate:      o.EndSaleDate,
	}
}

// Create handles POST /v1/promoter/events/:id/offers.  The price is
// stored exactly as submitted; quantity is the full inventory the offer
// starts with.
func (h *PromoterOfferHandler) Create(c echo.Context) error {
	eventID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}
	event, ok := h.memberEvent(c, eventID)
	if !ok {
		return nil // response already written
	}
	if event.Status == model.EventStatusCanceled || event.Status == model.EventStatusCompleted {
		return c.JSON(http.StatusConflict, echo.Map{"error": "event is no longer accepting offers"})
	}

	var req createOfferReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" || len(req.Name) > 100 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required and must be at most 100 characters"})
	}
	if len(req.Description) > 2000 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "description must be at most 2000 characters"})
	}
	price, err := decimal.NewFromString(strings.TrimSpace(req.Price))
	if err != nil || price.IsNegative() || price.IsZero() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "price must be a positive decimal"})
	}
	if req.Quantity <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "quantity must be greater than 0"})
	}
	if req.MinOrderQuantity <= 0 {
		req.MinOrderQuantity = defaultMinOrderQuantity
	}
	if req.MaxOrderQuantity <= 0 {
		req.MaxOrderQuantity = defaultMaxOrderQuantity
	}
	if req.MinOrderQuantity > req.MaxOrderQuantity {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "min_order_quantity cannot exceed max_order_quantity"})
	}
	start, err := parseDate(req.StartSaleDate)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "start_sale_date must be RFC3339"})
	}
	end, err := parseDate(req.EndSaleDate)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "end_sale_date must be RFC3339"})
	}
	if start != nil && end != nil && end.Before(*start) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "end_sale_date must not precede start_sale_date"})
	}

	offer := &model.Offer{
		EventID:          event.ID,
		Name:             req.Name,
		Description:      req.Description,
		Price:            price,
		Quantity:         req.Quantity,
		MinOrderQuantity: req.MinOrderQuantity,
		MaxOrderQuantity: req.MaxOrderQuantity,
		StartSaleDate:    start,
		EndSaleDate:      end,
	}
	if err := h.Offers.Create(c.Request().Context(), offer); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create offer failed"})
	}
	return c.JSON(http.StatusCreated, offerToResp(offer))
}

// List handles GET /v1/promoter/events/:id/offers.
func (h *PromoterOfferHandler) List(c echo.Context) error {
	eventID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}
	event, ok := h.memberEvent(c, eventID)
	if !ok {
		return nil
	}
	offers, err := h.Offers.ListByEvent(c.Request().Context(), event.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]offerResp, 0, len(offers))
	for i := range offers {
		out = append(out, offerToResp(&offers[i]))
	}
	return c.JSON(http.StatusOK, echo.Map{"offers": out})
}

// memberEvent mirrors PromoterEventHandler.memberEvent for offer routes.
func (h *PromoterOfferHandler) memberEvent(c echo.Context, eventID uint64) (*model.Event, bool) {
	event, err := h.Events.GetByID(c.Request().Context(), eventID)
	if err != nil {
		if err == repository.ErrEventNotFound {
			_ = c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
		} else {
			_ = c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
		}
		return nil, false
	}
	member, err := h.Promoters.IsMember(c.Request().Context(), userIDFrom(c), event.PromoterID)
	if err != nil {
		_ = c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
		return nil, false
	}
	if !member {
		_ = c.JSON(http.StatusForbidden, echo.Map{"error": "not a member of this promoter"})
		return nil, false
	}
	return event, true
}
