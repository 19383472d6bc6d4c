package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/seatsupply/ticketing-backend/internal/repository"
)

// TicketScanHandler validates barcodes at the door.  A barcode admits
// exactly once; the conditional update in the ticket repository
// serializes two scanners racing on the same code.
type TicketScanHandler struct {
	Events    *repository.EventRepo
	Tickets   *repository.TicketRepo
	Promoters *repository.PromoterRepo
}

func NewTicketScanHandler(e *repository.EventRepo, t *repository.TicketRepo, p *repository.PromoterRepo) *TicketScanHandler {
	return &TicketScanHandler{Events: e, Tickets: t, Promoters: p}
}

type scanReq struct {
	EventID uint64 `json:"event_id"`
	Barcode string `json:"barcode"`
}

// Scan handles POST /v1/tickets/scan.  Only members of the event's
// promoter may scan its tickets.
func (h *TicketScanHandler) Scan(c echo.Context) error {
	var req scanReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Barcode = strings.TrimSpace(req.Barcode)
	if req.EventID == 0 || req.Barcode == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "event_id and barcode required"})
	}

	ctx := c.Request().Context()
	event, err := h.Events.GetByID(ctx, req.EventID)
	if err != nil {
		if errors.Is(err, repository.ErrEventNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	member, err := h.Promoters.IsMember(ctx, userIDFrom(c), event.PromoterID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if !member {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "not a member of this promoter"})
	}

	if err := h.Tickets.MarkUsed(ctx, req.EventID, req.Barcode); err != nil {
		switch {
		case errors.Is(err, repository.ErrTicketNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "unknown barcode"})
		case errors.Is(err, repository.ErrConflict):
			return c.JSON(http.StatusConflict, echo.Map{"error": "ticket already scanned"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "scan failed"})
		}
	}

	ticket, err := h.Tickets.FindByBarcode(ctx, req.EventID, req.Barcode)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"ticket_id":  ticket.ID,
		"order_id":   ticket.OrderID,
		"status":     ticket.Status,
		"scanned_at": ticket.ScannedAt,
	})
}
