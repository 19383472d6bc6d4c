package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/seatsupply/ticketing-backend/internal/model"
	"github.com/seatsupply/ticketing-backend/internal/repository"
)

// PromoterEventHandler exposes event management to promoter members.
// Every mutation first resolves the caller's membership; users outside
// the owning promoter get 403 regardless of what they asked for.
type PromoterEventHandler struct {
	Events    *repository.EventRepo
	Promoters *repository.PromoterRepo
}

func NewPromoterEventHandler(e *repository.EventRepo, p *repository.PromoterRepo) *PromoterEventHandler {
	return &PromoterEventHandler{Events: e, Promoters: p}
}

type createEventReq struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Venue       string `json:"venue"` // JSON venue descriptor, stored as-is
	Timezone    string `json:"timezone"`
	Slug        string `json:"slug"`
	StartDate   string `json:"start_date"` // RFC3339
	EndDate     string `json:"end_date"`   // RFC3339
}

type eventResp struct {
	ID          uint64     `json:"id"`
	PromoterID  uint64     `json:"promoter_id"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	Venue       string     `json:"venue,omitempty"`
	Timezone    string     `json:"timezone"`
	Slug        string     `json:"slug,omitempty"`
	StartDate   *time.Time `json:"start_date,omitempty"`
	EndDate     *time.Time `json:"end_date,omitempty"`
	PublishDate *time.Time `json:"publish_date,omitempty"`
	Status      string     `json:"status"`
}

func eventToResp(e *model.Event) eventResp {
	return eventResp{
		ID:          e.ID,
		PromoterID:  e.PromoterID,
		Name:        e.Name,
		Description: e.Description,
		Venue:       e.Venue,
		Timezone:    e.Timezone,
		Slug:        e.Slug,
		StartDate:   e.StartDate,
		EndDate:     e.EndDate,
		PublishDate: e.PublishDate,
		Status:      e.Status,
	}
}

func parseDate(s string) (*time.Time, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Create handles POST /v1/promoter/events.  New events start in draft
// status and stay invisible to buyers until published.
func (h *PromoterEventHandler) Create(c echo.Context) error {
	uid := userIDFrom(c)
	promoter, err := h.Promoters.PromoterForUser(c.Request().Context(), uid)
	if err != nil {
		if errors.Is(err, repository.ErrForbidden) {
			return c.JSON(http.StatusForbidden, echo.Map{"error": "not a promoter member"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	var req createEventReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" || len(req.Name) > 100 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required and must be at most 100 characters"})
	}
	if req.Timezone == "" {
		req.Timezone = "UTC"
	}
	if _, err := time.LoadLocation(req.Timezone); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid timezone"})
	}
	start, err := parseDate(req.StartDate)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "start_date must be RFC3339"})
	}
	end, err := parseDate(req.EndDate)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "end_date must be RFC3339"})
	}
	if start != nil && end != nil && end.Before(*start) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "end_date must not precede start_date"})
	}

	event := &model.Event{
		PromoterID:  promoter.ID,
		Name:        req.Name,
		Description: req.Description,
		Venue:       req.Venue,
		Timezone:    req.Timezone,
		Slug:        strings.TrimSpace(req.Slug),
		StartDate:   start,
		EndDate:     end,
	}
	if err := h.Events.Create(c.Request().Context(), event); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create event failed"})
	}
	return c.JSON(http.StatusCreated, eventToResp(event))
}

// Publish handles POST /v1/promoter/events/:id/publish, transitioning a
// draft event to active so offers under it become purchasable.
func (h *PromoterEventHandler) Publish(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}
	event, ok := h.memberEvent(c, id)
	if !ok {
		return nil // response already written
	}

	if err := h.Events.UpdateStatus(c.Request().Context(), event.ID, model.EventStatusActive); err != nil {
		if errors.Is(err, repository.ErrEventNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "publish failed"})
	}
	updated, err := h.Events.GetByID(c.Request().Context(), event.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, eventToResp(updated))
}

// ListMine handles GET /v1/promoter/events.
func (h *PromoterEventHandler) ListMine(c echo.Context) error {
	uid := userIDFrom(c)
	promoter, err := h.Promoters.PromoterForUser(c.Request().Context(), uid)
	if err != nil {
		if errors.Is(err, repository.ErrForbidden) {
			return c.JSON(http.StatusForbidden, echo.Map{"error": "not a promoter member"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	events, err := h.Events.ListByPromoter(c.Request().Context(), promoter.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]eventResp, 0, len(events))
	for i := range events {
		out = append(out, eventToResp(&events[i]))
	}
	return c.JSON(http.StatusOK, echo.Map{"events": out})
}

// memberEvent loads the event and checks the caller belongs to its
// owning promoter.  On failure it writes the error response itself and
// returns false.
func (h *PromoterEventHandler) memberEvent(c echo.Context, eventID uint64) (*model.Event, bool) {
	event, err := h.Events.GetByID(c.Request().Context(), eventID)
	if err != nil {
		if errors.Is(err, repository.ErrEventNotFound) {
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
