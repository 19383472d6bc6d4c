package router // wires HTTP routes to their handlers and middleware

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/seatsupply/ticketing-backend/internal/handler"
	"github.com/seatsupply/ticketing-backend/internal/middleware"
	"github.com/seatsupply/ticketing-backend/internal/model"
)

// Handlers collects everything the router needs to register routes.
type Handlers struct {
	Auth     *handler.AuthHandler
	Checkout *handler.CheckoutHandler
	Orders   *handler.OrderHandler
	Public   *handler.PublicEventHandler
	Events   *handler.PromoterEventHandler
	Offers   *handler.PromoterOfferHandler
	Scan     *handler.TicketScanHandler
}

// Register wires every route.  Route groups:
//
//	/healthz, /metrics      – operational, unauthenticated
//	/v1/auth/*              – session management, unauthenticated
//	/v1/events*             – public browsing, cached
//	/v1/checkout, orders    – buyer routes, JWT
//	/v1/promoter/*          – promoter routes, JWT + PROMOTER role
func Register(e *echo.Echo, h Handlers, jwtSecret string, cache, ratelimit echo.MiddlewareFunc) {
	e.GET("/healthz", handler.Health)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	auth := e.Group("/v1/auth")
	auth.POST("/register", h.Auth.Register)
	auth.POST("/login", h.Auth.Login)
	auth.POST("/refresh", h.Auth.Refresh)
	auth.POST("/refresh-access", h.Auth.RefreshAccess)
	auth.POST("/logout", h.Auth.Logout)

	// Public browsing sits behind the response cache; during an on-sale
	// most of this traffic never reaches the database.
	public := e.Group("/v1", cache)
	public.GET("/events", h.Public.List)
	public.GET("/events/:id", h.Public.Get)
	public.GET("/events/:id/offers", h.Public.Offers)

	// Buyer routes.  The rate limiter fronts checkout so retry storms
	// burn tokens, not inventory probes.
	buyer := e.Group("/v1", middleware.JWTAuth(jwtSecret))
	buyer.POST("/checkout", h.Checkout.Checkout, ratelimit)
	buyer.GET("/my-orders", h.Orders.ListMine)
	buyer.GET("/orders/:id", h.Orders.Get)
	buyer.GET("/me", h.Auth.Me)

	promoter := e.Group("/v1/promoter",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RolePromoter))
	promoter.POST("/events", h.Events.Create)
	promoter.GET("/events", h.Events.ListMine)
	promoter.POST("/events/:id/publish", h.Events.Publish)
	promoter.POST("/events/:id/offers", h.Offers.Create)
	promoter.GET("/events/:id/offers", h.Offers.List)

	scan := e.Group("/v1/tickets",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RolePromoter))
	scan.POST("/scan", h.Scan.Scan)
}
