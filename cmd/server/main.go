package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/seatsupply/ticketing-backend/internal/checkout"
	"github.com/seatsupply/ticketing-backend/internal/config"
	"github.com/seatsupply/ticketing-backend/internal/database"
	"github.com/seatsupply/ticketing-backend/internal/handler"
	"github.com/seatsupply/ticketing-backend/internal/idempotency"
	appmw "github.com/seatsupply/ticketing-backend/internal/middleware"
	"github.com/seatsupply/ticketing-backend/internal/payment"
	"github.com/seatsupply/ticketing-backend/internal/queue"
	"github.com/seatsupply/ticketing-backend/internal/repository"
	"github.com/seatsupply/ticketing-backend/internal/router"
)

func main() {
	_ = godotenv.Load() // .env is optional; real deployments use the environment

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Redis backs the rate limiter, the browse cache and the checkout
	// idempotency store.  A nil client disables all three gracefully.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable: rate limiting, caching and charge idempotency disabled")
	}

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	events := repository.NewEventRepo(db)
	offers := repository.NewOfferRepo(db)
	orders := repository.NewOrderRepo(db)
	tickets := repository.NewTicketRepo(db)
	promoters := repository.NewPromoterRepo(db)

	checkoutSvc := checkout.New(
		checkout.NewSQLStore(db),
		payment.NewStripeClient(cfg.StripeSecret),
		checkout.QueueNotifier{},
		idempotency.NewStore(rdb, cfg.IdempotencyTTL),
	)

	// The notification consumer lives in the same binary; it reconnects
	// on its own, so losing the broker never affects request serving.
	go func() {
		if err := queue.StartOrderConsumer(); err != nil {
			log.Printf("order consumer stopped: %v", err)
		}
	}()

	e := echo.New()
	e.HideBanner = true

	router.Register(e, router.Handlers{
		Auth:     handler.NewAuthHandler(cfg, users, tokens),
		Checkout: handler.NewCheckoutHandler(checkoutSvc),
		Orders:   handler.NewOrderHandler(orders),
		Public:   handler.NewPublicEventHandler(events, offers),
		Events:   handler.NewPromoterEventHandler(events, promoters),
		Offers:   handler.NewPromoterOfferHandler(events, offers, promoters),
		Scan:     handler.NewTicketScanHandler(events, tickets, promoters),
	}, cfg.JWTSecret,
		appmw.NewRedisCache(config.LoadCacheConfig(), rdb),
		appmw.NewTokenBucket(config.LoadRateLimitConfig(), rdb),
	)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
