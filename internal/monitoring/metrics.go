// Package monitoring exposes prometheus metrics for the checkout flow.
// Collectors are registered through promauto at init time; the HTTP
// side is a stock promhttp handler mounted by the router.
package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	checkoutsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "checkouts_total",
			Help: "Checkout attempts by outcome",
		},
		[]string{"outcome"},
	)

	ticketsIssued = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tickets_issued_total",
			Help: "Tickets created by successful checkouts",
		},
	)

	chargeDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "payment_charge_duration_seconds",
			Help:    "Latency of payment gateway charge calls",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
		},
	)

	barcodeRetries = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "barcode_collision_retries_total",
			Help: "Barcode candidates discarded due to collisions",
		},
	)
)

// Checkout outcome label values.
const (
	OutcomeSuccess    = "success"
	OutcomeValidation = "validation_error"
	OutcomeNotFound   = "not_found"
	OutcomeSoldOut    = "insufficient_inventory"
	OutcomeDeclined   = "card_declined"
	OutcomeGateway    = "gateway_error"
	OutcomeInternal   = "internal_error"
)

// ObserveCheckout records one finished checkout attempt.
func ObserveCheckout(outcome string) { checkoutsTotal.WithLabelValues(outcome).Inc() }

// AddTicketsIssued records tickets created by a successful checkout.
func AddTicketsIssued(n int) { ticketsIssued.Add(float64(n)) }

// ObserveChargeDuration records the latency of one gateway charge call.
func ObserveChargeDuration(d time.Duration) { chargeDuration.Observe(d.Seconds()) }

// AddBarcodeRetry records a discarded barcode candidate.
func AddBarcodeRetry() { barcodeRetries.Inc() }
