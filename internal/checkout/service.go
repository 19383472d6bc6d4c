package checkout

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"time"

	"github.com/shopspring/decimal"

	"github.com/seatsupply/ticketing-backend/internal/barcode"
	"github.com/seatsupply/ticketing-backend/internal/idempotency"
	"github.com/seatsupply/ticketing-backend/internal/model"
	"github.com/seatsupply/ticketing-backend/internal/monitoring"
	"github.com/seatsupply/ticketing-backend/internal/payment"
	"github.com/seatsupply/ticketing-backend/internal/queue"
	"github.com/seatsupply/ticketing-backend/internal/repository"
)

const (
	// currency for all charges. Multi-currency is a gateway-account
	// concern, not a checkout one.
	currency = "usd"

	// chargeDescription appears on the buyer's statement.
	chargeDescription = "Seatsupply"

	// ticketInsertAttempts bounds re-inserts after a duplicate-key
	// collision on (event_id, barcode). The existence probe and the
	// insert are not atomic, so a late collision is retryable.
	ticketInsertAttempts = 3
)

// ChargeStore remembers captured charge references across checkout
// retries. Satisfied by idempotency.Store.
type ChargeStore interface {
	Lookup(ctx context.Context, key string) (string, error)
	Remember(ctx context.Context, key, chargeID string) error
	Clear(ctx context.Context, key string) error
}

// Input is the checkout request after transport decoding. The contact
// fields are optional; when present they are snapshotted onto the
// order.
type Input struct {
	OfferID      uint64
	Quantity     int
	Token        string
	FirstName    string
	LastName     string
	Email        string
	MobileNumber string
}

// Service orchestrates the checkout transaction. All collaborators are
// injected so tests can substitute doubles for the gateway, notifier
// and storage.
type Service struct {
	store    Store
	gateway  payment.Gateway
	notifier Notifier
	charges  ChargeStore
	now      func() time.Time
}

// New constructs a checkout Service.
func New(store Store, gateway payment.Gateway, notifier Notifier, charges ChargeStore) *Service {
	return &Service{
		store:    store,
		gateway:  gateway,
		notifier: notifier,
		charges:  charges,
		now:      time.Now,
	}
}

// Checkout converts an offer, quantity and payment token into a
// committed order with its tickets.
//
// The sequence is strict: validation, offer resolution and sale-window
// checks happen before any mutation; the inventory recheck, conditional
// reservation, charge capture and order/ticket inserts share one SQL
// transaction; the confirmation notification fires only after commit
// and only best-effort. Any error before commit rolls the transaction
// back, restoring inventory and leaving no order or ticket rows.
func (s *Service) Checkout(ctx context.Context, userID uint64, in Input) (*model.Order, error) {
	order, err := s.checkout(ctx, userID, in)
	monitoring.ObserveCheckout(outcomeOf(err))
	if err == nil {
		monitoring.AddTicketsIssued(in.Quantity)
	}
	return order, err
}

func (s *Service) checkout(ctx context.Context, userID uint64, in Input) (*model.Order, error) {
	if userID == 0 {
		return nil, ErrUnauthenticated
	}
	if err := validateInput(in); err != nil {
		return nil, err
	}

	offer, err := s.store.OfferByID(ctx, in.OfferID)
	if err != nil {
		return nil, err
	}
	if !offer.OnSale(s.now()) {
		return nil, ErrOfferNotOnSale
	}
	if err := validateAgainstOffer(offer, in.Quantity); err != nil {
		return nil, err
	}
	// Fail fast before touching the gateway; the authoritative check
	// is the conditional decrement inside the transaction.
	if offer.Quantity < in.Quantity {
		return nil, repository.ErrInsufficientInventory
	}

	idemKey := idempotency.KeyFor(userID, offer.ID, in.Quantity, in.Token)
	priorCharge, err := s.charges.Lookup(ctx, idemKey)
	if err != nil {
		// A broken idempotency store must not block selling tickets;
		// it only widens the double-charge window back to what it was.
		log.Printf("checkout: idempotency lookup failed: %v", err)
		priorCharge = ""
	}

	var (
		orderID uint64
		txOffer *model.Offer
		txEvent *model.Event
	)
	err = s.store.WithinTx(ctx, func(tx *sql.Tx) error {
		var err error
		// Re-read inside the transaction: quantities observed during
		// pre-validation may be stale by now.
		txOffer, err = s.store.OfferTx(ctx, tx, in.OfferID)
		if err != nil {
			return err
		}
		if txOffer.Quantity < in.Quantity {
			return repository.ErrInsufficientInventory
		}
		txEvent, err = s.store.ActiveEventTx(ctx, tx, txOffer.EventID)
		if err != nil {
			return err
		}
		if err := s.store.ReserveOfferTx(ctx, tx, txOffer.ID, in.Quantity); err != nil {
			return err
		}

		subtotal := txOffer.Price.Mul(decimal.NewFromInt(int64(in.Quantity)))
		chargeID := priorCharge
		if chargeID == "" {
			started := time.Now()
			ch, err := s.gateway.Charge(ctx, payment.ChargeRequest{
				Token:               in.Token,
				AmountMinor:         subtotal.Shift(2).Round(0).IntPart(),
				Currency:            currency,
				Description:         chargeDescription,
				StatementDescriptor: chargeDescription,
				IdempotencyKey:      idemKey,
			})
			monitoring.ObserveChargeDuration(time.Since(started))
			if err != nil {
				return err
			}
			chargeID = ch.ID
			// Remember the capture before commit; if the process dies
			// between here and Commit, a retried checkout finds the
			// charge instead of capturing again.
			if err := s.charges.Remember(ctx, idemKey, chargeID); err != nil {
				log.Printf("checkout: failed to remember charge %s: %v", chargeID, err)
			}
		}

		order := &model.Order{
			EventID:      txEvent.ID,
			UserID:       userID,
			FirstName:    in.FirstName,
			LastName:     in.LastName,
			Email:        in.Email,
			MobileNumber: in.MobileNumber,
			ChargeID:     chargeID,
		}
		if err := s.store.CreateOrderTx(ctx, tx, order); err != nil {
			return err
		}
		if err := s.issueTicketsTx(ctx, tx, order, txOffer, txEvent, in.Quantity); err != nil {
			return err
		}
		orderID = order.ID
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.charges.Clear(ctx, idemKey); err != nil {
		log.Printf("checkout: failed to clear idempotency key: %v", err)
	}

	full, err := s.store.OrderWithTickets(ctx, orderID)
	if err != nil {
		return nil, err
	}
	s.notify(ctx, full, txOffer, txEvent)
	return full, nil
}

// issueTicketsTx creates the order's tickets, one row per purchased
// unit, each carrying the offer's price at the moment of sale and a
// fresh event-scoped barcode.
func (s *Service) issueTicketsTx(ctx context.Context, tx *sql.Tx, order *model.Order, offer *model.Offer, event *model.Event, quantity int) error {
	gen := barcode.NewGenerator(func(ctx context.Context, eventID uint64, code string) (bool, error) {
		return s.store.BarcodeExistsTx(ctx, tx, eventID, code)
	})
	for attempt := 0; attempt < ticketInsertAttempts; attempt++ {
		tickets := make([]model.Ticket, 0, quantity)
		for i := 0; i < quantity; i++ {
			code, err := gen.Generate(ctx, event.ID)
			if err != nil {
				return err
			}
			tickets = append(tickets, model.Ticket{
				OrderID: order.ID,
				OfferID: offer.ID,
				EventID: event.ID,
				Price:   offer.Price,
				Barcode: code,
				Status:  model.TicketStatusUnused,
			})
		}
		err := s.store.InsertTicketsTx(ctx, tx, tickets)
		if err == nil {
			return nil
		}
		if !errors.Is(err, repository.ErrDuplicateBarcode) {
			return err
		}
		monitoring.AddBarcodeRetry()
	}
	return repository.ErrDuplicateBarcode
}

// notify publishes the confirmation event. Failures are logged, never
// surfaced: the order is already committed.
func (s *Service) notify(ctx context.Context, order *model.Order, offer *model.Offer, event *model.Event) {
	loc, err := time.LoadLocation(event.Timezone)
	if err != nil {
		loc = time.UTC
	}
	barcodes := make([]string, 0, len(order.Tickets))
	for _, t := range order.Tickets {
		barcodes = append(barcodes, t.Barcode)
	}
	quantity := len(order.Tickets)
	total := offer.Price.Mul(decimal.NewFromInt(int64(quantity)))
	startDate := ""
	if event.StartDate != nil {
		startDate = event.StartDate.In(loc).Format(time.RFC3339)
	}
	ev := queue.OrderConfirmedEvent{
		OrderID:        order.ID,
		UserID:         order.UserID,
		EventID:        event.ID,
		EventName:      event.Name,
		FirstName:      order.FirstName,
		LastName:       order.LastName,
		Email:          order.Email,
		Quantity:       quantity,
		UnitPrice:      offer.Price.StringFixed(2),
		Total:          total.StringFixed(2),
		Currency:       currency,
		Barcodes:       barcodes,
		OrderDate:      order.CreatedAt.In(loc).Format(time.RFC3339),
		EventStartDate: startDate,
	}
	if err := s.notifier.OrderConfirmed(ctx, ev); err != nil {
		log.Printf("checkout: confirmation for order %d not delivered: %v", order.ID, err)
	}
}

// outcomeOf maps a checkout result onto a metrics outcome label.
func outcomeOf(err error) string {
	if err == nil {
		return monitoring.OutcomeSuccess
	}
	var (
		vErr     *ValidationError
		declined *payment.CardDeclinedError
		gateway  *payment.GatewayError
	)
	switch {
	case errors.As(err, &vErr), errors.Is(err, ErrUnauthenticated):
		return monitoring.OutcomeValidation
	case errors.Is(err, repository.ErrOfferNotFound),
		errors.Is(err, repository.ErrEventNotFound),
		errors.Is(err, ErrOfferNotOnSale):
		return monitoring.OutcomeNotFound
	case errors.Is(err, repository.ErrInsufficientInventory):
		return monitoring.OutcomeSoldOut
	case errors.As(err, &declined):
		return monitoring.OutcomeDeclined
	case errors.As(err, &gateway):
		return monitoring.OutcomeGateway
	default:
		return monitoring.OutcomeInternal
	}
}
