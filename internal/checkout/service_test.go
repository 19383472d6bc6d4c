package checkout

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seatsupply/ticketing-backend/internal/idempotency"
	"github.com/seatsupply/ticketing-backend/internal/model"
	"github.com/seatsupply/ticketing-backend/internal/payment"
	"github.com/seatsupply/ticketing-backend/internal/queue"
	"github.com/seatsupply/ticketing-backend/internal/repository"
)

// fakeStore is an in-memory Store. WithinTx snapshots all mutable state
// and restores it when fn fails, mirroring a SQL rollback. The mutex is
// held for the whole transaction, which also stands in for the row lock
// the conditional UPDATE takes in production.
type fakeStore struct {
	mu      sync.Mutex
	offers  map[uint64]*model.Offer
	events  map[uint64]*model.Event
	orders  map[uint64]*model.Order
	tickets []model.Ticket

	nextOrderID  uint64
	nextTicketID uint64

	orderErr     error // forced CreateOrderTx failure
	dupRemaining int   // InsertTicketsTx failures to inject
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		offers: make(map[uint64]*model.Offer),
		events: make(map[uint64]*model.Event),
		orders: make(map[uint64]*model.Order),
	}
}

func (s *fakeStore) WithinTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	offers := make(map[uint64]*model.Offer, len(s.offers))
	for id, o := range s.offers {
		cp := *o
		offers[id] = &cp
	}
	tickets := len(s.tickets)
	nextOrder, nextTicket := s.nextOrderID, s.nextTicketID

	if err := fn(nil); err != nil {
		s.offers = offers
		for id := range s.orders {
			if id > nextOrder {
				delete(s.orders, id)
			}
		}
		s.tickets = s.tickets[:tickets]
		s.nextOrderID, s.nextTicketID = nextOrder, nextTicket
		return err
	}
	return nil
}

func (s *fakeStore) OfferByID(ctx context.Context, id uint64) (*model.Offer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.offers[id]
	if !ok {
		return nil, repository.ErrOfferNotFound
	}
	cp := *o
	return &cp, nil
}

func (s *fakeStore) OfferTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Offer, error) {
	o, ok := s.offers[id]
	if !ok {
		return nil, repository.ErrOfferNotFound
	}
	cp := *o
	return &cp, nil
}

func (s *fakeStore) ActiveEventTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Event, error) {
	e, ok := s.events[id]
	if !ok || e.Status != model.EventStatusActive {
		return nil, repository.ErrEventNotFound
	}
	cp := *e
	return &cp, nil
}

func (s *fakeStore) ReserveOfferTx(ctx context.Context, tx *sql.Tx, offerID uint64, qty int) error {
	o, ok := s.offers[offerID]
	if !ok || o.Quantity < qty {
		return repository.ErrInsufficientInventory
	}
	o.Quantity -= qty
	return nil
}

func (s *fakeStore) CreateOrderTx(ctx context.Context, tx *sql.Tx, o *model.Order) error {
	if s.orderErr != nil {
		return s.orderErr
	}
	s.nextOrderID++
	o.ID = s.nextOrderID
	cp := *o
	s.orders[o.ID] = &cp
	return nil
}

func (s *fakeStore) InsertTicketsTx(ctx context.Context, tx *sql.Tx, tickets []model.Ticket) error {
	if s.dupRemaining > 0 {
		s.dupRemaining--
		return repository.ErrDuplicateBarcode
	}
	for _, t := range tickets {
		for _, existing := range s.tickets {
			if existing.EventID == t.EventID && existing.Barcode == t.Barcode {
				return repository.ErrDuplicateBarcode
			}
		}
		s.nextTicketID++
		t.ID = s.nextTicketID
		s.tickets = append(s.tickets, t)
	}
	return nil
}

func (s *fakeStore) BarcodeExistsTx(ctx context.Context, tx *sql.Tx, eventID uint64, barcode string) (bool, error) {
	for _, t := range s.tickets {
		if t.EventID == eventID && t.Barcode == barcode {
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeStore) OrderWithTickets(ctx context.Context, id uint64) (*model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return nil, repository.ErrOrderNotFound
	}
	cp := *o
	for _, t := range s.tickets {
		if t.OrderID == id {
			cp.Tickets = append(cp.Tickets, t)
		}
	}
	return &cp, nil
}

type fakeGateway struct {
	mu    sync.Mutex
	calls []payment.ChargeRequest
	err   error
}

func (g *fakeGateway) Charge(ctx context.Context, req payment.ChargeRequest) (*payment.Charge, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls = append(g.calls, req)
	if g.err != nil {
		return nil, g.err
	}
	return &payment.Charge{
		ID:          fmt.Sprintf("ch_%d", len(g.calls)),
		AmountMinor: req.AmountMinor,
		Currency:    req.Currency,
	}, nil
}

type fakeNotifier struct {
	mu     sync.Mutex
	events []queue.OrderConfirmedEvent
	err    error
}

func (n *fakeNotifier) OrderConfirmed(ctx context.Context, ev queue.OrderConfirmedEvent) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, ev)
	return n.err
}

type fakeCharges struct {
	mu        sync.Mutex
	entries   map[string]string
	lookupErr error
}

func newFakeCharges() *fakeCharges { return &fakeCharges{entries: make(map[string]string)} }

func (c *fakeCharges) Lookup(ctx context.Context, key string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.lookupErr != nil {
		return "", c.lookupErr
	}
	return c.entries[key], nil
}

func (c *fakeCharges) Remember(ctx context.Context, key, chargeID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = chargeID
	return nil
}

func (c *fakeCharges) Clear(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
	return nil
}

// fixture wires a Service over the fakes with one active event and one
// on-sale offer: 10 units at 10.00, up to 10 per order.
type fixture struct {
	store    *fakeStore
	gateway  *fakeGateway
	notifier *fakeNotifier
	charges  *fakeCharges
	svc      *Service
}

func newFixture() *fixture {
	store := newFakeStore()
	store.events[1] = &model.Event{
		ID:       1,
		Name:     "Midnight Run",
		Timezone: "America/New_York",
		Status:   model.EventStatusActive,
	}
	store.offers[1] = &model.Offer{
		ID:               1,
		EventID:          1,
		Name:             "General Admission",
		Price:            decimal.RequireFromString("10.00"),
		Quantity:         10,
		MinOrderQuantity: 1,
		MaxOrderQuantity: 10,
	}
	gateway := &fakeGateway{}
	notifier := &fakeNotifier{}
	charges := newFakeCharges()
	return &fixture{
		store:    store,
		gateway:  gateway,
		notifier: notifier,
		charges:  charges,
		svc:      New(store, gateway, notifier, charges),
	}
}

func validInput() Input {
	return Input{
		OfferID:      1,
		Quantity:     5,
		Token:        "tok_visa",
		FirstName:    "Ada",
		LastName:     "Lovelace",
		Email:        "ada@example.com",
		MobileNumber: "+12125550100",
	}
}

func TestCheckoutSuccess(t *testing.T) {
	f := newFixture()

	order, err := f.svc.Checkout(context.Background(), 7, validInput())
	require.NoError(t, err)
	require.NotNil(t, order)

	assert.EqualValues(t, 1, order.EventID)
	assert.EqualValues(t, 7, order.UserID)
	assert.Equal(t, "ch_1", order.ChargeID)
	require.Len(t, order.Tickets, 5)

	seen := make(map[string]bool)
	for _, tk := range order.Tickets {
		assert.Len(t, tk.Barcode, 12)
		assert.False(t, seen[tk.Barcode], "barcode %q issued twice", tk.Barcode)
		seen[tk.Barcode] = true
		assert.Equal(t, model.TicketStatusUnused, tk.Status)
		assert.True(t, tk.Price.Equal(decimal.RequireFromString("10.00")))
	}

	require.Len(t, f.gateway.calls, 1)
	call := f.gateway.calls[0]
	assert.EqualValues(t, 5000, call.AmountMinor)
	assert.Equal(t, "usd", call.Currency)
	assert.Equal(t, "tok_visa", call.Token)
	assert.NotEmpty(t, call.IdempotencyKey)

	assert.Equal(t, 5, f.store.offers[1].Quantity, "inventory should be decremented")
	assert.Empty(t, f.charges.entries, "idempotency entry should be cleared after commit")

	require.Len(t, f.notifier.events, 1)
	ev := f.notifier.events[0]
	assert.Equal(t, order.ID, ev.OrderID)
	assert.Equal(t, "Midnight Run", ev.EventName)
	assert.Equal(t, 5, ev.Quantity)
	assert.Equal(t, "10.00", ev.UnitPrice)
	assert.Equal(t, "50.00", ev.Total)
	assert.Len(t, ev.Barcodes, 5)
}

func TestCheckoutUnauthenticated(t *testing.T) {
	f := newFixture()

	_, err := f.svc.Checkout(context.Background(), 0, validInput())
	assert.ErrorIs(t, err, ErrUnauthenticated)
	assert.Empty(t, f.gateway.calls)
}

func TestCheckoutValidationCollectsAllFields(t *testing.T) {
	f := newFixture()

	in := validInput()
	in.Token = ""
	in.Quantity = 0
	in.Email = "not-an-email"

	_, err := f.svc.Checkout(context.Background(), 7, in)

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	fields := make([]string, 0, len(vErr.Fields))
	for _, fe := range vErr.Fields {
		fields = append(fields, fe.Field)
	}
	assert.ElementsMatch(t, []string{"token", "quantity", "email"}, fields)
	assert.Empty(t, f.gateway.calls)
	assert.Equal(t, 10, f.store.offers[1].Quantity)
}

func TestCheckoutOfferNotFound(t *testing.T) {
	f := newFixture()

	in := validInput()
	in.OfferID = 99

	_, err := f.svc.Checkout(context.Background(), 7, in)
	assert.ErrorIs(t, err, repository.ErrOfferNotFound)
}

func TestCheckoutOfferNotOnSale(t *testing.T) {
	f := newFixture()
	past := timePtr(-time.Hour)
	f.store.offers[1].EndSaleDate = past

	_, err := f.svc.Checkout(context.Background(), 7, validInput())
	assert.ErrorIs(t, err, ErrOfferNotOnSale)
	assert.Empty(t, f.gateway.calls)
}

func TestCheckoutEventNotActive(t *testing.T) {
	f := newFixture()
	f.store.events[1].Status = model.EventStatusDraft

	_, err := f.svc.Checkout(context.Background(), 7, validInput())
	assert.ErrorIs(t, err, repository.ErrEventNotFound)
	assert.Empty(t, f.gateway.calls)
	assert.Equal(t, 10, f.store.offers[1].Quantity, "rollback should restore the reservation")
}

func TestCheckoutQuantityAboveOfferMaximum(t *testing.T) {
	f := newFixture()
	f.store.offers[1].MaxOrderQuantity = 4

	_, err := f.svc.Checkout(context.Background(), 7, validInput())

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	require.Len(t, vErr.Fields, 1)
	assert.Equal(t, "quantity", vErr.Fields[0].Field)
	assert.Empty(t, f.gateway.calls)
}

func TestCheckoutInsufficientInventory(t *testing.T) {
	f := newFixture()
	f.store.offers[1].Quantity = 3

	_, err := f.svc.Checkout(context.Background(), 7, validInput())
	assert.ErrorIs(t, err, repository.ErrInsufficientInventory)
	assert.Empty(t, f.gateway.calls, "gateway must not be charged for unavailable inventory")
	assert.Equal(t, 3, f.store.offers[1].Quantity)
}

func TestCheckoutCardDeclinedRollsBack(t *testing.T) {
	f := newFixture()
	f.gateway.err = &payment.CardDeclinedError{Code: "card_declined", Message: "insufficient funds"}

	_, err := f.svc.Checkout(context.Background(), 7, validInput())

	var declined *payment.CardDeclinedError
	assert.ErrorAs(t, err, &declined)
	assert.Equal(t, 10, f.store.offers[1].Quantity, "declined charge must restore inventory")
	assert.Empty(t, f.store.orders)
	assert.Empty(t, f.store.tickets)
	assert.Empty(t, f.notifier.events)
}

func TestCheckoutOrderInsertFailureRetainsCharge(t *testing.T) {
	f := newFixture()
	f.store.orderErr = errors.New("disk full")

	_, err := f.svc.Checkout(context.Background(), 7, validInput())
	require.Error(t, err)

	assert.Equal(t, 10, f.store.offers[1].Quantity)
	assert.Empty(t, f.store.orders)
	// The charge went through before the failure; the idempotency entry
	// must survive so a retry reuses it instead of charging again.
	require.Len(t, f.gateway.calls, 1)
	key := idempotency.KeyFor(7, 1, 5, "tok_visa")
	assert.Equal(t, "ch_1", f.charges.entries[key])

	f.store.orderErr = nil
	order, err := f.svc.Checkout(context.Background(), 7, validInput())
	require.NoError(t, err)
	assert.Equal(t, "ch_1", order.ChargeID, "retry should reuse the remembered charge")
	assert.Len(t, f.gateway.calls, 1, "retry must not capture a second charge")
	assert.Empty(t, f.charges.entries)
}

func TestCheckoutIdempotencyLookupFailureDegrades(t *testing.T) {
	f := newFixture()
	f.charges.lookupErr = errors.New("redis down")

	order, err := f.svc.Checkout(context.Background(), 7, validInput())
	require.NoError(t, err)
	assert.Equal(t, "ch_1", order.ChargeID)
}

func TestCheckoutNotifierFailureDoesNotFailOrder(t *testing.T) {
	f := newFixture()
	f.notifier.err = errors.New("broker unreachable")

	order, err := f.svc.Checkout(context.Background(), 7, validInput())
	require.NoError(t, err)
	require.Len(t, order.Tickets, 5)
	assert.Equal(t, 5, f.store.offers[1].Quantity, "committed order survives a lost notification")
}

func TestCheckoutDuplicateBarcodeRetries(t *testing.T) {
	f := newFixture()
	f.store.dupRemaining = 1

	order, err := f.svc.Checkout(context.Background(), 7, validInput())
	require.NoError(t, err)
	assert.Len(t, order.Tickets, 5)
}

func TestCheckoutDuplicateBarcodeExhaustion(t *testing.T) {
	f := newFixture()
	f.store.dupRemaining = ticketInsertAttempts + 1

	_, err := f.svc.Checkout(context.Background(), 7, validInput())
	assert.ErrorIs(t, err, repository.ErrDuplicateBarcode)
	assert.Equal(t, 10, f.store.offers[1].Quantity)
	assert.Empty(t, f.store.orders)
}

func TestCheckoutPriceSnapshotSurvivesRepricing(t *testing.T) {
	f := newFixture()

	in := validInput()
	in.Quantity = 2
	first, err := f.svc.Checkout(context.Background(), 7, in)
	require.NoError(t, err)

	f.store.offers[1].Price = decimal.RequireFromString("25.00")

	in.Token = "tok_other"
	second, err := f.svc.Checkout(context.Background(), 7, in)
	require.NoError(t, err)

	reloaded, err := f.store.OrderWithTickets(context.Background(), first.ID)
	require.NoError(t, err)
	for _, tk := range reloaded.Tickets {
		assert.True(t, tk.Price.Equal(decimal.RequireFromString("10.00")),
			"earlier tickets keep the price they were sold at")
	}
	for _, tk := range second.Tickets {
		assert.True(t, tk.Price.Equal(decimal.RequireFromString("25.00")))
	}
	require.Len(t, f.gateway.calls, 2)
	assert.EqualValues(t, 5000, f.gateway.calls[1].AmountMinor)
}

func TestCheckoutConcurrentOversell(t *testing.T) {
	f := newFixture()
	f.store.offers[1].Quantity = 5

	run := func(token string) error {
		in := validInput()
		in.Quantity = 3
		in.Token = token
		_, err := f.svc.Checkout(context.Background(), 7, in)
		return err
	}

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = run(fmt.Sprintf("tok_%d", i))
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, repository.ErrInsufficientInventory)
		}
	}
	assert.Equal(t, 1, succeeded, "only one of two 3-unit orders fits in 5 units")
	assert.Equal(t, 2, f.store.offers[1].Quantity)
	assert.Len(t, f.store.tickets, 3)
}

func timePtr(d time.Duration) *time.Time {
	t := time.Now().Add(d)
	return &t
}
