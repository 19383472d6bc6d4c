package checkout

import (
	"context"
	"database/sql"

	"github.com/seatsupply/ticketing-backend/internal/model"
	"github.com/seatsupply/ticketing-backend/internal/repository"
)

// Store is the persistence surface the checkout service needs. The
// production implementation delegates to the SQL repositories; tests
// substitute an in-memory double. All ...Tx methods run inside the
// transaction handed out by WithinTx.
type Store interface {
	// WithinTx runs fn inside a transaction, committing when fn
	// returns nil and rolling back otherwise.
	WithinTx(ctx context.Context, fn func(tx *sql.Tx) error) error

	OfferByID(ctx context.Context, id uint64) (*model.Offer, error)
	OfferTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Offer, error)
	ActiveEventTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Event, error)
	ReserveOfferTx(ctx context.Context, tx *sql.Tx, offerID uint64, qty int) error
	CreateOrderTx(ctx context.Context, tx *sql.Tx, o *model.Order) error
	InsertTicketsTx(ctx context.Context, tx *sql.Tx, tickets []model.Ticket) error
	BarcodeExistsTx(ctx context.Context, tx *sql.Tx, eventID uint64, barcode string) (bool, error)
	OrderWithTickets(ctx context.Context, id uint64) (*model.Order, error)
}

// sqlStore implements Store over the repository layer.
type sqlStore struct {
	db      *sql.DB
	offers  *repository.OfferRepo
	events  *repository.EventRepo
	orders  *repository.OrderRepo
	tickets *repository.TicketRepo
}

// NewSQLStore builds the production Store from a DB handle.
func NewSQLStore(db *sql.DB) Store {
	return &sqlStore{
		db:      db,
		offers:  repository.NewOfferRepo(db),
		events:  repository.NewEventRepo(db),
		orders:  repository.NewOrderRepo(db),
		tickets: repository.NewTicketRepo(db),
	}
}

func (s *sqlStore) WithinTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

func (s *sqlStore) OfferByID(ctx context.Context, id uint64) (*model.Offer, error) {
	return s.offers.GetByID(ctx, id)
}

func (s *sqlStore) OfferTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Offer, error) {
	return s.offers.GetTx(ctx, tx, id)
}

func (s *sqlStore) ActiveEventTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Event, error) {
	return s.events.GetActiveTx(ctx, tx, id)
}

func (s *sqlStore) ReserveOfferTx(ctx context.Context, tx *sql.Tx, offerID uint64, qty int) error {
	return s.offers.ReserveTx(ctx, tx, offerID, qty)
}

func (s *sqlStore) CreateOrderTx(ctx context.Context, tx *sql.Tx, o *model.Order) error {
	return s.orders.CreateTx(ctx, tx, o)
}

func (s *sqlStore) InsertTicketsTx(ctx context.Context, tx *sql.Tx, tickets []model.Ticket) error {
	return s.tickets.InsertBatchTx(ctx, tx, tickets)
}

func (s *sqlStore) BarcodeExistsTx(ctx context.Context, tx *sql.Tx, eventID uint64, barcode string) (bool, error) {
	return s.tickets.BarcodeExistsTx(ctx, tx, eventID, barcode)
}

func (s *sqlStore) OrderWithTickets(ctx context.Context, id uint64) (*model.Order, error) {
	return s.orders.GetWithTickets(ctx, id)
}
