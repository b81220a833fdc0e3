// internal/library/implementation.go
package library

import (
	"context"
	"io"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"lendledger/internal/catalog"
	"lendledger/internal/circulation"
	"lendledger/internal/membership"
	"lendledger/internal/notify"
)

// service implements the Service interface.
type service struct {
	items     *catalog.Registry
	borrowers *membership.Registry
	ledger    *circulation.Ledger
	notifier  *notify.Notifier

	now    func() time.Time
	logger *slog.Logger
	tracer trace.Tracer
}

// Option configures the service.
type Option func(*options)

type options struct {
	now            func() time.Time
	logger         *slog.Logger
	tracerProvider trace.TracerProvider
	meterProvider  metric.MeterProvider
}

// WithClock overrides the time source for checkouts and events.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithTracerProvider sets the tracer provider used by the service and its ledger.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(o *options) { o.tracerProvider = tp }
}

// WithMeterProvider sets the meter provider used by the ledger.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(o *options) { o.meterProvider = mp }
}

// NewService creates an empty library with its own registries and ledger.
func NewService(opts ...Option) Service {
	o := options{
		now:            time.Now,
		logger:         slog.New(slog.NewJSONHandler(io.Discard, nil)),
		tracerProvider: otel.GetTracerProvider(),
		meterProvider:  otel.GetMeterProvider(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	items := catalog.NewRegistry()
	borrowers := membership.NewRegistry()
	ledger := circulation.NewLedger(items, borrowers,
		circulation.WithClock(o.now),
		circulation.WithLogger(o.logger),
		circulation.WithTracerProvider(o.tracerProvider),
		circulation.WithMeterProvider(o.meterProvider),
	)

	return &service{
		items:     items,
		borrowers: borrowers,
		ledger:    ledger,
		notifier:  notify.NewNotifier(),
		now:       o.now,
		logger:    o.logger,
		tracer:    o.tracerProvider.Tracer("lendledger/library"),
	}
}

// RegisterItem adds an item to the catalog. It always starts out available.
func (s *service) RegisterItem(ctx context.Context, item catalog.Item) error {
	ctx, span := s.tracer.Start(ctx, "library.register_item",
		trace.WithAttributes(attribute.String("item.id", item.ID)))
	defer span.End()

	stored, err := s.items.Register(item)
	if err != nil {
		return fail(span, err)
	}

	s.logger.InfoContext(ctx, "item registered", "item_id", stored.ID, "title", stored.Title)
	s.notifier.Publish(ctx, notify.Event{
		Type: catalog.EventItemRegistered,
		Data: catalog.ItemRegisteredEvent{
			ID:     stored.ID,
			Title:  stored.Title,
			Author: stored.Author,
		},
		OccurredAt: s.now(),
	})
	return nil
}

// RegisterBorrower adds a borrower.
func (s *service) RegisterBorrower(ctx context.Context, borrower membership.Borrower) error {
	ctx, span := s.tracer.Start(ctx, "library.register_borrower",
		trace.WithAttributes(attribute.String("borrower.id", borrower.ID)))
	defer span.End()

	if err := s.borrowers.Register(borrower); err != nil {
		return fail(span, err)
	}

	s.logger.InfoContext(ctx, "borrower registered", "borrower_id", borrower.ID, "name", borrower.Name)
	s.notifier.Publish(ctx, notify.Event{
		Type: membership.EventBorrowerRegistered,
		Data: membership.BorrowerRegisteredEvent{
			ID:   borrower.ID,
			Name: borrower.Name,
		},
		OccurredAt: s.now(),
	})
	return nil
}

// Borrow delegates the transaction to the ledger and announces the result.
func (s *service) Borrow(ctx context.Context, borrowerID, itemID string) error {
	ctx, span := s.tracer.Start(ctx, "library.borrow")
	defer span.End()

	checkout, err := s.ledger.Borrow(ctx, borrowerID, itemID)
	if err != nil {
		return fail(span, err)
	}

	s.notifier.Publish(ctx, notify.Event{
		Type: circulation.EventItemBorrowed,
		Data: circulation.ItemBorrowedEvent{
			CheckoutID: checkout.ID,
			BorrowerID: checkout.BorrowerID,
			ItemID:     checkout.ItemID,
			BorrowedAt: checkout.BorrowedAt,
		},
		OccurredAt: checkout.BorrowedAt,
	})
	return nil
}

// Return delegates the transaction to the ledger and announces the result.
func (s *service) Return(ctx context.Context, borrowerID, itemID string) error {
	ctx, span := s.tracer.Start(ctx, "library.return")
	defer span.End()

	checkout, err := s.ledger.Return(ctx, borrowerID, itemID)
	if err != nil {
		return fail(span, err)
	}

	s.notifier.Publish(ctx, notify.Event{
		Type: circulation.EventItemReturned,
		Data: circulation.ItemReturnedEvent{
			CheckoutID: checkout.ID,
			BorrowerID: checkout.BorrowerID,
			ItemID:     checkout.ItemID,
			ReturnedAt: checkout.ReturnedAt,
		},
		OccurredAt: checkout.ReturnedAt,
	})
	return nil
}

// GetItem returns a copy of the item.
func (s *service) GetItem(_ context.Context, itemID string) (catalog.Item, error) {
	return s.items.Get(itemID)
}

// GetBorrower returns the borrower.
func (s *service) GetBorrower(_ context.Context, borrowerID string) (membership.Borrower, error) {
	return s.borrowers.Get(borrowerID)
}

// ListAllItems returns every item in registration order.
func (s *service) ListAllItems(_ context.Context) []catalog.Item {
	return s.ledger.ListAll()
}

// ListAvailableItems returns the items nobody holds.
func (s *service) ListAvailableItems(_ context.Context) []catalog.Item {
	return s.ledger.ListAvailable()
}

// ListBorrowers returns every borrower in registration order.
func (s *service) ListBorrowers(_ context.Context) []membership.Borrower {
	return s.borrowers.List()
}

// ItemsHeldBy returns the borrower's items in borrow order.
func (s *service) ItemsHeldBy(_ context.Context, borrowerID string) ([]catalog.Item, error) {
	return s.ledger.HeldItems(borrowerID)
}

// Verify checks that the ledger agrees with item availability.
func (s *service) Verify(_ context.Context) error {
	return s.ledger.Verify()
}

// Subscribe registers a handler for library events.
func (s *service) Subscribe(handler notify.Handler) notify.Subscription {
	return s.notifier.Subscribe(handler)
}

// Unsubscribe removes a subscription.
func (s *service) Unsubscribe(sub notify.Subscription) bool {
	return s.notifier.Unsubscribe(sub)
}

func fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}
