// internal/circulation/ledger.go
package circulation

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"lendledger/internal/catalog"
	"lendledger/internal/membership"
)

// Ledger records which borrower holds which items. It is the only component
// allowed to change item availability, and it serializes every borrow and
// return behind a single lock.
type Ledger struct {
	mu        sync.RWMutex
	items     *catalog.Registry
	borrowers *membership.Registry
	holdings  map[string][]Checkout

	now     func() time.Time
	logger  *slog.Logger
	tracer  trace.Tracer
	metrics *instruments
}

// Option configures a Ledger.
type Option func(*ledgerOptions)

type ledgerOptions struct {
	now            func() time.Time
	logger         *slog.Logger
	tracerProvider trace.TracerProvider
	meterProvider  metric.MeterProvider
}

// WithClock overrides the time source used for checkout timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *ledgerOptions) {
		o.now = now
	}
}

// WithLogger sets the logger for transaction outcomes.
func WithLogger(logger *slog.Logger) Option {
	return func(o *ledgerOptions) {
		o.logger = logger
	}
}

// WithTracerProvider sets the tracer provider. Defaults to the global one.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(o *ledgerOptions) {
		o.tracerProvider = tp
	}
}

// WithMeterProvider sets the meter provider. Defaults to the global one.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(o *ledgerOptions) {
		o.meterProvider = mp
	}
}

// NewLedger creates a ledger operating on the given registries.
func NewLedger(items *catalog.Registry, borrowers *membership.Registry, opts ...Option) *Ledger {
	o := ledgerOptions{
		now:            time.Now,
		logger:         slog.New(slog.NewJSONHandler(io.Discard, nil)),
		tracerProvider: otel.GetTracerProvider(),
		meterProvider:  otel.GetMeterProvider(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	return &Ledger{
		items:     items,
		borrowers: borrowers,
		holdings:  make(map[string][]Checkout),
		now:       o.now,
		logger:    o.logger,
		tracer:    o.tracerProvider.Tracer(instrumentationName),
		metrics:   newInstruments(o.meterProvider.Meter(instrumentationName)),
	}
}

// Borrow hands an available item to a borrower.
func (l *Ledger) Borrow(ctx context.Context, borrowerID, itemID string) (Checkout, error) {
	ctx, span := l.tracer.Start(ctx, "circulation.borrow",
		trace.WithAttributes(
			attribute.String("borrower.id", borrowerID),
			attribute.String("item.id", itemID),
		),
	)
	defer span.End()

	l.mu.Lock()
	defer l.mu.Unlock()

	// Step 1: Resolve borrower and item
	if _, err := l.borrowers.Get(borrowerID); err != nil {
		return Checkout{}, l.reject(ctx, span, "borrow", err)
	}
	item, err := l.items.Get(itemID)
	if err != nil {
		return Checkout{}, l.reject(ctx, span, "borrow", err)
	}

	// Step 2: Check availability
	if !item.Available {
		return Checkout{}, l.reject(ctx, span, "borrow", fmt.Errorf("%w: %s", ErrItemUnavailable, itemID))
	}

	// Step 3: Take the item and record the holding
	if err := l.items.SetAvailability(itemID, false); err != nil {
		return Checkout{}, l.reject(ctx, span, "borrow", err)
	}
	checkout := Checkout{
		ID:         uuid.New(),
		BorrowerID: borrowerID,
		ItemID:     itemID,
		BorrowedAt: l.now(),
		Status:     StatusActive,
	}
	l.holdings[borrowerID] = append(l.holdings[borrowerID], checkout)

	l.metrics.borrows.Add(ctx, 1)
	l.metrics.held.Add(ctx, 1)
	span.SetAttributes(attribute.String("checkout.id", checkout.ID.String()))
	l.logger.DebugContext(ctx, "item borrowed",
		"borrower_id", borrowerID,
		"item_id", itemID,
		"checkout_id", checkout.ID,
	)

	return checkout, nil
}

// Return releases an item held by the borrower. It fails with
// ErrNotBorrowedByMember both when the item is free and when someone else holds it.
func (l *Ledger) Return(ctx context.Context, borrowerID, itemID string) (Checkout, error) {
	ctx, span := l.tracer.Start(ctx, "circulation.return",
		trace.WithAttributes(
			attribute.String("borrower.id", borrowerID),
			attribute.String("item.id", itemID),
		),
	)
	defer span.End()

	l.mu.Lock()
	defer l.mu.Unlock()

	// Step 1: Resolve borrower and item
	if _, err := l.borrowers.Get(borrowerID); err != nil {
		return Checkout{}, l.reject(ctx, span, "return", err)
	}
	if _, err := l.items.Get(itemID); err != nil {
		return Checkout{}, l.reject(ctx, span, "return", err)
	}

	// Step 2: Find the borrower's holding
	held := l.holdings[borrowerID]
	idx := slices.IndexFunc(held, func(c Checkout) bool { return c.ItemID == itemID })
	if idx < 0 {
		return Checkout{}, l.reject(ctx, span, "return",
			fmt.Errorf("%w: borrower %s, item %s", ErrNotBorrowedByMember, borrowerID, itemID))
	}

	// Step 3: Release the item
	if err := l.items.SetAvailability(itemID, true); err != nil {
		return Checkout{}, l.reject(ctx, span, "return", err)
	}
	checkout := held[idx]
	held = slices.Delete(held, idx, idx+1)
	if len(held) == 0 {
		delete(l.holdings, borrowerID)
	} else {
		l.holdings[borrowerID] = held
	}

	checkout.ReturnedAt = l.now()
	checkout.Status = StatusReturned

	l.metrics.returns.Add(ctx, 1)
	l.metrics.held.Add(ctx, -1)
	span.SetAttributes(attribute.String("checkout.id", checkout.ID.String()))
	l.logger.DebugContext(ctx, "item returned",
		"borrower_id", borrowerID,
		"item_id", itemID,
		"checkout_id", checkout.ID,
	)

	return checkout, nil
}

// HeldBy returns the borrower's active checkouts in borrow order.
func (l *Ledger) HeldBy(borrowerID string) ([]Checkout, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if _, err := l.borrowers.Get(borrowerID); err != nil {
		return nil, err
	}
	held := l.holdings[borrowerID]
	if held == nil {
		return []Checkout{}, nil
	}
	return slices.Clone(held), nil
}

// HeldItems returns the items the borrower holds, in borrow order.
func (l *Ledger) HeldItems(borrowerID string) ([]catalog.Item, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if _, err := l.borrowers.Get(borrowerID); err != nil {
		return nil, err
	}
	held := l.holdings[borrowerID]
	items := make([]catalog.Item, 0, len(held))
	for _, c := range held {
		item, err := l.items.Get(c.ItemID)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

// ListAll returns every registered item as seen between transactions.
func (l *Ledger) ListAll() []catalog.Item {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.items.List()
}

// ListAvailable returns the items nobody holds, as seen between transactions.
func (l *Ledger) ListAvailable() []catalog.Item {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.items.ListAvailable()
}

// Inconsistencies counts violations of the rule that an item is unavailable
// exactly when one borrower holds it.
func (l *Ledger) Inconsistencies() int {
	l.mu.RLock()
	defer l.mu.RUnlock()

	holders := make(map[string]int)
	for _, held := range l.holdings {
		for _, c := range held {
			holders[c.ItemID]++
		}
	}

	violations := 0
	for _, item := range l.items.List() {
		n := holders[item.ID]
		delete(holders, item.ID)
		switch {
		case item.Available && n != 0:
			violations++
		case !item.Available && n != 1:
			violations++
		}
	}
	// Holdings that reference items the registry does not know.
	for _, n := range holders {
		violations += n
	}
	return violations
}

// Verify returns ErrInconsistentState if the ledger and the item registry disagree.
func (l *Ledger) Verify() error {
	if n := l.Inconsistencies(); n > 0 {
		return fmt.Errorf("%w: %d violations", ErrInconsistentState, n)
	}
	return nil
}

func (l *Ledger) reject(ctx context.Context, span trace.Span, op string, err error) error {
	reason := rejectionReason(err)
	l.metrics.rejections.Add(ctx, 1, metric.WithAttributes(
		attribute.String("operation", op),
		attribute.String("reason", reason),
	))
	span.RecordError(err)
	span.SetStatus(codes.Error, reason)
	l.logger.InfoContext(ctx, "transaction rejected",
		"operation", op,
		"reason", reason,
		"error", err,
	)
	return err
}
