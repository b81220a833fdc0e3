// internal/circulation/telemetry.go
package circulation

import (
	"errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"

	"lendledger/internal/catalog"
	"lendledger/internal/membership"
)

const instrumentationName = "lendledger/circulation"

type instruments struct {
	borrows    metric.Int64Counter
	returns    metric.Int64Counter
	rejections metric.Int64Counter
	held       metric.Int64UpDownCounter
}

func newInstruments(meter metric.Meter) *instruments {
	ins := &instruments{}
	var err error

	if ins.borrows, err = meter.Int64Counter("ledger.borrows",
		metric.WithDescription("Successful borrow transactions")); err != nil {
		otel.Handle(err)
		ins.borrows = noop.Int64Counter{}
	}
	if ins.returns, err = meter.Int64Counter("ledger.returns",
		metric.WithDescription("Successful return transactions")); err != nil {
		otel.Handle(err)
		ins.returns = noop.Int64Counter{}
	}
	if ins.rejections, err = meter.Int64Counter("ledger.rejections",
		metric.WithDescription("Borrow and return transactions refused by the ledger")); err != nil {
		otel.Handle(err)
		ins.rejections = noop.Int64Counter{}
	}
	if ins.held, err = meter.Int64UpDownCounter("ledger.items_held",
		metric.WithDescription("Items currently held by borrowers")); err != nil {
		otel.Handle(err)
		ins.held = noop.Int64UpDownCounter{}
	}

	return ins
}

// rejectionReason maps a ledger error onto a low-cardinality metric attribute.
func rejectionReason(err error) string {
	switch {
	case errors.Is(err, membership.ErrBorrowerNotFound):
		return "borrower_not_found"
	case errors.Is(err, catalog.ErrItemNotFound):
		return "item_not_found"
	case errors.Is(err, ErrItemUnavailable):
		return "item_unavailable"
	case errors.Is(err, ErrNotBorrowedByMember):
		return "not_borrowed_by_member"
	default:
		return "internal"
	}
}
