// cmd/circulation/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"

	"lendledger/internal/catalog"
	"lendledger/internal/circulation"
	"lendledger/internal/config"
	"lendledger/internal/library"
	"lendledger/internal/logging"
	"lendledger/internal/membership"
	"lendledger/internal/notify"
	"lendledger/internal/telemetry"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.New(os.Stdout, logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	if err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}

	tcfg := telemetry.Config{
		ServiceName:  cfg.ServiceName,
		OTLPEndpoint: cfg.OTLPEndpoint,
	}
	if err := execute(context.Background(), tcfg, logger, run); err != nil {
		logger.Error("demonstration failed", "error", err)
		os.Exit(1)
	}
}

// execute wires the library to telemetry, runs the scenario and shuts the
// providers down before returning, whatever the outcome.
func execute(ctx context.Context, tcfg telemetry.Config, logger *slog.Logger,
	scenario func(context.Context, library.Service, *slog.Logger) error) error {
	providers, err := telemetry.Setup(ctx, tcfg)
	if err != nil {
		return fmt.Errorf("set up telemetry: %w", err)
	}

	svc := library.NewService(
		library.WithLogger(logger),
		library.WithTracerProvider(providers.TracerProvider),
		library.WithMeterProvider(providers.MeterProvider),
	)
	svc.Subscribe(func(ctx context.Context, e notify.Event) {
		switch data := e.Data.(type) {
		case circulation.ItemBorrowedEvent:
			logger.InfoContext(ctx, "borrowed", "borrower_id", data.BorrowerID, "item_id", data.ItemID)
		case circulation.ItemReturnedEvent:
			logger.InfoContext(ctx, "returned", "borrower_id", data.BorrowerID, "item_id", data.ItemID)
		}
	})

	runErr := scenario(ctx, svc, logger)
	if err := providers.Shutdown(ctx); err != nil {
		return errors.Join(runErr, fmt.Errorf("telemetry shutdown: %w", err))
	}
	return runErr
}

func run(ctx context.Context, svc library.Service, logger *slog.Logger) error {
	// Adding books to the library
	for _, item := range []catalog.Item{
		{ID: "1234567890", Title: "1984", Author: "George Orwell"},
		{ID: "0987654321", Title: "To Kill a Mockingbird", Author: "Harper Lee"},
	} {
		if err := svc.RegisterItem(ctx, item); err != nil {
			return err
		}
	}

	// Adding members to the library
	for _, borrower := range []membership.Borrower{
		{ID: "M001", Name: "Alice"},
		{ID: "M002", Name: "Bob"},
	} {
		if err := svc.RegisterBorrower(ctx, borrower); err != nil {
			return err
		}
	}

	steps := []struct {
		borrow     bool
		borrowerID string
		itemID     string
	}{
		{true, "M001", "1234567890"},  // Alice borrows 1984
		{true, "M002", "1234567890"},  // Bob tries to borrow 1984
		{false, "M001", "1234567890"}, // Alice returns 1984
		{true, "M002", "1234567890"},  // Bob borrows 1984 now
		{false, "M001", "0987654321"}, // Alice returns a book she never borrowed
	}

	for _, step := range steps {
		op, do := "return", svc.Return
		if step.borrow {
			op, do = "borrow", svc.Borrow
		}

		err := do(ctx, step.borrowerID, step.itemID)
		switch {
		case err == nil:
		case errors.Is(err, library.ErrItemUnavailable), errors.Is(err, library.ErrNotBorrowedByMember):
			logger.InfoContext(ctx, "request refused",
				"operation", op,
				"borrower_id", step.borrowerID,
				"item_id", step.itemID,
				"reason", err.Error(),
			)
		default:
			return err
		}
	}

	for _, item := range svc.ListAvailableItems(ctx) {
		logger.InfoContext(ctx, "available", "item_id", item.ID, "title", item.Title, "author", item.Author)
	}

	return svc.Verify(ctx)
}
