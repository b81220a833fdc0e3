// internal/chaos/experiments.go
package chaos

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"lendledger/internal/catalog"
	"lendledger/internal/circulation"
	"lendledger/internal/membership"
)

// Target is the borrow/return surface the experiments put under stress.
type Target interface {
	RegisterItem(ctx context.Context, item catalog.Item) error
	RegisterBorrower(ctx context.Context, borrower membership.Borrower) error
	Borrow(ctx context.Context, borrowerID, itemID string) error
	Return(ctx context.Context, borrowerID, itemID string) error
	GetItem(ctx context.Context, itemID string) (catalog.Item, error)
	Verify(ctx context.Context) error
}

// Settings sizes the predefined experiments.
type Settings struct {
	Concurrency    int
	RatePerSecond  float64
	Duration       time.Duration
	SampleInterval time.Duration
}

// RegisterExperiments registers all predefined chaos experiments with the engine.
func (e *Engine) RegisterExperiments(target Target, s Settings) {
	e.RegisterExperiment(ConcurrentBorrowRace(target, s))
	e.RegisterExperiment(UnauthorizedReturnStorm(target, s))
	e.RegisterExperiment(ThrottledChurn(target, s))
}

// ConcurrentBorrowRace fires many simultaneous borrows at a single item.
func ConcurrentBorrowRace(target Target, s Settings) Experiment {
	var (
		mu          sync.Mutex
		itemID      string
		borrowerIDs []string
		winners     []string
		attempted   atomic.Bool
	)

	reset := func() ([]string, []string) {
		mu.Lock()
		defer mu.Unlock()
		itemID = "race-" + uuid.NewString()
		borrowerIDs = fixtureIDs("racer", s.Concurrency)
		winners = nil
		attempted.Store(false)
		return []string{itemID}, borrowerIDs
	}

	return Experiment{
		Name:       "concurrent-borrow-race",
		Hypothesis: "Exactly one borrower wins when many borrow the same item simultaneously",
		SteadyState: []Metric{
			inconsistencyMetric(target),
			{
				Name: "double_borrows",
				Query: func(context.Context) (float64, error) {
					mu.Lock()
					defer mu.Unlock()
					if len(winners) <= 1 {
						return 0, nil
					}
					return float64(len(winners) - 1), nil
				},
				Threshold: Threshold{Operator: "==", Value: 0},
			},
			{
				Name: "lost_borrows",
				Query: func(context.Context) (float64, error) {
					mu.Lock()
					defer mu.Unlock()
					if attempted.Load() && len(winners) == 0 {
						return 1, nil
					}
					return 0, nil
				},
				Threshold: Threshold{Operator: "==", Value: 0},
			},
		},
		Method: []Action{
			seedAction(target, reset),
			{
				Type:   "concurrent-borrows",
				Target: "circulation-ledger",
				Parameters: map[string]any{
					"concurrency": max(s.Concurrency, 1),
				},
				Execute: func(ctx context.Context) error {
					var wg sync.WaitGroup
					var unexpected atomic.Int64
					start := make(chan struct{})

					for _, borrowerID := range borrowerIDs {
						wg.Add(1)
						go func(b string) {
							defer wg.Done()
							<-start
							err := target.Borrow(ctx, b, itemID)
							switch {
							case err == nil:
								mu.Lock()
								winners = append(winners, b)
								mu.Unlock()
							case !errors.Is(err, circulation.ErrItemUnavailable):
								unexpected.Add(1)
							}
						}(borrowerID)
					}
					close(start)
					wg.Wait()
					attempted.Store(true)

					if n := unexpected.Load(); n > 0 {
						return fmt.Errorf("%d borrows failed with an unexpected error", n)
					}
					return nil
				},
			},
		},
		Rollback: []Action{
			{
				Type:   "return-winners",
				Target: "circulation-ledger",
				Execute: func(ctx context.Context) error {
					mu.Lock()
					defer mu.Unlock()
					var errs []error
					for _, b := range winners {
						errs = append(errs, target.Return(ctx, b, itemID))
					}
					return errors.Join(errs...)
				},
			},
		},
		Validation: []Assertion{
			{
				Metric:    "double_borrows",
				Condition: func(v float64) bool { return v == 0 },
				Message:   "No item may be held by two borrowers",
			},
			{
				Metric:    "lost_borrows",
				Condition: func(v float64) bool { return v == 0 },
				Message:   "One of the contenders must win",
			},
			{
				Metric:    "inconsistencies",
				Condition: func(v float64) bool { return v == 0 },
				Message:   "Ledger and availability flags must agree",
			},
		},
		Duration:       s.Duration,
		SampleInterval: s.SampleInterval,
		BlastRadius:    0.1,
	}
}

// UnauthorizedReturnStorm has many non-holders try to return a held item.
func UnauthorizedReturnStorm(target Target, s Settings) Experiment {
	var (
		itemID      string
		holderID    string
		intruderIDs []string
		accepted    atomic.Int64
		seeded      atomic.Bool
		released    atomic.Bool
	)

	reset := func() ([]string, []string) {
		itemID = "storm-" + uuid.NewString()
		holderID = "holder-" + uuid.NewString()
		intruderIDs = fixtureIDs("intruder", s.Concurrency)
		accepted.Store(0)
		seeded.Store(false)
		released.Store(false)
		return []string{itemID}, append([]string{holderID}, intruderIDs...)
	}

	return Experiment{
		Name:       "unauthorized-return-storm",
		Hypothesis: "Only the holder can return an item, however many others try at once",
		SteadyState: []Metric{
			inconsistencyMetric(target),
			{
				Name: "accepted_unauthorized_returns",
				Query: func(context.Context) (float64, error) {
					return float64(accepted.Load()), nil
				},
				Threshold: Threshold{Operator: "==", Value: 0},
			},
			{
				Name: "holder_lost_item",
				Query: func(ctx context.Context) (float64, error) {
					if !seeded.Load() || released.Load() {
						return 0, nil
					}
					item, err := target.GetItem(ctx, itemID)
					if err != nil {
						return 0, err
					}
					if item.Available {
						return 1, nil
					}
					return 0, nil
				},
				Threshold: Threshold{Operator: "==", Value: 0},
			},
		},
		Method: []Action{
			seedAction(target, reset),
			{
				Type:   "holder-borrows",
				Target: "circulation-ledger",
				Execute: func(ctx context.Context) error {
					if err := target.Borrow(ctx, holderID, itemID); err != nil {
						return err
					}
					seeded.Store(true)
					return nil
				},
			},
			{
				Type:   "unauthorized-returns",
				Target: "circulation-ledger",
				Parameters: map[string]any{
					"concurrency": max(s.Concurrency, 1),
				},
				Execute: func(ctx context.Context) error {
					var wg sync.WaitGroup
					var unexpected atomic.Int64
					for _, intruderID := range intruderIDs {
						wg.Add(1)
						go func(b string) {
							defer wg.Done()
							err := target.Return(ctx, b, itemID)
							switch {
							case err == nil:
								accepted.Add(1)
							case !errors.Is(err, circulation.ErrNotBorrowedByMember):
								unexpected.Add(1)
							}
						}(intruderID)
					}
					wg.Wait()

					if n := unexpected.Load(); n > 0 {
						return fmt.Errorf("%d returns failed with an unexpected error", n)
					}
					return nil
				},
			},
		},
		Rollback: []Action{
			{
				Type:   "holder-returns",
				Target: "circulation-ledger",
				Execute: func(ctx context.Context) error {
					if !seeded.Load() {
						return nil
					}
					released.Store(true)
					return target.Return(ctx, holderID, itemID)
				},
			},
		},
		Validation: []Assertion{
			{
				Metric:    "accepted_unauthorized_returns",
				Condition: func(v float64) bool { return v == 0 },
				Message:   "Returns by non-holders must all be refused",
			},
			{
				Metric:    "holder_lost_item",
				Condition: func(v float64) bool { return v == 0 },
				Message:   "The holder must keep the item until returning it",
			},
			{
				Metric:    "inconsistencies",
				Condition: func(v float64) bool { return v == 0 },
				Message:   "Ledger and availability flags must agree",
			},
		},
		Duration:       s.Duration,
		SampleInterval: s.SampleInterval,
		BlastRadius:    0.1,
	}
}

// ThrottledChurn keeps borrowers borrowing and returning a small pool of items
// at a fixed rate for the whole observation window.
func ThrottledChurn(target Target, s Settings) Experiment {
	const poolSize = 4

	workers := min(max(s.Concurrency, 1), 16)

	var (
		itemIDs     []string
		borrowerIDs []string
		stop        context.CancelFunc
		wg          sync.WaitGroup
		borrows     atomic.Int64
		unexpected  atomic.Int64
	)

	reset := func() ([]string, []string) {
		itemIDs = fixtureIDs("churn-item", poolSize)
		borrowerIDs = fixtureIDs("churner", workers)
		stop = nil
		borrows.Store(0)
		unexpected.Store(0)
		return itemIDs, borrowerIDs
	}

	return Experiment{
		Name:       "throttled-churn",
		Hypothesis: "Sustained borrow/return churn never leaves the ledger inconsistent",
		SteadyState: []Metric{
			inconsistencyMetric(target),
			{
				Name: "unexpected_errors",
				Query: func(context.Context) (float64, error) {
					return float64(unexpected.Load()), nil
				},
				Threshold: Threshold{Operator: "==", Value: 0},
			},
		},
		Method: []Action{
			seedAction(target, reset),
			{
				Type:   "throttled-churn",
				Target: "circulation-ledger",
				Parameters: map[string]any{
					"workers": workers,
					"rate":    s.RatePerSecond,
				},
				Execute: func(ctx context.Context) error {
					limit := rate.Inf
					if s.RatePerSecond > 0 {
						limit = rate.Limit(s.RatePerSecond)
					}
					limiter := rate.NewLimiter(limit, workers)
					churnCtx, cancel := context.WithCancel(ctx)
					stop = cancel

					for _, borrowerID := range borrowerIDs {
						wg.Add(1)
						go func(b string) {
							defer wg.Done()
							for limiter.Wait(churnCtx) == nil {
								itemID := itemIDs[rand.IntN(len(itemIDs))]
								err := target.Borrow(churnCtx, b, itemID)
								if errors.Is(err, circulation.ErrItemUnavailable) {
									continue
								}
								if err != nil {
									unexpected.Add(1)
									continue
								}
								borrows.Add(1)
								if err := target.Return(churnCtx, b, itemID); err != nil {
									unexpected.Add(1)
								}
							}
						}(borrowerID)
					}
					return nil
				},
			},
		},
		Rollback: []Action{
			{
				Type:   "stop-churn",
				Target: "circulation-ledger",
				Execute: func(context.Context) error {
					if stop != nil {
						stop()
					}
					wg.Wait()
					if borrows.Load() == 0 {
						return errors.New("churn completed no borrows")
					}
					return nil
				},
			},
		},
		Validation: []Assertion{
			{
				Metric:    "inconsistencies",
				Condition: func(v float64) bool { return v == 0 },
				Message:   "Ledger and availability flags must agree under churn",
			},
			{
				Metric:    "unexpected_errors",
				Condition: func(v float64) bool { return v == 0 },
				Message:   "Churn must only see unavailable-item refusals",
			},
		},
		Duration:       s.Duration,
		SampleInterval: s.SampleInterval,
		BlastRadius:    0.3,
	}
}

func inconsistencyMetric(target Target) Metric {
	return Metric{
		Name: "inconsistencies",
		Query: func(ctx context.Context) (float64, error) {
			err := target.Verify(ctx)
			switch {
			case err == nil:
				return 0, nil
			case errors.Is(err, circulation.ErrInconsistentState):
				return 1, nil
			default:
				return 0, err
			}
		},
		Threshold: Threshold{Operator: "==", Value: 0},
	}
}

// seedAction registers a fresh set of fixtures on every run. fixtures resets
// the experiment's per-run state and returns the new item and borrower IDs.
func seedAction(target Target, fixtures func() (itemIDs, borrowerIDs []string)) Action {
	return Action{
		Type:   "seed-fixtures",
		Target: "library",
		Execute: func(ctx context.Context) error {
			itemIDs, borrowerIDs := fixtures()
			for _, id := range itemIDs {
				if err := target.RegisterItem(ctx, catalog.Item{ID: id, Title: "Chaos fixture " + id}); err != nil {
					return err
				}
			}
			for _, id := range borrowerIDs {
				if err := target.RegisterBorrower(ctx, membership.Borrower{ID: id, Name: id}); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func fixtureIDs(prefix string, n int) []string {
	n = max(n, 1)
	run := uuid.NewString()[:8]
	ids := make([]string, n)
	for i := range ids {
		ids[i] = fmt.Sprintf("%s-%s-%03d", prefix, run, i)
	}
	return ids
}
