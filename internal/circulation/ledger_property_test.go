package circulation

import (
	"context"
	"errors"
	"slices"
	"testing"

	"pgregory.net/rapid"

	"lendledger/internal/catalog"
	"lendledger/internal/membership"
)

// TestLedgerMatchesModel drives random borrow/return sequences against a
// simple item->holder model and checks the ledger agrees after every step.
func TestLedgerMatchesModel(t *testing.T) {
	itemIDs := []string{"I1", "I2", "I3"}
	borrowerIDs := []string{"M1", "M2", "M3"}
	candidateItems := append(slices.Clone(itemIDs), "unknown-item")
	candidateBorrowers := append(slices.Clone(borrowerIDs), "unknown-borrower")

	rapid.Check(t, func(t *rapid.T) {
		ctx := context.Background()
		items := catalog.NewRegistry()
		borrowers := membership.NewRegistry()
		for _, id := range itemIDs {
			if _, err := items.Register(catalog.Item{ID: id}); err != nil {
				t.Fatalf("register item: %v", err)
			}
		}
		for _, id := range borrowerIDs {
			if err := borrowers.Register(membership.Borrower{ID: id}); err != nil {
				t.Fatalf("register borrower: %v", err)
			}
		}
		l := NewLedger(items, borrowers)
		holder := make(map[string]string)

		steps := rapid.IntRange(1, 80).Draw(t, "steps")
		for i := 0; i < steps; i++ {
			b := rapid.SampledFrom(candidateBorrowers).Draw(t, "borrower")
			it := rapid.SampledFrom(candidateItems).Draw(t, "item")
			borrow := rapid.Bool().Draw(t, "borrow")

			var expected, err error
			knownB := slices.Contains(borrowerIDs, b)
			knownI := slices.Contains(itemIDs, it)

			if borrow {
				switch {
				case !knownB:
					expected = membership.ErrBorrowerNotFound
				case !knownI:
					expected = catalog.ErrItemNotFound
				case holder[it] != "":
					expected = ErrItemUnavailable
				}
				_, err = l.Borrow(ctx, b, it)
				if expected == nil && err == nil {
					holder[it] = b
				}
			} else {
				switch {
				case !knownB:
					expected = membership.ErrBorrowerNotFound
				case !knownI:
					expected = catalog.ErrItemNotFound
				case holder[it] != b:
					expected = ErrNotBorrowedByMember
				}
				_, err = l.Return(ctx, b, it)
				if expected == nil && err == nil {
					delete(holder, it)
				}
			}

			if expected == nil && err != nil {
				t.Fatalf("step %d: unexpected error %v", i, err)
			}
			if expected != nil && !errors.Is(err, expected) {
				t.Fatalf("step %d: got %v, want %v", i, err, expected)
			}

			if n := l.Inconsistencies(); n != 0 {
				t.Fatalf("step %d: %d inconsistencies", i, n)
			}
			for _, id := range itemIDs {
				item, _ := items.Get(id)
				if item.Available != (holder[id] == "") {
					t.Fatalf("step %d: item %s available=%v, holder=%q", i, id, item.Available, holder[id])
				}
			}
			for _, id := range borrowerIDs {
				held, _ := l.HeldBy(id)
				for _, c := range held {
					if holder[c.ItemID] != id {
						t.Fatalf("step %d: %s holds %s, model says %q", i, id, c.ItemID, holder[c.ItemID])
					}
				}
			}
		}
	})
}
