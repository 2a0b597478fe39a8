package storage

import (
	"fmt"
	"sync"
	"testing"

	"github.com/eugenenazirov/quality-control/internal/inspection"
)

func TestNewMemoryStorageStartsEmpty(t *testing.T) {
	t.Parallel()

	store := NewMemoryStorage()

	report := store.Report()
	if report.TotalInspected != 0 || report.BoxesInUse != 0 {
		t.Fatalf("expected empty report, got %+v", report)
	}
	if store.OpenBox().Number != 1 {
		t.Fatalf("expected open box 1, got %d", store.OpenBox().Number)
	}
}

func TestMemoryStorageAppliesLedgerOptions(t *testing.T) {
	t.Parallel()

	var closed int
	store := NewMemoryStorage(
		inspection.WithReasonPolicy(inspection.ReasonPolicySplit),
		inspection.WithEventHandler(func(e inspection.Event) {
			if e.Kind == inspection.EventBoxClosed {
				closed++
			}
		}),
	)

	for i := 0; i < inspection.BoxCapacity; i++ {
		store.Inspect(inspection.NewPiece(fmt.Sprintf("P%d", i), 100, "blue", 15))
	}
	store.Inspect(inspection.NewPiece("R", 1, "red", 1))

	if closed != 1 {
		t.Fatalf("expected one box closed event, got %d", closed)
	}
	report := store.Report()
	if report.Policy != inspection.ReasonPolicySplit {
		t.Fatalf("expected split policy, got %s", report.Policy)
	}
	if len(report.RejectionReasons) != 3 {
		t.Fatalf("expected three split reasons, got %v", report.RejectionReasons)
	}
}

func TestMemoryStorageDelegates(t *testing.T) {
	t.Parallel()

	store := NewMemoryStorage()
	got := store.Inspect(inspection.NewPiece("P1", 100, "green", 12))
	if !got.Approved {
		t.Fatalf("expected approval, got %+v", got)
	}
	store.Inspect(inspection.NewPiece("P2", 10, "green", 12))

	if !store.Contains("P1") {
		t.Fatalf("expected P1 to be known")
	}
	if p, ok := store.Lookup("P2"); !ok || p.Approved {
		t.Fatalf("expected rejected P2, got %+v (found=%v)", p, ok)
	}
	if len(store.Approved()) != 1 || len(store.Rejected()) != 1 {
		t.Fatalf("unexpected buckets: %d approved, %d rejected", len(store.Approved()), len(store.Rejected()))
	}
	if store.OpenBox().Len() != 1 || len(store.ClosedBoxes()) != 0 {
		t.Fatalf("unexpected boxes")
	}

	pieces, report := store.Snapshot()
	if len(pieces) != 2 || report.TotalInspected != 2 {
		t.Fatalf("unexpected snapshot: %d pieces, report %+v", len(pieces), report)
	}

	if !store.Remove("P1") || store.Remove("P1") {
		t.Fatalf("expected first removal to succeed and second to fail")
	}
	if len(store.Pieces()) != 1 {
		t.Fatalf("expected one remaining piece")
	}
}

func TestMemoryStorageConcurrentAccess(t *testing.T) {
	store := NewMemoryStorage()
	var wg sync.WaitGroup

	for i := 0; i < 32; i++ {
		wg.Add(2)

		go func(offset int) {
			defer wg.Done()
			store.Inspect(inspection.NewPiece(fmt.Sprintf("P%d", offset), 100, "blue", 15))
		}(i)

		go func() {
			defer wg.Done()
			_ = store.Report()
			_ = store.ClosedBoxes()
		}()
	}

	wg.Wait()

	report := store.Report()
	if report.TotalApproved != 32 {
		t.Fatalf("expected 32 approved pieces, got %d", report.TotalApproved)
	}
	if report.ClosedBoxes != 3 || report.OpenBoxCount != 2 {
		t.Fatalf("unexpected box state: %+v", report)
	}
}
