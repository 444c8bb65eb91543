package ledger

import (
	"testing"
	"time"

	"github.com/freshtrace/freshtrace_backend/models"
	"github.com/shopspring/decimal"
)

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func qty(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestAllocateSplitsAcrossBatchesInOrder(t *testing.T) {
	// Batch A arrived first with 20 units, batch B later with 50.
	// Requesting 30 should drain A and take the remaining 10 from B.
	candidates := []*models.Batch{
		{ID: 1, BatchNumber: "A", Quantity: qty("20"), ArrivalDate: date("2024-01-01")},
		{ID: 2, BatchNumber: "B", Quantity: qty("50"), ArrivalDate: date("2024-01-02")},
	}

	plan := allocate(candidates, qty("30"))

	if !plan.Remaining.IsZero() {
		t.Fatalf("remaining = %s, want 0", plan.Remaining)
	}
	if len(plan.Allocations) != 2 {
		t.Fatalf("allocations = %d, want 2", len(plan.Allocations))
	}
	if plan.Allocations[0].BatchId != 1 || !plan.Allocations[0].Quantity.Equal(qty("20")) {
		t.Errorf("first allocation = (%d, %s), want (1, 20)", plan.Allocations[0].BatchId, plan.Allocations[0].Quantity)
	}
	if plan.Allocations[1].BatchId != 2 || !plan.Allocations[1].Quantity.Equal(qty("10")) {
		t.Errorf("second allocation = (%d, %s), want (2, 10)", plan.Allocations[1].BatchId, plan.Allocations[1].Quantity)
	}
}

func TestAllocateStopsOnceFilled(t *testing.T) {
	candidates := []*models.Batch{
		{ID: 1, Quantity: qty("40")},
		{ID: 2, Quantity: qty("40")},
		{ID: 3, Quantity: qty("40")},
	}

	plan := allocate(candidates, qty("40"))

	if len(plan.Allocations) != 1 {
		t.Fatalf("allocations = %d, want 1", len(plan.Allocations))
	}
	if !plan.Remaining.IsZero() {
		t.Errorf("remaining = %s, want 0", plan.Remaining)
	}
}

func TestAllocatePartialFillReportsRemaining(t *testing.T) {
	candidates := []*models.Batch{
		{ID: 1, Quantity: qty("5")},
		{ID: 2, Quantity: qty("7.5")},
	}

	plan := allocate(candidates, qty("20"))

	if !plan.Remaining.Equal(qty("7.5")) {
		t.Fatalf("remaining = %s, want 7.5", plan.Remaining)
	}
	total := decimal.Zero
	for _, a := range plan.Allocations {
		total = total.Add(a.Quantity)
	}
	if !total.Equal(qty("12.5")) {
		t.Errorf("allocated total = %s, want 12.5", total)
	}
}

func TestAllocateNeverExceedsBatchQuantity(t *testing.T) {
	candidates := []*models.Batch{
		{ID: 1, Quantity: qty("3")},
	}

	plan := allocate(candidates, qty("100"))

	if len(plan.Allocations) != 1 {
		t.Fatalf("allocations = %d, want 1", len(plan.Allocations))
	}
	if !plan.Allocations[0].Quantity.Equal(qty("3")) {
		t.Errorf("allocation = %s, want 3", plan.Allocations[0].Quantity)
	}
	if !plan.Remaining.Equal(qty("97")) {
		t.Errorf("remaining = %s, want 97", plan.Remaining)
	}
}

func TestAllocateNoCandidates(t *testing.T) {
	plan := allocate(nil, qty("10"))

	if len(plan.Allocations) != 0 {
		t.Fatalf("allocations = %d, want 0", len(plan.Allocations))
	}
	if !plan.Remaining.Equal(qty("10")) {
		t.Errorf("remaining = %s, want 10", plan.Remaining)
	}
}

func TestShipmentTransitions(t *testing.T) {
	cases := []struct {
		from, to models.ShipmentStatus
		ok       bool
	}{
		{models.ShipmentStatusPlanned, models.ShipmentStatusShipped, true},
		{models.ShipmentStatusPlanned, models.ShipmentStatusDelivered, true},
		{models.ShipmentStatusPlanned, models.ShipmentStatusCancelled, true},
		{models.ShipmentStatusShipped, models.ShipmentStatusDelivered, true},
		{models.ShipmentStatusShipped, models.ShipmentStatusCancelled, false},
		{models.ShipmentStatusShipped, models.ShipmentStatusPlanned, false},
		{models.ShipmentStatusDelivered, models.ShipmentStatusPlanned, false},
		{models.ShipmentStatusDelivered, models.ShipmentStatusCancelled, false},
		{models.ShipmentStatusCancelled, models.ShipmentStatusPlanned, true},
		{models.ShipmentStatusCancelled, models.ShipmentStatusShipped, false},
	}
	for _, c := range cases {
		if got := validShipmentTransition(c.from, c.to); got != c.ok {
			t.Errorf("transition %s -> %s = %v, want %v", c.from, c.to, got, c.ok)
		}
	}
}
