package service

import (
	"context"
	"testing"
)

func TestDashboardStats(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	m := e.manufacturer(t, "Acme")
	e.manufacturer(t, "Beta")
	p1 := e.product(t, m, "One")
	p2 := e.product(t, m, "Two")
	v1 := e.variant(t, p1, "O-1", nil)
	v2 := e.variant(t, p2, "T-1", nil)
	ana := e.tester(t, "Ana")
	ben := e.tester(t, "Ben")
	e.tester(t, "Cy")

	anaTests := e.startTest(t, ana, 10, v1, v2)
	benTests := e.startTest(t, ben, 10, v1)
	if _, err := e.lifecycle.CompleteTest(ctx, benTests[0].ID); err != nil {
		t.Fatalf("complete failed: %v", err)
	}
	if _, err := e.lifecycle.DiscontinueTest(ctx, anaTests[1].ID, "reaction"); err != nil {
		t.Fatalf("discontinue failed: %v", err)
	}

	st, err := NewDashboardService(e.store).Stats(ctx)
	if err != nil {
		t.Fatalf("stats failed: %v", err)
	}
	want := DashboardStats{
		TestersTesting:     1,
		TotalProducts:      2,
		ActiveTests:        1,
		CompletedTests:     1,
		TestersWithActive:  1,
		TestersWithHistory: 2,
		TotalManufacturers: 2,
	}
	if *st != want {
		t.Errorf("expected %+v, got %+v", want, *st)
	}
}
