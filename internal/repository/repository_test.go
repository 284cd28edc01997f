package repository_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/GTDGit/panel_api/internal/models"
	"github.com/GTDGit/panel_api/internal/repository"
	"github.com/GTDGit/panel_api/internal/testutil"
)

type fixture struct {
	manufacturers *repository.ManufacturerRepository
	products      *repository.ProductRepository
	variants      *repository.VariantRepository
	testers       *repository.TesterRepository
	tests         *repository.TestRepository
	feedback      *repository.FeedbackRepository
}

func newFixture(t *testing.T) *fixture {
	db := testutil.NewDB(t)
	return &fixture{
		manufacturers: repository.NewManufacturerRepository(db),
		products:      repository.NewProductRepository(db),
		variants:      repository.NewVariantRepository(db),
		testers:       repository.NewTesterRepository(db),
		tests:         repository.NewTestRepository(db),
		feedback:      repository.NewFeedbackRepository(db),
	}
}

var now = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

func (f *fixture) seedProduct(t *testing.T, name string) (*models.Product, *models.ProductVariant) {
	t.Helper()
	ctx := context.Background()

	m := &models.Manufacturer{ID: uuid.NewString(), Name: name + " Labs", Status: models.ManufacturerActive, CreatedAt: now, UpdatedAt: now}
	if err := f.manufacturers.Create(ctx, m); err != nil {
		t.Fatalf("failed to create manufacturer: %v", err)
	}
	p := &models.Product{ID: uuid.NewString(), ManufacturerID: m.ID, Name: name, Category: "serum", Status: models.ProductAvailable, CreatedAt: now, UpdatedAt: now}
	if err := f.products.Create(ctx, p); err != nil {
		t.Fatalf("failed to create product: %v", err)
	}
	v := &models.ProductVariant{ID: uuid.NewString(), ProductID: p.ID, BatchNumber: "B-001", CreatedAt: now, UpdatedAt: now}
	if err := f.variants.Create(ctx, v); err != nil {
		t.Fatalf("failed to create variant: %v", err)
	}
	return p, v
}

func (f *fixture) seedTester(t *testing.T, first string, status models.TesterStatus) *models.Tester {
	t.Helper()
	tr := &models.Tester{
		ID: uuid.NewString(), FirstName: first, LastName: "Doe", Email: first + "@example.com",
		Age: 30, SkinType: "oily", ReliabilityScore: models.DefaultReliabilityScore,
		Status: status, CreatedAt: now, UpdatedAt: now,
	}
	if err := f.testers.Create(context.Background(), tr); err != nil {
		t.Fatalf("failed to create tester: %v", err)
	}
	return tr
}

func (f *fixture) seedTest(t *testing.T, tr *models.Tester, p *models.Product, v *models.ProductVariant) *models.Test {
	t.Helper()
	tt := &models.Test{
		ID: uuid.NewString(), TesterID: tr.ID, ProductID: p.ID, ProductVariantID: v.ID,
		DurationDays: 14, FeedbackSchedule: models.ScheduleDaily, StartDate: now,
		Status: models.TestActive, CreatedAt: now, UpdatedAt: now,
	}
	if err := f.tests.Create(context.Background(), tt); err != nil {
		t.Fatalf("failed to create test: %v", err)
	}
	return tt
}

func TestProductRepository_GetByIDIncludesCounts(t *testing.T) {
	f := newFixture(t)
	p, v := f.seedProduct(t, "Glow Serum")
	tr := f.seedTester(t, "Ana", models.TesterTesting)
	f.seedTest(t, tr, p, v)

	got, err := f.products.GetByID(context.Background(), p.ID)
	if err != nil {
		t.Fatalf("failed to get product: %v", err)
	}
	if got.ManufacturerName == nil || *got.ManufacturerName != "Glow Serum Labs" {
		t.Errorf("expected manufacturer name 'Glow Serum Labs', got %v", got.ManufacturerName)
	}
	if got.VariantCount != 1 {
		t.Errorf("expected 1 variant, got %d", got.VariantCount)
	}
	if got.TestCount != 1 {
		t.Errorf("expected 1 test, got %d", got.TestCount)
	}
	if !got.CreatedAt.Equal(now) {
		t.Errorf("expected created_at %v, got %v", now, got.CreatedAt)
	}
}

func TestRepositories_MissingRowsReturnErrNoRows(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.testers.GetByID(ctx, "missing"); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("expected sql.ErrNoRows from GetByID, got %v", err)
	}
	if err := f.products.UpdateStatus(ctx, "missing", models.ProductArchived, now); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("expected sql.ErrNoRows from UpdateStatus, got %v", err)
	}
	if err := f.tests.Delete(ctx, "missing"); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("expected sql.ErrNoRows from Delete, got %v", err)
	}
}

func TestTesterRepository_ListSearchAndStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seedTester(t, "Maria", models.TesterAvailable)
	f.seedTester(t, "marco", models.TesterArchived)
	f.seedTester(t, "Zoe", models.TesterAvailable)

	got, total, err := f.testers.List(ctx, repository.TesterFilter{ListFilter: repository.ListFilter{Search: "MAR"}})
	if err != nil {
		t.Fatalf("failed to list testers: %v", err)
	}
	if total != 2 || len(got) != 2 {
		t.Errorf("expected 2 testers matching 'MAR', got total=%d len=%d", total, len(got))
	}

	got, total, err = f.testers.List(ctx, repository.TesterFilter{ListFilter: repository.ListFilter{Status: "AVAILABLE", Limit: 1}})
	if err != nil {
		t.Fatalf("failed to list testers: %v", err)
	}
	if total != 2 {
		t.Errorf("expected total 2 available testers, got %d", total)
	}
	if len(got) != 1 {
		t.Errorf("expected page of 1, got %d", len(got))
	}
}

func TestRelease_KeepsStatusWhileAnotherTestIsActive(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p, v := f.seedProduct(t, "Night Cream")
	if err := f.products.UpdateStatus(ctx, p.ID, models.ProductTesting, now); err != nil {
		t.Fatalf("failed to set product status: %v", err)
	}
	a := f.seedTester(t, "Ana", models.TesterTesting)
	b := f.seedTester(t, "Ben", models.TesterTesting)
	first := f.seedTest(t, a, p, v)
	second := f.seedTest(t, b, p, v)

	if ok, err := f.tests.Finish(ctx, first.ID, models.TestCompleted, nil, now); err != nil || !ok {
		t.Fatalf("expected finish to succeed, got ok=%v err=%v", ok, err)
	}
	released, err := f.products.Release(ctx, p.ID, now)
	if err != nil {
		t.Fatalf("release failed: %v", err)
	}
	if released {
		t.Error("expected product to stay TESTING while another test is active")
	}
	if ok, _ := f.testers.Release(ctx, a.ID, now); !ok {
		t.Error("expected first tester to be released")
	}

	if _, err := f.tests.Finish(ctx, second.ID, models.TestCompleted, nil, now); err != nil {
		t.Fatalf("finish failed: %v", err)
	}
	if released, _ := f.products.Release(ctx, p.ID, now); !released {
		t.Error("expected product to be released after last active test ended")
	}
}

func TestTestRepository_FinishOnlyFromActive(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p, v := f.seedProduct(t, "Toner")
	tr := f.seedTester(t, "Ana", models.TesterTesting)
	tt := f.seedTest(t, tr, p, v)

	reason := "allergy"
	if ok, err := f.tests.Finish(ctx, tt.ID, models.TestDiscontinued, &reason, now); err != nil || !ok {
		t.Fatalf("expected finish to succeed, got ok=%v err=%v", ok, err)
	}
	if ok, _ := f.tests.Finish(ctx, tt.ID, models.TestCompleted, nil, now); ok {
		t.Error("expected second finish to be rejected")
	}

	got, err := f.tests.GetByID(ctx, tt.ID)
	if err != nil {
		t.Fatalf("failed to get test: %v", err)
	}
	if got.Status != models.TestDiscontinued {
		t.Errorf("expected DISCONTINUED, got %s", got.Status)
	}
	if got.DiscontinuedReason == nil || *got.DiscontinuedReason != "allergy" {
		t.Errorf("expected reason to be stored, got %v", got.DiscontinuedReason)
	}
	if got.EndDate == nil {
		t.Error("expected end date to be set")
	}
	if got.TesterName == nil || *got.TesterName != "Ana Doe" {
		t.Errorf("expected tester name 'Ana Doe', got %v", got.TesterName)
	}
}

func TestFeedbackRepository_ListOrderedByDay(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p, v := f.seedProduct(t, "Mask")
	tr := f.seedTester(t, "Ana", models.TesterTesting)
	tt := f.seedTest(t, tr, p, v)

	for _, day := range []int{3, 1, 2} {
		e := &models.FeedbackEntry{
			ID: uuid.NewString(), TestID: tt.ID, Day: day, Date: now, IsCompleted: true,
			Data: "{}", CreatedAt: now, UpdatedAt: now,
		}
		if err := f.feedback.Create(ctx, e); err != nil {
			t.Fatalf("failed to create entry: %v", err)
		}
	}

	entries, err := f.feedback.ListByTest(ctx, tt.ID)
	if err != nil {
		t.Fatalf("failed to list entries: %v", err)
	}
	for i, e := range entries {
		if e.Day != i+1 {
			t.Errorf("expected day %d at index %d, got %d", i+1, i, e.Day)
		}
		if !e.IsCompleted {
			t.Errorf("expected entry %d to be completed", i)
		}
	}
	if n, _ := f.feedback.CountByTest(ctx, tt.ID); n != 3 {
		t.Errorf("expected 3 entries, got %d", n)
	}
}

func TestVariantRepository_DeleteRefusedWhileReferenced(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p, v := f.seedProduct(t, "Night Oil")
	tr := f.seedTester(t, "Ines", models.TesterTesting)
	tt := f.seedTest(t, tr, p, v)

	if err := f.variants.Delete(ctx, v.ID); err == nil {
		t.Fatal("expected the schema to refuse deleting a referenced batch")
	}
	if _, err := f.tests.GetByID(ctx, tt.ID); err != nil {
		t.Fatalf("expected test to survive, got %v", err)
	}

	// Deleting the product still takes batches and tests with it.
	if err := f.products.Delete(ctx, p.ID); err != nil {
		t.Fatalf("failed to delete product: %v", err)
	}
	if _, err := f.tests.GetByID(ctx, tt.ID); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("expected test to cascade, got %v", err)
	}
	if _, err := f.variants.GetByID(ctx, v.ID); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("expected batch to cascade, got %v", err)
	}
}

func TestProductRepository_ListIDsByManufacturer(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p, _ := f.seedProduct(t, "Toner")
	f.seedProduct(t, "Other")

	ids, err := f.products.ListIDsByManufacturer(ctx, p.ManufacturerID)
	if err != nil {
		t.Fatalf("failed to list ids: %v", err)
	}
	if len(ids) != 1 || ids[0] != p.ID {
		t.Errorf("expected [%s], got %v", p.ID, ids)
	}
}
