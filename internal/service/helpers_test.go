package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/GTDGit/panel_api/internal/cache"
	"github.com/GTDGit/panel_api/internal/models"
	"github.com/GTDGit/panel_api/internal/repository"
	"github.com/GTDGit/panel_api/internal/testutil"
	"github.com/GTDGit/panel_api/internal/utils"
)

var fixedNow = time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)

type env struct {
	store         *repository.Store
	lifecycle     *LifecycleService
	manufacturers *ManufacturerService
	products      *ProductService
	testers       *TesterService
}

func newEnv(t *testing.T) *env {
	t.Helper()
	return newEnvWithPolicy(t, DeleteStrict, DeleteCascade, DeleteCascade)
}

func newEnvWithPolicy(t *testing.T, manufacturer, product, tester DeletePolicy) *env {
	t.Helper()
	store := repository.NewStore(testutil.NewDB(t))
	locker := cache.NewLocalLocker()
	clock := func() time.Time { return fixedNow }

	e := &env{
		store:         store,
		lifecycle:     NewLifecycleService(store, locker),
		manufacturers: NewManufacturerService(store, locker, manufacturer),
		products:      NewProductService(store, locker, product),
		testers:       NewTesterService(store, locker, tester),
	}
	e.lifecycle.now = clock
	e.manufacturers.now = clock
	e.products.now = clock
	e.testers.now = clock
	return e
}

func (e *env) manufacturer(t *testing.T, name string) *models.Manufacturer {
	t.Helper()
	m, err := e.manufacturers.Create(context.Background(), &CreateManufacturerRequest{Name: name})
	if err != nil {
		t.Fatalf("failed to create manufacturer: %v", err)
	}
	return m
}

func (e *env) product(t *testing.T, m *models.Manufacturer, name string) *models.Product {
	t.Helper()
	p, err := e.products.Create(context.Background(), &CreateProductRequest{
		ManufacturerID: m.ID, Name: name, Category: "moisturizer", PrimaryClaim: "hydration",
		UsageInstructions: "apply twice daily",
	})
	if err != nil {
		t.Fatalf("failed to create product: %v", err)
	}
	return p
}

func (e *env) variant(t *testing.T, p *models.Product, batch string, ingredients *string) *models.ProductVariant {
	t.Helper()
	v, err := e.products.CreateVariant(context.Background(), p.ID, &CreateVariantRequest{BatchNumber: batch, Ingredients: ingredients})
	if err != nil {
		t.Fatalf("failed to create variant: %v", err)
	}
	return v
}

func (e *env) tester(t *testing.T, first string) *models.Tester {
	t.Helper()
	tr, err := e.testers.Create(context.Background(), &CreateTesterRequest{
		FirstName: first, LastName: "Tester", Age: 29, Gender: "female", Location: "Lisbon",
		SkinType: "dry", PrimaryConcern: "fine lines", SecondaryConcerns: "redness", Allergies: "none",
	})
	if err != nil {
		t.Fatalf("failed to create tester: %v", err)
	}
	return tr
}

func (e *env) startTest(t *testing.T, tr *models.Tester, duration int, variants ...*models.ProductVariant) []models.Test {
	t.Helper()
	req := &CreateTestRequest{
		TesterID:         tr.ID,
		DurationDays:     duration,
		FeedbackSchedule: models.ScheduleDaily,
	}
	for _, v := range variants {
		req.Assignments = append(req.Assignments, Assignment{VariantID: v.ID, ProductSize: "50ml"})
	}
	tests, err := e.lifecycle.CreateTest(context.Background(), req)
	if err != nil {
		t.Fatalf("failed to create test: %v", err)
	}
	return tests
}

func (e *env) testerStatus(t *testing.T, id string) models.TesterStatus {
	t.Helper()
	tr, err := e.store.Testers.GetByID(context.Background(), id)
	if err != nil {
		t.Fatalf("failed to load tester: %v", err)
	}
	return tr.Status
}

func (e *env) productStatus(t *testing.T, id string) models.ProductStatus {
	t.Helper()
	p, err := e.store.Products.GetByID(context.Background(), id)
	if err != nil {
		t.Fatalf("failed to load product: %v", err)
	}
	return p.Status
}

func (e *env) testStatus(t *testing.T, id string) models.TestStatus {
	t.Helper()
	tt, err := e.store.Tests.GetByID(context.Background(), id)
	if err != nil {
		t.Fatalf("failed to load test: %v", err)
	}
	return tt.Status
}

func assertKind(t *testing.T, err, kind error) {
	t.Helper()
	if !errors.Is(err, kind) {
		t.Fatalf("expected %v, got %v", kind, err)
	}
	var appErr *utils.AppError
	if !errors.As(err, &appErr) || appErr.Message == "" {
		t.Errorf("expected a human readable message, got %v", err)
	}
}

func strPtr(s string) *string { return &s }

// interleavingLocker runs before once, right before the first Lock is
// delegated. It stands in for a request that commits between a service's
// first read and its lock. Calls made from before see a plain locker.
type interleavingLocker struct {
	Locker
	before func()
}

func (l *interleavingLocker) Lock(ctx context.Context, keys ...string) (func(), error) {
	if before := l.before; before != nil {
		l.before = nil
		before()
	}
	return l.Locker.Lock(ctx, keys...)
}

func interleave(locker Locker, before func()) *interleavingLocker {
	return &interleavingLocker{Locker: locker, before: before}
}
