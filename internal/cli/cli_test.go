package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/GTDGit/panel_api/internal/cache"
	"github.com/GTDGit/panel_api/internal/database"
	"github.com/GTDGit/panel_api/internal/models"
	"github.com/GTDGit/panel_api/internal/repository"
	"github.com/GTDGit/panel_api/internal/service"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func useSQLite(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "panel.db")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DB_PATH", path)
	return path
}

// seedExpiredTest creates a test that started 30 days ago and ran for 10.
func seedExpiredTest(t *testing.T, path string) string {
	t.Helper()
	db, err := database.OpenSQLite(path)
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	defer db.Close()
	if err := database.Migrate(db); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	ctx := context.Background()
	store := repository.NewStore(db)
	locker := cache.NewLocalLocker()

	m, err := service.NewManufacturerService(store, locker, service.DeleteStrict).
		Create(ctx, &service.CreateManufacturerRequest{Name: "Acme"})
	if err != nil {
		t.Fatalf("failed to create manufacturer: %v", err)
	}
	products := service.NewProductService(store, locker, service.DeleteCascade)
	p, err := products.Create(ctx, &service.CreateProductRequest{ManufacturerID: m.ID, Name: "Hydra Cream"})
	if err != nil {
		t.Fatalf("failed to create product: %v", err)
	}
	v, err := products.CreateVariant(ctx, p.ID, &service.CreateVariantRequest{BatchNumber: "HC-01"})
	if err != nil {
		t.Fatalf("failed to create variant: %v", err)
	}
	tr, err := service.NewTesterService(store, locker, service.DeleteCascade).
		Create(ctx, &service.CreateTesterRequest{FirstName: "Ana", LastName: "Doe"})
	if err != nil {
		t.Fatalf("failed to create tester: %v", err)
	}

	start := time.Now().UTC().AddDate(0, 0, -30)
	tests, err := service.NewLifecycleService(store, locker).CreateTest(ctx, &service.CreateTestRequest{
		TesterID:         tr.ID,
		Assignments:      []service.Assignment{{VariantID: v.ID, ProductSize: "50ml"}},
		DurationDays:     10,
		FeedbackSchedule: models.ScheduleWeekly,
		StartDate:        &start,
	})
	if err != nil {
		t.Fatalf("failed to create test: %v", err)
	}
	return tests[0].ID
}

func TestMigrate(t *testing.T) {
	useSQLite(t)

	out, err := run(t, "migrate")
	if err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	if !strings.Contains(out, "up to date") {
		t.Errorf("unexpected output: %s", out)
	}

	// Second run is a no-op.
	if _, err := run(t, "migrate"); err != nil {
		t.Fatalf("second migrate failed: %v", err)
	}
}

func TestMigrate_RequiresDatabaseConfig(t *testing.T) {
	t.Setenv("DB_DRIVER", "mysql")
	if _, err := run(t, "migrate"); err == nil {
		t.Fatal("expected error for unsupported driver")
	}
}

func TestCompleteExpired(t *testing.T) {
	path := useSQLite(t)
	id := seedExpiredTest(t, path)

	out, err := run(t, "complete-expired")
	if err != nil {
		t.Fatalf("complete-expired failed: %v", err)
	}
	if !strings.Contains(out, "Completed 1 test(s).") || !strings.Contains(out, id) {
		t.Errorf("unexpected output: %s", out)
	}

	out, err = run(t, "complete-expired")
	if err != nil {
		t.Fatalf("second run failed: %v", err)
	}
	if !strings.Contains(out, "Completed 0 test(s).") {
		t.Errorf("expected nothing left to complete, got: %s", out)
	}
}

func TestExport(t *testing.T) {
	path := useSQLite(t)
	id := seedExpiredTest(t, path)

	out, err := run(t, "export", id)
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}
	var doc service.ExportDocument
	if err := json.Unmarshal([]byte(out), &doc); err != nil {
		t.Fatalf("export is not JSON: %v\n%s", err, out)
	}
	if doc.TestMetadata.TestID != id {
		t.Errorf("expected test id %s, got %s", id, doc.TestMetadata.TestID)
	}
	if doc.Product.ProductName != "Hydra Cream" {
		t.Errorf("expected product name, got %s", doc.Product.ProductName)
	}

	file := filepath.Join(t.TempDir(), "export.json")
	out, err = run(t, "export", id, "--output", file)
	if err != nil {
		t.Fatalf("export to file failed: %v", err)
	}
	if out != "" {
		t.Errorf("expected nothing on stdout, got %s", out)
	}

	if _, err := run(t, "export", "missing"); err == nil {
		t.Error("expected error for missing test")
	}
	if _, err := run(t, "export"); err == nil {
		t.Error("expected error without a test id")
	}
}

func TestHashPassword(t *testing.T) {
	out, err := run(t, "hash-password", "--password", "correct horse")
	if err != nil {
		t.Fatalf("hash-password failed: %v", err)
	}
	hash := strings.TrimSpace(out)
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte("correct horse")); err != nil {
		t.Errorf("hash does not match password: %v", err)
	}

	if _, err := run(t, "hash-password", "--password", "short"); err == nil {
		t.Error("expected error for a short password")
	}
}

func TestSecret(t *testing.T) {
	out, err := run(t, "secret", "--bytes", "24")
	if err != nil {
		t.Fatalf("secret failed: %v", err)
	}
	if got := len(strings.TrimSpace(out)); got != 48 {
		t.Errorf("expected 48 hex chars, got %d", got)
	}

	if _, err := run(t, "secret", "--bytes", "4"); err == nil {
		t.Error("expected error for a tiny secret")
	}
}
