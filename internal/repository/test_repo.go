package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/GTDGit/panel_api/internal/models"
)

// TestRepository handles data access for tests.
type TestRepository struct {
	db sqlx.ExtContext
}

// NewTestRepository creates a new TestRepository.
func NewTestRepository(db sqlx.ExtContext) *TestRepository {
	return &TestRepository{db: db}
}

// WithTx returns a copy bound to tx.
func (r *TestRepository) WithTx(tx *sqlx.Tx) *TestRepository {
	return &TestRepository{db: tx}
}

const testSelect = `
        SELECT t.*,
            tr.first_name || ' ' || tr.last_name AS tester_name,
            p.name AS product_name,
            v.batch_number AS batch_number,
            (SELECT COUNT(1) FROM feedback_entries f WHERE f.test_id = t.id) AS feedback_count
        FROM tests t
        LEFT JOIN testers tr ON tr.id = t.tester_id
        LEFT JOIN products p ON p.id = t.product_id
        LEFT JOIN product_variants v ON v.id = t.product_variant_id`

// TestFilter narrows test lists.
type TestFilter struct {
	ListFilter
	TesterID  string
	ProductID string
}

// Create inserts t. ID and timestamps must already be set.
func (r *TestRepository) Create(ctx context.Context, t *models.Test) error {
	const q = `
        INSERT INTO tests (id, tester_id, product_id, product_variant_id, product_size, duration_days,
            feedback_schedule, start_date, end_date, status, discontinued_reason, created_at, updated_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, r.db.Rebind(q),
		t.ID, t.TesterID, t.ProductID, t.ProductVariantID, t.ProductSize, t.DurationDays,
		t.FeedbackSchedule, t.StartDate, t.EndDate, t.Status, t.DiscontinuedReason, t.CreatedAt, t.UpdatedAt,
	)
	return err
}

// GetByID returns a test with its display joins.
func (r *TestRepository) GetByID(ctx context.Context, id string) (*models.Test, error) {
	q := testSelect + ` WHERE t.id = ?`

	var t models.Test
	if err := sqlx.GetContext(ctx, r.db, &t, r.db.Rebind(q), id); err != nil {
		return nil, err
	}
	return &t, nil
}

// List returns tests matching f and the total count. Search matches the
// tester name, product name or batch number.
func (r *TestRepository) List(ctx context.Context, f TestFilter) ([]models.Test, int, error) {
	limit, offset := f.normalize()

	const where = `
        WHERE (? = '' OR t.status = ?)
        AND (? = '' OR t.tester_id = ?)
        AND (? = '' OR t.product_id = ?)
        AND (? = '' OR LOWER(tr.first_name || ' ' || tr.last_name) LIKE ?
            OR LOWER(p.name) LIKE ? OR LOWER(v.batch_number) LIKE ?)`
	pattern := likePattern(f.Search)
	args := []any{
		f.Status, f.Status,
		f.TesterID, f.TesterID,
		f.ProductID, f.ProductID,
		f.Search, pattern, pattern, pattern,
	}

	const from = `
        FROM tests t
        LEFT JOIN testers tr ON tr.id = t.tester_id
        LEFT JOIN products p ON p.id = t.product_id
        LEFT JOIN product_variants v ON v.id = t.product_variant_id`

	var total int
	if err := sqlx.GetContext(ctx, r.db, &total, r.db.Rebind(`SELECT COUNT(1)`+from+where), args...); err != nil {
		return nil, 0, err
	}

	q := testSelect + where + ` ORDER BY t.start_date DESC, t.id LIMIT ? OFFSET ?`
	tests := []models.Test{}
	if err := sqlx.SelectContext(ctx, r.db, &tests, r.db.Rebind(q), append(args, limit, offset)...); err != nil {
		return nil, 0, err
	}
	return tests, total, nil
}

// ListActive returns every ACTIVE test ordered by start date.
func (r *TestRepository) ListActive(ctx context.Context) ([]models.Test, error) {
	q := testSelect + ` WHERE t.status = ? ORDER BY t.start_date, t.id`
	tests := []models.Test{}
	if err := sqlx.SelectContext(ctx, r.db, &tests, r.db.Rebind(q), models.TestActive); err != nil {
		return nil, err
	}
	return tests, nil
}

// ListActiveByTester returns ACTIVE tests assigned to a tester.
func (r *TestRepository) ListActiveByTester(ctx context.Context, testerID string) ([]models.Test, error) {
	return r.listActiveWhere(ctx, `t.tester_id = ?`, testerID)
}

// ListActiveByProduct returns ACTIVE tests of a product.
func (r *TestRepository) ListActiveByProduct(ctx context.Context, productID string) ([]models.Test, error) {
	return r.listActiveWhere(ctx, `t.product_id = ?`, productID)
}

// ListActiveByManufacturer returns ACTIVE tests of any product of a manufacturer.
func (r *TestRepository) ListActiveByManufacturer(ctx context.Context, manufacturerID string) ([]models.Test, error) {
	return r.listActiveWhere(ctx, `p.manufacturer_id = ?`, manufacturerID)
}

func (r *TestRepository) listActiveWhere(ctx context.Context, cond string, arg any) ([]models.Test, error) {
	q := testSelect + ` WHERE t.status = ? AND ` + cond + ` ORDER BY t.start_date, t.id`
	tests := []models.Test{}
	if err := sqlx.SelectContext(ctx, r.db, &tests, r.db.Rebind(q), models.TestActive, arg); err != nil {
		return nil, err
	}
	return tests, nil
}

// Finish moves an ACTIVE test to a terminal status. reason is stored as
// discontinued_reason. It reports false when the test was not ACTIVE.
func (r *TestRepository) Finish(ctx context.Context, id string, status models.TestStatus, reason *string, endAt time.Time) (bool, error) {
	const q = `
        UPDATE tests
        SET status = ?, discontinued_reason = ?, end_date = ?, updated_at = ?
        WHERE id = ? AND status = ?`

	res, err := r.db.ExecContext(ctx, r.db.Rebind(q), status, reason, endAt, endAt, id, models.TestActive)
	if err != nil {
		return false, err
	}
	return affected(res)
}

// Delete removes a test. Baseline and feedback rows cascade in the schema.
func (r *TestRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM tests WHERE id = ?`), id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

// CountByVariant returns the number of tests of any status using a batch.
func (r *TestRepository) CountByVariant(ctx context.Context, variantID string) (int, error) {
	var n int
	err := sqlx.GetContext(ctx, r.db, &n,
		r.db.Rebind(`SELECT COUNT(1) FROM tests WHERE product_variant_id = ?`), variantID)
	return n, err
}

// CountByStatus returns the number of tests in status.
func (r *TestRepository) CountByStatus(ctx context.Context, status models.TestStatus) (int, error) {
	var n int
	err := sqlx.GetContext(ctx, r.db, &n, r.db.Rebind(`SELECT COUNT(1) FROM tests WHERE status = ?`), status)
	return n, err
}

// CountDistinctTesters returns how many testers have a test in status, or
// any test at all when status is empty.
func (r *TestRepository) CountDistinctTesters(ctx context.Context, status models.TestStatus) (int, error) {
	const q = `SELECT COUNT(DISTINCT tester_id) FROM tests WHERE (? = '' OR status = ?)`
	var n int
	err := sqlx.GetContext(ctx, r.db, &n, r.db.Rebind(q), status, status)
	return n, err
}
