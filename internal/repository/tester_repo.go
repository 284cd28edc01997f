package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/GTDGit/panel_api/internal/models"
)

// TesterRepository handles data access for testers.
type TesterRepository struct {
	db sqlx.ExtContext
}

// NewTesterRepository creates a new TesterRepository.
func NewTesterRepository(db sqlx.ExtContext) *TesterRepository {
	return &TesterRepository{db: db}
}

// WithTx returns a copy bound to tx.
func (r *TesterRepository) WithTx(tx *sqlx.Tx) *TesterRepository {
	return &TesterRepository{db: tx}
}

const testerSelect = `
        SELECT tr.*,
            (SELECT COUNT(1) FROM tests t WHERE t.tester_id = tr.id) AS test_count
        FROM testers tr`

// TesterFilter narrows tester lists.
type TesterFilter struct {
	ListFilter
	SkinType string
}

// Create inserts t. ID and timestamps must already be set.
func (r *TesterRepository) Create(ctx context.Context, t *models.Tester) error {
	const q = `
        INSERT INTO testers (id, first_name, last_name, email, phone, age, gender, location, skin_type,
            primary_concern, secondary_concerns, allergies, reliability_score, status, created_at, updated_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, r.db.Rebind(q),
		t.ID, t.FirstName, t.LastName, t.Email, t.Phone, t.Age, t.Gender, t.Location, t.SkinType,
		t.PrimaryConcern, t.SecondaryConcerns, t.Allergies, t.ReliabilityScore, t.Status, t.CreatedAt, t.UpdatedAt,
	)
	return err
}

// GetByID returns a tester with their test count.
func (r *TesterRepository) GetByID(ctx context.Context, id string) (*models.Tester, error) {
	q := testerSelect + ` WHERE tr.id = ?`

	var t models.Tester
	if err := sqlx.GetContext(ctx, r.db, &t, r.db.Rebind(q), id); err != nil {
		return nil, err
	}
	return &t, nil
}

// List returns testers matching f and the total count. Search matches
// first name, last name or email.
func (r *TesterRepository) List(ctx context.Context, f TesterFilter) ([]models.Tester, int, error) {
	limit, offset := f.normalize()

	const where = `
        WHERE (? = '' OR tr.status = ?)
        AND (? = '' OR tr.skin_type = ?)
        AND (? = '' OR LOWER(tr.first_name) LIKE ? OR LOWER(tr.last_name) LIKE ? OR LOWER(tr.email) LIKE ?)`
	pattern := likePattern(f.Search)
	args := []any{
		f.Status, f.Status,
		f.SkinType, f.SkinType,
		f.Search, pattern, pattern, pattern,
	}

	var total int
	if err := sqlx.GetContext(ctx, r.db, &total, r.db.Rebind(`SELECT COUNT(1) FROM testers tr`+where), args...); err != nil {
		return nil, 0, err
	}

	q := testerSelect + where + ` ORDER BY tr.created_at DESC, tr.id LIMIT ? OFFSET ?`
	testers := []models.Tester{}
	if err := sqlx.SelectContext(ctx, r.db, &testers, r.db.Rebind(q), append(args, limit, offset)...); err != nil {
		return nil, 0, err
	}
	return testers, total, nil
}

// Update persists the editable fields of t, including status.
func (r *TesterRepository) Update(ctx context.Context, t *models.Tester) error {
	const q = `
        UPDATE testers
        SET first_name = ?, last_name = ?, email = ?, phone = ?, age = ?, gender = ?, location = ?,
            skin_type = ?, primary_concern = ?, secondary_concerns = ?, allergies = ?,
            reliability_score = ?, status = ?, updated_at = ?
        WHERE id = ?`

	res, err := r.db.ExecContext(ctx, r.db.Rebind(q),
		t.FirstName, t.LastName, t.Email, t.Phone, t.Age, t.Gender, t.Location,
		t.SkinType, t.PrimaryConcern, t.SecondaryConcerns, t.Allergies,
		t.ReliabilityScore, t.Status, t.UpdatedAt, t.ID,
	)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

// UpdateStatus sets the status of a tester unconditionally.
func (r *TesterRepository) UpdateStatus(ctx context.Context, id string, status models.TesterStatus, now time.Time) error {
	const q = `UPDATE testers SET status = ?, updated_at = ? WHERE id = ?`
	res, err := r.db.ExecContext(ctx, r.db.Rebind(q), status, now, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

// SwapStatus moves a tester from one status to another only if the current
// status still equals from. It reports whether the row changed.
func (r *TesterRepository) SwapStatus(ctx context.Context, id string, from, to models.TesterStatus, now time.Time) (bool, error) {
	const q = `UPDATE testers SET status = ?, updated_at = ? WHERE id = ? AND status = ?`
	res, err := r.db.ExecContext(ctx, r.db.Rebind(q), to, now, id, from)
	if err != nil {
		return false, err
	}
	return affected(res)
}

// Release returns a TESTING tester to AVAILABLE when they have no other
// ACTIVE test. It reports whether the status changed.
func (r *TesterRepository) Release(ctx context.Context, id string, now time.Time) (bool, error) {
	const q = `
        UPDATE testers SET status = ?, updated_at = ?
        WHERE id = ? AND status = ?
        AND NOT EXISTS (SELECT 1 FROM tests t WHERE t.tester_id = ? AND t.status = ?)`

	res, err := r.db.ExecContext(ctx, r.db.Rebind(q),
		models.TesterAvailable, now, id, models.TesterTesting, id, models.TestActive,
	)
	if err != nil {
		return false, err
	}
	return affected(res)
}

// Delete removes a tester. Tests cascade in the schema.
func (r *TesterRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM testers WHERE id = ?`), id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

// CountByStatus returns the number of testers in status.
func (r *TesterRepository) CountByStatus(ctx context.Context, status models.TesterStatus) (int, error) {
	var n int
	err := sqlx.GetContext(ctx, r.db, &n, r.db.Rebind(`SELECT COUNT(1) FROM testers WHERE status = ?`), status)
	return n, err
}
