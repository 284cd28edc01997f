package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/GTDGit/panel_api/internal/models"
)

// BaselineRepository handles data access for baseline assessments.
type BaselineRepository struct {
	db sqlx.ExtContext
}

// NewBaselineRepository creates a new BaselineRepository.
func NewBaselineRepository(db sqlx.ExtContext) *BaselineRepository {
	return &BaselineRepository{db: db}
}

// WithTx returns a copy bound to tx.
func (r *BaselineRepository) WithTx(tx *sqlx.Tx) *BaselineRepository {
	return &BaselineRepository{db: tx}
}

// Create inserts b. There is no update path: the snapshot is immutable.
func (r *BaselineRepository) Create(ctx context.Context, b *models.BaselineAssessment) error {
	const q = `
        INSERT INTO baseline_assessments (id, test_id, tester_snapshot, metrics, created_at, updated_at)
        VALUES (?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, r.db.Rebind(q),
		b.ID, b.TestID, b.TesterSnapshot, b.Metrics, b.CreatedAt, b.UpdatedAt,
	)
	return err
}

// GetByTestID returns the baseline of a test.
func (r *BaselineRepository) GetByTestID(ctx context.Context, testID string) (*models.BaselineAssessment, error) {
	const q = `SELECT * FROM baseline_assessments WHERE test_id = ?`

	var b models.BaselineAssessment
	if err := sqlx.GetContext(ctx, r.db, &b, r.db.Rebind(q), testID); err != nil {
		return nil, err
	}
	return &b, nil
}

// CountByTest returns how many baselines a test has.
func (r *BaselineRepository) CountByTest(ctx context.Context, testID string) (int, error) {
	var n int
	err := sqlx.GetContext(ctx, r.db, &n,
		r.db.Rebind(`SELECT COUNT(1) FROM baseline_assessments WHERE test_id = ?`), testID)
	return n, err
}
