package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/GTDGit/panel_api/internal/models"
)

// FeedbackRepository handles data access for feedback entries.
type FeedbackRepository struct {
	db sqlx.ExtContext
}

// NewFeedbackRepository creates a new FeedbackRepository.
func NewFeedbackRepository(db sqlx.ExtContext) *FeedbackRepository {
	return &FeedbackRepository{db: db}
}

// WithTx returns a copy bound to tx.
func (r *FeedbackRepository) WithTx(tx *sqlx.Tx) *FeedbackRepository {
	return &FeedbackRepository{db: tx}
}

// Create inserts e. ID and timestamps must already be set.
func (r *FeedbackRepository) Create(ctx context.Context, e *models.FeedbackEntry) error {
	const q = `
        INSERT INTO feedback_entries (id, test_id, day, entry_date, is_completed, data, photos, created_at, updated_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, r.db.Rebind(q),
		e.ID, e.TestID, e.Day, e.Date, e.IsCompleted, e.Data, e.Photos, e.CreatedAt, e.UpdatedAt,
	)
	return err
}

// GetByID returns a single entry.
func (r *FeedbackRepository) GetByID(ctx context.Context, id string) (*models.FeedbackEntry, error) {
	var e models.FeedbackEntry
	if err := sqlx.GetContext(ctx, r.db, &e, r.db.Rebind(`SELECT * FROM feedback_entries WHERE id = ?`), id); err != nil {
		return nil, err
	}
	return &e, nil
}

// ListByTest returns the entries of a test ordered by day ascending.
func (r *FeedbackRepository) ListByTest(ctx context.Context, testID string) ([]models.FeedbackEntry, error) {
	const q = `SELECT * FROM feedback_entries WHERE test_id = ? ORDER BY day, entry_date, id`

	entries := []models.FeedbackEntry{}
	if err := sqlx.SelectContext(ctx, r.db, &entries, r.db.Rebind(q), testID); err != nil {
		return nil, err
	}
	return entries, nil
}

// CountByTest returns the number of entries recorded for a test.
func (r *FeedbackRepository) CountByTest(ctx context.Context, testID string) (int, error) {
	var n int
	err := sqlx.GetContext(ctx, r.db, &n,
		r.db.Rebind(`SELECT COUNT(1) FROM feedback_entries WHERE test_id = ?`), testID)
	return n, err
}

// Update persists the editable fields of e.
func (r *FeedbackRepository) Update(ctx context.Context, e *models.FeedbackEntry) error {
	const q = `
        UPDATE feedback_entries
        SET day = ?, is_completed = ?, data = ?, photos = ?, updated_at = ?
        WHERE id = ?`

	res, err := r.db.ExecContext(ctx, r.db.Rebind(q), e.Day, e.IsCompleted, e.Data, e.Photos, e.UpdatedAt, e.ID)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

// Delete removes an entry.
func (r *FeedbackRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM feedback_entries WHERE id = ?`), id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}
