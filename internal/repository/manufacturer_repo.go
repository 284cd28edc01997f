package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/GTDGit/panel_api/internal/models"
)

// ManufacturerRepository handles data access for manufacturers.
type ManufacturerRepository struct {
	db sqlx.ExtContext
}

// NewManufacturerRepository creates a new ManufacturerRepository.
func NewManufacturerRepository(db sqlx.ExtContext) *ManufacturerRepository {
	return &ManufacturerRepository{db: db}
}

// WithTx returns a copy bound to tx.
func (r *ManufacturerRepository) WithTx(tx *sqlx.Tx) *ManufacturerRepository {
	return &ManufacturerRepository{db: tx}
}

const manufacturerSelect = `
        SELECT m.*,
            (SELECT COUNT(1) FROM products p WHERE p.manufacturer_id = m.id) AS product_count
        FROM manufacturers m`

// Create inserts m. ID and timestamps must already be set.
func (r *ManufacturerRepository) Create(ctx context.Context, m *models.Manufacturer) error {
	const q = `
        INSERT INTO manufacturers (id, name, website, contact_name, email, notes, status, created_at, updated_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, r.db.Rebind(q),
		m.ID, m.Name, m.Website, m.ContactName, m.Email, m.Notes, m.Status, m.CreatedAt, m.UpdatedAt,
	)
	return err
}

// GetByID returns a manufacturer with its product count.
func (r *ManufacturerRepository) GetByID(ctx context.Context, id string) (*models.Manufacturer, error) {
	q := manufacturerSelect + ` WHERE m.id = ?`

	var m models.Manufacturer
	if err := sqlx.GetContext(ctx, r.db, &m, r.db.Rebind(q), id); err != nil {
		return nil, err
	}
	return &m, nil
}

// List returns manufacturers matching f and the total count.
// Search matches name or contact name.
func (r *ManufacturerRepository) List(ctx context.Context, f ListFilter) ([]models.Manufacturer, int, error) {
	limit, offset := f.normalize()

	const where = `
        WHERE (? = '' OR m.status = ?)
        AND (? = '' OR LOWER(m.name) LIKE ? OR LOWER(COALESCE(m.contact_name, '')) LIKE ?)`
	pattern := likePattern(f.Search)
	args := []any{f.Status, f.Status, f.Search, pattern, pattern}

	var total int
	if err := sqlx.GetContext(ctx, r.db, &total, r.db.Rebind(`SELECT COUNT(1) FROM manufacturers m`+where), args...); err != nil {
		return nil, 0, err
	}

	q := manufacturerSelect + where + ` ORDER BY m.name, m.id LIMIT ? OFFSET ?`
	manufacturers := []models.Manufacturer{}
	if err := sqlx.SelectContext(ctx, r.db, &manufacturers, r.db.Rebind(q), append(args, limit, offset)...); err != nil {
		return nil, 0, err
	}
	return manufacturers, total, nil
}

// Update persists the editable fields of m and stamps updated_at.
func (r *ManufacturerRepository) Update(ctx context.Context, m *models.Manufacturer) error {
	const q = `
        UPDATE manufacturers
        SET name = ?, website = ?, contact_name = ?, email = ?, notes = ?, updated_at = ?
        WHERE id = ?`

	res, err := r.db.ExecContext(ctx, r.db.Rebind(q),
		m.Name, m.Website, m.ContactName, m.Email, m.Notes, m.UpdatedAt, m.ID,
	)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

// UpdateStatus sets the status of a manufacturer.
func (r *ManufacturerRepository) UpdateStatus(ctx context.Context, id string, status models.ManufacturerStatus, now time.Time) error {
	const q = `UPDATE manufacturers SET status = ?, updated_at = ? WHERE id = ?`
	res, err := r.db.ExecContext(ctx, r.db.Rebind(q), status, now, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

// Delete removes a manufacturer. Products cascade in the schema.
func (r *ManufacturerRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM manufacturers WHERE id = ?`), id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

// Count returns the number of manufacturers.
func (r *ManufacturerRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := sqlx.GetContext(ctx, r.db, &n, `SELECT COUNT(1) FROM manufacturers`)
	return n, err
}
