package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/GTDGit/panel_api/internal/models"
)

// ProductRepository handles data access for products.
type ProductRepository struct {
	db sqlx.ExtContext
}

// NewProductRepository creates a new ProductRepository.
func NewProductRepository(db sqlx.ExtContext) *ProductRepository {
	return &ProductRepository{db: db}
}

// WithTx returns a copy bound to tx.
func (r *ProductRepository) WithTx(tx *sqlx.Tx) *ProductRepository {
	return &ProductRepository{db: tx}
}

const productSelect = `
        SELECT p.*,
            m.name AS manufacturer_name,
            (SELECT COUNT(1) FROM product_variants v WHERE v.product_id = p.id) AS variant_count,
            (SELECT COUNT(1) FROM tests t WHERE t.product_id = p.id) AS test_count
        FROM products p
        LEFT JOIN manufacturers m ON m.id = p.manufacturer_id`

// ProductFilter narrows product lists.
type ProductFilter struct {
	ListFilter
	ManufacturerID string
	Category       string
}

// Create inserts p. ID and timestamps must already be set.
func (r *ProductRepository) Create(ctx context.Context, p *models.Product) error {
	const q = `
        INSERT INTO products (id, manufacturer_id, name, category, primary_claim, secondary_claims,
            usage_instructions, volume, status, created_at, updated_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, r.db.Rebind(q),
		p.ID, p.ManufacturerID, p.Name, p.Category, p.PrimaryClaim, p.SecondaryClaims,
		p.UsageInstructions, p.Volume, p.Status, p.CreatedAt, p.UpdatedAt,
	)
	return err
}

// GetByID returns a product with its manufacturer name and counts.
func (r *ProductRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	q := productSelect + ` WHERE p.id = ?`

	var p models.Product
	if err := sqlx.GetContext(ctx, r.db, &p, r.db.Rebind(q), id); err != nil {
		return nil, err
	}
	return &p, nil
}

// List returns products matching f and the total count.
func (r *ProductRepository) List(ctx context.Context, f ProductFilter) ([]models.Product, int, error) {
	limit, offset := f.normalize()

	const where = `
        WHERE (? = '' OR p.status = ?)
        AND (? = '' OR p.manufacturer_id = ?)
        AND (? = '' OR p.category = ?)
        AND (? = '' OR LOWER(p.name) LIKE ? OR LOWER(p.category) LIKE ?)`
	pattern := likePattern(f.Search)
	args := []any{
		f.Status, f.Status,
		f.ManufacturerID, f.ManufacturerID,
		f.Category, f.Category,
		f.Search, pattern, pattern,
	}

	var total int
	if err := sqlx.GetContext(ctx, r.db, &total, r.db.Rebind(`SELECT COUNT(1) FROM products p`+where), args...); err != nil {
		return nil, 0, err
	}

	q := productSelect + where + ` ORDER BY p.created_at DESC, p.id LIMIT ? OFFSET ?`
	products := []models.Product{}
	if err := sqlx.SelectContext(ctx, r.db, &products, r.db.Rebind(q), append(args, limit, offset)...); err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

// Update persists the editable fields of p, including status.
func (r *ProductRepository) Update(ctx context.Context, p *models.Product) error {
	const q = `
        UPDATE products
        SET manufacturer_id = ?, name = ?, category = ?, primary_claim = ?, secondary_claims = ?,
            usage_instructions = ?, volume = ?, status = ?, updated_at = ?
        WHERE id = ?`

	res, err := r.db.ExecContext(ctx, r.db.Rebind(q),
		p.ManufacturerID, p.Name, p.Category, p.PrimaryClaim, p.SecondaryClaims,
		p.UsageInstructions, p.Volume, p.Status, p.UpdatedAt, p.ID,
	)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

// UpdateStatus sets the status of a product unconditionally.
func (r *ProductRepository) UpdateStatus(ctx context.Context, id string, status models.ProductStatus, now time.Time) error {
	const q = `UPDATE products SET status = ?, updated_at = ? WHERE id = ?`
	res, err := r.db.ExecContext(ctx, r.db.Rebind(q), status, now, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

// Release returns a TESTING product to AVAILABLE when no ACTIVE test still
// references it. It reports whether the status changed.
func (r *ProductRepository) Release(ctx context.Context, id string, now time.Time) (bool, error) {
	const q = `
        UPDATE products SET status = ?, updated_at = ?
        WHERE id = ? AND status = ?
        AND NOT EXISTS (SELECT 1 FROM tests t WHERE t.product_id = ? AND t.status = ?)`

	res, err := r.db.ExecContext(ctx, r.db.Rebind(q),
		models.ProductAvailable, now, id, models.ProductTesting, id, models.TestActive,
	)
	if err != nil {
		return false, err
	}
	return affected(res)
}

// Delete removes a product. Variants and tests cascade in the schema.
func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM products WHERE id = ?`), id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

// CountByManufacturer returns the number of products owned by a manufacturer.
func (r *ProductRepository) CountByManufacturer(ctx context.Context, manufacturerID string) (int, error) {
	var n int
	err := sqlx.GetContext(ctx, r.db, &n,
		r.db.Rebind(`SELECT COUNT(1) FROM products WHERE manufacturer_id = ?`), manufacturerID)
	return n, err
}

// ListIDsByManufacturer returns the ids of a manufacturer's products.
func (r *ProductRepository) ListIDsByManufacturer(ctx context.Context, manufacturerID string) ([]string, error) {
	var ids []string
	err := sqlx.SelectContext(ctx, r.db, &ids,
		r.db.Rebind(`SELECT id FROM products WHERE manufacturer_id = ? ORDER BY id`), manufacturerID)
	return ids, err
}

// Count returns the number of products.
func (r *ProductRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := sqlx.GetContext(ctx, r.db, &n, `SELECT COUNT(1) FROM products`)
	return n, err
}
