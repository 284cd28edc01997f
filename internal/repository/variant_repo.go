package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/GTDGit/panel_api/internal/models"
)

// VariantRepository handles data access for product variants (batches).
type VariantRepository struct {
	db sqlx.ExtContext
}

// NewVariantRepository creates a new VariantRepository.
func NewVariantRepository(db sqlx.ExtContext) *VariantRepository {
	return &VariantRepository{db: db}
}

// WithTx returns a copy bound to tx.
func (r *VariantRepository) WithTx(tx *sqlx.Tx) *VariantRepository {
	return &VariantRepository{db: tx}
}

const variantSelect = `
        SELECT v.*,
            (SELECT COUNT(1) FROM tests t WHERE t.product_variant_id = v.id) AS test_count
        FROM product_variants v`

// Create inserts v. ID and timestamps must already be set.
func (r *VariantRepository) Create(ctx context.Context, v *models.ProductVariant) error {
	const q = `
        INSERT INTO product_variants (id, product_id, batch_number, sku, formula_version, ingredients,
            notes, manufacturing_date, created_at, updated_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, r.db.Rebind(q),
		v.ID, v.ProductID, v.BatchNumber, v.SKU, v.FormulaVersion, v.Ingredients,
		v.Notes, v.ManufacturingDate, v.CreatedAt, v.UpdatedAt,
	)
	return err
}

// GetByID returns a variant with its test count.
func (r *VariantRepository) GetByID(ctx context.Context, id string) (*models.ProductVariant, error) {
	q := variantSelect + ` WHERE v.id = ?`

	var v models.ProductVariant
	if err := sqlx.GetContext(ctx, r.db, &v, r.db.Rebind(q), id); err != nil {
		return nil, err
	}
	return &v, nil
}

// ListByProduct returns every batch of a product, newest first.
func (r *VariantRepository) ListByProduct(ctx context.Context, productID string) ([]models.ProductVariant, error) {
	q := variantSelect + ` WHERE v.product_id = ? ORDER BY v.created_at DESC, v.id`

	variants := []models.ProductVariant{}
	if err := sqlx.SelectContext(ctx, r.db, &variants, r.db.Rebind(q), productID); err != nil {
		return nil, err
	}
	return variants, nil
}

// Update persists the editable fields of v.
func (r *VariantRepository) Update(ctx context.Context, v *models.ProductVariant) error {
	const q = `
        UPDATE product_variants
        SET batch_number = ?, sku = ?, formula_version = ?, ingredients = ?, notes = ?,
            manufacturing_date = ?, updated_at = ?
        WHERE id = ?`

	res, err := r.db.ExecContext(ctx, r.db.Rebind(q),
		v.BatchNumber, v.SKU, v.FormulaVersion, v.Ingredients, v.Notes,
		v.ManufacturingDate, v.UpdatedAt, v.ID,
	)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

// Delete removes a variant. The schema refuses while a test references it.
func (r *VariantRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM product_variants WHERE id = ?`), id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}
