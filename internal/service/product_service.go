package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/GTDGit/panel_api/internal/models"
	"github.com/GTDGit/panel_api/internal/repository"
	"github.com/GTDGit/panel_api/internal/utils"
)

// ProductService handles products and their batches.
type ProductService struct {
	store  *repository.Store
	locker Locker
	policy DeletePolicy
	now    func() time.Time
}

// NewProductService constructs a ProductService.
func NewProductService(store *repository.Store, locker Locker, policy DeletePolicy) *ProductService {
	return &ProductService{store: store, locker: locker, policy: policy, now: utcNow}
}

// CreateProductRequest represents the request to create a product.
type CreateProductRequest struct {
	ManufacturerID    string `json:"manufacturerId" binding:"required"`
	Name              string `json:"name" binding:"required"`
	Category          string `json:"category"`
	PrimaryClaim      string `json:"primaryClaim"`
	SecondaryClaims   string `json:"secondaryClaims"`
	UsageInstructions string `json:"usageInstructions"`
	Volume            string `json:"volume"`
}

// UpdateProductRequest represents a partial product update.
type UpdateProductRequest struct {
	ManufacturerID    *string               `json:"manufacturerId"`
	Name              *string               `json:"name"`
	Category          *string               `json:"category"`
	PrimaryClaim      *string               `json:"primaryClaim"`
	SecondaryClaims   *string               `json:"secondaryClaims"`
	UsageInstructions *string               `json:"usageInstructions"`
	Volume            *string               `json:"volume"`
	Status            *models.ProductStatus `json:"status"`
}

// CreateVariantRequest represents the request to add a batch.
type CreateVariantRequest struct {
	BatchNumber       string     `json:"batchNumber" binding:"required"`
	SKU               *string    `json:"sku"`
	FormulaVersion    *string    `json:"formulaVersion"`
	Ingredients       *string    `json:"ingredients"`
	Notes             *string    `json:"notes"`
	ManufacturingDate *time.Time `json:"manufacturingDate"`
}

// UpdateVariantRequest represents a partial batch update.
type UpdateVariantRequest struct {
	BatchNumber       *string    `json:"batchNumber"`
	SKU               *string    `json:"sku"`
	FormulaVersion    *string    `json:"formulaVersion"`
	Ingredients       *string    `json:"ingredients"`
	Notes             *string    `json:"notes"`
	ManufacturingDate *time.Time `json:"manufacturingDate"`
}

// ProductDetail is a product with its batches.
type ProductDetail struct {
	*models.Product
	Variants []models.ProductVariant `json:"variants"`
}

// Create adds an AVAILABLE product to an existing manufacturer.
func (s *ProductService) Create(ctx context.Context, req *CreateProductRequest) (*models.Product, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, utils.Constraint("product name is required")
	}
	unlock, err := s.locker.Lock(ctx, manufacturerKey(req.ManufacturerID))
	if err != nil {
		return nil, err
	}
	defer unlock()

	if _, err := s.store.Manufacturers.GetByID(ctx, req.ManufacturerID); err != nil {
		return nil, notFound(err, "manufacturer %s not found", req.ManufacturerID)
	}

	now := s.now()
	p := &models.Product{
		ID:                uuid.NewString(),
		ManufacturerID:    req.ManufacturerID,
		Name:              name,
		Category:          strings.TrimSpace(req.Category),
		PrimaryClaim:      strings.TrimSpace(req.PrimaryClaim),
		SecondaryClaims:   req.SecondaryClaims,
		UsageInstructions: req.UsageInstructions,
		Volume:            strings.TrimSpace(req.Volume),
		Status:            models.ProductAvailable,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := s.store.Products.Create(ctx, p); err != nil {
		return nil, err
	}
	return s.store.Products.GetByID(ctx, p.ID)
}

// Get retrieves a product with its manufacturer name, counts and batches.
func (s *ProductService) Get(ctx context.Context, id string) (*ProductDetail, error) {
	p, err := s.store.Products.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "product %s not found", id)
	}
	variants, err := s.store.Variants.ListByProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	return &ProductDetail{Product: p, Variants: variants}, nil
}

// List returns a page of products and the total count.
func (s *ProductService) List(ctx context.Context, f repository.ProductFilter) ([]models.Product, int, error) {
	return s.store.Products.List(ctx, f)
}

// Update applies the provided fields, including a manual status change.
func (s *ProductService) Update(ctx context.Context, id string, req *UpdateProductRequest) (*models.Product, error) {
	p, err := s.store.Products.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "product %s not found", id)
	}

	if req.ManufacturerID != nil && *req.ManufacturerID != p.ManufacturerID {
		unlock, err := s.locker.Lock(ctx, manufacturerKey(p.ManufacturerID), manufacturerKey(*req.ManufacturerID))
		if err != nil {
			return nil, err
		}
		defer unlock()
		if _, err := s.store.Manufacturers.GetByID(ctx, *req.ManufacturerID); err != nil {
			return nil, notFound(err, "manufacturer %s not found", *req.ManufacturerID)
		}
		p.ManufacturerID = *req.ManufacturerID
	}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, utils.Constraint("product name is required")
		}
		p.Name = name
	}
	if req.Category != nil {
		p.Category = strings.TrimSpace(*req.Category)
	}
	if req.PrimaryClaim != nil {
		p.PrimaryClaim = strings.TrimSpace(*req.PrimaryClaim)
	}
	if req.SecondaryClaims != nil {
		p.SecondaryClaims = *req.SecondaryClaims
	}
	if req.UsageInstructions != nil {
		p.UsageInstructions = *req.UsageInstructions
	}
	if req.Volume != nil {
		p.Volume = strings.TrimSpace(*req.Volume)
	}
	if req.Status != nil {
		if !req.Status.Valid() {
			return nil, utils.Constraint("unknown product status %q", *req.Status)
		}
		p.Status = *req.Status
	}
	p.UpdatedAt = s.now()

	if err := s.store.Products.Update(ctx, p); err != nil {
		return nil, notFound(err, "product %s not found", id)
	}
	return s.store.Products.GetByID(ctx, id)
}

// Archive sets the product to ARCHIVED.
func (s *ProductService) Archive(ctx context.Context, id string) (*models.Product, error) {
	return s.setStatus(ctx, id, models.ProductArchived)
}

// Unarchive returns the product to AVAILABLE. The status held before
// archiving is not restored.
func (s *ProductService) Unarchive(ctx context.Context, id string) (*models.Product, error) {
	return s.setStatus(ctx, id, models.ProductAvailable)
}

func (s *ProductService) setStatus(ctx context.Context, id string, status models.ProductStatus) (*models.Product, error) {
	unlock, err := s.locker.Lock(ctx, productKey(id))
	if err != nil {
		return nil, err
	}
	defer unlock()

	if err := s.store.Products.UpdateStatus(ctx, id, status, s.now()); err != nil {
		return nil, notFound(err, "product %s not found", id)
	}
	return s.store.Products.GetByID(ctx, id)
}

// Delete removes a product according to the configured policy. Under strict
// it fails while batches or tests exist; under cascade they are removed and
// testers of removed ACTIVE tests are released.
func (s *ProductService) Delete(ctx context.Context, id string) error {
	if _, err := s.store.Products.GetByID(ctx, id); err != nil {
		return notFound(err, "product %s not found", id)
	}

	if s.policy != DeleteCascade {
		unlock, err := s.locker.Lock(ctx, productKey(id))
		if err != nil {
			return err
		}
		defer unlock()

		err = s.store.InTx(ctx, func(tx *repository.Store) error {
			p, err := tx.Products.GetByID(ctx, id)
			if err != nil {
				return notFound(err, "product %s not found", id)
			}
			if p.VariantCount > 0 || p.TestCount > 0 {
				return utils.Constraint("product %s still has %d batch(es) and %d test(s)", p.Name, p.VariantCount, p.TestCount)
			}
			return notFound(tx.Products.Delete(ctx, id), "product %s not found", id)
		})
		if err != nil {
			return err
		}
		log.Info().Str("product_id", id).Msg("Product deleted")
		return nil
	}

	unlock, err := lockStable(ctx, s.locker, func(ctx context.Context) ([]string, error) {
		active, err := s.store.Tests.ListActiveByProduct(ctx, id)
		if err != nil {
			return nil, err
		}
		testerIDs, _ := counterparts(active)
		return lockKeys(testerIDs, []string{id}), nil
	})
	if err != nil {
		return err
	}
	defer unlock()

	now := s.now()
	var removed int
	err = s.store.InTx(ctx, func(tx *repository.Store) error {
		active, err := tx.Tests.ListActiveByProduct(ctx, id)
		if err != nil {
			return err
		}
		removed = len(active)
		testerIDs, _ := counterparts(active)
		if err := tx.Products.Delete(ctx, id); err != nil {
			return notFound(err, "product %s not found", id)
		}
		return releaseAll(ctx, tx, now, testerIDs, nil)
	})
	if err != nil {
		return err
	}
	log.Info().Str("product_id", id).Int("active_tests", removed).Msg("Product deleted with cascade")
	return nil
}

// CreateVariant adds a batch to a product.
func (s *ProductService) CreateVariant(ctx context.Context, productID string, req *CreateVariantRequest) (*models.ProductVariant, error) {
	batch := strings.TrimSpace(req.BatchNumber)
	if batch == "" {
		return nil, utils.Constraint("batch number is required")
	}
	unlock, err := s.locker.Lock(ctx, productKey(productID))
	if err != nil {
		return nil, err
	}
	defer unlock()

	if _, err := s.store.Products.GetByID(ctx, productID); err != nil {
		return nil, notFound(err, "product %s not found", productID)
	}

	now := s.now()
	v := &models.ProductVariant{
		ID:                uuid.NewString(),
		ProductID:         productID,
		BatchNumber:       batch,
		SKU:               clean(req.SKU),
		FormulaVersion:    clean(req.FormulaVersion),
		Ingredients:       clean(req.Ingredients),
		Notes:             clean(req.Notes),
		ManufacturingDate: utcPtr(req.ManufacturingDate),
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := s.store.Variants.Create(ctx, v); err != nil {
		return nil, err
	}
	return v, nil
}

// GetVariant retrieves a batch by id.
func (s *ProductService) GetVariant(ctx context.Context, id string) (*models.ProductVariant, error) {
	v, err := s.store.Variants.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "product batch %s not found", id)
	}
	return v, nil
}

// ListVariants returns every batch of a product.
func (s *ProductService) ListVariants(ctx context.Context, productID string) ([]models.ProductVariant, error) {
	if _, err := s.store.Products.GetByID(ctx, productID); err != nil {
		return nil, notFound(err, "product %s not found", productID)
	}
	return s.store.Variants.ListByProduct(ctx, productID)
}

// UpdateVariant applies the provided fields to a batch.
func (s *ProductService) UpdateVariant(ctx context.Context, id string, req *UpdateVariantRequest) (*models.ProductVariant, error) {
	v, err := s.GetVariant(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.BatchNumber != nil {
		batch := strings.TrimSpace(*req.BatchNumber)
		if batch == "" {
			return nil, utils.Constraint("batch number is required")
		}
		v.BatchNumber = batch
	}
	if req.SKU != nil {
		v.SKU = clean(req.SKU)
	}
	if req.FormulaVersion != nil {
		v.FormulaVersion = clean(req.FormulaVersion)
	}
	if req.Ingredients != nil {
		v.Ingredients = clean(req.Ingredients)
	}
	if req.Notes != nil {
		v.Notes = clean(req.Notes)
	}
	if req.ManufacturingDate != nil {
		v.ManufacturingDate = utcPtr(req.ManufacturingDate)
	}
	v.UpdatedAt = s.now()

	if err := s.store.Variants.Update(ctx, v); err != nil {
		return nil, notFound(err, "product batch %s not found", id)
	}
	return v, nil
}

// DeleteVariant removes a batch. A batch used by any test cannot be deleted.
func (s *ProductService) DeleteVariant(ctx context.Context, id string) error {
	v, err := s.GetVariant(ctx, id)
	if err != nil {
		return err
	}

	// CreateTest holds the product key while it inserts.
	unlock, err := s.locker.Lock(ctx, productKey(v.ProductID))
	if err != nil {
		return err
	}
	defer unlock()

	err = s.store.InTx(ctx, func(tx *repository.Store) error {
		n, err := tx.Tests.CountByVariant(ctx, id)
		if err != nil {
			return err
		}
		if n > 0 {
			return utils.Constraint("batch %s is used by %d test(s) and cannot be deleted", v.BatchNumber, n)
		}
		return notFound(tx.Variants.Delete(ctx, id), "product batch %s not found", id)
	})
	if err != nil {
		return err
	}
	log.Info().Str("variant_id", id).Msg("Product batch deleted")
	return nil
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
