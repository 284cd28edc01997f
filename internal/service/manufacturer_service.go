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

// ManufacturerService handles manufacturer business logic.
type ManufacturerService struct {
	store  *repository.Store
	locker Locker
	policy DeletePolicy
	now    func() time.Time
}

// NewManufacturerService constructs a ManufacturerService.
func NewManufacturerService(store *repository.Store, locker Locker, policy DeletePolicy) *ManufacturerService {
	return &ManufacturerService{store: store, locker: locker, policy: policy, now: utcNow}
}

// CreateManufacturerRequest represents the request to create a manufacturer.
type CreateManufacturerRequest struct {
	Name        string  `json:"name" binding:"required"`
	Website     *string `json:"website"`
	ContactName *string `json:"contactName"`
	Email       *string `json:"email"`
	Notes       *string `json:"notes"`
}

// UpdateManufacturerRequest represents a partial manufacturer update.
type UpdateManufacturerRequest struct {
	Name        *string `json:"name"`
	Website     *string `json:"website"`
	ContactName *string `json:"contactName"`
	Email       *string `json:"email"`
	Notes       *string `json:"notes"`
}

// Create adds an ACTIVE manufacturer.
func (s *ManufacturerService) Create(ctx context.Context, req *CreateManufacturerRequest) (*models.Manufacturer, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, utils.Constraint("manufacturer name is required")
	}
	now := s.now()
	m := &models.Manufacturer{
		ID:          uuid.NewString(),
		Name:        name,
		Website:     clean(req.Website),
		ContactName: clean(req.ContactName),
		Email:       clean(req.Email),
		Notes:       clean(req.Notes),
		Status:      models.ManufacturerActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.Manufacturers.Create(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

// Get retrieves a manufacturer by id.
func (s *ManufacturerService) Get(ctx context.Context, id string) (*models.Manufacturer, error) {
	m, err := s.store.Manufacturers.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "manufacturer %s not found", id)
	}
	return m, nil
}

// List returns a page of manufacturers and the total count.
func (s *ManufacturerService) List(ctx context.Context, f repository.ListFilter) ([]models.Manufacturer, int, error) {
	return s.store.Manufacturers.List(ctx, f)
}

// Update applies the provided fields. An empty string clears an optional field.
func (s *ManufacturerService) Update(ctx context.Context, id string, req *UpdateManufacturerRequest) (*models.Manufacturer, error) {
	m, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, utils.Constraint("manufacturer name is required")
		}
		m.Name = name
	}
	if req.Website != nil {
		m.Website = clean(req.Website)
	}
	if req.ContactName != nil {
		m.ContactName = clean(req.ContactName)
	}
	if req.Email != nil {
		m.Email = clean(req.Email)
	}
	if req.Notes != nil {
		m.Notes = clean(req.Notes)
	}
	m.UpdatedAt = s.now()

	if err := s.store.Manufacturers.Update(ctx, m); err != nil {
		return nil, notFound(err, "manufacturer %s not found", id)
	}
	return m, nil
}

// Archive sets the manufacturer to ARCHIVED.
func (s *ManufacturerService) Archive(ctx context.Context, id string) (*models.Manufacturer, error) {
	return s.setStatus(ctx, id, models.ManufacturerArchived)
}

// Unarchive restores the manufacturer to ACTIVE.
func (s *ManufacturerService) Unarchive(ctx context.Context, id string) (*models.Manufacturer, error) {
	return s.setStatus(ctx, id, models.ManufacturerActive)
}

func (s *ManufacturerService) setStatus(ctx context.Context, id string, status models.ManufacturerStatus) (*models.Manufacturer, error) {
	if err := s.store.Manufacturers.UpdateStatus(ctx, id, status, s.now()); err != nil {
		return nil, notFound(err, "manufacturer %s not found", id)
	}
	return s.Get(ctx, id)
}

// Delete removes a manufacturer according to the configured policy. Under
// strict it fails while products exist; under cascade products, batches and
// tests go with it and testers of removed ACTIVE tests are released.
func (s *ManufacturerService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}

	if s.policy != DeleteCascade {
		// Product creation holds the manufacturer key.
		unlock, err := s.locker.Lock(ctx, manufacturerKey(id))
		if err != nil {
			return err
		}
		defer unlock()

		err = s.store.InTx(ctx, func(tx *repository.Store) error {
			m, err := tx.Manufacturers.GetByID(ctx, id)
			if err != nil {
				return notFound(err, "manufacturer %s not found", id)
			}
			n, err := tx.Products.CountByManufacturer(ctx, id)
			if err != nil {
				return err
			}
			if n > 0 {
				return utils.Constraint("manufacturer %s still has %d product(s); delete them first", m.Name, n)
			}
			return notFound(tx.Manufacturers.Delete(ctx, id), "manufacturer %s not found", id)
		})
		if err != nil {
			return err
		}
		log.Info().Str("manufacturer_id", id).Msg("Manufacturer deleted")
		return nil
	}

	unlock, err := lockStable(ctx, s.locker, func(ctx context.Context) ([]string, error) {
		productIDs, err := s.store.Products.ListIDsByManufacturer(ctx, id)
		if err != nil {
			return nil, err
		}
		active, err := s.store.Tests.ListActiveByManufacturer(ctx, id)
		if err != nil {
			return nil, err
		}
		testerIDs, _ := counterparts(active)
		return append(lockKeys(testerIDs, productIDs), manufacturerKey(id)), nil
	})
	if err != nil {
		return err
	}
	defer unlock()

	now := s.now()
	var removed int
	err = s.store.InTx(ctx, func(tx *repository.Store) error {
		active, err := tx.Tests.ListActiveByManufacturer(ctx, id)
		if err != nil {
			return err
		}
		removed = len(active)
		testerIDs, _ := counterparts(active)
		if err := tx.Manufacturers.Delete(ctx, id); err != nil {
			return notFound(err, "manufacturer %s not found", id)
		}
		return releaseAll(ctx, tx, now, testerIDs, nil)
	})
	if err != nil {
		return err
	}
	log.Info().Str("manufacturer_id", id).Int("active_tests", removed).Msg("Manufacturer deleted with cascade")
	return nil
}
