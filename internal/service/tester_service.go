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

// TesterService handles tester business logic.
type TesterService struct {
	store  *repository.Store
	locker Locker
	policy DeletePolicy
	now    func() time.Time
}

// NewTesterService constructs a TesterService.
func NewTesterService(store *repository.Store, locker Locker, policy DeletePolicy) *TesterService {
	return &TesterService{store: store, locker: locker, policy: policy, now: utcNow}
}

// CreateTesterRequest represents the request to enroll a tester.
type CreateTesterRequest struct {
	FirstName         string   `json:"firstName" binding:"required"`
	LastName          string   `json:"lastName"`
	Email             string   `json:"email"`
	Phone             string   `json:"phone"`
	Age               int      `json:"age"`
	Gender            string   `json:"gender"`
	Location          string   `json:"location"`
	SkinType          string   `json:"skinType"`
	PrimaryConcern    string   `json:"primaryConcern"`
	SecondaryConcerns string   `json:"secondaryConcerns"`
	Allergies         string   `json:"allergies"`
	ReliabilityScore  *float64 `json:"reliabilityScore"`
}

// UpdateTesterRequest represents a partial tester update.
type UpdateTesterRequest struct {
	FirstName         *string              `json:"firstName"`
	LastName          *string              `json:"lastName"`
	Email             *string              `json:"email"`
	Phone             *string              `json:"phone"`
	Age               *int                 `json:"age"`
	Gender            *string              `json:"gender"`
	Location          *string              `json:"location"`
	SkinType          *string              `json:"skinType"`
	PrimaryConcern    *string              `json:"primaryConcern"`
	SecondaryConcerns *string              `json:"secondaryConcerns"`
	Allergies         *string              `json:"allergies"`
	ReliabilityScore  *float64             `json:"reliabilityScore"`
	Status            *models.TesterStatus `json:"status"`
}

// TesterDetail is a tester with their test history.
type TesterDetail struct {
	*models.Tester
	Tests []models.Test `json:"tests"`
}

func validScore(score float64) error {
	if score < 0 || score > 100 {
		return utils.Constraint("reliability score must be between 0 and 100")
	}
	return nil
}

// Create enrolls an AVAILABLE tester with a default reliability score of 100.
func (s *TesterService) Create(ctx context.Context, req *CreateTesterRequest) (*models.Tester, error) {
	first := strings.TrimSpace(req.FirstName)
	if first == "" {
		return nil, utils.Constraint("first name is required")
	}
	score := models.DefaultReliabilityScore
	if req.ReliabilityScore != nil {
		score = *req.ReliabilityScore
	}
	if err := validScore(score); err != nil {
		return nil, err
	}

	now := s.now()
	t := &models.Tester{
		ID:                uuid.NewString(),
		FirstName:         first,
		LastName:          strings.TrimSpace(req.LastName),
		Email:             strings.TrimSpace(req.Email),
		Phone:             strings.TrimSpace(req.Phone),
		Age:               req.Age,
		Gender:            req.Gender,
		Location:          strings.TrimSpace(req.Location),
		SkinType:          req.SkinType,
		PrimaryConcern:    req.PrimaryConcern,
		SecondaryConcerns: req.SecondaryConcerns,
		Allergies:         req.Allergies,
		ReliabilityScore:  score,
		Status:            models.TesterAvailable,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := s.store.Testers.Create(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// Get retrieves a tester with their tests.
func (s *TesterService) Get(ctx context.Context, id string) (*TesterDetail, error) {
	t, err := s.store.Testers.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "tester %s not found", id)
	}
	tests, _, err := s.store.Tests.List(ctx, repository.TestFilter{
		ListFilter: repository.ListFilter{Limit: 200},
		TesterID:   id,
	})
	if err != nil {
		return nil, err
	}
	return &TesterDetail{Tester: t, Tests: tests}, nil
}

// List returns a page of testers and the total count.
func (s *TesterService) List(ctx context.Context, f repository.TesterFilter) ([]models.Tester, int, error) {
	return s.store.Testers.List(ctx, f)
}

// Update applies the provided fields, including a manual status change.
func (s *TesterService) Update(ctx context.Context, id string, req *UpdateTesterRequest) (*models.Tester, error) {
	t, err := s.store.Testers.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "tester %s not found", id)
	}

	if req.FirstName != nil {
		first := strings.TrimSpace(*req.FirstName)
		if first == "" {
			return nil, utils.Constraint("first name is required")
		}
		t.FirstName = first
	}
	if req.LastName != nil {
		t.LastName = strings.TrimSpace(*req.LastName)
	}
	if req.Email != nil {
		t.Email = strings.TrimSpace(*req.Email)
	}
	if req.Phone != nil {
		t.Phone = strings.TrimSpace(*req.Phone)
	}
	if req.Age != nil {
		t.Age = *req.Age
	}
	if req.Gender != nil {
		t.Gender = *req.Gender
	}
	if req.Location != nil {
		t.Location = strings.TrimSpace(*req.Location)
	}
	if req.SkinType != nil {
		t.SkinType = *req.SkinType
	}
	if req.PrimaryConcern != nil {
		t.PrimaryConcern = *req.PrimaryConcern
	}
	if req.SecondaryConcerns != nil {
		t.SecondaryConcerns = *req.SecondaryConcerns
	}
	if req.Allergies != nil {
		t.Allergies = *req.Allergies
	}
	if req.ReliabilityScore != nil {
		if err := validScore(*req.ReliabilityScore); err != nil {
			return nil, err
		}
		t.ReliabilityScore = *req.ReliabilityScore
	}
	if req.Status != nil {
		if !req.Status.Valid() {
			return nil, utils.Constraint("unknown tester status %q", *req.Status)
		}
		t.Status = *req.Status
	}
	t.UpdatedAt = s.now()

	if err := s.store.Testers.Update(ctx, t); err != nil {
		return nil, notFound(err, "tester %s not found", id)
	}
	return t, nil
}

// Archive sets the tester to ARCHIVED.
func (s *TesterService) Archive(ctx context.Context, id string) (*models.Tester, error) {
	return s.setStatus(ctx, id, models.TesterArchived)
}

// Unarchive returns the tester to AVAILABLE.
func (s *TesterService) Unarchive(ctx context.Context, id string) (*models.Tester, error) {
	return s.setStatus(ctx, id, models.TesterAvailable)
}

func (s *TesterService) setStatus(ctx context.Context, id string, status models.TesterStatus) (*models.Tester, error) {
	unlock, err := s.locker.Lock(ctx, testerKey(id))
	if err != nil {
		return nil, err
	}
	defer unlock()

	if err := s.store.Testers.UpdateStatus(ctx, id, status, s.now()); err != nil {
		return nil, notFound(err, "tester %s not found", id)
	}
	return s.store.Testers.GetByID(ctx, id)
}

// Delete removes a tester according to the configured policy. Under strict
// it fails while the tester has tests; under cascade the tests go too and
// products of removed ACTIVE tests are released.
func (s *TesterService) Delete(ctx context.Context, id string) error {
	if _, err := s.store.Testers.GetByID(ctx, id); err != nil {
		return notFound(err, "tester %s not found", id)
	}

	if s.policy != DeleteCascade {
		unlock, err := s.locker.Lock(ctx, testerKey(id))
		if err != nil {
			return err
		}
		defer unlock()

		err = s.store.InTx(ctx, func(tx *repository.Store) error {
			t, err := tx.Testers.GetByID(ctx, id)
			if err != nil {
				return notFound(err, "tester %s not found", id)
			}
			if t.TestCount > 0 {
				return utils.Constraint("tester %s still has %d test(s)", t.FullName(), t.TestCount)
			}
			return notFound(tx.Testers.Delete(ctx, id), "tester %s not found", id)
		})
		if err != nil {
			return err
		}
		log.Info().Str("tester_id", id).Msg("Tester deleted")
		return nil
	}

	unlock, err := lockStable(ctx, s.locker, func(ctx context.Context) ([]string, error) {
		active, err := s.store.Tests.ListActiveByTester(ctx, id)
		if err != nil {
			return nil, err
		}
		_, productIDs := counterparts(active)
		return lockKeys([]string{id}, productIDs), nil
	})
	if err != nil {
		return err
	}
	defer unlock()

	now := s.now()
	var removed int
	err = s.store.InTx(ctx, func(tx *repository.Store) error {
		active, err := tx.Tests.ListActiveByTester(ctx, id)
		if err != nil {
			return err
		}
		removed = len(active)
		_, productIDs := counterparts(active)
		if err := tx.Testers.Delete(ctx, id); err != nil {
			return notFound(err, "tester %s not found", id)
		}
		return releaseAll(ctx, tx, now, nil, productIDs)
	})
	if err != nil {
		return err
	}
	log.Info().Str("tester_id", id).Int("active_tests", removed).Msg("Tester deleted with cascade")
	return nil
}
