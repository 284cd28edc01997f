package service

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/GTDGit/panel_api/internal/metrics"
	"github.com/GTDGit/panel_api/internal/models"
	"github.com/GTDGit/panel_api/internal/repository"
	"github.com/GTDGit/panel_api/internal/sse"
	"github.com/GTDGit/panel_api/internal/utils"
)

// LifecycleService owns the test state machine and its side effects on
// tester and product status.
type LifecycleService struct {
	store    *repository.Store
	locker   Locker
	notifier sse.TestNotifier
	now      func() time.Time
}

// NewLifecycleService constructs a LifecycleService.
func NewLifecycleService(store *repository.Store, locker Locker) *LifecycleService {
	return &LifecycleService{store: store, locker: locker, notifier: sse.NopNotifier{}, now: utcNow}
}

// SetNotifier sets the notifier used to push lifecycle events to admin clients.
func (s *LifecycleService) SetNotifier(n sse.TestNotifier) {
	s.notifier = n
}

// Assignment is one product batch handed to the tester.
type Assignment struct {
	VariantID   string `json:"variantId" binding:"required"`
	ProductSize string `json:"productSize"`
}

// CreateTestRequest starts one test per assignment for a single tester.
type CreateTestRequest struct {
	TesterID         string                  `json:"testerId" binding:"required"`
	Assignments      []Assignment            `json:"assignments" binding:"required,min=1,dive"`
	DurationDays     int                     `json:"durationDays"`
	FeedbackSchedule models.FeedbackSchedule `json:"feedbackSchedule" binding:"required"`
	StartDate        *time.Time              `json:"startDate"`
}

// DiscontinueTestRequest carries the mandatory reason.
type DiscontinueTestRequest struct {
	Reason string `json:"reason"`
}

func (req *CreateTestRequest) validate() error {
	if strings.TrimSpace(req.TesterID) == "" {
		return utils.Constraint("a tester is required")
	}
	if len(req.Assignments) == 0 {
		return utils.Constraint("at least one product batch must be assigned")
	}
	if req.DurationDays <= 0 {
		return utils.Constraint("duration must be a positive number of days")
	}
	if !req.FeedbackSchedule.Valid() {
		return utils.Constraint("unknown feedback schedule %q", req.FeedbackSchedule)
	}
	seen := make(map[string]bool, len(req.Assignments))
	for _, a := range req.Assignments {
		if strings.TrimSpace(a.VariantID) == "" {
			return utils.Constraint("every assignment needs a product batch")
		}
		if seen[a.VariantID] {
			return utils.Constraint("product batch %s is assigned more than once", a.VariantID)
		}
		seen[a.VariantID] = true
	}
	return nil
}

// CreateTest assigns the tester to every requested batch. All tests, their
// baselines and the status flips commit together or not at all.
func (s *LifecycleService) CreateTest(ctx context.Context, req *CreateTestRequest) ([]models.Test, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	// Resolve batches first so the product locks can be taken up front.
	variants := make([]*models.ProductVariant, len(req.Assignments))
	keys := []string{testerKey(req.TesterID)}
	for i, a := range req.Assignments {
		v, err := s.store.Variants.GetByID(ctx, a.VariantID)
		if err != nil {
			return nil, notFound(err, "product batch %s not found", a.VariantID)
		}
		variants[i] = v
		keys = append(keys, productKey(v.ProductID))
	}

	unlock, err := s.locker.Lock(ctx, keys...)
	if err != nil {
		return nil, err
	}
	defer unlock()

	now := s.now()
	start := now
	if req.StartDate != nil {
		start = req.StartDate.UTC()
	}

	created := make([]models.Test, 0, len(req.Assignments))
	err = s.store.InTx(ctx, func(tx *repository.Store) error {
		tester, err := tx.Testers.GetByID(ctx, req.TesterID)
		if err != nil {
			return notFound(err, "tester %s not found", req.TesterID)
		}
		if tester.Status != models.TesterAvailable {
			return utils.Constraint("tester %s is %s and cannot start a new test", tester.FullName(), tester.Status)
		}

		products := make(map[string]*models.Product)
		for _, v := range variants {
			// The batch may have been deleted before the locks were taken.
			if _, err := tx.Variants.GetByID(ctx, v.ID); err != nil {
				return notFound(err, "product batch %s not found", v.ID)
			}
			if _, ok := products[v.ProductID]; ok {
				continue
			}
			p, err := tx.Products.GetByID(ctx, v.ProductID)
			if err != nil {
				return notFound(err, "product %s not found", v.ProductID)
			}
			if !p.Status.Assignable() {
				return utils.Constraint("product %s is %s and cannot be tested", p.Name, p.Status)
			}
			products[p.ID] = p
		}

		// Captured before the status flip and shared by every baseline.
		snapshot, err := json.Marshal(models.TesterSnapshot{
			SkinType:       tester.SkinType,
			PrimaryConcern: tester.PrimaryConcern,
			Age:            tester.Age,
			Location:       tester.Location,
		})
		if err != nil {
			return err
		}

		ok, err := tx.Testers.SwapStatus(ctx, tester.ID, models.TesterAvailable, models.TesterTesting, now)
		if err != nil {
			return err
		}
		if !ok {
			return utils.Conflict("tester %s changed status while the test was being created", tester.FullName())
		}

		for id := range products {
			if err := tx.Products.UpdateStatus(ctx, id, models.ProductTesting, now); err != nil {
				return err
			}
		}

		for i, a := range req.Assignments {
			v := variants[i]
			t := models.Test{
				ID:               uuid.NewString(),
				TesterID:         tester.ID,
				ProductID:        v.ProductID,
				ProductVariantID: v.ID,
				ProductSize:      clean(&a.ProductSize),
				DurationDays:     req.DurationDays,
				FeedbackSchedule: req.FeedbackSchedule,
				StartDate:        start,
				Status:           models.TestActive,
				CreatedAt:        now,
				UpdatedAt:        now,
			}
			if err := tx.Tests.Create(ctx, &t); err != nil {
				return err
			}
			baseline := models.BaselineAssessment{
				ID:             uuid.NewString(),
				TestID:         t.ID,
				TesterSnapshot: string(snapshot),
				Metrics:        "{}",
				CreatedAt:      now,
				UpdatedAt:      now,
			}
			if err := tx.Baselines.Create(ctx, &baseline); err != nil {
				return err
			}
			created = append(created, t)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for i := range created {
		t := &created[i]
		metrics.LifecycleTransitions.WithLabelValues("started").Inc()
		s.notifier.NotifyTestStarted(t)
		log.Info().
			Str("test_id", t.ID).
			Str("tester_id", t.TesterID).
			Str("product_id", t.ProductID).
			Str("variant_id", t.ProductVariantID).
			Msg("Test started")
	}
	return created, nil
}

// GetTest retrieves a test with its tester, product and batch names.
func (s *LifecycleService) GetTest(ctx context.Context, id string) (*models.Test, error) {
	t, err := s.store.Tests.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "test %s not found", id)
	}
	return t, nil
}

// ListTests returns a page of tests and the total count.
func (s *LifecycleService) ListTests(ctx context.Context, f repository.TestFilter) ([]models.Test, int, error) {
	return s.store.Tests.List(ctx, f)
}

// DiscontinueTest ends an ACTIVE test early. The reason is required and
// stored on the test.
func (s *LifecycleService) DiscontinueTest(ctx context.Context, id, reason string) (*models.Test, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, utils.Constraint("a reason is required to discontinue a test")
	}
	return s.finish(ctx, id, models.TestDiscontinued, &reason)
}

// CompleteTest marks an ACTIVE test as COMPLETED.
func (s *LifecycleService) CompleteTest(ctx context.Context, id string) (*models.Test, error) {
	return s.finish(ctx, id, models.TestCompleted, nil)
}

func (s *LifecycleService) finish(ctx context.Context, id string, to models.TestStatus, reason *string) (*models.Test, error) {
	t, err := s.store.Tests.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "test %s not found", id)
	}
	if t.Status != models.TestActive {
		return nil, utils.Constraint("test is %s; only ACTIVE tests can be changed to %s", t.Status, to)
	}

	unlock, err := s.locker.Lock(ctx, testerKey(t.TesterID), productKey(t.ProductID))
	if err != nil {
		return nil, err
	}
	defer unlock()

	now := s.now()
	err = s.store.InTx(ctx, func(tx *repository.Store) error {
		ok, err := tx.Tests.Finish(ctx, t.ID, to, reason, now)
		if err != nil {
			return err
		}
		if !ok {
			return utils.Conflict("test %s is no longer ACTIVE", t.ID)
		}
		return release(ctx, tx, now, t.TesterID, t.ProductID)
	})
	if err != nil {
		return nil, err
	}

	metrics.LifecycleTransitions.WithLabelValues(strings.ToLower(string(to))).Inc()
	log.Info().Str("test_id", t.ID).Str("status", string(to)).Msg("Test finished")

	done, err := s.store.Tests.GetByID(ctx, t.ID)
	if err != nil {
		return nil, err
	}
	s.notifier.NotifyTestFinished(done)
	return done, nil
}

// DeleteTest removes a test of any status together with its baseline and
// feedback, releasing the tester and product if nothing else holds them.
func (s *LifecycleService) DeleteTest(ctx context.Context, id string) error {
	t, err := s.store.Tests.GetByID(ctx, id)
	if err != nil {
		return notFound(err, "test %s not found", id)
	}

	unlock, err := s.locker.Lock(ctx, testerKey(t.TesterID), productKey(t.ProductID))
	if err != nil {
		return err
	}
	defer unlock()

	now := s.now()
	err = s.store.InTx(ctx, func(tx *repository.Store) error {
		if err := tx.Tests.Delete(ctx, t.ID); err != nil {
			return notFound(err, "test %s not found", t.ID)
		}
		return release(ctx, tx, now, t.TesterID, t.ProductID)
	})
	if err != nil {
		return err
	}

	metrics.LifecycleTransitions.WithLabelValues("deleted").Inc()
	s.notifier.NotifyTestDeleted(t)
	log.Info().Str("test_id", t.ID).Msg("Test deleted")
	return nil
}

// CompleteExpired completes every ACTIVE test whose planned duration has
// elapsed at now. Running it again completes nothing new.
func (s *LifecycleService) CompleteExpired(ctx context.Context, now time.Time) ([]string, error) {
	active, err := s.store.Tests.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	completed := []string{}
	for _, t := range active {
		if t.ExpiresAt().After(now) {
			continue
		}
		if _, err := s.finish(ctx, t.ID, models.TestCompleted, nil); err != nil {
			// Finished or deleted by someone else since the listing.
			var appErr *utils.AppError
			if errors.As(err, &appErr) {
				continue
			}
			return completed, err
		}
		completed = append(completed, t.ID)
	}
	if len(completed) > 0 {
		log.Info().Int("count", len(completed)).Msg("Completed expired tests")
	}
	return completed, nil
}

// release frees a tester and product whose test just ended or vanished.
// Either stays TESTING while another ACTIVE test still references it.
func release(ctx context.Context, tx *repository.Store, now time.Time, testerID, productID string) error {
	if _, err := tx.Testers.Release(ctx, testerID, now); err != nil {
		return err
	}
	_, err := tx.Products.Release(ctx, productID, now)
	return err
}

// releaseAll frees the counterparts of tests removed by a cascading delete.
func releaseAll(ctx context.Context, tx *repository.Store, now time.Time, testerIDs, productIDs []string) error {
	for _, id := range testerIDs {
		if _, err := tx.Testers.Release(ctx, id, now); err != nil {
			return err
		}
	}
	for _, id := range productIDs {
		if _, err := tx.Products.Release(ctx, id, now); err != nil {
			return err
		}
	}
	return nil
}

// counterparts collects the distinct tester and product ids of tests.
func counterparts(tests []models.Test) (testerIDs, productIDs []string) {
	ts := map[string]bool{}
	ps := map[string]bool{}
	for _, t := range tests {
		if !ts[t.TesterID] {
			ts[t.TesterID] = true
			testerIDs = append(testerIDs, t.TesterID)
		}
		if !ps[t.ProductID] {
			ps[t.ProductID] = true
			productIDs = append(productIDs, t.ProductID)
		}
	}
	sort.Strings(testerIDs)
	sort.Strings(productIDs)
	return testerIDs, productIDs
}

// lockKeys builds lock keys for a set of testers and products.
func lockKeys(testerIDs, productIDs []string) []string {
	keys := make([]string, 0, len(testerIDs)+len(productIDs))
	for _, id := range testerIDs {
		keys = append(keys, testerKey(id))
	}
	for _, id := range productIDs {
		keys = append(keys, productKey(id))
	}
	return keys
}
