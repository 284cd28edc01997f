package service

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/GTDGit/panel_api/internal/models"
	"github.com/GTDGit/panel_api/internal/repository"
)

// DashboardService computes the overview counters.
type DashboardService struct {
	store *repository.Store
}

// NewDashboardService constructs a DashboardService.
func NewDashboardService(store *repository.Store) *DashboardService {
	return &DashboardService{store: store}
}

// DashboardStats are the headline numbers of the program.
type DashboardStats struct {
	TestersTesting     int `json:"testersTesting"`
	TotalProducts      int `json:"totalProducts"`
	ActiveTests        int `json:"activeTests"`
	CompletedTests     int `json:"completedTests"`
	TestersWithActive  int `json:"testersWithActiveTest"`
	TestersWithHistory int `json:"testersWithHistory"`
	TotalManufacturers int `json:"totalManufacturers"`
}

// Stats runs the counters concurrently.
func (s *DashboardService) Stats(ctx context.Context) (*DashboardStats, error) {
	var st DashboardStats
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		st.TestersTesting, err = s.store.Testers.CountByStatus(ctx, models.TesterTesting)
		return err
	})
	g.Go(func() (err error) {
		st.TotalProducts, err = s.store.Products.Count(ctx)
		return err
	})
	g.Go(func() (err error) {
		st.ActiveTests, err = s.store.Tests.CountByStatus(ctx, models.TestActive)
		return err
	})
	g.Go(func() (err error) {
		st.CompletedTests, err = s.store.Tests.CountByStatus(ctx, models.TestCompleted)
		return err
	})
	g.Go(func() (err error) {
		st.TestersWithActive, err = s.store.Tests.CountDistinctTesters(ctx, models.TestActive)
		return err
	})
	g.Go(func() (err error) {
		st.TestersWithHistory, err = s.store.Tests.CountDistinctTesters(ctx, "")
		return err
	})
	g.Go(func() (err error) {
		st.TotalManufacturers, err = s.store.Manufacturers.Count(ctx)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &st, nil
}
