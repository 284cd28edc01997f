package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/GTDGit/panel_api/internal/database"
)

// Store groups the entity repositories so a service can bind all of them
// to one transaction.
type Store struct {
	db *sqlx.DB

	Manufacturers *ManufacturerRepository
	Products      *ProductRepository
	Variants      *VariantRepository
	Testers       *TesterRepository
	Tests         *TestRepository
	Baselines     *BaselineRepository
	Feedback      *FeedbackRepository
}

// NewStore creates repositories bound to the connection pool.
func NewStore(db *sqlx.DB) *Store {
	return &Store{
		db:            db,
		Manufacturers: NewManufacturerRepository(db),
		Products:      NewProductRepository(db),
		Variants:      NewVariantRepository(db),
		Testers:       NewTesterRepository(db),
		Tests:         NewTestRepository(db),
		Baselines:     NewBaselineRepository(db),
		Feedback:      NewFeedbackRepository(db),
	}
}

// InTx runs fn with a Store whose repositories share one transaction.
// fn must only use the Store it receives.
func (s *Store) InTx(ctx context.Context, fn func(tx *Store) error) error {
	return database.WithTx(ctx, s.db, func(tx *sqlx.Tx) error {
		return fn(&Store{
			db:            s.db,
			Manufacturers: s.Manufacturers.WithTx(tx),
			Products:      s.Products.WithTx(tx),
			Variants:      s.Variants.WithTx(tx),
			Testers:       s.Testers.WithTx(tx),
			Tests:         s.Tests.WithTx(tx),
			Baselines:     s.Baselines.WithTx(tx),
			Feedback:      s.Feedback.WithTx(tx),
		})
	})
}

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
