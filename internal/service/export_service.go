package service

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/GTDGit/panel_api/internal/feedback"
	"github.com/GTDGit/panel_api/internal/repository"
)

// ExportVersion is the schema version stamped on every export.
const ExportVersion = "1.0"

const exportDateLayout = "2006-01-02"

// ExportService assembles the compliance export of a test. It never writes.
type ExportService struct {
	store *repository.Store
	now   func() time.Time
}

// NewExportService constructs an ExportService.
func NewExportService(store *repository.Store) *ExportService {
	return &ExportService{store: store, now: utcNow}
}

// ExportDocument is the denormalized export of one test.
type ExportDocument struct {
	TestMetadata      ExportMetadata      `json:"test_metadata"`
	TestConfiguration ExportConfiguration `json:"test_configuration"`
	Product           ExportProduct       `json:"product"`
	Tester            ExportTester        `json:"tester"`
	FeedbackEntries   []ExportEntry       `json:"feedback_entries"`
}

type ExportMetadata struct {
	TestID           string `json:"test_id"`
	TestVersion      string `json:"test_version"`
	ExportDate       string `json:"export_date"`
	DataCompleteness string `json:"data_completeness"`
}

type ExportConfiguration struct {
	StartDate              string  `json:"start_date"`
	EndDate                *string `json:"end_date"`
	TestDurationDays       int     `json:"test_duration_days"`
	FeedbackSchedule       string  `json:"feedback_schedule"`
	CompletedFeedbackCount int     `json:"completed_feedback_count"`
	TestStatus             string  `json:"test_status"`
}

type ExportProduct struct {
	ProductID         string             `json:"product_id"`
	ProductName       string             `json:"product_name"`
	Manufacturer      ExportManufacturer `json:"manufacturer"`
	Category          string             `json:"category"`
	PrimaryClaim      string             `json:"primary_claim"`
	Ingredients       string             `json:"ingredients"`
	UsageInstructions string             `json:"usage_instructions"`
}

type ExportManufacturer struct {
	Name           string `json:"name"`
	ManufacturerID string `json:"manufacturer_id"`
}

type ExportTester struct {
	TesterID       string               `json:"tester_id"`
	Demographics   ExportDemographics   `json:"demographics"`
	SkinProfile    ExportSkinProfile    `json:"skin_profile"`
	TestingHistory ExportTestingHistory `json:"testing_history"`
}

type ExportDemographics struct {
	Age      int    `json:"age"`
	Gender   string `json:"gender"`
	Location string `json:"location"`
}

type ExportSkinProfile struct {
	SkinType          string `json:"skin_type"`
	PrimaryConcern    string `json:"primary_concern"`
	SecondaryConcerns string `json:"secondary_concerns"`
	Allergies         string `json:"allergies"`
}

type ExportTestingHistory struct {
	ReliabilityScore float64 `json:"reliability_score"`
}

// ExportEntry is one feedback entry. Data is null when the stored blob is
// empty or unreadable.
type ExportEntry struct {
	EntryID    string          `json:"entry_id"`
	DayNumber  int             `json:"day_number"`
	ActualDate time.Time       `json:"actual_date"`
	Data       json.RawMessage `json:"data"`
}

// Completeness is min(100, round(100*entries/durationDays)). A duration of
// zero or less yields 0.
func Completeness(entries, durationDays int) int {
	if durationDays <= 0 {
		return 0
	}
	pct := int(math.Round(100 * float64(entries) / float64(durationDays)))
	if pct > 100 {
		return 100
	}
	return pct
}

// Export builds the document for testID.
func (s *ExportService) Export(ctx context.Context, testID string) (*ExportDocument, error) {
	t, err := s.store.Tests.GetByID(ctx, testID)
	if err != nil {
		return nil, notFound(err, "test %s not found", testID)
	}
	tester, err := s.store.Testers.GetByID(ctx, t.TesterID)
	if err != nil {
		return nil, fmt.Errorf("load tester of test %s: %w", t.ID, err)
	}
	product, err := s.store.Products.GetByID(ctx, t.ProductID)
	if err != nil {
		return nil, fmt.Errorf("load product of test %s: %w", t.ID, err)
	}
	variant, err := s.store.Variants.GetByID(ctx, t.ProductVariantID)
	if err != nil {
		return nil, fmt.Errorf("load batch of test %s: %w", t.ID, err)
	}
	entries, err := s.store.Feedback.ListByTest(ctx, t.ID)
	if err != nil {
		return nil, err
	}

	manufacturer := "Unknown"
	if product.ManufacturerName != nil && *product.ManufacturerName != "" {
		manufacturer = *product.ManufacturerName
	}
	ingredients := feedback.NotAvailable
	if variant.Ingredients != nil && *variant.Ingredients != "" {
		ingredients = *variant.Ingredients
	}
	var endDate *string
	if t.EndDate != nil {
		d := t.EndDate.UTC().Format(exportDateLayout)
		endDate = &d
	}

	doc := &ExportDocument{
		TestMetadata: ExportMetadata{
			TestID:           t.ID,
			TestVersion:      ExportVersion,
			ExportDate:       s.now().UTC().Format(time.RFC3339),
			DataCompleteness: fmt.Sprintf("%d%%", Completeness(len(entries), t.DurationDays)),
		},
		TestConfiguration: ExportConfiguration{
			StartDate:              t.StartDate.UTC().Format(exportDateLayout),
			EndDate:                endDate,
			TestDurationDays:       t.DurationDays,
			FeedbackSchedule:       string(t.FeedbackSchedule),
			CompletedFeedbackCount: len(entries),
			TestStatus:             string(t.Status),
		},
		Product: ExportProduct{
			ProductID:   product.ID,
			ProductName: product.Name,
			Manufacturer: ExportManufacturer{
				Name:           manufacturer,
				ManufacturerID: product.ManufacturerID,
			},
			Category:          product.Category,
			PrimaryClaim:      product.PrimaryClaim,
			Ingredients:       ingredients,
			UsageInstructions: product.UsageInstructions,
		},
		Tester: ExportTester{
			TesterID: tester.ID,
			Demographics: ExportDemographics{
				Age:      tester.Age,
				Gender:   tester.Gender,
				Location: tester.Location,
			},
			SkinProfile: ExportSkinProfile{
				SkinType:          tester.SkinType,
				PrimaryConcern:    tester.PrimaryConcern,
				SecondaryConcerns: tester.SecondaryConcerns,
				Allergies:         tester.Allergies,
			},
			TestingHistory: ExportTestingHistory{ReliabilityScore: tester.ReliabilityScore},
		},
		FeedbackEntries: make([]ExportEntry, 0, len(entries)),
	}

	for _, e := range entries {
		doc.FeedbackEntries = append(doc.FeedbackEntries, ExportEntry{
			EntryID:    e.ID,
			DayNumber:  e.Day,
			ActualDate: e.Date.UTC(),
			Data:       feedback.DecodeRaw(e.Data),
		})
	}
	return doc, nil
}
