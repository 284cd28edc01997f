package models

import "time"

// Test is one assignment of a tester to a product batch.
type Test struct {
	ID                 string           `db:"id" json:"id"`
	TesterID           string           `db:"tester_id" json:"testerId"`
	ProductID          string           `db:"product_id" json:"productId"`
	ProductVariantID   string           `db:"product_variant_id" json:"productVariantId"`
	ProductSize        *string          `db:"product_size" json:"productSize"`
	DurationDays       int              `db:"duration_days" json:"durationDays"`
	FeedbackSchedule   FeedbackSchedule `db:"feedback_schedule" json:"feedbackSchedule"`
	StartDate          time.Time        `db:"start_date" json:"startDate"`
	EndDate            *time.Time       `db:"end_date" json:"endDate"`
	Status             TestStatus       `db:"status" json:"status"`
	DiscontinuedReason *string          `db:"discontinued_reason" json:"discontinuedReason,omitempty"`
	CreatedAt          time.Time        `db:"created_at" json:"createdAt"`
	UpdatedAt          time.Time        `db:"updated_at" json:"updatedAt"`

	// Joined display fields
	TesterName    *string `db:"tester_name" json:"testerName,omitempty"`
	ProductName   *string `db:"product_name" json:"productName,omitempty"`
	BatchNumber   *string `db:"batch_number" json:"batchNumber,omitempty"`
	FeedbackCount int     `db:"feedback_count" json:"feedbackCount"`
}

// ExpiresAt is the moment the planned duration elapses.
func (t *Test) ExpiresAt() time.Time {
	return t.StartDate.AddDate(0, 0, t.DurationDays)
}

// BaselineAssessment is created together with its test.
type BaselineAssessment struct {
	ID             string    `db:"id" json:"id"`
	TestID         string    `db:"test_id" json:"testId"`
	TesterSnapshot string    `db:"tester_snapshot" json:"testerSnapshot"`
	Metrics        string    `db:"metrics" json:"metrics"`
	CreatedAt      time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt      time.Time `db:"updated_at" json:"updatedAt"`
}

// TesterSnapshot is the part of a tester profile frozen into a baseline.
type TesterSnapshot struct {
	SkinType       string `json:"skinType"`
	PrimaryConcern string `json:"primaryConcern"`
	Age            int    `json:"age"`
	Location       string `json:"location"`
}

// FeedbackEntry is one dated questionnaire response. Data and Photos hold
// JSON blobs owned by the feedback codec.
type FeedbackEntry struct {
	ID          string    `db:"id" json:"id"`
	TestID      string    `db:"test_id" json:"testId"`
	Day         int       `db:"day" json:"day"`
	Date        time.Time `db:"entry_date" json:"date"`
	IsCompleted bool      `db:"is_completed" json:"isCompleted"`
	Data        string    `db:"data" json:"-"`
	Photos      *string   `db:"photos" json:"-"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time `db:"updated_at" json:"updatedAt"`
}
