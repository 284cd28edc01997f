package models

// ManufacturerStatus enumerates manufacturer states.
type ManufacturerStatus string

const (
	ManufacturerActive   ManufacturerStatus = "ACTIVE"
	ManufacturerArchived ManufacturerStatus = "ARCHIVED"
)

// Valid reports whether s is a known manufacturer status.
func (s ManufacturerStatus) Valid() bool {
	return s == ManufacturerActive || s == ManufacturerArchived
}

// ProductStatus enumerates product states.
type ProductStatus string

const (
	ProductAvailable    ProductStatus = "AVAILABLE"
	ProductTesting      ProductStatus = "TESTING"
	ProductOutOfStock   ProductStatus = "OUT_OF_STOCK"
	ProductDiscontinued ProductStatus = "DISCONTINUED"
	ProductArchived     ProductStatus = "ARCHIVED"
)

// Valid reports whether s is a known product status.
func (s ProductStatus) Valid() bool {
	switch s {
	case ProductAvailable, ProductTesting, ProductOutOfStock, ProductDiscontinued, ProductArchived:
		return true
	}
	return false
}

// Assignable reports whether a batch of a product in this state may be
// handed to a tester.
func (s ProductStatus) Assignable() bool {
	return s != ProductArchived && s != ProductDiscontinued
}

// TesterStatus enumerates tester states.
type TesterStatus string

const (
	TesterAvailable   TesterStatus = "AVAILABLE"
	TesterTesting     TesterStatus = "TESTING"
	TesterUnavailable TesterStatus = "UNAVAILABLE"
	TesterArchived    TesterStatus = "ARCHIVED"
)

// Valid reports whether s is a known tester status.
func (s TesterStatus) Valid() bool {
	switch s {
	case TesterAvailable, TesterTesting, TesterUnavailable, TesterArchived:
		return true
	}
	return false
}

// TestStatus enumerates test states. ACTIVE is the only non-terminal state.
type TestStatus string

const (
	TestActive       TestStatus = "ACTIVE"
	TestDiscontinued TestStatus = "DISCONTINUED"
	TestCompleted    TestStatus = "COMPLETED"
)

// Valid reports whether s is a known test status.
func (s TestStatus) Valid() bool {
	return s == TestActive || s == TestDiscontinued || s == TestCompleted
}

// FeedbackSchedule is how often a tester is expected to report.
type FeedbackSchedule string

const (
	ScheduleDaily      FeedbackSchedule = "daily"
	ScheduleEvery2Days FeedbackSchedule = "every_2_days"
	ScheduleWeekly     FeedbackSchedule = "weekly"
	ScheduleMilestone  FeedbackSchedule = "milestone"
)

// Valid reports whether s is a known schedule.
func (s FeedbackSchedule) Valid() bool {
	switch s {
	case ScheduleDaily, ScheduleEvery2Days, ScheduleWeekly, ScheduleMilestone:
		return true
	}
	return false
}
