package models

import "time"

// DefaultReliabilityScore is assigned to newly enrolled testers.
const DefaultReliabilityScore = 100.0

// Tester is a panelist enrolled to trial products.
type Tester struct {
	ID                string       `db:"id" json:"id"`
	FirstName         string       `db:"first_name" json:"firstName"`
	LastName          string       `db:"last_name" json:"lastName"`
	Email             string       `db:"email" json:"email"`
	Phone             string       `db:"phone" json:"phone"`
	Age               int          `db:"age" json:"age"`
	Gender            string       `db:"gender" json:"gender"`
	Location          string       `db:"location" json:"location"`
	SkinType          string       `db:"skin_type" json:"skinType"`
	PrimaryConcern    string       `db:"primary_concern" json:"primaryConcern"`
	SecondaryConcerns string       `db:"secondary_concerns" json:"secondaryConcerns"`
	Allergies         string       `db:"allergies" json:"allergies"`
	ReliabilityScore  float64      `db:"reliability_score" json:"reliabilityScore"`
	Status            TesterStatus `db:"status" json:"status"`
	CreatedAt         time.Time    `db:"created_at" json:"createdAt"`
	UpdatedAt         time.Time    `db:"updated_at" json:"updatedAt"`

	TestCount int `db:"test_count" json:"testCount"`
}

// FullName returns "First Last" without stray whitespace.
func (t *Tester) FullName() string {
	if t.LastName == "" {
		return t.FirstName
	}
	return t.FirstName + " " + t.LastName
}
