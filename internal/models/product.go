package models

import "time"

// Manufacturer owns zero or more products.
type Manufacturer struct {
	ID          string             `db:"id" json:"id"`
	Name        string             `db:"name" json:"name"`
	Website     *string            `db:"website" json:"website"`
	ContactName *string            `db:"contact_name" json:"contactName"`
	Email       *string            `db:"email" json:"email"`
	Notes       *string            `db:"notes" json:"notes"`
	Status      ManufacturerStatus `db:"status" json:"status"`
	CreatedAt   time.Time          `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time          `db:"updated_at" json:"updatedAt"`

	// Calculated via subquery
	ProductCount int `db:"product_count" json:"productCount"`
}

// Product represents a product definition in the catalog.
// Fields are tagged for both DB scanning and JSON serialization.
type Product struct {
	ID                string        `db:"id" json:"id"`
	ManufacturerID    string        `db:"manufacturer_id" json:"manufacturerId"`
	Name              string        `db:"name" json:"name"`
	Category          string        `db:"category" json:"category"`
	PrimaryClaim      string        `db:"primary_claim" json:"primaryClaim"`
	SecondaryClaims   string        `db:"secondary_claims" json:"secondaryClaims"`
	UsageInstructions string        `db:"usage_instructions" json:"usageInstructions"`
	Volume            string        `db:"volume" json:"volume"`
	Status            ProductStatus `db:"status" json:"status"`
	CreatedAt         time.Time     `db:"created_at" json:"createdAt"`
	UpdatedAt         time.Time     `db:"updated_at" json:"updatedAt"`

	// Calculated fields (populated via join/subquery)
	ManufacturerName *string `db:"manufacturer_name" json:"manufacturerName,omitempty"`
	VariantCount     int     `db:"variant_count" json:"variantCount"`
	TestCount        int     `db:"test_count" json:"testCount"`
}

// ProductVariant is a manufacturing batch of a product.
type ProductVariant struct {
	ID                string     `db:"id" json:"id"`
	ProductID         string     `db:"product_id" json:"productId"`
	BatchNumber       string     `db:"batch_number" json:"batchNumber"`
	SKU               *string    `db:"sku" json:"sku"`
	FormulaVersion    *string    `db:"formula_version" json:"formulaVersion"`
	Ingredients       *string    `db:"ingredients" json:"ingredients"`
	Notes             *string    `db:"notes" json:"notes"`
	ManufacturingDate *time.Time `db:"manufacturing_date" json:"manufacturingDate"`
	CreatedAt         time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt         time.Time  `db:"updated_at" json:"updatedAt"`

	TestCount int `db:"test_count" json:"testCount"`
}
