// Package valuation derives the monetary estimate of the existing asset on a
// parcel from an existing-value entry's raw fields. All functions are pure and
// total; results are in thousands of currency units (k€).
package valuation

import (
	"github.com/devenirpromoteur/realify-api/internal/models"
)

// ComputeValue returns the appraised existing value of an entry in k€.
// It returns 0 when any required field (surface/count, depreciation
// coefficient, price per unit, condition coefficient) is absent, and never
// divides by zero: a missing or non-positive cap rate falls back to the plain
// /1000 scaling on every branch, including the Other fallback.
func ComputeValue(e models.ExistingValueEntry) float64 {
	if e.SurfaceOrCount == nil || e.DepreciationCoefficient == nil ||
		e.PricePerUnit == nil || e.ConditionCoefficient == nil {
		return 0
	}

	base := *e.SurfaceOrCount * *e.DepreciationCoefficient * *e.PricePerUnit * *e.ConditionCoefficient

	switch e.PropertyType {
	case models.PropertyHousing:
		return base / 1000
	case models.PropertyParking:
		if e.CapRate != nil && *e.CapRate > 0 {
			return base / (*e.CapRate * 1000)
		}
		return base / 1000
	default:
		// Other and any unrecognised type: capitalised when a usable cap rate
		// is present, plain /1000 otherwise.
		if e.CapRate != nil && *e.CapRate > 0 {
			return base / (*e.CapRate * 1000)
		}
		return base / 1000
	}
}

// Derive returns a copy of the entry with ComputedValue refreshed. Called
// after every field edit and after every remote fetch.
func Derive(e models.ExistingValueEntry) models.ExistingValueEntry {
	e.ComputedValue = ComputeValue(e)
	return e
}

// Totals aggregates a list of entries: the sum of computed values, the sum of
// the external reference values where present, and a grand total that prefers
// the reference value per entry when present, else the computed value.
type Totals struct {
	Computed  float64 `json:"computed"`
	Reference float64 `json:"reference"`
	Grand     float64 `json:"grand"`
}

// Aggregate reduces entries into Totals. Entries without a reference value
// are skipped in the reference sum; no other special-casing applies.
func Aggregate(entries []models.ExistingValueEntry) Totals {
	var t Totals
	for _, e := range entries {
		v := ComputeValue(e)
		t.Computed += v
		if e.ExternalReferenceValue != nil {
			t.Reference += *e.ExternalReferenceValue
			t.Grand += *e.ExternalReferenceValue
		} else {
			t.Grand += v
		}
	}
	return t
}
