package models

// PropertyType drives which valuation formula applies to an existing-value
// entry. Unknown values fall back to the Other branch.
type PropertyType string

const (
	PropertyHousing PropertyType = "housing"
	PropertyParking PropertyType = "parking"
	PropertyOther   PropertyType = "other"
)

// Valid reports whether t is one of the recognised property types.
func (t PropertyType) Valid() bool {
	switch t {
	case PropertyHousing, PropertyParking, PropertyOther:
		return true
	}
	return false
}

// ExistingValueEntry is the appraisal of the current asset value on a parcel.
// SurfaceOrCount is m² for housing/other and a space count for parking.
// ComputedValue is derived on every read and edit and is never a source of
// truth; it is not written back to the remote table.
// Nullable fields use pointers to distinguish zero values from NULL.
type ExistingValueEntry struct {
	ID                      string       `json:"id"`
	FicheID                 string       `json:"ficheId"`
	ParcelID                *string      `json:"parcelId,omitempty"`
	Section                 string       `json:"section"`
	PlotNumber              string       `json:"plotNumber"`
	PropertyType            PropertyType `json:"propertyType"`
	SurfaceOrCount          *float64     `json:"surfaceOrCount,omitempty"`
	DepreciationCoefficient *float64     `json:"depreciationCoefficient,omitempty"`
	PricePerUnit            *float64     `json:"pricePerUnit,omitempty"`
	CapRate                 *float64     `json:"capRate,omitempty"`
	ConditionCoefficient    *float64     `json:"conditionCoefficient,omitempty"`
	ExternalReferenceValue  *float64     `json:"externalReferenceValue,omitempty"`
	ComputedValue           float64      `json:"computedValue"`
}

// EntryID implements the synchronized-store entry contract.
func (e ExistingValueEntry) EntryID() string { return e.ID }

// ParcelRefID returns the referenced parcel id, or "" when unassigned.
func (e ExistingValueEntry) ParcelRefID() string {
	if e.ParcelID == nil {
		return ""
	}
	return *e.ParcelID
}
