package models

// OccupationType describes what currently occupies a parcel.
type OccupationType string

const (
	OccupationBareLand    OccupationType = "bare_land"
	OccupationCommercial  OccupationType = "commercial"
	OccupationResidential OccupationType = "residential"
	OccupationOffice      OccupationType = "office"
	OccupationWarehouse   OccupationType = "warehouse"
	OccupationIndustrial  OccupationType = "industrial"
	OccupationOther       OccupationType = "other"
)

// Valid reports whether t is one of the recognised occupation types.
func (t OccupationType) Valid() bool {
	switch t {
	case OccupationBareLand, OccupationCommercial, OccupationResidential,
		OccupationOffice, OccupationWarehouse, OccupationIndustrial, OccupationOther:
		return true
	}
	return false
}

// OwnerStatus is the legal form of the parcel owner.
type OwnerStatus string

const (
	OwnerLegalEntity    OwnerStatus = "legal_entity"
	OwnerNaturalPerson  OwnerStatus = "natural_person"
	OwnerJointOwnership OwnerStatus = "joint_ownership"
	OwnerSCI            OwnerStatus = "sci"
	OwnerCoOwnership    OwnerStatus = "co_ownership"
	OwnerOther          OwnerStatus = "other"
)

// Valid reports whether s is one of the recognised owner statuses.
func (s OwnerStatus) Valid() bool {
	switch s {
	case OwnerLegalEntity, OwnerNaturalPerson, OwnerJointOwnership,
		OwnerSCI, OwnerCoOwnership, OwnerOther:
		return true
	}
	return false
}

// ResidentStatus describes who lives on the parcel today.
type ResidentStatus string

const (
	ResidentTenants        ResidentStatus = "tenants"
	ResidentOwnerOccupiers ResidentStatus = "owner_occupiers"
	ResidentVacant         ResidentStatus = "vacant"
	ResidentOther          ResidentStatus = "other"
)

// Valid reports whether s is one of the recognised resident statuses.
func (s ResidentStatus) Valid() bool {
	switch s {
	case ResidentTenants, ResidentOwnerOccupiers, ResidentVacant, ResidentOther:
		return true
	}
	return false
}

// LandRecapEntry is the occupancy/ownership record for a parcel. At most one
// entry may hold a given non-nil ParcelID within the same fiche; the remote
// table enforces this with a partial unique index and the store pre-checks it
// locally so most duplicates never reach the wire.
type LandRecapEntry struct {
	ID             string         `json:"id"`
	FicheID        string         `json:"ficheId"`
	ParcelID       *string        `json:"parcelId,omitempty"`
	Section        string         `json:"section"`
	PlotNumber     string         `json:"plotNumber"`
	OccupationType OccupationType `json:"occupationType"`
	OwnerStatus    OwnerStatus    `json:"ownerStatus"`
	OwnerName      string         `json:"ownerName"`
	Notes          string         `json:"notes"`
	ResidentStatus ResidentStatus `json:"residentStatus"`
}

// EntryID implements the synchronized-store entry contract.
func (e LandRecapEntry) EntryID() string { return e.ID }

// ParcelRefID returns the referenced parcel id, or "" when unassigned.
func (e LandRecapEntry) ParcelRefID() string {
	if e.ParcelID == nil {
		return ""
	}
	return *e.ParcelID
}
