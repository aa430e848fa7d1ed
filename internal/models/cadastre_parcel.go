package models

import (
	"time"
)

// CadastreParcel is a legally defined land plot recorded on a fiche.
// (section, plot number) is the human-meaningful key but is not enforced
// unique; the id is the actual foreign-key value referenced by dependent rows.
// Nullable fields use pointers to distinguish zero values from NULL.
type CadastreParcel struct {
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
	ID         string    `json:"id"`
	FicheID    string    `json:"ficheId"`
	Section    string    `json:"section"`
	PlotNumber string    `json:"plotNumber"`
	Address    *string   `json:"address,omitempty"`
	Surface    *float64  `json:"surface,omitempty"`
}

// ParcelRef is the externally-owned view of a parcel that dependent stores
// observe: identity plus the cached display fields dependent rows mirror.
type ParcelRef struct {
	ID         string `json:"id"`
	Section    string `json:"section"`
	PlotNumber string `json:"plotNumber"`
}

// Ref projects a parcel onto the reference shape consumed by dependent stores.
func (p CadastreParcel) Ref() ParcelRef {
	return ParcelRef{ID: p.ID, Section: p.Section, PlotNumber: p.PlotNumber}
}
