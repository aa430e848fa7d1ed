package models

// Allowed attic coefficients for a building entry.
const (
	AtticNone    = 0.0
	AtticPartial = 0.45
	AtticFull    = 0.85
)

// ValidAtticCoefficient reports whether c is one of the allowed attic values.
func ValidAtticCoefficient(c float64) bool {
	return c == AtticNone || c == AtticPartial || c == AtticFull
}

// BuildingProgramEntry is one building of a project configuration. Entries
// live only in the client-submitted program; they have no remote persistence,
// so ids are generated locally. FloorArea (SDP) and SocialFloorArea are
// derived and never user-edited.
type BuildingProgramEntry struct {
	ID                      string  `json:"id"`
	Name                    string  `json:"name"`
	Footprint               float64 `json:"footprint"`
	Levels                  int     `json:"levels"`
	AtticCoefficient        float64 `json:"atticCoefficient"`
	FloorAreaCoefficient    float64 `json:"floorAreaCoefficient"`
	SocialHousingPercentage float64 `json:"socialHousingPercentage"`
	FloorArea               float64 `json:"floorArea"`
	SocialFloorArea         float64 `json:"socialFloorArea"`
}

// ProgramConfig carries the tenure-level aggregation inputs: SHAB
// coefficients, average unit surfaces and parking ratios, split between the
// market and social tenures.
type ProgramConfig struct {
	ShabCoefficientMarket     float64 `json:"shabCoefficientMarket"`
	ShabCoefficientSocial     float64 `json:"shabCoefficientSocial"`
	AvgUnitSurfaceMarket      float64 `json:"avgUnitSurfaceMarket"`
	AvgUnitSurfaceSocial      float64 `json:"avgUnitSurfaceSocial"`
	ParkingIndoorRatioMarket  float64 `json:"parkingIndoorRatioMarket"`
	ParkingOutdoorRatioMarket float64 `json:"parkingOutdoorRatioMarket"`
	ParkingIndoorRatioSocial  float64 `json:"parkingIndoorRatioSocial"`
	ParkingOutdoorRatioSocial float64 `json:"parkingOutdoorRatioSocial"`
}
