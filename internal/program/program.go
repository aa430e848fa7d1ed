// Package program derives floor areas (SDP), livable areas (SHAB), unit
// counts and parking counts from a project's building configuration. All
// functions are pure; intermediate values stay floating point and only the
// unit and parking count steps consume rounded integers.
package program

import (
	"math"

	"github.com/devenirpromoteur/realify-api/internal/models"
)

// ComputeFloorArea returns the gross developable floor area (SDP) of one
// building: footprint across all levels plus the attic allowance, scaled by
// the floor-area coefficient.
func ComputeFloorArea(footprint float64, levels int, atticCoefficient, floorAreaCoefficient float64) float64 {
	return (footprint*float64(levels) + footprint*atticCoefficient) * floorAreaCoefficient
}

// Derive returns a copy of the entry with FloorArea and SocialFloorArea
// refreshed from its input fields.
func Derive(e models.BuildingProgramEntry) models.BuildingProgramEntry {
	e.FloorArea = ComputeFloorArea(e.Footprint, e.Levels, e.AtticCoefficient, e.FloorAreaCoefficient)
	e.SocialFloorArea = e.FloorArea * e.SocialHousingPercentage / 100
	return e
}

// TenureSummary holds the per-tenure aggregation results.
type TenureSummary struct {
	FloorArea      float64 `json:"floorArea"`
	LivableArea    float64 `json:"livableArea"`
	Units          int     `json:"units"`
	ParkingIndoor  int     `json:"parkingIndoor"`
	ParkingOutdoor int     `json:"parkingOutdoor"`
}

// Summary is the project-level aggregation across all buildings.
type Summary struct {
	Entries        []models.BuildingProgramEntry `json:"entries"`
	TotalFloorArea float64                       `json:"totalFloorArea"`
	Market         TenureSummary                 `json:"market"`
	Social         TenureSummary                 `json:"social"`
}

// Summarize recomputes every entry's derived areas and aggregates them into
// market and social tenure summaries using the project configuration.
func Summarize(entries []models.BuildingProgramEntry, cfg models.ProgramConfig) Summary {
	derived := make([]models.BuildingProgramEntry, len(entries))

	var totalFloor, totalSocial float64
	for i, e := range entries {
		derived[i] = Derive(e)
		totalFloor += derived[i].FloorArea
		totalSocial += derived[i].SocialFloorArea
	}
	marketFloor := totalFloor - totalSocial

	market := TenureSummary{
		FloorArea:   marketFloor,
		LivableArea: marketFloor * cfg.ShabCoefficientMarket,
	}
	social := TenureSummary{
		FloorArea:   totalSocial,
		LivableArea: totalSocial * cfg.ShabCoefficientSocial,
	}

	market.Units = unitCount(market.LivableArea, cfg.AvgUnitSurfaceMarket)
	social.Units = unitCount(social.LivableArea, cfg.AvgUnitSurfaceSocial)

	// Parking counts consume the rounded unit counts, not the real quotient.
	market.ParkingIndoor = roundHalfUp(float64(market.Units) * cfg.ParkingIndoorRatioMarket)
	market.ParkingOutdoor = roundHalfUp(float64(market.Units) * cfg.ParkingOutdoorRatioMarket)
	social.ParkingIndoor = roundHalfUp(float64(social.Units) * cfg.ParkingIndoorRatioSocial)
	social.ParkingOutdoor = roundHalfUp(float64(social.Units) * cfg.ParkingOutdoorRatioSocial)

	return Summary{
		Entries:        derived,
		TotalFloorArea: totalFloor,
		Market:         market,
		Social:         social,
	}
}

// unitCount divides a livable area by an average unit surface, guarding the
// zero-surface case.
func unitCount(livableArea, avgUnitSurface float64) int {
	if avgUnitSurface <= 0 {
		return 0
	}
	return roundHalfUp(livableArea / avgUnitSurface)
}

// roundHalfUp rounds to the nearest integer with halves going up.
func roundHalfUp(v float64) int {
	return int(math.Floor(v + 0.5))
}
