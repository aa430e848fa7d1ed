package repository

import (
	"context"
	"fmt"

	"github.com/devenirpromoteur/realify-api/internal/database"
	"github.com/devenirpromoteur/realify-api/internal/faults"
	"github.com/devenirpromoteur/realify-api/internal/models"
)

// LandRecapRepository is the remote table collaborator for land-recap
// entries. The table carries a partial unique index on (fiche_id, parcel_id)
// where parcel_id is not null; violations come back as Conflict faults.
type LandRecapRepository interface {
	Select(ctx context.Context, ficheID string) ([]models.LandRecapEntry, error)
	Insert(ctx context.Context, e models.LandRecapEntry) (models.LandRecapEntry, error)
	Update(ctx context.Context, e models.LandRecapEntry) error
	Delete(ctx context.Context, ficheID, id string) error
}

type landRecapRepository struct {
	db *database.Database
}

// NewLandRecapRepository creates a new instance of LandRecapRepository.
func NewLandRecapRepository(db *database.Database) LandRecapRepository {
	return &landRecapRepository{
		db: db,
	}
}

func (r *landRecapRepository) Select(ctx context.Context, ficheID string) ([]models.LandRecapEntry, error) {
	query := `
		SELECT id, fiche_id, parcel_id, section, plot_number, occupation_type,
		       owner_status, owner_name, notes, resident_status
		FROM land_recaps
		WHERE fiche_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.Pool.Query(ctx, query, ficheID)
	if err != nil {
		return nil, faults.FromPostgres(err, "Failed to load land recaps")
	}
	defer rows.Close()

	var entries []models.LandRecapEntry
	for rows.Next() {
		var e models.LandRecapEntry
		if err := rows.Scan(
			&e.ID,
			&e.FicheID,
			&e.ParcelID,
			&e.Section,
			&e.PlotNumber,
			&e.OccupationType,
			&e.OwnerStatus,
			&e.OwnerName,
			&e.Notes,
			&e.ResidentStatus,
		); err != nil {
			return nil, fmt.Errorf("failed to scan land-recap row: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, faults.FromPostgres(err, "Failed to load land recaps")
	}

	if entries == nil {
		entries = []models.LandRecapEntry{}
	}
	return entries, nil
}

func (r *landRecapRepository) Insert(ctx context.Context, e models.LandRecapEntry) (models.LandRecapEntry, error) {
	query := `
		INSERT INTO land_recaps (
			fiche_id, parcel_id, section, plot_number, occupation_type,
			owner_status, owner_name, notes, resident_status
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`

	err := r.db.Pool.QueryRow(ctx, query,
		e.FicheID, e.ParcelID, e.Section, e.PlotNumber, e.OccupationType,
		e.OwnerStatus, e.OwnerName, e.Notes, e.ResidentStatus,
	).Scan(&e.ID)
	if err != nil {
		return models.LandRecapEntry{}, faults.FromPostgres(err, "Failed to create land-recap entry")
	}
	return e, nil
}

func (r *landRecapRepository) Update(ctx context.Context, e models.LandRecapEntry) error {
	query := `
		UPDATE land_recaps
		SET parcel_id = $1, section = $2, plot_number = $3, occupation_type = $4,
		    owner_status = $5, owner_name = $6, notes = $7, resident_status = $8,
		    updated_at = now()
		WHERE id = $9 AND fiche_id = $10
	`

	tag, err := r.db.Pool.Exec(ctx, query,
		e.ParcelID, e.Section, e.PlotNumber, e.OccupationType,
		e.OwnerStatus, e.OwnerName, e.Notes, e.ResidentStatus,
		e.ID, e.FicheID,
	)
	if err != nil {
		return faults.FromPostgres(err, "Failed to save land-recap entry")
	}
	if tag.RowsAffected() == 0 {
		return faults.New(faults.KindNotFound, "Land-recap entry not found")
	}
	return nil
}

func (r *landRecapRepository) Delete(ctx context.Context, ficheID, id string) error {
	query := `DELETE FROM land_recaps WHERE id = $1 AND fiche_id = $2`

	tag, err := r.db.Pool.Exec(ctx, query, id, ficheID)
	if err != nil {
		return faults.FromPostgres(err, "Failed to delete land-recap entry")
	}
	if tag.RowsAffected() == 0 {
		return faults.New(faults.KindNotFound, "Land-recap entry not found")
	}
	return nil
}
