package repository

import (
	"context"
	"fmt"

	"github.com/devenirpromoteur/realify-api/internal/database"
	"github.com/devenirpromoteur/realify-api/internal/faults"
	"github.com/devenirpromoteur/realify-api/internal/models"
)

// ExistingValueRepository is the remote table collaborator for existing-value
// entries. ComputedValue is intentionally absent from every query: it is
// derived locally and never persisted.
type ExistingValueRepository interface {
	Select(ctx context.Context, ficheID string) ([]models.ExistingValueEntry, error)
	Insert(ctx context.Context, e models.ExistingValueEntry) (models.ExistingValueEntry, error)
	Update(ctx context.Context, e models.ExistingValueEntry) error
	Delete(ctx context.Context, ficheID, id string) error
}

type existingValueRepository struct {
	db *database.Database
}

// NewExistingValueRepository creates a new instance of ExistingValueRepository.
func NewExistingValueRepository(db *database.Database) ExistingValueRepository {
	return &existingValueRepository{
		db: db,
	}
}

func (r *existingValueRepository) Select(ctx context.Context, ficheID string) ([]models.ExistingValueEntry, error) {
	query := `
		SELECT id, fiche_id, parcel_id, section, plot_number, property_type,
		       surface_or_count, depreciation_coefficient, price_per_unit,
		       cap_rate, condition_coefficient, external_reference_value
		FROM existing_values
		WHERE fiche_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.Pool.Query(ctx, query, ficheID)
	if err != nil {
		return nil, faults.FromPostgres(err, "Failed to load existing values")
	}
	defer rows.Close()

	var entries []models.ExistingValueEntry
	for rows.Next() {
		var e models.ExistingValueEntry
		if err := rows.Scan(
			&e.ID,
			&e.FicheID,
			&e.ParcelID,
			&e.Section,
			&e.PlotNumber,
			&e.PropertyType,
			&e.SurfaceOrCount,
			&e.DepreciationCoefficient,
			&e.PricePerUnit,
			&e.CapRate,
			&e.ConditionCoefficient,
			&e.ExternalReferenceValue,
		); err != nil {
			return nil, fmt.Errorf("failed to scan existing-value row: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, faults.FromPostgres(err, "Failed to load existing values")
	}

	if entries == nil {
		entries = []models.ExistingValueEntry{}
	}
	return entries, nil
}

func (r *existingValueRepository) Insert(ctx context.Context, e models.ExistingValueEntry) (models.ExistingValueEntry, error) {
	query := `
		INSERT INTO existing_values (
			fiche_id, parcel_id, section, plot_number, property_type,
			surface_or_count, depreciation_coefficient, price_per_unit,
			cap_rate, condition_coefficient, external_reference_value
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id
	`

	err := r.db.Pool.QueryRow(ctx, query,
		e.FicheID, e.ParcelID, e.Section, e.PlotNumber, e.PropertyType,
		e.SurfaceOrCount, e.DepreciationCoefficient, e.PricePerUnit,
		e.CapRate, e.ConditionCoefficient, e.ExternalReferenceValue,
	).Scan(&e.ID)
	if err != nil {
		return models.ExistingValueEntry{}, faults.FromPostgres(err, "Failed to create existing-value entry")
	}
	return e, nil
}

func (r *existingValueRepository) Update(ctx context.Context, e models.ExistingValueEntry) error {
	query := `
		UPDATE existing_values
		SET parcel_id = $1, section = $2, plot_number = $3, property_type = $4,
		    surface_or_count = $5, depreciation_coefficient = $6,
		    price_per_unit = $7, cap_rate = $8, condition_coefficient = $9,
		    external_reference_value = $10, updated_at = now()
		WHERE id = $11 AND fiche_id = $12
	`

	tag, err := r.db.Pool.Exec(ctx, query,
		e.ParcelID, e.Section, e.PlotNumber, e.PropertyType,
		e.SurfaceOrCount, e.DepreciationCoefficient, e.PricePerUnit,
		e.CapRate, e.ConditionCoefficient, e.ExternalReferenceValue,
		e.ID, e.FicheID,
	)
	if err != nil {
		return faults.FromPostgres(err, "Failed to save existing-value entry")
	}
	if tag.RowsAffected() == 0 {
		return faults.New(faults.KindNotFound, "Existing-value entry not found")
	}
	return nil
}

func (r *existingValueRepository) Delete(ctx context.Context, ficheID, id string) error {
	query := `DELETE FROM existing_values WHERE id = $1 AND fiche_id = $2`

	tag, err := r.db.Pool.Exec(ctx, query, id, ficheID)
	if err != nil {
		return faults.FromPostgres(err, "Failed to delete existing-value entry")
	}
	if tag.RowsAffected() == 0 {
		return faults.New(faults.KindNotFound, "Existing-value entry not found")
	}
	return nil
}
