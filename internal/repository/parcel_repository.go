package repository

import (
	"context"
	"fmt"

	"github.com/devenirpromoteur/realify-api/internal/database"
	"github.com/devenirpromoteur/realify-api/internal/faults"
	"github.com/devenirpromoteur/realify-api/internal/models"
)

// ParcelRepository defines the data access operations for cadastre parcels.
// All errors are classified into the fault taxonomy before they leave this
// layer.
type ParcelRepository interface {
	// ListByFiche returns all parcels of a fiche, oldest first.
	// Returns an empty slice if none exist (not an error).
	ListByFiche(ctx context.Context, ficheID string) ([]models.CadastreParcel, error)

	// Insert creates a parcel and returns it with its server-assigned id and
	// timestamps.
	Insert(ctx context.Context, p models.CadastreParcel) (models.CadastreParcel, error)

	// Update rewrites the editable fields of a parcel, scoped by id and fiche.
	Update(ctx context.Context, p models.CadastreParcel) error

	// Delete removes a parcel scoped by id and fiche. A missing row is a
	// NotFound fault.
	Delete(ctx context.Context, ficheID, id string) error
}

type parcelRepository struct {
	db *database.Database
}

// NewParcelRepository creates a new instance of ParcelRepository.
func NewParcelRepository(db *database.Database) ParcelRepository {
	return &parcelRepository{
		db: db,
	}
}

func (r *parcelRepository) ListByFiche(ctx context.Context, ficheID string) ([]models.CadastreParcel, error) {
	query := `
		SELECT id, fiche_id, section, plot_number, address, surface, created_at, updated_at
		FROM cadastre_parcels
		WHERE fiche_id = $1
		ORDER BY created_at
	`

	rows, err := r.db.Pool.Query(ctx, query, ficheID)
	if err != nil {
		return nil, faults.FromPostgres(err, "Failed to load cadastre parcels")
	}
	defer rows.Close()

	var parcels []models.CadastreParcel
	for rows.Next() {
		var p models.CadastreParcel
		if err := rows.Scan(
			&p.ID,
			&p.FicheID,
			&p.Section,
			&p.PlotNumber,
			&p.Address,
			&p.Surface,
			&p.CreatedAt,
			&p.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan parcel row: %w", err)
		}
		parcels = append(parcels, p)
	}
	if err := rows.Err(); err != nil {
		return nil, faults.FromPostgres(err, "Failed to load cadastre parcels")
	}

	if parcels == nil {
		parcels = []models.CadastreParcel{}
	}
	return parcels, nil
}

func (r *parcelRepository) Insert(ctx context.Context, p models.CadastreParcel) (models.CadastreParcel, error) {
	query := `
		INSERT INTO cadastre_parcels (fiche_id, section, plot_number, address, surface)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`

	err := r.db.Pool.QueryRow(ctx, query,
		p.FicheID, p.Section, p.PlotNumber, p.Address, p.Surface,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return models.CadastreParcel{}, faults.FromPostgres(err, "Failed to create cadastre parcel")
	}

	return p, nil
}

func (r *parcelRepository) Update(ctx context.Context, p models.CadastreParcel) error {
	query := `
		UPDATE cadastre_parcels
		SET section = $1, plot_number = $2, address = $3, surface = $4, updated_at = now()
		WHERE id = $5 AND fiche_id = $6
	`

	tag, err := r.db.Pool.Exec(ctx, query,
		p.Section, p.PlotNumber, p.Address, p.Surface, p.ID, p.FicheID,
	)
	if err != nil {
		return faults.FromPostgres(err, "Failed to save cadastre parcel")
	}
	if tag.RowsAffected() == 0 {
		return faults.New(faults.KindNotFound, "Cadastre parcel not found")
	}
	return nil
}

func (r *parcelRepository) Delete(ctx context.Context, ficheID, id string) error {
	query := `DELETE FROM cadastre_parcels WHERE id = $1 AND fiche_id = $2`

	tag, err := r.db.Pool.Exec(ctx, query, id, ficheID)
	if err != nil {
		return faults.FromPostgres(err, "Failed to delete cadastre parcel")
	}
	if tag.RowsAffected() == 0 {
		return faults.New(faults.KindNotFound, "Cadastre parcel not found")
	}
	return nil
}
