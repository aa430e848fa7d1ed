package repository

import (
	"context"
	"fmt"

	"github.com/devenirpromoteur/realify-api/internal/database"
	"github.com/devenirpromoteur/realify-api/internal/faults"
	"github.com/devenirpromoteur/realify-api/internal/models"
)

// FicheRepository defines the data access operations for project dossiers.
type FicheRepository interface {
	// List returns all fiches, most recently updated first.
	List(ctx context.Context) ([]models.Fiche, error)

	// Get returns one fiche by id. A missing row is a NotFound fault.
	Get(ctx context.Context, id string) (models.Fiche, error)

	// Insert creates a fiche and returns it with its server-assigned id and
	// timestamps.
	Insert(ctx context.Context, f models.Fiche) (models.Fiche, error)

	// Update rewrites the editable fields of a fiche.
	Update(ctx context.Context, f models.Fiche) error

	// Delete removes a fiche and, through foreign keys, all its dependent
	// rows.
	Delete(ctx context.Context, id string) error
}

type ficheRepository struct {
	db *database.Database
}

// NewFicheRepository creates a new instance of FicheRepository.
func NewFicheRepository(db *database.Database) FicheRepository {
	return &ficheRepository{
		db: db,
	}
}

func (r *ficheRepository) List(ctx context.Context) ([]models.Fiche, error) {
	query := `
		SELECT id, name, address, cadastral_reference, created_at, updated_at
		FROM fiches
		ORDER BY updated_at DESC
	`

	rows, err := r.db.Pool.Query(ctx, query)
	if err != nil {
		return nil, faults.FromPostgres(err, "Failed to load fiches")
	}
	defer rows.Close()

	var fiches []models.Fiche
	for rows.Next() {
		var f models.Fiche
		if err := rows.Scan(&f.ID, &f.Name, &f.Address, &f.CadastralReference, &f.CreatedAt, &f.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan fiche row: %w", err)
		}
		fiches = append(fiches, f)
	}
	if err := rows.Err(); err != nil {
		return nil, faults.FromPostgres(err, "Failed to load fiches")
	}

	if fiches == nil {
		fiches = []models.Fiche{}
	}
	return fiches, nil
}

func (r *ficheRepository) Get(ctx context.Context, id string) (models.Fiche, error) {
	query := `
		SELECT id, name, address, cadastral_reference, created_at, updated_at
		FROM fiches
		WHERE id = $1
	`

	var f models.Fiche
	err := r.db.Pool.QueryRow(ctx, query, id).Scan(
		&f.ID, &f.Name, &f.Address, &f.CadastralReference, &f.CreatedAt, &f.UpdatedAt,
	)
	if err != nil {
		return models.Fiche{}, faults.FromPostgres(err, "Fiche not found")
	}
	return f, nil
}

func (r *ficheRepository) Insert(ctx context.Context, f models.Fiche) (models.Fiche, error) {
	query := `
		INSERT INTO fiches (name, address, cadastral_reference)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at
	`

	err := r.db.Pool.QueryRow(ctx, query, f.Name, f.Address, f.CadastralReference).
		Scan(&f.ID, &f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		return models.Fiche{}, faults.FromPostgres(err, "Failed to create fiche")
	}
	return f, nil
}

func (r *ficheRepository) Update(ctx context.Context, f models.Fiche) error {
	query := `
		UPDATE fiches
		SET name = $1, address = $2, cadastral_reference = $3, updated_at = now()
		WHERE id = $4
	`

	tag, err := r.db.Pool.Exec(ctx, query, f.Name, f.Address, f.CadastralReference, f.ID)
	if err != nil {
		return faults.FromPostgres(err, "Failed to save fiche")
	}
	if tag.RowsAffected() == 0 {
		return faults.New(faults.KindNotFound, "Fiche not found")
	}
	return nil
}

func (r *ficheRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM fiches WHERE id = $1`

	tag, err := r.db.Pool.Exec(ctx, query, id)
	if err != nil {
		return faults.FromPostgres(err, "Failed to delete fiche")
	}
	if tag.RowsAffected() == 0 {
		return faults.New(faults.KindNotFound, "Fiche not found")
	}
	return nil
}
