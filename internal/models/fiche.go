package models

import (
	"time"
)

// Fiche is a single project dossier. Every project-scoped row (parcels,
// existing values, land recaps) carries its id as a foreign key.
type Fiche struct {
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
	ID                 string    `json:"id"`
	Name               string    `json:"name"`
	Address            *string   `json:"address,omitempty"`
	CadastralReference *string   `json:"cadastralReference,omitempty"`
}
