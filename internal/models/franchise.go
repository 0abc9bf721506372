// internal/models/franchise.go
package models

import "time"

// Franchise is the root of the hierarchy. Branches are always stored as
// independent records and are never embedded in the franchise.
type Franchise struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func NewFranchise(id, name string, now time.Time) Franchise {
	return Franchise{
		ID:        id,
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Rename returns a copy of f with the new name and a refreshed UpdatedAt.
func (f Franchise) Rename(name string, now time.Time) Franchise {
	f.Name = name
	f.UpdatedAt = now
	return f
}
