package repository

import (
	"context"

	"paperapi/internal/model"
)

// PaperRepository defines data access for paper records. Implementations
// hold no business logic, strictly persistence operations.
type PaperRepository interface {
	// Create inserts a new paper record.
	// The caller provides required fields (ID, CreatedAt); the database may
	// fill defaults. Returns the stored paper.
	Create(ctx context.Context, p *model.Paper) (*model.Paper, error)

	// FindByID returns a paper by its ID.
	FindByID(ctx context.Context, id string) (*model.Paper, error)

	// List returns every paper ordered by year descending
	// (creation time descending as a tiebreak).
	List(ctx context.Context) ([]model.Paper, error)

	// DeleteAll removes every paper record. Used by the offline seeding
	// routine only; not exposed over HTTP.
	DeleteAll(ctx context.Context) error
}
