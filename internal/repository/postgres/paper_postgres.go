package postgres

import (
	"context"
	"database/sql"
	"errors"

	"paperapi/internal/model"
	"paperapi/internal/repository"
)

// PaperPostgres is a PostgreSQL implementation of repository.PaperRepository.
// It uses database/sql with parameterized queries and contains no business logic.
type PaperPostgres struct {
	db *sql.DB
}

// NewPaperPostgres creates a new PaperPostgres repository.
func NewPaperPostgres(db *sql.DB) *PaperPostgres {
	return &PaperPostgres{db: db}
}

var _ repository.PaperRepository = (*PaperPostgres)(nil)

// IsNoRowsError reports whether err means the queried row does not exist.
func IsNoRowsError(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

// Create inserts a new paper row and returns the stored record.
func (r *PaperPostgres) Create(ctx context.Context, p *model.Paper) (*model.Paper, error) {
	const q = `
		INSERT INTO papers (id, title, course, year, file_path, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, title, course, year, file_path, created_at
	`
	row := r.db.QueryRowContext(ctx, q,
		p.ID,
		p.Title,
		p.Course,
		p.Year,
		p.FilePath,
		p.CreatedAt,
	)
	var out model.Paper
	if err := row.Scan(
		&out.ID,
		&out.Title,
		&out.Course,
		&out.Year,
		&out.FilePath,
		&out.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &out, nil
}

// FindByID fetches a single paper by its ID.
func (r *PaperPostgres) FindByID(ctx context.Context, id string) (*model.Paper, error) {
	const q = `
		SELECT id, title, course, year, file_path, created_at
		FROM papers
		WHERE id = $1
	`
	row := r.db.QueryRowContext(ctx, q, id)
	var p model.Paper
	if err := row.Scan(
		&p.ID,
		&p.Title,
		&p.Course,
		&p.Year,
		&p.FilePath,
		&p.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &p, nil
}

// List returns every paper, newest exam year first.
func (r *PaperPostgres) List(ctx context.Context) ([]model.Paper, error) {
	const q = `
		SELECT id, title, course, year, file_path, created_at
		FROM papers
		ORDER BY year DESC, created_at DESC
	`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	papers := make([]model.Paper, 0)
	for rows.Next() {
		var p model.Paper
		if err := rows.Scan(
			&p.ID,
			&p.Title,
			&p.Course,
			&p.Year,
			&p.FilePath,
			&p.CreatedAt,
		); err != nil {
			return nil, err
		}
		papers = append(papers, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return papers, nil
}

// DeleteAll clears the papers table.
func (r *PaperPostgres) DeleteAll(ctx context.Context) error {
	const q = `DELETE FROM papers`
	_, err := r.db.ExecContext(ctx, q)
	return err
}
