package repository

import (
	"context"

	"github.com/deppfellow/catalog-smoke/internal/database"
	"github.com/deppfellow/catalog-smoke/internal/model"
	"github.com/deppfellow/catalog-smoke/internal/sqlerr"
	"github.com/jackc/pgx/v5"
)

const subjectsTable = "subjects"

const (
	subjectColumns = `id, department_id, code, name, description, created_at, updated_at`

	insertSubjectSQL = `
INSERT INTO subjects (department_id, code, name, description)
VALUES ($1, $2, $3, $4)
RETURNING ` + subjectColumns

	selectSubjectSQL = `
SELECT ` + subjectColumns + `
FROM subjects
WHERE id = $1`

	updateSubjectNameSQL = `
UPDATE subjects
SET name = $2, updated_at = now()
WHERE id = $1
RETURNING ` + subjectColumns

	deleteSubjectSQL = `DELETE FROM subjects WHERE id = $1`
)

// SubjectRepository reads and writes the subjects table.
type SubjectRepository struct {
	db database.DBTX
}

func NewSubjectRepository(db database.DBTX) *SubjectRepository {
	return &SubjectRepository{db: db}
}

// Create inserts a subject. A department id that does not exist fails the
// store's foreign key and surfaces as an invalid DEPARTMENT_NOT_FOUND error.
func (r *SubjectRepository) Create(ctx context.Context, payload *model.CreateSubjectPayload) (*model.Subject, error) {
	row := r.db.QueryRow(ctx, insertSubjectSQL,
		payload.DepartmentID,
		payload.Code,
		payload.Name,
		payload.Description,
	)

	subject, err := scanSubject(row)
	if err != nil {
		return nil, sqlerr.HandleError(sqlerr.WithTable(subjectsTable, err))
	}
	return subject, nil
}

func (r *SubjectRepository) GetByID(ctx context.Context, id int64) (*model.Subject, error) {
	subject, err := scanSubject(r.db.QueryRow(ctx, selectSubjectSQL, id))
	if err != nil {
		return nil, sqlerr.HandleError(sqlerr.WithTable(subjectsTable, err))
	}
	return subject, nil
}

// UpdateName sets a new name (and bumps updated_at) and returns the row as
// stored. Other columns are left untouched.
func (r *SubjectRepository) UpdateName(ctx context.Context, id int64, name string) (*model.Subject, error) {
	subject, err := scanSubject(r.db.QueryRow(ctx, updateSubjectNameSQL, id, name))
	if err != nil {
		return nil, sqlerr.HandleError(sqlerr.WithTable(subjectsTable, err))
	}
	return subject, nil
}

func (r *SubjectRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, deleteSubjectSQL, id)
	if err != nil {
		return sqlerr.HandleError(sqlerr.WithDelete(subjectsTable, err))
	}
	if tag.RowsAffected() == 0 {
		return sqlerr.HandleError(sqlerr.WithTable(subjectsTable, pgx.ErrNoRows))
	}
	return nil
}

func scanSubject(row pgx.Row) (*model.Subject, error) {
	var s model.Subject
	err := row.Scan(&s.ID, &s.DepartmentID, &s.Code, &s.Name, &s.Description, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}
