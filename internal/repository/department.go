package repository

import (
	"context"
	"time"

	"github.com/deppfellow/catalog-smoke/internal/database"
	"github.com/deppfellow/catalog-smoke/internal/model"
	"github.com/deppfellow/catalog-smoke/internal/sqlerr"
	"github.com/jackc/pgx/v5"
)

const departmentsTable = "departments"

const (
	insertDepartmentSQL = `
INSERT INTO departments (code, name, description)
VALUES ($1, $2, $3)
RETURNING id, code, name, description, created_at, updated_at`

	selectDepartmentSQL = `
SELECT id, code, name, description, created_at, updated_at
FROM departments
WHERE id = $1`

	listDepartmentsWithSubjectsSQL = `
SELECT d.id, d.code, d.name, d.description, d.created_at, d.updated_at,
       s.id, s.department_id, s.code, s.name, s.description, s.created_at, s.updated_at
FROM departments d
LEFT JOIN subjects s ON s.department_id = d.id
ORDER BY d.id, s.id`

	deleteDepartmentSQL = `DELETE FROM departments WHERE id = $1`
)

// DepartmentRepository reads and writes the departments table.
type DepartmentRepository struct {
	db database.DBTX
}

func NewDepartmentRepository(db database.DBTX) *DepartmentRepository {
	return &DepartmentRepository{db: db}
}

// Create inserts a department and returns the stored row, including its
// generated id and timestamps.
func (r *DepartmentRepository) Create(ctx context.Context, payload *model.CreateDepartmentPayload) (*model.Department, error) {
	row := r.db.QueryRow(ctx, insertDepartmentSQL, payload.Code, payload.Name, payload.Description)

	department, err := scanDepartment(row)
	if err != nil {
		return nil, sqlerr.HandleError(sqlerr.WithTable(departmentsTable, err))
	}
	return department, nil
}

// GetByID returns the department with id, or a not-found error.
func (r *DepartmentRepository) GetByID(ctx context.Context, id int64) (*model.Department, error) {
	department, err := scanDepartment(r.db.QueryRow(ctx, selectDepartmentSQL, id))
	if err != nil {
		return nil, sqlerr.HandleError(sqlerr.WithTable(departmentsTable, err))
	}
	return department, nil
}

// ListWithSubjects performs departments LEFT JOIN subjects.
//
// A department with n subjects yields n rows; one without subjects yields
// a single row with a nil Subject.
func (r *DepartmentRepository) ListWithSubjects(ctx context.Context) ([]model.DepartmentWithSubject, error) {
	rows, err := r.db.Query(ctx, listDepartmentsWithSubjectsSQL)
	if err != nil {
		return nil, sqlerr.HandleError(err)
	}
	defer rows.Close()

	result := []model.DepartmentWithSubject{}
	for rows.Next() {
		var (
			d model.Department

			subjectID           *int64
			subjectDepartmentID *int64
			subjectCode         *string
			subjectName         *string
			subjectDescription  *string
			subjectCreatedAt    *time.Time
			subjectUpdatedAt    *time.Time
		)

		err := rows.Scan(
			&d.ID, &d.Code, &d.Name, &d.Description, &d.CreatedAt, &d.UpdatedAt,
			&subjectID, &subjectDepartmentID, &subjectCode, &subjectName,
			&subjectDescription, &subjectCreatedAt, &subjectUpdatedAt,
		)
		if err != nil {
			return nil, sqlerr.HandleError(err)
		}

		item := model.DepartmentWithSubject{Department: d}
		if subjectID != nil {
			item.Subject = &model.Subject{
				ID:           *subjectID,
				DepartmentID: *subjectDepartmentID,
				Code:         *subjectCode,
				Name:         *subjectName,
				Description:  subjectDescription,
				CreatedAt:    *subjectCreatedAt,
				UpdatedAt:    *subjectUpdatedAt,
			}
		}
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, sqlerr.HandleError(err)
	}

	return result, nil
}

// Delete removes the department with id. Deleting a missing id is a
// not-found error; deleting a department that still has subjects fails
// the foreign key.
func (r *DepartmentRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, deleteDepartmentSQL, id)
	if err != nil {
		return sqlerr.HandleError(sqlerr.WithDelete(departmentsTable, err))
	}
	if tag.RowsAffected() == 0 {
		return sqlerr.HandleError(sqlerr.WithTable(departmentsTable, pgx.ErrNoRows))
	}
	return nil
}

func scanDepartment(row pgx.Row) (*model.Department, error) {
	var d model.Department
	if err := row.Scan(&d.ID, &d.Code, &d.Name, &d.Description, &d.CreatedAt, &d.UpdatedAt); err != nil {
		return nil, err
	}
	return &d, nil
}
