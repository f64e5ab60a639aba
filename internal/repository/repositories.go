package repository

import (
	"github.com/deppfellow/catalog-smoke/internal/database"
)

// Repositories is a container for all repository instances.
type Repositories struct {
	Departments *DepartmentRepository
	Subjects    *SubjectRepository
}

// NewRepositories constructs the repository container over db, which is
// normally the application's *pgxpool.Pool.
func NewRepositories(db database.DBTX) *Repositories {
	return &Repositories{
		Departments: NewDepartmentRepository(db),
		Subjects:    NewSubjectRepository(db),
	}
}
