package service

import (
	"context"

	"github.com/deppfellow/catalog-smoke/internal/model"
	"github.com/deppfellow/catalog-smoke/internal/validation"
	"github.com/rs/zerolog"
)

// DepartmentStore is the department persistence the catalog needs.
// *repository.DepartmentRepository implements it.
type DepartmentStore interface {
	Create(ctx context.Context, payload *model.CreateDepartmentPayload) (*model.Department, error)
	GetByID(ctx context.Context, id int64) (*model.Department, error)
	ListWithSubjects(ctx context.Context) ([]model.DepartmentWithSubject, error)
	Delete(ctx context.Context, id int64) error
}

// SubjectStore is the subject persistence the catalog needs.
// *repository.SubjectRepository implements it.
type SubjectStore interface {
	Create(ctx context.Context, payload *model.CreateSubjectPayload) (*model.Subject, error)
	GetByID(ctx context.Context, id int64) (*model.Subject, error)
	UpdateName(ctx context.Context, id int64, name string) (*model.Subject, error)
	Delete(ctx context.Context, id int64) error
}

// CatalogService performs the department/subject operations.
//
// Each method is a single round trip to the store. Nothing here spans
// several calls in a transaction.
type CatalogService struct {
	logger      *zerolog.Logger
	departments DepartmentStore
	subjects    SubjectStore
}

func NewCatalogService(logger *zerolog.Logger, departments DepartmentStore, subjects SubjectStore) *CatalogService {
	return &CatalogService{
		logger:      logger,
		departments: departments,
		subjects:    subjects,
	}
}

func (s *CatalogService) CreateDepartment(ctx context.Context, payload *model.CreateDepartmentPayload) (*model.Department, error) {
	if err := validation.Validate(payload); err != nil {
		return nil, err
	}

	department, err := s.departments.Create(ctx, payload)
	if err != nil {
		return nil, err
	}

	s.logger.Debug().
		Int64("department_id", department.ID).
		Str("code", department.Code).
		Msg("department created")
	return department, nil
}

func (s *CatalogService) GetDepartment(ctx context.Context, id int64) (*model.Department, error) {
	return s.departments.GetByID(ctx, id)
}

// CreateSubject inserts a subject under an existing department. The
// department reference is checked by the store, not here.
func (s *CatalogService) CreateSubject(ctx context.Context, payload *model.CreateSubjectPayload) (*model.Subject, error) {
	if err := validation.Validate(payload); err != nil {
		return nil, err
	}

	subject, err := s.subjects.Create(ctx, payload)
	if err != nil {
		return nil, err
	}

	s.logger.Debug().
		Int64("subject_id", subject.ID).
		Int64("department_id", subject.DepartmentID).
		Str("code", subject.Code).
		Msg("subject created")
	return subject, nil
}

func (s *CatalogService) GetSubject(ctx context.Context, id int64) (*model.Subject, error) {
	return s.subjects.GetByID(ctx, id)
}

// ListDepartmentsWithSubjects returns the departments LEFT JOIN subjects read.
func (s *CatalogService) ListDepartmentsWithSubjects(ctx context.Context) ([]model.DepartmentWithSubject, error) {
	rows, err := s.departments.ListWithSubjects(ctx)
	if err != nil {
		return nil, err
	}

	s.logger.Debug().Int("rows", len(rows)).Msg("departments with subjects read")
	return rows, nil
}

// RenameSubject changes only the subject's name.
func (s *CatalogService) RenameSubject(ctx context.Context, payload *model.RenameSubjectPayload) (*model.Subject, error) {
	if err := validation.Validate(payload); err != nil {
		return nil, err
	}

	subject, err := s.subjects.UpdateName(ctx, payload.ID, payload.Name)
	if err != nil {
		return nil, err
	}

	s.logger.Debug().Int64("subject_id", subject.ID).Str("name", subject.Name).Msg("subject renamed")
	return subject, nil
}

func (s *CatalogService) DeleteSubject(ctx context.Context, id int64) error {
	if err := s.subjects.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Debug().Int64("subject_id", id).Msg("subject deleted")
	return nil
}

// DeleteDepartment removes a department. It fails while subjects still
// reference it.
func (s *CatalogService) DeleteDepartment(ctx context.Context, id int64) error {
	if err := s.departments.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Debug().Int64("department_id", id).Msg("department deleted")
	return nil
}
