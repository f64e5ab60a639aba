// Package memstore is an in-memory catalog store for tests.
//
// It follows the PostgreSQL schema's rules: identity ids, unique department codes,
// the subjects -> departments foreign key with ON DELETE RESTRICT, and the
// same error kinds and codes the repositories produce.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/deppfellow/catalog-smoke/internal/errs"
	"github.com/deppfellow/catalog-smoke/internal/model"
)

// Store holds both tables. Use Departments() and Subjects() to get the
// per-table views the service layer expects.
type Store struct {
	mu sync.Mutex

	nextDepartmentID int64
	nextSubjectID    int64
	departments      map[int64]model.Department
	subjects         map[int64]model.Subject

	// Now stamps created_at/updated_at.
	Now func() time.Time

	// Fail, when set, is consulted before every call with the operation
	// name (e.g. "subjects.create"); a non-nil result is returned instead
	// of running the call.
	Fail func(op string) error
}

func New() *Store {
	return &Store{
		departments: map[int64]model.Department{},
		subjects:    map[int64]model.Subject{},
		Now:         func() time.Time { return time.Now().UTC() },
	}
}

// Counts reports how many rows each table holds.
func (s *Store) Counts() (departments, subjects int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.departments), len(s.subjects)
}

func (s *Store) Departments() *Departments { return &Departments{s} }
func (s *Store) Subjects() *Subjects       { return &Subjects{s} }

func (s *Store) failure(op string) error {
	if s.Fail == nil {
		return nil
	}
	return s.Fail(op)
}

func code(c string) *string { return &c }

// Departments is the departments table view.
type Departments struct{ s *Store }

func (d *Departments) Create(_ context.Context, p *model.CreateDepartmentPayload) (*model.Department, error) {
	s := d.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure("departments.create"); err != nil {
		return nil, err
	}

	for _, existing := range s.departments {
		if existing.Code == p.Code {
			return nil, errs.NewConflictError("A Department with this Code already exists", code("DEPARTMENT_ALREADY_EXISTS"))
		}
	}

	s.nextDepartmentID++
	now := s.Now()
	row := model.Department{
		ID:          s.nextDepartmentID,
		Code:        p.Code,
		Name:        p.Name,
		Description: p.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	s.departments[row.ID] = row
	return &row, nil
}

func (d *Departments) GetByID(_ context.Context, id int64) (*model.Department, error) {
	s := d.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure("departments.get"); err != nil {
		return nil, err
	}

	row, ok := s.departments[id]
	if !ok {
		return nil, errs.NewNotFoundError("Department not found", code("DEPARTMENT_NOT_FOUND"))
	}
	return &row, nil
}

func (d *Departments) ListWithSubjects(_ context.Context) ([]model.DepartmentWithSubject, error) {
	s := d.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure("departments.list_with_subjects"); err != nil {
		return nil, err
	}

	deptIDs := make([]int64, 0, len(s.departments))
	for id := range s.departments {
		deptIDs = append(deptIDs, id)
	}
	sort.Slice(deptIDs, func(i, j int) bool { return deptIDs[i] < deptIDs[j] })

	subjIDs := make([]int64, 0, len(s.subjects))
	for id := range s.subjects {
		subjIDs = append(subjIDs, id)
	}
	sort.Slice(subjIDs, func(i, j int) bool { return subjIDs[i] < subjIDs[j] })

	result := []model.DepartmentWithSubject{}
	for _, did := range deptIDs {
		matched := false
		for _, sid := range subjIDs {
			subj := s.subjects[sid]
			if subj.DepartmentID != did {
				continue
			}
			matched = true
			result = append(result, model.DepartmentWithSubject{Department: s.departments[did], Subject: &subj})
		}
		if !matched {
			result = append(result, model.DepartmentWithSubject{Department: s.departments[did]})
		}
	}
	return result, nil
}

func (d *Departments) Delete(_ context.Context, id int64) error {
	s := d.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure("departments.delete"); err != nil {
		return err
	}

	if _, ok := s.departments[id]; !ok {
		return errs.NewNotFoundError("Department not found", code("DEPARTMENT_NOT_FOUND"))
	}
	for _, subj := range s.subjects {
		if subj.DepartmentID == id {
			return errs.NewConflictError("The Department is still referenced by a Subject", code("DEPARTMENT_IN_USE"))
		}
	}
	delete(s.departments, id)
	return nil
}

// Subjects is the subjects table view.
type Subjects struct{ s *Store }

func (sv *Subjects) Create(_ context.Context, p *model.CreateSubjectPayload) (*model.Subject, error) {
	s := sv.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure("subjects.create"); err != nil {
		return nil, err
	}

	if _, ok := s.departments[p.DepartmentID]; !ok {
		return nil, errs.NewInvalidError("The referenced Department does not exist", code("DEPARTMENT_NOT_FOUND"), nil)
	}
	s.nextSubjectID++
	now := s.Now()
	row := model.Subject{
		ID:           s.nextSubjectID,
		DepartmentID: p.DepartmentID,
		Code:         p.Code,
		Name:         p.Name,
		Description:  p.Description,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	s.subjects[row.ID] = row
	return &row, nil
}

func (sv *Subjects) GetByID(_ context.Context, id int64) (*model.Subject, error) {
	s := sv.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure("subjects.get"); err != nil {
		return nil, err
	}

	row, ok := s.subjects[id]
	if !ok {
		return nil, errs.NewNotFoundError("Subject not found", code("SUBJECT_NOT_FOUND"))
	}
	return &row, nil
}

func (sv *Subjects) UpdateName(_ context.Context, id int64, name string) (*model.Subject, error) {
	s := sv.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure("subjects.update_name"); err != nil {
		return nil, err
	}

	row, ok := s.subjects[id]
	if !ok {
		return nil, errs.NewNotFoundError("Subject not found", code("SUBJECT_NOT_FOUND"))
	}
	row.Name = name
	row.UpdatedAt = s.Now()
	s.subjects[id] = row
	return &row, nil
}

func (sv *Subjects) Delete(_ context.Context, id int64) error {
	s := sv.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure("subjects.delete"); err != nil {
		return err
	}

	if _, ok := s.subjects[id]; !ok {
		return errs.NewNotFoundError("Subject not found", code("SUBJECT_NOT_FOUND"))
	}
	delete(s.subjects, id)
	return nil
}
