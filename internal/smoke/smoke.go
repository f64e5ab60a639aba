// Package smoke runs the create/read/update/delete pass over the catalog.
//
// The run is strictly sequential: every step waits for the previous one,
// and the first failure stops it. Nothing is rolled back, so a department
// created before a failing step stays in the database.
//
// Each step writes one line to the configured writer:
//
//	Starting CRUD operations...
//	Department created: {...}
//	Subject created: {...}
//	Departments with subjects: [...]
//	Updated subject: {...}
//	Subject deleted.
//	Department deleted.
//	CRUD operations completed successfully.
package smoke

import (
	"context"
	"fmt"
	"io"

	"github.com/deppfellow/catalog-smoke/internal/lib/utils"
	"github.com/deppfellow/catalog-smoke/internal/model"
	"github.com/newrelic/go-agent/v3/integrations/nrpkgerrors"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// TransactionName is the New Relic background transaction for one run.
const TransactionName = "catalog-smoke"

// Literal inputs of the run.
const (
	DepartmentCode        = "CS"
	DepartmentName        = "Computer Science"
	DepartmentDescription = "Computer Science Department"

	SubjectCode        = "CS101"
	SubjectName        = "Introduction to Programming"
	SubjectDescription = "Basics of programming"

	UpdatedSubjectName = "Intro to Programming (Updated)"
)

// Catalog is the set of catalog operations a run performs.
// *service.CatalogService implements it.
type Catalog interface {
	CreateDepartment(ctx context.Context, payload *model.CreateDepartmentPayload) (*model.Department, error)
	CreateSubject(ctx context.Context, payload *model.CreateSubjectPayload) (*model.Subject, error)
	ListDepartmentsWithSubjects(ctx context.Context) ([]model.DepartmentWithSubject, error)
	RenameSubject(ctx context.Context, payload *model.RenameSubjectPayload) (*model.Subject, error)
	DeleteSubject(ctx context.Context, id int64) error
	DeleteDepartment(ctx context.Context, id int64) error
}

// Report holds what the run observed, step by step. Fields stay zero for
// steps that did not run.
type Report struct {
	Department *model.Department
	Subject    *model.Subject
	Joined     []model.DepartmentWithSubject
	Updated    *model.Subject

	SubjectDeleted    bool
	DepartmentDeleted bool
}

// Runner performs one smoke run.
type Runner struct {
	catalog Catalog
	logger  *zerolog.Logger
	out     io.Writer
	nrApp   *newrelic.Application
}

// NewRunner builds a Runner writing its console lines to out. nrApp may be
// nil, in which case nothing is reported to New Relic.
func NewRunner(catalog Catalog, logger *zerolog.Logger, out io.Writer, nrApp *newrelic.Application) *Runner {
	return &Runner{
		catalog: catalog,
		logger:  logger,
		out:     out,
		nrApp:   nrApp,
	}
}

// Run executes the six steps in order and returns the first error,
// wrapped with the step that failed.
func (r *Runner) Run(ctx context.Context) (report *Report, err error) {
	report = &Report{}

	// txn stays nil without APM; Transaction and Segment accept nil receivers.
	var txn *newrelic.Transaction
	if r.nrApp != nil {
		txn = r.nrApp.StartTransaction(TransactionName)
		defer txn.End()
		ctx = newrelic.NewContext(ctx, txn)
	}
	defer func() {
		if err != nil {
			txn.NoticeError(nrpkgerrors.Wrap(err))
			r.logger.Error().Stack().Err(err).Msg("smoke run failed")
		}
	}()

	r.logger.Info().Msg("smoke run started")
	if err = r.println("Starting CRUD operations...\n"); err != nil {
		return report, err
	}

	err = r.step(ctx, "create_department", func(ctx context.Context) error {
		department, err := r.catalog.CreateDepartment(ctx, &model.CreateDepartmentPayload{
			Code:        DepartmentCode,
			Name:        DepartmentName,
			Description: ptr(DepartmentDescription),
		})
		if err != nil {
			return errors.Wrap(err, "failed to create department")
		}
		if department == nil {
			return errors.New("failed to create department")
		}
		report.Department = department
		return r.printJSON("Department created:", department)
	})
	if err != nil {
		return report, err
	}

	err = r.step(ctx, "create_subject", func(ctx context.Context) error {
		subject, err := r.catalog.CreateSubject(ctx, &model.CreateSubjectPayload{
			DepartmentID: report.Department.ID,
			Code:         SubjectCode,
			Name:         SubjectName,
			Description:  ptr(SubjectDescription),
		})
		if err != nil {
			return errors.Wrap(err, "failed to create subject")
		}
		if subject == nil {
			return errors.New("failed to create subject")
		}
		report.Subject = subject
		return r.printJSON("Subject created:", subject)
	})
	if err != nil {
		return report, err
	}

	err = r.step(ctx, "list_departments_with_subjects", func(ctx context.Context) error {
		rows, err := r.catalog.ListDepartmentsWithSubjects(ctx)
		if err != nil {
			return errors.Wrap(err, "failed to read departments with subjects")
		}
		report.Joined = rows
		return r.printJSON("Departments with subjects:", rows)
	})
	if err != nil {
		return report, err
	}

	err = r.step(ctx, "rename_subject", func(ctx context.Context) error {
		updated, err := r.catalog.RenameSubject(ctx, &model.RenameSubjectPayload{
			ID:   report.Subject.ID,
			Name: UpdatedSubjectName,
		})
		if err != nil {
			return errors.Wrap(err, "failed to update subject")
		}
		report.Updated = updated
		return r.printJSON("Updated subject:", updated)
	})
	if err != nil {
		return report, err
	}

	err = r.step(ctx, "delete_subject", func(ctx context.Context) error {
		if err := r.catalog.DeleteSubject(ctx, report.Subject.ID); err != nil {
			return errors.Wrap(err, "failed to delete subject")
		}
		report.SubjectDeleted = true
		return r.println("Subject deleted.")
	})
	if err != nil {
		return report, err
	}

	err = r.step(ctx, "delete_department", func(ctx context.Context) error {
		if err := r.catalog.DeleteDepartment(ctx, report.Department.ID); err != nil {
			return errors.Wrap(err, "failed to delete department")
		}
		report.DepartmentDeleted = true
		return r.println("Department deleted.")
	})
	if err != nil {
		return report, err
	}

	if err = r.println("\nCRUD operations completed successfully."); err != nil {
		return report, err
	}
	r.logger.Info().Msg("smoke run completed")
	return report, nil
}

// step runs fn inside a New Relic segment named after the step.
func (r *Runner) step(ctx context.Context, name string, fn func(context.Context) error) error {
	segment := newrelic.FromContext(ctx).StartSegment(name)
	defer segment.End()

	r.logger.Debug().Str("step", name).Msg("running step")
	return fn(ctx)
}

func (r *Runner) println(line string) error {
	if _, err := fmt.Fprintln(r.out, line); err != nil {
		return errors.Wrap(err, "failed to write output")
	}
	return nil
}

func (r *Runner) printJSON(label string, v any) error {
	if err := utils.PrintJSON(r.out, label, v); err != nil {
		return errors.Wrap(err, "failed to write output")
	}
	return nil
}

func ptr(s string) *string { return &s }
