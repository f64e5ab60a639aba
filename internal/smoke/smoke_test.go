package smoke

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/deppfellow/catalog-smoke/internal/errs"
	"github.com/deppfellow/catalog-smoke/internal/model"
	"github.com/deppfellow/catalog-smoke/internal/service"
	"github.com/deppfellow/catalog-smoke/internal/testutil/memstore"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/rs/zerolog"
)

var stamp = time.Date(2026, 10, 15, 9, 30, 0, 0, time.UTC)

func newRunner(t *testing.T, store *memstore.Store, nrApp *newrelic.Application) (*Runner, *bytes.Buffer) {
	t.Helper()
	log := zerolog.Nop()
	catalog := service.NewCatalogService(&log, store.Departments(), store.Subjects())
	var out bytes.Buffer
	return NewRunner(catalog, &log, &out, nrApp), &out
}

func fixedStore() *memstore.Store {
	store := memstore.New()
	store.Now = func() time.Time { return stamp }
	return store
}

func TestRunCompletes(t *testing.T) {
	store := fixedStore()
	runner, out := newRunner(t, store, nil)

	report, err := runner.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if d, s := store.Counts(); d != 0 || s != 0 {
		t.Errorf("Counts() = (%d, %d), want the run to clean up after itself", d, s)
	}

	if report.Department.Code != DepartmentCode || report.Department.Name != DepartmentName ||
		*report.Department.Description != DepartmentDescription {
		t.Errorf("Department = %+v", report.Department)
	}
	if report.Subject.DepartmentID != report.Department.ID || report.Subject.Code != SubjectCode {
		t.Errorf("Subject = %+v", report.Subject)
	}
	if len(report.Joined) != 1 || report.Joined[0].Subject == nil ||
		report.Joined[0].Subject.ID != report.Subject.ID || report.Joined[0].Department.ID != report.Department.ID {
		t.Errorf("Joined = %+v, want one row pairing the department and subject", report.Joined)
	}
	if report.Updated.Name != UpdatedSubjectName || report.Updated.Code != SubjectCode {
		t.Errorf("Updated = %+v", report.Updated)
	}
	if !report.SubjectDeleted || !report.DepartmentDeleted {
		t.Errorf("deletions not recorded: %+v", report)
	}

	got := out.String()
	if !strings.HasPrefix(got, "Starting CRUD operations...\n\nDepartment created: {\n") {
		t.Errorf("output starts with %q", firstLines(got, 3))
	}
	if !strings.HasSuffix(got, "Subject deleted.\nDepartment deleted.\n\nCRUD operations completed successfully.\n") {
		t.Errorf("output ends unexpectedly:\n%s", got)
	}
	for _, label := range []string{
		"\nSubject created: {\n",
		"\nDepartments with subjects: [\n",
		"\nUpdated subject: {\n",
		`"name": "Intro to Programming (Updated)"`,
		`"description": "Basics of programming"`,
	} {
		if !strings.Contains(got, label) {
			t.Errorf("output is missing %q", label)
		}
	}
}

func TestRunStopsAtFirstFailure(t *testing.T) {
	store := fixedStore()
	store.Fail = func(op string) error {
		if op == "subjects.create" {
			return errors.New("connection reset by peer")
		}
		return nil
	}
	runner, out := newRunner(t, store, nil)

	report, err := runner.Run(context.Background())
	if err == nil {
		t.Fatal("Run() should fail")
	}
	if err.Error() != "failed to create subject: connection reset by peer" {
		t.Errorf("Run() error = %q", err.Error())
	}

	if report.Department == nil || report.Subject != nil {
		t.Errorf("report = %+v, want only the department step recorded", report)
	}
	if d, s := store.Counts(); d != 1 || s != 0 {
		t.Errorf("Counts() = (%d, %d), want the department left behind", d, s)
	}
	if strings.Contains(out.String(), "Subject created:") || strings.Contains(out.String(), "completed successfully") {
		t.Errorf("output continued past the failure:\n%s", out.String())
	}
}

func TestRunReportsConstraintErrors(t *testing.T) {
	store := fixedStore()
	seed := store.Departments()
	if _, err := seed.Create(context.Background(), &model.CreateDepartmentPayload{Code: DepartmentCode, Name: "Existing"}); err != nil {
		t.Fatalf("seed department: %v", err)
	}
	runner, _ := newRunner(t, store, nil)

	_, err := runner.Run(context.Background())
	if errs.KindOf(err) != errs.KindConflict {
		t.Fatalf("Run() error = %v, want a conflict", err)
	}
	if !strings.HasPrefix(err.Error(), "failed to create department: ") {
		t.Errorf("Run() error = %q", err.Error())
	}
}

// nilCatalog returns no row and no error from every insert.
type nilCatalog struct{ Catalog }

func (nilCatalog) CreateDepartment(context.Context, *model.CreateDepartmentPayload) (*model.Department, error) {
	return nil, nil
}

func TestRunInsertWithoutRow(t *testing.T) {
	log := zerolog.Nop()
	var out bytes.Buffer

	_, err := NewRunner(nilCatalog{}, &log, &out, nil).Run(context.Background())
	if err == nil || err.Error() != "failed to create department" {
		t.Fatalf("Run() error = %v, want failed to create department", err)
	}
}

func TestRunWithDisabledAPM(t *testing.T) {
	app, err := newrelic.NewApplication(
		newrelic.ConfigAppName("catalog-smoke-test"),
		newrelic.ConfigEnabled(false),
	)
	if err != nil {
		t.Fatalf("newrelic.NewApplication() error = %v", err)
	}
	defer app.Shutdown(time.Second)

	store := fixedStore()
	runner, _ := newRunner(t, store, app)

	if _, err := runner.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
}

func firstLines(s string, n int) string {
	lines := strings.SplitN(s, "\n", n+1)
	if len(lines) > n {
		lines = lines[:n]
	}
	return strings.Join(lines, "\n")
}
