package model

import (
	"time"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Subject is a course belonging to exactly one department.
type Subject struct {
	ID           int64     `json:"id"`
	DepartmentID int64     `json:"departmentId"`
	Code         string    `json:"code"`
	Name         string    `json:"name"`
	Description  *string   `json:"description"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// CreateSubjectPayload carries the columns a caller supplies on insert.
//
// DepartmentID must name an existing department; the store enforces it.
type CreateSubjectPayload struct {
	DepartmentID int64   `json:"departmentId" validate:"required,gt=0"`
	Code         string  `json:"code" validate:"required,max=16"`
	Name         string  `json:"name" validate:"required,max=255"`
	Description  *string `json:"description" validate:"omitempty,max=1000"`
}

func (p *CreateSubjectPayload) Validate() error {
	return validate.Struct(p)
}

// RenameSubjectPayload is the only mutation the catalog supports on a subject.
type RenameSubjectPayload struct {
	ID   int64  `json:"id" validate:"required,gt=0"`
	Name string `json:"name" validate:"required,max=255"`
}

func (p *RenameSubjectPayload) Validate() error {
	return validate.Struct(p)
}
