package model

import "time"

// Department is a top-level organisational unit owning zero or more subjects.
type Department struct {
	ID          int64     `json:"id"`
	Code        string    `json:"code"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// CreateDepartmentPayload carries the columns a caller supplies on insert.
type CreateDepartmentPayload struct {
	Code        string  `json:"code" validate:"required,max=16"`
	Name        string  `json:"name" validate:"required,max=255"`
	Description *string `json:"description" validate:"omitempty,max=1000"`
}

// Validate checks the payload's struct tags.
func (p *CreateDepartmentPayload) Validate() error {
	return validate.Struct(p)
}

// DepartmentWithSubject is one row of the departments LEFT JOIN subjects
// read. Subject is nil for a department without subjects.
type DepartmentWithSubject struct {
	Department Department `json:"department"`
	Subject    *Subject   `json:"subject"`
}
