// Package job manages the careers board: open positions with their
// requirements, served publicly and managed under the admin guard.
package job

import (
	"strings"
	"time"

	id "chambers/pkg/domain"
	dErrors "chambers/pkg/domain-errors"
)

// Job is an open position.
type Job struct {
	ID           id.JobID
	Title        string
	Department   string
	Location     string
	Type         string
	Experience   string
	Description  string
	Requirements []string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// CreateRequest carries the fields for a new position.
type CreateRequest struct {
	Title        string   `json:"title"`
	Department   string   `json:"department"`
	Location     string   `json:"location"`
	Type         string   `json:"type"`
	Experience   string   `json:"experience"`
	Description  string   `json:"description"`
	Requirements []string `json:"requirements"`
}

// Normalize implements httputil.Normalizable.
func (r *CreateRequest) Normalize() {
	r.Title = strings.TrimSpace(r.Title)
	r.Department = strings.TrimSpace(r.Department)
	r.Location = strings.TrimSpace(r.Location)
	r.Type = strings.TrimSpace(r.Type)
	r.Experience = strings.TrimSpace(r.Experience)
	cleaned := r.Requirements[:0]
	for _, req := range r.Requirements {
		if req = strings.TrimSpace(req); req != "" {
			cleaned = append(cleaned, req)
		}
	}
	r.Requirements = cleaned
}

// Validate implements httputil.Validatable.
func (r *CreateRequest) Validate() error {
	if r.Title == "" {
		return dErrors.New(dErrors.CodeValidation, "title is required")
	}
	if r.Department == "" {
		return dErrors.New(dErrors.CodeValidation, "department is required")
	}
	if r.Location == "" {
		return dErrors.New(dErrors.CodeValidation, "location is required")
	}
	if r.Description == "" {
		return dErrors.New(dErrors.CodeValidation, "description is required")
	}
	return nil
}

// UpdateRequest carries a partial job update. Nil fields are untouched.
type UpdateRequest struct {
	Title        *string   `json:"title"`
	Department   *string   `json:"department"`
	Location     *string   `json:"location"`
	Type         *string   `json:"type"`
	Experience   *string   `json:"experience"`
	Description  *string   `json:"description"`
	Requirements *[]string `json:"requirements"`
}

// Validate implements httputil.Validatable.
func (r *UpdateRequest) Validate() error {
	for _, field := range []struct {
		name  string
		value *string
	}{
		{"title", r.Title},
		{"department", r.Department},
		{"location", r.Location},
		{"description", r.Description},
	} {
		if field.value != nil && strings.TrimSpace(*field.value) == "" {
			return dErrors.New(dErrors.CodeValidation, field.name+" cannot be empty")
		}
	}
	return nil
}
