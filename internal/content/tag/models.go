// Package tag categorizes articles. Tags carry presentation hints (color)
// and are linked to articles through a relation table.
package tag

import (
	"regexp"
	"strings"
	"time"

	"chambers/internal/content/slug"
	id "chambers/pkg/domain"
	dErrors "chambers/pkg/domain-errors"
)

var colorPattern = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

const defaultColor = "#6B7280"

// Tag is a content category. Slug is unique across all tags.
type Tag struct {
	ID          id.TagID
	Name        string
	Slug        string
	Description string
	Color       string
	CreatedBy   *id.AdminUserID
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// CreateRequest carries the fields for a new tag.
type CreateRequest struct {
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
	Color       string `json:"color"`
}

// Normalize implements httputil.Normalizable.
func (r *CreateRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Slug = strings.TrimSpace(r.Slug)
	r.Description = strings.TrimSpace(r.Description)
	r.Color = strings.TrimSpace(r.Color)
	if r.Slug == "" {
		r.Slug = slug.Make(r.Name)
	}
	if r.Color == "" {
		r.Color = defaultColor
	}
}

// Validate implements httputil.Validatable.
func (r *CreateRequest) Validate() error {
	if r.Name == "" {
		return dErrors.New(dErrors.CodeValidation, "name is required")
	}
	if !slug.Valid(r.Slug) {
		return dErrors.New(dErrors.CodeValidation, "slug must contain letters or digits")
	}
	if !colorPattern.MatchString(r.Color) {
		return dErrors.New(dErrors.CodeValidation, "color must be a hex value like #1D4ED8")
	}
	return nil
}

// UpdateRequest carries a partial tag update. Nil fields are untouched.
type UpdateRequest struct {
	Name        *string `json:"name"`
	Slug        *string `json:"slug"`
	Description *string `json:"description"`
	Color       *string `json:"color"`
}

// Validate implements httputil.Validatable.
func (r *UpdateRequest) Validate() error {
	if r.Name != nil && strings.TrimSpace(*r.Name) == "" {
		return dErrors.New(dErrors.CodeValidation, "name cannot be empty")
	}
	if r.Slug != nil && !slug.Valid(strings.TrimSpace(*r.Slug)) {
		return dErrors.New(dErrors.CodeValidation, "slug must contain letters or digits")
	}
	if r.Color != nil && !colorPattern.MatchString(strings.TrimSpace(*r.Color)) {
		return dErrors.New(dErrors.CodeValidation, "color must be a hex value like #1D4ED8")
	}
	return nil
}
