// Package article implements the publication lifecycle for the firm's
// insight articles: drafts, publishing, archiving, and the public surface.
package article

import (
	"strings"
	"time"

	"chambers/internal/content/slug"
	id "chambers/pkg/domain"
	dErrors "chambers/pkg/domain-errors"
)

// Status is an article's place in the publication lifecycle.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
	StatusArchived  Status = "archived"
)

// Valid reports whether the status is one of the known lifecycle states.
func (s Status) Valid() bool {
	return s == StatusDraft || s == StatusPublished || s == StatusArchived
}

// Article is an insight piece. Slug is unique across all articles. Only
// published articles are visible on the public surface.
type Article struct {
	ID            id.ArticleID
	Title         string
	Slug          string
	Content       string
	Excerpt       string
	CoverURL      string
	FeaturedImage string
	Featured      bool
	Status        Status
	Author        string
	AuthorID      *id.AdminUserID
	PublishedAt   *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// CreateRequest carries the fields for a new article. Slug is derived from
// the title when absent.
type CreateRequest struct {
	Title         string `json:"title"`
	Slug          string `json:"slug"`
	Content       string `json:"content"`
	Excerpt       string `json:"excerpt"`
	CoverURL      string `json:"cover_url"`
	FeaturedImage string `json:"featured_image"`
	Featured      bool   `json:"is_featured"`
	Status        string `json:"status"`
	Author        string `json:"author"`
}

// Normalize implements httputil.Normalizable.
func (r *CreateRequest) Normalize() {
	r.Title = strings.TrimSpace(r.Title)
	r.Slug = strings.TrimSpace(r.Slug)
	r.Excerpt = strings.TrimSpace(r.Excerpt)
	r.Author = strings.TrimSpace(r.Author)
	if r.Status == "" {
		r.Status = string(StatusDraft)
	}
	if r.Slug == "" {
		r.Slug = slug.Make(r.Title)
	}
}

// Validate implements httputil.Validatable.
func (r *CreateRequest) Validate() error {
	if r.Title == "" {
		return dErrors.New(dErrors.CodeValidation, "title is required")
	}
	if !slug.Valid(r.Slug) {
		return dErrors.New(dErrors.CodeValidation, "slug must contain letters or digits")
	}
	if r.Content == "" {
		return dErrors.New(dErrors.CodeValidation, "content is required")
	}
	if !Status(r.Status).Valid() {
		return dErrors.New(dErrors.CodeValidation, "status must be draft, published, or archived")
	}
	return nil
}

// UpdateRequest carries a partial article update. Nil fields are untouched.
type UpdateRequest struct {
	Title         *string `json:"title"`
	Slug          *string `json:"slug"`
	Content       *string `json:"content"`
	Excerpt       *string `json:"excerpt"`
	CoverURL      *string `json:"cover_url"`
	FeaturedImage *string `json:"featured_image"`
	Featured      *bool   `json:"is_featured"`
	Status        *string `json:"status"`
	Author        *string `json:"author"`
}

// Validate implements httputil.Validatable.
func (r *UpdateRequest) Validate() error {
	if r.Title != nil && strings.TrimSpace(*r.Title) == "" {
		return dErrors.New(dErrors.CodeValidation, "title cannot be empty")
	}
	if r.Slug != nil && !slug.Valid(strings.TrimSpace(*r.Slug)) {
		return dErrors.New(dErrors.CodeValidation, "slug must contain letters or digits")
	}
	if r.Content != nil && *r.Content == "" {
		return dErrors.New(dErrors.CodeValidation, "content cannot be empty")
	}
	if r.Status != nil && !Status(*r.Status).Valid() {
		return dErrors.New(dErrors.CodeValidation, "status must be draft, published, or archived")
	}
	return nil
}

// ListFilter narrows and pages a listing. Zero values mean no filter and
// default paging.
type ListFilter struct {
	Status   Status
	Featured *bool
	Limit    int
	Offset   int
}

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

func (f ListFilter) normalized() ListFilter {
	if f.Limit <= 0 {
		f.Limit = defaultListLimit
	}
	if f.Limit > maxListLimit {
		f.Limit = maxListLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return f
}
