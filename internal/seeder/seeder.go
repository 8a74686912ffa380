// Package seeder loads demo content for the in-memory provider so a fresh
// dev instance has something to click through.
package seeder

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"chambers/internal/auth/models"
	"chambers/internal/auth/store"
	"chambers/internal/content/article"
	"chambers/internal/content/job"
	"chambers/internal/content/tag"
	"chambers/internal/identity/memory"
	id "chambers/pkg/domain"
)

// Stores bundles the targets the seeder fills.
type Stores struct {
	Provider *memory.Provider
	Roles    store.RoleStore
	Articles article.Store
	Tags     tag.Store
	Jobs     job.Store
}

// DemoCredentials are the logins seeded for dev mode.
var DemoCredentials = []struct {
	Email    string
	Password string
	Role     models.Role
}{
	{"partner@chambers.test", "demo-super-admin", models.RoleSuperAdmin},
	{"associate@chambers.test", "demo-admin", models.RoleAdmin},
}

// Run seeds demo admins, articles, tags, and jobs. It is only wired for the
// in-memory provider; real deployments manage content through the API.
func Run(ctx context.Context, s Stores, logger *slog.Logger) error {
	now := time.Now().UTC()

	var firstAdmin id.AdminUserID
	for i, cred := range DemoCredentials {
		identityID, err := s.Provider.CreateUser(ctx, cred.Email, cred.Password)
		if err != nil {
			return fmt.Errorf("seed provider user %s: %w", cred.Email, err)
		}
		role := &models.AdminRole{
			ID:         id.NewAdminUserID(),
			IdentityID: identityID,
			Email:      cred.Email,
			Name:       cred.Email,
			Role:       cred.Role,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		if err := s.Roles.Create(ctx, role); err != nil {
			return fmt.Errorf("seed role %s: %w", cred.Email, err)
		}
		if i == 0 {
			firstAdmin = role.ID
		}
	}

	t := &tag.Tag{
		ID:        id.NewTagID(),
		Name:      "Corporate Law",
		Slug:      "corporate-law",
		Color:     "#1D4ED8",
		CreatedBy: &firstAdmin,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.Tags.Create(ctx, t); err != nil {
		return fmt.Errorf("seed tag: %w", err)
	}

	published := now.Add(-24 * time.Hour)
	articles := []*article.Article{
		{
			ID:          id.NewArticleID(),
			Title:       "New Disclosure Rules for Listed Companies",
			Slug:        "new-disclosure-rules-for-listed-companies",
			Content:     "An overview of the updated disclosure regime and what issuers need to file.",
			Excerpt:     "What the updated disclosure regime means for issuers.",
			Featured:    true,
			Status:      article.StatusPublished,
			Author:      "Demo Partner",
			AuthorID:    &firstAdmin,
			PublishedAt: &published,
			CreatedAt:   published,
			UpdatedAt:   published,
		},
		{
			ID:        id.NewArticleID(),
			Title:     "Draft: Arbitration Clauses in Cross-Border Deals",
			Slug:      "arbitration-clauses-in-cross-border-deals",
			Content:   "Working notes on seat selection and enforcement.",
			Status:    article.StatusDraft,
			Author:    "Demo Associate",
			CreatedAt: now,
			UpdatedAt: now,
		},
	}
	for _, a := range articles {
		if err := s.Articles.Create(ctx, a); err != nil {
			return fmt.Errorf("seed article %s: %w", a.Slug, err)
		}
	}
	if err := s.Tags.Link(ctx, articles[0].ID, t.ID); err != nil {
		return fmt.Errorf("seed article tag: %w", err)
	}

	j := &job.Job{
		ID:           id.NewJobID(),
		Title:        "Senior Associate, Corporate",
		Department:   "Corporate",
		Location:     "Jakarta",
		Type:         "full-time",
		Experience:   "5+ years",
		Description:  "Transactional work across M&A and capital markets.",
		Requirements: []string{"Bar admission", "Fluent English"},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.Jobs.Create(ctx, j); err != nil {
		return fmt.Errorf("seed job: %w", err)
	}

	logger.Info("demo data seeded",
		"admins", len(DemoCredentials),
		"articles", len(articles),
	)
	return nil
}
