package tag

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "chambers/pkg/domain"
	dErrors "chambers/pkg/domain-errors"
)

func newTestService() *Service {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(NewMemory(), logger, nil)
}

func create(t *testing.T, svc *Service, name string) *Tag {
	t.Helper()
	req := CreateRequest{Name: name}
	req.Normalize()
	created, err := svc.Create(context.Background(), req, nil)
	require.NoError(t, err)
	return created
}

func TestCreateDefaults(t *testing.T) {
	svc := newTestService()

	created := create(t, svc, "Corporate Law")
	assert.Equal(t, "corporate-law", created.Slug)
	assert.Equal(t, defaultColor, created.Color)
}

func TestCreateDuplicateSlugConflicts(t *testing.T) {
	svc := newTestService()

	create(t, svc, "Corporate Law")
	req := CreateRequest{Name: "Corporate Law"}
	req.Normalize()
	_, err := svc.Create(context.Background(), req, nil)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeConflict))
}

func TestUpdate(t *testing.T) {
	svc := newTestService()

	created := create(t, svc, "Corporate Law")
	name := "Company Law"
	color := "#1D4ED8"
	updated, err := svc.Update(context.Background(), created.ID, UpdateRequest{Name: &name, Color: &color})
	require.NoError(t, err)
	assert.Equal(t, "Company Law", updated.Name)
	assert.Equal(t, "#1D4ED8", updated.Color)
	// Slug untouched by a name-only change.
	assert.Equal(t, "corporate-law", updated.Slug)
}

func TestTagArticleLifecycle(t *testing.T) {
	svc := newTestService()

	created := create(t, svc, "Litigation")
	articleID := id.NewArticleID()

	require.NoError(t, svc.TagArticle(context.Background(), articleID, created.ID))

	err := svc.TagArticle(context.Background(), articleID, created.ID)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeConflict))

	tags, err := svc.ListByArticle(context.Background(), articleID)
	require.NoError(t, err)
	require.Len(t, tags, 1)
	assert.Equal(t, created.ID, tags[0].ID)

	require.NoError(t, svc.UntagArticle(context.Background(), articleID, created.ID))
	err = svc.UntagArticle(context.Background(), articleID, created.ID)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
}

func TestDeleteCascadesLinks(t *testing.T) {
	svc := newTestService()

	created := create(t, svc, "Litigation")
	articleID := id.NewArticleID()
	require.NoError(t, svc.TagArticle(context.Background(), articleID, created.ID))

	require.NoError(t, svc.Delete(context.Background(), created.ID))

	tags, err := svc.ListByArticle(context.Background(), articleID)
	require.NoError(t, err)
	assert.Empty(t, tags)
}

func TestTagUnknownTag(t *testing.T) {
	svc := newTestService()

	err := svc.TagArticle(context.Background(), id.NewArticleID(), id.NewTagID())
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
}

func TestListOrdersByName(t *testing.T) {
	svc := newTestService()

	create(t, svc, "Litigation")
	create(t, svc, "Arbitration")
	create(t, svc, "Corporate Law")

	tags, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, tags, 3)
	assert.Equal(t, "Arbitration", tags[0].Name)
	assert.Equal(t, "Litigation", tags[2].Name)
}

func TestCreateRequestValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*CreateRequest)
	}{
		{"missing name", func(r *CreateRequest) { r.Name = " " }},
		{"bad color", func(r *CreateRequest) { r.Color = "blue" }},
		{"unusable slug", func(r *CreateRequest) { r.Name = "!!!" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := CreateRequest{Name: "Valid"}
			tt.mutate(&req)
			req.Normalize()
			err := req.Validate()
			assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
		})
	}
}
