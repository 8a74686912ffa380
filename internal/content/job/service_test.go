package job

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

func validCreate() CreateRequest {
	return CreateRequest{
		Title:        "Senior Associate",
		Department:   "Corporate",
		Location:     "Jakarta",
		Type:         "full-time",
		Experience:   "5+ years",
		Description:  "M&A practice",
		Requirements: []string{"Bar admission", " ", "Fluent English"},
	}
}

func TestCreateDropsBlankRequirements(t *testing.T) {
	svc := newTestService()

	req := validCreate()
	req.Normalize()
	j, err := svc.Create(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, []string{"Bar admission", "Fluent English"}, j.Requirements)
}

func TestUpdateReplacesRequirements(t *testing.T) {
	svc := newTestService()

	req := validCreate()
	req.Normalize()
	j, err := svc.Create(context.Background(), req)
	require.NoError(t, err)

	newReqs := []string{"Litigation experience"}
	title := "Of Counsel"
	updated, err := svc.Update(context.Background(), j.ID, UpdateRequest{
		Title:        &title,
		Requirements: &newReqs,
	})
	require.NoError(t, err)
	assert.Equal(t, "Of Counsel", updated.Title)
	assert.Equal(t, newReqs, updated.Requirements)
	// Untouched fields survive.
	assert.Equal(t, "Corporate", updated.Department)
}

func TestDeleteUnknownJob(t *testing.T) {
	svc := newTestService()

	err := svc.Delete(context.Background(), id.NewJobID())
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
}

func TestValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*CreateRequest)
	}{
		{"missing title", func(r *CreateRequest) { r.Title = "" }},
		{"missing department", func(r *CreateRequest) { r.Department = " " }},
		{"missing location", func(r *CreateRequest) { r.Location = "" }},
		{"missing description", func(r *CreateRequest) { r.Description = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validCreate()
			tt.mutate(&req)
			req.Normalize()
			assert.True(t, dErrors.HasCode(req.Validate(), dErrors.CodeValidation))
		})
	}
}

func TestMemoryStoreCopyIsolation(t *testing.T) {
	store := NewMemory()
	j := &Job{ID: id.NewJobID(), Title: "t", Requirements: []string{"a"}}
	require.NoError(t, store.Create(context.Background(), j))

	// Mutating the caller's slice must not leak into the store.
	j.Requirements[0] = "changed"
	got, err := store.FindByID(context.Background(), j.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, got.Requirements)
}
