package article

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "chambers/pkg/domain"
	dErrors "chambers/pkg/domain-errors"
)

func newTestService() *Service {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(NewMemory(), nil, logger, nil)
}

func draftRequest(title string) CreateRequest {
	req := CreateRequest{
		Title:   title,
		Content: "body",
		Author:  "Jane Counsel",
	}
	req.Normalize()
	return req
}

func TestCreateDerivesSlugFromTitle(t *testing.T) {
	svc := newTestService()

	a, err := svc.Create(context.Background(), draftRequest("Corporate Law Update 2025"), nil)
	require.NoError(t, err)
	assert.Equal(t, "corporate-law-update-2025", a.Slug)
	assert.Equal(t, StatusDraft, a.Status)
	assert.Nil(t, a.PublishedAt)
}

func TestCreateRejectsDuplicateSlug(t *testing.T) {
	svc := newTestService()

	_, err := svc.Create(context.Background(), draftRequest("Same Title"), nil)
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), draftRequest("Same Title"), nil)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeConflict))
}

func TestCreatePublishedStampsPublishedAt(t *testing.T) {
	svc := newTestService()

	req := draftRequest("Launch Piece")
	req.Status = string(StatusPublished)
	a, err := svc.Create(context.Background(), req, nil)
	require.NoError(t, err)
	require.NotNil(t, a.PublishedAt)
}

func TestPublishStampsPublishedAtOnce(t *testing.T) {
	svc := newTestService()

	a, err := svc.Create(context.Background(), draftRequest("Draft Piece"), nil)
	require.NoError(t, err)

	published, err := svc.Publish(context.Background(), a.ID)
	require.NoError(t, err)
	require.NotNil(t, published.PublishedAt)
	first := *published.PublishedAt

	// Archive and re-publish: the original publication instant survives.
	_, err = svc.Archive(context.Background(), a.ID)
	require.NoError(t, err)
	again, err := svc.Publish(context.Background(), a.ID)
	require.NoError(t, err)
	assert.Equal(t, first, *again.PublishedAt)
}

func TestPublicSurfaceHidesUnpublished(t *testing.T) {
	svc := newTestService()

	draft, err := svc.Create(context.Background(), draftRequest("Hidden Draft"), nil)
	require.NoError(t, err)

	_, err = svc.GetPublished(context.Background(), draft.Slug)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))

	_, err = svc.Publish(context.Background(), draft.ID)
	require.NoError(t, err)
	got, err := svc.GetPublished(context.Background(), draft.Slug)
	require.NoError(t, err)
	assert.Equal(t, draft.ID, got.ID)

	_, err = svc.Archive(context.Background(), draft.ID)
	require.NoError(t, err)
	_, err = svc.GetPublished(context.Background(), draft.Slug)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
}

func TestListPublishedOnlyReturnsPublished(t *testing.T) {
	svc := newTestService()

	for i, title := range []string{"One", "Two", "Three"} {
		a, err := svc.Create(context.Background(), draftRequest(title), nil)
		require.NoError(t, err)
		if i < 2 {
			_, err = svc.Publish(context.Background(), a.ID)
			require.NoError(t, err)
		}
	}

	articles, err := svc.ListPublished(context.Background(), 10, 0)
	require.NoError(t, err)
	assert.Len(t, articles, 2)
	for _, a := range articles {
		assert.Equal(t, StatusPublished, a.Status)
	}
}

func TestUpdateAppliesPartialChanges(t *testing.T) {
	svc := newTestService()

	a, err := svc.Create(context.Background(), draftRequest("Original Title"), nil)
	require.NoError(t, err)

	title := "Retitled"
	featured := true
	updated, err := svc.Update(context.Background(), a.ID, UpdateRequest{Title: &title, Featured: &featured})
	require.NoError(t, err)
	assert.Equal(t, "Retitled", updated.Title)
	assert.True(t, updated.Featured)
	// Untouched fields survive.
	assert.Equal(t, "original-title", updated.Slug)
	assert.Equal(t, "body", updated.Content)
}

func TestUpdateUnknownArticle(t *testing.T) {
	svc := newTestService()

	title := "x"
	_, err := svc.Update(context.Background(), id.NewArticleID(), UpdateRequest{Title: &title})
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
}

func TestDelete(t *testing.T) {
	svc := newTestService()

	a, err := svc.Create(context.Background(), draftRequest("Ephemeral"), nil)
	require.NoError(t, err)
	require.NoError(t, svc.Delete(context.Background(), a.ID))

	err = svc.Delete(context.Background(), a.ID)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
}

func TestCreateRequestValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*CreateRequest)
	}{
		{"missing title", func(r *CreateRequest) { r.Title = "" }},
		{"missing content", func(r *CreateRequest) { r.Content = "" }},
		{"unknown status", func(r *CreateRequest) { r.Status = "pending" }},
		{"unusable slug", func(r *CreateRequest) { r.Title = "!!!"; r.Slug = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := CreateRequest{Title: "Title", Content: "body"}
			tt.mutate(&req)
			req.Normalize()
			err := req.Validate()
			assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
		})
	}
}

func TestListFilterNormalized(t *testing.T) {
	f := ListFilter{Limit: -3, Offset: -1}.normalized()
	assert.Equal(t, defaultListLimit, f.Limit)
	assert.Equal(t, 0, f.Offset)

	f = ListFilter{Limit: 5000}.normalized()
	assert.Equal(t, maxListLimit, f.Limit)
}

func TestMemoryStoreListOrdersNewestFirst(t *testing.T) {
	store := NewMemory()
	base := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		a := &Article{
			ID:        id.NewArticleID(),
			Title:     "t",
			Slug:      string(rune('a' + i)),
			Status:    StatusDraft,
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		}
		require.NoError(t, store.Create(context.Background(), a))
	}

	articles, err := store.List(context.Background(), ListFilter{})
	require.NoError(t, err)
	require.Len(t, articles, 3)
	assert.Equal(t, "c", articles[0].Slug)
	assert.Equal(t, "a", articles[2].Slug)
}

func TestMemoryStoreCounts(t *testing.T) {
	store := NewMemory()
	now := time.Now().UTC()
	statuses := []Status{StatusDraft, StatusPublished, StatusPublished}
	for i, status := range statuses {
		a := &Article{
			ID:        id.NewArticleID(),
			Slug:      string(rune('a' + i)),
			Status:    status,
			CreatedAt: now.Add(-time.Duration(i*10) * 24 * time.Hour),
		}
		require.NoError(t, store.Create(context.Background(), a))
	}

	total, err := store.Count(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)

	published, err := store.Count(context.Background(), StatusPublished)
	require.NoError(t, err)
	assert.Equal(t, int64(2), published)

	recent, err := store.CountSince(context.Background(), now.Add(-7*24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), recent)
}
