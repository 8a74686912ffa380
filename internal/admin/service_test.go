package admin

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"chambers/internal/auth/mocks"
	"chambers/internal/auth/models"
	id "chambers/pkg/domain"
	dErrors "chambers/pkg/domain-errors"
	"chambers/pkg/platform/sentinel"
)

func newService(t *testing.T) (*Service, *mocks.MockAdmin, *mocks.MockRoleStore) {
	t.Helper()
	ctrl := gomock.NewController(t)
	provider := mocks.NewMockAdmin(ctrl)
	roles := mocks.NewMockRoleStore(ctrl)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(provider, roles, logger, nil), provider, roles
}

func validCreate() CreateUserRequest {
	return CreateUserRequest{
		Email:    "new.admin@example.com",
		Password: "correct-horse",
		Name:     "New Admin",
		Role:     "admin",
	}
}

func TestCreateUser(t *testing.T) {
	svc, provider, roles := newService(t)

	provider.EXPECT().CreateUser(gomock.Any(), "new.admin@example.com", "correct-horse").
		Return(id.IdentityID("identity-9"), nil)
	roles.EXPECT().Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, role *models.AdminRole) error {
			assert.Equal(t, id.IdentityID("identity-9"), role.IdentityID)
			assert.Equal(t, models.RoleAdmin, role.Role)
			assert.False(t, role.CreatedAt.IsZero())
			return nil
		})

	creator := &models.AdminRole{ID: id.NewAdminUserID(), Role: models.RoleSuperAdmin}
	role, err := svc.CreateUser(context.Background(), validCreate(), creator)
	require.NoError(t, err)
	require.NotNil(t, role.CreatedBy)
	assert.Equal(t, creator.ID, *role.CreatedBy)
}

func TestCreateUserDeletesLoginWhenRecordInsertFails(t *testing.T) {
	svc, provider, roles := newService(t)

	gomock.InOrder(
		provider.EXPECT().CreateUser(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(id.IdentityID("identity-9"), nil),
		roles.EXPECT().Create(gomock.Any(), gomock.Any()).
			Return(errors.New("insert failed")),
		// The freshly provisioned login must be removed again.
		provider.EXPECT().DeleteUser(gomock.Any(), id.IdentityID("identity-9")).
			Return(nil),
	)

	_, err := svc.CreateUser(context.Background(), validCreate(), nil)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInternal))
}

func TestCreateUserConflictOnDuplicate(t *testing.T) {
	svc, provider, roles := newService(t)

	provider.EXPECT().CreateUser(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(id.IdentityID("identity-9"), nil)
	roles.EXPECT().Create(gomock.Any(), gomock.Any()).Return(sentinel.ErrConflict)
	provider.EXPECT().DeleteUser(gomock.Any(), id.IdentityID("identity-9")).Return(nil)

	_, err := svc.CreateUser(context.Background(), validCreate(), nil)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeConflict))
}

func TestCreateUserProviderFailureSkipsRecordInsert(t *testing.T) {
	svc, provider, _ := newService(t)

	provider.EXPECT().CreateUser(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(id.IdentityID(""), errors.New("provider down"))

	_, err := svc.CreateUser(context.Background(), validCreate(), nil)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInternal))
}

func TestDeleteUser(t *testing.T) {
	svc, provider, roles := newService(t)

	adminUserID := id.NewAdminUserID()
	record := &models.AdminRole{ID: adminUserID, IdentityID: "identity-9"}

	gomock.InOrder(
		roles.EXPECT().FindByID(gomock.Any(), adminUserID).Return(record, nil),
		roles.EXPECT().Delete(gomock.Any(), adminUserID).Return(nil),
		provider.EXPECT().DeleteUser(gomock.Any(), id.IdentityID("identity-9")).Return(nil),
	)

	require.NoError(t, svc.DeleteUser(context.Background(), adminUserID))
}

func TestDeleteUserNotFound(t *testing.T) {
	svc, _, roles := newService(t)

	adminUserID := id.NewAdminUserID()
	roles.EXPECT().FindByID(gomock.Any(), adminUserID).Return(nil, sentinel.ErrNotFound)

	err := svc.DeleteUser(context.Background(), adminUserID)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
}

func TestCreateUserRequestValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*CreateUserRequest)
	}{
		{"bad email", func(r *CreateUserRequest) { r.Email = "not-an-email" }},
		{"short password", func(r *CreateUserRequest) { r.Password = "short" }},
		{"missing name", func(r *CreateUserRequest) { r.Name = "  " }},
		{"unknown role", func(r *CreateUserRequest) { r.Role = "editor" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validCreate()
			tt.mutate(&req)
			req.Normalize()
			err := req.Validate()
			assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
		})
	}
}

func TestCreateUserRequestNormalize(t *testing.T) {
	req := CreateUserRequest{Email: "  Partner@Example.COM ", Name: " Jane ", Role: " admin "}
	req.Normalize()
	assert.Equal(t, "partner@example.com", req.Email)
	assert.Equal(t, "Jane", req.Name)
	assert.Equal(t, "admin", req.Role)
}
