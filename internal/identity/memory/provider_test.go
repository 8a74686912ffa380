package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chambers/internal/identity"
	"chambers/pkg/platform/sentinel"
)

func TestSignInFlow(t *testing.T) {
	p := New()
	ctx := context.Background()

	identityID, err := p.CreateUser(ctx, "counsel@example.com", "hunter2hunter2")
	require.NoError(t, err)

	credential, ident, err := p.SignIn(ctx, "counsel@example.com", "hunter2hunter2")
	require.NoError(t, err)
	assert.Equal(t, identityID, ident.ID)

	resolved, err := p.CurrentIdentity(ctx, credential)
	require.NoError(t, err)
	require.NotNil(t, resolved)
	assert.Equal(t, identityID, resolved.ID)
	assert.Equal(t, "counsel@example.com", resolved.Email)
}

func TestSignInWrongPassword(t *testing.T) {
	p := New()
	ctx := context.Background()

	_, err := p.CreateUser(ctx, "counsel@example.com", "correct-password")
	require.NoError(t, err)

	_, _, err = p.SignIn(ctx, "counsel@example.com", "wrong-password")
	assert.ErrorIs(t, err, sentinel.ErrInvalidInput)
}

func TestSignInUnknownAccount(t *testing.T) {
	p := New()

	_, _, err := p.SignIn(context.Background(), "nobody@example.com", "pw")
	assert.ErrorIs(t, err, sentinel.ErrInvalidInput)
}

func TestCurrentIdentityUnknownCredential(t *testing.T) {
	p := New()

	ident, err := p.CurrentIdentity(context.Background(), "bogus")
	require.NoError(t, err)
	assert.Nil(t, ident)
}

func TestSignOutInvalidatesCredential(t *testing.T) {
	p := New()
	ctx := context.Background()

	_, err := p.CreateUser(ctx, "counsel@example.com", "hunter2hunter2")
	require.NoError(t, err)
	credential, _, err := p.SignIn(ctx, "counsel@example.com", "hunter2hunter2")
	require.NoError(t, err)

	require.NoError(t, p.SignOut(ctx, credential))

	ident, err := p.CurrentIdentity(ctx, credential)
	require.NoError(t, err)
	assert.Nil(t, ident)
}

func TestSignOutEmitsEvent(t *testing.T) {
	p := New()
	ctx := context.Background()

	events, unsubscribe := p.Subscribe()
	defer unsubscribe()

	require.NoError(t, p.SignOut(ctx, "any"))

	select {
	case ev := <-events:
		assert.Equal(t, identity.EventSignedOut, ev.Kind)
	case <-time.After(time.Second):
		t.Fatal("expected sign-out event")
	}
}

func TestCreateUserDuplicate(t *testing.T) {
	p := New()
	ctx := context.Background()

	_, err := p.CreateUser(ctx, "dupe@example.com", "password-one")
	require.NoError(t, err)
	_, err = p.CreateUser(ctx, "dupe@example.com", "password-two")
	assert.ErrorIs(t, err, sentinel.ErrConflict)
}

func TestDeleteUserRemovesSessions(t *testing.T) {
	p := New()
	ctx := context.Background()

	identityID, err := p.CreateUser(ctx, "gone@example.com", "hunter2hunter2")
	require.NoError(t, err)
	credential, _, err := p.SignIn(ctx, "gone@example.com", "hunter2hunter2")
	require.NoError(t, err)

	require.NoError(t, p.DeleteUser(ctx, identityID))

	ident, err := p.CurrentIdentity(ctx, credential)
	require.NoError(t, err)
	assert.Nil(t, ident)

	assert.ErrorIs(t, p.DeleteUser(ctx, identityID), sentinel.ErrNotFound)
}
