package cart

import (
	"context"
	"errors"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Akshat090803/ecommerce-final-project/internal/domain/identity"
)

func TestBindIdentity_ClearsOnSignOut(t *testing.T) {
	store, persister := openStore(t)
	ctx := context.Background()
	require.NoError(t, store.AddToCart(ctx, mug, 1))

	session := identity.NewSignedInSession(identity.Principal{ID: "u1"})
	log, _ := test.NewNullLogger()
	BindIdentity(ctx, store, session, log)

	session.SignIn(identity.Principal{ID: "u1"})
	assert.False(t, store.IsEmpty())

	session.SignOut()
	assert.True(t, store.IsEmpty())
	assert.False(t, persister.Has("sess-1"))
}

func TestBindIdentity_Unbind(t *testing.T) {
	store, _ := openStore(t)
	ctx := context.Background()
	require.NoError(t, store.AddToCart(ctx, mug, 1))

	session := identity.NewSignedInSession(identity.Principal{ID: "u1"})
	log, _ := test.NewNullLogger()
	unbind := BindIdentity(ctx, store, session, log)
	unbind()

	session.SignOut()
	assert.False(t, store.IsEmpty())
}

func TestBindIdentity_ClearFailureIsLogged(t *testing.T) {
	store, persister := openStore(t)
	ctx := context.Background()
	require.NoError(t, store.AddToCart(ctx, mug, 1))
	persister.FailDeletes(errors.New("redis down"))

	session := identity.NewSignedInSession(identity.Principal{ID: "u1"})
	log, hook := test.NewNullLogger()
	BindIdentity(ctx, store, session, log)

	assert.NotPanics(t, session.SignOut)
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, "u1", hook.LastEntry().Data["owner_id"])
}
