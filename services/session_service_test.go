package services

import (
	"context"
	"testing"
	"time"

	"github.com/coldenflo/ICeducation/database"
	"github.com/coldenflo/ICeducation/model"
	"github.com/coldenflo/ICeducation/utils/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestSessions(kv database.KeyValue) *SessionService {
	jwt := auth.NewJWTManager(auth.JWTConfig{Secret: "test-secret", Expiry: time.Hour, Issuer: "test"})
	return NewSessionService(kv, jwt, zap.NewNop())
}

var adminUser = model.PublicUser{Username: "admin", IsAdmin: true}

func TestSessionLifecycle(t *testing.T) {
	ctx := context.Background()
	kv := database.NewMemoryStore()
	sessions := newTestSessions(kv)

	token, expiresAt, err := sessions.Start(ctx, adminUser)
	require.NoError(t, err)
	assert.True(t, expiresAt.After(time.Now()))

	keys, err := kv.Keys(ctx, SessionKeyPrefix)
	require.NoError(t, err)
	assert.Len(t, keys, 1)

	user, ok := sessions.Current(ctx, token)
	require.True(t, ok)
	assert.Equal(t, adminUser, user)

	require.NoError(t, sessions.End(ctx, token))

	_, ok = sessions.Current(ctx, token)
	assert.False(t, ok)

	keys, err = kv.Keys(ctx, SessionKeyPrefix)
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestSessionCurrentRejectsBadToken(t *testing.T) {
	sessions := newTestSessions(database.NewMemoryStore())

	_, ok := sessions.Current(context.Background(), "garbage")
	assert.False(t, ok)
	assert.NoError(t, sessions.End(context.Background(), "garbage"))
}

func TestSessionsAreIndependent(t *testing.T) {
	ctx := context.Background()
	sessions := newTestSessions(database.NewMemoryStore())

	first, _, err := sessions.Start(ctx, adminUser)
	require.NoError(t, err)
	second, _, err := sessions.Start(ctx, model.PublicUser{Username: "viewer"})
	require.NoError(t, err)

	require.NoError(t, sessions.End(ctx, first))

	user, ok := sessions.Current(ctx, second)
	require.True(t, ok)
	assert.Equal(t, "viewer", user.Username)
	assert.False(t, user.IsAdmin)
}

func TestSessionExpiredRecordIsDropped(t *testing.T) {
	ctx := context.Background()
	kv := database.NewMemoryStore()
	sessions := newTestSessions(kv)

	token, _, err := sessions.Start(ctx, adminUser)
	require.NoError(t, err)

	// the record expires before the token does
	keys, err := kv.Keys(ctx, SessionKeyPrefix)
	require.NoError(t, err)
	require.NoError(t, kv.Set(ctx, keys[0], []byte(`{"username":"admin","isAdmin":true,"expiresAt":"2000-01-01T00:00:00Z"}`)))

	_, ok := sessions.Current(ctx, token)
	assert.False(t, ok)

	_, err = kv.Get(ctx, keys[0])
	assert.ErrorIs(t, err, database.ErrKeyNotFound)
}

func TestSweepExpired(t *testing.T) {
	ctx := context.Background()
	kv := database.NewMemoryStore()
	sessions := newTestSessions(kv)

	live, _, err := sessions.Start(ctx, adminUser)
	require.NoError(t, err)
	require.NoError(t, kv.Set(ctx, SessionKeyPrefix+"old", []byte(`{"username":"a","isAdmin":false,"expiresAt":"2000-01-01T00:00:00Z"}`)))
	require.NoError(t, kv.Set(ctx, SessionKeyPrefix+"broken", []byte(`nope`)))
	require.NoError(t, kv.Set(ctx, CatalogueKey, []byte(`{"version":1,"institutions":[]}`)))

	removed, err := sessions.SweepExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	_, ok := sessions.Current(ctx, live)
	assert.True(t, ok)

	_, err = kv.Get(ctx, CatalogueKey)
	assert.NoError(t, err)
}
