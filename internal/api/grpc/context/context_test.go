package context

import (
	stdctx "context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/metadata"
)

func TestManager_SetAndGetUserID(t *testing.T) {
	m := NewManager()
	uid := uuid.New()
	ctx := m.SetUserIDToContext(stdctx.Background(), uid)

	got, ok := m.GetUserIDFromContext(ctx)
	assert.True(t, ok)
	assert.Equal(t, uid, got)
}

func TestManager_GetUserID_NotFound(t *testing.T) {
	m := NewManager()
	_, ok := m.GetUserIDFromContext(stdctx.Background())
	assert.False(t, ok)

	ctx := metadata.NewIncomingContext(stdctx.Background(), metadata.Pairs("x-trace-id", "t"))
	_, ok = m.GetUserIDFromContext(ctx)
	assert.False(t, ok)
}

func TestManager_SetUserID_KeepsMetadata(t *testing.T) {
	m := NewManager()
	uid := uuid.New()
	base := metadata.Pairs("x-trace-id", "t")
	ctxWithMD := metadata.NewIncomingContext(stdctx.Background(), base)

	ctx := m.SetUserIDToContext(ctxWithMD, uid)
	got, ok := m.GetUserIDFromContext(ctx)
	assert.True(t, ok)
	assert.Equal(t, uid, got)

	md, ok := metadata.FromIncomingContext(ctx)
	require.True(t, ok)
	assert.Equal(t, []string{"t"}, md.Get("x-trace-id"))
	assert.Empty(t, base.Get(userIDKey))
}

func TestManager_SetUserID_OverridesClientValue(t *testing.T) {
	m := NewManager()
	uid := uuid.New()
	spoofed := metadata.NewIncomingContext(stdctx.Background(), metadata.Pairs(userIDKey, uuid.NewString()))

	got, ok := m.GetUserIDFromContext(m.SetUserIDToContext(spoofed, uid))
	assert.True(t, ok)
	assert.Equal(t, uid, got)
}

func TestManager_GetUserID_Invalid(t *testing.T) {
	m := NewManager()

	for _, v := range []string{"not-a-uuid", uuid.Nil.String()} {
		ctx := metadata.NewIncomingContext(stdctx.Background(), metadata.Pairs(userIDKey, v))
		_, ok := m.GetUserIDFromContext(ctx)
		assert.False(t, ok, v)
	}
}
