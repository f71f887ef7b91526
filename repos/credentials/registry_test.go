package credentials

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/planner-api/planner/repos/docstore"
)

func TestRegistry(t *testing.T) {
	ctx := context.Background()
	mem := docstore.NewMemory()
	registry := NewRegistry(mem)

	_, ok, err := registry.Lookup(ctx, "maribelrb")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, registry.Login(ctx, "maribelrb", "refresh-1"))
	require.NoError(t, registry.Login(ctx, "javivm17", "refresh-2"))
	require.NoError(t, registry.Login(ctx, "maribelrb", "refresh-3"))

	token, ok, err := registry.Lookup(ctx, "maribelrb")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "refresh-3", token)

	require.NoError(t, registry.Logout(ctx, "maribelrb"))
	_, ok, err = registry.Lookup(ctx, "maribelrb")
	require.NoError(t, err)
	assert.False(t, ok)

	token, ok, err = registry.Lookup(ctx, "javivm17")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "refresh-2", token)
}

func TestRegistry_LogoutUnknownUserWritesNothing(t *testing.T) {
	ctx := context.Background()
	mem := docstore.NewMemory()
	registry := NewRegistry(mem)

	require.NoError(t, registry.Logout(ctx, "nobody"))
	assert.Equal(t, 0, mem.Writes())
}
