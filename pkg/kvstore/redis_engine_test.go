package kvstore

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisEngine_Integration(t *testing.T) {
	url := os.Getenv("REDIS_URL")
	if url == "" {
		t.Skip("REDIS_URL not set")
	}

	ctx := context.Background()
	e := NewRedisEngine(url, "kvtest-"+uuid.NewString())
	defer e.Close()
	require.NoError(t, e.Ping(ctx))

	require.NoError(t, e.Set(ctx, "image_*odd", []byte("x")))
	require.NoError(t, e.Set(ctx, "image_plain", []byte("y")))

	keys, err := e.Keys(ctx, "image_*")
	require.NoError(t, err)
	assert.Equal(t, []string{"image_*odd"}, keys)

	keys, err = e.Keys(ctx, "image_")
	require.NoError(t, err)
	assert.Len(t, keys, 2)

	require.NoError(t, e.Delete(ctx, "image_*odd", "image_plain"))
	_, found, err := e.Get(ctx, "image_plain")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestGlobEscaper(t *testing.T) {
	assert.Equal(t, `notes:image_\*\?\[x\]`, globEscaper.Replace("notes:image_*?[x]"))
}
