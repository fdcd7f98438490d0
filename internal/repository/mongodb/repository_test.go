package mongodb

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Runs only against a real server: MONGODB_TEST_URI=mongodb://localhost:27017 go test ./...
func TestTokenRepository_RoundTrip(t *testing.T) {
	uri := os.Getenv("MONGODB_TEST_URI")
	if uri == "" {
		t.Skip("MONGODB_TEST_URI not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	profile := "test-" + uuid.NewString()
	repo, err := NewTokenRepository(ctx, uri, "estoque_test", profile)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = repo.Clear(context.Background())
		_ = repo.Close(context.Background())
	})

	token, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, token)

	require.NoError(t, repo.Save(ctx, "first"))
	require.NoError(t, repo.Save(ctx, "second"))

	token, err = repo.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "second", token)

	require.NoError(t, repo.Clear(ctx))
	token, err = repo.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, token)
}

func TestNewTokenRepository_Unreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	_, err := NewTokenRepository(ctx, "mongodb://127.0.0.1:1/?serverSelectionTimeoutMS=200", "estoque", "")
	assert.Error(t, err)
}
