package demoauth

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Paul-Starodub/fast-library/internal/config"
)

func TestCredentials_Check(t *testing.T) {
	creds := NewCredentials(map[string]string{"admin": "admin", "john": "password"})

	tests := []struct {
		name     string
		username string
		password string
		want     bool
	}{
		{"admin", "admin", "admin", true},
		{"john", "john", "password", true},
		{"wrong password", "john", "admin", false},
		{"unknown user", "mallory", "admin", false},
		{"empty", "", "", false},
		{"case sensitive", "Admin", "admin", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, creds.Check(tt.username, tt.password))
		})
	}
	assert.Equal(t, 2, creds.Len())
}

// storeContract runs the behaviour every Store must share.
func storeContract(t *testing.T, store Store) {
	ctx := context.Background()

	_, err := store.Lookup(ctx, "missing")
	assert.ErrorIs(t, err, ErrUnknownToken)

	require.NoError(t, Seed(ctx, store, map[string]string{"tok-a": "admin", "tok-j": "john"}))
	username, err := store.Lookup(ctx, "tok-a")
	require.NoError(t, err)
	assert.Equal(t, "admin", username)

	require.NoError(t, store.Delete(ctx, "tok-a"))
	_, err = store.Lookup(ctx, "tok-a")
	assert.ErrorIs(t, err, ErrUnknownToken)

	username, err = store.Lookup(ctx, "tok-j")
	require.NoError(t, err)
	assert.Equal(t, "john", username)
	require.NoError(t, store.Delete(ctx, "tok-j"))
}

func TestMemoryStore(t *testing.T) {
	storeContract(t, NewMemoryStore())
}

func TestMemoryStore_Expiry(t *testing.T) {
	store := NewMemoryStore()
	now := time.Now()
	store.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "short", "john", time.Minute))
	_, err := store.Lookup(ctx, "short")
	require.NoError(t, err)

	now = now.Add(time.Minute)
	_, err = store.Lookup(ctx, "short")
	assert.ErrorIs(t, err, ErrUnknownToken)
	assert.Empty(t, store.entries)
}

func TestRedisStore(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}
	client, err := NewRedisClient(context.Background(), config.Redis{Addr: addr})
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	storeContract(t, NewRedisStore(client))
}

func TestRedisKey(t *testing.T) {
	assert.Equal(t, "fast-library:demo-auth:token:abc", redisKey("abc"))
}
