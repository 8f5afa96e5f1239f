package redis

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	s := New(client, "cassa:")

	_, found, err := s.Get(ctx, "nsm_transactions")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, s.Put(ctx, "nsm_transactions", []byte(`[]`)))

	got, found, err := s.Get(ctx, "nsm_transactions")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, `[]`, string(got))

	raw, err := mr.Get("cassa:nsm_transactions")
	require.NoError(t, err)
	assert.Equal(t, `[]`, raw)
	assert.Zero(t, mr.TTL("cassa:nsm_transactions"))
}

func TestDial(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := Dial(context.Background(), "redis://"+mr.Addr())
	require.NoError(t, err)
	client.Close()

	client, err = Dial(context.Background(), mr.Addr())
	require.NoError(t, err)
	client.Close()

	addr := mr.Addr()
	mr.Close()
	_, err = Dial(context.Background(), "redis://"+addr)
	assert.Error(t, err)
}

func TestRedisStoreSurfacesErrors(t *testing.T) {
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { client.Close() })
	s := New(client, "")
	mr.Close()

	_, _, err := s.Get(context.Background(), "k")
	assert.Error(t, err)
	assert.Error(t, s.Put(context.Background(), "k", []byte("x")))
}
