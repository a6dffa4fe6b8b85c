package helpers

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type resetToken struct {
	UserID string `json:"uid"`
}

func TestRedisJSON(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := NewRedisClient(mr.Addr(), "", 0)
	defer func() { _ = rdb.Close() }()
	ctx := context.Background()

	require.NoError(t, RedisPing(ctx, rdb, time.Second))
	require.NoError(t, RedisSetJSON(ctx, rdb, "pwd:reset:token:t1", resetToken{UserID: "u1"}, time.Minute))

	var got resetToken
	found, err := RedisGetJSON(ctx, rdb, "pwd:reset:token:t1", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "u1", got.UserID)

	mr.FastForward(2 * time.Minute)
	found, err = RedisGetJSON(ctx, rdb, "pwd:reset:token:t1", &got)
	require.NoError(t, err)
	assert.False(t, found, "expired keys read as missing")

	require.NoError(t, mr.Set("broken", "{not json"))
	_, err = RedisGetJSON(ctx, rdb, "broken", &got)
	assert.Error(t, err)

	require.NoError(t, RedisDel(ctx, rdb, "broken"))
	assert.False(t, mr.Exists("broken"))
	assert.NoError(t, RedisDel(ctx, rdb))
}
