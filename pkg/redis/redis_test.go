package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	goredis "github.com/redis/go-redis/v9"
	"github.com/richxcame/expense-tracker/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetBytes(t *testing.T) {
	db, mock := redismock.NewClientMock()
	client := NewFromClient(db)
	ctx := context.Background()

	mock.ExpectGet("rate:usd:brl:latest").SetVal(`{"rate":5}`)
	value, found, err := client.GetBytes(ctx, "rate:usd:brl:latest")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, `{"rate":5}`, string(value))

	mock.ExpectGet("rate:usd:eur:latest").RedisNil()
	value, found, err = client.GetBytes(ctx, "rate:usd:eur:latest")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, value)

	mock.ExpectGet("rate:usd:gbp:latest").SetErr(errors.New("connection reset"))
	_, found, err = client.GetBytes(ctx, "rate:usd:gbp:latest")
	assert.Error(t, err)
	assert.False(t, found)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSetWithExpirationAndDelete(t *testing.T) {
	db, mock := redismock.NewClientMock()
	client := NewFromClient(db)
	ctx := context.Background()

	mock.ExpectSet("category:abc", "payload", time.Hour).SetVal("OK")
	require.NoError(t, client.SetWithExpiration(ctx, "category:abc", "payload", time.Hour))

	mock.ExpectDel("category:abc", "category:def").SetVal(2)
	require.NoError(t, client.Delete(ctx, "category:abc", "category:def"))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNewRedisClient_Unreachable(t *testing.T) {
	cfg := &config.RedisConfig{Host: "127.0.0.1", Port: "1"}

	client, err := NewRedisClient(cfg)
	assert.Nil(t, client)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unable to connect to redis")
}

func TestNewFromClient_KeepsUnderlyingClient(t *testing.T) {
	db := goredis.NewClient(&goredis.Options{Addr: "localhost:6379"})
	defer db.Close()

	assert.Same(t, db, NewFromClient(db).Client)
}
