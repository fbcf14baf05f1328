package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"storefront/internal/domain"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockRedisClient struct {
	mock.Mock
}

func (m *MockRedisClient) Get(ctx context.Context, key string) *redis.StringCmd {
	args := m.Called(ctx, key)
	return args.Get(0).(*redis.StringCmd)
}

func (m *MockRedisClient) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	args := m.Called(ctx, key, value, expiration)
	return args.Get(0).(*redis.StatusCmd)
}

func (m *MockRedisClient) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	args := m.Called(ctx, keys)
	return args.Get(0).(*redis.IntCmd)
}

func TestCartRepo_LoadMissingReturnsEmptyCart(t *testing.T) {
	rdb := new(MockRedisClient)
	rdb.On("Get", mock.Anything, "cart:s1").Return(redis.NewStringResult("", redis.Nil))

	cart, err := NewCartRepository(rdb, time.Hour).Load(context.Background(), "s1")
	require.NoError(t, err)
	assert.NotNil(t, cart)
	assert.Empty(t, cart)
	rdb.AssertExpectations(t)
}

func TestCartRepo_LoadDecodesJSON(t *testing.T) {
	rdb := new(MockRedisClient)
	rdb.On("Get", mock.Anything, "cart:s1").Return(redis.NewStringResult(`{"1":2,"5":1}`, nil))

	cart, err := NewCartRepository(rdb, time.Hour).Load(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, domain.Cart{"1": 2, "5": 1}, cart)
}

func TestCartRepo_LoadPropagatesErrors(t *testing.T) {
	rdb := new(MockRedisClient)
	rdb.On("Get", mock.Anything, "cart:s1").Return(redis.NewStringResult("", errors.New("i/o timeout")))

	_, err := NewCartRepository(rdb, time.Hour).Load(context.Background(), "s1")
	assert.ErrorContains(t, err, "i/o timeout")
}

func TestCartRepo_SaveWritesWithTTL(t *testing.T) {
	rdb := new(MockRedisClient)
	rdb.On("Set", mock.Anything, "cart:s1", []byte(`{"3":4}`), 2*time.Hour).Return(redis.NewStatusResult("OK", nil))

	err := NewCartRepository(rdb, 2*time.Hour).Save(context.Background(), "s1", domain.Cart{"3": 4})
	require.NoError(t, err)
	rdb.AssertExpectations(t)
}

func TestCartRepo_SaveEmptyDeletesKey(t *testing.T) {
	rdb := new(MockRedisClient)
	rdb.On("Del", mock.Anything, []string{"cart:s1"}).Return(redis.NewIntResult(1, nil))

	err := NewCartRepository(rdb, time.Hour).Save(context.Background(), "s1", domain.Cart{})
	require.NoError(t, err)
	rdb.AssertExpectations(t)
	rdb.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
