package redis

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/turtacn/chargeview/internal/infrastructure/monitoring/logging"
	pkgerrors "github.com/turtacn/chargeview/pkg/errors"
)

type CacheTestSuite struct {
	suite.Suite
	mr     *miniredis.Miniredis
	client *Client
	cache  Cache
}

func (s *CacheTestSuite) SetupTest() {
	mr, err := miniredis.Run()
	require.NoError(s.T(), err)
	s.mr = mr

	s.client, err = NewClient(&RedisConfig{Addr: mr.Addr()}, logging.NewNopLogger())
	require.NoError(s.T(), err)
	s.cache = NewRedisCache(s.client, logging.NewNopLogger(), WithPrefix("test:"), WithoutJitter())
}

func (s *CacheTestSuite) TearDownTest() {
	s.client.Close()
	s.mr.Close()
}

type envelope struct {
	URL   string
	Bytes []byte
}

func (s *CacheTestSuite) TestSetThenGet() {
	ctx := context.Background()
	in := envelope{URL: "s3://structures/1tqn.cif", Bytes: []byte("data_1TQN\n")}

	require.NoError(s.T(), s.cache.Set(ctx, "k1", in, time.Minute))
	assert.True(s.T(), s.mr.Exists("test:k1"))
	assert.Equal(s.T(), time.Minute, s.mr.TTL("test:k1"))

	var out envelope
	require.NoError(s.T(), s.cache.Get(ctx, "k1", &out))
	assert.Equal(s.T(), in, out)
}

func (s *CacheTestSuite) TestDefaultTTLApplied() {
	require.NoError(s.T(), s.cache.Set(context.Background(), "k", envelope{}, 0))
	assert.Equal(s.T(), 30*time.Minute, s.mr.TTL("test:k"))
}

func (s *CacheTestSuite) TestGet_Miss() {
	var out envelope
	err := s.cache.Get(context.Background(), "absent", &out)
	assert.Equal(s.T(), ErrCacheMiss, err)
	assert.True(s.T(), pkgerrors.IsCode(err, pkgerrors.ErrCodeCacheError))
}

func (s *CacheTestSuite) TestGet_CorruptValue() {
	require.NoError(s.T(), s.mr.Set("test:bad", "\xc1"))
	var out envelope
	err := s.cache.Get(context.Background(), "bad", &out)
	assert.True(s.T(), pkgerrors.IsCode(err, pkgerrors.ErrCodeSerialization))
}

func (s *CacheTestSuite) TestGetOrSet_LoadsOnceThenHits() {
	ctx := context.Background()
	var calls int32
	loader := func(ctx context.Context) (interface{}, error) {
		atomic.AddInt32(&calls, 1)
		return envelope{URL: "u", Bytes: []byte{1, 2, 3}}, nil
	}

	var out envelope
	require.NoError(s.T(), s.cache.GetOrSet(ctx, "k", &out, time.Minute, loader))
	assert.Equal(s.T(), []byte{1, 2, 3}, out.Bytes)

	var again envelope
	require.NoError(s.T(), s.cache.GetOrSet(ctx, "k", &again, time.Minute, loader))
	assert.Equal(s.T(), out, again)
	assert.Equal(s.T(), int32(1), atomic.LoadInt32(&calls))
}

func (s *CacheTestSuite) TestGetOrSet_ConcurrentMissesShareLoader() {
	ctx := context.Background()
	var calls int32
	release := make(chan struct{})
	loader := func(ctx context.Context) (interface{}, error) {
		atomic.AddInt32(&calls, 1)
		<-release
		return envelope{URL: "shared"}, nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			var out envelope
			assert.NoError(s.T(), s.cache.GetOrSet(ctx, "same", &out, time.Minute, loader))
		}()
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()
	assert.LessOrEqual(s.T(), atomic.LoadInt32(&calls), int32(4))
	assert.GreaterOrEqual(s.T(), atomic.LoadInt32(&calls), int32(1))
}

func (s *CacheTestSuite) TestGetOrSet_LoaderError() {
	boom := errors.New("boom")
	var out envelope
	err := s.cache.GetOrSet(context.Background(), "k", &out, time.Minute, func(context.Context) (interface{}, error) {
		return nil, boom
	})
	assert.ErrorIs(s.T(), err, boom)
	assert.False(s.T(), s.mr.Exists("test:k"))
}

func (s *CacheTestSuite) TestGetOrSet_NilValueCachedAsNull() {
	var out envelope
	err := s.cache.GetOrSet(context.Background(), "none", &out, time.Minute, func(context.Context) (interface{}, error) {
		return nil, nil
	})
	assert.Equal(s.T(), ErrCacheMiss, err)
	v, _ := s.mr.Get("test:none")
	assert.Equal(s.T(), nullMarker, v)
}

func (s *CacheTestSuite) TestDeleteAndExists() {
	ctx := context.Background()
	require.NoError(s.T(), s.cache.Set(ctx, "a", envelope{}, time.Minute))

	ok, err := s.cache.Exists(ctx, "a")
	require.NoError(s.T(), err)
	assert.True(s.T(), ok)

	require.NoError(s.T(), s.cache.Delete(ctx, "a"))
	ok, err = s.cache.Exists(ctx, "a")
	require.NoError(s.T(), err)
	assert.False(s.T(), ok)
	assert.NoError(s.T(), s.cache.Delete(ctx))
}

func (s *CacheTestSuite) TestDeleteByPrefix() {
	ctx := context.Background()
	for _, k := range []string{"download:1", "download:2", "other:1"} {
		require.NoError(s.T(), s.cache.Set(ctx, k, envelope{}, time.Minute))
	}
	n, err := s.cache.DeleteByPrefix(ctx, "download:")
	require.NoError(s.T(), err)
	assert.Equal(s.T(), int64(2), n)
	assert.True(s.T(), s.mr.Exists("test:other:1"))
}

func (s *CacheTestSuite) TestTTL() {
	ctx := context.Background()
	require.NoError(s.T(), s.cache.Set(ctx, "k", envelope{}, 2*time.Minute))
	ttl, err := s.cache.TTL(ctx, "k")
	require.NoError(s.T(), err)
	assert.Equal(s.T(), 2*time.Minute, ttl)

	s.mr.FastForward(time.Minute)
	ttl, err = s.cache.TTL(ctx, "k")
	require.NoError(s.T(), err)
	assert.Equal(s.T(), time.Minute, ttl)

	ttl, err = s.cache.TTL(ctx, "absent")
	require.NoError(s.T(), err)
	assert.Negative(s.T(), int64(ttl))
}

func TestCacheSuite(t *testing.T) {
	suite.Run(t, new(CacheTestSuite))
}

func TestCache_GetBackendError(t *testing.T) {
	db, mock := redismock.NewClientMock()
	cache := NewRedisCache(NewClientFromUniversal(db, logging.NewNopLogger()), logging.NewNopLogger(), WithPrefix("p:"))

	mock.ExpectGet("p:k").SetErr(errors.New("connection reset"))

	var out envelope
	err := cache.Get(context.Background(), "k", &out)
	require.Error(t, err)
	assert.NotEqual(t, ErrCacheMiss, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.ErrCodeCacheError))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestJSONSerializer(t *testing.T) {
	var s Serializer = JSONSerializer{}
	data, err := s.Marshal(envelope{URL: "x"})
	require.NoError(t, err)
	var out envelope
	require.NoError(t, s.Unmarshal(data, &out))
	assert.Equal(t, "x", out.URL)
}

//Personal.AI order the ending
