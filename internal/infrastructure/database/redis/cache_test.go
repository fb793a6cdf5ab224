package redis

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/turtacn/Resonance-Intelligence/internal/domain/signal"
	"github.com/turtacn/Resonance-Intelligence/internal/infrastructure/monitoring/logging"
	pkgerrors "github.com/turtacn/Resonance-Intelligence/pkg/errors"
)

type CacheTestSuite struct {
	suite.Suite
	mock  redismock.ClientMock
	cache *Cache
}

func (s *CacheTestSuite) SetupTest() {
	db, mock := redismock.NewClientMock()
	s.mock = mock
	s.cache = NewCache(NewClientFromRDB(db, logging.NewNopLogger()), nil, WithPrefix("test:"), WithDefaultTTL(time.Minute))
}

func (s *CacheTestSuite) TearDownTest() {
	assert.NoError(s.T(), s.mock.ExpectationsWereMet())
}

type testStruct struct {
	Name string `json:"name"`
	Age  int    `json:"age"`
}

func (s *CacheTestSuite) TestGet_CacheHit() {
	val := testStruct{Name: "John", Age: 30}
	bytes, _ := json.Marshal(val)
	s.mock.ExpectGet("test:key").SetVal(string(bytes))

	var got testStruct
	s.Require().NoError(s.cache.Get(context.Background(), "key", &got))
	s.Equal(val, got)
}

func (s *CacheTestSuite) TestGet_CacheMiss() {
	s.mock.ExpectGet("test:key").RedisNil()

	var got testStruct
	err := s.cache.Get(context.Background(), "key", &got)
	s.Equal(ErrCacheMiss, err)
}

func (s *CacheTestSuite) TestGet_RedisError() {
	s.mock.ExpectGet("test:key").SetErr(stderrors.New("connection reset"))

	var got testStruct
	err := s.cache.Get(context.Background(), "key", &got)
	s.True(pkgerrors.IsCode(err, pkgerrors.ErrCodeCacheError))
}

func (s *CacheTestSuite) TestSet_DefaultTTL() {
	val := testStruct{Name: "Jane", Age: 41}
	bytes, _ := json.Marshal(val)
	s.mock.ExpectSet("test:key", string(bytes), time.Minute).SetVal("OK")

	s.NoError(s.cache.Set(context.Background(), "key", val, 0))
}

func (s *CacheTestSuite) TestDelete() {
	s.mock.ExpectDel("test:a", "test:b").SetVal(2)
	s.NoError(s.cache.Delete(context.Background(), "a", "b"))
}

func (s *CacheTestSuite) TestFetch_LoadsOnMissAndCaches() {
	val := testStruct{Name: "Loaded", Age: 7}
	bytes, _ := json.Marshal(val)
	s.mock.ExpectGet("test:key").RedisNil()
	s.mock.ExpectSet("test:key", string(bytes), 5*time.Second).SetVal("OK")

	calls := 0
	got, err := Fetch(context.Background(), s.cache, "key", 5*time.Second, func(context.Context) (testStruct, bool, error) {
		calls++
		return val, true, nil
	})
	s.Require().NoError(err)
	s.Equal(val, got)
	s.Equal(1, calls)
}

func (s *CacheTestSuite) TestFetch_HitSkipsLoader() {
	s.mock.ExpectGet("test:key").SetVal(`{"name":"Cached","age":3}`)

	got, err := Fetch(context.Background(), s.cache, "key", 0, func(context.Context) (testStruct, bool, error) {
		s.Fail("loader called on hit")
		return testStruct{}, false, nil
	})
	s.Require().NoError(err)
	s.Equal(testStruct{Name: "Cached", Age: 3}, got)
}

func (s *CacheTestSuite) TestFetch_UnkeptValueNotStored() {
	s.mock.ExpectGet("test:key").RedisNil()

	got, err := Fetch(context.Background(), s.cache, "key", 0, func(context.Context) (testStruct, bool, error) {
		return testStruct{Name: "partial"}, false, nil
	})
	s.Require().NoError(err)
	s.Equal("partial", got.Name)
}

func (s *CacheTestSuite) TestFetch_LoaderError() {
	s.mock.ExpectGet("test:key").RedisNil()

	_, err := Fetch(context.Background(), s.cache, "key", 0, func(context.Context) (*testStruct, bool, error) {
		return nil, false, stderrors.New("boom")
	})
	s.EqualError(err, "boom")
}

func TestCacheSuite(t *testing.T) {
	suite.Run(t, new(CacheTestSuite))
}

type countingProvider struct {
	searches int
	result   *signal.SearchResult
}

func (p *countingProvider) Search(context.Context, signal.SearchRequest) (*signal.SearchResult, error) {
	p.searches++
	return p.result, nil
}

func (p *countingProvider) GetGrid(context.Context, signal.GridRequest) (*signal.GridResult, error) {
	return &signal.GridResult{Success: true}, nil
}

func TestCachedProvider_StoresSuccessfulSearch(t *testing.T) {
	db, mock := redismock.NewClientMock()
	cache := NewCache(NewClientFromRDB(db, nil), nil, WithPrefix("r:"))
	next := &countingProvider{result: &signal.SearchResult{Success: true, Matches: []signal.Match{{ID: "E1", Name: "Jane Doe"}}}}
	p := NewCachedProvider(next, cache, time.Hour)

	req := signal.SearchRequest{Query: " Jane Doe ", Kind: signal.KindEntity, Limit: 2, SortBy: "match"}
	key := "r:search:entity:2:match:jane doe"
	payload, err := json.Marshal(next.result)
	require.NoError(t, err)

	mock.ExpectGet(key).RedisNil()
	mock.ExpectSet(key, string(payload), time.Hour).SetVal("OK")
	res, err := p.Search(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "E1", res.Matches[0].ID)

	mock.ExpectGet(key).SetVal(string(payload))
	res, err = p.Search(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", res.Matches[0].Name)
	assert.Equal(t, 1, next.searches)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCachedProvider_SkipsFailedSearch(t *testing.T) {
	db, mock := redismock.NewClientMock()
	cache := NewCache(NewClientFromRDB(db, nil), nil, WithPrefix("r:"))
	next := &countingProvider{result: &signal.SearchResult{Success: false}}
	p := NewCachedProvider(next, cache, 0)

	mock.ExpectGet("r:search:tag:5::economy").RedisNil()
	res, err := p.Search(context.Background(), signal.SearchRequest{Query: "Economy", Kind: signal.KindTag, Limit: 5})
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCachedProvider_CacheDownFallsThrough(t *testing.T) {
	db, mock := redismock.NewClientMock()
	cache := NewCache(NewClientFromRDB(db, nil), nil, WithPrefix("r:"))
	next := &countingProvider{result: &signal.SearchResult{Success: true, Matches: []signal.Match{{ID: "T1"}}}}
	p := NewCachedProvider(next, cache, time.Minute)

	payload, err := json.Marshal(next.result)
	require.NoError(t, err)
	mock.ExpectGet("r:search:tag:5::economy").SetErr(stderrors.New("down"))
	mock.ExpectSet("r:search:tag:5::economy", string(payload), time.Minute).SetErr(stderrors.New("down"))

	res, err := p.Search(context.Background(), signal.SearchRequest{Query: "economy", Kind: signal.KindTag, Limit: 5})
	require.NoError(t, err)
	assert.Equal(t, "T1", res.Matches[0].ID)
}

//Personal.AI order the ending
