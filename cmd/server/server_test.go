package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"

	"qrstats/internal/config"
	"qrstats/internal/domain"
	"qrstats/internal/workers"
	"qrstats/pkg/logger"
)

type ServerIntegrationTestSuite struct {
	suite.Suite
	redis  *miniredis.Miniredis
	stores *backend
	router *gin.Engine
	pool   *workers.CounterPool
	config *config.Config
}

func (s *ServerIntegrationTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.redis = miniredis.RunT(s.T())

	s.config = &config.Config{
		Environment:           "test",
		BaseURL:               "http://localhost:8081",
		StoreBackend:          "redis",
		RedisAddr:             s.redis.Addr(),
		IDStrategy:            "base62",
		IDLength:              8,
		MaxAllocationAttempts: 5,
		BcryptCost:            bcrypt.MinCost,
		RateLimitPerMinute:    100000,
		RequestTimeout:        5 * time.Second,
		CounterWorkers:        4,
		CounterQueueSize:      4096,
		CounterTimeout:        time.Second,
	}
	s.Require().NoError(s.config.Validate())

	log := logger.NewNop()
	stores, err := openBackend(context.Background(), s.config, log)
	s.Require().NoError(err)
	s.stores = stores

	s.router, s.pool, err = newApp(s.config, stores, log)
	s.Require().NoError(err)
}

func (s *ServerIntegrationTestSuite) TearDownTest() {
	_ = s.pool.Stop(context.Background())
	s.stores.Close()
}

func TestServerIntegrationTestSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration tests in short mode")
	}
	suite.Run(t, new(ServerIntegrationTestSuite))
}

func (s *ServerIntegrationTestSuite) serve(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *ServerIntegrationTestSuite) create(body string) domain.CreateTargetResponse {
	req := httptest.NewRequest(http.MethodPost, "/create", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	w := s.serve(req)
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	var resp domain.CreateTargetResponse
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func (s *ServerIntegrationTestSuite) stats(id, pw string) (int, domain.StatsResponse) {
	path := "/stats/" + id
	if pw != "" {
		path += "?pw=" + pw
	}
	w := s.serve(httptest.NewRequest(http.MethodGet, path, nil))

	var resp domain.StatsResponse
	if w.Code == http.StatusOK {
		s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	}
	return w.Code, resp
}

func (s *ServerIntegrationTestSuite) TestShortenAndRedirect() {
	created := s.create(`{"url":"https://example.com/very/long/path/to/resource"}`)

	s.Len(created.ID, 8)
	s.Contains(created.ShortURL, s.config.BaseURL)
	stored, err := s.redis.Get("qrstats:targets:" + created.ID)
	s.Require().NoError(err)
	var record domain.TargetRecord
	s.Require().NoError(json.Unmarshal([]byte(stored), &record))
	s.False(record.CreatedAt.IsZero(), "created_at must be set on the redis backend")

	w := s.serve(httptest.NewRequest(http.MethodGet, created.RedirectPath, nil))
	s.Equal(http.StatusFound, w.Code)
	s.Equal("https://example.com/very/long/path/to/resource", w.Header().Get("Location"))

	s.Require().NoError(s.pool.Stop(context.Background()))

	code, stats := s.stats(created.ID, "")
	s.Equal(http.StatusOK, code)
	s.Equal(int64(1), stats.Count)
}

func (s *ServerIntegrationTestSuite) TestPasswordProtectedStats() {
	created := s.create(`{"url":"http://x.com","password":"secret"}`)
	s.True(created.PasswordProtected)

	stored, err := s.redis.Get("qrstats:targets:" + created.ID)
	s.Require().NoError(err)
	s.NotContains(stored, "secret", "the password itself is never stored")

	code, _ := s.stats(created.ID, "wrong")
	s.Equal(http.StatusUnauthorized, code)

	code, stats := s.stats(created.ID, "secret")
	s.Equal(http.StatusOK, code)
	s.Zero(stats.Count)
}

func (s *ServerIntegrationTestSuite) TestConcurrentRedirectsAreCountedExactly() {
	created := s.create(`{"url":"http://example.com"}`)

	const n = 300
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w := s.serve(httptest.NewRequest(http.MethodGet, created.RedirectPath, nil))
			s.Equal(http.StatusFound, w.Code)
		}()
	}
	wg.Wait()

	s.Require().NoError(s.pool.Stop(context.Background()))

	_, stats := s.stats(created.ID, "")
	s.Equal(int64(n), stats.Count)
}

func (s *ServerIntegrationTestSuite) TestDistinctIdentifiers() {
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		created := s.create(fmt.Sprintf(`{"url":"http://example.com/%d"}`, i))
		s.False(seen[created.ID], "duplicate id %s", created.ID)
		seen[created.ID] = true
	}
}

func (s *ServerIntegrationTestSuite) TestStoreUnavailable() {
	created := s.create(`{"url":"http://example.com"}`)
	addr := s.redis.Addr()
	s.redis.Close()

	w := s.serve(httptest.NewRequest(http.MethodGet, created.RedirectPath, nil))
	s.Equal(http.StatusInternalServerError, w.Code)
	s.NotContains(w.Body.String(), addr)
	s.Contains(w.Body.String(), "internal_error")
}

func (s *ServerIntegrationTestSuite) TestInvalidURL() {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/targets", strings.NewReader(`{"url":"not-a-valid-url"}`))
	req.Header.Set("Content-Type", "application/json")

	s.Equal(http.StatusBadRequest, s.serve(req).Code)
	s.Empty(s.redis.Keys())
}

func (s *ServerIntegrationTestSuite) TestHealthCheck() {
	w := s.serve(httptest.NewRequest(http.MethodGet, "/health", nil))
	s.Equal(http.StatusOK, w.Code)

	var health map[string]interface{}
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &health))
	s.Equal("healthy", health["status"])
	s.Equal("redis", health["backend"])
}

func TestOpenBackend_Memory(t *testing.T) {
	stores, err := openBackend(context.Background(), &config.Config{StoreBackend: "memory"}, logger.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	defer stores.Close()

	if stores.records == nil || stores.counters == nil {
		t.Fatal("memory backend must provide both stores")
	}
}

func TestOpenBackend_RedisUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := openBackend(context.Background(), &config.Config{StoreBackend: "redis", RedisAddr: addr}, logger.NewNop())
	if err == nil {
		t.Fatal("expected an error for an unreachable redis")
	}
}
