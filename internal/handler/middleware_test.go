package handler

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestRateLimitMiddleware(t *testing.T) {
	router := gin.New()
	router.Use(RateLimitMiddleware(3))
	router.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 0, 4)
	for i := 0; i < 4; i++ {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.RemoteAddr = "192.0.2.1:1234"
		codes = append(codes, do(router, req).Code)
	}

	assert.Equal(t, []int{200, 200, 200, 429}, codes)

	other := httptest.NewRequest(http.MethodGet, "/ping", nil)
	other.RemoteAddr = "192.0.2.2:1234"
	assert.Equal(t, http.StatusOK, do(router, other).Code, "limits are per client IP")
}

func TestRateLimitMiddleware_ConcurrentClients(t *testing.T) {
	router := gin.New()
	router.Use(RateLimitMiddleware(1000))
	router.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			req := httptest.NewRequest(http.MethodGet, "/ping", nil)
			req.RemoteAddr = "192.0.2." + string(rune('0'+i%10)) + ":1234"
			assert.Equal(t, http.StatusOK, do(router, req).Code)
		}(i)
	}
	wg.Wait()
}

func TestTimeoutMiddleware(t *testing.T) {
	router := gin.New()
	router.Use(TimeoutMiddleware(10 * time.Millisecond))
	router.GET("/slow", func(c *gin.Context) {
		<-c.Request.Context().Done()
		c.Status(http.StatusGatewayTimeout)
	})

	w := do(router, httptest.NewRequest(http.MethodGet, "/slow", nil))

	assert.Equal(t, http.StatusGatewayTimeout, w.Code)
}

func TestCORSMiddleware(t *testing.T) {
	router := gin.New()
	router.Use(CORSMiddleware([]string{"https://stats.example.com"}))
	router.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Origin", "https://stats.example.com")
	w := do(router, req)
	assert.Equal(t, "https://stats.example.com", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	w = do(router, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestIPRateLimiter_EvictsIdleClients(t *testing.T) {
	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	limiters := newIPRateLimiter(60)
	limiters.now = func() time.Time { return clock }
	limiters.lastSweep = clock

	for i := 0; i < 100; i++ {
		limiters.get(fmt.Sprintf("198.51.100.%d", i))
	}
	assert.Equal(t, 100, limiters.size())

	clock = clock.Add(2 * time.Minute)
	limiters.get("198.51.100.7")

	clock = clock.Add(2 * time.Minute)
	limiters.get("203.0.113.1")

	// the client seen two minutes ago is still within the idle window
	assert.Equal(t, 2, limiters.size())

	clock = clock.Add(limiterIdleTTL)
	limiters.get("203.0.113.1")
	assert.Equal(t, 1, limiters.size())
}

func TestIPRateLimiter_KeepsActiveClientState(t *testing.T) {
	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	limiters := newIPRateLimiter(2)
	limiters.now = func() time.Time { return clock }
	limiters.lastSweep = clock

	first := limiters.get("192.0.2.1")
	clock = clock.Add(time.Second)
	assert.Same(t, first, limiters.get("192.0.2.1"))
}
