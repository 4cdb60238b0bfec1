package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func TestRateLimitLLMGroupStricterThanDefault(t *testing.T) {
	gin.SetMode(gin.TestMode)
	now := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	limiter := NewRateLimiter(func() time.Time { return now })

	groupFor := func(c *gin.Context) string {
		if c.Request.Method == http.MethodPost && c.FullPath() == "/api/v1/chapters/:id/critique" {
			return "LLM"
		}
		return "DEFAULT"
	}

	r := gin.New()
	r.Use(RateLimit(RateLimitConfig{
		DefaultGroup: "DEFAULT",
		GroupFor:     groupFor,
		Limiter:      limiter,
		Rules: map[string]RateLimitRule{
			"DEFAULT": {Rate: 5, Burst: 10},
			"LLM":     {Rate: 0.5, Burst: 2},
		},
	}))
	r.POST("/api/v1/chapters/:id/critique", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	r.GET("/api/v1/chapters/:id", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	for i := 0; i < 5; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/chapters/ch-1", nil)
		resp := httptest.NewRecorder()
		r.ServeHTTP(resp, req)
		if resp.Code != http.StatusOK {
			t.Fatalf("read request %d expected 200, got %d", i+1, resp.Code)
		}
	}

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/chapters/ch-1/critique", nil)
		resp := httptest.NewRecorder()
		r.ServeHTTP(resp, req)
		if resp.Code != http.StatusOK {
			t.Fatalf("critique request %d expected 200, got %d", i+1, resp.Code)
		}
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/chapters/ch-1/critique", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	if resp.Code != http.StatusTooManyRequests {
		t.Fatalf("critique request 3 expected 429, got %d", resp.Code)
	}
}

func TestRateLimit429IncludesRetryAfter(t *testing.T) {
	gin.SetMode(gin.TestMode)
	now := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	limiter := NewRateLimiter(func() time.Time { return now })

	r := gin.New()
	r.Use(RateLimit(RateLimitConfig{
		Limiter: limiter,
		Rules: map[string]RateLimitRule{
			"DEFAULT": {Rate: 1, Burst: 1},
		},
	}))
	r.GET("/api/v1/limited", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	req1 := httptest.NewRequest(http.MethodGet, "/api/v1/limited", nil)
	resp1 := httptest.NewRecorder()
	r.ServeHTTP(resp1, req1)
	if resp1.Code != http.StatusOK {
		t.Fatalf("expected first request 200, got %d", resp1.Code)
	}

	req2 := httptest.NewRequest(http.MethodGet, "/api/v1/limited", nil)
	resp2 := httptest.NewRecorder()
	r.ServeHTTP(resp2, req2)
	if resp2.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", resp2.Code)
	}
	if got := resp2.Header().Get("Retry-After"); got != "1" {
		t.Fatalf("expected Retry-After 1, got %q", got)
	}

	var payload struct {
		Error struct {
			Code    string         `json:"code"`
			Details map[string]any `json:"details"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp2.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.Error.Code != "RATE_LIMITED" {
		t.Fatalf("expected RATE_LIMITED, got %q", payload.Error.Code)
	}
	if payload.Error.Details["retryAfterMs"] != float64(1000) {
		t.Fatalf("expected retryAfterMs 1000, got %v", payload.Error.Details["retryAfterMs"])
	}
}

func TestRateLimiterRefills(t *testing.T) {
	now := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	limiter := NewRateLimiter(func() time.Time { return now })
	rule := RateLimitRule{Rate: 1, Burst: 1}

	if ok, _ := limiter.Allow("k", rule); !ok {
		t.Fatalf("expected first call allowed")
	}
	if ok, wait := limiter.Allow("k", rule); ok || wait != time.Second {
		t.Fatalf("expected denial with 1s wait, got ok=%v wait=%s", ok, wait)
	}
	now = now.Add(time.Second)
	if ok, _ := limiter.Allow("k", rule); !ok {
		t.Fatalf("expected refill after one second")
	}
}

func TestRateLimiterEvictsIdleClients(t *testing.T) {
	now := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	limiter := NewRateLimiter(func() time.Time { return now })
	rule := RateLimitRule{Rate: 1, Burst: 1}

	limiter.Allow("10.0.0.1|LLM", rule)
	limiter.Allow("10.0.0.2|LLM", rule)
	if got := len(limiter.limiters); got != 2 {
		t.Fatalf("expected 2 tracked clients, got %d", got)
	}

	now = now.Add(limiterIdleTTL / 2)
	limiter.Allow("10.0.0.2|LLM", rule)

	now = now.Add(limiterIdleTTL/2 + sweepInterval)
	limiter.Allow("10.0.0.3|LLM", rule)
	if _, ok := limiter.limiters["10.0.0.1|LLM"]; ok {
		t.Fatalf("expected idle client to be evicted")
	}
	if _, ok := limiter.limiters["10.0.0.2|LLM"]; !ok {
		t.Fatalf("expected recently seen client to be kept")
	}
	if got := len(limiter.limiters); got != 2 {
		t.Fatalf("expected 2 tracked clients after sweep, got %d", got)
	}
}
