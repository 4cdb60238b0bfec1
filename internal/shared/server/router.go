package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"novel-backend/internal/assist"
	"novel-backend/internal/chapters"
	"novel-backend/internal/critiques"
	"novel-backend/internal/services/health"
	"novel-backend/internal/shared/config"
	"novel-backend/internal/shared/metrics"
	"novel-backend/internal/shared/server/middleware"
	"novel-backend/internal/shared/server/respond"
)

const llmRateLimitGroup = "LLM"

// llmRoutes are the endpoints that call a provider.
var llmRoutes = map[string]struct{}{
	"/api/v1/chapters/:id/critique":  {},
	"/api/v1/critiques/batch":        {},
	"/api/v1/chapters/:id/continue":  {},
	"/api/v1/chapters/:id/summarize": {},
}

// RouterDeps are the handlers the router mounts.
type RouterDeps struct {
	Config          config.Config
	Health          *health.Service
	ChapterHandler  *chapters.Handler
	CritiqueHandler *critiques.Handler
	AssistHandler   *assist.Handler
	// Limiter is shared across requests; nil builds a fresh one.
	Limiter *middleware.RateLimiter
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	if deps.Config.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	rules := map[string]middleware.RateLimitRule{}
	if deps.Config.RateLimitRPS > 0 {
		rules[llmRateLimitGroup] = middleware.RateLimitRule{
			Rate:  deps.Config.RateLimitRPS,
			Burst: deps.Config.RateLimitBurst,
		}
	}

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
		middleware.RateLimit(middleware.RateLimitConfig{
			Rules:    rules,
			GroupFor: llmGroup,
			Limiter:  deps.Limiter,
		}),
	)

	r.GET("/metrics", metrics.Handler())

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		if deps.Health == nil {
			respond.JSON(c, http.StatusOK, gin.H{"ok": true})
			return
		}
		st := deps.Health.Status(c.Request.Context())
		status := http.StatusOK
		if !st.OK {
			status = http.StatusServiceUnavailable
		}
		respond.JSON(c, status, st)
	})
	if deps.ChapterHandler != nil {
		deps.ChapterHandler.RegisterRoutes(api)
	}
	if deps.CritiqueHandler != nil {
		deps.CritiqueHandler.RegisterRoutes(api)
	}
	if deps.AssistHandler != nil {
		deps.AssistHandler.RegisterRoutes(api)
	}

	return r
}

func llmGroup(c *gin.Context) string {
	if c.Request.Method != http.MethodPost {
		return ""
	}
	if _, ok := llmRoutes[c.FullPath()]; ok {
		return llmRateLimitGroup
	}
	return ""
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
