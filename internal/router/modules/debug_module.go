package modules

import (
	"context"
	"expvar"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/jobify/internal/container"
	"github.com/oksasatya/jobify/internal/interface/middleware"
	"github.com/oksasatya/jobify/pkg/helpers"
	"github.com/oksasatya/jobify/pkg/response"
)

// DebugModule serves operational endpoints: expvar counters and a health
// probe over the stateful backends.
type DebugModule struct{}

func NewDebugModule() *DebugModule { return &DebugModule{} }

func (m *DebugModule) Register(rg *gin.RouterGroup) {
	rl := middleware.RateLimit(container.GetRedis(), 120, time.Minute, middleware.KeyByIP(), rateLimitBypass())
	rg.GET("/debug/vars", rl, gin.WrapH(expvar.Handler()))
	rg.GET("/healthz", rl, m.Health)
}

// Health reports "ok", "down" or "disabled" per backend and answers 503
// when any configured backend is down.
func (m *DebugModule) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	checks := map[string]string{"postgres": "disabled", "redis": "disabled"}
	healthy := true
	if pool := container.GetPGPool(); pool != nil {
		checks["postgres"] = probe(pool.Ping(ctx), &healthy)
	}
	if rdb := container.GetRedis(); rdb != nil {
		checks["redis"] = probe(helpers.RedisPing(ctx, rdb), &healthy)
	}

	if !healthy {
		response.Error[any](c, http.StatusServiceUnavailable, "unhealthy", checks)
		return
	}
	response.Success(c, http.StatusOK, checks, "healthy", nil)
}

func probe(err error, healthy *bool) string {
	if err != nil {
		*healthy = false
		return "down"
	}
	return "ok"
}
