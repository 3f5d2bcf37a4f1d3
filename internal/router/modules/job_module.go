package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/jobify/internal/container"
	"github.com/oksasatya/jobify/internal/domain/service"
	handlers "github.com/oksasatya/jobify/internal/interface/http"
	"github.com/oksasatya/jobify/internal/interface/middleware"
)

type JobModule struct {
	Handler  *handlers.JobHandler
	Tokens   service.TokenIssuer
	Sessions service.SessionStore
}

func NewJobModule(h *handlers.JobHandler, tokens service.TokenIssuer, sessions service.SessionStore) *JobModule {
	return &JobModule{Handler: h, Tokens: tokens, Sessions: sessions}
}

func (m *JobModule) Register(rg *gin.RouterGroup) {
	jobs := rg.Group("/jobs")
	jobs.Use(
		middleware.Auth(m.Tokens, m.Sessions),
		middleware.RateLimit(container.GetRedis(), 300, time.Minute, middleware.KeyByUserID(), nil),
	)
	{
		jobs.GET("", m.Handler.List)
		jobs.POST("", m.Handler.Create)
		jobs.GET("/stats", m.Handler.Stats)
		jobs.GET("/:id", m.Handler.Get)
		jobs.PATCH("/:id", m.Handler.Update)
		jobs.DELETE("/:id", m.Handler.Delete)
	}
}
