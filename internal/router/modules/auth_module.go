package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/jobify/internal/container"
	"github.com/oksasatya/jobify/internal/domain/service"
	handlers "github.com/oksasatya/jobify/internal/interface/http"
	"github.com/oksasatya/jobify/internal/interface/middleware"
)

type AuthModule struct {
	Handler  *handlers.AuthHandler
	Tokens   service.TokenIssuer
	Sessions service.SessionStore
}

func NewAuthModule(h *handlers.AuthHandler, tokens service.TokenIssuer, sessions service.SessionStore) *AuthModule {
	return &AuthModule{Handler: h, Tokens: tokens, Sessions: sessions}
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	limiter := middleware.RateLimit(container.GetRedis(), 15, 15*time.Minute, middleware.KeyByIPAndPath(), rateLimitBypass())

	auth := rg.Group("/auth")
	auth.POST("/register", limiter, m.Handler.Register)
	auth.POST("/login", limiter, m.Handler.Login)
	auth.POST("/logout", middleware.Auth(m.Tokens, m.Sessions), m.Handler.Logout)
}
