package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/jobify/internal/container"
	"github.com/oksasatya/jobify/internal/domain/entity"
	"github.com/oksasatya/jobify/internal/domain/service"
	handlers "github.com/oksasatya/jobify/internal/interface/http"
	"github.com/oksasatya/jobify/internal/interface/middleware"
)

// UserModule serves /users. Everything requires a session; /users/admin/* requires the admin role.
type UserModule struct {
	Handler  *handlers.UserHandler
	Tokens   service.TokenIssuer
	Sessions service.SessionStore
}

func NewUserModule(h *handlers.UserHandler, tokens service.TokenIssuer, sessions service.SessionStore) *UserModule {
	return &UserModule{Handler: h, Tokens: tokens, Sessions: sessions}
}

func (m *UserModule) Register(rg *gin.RouterGroup) {
	users := rg.Group("/users")
	users.Use(
		middleware.Auth(m.Tokens, m.Sessions),
		middleware.RateLimit(container.GetRedis(), 120, time.Minute, middleware.KeyByUserID(), nil),
	)
	{
		users.GET("/current-user", m.Handler.CurrentUser)
		uploadLimiter := middleware.RateLimit(container.GetRedis(), 10, time.Minute, middleware.KeyByUserID(), nil)
		users.PATCH("/update-user", uploadLimiter, m.Handler.UpdateUser)
		users.GET("/:id/image", m.Handler.Image)
	}

	admin := users.Group("/admin", middleware.RequireRole(entity.RoleAdmin))
	{
		admin.GET("/app-stats", m.Handler.AppStats)
		admin.GET("/search", m.Handler.Search)
	}
}
